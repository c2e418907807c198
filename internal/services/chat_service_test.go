package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewsync.com/crewsync/internal/constants"
	apperrors "crewsync.com/crewsync/internal/errors"
)

func TestMarkRead_IdempotentRecipientOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.chat.Send(ctx, f.admin, &f.employee.UserID, "please check site 4", "")
	require.NoError(t, err)
	require.Nil(t, msg.ReadAt)

	// Only the recipient can read it.
	_, err = f.chat.MarkRead(ctx, f.admin, msg.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	read, err := f.chat.MarkRead(ctx, f.employee, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)
	firstReadAt := *read.ReadAt

	// A repeat read keeps the original timestamp.
	again, err := f.chat.MarkRead(ctx, f.employee, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, again.ReadAt)
	assert.Equal(t, firstReadAt, *again.ReadAt)

	_, err = f.chat.MarkRead(ctx, f.employee, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}

func TestMarkConversationRead_SingleBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.chat.Send(ctx, f.admin, &f.employee.UserID, "update", "")
		require.NoError(t, err)
	}
	// Noise from another conversation direction.
	_, err := f.chat.Send(ctx, f.employee, &f.admin.UserID, "reply", "")
	require.NoError(t, err)

	unread, err := f.chat.UnreadCount(ctx, f.employee)
	require.NoError(t, err)
	assert.EqualValues(t, 5, unread)

	affected, err := f.chat.MarkConversationRead(ctx, f.employee, f.admin.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, affected)

	unread, err = f.chat.UnreadCount(ctx, f.employee)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// Nothing left to clear the second time.
	affected, err = f.chat.MarkConversationRead(ctx, f.employee, f.admin.UserID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestGroupMessages_NoRecipientNoReadState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.chat.Send(ctx, f.admin, nil, "team standup at 9", "")
	require.NoError(t, err)
	assert.True(t, msg.IsGroupMessage)
	assert.Nil(t, msg.RecipientID)

	group, err := f.chat.ListGroup(ctx, 50)
	require.NoError(t, err)
	require.Len(t, group, 1)

	// Group messages have no recipient, so nobody can mark them read.
	_, err = f.chat.MarkRead(ctx, f.employee, msg.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestPresence_SetAndForceOffline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.presence.SetStatus(ctx, f.employee, constants.PresenceOnline))
	profile, err := f.presence.GetProfile(ctx, f.employee.UserID)
	require.NoError(t, err)
	assert.Equal(t, constants.PresenceOnline, profile.Status)

	err = f.presence.SetStatus(ctx, f.employee, constants.PresenceStatus("invisible"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidPresence)

	require.NoError(t, f.presence.ForceOffline(ctx, f.employee))
	profile, err = f.presence.GetProfile(ctx, f.employee.UserID)
	require.NoError(t, err)
	assert.Equal(t, constants.PresenceOffline, profile.Status)
}
