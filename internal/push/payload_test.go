package push

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayload_Shape(t *testing.T) {
	p := NewPayload("New task: Wire the rack", "A task has been assigned to you", "task_assigned")

	assert.Equal(t, DefaultURL, p.Data.URL)
	assert.True(t, p.Renotify)
	assert.Equal(t, []int{200, 100, 200}, p.Vibrate)
	require.Len(t, p.Actions, 2)
	assert.Equal(t, ActionOpen, p.Actions[0].Action)
	assert.Equal(t, ActionClose, p.Actions[1].Action)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "task_assigned", decoded["tag"])
	data, ok := decoded["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/panel", data["url"])
}

func TestShouldOpen(t *testing.T) {
	assert.True(t, ShouldOpen(ActionOpen))
	assert.True(t, ShouldOpen(""), "a plain notification click opens the panel")
	assert.False(t, ShouldOpen(ActionClose))
}
