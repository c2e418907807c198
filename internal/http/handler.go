package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"crewsync.com/crewsync/internal/constants"
	apperrors "crewsync.com/crewsync/internal/errors"
	middleware "crewsync.com/crewsync/internal/http/middlewares"
	"crewsync.com/crewsync/internal/realtime"
	"crewsync.com/crewsync/internal/services"
	"crewsync.com/crewsync/internal/session"
)

type Handler struct {
	tasks         *services.TaskService
	sms           *services.SmsService
	chat          *services.ChatService
	presence      *services.PresenceService
	notifications *services.NotificationService
	timesheet     *services.TimesheetService

	feed           realtime.Feed
	sessionStores  session.Stores
	confirmTimeout time.Duration
	pollInterval   time.Duration
	settleDelay    time.Duration
}

func NewHandler(
	tasks *services.TaskService,
	sms *services.SmsService,
	chat *services.ChatService,
	presence *services.PresenceService,
	notifications *services.NotificationService,
	timesheet *services.TimesheetService,
	feed realtime.Feed,
	sessionStores session.Stores,
	confirmTimeout, pollInterval, settleDelay time.Duration,
) *Handler {
	return &Handler{
		tasks:          tasks,
		sms:            sms,
		chat:           chat,
		presence:       presence,
		notifications:  notifications,
		timesheet:      timesheet,
		feed:           feed,
		sessionStores:  sessionStores,
		confirmTimeout: confirmTimeout,
		pollInterval:   pollInterval,
		settleDelay:    settleDelay,
	}
}

func identity(c echo.Context) services.Identity {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	role, _ := c.Get(middleware.ContextRole).(string)
	return services.Identity{UserID: userID, Role: constants.Role(role)}
}

// httpError maps service errors onto the wire. Business-rule failures keep
// their specific message and status; anything unexpected becomes a 500.
func httpError(err error) error {
	var ex *apperrors.Exception
	if errors.As(err, &ex) {
		return echo.NewHTTPError(ex.StatusCode, ex.Message)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
