package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"crewsync.com/crewsync/internal/session"
)

// StreamEvents serves one realtime session over server-sent events. The
// session performs its initial load, subscribes to the change feed (falling
// back to polling if the handshake stalls) and emits only the alerts that
// pass the startup gate. Closing the request tears the session down.
func (h *Handler) StreamEvents(c echo.Context) error {
	caller := identity(c)

	sess := session.New(session.Config{
		UserID:         caller.UserID,
		Feed:           h.feed,
		Stores:         h.sessionStores,
		ConfirmTimeout: h.confirmTimeout,
		PollInterval:   h.pollInterval,
		SettleDelay:    h.settleDelay,
	})

	ctx := c.Request().Context()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	done := make(chan error, 1)
	go func() {
		done <- sess.Run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil

		case err := <-done:
			if err != nil && ctx.Err() == nil {
				return httpError(err)
			}
			return nil

		case alert := <-sess.Alerts():
			payload, err := json.Marshal(alert)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: alert\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()

		case st := <-sess.StatusChanges():
			if _, err := fmt.Fprintf(res, "event: status\ndata: %s\n\n", st); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
