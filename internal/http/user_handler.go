package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crewsync.com/crewsync/internal/constants"
	dto "crewsync.com/crewsync/internal/data_models"
	model "crewsync.com/crewsync/internal/models"
)

func (h *Handler) SetPresence(c echo.Context) error {
	var req dto.PresenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	err := h.presence.SetStatus(c.Request().Context(), identity(c), constants.PresenceStatus(req.Status))
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SignOut is the lifecycle hook forcing presence offline; session teardown
// itself happens client-side when the token is discarded.
func (h *Handler) SignOut(c echo.Context) error {
	if err := h.presence.ForceOffline(c.Request().Context(), identity(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListProfiles(c echo.Context) error {
	profiles, err := h.presence.ListProfiles(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(profiles), "profiles": profiles})
}

func (h *Handler) GetProfile(c echo.Context) error {
	profile, err := h.presence.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) UpsertProfile(c echo.Context) error {
	var req dto.UpsertProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if req.UserID == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and email are required")
	}

	role := constants.Role(req.Role)
	if role == "" {
		role = constants.RoleEmployee
	}

	profile := &model.Profile{
		UserID:    req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		AvatarRef: req.AvatarRef,
		Role:      role,
		Status:    constants.PresenceOffline,
	}
	if err := h.presence.UpsertProfile(c.Request().Context(), identity(c), profile); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// HasRole is the fallback role check for callers whose direct profile lookup
// is denied by access policy.
func (h *Handler) HasRole(c echo.Context) error {
	role := c.QueryParam("role")
	if role == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "role query parameter is required")
	}

	ok, err := h.presence.HasRole(c.Request().Context(), c.Param("id"), constants.Role(role))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"has_role": ok})
}

func (h *Handler) ListNotifications(c echo.Context) error {
	unreadOnly := c.QueryParam("unread") == "true"
	notifications, err := h.notifications.List(c.Request().Context(), identity(c), unreadOnly)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(notifications), "notifications": notifications})
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	if err := h.notifications.MarkRead(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RecordTimeEntry(c echo.Context) error {
	var req dto.TimeEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	entry, err := h.timesheet.Record(c.Request().Context(), identity(c), constants.TimeEntryType(req.EntryType))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) TodayTimeEntries(c echo.Context) error {
	entries, err := h.timesheet.Today(c.Request().Context(), identity(c))
	if err != nil {
		return httpError(err)
	}

	checkedIn, err := h.timesheet.CheckedIn(c.Request().Context(), identity(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count":      len(entries),
		"entries":    entries,
		"checked_in": checkedIn,
	})
}
