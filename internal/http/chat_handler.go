package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "crewsync.com/crewsync/internal/data_models"
	"crewsync.com/crewsync/internal/http/validators"
)

func (h *Handler) SendMessage(c echo.Context) error {
	var req dto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateSendMessageRequest(&req); err != nil {
		return err
	}

	msg, err := h.chat.Send(c.Request().Context(), identity(c), req.RecipientID, req.Message, req.ImageRef)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *Handler) ListMessages(c echo.Context) error {
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if peer := c.QueryParam("peer"); peer != "" {
		msgs, err := h.chat.ListDirect(c.Request().Context(), identity(c), peer, limit)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, echo.Map{"count": len(msgs), "messages": msgs})
	}

	msgs, err := h.chat.ListGroup(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(msgs), "messages": msgs})
}

func (h *Handler) MarkMessageRead(c echo.Context) error {
	msg, err := h.chat.MarkRead(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *Handler) MarkConversationRead(c echo.Context) error {
	affected, err := h.chat.MarkConversationRead(c.Request().Context(), identity(c), c.Param("peer"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"marked_read": affected})
}

func (h *Handler) UnreadCount(c echo.Context) error {
	n, err := h.chat.UnreadCount(c.Request().Context(), identity(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}
