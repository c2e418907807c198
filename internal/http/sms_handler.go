package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "crewsync.com/crewsync/internal/data_models"
	"crewsync.com/crewsync/internal/http/validators"
)

func (h *Handler) RequestSmsCode(c echo.Context) error {
	req, err := h.sms.Request(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) RequestSmsResend(c echo.Context) error {
	req, err := h.sms.RequestResend(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) FulfillSmsCode(c echo.Context) error {
	var body dto.FulfillSmsRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateFulfillSmsRequest(&body); err != nil {
		return err
	}

	req, err := h.sms.Fulfill(c.Request().Context(), identity(c), c.Param("id"), body.Code)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) CurrentSmsCode(c echo.Context) error {
	req, err := h.sms.Current(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) SmsHistory(c echo.Context) error {
	reqs, err := h.sms.History(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(reqs), "requests": reqs})
}
