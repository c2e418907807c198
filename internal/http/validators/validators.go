package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crewsync.com/crewsync/internal/constants"
	dto "crewsync.com/crewsync/internal/data_models"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if r.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if r.CustomerName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "customer_name is required")
	}
	if r.Priority == "" {
		r.Priority = string(constants.PriorityMedium)
	}
	if !constants.ValidPriority(constants.TaskPriority(r.Priority)) {
		return echo.NewHTTPError(http.StatusBadRequest, "priority must be one of low, medium, high, urgent")
	}
	return nil
}

func ValidateAssignTaskRequest(r *dto.AssignTaskRequest) error {
	if r.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	return nil
}

func ValidateSendMessageRequest(r *dto.SendMessageRequest) error {
	if r.Message == "" && r.ImageRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message or image_ref is required")
	}
	if r.RecipientID != nil && *r.RecipientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient_id must not be empty for direct messages")
	}
	return nil
}

func ValidateFulfillSmsRequest(r *dto.FulfillSmsRequest) error {
	if r.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}
	return nil
}

func ValidateAddDocumentRequest(r *dto.AddDocumentRequest) error {
	if r.FileName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file_name is required")
	}
	if r.BlobRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "blob_ref is required")
	}
	return nil
}
