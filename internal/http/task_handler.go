package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crewsync.com/crewsync/internal/constants"
	dto "crewsync.com/crewsync/internal/data_models"
	apperrors "crewsync.com/crewsync/internal/errors"
	"crewsync.com/crewsync/internal/http/validators"
	repository "crewsync.com/crewsync/internal/repositories"
)

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.tasks.Create(c.Request().Context(), identity(c), repository.CreateTaskParams{
		Title:               req.Title,
		Description:         req.Description,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		Deadline:            req.Deadline,
		Priority:            constants.TaskPriority(req.Priority),
		SpecialCompensation: req.SpecialCompensation,
		TestEmail:           req.TestEmail,
		TestPassword:        req.TestPassword,
		WebIdentURL:         req.WebIdentURL,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return httpError(apperrors.ErrTaskIDRequired)
	}

	task, err := h.tasks.Get(c.Request().Context(), identity(c), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	tasks, err := h.tasks.List(c.Request().Context(), identity(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) AssignTask(c echo.Context) error {
	var req dto.AssignTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateAssignTaskRequest(&req); err != nil {
		return err
	}

	assignment, err := h.tasks.Assign(c.Request().Context(), identity(c), c.Param("id"), req.UserID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, assignment)
}

func (h *Handler) AcceptTask(c echo.Context) error {
	task, err := h.tasks.Accept(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateProgress(c echo.Context) error {
	var req dto.ProgressUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	assignment, err := h.tasks.UpdateProgress(c.Request().Context(), identity(c),
		c.Param("id"), req.ProgressNotes, req.WorkflowStep, req.WorkflowDigital)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, assignment)
}

func (h *Handler) CompleteTask(c echo.Context) error {
	var req dto.CompleteTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	task, err := h.tasks.Complete(c.Request().Context(), identity(c), c.Param("id"), req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ApproveTask(c echo.Context) error {
	task, err := h.tasks.Approve(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ReturnTask(c echo.Context) error {
	task, err := h.tasks.Return(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CancelTask(c echo.Context) error {
	task, err := h.tasks.Cancel(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	if err := h.tasks.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddDocument(c echo.Context) error {
	var req dto.AddDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateAddDocumentRequest(&req); err != nil {
		return err
	}

	doc, err := h.tasks.AddDocument(c.Request().Context(), identity(c), c.Param("id"), req.FileName, req.BlobRef)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *Handler) ListDocuments(c echo.Context) error {
	docs, err := h.tasks.ListDocuments(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(docs), "documents": docs})
}

func (h *Handler) Stats(c echo.Context) error {
	counts, err := h.tasks.Stats(c.Request().Context(), identity(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *Handler) ListAssignments(c echo.Context) error {
	assignments, err := h.tasks.ListAssignments(c.Request().Context(), identity(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(assignments), "assignments": assignments})
}
