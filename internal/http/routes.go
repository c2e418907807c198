package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "crewsync.com/crewsync/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, jwtSecret string, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	api := e.Group("", middleware.JWTAuth(jwtSecret))
	admin := api.Group("", middleware.RequireAdmin())

	// Task lifecycle
	admin.POST("/tasks", h.CreateTask)
	api.GET("/tasks", h.ListTasks)
	api.GET("/tasks/:id", h.GetTask)
	admin.POST("/tasks/:id/assign", h.AssignTask)
	api.POST("/tasks/:id/accept", h.AcceptTask)
	api.PATCH("/tasks/:id/progress", h.UpdateProgress)
	api.POST("/tasks/:id/complete", h.CompleteTask)
	admin.POST("/tasks/:id/approve", h.ApproveTask)
	api.POST("/tasks/:id/return", h.ReturnTask)
	admin.POST("/tasks/:id/cancel", h.CancelTask)
	admin.DELETE("/tasks/:id", h.DeleteTask)
	admin.GET("/assignments", h.ListAssignments)
	admin.GET("/stats", h.Stats)

	// Supporting documents (blob storage is external; metadata only)
	api.POST("/tasks/:id/documents", h.AddDocument)
	api.GET("/tasks/:id/documents", h.ListDocuments)

	// SMS code exchange
	api.POST("/tasks/:id/sms-requests", h.RequestSmsCode)
	api.POST("/tasks/:id/sms-requests/resend", h.RequestSmsResend)
	admin.POST("/tasks/:id/sms-requests/fulfill", h.FulfillSmsCode)
	api.GET("/tasks/:id/sms-code", h.CurrentSmsCode)
	api.GET("/tasks/:id/sms-requests", h.SmsHistory)

	// Chat
	api.POST("/messages", h.SendMessage)
	api.GET("/messages", h.ListMessages)
	api.POST("/messages/:id/read", h.MarkMessageRead)
	api.POST("/conversations/:peer/read", h.MarkConversationRead)
	api.GET("/messages/unread-count", h.UnreadCount)

	// Presence and profiles
	api.PUT("/presence", h.SetPresence)
	api.POST("/signout", h.SignOut)
	api.GET("/profiles", h.ListProfiles)
	api.GET("/profiles/:id", h.GetProfile)
	admin.PUT("/profiles", h.UpsertProfile)
	api.GET("/users/:id/has-role", h.HasRole)

	// Notifications
	api.GET("/notifications", h.ListNotifications)
	api.POST("/notifications/:id/read", h.MarkNotificationRead)

	// Time tracking
	api.POST("/time-entries", h.RecordTimeEntry)
	api.GET("/time-entries/today", h.TodayTimeEntries)

	// Realtime event stream
	api.GET("/events", h.StreamEvents)
}
