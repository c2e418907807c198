package errors

import "net/http"

var ErrTaskAlreadyAssigned = &Exception{
	Message:    "task already has an assignee",
	StatusCode: http.StatusConflict,
}
