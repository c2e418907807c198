package errors

import "net/http"

var ErrInvalidTransition = &Exception{
	Message:    "task status does not allow this transition",
	StatusCode: http.StatusConflict,
}
