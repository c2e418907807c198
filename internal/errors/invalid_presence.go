package errors

import "net/http"

var ErrInvalidPresence = &Exception{
	Message:    "invalid presence status",
	StatusCode: http.StatusBadRequest,
}
