package errors

import "net/http"

var ErrProfileNotFound = &Exception{
	Message:    "profile not found",
	StatusCode: http.StatusNotFound,
}
