package errors

import "net/http"

var ErrRequestNotFound = &Exception{
	Message:    "sms code request not found",
	StatusCode: http.StatusNotFound,
}
