package errors

import "net/http"

var ErrMessageNotFound = &Exception{
	Message:    "message not found",
	StatusCode: http.StatusNotFound,
}
