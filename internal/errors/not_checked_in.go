package errors

import "net/http"

var ErrNotCheckedIn = &Exception{
	Message:    "you must be checked in before accepting field work",
	StatusCode: http.StatusUnprocessableEntity,
}
