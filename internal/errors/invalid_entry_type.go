package errors

import "net/http"

var ErrInvalidEntryType = &Exception{
	Message:    "invalid time entry type",
	StatusCode: http.StatusBadRequest,
}
