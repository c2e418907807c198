package errors

import "net/http"

var ErrNoDocuments = &Exception{
	Message:    "at least one supporting document must be uploaded before completing",
	StatusCode: http.StatusUnprocessableEntity,
}
