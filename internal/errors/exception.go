// Package errors defines the typed business-rule failures the HTTP layer maps
// onto response statuses, one sentinel per file.
package errors

import (
	stderrors "errors"
	"net/http"
)

// Exception is a business-rule failure carrying its response status. Handlers
// surface Message verbatim; anything that is not an Exception becomes a 500.
type Exception struct {
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

// StatusCode resolves the response status for err, defaulting to 500 for
// unclassified errors.
func StatusCode(err error) int {
	var ex *Exception
	if stderrors.As(err, &ex) {
		return ex.StatusCode
	}
	return http.StatusInternalServerError
}
