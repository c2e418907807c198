package errors

import "net/http"

var ErrNotAssignee = &Exception{
	Message:    "caller is not the assignee of this task",
	StatusCode: http.StatusForbidden,
}
