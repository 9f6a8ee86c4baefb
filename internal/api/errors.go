package api

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx reply from the service. Message is the server's
// error text verbatim; it is what gets shown to the user.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// AsAPIError checks if an error is an APIError and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsDuplicateName reports whether err is the service's duplicate-name
// rejection. This is the one server error treated as success-with-notice by
// the upload workflow.
func IsDuplicateName(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && strings.Contains(ae.Message, "already exists")
}

// IsUnauthorized reports whether the service rejected the access token.
func IsUnauthorized(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.Status == 401
}
