package intercom

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when Intercom answers with a non 2xx status.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"status_code"`

	// Type is the error list type reported by Intercom.
	Type string `json:"type,omitempty"`

	// RequestID is the Intercom request ID, useful when raising a support case.
	RequestID string `json:"request_id,omitempty"`

	// Errors are the errors reported by Intercom.
	Errors []ErrorDetail `json:"errors,omitempty"`

	// Body is the raw response body.
	Body string `json:"-"`
}

// ErrorDetail is a single error reported by Intercom.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("intercom: status %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("intercom: status %d", e.StatusCode)
}

// Message returns the first error message reported by Intercom.
func (e *APIError) Message() string {
	for _, d := range e.Errors {
		if d.Message != "" {
			return d.Message
		}
	}
	return ""
}

// IsNotFound reports whether err is an Intercom 404.
func IsNotFound(err error) bool {
	apiErr := new(APIError)
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
