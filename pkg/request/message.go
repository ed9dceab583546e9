package request

import "fmt"

// Message represents a message response.
type Message struct {
	Message string `json:"message"`
}

// NewMessage creates a new Message.
func NewMessage(message string, args ...any) *Message {
	var msg string
	if len(args) > 0 {
		msg = fmt.Sprintf(message, args...)
	} else {
		msg = message
	}
	return &Message{
		Message: msg,
	}
}

// Result is the success/failure envelope returned by the bridge endpoints. Details carries upstream
// diagnostics and is only populated when the caller is allowed to see them.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// NewSuccess creates a successful Result.
func NewSuccess(message string) *Result {
	return &Result{
		Success: true,
		Message: message,
	}
}

// NewFailure creates a failed Result from an error. The message is a human readable summary.
func NewFailure(message string, err error) *Result {
	r := &Result{
		Success: false,
		Message: message,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
