package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport wraps failures where no HTTP response was received.
	ErrTransport = errors.New("network error")
	// ErrUnauthorized matches any RejectedError carrying HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// RejectedError is returned when the API answered with a refusal.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("api rejected request (%d): %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) detect authentication rejections.
func (e *RejectedError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message extracts the user-facing message from a RejectedError, or returns
// fallback for any other error.
func Message(err error, fallback string) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return fallback
}
