package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized marks a 401 response. Callers usually do not need to handle
// it themselves: the client already cleared the durable token and fired the
// unauthorized callback by the time this error is returned.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response surfaced with the server-provided message
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsUnauthorized reports whether err stems from a 401 response
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// ErrorMessage extracts the server-provided message from an API error, or
// falls back to the plain error text for network and timeout failures.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
