package eloapi

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Match with errors.Is; use errors.As for the typed detail.
var (
	ErrNetwork = errors.New("network error")
	ErrAPI     = errors.New("api error")
)

// NetworkError reports that no response was obtained (unreachable host,
// timeout, cancelled context).
type NetworkError struct {
	EntityID string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("network error for entity %s: %v", e.EntityID, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNetwork) hold.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// APIError reports a response that indicates failure, or a success response
// whose payload could not be used.
type APIError struct {
	EntityID   string
	StatusCode int
	// Message is the server-provided error text, or the status text.
	Message string
}

func (e *APIError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error for entity %s (%d): %s", e.EntityID, e.StatusCode, e.Message)
}

// Is makes errors.Is(err, ErrAPI) hold.
func (e *APIError) Is(target error) bool { return target == ErrAPI }
