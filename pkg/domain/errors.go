package domain

import (
	"errors"
	"fmt"
)

// ErrFunnelNotFound is returned when a funnel is absent or unpublished.
var ErrFunnelNotFound = errors.New("funnel not found")

// ErrFetchFailed is returned when the definition service answers with a non-success status.
var ErrFetchFailed = errors.New("funnel fetch failed")

// ErrConnection is returned when the definition service cannot be reached.
var ErrConnection = errors.New("connection failure")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownElementType is returned when decoding props of an element whose type is not known.
var ErrUnknownElementType = errors.New("unknown element type")

// FetchKind classifies definition-fetch failures.
type FetchKind int

const (
	FetchNotFound FetchKind = iota + 1
	FetchFailed
	FetchConnection
)

// FetchError is returned when the funnel definition cannot be loaded.
type FetchError struct {
	Kind   FetchKind
	UUID   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchNotFound:
		return fmt.Sprintf("funnel %s not found", e.UUID)
	case FetchConnection:
		return fmt.Sprintf("funnel %s: connection failure: %v", e.UUID, e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("funnel %s: fetch failed (status %d): %v", e.UUID, e.Status, e.Err)
		}
		return fmt.Sprintf("funnel %s: fetch failed (status %d)", e.UUID, e.Status)
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	var kind error
	switch e.Kind {
	case FetchNotFound:
		kind = ErrFunnelNotFound
	case FetchConnection:
		kind = ErrConnection
	default:
		kind = ErrFetchFailed
	}
	if e.Err == nil {
		return []error{kind}
	}
	return []error{kind, e.Err}
}

// VisitorMessage maps a definition-load error to the static message shown in
// place of the funnel.
func VisitorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFunnelNotFound):
		return "This funnel does not exist or is not published."
	case errors.Is(err, ErrConnection):
		return "We could not connect. Please check your connection and try again."
	default:
		return "Something went wrong while loading this funnel."
	}
}
