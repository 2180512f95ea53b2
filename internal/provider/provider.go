// Package provider talks to the external place-information API.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Record is one provider place record as decoded JSON.
type Record map[string]any

// ErrNotOK wraps a non-success provider status. The pipeline treats it as
// "no data this run", never as fatal.
var ErrNotOK = errors.New("provider status not OK")

// StatusError carries the provider's reason code.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider status %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("provider status %s", e.Status)
}

func (e *StatusError) Unwrap() error { return ErrNotOK }

// Client fetches place details in a given language. fields narrows the
// response to the listed top-level fields; an empty list requests the
// provider default.
type Client interface {
	Details(ctx context.Context, placeID, language string, fields []string) (Record, error)
}
