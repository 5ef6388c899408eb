package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nexusai/broker/internal/httpclient"
)

// ErrKind partitions provider failures by how the dispatcher should
// react to them.
type ErrKind int

const (
	// ErrTransient covers timeouts, transport failures and 5xx replies.
	// The dispatcher moves on to the next candidate.
	ErrTransient ErrKind = iota
	// ErrAuth covers 401/403. The provider is disabled for the rest of
	// the process lifetime.
	ErrAuth
	// ErrRateLimited covers 429 from the upstream itself.
	ErrRateLimited
	// ErrConfig covers invalid static configuration detected at call time.
	ErrConfig
)

func (k ErrKind) String() string {
	switch k {
	case ErrAuth:
		return "auth"
	case ErrRateLimited:
		return "rate_limited"
	case ErrConfig:
		return "config"
	default:
		return "transient"
	}
}

// Error wraps a provider failure with its classification.
type Error struct {
	Kind     ErrKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps a raw adapter error onto the taxonomy. Upstream HTTP
// status codes decide the kind; anything unrecognized is transient so
// the fallback chain keeps moving.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	kind := ErrTransient

	var upstream *httpclient.UpstreamError
	switch {
	case errors.As(err, &upstream):
		switch {
		case upstream.StatusCode == http.StatusUnauthorized,
			upstream.StatusCode == http.StatusForbidden:
			kind = ErrAuth
		case upstream.StatusCode == http.StatusTooManyRequests:
			kind = ErrRateLimited
		}
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrTransient
	}

	return &Error{Kind: kind, Provider: provider, Err: err}
}
