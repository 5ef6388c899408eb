package broker

import (
	"fmt"
	"strings"
)

// AttemptFailure records why one (provider, model) candidate did not
// produce a response.
type AttemptFailure struct {
	Provider string
	Model    string
	Reason   string
}

// ExhaustedError is returned when every candidate pair failed or was
// skipped. It carries the full per-candidate account.
type ExhaustedError struct {
	Attempts []AttemptFailure
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no providers available"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s/%s: %s", a.Provider, a.Model, a.Reason))
	}
	return "all providers exhausted: " + strings.Join(parts, "; ")
}
