package reports

import (
	"context"
	"errors"
)

// ErrUnavailable signals that no report backend is configured.
var ErrUnavailable = errors.New("reports: generator unavailable")

// Generator produces an AI finance report for a user's month. The
// implementation (LLM call, prompt assembly) lives outside this
// system; the dashboard only gates access and relays the result.
type Generator interface {
	Generate(ctx context.Context, identityID, month, year string) (string, error)
}

// Unavailable is the default generator used when no backend is wired.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string, string, string) (string, error) {
	return "", ErrUnavailable
}
