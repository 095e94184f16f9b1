// Package llm defines the provider gateway contract and the registry that
// maps caller-facing selectors to the two integrated completion services.
package llm

import (
	"context"
	"errors"
	"fmt"

	"solver-relay/internal/prompt"
)

// Provider is one completion service. Complete performs a single attempt
// with no retry; the concrete client's timeout is the only deadline beyond
// the caller's context.
type Provider interface {
	Name() string
	Complete(ctx context.Context, p prompt.Prompt, maxTokens int) (string, error)
}

// ProviderError wraps any failure from a provider's completion call so it
// can be caught at the gateway boundary instead of crashing the request.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Cause returns the underlying failure message without the provider prefix.
func (e *ProviderError) Cause() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// ErrUnknownProvider is returned for any selector other than the two
// recognized values.
var ErrUnknownProvider = errors.New("unknown provider; use 'claude' or 'gpt4'")

// Providers holds the two long-lived gateway handles. Both are read-only
// after construction and safe to share across concurrent requests.
type Providers struct {
	Claude Provider
	GPT4   Provider
}

func (p *Providers) Get(selector string) (Provider, error) {
	switch selector {
	case "claude":
		return p.Claude, nil
	case "gpt4":
		return p.GPT4, nil
	default:
		return nil, ErrUnknownProvider
	}
}
