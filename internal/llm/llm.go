// Package llm calls chat-completion upstreams. Each Complete is exactly one
// outbound request; nothing is retried or cached.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoContent means the upstream answered successfully but the generated text
// was missing from the payload.
var ErrNoContent = errors.New("llm: response has no message content")

// Completer produces a single reply for one user message under a system persona.
type Completer interface {
	Complete(ctx context.Context, system, message string) (string, error)
}

// StatusError is a non-success HTTP response from the upstream.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm upstream returned status %d", e.StatusCode)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
