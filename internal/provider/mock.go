package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelmayhem/mayhem/internal/core"
)

// Mock is a client that generates simulated responses for testing and
// for unknown-key fallback.
type Mock struct {
	name string
}

// NewMock creates a new mock client. An empty name registers as "mock".
func NewMock(name string) *Mock {
	if name == "" {
		name = "mock"
	}
	return &Mock{name: name}
}

// Name returns the client's registry key.
func (m *Mock) Name() string { return m.name }

// Complete echoes the persona hint and the start of the user message.
func (m *Mock) Complete(ctx context.Context, systemPrompt, userMessage string, _ []core.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	hint, _, _ := strings.Cut(systemPrompt, ".")
	snippet := userMessage
	if len(snippet) > 40 {
		snippet = snippet[:40]
	}
	return fmt.Sprintf("[MOCK] %s. Responding to: \"%s...\"", hint, snippet), nil
}
