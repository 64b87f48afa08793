// Package provider contains model client abstractions and implementations.
package provider

import (
	"context"
	"log/slog"
	"sync"

	"github.com/modelmayhem/mayhem/internal/core"
)

// ModelClient is the uniform completion capability every backing model
// implements. Implementations post-process their responses with
// Postprocess before returning, so callers receive trimmed text already
// clipped at a sentence boundary and capped at ProviderCap characters.
type ModelClient interface {
	// Name returns the client's registry key.
	Name() string

	// Complete sends a system prompt, user message and prior history and
	// returns the model's reply text.
	Complete(ctx context.Context, systemPrompt, userMessage string, history []core.Message) (string, error)
}

// Registry manages the finite set of model clients by key.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]ModelClient
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]ModelClient),
	}
}

// Register adds a client to the registry.
func (r *Registry) Register(c ModelClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.Name()] = c
}

// Get retrieves a client by key. Unknown keys never fail: they fall back
// to the mock client with a logged warning so orchestration can proceed.
func (r *Registry) Get(key string) ModelClient {
	r.mu.RLock()
	c, ok := r.clients[key]
	r.mu.RUnlock()

	if !ok {
		slog.Warn("Unknown model key, falling back to mock", "key", key)
		return NewMock(key)
	}
	return c
}

// Keys returns all registered client keys.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.clients))
	for k := range r.clients {
		keys = append(keys, k)
	}
	return keys
}
