// Package storage persists custom persona fragments. Conversations are
// deliberately not stored; session state lives in memory only.
package storage

import (
	"github.com/modelmayhem/mayhem/internal/persona"
)

// Storage defines the persistence interface for custom personas.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	// GetPersona returns a custom persona fragment by ID, or nil when
	// not found.
	GetPersona(id string) (*persona.StoredFragment, error)

	// SavePersona inserts or replaces a custom persona fragment.
	SavePersona(f *persona.StoredFragment) error

	// ListPersonas returns all custom persona fragments.
	ListPersonas() ([]*persona.StoredFragment, error)

	// DeletePersona removes a custom persona fragment.
	DeletePersona(id string) error
}
