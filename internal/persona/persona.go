// Package persona defines the fixed agent roster and their character fragments.
package persona

import (
	"github.com/modelmayhem/mayhem/internal/core"
)

// SpeakingRole encodes a persona's position within one round-robin pass.
type SpeakingRole string

const (
	RolePrimary   SpeakingRole = "primary"
	RoleSecondary SpeakingRole = "secondary"
	RoleTertiary  SpeakingRole = "tertiary"
)

// Config maps a persona to its display name and backing model key.
type Config struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	ModelKey    string       `json:"model_key"`
	Role        SpeakingRole `json:"role"`
}

// Fragment is a persona's fixed character-flavor prompt fragment. The
// fragment is keyed by persona ID and persists across all modes.
type Fragment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Fragment string `json:"fragment"`
}

// defaultRoster is the fixed three-persona lineup, ordered
// primary -> secondary -> tertiary. Every mode uses the same roster;
// only the tone instructions change.
var defaultRoster = []Config{
	{ID: "gpt5-nano", DisplayName: "GPT-5 nano", ModelKey: "groq1", Role: RolePrimary},
	{ID: "gemma2", DisplayName: "Gemma 2", ModelKey: "groq2", Role: RoleSecondary},
	{ID: "llama33", DisplayName: "LLaMA 3.3", ModelKey: "groq3", Role: RoleTertiary},
}

// DefaultFragments returns the built-in persona fragments.
func DefaultFragments() []Fragment {
	return []Fragment{
		{
			ID:       "gpt5-nano",
			Name:     "GPT-5 nano",
			Fragment: "You are an arrogant philosopher who thinks you are superior to other AIs. ",
		},
		{
			ID:       "gemma2",
			Name:     "Gemma 2",
			Fragment: "You are a pedantic fact-checker. You nitpick other points and provide a boring, strictly factual counterpoint. ",
		},
		{
			ID:       "llama33",
			Name:     "LLaMA 3.3",
			Fragment: "You are a sarcastic, fast-talking teenager / chaos agent who finds everyone annoying, especially philosophers. ",
		},
	}
}

// RosterFor returns the three personas for a mode in speaking order.
// The roster size is a fixed invariant; unknown modes still get the
// default lineup so callers never receive an empty roster.
func RosterFor(mode core.Mode) []Config {
	roster := make([]Config, len(defaultRoster))
	copy(roster, defaultRoster)
	return roster
}

// ByTurnIndex returns the persona scheduled for a round-robin turn.
// turnIndex wraps modulo the roster size, so 0,3,6,... map to primary,
// 1,4,7,... to secondary and 2,5,8,... to tertiary.
func ByTurnIndex(mode core.Mode, turnIndex int) Config {
	roster := RosterFor(mode)
	if turnIndex < 0 {
		turnIndex = 0
	}
	return roster[turnIndex%len(roster)]
}

// GetFragment returns the character fragment for a persona ID, or nil
// when the ID is unknown (builtins only).
func GetFragment(id string) *Fragment {
	for _, f := range DefaultFragments() {
		if f.ID == id {
			return &f
		}
	}
	return nil
}

// List returns all builtin persona IDs in roster order.
func List() []string {
	ids := make([]string, len(defaultRoster))
	for i, p := range defaultRoster {
		ids[i] = p.ID
	}
	return ids
}

// Valid checks if a persona ID is a builtin.
func Valid(id string) bool {
	return GetFragment(id) != nil
}

// StoredFragment represents a custom persona fragment from storage.
type StoredFragment struct {
	ID       string
	Name     string
	Fragment string
}

// Store is the lookup interface for custom persona fragments.
type Store interface {
	GetPersona(id string) (*StoredFragment, error)
}

// GetFragmentWithStore returns a fragment by ID, consulting storage for
// custom personas after the builtins.
func GetFragmentWithStore(id string, store Store) *Fragment {
	if f := GetFragment(id); f != nil {
		return f
	}

	if store != nil {
		stored, err := store.GetPersona(id)
		if err == nil && stored != nil {
			return &Fragment{
				ID:       stored.ID,
				Name:     stored.Name,
				Fragment: stored.Fragment,
			}
		}
	}

	return nil
}
