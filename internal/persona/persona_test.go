package persona

import (
	"testing"

	"github.com/modelmayhem/mayhem/internal/core"
)

func TestRosterFor(t *testing.T) {
	for _, mode := range core.Modes() {
		roster := RosterFor(mode)
		if len(roster) != 3 {
			t.Fatalf("mode %s: roster size = %d, want 3", mode, len(roster))
		}
		if roster[0].Role != RolePrimary || roster[1].Role != RoleSecondary || roster[2].Role != RoleTertiary {
			t.Errorf("mode %s: roster out of speaking order", mode)
		}
	}

	// Unknown modes still get the full lineup
	roster := RosterFor(core.Mode("opera"))
	if len(roster) != 3 {
		t.Errorf("unknown mode roster size = %d, want 3", len(roster))
	}
}

func TestRosterForReturnsCopy(t *testing.T) {
	a := RosterFor(core.ModeRoast)
	a[0].DisplayName = "tampered"

	b := RosterFor(core.ModeRoast)
	if b[0].DisplayName == "tampered" {
		t.Error("RosterFor returned shared state")
	}
}

func TestByTurnIndex(t *testing.T) {
	tests := []struct {
		turnIndex int
		wantID    string
	}{
		{0, "gpt5-nano"},
		{1, "gemma2"},
		{2, "llama33"},
		{3, "gpt5-nano"},
		{7, "gemma2"},
		{14, "llama33"},
		{-1, "gpt5-nano"},
	}

	for _, tt := range tests {
		got := ByTurnIndex(core.ModeDebate, tt.turnIndex)
		if got.ID != tt.wantID {
			t.Errorf("ByTurnIndex(%d) = %s, want %s", tt.turnIndex, got.ID, tt.wantID)
		}
	}
}

func TestGetFragment(t *testing.T) {
	if f := GetFragment("gpt5-nano"); f == nil || f.Fragment == "" {
		t.Error("builtin fragment missing")
	}
	if f := GetFragment("nonexistent"); f != nil {
		t.Error("expected nil for unknown persona")
	}
}

func TestFragmentsPersistAcrossModes(t *testing.T) {
	// Fragments are keyed by persona only; the roster is mode-independent
	// so the same ID must resolve the same fragment regardless of mode.
	for _, id := range List() {
		f := GetFragment(id)
		if f == nil {
			t.Fatalf("roster persona %s has no fragment", id)
		}
	}
}

type stubStore struct {
	f *StoredFragment
}

func (s stubStore) GetPersona(id string) (*StoredFragment, error) {
	if s.f != nil && s.f.ID == id {
		return s.f, nil
	}
	return nil, nil
}

func TestGetFragmentWithStore(t *testing.T) {
	store := stubStore{f: &StoredFragment{ID: "pirate", Name: "Pirate", Fragment: "Arr."}}

	t.Run("BuiltinWins", func(t *testing.T) {
		f := GetFragmentWithStore("gpt5-nano", store)
		if f == nil || f.ID != "gpt5-nano" {
			t.Fatal("builtin lookup failed with store present")
		}
	})

	t.Run("CustomFromStore", func(t *testing.T) {
		f := GetFragmentWithStore("pirate", store)
		if f == nil || f.Fragment != "Arr." {
			t.Fatal("custom fragment not resolved from store")
		}
	})

	t.Run("UnknownNil", func(t *testing.T) {
		if f := GetFragmentWithStore("nonexistent", store); f != nil {
			t.Error("expected nil for unknown persona")
		}
	})

	t.Run("NilStore", func(t *testing.T) {
		if f := GetFragmentWithStore("pirate", nil); f != nil {
			t.Error("expected nil custom lookup without a store")
		}
	})
}
