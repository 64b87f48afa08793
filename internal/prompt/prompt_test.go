package prompt

import (
	"strings"
	"testing"

	"github.com/modelmayhem/mayhem/internal/core"
	"github.com/modelmayhem/mayhem/internal/persona"
)

func TestSystemPrompt(t *testing.T) {
	var c Composer

	t.Run("ContainsAllSections", func(t *testing.T) {
		got := c.SystemPrompt(core.ModeRoast, "gpt5-nano", true)

		if !strings.Contains(got, "arrogant philosopher") {
			t.Error("missing persona fragment")
		}
		if !strings.Contains(got, "roast") {
			t.Error("missing mode instruction")
		}
		if !strings.Contains(got, "Answer the user's message directly") {
			t.Error("missing first-turn instruction")
		}
		if !strings.Contains(got, "strictly under 30 words") {
			t.Error("missing brevity tail")
		}
	})

	t.Run("FirstAndLaterTurnsDiffer", func(t *testing.T) {
		first := c.SystemPrompt(core.ModeDebate, "gemma2", true)
		later := c.SystemPrompt(core.ModeDebate, "gemma2", false)

		if first == later {
			t.Error("first and later turn prompts are identical")
		}
		if !strings.Contains(later, "logic is flawed") {
			t.Error("later turn missing attack instruction")
		}
		if strings.Contains(later, "Answer the user's message directly") {
			t.Error("later turn carries the first-turn instruction")
		}
	})

	t.Run("UnknownPersonaNeverEmpty", func(t *testing.T) {
		got := c.SystemPrompt(core.ModeRoast, "nonexistent", true)
		if got == "" {
			t.Fatal("prompt is empty for unknown persona")
		}
		if !strings.Contains(got, "strictly under 30 words") {
			t.Error("unknown persona lost the brevity tail")
		}
	})

	t.Run("UnknownModeNeverEmpty", func(t *testing.T) {
		got := c.SystemPrompt(core.Mode("opera"), "gpt5-nano", false)
		if !strings.Contains(got, "arrogant philosopher") {
			t.Error("unknown mode lost the persona fragment")
		}
	})

	t.Run("EveryModeHasInstruction", func(t *testing.T) {
		for _, mode := range core.Modes() {
			with := c.SystemPrompt(mode, "gpt5-nano", true)
			without := c.SystemPrompt(core.Mode("opera"), "gpt5-nano", true)
			if with == without {
				t.Errorf("mode %s contributes no tone instruction", mode)
			}
		}
	})
}

type fragmentStore map[string]*persona.StoredFragment

func (s fragmentStore) GetPersona(id string) (*persona.StoredFragment, error) {
	return s[id], nil
}

func TestSystemPromptWithStore(t *testing.T) {
	c := Composer{Store: fragmentStore{
		"pirate": {ID: "pirate", Name: "Pirate", Fragment: "You are a salty pirate. "},
	}}

	got := c.SystemPrompt(core.ModeRoast, "pirate", true)
	if !strings.Contains(got, "salty pirate") {
		t.Error("custom fragment from store not used")
	}

	// Builtins still win over the store
	got = c.SystemPrompt(core.ModeRoast, "gpt5-nano", true)
	if !strings.Contains(got, "arrogant philosopher") {
		t.Error("builtin fragment lost when a store is configured")
	}
}

func TestContextMessage(t *testing.T) {
	var c Composer

	history := []core.Message{
		{Role: core.RoleAssistant, Content: "Cereal is clearly soup.", AgentName: "GPT-5 nano"},
		{Role: core.RoleAssistant, Content: "That is absurd.", AgentName: "Gemma 2"},
	}

	t.Run("FirstTurnVerbatim", func(t *testing.T) {
		got := c.ContextMessage("Is cereal a soup?", history, 0)
		if got != "Is cereal a soup?" {
			t.Errorf("got %q, want the original prompt verbatim", got)
		}
	})

	t.Run("LaterTurnQuotesLastSpeaker", func(t *testing.T) {
		got := c.ContextMessage("Is cereal a soup?", history, 2)
		want := `Gemma 2 said: "That is absurd."`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("EmptyHistoryFiller", func(t *testing.T) {
		got := c.ContextMessage("Is cereal a soup?", nil, 3)
		if got != ContinueFiller {
			t.Errorf("got %q, want %q", got, ContinueFiller)
		}
	})

	t.Run("UnattributedContentRaw", func(t *testing.T) {
		h := []core.Message{{Role: core.RoleUser, Content: "Just the text."}}
		got := c.ContextMessage("x", h, 1)
		if got != "Just the text." {
			t.Errorf("got %q, want raw content", got)
		}
	})

	t.Run("LegacyPrefixStripped", func(t *testing.T) {
		h := []core.Message{{Role: core.RoleAssistant, Content: "[Gemma 2]: No chance.", AgentName: "Gemma 2"}}
		got := c.ContextMessage("x", h, 1)
		want := `Gemma 2 said: "No chance."`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestStripSpeakerPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bracketed prefix", "[GPT-5 nano]: hello there", "hello there"},
		{"bare name prefix", "Gemma 2: hello there", "hello there"},
		{"no prefix", "hello there", "hello there"},
		{"leading whitespace", "  LLaMA 3.3: sup", "sup"},
		{"greedy short-name match", "The ratio is 2:1 exactly", "1 exactly"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripSpeakerPrefix(tt.in); got != tt.want {
				t.Errorf("StripSpeakerPrefix(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
