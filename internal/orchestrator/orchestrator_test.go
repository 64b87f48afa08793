package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/modelmayhem/mayhem/internal/core"
	"github.com/modelmayhem/mayhem/internal/prompt"
	"github.com/modelmayhem/mayhem/internal/provider"
)

// scriptedClient records every call and replies via a script function.
type scriptedClient struct {
	name string

	mu    sync.Mutex
	calls []clientCall
	reply func(n int, systemPrompt, userMessage string) (string, error)
}

type clientCall struct {
	SystemPrompt string
	UserMessage  string
	History      []core.Message
}

func (c *scriptedClient) Name() string { return c.name }

func (c *scriptedClient) Complete(ctx context.Context, systemPrompt, userMessage string, history []core.Message) (string, error) {
	c.mu.Lock()
	n := len(c.calls)
	c.calls = append(c.calls, clientCall{SystemPrompt: systemPrompt, UserMessage: userMessage, History: history})
	c.mu.Unlock()

	if c.reply != nil {
		return c.reply(n, systemPrompt, userMessage)
	}
	return fmt.Sprintf("%s reply %d", c.name, n), nil
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *scriptedClient) call(n int) clientCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[n]
}

func setupOrchestrator(clients ...*scriptedClient) (*Orchestrator, *provider.Registry) {
	registry := provider.NewRegistry()
	for _, c := range clients {
		registry.Register(c)
	}
	return New(registry, prompt.Composer{}), registry
}

func rosterClients() (*scriptedClient, *scriptedClient, *scriptedClient) {
	return &scriptedClient{name: "groq1"}, &scriptedClient{name: "groq2"}, &scriptedClient{name: "groq3"}
}

func TestRunAgents(t *testing.T) {
	c1, c2, c3 := rosterClients()
	orch, _ := setupOrchestrator(c1, c2, c3)

	results := orch.RunAgents(context.Background(), "Is cereal a soup?", core.ModeRoast, nil)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantNames := []string{"GPT-5 nano", "Gemma 2", "LLaMA 3.3"}
	for i, r := range results {
		if r.AgentName != wantNames[i] {
			t.Errorf("result %d agent = %q, want %q", i, r.AgentName, wantNames[i])
		}
		if r.Role != core.RoleAssistant {
			t.Errorf("result %d role = %q, want assistant", i, r.Role)
		}
	}

	for _, c := range []*scriptedClient{c1, c2, c3} {
		if c.callCount() != 1 {
			t.Errorf("client %s called %d times, want 1", c.name, c.callCount())
		}
	}
}

func TestRunAgentsContextAccumulates(t *testing.T) {
	c1, c2, c3 := rosterClients()
	orch, _ := setupOrchestrator(c1, c2, c3)

	orch.RunAgents(context.Background(), "Is cereal a soup?", core.ModeRoast, nil)

	// Primary sees only the raw user message
	if got := c1.call(0).UserMessage; got != "Is cereal a soup?" {
		t.Errorf("primary context = %q, want the raw user message", got)
	}

	// Secondary sees the user message plus the primary's response
	wantSecond := "User said: \"Is cereal a soup?\"\n\n" +
		"Conversation so far:\n" +
		"GPT-5 nano: groq1 reply 0\n\n" +
		"Now it is your turn to respond."
	if got := c2.call(0).UserMessage; got != wantSecond {
		t.Errorf("secondary context mismatch:\ngot  %q\nwant %q", got, wantSecond)
	}

	// Tertiary sees both prior responses
	wantThird := "User said: \"Is cereal a soup?\"\n\n" +
		"Conversation so far:\n" +
		"GPT-5 nano: groq1 reply 0\n" +
		"Gemma 2: groq2 reply 0\n\n" +
		"Now it is your turn to respond."
	if got := c3.call(0).UserMessage; got != wantThird {
		t.Errorf("tertiary context mismatch:\ngot  %q\nwant %q", got, wantThird)
	}
}

func TestRunAgentsFirstTurnPromptOnlyForPrimary(t *testing.T) {
	c1, c2, c3 := rosterClients()
	orch, _ := setupOrchestrator(c1, c2, c3)

	orch.RunAgents(context.Background(), "hi", core.ModeRoast, nil)

	if !strings.Contains(c1.call(0).SystemPrompt, "Answer the user's message directly") {
		t.Error("primary missing first-turn instruction")
	}
	for _, c := range []*scriptedClient{c2, c3} {
		if strings.Contains(c.call(0).SystemPrompt, "Answer the user's message directly") {
			t.Errorf("client %s got the first-turn instruction", c.name)
		}
	}
}

func TestRunAgentsFailureIsolation(t *testing.T) {
	c1, c2, c3 := rosterClients()
	c2.reply = func(int, string, string) (string, error) {
		return "", errors.New("rate limited")
	}
	orch, _ := setupOrchestrator(c1, c2, c3)

	results := orch.RunAgents(context.Background(), "hi", core.ModeRoast, nil)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[1].Text != UnavailableSentinel {
		t.Errorf("failed agent text = %q, want sentinel", results[1].Text)
	}
	if results[0].Text == UnavailableSentinel || results[2].Text == UnavailableSentinel {
		t.Error("healthy agents were replaced with the sentinel")
	}

	// The tertiary still sees the sentinel in its context
	if !strings.Contains(c3.call(0).UserMessage, UnavailableSentinel) {
		t.Error("sentinel missing from tertiary context")
	}
}

func TestRunAgentsTruncation(t *testing.T) {
	c1, c2, c3 := rosterClients()
	long := strings.Repeat("x", 1500)
	c1.reply = func(int, string, string) (string, error) { return long, nil }
	orch, _ := setupOrchestrator(c1, c2, c3)

	results := orch.RunAgents(context.Background(), "hi", core.ModeRoast, nil)

	if got := len([]rune(results[0].Text)); got != MaxResponseChars {
		t.Errorf("truncated length = %d, want %d", got, MaxResponseChars)
	}
}
