// Package core contains the core domain types for mayhem.
package core

import (
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one turn in a conversation. Messages are appended,
// never mutated. AgentName identifies the persona that authored an
// assistant message; it is empty for user messages.
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	AgentName string `json:"agentName,omitempty"`
}

// AgentResponse is one persona's reply within a round-robin pass.
type AgentResponse struct {
	AgentName string `json:"agentName"`
	Text      string `json:"text"`
	Role      Role   `json:"role"`
}

// Mode selects the tone instructions injected into prompts. Every mode
// maps to the same fixed roster of 3 personas.
type Mode string

const (
	ModeAcademic Mode = "academic"
	ModeFlirt    Mode = "flirt"
	ModeRoast    Mode = "roast"
	ModeStory    Mode = "story"
	ModeDebate   Mode = "debate"
)

// Modes lists every known mode in display order.
func Modes() []Mode {
	return []Mode{ModeAcademic, ModeFlirt, ModeRoast, ModeStory, ModeDebate}
}

// ValidMode reports whether m names a known mode.
func ValidMode(m Mode) bool {
	for _, known := range Modes() {
		if m == known {
			return true
		}
	}
	return false
}

// ChatRequest is the body accepted by the single-shot chat endpoint.
type ChatRequest struct {
	Message string    `json:"message"`
	Mode    Mode      `json:"mode"`
	History []Message `json:"history"`
}

// ChatResponse is the body returned by the single-shot chat endpoint.
type ChatResponse struct {
	Agents []AgentResponse `json:"agents"`
	Error  string          `json:"error,omitempty"`
}

// SessionStatus is the resting/working state of a debate session.
type SessionStatus string

const (
	StatusIdle     SessionStatus = "idle"
	StatusWaiting  SessionStatus = "waiting"
	StatusFetching SessionStatus = "fetching"
	StatusTyping   SessionStatus = "typing"
)

// Turn is the result of a single completed debate turn.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Index     int       `json:"index"`
	AgentName string    `json:"agentName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
