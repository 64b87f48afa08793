package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/modelmayhem/mayhem/internal/core"
	"github.com/modelmayhem/mayhem/internal/persona"
	"github.com/modelmayhem/mayhem/internal/prompt"
)

// SchedulePolicy selects how the debate picks the next responder.
type SchedulePolicy int

const (
	// PolicyRoundRobin picks the responder for turnIndex % 3. Default.
	PolicyRoundRobin SchedulePolicy = iota
	// PolicyRandomExcludeLast picks uniformly among the personas that did
	// not speak the immediately previous turn.
	PolicyRandomExcludeLast
)

// Session errors.
var (
	// ErrSessionDone is returned once a session has been stopped or has
	// reached its turn cap; no further provider calls are issued.
	ErrSessionDone = errors.New("debate session is over")
	// ErrSessionBusy is returned when a tick arrives while a previous
	// turn is still waiting or fetching.
	ErrSessionBusy = errors.New("debate turn already in progress")
)

// SessionConfig holds the knobs for one debate session. Zero values fall
// back to the defaults the web client has always used.
type SessionConfig struct {
	Mode     core.Mode
	Prompt   string
	MaxTurns int
	MinWait  time.Duration
	MaxWait  time.Duration
	Policy   SchedulePolicy

	// Sleep and RandInt are injectable for tests. Sleep must honor ctx
	// cancellation; RandInt returns a value in [0, n).
	Sleep   func(ctx context.Context, d time.Duration) error
	RandInt func(n int) int
}

const (
	defaultMaxTurns = 15
	defaultMinWait  = 900 * time.Millisecond
	defaultMaxWait  = 3 * time.Second
)

// Session is one continuous debate: an open-ended, turn-capped,
// externally ticked sequence of single-persona turns. All state is owned
// by the session instance; construct one per active conversation.
type Session struct {
	orch    *Orchestrator
	cfg     SessionConfig
	id      string
	created time.Time

	mu            sync.Mutex
	epoch         int64
	turnIndex     int
	lastResponder string
	status        core.SessionStatus
	stopped       bool
	history       []core.Message
	turns         []core.Turn
}

// NewSession creates a debate session for a prompt and mode.
func (o *Orchestrator) NewSession(cfg SessionConfig) *Session {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	if cfg.MinWait <= 0 {
		cfg.MinWait = defaultMinWait
	}
	if cfg.MaxWait < cfg.MinWait {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.MaxWait < cfg.MinWait {
		cfg.MinWait, cfg.MaxWait = cfg.MaxWait, cfg.MinWait
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}
	if cfg.RandInt == nil {
		cfg.RandInt = rand.Intn
	}

	return &Session{
		orch:    o,
		cfg:     cfg,
		id:      core.GenerateID(),
		created: time.Now(),
		status:  core.StatusIdle,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Mode returns the session's debate mode.
func (s *Session) Mode() core.Mode { return s.cfg.Mode }

// Prompt returns the user prompt that started the session.
func (s *Session) Prompt() string { return s.cfg.Prompt }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.created }

// Status returns the session's current scheduling state.
func (s *Session) Status() core.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done reports whether the session has been stopped or capped.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// TurnIndex returns the number of completed turns.
func (s *Session) TurnIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnIndex
}

// History returns a copy of the transcript accumulated so far.
func (s *Session) History() []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Turns returns a copy of the completed turns in order.
func (s *Session) Turns() []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Stop halts the session. Any in-flight provider call becomes stale: its
// result is silently discarded when it arrives because its captured
// epoch no longer matches.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.stopped = true
	s.status = core.StatusIdle
}

// NextTurn executes one externally triggered debate tick: wait out the
// thinking delay, pick the responder, call its model, and append the
// result to the transcript. A provider failure halts the whole session —
// no sentinel is synthesized in debate mode. A tick that lands after
// Stop, or whose result arrives after Stop, returns (nil, ErrSessionDone)
// and (nil, nil) respectively.
func (s *Session) NextTurn(ctx context.Context) (*core.Turn, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrSessionDone
	}
	if s.status == core.StatusWaiting || s.status == core.StatusFetching {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	s.status = core.StatusWaiting
	epoch := s.epoch
	delay := s.thinkingDelay()
	s.mu.Unlock()

	if err := s.cfg.Sleep(ctx, delay); err != nil {
		s.mu.Lock()
		s.status = core.StatusIdle
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	if s.stopped || s.epoch != epoch {
		s.status = core.StatusIdle
		s.mu.Unlock()
		return nil, ErrSessionDone
	}
	turnIndex := s.turnIndex
	responder := s.pickResponder(turnIndex)
	systemPrompt := s.orch.composer.SystemPrompt(s.cfg.Mode, responder.ID, turnIndex == 0)
	contextMessage := s.orch.composer.ContextMessage(s.cfg.Prompt, s.history, turnIndex)
	history := make([]core.Message, len(s.history))
	copy(history, s.history)
	s.status = core.StatusFetching
	s.mu.Unlock()

	client := s.orch.registry.Get(responder.ModelKey)
	text, err := client.Complete(ctx, systemPrompt, contextMessage, history)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		// Stale result from a superseded session: discard, no log.
		return nil, nil
	}

	if err != nil {
		slog.Error("Debate turn failed, halting session",
			"session", s.id, "turn", turnIndex, "agent", responder.DisplayName, "error", err)
		s.stopped = true
		s.status = core.StatusIdle
		return nil, fmt.Errorf("debate turn %d: %w", turnIndex, err)
	}

	content := prompt.StripSpeakerPrefix(text)
	s.history = append(s.history, core.Message{
		Role:      core.RoleAssistant,
		Content:   content,
		AgentName: responder.DisplayName,
	})
	s.turnIndex++
	s.lastResponder = responder.ID
	s.status = core.StatusTyping

	if s.turnIndex >= s.cfg.MaxTurns {
		s.stopped = true
	}

	turn := core.Turn{
		ID:        core.GenerateID(),
		SessionID: s.id,
		Index:     turnIndex,
		AgentName: responder.DisplayName,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.turns = append(s.turns, turn)

	return &turn, nil
}

// FinishTyping signals that the display surface has finished revealing
// the last turn, returning the session to its resting state.
func (s *Session) FinishTyping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == core.StatusTyping {
		s.status = core.StatusIdle
	}
}

// thinkingDelay draws a pause from the configured window. Callers hold mu.
func (s *Session) thinkingDelay() time.Duration {
	window := s.cfg.MaxWait - s.cfg.MinWait
	if window <= 0 {
		return s.cfg.MinWait
	}
	return s.cfg.MinWait + time.Duration(s.cfg.RandInt(int(window)))
}

// pickResponder selects the persona for a turn. Callers hold mu.
func (s *Session) pickResponder(turnIndex int) persona.Config {
	roster := persona.RosterFor(s.cfg.Mode)

	if s.cfg.Policy == PolicyRandomExcludeLast && s.lastResponder != "" {
		eligible := roster[:0:0]
		for _, p := range roster {
			if p.ID != s.lastResponder {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) > 0 {
			return eligible[s.cfg.RandInt(len(eligible))]
		}
	}

	return roster[turnIndex%len(roster)]
}
