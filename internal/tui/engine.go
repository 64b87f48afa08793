package tui

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/modelmayhem/mayhem/internal/core"
	"github.com/modelmayhem/mayhem/internal/orchestrator"
	"github.com/modelmayhem/mayhem/internal/typing"
)

// Engine bridges the orchestrator and the typing queue to the chat UI.
// Each user message triggers one round-robin pass; the responses reveal
// through the typing queue one at a time.
type Engine struct {
	orch *orchestrator.Orchestrator
	mode core.Mode

	mu    sync.Mutex
	names map[string]string // queue item id -> agent display name
}

// Run starts the engine and the chat UI, blocking until the user quits.
func Run(orch *orchestrator.Orchestrator, mode core.Mode) error {
	e := &Engine{
		orch:  orch,
		mode:  mode,
		names: make(map[string]string),
	}

	inputChan := make(chan string)
	eventChan := make(chan Event, 64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.loop(ctx, inputChan, eventChan)

	return RunChat(mode, inputChan, eventChan)
}

func (e *Engine) loop(ctx context.Context, inputChan <-chan string, eventChan chan<- Event) {
	completed := make(chan string, 8)

	var queue *typing.Queue
	queue = typing.NewQueue(typing.Options{
		OnChange: func() {
			for _, m := range queue.Snapshot() {
				// Per-character frame; dropping one when the UI lags
				// is harmless, the next frame supersedes it.
				select {
				case eventChan <- Event{
					Kind:      "typing",
					AgentName: e.name(m.ID),
					Text:      m.DisplayText,
					IsTyping:  m.IsTyping,
				}:
				default:
				}
			}
		},
		OnComplete: func(id, fullText string) {
			select {
			case eventChan <- Event{Kind: "complete", AgentName: e.name(id), Text: fullText}:
			case <-ctx.Done():
				return
			}
			completed <- id
		},
	})
	defer queue.Close()

	var history []core.Message

	for {
		select {
		case <-ctx.Done():
			return
		case input, ok := <-inputChan:
			if !ok {
				return
			}

			history = append(history, core.Message{Role: core.RoleUser, Content: input})
			responses := e.orch.RunAgents(ctx, input, e.mode, history)

			items := make([]typing.Item, 0, len(responses))
			for _, r := range responses {
				id := uuid.NewString()
				e.setName(id, r.AgentName)
				items = append(items, typing.Item{ID: id, FullText: r.Text})
				history = append(history, core.Message{
					Role:      r.Role,
					Content:   r.Text,
					AgentName: r.AgentName,
				})
			}
			queue.Enqueue(items...)

			// Wait for the whole pass to finish revealing before
			// accepting the next user message.
			for range items {
				select {
				case <-ctx.Done():
					return
				case <-completed:
				}
			}

			select {
			case eventChan <- Event{Kind: "pass_done"}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Engine) setName(id, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names[id] = name
}

func (e *Engine) name(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.names[id]
}
