// Package orchestrator schedules persona turns and assembles the context
// each persona receives.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelmayhem/mayhem/internal/core"
	"github.com/modelmayhem/mayhem/internal/persona"
	"github.com/modelmayhem/mayhem/internal/prompt"
	"github.com/modelmayhem/mayhem/internal/provider"
)

// MaxResponseChars caps every agent response returned by the
// orchestrator, regardless of provider-side limits.
const MaxResponseChars = 1000

// UnavailableSentinel substitutes for a failed agent's response in a
// round-robin pass.
const UnavailableSentinel = "[Agent temporarily unavailable]"

// Orchestrator runs single-shot round-robin passes and creates debate
// sessions on top of the same persona and prompt primitives.
type Orchestrator struct {
	registry *provider.Registry
	composer prompt.Composer
}

// New creates an orchestrator.
func New(registry *provider.Registry, composer prompt.Composer) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		composer: composer,
	}
}

// RunAgents executes one complete round-robin pass: every persona of the
// mode responds once, strictly in primary -> secondary -> tertiary order.
// The primary persona sees only the user message; later personas see the
// user message plus every prior response of this pass. Failures are
// isolated per agent: a failed completion is logged and substituted with
// UnavailableSentinel, so the result always holds exactly one entry per
// roster persona.
func (o *Orchestrator) RunAgents(ctx context.Context, userMessage string, mode core.Mode, history []core.Message) []core.AgentResponse {
	roster := persona.RosterFor(mode)
	results := make([]core.AgentResponse, 0, len(roster))

	for _, cfg := range roster {
		systemPrompt := o.composer.SystemPrompt(mode, cfg.ID, len(results) == 0)
		client := o.registry.Get(cfg.ModelKey)

		contextMessage := userMessage
		if len(results) > 0 {
			var prior strings.Builder
			for i, r := range results {
				if i > 0 {
					prior.WriteByte('\n')
				}
				fmt.Fprintf(&prior, "%s: %s", r.AgentName, r.Text)
			}
			contextMessage = fmt.Sprintf(
				"User said: \"%s\"\n\nConversation so far:\n%s\n\nNow it is your turn to respond.",
				userMessage, prior.String())
		}

		text, err := client.Complete(ctx, systemPrompt, contextMessage, history)
		if err != nil {
			slog.Error("Agent completion failed", "agent", cfg.DisplayName, "model", cfg.ModelKey, "error", err)
			text = UnavailableSentinel
		}

		results = append(results, core.AgentResponse{
			AgentName: cfg.DisplayName,
			Text:      truncate(text, MaxResponseChars),
			Role:      core.RoleAssistant,
		})
	}

	return results
}

// truncate caps s at max runes; shorter text is returned unmodified.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
