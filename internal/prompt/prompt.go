// Package prompt builds the system prompts and per-turn context messages
// that personas receive.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/modelmayhem/mayhem/internal/core"
	"github.com/modelmayhem/mayhem/internal/persona"
)

// brevityTail is appended to every system prompt regardless of mode or
// turn so replies stay short enough to survive hard token limits.
const brevityTail = "Use VERY SIMPLE WORDS AND SLANG, like you're talking to an average person text messaging. " +
	"Keep your response strictly under 30 words so you do not get cut off by hard token limits."

// ContinueFiller is the context message used when a later debate turn has
// no history to react to.
const ContinueFiller = "Continue the debate."

// modeInstructions carry the tone injection for each mode.
var modeInstructions = map[core.Mode]string{
	core.ModeFlirt:    "Adopt a highly flirtatious and romantic vibe while keeping your core personality. ",
	core.ModeRoast:    "Brutally roast everyone. Be savage but stay entirely in character. ",
	core.ModeAcademic: "Act like a snobby professor pushing up their glasses, but do not drop your original personality. ",
	core.ModeStory:    "Dramatically contribute the next sentence to an ongoing story, speaking as your character. ",
	core.ModeDebate:   "Treat this as a formal but highly aggressive debate out to destroy the opponent. ",
}

const firstTurnInstruction = "Answer the user's message directly, ensuring your persona shines through. "
const laterTurnInstruction = "Tell the previous AI why their logic is flawed or their response is stupid. Be blunt. "

// Composer builds prompts, optionally consulting a persona store for
// custom character fragments. The zero value uses builtins only.
type Composer struct {
	Store persona.Store
}

// SystemPrompt assembles the full system prompt for a
// (mode, persona, isFirstTurn) triple. It never fails: an unknown
// persona ID contributes an empty fragment and an unknown mode
// contributes no tone instruction, but the result is always non-empty
// because the turn objective and brevity tail are always present.
func (c Composer) SystemPrompt(mode core.Mode, personaID string, isFirstTurn bool) string {
	var fragment string
	if f := persona.GetFragmentWithStore(personaID, c.Store); f != nil {
		fragment = f.Fragment
	}

	turnInstruction := laterTurnInstruction
	if isFirstTurn {
		turnInstruction = firstTurnInstruction
	}

	return fragment + modeInstructions[mode] + turnInstruction + brevityTail
}

// ContextMessage builds the user-facing context string for a debate turn.
// Turn 0 passes the original prompt through verbatim. Later turns quote
// the most recent history entry with speaker attribution so the responder
// reacts to the previous speaker rather than the original question.
func (c Composer) ContextMessage(originalPrompt string, history []core.Message, turnIndex int) string {
	if turnIndex == 0 {
		return originalPrompt
	}

	if len(history) == 0 {
		return ContinueFiller
	}

	last := history[len(history)-1]
	content := StripSpeakerPrefix(last.Content)
	if last.AgentName != "" {
		return fmt.Sprintf("%s said: \"%s\"", last.AgentName, content)
	}
	return content
}

// Older transcripts decorated content with a leading "[Name]:" or
// "Name:" token. Strip it before reuse so prefixes never compound
// turn over turn.
var legacySpeakerPrefixRe = regexp.MustCompile(`^\s*(?:\[[^\]]+\]|[A-Za-z][\w .'-]{0,40}):\s*`)

// StripSpeakerPrefix removes a legacy speaker-prefix decoration from
// content pulled out of conversation history.
func StripSpeakerPrefix(content string) string {
	return strings.TrimSpace(legacySpeakerPrefixRe.ReplaceAllString(content, ""))
}
