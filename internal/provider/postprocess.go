package provider

import (
	"strings"
	"unicode/utf8"
)

// ProviderCap is the maximum response length adapters return. Callers
// still apply their own cap defensively.
const ProviderCap = 2000

// Postprocess applies the shared response contract all adapters honor:
// trim surrounding whitespace, clip a mid-sentence truncation back to the
// last sentence boundary (or append an ellipsis when there is none), and
// cap the total length at max characters.
func Postprocess(text string, max int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	if !endsWithSentence(text) {
		if idx := lastSentenceBoundary(text); idx >= 0 {
			text = text[:idx+1]
		} else {
			text += "..."
		}
	}

	return capRunes(text, max)
}

// endsWithSentence reports whether text already terminates cleanly, with
// optional closing quote after the punctuation.
func endsWithSentence(text string) bool {
	trimmed := strings.TrimRight(text, `"'`)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

func lastSentenceBoundary(text string) int {
	idx := strings.LastIndexAny(text, ".!?")
	return idx
}

// capRunes truncates to at most max runes; shorter input is unchanged.
func capRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
