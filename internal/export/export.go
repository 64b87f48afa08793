// Package export handles exporting session transcripts to various formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/modelmayhem/mayhem/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// Transcript is an in-memory snapshot of a debate session. Sessions are
// never persisted, so export always works from a live snapshot.
type Transcript struct {
	SessionID string      `json:"session_id"`
	Mode      core.Mode   `json:"mode"`
	Prompt    string      `json:"prompt"`
	CreatedAt time.Time   `json:"created_at"`
	Turns     []core.Turn `json:"turns"`
}

// Exporter defines the interface for exporting transcripts.
type Exporter interface {
	Export(t *Transcript, w io.Writer) error
	FileExtension() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename creates a filename for the export.
func GenerateFilename(t *Transcript, ext string) string {
	// Sanitize prompt for filename
	prompt := t.Prompt
	if len(prompt) > 50 {
		prompt = prompt[:50]
	}

	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	prompt = replacer.Replace(prompt)

	timestamp := t.CreatedAt.Format("20060102")
	return fmt.Sprintf("debate_%s_%s.%s", timestamp, prompt, ext)
}
