package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter exports transcripts to Markdown format.
type MarkdownExporter struct{}

// Export writes the transcript as Markdown.
func (e *MarkdownExporter) Export(t *Transcript, w io.Writer) error {
	var sb strings.Builder

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", t.Prompt))

	// Metadata
	sb.WriteString("## Session Information\n\n")
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", t.SessionID))
	sb.WriteString(fmt.Sprintf("- **Mode:** %s\n", t.Mode))
	sb.WriteString(fmt.Sprintf("- **Started:** %s\n", t.CreatedAt.Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString(fmt.Sprintf("- **Turns:** %d\n", len(t.Turns)))
	sb.WriteString("\n")

	// Transcript content
	sb.WriteString("## Debate\n\n")

	if len(t.Turns) == 0 {
		sb.WriteString("*No turns recorded.*\n\n")
	} else {
		for _, turn := range t.Turns {
			sb.WriteString(fmt.Sprintf("#### Turn %d - %s\n\n", turn.Index+1, turn.AgentName))
			sb.WriteString(fmt.Sprintf("*%s*\n\n", turn.CreatedAt.Format("3:04 PM")))
			sb.WriteString(turn.Content)
			sb.WriteString("\n\n---\n\n")
		}
	}

	// Footer
	sb.WriteString("---\n\n")
	sb.WriteString("*Exported from mayhem*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
