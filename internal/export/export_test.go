package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelmayhem/mayhem/internal/core"
)

func testTranscript() *Transcript {
	created := time.Date(2025, 3, 14, 15, 4, 0, 0, time.UTC)
	return &Transcript{
		SessionID: "abc123defg",
		Mode:      core.ModeDebate,
		Prompt:    "Is cereal a soup?",
		CreatedAt: created,
		Turns: []core.Turn{
			{ID: "t1", SessionID: "abc123defg", Index: 0, AgentName: "GPT-5 nano", Content: "Obviously yes.", CreatedAt: created},
			{ID: "t2", SessionID: "abc123defg", Index: 1, AgentName: "Gemma 2", Content: "Absolutely not.", CreatedAt: created},
		},
	}
}

func TestGetExporter(t *testing.T) {
	for _, format := range []Format{FormatMarkdown, FormatPDF, FormatJSON} {
		if _, err := GetExporter(format); err != nil {
			t.Errorf("GetExporter(%s) returned error: %v", format, err)
		}
	}

	if _, err := GetExporter("docx"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	e := &MarkdownExporter{}
	if err := e.Export(testTranscript(), &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Is cereal a soup?",
		"- **Mode:** debate",
		"Turn 1 - GPT-5 nano",
		"Turn 2 - Gemma 2",
		"Obviously yes.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMarkdownExportEmpty(t *testing.T) {
	tr := testTranscript()
	tr.Turns = nil

	var buf bytes.Buffer
	e := &MarkdownExporter{}
	if err := e.Export(tr, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if !strings.Contains(buf.String(), "No turns recorded") {
		t.Error("expected empty transcript placeholder")
	}
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	e := &JSONExporter{}
	if err := e.Export(testTranscript(), &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got Transcript
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if got.SessionID != "abc123defg" {
		t.Errorf("SessionID mismatch: got %s", got.SessionID)
	}
	if len(got.Turns) != 2 {
		t.Errorf("wrong number of turns: got %d, want 2", len(got.Turns))
	}
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	e := &PDFExporter{}
	if err := e.Export(testTranscript(), &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}

func TestGenerateFilename(t *testing.T) {
	tr := testTranscript()
	got := GenerateFilename(tr, "md")
	want := "debate_20250314_Is_cereal_a_soup.md"
	if got != want {
		t.Errorf("filename mismatch: got %s, want %s", got, want)
	}
}
