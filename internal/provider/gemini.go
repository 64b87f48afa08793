package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/modelmayhem/mayhem/internal/core"
)

const (
	geminiEndpoint     = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel = "gemini-2.0-flash-lite"
)

// Gemini is a ModelClient against the Google generative-language API.
type Gemini struct {
	name      string
	apiKey    string
	model     string
	maxTokens int
	http      *RetryableClient
}

// NewGemini creates a Gemini client. The API key is read from
// GOOGLE_GENERATIVE_AI_API_KEY (falling back to GEMINI_API_KEY).
func NewGemini(name, model string, maxTokens int) *Gemini {
	if model == "" {
		model = defaultGeminiModel
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}

	apiKey := os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	return &Gemini{
		name:      name,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		http:      NewRetryableClient(DefaultRetryConfig()),
	}
}

// Name returns the client's registry key.
func (g *Gemini) Name() string { return g.name }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float64 `json:"temperature,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt and history and returns the post-processed
// reply text.
func (g *Gemini) Complete(ctx context.Context, systemPrompt, userMessage string, history []core.Message) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("missing env var: GOOGLE_GENERATIVE_AI_API_KEY or GEMINI_API_KEY")
	}

	reqBody := geminiRequest{}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		}
	}
	for _, m := range history {
		role := "user"
		if m.Role == core.RoleAssistant {
			role = "model"
		}
		reqBody.Contents = append(reqBody.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	reqBody.Contents = append(reqBody.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: userMessage}},
	})
	reqBody.GenerationConfig.MaxOutputTokens = g.maxTokens
	reqBody.GenerationConfig.Temperature = 0.85

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini marshal: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiEndpoint, g.model, g.apiKey)
	req, err := NewRequestWithBody(ctx, http.MethodPost, url, payload)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.DoWithRetry(ctx, req)
	if err != nil {
		return "", fmt.Errorf("gemini do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &APIError{Provider: "gemini", Status: resp.StatusCode, Body: string(body)}
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}

	var sb strings.Builder
	if len(parsed.Candidates) > 0 {
		for _, part := range parsed.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}

	return Postprocess(sb.String(), ProviderCap), nil
}
