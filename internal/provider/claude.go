package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/modelmayhem/mayhem/internal/core"
)

const defaultClaudeModel = "claude-3-5-haiku-20241022"

// Claude is a ModelClient backed by the Anthropic Messages API.
type Claude struct {
	name      string
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewClaude creates a Claude client. The API key is read from
// ANTHROPIC_API_KEY; a missing key surfaces on the first Complete call.
func NewClaude(name, model string, maxTokens int) *Claude {
	if model == "" {
		model = defaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}

	c := &Claude{name: name, model: model, maxTokens: maxTokens}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		c.client = anthropic.NewClient(option.WithAPIKey(apiKey))
	}

	return c
}

// Name returns the client's registry key.
func (c *Claude) Name() string { return c.name }

// Complete sends the prompt and history and returns the post-processed
// reply text.
func (c *Claude) Complete(ctx context.Context, systemPrompt, userMessage string, history []core.Message) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("missing env var: ANTHROPIC_API_KEY")
	}

	var messages []anthropic.MessageParam
	for _, m := range history {
		role := anthropic.MessageParamRoleUser
		if m.Role == core.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		messages = append(messages, anthropic.MessageParam{
			Role: anthropic.F(role),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(m.Content),
			}),
		})
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(c.model)),
		MaxTokens: anthropic.F(int64(c.maxTokens)),
		Messages:  anthropic.F(messages),
	}
	if systemPrompt != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(systemPrompt),
		})
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude completion failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			sb.WriteString(block.Text)
		}
	}

	return Postprocess(sb.String(), ProviderCap), nil
}
