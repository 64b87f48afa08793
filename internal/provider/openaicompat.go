package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/modelmayhem/mayhem/internal/core"
)

const (
	groqBaseURL       = "https://api.groq.com/openai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	defaultGroqModel       = "llama-3.3-70b-versatile"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenRouterModel = "meta-llama/llama-4-maverick"
)

// ChatCompletions is a ModelClient backed by any OpenAI-compatible
// chat-completions API (OpenAI itself, Groq, OpenRouter). Separate Groq
// instances can carry separate API keys so a single busy key does not
// rate-limit the whole roster.
type ChatCompletions struct {
	name        string
	keyEnvVar   string
	fallbackEnv string
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewGroq creates a Groq-backed client registered under name, reading
// its API key from keyEnvVar (falling back to GROQ_API_KEY).
func NewGroq(name, keyEnvVar, model string, maxTokens int) *ChatCompletions {
	if model == "" {
		if model = os.Getenv("GROQ_MODEL"); model == "" {
			model = defaultGroqModel
		}
	}
	return newChatCompletions(name, keyEnvVar, "GROQ_API_KEY", groqBaseURL, model, maxTokens)
}

// NewOpenAI creates a client against the OpenAI API.
func NewOpenAI(name, keyEnvVar, model string, maxTokens int) *ChatCompletions {
	if model == "" {
		model = defaultOpenAIModel
	}
	return newChatCompletions(name, keyEnvVar, "OPENAI_API_KEY", "", model, maxTokens)
}

// NewOpenRouter creates a client against the OpenRouter API.
func NewOpenRouter(name, keyEnvVar, model string, maxTokens int) *ChatCompletions {
	if model == "" {
		model = defaultOpenRouterModel
	}
	return newChatCompletions(name, keyEnvVar, "OPENROUTER_API_KEY", openRouterBaseURL, model, maxTokens)
}

func newChatCompletions(name, keyEnvVar, fallbackEnv, baseURL, model string, maxTokens int) *ChatCompletions {
	if maxTokens <= 0 {
		maxTokens = 400
	}

	c := &ChatCompletions{
		name:        name,
		keyEnvVar:   keyEnvVar,
		fallbackEnv: fallbackEnv,
		model:       model,
		maxTokens:   maxTokens,
		temperature: 0.85,
	}

	if apiKey := c.apiKey(); apiKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}
		client := openai.NewClient(opts...)
		c.client = &client
	}

	return c
}

func (c *ChatCompletions) apiKey() string {
	if key := os.Getenv(c.keyEnvVar); key != "" {
		return key
	}
	return os.Getenv(c.fallbackEnv)
}

// Name returns the client's registry key.
func (c *ChatCompletions) Name() string { return c.name }

// Complete sends the prompt and history and returns the post-processed
// reply text.
func (c *ChatCompletions) Complete(ctx context.Context, systemPrompt, userMessage string, history []core.Message) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("missing env var: %s or %s", c.keyEnvVar, c.fallbackEnv)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}
	for _, m := range history {
		switch m.Role {
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userMessage))

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}
	params.MaxTokens = openai.Int(int64(c.maxTokens))
	params.Temperature = openai.Float(c.temperature)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", c.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s completion returned no choices", c.name)
	}

	return Postprocess(resp.Choices[0].Message.Content, ProviderCap), nil
}
