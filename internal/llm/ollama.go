package llm

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaURL = "http://localhost:11434"

var langchainRoles = map[string]llms.ChatMessageType{
	RoleSystem:    llms.ChatMessageTypeSystem,
	RoleUser:      llms.ChatMessageTypeHuman,
	RoleAssistant: llms.ChatMessageTypeAI,
}

// ollamaClient runs the coach against a local Ollama server.
type ollamaClient struct {
	llm     *ollama.LLM
	model   string
	baseURL string
}

func newOllama(model, baseURL string) (*ollamaClient, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("ollama needs a model, e.g. llama3")
	}
	baseURL = cmp.Or(baseURL, defaultOllamaURL)

	l, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("connecting to ollama at %s: %w", baseURL, err)
	}
	return &ollamaClient{llm: l, model: model, baseURL: baseURL}, nil
}

func (c *ollamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.call(ctx, messages)
}

// ChatJSON turns on Ollama's JSON format so the reply is a bare document.
func (c *ollamaClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	reply, err := c.call(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return err
	}
	return decodeJSON(reply, result)
}

func (c *ollamaClient) call(ctx context.Context, messages []Message, opts ...llms.CallOption) (string, error) {
	content := make([]llms.MessageContent, len(messages))
	for i, m := range messages {
		role, ok := langchainRoles[strings.ToLower(m.Role)]
		if !ok {
			role = llms.ChatMessageTypeHuman
		}
		content[i] = llms.TextParts(role, m.Content)
	}

	resp, err := c.llm.GenerateContent(ctx, content, append(opts, llms.WithModel(c.model))...)
	if err != nil {
		return "", fmt.Errorf("ollama %s: %w", c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Content, nil
}
