package llm

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultLMStudioURL = "http://localhost:1234/v1"

var errNoChoices = errors.New("no response choices returned")

// completions talks to any OpenAI-compatible chat endpoint. Copilot and
// LM Studio both use it.
type completions struct {
	client  openai.Client
	model   string
	baseURL string
	label   string // prefixes errors, e.g. "copilot"
}

func newCompletions(label, model, baseURL string, opts ...option.RequestOption) *completions {
	opts = append([]option.RequestOption{option.WithBaseURL(baseURL)}, opts...)
	return &completions{
		client:  openai.NewClient(opts...),
		model:   model,
		baseURL: baseURL,
		label:   label,
	}
}

func newLMStudio(model, baseURL string) (*completions, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("lm studio needs the name of a loaded model")
	}
	key := cmp.Or(os.Getenv("LMSTUDIO_API_KEY"), os.Getenv("OPENAI_API_KEY"), "lm-studio")
	return newCompletions("lm studio", model, cmp.Or(baseURL, defaultLMStudioURL), option.WithAPIKey(key)), nil
}

func (c *completions) Chat(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, len(messages)),
	}
	for i, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages[i] = openai.SystemMessage(m.Content)
		case RoleAssistant:
			params.Messages[i] = openai.AssistantMessage(m.Content)
		default:
			params.Messages[i] = openai.UserMessage(m.Content)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.label, err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *completions) ChatJSON(ctx context.Context, messages []Message, result any) error {
	reply, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return decodeJSON(reply, result)
}
