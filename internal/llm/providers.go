package llm

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/javiermolinar/mellow/internal/config"
)

// Provider names accepted in the [llm] section of the config.
const (
	ProviderCopilot  = "copilot"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

type connector func(ctx context.Context, cfg config.LLMConfig) (Client, error)

var connectors = map[string]connector{
	ProviderCopilot: func(ctx context.Context, cfg config.LLMConfig) (Client, error) {
		return dialCopilot(ctx, nil, cfg.Model)
	},
	ProviderOllama: func(_ context.Context, cfg config.LLMConfig) (Client, error) {
		return newOllama(cfg.Model, cfg.BaseURL)
	},
	ProviderLMStudio: func(_ context.Context, cfg config.LLMConfig) (Client, error) {
		return newLMStudio(cfg.Model, cfg.BaseURL)
	},
}

var providerAliases = map[string]string{
	"":          ProviderCopilot,
	"lm-studio": ProviderLMStudio,
	"lm_studio": ProviderLMStudio,
}

// ProviderName resolves a configured provider to its canonical name.
func ProviderName(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := providerAliases[name]; ok {
		name = alias
	}
	_, ok := connectors[name]
	return name, ok
}

// Providers lists the supported providers in alphabetical order.
func Providers() []string {
	return slices.Sorted(maps.Keys(connectors))
}

// NewClient connects to the configured provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	name, ok := ProviderName(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider %q (want one of %s)", cfg.Provider, strings.Join(Providers(), ", "))
	}
	return connectors[name](ctx, cfg)
}
