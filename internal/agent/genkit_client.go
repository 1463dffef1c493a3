package agent

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/antflydb/ariadne/internal/llm"
)

// structuredOutputEnabled reads LLM_STRUCTURED_OUTPUT, defaulting to the
// config value when unset or unparseable. Shared with the openrouter
// plugin's response_format wiring, so it lives in llm.
func structuredOutputEnabled(cfg llm.Config) bool {
	return llm.StructuredOutputEnabled(cfg)
}

// GenkitClient wraps the genkit runtime and a resolved chat model,
// grounding AgentTranslator, Router and Analyst on the same
// genkit.GenerateData call the table-query generator uses.
type GenkitClient struct {
	g      *genkit.Genkit
	model  ai.Model
	cfg    llm.Config
	schema SchemaProvider
}

// NewGenkitClient validates cfg and wraps an already-initialized genkit
// runtime and resolved model. Callers are responsible for registering
// the right provider plugin (openrouter, etc.) against g before calling
// this, since plugin registration happens once per process.
func NewGenkitClient(g *genkit.Genkit, model ai.Model, cfg llm.Config, schema SchemaProvider) (*GenkitClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("agent: base URL must not be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("agent: model must not be empty")
	}
	return &GenkitClient{g: g, model: model, cfg: cfg, schema: schema}, nil
}

func toUsage(u *ai.GenerationUsage) *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.TotalTokens,
	}
}
