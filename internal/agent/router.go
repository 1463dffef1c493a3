package agent

import (
	"context"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/antflydb/ariadne/internal/llm"
)

type routePayload struct {
	Route string `json:"route"`
}

// Classify implements llm.Router.
func (c *GenkitClient) Classify(ctx context.Context, question string) (llm.RouteResult, error) {
	structured := structuredOutputEnabled(c.cfg)
	messages := []*ai.Message{{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart(question)}}}

	if structured {
		payload, usage, err := genkit.GenerateData[routePayload](ctx, c.g,
			ai.WithModel(c.model),
			ai.WithSystem("%s", routerPrompt()),
			ai.WithMessages(messages...),
		)
		if err != nil {
			return llm.RouteResult{}, llm.WrapProviderError(err, true)
		}
		return llm.RouteResult{Decision: parseRouteText(payload.Route), Usage: toUsage(usage)}, nil
	}

	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModel(c.model),
		ai.WithSystem("%s", routerPrompt()),
		ai.WithMessages(messages...),
	)
	if err != nil {
		return llm.RouteResult{}, llm.WrapProviderError(err, false)
	}
	return llm.RouteResult{Decision: parseRouteText(resp.Text()), Usage: toUsage(resp.Usage)}, nil
}

// parseRouteText performs the case-insensitive substring match the
// unstructured router falls back to, defaulting to one_shot.
func parseRouteText(text string) llm.RouteDecision {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "multi_turn") || strings.Contains(lower, "multiturn") || strings.Contains(lower, "multi-turn") {
		return llm.RouteMultiTurn
	}
	return llm.RouteOneShot
}
