package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/antflydb/ariadne/internal/llm"
)

type analysisPayload struct {
	Title      string           `json:"title"`
	Summary    string           `json:"summary"`
	Bullets    []string         `json:"bullets"`
	Rows       []map[string]any `json:"rows"`
	FollowUps  []string         `json:"follow_ups"`
	Confidence string           `json:"confidence"`
}

// Analyze implements llm.Analyst. In structured mode every field is
// always present (empty arrays where appropriate); in unstructured mode
// the entire payload lands in Summary and the rest stay empty.
func (c *GenkitClient) Analyze(ctx context.Context, question string, rows []map[string]any) (llm.AnalysisResult, error) {
	structured := structuredOutputEnabled(c.cfg)
	system := analysisPrompt(structured)
	user := fmt.Sprintf("Question: %s\n\nResults:\n%v", question, rows)
	messages := []*ai.Message{{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart(user)}}}

	if structured {
		payload, usage, err := genkit.GenerateData[analysisPayload](ctx, c.g,
			ai.WithModel(c.model),
			ai.WithSystem("%s", system),
			ai.WithMessages(messages...),
		)
		if err != nil {
			return llm.AnalysisResult{}, llm.WrapProviderError(err, true)
		}
		return llm.AnalysisResult{
			Title:      payload.Title,
			Summary:    payload.Summary,
			Bullets:    payload.Bullets,
			Rows:       payload.Rows,
			FollowUps:  payload.FollowUps,
			Confidence: payload.Confidence,
			Usage:      toUsage(usage),
		}, nil
	}

	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModel(c.model),
		ai.WithSystem("%s", system),
		ai.WithMessages(messages...),
	)
	if err != nil {
		return llm.AnalysisResult{}, llm.WrapProviderError(err, false)
	}
	return llm.AnalysisResult{Summary: resp.Text(), Usage: toUsage(resp.Usage)}, nil
}

// Compact implements llm.Analyst's compaction entry point, truncating
// to the 1200-character ceiling even if the model overshoots it.
func (c *GenkitClient) Compact(ctx context.Context, turns []llm.HistoryTurn) (string, *llm.Usage, error) {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "Q: %s\nCypher: %s\nResult: %s\n\n", t.Question, t.Cypher, t.ResultSummary)
	}
	messages := []*ai.Message{{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart(b.String())}}}

	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModel(c.model),
		ai.WithSystem("%s", analysisCompactionPrompt()),
		ai.WithMessages(messages...),
	)
	if err != nil {
		return "", nil, llm.WrapProviderError(err, false)
	}
	summary := strings.TrimSpace(resp.Text())
	if runes := []rune(summary); len(runes) > 1200 {
		summary = string(runes[:1200])
	}
	return summary, toUsage(resp.Usage), nil
}
