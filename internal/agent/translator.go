package agent

import (
	"context"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/antflydb/ariadne/internal/llm"
)

// buildTranslateMessages reproduces the translator's message order: an
// optional context-summary assistant turn, then one user/assistant pair
// per history turn (skipping turns with an empty question or query),
// then an optional feedback turn, then the current question.
func buildTranslateMessages(question string, history []llm.HistoryTurn, contextSummary, feedback string) []*ai.Message {
	var msgs []*ai.Message

	if strings.TrimSpace(contextSummary) != "" {
		msgs = append(msgs, &ai.Message{
			Role:    ai.RoleModel,
			Content: []*ai.Part{ai.NewTextPart("Context summary:\n" + contextSummary)},
		})
	}

	for _, turn := range history {
		if turn.Question == "" || turn.Cypher == "" {
			continue
		}
		msgs = append(msgs, &ai.Message{
			Role:    ai.RoleUser,
			Content: []*ai.Part{ai.NewTextPart(turn.Question)},
		})
		assistantText := "Cypher:\n" + turn.Cypher
		if turn.ResultSummary != "" {
			assistantText += "\nResult summary:\n" + turn.ResultSummary
		}
		msgs = append(msgs, &ai.Message{
			Role:    ai.RoleModel,
			Content: []*ai.Part{ai.NewTextPart(assistantText)},
		})
	}

	if strings.TrimSpace(feedback) != "" {
		msgs = append(msgs, &ai.Message{
			Role: ai.RoleUser,
			Content: []*ai.Part{ai.NewTextPart(
				"Previous Cypher failed validation: " + feedback + "\nPlease correct the Cypher. Return only the fixed query.",
			)},
		})
	}

	msgs = append(msgs, &ai.Message{
		Role:    ai.RoleUser,
		Content: []*ai.Part{ai.NewTextPart(question)},
	})

	return msgs
}

type agentStepPayload struct {
	Action string `json:"action"`
	Cypher string `json:"cypher"`
	Params []struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	} `json:"params,omitempty"`
}

// Step implements llm.AgentTranslator, the agent loop's per-step call.
func (c *GenkitClient) Step(ctx context.Context, question string, history []llm.HistoryTurn, contextSummary, feedback string) (llm.AgentStepResult, error) {
	structured := structuredOutputEnabled(c.cfg)
	system := agenticPrompt(c.schema, structured)
	messages := buildTranslateMessages(question, history, contextSummary, feedback)

	if structured {
		payload, usage, err := genkit.GenerateData[agentStepPayload](ctx, c.g,
			ai.WithModel(c.model),
			ai.WithSystem("%s", system),
			ai.WithMessages(messages...),
		)
		if err != nil {
			return llm.AgentStepResult{}, llm.WrapProviderError(err, true)
		}
		params := make(map[string]any, len(payload.Params))
		for _, p := range payload.Params {
			params[p.Key] = p.Value
		}
		if len(params) == 0 {
			params = nil
		}
		return llm.AgentStepResult{
			Action: parseAgentAction(payload.Action),
			Cypher: llm.ExtractCypher(payload.Cypher),
			Params: params,
			Usage:  toUsage(usage),
		}, nil
	}

	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModel(c.model),
		ai.WithSystem("%s", system),
		ai.WithMessages(messages...),
	)
	if err != nil {
		return llm.AgentStepResult{}, llm.WrapProviderError(err, false)
	}
	text := resp.Text()
	// The prompt asks for an "Action:" line before the "Cypher:" line, so
	// extraction starts at the first line that opens with "Cypher:".
	cypherText := text
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "cypher:") {
			cypherText = strings.Join(lines[i:], "\n")
			break
		}
	}
	return llm.AgentStepResult{
		Action: parseAgentActionFromText(text),
		Cypher: llm.ExtractCypher(cypherText),
		Usage:  toUsage(resp.Usage),
	}, nil
}

func parseAgentAction(s string) llm.AgentAction {
	if strings.EqualFold(strings.TrimSpace(s), "final") {
		return llm.AgentActionFinal
	}
	return llm.AgentActionQuery
}

func parseAgentActionFromText(text string) llm.AgentAction {
	lower := strings.ToLower(text)
	for _, line := range strings.Split(lower, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "action:") {
			if strings.Contains(line, "final") {
				return llm.AgentActionFinal
			}
			return llm.AgentActionQuery
		}
	}
	return llm.AgentActionQuery
}
