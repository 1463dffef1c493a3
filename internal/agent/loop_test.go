package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/antflydb/ariadne/internal/llm"
)

// fakeAgentTranslator scripts a fixed sequence of step results,
// returning the last one repeatedly once exhausted.
type fakeAgentTranslator struct {
	steps []llm.AgentStepResult
	calls int
}

func (f *fakeAgentTranslator) Step(ctx context.Context, question string, history []llm.HistoryTurn, contextSummary, feedback string) (llm.AgentStepResult, error) {
	idx := f.calls
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	f.calls++
	return f.steps[idx], nil
}

type fakeExecutor struct {
	rows []json.RawMessage
}

func (f *fakeExecutor) Execute(ctx context.Context, query string) ([]json.RawMessage, error) {
	return f.rows, nil
}

func TestLoopTerminatesOnFinalStep(t *testing.T) {
	tr := &fakeAgentTranslator{steps: []llm.AgentStepResult{
		{Action: llm.AgentActionQuery, Cypher: "MATCH (p:Pod) RETURN p"},
		{Action: llm.AgentActionFinal, Cypher: "MATCH (p:Pod) RETURN count(p) AS total"},
	}}
	exec := &fakeExecutor{rows: []json.RawMessage{json.RawMessage(`{"name":"api-1"}`)}}
	loop := NewLoop(tr, exec, zap.NewNop(), LoopConfig{})

	plan, err := loop.Run(context.Background(), "how many pods are running?", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "MATCH (p:Pod) RETURN count(p) AS total", plan.Cypher)
	assert.Len(t, plan.Steps, 2)
	assert.Equal(t, ActionQuery, plan.Steps[0].Action)
	assert.Equal(t, ActionFinal, plan.Steps[1].Action)
}

func TestLoopPromotesLastQueryAtMaxSteps(t *testing.T) {
	steps := make([]llm.AgentStepResult, 0, 3)
	for i := 0; i < 3; i++ {
		steps = append(steps, llm.AgentStepResult{Action: llm.AgentActionQuery, Cypher: queryFor(i)})
	}
	tr := &fakeAgentTranslator{steps: steps}
	exec := &fakeExecutor{rows: nil}
	loop := NewLoop(tr, exec, zap.NewNop(), LoopConfig{MaxSteps: 3})

	plan, err := loop.Run(context.Background(), "what is wrong with the cluster?", nil, "")
	require.NoError(t, err)
	assert.Equal(t, queryFor(2), plan.Cypher)
	assert.Equal(t, ActionFinal, plan.Steps[len(plan.Steps)-1].Action)
}

func TestLoopPromotesOnDuplicateProbe(t *testing.T) {
	tr := &fakeAgentTranslator{steps: []llm.AgentStepResult{
		{Action: llm.AgentActionQuery, Cypher: "MATCH (p:Pod) RETURN p"},
		{Action: llm.AgentActionQuery, Cypher: "MATCH (p:Pod) RETURN p"},
	}}
	exec := &fakeExecutor{}
	loop := NewLoop(tr, exec, zap.NewNop(), LoopConfig{MaxSteps: 6})

	plan, err := loop.Run(context.Background(), "any repeated probes?", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "MATCH (p:Pod) RETURN p", plan.Cypher)
	assert.Equal(t, ActionFinal, plan.Steps[len(plan.Steps)-1].Action)
}

func TestLoopRejectsWritingQuery(t *testing.T) {
	tr := &fakeAgentTranslator{steps: []llm.AgentStepResult{
		{Action: llm.AgentActionQuery, Cypher: "CREATE (p:Pod {name: 'x'})"},
	}}
	exec := &fakeExecutor{}
	loop := NewLoop(tr, exec, zap.NewNop(), LoopConfig{MaxRetries: 1})

	_, err := loop.Run(context.Background(), "delete something", nil, "")
	require.Error(t, err)
}

func queryFor(i int) string {
	switch i {
	case 0:
		return "MATCH (p:Pod) RETURN p"
	case 1:
		return "MATCH (p:Pod) WHERE p.status.phase = 'Failed' RETURN p"
	default:
		return "MATCH (p:Pod)-[:RUNS_ON]->(h:Host) RETURN p, h"
	}
}
