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

type fakeRouter struct{ decision llm.RouteDecision }

func (f *fakeRouter) Classify(ctx context.Context, question string) (llm.RouteResult, error) {
	return llm.RouteResult{Decision: f.decision}, nil
}

type fakeAnalyst struct {
	result  llm.AnalysisResult
	summary string
}

func (f *fakeAnalyst) Analyze(ctx context.Context, question string, rows []map[string]any) (llm.AnalysisResult, error) {
	return f.result, nil
}

func (f *fakeAnalyst) Compact(ctx context.Context, turns []llm.HistoryTurn) (string, *llm.Usage, error) {
	return f.summary, nil, nil
}

func TestPipelineOneShotRunsLoopWithMaxStepsOne(t *testing.T) {
	router := &fakeRouter{decision: llm.RouteOneShot}
	analyst := &fakeAnalyst{result: llm.AnalysisResult{Title: "Pod count", Summary: "3 pods running", Confidence: "high"}}
	exec := &fakeExecutor{rows: []json.RawMessage{json.RawMessage(`{}`)}}
	loopTranslator := &fakeAgentTranslator{steps: []llm.AgentStepResult{
		{Action: llm.AgentActionFinal, Cypher: "MATCH (p:Pod) RETURN count(p) AS total"},
	}}
	loop := NewLoop(loopTranslator, exec, zap.NewNop(), LoopConfig{})

	p := NewPipeline(router, analyst, loop, exec, zap.NewNop(), "test-model")
	result, err := p.Ask(context.Background(), "how many pods are running?")
	require.NoError(t, err)
	assert.Equal(t, "Pod count", result.Title)
	assert.Equal(t, Confidence("high"), result.Confidence)
	require.Len(t, p.history, 1)
	assert.Equal(t, "MATCH (p:Pod) RETURN count(p) AS total", p.history[0].Cypher)
}

func TestPipelineOneShotPromotesFirstQueryWhenNotFinal(t *testing.T) {
	router := &fakeRouter{decision: llm.RouteOneShot}
	analyst := &fakeAnalyst{result: llm.AnalysisResult{Summary: "done"}}
	exec := &fakeExecutor{rows: nil}
	loopTranslator := &fakeAgentTranslator{steps: []llm.AgentStepResult{
		{Action: llm.AgentActionQuery, Cypher: "MATCH (p:Pod) RETURN p"},
	}}
	loop := NewLoop(loopTranslator, exec, zap.NewNop(), LoopConfig{})

	p := NewPipeline(router, analyst, loop, exec, zap.NewNop(), "test-model")
	result, err := p.Ask(context.Background(), "list pods")
	require.NoError(t, err)
	assert.Equal(t, "done", result.Summary)
	assert.Equal(t, "MATCH (p:Pod) RETURN p", p.history[0].Cypher)
}

func TestPipelineMultiTurnUsesFullLoopBudget(t *testing.T) {
	router := &fakeRouter{decision: llm.RouteMultiTurn}
	analyst := &fakeAnalyst{result: llm.AnalysisResult{Summary: "investigation complete"}}
	exec := &fakeExecutor{rows: nil}
	loopTranslator := &fakeAgentTranslator{steps: []llm.AgentStepResult{
		{Action: llm.AgentActionQuery, Cypher: "MATCH (n:Node) RETURN n"},
		{Action: llm.AgentActionFinal, Cypher: "MATCH (n:Node) WHERE n.status.ready = false RETURN n"},
	}}
	loop := NewLoop(loopTranslator, exec, zap.NewNop(), LoopConfig{})

	p := NewPipeline(router, analyst, loop, exec, zap.NewNop(), "test-model")
	result, err := p.Ask(context.Background(), "why is the cluster unhealthy?")
	require.NoError(t, err)
	assert.Equal(t, "investigation complete", result.Summary)
	assert.Equal(t, "MATCH (n:Node) WHERE n.status.ready = false RETURN n", p.history[0].Cypher)
}
