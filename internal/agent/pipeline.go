package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/antflydb/ariadne/internal/llm"
	"github.com/antflydb/ariadne/internal/modelconfig"
)

// Pipeline wires the router, the bounded agent loop and the analyst
// into the end-to-end question-answering flow: classify, translate (in
// one shot or via the loop), execute the final query, synthesize an
// answer, and fold the turn into the session's rolling history.
type Pipeline struct {
	Router   llm.Router
	Analyst  llm.Analyst
	Loop     *Loop
	Executor QueryExecutor
	Logger   *zap.Logger
	Model    string

	history []ConversationTurn
	summary string
}

func NewPipeline(router llm.Router, analyst llm.Analyst, loop *Loop, executor QueryExecutor, logger *zap.Logger, model string) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Router: router, Analyst: analyst, Loop: loop, Executor: executor, Logger: logger, Model: model}
}

// Ask answers a single question, routing it to a one-shot translation
// or the full agent loop, executing the resulting query, and returning
// an analyzed answer. The turn is appended to the session's history.
func (p *Pipeline) Ask(ctx context.Context, question string) (*AnalysisResult, error) {
	route, err := p.Router.Classify(ctx, question)
	if err != nil {
		return nil, err
	}

	p.maybeCompact(ctx)

	var plan *AgentPlan
	var runErr error
	if route.Decision == llm.RouteOneShot {
		plan, runErr = p.Loop.RunOneShot(ctx, question, p.llmHistory(), p.summary)
	} else {
		plan, runErr = p.Loop.Run(ctx, question, p.llmHistory(), p.summary)
	}
	if runErr != nil {
		return nil, runErr
	}
	finalCypher, finalParams := plan.Cypher, plan.Params

	rows, eerr := p.Executor.Execute(ctx, finalCypher)
	if eerr != nil {
		return nil, eerr
	}

	decoded := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		decoded = append(decoded, map[string]any{"raw": string(r)})
	}

	analysis, aerr := p.Analyst.Analyze(ctx, question, decoded)
	if aerr != nil {
		return nil, aerr
	}

	p.history = append(p.history, ConversationTurn{
		TurnID:        newTurnID(),
		Question:      question,
		Cypher:        finalCypher,
		Bindings:      finalParams,
		ResultSummary: analysis.Summary,
	})

	return &AnalysisResult{
		Title:      analysis.Title,
		Summary:    analysis.Summary,
		Bullets:    analysis.Bullets,
		Rows:       analysis.Rows,
		FollowUps:  analysis.FollowUps,
		Confidence: Confidence(analysis.Confidence),
		Usage:      analysis.Usage,
	}, nil
}

func (p *Pipeline) llmHistory() []llm.HistoryTurn {
	out := make([]llm.HistoryTurn, len(p.history))
	for i, t := range p.history {
		out[i] = llm.HistoryTurn{Question: t.Question, Cypher: t.Cypher, ResultSummary: t.ResultSummary}
	}
	return out
}

// maybeCompact checks the resolved token budget for the active model
// and, once the estimated history tokens reach the configured fraction
// of it, replaces the whole history with the analyst's summary of it.
// Every turn is compacted, not only the oldest ones, and a summary from
// an earlier compaction is not passed to the analyst: the new summary
// overwrites it.
func (p *Pipeline) maybeCompact(ctx context.Context) {
	budget, ok := modelconfig.ContextWindowTokens(p.Logger, p.Model)
	if !ok || len(p.history) == 0 {
		return
	}
	threshold := modelconfig.CompactionThreshold(budget)
	if estimateHistoryTokens(p.history) < threshold {
		return
	}

	summary, _, err := p.Analyst.Compact(ctx, p.llmHistory())
	if err != nil {
		p.Logger.Warn("agent: compaction failed, keeping full history", zap.Error(err))
		return
	}
	p.summary = summary
	p.history = nil
}

// estimateHistoryTokens is a rough 4-characters-per-token heuristic;
// the exact count depends on the provider's tokenizer, which this
// module never has local access to.
func estimateHistoryTokens(history []ConversationTurn) int {
	chars := 0
	for _, t := range history {
		chars += len(t.Question) + len(t.Cypher) + len(t.ResultSummary)
	}
	return chars / 4
}
