package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/antflydb/ariadne/internal/core"
	"github.com/antflydb/ariadne/internal/cypher"
	"github.com/antflydb/ariadne/internal/llm"
)

const (
	DefaultMaxSteps   = 6
	DefaultMaxRetries = 2

	// resultSummaryLimit truncates oversized query results before they
	// are folded back into the next step's history.
	resultSummaryLimit = 2000
)

// LoopConfig bounds a single agent plan's execution.
type LoopConfig struct {
	MaxSteps   int
	MaxRetries int
}

func (c LoopConfig) withDefaults() LoopConfig {
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}

// QueryExecutor runs a validated Cypher query and returns raw result
// rows, satisfied by *tool.CypherQueryTool in production and a fake in
// tests.
type QueryExecutor interface {
	Execute(ctx context.Context, query string) ([]json.RawMessage, error)
}

// Loop drives the bounded probe/final state machine described for the
// agent loop: translate, validate with retry-on-feedback, execute
// probes, and terminate into a final plan.
type Loop struct {
	Translator llm.AgentTranslator
	Executor   QueryExecutor
	Logger     *zap.Logger
	Config     LoopConfig
}

func NewLoop(translator llm.AgentTranslator, executor QueryExecutor, logger *zap.Logger, cfg LoopConfig) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{Translator: translator, Executor: executor, Logger: logger, Config: cfg.withDefaults()}
}

// Run executes the loop for a single question, returning the finished
// AgentPlan. seedHistory and contextSummary carry prior conversation
// state (if any) into the first translator call. The plan's
// Cypher/Params are the final query to run; the caller (the surrounding
// pipeline) executes it, the loop never does.
func (l *Loop) Run(ctx context.Context, question string, seedHistory []llm.HistoryTurn, contextSummary string) (*AgentPlan, error) {
	return l.run(ctx, question, seedHistory, contextSummary, l.Config.MaxSteps)
}

// RunOneShot runs the same state machine with max_steps=1, so the
// one-shot and multi-turn paths share the promotion-to-final logic
// instead of the pipeline special-casing one-shot translation.
func (l *Loop) RunOneShot(ctx context.Context, question string, seedHistory []llm.HistoryTurn, contextSummary string) (*AgentPlan, error) {
	return l.run(ctx, question, seedHistory, contextSummary, 1)
}

func (l *Loop) run(ctx context.Context, question string, seedHistory []llm.HistoryTurn, contextSummary string, maxSteps int) (*AgentPlan, error) {
	plan := &AgentPlan{PlanID: newTurnID()}
	history := append([]llm.HistoryTurn(nil), seedHistory...)
	seenProbes := make(map[uint64]bool)

	for stepNum := 0; stepNum < maxSteps; stepNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, final, err := l.translateWithRetry(ctx, question, history, contextSummary)
		if err != nil {
			return nil, err
		}
		accumulateUsage(plan, result.Usage)

		if final {
			plan.Cypher = result.Cypher
			plan.Params = result.Params
			plan.Steps = append(plan.Steps, AgentStep{
				Action: ActionFinal,
				Cypher: result.Cypher,
				Params: result.Params,
				Usage:  result.Usage,
			})
			return plan, nil
		}

		probeHash := xxhash.Sum64String(result.Cypher)
		if seenProbes[probeHash] {
			l.Logger.Info("agent loop: duplicate probe query, promoting to final", zap.String("cypher", result.Cypher))
			plan.Cypher = result.Cypher
			plan.Params = result.Params
			plan.Steps = append(plan.Steps, AgentStep{Action: ActionFinal, Cypher: result.Cypher, Params: result.Params, Usage: result.Usage})
			return plan, nil
		}
		seenProbes[probeHash] = true

		rows, execErr := l.Executor.Execute(ctx, result.Cypher)
		if execErr != nil {
			return nil, core.Wrap(execErr)
		}
		summary := summarizeRows(rows)

		step := AgentStep{Action: ActionQuery, Cypher: result.Cypher, Params: result.Params, ResultSummary: summary, Usage: result.Usage}
		plan.Steps = append(plan.Steps, step)
		history = append(history, llm.HistoryTurn{Question: question, Cypher: result.Cypher, ResultSummary: summary})
	}

	// max_steps reached: promote the last valid query to final.
	if len(plan.Steps) == 0 {
		return nil, &core.Error{Kind: core.KindExecutor, Message: "agent loop reached max_steps with no valid query to promote"}
	}
	last := &plan.Steps[len(plan.Steps)-1]
	last.Action = ActionFinal
	plan.Cypher = last.Cypher
	plan.Params = last.Params
	return plan, nil
}

// translateWithRetry calls the translator, validating its output and
// retrying with feedback up to MaxRetries times. Only validation
// failures are retried; transport errors propagate immediately.
func (l *Loop) translateWithRetry(ctx context.Context, question string, history []llm.HistoryTurn, contextSummary string) (llm.AgentStepResult, bool, error) {
	var feedback string
	for attempt := 0; attempt <= l.Config.MaxRetries; attempt++ {
		result, err := l.Translator.Step(ctx, question, history, contextSummary, feedback)
		if err != nil {
			wrapped := core.Wrap(err)
			if !wrapped.Kind.Recoverable() {
				return llm.AgentStepResult{}, false, wrapped
			}
			feedback = wrapped.Message
			continue
		}

		query, perr := cypher.ParseQuery(result.Cypher)
		if perr != nil {
			feedback = perr.Error()
			continue
		}
		if verr := cypher.Validate(query, cypher.ReadOnly); verr != nil {
			feedback = verr.Error()
			continue
		}

		return result, result.Action == llm.AgentActionFinal, nil
	}

	return llm.AgentStepResult{}, false, &core.Error{
		Kind:    core.KindValidation,
		Message: fmt.Sprintf("translator exhausted %d retries: %s", l.Config.MaxRetries, feedback),
	}
}

func summarizeRows(rows []json.RawMessage) string {
	encoded, err := json.Marshal(rows)
	if err != nil {
		return fmt.Sprintf("%d rows (unsummarizable: %v)", len(rows), err)
	}
	if len(encoded) <= resultSummaryLimit {
		return string(encoded)
	}
	return fmt.Sprintf("%s... (truncated, %d rows total)", string(encoded[:resultSummaryLimit]), len(rows))
}

func accumulateUsage(plan *AgentPlan, u *llm.Usage) {
	if u == nil {
		return
	}
	if plan.Usage == nil {
		plan.Usage = &llm.Usage{}
	}
	plan.Usage.PromptTokens += u.PromptTokens
	plan.Usage.CompletionTokens += u.CompletionTokens
	plan.Usage.TotalTokens += u.TotalTokens
}
