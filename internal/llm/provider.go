// Package llm holds the capability interfaces for the translation,
// routing and analysis calls the agent loop makes against a language
// model, and the response cleaning and error-wrapping shared across them.
// The genkit-backed implementations of those interfaces live in
// internal/agent.
package llm

import "context"

// Usage is token accounting for a single provider call, mirrored from
// whatever usage block the provider response reports.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ReasoningTokens  *int
	CachedTokens     *int
}

// Config is the LLM backend configuration shared by every capability:
// which provider/model to call, how to authenticate, and whether to ask
// for structured JSON output.
type Config struct {
	Backend          string
	BaseURL          string
	Model            string
	APIKey           string
	TimeoutSeconds   int
	StructuredOutput bool
}

// HistoryTurn is the minimal shape an AgentTranslator needs from a prior
// conversation turn, decoupled from the agent package to avoid an
// import cycle (agent depends on llm for Usage).
type HistoryTurn struct {
	Question      string
	Cypher        string
	ResultSummary string
}

// RouteDecision is the router's classification of a question.
type RouteDecision int

const (
	RouteOneShot RouteDecision = iota
	RouteMultiTurn
)

// RouteResult is the router's classification plus its usage.
type RouteResult struct {
	Decision RouteDecision
	Usage    *Usage
}

// Router classifies a question as needing one LLM call or a multi-step
// investigation.
type Router interface {
	Classify(ctx context.Context, question string) (RouteResult, error)
}

// AnalysisResult is the analyst's synthesized final answer.
type AnalysisResult struct {
	Title      string
	Summary    string
	Bullets    []string
	Rows       []map[string]any
	FollowUps  []string
	Confidence string
	Usage      *Usage
}

// Analyst turns a question and its final query results into a
// user-facing answer, and compacts prior turns into a rolling summary.
type Analyst interface {
	Analyze(ctx context.Context, question string, rows []map[string]any) (AnalysisResult, error)
	Compact(ctx context.Context, turns []HistoryTurn) (string, *Usage, error)
}

// AgentAction is the action an AgentTranslator step asked for.
type AgentAction int

const (
	AgentActionQuery AgentAction = iota
	AgentActionFinal
)

// AgentStepResult is one step of the bounded agent loop: either another
// probe query or the final answer's query, with feedback from a failed
// validation folded back in on retry.
type AgentStepResult struct {
	Action AgentAction
	Cypher string
	Params map[string]any
	Usage  *Usage
}

// AgentTranslator drives the agent loop's per-step translation calls: it
// sees the accumulated step history and decides whether to probe
// further or conclude, one question/history/feedback call at a time.
type AgentTranslator interface {
	Step(ctx context.Context, question string, history []HistoryTurn, contextSummary, feedback string) (AgentStepResult, error)
}
