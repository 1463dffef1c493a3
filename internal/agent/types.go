// Package agent implements the translation-and-execution loop that turns
// an SRE's question into a validated Cypher plan: routing, translation,
// the bounded probe/final state machine, and final-answer synthesis.
package agent

import (
	"github.com/google/uuid"

	"github.com/antflydb/ariadne/internal/llm"
)

// ConversationTurn is one prior question/answer pair fed back to the
// translator as context for follow-up questions.
type ConversationTurn struct {
	TurnID        string
	Question      string
	Cypher        string
	ResultSummary string
	Bindings      map[string]any
}

// newTurnID generates a fresh per-turn identifier, used to correlate a
// turn across logs independent of its position in history.
func newTurnID() string {
	return uuid.NewString()
}

// AgentAction is what an agent-loop step asked the translator to do.
type AgentAction int

const (
	ActionQuery AgentAction = iota
	ActionFinal
)

func (a AgentAction) String() string {
	if a == ActionFinal {
		return "final"
	}
	return "query"
}

// AgentStep is one entry in an agent plan's history: the action taken,
// the Cypher behind it, and (for query steps) a summary of what came
// back from the graph backend.
type AgentStep struct {
	Action        AgentAction
	Cypher        string
	Params        map[string]any
	ResultSummary string
	Usage         *llm.Usage
}

// AgentPlan is the finite, terminating output of the agent loop: the
// steps taken plus the final query to run (with its params) and the
// aggregate usage across every translator call in the plan.
type AgentPlan struct {
	PlanID string
	Cypher string
	Params map[string]any
	Steps  []AgentStep
	Usage  *llm.Usage
}

// Confidence is the Analyst's self-reported confidence in its answer.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// AnalysisResult is the final answer synthesized from a question and
// its query results.
type AnalysisResult struct {
	Title      string
	Summary    string
	Bullets    []string
	Rows       []map[string]any
	FollowUps  []string
	Confidence Confidence
	Usage      *llm.Usage
}
