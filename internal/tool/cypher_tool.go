// Package tool wraps a validated Cypher query for execution against a
// graph backend; the agent loop and pipeline call it directly to run
// probe and final queries.
package tool

import (
	"context"
	"encoding/json"

	"github.com/antflydb/ariadne/internal/core"
)

// CypherQueryTool executes an already-validated query against a graph
// backend. It never re-validates: every caller in this module runs a
// query through cypher.ParseQuery (which lifts it) and cypher.Validate
// before it reaches here.
type CypherQueryTool struct {
	Backend core.GraphBackend
}

func NewCypherQueryTool(backend core.GraphBackend) *CypherQueryTool {
	return &CypherQueryTool{Backend: backend}
}

// Execute runs query against the backend and returns the raw result
// rows.
func (t *CypherQueryTool) Execute(ctx context.Context, query string) ([]json.RawMessage, error) {
	rows, err := t.Backend.ExecuteQuery(ctx, query)
	if err != nil {
		return nil, core.Wrap(err)
	}
	return rows, nil
}
