package core

import (
	"context"
	"encoding/json"
)

// ClusterState is the subset of the Kubernetes object graph a backend
// ingests: a flat collection of objects plus the edges the scraper
// derived between them (ownership, scheduling, volume binding, ...).
type ClusterState struct {
	Objects []json.RawMessage `json:"objects"`
	Edges   []GraphEdge       `json:"edges"`
}

// GraphEdge connects two object UIDs with a relationship type usable as
// a Cypher relationship type (e.g. OWNS, RUNS_ON, MOUNTS).
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// ClusterStateDiff is an incremental update to a previously created
// graph: objects to upsert, objects to remove, and edges to add or
// drop, as produced by the watch/informer layer between snapshots.
type ClusterStateDiff struct {
	Upsert    []json.RawMessage `json:"upsert"`
	RemoveIDs []string          `json:"remove_ids"`
	AddEdges  []GraphEdge       `json:"add_edges"`
	DropEdges []GraphEdge       `json:"drop_edges"`
}

// GraphBackend is the storage layer the read-only query tool executes
// against. Implementations own translating a validated Cypher AST (or
// its rendered text) into their native query form; the tool package
// passes the query through unchanged and never validates it itself (its
// callers do).
type GraphBackend interface {
	Create(ctx context.Context, state ClusterState) error
	Update(ctx context.Context, diff ClusterStateDiff) error
	ExecuteQuery(ctx context.Context, query string) ([]json.RawMessage, error)
	Shutdown(ctx context.Context)
}
