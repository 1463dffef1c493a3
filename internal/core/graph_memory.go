package core

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryGraphBackend is an in-process GraphBackend used by the CLI's
// local-run mode, where a real (if trivial) executor stands in for a
// cluster-backed one. ExecuteQuery does not interpret Cypher;
// it returns the whole object set, which is sufficient for exercising
// the agent loop's retry and compaction paths without a real cluster.
type MemoryGraphBackend struct {
	mu      sync.RWMutex
	objects []json.RawMessage
	edges   []GraphEdge
}

func NewMemoryGraphBackend() *MemoryGraphBackend {
	return &MemoryGraphBackend{}
}

func (m *MemoryGraphBackend) Create(ctx context.Context, state ClusterState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = append([]json.RawMessage(nil), state.Objects...)
	m.edges = append([]GraphEdge(nil), state.Edges...)
	return nil
}

func (m *MemoryGraphBackend) Update(ctx context.Context, diff ClusterStateDiff) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(diff.RemoveIDs) > 0 {
		remove := make(map[string]bool, len(diff.RemoveIDs))
		for _, id := range diff.RemoveIDs {
			remove[id] = true
		}
		kept := m.objects[:0]
		for _, obj := range m.objects {
			var withUID struct {
				Metadata struct {
					UID string `json:"uid"`
				} `json:"metadata"`
			}
			if err := json.Unmarshal(obj, &withUID); err == nil && remove[withUID.Metadata.UID] {
				continue
			}
			kept = append(kept, obj)
		}
		m.objects = kept
	}
	if len(diff.DropEdges) > 0 {
		drop := make(map[GraphEdge]bool, len(diff.DropEdges))
		for _, e := range diff.DropEdges {
			drop[e] = true
		}
		keptEdges := m.edges[:0]
		for _, e := range m.edges {
			if !drop[e] {
				keptEdges = append(keptEdges, e)
			}
		}
		m.edges = keptEdges
	}
	m.objects = append(m.objects, diff.Upsert...)
	m.edges = append(m.edges, diff.AddEdges...)
	return nil
}

func (m *MemoryGraphBackend) ExecuteQuery(ctx context.Context, query string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]json.RawMessage, len(m.objects))
	copy(out, m.objects)
	return out, nil
}

func (m *MemoryGraphBackend) Shutdown(ctx context.Context) {}

var _ GraphBackend = (*MemoryGraphBackend)(nil)
