package agent

// StaticSchema is a trivial SchemaProvider for tests and local runs: a
// fixed description of the node/edge types the in-memory graph backend
// exposes, standing in for the schema-reflection generator that is out
// of scope for this module.
type StaticSchema struct {
	Text string
}

func (s StaticSchema) FullPrompt() string {
	if s.Text != "" {
		return s.Text
	}
	return defaultSchemaPrompt
}

const defaultSchemaPrompt = `You translate SRE questions about a Kubernetes cluster into read-only Cypher queries.

Node labels: Pod, Node, Deployment, ReplicaSet, Service, ConfigMap, Secret, PersistentVolumeClaim, Namespace, Event.
Every node has properties: uid, name, namespace (where applicable), labels, annotations, and a kind-specific status map.
Relationship types: OWNS (controller to owned object), RUNS_ON (Pod to Node), SELECTS (Service to Pod), MOUNTS (Pod to ConfigMap/Secret/PersistentVolumeClaim), SCHEDULED_IN (Pod to Namespace).

Only MATCH/WHERE/WITH/RETURN/ORDER BY/LIMIT/UNWIND clauses are valid; no writes.`
