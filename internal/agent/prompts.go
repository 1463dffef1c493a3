package agent

// SchemaProvider supplies the Kubernetes cluster-graph schema text that
// grounds every prompt telling the model what it can query. The full
// schema generator (k8s API types run through JSON-schema reflection)
// has no counterpart dependency in this module's stack; a concrete
// implementation renders a fixed summary of the node/edge types the
// graph backend exposes instead of reflecting over live API types.
type SchemaProvider interface {
	FullPrompt() string
}

func analysisCompactionPrompt() string {
	return "You summarize short-term investigation context for future SRE answers. " +
		"Return a concise, plain-text summary with key entities, filters, assumptions, and results. " +
		"Keep it under 1200 characters. Do not return Cypher."
}

func analysisPrompt(structured bool) string {
	base := "You are an SRE assistant. Given the user's question and the query results below, " +
		"produce a clear, accurate answer grounded only in the provided results."
	if structured {
		return base + "\n\nRespond with a JSON object with keys \"title\", \"summary\", \"bullets\" (array of strings), " +
			"\"rows\" (array of objects), \"follow_ups\" (array of strings), and \"confidence\" (one of \"low\", \"medium\", \"high\")."
	}
	return base + "\n\nWrite a plain-text answer. End with a \"Follow-ups:\" section listing suggested next questions, one per line."
}

func routerPrompt() string {
	return "Classify whether answering the user's question requires a single Cypher query (one_shot) " +
		"or an iterative investigation across multiple queries (multi_turn). Respond with only the classification."
}

func agenticPrompt(schema SchemaProvider, structured bool) string {
	p := schema.FullPrompt()
	if structured {
		return p + "\n\nAt each step, respond with a JSON object with keys \"action\" (\"query\" or \"final\"), " +
			"\"cypher\" (string) and optionally \"params\" (array of {key, value})."
	}
	return p + "\n\nAt each step, respond with a line starting \"Action: query\" or \"Action: final\", " +
		"followed by a line starting \"Cypher:\" with the query."
}
