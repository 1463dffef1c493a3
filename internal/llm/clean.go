package llm

import (
	"strings"
)

// ExtractCypher pulls a bare Cypher query out of raw provider text in
// unstructured mode. Priority order: a "cypher:" prefix, a ```cypher
// fence, a generic ``` fence, else the trimmed text itself.
func ExtractCypher(text string) string {
	trimmed := strings.TrimSpace(text)

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "cypher:") {
		return strings.TrimSpace(trimmed[len("cypher:"):])
	}

	if fenced, ok := stripFence(trimmed, "```cypher"); ok {
		return fenced
	}
	if fenced, ok := stripFence(trimmed, "```"); ok {
		return fenced
	}

	return trimmed
}

// CleanJSONResponse strips a ```json ... ``` or a generic ``` ... ```
// fence from around a JSON payload, per the C9 response cleaner: if the
// trimmed text starts with ```json and ends with ```, strip both; else
// if it starts and ends with ```, strip both; otherwise pass through.
func CleanJSONResponse(text string) string {
	trimmed := strings.TrimSpace(text)
	if fenced, ok := stripFence(trimmed, "```json"); ok {
		return fenced
	}
	if fenced, ok := stripFence(trimmed, "```"); ok {
		return fenced
	}
	return trimmed
}

// stripFence removes a leading "open" marker and trailing "```" from
// trimmed text, returning the inner text trimmed again. ok is false if
// trimmed doesn't start with open or doesn't end with a closing fence.
func stripFence(trimmed, open string) (string, bool) {
	if !strings.HasPrefix(trimmed, open) {
		return "", false
	}
	rest := trimmed[len(open):]
	if !strings.HasSuffix(rest, "```") {
		return "", false
	}
	rest = rest[:len(rest)-len("```")]
	return strings.TrimSpace(rest), true
}
