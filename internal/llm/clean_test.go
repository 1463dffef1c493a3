package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCypherFromFence(t *testing.T) {
	text := "```cypher\nMATCH (n) RETURN n\n```"
	assert.Equal(t, "MATCH (n) RETURN n", ExtractCypher(text))
}

func TestExtractCypherFromGenericFence(t *testing.T) {
	text := "```\nMATCH (n) RETURN n\n```"
	assert.Equal(t, "MATCH (n) RETURN n", ExtractCypher(text))
}

func TestExtractCypherFromPrefix(t *testing.T) {
	text := "cypher: MATCH (n) RETURN n"
	assert.Equal(t, "MATCH (n) RETURN n", ExtractCypher(text))
}

func TestExtractCypherRawText(t *testing.T) {
	text := "  MATCH (n) RETURN n  "
	assert.Equal(t, "MATCH (n) RETURN n", ExtractCypher(text))
}

func TestExtractCypherPrefixIsCaseInsensitive(t *testing.T) {
	text := "Cypher: MATCH (n) RETURN n"
	assert.Equal(t, "MATCH (n) RETURN n", ExtractCypher(text))
}

func TestCleanJSONResponseStripsJSONFence(t *testing.T) {
	text := "```json\n{\"cypher\":\"MATCH (n) RETURN n\"}\n```"
	assert.Equal(t, `{"cypher":"MATCH (n) RETURN n"}`, CleanJSONResponse(text))
}

func TestCleanJSONResponseStripsGenericFence(t *testing.T) {
	text := "```\n{\"cypher\":\"MATCH (n) RETURN n\"}\n```"
	assert.Equal(t, `{"cypher":"MATCH (n) RETURN n"}`, CleanJSONResponse(text))
}

func TestCleanJSONResponsePassesThroughUnfenced(t *testing.T) {
	text := `{"cypher":"MATCH (n) RETURN n"}`
	assert.Equal(t, text, CleanJSONResponse(text))
}

func TestCleanJSONResponseIsIdempotent(t *testing.T) {
	once := CleanJSONResponse("```json\n{\"a\":1}\n```")
	twice := CleanJSONResponse(once)
	assert.Equal(t, once, twice)
}
