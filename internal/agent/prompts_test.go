package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSchemaProvider struct{ text string }

func (f fakeSchemaProvider) FullPrompt() string { return f.text }

func TestAgenticPromptStructuredAsksForActionAndCypher(t *testing.T) {
	p := agenticPrompt(fakeSchemaProvider{"SCHEMA"}, true)
	assert.True(t, strings.HasPrefix(p, "SCHEMA"))
	assert.Contains(t, p, "\"action\"")
	assert.Contains(t, p, "\"cypher\"")
}

func TestAgenticPromptUnstructuredAsksForActionLine(t *testing.T) {
	p := agenticPrompt(fakeSchemaProvider{"SCHEMA"}, false)
	assert.Contains(t, p, "Action: query")
	assert.Contains(t, p, "Action: final")
}

func TestAnalysisCompactionPromptMentionsCharacterLimit(t *testing.T) {
	assert.Contains(t, analysisCompactionPrompt(), "1200 characters")
}

func TestRouterPromptAsksForClassification(t *testing.T) {
	assert.Contains(t, routerPrompt(), "one_shot")
	assert.Contains(t, routerPrompt(), "multi_turn")
}
