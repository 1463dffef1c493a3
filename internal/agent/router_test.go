package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/antflydb/ariadne/internal/llm"
)

func TestParseRouteTextMatchesVariants(t *testing.T) {
	cases := map[string]llm.RouteDecision{
		"multi_turn":                      llm.RouteMultiTurn,
		"MULTI_TURN":                      llm.RouteMultiTurn,
		"this needs a multiturn approach": llm.RouteMultiTurn,
		"route: multi-turn":               llm.RouteMultiTurn,
		"one_shot":                        llm.RouteOneShot,
		"a single query will do":          llm.RouteOneShot,
		"":                                llm.RouteOneShot,
	}
	for text, want := range cases {
		assert.Equal(t, want, parseRouteText(text), "text=%q", text)
	}
}
