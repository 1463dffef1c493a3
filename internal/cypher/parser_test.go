package cypher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsRestrictedSubset(t *testing.T) {
	cases := []string{
		`MATCH (p:Pod) WHERE p.status.phase IN ['Failed','Unknown'] RETURN count(p) AS total`,
		`MATCH (n) RETURN n`,
		`MATCH (a)-[:KNOWS]->(b) RETURN a, b`,
		`MATCH (n:Pod) WHERE n.name ENDS WITH 'abc' RETURN n`,
		`MATCH (n) WHERE n:Pod OR n:Service RETURN n`,
		`MATCH (n) WHERE n.name IS NOT NULL RETURN n`,
		`WITH 1 AS x WHERE x > 0 RETURN x`,
		`MATCH (n) RETURN n ORDER BY n.name DESC SKIP 1 LIMIT 10`,
		`UNWIND [1,2,3] AS x RETURN x`,
		`MATCH (n) WITH n, [x IN n.tags WHERE x = 'a' | x] AS filtered RETURN filtered`,
	}
	for _, src := range cases {
		tree := Parse(src)
		require.NotNil(t, tree.Root, src)
		assert.False(t, tree.Root.HasError(), "expected no parse error for: %s", src)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	cases := []string{
		``,
		`MATCH (`,
		`RETURN RETURN`,
		`MATCH (n) RETURN n WHERE`,
	}
	for _, src := range cases {
		tree := Parse(src)
		assert.True(t, tree.Root.HasError(), "expected parse error for: %q", src)
	}
}
