package cypher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiftSeedScenario1CountAggregate(t *testing.T) {
	q, err := ParseQuery(`MATCH (p:Pod) WHERE p.status.phase IN ['Failed','Unknown'] RETURN count(p) AS total`)
	require.NoError(t, err)
	require.Len(t, q.Clauses, 2)

	match, ok := q.Clauses[0].(*MatchClause)
	require.True(t, ok)
	node, ok := match.Pattern.(NodePattern)
	require.True(t, ok)
	assert.Equal(t, "p", node.Variable)
	assert.Equal(t, []string{"Pod"}, node.Labels)
	require.NotNil(t, match.Where)

	ret, ok := q.Clauses[1].(*ReturnClause)
	require.True(t, ok)
	require.Len(t, ret.Projections, 1)
	fn, ok := ret.Projections[0].Expr.(*FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "count", fn.Name)
	assert.Equal(t, "total", ret.Projections[0].Alias)

	assert.NoError(t, Validate(q, ReadOnly))
}

func TestLiftSeedScenario2RejectsCreate(t *testing.T) {
	q, err := ParseQuery(`CREATE (:Pod) RETURN 1`)
	require.NoError(t, err)
	verr := Validate(q, ReadOnly)
	require.Error(t, verr)
	assert.Contains(t, verr.Error(), "updating")
}

func TestLiftSeedScenario3RejectsCall(t *testing.T) {
	q, err := ParseQuery(`CALL db.labels() YIELD label RETURN label`)
	require.NoError(t, err)
	verr := Validate(q, ReadOnly)
	require.Error(t, verr)
	assert.Contains(t, verr.Error(), "CALL")
}

func TestLiftSeedScenario4RejectsInlinePropertyMap(t *testing.T) {
	_, err := ParseQuery(`MATCH (n {name:'x'}) RETURN n`)
	require.Error(t, err)
	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestLiftRejectsMultiHopPattern(t *testing.T) {
	_, err := ParseQuery(`MATCH (a)-[:KNOWS]->(b)-[:KNOWS]->(c) RETURN a`)
	require.Error(t, err)
	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestLiftRejectsVariableLengthRelationship(t *testing.T) {
	_, err := ParseQuery(`MATCH (a)-[:KNOWS*1..3]->(b) RETURN a`)
	require.Error(t, err)
	var unsupported *UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

func TestLiftAcceptsSingleRelationshipHop(t *testing.T) {
	q, err := ParseQuery(`MATCH (a:Pod)-[:RUNS_ON]->(b:Node) RETURN a, b`)
	require.NoError(t, err)
	match := q.Clauses[0].(*MatchClause)
	rel, ok := match.Pattern.(*RelationshipPattern)
	require.True(t, ok)
	assert.Equal(t, "a", rel.Left.Variable)
	assert.Equal(t, "b", rel.Right.Variable)
	assert.Equal(t, []string{"RUNS_ON"}, rel.Types)
	assert.Equal(t, LeftToRight, rel.Direction)
}

func TestLiftInvalidIntegerLiteral(t *testing.T) {
	// a float with a malformed exponent falls back to an integer token
	// whose text still parses; this case instead parses a valid integer
	// and then overwrites its token text in the CST so it no longer parses.
	tree := Parse(`RETURN 1`)
	lit := tree.Root.Children[0].Children[0].Children[0].Children[0]
	require.Equal(t, "literal:integer", lit.Kind)
	lit.Token.Text = "not-a-number"
	_, err := Lift(tree)
	require.Error(t, err)
	var invalid *InvalidLiteralError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "integer", invalid.LiteralKind)
}

func TestLiftEndsWithIsLiftedOthersAreUnsupported(t *testing.T) {
	_, err := ParseQuery(`MATCH (n) WHERE n.name STARTS WITH 'a' RETURN n`)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)

	_, err = ParseQuery(`MATCH (n) WHERE n.name CONTAINS 'a' RETURN n`)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)

	_, err = ParseQuery(`MATCH (n) WHERE n.name =~ '.*a.*' RETURN n`)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)

	q, err := ParseQuery(`MATCH (n) WHERE n.name ENDS WITH 'a' RETURN n`)
	require.NoError(t, err)
	match := q.Clauses[0].(*MatchClause)
	bin, ok := match.Where.(*BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "ENDS WITH", bin.Op)
}

func TestLiftArithmeticAlwaysUnsupported(t *testing.T) {
	_, err := ParseQuery(`MATCH (n) RETURN n.a + n.b`)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)

	_, err = ParseQuery(`MATCH (n) WHERE n.a + 1 > 2 RETURN n`)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)
}

func TestLiftComprehensionRejectedOnlyAtTopLevelReturn(t *testing.T) {
	_, err := ParseQuery(`MATCH (n) RETURN [x IN n.tags | x]`)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)

	q, err := ParseQuery(`MATCH (n) WITH [x IN n.tags | x] AS tags RETURN tags`)
	require.NoError(t, err)
	with := q.Clauses[1].(*WithClause)
	_, ok := with.Projections[0].Expr.(*ListComprehension)
	assert.True(t, ok)

	q2, err := ParseQuery(`MATCH (n) WHERE size([x IN n.tags WHERE x = 'a' | x]) > 0 RETURN n`)
	require.NoError(t, err)
	assert.NoError(t, Validate(q2, ReadOnly))
}

func TestLiftCaseRejectedOnlyAtTopLevelReturn(t *testing.T) {
	_, err := ParseQuery(`MATCH (n) RETURN CASE WHEN n.ok THEN 1 ELSE 0 END`)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)

	q, err := ParseQuery(`MATCH (n) WITH n, CASE WHEN n.ok THEN 1 ELSE 0 END AS flag RETURN flag`)
	require.NoError(t, err)
	with := q.Clauses[1].(*WithClause)
	_, ok := with.Projections[1].Expr.(*Case)
	assert.True(t, ok)
}

func TestValidateFunctionAllowlist(t *testing.T) {
	q, err := ParseQuery(`MATCH (n) RETURN notAllowed(n)`)
	require.NoError(t, err)
	verr := Validate(q, ReadOnly)
	require.Error(t, verr)
	assert.Contains(t, verr.Error(), "notAllowed")

	q2, err := ParseQuery(`MATCH (n) RETURN count(n), collect(n.name), labels(n), size(n.tags)`)
	require.NoError(t, err)
	assert.NoError(t, Validate(q2, ReadOnly))
}

func TestLabelPredicateRejectedOnlyAsBareWhereCondition(t *testing.T) {
	_, err := ParseQuery(`MATCH (n) WHERE n:Label RETURN n`)
	require.Error(t, err)
	assert.IsType(t, &UnsupportedError{}, err)

	q, err := ParseQuery(`MATCH (n) WHERE n:Pod OR n:Service RETURN n`)
	require.NoError(t, err)
	match := q.Clauses[0].(*MatchClause)
	bin, ok := match.Where.(*BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "OR", bin.Op)
	_, ok = bin.Left.(*LabelPredicate)
	assert.True(t, ok)
	assert.NoError(t, Validate(q, ReadOnly))
}

func TestExistsSubqueryOfFullQueryIsRejected(t *testing.T) {
	_, err := ParseQuery(`MATCH (n) RETURN exists { MATCH (n) RETURN n }`)
	require.Error(t, err)
}
