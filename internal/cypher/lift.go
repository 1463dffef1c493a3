package cypher

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseQuery runs the grammar front end and the lifter together, the
// entry point the rest of the system calls before Validate. A caller that
// needs the raw concrete syntax tree (for diagnostics) should call Parse
// and Lift separately instead.
func ParseQuery(src string) (*Query, error) {
	tree := Parse(src)
	return Lift(tree)
}

// Lift walks a concrete syntax tree and produces a typed Query, or the
// first CypherError-shaped error it encounters. A tree with any error
// node anywhere is rejected outright: the lifter never tries to recover
// a partial AST from a broken parse.
func Lift(tree *Tree) (*Query, error) {
	if tree == nil || tree.Root == nil {
		return nil, &ParseError{Kind: ParseFailed}
	}
	root := tree.Root
	if root.HasError() {
		return nil, &ParseError{Kind: ParseSyntax, Span: root.Span}
	}
	if root.Kind != "query" {
		return nil, &ParseError{Kind: ParseFailed, Span: root.Span}
	}
	q := &Query{Span: root.Span}
	for _, c := range root.Children {
		clause, err := liftClause(c)
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, clause)
	}
	return q, nil
}

func firstChild(n *CSTNode, kind string) *CSTNode {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

func liftClause(n *CSTNode) (Clause, error) {
	switch n.Kind {
	case "match_clause":
		return liftMatch(n)
	case "with_clause":
		return liftWith(n)
	case "unwind_clause":
		return liftUnwind(n)
	case "return_clause":
		return liftReturn(n)
	case "call_clause":
		return liftCall(n)
	case "create_clause":
		return liftCreate(n)
	case "merge_clause":
		return liftMerge(n)
	case "set_clause":
		return &SetClause{Span: n.Span}, nil
	case "remove_clause":
		return &RemoveClause{Span: n.Span}, nil
	case "delete_clause":
		detach := n.Token != nil && n.Token.Text == "detach"
		return &DeleteClause{Detach: detach, Span: n.Span}, nil
	default:
		return nil, &SemanticError{Message: fmt.Sprintf("unrecognized clause %q", n.Kind), Span: n.Span}
	}
}

func liftMatch(n *CSTNode) (*MatchClause, error) {
	optional := n.Token != nil && n.Token.Text == "optional"
	patternNode := firstChild(n, "pattern")
	if patternNode == nil {
		return nil, &SemanticError{Message: "MATCH is missing a pattern", Span: n.Span}
	}
	pattern, err := liftPattern(patternNode)
	if err != nil {
		return nil, err
	}
	var where Expr
	if whereNode := firstChild(n, "where_clause"); whereNode != nil {
		where, err = liftWhereExpr(whereNode.Children[0])
		if err != nil {
			return nil, err
		}
	}
	return &MatchClause{Optional: optional, Pattern: pattern, Where: where, Span: n.Span}, nil
}

func liftWith(n *CSTNode) (*WithClause, error) {
	distinct := n.Token != nil && n.Token.Text == "distinct"
	projListNode := firstChild(n, "projection_list")
	if projListNode == nil {
		return nil, &SemanticError{Message: "WITH is missing a projection list", Span: n.Span}
	}
	projections, err := liftProjections(projListNode, false)
	if err != nil {
		return nil, err
	}
	var where Expr
	if whereNode := firstChild(n, "where_clause"); whereNode != nil {
		where, err = liftWhereExpr(whereNode.Children[0])
		if err != nil {
			return nil, err
		}
	}
	return &WithClause{Distinct: distinct, Projections: projections, Where: where, Span: n.Span}, nil
}

func liftUnwind(n *CSTNode) (*UnwindClause, error) {
	if len(n.Children) == 0 {
		return nil, &SemanticError{Message: "UNWIND is missing a source expression", Span: n.Span}
	}
	source, err := liftExpr(n.Children[0], false)
	if err != nil {
		return nil, err
	}
	aliasNode := firstChild(n, "alias")
	if aliasNode == nil {
		return nil, &SemanticError{Message: "UNWIND requires AS <variable>", Span: n.Span}
	}
	return &UnwindClause{Source: source, As: identNameOf(aliasNode.Children[0]), Span: n.Span}, nil
}

func liftReturn(n *CSTNode) (*ReturnClause, error) {
	distinct := n.Token != nil && n.Token.Text == "distinct"
	rc := &ReturnClause{Distinct: distinct, Span: n.Span}
	if star := firstChild(n, "star"); star != nil {
		rc.Star = true
	} else if projListNode := firstChild(n, "projection_list"); projListNode != nil {
		projections, err := liftProjections(projListNode, true)
		if err != nil {
			return nil, err
		}
		rc.Projections = projections
	} else {
		return nil, &SemanticError{Message: "RETURN is missing a projection list", Span: n.Span}
	}

	if orderByNode := firstChild(n, "order_by"); orderByNode != nil {
		for _, sortItemNode := range orderByNode.Children {
			expr, err := liftExpr(sortItemNode.Children[0], false)
			if err != nil {
				return nil, err
			}
			descending := sortItemNode.Token != nil && sortItemNode.Token.Text == "desc"
			rc.OrderBy = append(rc.OrderBy, SortItem{Expr: expr, Descending: descending})
		}
	}
	if skipNode := firstChild(n, "skip"); skipNode != nil {
		expr, err := liftExpr(skipNode.Children[0], false)
		if err != nil {
			return nil, err
		}
		rc.Skip = expr
	}
	if limitNode := firstChild(n, "limit"); limitNode != nil {
		expr, err := liftExpr(limitNode.Children[0], false)
		if err != nil {
			return nil, err
		}
		rc.Limit = expr
	}
	return rc, nil
}

func liftProjections(n *CSTNode, topLevelReturn bool) ([]Projection, error) {
	var out []Projection
	for _, item := range n.Children {
		if item.Kind != "projection" || len(item.Children) == 0 {
			continue
		}
		expr, err := liftExpr(item.Children[0], topLevelReturn)
		if err != nil {
			return nil, err
		}
		alias := ""
		if aliasNode := firstChild(item, "alias"); aliasNode != nil {
			alias = identNameOf(aliasNode.Children[0])
		}
		out = append(out, Projection{Expr: expr, Alias: alias})
	}
	return out, nil
}

func liftCall(n *CSTNode) (*CallClause, error) {
	nameNode := firstChild(n, "qualified_name")
	if nameNode == nil {
		return nil, &SemanticError{Message: "CALL is missing a procedure name", Span: n.Span}
	}
	cc := &CallClause{Name: joinQualifiedName(nameNode), Span: n.Span}
	for _, c := range n.Children {
		if c.Kind != "arg" || len(c.Children) == 0 {
			continue
		}
		arg, err := liftExpr(c.Children[0], false)
		if err != nil {
			return nil, err
		}
		cc.Args = append(cc.Args, arg)
	}
	if yieldNode := firstChild(n, "yield_list"); yieldNode != nil {
		for _, item := range yieldNode.Children {
			if item.Kind != "yield_item" || len(item.Children) == 0 {
				continue
			}
			yi := YieldItem{Name: identNameOf(item.Children[0])}
			if aliasNode := firstChild(item, "alias"); aliasNode != nil {
				yi.Alias = identNameOf(aliasNode.Children[0])
			}
			cc.Yield = append(cc.Yield, yi)
		}
	}
	return cc, nil
}

func liftCreate(n *CSTNode) (*CreateClause, error) {
	patternNode := firstChild(n, "pattern")
	if patternNode == nil {
		return nil, &SemanticError{Message: "CREATE is missing a pattern", Span: n.Span}
	}
	pattern, err := liftPattern(patternNode)
	if err != nil {
		return nil, err
	}
	return &CreateClause{Pattern: pattern, Span: n.Span}, nil
}

func liftMerge(n *CSTNode) (*MergeClause, error) {
	patternNode := firstChild(n, "pattern")
	if patternNode == nil {
		return nil, &SemanticError{Message: "MERGE is missing a pattern", Span: n.Span}
	}
	pattern, err := liftPattern(patternNode)
	if err != nil {
		return nil, err
	}
	return &MergeClause{Pattern: pattern, Span: n.Span}, nil
}

// ---- patterns ----

func liftPattern(n *CSTNode) (Pattern, error) {
	var nodes []*CSTNode
	var rels []*CSTNode
	for i, c := range n.Children {
		if i%2 == 0 {
			nodes = append(nodes, c)
		} else {
			rels = append(rels, c)
		}
	}
	switch len(nodes) {
	case 0:
		return nil, &SemanticError{Message: "pattern has no nodes", Span: n.Span}
	case 1:
		return liftNodePattern(nodes[0])
	case 2:
		left, err := liftNodePattern(nodes[0])
		if err != nil {
			return nil, err
		}
		right, err := liftNodePattern(nodes[1])
		if err != nil {
			return nil, err
		}
		variable, types, direction, err := liftRelSegment(rels[0])
		if err != nil {
			return nil, err
		}
		return &RelationshipPattern{
			Left: left, Right: right, Variable: variable, Types: types,
			Direction: direction, Span: n.Span,
		}, nil
	default:
		return nil, &UnsupportedError{Message: "multi-hop relationship patterns are not supported", Span: n.Span}
	}
}

func liftNodePattern(n *CSTNode) (NodePattern, error) {
	if n == nil || n.Kind != "node_pattern" {
		return NodePattern{}, &SemanticError{Message: "invalid node pattern", Span: n.Span}
	}
	np := NodePattern{Span: n.Span}
	for _, c := range n.Children {
		switch c.Kind {
		case "var":
			np.Variable = identNameOf(c.Children[0])
		case "label":
			np.Labels = append(np.Labels, identNameOf(c.Children[0]))
		case "map_literal":
			return NodePattern{}, &UnsupportedError{Message: "inline property maps are not supported", Span: c.Span}
		}
	}
	return np, nil
}

func liftRelSegment(n *CSTNode) (variable string, types []string, direction RelationshipDirection, err error) {
	for _, c := range n.Children {
		switch c.Kind {
		case "var":
			variable = identNameOf(c.Children[0])
		case "type":
			types = append(types, identNameOf(c.Children[0]))
		case "range":
			return "", nil, Undirected, &UnsupportedError{Message: "variable-length relationships are not supported", Span: c.Span}
		case "map_literal":
			return "", nil, Undirected, &UnsupportedError{Message: "inline property maps are not supported", Span: c.Span}
		}
	}
	direction = Undirected
	if n.Token != nil {
		switch n.Token.Text {
		case "left_to_right":
			direction = LeftToRight
		case "right_to_left":
			direction = RightToLeft
		}
	}
	return variable, types, direction, nil
}

// ---- expressions ----

// liftWhereExpr lifts the boolean root of a WHERE or filter expression.
// A bare label predicate (n:Label) is rejected there: it is legal only
// as an operand of a logical AND/OR/NOT, per
// tests/parser_fuzz.rs's build_invalid_queries ("MATCH (n) WHERE n:Label
// RETURN n") versus tests/case_predicate.rs's accepted "n:Pod OR n:Service".
func liftWhereExpr(n *CSTNode) (Expr, error) {
	if n.Kind == "label_predicate" {
		return nil, &UnsupportedError{Message: "a label predicate cannot be the entire WHERE condition; combine it with AND/OR/NOT or a comparison", Span: n.Span}
	}
	return liftExpr(n, false)
}

// liftExpr lowers a single expression node. topLevelReturn marks an
// expression sitting directly in a RETURN projection item (not nested
// inside WHERE, WITH, or another expression) — CASE, comprehensions and
// quantifiers are rejected only in that position.
func liftExpr(n *CSTNode, topLevelReturn bool) (Expr, error) {
	if strings.HasPrefix(n.Kind, "literal:") {
		return liftLiteral(n)
	}
	switch n.Kind {
	case "identifier":
		return &Variable{Name: identNameOf(n), Span: n.Span}, nil
	case "parameter":
		return &Parameter{Name: n.Token.Text, Span: n.Span}, nil
	case "star":
		return &Star{Span: n.Span}, nil
	case "property_access":
		target, err := liftExpr(n.Children[0], false)
		if err != nil {
			return nil, err
		}
		return &PropertyAccess{Target: target, Property: identNameOf(n.Children[1]), Span: n.Span}, nil
	case "index_access":
		target, err := liftExpr(n.Children[0], false)
		if err != nil {
			return nil, err
		}
		idx, err := liftExpr(n.Children[1], false)
		if err != nil {
			return nil, err
		}
		return &IndexAccess{Target: target, Index: idx, Span: n.Span}, nil
	case "function_call":
		return liftFunctionCall(n)
	case "binary_expression":
		return liftBinaryExpr(n)
	case "unary_expression":
		return liftUnaryExpr(n)
	case "is_null":
		target, err := liftExpr(n.Children[0], false)
		if err != nil {
			return nil, err
		}
		return &IsNull{Target: target, Negated: n.Token != nil && n.Token.Text == "not_null", Span: n.Span}, nil
	case "label_predicate":
		target, err := liftExpr(n.Children[0], false)
		if err != nil {
			return nil, err
		}
		lp := &LabelPredicate{Target: target, Span: n.Span}
		for _, c := range n.Children[1:] {
			if c.Kind == "label" {
				lp.Labels = append(lp.Labels, identNameOf(c.Children[0]))
			}
		}
		return lp, nil
	case "case_expression":
		if topLevelReturn {
			return nil, &UnsupportedError{Message: "CASE expressions are not supported as a top-level RETURN item", Span: n.Span}
		}
		return liftCase(n)
	case "quantifier_expression":
		if topLevelReturn {
			return nil, &UnsupportedError{Message: "quantifier expressions are not supported as a top-level RETURN item", Span: n.Span}
		}
		return liftQuantifier(n)
	case "list_comprehension":
		if topLevelReturn {
			return nil, &UnsupportedError{Message: "list comprehensions are not supported as a top-level RETURN item", Span: n.Span}
		}
		return liftListComprehension(n)
	case "pattern_comprehension":
		if topLevelReturn {
			return nil, &UnsupportedError{Message: "pattern comprehensions are not supported as a top-level RETURN item", Span: n.Span}
		}
		return liftPatternComprehension(n)
	case "exists_subquery":
		pattern, err := liftPattern(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &ExistsSubquery{Pattern: pattern, Span: n.Span}, nil
	case "list_literal":
		lit := &Literal{Kind: LiteralList, Span: n.Span}
		for _, c := range n.Children {
			if c.Kind != "element" || len(c.Children) == 0 {
				continue
			}
			el, err := liftExpr(c.Children[0], false)
			if err != nil {
				return nil, err
			}
			lit.List = append(lit.List, el)
		}
		return lit, nil
	case "map_literal":
		lit := &Literal{Kind: LiteralMap, Span: n.Span}
		for _, c := range n.Children {
			if c.Kind != "map_entry" || len(c.Children) < 2 {
				continue
			}
			val, err := liftExpr(c.Children[1], false)
			if err != nil {
				return nil, err
			}
			lit.MapKeys = append(lit.MapKeys, identNameOf(c.Children[0]))
			lit.MapVals = append(lit.MapVals, val)
		}
		return lit, nil
	default:
		return nil, &SemanticError{Message: fmt.Sprintf("unrecognized expression %q", n.Kind), Span: n.Span}
	}
}

func liftLiteral(n *CSTNode) (*Literal, error) {
	kind := strings.TrimPrefix(n.Kind, "literal:")
	switch kind {
	case "string":
		return &Literal{Kind: LiteralString, Str: n.Token.Text, Span: n.Span}, nil
	case "integer":
		v, err := strconv.ParseInt(n.Token.Text, 10, 64)
		if err != nil {
			return nil, &InvalidLiteralError{LiteralKind: "integer", Text: n.Token.Text, Span: n.Span}
		}
		return &Literal{Kind: LiteralInteger, Int: v, Span: n.Span}, nil
	case "float":
		v, err := strconv.ParseFloat(n.Token.Text, 64)
		if err != nil {
			return nil, &InvalidLiteralError{LiteralKind: "float", Text: n.Token.Text, Span: n.Span}
		}
		return &Literal{Kind: LiteralFloat, Float: v, Span: n.Span}, nil
	case "boolean":
		return &Literal{Kind: LiteralBoolean, Bool: n.Token.Text == "TRUE", Span: n.Span}, nil
	case "null":
		return &Literal{Kind: LiteralNull, Span: n.Span}, nil
	default:
		return nil, &SemanticError{Message: fmt.Sprintf("unrecognized literal kind %q", kind), Span: n.Span}
	}
}

func liftFunctionCall(n *CSTNode) (*FunctionCall, error) {
	nameNode := firstChild(n, "name")
	if nameNode == nil || len(nameNode.Children) == 0 {
		return nil, &SemanticError{Message: "function call is missing a name", Span: n.Span}
	}
	fc := &FunctionCall{Name: identNameOf(nameNode.Children[0]), Span: n.Span}
	for _, c := range n.Children {
		switch c.Kind {
		case "distinct_flag":
			fc.Distinct = true
		case "arg":
			if len(c.Children) == 0 {
				continue
			}
			arg, err := liftExpr(c.Children[0], false)
			if err != nil {
				return nil, err
			}
			fc.Args = append(fc.Args, arg)
		}
	}
	return fc, nil
}

func liftBinaryExpr(n *CSTNode) (Expr, error) {
	op := n.Token.Text
	switch op {
	case "+", "-", "*", "/":
		return nil, &UnsupportedError{Message: "arithmetic expressions are not supported", Span: n.Span}
	case "STARTS WITH":
		return nil, &UnsupportedError{Message: "STARTS WITH is not supported", Span: n.Span}
	case "CONTAINS":
		return nil, &UnsupportedError{Message: "CONTAINS is not supported", Span: n.Span}
	case "=~":
		return nil, &UnsupportedError{Message: "regular expression matching is not supported", Span: n.Span}
	}
	left, err := liftExpr(n.Children[0], false)
	if err != nil {
		return nil, err
	}
	right, err := liftExpr(n.Children[1], false)
	if err != nil {
		return nil, err
	}
	return &BinaryOp{Op: op, Left: left, Right: right, Span: n.Span}, nil
}

func liftUnaryExpr(n *CSTNode) (Expr, error) {
	op := n.Token.Text
	if op == "NEG" {
		return nil, &UnsupportedError{Message: "arithmetic expressions are not supported", Span: n.Span}
	}
	operand, err := liftExpr(n.Children[0], false)
	if err != nil {
		return nil, err
	}
	return &UnaryOp{Op: op, Operand: operand, Span: n.Span}, nil
}

func liftCase(n *CSTNode) (*Case, error) {
	c := &Case{Span: n.Span}
	for _, child := range n.Children {
		switch child.Kind {
		case "case_arm":
			when, err := liftExpr(child.Children[0], false)
			if err != nil {
				return nil, err
			}
			then, err := liftExpr(child.Children[1], false)
			if err != nil {
				return nil, err
			}
			c.Arms = append(c.Arms, CaseArm{When: when, Then: then})
		case "case_else":
			elseExpr, err := liftExpr(child.Children[0], false)
			if err != nil {
				return nil, err
			}
			c.Else = elseExpr
		}
	}
	if len(c.Arms) == 0 {
		return nil, &SemanticError{Message: "CASE requires at least one WHEN arm", Span: n.Span}
	}
	return c, nil
}

func liftQuantifier(n *CSTNode) (*Quantifier, error) {
	bindingNode := firstChild(n, "binding")
	sourceNode := firstChild(n, "source")
	if bindingNode == nil || sourceNode == nil || len(bindingNode.Children) == 0 || len(sourceNode.Children) == 0 {
		return nil, &SemanticError{Message: "quantifier is missing a binding or source", Span: n.Span}
	}
	source, err := liftExpr(sourceNode.Children[0], false)
	if err != nil {
		return nil, err
	}
	q := &Quantifier{Binding: identNameOf(bindingNode.Children[0]), Source: source, Span: n.Span}
	switch n.Token.Text {
	case "ALL":
		q.Kind = QuantifierAll
	case "ANY":
		q.Kind = QuantifierAny
	case "NONE":
		q.Kind = QuantifierNone
	case "SINGLE":
		q.Kind = QuantifierSingle
	}
	if whereNode := firstChild(n, "where_expr"); whereNode != nil {
		where, err := liftWhereExpr(whereNode.Children[0])
		if err != nil {
			return nil, err
		}
		q.Where = where
	}
	return q, nil
}

func liftListComprehension(n *CSTNode) (*ListComprehension, error) {
	bindingNode := firstChild(n, "binding")
	sourceNode := firstChild(n, "source")
	if bindingNode == nil || sourceNode == nil || len(bindingNode.Children) == 0 || len(sourceNode.Children) == 0 {
		return nil, &SemanticError{Message: "list comprehension is missing a binding or source", Span: n.Span}
	}
	source, err := liftExpr(sourceNode.Children[0], false)
	if err != nil {
		return nil, err
	}
	lc := &ListComprehension{Binding: identNameOf(bindingNode.Children[0]), Source: source, Span: n.Span}
	if whereNode := firstChild(n, "where_expr"); whereNode != nil {
		where, err := liftWhereExpr(whereNode.Children[0])
		if err != nil {
			return nil, err
		}
		lc.Where = where
	}
	if projNode := firstChild(n, "projection_expr"); projNode != nil {
		proj, err := liftExpr(projNode.Children[0], false)
		if err != nil {
			return nil, err
		}
		lc.Projection = proj
	}
	return lc, nil
}

func liftPatternComprehension(n *CSTNode) (*PatternComprehension, error) {
	if len(n.Children) == 0 {
		return nil, &SemanticError{Message: "pattern comprehension is missing a pattern", Span: n.Span}
	}
	pattern, err := liftPattern(n.Children[0])
	if err != nil {
		return nil, err
	}
	projNode := firstChild(n, "projection_expr")
	if projNode == nil || len(projNode.Children) == 0 {
		return nil, &SemanticError{Message: "pattern comprehension is missing a projection", Span: n.Span}
	}
	proj, err := liftExpr(projNode.Children[0], false)
	if err != nil {
		return nil, err
	}
	return &PatternComprehension{Pattern: pattern, Projection: proj, Span: n.Span}, nil
}
