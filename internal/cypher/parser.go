package cypher

import "strings"

// parser turns a pre-lexed token stream into a concrete syntax tree. It is
// deliberately permissive: it accepts a broad Cypher-dialect surface
// (property maps, multi-hop patterns, arithmetic, STARTS WITH/CONTAINS,
// writing clauses) the same way a tree-sitter grammar would; restricting
// that surface to the read-only subset is the lifter's (C2) job.
type parser struct {
	toks []Token
	pos  int
}

var multiCharComparison = map[string]bool{"<>": true, "<=": true, ">=": true}

func tokenize(src string) []Token {
	lx := newLexer(src)
	var toks []Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == TokEOF || t.Kind == TokError {
			break
		}
	}
	return toks
}

// Parse runs the grammar front end over src, returning a concrete syntax
// tree. It never itself classifies the result as ParseFailed/Language —
// that distinction is made by the caller. Each call constructs a fresh
// parser (spec §4.1: stateless, reentrant).
func Parse(src string) *Tree {
	p := &parser{toks: tokenize(src)}
	root := p.parseQuery()
	return &Tree{Root: root}
}

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *parser) advanceTok() Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) isSymbol(text string) bool {
	t := p.cur()
	return t.Kind == TokSymbol && t.Text == text
}

func (p *parser) isSymbolAt(n int, text string) bool {
	t := p.peekAt(n)
	return t.Kind == TokSymbol && t.Text == text
}

func (p *parser) eatSymbol(text string) (*CSTNode, bool) {
	if p.isSymbol(text) {
		t := p.advanceTok()
		return leaf("sym_"+text, t), true
	}
	return nil, false
}

func (p *parser) expectSymbol(text string) *CSTNode {
	if n, ok := p.eatSymbol(text); ok {
		return n
	}
	t := p.cur()
	return (&CSTNode{Kind: "error", Span: t.Span}).markError()
}

func (p *parser) atEOF() bool {
	return p.cur().Kind == TokEOF
}

// parseQuery parses Clause+.
func (p *parser) parseQuery() *CSTNode {
	start := p.cur().Span
	q := &CSTNode{Kind: "query", Span: start}
	if p.atEOF() {
		return q.markError()
	}
	for !p.atEOF() {
		before := p.pos
		c := p.parseClause()
		q.addChild(c)
		if p.pos == before {
			// no progress; avoid infinite loop
			q.markError()
			p.advanceTok()
			break
		}
	}
	return q
}

func (p *parser) parseClause() *CSTNode {
	t := p.cur()
	if t.Kind != TokSymbol {
		errTok := p.advanceTok()
		return (&CSTNode{Kind: "error", Span: errTok.Span}).markError()
	}
	switch t.Text {
	case "OPTIONAL":
		return p.parseMatchClause(true)
	case "MATCH":
		return p.parseMatchClause(false)
	case "WITH":
		return p.parseWithClause()
	case "UNWIND":
		return p.parseUnwindClause()
	case "RETURN":
		return p.parseReturnClause()
	case "CALL":
		return p.parseCallClause()
	case "CREATE":
		return p.parseCreateClause()
	case "MERGE":
		return p.parseMergeClause()
	case "SET":
		return p.parseSetClause()
	case "REMOVE":
		return p.parseRemoveClause()
	case "DELETE":
		return p.parseDeleteClause(false)
	case "DETACH":
		p.advanceTok()
		if p.isSymbol("DELETE") {
			return p.parseDeleteClause(true)
		}
		return (&CSTNode{Kind: "error", Span: t.Span}).markError()
	default:
		errTok := p.advanceTok()
		return (&CSTNode{Kind: "error", Span: errTok.Span}).markError()
	}
}

func (p *parser) parseMatchClause(optional bool) *CSTNode {
	start := p.cur().Span
	if optional {
		p.advanceTok() // OPTIONAL
	}
	p.advanceTok() // MATCH
	pattern := p.parsePattern()
	n := node("match_clause", start, pattern)
	if optional {
		n.Token = &Token{Text: "optional"}
	}
	if p.isSymbol("WHERE") {
		p.advanceTok()
		where := p.parseExpr()
		n.addChild(node("where_clause", where.Span, where))
	}
	return n
}

func (p *parser) parseWithClause() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // WITH
	n := node("with_clause", start)
	if p.isSymbol("DISTINCT") {
		p.advanceTok()
		n.Token = &Token{Text: "distinct"}
	}
	n.addChild(p.parseProjectionList())
	if p.isSymbol("WHERE") {
		p.advanceTok()
		where := p.parseExpr()
		n.addChild(node("where_clause", where.Span, where))
	}
	return n
}

func (p *parser) parseUnwindClause() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // UNWIND
	expr := p.parseExpr()
	n := node("unwind_clause", start, expr)
	if p.isSymbol("AS") {
		p.advanceTok()
		alias := p.parseIdentifierLeaf()
		n.addChild(node("alias", alias.Span, alias))
	} else {
		n.markError()
	}
	return n
}

func (p *parser) parseReturnClause() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // RETURN
	n := node("return_clause", start)
	if p.isSymbol("DISTINCT") {
		p.advanceTok()
		n.Token = &Token{Text: "distinct"}
	}
	if p.isSymbol("*") {
		t := p.advanceTok()
		n.addChild(leaf("star", t))
	} else {
		n.addChild(p.parseProjectionList())
	}
	if p.isSymbol("ORDER") {
		n.addChild(p.parseOrderBy())
	}
	if p.isSymbol("SKIP") {
		p.advanceTok()
		n.addChild(node("skip", p.cur().Span, p.parseExpr()))
	}
	if p.isSymbol("LIMIT") {
		p.advanceTok()
		n.addChild(node("limit", p.cur().Span, p.parseExpr()))
	}
	return n
}

func (p *parser) parseOrderBy() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // ORDER
	if p.isSymbol("BY") {
		p.advanceTok()
	}
	n := node("order_by", start)
	for {
		item := p.parseExpr()
		sortItem := node("sort_item", item.Span, item)
		if p.isSymbol("ASC") || p.isSymbol("ASCENDING") {
			p.advanceTok()
			sortItem.Token = &Token{Text: "asc"}
		} else if p.isSymbol("DESC") || p.isSymbol("DESCENDING") {
			p.advanceTok()
			sortItem.Token = &Token{Text: "desc"}
		}
		n.addChild(sortItem)
		if p.isSymbol(",") {
			p.advanceTok()
			continue
		}
		break
	}
	return n
}

func (p *parser) parseCallClause() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // CALL
	name := p.parseQualifiedName()
	n := node("call_clause", start, name)
	p.addChildGuard(n, p.expectSymbol("("))
	if !p.isSymbol(")") {
		for {
			n.addChild(node("arg", p.cur().Span, p.parseExpr()))
			if p.isSymbol(",") {
				p.advanceTok()
				continue
			}
			break
		}
	}
	p.addChildGuardSilent(n, p.expectSymbol(")"))
	if p.isSymbol("YIELD") {
		p.advanceTok()
		n.addChild(p.parseYieldList())
	}
	return n
}

func (p *parser) parseYieldList() *CSTNode {
	start := p.cur().Span
	n := node("yield_list", start)
	for {
		name := p.parseIdentifierLeaf()
		item := node("yield_item", name.Span, name)
		if p.isSymbol("AS") {
			p.advanceTok()
			alias := p.parseIdentifierLeaf()
			item.addChild(node("alias", alias.Span, alias))
		}
		n.addChild(item)
		if p.isSymbol(",") {
			p.advanceTok()
			continue
		}
		break
	}
	return n
}

func (p *parser) parseQualifiedName() *CSTNode {
	start := p.cur().Span
	n := node("qualified_name", start)
	n.addChild(p.parseIdentifierLeaf())
	for p.isSymbol(".") {
		p.advanceTok()
		n.addChild(p.parseIdentifierLeaf())
	}
	return n
}

func (p *parser) parseCreateClause() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // CREATE
	pattern := p.parsePattern()
	return node("create_clause", start, pattern)
}

func (p *parser) parseMergeClause() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // MERGE
	pattern := p.parsePattern()
	return node("merge_clause", start, pattern)
}

func (p *parser) parseSetClause() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // SET
	n := node("set_clause", start)
	for {
		lhs := p.parsePostfixExpr()
		p.addChildGuard(n, p.expectSymbol("="))
		rhs := p.parseExpr()
		n.addChild(node("set_item", lhs.Span.cover(rhs.Span), lhs, rhs))
		if p.isSymbol(",") {
			p.advanceTok()
			continue
		}
		break
	}
	return n
}

func (p *parser) parseRemoveClause() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // REMOVE
	n := node("remove_clause", start)
	for {
		n.addChild(p.parsePostfixExpr())
		if p.isSymbol(",") {
			p.advanceTok()
			continue
		}
		break
	}
	return n
}

func (p *parser) parseDeleteClause(detach bool) *CSTNode {
	start := p.cur().Span
	p.advanceTok() // DELETE
	n := node("delete_clause", start)
	if detach {
		n.Token = &Token{Text: "detach"}
	}
	for {
		n.addChild(p.parseExpr())
		if p.isSymbol(",") {
			p.advanceTok()
			continue
		}
		break
	}
	return n
}

// addChildGuard adds c as a child and, if it is an error node, propagates.
func (p *parser) addChildGuard(n *CSTNode, c *CSTNode) {
	n.addChild(c)
}

func (p *parser) addChildGuardSilent(n *CSTNode, c *CSTNode) {
	if n == nil || c == nil {
		return
	}
	if c.err {
		n.err = true
	}
}

// ---- projections ----

func (p *parser) parseProjectionList() *CSTNode {
	start := p.cur().Span
	n := node("projection_list", start)
	for {
		expr := p.parseExpr()
		item := node("projection", expr.Span, expr)
		if p.isSymbol("AS") {
			p.advanceTok()
			alias := p.parseIdentifierLeaf()
			item.addChild(node("alias", alias.Span, alias))
		}
		n.addChild(item)
		if p.isSymbol(",") {
			p.advanceTok()
			continue
		}
		break
	}
	return n
}

// ---- patterns ----

func (p *parser) parsePattern() *CSTNode {
	start := p.cur().Span
	n := node("pattern", start)
	n.addChild(p.parseNodePattern())
	for p.isSymbol("-") || p.isSymbol("<-") {
		rel := p.parseRelSegment()
		n.addChild(rel)
		n.addChild(p.parseNodePattern())
	}
	return n
}

func (p *parser) parseNodePattern() *CSTNode {
	start := p.cur().Span
	n := node("node_pattern", start)
	if !p.isSymbol("(") {
		return n.markError()
	}
	p.advanceTok()
	if p.cur().Kind == TokIdent || p.cur().Kind == TokBacktickIdent {
		v := p.parseIdentifierLeaf()
		n.addChild(node("var", v.Span, v))
	}
	for p.isSymbol(":") {
		p.advanceTok()
		lbl := p.parseIdentifierLeaf()
		n.addChild(node("label", lbl.Span, lbl))
	}
	if p.isSymbol("{") {
		n.addChild(p.parseMapLiteral())
	}
	p.addChildGuardSilent(n, p.expectSymbol(")"))
	return n
}

func (p *parser) parseRelSegment() *CSTNode {
	start := p.cur().Span
	leftArrow := false
	if p.isSymbol("<-") {
		p.advanceTok()
		leftArrow = true
	} else if !p.eatSym("-") {
		return (&CSTNode{Kind: "rel_segment", Span: start}).markError()
	}
	n := node("rel_segment", start)
	if p.isSymbol("[") {
		p.advanceTok()
		if p.cur().Kind == TokIdent || p.cur().Kind == TokBacktickIdent {
			v := p.parseIdentifierLeaf()
			n.addChild(node("var", v.Span, v))
		}
		if p.isSymbol(":") {
			p.advanceTok()
			n.addChild(node("type", p.cur().Span, p.parseIdentifierLeaf()))
			for p.isSymbol("|") {
				p.advanceTok()
				n.addChild(node("type", p.cur().Span, p.parseIdentifierLeaf()))
			}
		}
		if p.isSymbol("*") {
			n.addChild(p.parseVariableLengthRange())
		}
		if p.isSymbol("{") {
			n.addChild(p.parseMapLiteral())
		}
		p.addChildGuardSilent(n, p.expectSymbol("]"))
	}
	rightArrow := false
	if p.isSymbol("->") {
		p.advanceTok()
		rightArrow = true
	} else if !p.eatSym("-") {
		n.markError()
	}
	dir := "undirected"
	switch {
	case leftArrow && !rightArrow:
		dir = "right_to_left"
	case !leftArrow && rightArrow:
		dir = "left_to_right"
	}
	n.Token = &Token{Text: dir}
	return n
}

func (p *parser) eatSym(text string) bool {
	_, ok := p.eatSymbol(text)
	return ok
}

func (p *parser) parseVariableLengthRange() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // *
	n := node("range", start)
	if p.cur().Kind == TokInteger {
		n.addChild(leaf("min", p.advanceTok()))
	}
	if p.isSymbol("..") {
		p.advanceTok()
		if p.cur().Kind == TokInteger {
			n.addChild(leaf("max", p.advanceTok()))
		}
	}
	return n
}

// ---- identifiers and literals ----

func (p *parser) parseIdentifierLeaf() *CSTNode {
	t := p.cur()
	if t.Kind == TokIdent {
		p.advanceTok()
		return leaf("identifier", t)
	}
	if t.Kind == TokBacktickIdent {
		p.advanceTok()
		return leaf("identifier", t)
	}
	errTok := p.advanceTok()
	return (&CSTNode{Kind: "error", Span: errTok.Span}).markError()
}

func (p *parser) parseMapLiteral() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // {
	n := node("map_literal", start)
	if !p.isSymbol("}") {
		for {
			key := p.parseIdentifierLeaf()
			p.addChildGuardSilent(n, p.expectSymbol(":"))
			val := p.parseExpr()
			n.addChild(node("map_entry", key.Span.cover(val.Span), key, val))
			if p.isSymbol(",") {
				p.advanceTok()
				continue
			}
			break
		}
	}
	p.addChildGuardSilent(n, p.expectSymbol("}"))
	return n
}

// identNameOf returns the textual name of an identifier leaf node.
func identNameOf(n *CSTNode) string {
	if n == nil || n.Token == nil {
		return ""
	}
	return n.Token.Text
}

func joinQualifiedName(n *CSTNode) string {
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, identNameOf(c))
	}
	return strings.Join(parts, ".")
}

// ---- expressions, precedence climbing ----
//
// orExpr -> andExpr -> notExpr -> comparisonExpr -> addExpr -> mulExpr ->
// unaryExpr -> postfixExpr -> primary
//
// comparisonExpr also absorbs the postfix label predicate (n:Label) and
// the IS [NOT] NULL test, since both bind looser than arithmetic but
// tighter than boolean connectives.

func (p *parser) parseExpr() *CSTNode {
	return p.parseOrExpr()
}

func (p *parser) parseOrExpr() *CSTNode {
	left := p.parseAndExpr()
	for p.isSymbol("OR") {
		opTok := p.advanceTok()
		right := p.parseAndExpr()
		left = p.binOp(opTok.Text, left, right)
	}
	return left
}

func (p *parser) parseAndExpr() *CSTNode {
	left := p.parseNotExpr()
	for p.isSymbol("AND") {
		opTok := p.advanceTok()
		right := p.parseNotExpr()
		left = p.binOp(opTok.Text, left, right)
	}
	return left
}

func (p *parser) parseNotExpr() *CSTNode {
	if p.isSymbol("NOT") {
		opTok := p.advanceTok()
		operand := p.parseNotExpr()
		n := node("unary_expression", opTok.Span.cover(operand.Span), operand)
		n.Token = &Token{Text: "NOT"}
		return n
	}
	return p.parseComparisonExpr()
}

func (p *parser) parseComparisonExpr() *CSTNode {
	left := p.parseAddExpr()

	if p.isSymbol(":") {
		start := left.Span
		n := node("label_predicate", start, left)
		for p.isSymbol(":") {
			p.advanceTok()
			lbl := p.parseIdentifierLeaf()
			n.addChild(node("label", lbl.Span, lbl))
		}
		return n
	}

	if p.isSymbol("IS") {
		opTok := p.advanceTok()
		negated := false
		if p.isSymbol("NOT") {
			p.advanceTok()
			negated = true
		}
		endSpan := p.cur().Span
		if p.isSymbol("NULL") {
			p.advanceTok()
		} else {
			left.markError()
		}
		n := node("is_null", opTok.Span.cover(endSpan), left)
		if negated {
			n.Token = &Token{Text: "not_null"}
		} else {
			n.Token = &Token{Text: "null"}
		}
		return n
	}

	switch {
	case p.isSymbol("="), p.isSymbol("<>"), p.isSymbol("<"), p.isSymbol("<="),
		p.isSymbol(">"), p.isSymbol(">="):
		opTok := p.advanceTok()
		right := p.parseAddExpr()
		return p.binOp(opTok.Text, left, right)
	case p.isSymbol("IN"):
		opTok := p.advanceTok()
		right := p.parseAddExpr()
		return p.binOp(opTok.Text, left, right)
	case p.isSymbol("STARTS") && p.isSymbolAt(1, "WITH"):
		p.advanceTok()
		p.advanceTok()
		right := p.parseAddExpr()
		return p.binOp("STARTS WITH", left, right)
	case p.isSymbol("ENDS") && p.isSymbolAt(1, "WITH"):
		p.advanceTok()
		p.advanceTok()
		right := p.parseAddExpr()
		return p.binOp("ENDS WITH", left, right)
	case p.isSymbol("CONTAINS"):
		opTok := p.advanceTok()
		right := p.parseAddExpr()
		return p.binOp(opTok.Text, left, right)
	case p.isSymbol("=~"):
		opTok := p.advanceTok()
		right := p.parseAddExpr()
		return p.binOp(opTok.Text, left, right)
	}
	return left
}

func (p *parser) binOp(op string, left, right *CSTNode) *CSTNode {
	n := node("binary_expression", left.Span.cover(right.Span), left, right)
	n.Token = &Token{Text: op}
	return n
}

func (p *parser) parseAddExpr() *CSTNode {
	left := p.parseMulExpr()
	for p.isSymbol("+") || p.isSymbol("-") {
		opTok := p.advanceTok()
		right := p.parseMulExpr()
		left = p.binOp(opTok.Text, left, right)
	}
	return left
}

func (p *parser) parseMulExpr() *CSTNode {
	left := p.parseUnaryExpr()
	for p.isSymbol("*") || p.isSymbol("/") {
		opTok := p.advanceTok()
		right := p.parseUnaryExpr()
		left = p.binOp(opTok.Text, left, right)
	}
	return left
}

func (p *parser) parseUnaryExpr() *CSTNode {
	if p.isSymbol("-") {
		opTok := p.advanceTok()
		operand := p.parseUnaryExpr()
		n := node("unary_expression", opTok.Span.cover(operand.Span), operand)
		n.Token = &Token{Text: "NEG"}
		return n
	}
	return p.parsePostfixExpr()
}

func (p *parser) parsePostfixExpr() *CSTNode {
	expr := p.parsePrimary()
	for {
		if p.isSymbol(".") {
			p.advanceTok()
			prop := p.parseIdentifierLeaf()
			n := node("property_access", expr.Span.cover(prop.Span), expr, prop)
			expr = n
			continue
		}
		if p.isSymbol("[") {
			p.advanceTok()
			idx := p.parseExpr()
			closeTok := p.expectSymbol("]")
			n := node("index_access", expr.Span.cover(closeTok.Span), expr, idx)
			expr = n
			continue
		}
		break
	}
	return expr
}

func (p *parser) parsePrimary() *CSTNode {
	t := p.cur()
	switch t.Kind {
	case TokString:
		p.advanceTok()
		return markLiteralKind(leaf("literal", t), "string")
	case TokInteger:
		p.advanceTok()
		return markLiteralKind(leaf("literal", t), "integer")
	case TokFloat:
		p.advanceTok()
		return markLiteralKind(leaf("literal", t), "float")
	case TokParam:
		p.advanceTok()
		return leaf("parameter", t)
	}

	if t.Kind == TokSymbol {
		switch t.Text {
		case "(":
			p.advanceTok()
			inner := p.parseExpr()
			p.addChildGuardSilent(inner, p.expectSymbol(")"))
			return inner
		case "TRUE", "FALSE":
			p.advanceTok()
			return markLiteralKind(leaf("literal", t), "boolean")
		case "NULL":
			p.advanceTok()
			return markLiteralKind(leaf("literal", t), "null")
		case "*":
			p.advanceTok()
			return leaf("star", t)
		case "[":
			return p.parseBracketExpr()
		case "{":
			return p.parseMapLiteral()
		case "CASE":
			return p.parseCaseExpr()
		case "ALL", "ANY", "NONE", "SINGLE":
			return p.parseQuantifierExpr()
		case "EXISTS":
			return p.parseExistsExpr()
		}
	}

	if t.Kind == TokIdent || t.Kind == TokBacktickIdent {
		id := p.parseIdentifierLeaf()
		if p.isSymbol("(") {
			return p.parseFunctionCallTail(id)
		}
		return id
	}

	errTok := p.advanceTok()
	return (&CSTNode{Kind: "error", Span: errTok.Span}).markError()
}

func markLiteralKind(n *CSTNode, kind string) *CSTNode {
	// stash the literal kind alongside the raw token text using the Kind
	// field's sibling convention: literal nodes carry their kind as the
	// first path segment of Kind itself so the lifter need not re-inspect
	// the token.
	n.Kind = "literal:" + kind
	return n
}

func (p *parser) parseFunctionCallTail(name *CSTNode) *CSTNode {
	start := name.Span
	p.advanceTok() // (
	n := node("function_call", start, node("name", name.Span, name))
	if p.isSymbol("DISTINCT") {
		p.advanceTok()
		n.addChild(&CSTNode{Kind: "distinct_flag", Span: start})
	}
	if !p.isSymbol(")") {
		for {
			if p.isSymbol("*") {
				t := p.advanceTok()
				n.addChild(node("arg", t.Span, leaf("star", t)))
			} else {
				n.addChild(node("arg", p.cur().Span, p.parseExpr()))
			}
			if p.isSymbol(",") {
				p.advanceTok()
				continue
			}
			break
		}
	}
	p.addChildGuardSilent(n, p.expectSymbol(")"))
	return n
}

// parseBracketExpr disambiguates list literals, list comprehensions and
// pattern comprehensions, all of which open with '['.
func (p *parser) parseBracketExpr() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // [

	if p.isSymbol("]") {
		closeTok := p.advanceTok()
		return node("list_literal", start.cover(closeTok.Span))
	}

	if p.isSymbol("(") {
		pattern := p.parsePattern()
		n := node("pattern_comprehension", start, pattern)
		if p.isSymbol("|") {
			p.advanceTok()
			n.addChild(node("projection_expr", p.cur().Span, p.parseExpr()))
		} else {
			n.markError()
		}
		p.addChildGuardSilent(n, p.expectSymbol("]"))
		return n
	}

	if (p.cur().Kind == TokIdent || p.cur().Kind == TokBacktickIdent) && p.isSymbolAt(1, "IN") {
		binding := p.parseIdentifierLeaf()
		p.advanceTok() // IN
		source := p.parseExpr()
		n := node("list_comprehension", start, node("binding", binding.Span, binding), node("source", source.Span, source))
		if p.isSymbol("WHERE") {
			p.advanceTok()
			n.addChild(node("where_expr", p.cur().Span, p.parseExpr()))
		}
		if p.isSymbol("|") {
			p.advanceTok()
			n.addChild(node("projection_expr", p.cur().Span, p.parseExpr()))
		}
		p.addChildGuardSilent(n, p.expectSymbol("]"))
		return n
	}

	first := p.parseExpr()
	n := node("list_literal", start, node("element", first.Span, first))
	for p.isSymbol(",") {
		p.advanceTok()
		el := p.parseExpr()
		n.addChild(node("element", el.Span, el))
	}
	p.addChildGuardSilent(n, p.expectSymbol("]"))
	return n
}

func (p *parser) parseCaseExpr() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // CASE
	n := node("case_expression", start)
	if !p.isSymbol("WHEN") {
		n.markError()
	}
	for p.isSymbol("WHEN") {
		p.advanceTok()
		cond := p.parseExpr()
		p.addChildGuardSilent(n, p.expectSymbol("THEN"))
		then := p.parseExpr()
		n.addChild(node("case_arm", cond.Span.cover(then.Span), cond, then))
	}
	if p.isSymbol("ELSE") {
		p.advanceTok()
		elseExpr := p.parseExpr()
		n.addChild(node("case_else", elseExpr.Span, elseExpr))
	}
	p.addChildGuardSilent(n, p.expectSymbol("END"))
	return n
}

func (p *parser) parseQuantifierExpr() *CSTNode {
	kindTok := p.advanceTok() // ALL/ANY/NONE/SINGLE
	openParen := p.expectSymbol("(")
	binding := p.parseIdentifierLeaf()
	inKw := p.expectSymbol("IN")
	source := p.parseExpr()
	n := node("quantifier_expression", kindTok.Span, node("binding", binding.Span, binding), node("source", source.Span, source))
	n.Token = &Token{Text: kindTok.Text}
	p.addChildGuardSilent(n, openParen)
	p.addChildGuardSilent(n, inKw)
	if p.isSymbol("WHERE") {
		p.advanceTok()
		n.addChild(node("where_expr", p.cur().Span, p.parseExpr()))
	}
	p.addChildGuardSilent(n, p.expectSymbol(")"))
	return n
}

func (p *parser) parseExistsExpr() *CSTNode {
	start := p.cur().Span
	p.advanceTok() // EXISTS
	if p.isSymbol("{") {
		p.advanceTok()
		pattern := p.parsePattern()
		n := node("exists_subquery", start, pattern)
		p.addChildGuardSilent(n, p.expectSymbol("}"))
		return n
	}
	if p.isSymbol("(") {
		id := &CSTNode{Kind: "identifier", Span: start, Token: &Token{Text: "exists"}}
		return p.parseFunctionCallTail(id)
	}
	return (&CSTNode{Kind: "error", Span: start}).markError()
}
