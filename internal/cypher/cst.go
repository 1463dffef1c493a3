package cypher

// CSTNode is a single node of the concrete syntax tree produced by the
// grammar front end (C1). It stands in for a tree-sitter node: a Kind
// tag, a Span into the source, child nodes, and — for leaves — the
// originating Token.
type CSTNode struct {
	Kind     string
	Span     Span
	Children []*CSTNode
	Token    *Token
	err      bool // true if this node or a descendant could not be parsed
}

// HasError reports whether the tree rooted at n contains any error node,
// mirroring tree_sitter::Node::has_error.
func (n *CSTNode) HasError() bool {
	if n == nil {
		return true
	}
	return n.err
}

func (n *CSTNode) markError() *CSTNode {
	n.err = true
	return n
}

func (n *CSTNode) addChild(c *CSTNode) {
	if c == nil {
		return
	}
	n.Children = append(n.Children, c)
	if c.err {
		n.err = true
	}
	n.Span = n.Span.cover(c.Span)
}

// leaf builds a terminal CSTNode directly from a Token.
func leaf(kind string, tok Token) *CSTNode {
	t := tok
	return &CSTNode{Kind: kind, Span: tok.Span, Token: &t, err: tok.Kind == TokError}
}

func node(kind string, span Span, children ...*CSTNode) *CSTNode {
	n := &CSTNode{Kind: kind, Span: span}
	for _, c := range children {
		n.addChild(c)
	}
	return n
}

// Tree is the result of a successful or failed parse.
type Tree struct {
	Root *CSTNode
}
