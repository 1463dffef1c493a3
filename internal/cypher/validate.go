package cypher

import "fmt"

// Mode controls how strict Validate is about non-read operations.
type Mode int

const (
	// ReadOnly rejects every writing clause and every CALL.
	ReadOnly Mode = iota
	// Any performs no write/CALL rejection, only the function allowlist
	// check. Reserved for trusted, operator-issued queries; the agent
	// pipeline always validates with ReadOnly.
	Any
)

// allowedFunctions mirrors the read-only function surface the backend
// actually implements. Anything else raises a SemanticError naming the
// offending function, rather than failing silently at execution time.
var allowedFunctions = map[string]bool{
	"count": true, "collect": true, "labels": true, "type": true,
	"keys": true, "size": true, "length": true, "coalesce": true,
	"toString": true, "toInteger": true, "toFloat": true, "exists": true,
}

// Validate enforces the read-only policy over an already-lifted Query.
// It returns the first violation found, walking clauses in order.
func Validate(q *Query, mode Mode) error {
	for _, c := range q.Clauses {
		if mode == ReadOnly {
			if err := checkNotWriting(c); err != nil {
				return err
			}
			if err := checkNotCall(c); err != nil {
				return err
			}
		}
		if err := checkFunctions(c); err != nil {
			return err
		}
	}
	return nil
}

func checkNotWriting(c Clause) error {
	switch cc := c.(type) {
	case *CreateClause:
		return &ValidationError{Message: "updating clause is not allowed: CREATE", Span: cc.Span}
	case *MergeClause:
		return &ValidationError{Message: "updating clause is not allowed: MERGE", Span: cc.Span}
	case *SetClause:
		return &ValidationError{Message: "updating clause is not allowed: SET", Span: cc.Span}
	case *RemoveClause:
		return &ValidationError{Message: "updating clause is not allowed: REMOVE", Span: cc.Span}
	case *DeleteClause:
		return &ValidationError{Message: "updating clause is not allowed: DELETE", Span: cc.Span}
	}
	return nil
}

func checkNotCall(c Clause) error {
	if cc, ok := c.(*CallClause); ok {
		return &ValidationError{Message: "CALL procedures are not allowed", Span: cc.Span}
	}
	return nil
}

func checkFunctions(c Clause) error {
	var exprs []Expr
	switch cc := c.(type) {
	case *MatchClause:
		if cc.Where != nil {
			exprs = append(exprs, cc.Where)
		}
	case *WithClause:
		if cc.Where != nil {
			exprs = append(exprs, cc.Where)
		}
		for _, p := range cc.Projections {
			exprs = append(exprs, p.Expr)
		}
	case *UnwindClause:
		exprs = append(exprs, cc.Source)
	case *ReturnClause:
		for _, p := range cc.Projections {
			exprs = append(exprs, p.Expr)
		}
		for _, s := range cc.OrderBy {
			exprs = append(exprs, s.Expr)
		}
		if cc.Skip != nil {
			exprs = append(exprs, cc.Skip)
		}
		if cc.Limit != nil {
			exprs = append(exprs, cc.Limit)
		}
	case *CallClause:
		exprs = append(exprs, cc.Args...)
	}
	for _, e := range exprs {
		if err := checkFunctionsInExpr(e); err != nil {
			return err
		}
	}
	return nil
}

func checkFunctionsInExpr(e Expr) error {
	switch ex := e.(type) {
	case *FunctionCall:
		if !allowedFunctions[ex.Name] {
			return &SemanticError{Message: fmt.Sprintf("function %s is not allowed", ex.Name), Span: ex.Span}
		}
		for _, a := range ex.Args {
			if err := checkFunctionsInExpr(a); err != nil {
				return err
			}
		}
	case *PropertyAccess:
		return checkFunctionsInExpr(ex.Target)
	case *IndexAccess:
		if err := checkFunctionsInExpr(ex.Target); err != nil {
			return err
		}
		return checkFunctionsInExpr(ex.Index)
	case *BinaryOp:
		if err := checkFunctionsInExpr(ex.Left); err != nil {
			return err
		}
		return checkFunctionsInExpr(ex.Right)
	case *UnaryOp:
		return checkFunctionsInExpr(ex.Operand)
	case *IsNull:
		return checkFunctionsInExpr(ex.Target)
	case *LabelPredicate:
		return checkFunctionsInExpr(ex.Target)
	case *Case:
		for _, arm := range ex.Arms {
			if err := checkFunctionsInExpr(arm.When); err != nil {
				return err
			}
			if err := checkFunctionsInExpr(arm.Then); err != nil {
				return err
			}
		}
		if ex.Else != nil {
			return checkFunctionsInExpr(ex.Else)
		}
	case *Quantifier:
		if err := checkFunctionsInExpr(ex.Source); err != nil {
			return err
		}
		if ex.Where != nil {
			return checkFunctionsInExpr(ex.Where)
		}
	case *ListComprehension:
		if err := checkFunctionsInExpr(ex.Source); err != nil {
			return err
		}
		if ex.Where != nil {
			if err := checkFunctionsInExpr(ex.Where); err != nil {
				return err
			}
		}
		if ex.Projection != nil {
			return checkFunctionsInExpr(ex.Projection)
		}
	case *PatternComprehension:
		return checkFunctionsInExpr(ex.Projection)
	case *ExistsSubquery:
		return nil
	case *Literal:
		if ex.Kind == LiteralList {
			for _, el := range ex.List {
				if err := checkFunctionsInExpr(el); err != nil {
					return err
				}
			}
		}
		if ex.Kind == LiteralMap {
			for _, v := range ex.MapVals {
				if err := checkFunctionsInExpr(v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
