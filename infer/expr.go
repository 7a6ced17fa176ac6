package infer

import (
	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/env"
	"github.com/basilisk-labs/sqlitec/lexer"
	"github.com/basilisk-labs/sqlitec/types"
)

// inferExpr computes e's type against scope, unifying as it goes and
// recording a diagnostic (and the Error sentinel) at the failing node
// without aborting inference of sibling expressions.
func (inf *Inferrer) inferExpr(scope *env.Environment, e ast.Expr) types.Type {
	return inf.inferExprNamed(scope, e, "")
}

// inferExprNamed is inferExpr with a contextual name hint used only when e
// is an unnamed bind parameter: "WHERE foo = ?" names the parameter "foo"
// from its sibling column reference.
func (inf *Inferrer) inferExprNamed(scope *env.Environment, e ast.Expr, contextName string) types.Type {
	if e == nil {
		return types.Error()
	}
	switch ex := e.(type) {
	case *ast.Literal:
		return inf.literalType(ex)
	case *ast.NullLit:
		return types.Optional(inf.minter.Fresh())
	case *ast.StarExpr:
		return types.Nominal("ANY")
	case *ast.Param:
		return inf.paramType(ex, contextName)
	case *ast.Ident:
		return inf.lookupColumn(scope, ex, "", ex.Unquoted)
	case *ast.QualifiedIdent:
		return inf.inferQualifiedIdent(scope, ex)
	case *ast.BinaryExpr:
		return inf.inferBinary(scope, ex)
	case *ast.UnaryExpr:
		operand := inf.inferExpr(scope, ex.Expr)
		scheme := inf.opScheme(ex.Op)
		fn := types.Instantiate(&inf.minter, scheme).Underlying()
		inf.unify(ex.Range(), fn.Params[0], operand)
		return inf.subst.Resolve(*fn.Result)
	case *ast.PostfixExpr:
		operand := inf.inferExpr(scope, ex.Expr)
		switch ex.Op {
		case lexer.COLLATE:
			return inf.unify(ex.Range(), operand, types.Nominal("TEXT"))
		default:
			return operand
		}
	case *ast.FuncCall:
		return inf.inferFuncCall(scope, ex)
	case *ast.CaseExpr:
		return inf.inferCase(scope, ex)
	case *ast.BetweenExpr:
		return inf.inferBetween(scope, ex)
	case *ast.InExpr:
		return inf.inferIn(scope, ex)
	case *ast.LikeExpr:
		return inf.inferLike(scope, ex)
	case *ast.IsNullExpr:
		inf.inferExpr(scope, ex.Expr)
		return types.Nominal("BOOL")
	case *ast.IsExpr:
		l := inf.inferExpr(scope, ex.Left)
		r := inf.inferExpr(scope, ex.Right)
		inf.unify(ex.Range(), l, r)
		return types.Nominal("BOOL")
	case *ast.ExistsExpr:
		if ex.Subq != nil {
			inf.inferSelect(scope.Child(), ex.Subq)
		}
		return types.Nominal("BOOL")
	case *ast.SubqueryExpr:
		if ex.Subq == nil {
			return types.Error()
		}
		row := inf.inferSelect(scope.Child(), ex.Subq)
		return firstColumnType(row)
	case *ast.CastExpr:
		inf.inferExpr(scope, ex.Expr)
		return types.Optional(types.Nominal(string(ex.Type.Name)))
	default:
		return types.Error()
	}
}

func (inf *Inferrer) literalType(lit *ast.Literal) types.Type {
	switch lit.Kind {
	case lexer.INT:
		return types.Nominal("INTEGER")
	case lexer.FLOAT:
		return types.Nominal("REAL")
	case lexer.STRING:
		return types.Nominal("TEXT")
	case lexer.HEXLIT, lexer.BITLIT:
		return types.Nominal("BLOB")
	case lexer.TRUE_KW, lexer.FALSE_KW:
		return types.Nominal("BOOL")
	default:
		return types.Nominal("TEXT")
	}
}

// lookupColumn resolves a (possibly qualified) column reference against
// scope, reporting "does not exist"/"ambiguous" diagnostics as needed.
func (inf *Inferrer) lookupColumn(scope *env.Environment, node ast.Expr, qualifier, name string) types.Type {
	key := name
	if qualifier != "" {
		key = qualifier + "." + name
	}
	c, ok := scope.Lookup(key)
	if !ok {
		inf.errorf(node.Range(), "column %q does not exist in the current context", name)
		return types.Error()
	}
	if c.Ambiguous && qualifier == "" {
		inf.errorf(node.Range(), "%q is ambiguous in the current context", name)
		return types.Error()
	}
	return c.Type
}

func (inf *Inferrer) inferQualifiedIdent(scope *env.Environment, qi *ast.QualifiedIdent) types.Type {
	if qi.Qualifier() != "" {
		return inf.lookupColumn(scope, qi, qi.Qualifier(), qi.Name())
	}
	return inf.lookupColumn(scope, qi, "", qi.Name())
}

func (inf *Inferrer) inferBinary(scope *env.Environment, ex *ast.BinaryExpr) types.Type {
	l := inf.inferExprNamed(scope, ex.Left, contextualParamName(ex.Right))
	r := inf.inferExprNamed(scope, ex.Right, contextualParamName(ex.Left))
	scheme := inf.opScheme(ex.Op)
	fn := types.Instantiate(&inf.minter, scheme).Underlying()
	inf.unify(ex.Left.Range(), fn.Params[0], l)
	inf.unify(ex.Right.Range(), fn.Params[1], r)
	return inf.subst.Resolve(*fn.Result)
}

func (inf *Inferrer) inferFuncCall(scope *env.Environment, fc *ast.FuncCall) types.Type {
	name := fc.Name.Name()
	args := make([]types.Type, 0, len(fc.Args))
	for _, a := range fc.Args {
		args = append(args, inf.inferExpr(scope, a))
	}
	if fc.Star {
		return types.Nominal("INTEGER") // COUNT(*)
	}
	scheme, ok := inf.funcScheme(name)
	if !ok {
		// Unknown function: returns a fresh, unconstrained type so the rest
		// of the statement still type-checks.
		return inf.minter.Fresh()
	}
	fn := types.Instantiate(&inf.minter, scheme).Underlying()
	n := len(fn.Params)
	for i, argT := range args {
		pIdx := i
		if fn.Variadic && pIdx >= n {
			pIdx = n - 1
		}
		if pIdx < 0 || pIdx >= n {
			continue
		}
		inf.unify(fc.Args[i].Range(), fn.Params[pIdx], argT)
	}
	return inf.subst.Resolve(*fn.Result)
}

func (inf *Inferrer) inferCase(scope *env.Environment, ce *ast.CaseExpr) types.Type {
	var operandT types.Type
	if ce.Operand != nil {
		operandT = inf.inferExpr(scope, ce.Operand)
	}
	result := inf.minter.Fresh()
	for _, w := range ce.Whens {
		condT := inf.inferExpr(scope, w.Cond)
		if ce.Operand != nil {
			inf.unify(w.Cond.Range(), operandT, condT)
		} else {
			inf.unify(w.Cond.Range(), condT, types.Nominal("BOOL"))
		}
		resT := inf.inferExpr(scope, w.Result)
		result = inf.unify(w.Result.Range(), result, resT)
	}
	if ce.Else != nil {
		elseT := inf.inferExpr(scope, ce.Else)
		result = inf.unify(ce.Else.Range(), result, elseT)
	} else {
		result = types.Optional(result)
	}
	return result
}

func (inf *Inferrer) inferBetween(scope *env.Environment, be *ast.BetweenExpr) types.Type {
	t := inf.inferExpr(scope, be.Expr)
	lo := inf.inferExpr(scope, be.Lo)
	hi := inf.inferExpr(scope, be.Hi)
	inf.unify(be.Lo.Range(), t, lo)
	inf.unify(be.Hi.Range(), t, hi)
	return types.Nominal("BOOL")
}

func (inf *Inferrer) inferIn(scope *env.Environment, ie *ast.InExpr) types.Type {
	lhs := inf.inferExpr(scope, ie.Expr)
	switch {
	case ie.Subq != nil:
		row := inf.inferSelect(scope.Child(), ie.Subq)
		elem := firstColumnType(row)
		inf.unify(ie.Range(), lhs, elem)
	case len(ie.List) == 1:
		if p, ok := ie.List[0].(*ast.Param); ok {
			// A single bind parameter as the entire IN list is row-valued:
			// it expands to "(?, ?, ...)" at execution time.
			slot := inf.bindParam(p, "")
			inf.unify(p.Range(), slot, types.UnknownRow(lhs))
			break
		}
		elemT := inf.inferExpr(scope, ie.List[0])
		inf.unify(ie.List[0].Range(), lhs, elemT)
	default:
		for _, v := range ie.List {
			elemT := inf.inferExpr(scope, v)
			inf.unify(v.Range(), lhs, elemT)
		}
	}
	return types.Nominal("BOOL")
}

func (inf *Inferrer) inferLike(scope *env.Environment, le *ast.LikeExpr) types.Type {
	t := inf.inferExpr(scope, le.Expr)
	pat := inf.inferExpr(scope, le.Pattern)
	inf.unify(le.Range(), t, pat)
	if le.Escape != nil {
		inf.inferExpr(scope, le.Escape)
	}
	return types.Nominal("BOOL")
}

// firstColumnType extracts the single-column type a scalar/row subquery
// exposes to its enclosing expression.
func firstColumnType(row types.Type) types.Type {
	if row.Kind != types.KindRow {
		return types.Error()
	}
	switch row.Row.Kind {
	case types.ShapeNamed:
		if len(row.Row.Named) == 0 {
			return types.Error()
		}
		return types.Optional(row.Row.Named[0].Type)
	case types.ShapeFixed:
		if len(row.Row.Fixed) == 0 {
			return types.Error()
		}
		return types.Optional(row.Row.Fixed[0])
	default:
		return types.Error()
	}
}

// contextualParamName guesses a name for an unnamed "?" parameter from its
// immediate sibling in a comparison, e.g. "foo = ?" names the parameter
// "foo". It only looks one level up; anything more elaborate falls back to
// a synthetic name at finalize time.
func contextualParamName(sibling ast.Expr) string {
	switch s := sibling.(type) {
	case *ast.Ident:
		return s.Unquoted
	case *ast.QualifiedIdent:
		return s.Name()
	}
	return ""
}
