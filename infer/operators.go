package infer

import (
	"strings"

	"github.com/basilisk-labs/sqlitec/lexer"
	"github.com/basilisk-labs/sqlitec/types"
)

// opScheme instantiates the built-in scheme for a prefix/binary operator
// token against fresh variables, per the §4.4 table. Most arithmetic and
// comparison operators are polymorphic in a single type variable shared by
// both operands (and, for arithmetic, the result).
func (inf *Inferrer) opScheme(op lexer.TokenType) types.TypeScheme {
	a := inf.minter.Fresh()
	switch op {
	case lexer.TILDE:
		// prefix ~ : a -> a
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, a, false)}
	case lexer.PLUS, lexer.MINUS:
		// binary +, - : (a, a) -> a; prefix +, - use only the first parameter
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a, a}, a, false)}
	case lexer.STAR, lexer.SLASH, lexer.PERCENT, lexer.AMPERSAND, lexer.PIPE, lexer.LSHIFT, lexer.RSHIFT:
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a, a}, a, false)}
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE,
		lexer.IS, lexer.AND, lexer.OR, lexer.NOT:
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a, a}, types.Nominal("BOOL"), false)}
	case lexer.DBAR: // || concat
		b := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var, b.Var}, Type: types.Func([]types.Type{a, b}, types.Nominal("TEXT"), false)}
	case lexer.DARROW2: // ->> json-extract
		b := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var, b.Var}, Type: types.Func([]types.Type{a}, b, false)}
	case lexer.ARROW: // -> json-arrow
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, types.Nominal("ANY"), false)}
	}
	return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a, a}, a, false)}
}

// aggregateFuncs is the closed set of aggregate functions consulted by
// cardinality inference (an aggregate without GROUP BY collapses to a
// single row).
var aggregateFuncs = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"TOTAL": true, "GROUP_CONCAT": true,
}

// funcScheme returns the built-in scheme for a known scalar/aggregate
// function, or ok=false for an unrecognized name (treated as returning a
// fresh, unconstrained type so a single unknown function never blocks
// inference of the rest of the statement).
func (inf *Inferrer) funcScheme(name string) (types.TypeScheme, bool) {
	switch strings.ToUpper(name) {
	case "MAX", "MIN":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, a, true), Variadic: true}, true
	case "COUNT":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, types.Nominal("INTEGER"), false)}, true
	case "SUM", "TOTAL", "AVG":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, types.Optional(types.Nominal("REAL")), false)}, true
	case "GROUP_CONCAT":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, types.Optional(types.Nominal("TEXT")), true)}, true
	case "LENGTH", "INSTR":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, types.Nominal("INTEGER"), true)}, true
	case "UPPER", "LOWER", "TRIM", "LTRIM", "RTRIM", "REPLACE", "SUBSTR", "PRINTF", "FORMAT", "HEX", "QUOTE":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, types.Nominal("TEXT"), true)}, true
	case "ABS", "ROUND":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, a, true)}, true
	case "COALESCE", "IFNULL":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, a, true)}, true
	case "NULLIF":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a, a}, types.Optional(a), false)}, true
	case "JSON_EXTRACT", "JSON":
		a, b := inf.minter.Fresh(), inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var, b.Var}, Type: types.Func([]types.Type{a}, b, true)}, true
	case "RANDOM", "RANDOMBLOB", "LAST_INSERT_ROWID", "CHANGES", "TOTAL_CHANGES":
		return types.TypeScheme{Type: types.Func(nil, types.Nominal("INTEGER"), false)}, true
	case "DATE", "TIME", "DATETIME", "STRFTIME", "JULIANDAY":
		a := inf.minter.Fresh()
		return types.TypeScheme{Vars: []int{a.Var}, Type: types.Func([]types.Type{a}, types.Nominal("TEXT"), true)}, true
	}
	return types.TypeScheme{}, false
}
