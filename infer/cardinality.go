package infer

import (
	"strings"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/lexer"
)

// selectCardinality implements the documented analyses from §4.4: "many"
// by default; "single" when there is no FROM clause at all (e.g. "SELECT
// 1" always returns exactly one row), when a LIMIT 1 is present, when the
// top-level SELECT is an aggregate with no GROUP BY, or when a
// primary-key equality is provable from the WHERE clause against the
// statement's single FROM table. Anything else (joins, OR-connected
// predicates, subqueries as the sole FROM source) stays "many" per the
// spec's explicit instruction not to guess beyond these rules.
func (inf *Inferrer) selectCardinality(sel *ast.SelectStmt) Cardinality {
	if sel.SetOp != nil {
		return Many
	}
	if len(sel.From) == 0 {
		return Single
	}
	if isLimitOne(sel.Limit) {
		return Single
	}
	if len(sel.GroupBy) == 0 && hasTopLevelAggregate(sel.Columns) {
		return Single
	}
	if sel.Where != nil && len(sel.From) == 1 {
		if st, ok := sel.From[0].(*ast.SimpleTable); ok {
			if t, _, ok := inf.resolveTable(st.Name); ok {
				cols := equalityColumns(sel.Where)
				if t.UniquelyIdentifiedBy(cols) {
					return Single
				}
			}
		}
	}
	return Many
}

func isLimitOne(lim *ast.LimitClause) bool {
	if lim == nil || lim.Count == nil {
		return false
	}
	lit, ok := lim.Count.(*ast.Literal)
	return ok && string(lit.Raw) == "1"
}

func hasTopLevelAggregate(cols []ast.SelectColumn) bool {
	for _, c := range cols {
		if fc, ok := c.Expr.(*ast.FuncCall); ok {
			if aggregateFuncs[strings.ToUpper(fc.Name.Name())] {
				return true
			}
		}
	}
	return false
}

// equalityColumns collects the column names compared with "=" across a
// WHERE clause's top-level AND conjunction (an OR anywhere defeats the
// analysis, since it can no longer prove a single-row match).
func equalityColumns(where ast.Expr) []string {
	var cols []string
	ok := collectEqualities(where, &cols)
	if !ok {
		return nil
	}
	return cols
}

func collectEqualities(e ast.Expr, out *[]string) bool {
	switch ex := e.(type) {
	case *ast.BinaryExpr:
		switch ex.Op {
		case lexer.AND:
			return collectEqualities(ex.Left, out) && collectEqualities(ex.Right, out)
		case lexer.EQ:
			if name, ok := columnNameOf(ex.Left); ok {
				*out = append(*out, name)
				return true
			}
			if name, ok := columnNameOf(ex.Right); ok {
				*out = append(*out, name)
				return true
			}
			return false
		default:
			return false
		}
	default:
		return false
	}
}

func columnNameOf(e ast.Expr) (string, bool) {
	switch ex := e.(type) {
	case *ast.Ident:
		return ex.Unquoted, true
	case *ast.QualifiedIdent:
		return ex.Name(), true
	}
	return "", false
}

// mutationCardinality covers UPDATE/DELETE: single when RETURNING is
// present and the WHERE clause provably selects exactly one row via the
// primary key, otherwise many.
func (inf *Inferrer) mutationCardinality(table ast.TableRef, where ast.Expr, returning *ast.ReturningClause) Cardinality {
	if returning == nil {
		return Many
	}
	st, ok := table.(*ast.SimpleTable)
	if !ok || where == nil {
		return Many
	}
	t, _, ok := inf.resolveTable(st.Name)
	if !ok {
		return Many
	}
	if t.UniquelyIdentifiedBy(equalityColumns(where)) {
		return Single
	}
	return Many
}

// insertCardinality: a single literal VALUES row (and no SELECT source)
// inserts and potentially returns exactly one row.
func (inf *Inferrer) insertCardinality(ins *ast.InsertStmt) Cardinality {
	if ins.Select == nil && len(ins.Values) == 1 {
		return Single
	}
	return Many
}
