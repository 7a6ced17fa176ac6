package infer

import (
	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/env"
	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/types"
)

// inferSelect types a SELECT statement (or subquery) against scope,
// returning its result row(named) type. CTEs shadow schema tables only
// for the lifetime of this call; callers pass scope.Child() for nested
// selects so outer bindings remain visible to correlated subqueries.
func (inf *Inferrer) inferSelect(scope *env.Environment, sel *ast.SelectStmt) types.Type {
	var addedCTEs []string
	if sel.With != nil {
		for _, cte := range sel.With.CTEs {
			t := inf.inferCTE(scope, cte, sel.With.Recursive)
			name := cte.Name.Unquoted
			inf.ctes[name] = t
			addedCTEs = append(addedCTEs, name)
		}
	}
	defer func() {
		for _, name := range addedCTEs {
			delete(inf.ctes, name)
		}
	}()

	for _, ref := range sel.From {
		inf.bindTableRef(scope, ref)
	}

	if sel.Where != nil {
		inf.inferExpr(scope, sel.Where)
	}
	for _, g := range sel.GroupBy {
		inf.inferExpr(scope, g)
	}
	if sel.Having != nil {
		inf.inferExpr(scope, sel.Having)
	}
	for _, o := range sel.OrderBy {
		inf.inferExpr(scope, o.Expr)
	}
	if sel.Limit != nil {
		if sel.Limit.Count != nil {
			inf.inferExpr(scope, sel.Limit.Count)
		}
		if sel.Limit.Offset != nil {
			inf.inferExpr(scope, sel.Limit.Offset)
		}
	}

	row := inf.selectColumnsType(scope, tableBindNames(sel.From), sel.Columns)

	for cur := sel.SetOp; cur != nil; cur = cur.Right.SetOp {
		rightScope := env.New()
		rightRow := inf.inferSelect(rightScope, cur.Right)
		row = inf.unify(cur.Right.Range(), row, rightRow)
	}

	return row
}

// inferCTE types a CTE's body and packages its result as a pseudo-table so
// bindTableRef can treat a CTE reference exactly like a schema table.
func (inf *Inferrer) inferCTE(scope *env.Environment, cte ast.CTE, recursive bool) *schema.Table {
	cteScope := scope.Child()
	if recursive {
		// A recursive CTE may reference itself; register a placeholder
		// first so the self-reference resolves to fresh, unconstrained
		// column types rather than failing as "table does not exist".
		placeholder := &schema.Table{
			Name: schema.QualifiedName{Name: cte.Name.Unquoted},
			Kind: schema.KindCTE,
		}
		if len(cte.Columns) > 0 {
			for _, c := range cte.Columns {
				placeholder.Columns = append(placeholder.Columns, schema.Column{Name: c.Unquoted, Type: inf.minter.Fresh()})
			}
		}
		inf.ctes[cte.Name.Unquoted] = placeholder
	}
	row := inf.inferSelect(cteScope, cte.Subq)
	t := &schema.Table{Name: schema.QualifiedName{Name: cte.Name.Unquoted}, Kind: schema.KindCTE}
	cols := rowColumns(row)
	for i, c := range cols {
		name := c.Name
		if i < len(cte.Columns) {
			name = cte.Columns[i].Unquoted
		}
		t.Columns = append(t.Columns, schema.Column{Name: name, Type: c.Type})
	}
	return t
}

func rowColumns(row types.Type) []types.Column {
	if row.Kind != types.KindRow {
		return nil
	}
	switch row.Row.Kind {
	case types.ShapeNamed:
		return row.Row.Named
	case types.ShapeFixed:
		out := make([]types.Column, len(row.Row.Fixed))
		for i, f := range row.Row.Fixed {
			out[i] = types.Column{Name: columnN(i + 1), Type: f}
		}
		return out
	}
	return nil
}

// bindTableRef introduces ref's columns into scope under both its
// qualified ("table.col") and unqualified ("col") forms, and records the
// underlying schema table in the statement's used-table set.
func (inf *Inferrer) bindTableRef(scope *env.Environment, ref ast.TableRef) {
	switch r := ref.(type) {
	case *ast.SimpleTable:
		bindName := r.Name.Name()
		if r.Alias != nil {
			bindName = r.Alias.Unquoted
		}
		t, qname, ok := inf.resolveTable(r.Name)
		if !ok {
			inf.errorf(r.Name.Range(), "table %q does not exist", r.Name.Name())
			return
		}
		if qname.Schema != "" || t.Kind != schema.KindCTE {
			inf.markUsed(qname)
		}
		for _, c := range t.Columns {
			explicitOnly := t.Kind == schema.KindFTS5 && isFTS5PseudoColumn(c.Name)
			scope.Define(bindName+"."+c.Name, c.Type, explicitOnly)
			scope.Define(c.Name, c.Type, explicitOnly)
		}
		// An alias erases the bare schema-qualified name as a binding
		// target; only the alias and unqualified column names remain.

	case *ast.JoinTable:
		inf.bindTableRef(scope, r.Left)
		inf.bindTableRef(scope, r.Right)
		if r.On != nil {
			inf.inferExpr(scope, r.On)
		}
		for _, u := range r.Using {
			inf.lookupColumn(scope, u, "", u.Unquoted)
		}

	case *ast.SubqueryTable:
		if r.Subq == nil {
			return
		}
		row := inf.inferSelect(scope.Child(), r.Subq)
		bindName := ""
		if r.Alias != nil {
			bindName = r.Alias.Unquoted
		}
		for _, c := range rowColumns(row) {
			if bindName != "" {
				scope.Define(bindName+"."+c.Name, c.Type, false)
			}
			scope.Define(c.Name, c.Type, false)
		}
	}
}

// resolveTable looks up a table reference, checking statement-scoped CTEs
// first (they shadow schema tables for the query's lifetime) before
// falling back to the frozen schema snapshot.
func (inf *Inferrer) resolveTable(name *ast.QualifiedIdent) (*schema.Table, schema.QualifiedName, bool) {
	if name.Qualifier() == "" {
		if t, ok := inf.ctes[name.Name()]; ok {
			return t, t.Name, true
		}
	}
	t, ok := inf.Schema.Lookup(name.Qualifier(), name.Name())
	if !ok {
		return nil, schema.QualifiedName{}, false
	}
	return t, t.Name, true
}

func isFTS5PseudoColumn(name string) bool {
	switch name {
	case "rank":
		return true
	default:
		return false
	}
}

// selectColumnsType builds the result row(named) type for a column list,
// expanding bare "*" and "table.*" against scope and applying the naming
// precedence: explicit AS, implicit alias, bare column name, synthetic
// columnN. tableNames is the ordered list of FROM/RETURNING-target bind
// names a bare "*" concatenates across, per spec §4.4 ("multiple
// star-targets concatenate their named columns into a single named row").
func (inf *Inferrer) selectColumnsType(scope *env.Environment, tableNames []string, cols []ast.SelectColumn) types.Type {
	var out []types.Column
	anon := 0
	for _, col := range cols {
		if col.Star {
			out = append(out, inf.expandStar(scope, tableNames, col.Expr)...)
			continue
		}
		t := inf.inferExpr(scope, col.Expr)
		anon++
		name := columnN(anon)
		switch {
		case col.Alias != nil:
			name = col.Alias.Unquoted
		case isBareColumnRef(col.Expr):
			name = bareColumnName(col.Expr)
		}
		out = append(out, types.Column{Name: name, Type: t})
	}
	return types.NamedRow(out...)
}

// expandStar expands a bare "*" or a "table.*" against scope. A bare "*"
// concatenates each of tableNames' columns in FROM order (matching
// SQLite, which repeats a column once per table it appears on rather
// than deduplicating it), falling back to scope's flat unqualified scan
// when tableNames is unknown (e.g. a RETURNING "*" against a table that
// failed to resolve). "table.*" expands that one table's columns only.
func (inf *Inferrer) expandStar(scope *env.Environment, tableNames []string, starExpr ast.Expr) []types.Column {
	qi, ok := starExpr.(*ast.QualifiedIdent)
	if !ok || qi.Qualifier() == "" {
		if len(tableNames) == 0 {
			var out []types.Column
			for _, name := range scope.Columns() {
				if isQualified(name) {
					continue
				}
				c, _ := scope.Lookup(name)
				out = append(out, types.Column{Name: name, Type: c.Type})
			}
			return out
		}
		var out []types.Column
		for _, tname := range tableNames {
			out = append(out, inf.expandQualified(scope, tname)...)
		}
		return out
	}
	return inf.expandQualified(scope, qi.Qualifier())
}

// expandQualified returns qualifier's columns (in scope's binding order)
// with the "qualifier." prefix stripped.
func (inf *Inferrer) expandQualified(scope *env.Environment, qualifier string) []types.Column {
	prefix := qualifier + "."
	var out []types.Column
	for _, name := range scope.Columns() {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			c, _ := scope.Lookup(name)
			out = append(out, types.Column{Name: name[len(prefix):], Type: c.Type})
		}
	}
	return out
}

// tableBindNames returns, in FROM order, the bind name each table
// reference introduces its columns under (alias if present, else the
// table/CTE name); it mirrors bindTableRef's own naming so a bare "*"
// can concatenate per-table columns the same way bindTableRef bound them.
func tableBindNames(refs []ast.TableRef) []string {
	var out []string
	for _, r := range refs {
		out = append(out, tableBindNamesOf(r)...)
	}
	return out
}

func tableBindNamesOf(ref ast.TableRef) []string {
	switch r := ref.(type) {
	case *ast.SimpleTable:
		if r.Alias != nil {
			return []string{r.Alias.Unquoted}
		}
		return []string{r.Name.Name()}
	case *ast.JoinTable:
		return append(tableBindNamesOf(r.Left), tableBindNamesOf(r.Right)...)
	case *ast.SubqueryTable:
		if r.Alias != nil {
			return []string{r.Alias.Unquoted}
		}
		// An unaliased derived table has no qualifier to key by; its
		// columns are only reachable unqualified and are omitted from a
		// bare "*" concatenation here, same looseness spec §4.4 leaves
		// for star-expansion beyond the named-table case.
	}
	return nil
}

func isQualified(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return true
		}
	}
	return false
}

func isBareColumnRef(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.QualifiedIdent:
		return true
	}
	return false
}

func bareColumnName(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.Ident:
		return ex.Unquoted
	case *ast.QualifiedIdent:
		return ex.Name()
	}
	return ""
}

func columnN(n int) string {
	return "column" + itoaSmall(n)
}

func itoaSmall(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
