package sqlparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/lexer"
)

// RenderOptions controls how Render reproduces a parsed statement as SQL text.
type RenderOptions struct {
	// Strict causes Render to fail on a statement kind it does not know how
	// to reproduce instead of silently emitting nothing for it.
	Strict bool
}

// Render reproduces a single parsed statement as canonical SQLite text.
// It is not a verbatim echo of the input: literals, identifiers and clause
// order are normalized. It exists for the reference code-generation backend
// to embed readable SQL alongside the sanitized/segmented source the
// rewriter produces, and for tests that want to assert on shape rather than
// exact formatting.
func Render(stmt Statement, opts RenderOptions) (string, error) {
	r := &renderer{strict: opts.Strict}
	return r.renderStatement(stmt)
}

// RenderStatements renders a sequence of statements, semicolon-joined.
func RenderStatements(stmts []Statement, opts RenderOptions) (string, error) {
	r := &renderer{strict: opts.Strict}
	var b strings.Builder
	for i, stmt := range stmts {
		if i > 0 {
			b.WriteString("; ")
		}
		s, err := r.renderStatement(stmt)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

type renderer struct {
	strict bool
}

func (r *renderer) renderStatement(stmt Statement) (string, error) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		return r.renderSelect(s)
	case *ast.InsertStmt:
		return r.renderInsert(s)
	case *ast.UpdateStmt:
		return r.renderUpdate(s)
	case *ast.DeleteStmt:
		return r.renderDelete(s)
	case *ast.CreateTableStmt:
		return r.renderCreateTable(s)
	case *ast.CreateVirtualTableStmt:
		return r.renderCreateVirtualTable(s)
	case *ast.AlterTableStmt:
		return r.renderAlterTable(s)
	case *ast.DropTableStmt:
		out := "DROP TABLE "
		if s.IfExists {
			out += "IF EXISTS "
		}
		return out + r.renderQualifiedIdent(s.Table), nil
	case *ast.CreateIndexStmt:
		return r.renderCreateIndex(s)
	case *ast.DropIndexStmt:
		out := "DROP INDEX "
		if s.IfExists {
			out += "IF EXISTS "
		}
		return out + r.renderIdent(s.Name), nil
	case *ast.CreateViewStmt:
		return r.renderCreateView(s)
	case *ast.DropViewStmt:
		out := "DROP VIEW "
		if s.IfExists {
			out += "IF EXISTS "
		}
		return out + r.renderQualifiedIdent(s.Name), nil
	case *ast.CreateTriggerStmt:
		return r.renderCreateTrigger(s)
	case *ast.DropTriggerStmt:
		out := "DROP TRIGGER "
		if s.IfExists {
			out += "IF EXISTS "
		}
		return out + r.renderQualifiedIdent(s.Name), nil
	case *ast.PragmaStmt:
		out := "PRAGMA " + r.renderIdent(s.Name)
		if s.Value != nil {
			out += " = " + r.renderExpr(s.Value)
		}
		return out, nil
	case *ast.TransactionStmt:
		return r.renderTx(s), nil
	case *ast.VacuumStmt:
		if s.Schema != nil {
			return "VACUUM " + r.renderIdent(s.Schema), nil
		}
		return "VACUUM", nil
	case *ast.ReindexStmt:
		if s.Name != nil {
			return "REINDEX " + r.renderQualifiedIdent(s.Name), nil
		}
		return "REINDEX", nil
	case *ast.ExplainStmt:
		inner, err := r.renderStatement(s.Stmt)
		if err != nil {
			return "", err
		}
		if s.QueryPlan {
			return "EXPLAIN QUERY PLAN " + inner, nil
		}
		return "EXPLAIN " + inner, nil
	case *ast.DefineQueryStmt:
		inner, err := r.renderStatement(s.Stmt)
		if err != nil {
			return "", err
		}
		out := "DEFINE QUERY " + r.renderIdent(s.Name)
		if s.Input != nil {
			out += " INPUT " + r.renderIdent(s.Input)
		}
		if s.Output != nil {
			out += " OUTPUT " + r.renderIdent(s.Output)
		}
		return out + " AS " + inner, nil
	case *ast.EmptyStmt:
		return "", nil
	default:
		if r.strict {
			return "", fmt.Errorf("render: unsupported statement type %T", s)
		}
		return "", nil
	}
}

func (r *renderer) renderWith(w *ast.WithClause) string {
	if w == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("WITH ")
	if w.Recursive {
		b.WriteString("RECURSIVE ")
	}
	for i, cte := range w.CTEs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.renderIdent(cte.Name))
		if len(cte.Columns) > 0 {
			b.WriteString(" (")
			for j, col := range cte.Columns {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(r.renderIdent(col))
			}
			b.WriteString(")")
		}
		sub, _ := r.renderSelect(cte.Subq)
		b.WriteString(" AS (")
		b.WriteString(sub)
		b.WriteByte(')')
	}
	b.WriteByte(' ')
	return b.String()
}

func (r *renderer) renderSelect(s *ast.SelectStmt) (string, error) {
	var b strings.Builder
	b.WriteString(r.renderWith(s.With))
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		if c.Star {
			b.WriteByte('*')
		} else {
			b.WriteString(r.renderExpr(c.Expr))
		}
		if c.Alias != nil {
			b.WriteString(" AS ")
			b.WriteString(r.renderIdent(c.Alias))
		}
	}
	if len(s.From) > 0 {
		b.WriteString(" FROM ")
		for i, tr := range s.From {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.renderTableRef(tr))
		}
	}
	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(r.renderExpr(s.Where))
	}
	if len(s.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		for i, e := range s.GroupBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.renderExpr(e))
		}
	}
	if s.Having != nil {
		b.WriteString(" HAVING ")
		b.WriteString(r.renderExpr(s.Having))
	}
	if len(s.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, it := range s.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.renderExpr(it.Expr))
			if it.Desc {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	}
	if s.Limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(r.renderExpr(s.Limit.Count))
		if s.Limit.Offset != nil {
			b.WriteString(" OFFSET ")
			b.WriteString(r.renderExpr(s.Limit.Offset))
		}
	}
	if s.SetOp != nil {
		cur := s.SetOp
		for cur != nil {
			b.WriteByte(' ')
			switch cur.Op {
			case ast.Union:
				b.WriteString("UNION")
			case ast.Intersect:
				b.WriteString("INTERSECT")
			case ast.Except:
				b.WriteString("EXCEPT")
			}
			if cur.All {
				b.WriteString(" ALL")
			}
			right, err := r.renderSelect(cur.Right)
			if err != nil {
				return "", err
			}
			b.WriteByte(' ')
			b.WriteString(right)
			cur = cur.Right.SetOp
		}
	}
	return b.String(), nil
}

func (r *renderer) renderReturning(ret *ast.ReturningClause) string {
	if ret == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(" RETURNING ")
	for i, c := range ret.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		if c.Star {
			b.WriteByte('*')
		} else {
			b.WriteString(r.renderExpr(c.Expr))
		}
		if c.Alias != nil {
			b.WriteString(" AS ")
			b.WriteString(r.renderIdent(c.Alias))
		}
	}
	return b.String()
}

func (r *renderer) renderInsert(s *ast.InsertStmt) (string, error) {
	var b strings.Builder
	b.WriteString(r.renderWith(s.With))
	b.WriteString("INSERT ")
	if s.OrAction != "" {
		b.WriteString("OR ")
		b.WriteString(strings.ToUpper(s.OrAction))
		b.WriteByte(' ')
	}
	b.WriteString("INTO ")
	b.WriteString(r.renderQualifiedIdent(s.Table))
	if s.Alias != nil {
		b.WriteString(" AS ")
		b.WriteString(r.renderIdent(s.Alias))
	}
	if len(s.Columns) > 0 {
		b.WriteString(" (")
		for i, col := range s.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.renderIdent(col))
		}
		b.WriteString(")")
	}
	switch {
	case s.Default:
		b.WriteString(" DEFAULT VALUES")
	case len(s.Values) > 0:
		b.WriteString(" VALUES ")
		for i, row := range s.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('(')
			for j, e := range row {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(r.renderExpr(e))
			}
			b.WriteByte(')')
		}
	case s.Select != nil:
		sel, err := r.renderSelect(s.Select)
		if err != nil {
			return "", err
		}
		b.WriteByte(' ')
		b.WriteString(sel)
	}
	if s.Upsert != nil {
		b.WriteString(" ON CONFLICT")
		if len(s.Upsert.Target) > 0 {
			b.WriteString(" (")
			for i, c := range s.Upsert.Target {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(r.renderIdent(c))
			}
			b.WriteByte(')')
		}
		if s.Upsert.DoNothing {
			b.WriteString(" DO NOTHING")
		} else {
			b.WriteString(" DO UPDATE SET ")
			for i, a := range s.Upsert.Assigns {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(r.renderIdent(a.Column))
				b.WriteString(" = ")
				b.WriteString(r.renderExpr(a.Value))
			}
			if s.Upsert.UpdateWhen != nil {
				b.WriteString(" WHERE ")
				b.WriteString(r.renderExpr(s.Upsert.UpdateWhen))
			}
		}
	}
	b.WriteString(r.renderReturning(s.Returning))
	return b.String(), nil
}

func (r *renderer) renderUpdate(s *ast.UpdateStmt) (string, error) {
	var b strings.Builder
	b.WriteString(r.renderWith(s.With))
	b.WriteString("UPDATE ")
	if s.OrAction != "" {
		b.WriteString("OR ")
		b.WriteString(strings.ToUpper(s.OrAction))
		b.WriteByte(' ')
	}
	b.WriteString(r.renderTableRef(s.Table))
	b.WriteString(" SET ")
	for i, a := range s.Set {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.renderIdent(a.Column))
		b.WriteString(" = ")
		b.WriteString(r.renderExpr(a.Value))
	}
	if len(s.From) > 0 {
		b.WriteString(" FROM ")
		for i, tr := range s.From {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.renderTableRef(tr))
		}
	}
	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(r.renderExpr(s.Where))
	}
	b.WriteString(r.renderReturning(s.Returning))
	return b.String(), nil
}

func (r *renderer) renderDelete(s *ast.DeleteStmt) (string, error) {
	var b strings.Builder
	b.WriteString(r.renderWith(s.With))
	b.WriteString("DELETE FROM ")
	b.WriteString(r.renderTableRef(s.Table))
	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(r.renderExpr(s.Where))
	}
	b.WriteString(r.renderReturning(s.Returning))
	return b.String(), nil
}

func (r *renderer) renderCreateTable(s *ast.CreateTableStmt) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE ")
	if s.Temporary {
		b.WriteString("TEMP ")
	}
	b.WriteString("TABLE ")
	if s.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(r.renderQualifiedIdent(s.Table))
	if len(s.Columns) > 0 || len(s.Constraints) > 0 {
		b.WriteString(" (")
		wrote := false
		for _, col := range s.Columns {
			if wrote {
				b.WriteString(", ")
			}
			wrote = true
			b.WriteString(r.renderColumnDef(col))
		}
		for _, c := range s.Constraints {
			if wrote {
				b.WriteString(", ")
			}
			wrote = true
			b.WriteString(r.renderConstraint(c))
		}
		b.WriteByte(')')
	}
	if s.WithoutRowid {
		b.WriteString(" WITHOUT ROWID")
	}
	if s.Select != nil {
		sel, err := r.renderSelect(s.Select)
		if err != nil {
			return "", err
		}
		b.WriteString(" AS ")
		b.WriteString(sel)
	}
	return b.String(), nil
}

func (r *renderer) renderCreateVirtualTable(s *ast.CreateVirtualTableStmt) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE VIRTUAL TABLE ")
	if s.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(r.renderQualifiedIdent(s.Table))
	b.WriteString(" USING ")
	b.WriteString(r.renderIdent(s.Module))
	if len(s.Columns) > 0 || len(s.Args) > 0 {
		b.WriteByte('(')
		wrote := false
		for _, col := range s.Columns {
			if wrote {
				b.WriteString(", ")
			}
			wrote = true
			b.WriteString(r.renderColumnDef(col))
		}
		for _, a := range s.Args {
			if wrote {
				b.WriteString(", ")
			}
			wrote = true
			b.WriteString(a)
		}
		b.WriteByte(')')
	}
	return b.String(), nil
}

func (r *renderer) renderAlterTable(s *ast.AlterTableStmt) (string, error) {
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(r.renderQualifiedIdent(s.Table))
	b.WriteByte(' ')
	b.WriteString(r.renderAlterCmd(s.Cmd))
	return b.String(), nil
}

func (r *renderer) renderCreateIndex(s *ast.CreateIndexStmt) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE ")
	if s.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	if s.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(r.renderIdent(s.Name))
	b.WriteString(" ON ")
	b.WriteString(r.renderQualifiedIdent(s.Table))
	b.WriteString(" (")
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.renderIdent(c.Name))
		if c.Desc {
			b.WriteString(" DESC")
		}
	}
	b.WriteByte(')')
	if s.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(r.renderExpr(s.Where))
	}
	return b.String(), nil
}

func (r *renderer) renderCreateView(s *ast.CreateViewStmt) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE VIEW ")
	b.WriteString(r.renderQualifiedIdent(s.Name))
	if len(s.Columns) > 0 {
		b.WriteString(" (")
		for i, c := range s.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.renderIdent(c))
		}
		b.WriteByte(')')
	}
	sel, err := r.renderSelect(s.Select)
	if err != nil {
		return "", err
	}
	b.WriteString(" AS ")
	b.WriteString(sel)
	return b.String(), nil
}

func (r *renderer) renderCreateTrigger(s *ast.CreateTriggerStmt) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE TRIGGER ")
	b.WriteString(r.renderQualifiedIdent(s.Name))
	b.WriteByte(' ')
	b.WriteString(s.Timing)
	b.WriteByte(' ')
	b.WriteString(s.Event)
	if len(s.EventCols) > 0 {
		b.WriteString(" OF ")
		for i, c := range s.EventCols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.renderIdent(c))
		}
	}
	b.WriteString(" ON ")
	b.WriteString(r.renderQualifiedIdent(s.Table))
	if s.ForEachRow {
		b.WriteString(" FOR EACH ROW")
	}
	if s.When != nil {
		b.WriteString(" WHEN ")
		b.WriteString(r.renderExpr(s.When))
	}
	b.WriteString(" BEGIN ")
	b.WriteString(s.BodyRaw)
	b.WriteString(" END")
	return b.String(), nil
}

func (r *renderer) renderColumnDef(c *ast.ColumnDef) string {
	var b strings.Builder
	b.WriteString(r.renderIdent(c.Name))
	if c.Type != nil {
		b.WriteByte(' ')
		b.WriteString(r.renderDataType(c.Type))
	}
	if c.TypeAlias != nil {
		b.WriteString(" AS ")
		b.WriteString(r.renderIdent(c.TypeAlias))
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(r.renderExpr(c.Default))
	}
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if c.Autoincrement {
		b.WriteString(" AUTOINCREMENT")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.Check != nil {
		b.WriteString(" CHECK (")
		b.WriteString(r.renderExpr(c.Check))
		b.WriteByte(')')
	}
	if c.Collate != "" {
		b.WriteString(" COLLATE ")
		b.WriteString(c.Collate)
	}
	if c.References != nil {
		b.WriteString(" REFERENCES ")
		b.WriteString(r.renderQualifiedIdent(c.References.Table))
		if len(c.References.Columns) > 0 {
			b.WriteString(" (")
			for i, col := range c.References.Columns {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(r.renderIdent(col))
			}
			b.WriteByte(')')
		}
	}
	if c.Generated != nil {
		b.WriteString(" GENERATED ALWAYS AS (")
		b.WriteString(r.renderExpr(c.Generated.Expr))
		b.WriteByte(')')
		if c.Generated.Stored {
			b.WriteString(" STORED")
		} else {
			b.WriteString(" VIRTUAL")
		}
	}
	if c.Unindexed {
		b.WriteString(" UNINDEXED")
	}
	return b.String()
}

func (r *renderer) renderDataType(dt *ast.DataType) string {
	var b strings.Builder
	b.WriteString(string(dt.Name))
	if dt.Precision > 0 {
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(dt.Precision))
		if dt.Scale > 0 {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(dt.Scale))
		}
		b.WriteByte(')')
	}
	return b.String()
}

func (r *renderer) renderConstraint(c *ast.TableConstraint) string {
	var b strings.Builder
	if c.Name != nil {
		b.WriteString("CONSTRAINT ")
		b.WriteString(r.renderIdent(c.Name))
		b.WriteByte(' ')
	}
	switch c.Type {
	case ast.PrimaryKeyConstraint:
		b.WriteString("PRIMARY KEY")
	case ast.UniqueConstraint:
		b.WriteString("UNIQUE")
	case ast.ForeignKeyConstraint:
		b.WriteString("FOREIGN KEY")
	case ast.CheckConstraint:
		b.WriteString("CHECK")
	}
	if c.Type == ast.CheckConstraint {
		b.WriteString(" (")
		b.WriteString(r.renderExpr(c.Check))
		b.WriteByte(')')
		return b.String()
	}
	if len(c.Columns) > 0 {
		b.WriteString(" (")
		for i, col := range c.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.renderIdent(col.Name))
		}
		b.WriteByte(')')
	}
	if c.RefTable != nil {
		b.WriteString(" REFERENCES ")
		b.WriteString(r.renderQualifiedIdent(c.RefTable))
		if len(c.RefCols) > 0 {
			b.WriteString(" (")
			for i, col := range c.RefCols {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(r.renderIdent(col))
			}
			b.WriteByte(')')
		}
		b.WriteString(r.renderRefAction("ON DELETE", c.OnDelete))
		b.WriteString(r.renderRefAction("ON UPDATE", c.OnUpdate))
	}
	return b.String()
}

func (r *renderer) renderRefAction(clause string, a ast.RefAction) string {
	switch a {
	case ast.Restrict:
		return " " + clause + " RESTRICT"
	case ast.Cascade:
		return " " + clause + " CASCADE"
	case ast.SetNull:
		return " " + clause + " SET NULL"
	case ast.SetDefault:
		return " " + clause + " SET DEFAULT"
	default:
		return ""
	}
}

func (r *renderer) renderAlterCmd(cmd ast.AlterCmd) string {
	switch c := cmd.(type) {
	case *ast.AddColumnCmd:
		return "ADD COLUMN " + r.renderColumnDef(c.Col)
	case *ast.DropColumnCmd:
		return "DROP COLUMN " + r.renderIdent(c.Name)
	case *ast.RenameTableCmd:
		return "RENAME TO " + r.renderQualifiedIdent(c.NewName)
	case *ast.RenameColumnCmd:
		return "RENAME COLUMN " + r.renderIdent(c.OldName) + " TO " + r.renderIdent(c.NewName)
	default:
		return ""
	}
}

func (r *renderer) renderTableRef(tr ast.TableRef) string {
	switch t := tr.(type) {
	case *ast.SimpleTable:
		out := r.renderQualifiedIdent(t.Name)
		if t.Alias != nil {
			out += " " + r.renderIdent(t.Alias)
		}
		return out
	case *ast.SubqueryTable:
		sub, _ := r.renderSelect(t.Subq)
		out := "(" + sub + ")"
		if t.Alias != nil {
			out += " " + r.renderIdent(t.Alias)
		}
		return out
	case *ast.JoinTable:
		out := r.renderTableRef(t.Left) + " "
		switch t.Kind {
		case ast.InnerJoin:
			out += "JOIN "
		case ast.LeftJoin:
			out += "LEFT JOIN "
		case ast.RightJoin:
			out += "RIGHT JOIN "
		case ast.FullJoin:
			out += "FULL JOIN "
		case ast.CrossJoin:
			out += "CROSS JOIN "
		case ast.NaturalJoin:
			out += "NATURAL JOIN "
		}
		out += r.renderTableRef(t.Right)
		if t.On != nil {
			out += " ON " + r.renderExpr(t.On)
		}
		if len(t.Using) > 0 {
			out += " USING ("
			for i, id := range t.Using {
				if i > 0 {
					out += ", "
				}
				out += r.renderIdent(id)
			}
			out += ")"
		}
		return out
	default:
		return ""
	}
}

func (r *renderer) renderExpr(expr Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return r.renderIdent(e)
	case *ast.QualifiedIdent:
		return r.renderQualifiedIdent(e)
	case *ast.StarExpr:
		return "*"
	case *ast.Literal:
		return string(e.Raw)
	case *ast.NullLit:
		return "NULL"
	case *ast.Param:
		return r.renderParam(e)
	case *ast.BinaryExpr:
		return "(" + r.renderExpr(e.Left) + " " + r.opString(e.Op) + " " + r.renderExpr(e.Right) + ")"
	case *ast.UnaryExpr:
		return "(" + r.opString(e.Op) + " " + r.renderExpr(e.Expr) + ")"
	case *ast.PostfixExpr:
		if e.Op == lexer.COLLATE {
			return r.renderExpr(e.Expr) + " COLLATE " + e.Operand
		}
		return r.renderExpr(e.Expr)
	case *ast.FuncCall:
		var b strings.Builder
		b.WriteString(r.renderFunctionName(e.Name))
		b.WriteByte('(')
		if e.Star {
			b.WriteByte('*')
		} else {
			if e.Distinct {
				b.WriteString("DISTINCT ")
			}
			for i, a := range e.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(r.renderExpr(a))
			}
		}
		b.WriteByte(')')
		return b.String()
	case *ast.CaseExpr:
		var b strings.Builder
		b.WriteString("CASE")
		if e.Operand != nil {
			b.WriteByte(' ')
			b.WriteString(r.renderExpr(e.Operand))
		}
		for _, w := range e.Whens {
			b.WriteString(" WHEN ")
			b.WriteString(r.renderExpr(w.Cond))
			b.WriteString(" THEN ")
			b.WriteString(r.renderExpr(w.Result))
		}
		if e.Else != nil {
			b.WriteString(" ELSE ")
			b.WriteString(r.renderExpr(e.Else))
		}
		b.WriteString(" END")
		return b.String()
	case *ast.BetweenExpr:
		out := r.renderExpr(e.Expr)
		if e.Not {
			out += " NOT"
		}
		out += " BETWEEN " + r.renderExpr(e.Lo) + " AND " + r.renderExpr(e.Hi)
		return out
	case *ast.InExpr:
		out := r.renderExpr(e.Expr)
		if e.Not {
			out += " NOT"
		}
		out += " IN ("
		if e.Subq != nil {
			sub, _ := r.renderSelect(e.Subq)
			out += sub
		} else {
			for i, it := range e.List {
				if i > 0 {
					out += ", "
				}
				out += r.renderExpr(it)
			}
		}
		out += ")"
		return out
	case *ast.LikeExpr:
		out := r.renderExpr(e.Expr)
		if e.Not {
			out += " NOT"
		}
		out += " " + r.opString(e.Op) + " " + r.renderExpr(e.Pattern)
		if e.Escape != nil {
			out += " ESCAPE " + r.renderExpr(e.Escape)
		}
		return out
	case *ast.IsNullExpr:
		out := r.renderExpr(e.Expr) + " IS "
		if e.Not {
			out += "NOT "
		}
		return out + "NULL"
	case *ast.IsExpr:
		out := r.renderExpr(e.Left) + " IS "
		if e.Not {
			out += "NOT "
		}
		if e.Distinct {
			out += "DISTINCT FROM "
		}
		return out + r.renderExpr(e.Right)
	case *ast.ExistsExpr:
		sub, _ := r.renderSelect(e.Subq)
		pfx := ""
		if e.Not {
			pfx = "NOT "
		}
		return pfx + "EXISTS (" + sub + ")"
	case *ast.SubqueryExpr:
		sub, _ := r.renderSelect(e.Subq)
		return "(" + sub + ")"
	case *ast.CastExpr:
		return "CAST(" + r.renderExpr(e.Expr) + " AS " + r.renderDataType(e.Type) + ")"
	case *ast.SelectStmt:
		s, _ := r.renderSelect(e)
		return "(" + s + ")"
	default:
		return ""
	}
}

func (r *renderer) renderFunctionName(name *ast.QualifiedIdent) string {
	if name == nil || len(name.Parts) == 0 {
		return ""
	}
	if len(name.Parts) == 1 {
		return strings.ToUpper(name.Parts[0].Unquoted)
	}
	return r.renderQualifiedIdent(name)
}

func (r *renderer) renderParam(p *ast.Param) string {
	switch p.Kind {
	case ast.ParamNamedColon:
		return ":" + p.Name
	case ast.ParamNamedAt:
		return "@" + p.Name
	case ast.ParamNamedDollar:
		return "$" + p.Name
	default:
		return "?"
	}
}

func (r *renderer) opString(op lexer.TokenType) string {
	switch op {
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.STAR:
		return "*"
	case lexer.SLASH:
		return "/"
	case lexer.PERCENT:
		return "%"
	case lexer.AND:
		return "AND"
	case lexer.OR:
		return "OR"
	case lexer.NOT:
		return "NOT"
	case lexer.EQ:
		return "="
	case lexer.NEQ:
		return "!="
	case lexer.LT:
		return "<"
	case lexer.GT:
		return ">"
	case lexer.LTE:
		return "<="
	case lexer.GTE:
		return ">="
	case lexer.LSHIFT:
		return "<<"
	case lexer.RSHIFT:
		return ">>"
	case lexer.DBAR:
		return "||"
	case lexer.PIPE:
		return "|"
	case lexer.AMPERSAND:
		return "&"
	case lexer.TILDE:
		return "~"
	case lexer.ARROW:
		return "->"
	case lexer.DARROW2:
		return "->>"
	case lexer.LIKE:
		return "LIKE"
	case lexer.GLOB:
		return "GLOB"
	case lexer.MATCH:
		return "MATCH"
	case lexer.REGEXP:
		return "REGEXP"
	default:
		return op.String()
	}
}

func (r *renderer) renderQualifiedIdent(q *ast.QualifiedIdent) string {
	if q == nil {
		return ""
	}
	var b strings.Builder
	for i, p := range q.Parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(r.renderIdent(p))
	}
	return b.String()
}

func (r *renderer) renderIdent(id *ast.Ident) string {
	if id == nil {
		return ""
	}
	name := id.Unquoted
	if name == "*" {
		return "*"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (r *renderer) renderTx(s *ast.TransactionStmt) string {
	switch s.Action {
	case "BEGIN":
		return "BEGIN"
	case "COMMIT":
		return "COMMIT"
	case "ROLLBACK":
		if s.Savepoint == nil {
			return "ROLLBACK"
		}
		return "ROLLBACK TO SAVEPOINT " + r.renderIdent(s.Savepoint)
	case "SAVEPOINT":
		return "SAVEPOINT " + r.renderIdent(s.Savepoint)
	case "RELEASE":
		return "RELEASE SAVEPOINT " + r.renderIdent(s.Savepoint)
	default:
		return s.Action
	}
}
