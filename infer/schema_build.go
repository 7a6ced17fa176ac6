package infer

import (
	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/diag"
	"github.com/basilisk-labs/sqlitec/env"
	"github.com/basilisk-labs/sqlitec/pragma"
	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/types"
)

// ApplyMigrationStatement mutates sch according to a DDL statement (or
// interprets a PRAGMA directive via pr), the only way the schema changes:
// query compilation never calls this. It returns any diagnostics raised;
// an unrecognized statement kind is silently ignored since the validator
// is responsible for rejecting illegal statement kinds before this runs.
func ApplyMigrationStatement(sch *schema.Schema, pr *pragma.Analyzer, stmt ast.Statement) []diag.Diagnostic {
	var diags []diag.Diagnostic
	switch s := stmt.(type) {
	case *ast.CreateTableStmt:
		diags = append(diags, applyCreateTable(sch, pr, s)...)
	case *ast.CreateVirtualTableStmt:
		diags = append(diags, applyCreateVirtualTable(sch, pr, s)...)
	case *ast.AlterTableStmt:
		diags = append(diags, applyAlterTable(sch, pr, s)...)
	case *ast.DropTableStmt:
		if err := sch.DropTable(qualify(s.Table), s.IfExists); err != nil {
			diags = append(diags, diag.Errorf(s.Range(), "%s", err.Error()))
		}
	case *ast.CreateIndexStmt:
		cols := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			cols[i] = c.Name.Unquoted
		}
		sch.AddIndex(&schema.Index{Name: s.Name.Unquoted, Table: qualify(s.Table), Columns: cols, Unique: s.Unique})
	case *ast.DropIndexStmt:
		sch.DropIndex(s.Name.Unquoted)
	case *ast.CreateViewStmt:
		diags = append(diags, applyCreateView(sch, pr, s)...)
	case *ast.DropViewStmt:
		if err := sch.DropView(qualify(s.Name), s.IfExists); err != nil {
			diags = append(diags, diag.Errorf(s.Range(), "%s", err.Error()))
		}
	case *ast.CreateTriggerStmt:
		sch.AddTrigger(&schema.Trigger{Name: s.Name.Name(), Table: qualify(s.Table)})
	case *ast.DropTriggerStmt:
		sch.DropTrigger(s.Name.Name())
	case *ast.PragmaStmt:
		diags = append(diags, pr.Apply(s)...)
	}
	return diags
}

func qualify(qi *ast.QualifiedIdent) schema.QualifiedName {
	return schema.QualifiedName{Schema: qi.Qualifier(), Name: qi.Name()}
}

func applyCreateTable(sch *schema.Schema, pr *pragma.Analyzer, s *ast.CreateTableStmt) []diag.Diagnostic {
	var diags []diag.Diagnostic
	t := &schema.Table{Name: qualify(s.Table), Kind: schema.KindNormal}

	for _, col := range s.Columns {
		c, d := columnFromDef(pr, col)
		diags = append(diags, d...)
		t.Columns = append(t.Columns, c)
		if col.PrimaryKey {
			t.PrimaryKey = append(t.PrimaryKey, col.Name.Unquoted)
		}
	}
	for _, c := range s.Constraints {
		if c.Type == ast.PrimaryKeyConstraint {
			for _, ic := range c.Columns {
				t.PrimaryKey = append(t.PrimaryKey, ic.Name.Unquoted)
			}
		}
	}

	if s.Select != nil {
		// CREATE TABLE ... AS SELECT: column set comes from the inferred
		// SELECT output, typed against the schema as it stood before this
		// statement (forward references are not supported).
		inf := New(sch, pr)
		row := inf.inferSelect(env.New(), s.Select)
		inf.finalizeParams()
		for _, c := range rowColumns(row) {
			t.Columns = append(t.Columns, schema.Column{Name: c.Name, Type: c.Type})
		}
		diags = append(diags, inf.diags...)
	}

	if err := sch.CreateTable(t, s.IfNotExists); err != nil {
		diags = append(diags, diag.Errorf(s.Range(), "%s", err.Error()))
	}
	return diags
}

func applyCreateVirtualTable(sch *schema.Schema, pr *pragma.Analyzer, s *ast.CreateVirtualTableStmt) []diag.Diagnostic {
	var diags []diag.Diagnostic
	kind := schema.KindNormal
	if isFTS5Module(s.Module.Unquoted) {
		kind = schema.KindFTS5
	}
	t := &schema.Table{Name: qualify(s.Table), Kind: kind}
	for _, col := range s.Columns {
		c, d := columnFromDef(pr, col)
		diags = append(diags, d...)
		t.Columns = append(t.Columns, c)
	}
	if kind == schema.KindFTS5 {
		t.Columns = append(t.Columns, schema.Column{Name: "rank", Type: types.Optional(types.Nominal("REAL"))})
	}
	if err := sch.CreateTable(t, s.IfNotExists); err != nil {
		diags = append(diags, diag.Errorf(s.Range(), "%s", err.Error()))
	}
	return diags
}

func isFTS5Module(module string) bool {
	return module == "fts5" || module == "fts4" || module == "fts3"
}

func applyAlterTable(sch *schema.Schema, pr *pragma.Analyzer, s *ast.AlterTableStmt) []diag.Diagnostic {
	name := qualify(s.Table)
	switch cmd := s.Cmd.(type) {
	case *ast.AddColumnCmd:
		c, diags := columnFromDef(pr, cmd.Col)
		if err := sch.AddColumn(name, c); err != nil {
			diags = append(diags, diag.Errorf(s.Range(), "%s", err.Error()))
		}
		return diags
	case *ast.DropColumnCmd:
		if err := sch.DropColumn(name, cmd.Name.Unquoted); err != nil {
			return []diag.Diagnostic{diag.Errorf(s.Range(), "%s", err.Error())}
		}
	case *ast.RenameTableCmd:
		if err := sch.RenameTable(name, qualify(cmd.NewName)); err != nil {
			return []diag.Diagnostic{diag.Errorf(s.Range(), "%s", err.Error())}
		}
	case *ast.RenameColumnCmd:
		if err := sch.RenameColumn(name, cmd.OldName.Unquoted, cmd.NewName.Unquoted); err != nil {
			return []diag.Diagnostic{diag.Errorf(s.Range(), "%s", err.Error())}
		}
	}
	return nil
}

func applyCreateView(sch *schema.Schema, pr *pragma.Analyzer, s *ast.CreateViewStmt) []diag.Diagnostic {
	inf := New(sch, pr)
	row := inf.inferSelect(env.New(), s.Select)
	inf.finalizeParams()

	t := &schema.Table{Name: qualify(s.Name)}
	for i, c := range rowColumns(row) {
		name := c.Name
		if i < len(s.Columns) {
			name = s.Columns[i].Unquoted
		}
		t.Columns = append(t.Columns, schema.Column{Name: name, Type: c.Type})
	}
	diags := append([]diag.Diagnostic{}, inf.diags...)
	if err := sch.AddView(&schema.View{Name: qualify(s.Name)}, t); err != nil {
		diags = append(diags, diag.Errorf(s.Range(), "%s", err.Error()))
	}
	return diags
}

// columnFromDef resolves a column definition's declared type: a pragma
// type-alias, a "TEXT AS UUID" suffix, or a bare nominal type, wrapped in
// Optional unless the column carries PRIMARY KEY or NOT NULL.
func columnFromDef(pr *pragma.Analyzer, col *ast.ColumnDef) (schema.Column, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	name := ""
	if col.Type != nil {
		name = string(col.Type.Name)
	}
	base := types.Nominal(name)
	if storage, ok := pr.TypeAliasStorage(name); ok {
		base = types.Alias(types.Nominal(storage), name)
	}
	if col.TypeAlias != nil {
		base = types.Alias(base, col.TypeAlias.Unquoted)
	}
	nonNull := col.PrimaryKey || col.NotNull
	t := base
	if !nonNull {
		t = types.Optional(base)
	}
	return schema.Column{Name: col.Name.Unquoted, Type: t}, diags
}
