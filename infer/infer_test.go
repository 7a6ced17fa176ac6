package infer

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/diag"
	"github.com/basilisk-labs/sqlitec/parser"
	"github.com/basilisk-labs/sqlitec/pragma"
	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/types"
)

func usersSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch := schema.New()
	err := sch.CreateTable(&schema.Table{
		Name: schema.QualifiedName{Name: "users"},
		Columns: []schema.Column{
			{Name: "id", Type: types.Nominal("INTEGER")},
			{Name: "name", Type: types.Optional(types.Nominal("TEXT"))},
		},
		PrimaryKey: []string{"id"},
	}, false)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return sch
}

func inferSQL(t *testing.T, sch *schema.Schema, sql string) (*Signature, []diag.Diagnostic) {
	t.Helper()
	stmt, err := parser.ParseStatement(sql)
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	inf := New(sch, pragma.New())
	return inf.InferStatement(stmt)
}

func noErrors(t *testing.T, diags []diag.Diagnostic) {
	t.Helper()
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected error diagnostics: %#v", diags)
	}
}

// spec §8 boundary behavior: "SELECT 1" types as row(named{column1: INTEGER}),
// cardinality single.
func TestSelectLiteralCardinalitySingle(t *testing.T) {
	sig, diags := inferSQL(t, schema.New(), "SELECT 1;")
	noErrors(t, diags)
	if sig.Cardinality != Single {
		t.Fatalf("expected single cardinality, got %s", sig.Cardinality)
	}
	if sig.Output.Kind != types.KindRow || sig.Output.Row.Kind != types.ShapeNamed {
		t.Fatalf("expected row(named), got %#v", sig.Output)
	}
	col := sig.Output.Row.Named[0]
	if col.Name != "column1" {
		t.Fatalf("expected synthetic name column1, got %q", col.Name)
	}
	if col.Type.Kind != types.KindNominal || col.Type.Name != "INTEGER" {
		t.Fatalf("expected INTEGER, got %#v", col.Type)
	}
}

// spec §8 boundary behavior: "SELECT * FROM foo" expands columns in
// table-definition order.
func TestSelectStarExpandsInDeclarationOrder(t *testing.T) {
	sig, diags := inferSQL(t, usersSchema(t), "SELECT * FROM users;")
	noErrors(t, diags)
	cols := sig.Output.Row.Named
	if len(cols) != 2 || cols[0].Name != "id" || cols[1].Name != "name" {
		t.Fatalf("expected [id, name] in order, got %#v", cols)
	}
	if sig.Cardinality != Many {
		t.Fatalf("expected many cardinality, got %s", sig.Cardinality)
	}
}

// spec §4.4: "multiple star-targets concatenate their named columns into a
// single named row" — a bare "*" over two FROM tables that both define an
// "id" column must emit both columns, not deduplicate via ambiguity, since
// SQLite itself returns one id per table referenced.
func TestSelectStarConcatenatesAcrossFromTables(t *testing.T) {
	sch := schema.New()
	mustCreate := func(name string) {
		if err := sch.CreateTable(&schema.Table{
			Name:    schema.QualifiedName{Name: name},
			Columns: []schema.Column{{Name: "id", Type: types.Nominal("INTEGER")}},
		}, false); err != nil {
			t.Fatalf("create table %s: %v", name, err)
		}
	}
	mustCreate("a")
	mustCreate("b")

	sig, diags := inferSQL(t, sch, "SELECT * FROM a, b;")
	noErrors(t, diags)
	cols := sig.Output.Row.Named
	if len(cols) != 2 || cols[0].Name != "id" || cols[1].Name != "id" {
		t.Fatalf("expected two concatenated id columns, got %#v", cols)
	}
}

// spec §8 scenario 2: two references to the same named parameter share one
// index and unify to one type.
func TestNamedParameterUnification(t *testing.T) {
	sig, diags := inferSQL(t, usersSchema(t), "SELECT id FROM users WHERE name = :q OR name = :q;")
	noErrors(t, diags)
	if len(sig.Parameters) != 1 {
		t.Fatalf("expected exactly 1 parameter, got %d: %#v", len(sig.Parameters), sig.Parameters)
	}
	p := sig.Parameters[0]
	if p.Index != 1 || p.Name != "q" {
		t.Fatalf("unexpected parameter: %#v", p)
	}
	if p.Type.Kind != types.KindOptional {
		t.Fatalf("expected optional(TEXT) (name is nullable), got %#v", p.Type)
	}
}

// spec §8 scenario 3: WHERE id IN :ids infers a row(unknown) parameter type.
func TestListParameterInfersUnknownRow(t *testing.T) {
	sig, diags := inferSQL(t, usersSchema(t), "SELECT * FROM users WHERE id IN :ids;")
	noErrors(t, diags)
	if len(sig.Parameters) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(sig.Parameters))
	}
	p := sig.Parameters[0]
	if p.Name != "ids" {
		t.Fatalf("expected name ids, got %q", p.Name)
	}
	if p.Type.Kind != types.KindRow || p.Type.Row.Kind != types.ShapeUnknown {
		t.Fatalf("expected row(unknown(...)), got %#v", p.Type)
	}
	if p.Type.Row.Elem.Kind != types.KindNominal || p.Type.Row.Elem.Name != "INTEGER" {
		t.Fatalf("expected unknown element INTEGER, got %#v", p.Type.Row.Elem)
	}
}

// spec §8 scenario 5: an unqualified column present on two joined tables is
// ambiguous, but the rest of the statement still type-checks (the offending
// column becomes the error type, not a short-circuit).
func TestAmbiguousColumnDiagnoses(t *testing.T) {
	sch := schema.New()
	mustCreate := func(name string) {
		if err := sch.CreateTable(&schema.Table{
			Name:    schema.QualifiedName{Name: name},
			Columns: []schema.Column{{Name: "id", Type: types.Nominal("INTEGER")}},
		}, false); err != nil {
			t.Fatalf("create table %s: %v", name, err)
		}
	}
	mustCreate("a")
	mustCreate("b")

	sig, diags := inferSQL(t, sch, "SELECT id FROM a, b;")
	if !diag.HasErrors(diags) {
		t.Fatalf("expected an ambiguous-column diagnostic")
	}
	found := false
	for _, d := range diags {
		if d.Level == diag.Error && containsFold(d.Message, "ambiguous") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an 'ambiguous' diagnostic, got %#v", diags)
	}
	col := sig.Output.Row.Named[0]
	if col.Type.Kind != types.KindError {
		t.Fatalf("expected error sentinel for ambiguous column, got %#v", col.Type)
	}
}

// spec §4.4: LIMIT 1 forces single cardinality regardless of predicate shape.
func TestLimitOneForcesSingleCardinality(t *testing.T) {
	sig, diags := inferSQL(t, usersSchema(t), "SELECT * FROM users WHERE name = :n LIMIT 1;")
	noErrors(t, diags)
	if sig.Cardinality != Single {
		t.Fatalf("expected single cardinality for LIMIT 1, got %s", sig.Cardinality)
	}
}

// spec §4.4: primary-key equality against the sole FROM table proves single
// cardinality even without an explicit LIMIT.
func TestPrimaryKeyEqualityProvesSingleCardinality(t *testing.T) {
	sig, diags := inferSQL(t, usersSchema(t), "SELECT * FROM users WHERE id = :id;")
	noErrors(t, diags)
	if sig.Cardinality != Single {
		t.Fatalf("expected single cardinality for PK equality, got %s", sig.Cardinality)
	}
}

// spec §4.4: joins are not analyzed for single cardinality; stays many.
func TestJoinStaysMany(t *testing.T) {
	sch := usersSchema(t)
	if err := sch.CreateTable(&schema.Table{
		Name:    schema.QualifiedName{Name: "posts"},
		Columns: []schema.Column{{Name: "id", Type: types.Nominal("INTEGER")}, {Name: "user_id", Type: types.Nominal("INTEGER")}},
	}, false); err != nil {
		t.Fatalf("create table posts: %v", err)
	}
	sig, diags := inferSQL(t, sch, "SELECT * FROM users JOIN posts ON posts.user_id = users.id WHERE users.id = :id;")
	noErrors(t, diags)
	if sig.Cardinality != Many {
		t.Fatalf("expected many cardinality across a join, got %s", sig.Cardinality)
	}
}

// spec §3/§4.4: INSERT/UPDATE/DELETE without RETURNING yield row(empty).
func TestMutationWithoutReturningYieldsEmptyRow(t *testing.T) {
	sig, diags := inferSQL(t, usersSchema(t), "UPDATE users SET name = :name WHERE id = :id;")
	noErrors(t, diags)
	if sig.Output.Kind != types.KindRow || sig.Output.Row.Kind != types.ShapeEmpty {
		t.Fatalf("expected row(empty), got %#v", sig.Output)
	}
	if sig.ReadOnly {
		t.Fatalf("expected UPDATE to be marked not read-only")
	}
	if len(sig.Parameters) != 2 {
		t.Fatalf("expected 2 parameters (name, id), got %d", len(sig.Parameters))
	}
}

// spec §3/§4.4: RETURNING gives INSERT/UPDATE/DELETE an explicit row shape.
func TestInsertReturningYieldsNamedRow(t *testing.T) {
	sig, diags := inferSQL(t, usersSchema(t), "INSERT INTO users(id, name) VALUES (:id, :name) RETURNING id;")
	noErrors(t, diags)
	if sig.Output.Kind != types.KindRow || sig.Output.Row.Kind != types.ShapeNamed {
		t.Fatalf("expected row(named), got %#v", sig.Output)
	}
	if len(sig.Output.Row.Named) != 1 || sig.Output.Row.Named[0].Name != "id" {
		t.Fatalf("expected single returned column id, got %#v", sig.Output.Row.Named)
	}
}

// spec §8 universal property: parameter indices are dense from 1 to N with
// no gaps, including for unnamed positional parameters.
func TestPositionalParametersAreDense(t *testing.T) {
	sig, diags := inferSQL(t, usersSchema(t), "SELECT * FROM users WHERE id = ? AND name = ?;")
	noErrors(t, diags)
	if len(sig.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(sig.Parameters))
	}
	for i, p := range sig.Parameters {
		if p.Index != i+1 {
			t.Fatalf("expected dense index %d, got %d", i+1, p.Index)
		}
	}
}

func containsFold(s, substr string) bool {
	sl, subl := []rune(s), []rune(substr)
	for i := 0; i+len(subl) <= len(sl); i++ {
		match := true
		for j, r := range subl {
			a, b := sl[i+j], r
			if a >= 'A' && a <= 'Z' {
				a += 'a' - 'A'
			}
			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}
			if a != b {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
