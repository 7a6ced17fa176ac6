package ir_test

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/infer"
	"github.com/basilisk-labs/sqlitec/ir"
	"github.com/basilisk-labs/sqlitec/parser"
	"github.com/basilisk-labs/sqlitec/pragma"
	"github.com/basilisk-labs/sqlitec/schema"
)

func TestBuildSimpleSelect(t *testing.T) {
	sch := schema.New()
	src := []byte("CREATE TABLE users(id INTEGER PRIMARY KEY, name TEXT)")
	mig, err := parser.ParseStatement(string(src))
	if err != nil {
		t.Fatalf("parse migration: %v", err)
	}
	pr := pragma.New()
	if diags := infer.ApplyMigrationStatement(sch, pr, mig); len(diags) != 0 {
		t.Fatalf("unexpected migration diagnostics: %#v", diags)
	}

	qsrc := []byte("DEFINE QUERY list AS SELECT * FROM users;")
	stmt, err := parser.ParseStatement(string(qsrc))
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	s, diags, err := ir.Build(qsrc, sch, pr, stmt)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %#v", diags)
	}
	if s.Definition == nil || s.Definition.Name != "list" {
		t.Fatalf("expected definition name %q, got %#v", "list", s.Definition)
	}
	if s.SanitizedSQL != "SELECT * FROM users;" {
		t.Fatalf("unexpected sanitized sql: %q", s.SanitizedSQL)
	}
	if s.Cardinality != infer.Many {
		t.Fatalf("expected many cardinality, got %v", s.Cardinality)
	}
	if !s.ReadOnly {
		t.Fatalf("expected read-only statement")
	}
	if len(s.UsedTables) != 1 || s.UsedTables[0].Name != "users" {
		t.Fatalf("unexpected used tables: %#v", s.UsedTables)
	}
}
