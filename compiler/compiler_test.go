package compiler_test

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/compiler"
	"github.com/basilisk-labs/sqlitec/diag"
)

func TestCompileMigrationThenQuery(t *testing.T) {
	sess := compiler.NewSession()

	migResults, err := compiler.CompileMigrations(sess, []compiler.File{
		{Name: "Migrations/1.sql", Text: "CREATE TABLE users(id INTEGER PRIMARY KEY, name TEXT);"},
	})
	if err != nil {
		t.Fatalf("compile migrations: %v", err)
	}
	for _, r := range migResults {
		if diag.HasErrors(r.Diagnostics) {
			t.Fatalf("unexpected migration diagnostics in %s: %#v", r.File, r.Diagnostics)
		}
	}

	queryResults, err := compiler.CompileQueries(sess, []compiler.File{
		{Name: "Queries/all.sql", Text: "DEFINE QUERY list AS SELECT * FROM users;"},
	}, 0)
	if err != nil {
		t.Fatalf("compile queries: %v", err)
	}
	if len(queryResults) != 1 {
		t.Fatalf("expected 1 query result, got %d", len(queryResults))
	}
	r := queryResults[0]
	if diag.HasErrors(r.Diagnostics) {
		t.Fatalf("unexpected query diagnostics: %#v", r.Diagnostics)
	}
	if len(r.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(r.Statements))
	}
	s := r.Statements[0]
	if s.Definition == nil || s.Definition.Name != "list" {
		t.Fatalf("unexpected definition: %#v", s.Definition)
	}
	if s.SanitizedSQL != "SELECT * FROM users;" {
		t.Fatalf("unexpected sanitized sql: %q", s.SanitizedSQL)
	}
}

func TestCompileQueriesRejectsDDL(t *testing.T) {
	sess := compiler.NewSession()
	results, err := compiler.CompileQueries(sess, []compiler.File{
		{Name: "Queries/bad.sql", Text: "CREATE TABLE t(x INT);"},
	}, 0)
	if err != nil {
		t.Fatalf("compile queries: %v", err)
	}
	r := results[0]
	if !diag.HasErrors(r.Diagnostics) {
		t.Fatalf("expected a diagnostic for an illegal statement")
	}
	if len(r.Statements) != 0 {
		t.Fatalf("expected no IR for a rejected statement")
	}
}

func TestCompileMigrationsRequiresNumericFilenames(t *testing.T) {
	sess := compiler.NewSession()
	_, err := compiler.CompileMigrations(sess, []compiler.File{
		{Name: "Migrations/latest.sql", Text: "CREATE TABLE t(x INT);"},
	})
	if err == nil {
		t.Fatalf("expected an error for a non-numeric migration filename")
	}
}
