package pragma_test

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/diag"
	"github.com/basilisk-labs/sqlitec/parser"
	"github.com/basilisk-labs/sqlitec/pragma"
)

func parsePragma(t *testing.T, sql string) *ast.PragmaStmt {
	t.Helper()
	stmt, err := parser.ParseStatement(sql)
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	p, ok := stmt.(*ast.PragmaStmt)
	if !ok {
		t.Fatalf("expected *ast.PragmaStmt, got %T", stmt)
	}
	return p
}

func TestTypeAliasRegistersStorageType(t *testing.T) {
	a := pragma.New()
	diags := a.Apply(parsePragma(t, "PRAGMA type_alias = 'UUID AS TEXT';"))
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected diagnostics: %#v", diags)
	}
	storage, ok := a.TypeAliasStorage("UUID")
	if !ok || storage != "TEXT" {
		t.Fatalf("expected UUID aliased to TEXT, got (%q, %v)", storage, ok)
	}
	// Lookup is case-insensitive per spec §4.5.
	if storage, ok := a.TypeAliasStorage("uuid"); !ok || storage != "TEXT" {
		t.Fatalf("expected case-insensitive lookup to succeed, got (%q, %v)", storage, ok)
	}
}

func TestHintBoolRegistersName(t *testing.T) {
	a := pragma.New()
	diags := a.Apply(parsePragma(t, "PRAGMA hint_bool = 'is_active';"))
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected diagnostics: %#v", diags)
	}
	if !a.IsBoolHint("is_active") {
		t.Fatalf("expected is_active to be registered as a bool hint")
	}
	if !a.IsBoolHint("IS_ACTIVE") {
		t.Fatalf("expected bool hint lookup to be case-insensitive")
	}
	if a.IsBoolHint("other") {
		t.Fatalf("expected unregistered name to not be a bool hint")
	}
}

// spec §4.5: unknown pragmas pass through unchanged and never affect typing.
func TestUnknownPragmaIsNotAnError(t *testing.T) {
	a := pragma.New()
	diags := a.Apply(parsePragma(t, "PRAGMA journal_mode = 'WAL';"))
	if diag.HasErrors(diags) {
		t.Fatalf("expected an unrecognized pragma to be silently ignored, got %#v", diags)
	}
}

func TestMalformedTypeAliasIsAnError(t *testing.T) {
	a := pragma.New()
	diags := a.Apply(parsePragma(t, "PRAGMA type_alias = 'not-the-right-shape';"))
	if !diag.HasErrors(diags) {
		t.Fatalf("expected a malformed type_alias directive to raise a diagnostic")
	}
}
