package validate_test

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/parser"
	"github.com/basilisk-labs/sqlitec/validate"
)

func TestCreateTableLegalOnlyInMigrations(t *testing.T) {
	stmt, err := parser.ParseStatement("CREATE TABLE t(x INT);")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !validate.Legal(stmt, validate.Migration) {
		t.Fatalf("expected CREATE TABLE legal in a migration")
	}
	if validate.Legal(stmt, validate.Query) {
		t.Fatalf("expected CREATE TABLE illegal in a query, per spec §8 scenario 4")
	}
	if got, want := validate.Name(stmt), "CREATE TABLE"; got != want {
		t.Fatalf("Name() = %q, want %q", got, want)
	}
}

func TestSelectLegalOnlyInQueries(t *testing.T) {
	stmt, err := parser.ParseStatement("SELECT 1;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if validate.Legal(stmt, validate.Migration) {
		t.Fatalf("expected SELECT illegal in a migration")
	}
	if !validate.Legal(stmt, validate.Query) {
		t.Fatalf("expected SELECT legal in a query")
	}
}

func TestDMLLegalInBothContexts(t *testing.T) {
	for _, sql := range []string{
		"INSERT INTO t(x) VALUES (1);",
		"UPDATE t SET x = 1 WHERE x = 2;",
		"DELETE FROM t WHERE x = 1;",
		"PRAGMA foo;",
	} {
		stmt, err := parser.ParseStatement(sql)
		if err != nil {
			t.Fatalf("parse %q: %v", sql, err)
		}
		if !validate.Legal(stmt, validate.Migration) {
			t.Fatalf("%q: expected legal in migration", sql)
		}
		if !validate.Legal(stmt, validate.Query) {
			t.Fatalf("%q: expected legal in query", sql)
		}
	}
}

func TestTransactionControlLegalInNeitherContext(t *testing.T) {
	stmt, err := parser.ParseStatement("BEGIN;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if validate.Legal(stmt, validate.Migration) || validate.Legal(stmt, validate.Query) {
		t.Fatalf("expected transaction control illegal in both contexts, per spec §4.6")
	}
}

func TestDefineQueryLegalOnlyInQueries(t *testing.T) {
	stmt, err := parser.ParseStatement("DEFINE QUERY get AS SELECT 1;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if validate.Legal(stmt, validate.Migration) {
		t.Fatalf("expected DEFINE QUERY illegal in a migration")
	}
	if !validate.Legal(stmt, validate.Query) {
		t.Fatalf("expected DEFINE QUERY legal in a query")
	}
}
