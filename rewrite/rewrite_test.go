package rewrite_test

import (
	"testing"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/diag"
	"github.com/basilisk-labs/sqlitec/infer"
	"github.com/basilisk-labs/sqlitec/parser"
	"github.com/basilisk-labs/sqlitec/pragma"
	"github.com/basilisk-labs/sqlitec/rewrite"
	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/types"
)

func mustInt() types.Type {
	return types.Nominal("INTEGER")
}

func compile(t *testing.T, sch *schema.Schema, sql string) (ast.Statement, *infer.Signature) {
	t.Helper()
	stmt, err := parser.ParseStatement(sql)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	inf := infer.New(sch, pragma.New())
	sig, diags := inf.InferStatement(stmt)
	for _, d := range diags {
		if d.Level == diag.Error {
			t.Fatalf("unexpected error diagnostic: %s", d.Message)
		}
	}
	return stmt, sig
}

func TestRewriteDefineQueryStripsPrefix(t *testing.T) {
	sch := schema.New()
	sch.CreateTable(&schema.Table{
		Name:    schema.QualifiedName{Name: "users"},
		Columns: []schema.Column{{Name: "id", Type: mustInt()}},
	}, false)

	stmt, sig := compile(t, sch, "DEFINE QUERY list AS SELECT * FROM users;")
	res, err := rewrite.Rewrite([]byte("DEFINE QUERY list AS SELECT * FROM users;"), stmt, sig)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	if res.Definition == nil || res.Definition.Name != "list" {
		t.Fatalf("expected definition name %q, got %#v", "list", res.Definition)
	}
	if res.Sanitized != "SELECT * FROM users;" {
		t.Fatalf("unexpected sanitized SQL: %q", res.Sanitized)
	}
}

func TestRewriteRowParamSegmentation(t *testing.T) {
	sch := schema.New()
	sch.CreateTable(&schema.Table{
		Name:    schema.QualifiedName{Name: "users"},
		Columns: []schema.Column{{Name: "id", Type: mustInt()}},
	}, false)

	src := "SELECT * FROM users WHERE id IN :ids"
	stmt, sig := compile(t, sch, src)
	res, err := rewrite.Rewrite([]byte(src), stmt, sig)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %#v", len(res.Segments), res.Segments)
	}
	if res.Segments[0].Kind != rewrite.TextSegment || res.Segments[0].Text != "SELECT * FROM users WHERE id IN " {
		t.Fatalf("unexpected first segment: %#v", res.Segments[0])
	}
	if res.Segments[1].Kind != rewrite.RowParamSegment || res.Segments[1].Param.Name != "ids" {
		t.Fatalf("unexpected second segment: %#v", res.Segments[1])
	}
	if res.Segments[2].Kind != rewrite.TextSegment || res.Segments[2].Text != ";" {
		t.Fatalf("unexpected third segment: %#v", res.Segments[2])
	}
}

func TestRewriteTypeAliasSuffixStripped(t *testing.T) {
	sch := schema.New()
	stmt, err := parser.ParseStatement("CREATE TABLE t(u TEXT AS UUID NOT NULL)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	pr := pragma.New()
	diags := infer.ApplyMigrationStatement(sch, pr, stmt)
	for _, d := range diags {
		if d.Level == diag.Error {
			t.Fatalf("unexpected error diagnostic: %s", d.Message)
		}
	}
	res, err := rewrite.Rewrite([]byte("CREATE TABLE t(u TEXT AS UUID NOT NULL)"), stmt, nil)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	if res.Sanitized != "CREATE TABLE t(u TEXT NOT NULL);" {
		t.Fatalf("unexpected sanitized SQL: %q", res.Sanitized)
	}
}
