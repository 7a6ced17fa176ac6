// Package ir assembles the language-neutral per-statement record external
// code-generation backends consume: parser, inferrer and rewriter output
// joined into one Statement value plus the running Schema snapshot.
package ir

import (
	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/diag"
	"github.com/basilisk-labs/sqlitec/infer"
	"github.com/basilisk-labs/sqlitec/pragma"
	"github.com/basilisk-labs/sqlitec/rewrite"
	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/types"
)

// Definition carries a DEFINE QUERY statement's name and optional
// input/output type-name overrides.
type Definition = rewrite.Definition

// Segment is one piece of a statement's sanitized source.
type Segment = rewrite.Segment

// Statement is the backend-facing IR for a single compiled statement.
type Statement struct {
	Definition     *Definition
	Parameters     []infer.Parameter
	ResultColumns  types.Type
	Cardinality    infer.Cardinality
	ReadOnly       bool
	SanitizedSQL   string
	SourceSegments []Segment
	UsedTables     []schema.QualifiedName
	Node           ast.Statement
}

// Build runs inference and rewriting over stmt (parsed from src, against
// sch/pr) and assembles its Statement record. It never mutates sch; use
// infer.ApplyMigrationStatement before Build when compiling a migration so
// later statements see this one's schema effects.
func Build(src []byte, sch *schema.Schema, pr *pragma.Analyzer, stmt ast.Statement) (*Statement, []diag.Diagnostic, error) {
	inf := infer.New(sch, pr)
	sig, diags := inf.InferStatement(stmt)

	rw, err := rewrite.Rewrite(src, stmt, sig)
	if err != nil {
		return nil, diags, err
	}

	return &Statement{
		Definition:     rw.Definition,
		Parameters:     sig.Parameters,
		ResultColumns:  sig.Output,
		Cardinality:    sig.Cardinality,
		ReadOnly:       sig.ReadOnly,
		SanitizedSQL:   rw.Sanitized,
		SourceSegments: rw.Segments,
		UsedTables:     sig.UsedTables,
		Node:           stmt,
	}, diags, nil
}
