// Package infer implements the Hindley-Milner-style type inferrer: given a
// frozen schema snapshot and a single statement, it computes the
// statement's bind-parameter types, result row shape, output cardinality,
// read-only flag, and used-table set, accumulating diagnostics along the
// way instead of stopping at the first error.
package infer

import (
	"sort"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/diag"
	"github.com/basilisk-labs/sqlitec/env"
	"github.com/basilisk-labs/sqlitec/pragma"
	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/types"
)

// Cardinality is the number of rows a statement's result may contain.
type Cardinality uint8

const (
	Many Cardinality = iota
	Single
)

func (c Cardinality) String() string {
	if c == Single {
		return "single"
	}
	return "many"
}

// Parameter is one resolved bind parameter: its dense 1-based index, final
// (explicit or inferred, uniquified) name, and resolved type.
type Parameter struct {
	Index int
	Name  string
	Type  types.Type
	// Node is the first occurrence's AST node, kept for the rewriter's
	// segmentation pass and for diagnostics.
	Node *ast.Param
}

// Signature is the per-statement inference result the IR builder consumes.
type Signature struct {
	Parameters  []Parameter // ordered by Index, dense 1..N
	Output      types.Type
	Cardinality Cardinality
	ReadOnly    bool
	UsedTables  []schema.QualifiedName
}

// Inferrer holds the mutable state of one inference session: the frozen
// schema snapshot, registered pragma directives, a fresh-variable minter
// and substitution (both session-scoped, never shared across statements),
// and the running diagnostics list.
type Inferrer struct {
	Schema *schema.Schema
	Pragma *pragma.Analyzer

	minter types.Minter
	subst  *types.Subst
	diags  []diag.Diagnostic

	params     []*paramSlot
	paramByKey map[string]*paramSlot

	ctes map[string]*schema.Table

	usedTables map[string]schema.QualifiedName
}

type paramSlot struct {
	index        int
	explicitName string
	inferredName string
	typ          types.Type
	node         *ast.Param
}

// New returns a session-ready Inferrer bound to sch (read-only) and pr.
func New(sch *schema.Schema, pr *pragma.Analyzer) *Inferrer {
	inf := &Inferrer{Schema: sch, Pragma: pr}
	inf.resetSession()
	return inf
}

// resetSession (re)initializes the per-statement inference state: a fresh
// substitution, an empty parameter table, an empty CTE shadow map, and an
// empty used-table set. Both InferStatement and the migration schema
// builder's ad-hoc inferrers (for CREATE VIEW / CREATE TABLE AS SELECT)
// call this before walking a statement.
func (inf *Inferrer) resetSession() {
	inf.subst = types.NewSubst()
	inf.diags = nil
	inf.params = nil
	inf.paramByKey = make(map[string]*paramSlot)
	inf.ctes = make(map[string]*schema.Table)
	inf.usedTables = make(map[string]schema.QualifiedName)
}

// InferStatement runs inference over stmt, returning its signature and any
// diagnostics raised. A signature is still returned when diagnostics
// contain errors so that best-effort IR can be produced.
func (inf *Inferrer) InferStatement(stmt ast.Statement) (*Signature, []diag.Diagnostic) {
	inf.resetSession()

	var output types.Type
	var card Cardinality
	readOnly := true

	switch s := stmt.(type) {
	case *ast.SelectStmt:
		e := env.New()
		output = inf.inferSelect(e, s)
		card = inf.selectCardinality(s)
	case *ast.InsertStmt:
		output = inf.inferInsert(s)
		card = inf.insertCardinality(s)
		readOnly = false
	case *ast.UpdateStmt:
		output = inf.inferUpdate(s)
		card = inf.mutationCardinality(s.Table, s.Where, s.Returning)
		readOnly = false
	case *ast.DeleteStmt:
		output = inf.inferDelete(s)
		card = inf.mutationCardinality(s.Table, s.Where, s.Returning)
		readOnly = false
	case *ast.DefineQueryStmt:
		return inf.InferStatement(s.Stmt)
	case *ast.ExplainStmt:
		return inf.InferStatement(s.Stmt)
	default:
		output = types.EmptyRow()
		card = Many
	}

	output = inf.subst.Resolve(output)
	inf.finalizeParams()

	sig := &Signature{
		Output:      output,
		Cardinality: card,
		ReadOnly:    readOnly,
		Parameters:  inf.exportParams(),
		UsedTables:  inf.exportUsedTables(),
	}
	return sig, inf.diags
}

func (inf *Inferrer) exportUsedTables() []schema.QualifiedName {
	names := make([]schema.QualifiedName, 0, len(inf.usedTables))
	for _, n := range inf.usedTables {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
	return names
}

func (inf *Inferrer) markUsed(q schema.QualifiedName) {
	inf.usedTables[q.Key()] = q
}

func (inf *Inferrer) errorf(r ast.Range, format string, args ...any) {
	inf.diags = append(inf.diags, diag.Errorf(r, format, args...))
}

func (inf *Inferrer) warnf(r ast.Range, format string, args ...any) {
	inf.diags = append(inf.diags, diag.Warnf(r, format, args...))
}

// unify wraps Subst.Unify, turning a failure into a positioned diagnostic
// and the Error sentinel rather than propagating the error to the caller:
// per the error-handling design, a unification failure must not block
// inference of sibling expressions.
func (inf *Inferrer) unify(at ast.Range, a, b types.Type) types.Type {
	u, err := inf.subst.Unify(a, b)
	if err != nil {
		inf.errorf(at, "%s", err.Error())
		return types.Error()
	}
	return u
}
