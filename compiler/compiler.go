// Package compiler orchestrates the core pipeline across a migration set
// and a query set: migrations run strictly sequentially in filename-sorted
// numeric order to evolve the schema deterministically, while independent
// query files may compile in parallel against the resulting frozen
// snapshot. Diagnostics are returned sorted by source range; IR is
// returned in input order regardless of how many goroutines produced it.
package compiler

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/diag"
	"github.com/basilisk-labs/sqlitec/infer"
	"github.com/basilisk-labs/sqlitec/ir"
	"github.com/basilisk-labs/sqlitec/parser"
	"github.com/basilisk-labs/sqlitec/pragma"
	"github.com/basilisk-labs/sqlitec/schema"
	"github.com/basilisk-labs/sqlitec/validate"
)

// File is one named source file handed to the core by the driver; the
// driver owns all filesystem access.
type File struct {
	Name string
	Text string
}

// Session holds the schema and pragma state built up across a migration
// compilation and frozen for subsequent query compilation.
type Session struct {
	Schema *schema.Schema
	Pragma *pragma.Analyzer
}

// NewSession returns an empty session ready for migration compilation.
func NewSession() *Session {
	return &Session{Schema: schema.New(), Pragma: pragma.New()}
}

// Result is everything one compiled file produced: per-statement IR (only
// for statements legal in their context and free of fatal errors) and the
// full accumulated diagnostics list, sorted by source range.
type Result struct {
	File        string
	Statements  []*ir.Statement
	Diagnostics []diag.Diagnostic
}

// CompileMigrations compiles files in filename-numeric order, mutating
// sess.Schema statement by statement so later files (and later statements
// within a file) observe every prior effect. It is always single-threaded:
// migration order is the one deterministic axis the whole system depends
// on, so this never parallelizes.
func CompileMigrations(sess *Session, files []File) ([]Result, error) {
	sorted, err := sortMigrations(files)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(sorted))
	for i, f := range sorted {
		results[i] = compileFile(sess, f, validate.Migration)
	}
	return results, nil
}

// CompileQueries compiles files independently against sess's frozen
// schema. Each file is compiled single-threaded and synchronously; files
// run concurrently via an errgroup, bounded by maxParallel (0 means
// unbounded). Results are returned in input order.
func CompileQueries(sess *Session, files []File, maxParallel int) ([]Result, error) {
	results := make([]Result, len(files))
	var g errgroup.Group
	if maxParallel > 0 {
		g.SetLimit(maxParallel)
	}
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = compileFile(sess, f, validate.Query)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func compileFile(sess *Session, f File, ctx validate.Context) Result {
	res := Result{File: f.Name}
	stmts, perr := parser.ParseStatements(f.Text)
	if perr != nil {
		at := ast.Range{}
		if pe, ok := perr.(*parser.ParseError); ok {
			at = ast.Range{Start: pe.Pos, End: pe.Pos}
		}
		res.Diagnostics = append(res.Diagnostics, diag.Errorf(at, "%s", perr.Error()))
	}

	for _, stmt := range stmts {
		if !validate.Legal(stmt, ctx) {
			res.Diagnostics = append(res.Diagnostics, diag.Errorf(stmt.Range(),
				"statement is not allowed in %s: %s", ctxName(ctx), validate.Name(stmt)))
			continue
		}

		if ctx == validate.Migration {
			diags := infer.ApplyMigrationStatement(sess.Schema, sess.Pragma, stmt)
			res.Diagnostics = append(res.Diagnostics, diags...)
			continue
		}

		stmtSrc := []byte(f.Text)
		built, diags, err := ir.Build(stmtSrc, sess.Schema, sess.Pragma, stmt)
		res.Diagnostics = append(res.Diagnostics, diags...)
		if err != nil {
			// An internal invariant violation (segmentation colliding with
			// removal) is fatal to the session, per the rewriter's
			// contract; the error is surfaced through the result file's
			// diagnostics since CompileQueries has no other error channel
			// once goroutines are already in flight.
			res.Diagnostics = append(res.Diagnostics, diag.Errorf(stmt.Range(), "%s", err.Error()))
			continue
		}
		res.Statements = append(res.Statements, built)
	}

	for i := range res.Diagnostics {
		res.Diagnostics[i].File = f.Name
	}
	diag.SortByRange(res.Diagnostics)
	return res
}

func ctxName(ctx validate.Context) string {
	if ctx == validate.Migration {
		return "migrations"
	}
	return "queries"
}

// sortMigrations orders files by the integer value of their base name
// (before the extension), per "Migrations/NUMBER.sql" file naming.
func sortMigrations(files []File) ([]File, error) {
	type numbered struct {
		n int
		f File
	}
	out := make([]numbered, len(files))
	for i, f := range files {
		base := filepath.Base(f.Name)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		n, err := strconv.Atoi(base)
		if err != nil {
			return nil, fmt.Errorf("compiler: migration file %q does not parse as NUMBER.ext: %w", f.Name, err)
		}
		out[i] = numbered{n: n, f: f}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].n < out[j].n })
	sorted := make([]File, len(out))
	for i, nf := range out {
		sorted[i] = nf.f
	}
	return sorted, nil
}
