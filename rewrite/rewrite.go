// Package rewrite implements the two responsibilities described for the
// source rewriter: sanitizing a statement's source (stripping non-SQL
// extensions such as the "DEFINE QUERY ... AS" prefix and "AS alias"
// type-alias suffixes) and segmenting the sanitized text around any
// row-valued bind parameters so a host runtime can expand "(?, ?, ...)"
// at execution time.
package rewrite

import (
	"fmt"
	"sort"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/infer"
	"github.com/basilisk-labs/sqlitec/types"
)

// SegmentKind distinguishes a literal run of sanitized SQL text from a
// row-valued bind parameter's expansion point.
type SegmentKind uint8

const (
	TextSegment SegmentKind = iota
	RowParamSegment
)

// Segment is one piece of a statement's sanitized source: either a literal
// text span or the position a row-valued parameter expands into at
// execution time.
type Segment struct {
	Kind  SegmentKind
	Text  string
	Param *infer.Parameter
}

// Definition carries DEFINE QUERY's name and optional input/output type
// overrides, when the statement was a DEFINE QUERY wrapper.
type Definition struct {
	Name   string
	Input  string
	Output string
}

// Result is the rewriter's output for a single statement.
type Result struct {
	Definition *Definition
	Sanitized  string
	Segments   []Segment
}

// Rewrite sanitizes stmt's source (found within src) and segments it
// around any row-valued bind parameters recorded in sig. It panics if the
// statement both requires internal range removal and carries row-valued
// parameters: by construction these never coincide (type-alias suffixes
// only appear in CREATE TABLE / ALTER TABLE ADD COLUMN, which are
// migration-only and never carry bind parameters at all), and a violation
// is an internal invariant failure, not a recoverable diagnostic.
func Rewrite(src []byte, stmt ast.Statement, sig *infer.Signature) (*Result, error) {
	def, inner, innerStart := splitDefinition(stmt)
	stmtEnd := stmt.Range().End
	if stmtEnd < innerStart {
		stmtEnd = innerStart
	}

	removals := internalRemovals(inner)
	rowParams := rowValuedParams(sig)

	if len(removals) > 0 && len(rowParams) > 0 {
		panic(fmt.Sprintf("rewrite: statement at [%d,%d) has both %d removed range(s) and %d row-valued parameter(s)",
			innerStart, stmtEnd, len(removals), len(rowParams)))
	}

	if len(rowParams) > 0 {
		segs, err := segmentRowParams(src, innerStart, stmtEnd, rowParams)
		if err != nil {
			return nil, err
		}
		return &Result{Definition: def, Sanitized: renderSegments(segs), Segments: segs}, nil
	}

	sanitized := applyRemovals(src, innerStart, stmtEnd, removals)
	return &Result{
		Definition: def,
		Sanitized:  sanitized,
		Segments:   []Segment{{Kind: TextSegment, Text: sanitized}},
	}, nil
}

// splitDefinition unwraps a top-level DEFINE QUERY statement, returning its
// Definition and the inner statement whose range starts right after the
// "AS" keyword. A plain statement returns a nil Definition and its own
// start offset.
func splitDefinition(stmt ast.Statement) (*Definition, ast.Statement, int32) {
	dq, ok := stmt.(*ast.DefineQueryStmt)
	if !ok {
		return nil, stmt, stmt.Range().Start
	}
	def := &Definition{Name: dq.Name.Unquoted}
	if dq.Input != nil {
		def.Input = dq.Input.Unquoted
	}
	if dq.Output != nil {
		def.Output = dq.Output.Unquoted
	}
	return def, dq.Stmt, dq.Stmt.Range().Start
}

// internalRemovals collects the byte ranges to excise from a statement's
// source: "AS alias" type-alias suffixes in column definitions, and (for
// FTS5 virtual tables, which accept no real column types) the declared
// type name itself.
func internalRemovals(stmt ast.Statement) []ast.Range {
	var out []ast.Range
	switch s := stmt.(type) {
	case *ast.CreateTableStmt:
		for _, col := range s.Columns {
			out = append(out, columnRemovals(col, false)...)
		}
	case *ast.CreateVirtualTableStmt:
		for _, col := range s.Columns {
			out = append(out, columnRemovals(col, true)...)
		}
	case *ast.AlterTableStmt:
		if add, ok := s.Cmd.(*ast.AddColumnCmd); ok {
			out = append(out, columnRemovals(add.Col, false)...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func columnRemovals(col *ast.ColumnDef, fts5 bool) []ast.Range {
	if col.Type == nil {
		return nil
	}
	if col.TypeAlias != nil {
		return []ast.Range{{Start: col.Type.End, End: col.TypeAlias.Range().End}}
	}
	if fts5 {
		// FTS5 columns are declared with ordinary-looking types for the
		// inferrer's benefit, but the module itself accepts none: strip
		// the type name so the sanitized DDL is real FTS5 syntax.
		return []ast.Range{{Start: col.Name.Range().End, End: col.Type.End}}
	}
	return nil
}

// applyRemovals copies src[start:end), skipping every byte that falls
// inside a removal range, and appends the statement terminator the parser
// consumes separately from the statement's own span.
func applyRemovals(src []byte, start, end int32, removals []ast.Range) string {
	var buf []byte
	cur := start
	for _, r := range removals {
		if r.Start < cur {
			continue
		}
		if r.Start > end {
			break
		}
		buf = append(buf, src[cur:r.Start]...)
		cur = r.End
		if cur > end {
			cur = end
		}
	}
	buf = append(buf, src[cur:end]...)
	return string(buf) + ";"
}

// rowValuedParams returns the subset of sig's parameters whose type
// unifies as a row (the IN-list expansion case), in index order.
func rowValuedParams(sig *infer.Signature) []*infer.Parameter {
	if sig == nil {
		return nil
	}
	var out []*infer.Parameter
	for i := range sig.Parameters {
		p := &sig.Parameters[i]
		if p.Type.Kind == types.KindRow {
			out = append(out, p)
		}
	}
	return out
}

// segmentRowParams walks src[start:end) in source order, cutting a new
// text/row-param boundary at each row-valued parameter's own span (so the
// parameter's original placeholder text is replaced by the expansion
// point rather than echoed literally).
func segmentRowParams(src []byte, start, end int32, params []*infer.Parameter) ([]Segment, error) {
	sort.Slice(params, func(i, j int) bool { return params[i].Node.Range().Start < params[j].Node.Range().Start })

	var segs []Segment
	cur := start
	for _, p := range params {
		r := p.Node.Range()
		if r.Start < cur || r.End > end {
			return nil, fmt.Errorf("rewrite: row parameter %q span [%d,%d) outside statement range [%d,%d)", p.Name, r.Start, r.End, start, end)
		}
		if r.Start > cur {
			segs = append(segs, Segment{Kind: TextSegment, Text: string(src[cur:r.Start])})
		}
		segs = append(segs, Segment{Kind: RowParamSegment, Param: p})
		cur = r.End
	}
	if cur < end {
		segs = append(segs, Segment{Kind: TextSegment, Text: string(src[cur:end])})
	}
	// The terminating semicolon always belongs to the final text segment.
	if len(segs) > 0 && segs[len(segs)-1].Kind == TextSegment {
		segs[len(segs)-1].Text += ";"
	} else {
		segs = append(segs, Segment{Kind: TextSegment, Text: ";"})
	}
	return segs, nil
}

// renderSegments reconstructs the full sanitized source from its segments,
// rendering each row-param as its original "?"-style placeholder so the
// result remains admissible to a standard SQLite parser on its own.
func renderSegments(segs []Segment) string {
	var buf []byte
	for _, s := range segs {
		switch s.Kind {
		case TextSegment:
			buf = append(buf, s.Text...)
		case RowParamSegment:
			buf = append(buf, renderParamPlaceholder(s.Param)...)
		}
	}
	return string(buf)
}

func renderParamPlaceholder(p *infer.Parameter) string {
	if p == nil || p.Node == nil {
		return "?"
	}
	return string(p.Node.Raw)
}
