// Package codegen is a reference backend for the IR the core hands to
// external code-generation backends (spec §1 names per-language backends
// as out-of-core collaborators). It renders each compiled statement into
// idiomatic Go: a row-decodable record struct for statements with a named
// result shape, and a strongly-typed query method guarded by cardinality
// and read-only-ness.
//
// Binding strategy: every parameter (named or positional) carries a
// stable Index and a resolved Name (spec §4.4), so generated calls bind
// arguments positionally by Index. Drivers that require name-addressed
// binding for ":name"/"@name" placeholders are outside this backend's
// scope; the sanitized SQL's placeholder spelling is preserved verbatim
// from the source, not rewritten to a single driver convention.
package codegen

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/basilisk-labs/sqlitec/config"
	"github.com/basilisk-labs/sqlitec/infer"
	"github.com/basilisk-labs/sqlitec/ir"
	"github.com/basilisk-labs/sqlitec/rewrite"
	"github.com/basilisk-labs/sqlitec/types"
)

// querierTypeName is the interface generated query methods receive their
// database handle through, satisfied by *sql.DB and *sql.Tx alike.
const querierTypeName = "Querier"

// Generate renders one Go source file declaring a Queries type and one
// method plus (where the result shape warrants it) one row struct per
// compiled statement. stmts should come from a single package's query
// compilation (compiler.CompileQueries); statements with a nil
// Definition (anonymous, un-named queries) are skipped, since backends
// have no stable identifier to hang a method name on.
func Generate(pkgName string, cfg config.Config, stmts []*ir.Statement) (*jen.File, error) {
	f := jen.NewFile(pkgName)
	f.HeaderComment("Code generated by sqlitec. DO NOT EDIT.")

	for _, path := range cfg.Options.Imports {
		f.Anon(path)
	}

	genQuerierInterface(f)
	genQueriesStruct(f)

	seen := make(map[string]bool)
	for _, stmt := range stmts {
		if stmt.Definition == nil || stmt.Definition.Name == "" {
			continue
		}
		name := exportName(stmt.Definition.Name)
		if seen[name] {
			return nil, fmt.Errorf("codegen: duplicate query name %q", stmt.Definition.Name)
		}
		seen[name] = true

		rowType, hasRow := genRowStruct(f, name, stmt)
		genQueryMethod(f, name, stmt, rowType, hasRow)
	}

	return f, nil
}

func genQuerierInterface(f *jen.File) {
	f.Comment("Querier is the subset of *sql.DB / *sql.Tx generated queries need.")
	f.Type().Id(querierTypeName).Interface(
		jen.Id("QueryContext").Params(jen.Qual("context", "Context"), jen.String(), jen.Op("...").Any()).Params(jen.Op("*").Qual("database/sql", "Rows"), jen.Error()),
		jen.Id("QueryRowContext").Params(jen.Qual("context", "Context"), jen.String(), jen.Op("...").Any()).Params(jen.Op("*").Qual("database/sql", "Row")),
		jen.Id("ExecContext").Params(jen.Qual("context", "Context"), jen.String(), jen.Op("...").Any()).Params(jen.Qual("database/sql", "Result"), jen.Error()),
	)
}

func genQueriesStruct(f *jen.File) {
	f.Comment("Queries wraps a database handle with the generated, typed query methods.")
	f.Type().Id("Queries").Struct(
		jen.Id("db").Id(querierTypeName),
	)
	f.Comment("New returns a Queries bound to db.")
	f.Func().Id("New").Params(jen.Id("db").Id(querierTypeName)).Op("*").Id("Queries").Block(
		jen.Return(jen.Op("&").Id("Queries").Values(jen.Dict{jen.Id("db"): jen.Id("db")})),
	)
}

// genRowStruct emits a row record type for a named result shape and
// returns its type name; statements whose result is row(empty) (plain
// mutations without RETURNING) or a non-named shape get no struct.
func genRowStruct(f *jen.File, name string, stmt *ir.Statement) (string, bool) {
	out := stmt.ResultColumns
	if out.Kind != types.KindRow || out.Row.Kind != types.ShapeNamed || len(out.Row.Named) == 0 {
		return "", false
	}
	rowType := name + "Row"
	f.Commentf("%s is the row shape returned by %s.", rowType, name)
	f.Type().Id(rowType).StructFunc(func(g *jen.Group) {
		for _, col := range out.Row.Named {
			g.Id(exportName(col.Name)).Add(goType(col.Type))
		}
	})
	return rowType, true
}

func genQueryMethod(f *jen.File, name string, stmt *ir.Statement, rowType string, hasRow bool) {
	params := stmt.Parameters

	f.Commentf("%s runs: %s", name, compactSQL(stmt.SanitizedSQL))
	f.Func().Params(jen.Id("q").Op("*").Id("Queries")).Id(name).ParamsFunc(func(g *jen.Group) {
		g.Id("ctx").Qual("context", "Context")
		for _, p := range params {
			g.Id(paramName(p.Name)).Add(goType(p.Type))
		}
	}).ParamsFunc(func(g *jen.Group) {
		switch {
		case !hasRow:
			g.Error()
		case stmt.Cardinality == infer.Single:
			g.Op("*").Id(rowType)
			g.Error()
		default:
			g.Index().Id(rowType)
			g.Error()
		}
	}).BlockFunc(func(g *jen.Group) {
		genQueryBody(g, stmt, rowType, hasRow)
	})
}

func genQueryBody(g *jen.Group, stmt *ir.Statement, rowType string, hasRow bool) {
	queryExpr, argNames := querySource(stmt)

	if len(stmt.SourceSegments) > 1 {
		genRowParamArgsBuilder(g, stmt)
	} else {
		g.Id("query").Op(":=").Add(queryExpr)
	}

	args := []jen.Code{jen.Id("ctx"), jen.Id("query")}
	if len(stmt.SourceSegments) > 1 {
		args = append(args, jen.Id("args").Op("..."))
	} else {
		for _, n := range argNames {
			args = append(args, jen.Id(paramName(n)))
		}
	}

	scanArgs := scanTargets(stmt)

	switch {
	case !hasRow:
		g.List(jen.Id("_"), jen.Err()).Op(":=").Id("q").Dot("db").Dot("ExecContext").Call(args...)
		g.Return(jen.Err())
	case stmt.Cardinality == infer.Single:
		g.Var().Id("row").Id(rowType)
		g.Err().Op(":=").Id("q").Dot("db").Dot("QueryRowContext").Call(args...).Dot("Scan").Call(scanArgs...)
		g.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		)
		g.Return(jen.Op("&").Id("row"), jen.Nil())
	default:
		g.List(jen.Id("rows"), jen.Err()).Op(":=").Id("q").Dot("db").Dot("QueryContext").Call(args...)
		g.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		)
		g.Defer().Id("rows").Dot("Close").Call()
		g.Var().Id("out").Index().Id(rowType)
		g.For(jen.Id("rows").Dot("Next").Call()).Block(
			jen.Var().Id("row").Id(rowType),
			jen.If(jen.Err().Op(":=").Id("rows").Dot("Scan").Call(scanArgs...).Op(";").Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Err()),
			),
			jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("row")),
		)
		g.Return(jen.Id("out"), jen.Id("rows").Dot("Err").Call())
	}
}

// querySource renders the query string for the common case (no row-valued
// parameters: exactly one sanitized text segment) and returns the
// parameter names to pass positionally.
func querySource(stmt *ir.Statement) (jen.Code, []string) {
	names := make([]string, len(stmt.Parameters))
	for i, p := range stmt.Parameters {
		names[i] = p.Name
	}
	if len(stmt.SourceSegments) <= 1 {
		return jen.Lit(stmt.SanitizedSQL), names
	}
	return jen.Lit(""), names
}

// genRowParamArgsBuilder emits code that expands each row-valued
// parameter's "(?, ?, ...)" placeholder run at call time, matching the
// count of elements actually passed in (spec §4.7).
func genRowParamArgsBuilder(g *jen.Group, stmt *ir.Statement) {
	g.Var().Id("sb").Qual("strings", "Builder")
	g.Var().Id("args").Index().Any()
	for _, seg := range stmt.SourceSegments {
		switch seg.Kind {
		case rewrite.TextSegment:
			g.Id("sb").Dot("WriteString").Call(jen.Lit(seg.Text))
		case rewrite.RowParamSegment:
			elemArg := paramName(seg.Param.Name)
			g.Id("sb").Dot("WriteString").Call(jen.Lit("("))
			g.For(jen.List(jen.Id("i"), jen.Id("v")).Op(":=").Range().Id(elemArg)).Block(
				jen.If(jen.Id("i").Op(">").Lit(0)).Block(
					jen.Id("sb").Dot("WriteString").Call(jen.Lit(", ")),
				),
				jen.Id("sb").Dot("WriteString").Call(jen.Lit("?")),
				jen.Id("args").Op("=").Append(jen.Id("args"), jen.Id("v")),
			)
			g.Id("sb").Dot("WriteString").Call(jen.Lit(")"))
		}
	}
	g.Id("query").Op(":=").Id("sb").Dot("String").Call()
}

func scanTargets(stmt *ir.Statement) []jen.Code {
	out := stmt.ResultColumns
	if out.Kind != types.KindRow || out.Row.Kind != types.ShapeNamed {
		return nil
	}
	targets := make([]jen.Code, len(out.Row.Named))
	for i := range out.Row.Named {
		targets[i] = jen.Op("&").Id("row").Dot(exportName(out.Row.Named[i].Name))
	}
	return targets
}

func compactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
