package parser

import (
	"strings"

	"github.com/basilisk-labs/sqlitec/ast"
)

// classifyParam splits a raw bind-parameter token into its syntactic kind
// and normalized name. The positional "?" form and bare "$N" numeric form
// carry no name here; the inferrer assigns synthetic names later. Dotted
// "$seg1::seg2(suffix)" paths are flattened into a single dotted name with
// any parenthesized type suffix dropped, per the rewriter's needs.
func classifyParam(raw []byte) (ast.ParamKind, string) {
	if len(raw) == 0 {
		return ast.ParamPositional, ""
	}
	switch raw[0] {
	case '?':
		return ast.ParamPositional, ""
	case ':':
		return ast.ParamNamedColon, string(raw[1:])
	case '@':
		return ast.ParamNamedAt, string(raw[1:])
	case '$':
		body := string(raw[1:])
		if paren := strings.IndexByte(body, '('); paren >= 0 {
			body = body[:paren]
		}
		if body == "" {
			return ast.ParamNamedDollar, ""
		}
		return ast.ParamNamedDollar, strings.ReplaceAll(body, "::", ".")
	}
	return ast.ParamPositional, ""
}
