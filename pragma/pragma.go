// Package pragma interprets the closed set of dialect directives that
// affect typing: type-alias declarations and boolean hints. A pragma
// session is scoped to one compilation Session, not process-global, so two
// concurrent sessions never observe each other's directives.
package pragma

import (
	"strings"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/diag"
)

// Analyzer holds the registered directives for one compilation session.
type Analyzer struct {
	typeAliases map[string]string // uppercased alias name -> storage type name
	boolHints   map[string]bool   // uppercased name -> true
}

// New returns an Analyzer with no directives registered.
func New() *Analyzer {
	return &Analyzer{
		typeAliases: make(map[string]string),
		boolHints:   make(map[string]bool),
	}
}

// Apply interprets a PRAGMA statement, mutating the analyzer's registered
// directives. Unknown pragma names are not an error: they pass through to
// SQL emission unchanged and never affect typing.
func (a *Analyzer) Apply(stmt *ast.PragmaStmt) []diag.Diagnostic {
	name := strings.ToLower(stmt.Name.Unquoted)
	switch name {
	case "type_alias", "type-alias":
		alias, storage, ok := parseTypeAliasArg(stmt)
		if !ok {
			return []diag.Diagnostic{diag.Errorf(stmt.Range(), "pragma type_alias requires 'NAME AS STORAGE'")}
		}
		a.typeAliases[strings.ToUpper(alias)] = strings.ToUpper(storage)
	case "hint_bool", "hint-bool":
		hint, ok := parseIdentArg(stmt)
		if !ok {
			return []diag.Diagnostic{diag.Errorf(stmt.Range(), "pragma hint_bool requires a single identifier argument")}
		}
		a.boolHints[strings.ToUpper(hint)] = true
	}
	return nil
}

// TypeAliasStorage returns the registered storage type name for a
// type-alias directive, or ("", false) if name is not a registered alias.
func (a *Analyzer) TypeAliasStorage(name string) (string, bool) {
	storage, ok := a.typeAliases[strings.ToUpper(name)]
	return storage, ok
}

// IsBoolHint reports whether name was declared boolean via hint-bool.
func (a *Analyzer) IsBoolHint(name string) bool {
	return a.boolHints[strings.ToUpper(name)]
}

// parseTypeAliasArg extracts NAME and STORAGE from a pragma value encoded
// as a string literal "NAME AS STORAGE" (PRAGMA type_alias = 'UUID AS TEXT')
// or, when absent, from the pragma's call-form argument list is left to
// the caller's statement shape; here we only support the literal form
// since PragmaStmt carries a single optional Value expression.
func parseTypeAliasArg(stmt *ast.PragmaStmt) (alias, storage string, ok bool) {
	lit, isLit := stmt.Value.(*ast.Literal)
	if !isLit {
		return "", "", false
	}
	raw := unquoteLiteral(lit.Raw)
	fields := strings.Fields(raw)
	if len(fields) != 3 || !strings.EqualFold(fields[1], "AS") {
		return "", "", false
	}
	return fields[0], fields[2], true
}

func parseIdentArg(stmt *ast.PragmaStmt) (string, bool) {
	lit, isLit := stmt.Value.(*ast.Literal)
	if !isLit {
		return "", false
	}
	return unquoteLiteral(lit.Raw), true
}

func unquoteLiteral(raw []byte) string {
	s := string(raw)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') {
		s = s[1 : len(s)-1]
		quote := raw[0]
		s = strings.ReplaceAll(s, string(quote)+string(quote), string(quote))
	}
	return s
}
