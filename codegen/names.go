package codegen

import "strings"

func splitWords(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
}

// exportName turns a snake_case or already-mixed-case SQL identifier into
// an exported Go identifier, e.g. "user_id" -> "UserID", "list" -> "List".
func exportName(name string) string {
	parts := splitWords(name)
	if len(parts) == 0 {
		return "Field"
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(p[1:])
		}
	}
	return fixInitialisms(b.String())
}

// paramName turns a bind parameter's inferred name into an unexported Go
// argument identifier, e.g. "user_id" -> "userId".
func paramName(name string) string {
	parts := splitWords(name)
	if len(parts) == 0 {
		return "arg"
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(p[1:])
		}
	}
	return b.String()
}

// fixInitialisms upcases common SQL/Go initialisms so exported identifiers
// read "ID"/"URL" rather than "Id"/"Url", matching Go naming conventions.
// Only the trailing initialism is rewritten; a blanket replace could
// mangle a longer word that happens to contain one as a substring.
func fixInitialisms(s string) string {
	for _, suffix := range []string{"Id", "Url", "Uuid", "Json", "Api"} {
		if strings.HasSuffix(s, suffix) {
			return s[:len(s)-len(suffix)] + strings.ToUpper(suffix)
		}
	}
	return s
}
