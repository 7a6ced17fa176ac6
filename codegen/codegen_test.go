package codegen_test

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/basilisk-labs/sqlitec/codegen"
	"github.com/basilisk-labs/sqlitec/config"
	"github.com/basilisk-labs/sqlitec/infer"
	"github.com/basilisk-labs/sqlitec/ir"
	"github.com/basilisk-labs/sqlitec/rewrite"
	"github.com/basilisk-labs/sqlitec/types"
)

func render(t *testing.T, stmts []*ir.Statement) string {
	t.Helper()
	f, err := codegen.Generate("queries", config.Default(), stmts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

// hasField reports whether out declares a struct field named name of the
// given goType, tolerating gofmt's column-alignment whitespace.
func hasField(out, name, goType string) bool {
	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(name) + `\s+` + regexp.QuoteMeta(goType) + `\s*$`)
	return re.MatchString(out)
}

func TestGenerateNamedRowQuery(t *testing.T) {
	stmt := &ir.Statement{
		Definition: &ir.Definition{Name: "list"},
		ResultColumns: types.NamedRow(
			types.Column{Name: "id", Type: types.Nominal("INTEGER")},
			types.Column{Name: "name", Type: types.Optional(types.Nominal("TEXT"))},
		),
		Cardinality:    infer.Many,
		ReadOnly:       true,
		SanitizedSQL:   "SELECT * FROM users;",
		SourceSegments: []ir.Segment{{Kind: rewrite.TextSegment, Text: "SELECT * FROM users;"}},
	}
	out := render(t, []*ir.Statement{stmt})

	if !hasField(out, "ID", "int64") {
		t.Fatalf("expected field ID int64, got:\n%s", out)
	}
	if !hasField(out, "Name", "*string") {
		t.Fatalf("expected field Name *string, got:\n%s", out)
	}

	for _, want := range []string{
		"type ListRow struct",
		"func (q *Queries) List(ctx context.Context) ([]ListRow, error)",
		"q.db.QueryContext(ctx, query)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected generated source to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateSingleRowQuery(t *testing.T) {
	stmt := &ir.Statement{
		Definition: &ir.Definition{Name: "byID"},
		Parameters: []infer.Parameter{{Index: 1, Name: "id", Type: types.Nominal("INTEGER")}},
		ResultColumns: types.NamedRow(
			types.Column{Name: "id", Type: types.Nominal("INTEGER")},
		),
		Cardinality:    infer.Single,
		ReadOnly:       true,
		SanitizedSQL:   "SELECT id FROM users WHERE id = ?;",
		SourceSegments: []ir.Segment{{Kind: rewrite.TextSegment, Text: "SELECT id FROM users WHERE id = ?;"}},
	}
	out := render(t, []*ir.Statement{stmt})

	for _, want := range []string{
		"func (q *Queries) ByID(ctx context.Context, id int64) (*ByIDRow, error)",
		"q.db.QueryRowContext(ctx, query, id)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected generated source to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateRowParamExpansion(t *testing.T) {
	rowParam := &infer.Parameter{Index: 1, Name: "ids", Type: types.UnknownRow(types.Nominal("INTEGER"))}
	stmt := &ir.Statement{
		Definition: &ir.Definition{Name: "byIds"},
		Parameters: []infer.Parameter{*rowParam},
		ResultColumns: types.NamedRow(
			types.Column{Name: "id", Type: types.Nominal("INTEGER")},
		),
		Cardinality:  infer.Many,
		ReadOnly:     true,
		SanitizedSQL: "SELECT * FROM users WHERE id IN ?;",
		SourceSegments: []ir.Segment{
			{Kind: rewrite.TextSegment, Text: "SELECT * FROM users WHERE id IN "},
			{Kind: rewrite.RowParamSegment, Param: rowParam},
			{Kind: rewrite.TextSegment, Text: ";"},
		},
	}
	out := render(t, []*ir.Statement{stmt})

	for _, want := range []string{
		"func (q *Queries) ByIds(ctx context.Context, ids []int64) ([]ByIdsRow, error)",
		"var sb strings.Builder",
		"for i, v := range ids",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected generated source to contain %q, got:\n%s", want, out)
		}
	}
}

func TestGenerateMutationWithoutReturning(t *testing.T) {
	stmt := &ir.Statement{
		Definition:     &ir.Definition{Name: "deleteUser"},
		Parameters:     []infer.Parameter{{Index: 1, Name: "id", Type: types.Nominal("INTEGER")}},
		ResultColumns:  types.EmptyRow(),
		Cardinality:    infer.Many,
		ReadOnly:       false,
		SanitizedSQL:   "DELETE FROM users WHERE id = ?;",
		SourceSegments: []ir.Segment{{Kind: rewrite.TextSegment, Text: "DELETE FROM users WHERE id = ?;"}},
	}
	out := render(t, []*ir.Statement{stmt})

	if strings.Contains(out, "DeleteUserRow") {
		t.Fatalf("expected no row struct for an empty result shape, got:\n%s", out)
	}
	if !strings.Contains(out, "func (q *Queries) DeleteUser(ctx context.Context, id int64) error") {
		t.Fatalf("expected a no-result query method, got:\n%s", out)
	}
}

func TestGenerateRejectsDuplicateNames(t *testing.T) {
	stmt := func() *ir.Statement {
		return &ir.Statement{
			Definition:     &ir.Definition{Name: "list"},
			ResultColumns:  types.EmptyRow(),
			SanitizedSQL:   "DELETE FROM users;",
			SourceSegments: []ir.Segment{{Kind: rewrite.TextSegment, Text: "DELETE FROM users;"}},
		}
	}
	_, err := codegen.Generate("queries", config.Default(), []*ir.Statement{stmt(), stmt()})
	if err == nil {
		t.Fatalf("expected an error for duplicate query names")
	}
}
