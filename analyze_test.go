package sqlparser_test

import (
	"testing"

	sqlparser "github.com/basilisk-labs/sqlitec"
)

func TestAnalyzeSQLParseError(t *testing.T) {
	report := sqlparser.AnalyzeSQL("SELECT FROM")
	if report.Valid {
		t.Fatalf("expected invalid SQL")
	}
	if len(report.Findings) == 0 || report.Findings[0].Code != "PARSE_ERROR" {
		t.Fatalf("expected PARSE_ERROR finding, got %#v", report.Findings)
	}
}

func TestAnalyzeSQLRiskyPatterns(t *testing.T) {
	sql := `SELECT * FROM users WHERE name LIKE '%abc'; UPDATE users SET active = 1; DELETE FROM logs;`
	report := sqlparser.AnalyzeSQL(sql)
	if !report.Valid {
		t.Fatalf("expected valid SQL, got parse error: %#v", report.Findings)
	}
	codes := map[string]bool{}
	for _, f := range report.Findings {
		codes[f.Code] = true
	}
	for _, code := range []string{"SELECT_STAR", "LIKE_LEADING_WILDCARD", "UPDATE_WITHOUT_WHERE", "DELETE_WITHOUT_WHERE"} {
		if !codes[code] {
			t.Fatalf("expected finding %s, findings=%#v", code, report.Findings)
		}
	}
}

func TestAnalyzeSQLNoExplicitPrimaryKey(t *testing.T) {
	report := sqlparser.AnalyzeSQL(`CREATE TABLE events (payload TEXT)`)
	if !report.Valid {
		t.Fatalf("expected valid SQL")
	}
	found := false
	for _, f := range report.Findings {
		if f.Code == "NO_EXPLICIT_PRIMARY_KEY" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected NO_EXPLICIT_PRIMARY_KEY finding, got %#v", report.Findings)
	}
}

func TestAnalyzeSQLVirtualTable(t *testing.T) {
	report := sqlparser.AnalyzeSQL(`CREATE VIRTUAL TABLE docs USING fts5(body)`)
	if !report.Valid {
		t.Fatalf("expected valid SQL, got parse error: %#v", report.Findings)
	}
	found := false
	for _, f := range report.Findings {
		if f.Code == "VIRTUAL_TABLE" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected VIRTUAL_TABLE finding, got %#v", report.Findings)
	}
}
