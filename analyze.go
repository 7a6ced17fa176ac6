package sqlparser

import (
	"fmt"
	"strings"

	"github.com/basilisk-labs/sqlitec/ast"
)

type FindingSeverity string

const (
	SeverityInfo     FindingSeverity = "info"
	SeverityWarning  FindingSeverity = "warning"
	SeverityCritical FindingSeverity = "critical"
)

type AnalysisFinding struct {
	Severity       FindingSeverity
	Code           string
	Message        string
	Problem        string
	Recommendation string
	StatementIndex int
}

type AnalysisReport struct {
	Valid          bool
	StatementCount int
	Findings       []AnalysisFinding
}

// AnalyzeSQL is a lightweight structural lint over parsed SQLite statements.
// It does not replace the type inferrer: it flags shape-level issues (missing
// WHERE on a mutation, leading-wildcard LIKE, cartesian joins) that are worth
// a diagnostic on their own, independent of whether a schema is available.
func AnalyzeSQL(sql string) AnalysisReport {
	report := AnalysisReport{}
	stmts, err := ParseStatements(sql)
	if err != nil {
		report.Valid = false
		addFinding(&report, SeverityCritical, "PARSE_ERROR", err.Error(), "Fix SQL syntax at the reported range and re-run parsing.", -1)
		return report
	}
	report.Valid = true
	report.StatementCount = len(stmts)

	for i, stmt := range stmts {
		analyzeStatement(stmt, i, &report)
	}
	return report
}

func analyzeStatement(stmt Statement, idx int, report *AnalysisReport) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		if hasSelectStar(s.Columns) {
			addFinding(report, SeverityWarning, "SELECT_STAR", "Query uses SELECT *; this can read unnecessary columns and break callers if the schema changes.", "Select the explicit columns the caller needs so generated row types stay stable across migrations.", idx)
		}
		if s.SetOp != nil {
			for cur := s.SetOp; cur != nil; cur = cur.Right.SetOp {
				if cur.Op == ast.Union && !cur.All {
					addFinding(report, SeverityInfo, "UNION_DISTINCT_COST", "UNION performs duplicate elimination, which adds sort/hash overhead on large result sets.", "Use UNION ALL when duplicate removal is not required.", idx)
				}
			}
		}
		for _, tr := range s.From {
			if jt, ok := tr.(*ast.JoinTable); ok && jt.Kind == ast.CrossJoin {
				addFinding(report, SeverityWarning, "CROSS_JOIN", "CROSS JOIN can create a cartesian product and explode row counts.", "Confirm the cartesian product is intended, or use an INNER/LEFT JOIN with an explicit predicate.", idx)
			}
		}
		analyzeExpr(s.Where, idx, report)
		analyzeExpr(s.Having, idx, report)
		for _, c := range s.Columns {
			analyzeExpr(c.Expr, idx, report)
		}
	case *ast.InsertStmt:
		if len(s.Values) > 1000 {
			addFinding(report, SeverityInfo, "BULK_INSERT_SIZE", "Very large VALUES clause detected; this can increase lock time and memory pressure.", "Split into smaller batches (for example 200-1000 rows) inside an explicit transaction.", idx)
		}
		if s.Upsert != nil {
			addFinding(report, SeverityInfo, "UPSERT_PRESENT", "Upsert logic detected (ON CONFLICT).", "Verify a matching unique or primary-key index exists on the conflict columns.", idx)
		}
		if s.Select != nil {
			for _, c := range s.Select.Columns {
				analyzeExpr(c.Expr, idx, report)
			}
		}
	case *ast.UpdateStmt:
		if s.Where == nil {
			addFinding(report, SeverityCritical, "UPDATE_WITHOUT_WHERE", "UPDATE statement has no WHERE clause and will affect every row in the table.", "Add a WHERE predicate, or confirm the full-table update is intentional.", idx)
		}
		analyzeExpr(s.Where, idx, report)
		for _, a := range s.Set {
			analyzeExpr(a.Value, idx, report)
		}
	case *ast.DeleteStmt:
		if s.Where == nil {
			addFinding(report, SeverityCritical, "DELETE_WITHOUT_WHERE", "DELETE statement has no WHERE clause and will remove every row in the table.", "Add a WHERE predicate, or use a migration-level DROP/recreate when full deletion is intended.", idx)
		}
		analyzeExpr(s.Where, idx, report)
	case *ast.CreateTableStmt:
		pkCount := 0
		for _, c := range s.Columns {
			if c.PrimaryKey {
				pkCount++
			}
			if c.Autoincrement && (c.Type == nil || !strings.EqualFold(string(c.Type.Name), "integer")) {
				addFinding(report, SeverityWarning, "AUTOINCREMENT_NON_INTEGER", "AUTOINCREMENT is only meaningful on an INTEGER PRIMARY KEY column.", "Declare the column as INTEGER PRIMARY KEY AUTOINCREMENT.", idx)
			}
		}
		if pkCount == 0 && len(s.Constraints) == 0 && !s.WithoutRowid {
			addFinding(report, SeverityInfo, "NO_EXPLICIT_PRIMARY_KEY", "Table has no explicit PRIMARY KEY; SQLite will fall back to the implicit rowid.", "Declare an explicit PRIMARY KEY when callers need a stable, queryable row identifier.", idx)
		}
	case *ast.CreateVirtualTableStmt:
		addFinding(report, SeverityInfo, "VIRTUAL_TABLE", fmt.Sprintf("CREATE VIRTUAL TABLE using module %q.", s.Module.Unquoted), "Module-specific columns (for example FTS5 rank) may need pragma-driven type hints since they are not ordinary declared columns.", idx)
	}
}

func analyzeExpr(e Expr, idx int, report *AnalysisReport) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *ast.LikeExpr:
		if lit, ok := ex.Pattern.(*ast.Literal); ok {
			raw := string(lit.Raw)
			if strings.HasPrefix(raw, "'%") || strings.HasPrefix(raw, "\"%") {
				addFinding(report, SeverityInfo, "LIKE_LEADING_WILDCARD", "LIKE pattern starts with a wildcard; an index seek is usually not possible.", "Anchor the pattern (for example 'abc%') or use an FTS5 virtual table for substring search.", idx)
			}
		}
		analyzeExpr(ex.Expr, idx, report)
		analyzeExpr(ex.Pattern, idx, report)
		analyzeExpr(ex.Escape, idx, report)
	case *ast.BinaryExpr:
		if strings.EqualFold(ex.Op.String(), "OR") {
			addFinding(report, SeverityInfo, "OR_PREDICATE", "OR predicate can reduce index selectivity and lead to a full scan.", "Consider splitting into UNION ALL branches or adding a composite index aligned with both predicates.", idx)
		}
		analyzeExpr(ex.Left, idx, report)
		analyzeExpr(ex.Right, idx, report)
	case *ast.UnaryExpr:
		analyzeExpr(ex.Expr, idx, report)
	case *ast.FuncCall:
		for _, a := range ex.Args {
			analyzeExpr(a, idx, report)
		}
	case *ast.CaseExpr:
		analyzeExpr(ex.Operand, idx, report)
		analyzeExpr(ex.Else, idx, report)
		for _, w := range ex.Whens {
			analyzeExpr(w.Cond, idx, report)
			analyzeExpr(w.Result, idx, report)
		}
	case *ast.BetweenExpr:
		analyzeExpr(ex.Expr, idx, report)
		analyzeExpr(ex.Lo, idx, report)
		analyzeExpr(ex.Hi, idx, report)
	case *ast.InExpr:
		analyzeExpr(ex.Expr, idx, report)
		for _, v := range ex.List {
			analyzeExpr(v, idx, report)
		}
		if ex.Subq != nil {
			for _, c := range ex.Subq.Columns {
				analyzeExpr(c.Expr, idx, report)
			}
			analyzeExpr(ex.Subq.Where, idx, report)
		}
	case *ast.IsNullExpr:
		analyzeExpr(ex.Expr, idx, report)
	case *ast.IsExpr:
		analyzeExpr(ex.Left, idx, report)
		analyzeExpr(ex.Right, idx, report)
	case *ast.ExistsExpr:
		if ex.Subq != nil {
			for _, c := range ex.Subq.Columns {
				analyzeExpr(c.Expr, idx, report)
			}
			analyzeExpr(ex.Subq.Where, idx, report)
		}
	case *ast.SubqueryExpr:
		if ex.Subq != nil {
			for _, c := range ex.Subq.Columns {
				analyzeExpr(c.Expr, idx, report)
			}
			analyzeExpr(ex.Subq.Where, idx, report)
		}
	case *ast.CastExpr:
		analyzeExpr(ex.Expr, idx, report)
	}
}

func hasSelectStar(cols []ast.SelectColumn) bool {
	for _, c := range cols {
		if c.Star {
			return true
		}
	}
	return false
}

func addFinding(report *AnalysisReport, sev FindingSeverity, code, problem, recommendation string, idx int) {
	msg := problem
	if recommendation != "" {
		msg += " Recommendation: " + recommendation
	}
	report.Findings = append(report.Findings, AnalysisFinding{
		Severity:       sev,
		Code:           code,
		Message:        msg,
		Problem:        problem,
		Recommendation: recommendation,
		StatementIndex: idx,
	})
}

func (r AnalysisReport) String() string {
	if !r.Valid {
		if len(r.Findings) == 0 {
			return "invalid SQL"
		}
		return fmt.Sprintf("invalid SQL: %s", r.Findings[0].Problem)
	}
	if len(r.Findings) == 0 {
		return fmt.Sprintf("valid SQL (%d statements), no findings", r.StatementCount)
	}
	return fmt.Sprintf("valid SQL (%d statements), %d finding(s)", r.StatementCount, len(r.Findings))
}
