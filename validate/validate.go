// Package validate is a pure classifier answering, for each syntactic
// statement kind, whether it is legal to appear in a migration file versus
// a query file. It does not type-check; it only gates which statement
// kinds reach the rest of the pipeline in which context.
package validate

import "github.com/basilisk-labs/sqlitec/ast"

// Context distinguishes the two file roles the driver hands to the core.
type Context uint8

const (
	Migration Context = iota
	Query
)

// Legal reports whether stmt is allowed to appear when compiling in ctx.
func Legal(stmt ast.Statement, ctx Context) bool {
	switch stmt.(type) {
	case *ast.CreateTableStmt, *ast.CreateVirtualTableStmt, *ast.AlterTableStmt,
		*ast.DropTableStmt, *ast.CreateIndexStmt, *ast.DropIndexStmt,
		*ast.CreateViewStmt, *ast.DropViewStmt, *ast.CreateTriggerStmt,
		*ast.DropTriggerStmt:
		return ctx == Migration

	case *ast.SelectStmt, *ast.DefineQueryStmt:
		return ctx == Query

	case *ast.InsertStmt, *ast.UpdateStmt, *ast.DeleteStmt,
		*ast.PragmaStmt, *ast.EmptyStmt:
		return true

	case *ast.TransactionStmt, *ast.VacuumStmt, *ast.ReindexStmt:
		return false

	case *ast.ExplainStmt:
		return Legal(stmt.(*ast.ExplainStmt).Stmt, ctx)

	default:
		return false
	}
}

// Name returns a short, human-readable label for stmt's kind, used in
// "statement is not allowed" diagnostics.
func Name(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.CreateTableStmt:
		return "CREATE TABLE"
	case *ast.CreateVirtualTableStmt:
		return "CREATE VIRTUAL TABLE"
	case *ast.AlterTableStmt:
		return "ALTER TABLE"
	case *ast.DropTableStmt:
		return "DROP TABLE"
	case *ast.CreateIndexStmt:
		return "CREATE INDEX"
	case *ast.DropIndexStmt:
		return "DROP INDEX"
	case *ast.CreateViewStmt:
		return "CREATE VIEW"
	case *ast.DropViewStmt:
		return "DROP VIEW"
	case *ast.CreateTriggerStmt:
		return "CREATE TRIGGER"
	case *ast.DropTriggerStmt:
		return "DROP TRIGGER"
	case *ast.SelectStmt:
		return "SELECT"
	case *ast.InsertStmt:
		return "INSERT"
	case *ast.UpdateStmt:
		return "UPDATE"
	case *ast.DeleteStmt:
		return "DELETE"
	case *ast.PragmaStmt:
		return "PRAGMA"
	case *ast.DefineQueryStmt:
		return "DEFINE QUERY"
	case *ast.TransactionStmt:
		return "transaction control"
	case *ast.VacuumStmt:
		return "VACUUM"
	case *ast.ReindexStmt:
		return "REINDEX"
	case *ast.ExplainStmt:
		return Name(s.Stmt)
	case *ast.EmptyStmt:
		return "empty statement"
	default:
		return "statement"
	}
}
