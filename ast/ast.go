// Package ast defines the syntax tree produced by the parser: statements,
// clauses, and expressions for the SQLite dialect plus its small
// query-definition extensions (DEFINE QUERY, type aliases).
//
// Nodes are value types where possible to minimize pointer chasing and
// improve cache locality, mirroring the arena-allocated style of the
// underlying parser.
package ast

import "github.com/basilisk-labs/sqlitec/lexer"

// Range is a half-open byte range over the original source text.
type Range struct {
	Start int32
	End   int32
}

// NodeBase carries the two properties every syntax node must have: a
// stable identity (for inferrer side tables) and a source range. It is
// embedded by every concrete node type so NodeID()/Range() are promoted.
type NodeBase struct {
	ID   int64
	Span Range
}

func (n *NodeBase) NodeID() int64 { return n.ID }
func (n *NodeBase) Range() Range  { return n.Span }

// SetRange widens a node's span once all of its children have been parsed.
// Used by the parser to correct statement-level spans built incrementally.
func (n *NodeBase) SetRange(r Range) { n.Span = r }

// Node is implemented by every AST node.
type Node interface {
	NodeID() int64
	Range() Range
}

// Statement is a top-level SQL statement.
type Statement interface {
	Node
	stmtNode()
}

// Expr is a SQL expression.
type Expr interface {
	Node
	exprNode()
}

// ---- Expressions ----

// Ident is a (possibly quoted) identifier.
type Ident struct {
	NodeBase
	Raw      []byte // original bytes including quotes
	Unquoted string // resolved name
}

func (n *Ident) exprNode() {}

// QualifiedIdent is a dotted name, e.g. schema.table.column.
type QualifiedIdent struct {
	NodeBase
	Parts []*Ident
}

func (n *QualifiedIdent) exprNode() {}

// Name returns the unqualified (last) part, or "" if empty.
func (n *QualifiedIdent) Name() string {
	if len(n.Parts) == 0 {
		return ""
	}
	return n.Parts[len(n.Parts)-1].Unquoted
}

// Qualifier returns the portion before the last part, or "" if unqualified.
func (n *QualifiedIdent) Qualifier() string {
	if len(n.Parts) < 2 {
		return ""
	}
	return n.Parts[len(n.Parts)-2].Unquoted
}

// StarExpr represents *.
type StarExpr struct {
	NodeBase
}

func (n *StarExpr) exprNode() {}

// Literal is a numeric, string, blob, or boolean literal.
type Literal struct {
	NodeBase
	Raw  []byte
	Kind lexer.TokenType
}

func (n *Literal) exprNode() {}

// NullLit is NULL.
type NullLit struct{ NodeBase }

func (n *NullLit) exprNode() {}

// ParamKind distinguishes how a bind parameter was spelled in the source.
type ParamKind uint8

const (
	ParamPositional  ParamKind = iota // ?
	ParamNamedColon                   // :name
	ParamNamedAt                      // @name
	ParamNamedDollar                  // $seg1::seg2(suffix)
)

// Param is a bind parameter: ?, :name, @name, or $seg1::seg2(suffix).
// Name is the normalized text used for diagnostics and codegen; it is
// empty for ParamPositional. The inferrer gives such a parameter a
// synthetic name in the statement signature and leaves this field as is.
type Param struct {
	NodeBase
	Kind ParamKind
	Name string
	Raw  []byte
}

func (n *Param) exprNode() {}

// BinaryExpr is a binary operation: expr op expr.
type BinaryExpr struct {
	NodeBase
	Left, Right Expr
	Op          lexer.TokenType
}

func (n *BinaryExpr) exprNode() {}

// UnaryExpr is a prefix unary operation.
type UnaryExpr struct {
	NodeBase
	Expr Expr
	Op   lexer.TokenType
}

func (n *UnaryExpr) exprNode() {}

// PostfixExpr is a postfix unary operation, e.g. expr COLLATE name.
type PostfixExpr struct {
	NodeBase
	Expr    Expr
	Op      lexer.TokenType
	Operand string // collation/escape name when applicable
}

func (n *PostfixExpr) exprNode() {}

// FuncCall is a function invocation.
type FuncCall struct {
	NodeBase
	Name     *QualifiedIdent
	Args     []Expr
	Distinct bool
	Star     bool // COUNT(*)
}

func (n *FuncCall) exprNode() {}

// CaseExpr is CASE ... END.
type CaseExpr struct {
	NodeBase
	Operand Expr // nil for searched case
	Whens   []WhenClause
	Else    Expr
}
type WhenClause struct {
	Cond, Result Expr
}

func (n *CaseExpr) exprNode() {}

// BetweenExpr is expr [NOT] BETWEEN lo AND hi.
type BetweenExpr struct {
	NodeBase
	Expr   Expr
	Lo, Hi Expr
	Not    bool
}

func (n *BetweenExpr) exprNode() {}

// InExpr is expr [NOT] IN (list) or expr [NOT] IN (subquery).
type InExpr struct {
	NodeBase
	Expr Expr
	List []Expr
	Subq *SelectStmt
	Not  bool
}

func (n *InExpr) exprNode() {}

// LikeExpr is expr [NOT] LIKE|GLOB|MATCH|REGEXP pattern [ESCAPE e].
type LikeExpr struct {
	NodeBase
	Expr, Pattern, Escape Expr
	Op                    lexer.TokenType // LIKE, GLOB, MATCH, REGEXP
	Not                   bool
}

func (n *LikeExpr) exprNode() {}

// IsNullExpr is expr IS [NOT] NULL / ISNULL / NOTNULL.
type IsNullExpr struct {
	NodeBase
	Expr Expr
	Not  bool
}

func (n *IsNullExpr) exprNode() {}

// IsExpr is expr IS [NOT] [DISTINCT FROM] other.
type IsExpr struct {
	NodeBase
	Left, Right Expr
	Not         bool
	Distinct    bool
}

func (n *IsExpr) exprNode() {}

// ExistsExpr is [NOT] EXISTS (subquery).
type ExistsExpr struct {
	NodeBase
	Subq *SelectStmt
	Not  bool
}

func (n *ExistsExpr) exprNode() {}

// SubqueryExpr is a scalar subquery.
type SubqueryExpr struct {
	NodeBase
	Subq *SelectStmt
}

func (n *SubqueryExpr) exprNode() {}

// CastExpr is CAST(expr AS type).
type CastExpr struct {
	NodeBase
	Expr Expr
	Type *DataType
}

func (n *CastExpr) exprNode() {}

// ---- Data types ----

// DataType represents a SQL column type, e.g. TEXT, INTEGER(10), NUMERIC(5,2).
type DataType struct {
	Name      []byte
	Precision int
	Scale     int
	// End is the byte offset one past the type name's last consumed token
	// (including any precision/scale parenthesization), used by the
	// rewriter to locate a trailing "AS alias" suffix or FTS5 column
	// annotation to splice out.
	End int32
}

// ---- Table references ----

// TableRef is a table reference (FROM clause).
type TableRef interface {
	Node
	tableRefNode()
}

// SimpleTable is a named table with optional alias.
type SimpleTable struct {
	NodeBase
	Name  *QualifiedIdent
	Alias *Ident
}

func (n *SimpleTable) tableRefNode() {}

// SubqueryTable is (SELECT ...) [AS alias].
type SubqueryTable struct {
	NodeBase
	Subq  *SelectStmt
	Alias *Ident
}

func (n *SubqueryTable) tableRefNode() {}

// JoinTable represents a JOIN expression.
type JoinTable struct {
	NodeBase
	Left, Right TableRef
	Kind        JoinKind
	On          Expr
	Using       []*Ident
}
type JoinKind uint8

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
	NaturalJoin
)

func (n *JoinTable) tableRefNode() {}

// ---- DML statements ----

// SelectStmt represents a SELECT statement.
type SelectStmt struct {
	NodeBase
	With     *WithClause
	Distinct bool
	Columns  []SelectColumn
	From     []TableRef
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderByItem
	Limit    *LimitClause
	SetOp    *SetOperation // UNION/INTERSECT/EXCEPT
}

func (n *SelectStmt) stmtNode() {}
func (n *SelectStmt) exprNode() {} // a SELECT may appear as a scalar/row subquery

// WithClause is a Common Table Expression prefix.
type WithClause struct {
	Recursive bool
	CTEs      []CTE
}
type CTE struct {
	Name    *Ident
	Columns []*Ident
	Subq    *SelectStmt
}

// SelectColumn is a single column in a SELECT list.
type SelectColumn struct {
	Expr  Expr
	Alias *Ident
	Star  bool // bare * or table.*
}

// OrderByItem is a single ORDER BY key.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// LimitClause is LIMIT count [OFFSET skip].
type LimitClause struct {
	Count  Expr
	Offset Expr
}

// SetOperation chains SELECT statements.
type SetOperation struct {
	Op    SetOp
	All   bool
	Right *SelectStmt
}
type SetOp uint8

const (
	Union SetOp = iota
	Intersect
	Except
)

// ReturningClause is the RETURNING clause shared by INSERT/UPDATE/DELETE.
type ReturningClause struct {
	Columns []SelectColumn
}

// UpsertClause is SQLite's ON CONFLICT [(cols)] DO NOTHING | DO UPDATE SET ... [WHERE ...].
type UpsertClause struct {
	Target     []*Ident
	DoNothing  bool
	Assigns    []Assignment
	UpdateWhen Expr
}

// InsertStmt represents an INSERT statement.
type InsertStmt struct {
	NodeBase
	With      *WithClause
	Table     *QualifiedIdent
	Alias     *Ident
	Columns   []*Ident
	Values    [][]Expr // rows
	Select    *SelectStmt
	Default   bool // INSERT INTO t DEFAULT VALUES
	Upsert    *UpsertClause
	Returning *ReturningClause
	OrAction  string // OR REPLACE / OR IGNORE / OR ABORT / OR FAIL / OR ROLLBACK
}

func (n *InsertStmt) stmtNode() {}

// Assignment is col = expr.
type Assignment struct {
	Column *Ident
	Value  Expr
}

// UpdateStmt represents an UPDATE statement.
type UpdateStmt struct {
	NodeBase
	With      *WithClause
	Table     TableRef
	Set       []Assignment
	From      []TableRef
	Where     Expr
	Returning *ReturningClause
	OrAction  string
}

func (n *UpdateStmt) stmtNode() {}

// DeleteStmt represents a DELETE statement.
type DeleteStmt struct {
	NodeBase
	With      *WithClause
	Table     TableRef
	Where     Expr
	Returning *ReturningClause
}

func (n *DeleteStmt) stmtNode() {}

// ---- DDL statements ----

// ColumnDef defines a table column.
type ColumnDef struct {
	Name          *Ident
	Type          *DataType
	TypeAlias     *Ident // the "AS UUID" suffix in "TEXT AS UUID"
	NotNull       bool
	Default       Expr
	PrimaryKey    bool
	Autoincrement bool
	Unique        bool
	References    *ForeignKeyRef
	Check         Expr
	Collate       string
	Generated     *GeneratedCol
	Unindexed     bool // FTS5 column annotation
}

type GeneratedCol struct {
	Expr   Expr
	Stored bool // STORED vs VIRTUAL
}

// CreateTableStmt represents CREATE [TEMP] TABLE.
type CreateTableStmt struct {
	NodeBase
	Table        *QualifiedIdent
	Temporary    bool
	IfNotExists  bool
	Columns      []*ColumnDef
	Constraints  []*TableConstraint
	Select       *SelectStmt // CREATE TABLE ... AS SELECT
	WithoutRowid bool
}

func (n *CreateTableStmt) stmtNode() {}

// CreateVirtualTableStmt represents CREATE VIRTUAL TABLE ... USING module(args).
type CreateVirtualTableStmt struct {
	NodeBase
	Table       *QualifiedIdent
	IfNotExists bool
	Module      *Ident
	Columns     []*ColumnDef
	Args        []string // raw module arguments that are not column defs
}

func (n *CreateVirtualTableStmt) stmtNode() {}

// TableConstraint is a table-level constraint.
type TableConstraint struct {
	Name     *Ident
	Type     ConstraintType
	Columns  []*IndexColDef
	RefTable *QualifiedIdent
	RefCols  []*Ident
	OnDelete RefAction
	OnUpdate RefAction
	Check    Expr
}
type ConstraintType uint8

const (
	PrimaryKeyConstraint ConstraintType = iota
	UniqueConstraint
	ForeignKeyConstraint
	CheckConstraint
)

type RefAction uint8

const (
	NoAction RefAction = iota
	Restrict
	Cascade
	SetNull
	SetDefault
)

// ForeignKeyRef is a REFERENCES clause on a column.
type ForeignKeyRef struct {
	Table    *QualifiedIdent
	Columns  []*Ident
	OnDelete RefAction
	OnUpdate RefAction
}

// IndexColDef is a column in an index or constraint definition.
type IndexColDef struct {
	Name *Ident
	Desc bool
}

// AlterTableStmt represents ALTER TABLE.
type AlterTableStmt struct {
	NodeBase
	Table *QualifiedIdent
	Cmd   AlterCmd
}

func (n *AlterTableStmt) stmtNode() {}

type AlterCmd interface {
	Node
	alterCmdNode()
}

type AddColumnCmd struct {
	NodeBase
	Col *ColumnDef
}

func (c *AddColumnCmd) alterCmdNode() {}

type DropColumnCmd struct {
	NodeBase
	Name *Ident
}

func (c *DropColumnCmd) alterCmdNode() {}

type RenameTableCmd struct {
	NodeBase
	NewName *QualifiedIdent
}

func (c *RenameTableCmd) alterCmdNode() {}

type RenameColumnCmd struct {
	NodeBase
	OldName *Ident
	NewName *Ident
}

func (c *RenameColumnCmd) alterCmdNode() {}

// CreateIndexStmt represents CREATE [UNIQUE] INDEX.
type CreateIndexStmt struct {
	NodeBase
	Name        *Ident
	Table       *QualifiedIdent
	Columns     []*IndexColDef
	Unique      bool
	IfNotExists bool
	Where       Expr
}

func (n *CreateIndexStmt) stmtNode() {}

// DropTableStmt represents DROP TABLE.
type DropTableStmt struct {
	NodeBase
	Table    *QualifiedIdent
	IfExists bool
}

func (n *DropTableStmt) stmtNode() {}

// DropIndexStmt represents DROP INDEX.
type DropIndexStmt struct {
	NodeBase
	Name     *Ident
	IfExists bool
}

func (n *DropIndexStmt) stmtNode() {}

// CreateViewStmt represents CREATE [TEMP] VIEW.
type CreateViewStmt struct {
	NodeBase
	Name    *QualifiedIdent
	Columns []*Ident
	Select  *SelectStmt
}

func (n *CreateViewStmt) stmtNode() {}

// DropViewStmt represents DROP VIEW.
type DropViewStmt struct {
	NodeBase
	Name     *QualifiedIdent
	IfExists bool
}

func (n *DropViewStmt) stmtNode() {}

// CreateTriggerStmt represents CREATE TRIGGER. The trigger body is kept as
// opaque text; only the firing clause is modeled structurally since typing
// of trigger bodies is outside this system's scope.
type CreateTriggerStmt struct {
	NodeBase
	Name       *QualifiedIdent
	Timing     string // BEFORE, AFTER, INSTEAD OF
	Event      string // INSERT, UPDATE [OF cols], DELETE
	EventCols  []*Ident
	Table      *QualifiedIdent
	ForEachRow bool
	When       Expr
	BodyRaw    string
}

func (n *CreateTriggerStmt) stmtNode() {}

// DropTriggerStmt represents DROP TRIGGER.
type DropTriggerStmt struct {
	NodeBase
	Name     *QualifiedIdent
	IfExists bool
}

func (n *DropTriggerStmt) stmtNode() {}

// PragmaStmt represents PRAGMA name [= value] | PRAGMA name(value).
type PragmaStmt struct {
	NodeBase
	Name  *Ident
	Value Expr
}

func (n *PragmaStmt) stmtNode() {}

// TransactionStmt represents BEGIN/COMMIT/ROLLBACK/SAVEPOINT/RELEASE.
type TransactionStmt struct {
	NodeBase
	Action    string
	Savepoint *Ident
}

func (n *TransactionStmt) stmtNode() {}

// VacuumStmt represents VACUUM [schema-name].
type VacuumStmt struct {
	NodeBase
	Schema *Ident
}

func (n *VacuumStmt) stmtNode() {}

// ReindexStmt represents REINDEX [name].
type ReindexStmt struct {
	NodeBase
	Name *QualifiedIdent
}

func (n *ReindexStmt) stmtNode() {}

// ExplainStmt represents EXPLAIN [QUERY PLAN] stmt. The wrapped statement is
// still fully type-checked; EXPLAIN only changes how a host driver executes it.
type ExplainStmt struct {
	NodeBase
	QueryPlan bool
	Stmt      Statement
}

func (n *ExplainStmt) stmtNode() {}

// EmptyStmt is produced for a bare semicolon, or as a placeholder after a
// recovered parse error, so downstream passes can still run.
type EmptyStmt struct {
	NodeBase
}

func (n *EmptyStmt) stmtNode() {}

// ---- Query-definition extension ----

// DefineQueryStmt wraps a single DML statement with a name and optional
// overrides for the generated input/output type names:
//
//	DEFINE QUERY <name> [INPUT <Id>] [OUTPUT <Id>] AS <stmt>
type DefineQueryStmt struct {
	NodeBase
	Name   *Ident
	Input  *Ident
	Output *Ident
	Stmt   Statement
}

func (n *DefineQueryStmt) stmtNode() {}
