// Package parser provides a high-performance, zero-allocation SQL parser.
// It uses a hand-rolled recursive descent strategy with a one-token lookahead
// and an arena allocator to minimise GC pressure.
package parser

import (
	"fmt"
	"strconv"
	"unsafe"

	"github.com/basilisk-labs/sqlitec/ast"
	"github.com/basilisk-labs/sqlitec/lexer"
)

// ParseError records a parse failure.
type ParseError struct {
	Msg  string
	Pos  int32
	Line uint32
	Col  uint32
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// Parser converts a stream of tokens into an AST.
// It maintains a 2-token lookahead for decisions that require peeking ahead.
type Parser struct {
	lex     *lexer.Lexer
	tok     lexer.Token // current (already consumed from lexer)
	peek    lexer.Token // one ahead
	hasPeek bool
	lastEnd int32 // end offset of the most recently consumed token

	// arena is a monotonic allocator that owns all AST node memory.
	// Reusing the arena across parse calls (after Reset) avoids GC spikes.
	arena arena
}

// New creates a Parser for the given SQL bytes.
func New(src []byte) *Parser {
	p := &Parser{}
	p.lex = lexer.New(src)
	p.tok = p.lex.Next()
	return p
}

// NewString creates a Parser for a SQL string.
func NewString(src string) *Parser {
	p := &Parser{}
	p.lex = lexer.NewString(src)
	p.tok = p.lex.Next()
	return p
}

// Reset reuses the parser with new input, reusing internal memory.
func (p *Parser) Reset(src []byte) {
	if p.lex == nil {
		p.lex = lexer.New(src)
	} else {
		p.lex.Reset(src)
	}
	p.tok = p.lex.Next()
	p.hasPeek = false
	p.arena.reset()
}

// ParseOne parses a single SQL statement.
func (p *Parser) ParseOne() (ast.Statement, error) {
	p.skipSemis()
	if p.tok.Type == lexer.EOF {
		return nil, nil
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	p.skipSemis()
	return stmt, nil
}

// ParseAll parses all statements separated by semicolons.
func (p *Parser) ParseAll() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		p.skipSemis()
		if p.tok.Type == lexer.EOF {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return stmts, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseStatement is the public entrypoint for parsing a single statement.
func ParseStatement(src string) (ast.Statement, error) {
	p := NewString(src)
	return p.ParseOne()
}

// ParseStatements parses multiple statements.
func ParseStatements(src string) ([]ast.Statement, error) {
	p := NewString(src)
	return p.ParseAll()
}

// ---- internal helpers ----

func (p *Parser) advance() lexer.Token {
	prev := p.tok
	p.lastEnd = prev.Pos + int32(len(prev.Raw))
	if p.hasPeek {
		p.tok = p.peek
		p.hasPeek = false
	} else {
		p.tok = p.lex.Next()
	}
	return prev
}

// nb builds a NodeBase spanning from start to the end of the most recently
// consumed token, with a freshly allocated stable identity. For nodes whose
// fields are filled in after construction (e.g. SELECT built clause by
// clause) callers at the top of parseStatement refresh the span once the
// whole statement has been consumed; see (*Parser).parseStatement.
func (p *Parser) nb(start int32) ast.NodeBase {
	end := p.lastEnd
	if end < start {
		end = start
	}
	return ast.NodeBase{ID: p.arena.newID(), Span: ast.Range{Start: start, End: end}}
}

type rangeSetter interface {
	SetRange(ast.Range)
}

func (p *Parser) peekToken() lexer.Token {
	if !p.hasPeek {
		p.peek = p.lex.Next()
		p.hasPeek = true
	}
	return p.peek
}

func (p *Parser) skipSemis() {
	for p.tok.Type == lexer.SEMICOLON {
		p.advance()
	}
}

func (p *Parser) is(typ lexer.TokenType) bool {
	return p.tok.Type == typ
}

func (p *Parser) isKeyword(kw lexer.TokenType) bool {
	return p.tok.Type == kw
}

func (p *Parser) eat(typ lexer.TokenType) (lexer.Token, error) {
	if p.tok.Type != typ {
		return p.tok, p.errorf("expected %s, got %s (%q)", typ, p.tok.Type, p.tok.Raw)
	}
	return p.advance(), nil
}

func (p *Parser) eatKeyword(kw lexer.TokenType) error {
	if p.tok.Type != kw {
		return p.errorf("expected keyword %s, got %q", kw, p.tok.Raw)
	}
	p.advance()
	return nil
}

func (p *Parser) tryEat(typ lexer.TokenType) bool {
	if p.tok.Type == typ {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) tryEatKeyword(kw lexer.TokenType) bool {
	if p.tok.Type == kw {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{
		Msg:  fmt.Sprintf(format, args...),
		Pos:  p.tok.Pos,
		Line: p.tok.Line,
		Col:  p.tok.Col,
	}
}

func arenaNode[T any](a *arena, v T) *T {
	n := (*T)(a.allocPtr(unsafe.Sizeof(v)))
	*n = v
	return n
}

// ---- statement dispatch ----

// parseStatement parses one statement and widens its recorded span to cover
// every token consumed, since most statement node types are constructed
// before their clauses are known and mutated in place afterward.
func (p *Parser) parseStatement() (ast.Statement, error) {
	start := p.tok.Pos
	stmt, err := p.dispatchStatement()
	if err != nil {
		return nil, err
	}
	if stmt != nil {
		if rs, ok := stmt.(rangeSetter); ok {
			rs.SetRange(ast.Range{Start: start, End: p.lastEnd})
		}
	}
	return stmt, nil
}

func (p *Parser) dispatchStatement() (ast.Statement, error) {
	switch p.tok.Type {
	case lexer.SELECT:
		return p.parseSelect()
	case lexer.WITH:
		return p.parseWithStatement()
	case lexer.INSERT:
		return p.parseInsert()
	case lexer.REPLACE:
		return p.parseReplace()
	case lexer.UPDATE:
		return p.parseUpdate()
	case lexer.DELETE:
		return p.parseDelete()
	case lexer.CREATE:
		return p.parseCreate()
	case lexer.ALTER:
		return p.parseAlter()
	case lexer.DROP:
		return p.parseDrop()
	case lexer.PRAGMA:
		return p.parsePragma()
	case lexer.VACUUM:
		return p.parseVacuum()
	case lexer.REINDEX:
		return p.parseReindex()
	case lexer.BEGIN:
		return p.parseTransactionStmt("BEGIN")
	case lexer.COMMIT:
		return p.parseTransactionStmt("COMMIT")
	case lexer.SAVEPOINT:
		return p.parseSavepoint()
	case lexer.RELEASE:
		return p.parseRelease()
	case lexer.ROLLBACK:
		return p.parseRollback()
	case lexer.EXPLAIN:
		return p.parseExplain()
	case lexer.DEFINE:
		return p.parseDefineQuery()
	case lexer.IDENT:
		return p.parseIdentLedStatement()
	default:
		return nil, p.errorf("unexpected token %q at start of statement", p.tok.Raw)
	}
}

// parsePragma parses PRAGMA name [= value] | PRAGMA name(value).
func (p *Parser) parsePragma() (*ast.PragmaStmt, error) {
	pos := p.tok.Pos
	p.advance() // PRAGMA
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.PragmaStmt{Name: name})
	switch p.tok.Type {
	case lexer.EQ:
		p.advance()
		v, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Value = v
	case lexer.LPAREN:
		p.advance()
		v, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Value = v
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// parseVacuum parses VACUUM [schema-name].
func (p *Parser) parseVacuum() (*ast.VacuumStmt, error) {
	pos := p.tok.Pos
	p.advance() // VACUUM
	stmt := arenaNode(&p.arena, ast.VacuumStmt{})
	if p.tok.Type == lexer.IDENT {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		stmt.Schema = name
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// parseReindex parses REINDEX [name].
func (p *Parser) parseReindex() (*ast.ReindexStmt, error) {
	pos := p.tok.Pos
	p.advance() // REINDEX
	stmt := arenaNode(&p.arena, ast.ReindexStmt{})
	if p.tok.Type == lexer.IDENT {
		name, err := p.parseQualifiedIdent()
		if err != nil {
			return nil, err
		}
		stmt.Name = name
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// parseTransactionStmt parses BEGIN [DEFERRED|IMMEDIATE|EXCLUSIVE] [TRANSACTION]
// and COMMIT|END [TRANSACTION].
func (p *Parser) parseTransactionStmt(action string) (*ast.TransactionStmt, error) {
	pos := p.tok.Pos
	p.advance() // BEGIN / COMMIT
	for p.tok.Type == lexer.DEFERRED || p.tok.Type == lexer.IDENT || p.tok.Type == lexer.TRANSACTION {
		p.advance()
	}
	stmt := arenaNode(&p.arena, ast.TransactionStmt{Action: action})
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// parseRollback parses ROLLBACK [TRANSACTION] [TO [SAVEPOINT] name].
func (p *Parser) parseRollback() (*ast.TransactionStmt, error) {
	pos := p.tok.Pos
	p.advance() // ROLLBACK
	p.tryEatKeyword(lexer.TRANSACTION)
	stmt := arenaNode(&p.arena, ast.TransactionStmt{Action: "ROLLBACK"})
	if p.tryEatKeyword(lexer.TO) {
		p.tryEatKeyword(lexer.SAVEPOINT)
		sp, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		stmt.Savepoint = sp
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

func (p *Parser) parseSavepoint() (*ast.TransactionStmt, error) {
	pos := p.tok.Pos
	p.advance() // SAVEPOINT
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.TransactionStmt{Action: "SAVEPOINT", Savepoint: name})
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

func (p *Parser) parseRelease() (*ast.TransactionStmt, error) {
	pos := p.tok.Pos
	p.advance() // RELEASE
	p.tryEatKeyword(lexer.SAVEPOINT)
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.TransactionStmt{Action: "RELEASE", Savepoint: name})
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// parseDefineQuery parses:
//
//	DEFINE QUERY <name> [INPUT <Id>] [OUTPUT <Id>] AS <stmt>
func (p *Parser) parseDefineQuery() (*ast.DefineQueryStmt, error) {
	pos := p.tok.Pos
	p.advance() // DEFINE
	if err := p.eatKeyword(lexer.QUERY); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.DefineQueryStmt{Name: name})
	if p.tryEatKeyword(lexer.INPUT) {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		stmt.Input = id
	}
	if p.tryEatKeyword(lexer.OUTPUT) {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		stmt.Output = id
	}
	if err := p.eatKeyword(lexer.AS); err != nil {
		return nil, err
	}
	inner, err := p.dispatchStatement()
	if err != nil {
		return nil, err
	}
	stmt.Stmt = inner
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

func (p *Parser) parseWithStatement() (ast.Statement, error) {
	with, err := p.parseWith()
	if err != nil {
		return nil, err
	}
	switch p.tok.Type {
	case lexer.SELECT:
		stmt, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.With = with
		return stmt, nil
	case lexer.INSERT:
		stmt, err := p.parseInsert()
		if err != nil {
			return nil, err
		}
		stmt.With = with
		return stmt, nil
	case lexer.REPLACE:
		stmt, err := p.parseReplace()
		if err != nil {
			return nil, err
		}
		stmt.With = with
		return stmt, nil
	case lexer.UPDATE:
		stmt, err := p.parseUpdate()
		if err != nil {
			return nil, err
		}
		stmt.With = with
		return stmt, nil
	case lexer.DELETE:
		stmt, err := p.parseDelete()
		if err != nil {
			return nil, err
		}
		stmt.With = with
		return stmt, nil
	default:
		return nil, p.errorf("WITH must be followed by SELECT/INSERT/UPDATE/DELETE, got %q", p.tok.Raw)
	}
}

// parseIdentLedStatement reports a statement that begins with a bare
// identifier as a parse error; every supported statement starts with a
// keyword token.
func (p *Parser) parseIdentLedStatement() (ast.Statement, error) {
	return nil, p.errorf("unexpected token %q at start of statement", p.tok.Raw)
}

// ---- SELECT ----

func (p *Parser) parseSelect() (*ast.SelectStmt, error) {
	pos := p.tok.Pos
	var with *ast.WithClause
	var err error
	if p.is(lexer.WITH) {
		with, err = p.parseWith()
		if err != nil {
			return nil, err
		}
	}
	stmt, err := p.parseSelectCore(pos)
	if err != nil {
		return nil, err
	}
	stmt.With = with

	// Handle UNION / INTERSECT / EXCEPT
	for {
		var op ast.SetOp
		switch p.tok.Type {
		case lexer.UNION:
			op = ast.Union
		case lexer.INTERSECT:
			op = ast.Intersect
		case lexer.EXCEPT:
			op = ast.Except
		default:
			return stmt, nil
		}
		p.advance()
		all := p.tryEatKeyword(lexer.ALL)
		right, err := p.parseSelectCore(p.tok.Pos)
		if err != nil {
			return nil, err
		}
		cur := stmt
		for cur.SetOp != nil {
			cur = cur.SetOp.Right
		}
		cur.SetOp = arenaNode(&p.arena, ast.SetOperation{Op: op, All: all, Right: right})
	}
}

func (p *Parser) parseSelectCore(pos int32) (*ast.SelectStmt, error) {
	if err := p.eatKeyword(lexer.SELECT); err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.SelectStmt{NodeBase: p.nb(pos)})
	stmt.Distinct = p.tryEatKeyword(lexer.DISTINCT)
	_ = p.tryEatKeyword(lexer.ALL)

	// Column list
	cols, err := p.parseSelectColumns()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	// FROM
	if p.tryEatKeyword(lexer.FROM) {
		refs, err := p.parseTableRefs()
		if err != nil {
			return nil, err
		}
		stmt.From = refs
	}

	// WHERE
	if p.tryEatKeyword(lexer.WHERE) {
		where, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	// GROUP BY
	if p.is(lexer.GROUP) && p.peekToken().Type == lexer.BY {
		p.advance()
		p.advance()
		grp, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = grp
	}

	// HAVING
	if p.tryEatKeyword(lexer.HAVING) {
		hav, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		stmt.Having = hav
	}

	// ORDER BY
	if p.is(lexer.ORDER) && p.peekToken().Type == lexer.BY {
		p.advance()
		p.advance()
		ord, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = ord
	}

	// LIMIT / OFFSET
	if p.tryEatKeyword(lexer.LIMIT) {
		lim, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		stmt.Limit = lim
	}

	return stmt, nil
}

func (p *Parser) parseWith() (*ast.WithClause, error) {
	p.advance() // WITH
	w := arenaNode(&p.arena, ast.WithClause{})
	w.Recursive = p.tryEatKeyword(lexer.RECURSIVE)
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		cte := ast.CTE{Name: name}
		if p.is(lexer.LPAREN) && p.peekToken().Type == lexer.IDENT {
			// column list
			p.advance()
			cols, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			cte.Columns = cols
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
		}
		if err := p.eatKeyword(lexer.AS); err != nil {
			return nil, err
		}
		if _, err := p.eat(lexer.LPAREN); err != nil {
			return nil, err
		}
		sq, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		cte.Subq = sq
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
		w.CTEs = arenaAppend(&p.arena, w.CTEs, cte)
		if !p.tryEat(lexer.COMMA) {
			break
		}
	}
	return w, nil
}

func (p *Parser) parseSelectColumns() ([]ast.SelectColumn, error) {
	var cols []ast.SelectColumn
	for {
		col, err := p.parseSelectColumn()
		if err != nil {
			return nil, err
		}
		cols = arenaAppend(&p.arena, cols, col)
		if !p.tryEat(lexer.COMMA) {
			break
		}
	}
	return cols, nil
}

func (p *Parser) parseSelectColumn() (ast.SelectColumn, error) {
	if p.is(lexer.STAR) {
		p.advance()
		return ast.SelectColumn{Star: true, Expr: arenaNode(&p.arena, ast.StarExpr{NodeBase: p.nb(p.tok.Pos)})}, nil
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return ast.SelectColumn{}, err
	}
	col := ast.SelectColumn{Expr: expr}
	if qi, ok := expr.(*ast.QualifiedIdent); ok && qi.Name() == "*" {
		col.Star = true
		return col, nil
	}
	if p.tryEatKeyword(lexer.AS) || p.is(lexer.IDENT) || p.is(lexer.BACKTICK) || p.is(lexer.DQUOTE) {
		alias, err := p.parseIdent()
		if err != nil {
			return ast.SelectColumn{}, err
		}
		col.Alias = alias
	}
	return col, nil
}

// ---- Table references ----

func (p *Parser) parseTableRefs() ([]ast.TableRef, error) {
	ref, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	var refs []ast.TableRef
	refs = arenaAppend(&p.arena, refs, ref)
	for p.tryEat(lexer.COMMA) {
		ref, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		refs = arenaAppend(&p.arena, refs, ref)
	}
	return refs, nil
}

func (p *Parser) parseTableRef() (ast.TableRef, error) {
	var left ast.TableRef
	var err error
	if p.is(lexer.LPAREN) {
		p.advance()
		if p.is(lexer.SELECT) || p.is(lexer.WITH) {
			sq, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
			sub := arenaNode(&p.arena, ast.SubqueryTable{Subq: sq, NodeBase: p.nb(sq.Range().Start)})
			sub.Alias, _ = p.parseOptionalAlias()
			left = sub
		} else {
			// Parenthesized join
			inner, err := p.parseTableRef()
			if err != nil {
				return nil, err
			}
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
			left = inner
		}
	} else {
		name, err := p.parseQualifiedIdent()
		if err != nil {
			return nil, err
		}
		st := arenaNode(&p.arena, ast.SimpleTable{Name: name})
		st.Alias, _ = p.parseOptionalAlias()
		left = st
	}

	// JOIN chains
	for {
		left, err = p.parseJoin(left)
		if err != nil {
			return nil, err
		}
		if _, ok := left.(*ast.JoinTable); !ok {
			break
		}
		// keep chaining
		switch p.tok.Type {
		case lexer.INNER, lexer.LEFT, lexer.RIGHT, lexer.FULL, lexer.CROSS, lexer.NATURAL, lexer.JOIN:
			continue
		}
		break
	}
	return left, nil
}

func (p *Parser) parseJoin(left ast.TableRef) (ast.TableRef, error) {
	var kind ast.JoinKind
	switch p.tok.Type {
	case lexer.INNER:
		p.advance()
		if err := p.eatKeyword(lexer.JOIN); err != nil {
			return nil, err
		}
		kind = ast.InnerJoin
	case lexer.LEFT:
		p.advance()
		p.tryEatKeyword(lexer.OUTER)
		if err := p.eatKeyword(lexer.JOIN); err != nil {
			return nil, err
		}
		kind = ast.LeftJoin
	case lexer.RIGHT:
		p.advance()
		p.tryEatKeyword(lexer.OUTER)
		if err := p.eatKeyword(lexer.JOIN); err != nil {
			return nil, err
		}
		kind = ast.RightJoin
	case lexer.FULL:
		p.advance()
		p.tryEatKeyword(lexer.OUTER)
		if err := p.eatKeyword(lexer.JOIN); err != nil {
			return nil, err
		}
		kind = ast.FullJoin
	case lexer.CROSS:
		p.advance()
		if err := p.eatKeyword(lexer.JOIN); err != nil {
			return nil, err
		}
		kind = ast.CrossJoin
	case lexer.NATURAL:
		p.advance()
		if err := p.eatKeyword(lexer.JOIN); err != nil {
			return nil, err
		}
		kind = ast.NaturalJoin
	case lexer.JOIN:
		p.advance()
		kind = ast.InnerJoin
	default:
		return left, nil
	}
	pos := p.tok.Pos
	right, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	jt := arenaNode(&p.arena, ast.JoinTable{Left: left, Right: right, Kind: kind, NodeBase: p.nb(pos)})
	if p.tryEatKeyword(lexer.ON) {
		cond, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		jt.On = cond
	} else if p.tryEatKeyword(lexer.USING) {
		if _, err := p.eat(lexer.LPAREN); err != nil {
			return nil, err
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		jt.Using = cols
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	return jt, nil
}

func (p *Parser) parseOptionalAlias() (*ast.Ident, error) {
	p.tryEatKeyword(lexer.AS)
	if p.is(lexer.IDENT) || p.is(lexer.BACKTICK) || p.is(lexer.DQUOTE) {
		return p.parseIdent()
	}
	return nil, nil
}

// ---- Expression parsing (Pratt / top-down operator precedence) ----

type precedence int

// SQLite's operator precedence, lowest to highest binding. Each named
// level corresponds to one row of the table in the SQLite expression
// grammar; COLLATE and unary +/-/~ bind tightest and are handled
// outside tokenPrec (COLLATE as an explicit postfix case, unary forms
// in parseUnary). Unary NOT is also parsed in parseUnary, but its operand
// extends over every operator that binds tighter than precNot.
const (
	precLowest     precedence = 0
	precOr         precedence = 1  // OR
	precAnd        precedence = 2  // AND
	precNot        precedence = 3  // unary NOT (prefix, see parseUnary)
	precEquality   precedence = 4  // = == != <> IS IN LIKE GLOB MATCH REGEXP family
	precComparison precedence = 5  // < <= > >=
	precEscape     precedence = 6  // floor for LIKE pattern / ESCAPE operand
	precBitwise    precedence = 7  // << >> & |
	precAddSub     precedence = 8  // + -
	precMulDiv     precedence = 9  // * / %
	precConcat     precedence = 10 // || -> ->>
	precCollate    precedence = 11 // postfix COLLATE
	precUnary      precedence = 12 // prefix +, -, ~ (see parseUnary)
)

func tokenPrec(t lexer.TokenType) (precedence, bool) {
	switch t {
	case lexer.OR:
		return precOr, true
	case lexer.AND:
		return precAnd, true
	case lexer.EQ, lexer.NEQ:
		return precEquality, true
	case lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		return precComparison, true
	case lexer.PIPE, lexer.AMPERSAND, lexer.LSHIFT, lexer.RSHIFT:
		return precBitwise, true
	case lexer.PLUS, lexer.MINUS:
		return precAddSub, true
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return precMulDiv, true
	case lexer.DBAR, lexer.ARROW, lexer.DARROW2:
		return precConcat, true
	}
	return 0, false
}

func (p *Parser) parseExpr(minPrec precedence) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		// Infix / postfix operators
		switch p.tok.Type {
		case lexer.IS:
			pos := p.tok.Pos
			p.advance()
			not := p.tryEatKeyword(lexer.NOT)
			if p.is(lexer.NULL_KW) {
				p.advance()
				left = arenaNode(&p.arena, ast.IsNullExpr{Expr: left, Not: not, NodeBase: p.nb(pos)})
				continue
			}
			distinct := p.tryEatKeyword(lexer.DISTINCT)
			if distinct {
				if err := p.eatKeyword(lexer.FROM); err != nil {
					return nil, err
				}
			}
			right, err := p.parseExpr(precEquality)
			if err != nil {
				return nil, err
			}
			left = arenaNode(&p.arena, ast.IsExpr{Left: left, Right: right, Not: not, Distinct: distinct, NodeBase: p.nb(pos)})
			continue

		case lexer.ISNULL:
			pos := p.tok.Pos
			p.advance()
			left = arenaNode(&p.arena, ast.IsNullExpr{Expr: left, NodeBase: p.nb(pos)})
			continue

		case lexer.NOTNULL:
			pos := p.tok.Pos
			p.advance()
			left = arenaNode(&p.arena, ast.IsNullExpr{Expr: left, Not: true, NodeBase: p.nb(pos)})
			continue

		case lexer.COLLATE:
			pos := p.tok.Pos
			p.advance()
			name := p.tok.Raw
			p.advance()
			left = arenaNode(&p.arena, ast.PostfixExpr{Expr: left, Op: lexer.COLLATE, Operand: string(name), NodeBase: p.nb(pos)})
			continue

		case lexer.NOT:
			pos := p.tok.Pos
			switch p.peekToken().Type {
			case lexer.LIKE:
				p.advance()
				p.advance()
				right, err := p.parseExpr(precEscape)
				if err != nil {
					return nil, err
				}
				like := arenaNode(&p.arena, ast.LikeExpr{Expr: left, Op: lexer.LIKE, Pattern: right, Not: true, NodeBase: p.nb(pos)})
				if p.tryEatKeyword(lexer.ESCAPE) {
					esc, err := p.parseExpr(precEscape)
					if err != nil {
						return nil, err
					}
					like.Escape = esc
				}
				left = like
				continue
			case lexer.IN:
				p.advance()
				p.advance()
				inExpr, err := p.parseInRHS(left, pos, true)
				if err != nil {
					return nil, err
				}
				left = inExpr
				continue
			case lexer.BETWEEN:
				p.advance()
				p.advance()
				lo, err := p.parseExpr(precAnd + 1)
				if err != nil {
					return nil, err
				}
				if err := p.eatKeyword(lexer.AND); err != nil {
					return nil, err
				}
				hi, err := p.parseExpr(precAnd + 1)
				if err != nil {
					return nil, err
				}
				left = arenaNode(&p.arena, ast.BetweenExpr{Expr: left, Lo: lo, Hi: hi, Not: true, NodeBase: p.nb(pos)})
				continue
			}

		case lexer.LIKE:
			pos := p.tok.Pos
			p.advance()
			right, err := p.parseExpr(precEscape)
			if err != nil {
				return nil, err
			}
			like := arenaNode(&p.arena, ast.LikeExpr{Expr: left, Op: lexer.LIKE, Pattern: right, NodeBase: p.nb(pos)})
			if p.tryEatKeyword(lexer.ESCAPE) {
				esc, err := p.parseExpr(precEscape)
				if err != nil {
					return nil, err
				}
				like.Escape = esc
			}
			left = like
			continue

		case lexer.IN:
			pos := p.tok.Pos
			p.advance()
			inExpr, err := p.parseInRHS(left, pos, false)
			if err != nil {
				return nil, err
			}
			left = inExpr
			continue

		case lexer.BETWEEN:
			pos := p.tok.Pos
			p.advance()
			lo, err := p.parseExpr(precAnd + 1)
			if err != nil {
				return nil, err
			}
			if err := p.eatKeyword(lexer.AND); err != nil {
				return nil, err
			}
			hi, err := p.parseExpr(precAnd + 1)
			if err != nil {
				return nil, err
			}
			left = arenaNode(&p.arena, ast.BetweenExpr{Expr: left, Lo: lo, Hi: hi, NodeBase: p.nb(pos)})
			continue
		}

		// Standard binary operators
		prec, ok := tokenPrec(p.tok.Type)
		if !ok || prec <= minPrec {
			break
		}
		op := p.tok.Type
		pos := p.tok.Pos
		p.advance()
		right, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}
		left = arenaNode(&p.arena, ast.BinaryExpr{Left: left, Right: right, Op: op, NodeBase: p.nb(pos)})
	}
	return left, nil
}

func (p *Parser) parseInRHS(left ast.Expr, pos int32, not bool) (ast.Expr, error) {
	// "IN :param" (no parens) binds the whole parameter as a row-valued
	// list; the rewriter emits it as its own segment and the host expands
	// it to "(?, ?, ...)" at execution time.
	if p.is(lexer.NAMEDPARAM) || p.is(lexer.QUESTION) {
		t := p.advance()
		kind, name := classifyParam(t.Raw)
		param := arenaNode(&p.arena, ast.Param{Raw: t.Raw, Kind: kind, Name: name, NodeBase: p.nb(t.Pos)})
		return arenaNode(&p.arena, ast.InExpr{Expr: left, Not: not, List: []ast.Expr{param}, NodeBase: p.nb(pos)}), nil
	}
	if _, err := p.eat(lexer.LPAREN); err != nil {
		return nil, err
	}
	inExpr := arenaNode(&p.arena, ast.InExpr{Expr: left, Not: not, NodeBase: p.nb(pos)})
	if p.is(lexer.SELECT) || p.is(lexer.WITH) {
		sq, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		inExpr.Subq = sq
	} else {
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		inExpr.List = list
	}
	if _, err := p.eat(lexer.RPAREN); err != nil {
		return nil, err
	}
	return inExpr, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.tok.Type {
	case lexer.MINUS:
		pos := p.tok.Pos
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return arenaNode(&p.arena, ast.UnaryExpr{Expr: expr, Op: lexer.MINUS, NodeBase: p.nb(pos)}), nil
	case lexer.PLUS:
		pos := p.tok.Pos
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return arenaNode(&p.arena, ast.UnaryExpr{Expr: expr, Op: lexer.PLUS, NodeBase: p.nb(pos)}), nil
	case lexer.TILDE:
		pos := p.tok.Pos
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return arenaNode(&p.arena, ast.UnaryExpr{Expr: expr, Op: lexer.TILDE, NodeBase: p.nb(pos)}), nil
	case lexer.NOT:
		pos := p.tok.Pos
		p.advance()
		expr, err := p.parseExpr(precNot)
		if err != nil {
			return nil, err
		}
		return arenaNode(&p.arena, ast.UnaryExpr{Expr: expr, Op: lexer.NOT, NodeBase: p.nb(pos)}), nil
	case lexer.EXISTS:
		pos := p.tok.Pos
		p.advance()
		if _, err := p.eat(lexer.LPAREN); err != nil {
			return nil, err
		}
		sq, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
		return arenaNode(&p.arena, ast.ExistsExpr{Subq: sq, NodeBase: p.nb(pos)}), nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.tok.Type {
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.HEXLIT, lexer.BITLIT:
		t := p.advance()
		return arenaNode(&p.arena, ast.Literal{Raw: t.Raw, Kind: t.Type, NodeBase: p.nb(t.Pos)}), nil

	case lexer.NULL_KW:
		t := p.advance()
		return arenaNode(&p.arena, ast.NullLit{NodeBase: p.nb(t.Pos)}), nil

	case lexer.TRUE_KW, lexer.FALSE_KW:
		t := p.advance()
		return arenaNode(&p.arena, ast.Literal{Raw: t.Raw, Kind: t.Type, NodeBase: p.nb(t.Pos)}), nil

	case lexer.NAMEDPARAM, lexer.QUESTION:
		t := p.advance()
		kind, name := classifyParam(t.Raw)
		return arenaNode(&p.arena, ast.Param{Raw: t.Raw, Kind: kind, Name: name, NodeBase: p.nb(t.Pos)}), nil

	case lexer.STAR:
		t := p.advance()
		return arenaNode(&p.arena, ast.StarExpr{NodeBase: p.nb(t.Pos)}), nil

	case lexer.LPAREN:
		p.advance()
		if p.is(lexer.SELECT) || p.is(lexer.WITH) {
			sq, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
			return arenaNode(&p.arena, ast.SubqueryExpr{Subq: sq, NodeBase: p.nb(sq.Range().Start)}), nil
		}
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case lexer.CASE:
		return p.parseCaseExpr()

	case lexer.CAST:
		return p.parseCast()

	case lexer.IDENT, lexer.BACKTICK, lexer.DQUOTE:
		// Could be a function call, qualified ident, or plain ident.
		name, err := p.parseQualifiedIdent()
		if err != nil {
			return nil, err
		}
		if p.is(lexer.LPAREN) {
			return p.parseFuncCall(name)
		}
		if len(name.Parts) == 1 {
			return name.Parts[0], nil
		}
		return name, nil

	// Handle keywords that can be used as function names (e.g. REPLACE, LEFT...)
	case lexer.REPLACE, lexer.LEFT, lexer.RIGHT, lexer.INSERT:
		part := arenaNode(&p.arena, ast.Ident{Raw: p.tok.Raw, Unquoted: lowerASCIIStringArena(&p.arena, p.tok.Raw), NodeBase: p.nb(p.tok.Pos)})
		var parts []*ast.Ident
		parts = arenaAppend(&p.arena, parts, part)
		name := arenaNode(&p.arena, ast.QualifiedIdent{Parts: parts})
		p.advance()
		if p.is(lexer.LPAREN) {
			return p.parseFuncCall(name)
		}
		return name.Parts[0], nil
	}

	return nil, p.errorf("unexpected token %q in expression", p.tok.Raw)
}

func (p *Parser) parseCaseExpr() (ast.Expr, error) {
	pos := p.tok.Pos
	p.advance() // CASE
	c := arenaNode(&p.arena, ast.CaseExpr{NodeBase: p.nb(pos)})
	// optional operand
	if !p.is(lexer.WHEN) {
		op, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		c.Operand = op
	}
	for p.tryEatKeyword(lexer.WHEN) {
		cond, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.eatKeyword(lexer.THEN); err != nil {
			return nil, err
		}
		res, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		c.Whens = arenaAppend(&p.arena, c.Whens, ast.WhenClause{Cond: cond, Result: res})
	}
	if p.tryEatKeyword(lexer.ELSE) {
		el, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		c.Else = el
	}
	if err := p.eatKeyword(lexer.END); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) parseCast() (ast.Expr, error) {
	pos := p.tok.Pos
	p.advance() // CAST
	if _, err := p.eat(lexer.LPAREN); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.eatKeyword(lexer.AS); err != nil {
		return nil, err
	}
	dt, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(lexer.RPAREN); err != nil {
		return nil, err
	}
	return arenaNode(&p.arena, ast.CastExpr{Expr: expr, Type: dt, NodeBase: p.nb(pos)}), nil
}

func (p *Parser) parseFuncCall(name *ast.QualifiedIdent) (*ast.FuncCall, error) {
	pos := p.tok.Pos
	p.advance() // (
	fc := arenaNode(&p.arena, ast.FuncCall{Name: name, NodeBase: p.nb(pos)})
	if p.is(lexer.RPAREN) {
		p.advance()
		return fc, nil
	}
	if p.is(lexer.STAR) {
		p.advance()
		fc.Star = true
	} else {
		fc.Distinct = p.tryEatKeyword(lexer.DISTINCT)
		args, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		fc.Args = args
	}
	if _, err := p.eat(lexer.RPAREN); err != nil {
		return nil, err
	}
	return fc, nil
}

func (p *Parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	for {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		exprs = arenaAppend(&p.arena, exprs, e)
		if !p.tryEat(lexer.COMMA) {
			break
		}
	}
	return exprs, nil
}

func (p *Parser) parseOrderBy() ([]ast.OrderByItem, error) {
	var items []ast.OrderByItem
	for {
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		item := ast.OrderByItem{Expr: expr}
		if p.tryEatKeyword(lexer.DESC) {
			item.Desc = true
		} else {
			p.tryEatKeyword(lexer.ASC)
		}
		items = arenaAppend(&p.arena, items, item)
		if !p.tryEat(lexer.COMMA) {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseLimit() (*ast.LimitClause, error) {
	count, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	lim := arenaNode(&p.arena, ast.LimitClause{Count: count})
	if p.tryEatKeyword(lexer.OFFSET) {
		off, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		lim.Offset = off
	} else if p.tryEat(lexer.COMMA) {
		// MySQL: LIMIT offset, count
		off, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		lim.Offset = lim.Count
		lim.Count = off
	}
	return lim, nil
}

// ---- INSERT ----

func (p *Parser) parseInsert() (*ast.InsertStmt, error) {
	pos := p.tok.Pos
	p.advance() // INSERT
	stmt := arenaNode(&p.arena, ast.InsertStmt{})
	if p.tryEatKeyword(lexer.OR) {
		stmt.OrAction = string(p.tok.Raw)
		p.advance()
	}
	if err := p.eatKeyword(lexer.INTO); err != nil {
		return nil, err
	}
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = name
	if alias, err := p.parseOptionalAlias(); err == nil {
		stmt.Alias = alias
	}

	if p.is(lexer.LPAREN) {
		p.advance()
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	}

	switch {
	case p.is(lexer.SELECT) || p.is(lexer.WITH):
		sq, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.Select = sq
	case p.tryEatKeyword(lexer.DEFAULT):
		if err := p.eatKeyword(lexer.VALUES); err != nil {
			return nil, err
		}
		stmt.Default = true
	case p.tryEatKeyword(lexer.VALUES):
		for {
			if _, err := p.eat(lexer.LPAREN); err != nil {
				return nil, err
			}
			row, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			stmt.Values = arenaAppend(&p.arena, stmt.Values, row)
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
			if !p.tryEat(lexer.COMMA) {
				break
			}
		}
	}

	if p.tryEatKeyword(lexer.ON) {
		if err := p.eatKeyword(lexer.CONFLICT); err != nil {
			return nil, err
		}
		up := &ast.UpsertClause{}
		if p.is(lexer.LPAREN) {
			p.advance()
			cols, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			up.Target = cols
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
		}
		if err := p.eatKeyword(lexer.DO); err != nil {
			return nil, err
		}
		if p.tryEatKeyword(lexer.NOTHING) {
			up.DoNothing = true
		} else {
			if err := p.eatKeyword(lexer.UPDATE); err != nil {
				return nil, err
			}
			if err := p.eatKeyword(lexer.SET); err != nil {
				return nil, err
			}
			asgn, err := p.parseAssignments()
			if err != nil {
				return nil, err
			}
			up.Assigns = asgn
			if p.tryEatKeyword(lexer.WHERE) {
				w, err := p.parseExpr(precLowest)
				if err != nil {
					return nil, err
				}
				up.UpdateWhen = w
			}
		}
		stmt.Upsert = up
	}

	if p.tryEatKeyword(lexer.RETURNING) {
		ret, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

func (p *Parser) parseReplace() (*ast.InsertStmt, error) {
	pos := p.tok.Pos
	p.advance() // REPLACE
	stmt := arenaNode(&p.arena, ast.InsertStmt{OrAction: "REPLACE"})
	if err := p.eatKeyword(lexer.INTO); err != nil {
		return nil, err
	}
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = name

	if p.is(lexer.LPAREN) {
		p.advance()
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	}

	if p.is(lexer.SELECT) || p.is(lexer.WITH) {
		sq, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.Select = sq
	} else if p.tryEatKeyword(lexer.VALUES) {
		for {
			if _, err := p.eat(lexer.LPAREN); err != nil {
				return nil, err
			}
			row, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			stmt.Values = arenaAppend(&p.arena, stmt.Values, row)
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
			if !p.tryEat(lexer.COMMA) {
				break
			}
		}
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// parseReturning parses the RETURNING clause shared by INSERT/UPDATE/DELETE.
func (p *Parser) parseReturning() (*ast.ReturningClause, error) {
	cols, err := p.parseSelectColumns()
	if err != nil {
		return nil, err
	}
	return &ast.ReturningClause{Columns: cols}, nil
}

// ---- UPDATE ----

func (p *Parser) parseUpdate() (*ast.UpdateStmt, error) {
	pos := p.tok.Pos
	p.advance()
	stmt := arenaNode(&p.arena, ast.UpdateStmt{})
	if p.tryEatKeyword(lexer.OR) {
		stmt.OrAction = string(p.tok.Raw)
		p.advance()
	}
	ref, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.Table = ref
	if err := p.eatKeyword(lexer.SET); err != nil {
		return nil, err
	}
	asgn, err := p.parseAssignments()
	if err != nil {
		return nil, err
	}
	stmt.Set = asgn
	if p.tryEatKeyword(lexer.FROM) {
		refs, err := p.parseTableRefs()
		if err != nil {
			return nil, err
		}
		stmt.From = refs
	}
	if p.tryEatKeyword(lexer.WHERE) {
		w, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	if p.tryEatKeyword(lexer.RETURNING) {
		ret, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// ---- DELETE ----

func (p *Parser) parseDelete() (*ast.DeleteStmt, error) {
	pos := p.tok.Pos
	p.advance()
	stmt := arenaNode(&p.arena, ast.DeleteStmt{})
	if err := p.eatKeyword(lexer.FROM); err != nil {
		return nil, err
	}
	ref, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.Table = ref
	if p.tryEatKeyword(lexer.WHERE) {
		w, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	if p.tryEatKeyword(lexer.RETURNING) {
		ret, err := p.parseReturning()
		if err != nil {
			return nil, err
		}
		stmt.Returning = ret
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// ---- CREATE ----

// ---- CREATE ----

func (p *Parser) parseCreate() (ast.Statement, error) {
	p.advance() // CREATE
	temporary := false
	if p.tok.Type == lexer.TEMP || p.tok.Type == lexer.TEMPORARY {
		p.advance()
		temporary = true
	}
	switch p.tok.Type {
	case lexer.TABLE:
		return p.parseCreateTable(temporary)
	case lexer.VIRTUAL:
		return p.parseCreateVirtualTable()
	case lexer.TRIGGER:
		return p.parseCreateTrigger(temporary)
	case lexer.VIEW:
		return p.parseCreateView(temporary)
	case lexer.INDEX, lexer.UNIQUE:
		return p.parseCreateIndex()
	default:
		return nil, p.errorf("unexpected token %q after CREATE", p.tok.Raw)
	}
}

func (p *Parser) parseCreateTable(temporary bool) (*ast.CreateTableStmt, error) {
	pos := p.tok.Pos
	p.advance() // TABLE
	stmt := arenaNode(&p.arena, ast.CreateTableStmt{Temporary: temporary})
	if p.is(lexer.IF) {
		p.advance()
		if err := p.eatKeyword(lexer.NOT); err != nil {
			return nil, err
		}
		if err := p.eatKeyword(lexer.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = name

	if p.tryEatKeyword(lexer.AS) {
		sq, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.Select = sq
		stmt.NodeBase = p.nb(pos)
		return stmt, nil
	}

	if _, err := p.eat(lexer.LPAREN); err != nil {
		return nil, err
	}
	cols, constraints, err := p.parseCreateTableBody()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols
	stmt.Constraints = constraints
	if _, err := p.eat(lexer.RPAREN); err != nil {
		return nil, err
	}

	for {
		switch {
		case p.tryEatKeyword(lexer.WITHOUT):
			if err := p.eatKeyword(lexer.ROWID); err != nil {
				return nil, err
			}
			stmt.WithoutRowid = true
		default:
			stmt.NodeBase = p.nb(pos)
			return stmt, nil
		}
	}
}

func (p *Parser) parseCreateTableBody() ([]*ast.ColumnDef, []*ast.TableConstraint, error) {
	var cols []*ast.ColumnDef
	var constraints []*ast.TableConstraint
	for {
		if p.is(lexer.RPAREN) || p.is(lexer.EOF) {
			break
		}
		if p.isConstraintStart() {
			c, err := p.parseTableConstraint()
			if err != nil {
				return nil, nil, err
			}
			constraints = arenaAppend(&p.arena, constraints, c)
		} else {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, nil, err
			}
			cols = arenaAppend(&p.arena, cols, col)
		}
		if !p.tryEat(lexer.COMMA) {
			break
		}
	}
	return cols, constraints, nil
}

func (p *Parser) isConstraintStart() bool {
	switch p.tok.Type {
	case lexer.PRIMARY, lexer.UNIQUE, lexer.FOREIGN, lexer.CHECK, lexer.CONSTRAINT:
		return true
	}
	return false
}

// parseColumnDef parses a SQLite column definition, including the
// type-alias suffix used by DEFINE QUERY pragmas (e.g. "TEXT AS UUID")
// and the FTS5 UNINDEXED column annotation.
func (p *Parser) parseColumnDef() (*ast.ColumnDef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	col := arenaNode(&p.arena, ast.ColumnDef{Name: name})
	if p.tok.Type != lexer.COMMA && p.tok.Type != lexer.RPAREN {
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		col.Type = dt
		if p.tryEatKeyword(lexer.AS) {
			alias, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			col.TypeAlias = alias
		}
	}

	for {
		switch p.tok.Type {
		case lexer.NOT:
			p.advance()
			if _, err := p.eat(lexer.NULL_KW); err != nil {
				return nil, err
			}
			col.NotNull = true
		case lexer.NULL_KW:
			p.advance()
		case lexer.DEFAULT:
			p.advance()
			paren := p.tryEat(lexer.LPAREN)
			def, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if paren {
				if _, err := p.eat(lexer.RPAREN); err != nil {
					return nil, err
				}
			}
			col.Default = def
		case lexer.PRIMARY:
			p.advance()
			if err := p.eatKeyword(lexer.KEY); err != nil {
				return nil, err
			}
			col.PrimaryKey = true
			if p.tryEatKeyword(lexer.DESC) {
				// descending rowid alias: column still primary key
			} else {
				p.tryEatKeyword(lexer.ASC)
			}
			if p.tryEatKeyword(lexer.AUTO_INCREMENT) {
				col.Autoincrement = true
			}
		case lexer.UNIQUE:
			p.advance()
			col.Unique = true
		case lexer.REFERENCES:
			ref, err := p.parseFKRef()
			if err != nil {
				return nil, err
			}
			col.References = ref
		case lexer.CHECK:
			p.advance()
			if _, err := p.eat(lexer.LPAREN); err != nil {
				return nil, err
			}
			expr, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			col.Check = expr
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
		case lexer.COLLATE:
			p.advance()
			coll, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			col.Collate = coll.Unquoted
		case lexer.GENERATED:
			p.advance()
			p.tryEatKeyword(lexer.ALWAYS)
			if err := p.eatKeyword(lexer.AS); err != nil {
				return nil, err
			}
			if _, err := p.eat(lexer.LPAREN); err != nil {
				return nil, err
			}
			expr, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.eat(lexer.RPAREN); err != nil {
				return nil, err
			}
			gc := &ast.GeneratedCol{Expr: expr, Stored: true}
			if p.tryEatKeyword(lexer.VIRTUAL) {
				gc.Stored = false
			} else {
				p.tryEatKeyword(lexer.STORED)
			}
			col.Generated = gc
		case lexer.IDENT:
			if equalASCIIFold(p.tok.Raw, "unindexed") {
				p.advance()
				col.Unindexed = true
				continue
			}
			return col, nil
		default:
			return col, nil
		}
	}
}

func (p *Parser) parseDataType() (*ast.DataType, error) {
	name := p.tok.Raw
	p.advance()
	dt := arenaNode(&p.arena, ast.DataType{Name: name})
	for p.tok.Type == lexer.IDENT || p.tok.Type == lexer.INTEGER || p.tok.Type == lexer.VARCHAR ||
		p.tok.Type == lexer.CHAR || p.tok.Type == lexer.CHARACTER {
		// stops at once: a following word such as the "CHARACTER" of
		// "VARYING CHARACTER" is not joined into the type name
		if p.tok.Type != lexer.IDENT {
			break
		}
		break
	}
	if p.is(lexer.LPAREN) {
		p.advance()
		if p.is(lexer.INT) {
			t := p.advance()
			n, _ := strconv.Atoi(string(t.Raw))
			dt.Precision = n
		}
		if p.tryEat(lexer.COMMA) {
			if p.is(lexer.INT) {
				t := p.advance()
				n, _ := strconv.Atoi(string(t.Raw))
				dt.Scale = n
			}
		}
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	dt.End = p.lastEnd
	return dt, nil
}

func (p *Parser) parseTableConstraint() (*ast.TableConstraint, error) {
	c := arenaNode(&p.arena, ast.TableConstraint{})

	if p.tryEatKeyword(lexer.CONSTRAINT) {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		c.Name = name
	}

	switch p.tok.Type {
	case lexer.PRIMARY:
		p.advance()
		if err := p.eatKeyword(lexer.KEY); err != nil {
			return nil, err
		}
		c.Type = ast.PrimaryKeyConstraint
		cols, err := p.parseIndexColDefs()
		if err != nil {
			return nil, err
		}
		c.Columns = cols
	case lexer.UNIQUE:
		p.advance()
		c.Type = ast.UniqueConstraint
		cols, err := p.parseIndexColDefs()
		if err != nil {
			return nil, err
		}
		c.Columns = cols
	case lexer.FOREIGN:
		p.advance()
		if err := p.eatKeyword(lexer.KEY); err != nil {
			return nil, err
		}
		c.Type = ast.ForeignKeyConstraint
		cols, err := p.parseIndexColDefs()
		if err != nil {
			return nil, err
		}
		c.Columns = cols
		ref, err := p.parseFKRef()
		if err != nil {
			return nil, err
		}
		c.RefTable = ref.Table
		c.RefCols = ref.Columns
		c.OnDelete = ref.OnDelete
		c.OnUpdate = ref.OnUpdate
	case lexer.CHECK:
		p.advance()
		c.Type = ast.CheckConstraint
		if _, err := p.eat(lexer.LPAREN); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		c.Check = expr
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	default:
		return nil, p.errorf("expected constraint type, got %q", p.tok.Raw)
	}
	return c, nil
}

func (p *Parser) parseIndexColDefs() ([]*ast.IndexColDef, error) {
	if _, err := p.eat(lexer.LPAREN); err != nil {
		return nil, err
	}
	var cols []*ast.IndexColDef
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		icd := &ast.IndexColDef{Name: name}
		if p.tryEatKeyword(lexer.DESC) {
			icd.Desc = true
		} else {
			p.tryEatKeyword(lexer.ASC)
		}
		cols = arenaAppend(&p.arena, cols, icd)
		if !p.tryEat(lexer.COMMA) {
			break
		}
	}
	if _, err := p.eat(lexer.RPAREN); err != nil {
		return nil, err
	}
	return cols, nil
}

func (p *Parser) parseFKRef() (*ast.ForeignKeyRef, error) {
	if err := p.eatKeyword(lexer.REFERENCES); err != nil {
		return nil, err
	}
	table, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	ref := arenaNode(&p.arena, ast.ForeignKeyRef{Table: table})
	if p.is(lexer.LPAREN) {
		p.advance()
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		ref.Columns = cols
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	for p.is(lexer.ON) {
		p.advance()
		switch p.tok.Type {
		case lexer.DELETE:
			p.advance()
			ref.OnDelete = p.parseRefAction()
		case lexer.UPDATE:
			p.advance()
			ref.OnUpdate = p.parseRefAction()
		}
	}
	return ref, nil
}

func (p *Parser) parseRefAction() ast.RefAction {
	switch p.tok.Type {
	case lexer.RESTRICT:
		p.advance()
		return ast.Restrict
	case lexer.CASCADE:
		p.advance()
		return ast.Cascade
	case lexer.SET:
		p.advance()
		if p.tryEatKeyword(lexer.NULL_KW) {
			return ast.SetNull
		}
		if p.tryEatKeyword(lexer.DEFAULT) {
			return ast.SetDefault
		}
	case lexer.NO:
		p.advance() // ACTION
		p.advance()
		return ast.NoAction
	}
	return ast.NoAction
}

// ---- CREATE VIRTUAL TABLE ----

func (p *Parser) parseCreateVirtualTable() (*ast.CreateVirtualTableStmt, error) {
	pos := p.tok.Pos
	p.advance() // VIRTUAL
	if err := p.eatKeyword(lexer.TABLE); err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.CreateVirtualTableStmt{})
	if p.is(lexer.IF) {
		p.advance()
		if err := p.eatKeyword(lexer.NOT); err != nil {
			return nil, err
		}
		if err := p.eatKeyword(lexer.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = name
	if err := p.eatKeyword(lexer.USING); err != nil {
		return nil, err
	}
	mod, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt.Module = mod
	if p.tryEat(lexer.LPAREN) {
		for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
			// Module arguments are either column definitions (for table-valued
			// virtual tables) or opaque option text (e.g. FTS5 "tokenize=...").
			if p.tok.Type == lexer.IDENT && p.peekToken().Type != lexer.COMMA && p.peekToken().Type != lexer.RPAREN && p.peekToken().Type != lexer.EQ {
				col, err := p.parseColumnDef()
				if err != nil {
					return nil, err
				}
				stmt.Columns = arenaAppend(&p.arena, stmt.Columns, col)
			} else {
				start := p.tok.Pos
				for !p.is(lexer.COMMA) && !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
					p.advance()
				}
				stmt.Args = append(stmt.Args, string(p.lex.SliceFrom(start, p.lastEnd)))
			}
			if !p.tryEat(lexer.COMMA) {
				break
			}
		}
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// ---- CREATE INDEX ----

func (p *Parser) parseCreateIndex() (*ast.CreateIndexStmt, error) {
	pos := p.tok.Pos
	unique := p.tryEatKeyword(lexer.UNIQUE)
	if err := p.eatKeyword(lexer.INDEX); err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.CreateIndexStmt{Unique: unique})
	if p.is(lexer.IF) {
		p.advance()
		if err := p.eatKeyword(lexer.NOT); err != nil {
			return nil, err
		}
		if err := p.eatKeyword(lexer.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt.Name = name
	if err := p.eatKeyword(lexer.ON); err != nil {
		return nil, err
	}
	table, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = table
	cols, err := p.parseIndexColDefs()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols
	if p.tryEatKeyword(lexer.WHERE) {
		w, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// ---- CREATE VIEW ----

func (p *Parser) parseCreateView(temporary bool) (*ast.CreateViewStmt, error) {
	pos := p.tok.Pos
	p.advance() // VIEW
	stmt := arenaNode(&p.arena, ast.CreateViewStmt{})
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt.Name = name
	if p.is(lexer.LPAREN) {
		p.advance()
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
		if _, err := p.eat(lexer.RPAREN); err != nil {
			return nil, err
		}
	}
	if err := p.eatKeyword(lexer.AS); err != nil {
		return nil, err
	}
	sq, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	stmt.Select = sq
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// ---- CREATE TRIGGER ----

// parseCreateTrigger parses a trigger's firing clause structurally and keeps
// its body as opaque text, since typing trigger bodies is out of scope.
func (p *Parser) parseCreateTrigger(temporary bool) (*ast.CreateTriggerStmt, error) {
	pos := p.tok.Pos
	p.advance() // TRIGGER
	stmt := arenaNode(&p.arena, ast.CreateTriggerStmt{})
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt.Name = name
	switch p.tok.Type {
	case lexer.BEFORE:
		p.advance()
		stmt.Timing = "BEFORE"
	case lexer.AFTER:
		p.advance()
		stmt.Timing = "AFTER"
	case lexer.INSTEAD:
		p.advance()
		if err := p.eatKeyword(lexer.OF); err != nil {
			return nil, err
		}
		stmt.Timing = "INSTEAD OF"
	}
	switch p.tok.Type {
	case lexer.INSERT:
		p.advance()
		stmt.Event = "INSERT"
	case lexer.UPDATE:
		p.advance()
		stmt.Event = "UPDATE"
		if p.tryEatKeyword(lexer.OF) {
			cols, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			stmt.EventCols = cols
		}
	case lexer.DELETE:
		p.advance()
		stmt.Event = "DELETE"
	default:
		return nil, p.errorf("expected INSERT, UPDATE, or DELETE in trigger, got %q", p.tok.Raw)
	}
	if err := p.eatKeyword(lexer.ON); err != nil {
		return nil, err
	}
	table, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = table
	if p.tryEatKeyword(lexer.FOR) {
		if err := p.eatKeyword(lexer.EACH); err != nil {
			return nil, err
		}
		if err := p.eatKeyword(lexer.ROW); err != nil {
			return nil, err
		}
		stmt.ForEachRow = true
	}
	if p.tryEatKeyword(lexer.WHEN) {
		w, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.When = w
	}
	if err := p.eatKeyword(lexer.BEGIN); err != nil {
		return nil, err
	}
	bodyStart := p.tok.Pos
	depth := 1
	for depth > 0 {
		if p.is(lexer.EOF) {
			return nil, p.errorf("unterminated trigger body")
		}
		if p.is(lexer.BEGIN) || p.is(lexer.CASE) {
			depth++
		} else if p.is(lexer.END) {
			depth--
			if depth == 0 {
				break
			}
		}
		p.advance()
	}
	stmt.BodyRaw = string(p.lex.SliceFrom(bodyStart, p.lastEnd))
	if err := p.eatKeyword(lexer.END); err != nil {
		return nil, err
	}
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// ---- ALTER TABLE ----
//
// SQLite's ALTER TABLE supports exactly four forms: RENAME TO, RENAME COLUMN,
// ADD COLUMN, and DROP COLUMN — unlike MySQL's larger ALTER TABLE grammar.

func (p *Parser) parseAlter() (ast.Statement, error) {
	pos := p.tok.Pos
	p.advance() // ALTER
	if err := p.eatKeyword(lexer.TABLE); err != nil {
		return nil, err
	}
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	cmd, err := p.parseAlterCmd()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.AlterTableStmt{Table: name, Cmd: cmd})
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

func (p *Parser) parseAlterCmd() (ast.AlterCmd, error) {
	pos := p.tok.Pos
	switch {
	case p.tryEatKeyword(lexer.RENAME):
		if p.tryEatKeyword(lexer.COLUMN) {
			oldName, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			if err := p.eatKeyword(lexer.TO); err != nil {
				return nil, err
			}
			newName, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			cmd := arenaNode(&p.arena, ast.RenameColumnCmd{OldName: oldName, NewName: newName})
			cmd.NodeBase = p.nb(pos)
			return cmd, nil
		}
		if p.tryEatKeyword(lexer.TO) {
			newName, err := p.parseQualifiedIdent()
			if err != nil {
				return nil, err
			}
			cmd := arenaNode(&p.arena, ast.RenameTableCmd{NewName: newName})
			cmd.NodeBase = p.nb(pos)
			return cmd, nil
		}
		// bare "RENAME old TO new" column form
		oldName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if err := p.eatKeyword(lexer.TO); err != nil {
			return nil, err
		}
		newName, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		cmd := arenaNode(&p.arena, ast.RenameColumnCmd{OldName: oldName, NewName: newName})
		cmd.NodeBase = p.nb(pos)
		return cmd, nil

	case p.tryEatKeyword(lexer.ADD):
		p.tryEatKeyword(lexer.COLUMN)
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cmd := arenaNode(&p.arena, ast.AddColumnCmd{Col: col})
		cmd.NodeBase = p.nb(pos)
		return cmd, nil

	case p.tryEatKeyword(lexer.DROP):
		p.tryEatKeyword(lexer.COLUMN)
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		cmd := arenaNode(&p.arena, ast.DropColumnCmd{Name: name})
		cmd.NodeBase = p.nb(pos)
		return cmd, nil
	}
	return nil, p.errorf("unexpected ALTER TABLE command: %q", p.tok.Raw)
}

// ---- DROP ----

func (p *Parser) parseDrop() (ast.Statement, error) {
	p.advance() // DROP
	switch p.tok.Type {
	case lexer.TABLE:
		return p.parseDropTable()
	case lexer.INDEX:
		return p.parseDropIndex()
	case lexer.VIEW:
		return p.parseDropView()
	case lexer.TRIGGER:
		return p.parseDropTrigger()
	default:
		return nil, p.errorf("unexpected token %q after DROP", p.tok.Raw)
	}
}

func (p *Parser) parseIfExists() (bool, error) {
	if p.is(lexer.IF) {
		p.advance()
		if err := p.eatKeyword(lexer.EXISTS); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (p *Parser) parseDropTable() (*ast.DropTableStmt, error) {
	pos := p.tok.Pos
	p.advance() // TABLE
	ifExists, err := p.parseIfExists()
	if err != nil {
		return nil, err
	}
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.DropTableStmt{Table: name, IfExists: ifExists})
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

func (p *Parser) parseDropIndex() (*ast.DropIndexStmt, error) {
	pos := p.tok.Pos
	p.advance() // INDEX
	ifExists, err := p.parseIfExists()
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.DropIndexStmt{Name: name, IfExists: ifExists})
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

func (p *Parser) parseDropView() (*ast.DropViewStmt, error) {
	pos := p.tok.Pos
	p.advance() // VIEW
	ifExists, err := p.parseIfExists()
	if err != nil {
		return nil, err
	}
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.DropViewStmt{Name: name, IfExists: ifExists})
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

func (p *Parser) parseDropTrigger() (*ast.DropTriggerStmt, error) {
	pos := p.tok.Pos
	p.advance() // TRIGGER
	ifExists, err := p.parseIfExists()
	if err != nil {
		return nil, err
	}
	name, err := p.parseQualifiedIdent()
	if err != nil {
		return nil, err
	}
	stmt := arenaNode(&p.arena, ast.DropTriggerStmt{Name: name, IfExists: ifExists})
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// ---- EXPLAIN ----

func (p *Parser) parseExplain() (*ast.ExplainStmt, error) {
	pos := p.tok.Pos
	p.advance() // EXPLAIN
	stmt := arenaNode(&p.arena, ast.ExplainStmt{})
	if p.tryEatKeyword(lexer.QUERY) {
		if err := p.eatKeyword(lexer.PLAN); err != nil {
			return nil, err
		}
		stmt.QueryPlan = true
	}
	inner, err := p.dispatchStatement()
	if err != nil {
		return nil, err
	}
	stmt.Stmt = inner
	stmt.NodeBase = p.nb(pos)
	return stmt, nil
}

// ---- Identifier helpers ----

// ---- Identifier helpers ----

func (p *Parser) parseIdent() (*ast.Ident, error) {
	t := p.tok
	switch t.Type {
	case lexer.IDENT, lexer.BACKTICK, lexer.DQUOTE:
		p.advance()
		unquoted := unquoteIdentArena(&p.arena, t.Raw)
		return arenaNode(&p.arena, ast.Ident{Raw: t.Raw, Unquoted: unquoted, NodeBase: p.nb(t.Pos)}), nil
	default:
		// Allow keywords as identifiers in column/table positions
		if t.Type > lexer.QMARKAMP {
			p.advance()
			return arenaNode(&p.arena, ast.Ident{Raw: t.Raw, Unquoted: lowerASCIIStringArena(&p.arena, t.Raw), NodeBase: p.nb(t.Pos)}), nil
		}
		return nil, p.errorf("expected identifier, got %q", t.Raw)
	}
}

func (p *Parser) parseQualifiedIdent() (*ast.QualifiedIdent, error) {
	id, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	var parts []*ast.Ident
	parts = arenaAppend(&p.arena, parts, id)
	qi := arenaNode(&p.arena, ast.QualifiedIdent{Parts: parts})
	for p.is(lexer.DOT) {
		p.advance()
		next, err := p.parseIdent()
		if err != nil {
			// could be schema.*  treat as ident
			if p.is(lexer.STAR) {
				star := arenaNode(&p.arena, ast.Ident{Raw: p.tok.Raw, Unquoted: "*", NodeBase: p.nb(p.tok.Pos)})
				p.advance()
				qi.Parts = arenaAppend(&p.arena, qi.Parts, star)
				return qi, nil
			}
			return nil, err
		}
		qi.Parts = arenaAppend(&p.arena, qi.Parts, next)
	}
	return qi, nil
}

func (p *Parser) parseIdentList() ([]*ast.Ident, error) {
	var ids []*ast.Ident
	for {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		ids = arenaAppend(&p.arena, ids, id)
		if !p.tryEat(lexer.COMMA) {
			break
		}
	}
	return ids, nil
}

func (p *Parser) parseAssignments() ([]ast.Assignment, error) {
	var asgn []ast.Assignment
	for {
		col, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(lexer.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		asgn = arenaAppend(&p.arena, asgn, ast.Assignment{Column: col, Value: val})
		if !p.tryEat(lexer.COMMA) {
			break
		}
	}
	return asgn, nil
}

// unquoteIdent strips backtick or double-quote delimiters.
func unquoteIdentArena(a *arena, raw []byte) string {
	if len(raw) < 2 {
		return lowerASCIIStringArena(a, raw)
	}
	if (raw[0] == '`' || raw[0] == '"') && raw[len(raw)-1] == raw[0] {
		return bytesToString(raw[1 : len(raw)-1])
	}
	return lowerASCIIStringArena(a, raw)
}

func lowerASCIIStringArena(a *arena, raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if !hasUpperASCII(raw) {
		return bytesToString(raw)
	}
	dst := a.alloc(len(raw))[:len(raw)]
	for i, c := range raw {
		if c >= 'A' && c <= 'Z' {
			dst[i] = c + 32
		} else {
			dst[i] = c
		}
	}
	return bytesToString(dst)
}

func equalASCIIFold(raw []byte, s string) bool {
	if len(raw) != len(s) {
		return false
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c >= 'A' && c <= 'Z' {
			c += 32
		}
		if c != s[i] {
			return false
		}
	}
	return true
}

func hasUpperASCII(raw []byte) bool {
	for i := 0; i < len(raw); i++ {
		if raw[i] >= 'A' && raw[i] <= 'Z' {
			return true
		}
	}
	return false
}

func bytesToString(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	return unsafe.String(&raw[0], len(raw))
}
