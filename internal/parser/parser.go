// Package parser builds an ast.Statement from a token stream via
// recursive descent, with clause-boundary error recovery: on a malformed
// clause it records the error and resynchronizes at the next
// clause-start keyword rather than aborting the whole parse.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corvidgraph/cyql/internal/ast"
	"github.com/corvidgraph/cyql/internal/graph"
	"github.com/corvidgraph/cyql/internal/lexer"
	"github.com/corvidgraph/cyql/internal/token"
)

// Parser consumes a lexer's token stream and accumulates errors rather
// than stopping at the first one.
type Parser struct {
	lex         *lexer.Lexer
	errors      []string
	anonCounter int
}

// New wraps a lexer already positioned at the start of its stream.
func New(lex *lexer.Lexer) *Parser {
	return &Parser{lex: lex}
}

// Parse lexes and parses src in one call, returning the statement built
// from whatever clauses were well-formed and every error encountered
// along the way.
func Parse(src string) (*ast.Statement, []string) {
	return New(lexer.New(src)).ParseStatement()
}

// parseBailout unwinds a single clause's recursive-descent call chain up
// to the recovery point in ParseStatement's clause loop.
type parseBailout struct{}

// ParseStatement parses every clause in the stream, resynchronizing at
// clause boundaries after an error so that later well-formed clauses are
// still captured.
func (p *Parser) ParseStatement() (*ast.Statement, []string) {
	stmt := &ast.Statement{}
	for p.peek().Kind != token.EOF {
		p.parseClauseRecovering(stmt)
	}
	return stmt, p.errors
}

func (p *Parser) parseClauseRecovering(stmt *ast.Statement) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseBailout); ok {
				p.synchronize()
				return
			}
			panic(r)
		}
	}()
	p.parseOneClause(stmt)
}

func (p *Parser) parseOneClause(stmt *ast.Statement) {
	switch p.peek().Kind {
	case token.MATCH:
		p.parseMatchClause(stmt)
	case token.WHERE:
		p.parseWhereClause(stmt)
	case token.CREATE:
		p.parseCreateClause(stmt)
	case token.SET:
		p.parseSetClause(stmt)
	case token.DETACH:
		p.next()
		if p.peek().Kind != token.DELETE {
			p.fail(p.peek(), "DETACH must immediately precede DELETE")
		}
		p.parseDeleteClause(stmt, true)
	case token.DELETE:
		p.parseDeleteClause(stmt, false)
	case token.RETURN:
		p.parseReturnClause(stmt)
	default:
		tok := p.peek()
		p.fail(tok, fmt.Sprintf("unexpected token %s %q", tok.Kind, tok.Text))
	}
}

func isClauseStart(k token.Kind) bool {
	switch k {
	case token.MATCH, token.WHERE, token.CREATE, token.SET, token.DELETE, token.DETACH, token.RETURN:
		return true
	}
	return false
}

func (p *Parser) synchronize() {
	for {
		k := p.peek().Kind
		if k == token.EOF || isClauseStart(k) {
			return
		}
		p.next()
	}
}

// --- token plumbing ---

func (p *Parser) peek() token.Token        { return p.lex.Peek() }
func (p *Parser) peekAt(n int) token.Token { return p.lex.PeekAt(n) }
func (p *Parser) next() token.Token        { return p.lex.Next() }

func (p *Parser) fail(tok token.Token, msg string) {
	p.errors = append(p.errors, fmt.Sprintf("%s at line %d, column %d", msg, tok.Line, tok.Col))
	panic(parseBailout{})
}

func (p *Parser) expect(k token.Kind) token.Token {
	tok := p.peek()
	if tok.Kind != k {
		p.fail(tok, fmt.Sprintf("expected %s, got %s %q", k, tok.Kind, tok.Text))
	}
	return p.next()
}

func (p *Parser) freshVar() string {
	p.anonCounter++
	return fmt.Sprintf("__anon%d", p.anonCounter)
}

// --- clauses ---

func (p *Parser) parseMatchClause(stmt *ast.Statement) {
	p.next() // MATCH
	patterns := p.parsePathList()
	if stmt.Match == nil {
		stmt.Match = &ast.MatchClause{}
	}
	stmt.Match.Patterns = append(stmt.Match.Patterns, patterns...)
}

func (p *Parser) parseWhereClause(stmt *ast.Statement) {
	p.next() // WHERE
	cond := p.parseOrExpr()
	if stmt.Where != nil {
		p.fail(p.peek(), "duplicate WHERE clause")
	}
	stmt.Where = &ast.WhereClause{Cond: cond}
}

func (p *Parser) parseCreateClause(stmt *ast.Statement) {
	p.next() // CREATE
	items := p.parseCreateList()
	if stmt.Create == nil {
		stmt.Create = &ast.CreateClause{}
	}
	stmt.Create.Items = append(stmt.Create.Items, items...)
}

func (p *Parser) parseSetClause(stmt *ast.Statement) {
	p.next() // SET
	items := p.parseSetList()
	if stmt.Set == nil {
		stmt.Set = &ast.SetClause{}
	}
	stmt.Set.Settings = append(stmt.Set.Settings, items...)
}

func (p *Parser) parseDeleteClause(stmt *ast.Statement, detach bool) {
	p.next() // DELETE
	vars := p.parseVarList()
	if stmt.Delete != nil {
		p.fail(p.peek(), "duplicate DELETE clause")
	}
	stmt.Delete = &ast.DeleteClause{Vars: vars, Detach: detach}
}

func (p *Parser) parseReturnClause(stmt *ast.Statement) {
	p.next() // RETURN
	items := p.parseReturnList()
	if stmt.Return != nil {
		p.fail(p.peek(), "duplicate RETURN clause")
	}
	stmt.Return = &ast.ReturnClause{Items: items}
}

// --- patterns ---

func (p *Parser) parsePathList() []ast.PathPattern {
	patterns := []ast.PathPattern{p.parsePathPattern()}
	for p.peek().Kind == token.COMMA {
		p.next()
		patterns = append(patterns, p.parsePathPattern())
	}
	return patterns
}

func (p *Parser) parsePathPattern() ast.PathPattern {
	start := p.parseNodePattern()
	var segments []ast.Segment
	for p.isRelStart() {
		rel := p.parseRelPattern()
		node := p.parseNodePattern()
		segments = append(segments, ast.Segment{Rel: rel, Node: node})
	}
	return ast.PathPattern{Start: start, Segments: segments}
}

func (p *Parser) isRelStart() bool {
	k := p.peek().Kind
	return k == token.MINUS || k == token.BACKWARD_ARROW
}

func (p *Parser) parseNodePattern() ast.NodePattern {
	p.expect(token.OPEN_PAREN)
	variable := ""
	if p.peek().Kind == token.IDENTIFIER {
		variable = p.next().Text
	}
	var labels []string
	for p.peek().Kind == token.COLON {
		p.next()
		labels = append(labels, p.expect(token.IDENTIFIER).Text)
	}
	props := map[string]ast.Expression{}
	if p.peek().Kind == token.OPEN_BRACE {
		p.next()
		props = p.parsePropMap()
		p.expect(token.CLOSE_BRACE)
	}
	closeTok := p.peek()
	p.expect(token.CLOSE_PAREN)
	if len(labels) > 1 {
		p.fail(closeTok, "a node pattern may carry at most one label")
	}
	return ast.NodePattern{Variable: variable, Labels: labels, Properties: props}
}

func (p *Parser) parsePropMap() map[string]ast.Expression {
	m := map[string]ast.Expression{}
	if p.peek().Kind != token.IDENTIFIER {
		return m
	}
	for {
		key := p.expect(token.IDENTIFIER).Text
		p.expect(token.COLON)
		m[key] = p.parseLiteral()
		if p.peek().Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	return m
}

func (p *Parser) parseLiteral() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case token.STRING:
		p.next()
		return ast.Literal{Value: graph.String(tok.Text)}
	case token.NUMBER:
		p.next()
		n, _ := strconv.ParseFloat(tok.Text, 64)
		return ast.Literal{Value: graph.Number(n)}
	case token.BOOLEAN:
		p.next()
		return ast.Literal{Value: graph.Bool(strings.EqualFold(tok.Text, "true"))}
	case token.NULL:
		p.next()
		return ast.Literal{Value: graph.Null()}
	}
	p.fail(tok, fmt.Sprintf("expected a literal value, got %s %q", tok.Kind, tok.Text))
	return nil
}

func (p *Parser) parseRelPattern() ast.RelationshipPattern {
	backward := false
	switch p.peek().Kind {
	case token.BACKWARD_ARROW:
		p.next()
		backward = true
	case token.MINUS:
		p.next()
	default:
		p.fail(p.peek(), "expected a relationship pattern")
	}

	variable := ""
	relType := ""
	minHops := uint32(1)
	one := uint32(1)
	maxHops := &one

	if p.peek().Kind == token.OPEN_BRACKET {
		p.next()
		if p.peek().Kind == token.IDENTIFIER {
			variable = p.next().Text
		}
		if p.peek().Kind == token.COLON {
			p.next()
			relType = p.expect(token.IDENTIFIER).Text
		}
		if p.peek().Kind == token.ASTERISK {
			p.next()
			minHops, maxHops = p.parseHopRange()
		}
		props := map[string]ast.Expression{}
		if p.peek().Kind == token.OPEN_BRACE {
			p.next()
			props = p.parsePropMap()
			p.expect(token.CLOSE_BRACE)
		}
		p.expect(token.CLOSE_BRACKET)
		rel := ast.RelationshipPattern{
			Variable: variable, RelType: relType, Properties: props,
			MinHops: minHops, MaxHops: maxHops,
		}
		forward := p.parseRelRightEdge(backward)
		rel.Direction = directionOf(backward, forward)
		return rel
	}

	rel := ast.RelationshipPattern{MinHops: minHops, MaxHops: maxHops, Properties: map[string]ast.Expression{}}
	forward := p.parseRelRightEdge(backward)
	rel.Direction = directionOf(backward, forward)
	return rel
}

func (p *Parser) parseRelRightEdge(backward bool) bool {
	switch p.peek().Kind {
	case token.FORWARD_ARROW:
		p.next()
		return true
	case token.MINUS:
		p.next()
		return false
	}
	p.fail(p.peek(), "unterminated relationship pattern")
	return false
}

func directionOf(backward, forward bool) ast.Direction {
	switch {
	case backward && forward:
		return ast.DirBoth
	case backward:
		return ast.DirIn
	case forward:
		return ast.DirOut
	default:
		return ast.DirBoth
	}
}

// parseHopRange parses the range following '*': bare "*" is unbounded
// (1..∞), "*N" is an exact hop count, "*N..M" and "*N.." and "*..M" are
// the half/fully bounded forms.
func (p *Parser) parseHopRange() (uint32, *uint32) {
	if p.peek().Kind == token.NUMBER {
		n1 := p.parseUintToken()
		if p.peek().Kind == token.DOTDOT {
			p.next()
			if p.peek().Kind == token.NUMBER {
				n2 := p.parseUintToken()
				return n1, &n2
			}
			return n1, nil
		}
		return n1, &n1
	}
	if p.peek().Kind == token.DOTDOT {
		p.next()
		if p.peek().Kind == token.NUMBER {
			n2 := p.parseUintToken()
			return 1, &n2
		}
		return 1, nil
	}
	return 1, nil
}

func (p *Parser) parseUintToken() uint32 {
	tok := p.expect(token.NUMBER)
	n, err := strconv.ParseUint(tok.Text, 10, 32)
	if err != nil {
		p.fail(tok, fmt.Sprintf("invalid hop count %q", tok.Text))
	}
	return uint32(n)
}

// --- CREATE ---

func (p *Parser) parseCreateList() []ast.CreateItem {
	var items []ast.CreateItem
	p.parseCreateItem(&items)
	for p.peek().Kind == token.COMMA {
		p.next()
		p.parseCreateItem(&items)
	}
	return items
}

func (p *Parser) parseCreateItem(items *[]ast.CreateItem) {
	node1 := p.parseNodePattern()
	if !p.isRelStart() {
		variable := node1.Variable
		if variable == "" {
			variable = p.freshVar()
		}
		node1.Variable = variable
		*items = append(*items, ast.CreateItem{Kind: ast.CreateNodeItem, Node: node1})
		return
	}
	rel := p.parseRelPattern()
	node2 := p.parseNodePattern()
	fromVar := p.resolveCreateEndpoint(node1, items)
	toVar := p.resolveCreateEndpoint(node2, items)
	*items = append(*items, ast.CreateItem{Kind: ast.CreateRelItem, From: fromVar, Rel: rel, To: toVar})
}

// resolveCreateEndpoint distinguishes a bare reference to an
// already-bound variable from an inline node declaration: a pattern with
// labels or properties always declares a new node (synthesizing a
// variable if none was given), while a bare "(x)" refers to x.
func (p *Parser) resolveCreateEndpoint(node ast.NodePattern, items *[]ast.CreateItem) string {
	if len(node.Labels) == 0 && len(node.Properties) == 0 {
		if node.Variable == "" {
			p.fail(p.peek(), "a bare node reference in CREATE must name a variable")
		}
		return node.Variable
	}
	variable := node.Variable
	if variable == "" {
		variable = p.freshVar()
		node.Variable = variable
	}
	*items = append(*items, ast.CreateItem{Kind: ast.CreateNodeItem, Node: node})
	return variable
}

// --- SET / DELETE / RETURN ---

func (p *Parser) parseSetList() []ast.SetItem {
	items := []ast.SetItem{p.parseSetItem()}
	for p.peek().Kind == token.COMMA {
		p.next()
		items = append(items, p.parseSetItem())
	}
	return items
}

func (p *Parser) parseSetItem() ast.SetItem {
	target := p.expect(token.IDENTIFIER).Text
	p.expect(token.DOT)
	prop := p.expect(token.IDENTIFIER).Text
	p.expect(token.EQUALS)
	value := p.parseOrExpr()
	return ast.SetItem{Target: target, Property: prop, Value: value}
}

func (p *Parser) parseVarList() []string {
	vars := []string{p.expect(token.IDENTIFIER).Text}
	for p.peek().Kind == token.COMMA {
		p.next()
		vars = append(vars, p.expect(token.IDENTIFIER).Text)
	}
	return vars
}

func (p *Parser) parseReturnList() []ast.ReturnItem {
	items := []ast.ReturnItem{p.parseReturnItem()}
	for p.peek().Kind == token.COMMA {
		p.next()
		items = append(items, p.parseReturnItem())
	}
	return items
}

func (p *Parser) parseReturnItem() ast.ReturnItem {
	return ast.ReturnItem{Expr: p.parseVariableOrProperty()}
}

func (p *Parser) parseVariableOrProperty() ast.Expression {
	name := p.expect(token.IDENTIFIER).Text
	if p.peek().Kind == token.DOT {
		p.next()
		prop := p.expect(token.IDENTIFIER).Text
		return ast.Property{Object: ast.Variable{Name: name}, Name: prop}
	}
	return ast.Variable{Name: name}
}

// --- expressions, loosest to tightest: OR < XOR < AND < NOT < comparison < primary ---

func (p *Parser) parseOrExpr() ast.Expression {
	left := p.parseXorExpr()
	for p.peek().Kind == token.OR {
		p.next()
		right := p.parseXorExpr()
		left = ast.Logical{Op: ast.OpOr, Operands: []ast.Expression{left, right}}
	}
	return left
}

func (p *Parser) parseXorExpr() ast.Expression {
	left := p.parseAndExpr()
	for p.peek().Kind == token.XOR {
		p.next()
		right := p.parseAndExpr()
		left = ast.Logical{Op: ast.OpXor, Operands: []ast.Expression{left, right}}
	}
	return left
}

func (p *Parser) parseAndExpr() ast.Expression {
	left := p.parseNotExpr()
	for p.peek().Kind == token.AND {
		p.next()
		right := p.parseNotExpr()
		left = ast.Logical{Op: ast.OpAnd, Operands: []ast.Expression{left, right}}
	}
	return left
}

func (p *Parser) parseNotExpr() ast.Expression {
	if p.peek().Kind == token.NOT && p.peekAt(1).Kind != token.EXISTS {
		p.next()
		operand := p.parseNotExpr()
		return ast.Logical{Op: ast.OpNot, Operands: []ast.Expression{operand}}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parsePrimary()
	switch p.peek().Kind {
	case token.EQUALS:
		p.next()
		return ast.Comparison{Left: left, Op: ast.OpEq, Right: p.parsePrimary()}
	case token.NOT_EQUALS:
		p.next()
		return ast.Comparison{Left: left, Op: ast.OpNeq, Right: p.parsePrimary()}
	case token.LT:
		p.next()
		return ast.Comparison{Left: left, Op: ast.OpLt, Right: p.parsePrimary()}
	case token.LE:
		p.next()
		return ast.Comparison{Left: left, Op: ast.OpLe, Right: p.parsePrimary()}
	case token.GT:
		p.next()
		return ast.Comparison{Left: left, Op: ast.OpGt, Right: p.parsePrimary()}
	case token.GE:
		p.next()
		return ast.Comparison{Left: left, Op: ast.OpGe, Right: p.parsePrimary()}
	case token.IN:
		p.next()
		return ast.Comparison{Left: left, Op: ast.OpIn, Right: p.parsePrimary()}
	case token.CONTAINS:
		p.next()
		return ast.Comparison{Left: left, Op: ast.OpContains, Right: p.parsePrimary()}
	case token.STARTS:
		p.next()
		p.expect(token.WITH)
		return ast.Comparison{Left: left, Op: ast.OpStartsWith, Right: p.parsePrimary()}
	case token.ENDS:
		p.next()
		p.expect(token.WITH)
		return ast.Comparison{Left: left, Op: ast.OpEndsWith, Right: p.parsePrimary()}
	case token.IS:
		p.next()
		if p.peek().Kind == token.NOT {
			p.next()
			p.expect(token.NULL)
			return ast.Comparison{Left: left, Op: ast.OpIsNotNull}
		}
		p.expect(token.NULL)
		return ast.Comparison{Left: left, Op: ast.OpIsNull}
	}
	return left
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case token.EXISTS:
		p.next()
		p.expect(token.OPEN_PAREN)
		pattern := p.parsePathPattern()
		p.expect(token.CLOSE_PAREN)
		return ast.Exists{Positive: true, Pattern: pattern}
	case token.NOT:
		// Only reached when lookahead confirmed NOT EXISTS (parseNotExpr
		// routes anything else to the generic prefix handling).
		p.next()
		p.expect(token.EXISTS)
		p.expect(token.OPEN_PAREN)
		pattern := p.parsePathPattern()
		p.expect(token.CLOSE_PAREN)
		return ast.Exists{Positive: false, Pattern: pattern}
	case token.OPEN_PAREN:
		p.next()
		expr := p.parseOrExpr()
		p.expect(token.CLOSE_PAREN)
		return expr
	case token.STRING, token.NUMBER, token.BOOLEAN, token.NULL:
		return p.parseLiteral()
	case token.IDENTIFIER:
		return p.parseVariableOrProperty()
	}
	p.fail(tok, fmt.Sprintf("unexpected token %s %q in expression", tok.Kind, tok.Text))
	return nil
}
