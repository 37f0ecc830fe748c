// Package lexer hand-tokenizes query-language source text.
package lexer

import (
	"strings"

	"github.com/corvidgraph/cyql/internal/token"
)

// Lexer scans source text into a finite token stream. It supports a next()
// cursor (Next) and a reset() that rewinds to the beginning (Reset).
type Lexer struct {
	src    []rune
	pos    int
	line   uint32
	col    uint32
	tokens []token.Token
	cursor int
}

// New tokenizes the full input up front; Next/Peek/Reset walk the resulting
// finite stream. Keeping tokenization eager (rather than lazy) matches the
// teacher's "parse the whole line at once" idiom and keeps Reset trivial.
func New(src string) *Lexer {
	l := &Lexer{src: []rune(src), line: 1, col: 1}
	l.scanAll()
	return l
}

func (l *Lexer) scanAll() {
	for {
		tok := l.scanOne()
		l.tokens = append(l.tokens, tok)
		if tok.Kind == token.EOF {
			return
		}
	}
}

// Next returns the current token and advances the cursor.
func (l *Lexer) Next() token.Token {
	tok := l.Peek()
	if l.cursor < len(l.tokens)-1 {
		l.cursor++
	}
	return tok
}

// Peek returns the current token without advancing.
func (l *Lexer) Peek() token.Token {
	return l.tokens[l.cursor]
}

// PeekAt looks ahead (or behind, for negative offsets) of the cursor
// without advancing it. Offsets past either end clamp to EOF / the first
// token respectively.
func (l *Lexer) PeekAt(offset int) token.Token {
	i := l.cursor + offset
	if i < 0 {
		i = 0
	}
	if i >= len(l.tokens) {
		i = len(l.tokens) - 1
	}
	return l.tokens[i]
}

// Reset rewinds the cursor to the beginning of the stream.
func (l *Lexer) Reset() {
	l.cursor = 0
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peekRune() rune {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekRuneAt(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		r := l.peekRune()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.advance()
		case r == '/' && l.peekRuneAt(1) == '/':
			for !l.atEnd() && l.peekRune() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) scanOne() token.Token {
	l.skipWhitespaceAndComments()
	if l.atEnd() {
		return token.Token{Kind: token.EOF, Line: l.line, Col: l.col}
	}

	line, col := l.line, l.col
	r := l.peekRune()

	switch {
	case isIdentStart(r):
		return l.scanIdentOrKeyword(line, col)
	case isDigit(r):
		return l.scanNumber(line, col)
	case r == '"' || r == '\'':
		return l.scanString(line, col, r)
	}

	switch r {
	case '(':
		l.advance()
		return token.Token{Kind: token.OPEN_PAREN, Text: "(", Line: line, Col: col}
	case ')':
		l.advance()
		return token.Token{Kind: token.CLOSE_PAREN, Text: ")", Line: line, Col: col}
	case '[':
		l.advance()
		return token.Token{Kind: token.OPEN_BRACKET, Text: "[", Line: line, Col: col}
	case ']':
		l.advance()
		return token.Token{Kind: token.CLOSE_BRACKET, Text: "]", Line: line, Col: col}
	case '{':
		l.advance()
		return token.Token{Kind: token.OPEN_BRACE, Text: "{", Line: line, Col: col}
	case '}':
		l.advance()
		return token.Token{Kind: token.CLOSE_BRACE, Text: "}", Line: line, Col: col}
	case ',':
		l.advance()
		return token.Token{Kind: token.COMMA, Text: ",", Line: line, Col: col}
	case '*':
		l.advance()
		return token.Token{Kind: token.ASTERISK, Text: "*", Line: line, Col: col}
	case ':':
		l.advance()
		return token.Token{Kind: token.COLON, Text: ":", Line: line, Col: col}
	case '.':
		l.advance()
		if l.peekRune() == '.' {
			l.advance()
			return token.Token{Kind: token.DOTDOT, Text: "..", Line: line, Col: col}
		}
		return token.Token{Kind: token.DOT, Text: ".", Line: line, Col: col}
	case '=':
		l.advance()
		return token.Token{Kind: token.EQUALS, Text: "=", Line: line, Col: col}
	case '<':
		l.advance()
		switch l.peekRune() {
		case '-':
			l.advance()
			return token.Token{Kind: token.BACKWARD_ARROW, Text: "<-", Line: line, Col: col}
		case '>':
			l.advance()
			return token.Token{Kind: token.NOT_EQUALS, Text: "<>", Line: line, Col: col}
		case '=':
			l.advance()
			return token.Token{Kind: token.LE, Text: "<=", Line: line, Col: col}
		}
		return token.Token{Kind: token.LT, Text: "<", Line: line, Col: col}
	case '>':
		l.advance()
		if l.peekRune() == '=' {
			l.advance()
			return token.Token{Kind: token.GE, Text: ">=", Line: line, Col: col}
		}
		return token.Token{Kind: token.GT, Text: ">", Line: line, Col: col}
	case '-':
		l.advance()
		if l.peekRune() == '>' {
			l.advance()
			return token.Token{Kind: token.FORWARD_ARROW, Text: "->", Line: line, Col: col}
		}
		return token.Token{Kind: token.MINUS, Text: "-", Line: line, Col: col}
	}

	// Unrecognized character: the lexer does not fail, it emits an
	// ILLEGAL token for the parser to record as an error.
	l.advance()
	return token.Token{Kind: token.ILLEGAL, Text: string(r), Line: line, Col: col}
}

func (l *Lexer) scanIdentOrKeyword(line, col uint32) token.Token {
	start := l.pos
	for !l.atEnd() && isIdentCont(l.peekRune()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	if kind, ok := token.Keywords[strings.ToLower(text)]; ok {
		return token.Token{Kind: kind, Text: text, Line: line, Col: col}
	}
	return token.Token{Kind: token.IDENTIFIER, Text: text, Line: line, Col: col}
}

func (l *Lexer) scanNumber(line, col uint32) token.Token {
	start := l.pos
	for !l.atEnd() && isDigit(l.peekRune()) {
		l.advance()
	}
	// A decimal point followed by a digit continues the number; a bare
	// trailing '.' (e.g. "3.." in a hop range) or '.' followed by a
	// non-digit belongs to the next token, not this one.
	if l.peekRune() == '.' && isDigit(l.peekRuneAt(1)) {
		l.advance()
		for !l.atEnd() && isDigit(l.peekRune()) {
			l.advance()
		}
	}
	return token.Token{Kind: token.NUMBER, Text: string(l.src[start:l.pos]), Line: line, Col: col}
}

func (l *Lexer) scanString(line, col uint32, quote rune) token.Token {
	l.advance() // opening quote
	var b strings.Builder
	terminated := false
	for !l.atEnd() {
		r := l.peekRune()
		if r == quote {
			l.advance()
			terminated = true
			break
		}
		if r == '\\' {
			l.advance()
			if l.atEnd() {
				break
			}
			esc := l.advance()
			switch esc {
			case quote:
				b.WriteRune(quote)
			case '\\':
				b.WriteRune('\\')
			default:
				b.WriteRune('\\')
				b.WriteRune(esc)
			}
			continue
		}
		b.WriteRune(l.advance())
	}
	if !terminated {
		return token.Token{Kind: token.ILLEGAL, Text: b.String(), Line: line, Col: col}
	}
	return token.Token{Kind: token.STRING, Text: b.String(), Line: line, Col: col}
}
