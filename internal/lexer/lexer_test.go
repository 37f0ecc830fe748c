package lexer

import (
	"testing"

	"github.com/corvidgraph/cyql/internal/token"
	"github.com/stretchr/testify/require"
)

func kinds(l *Lexer) []token.Kind {
	var out []token.Kind
	for {
		tok := l.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestLexerBasicClause(t *testing.T) {
	l := New(`MATCH (p:Person {name: "Alice"}) WHERE p.age > 30 RETURN p.name`)
	got := kinds(l)
	want := []token.Kind{
		token.MATCH, token.OPEN_PAREN, token.IDENTIFIER, token.COLON, token.IDENTIFIER,
		token.OPEN_BRACE, token.IDENTIFIER, token.COLON, token.STRING, token.CLOSE_BRACE,
		token.CLOSE_PAREN, token.WHERE, token.IDENTIFIER, token.DOT, token.IDENTIFIER,
		token.GT, token.NUMBER, token.RETURN, token.IDENTIFIER, token.DOT, token.IDENTIFIER,
		token.EOF,
	}
	require.Equal(t, want, got)
}

func TestLexerArrowsAndVariableLength(t *testing.T) {
	l := New(`(a)-[r:KNOWS*1..3]->(b)<-[:LIKES]-(c)-[]-(d)`)
	got := kinds(l)
	require.Contains(t, got, token.FORWARD_ARROW)
	require.Contains(t, got, token.BACKWARD_ARROW)
	require.Contains(t, got, token.DOTDOT)
	require.Contains(t, got, token.ASTERISK)
	require.Contains(t, got, token.MINUS)
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	l := New(`match Where create SET delete DETACH`)
	got := kinds(l)
	want := []token.Kind{token.MATCH, token.WHERE, token.CREATE, token.SET, token.DELETE, token.DETACH, token.EOF}
	require.Equal(t, want, got)
}

func TestLexerStringEscapes(t *testing.T) {
	l := New(`"a \"quoted\" string" 'single \'s\' quote'`)
	first := l.Next()
	require.Equal(t, token.STRING, first.Kind)
	require.Equal(t, `a "quoted" string`, first.Text)

	second := l.Next()
	require.Equal(t, token.STRING, second.Kind)
	require.Equal(t, `single 's' quote`, second.Text)
}

func TestLexerUnterminatedStringIsIllegal(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.Next()
	require.Equal(t, token.ILLEGAL, tok.Kind)
}

func TestLexerUnknownCharacterIsIllegal(t *testing.T) {
	l := New(`MATCH (a) ~ RETURN a`)
	var illegal *token.Token
	for {
		tok := l.Next()
		if tok.Kind == token.ILLEGAL {
			cp := tok
			illegal = &cp
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	require.NotNil(t, illegal)
	require.Equal(t, "~", illegal.Text)
}

func TestLexerResetRewinds(t *testing.T) {
	l := New(`MATCH (a)`)
	first := l.Next()
	require.Equal(t, token.MATCH, first.Kind)
	l.Reset()
	again := l.Next()
	require.Equal(t, token.MATCH, again.Kind)
}

func TestLexerLineColTracking(t *testing.T) {
	l := New("MATCH (a)\nWHERE a.x = 1")
	for {
		tok := l.Next()
		if tok.Kind == token.WHERE {
			require.EqualValues(t, 2, tok.Line)
			require.EqualValues(t, 1, tok.Col)
			return
		}
		if tok.Kind == token.EOF {
			t.Fatal("WHERE token not found")
		}
	}
}

func TestLexerDecimalNumber(t *testing.T) {
	l := New(`3.14 42`)
	first := l.Next()
	require.Equal(t, token.NUMBER, first.Kind)
	require.Equal(t, "3.14", first.Text)
	second := l.Next()
	require.Equal(t, token.NUMBER, second.Kind)
	require.Equal(t, "42", second.Text)
}

func TestLexerVariableLengthRangeDotDot(t *testing.T) {
	// "1..3" must not be swallowed as a single decimal-looking number.
	l := New(`1..3`)
	first := l.Next()
	require.Equal(t, token.NUMBER, first.Kind)
	require.Equal(t, "1", first.Text)
	dotdot := l.Next()
	require.Equal(t, token.DOTDOT, dotdot.Kind)
	third := l.Next()
	require.Equal(t, token.NUMBER, third.Kind)
	require.Equal(t, "3", third.Text)
}
