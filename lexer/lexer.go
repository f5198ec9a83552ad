// Package lexer turns FormCalc source text into a token stream (spec §4.1).
package lexer

import (
	"strings"
	"unicode"

	"github.com/nsforge/formcalc/cerr"
)

// Lexer scans a FormCalc source string into tokens, one at a time.
type Lexer struct {
	src    string
	pos    int // index into runes of the next unread rune
	runes  []rune
	offset []int // byte offset of each rune in runes, for error reporting
}

// New returns a Lexer over src.
func New(src string) *Lexer {
	runes := make([]rune, 0, len(src))
	offsets := make([]int, 0, len(src))
	for i, r := range src {
		runes = append(runes, r)
		offsets = append(offsets, i)
	}
	return &Lexer{src: src, runes: runes, offset: offsets}
}

// Tokenize scans the entire source and returns the resulting tokens, always
// terminated by a single EOF token. Returns the first lexical error encountered.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) cur() (rune, bool) {
	if l.pos >= len(l.runes) {
		return 0, false
	}
	return l.runes[l.pos], true
}

func (l *Lexer) curOffset() int {
	if l.pos >= len(l.offset) {
		return len(l.src)
	}
	return l.offset[l.pos]
}

func (l *Lexer) peekAt(n int) (rune, bool) {
	idx := l.pos + n
	if idx >= len(l.runes) {
		return 0, false
	}
	return l.runes[idx], true
}

func (l *Lexer) advance() {
	l.pos++
}

func (l *Lexer) skipWhitespace() {
	for {
		r, ok := l.cur()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

// Next scans and returns the next token, or an EOF token once input is exhausted.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	start := l.curOffset()
	r, ok := l.cur()
	if !ok {
		return Token{Kind: EOF, Offset: start}, nil
	}

	switch {
	case r >= '0' && r <= '9':
		return l.readNumber()
	case r == '\'':
		return l.readString()
	case isIdentStart(r):
		return l.readIdentifierOrKeyword()
	}

	switch r {
	case '+':
		l.advance()
		return Token{Kind: Plus, Lexeme: "+", Offset: start}, nil
	case '-':
		l.advance()
		return Token{Kind: Minus, Lexeme: "-", Offset: start}, nil
	case '*':
		l.advance()
		return Token{Kind: Star, Lexeme: "*", Offset: start}, nil
	case '/':
		l.advance()
		return Token{Kind: Slash, Lexeme: "/", Offset: start}, nil
	case '^':
		l.advance()
		return Token{Kind: Caret, Lexeme: "^", Offset: start}, nil
	case '=':
		l.advance()
		return Token{Kind: Eq, Lexeme: "=", Offset: start}, nil
	case '!':
		l.advance()
		return Token{Kind: Bang, Lexeme: "!", Offset: start}, nil
	case '(':
		l.advance()
		return Token{Kind: LParen, Lexeme: "(", Offset: start}, nil
	case ')':
		l.advance()
		return Token{Kind: RParen, Lexeme: ")", Offset: start}, nil
	case ',':
		l.advance()
		return Token{Kind: Comma, Lexeme: ",", Offset: start}, nil
	case '<':
		l.advance()
		if n, ok := l.cur(); ok && n == '>' {
			l.advance()
			return Token{Kind: NotEq, Lexeme: "<>", Offset: start}, nil
		}
		if n, ok := l.cur(); ok && n == '=' {
			l.advance()
			return Token{Kind: LtEq, Lexeme: "<=", Offset: start}, nil
		}
		return Token{Kind: Lt, Lexeme: "<", Offset: start}, nil
	case '>':
		l.advance()
		if n, ok := l.cur(); ok && n == '=' {
			l.advance()
			return Token{Kind: GtEq, Lexeme: ">=", Offset: start}, nil
		}
		return Token{Kind: Gt, Lexeme: ">", Offset: start}, nil
	default:
		return Token{}, cerr.New(cerr.LexError, "unexpected character %q", r).WithOffset(start)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) readIdentifierOrKeyword() (Token, error) {
	start := l.curOffset()
	startPos := l.pos
	for {
		r, ok := l.cur()
		if !ok || !isIdentPart(r) {
			break
		}
		l.advance()
	}
	text := string(l.runes[startPos:l.pos])
	lower := strings.ToLower(text)
	if kind, isKw := keywords[lower]; isKw {
		if kind == KwTrue || kind == KwFalse {
			return Token{Kind: kind, Lexeme: lower, Offset: start}, nil
		}
		return Token{Kind: kind, Lexeme: text, Offset: start}, nil
	}
	return Token{Kind: Identifier, Lexeme: text, Offset: start}, nil
}

func (l *Lexer) readNumber() (Token, error) {
	start := l.curOffset()
	startPos := l.pos
	for {
		r, ok := l.cur()
		if !ok || r < '0' || r > '9' {
			break
		}
		l.advance()
	}
	if r, ok := l.cur(); ok && r == '.' {
		if next, ok := l.peekAt(1); ok && next >= '0' && next <= '9' {
			l.advance() // consume '.'
			for {
				r, ok := l.cur()
				if !ok || r < '0' || r > '9' {
					break
				}
				l.advance()
			}
		}
	}
	text := string(l.runes[startPos:l.pos])
	return Token{Kind: Number, Lexeme: text, Offset: start}, nil
}

func (l *Lexer) readString() (Token, error) {
	start := l.curOffset()
	l.advance() // opening '
	var sb strings.Builder
	for {
		r, ok := l.cur()
		if !ok {
			return Token{}, cerr.New(cerr.LexError, "unterminated string").WithOffset(start)
		}
		if r == '\'' {
			l.advance()
			return Token{Kind: String, Lexeme: sb.String(), Offset: start}, nil
		}
		if r == '\\' {
			l.advance()
			esc, ok := l.cur()
			if !ok {
				return Token{}, cerr.New(cerr.LexError, "unterminated string").WithOffset(start)
			}
			switch esc {
			case '\\':
				sb.WriteByte('\\')
			case '\'':
				sb.WriteByte('\'')
			case 'n':
				sb.WriteByte('\n')
			default:
				sb.WriteRune(esc)
			}
			l.advance()
			continue
		}
		sb.WriteRune(r)
		l.advance()
	}
}
