// lexer.go — byte scanner for the restricted C subset.
package stepscope

import (
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LPAREN // "("
	RPAREN // ")"
	LBRACE // "{"
	RBRACE // "}"
	SEMI   // ";"
	COMMA  // ","

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	ASSIGN         // "="
	PLUS_ASSIGN    // "+="
	MINUS_ASSIGN   // "-="
	STAR_ASSIGN    // "*="
	SLASH_ASSIGN   // "/="
	PERCENT_ASSIGN // "%="
	INC            // "++"
	DEC            // "--"
	EQ             // "=="
	NEQ            // "!="
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
	SHIFT_LEFT // "<<" (the output operator)
	AND_AND    // "&&"
	OR_OR      // "||"
	BANG       // "!"

	// Literals & identifiers
	ID
	INTEGER
	STRING

	// Keywords
	KW_INT
	KW_LONG
	KW_SHORT
	KW_CHAR
	KW_BOOL
	KW_FLOAT
	KW_DOUBLE
	KW_FOR
	KW_WHILE
	KW_DO
	KW_IF
	KW_ELSE
	KW_COUT
	KW_ENDL
	KW_TRUE
	KW_FALSE
	KW_RETURN
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string // raw text slice
	Literal any    // parsed value for literals
	Line    int    // 1-based
	Col     int    // 0-based
}

// keywords map
var keywords = map[string]TokenType{
	"int":    KW_INT,
	"long":   KW_LONG,
	"short":  KW_SHORT,
	"char":   KW_CHAR,
	"bool":   KW_BOOL,
	"float":  KW_FLOAT,
	"double": KW_DOUBLE,
	"for":    KW_FOR,
	"while":  KW_WHILE,
	"do":     KW_DO,
	"if":     KW_IF,
	"else":   KW_ELSE,
	"cout":   KW_COUT,
	"endl":   KW_ENDL,
	"true":   KW_TRUE,
	"false":  KW_FALSE,
	"return": KW_RETURN,
}

// typeKeyword reports whether t names an integer-family declaration type
// the restricted grammar accepts.
func typeKeyword(t TokenType) bool {
	switch t {
	case KW_INT, KW_LONG, KW_SHORT, KW_CHAR, KW_BOOL, KW_FLOAT, KW_DOUBLE:
		return true
	}
	return false
}

// Lexer scans restricted-subset source into tokens. Preprocessor lines
// ('#...') and comments are skipped outright; line numbering is still
// advanced through them so token lines match the original file.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

// Scan tokenizes the whole source. On failure it returns a *LexError
// carrying the 1-based line and 0-based column of the offending byte.
func (l *Lexer) Scan() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.cur
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Col: l.col})
	return l.tokens, nil
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekNext() byte {
	if l.cur+1 >= len(l.src) {
		return 0
	}
	return l.src[l.cur+1]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.src[l.cur] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) add(t TokenType) { l.addLit(t, nil) }

func (l *Lexer) addLit(t TokenType, lit any) {
	l.tokens = append(l.tokens, Token{
		Type:    t,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	})
}

func (l *Lexer) errf(msg string) error {
	return &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: msg}
}

func (l *Lexer) scanToken() error {
	ch := l.advance()
	switch ch {
	case ' ', '\t', '\r', '\n':
		return nil
	case '#':
		// Preprocessor directive: consume to end of line.
		for !l.isAtEnd() && l.peek() != '\n' {
			l.advance()
		}
		return nil
	case '(':
		l.add(LPAREN)
	case ')':
		l.add(RPAREN)
	case '{':
		l.add(LBRACE)
	case '}':
		l.add(RBRACE)
	case ';':
		l.add(SEMI)
	case ',':
		l.add(COMMA)
	case '+':
		if l.match('+') {
			l.add(INC)
		} else if l.match('=') {
			l.add(PLUS_ASSIGN)
		} else {
			l.add(PLUS)
		}
	case '-':
		if l.match('-') {
			l.add(DEC)
		} else if l.match('=') {
			l.add(MINUS_ASSIGN)
		} else {
			l.add(MINUS)
		}
	case '*':
		if l.match('=') {
			l.add(STAR_ASSIGN)
		} else {
			l.add(STAR)
		}
	case '/':
		if l.match('/') {
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		} else if l.match('*') {
			for !l.isAtEnd() && !(l.peek() == '*' && l.peekNext() == '/') {
				l.advance()
			}
			if l.isAtEnd() {
				return l.errf("unterminated block comment")
			}
			l.advance() // '*'
			l.advance() // '/'
		} else if l.match('=') {
			l.add(SLASH_ASSIGN)
		} else {
			l.add(SLASH)
		}
	case '%':
		if l.match('=') {
			l.add(PERCENT_ASSIGN)
		} else {
			l.add(PERCENT)
		}
	case '=':
		if l.match('=') {
			l.add(EQ)
		} else {
			l.add(ASSIGN)
		}
	case '!':
		if l.match('=') {
			l.add(NEQ)
		} else {
			l.add(BANG)
		}
	case '<':
		if l.match('<') {
			l.add(SHIFT_LEFT)
		} else if l.match('=') {
			l.add(LESS_EQ)
		} else {
			l.add(LESS)
		}
	case '>':
		if l.match('=') {
			l.add(GREATER_EQ)
		} else {
			l.add(GREATER)
		}
	case '&':
		if l.match('&') {
			l.add(AND_AND)
		} else {
			return l.errf("unexpected character '&'")
		}
	case '|':
		if l.match('|') {
			l.add(OR_OR)
		} else {
			return l.errf("unexpected character '|'")
		}
	case '"':
		return l.scanString()
	case '\'':
		return l.scanChar()
	default:
		switch {
		case isDigit(ch):
			return l.scanNumber()
		case isAlpha(ch):
			l.scanIdent()
		default:
			return l.errf("unexpected character " + strconv.QuoteRune(rune(ch)))
		}
	}
	return nil
}

func (l *Lexer) scanString() error {
	var sb []byte
	for !l.isAtEnd() && l.peek() != '"' {
		c := l.advance()
		if c == '\n' {
			return l.errf("unterminated string literal")
		}
		if c == '\\' && !l.isAtEnd() {
			sb = append(sb, unescape(l.advance()))
			continue
		}
		sb = append(sb, c)
	}
	if l.isAtEnd() {
		return l.errf("unterminated string literal")
	}
	l.advance() // closing quote
	l.addLit(STRING, string(sb))
	return nil
}

// scanChar treats a character literal as a one-character string value,
// which is how probes stringify chars as well.
func (l *Lexer) scanChar() error {
	if l.isAtEnd() {
		return l.errf("unterminated character literal")
	}
	c := l.advance()
	if c == '\\' {
		if l.isAtEnd() {
			return l.errf("unterminated character literal")
		}
		c = unescape(l.advance())
	}
	if l.isAtEnd() || l.peek() != '\'' {
		return l.errf("unterminated character literal")
	}
	l.advance()
	l.addLit(STRING, string(c))
	return nil
}

func (l *Lexer) scanNumber() error {
	for !l.isAtEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if !l.isAtEnd() && l.peek() == '.' {
		return l.errf("floating-point literals are outside the restricted grammar")
	}
	n, err := strconv.ParseInt(l.src[l.start:l.cur], 10, 64)
	if err != nil {
		return l.errf("integer literal out of range")
	}
	l.addLit(INTEGER, n)
	return nil
}

func (l *Lexer) scanIdent() {
	for !l.isAtEnd() && isAlphaNum(l.peek()) {
		l.advance()
	}
	word := l.src[l.start:l.cur]
	if kw, ok := keywords[word]; ok {
		switch kw {
		case KW_TRUE:
			l.addLit(KW_TRUE, true)
		case KW_FALSE:
			l.addLit(KW_FALSE, false)
		default:
			l.add(kw)
		}
		return
	}
	l.addLit(ID, word)
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNum(c byte) bool { return isAlpha(c) || isDigit(c) }
