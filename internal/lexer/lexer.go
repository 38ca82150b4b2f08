// Package lexer converts source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/t0technology/awaitless/internal/token"
)

// Lexer tokenizes an input string. Create one with New and call Next until an
// EOF token is returned.
type Lexer struct {
	input     string
	filename  string
	position  int  // byte offset of ch
	next      int  // byte offset after ch
	ch        rune // current character
	line      int
	lineStart int
}

// State is a snapshot of the lexer used for lookahead.
type State struct {
	position  int
	next      int
	ch        rune
	line      int
	lineStart int
}

// New returns a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// SetFilename sets the filename reported in token positions.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the filename associated with the input.
func (l *Lexer) Filename() string {
	return l.filename
}

// SaveState returns a snapshot that RestoreState can rewind to.
func (l *Lexer) SaveState() State {
	return State{
		position:  l.position,
		next:      l.next,
		ch:        l.ch,
		line:      l.line,
		lineStart: l.lineStart,
	}
}

// RestoreState rewinds the lexer to a saved snapshot.
func (l *Lexer) RestoreState(s State) {
	l.position = s.position
	l.next = s.next
	l.ch = s.ch
	l.line = s.line
	l.lineStart = s.lineStart
}

// GetLineText returns the full line of source that contains the token.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return strings.TrimRight(l.input[start:], "\r")
	}
	return strings.TrimRight(l.input[start:start+end], "\r")
}

// Next returns the next token from the input.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespace()
	for l.ch == '/' && (l.peekChar() == '/' || l.peekChar() == '*') {
		if l.peekChar() == '/' {
			l.skipLineComment()
		} else if err := l.skipBlockComment(); err != nil {
			return l.newToken(token.ILLEGAL, ""), err
		}
		l.skipWhitespace()
	}

	start := l.pos()
	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	case '\n':
		tok := l.newToken(token.NEWLINE, "\n")
		l.readChar()
		l.line++
		l.lineStart = l.position
		return tok, nil
	case '=':
		return l.oneOrTwo(token.ASSIGN, '=', token.EQ), nil
	case '+':
		return l.oneOrTwo(token.PLUS, '=', token.PLUS_EQUALS), nil
	case '-':
		return l.oneOrTwo(token.MINUS, '=', token.MINUS_EQUALS), nil
	case '*':
		return l.oneOrTwo(token.ASTERISK, '=', token.ASTERISK_EQUALS), nil
	case '/':
		return l.oneOrTwo(token.SLASH, '=', token.SLASH_EQUALS), nil
	case '!':
		return l.oneOrTwo(token.BANG, '=', token.NOT_EQ), nil
	case '<':
		return l.oneOrTwo(token.LT, '=', token.LT_EQUALS), nil
	case '>':
		return l.oneOrTwo(token.GT, '=', token.GT_EQUALS), nil
	case '&':
		if l.peekChar() == '&' {
			return l.two(token.AND), nil
		}
	case '|':
		if l.peekChar() == '|' {
			return l.two(token.OR), nil
		}
	case '%':
		return l.single(token.MOD), nil
	case ',':
		return l.single(token.COMMA), nil
	case ';':
		return l.single(token.SEMICOLON), nil
	case ':':
		return l.single(token.COLON), nil
	case '.':
		return l.single(token.PERIOD), nil
	case '(':
		return l.single(token.LPAREN), nil
	case ')':
		return l.single(token.RPAREN), nil
	case '{':
		return l.single(token.LBRACE), nil
	case '}':
		return l.single(token.RBRACE), nil
	case '[':
		return l.single(token.LBRACKET), nil
	case ']':
		return l.single(token.RBRACKET), nil
	case '"', '\'':
		return l.readString(l.ch)
	}
	if isLetter(l.ch) {
		return l.readIdentifier(), nil
	}
	if isDigit(l.ch) {
		return l.readNumber()
	}
	tok := l.newToken(token.ILLEGAL, string(l.ch))
	ch := l.ch
	l.readChar()
	return tok, fmt.Errorf("unexpected character: %q", ch)
}

func (l *Lexer) readChar() {
	if l.next >= len(l.input) {
		l.position = len(l.input)
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.next:])
	l.position = l.next
	l.next += size
	l.ch = r
}

func (l *Lexer) peekChar() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.position - l.lineStart,
		File:      l.filename,
	}
}

// newToken builds a token starting at the current character. The end
// position is inclusive of the last character.
func (l *Lexer) newToken(typ token.Type, literal string) token.Token {
	start := l.pos()
	end := start
	if n := len(literal); n > 1 {
		end = start.Advance(n - 1)
	}
	return token.Token{Type: typ, Literal: literal, StartPosition: start, EndPosition: end}
}

func (l *Lexer) single(typ token.Type) token.Token {
	tok := l.newToken(typ, string(l.ch))
	l.readChar()
	return tok
}

func (l *Lexer) two(typ token.Type) token.Token {
	tok := l.newToken(typ, string(l.ch)+string(l.peekChar()))
	l.readChar()
	l.readChar()
	return tok
}

func (l *Lexer) oneOrTwo(one token.Type, second rune, two token.Type) token.Token {
	if l.peekChar() == second {
		return l.two(two)
	}
	return l.single(one)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() error {
	l.readChar()
	l.readChar()
	for {
		switch l.ch {
		case 0:
			return fmt.Errorf("unterminated multi-line comment")
		case '\n':
			l.readChar()
			l.line++
			l.lineStart = l.position
			continue
		case '*':
			if l.peekChar() == '/' {
				l.readChar()
				l.readChar()
				return nil
			}
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.pos()
	begin := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	literal := l.input[begin:l.position]
	return token.Token{
		Type:          token.LookupIdentifier(literal),
		Literal:       literal,
		StartPosition: start,
		EndPosition:   start.Advance(len(literal) - 1),
	}
}

func (l *Lexer) readNumber() (token.Token, error) {
	start := l.pos()
	begin := l.position
	typ := token.INT
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = token.FLOAT
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		typ = token.FLOAT
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	literal := l.input[begin:l.position]
	tok := token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   start.Advance(len(literal) - 1),
	}
	if isLetter(l.ch) || l.ch == '.' {
		bad := literal + string(l.ch)
		l.readChar()
		tok.Type = token.ILLEGAL
		return tok, fmt.Errorf("invalid decimal literal: %s", bad)
	}
	return tok, nil
}

func (l *Lexer) readString(quote rune) (token.Token, error) {
	start := l.pos()
	var out strings.Builder
	l.readChar()
	for l.ch != quote {
		switch l.ch {
		case 0, '\n':
			return token.Token{Type: token.ILLEGAL, StartPosition: start, EndPosition: l.pos()},
				fmt.Errorf("unterminated string literal")
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 'r':
				out.WriteRune('\r')
			case 't':
				out.WriteRune('\t')
			case '\\', '"', '\'':
				out.WriteRune(l.ch)
			default:
				return token.Token{Type: token.ILLEGAL, StartPosition: start, EndPosition: l.pos()},
					fmt.Errorf("invalid escape sequence: \\%c", l.ch)
			}
		default:
			out.WriteRune(l.ch)
		}
		l.readChar()
	}
	end := l.pos()
	l.readChar()
	return token.Token{
		Type:          token.STRING,
		Literal:       out.String(),
		StartPosition: start,
		EndPosition:   end,
	}, nil
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
