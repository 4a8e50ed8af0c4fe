package syntax

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Lexer turns bytes into tokens.
type Lexer struct {
	input  *bufio.Reader
	tokens []Token
	layout bool
	pos    int

	// last is the most recently read rune. backup pushes it onto pending.
	last    readRune
	pending []readRune
}

type readRune struct {
	r     rune
	width int
}

// NewLexer creates a lexer with an input.
func NewLexer(input *bufio.Reader) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.layout = false
	state := lexState(l.start)
	for state != nil && len(l.tokens) == 0 {
		r, err := l.next()
		if err != nil {
			return Token{}, err
		}
		state, err = state(r)
		if err != nil {
			return Token{}, err
		}
	}

	if len(l.tokens) > 0 {
		var t Token
		t, l.tokens = l.tokens[0], l.tokens[1:]
		return t, nil
	}

	return Token{}, errors.New("no match")
}

// Pos returns the number of bytes consumed so far.
func (l *Lexer) Pos() int {
	return l.pos
}

const etx = 0x2

func (l *Lexer) next() (rune, error) {
	if n := len(l.pending); n > 0 {
		l.last, l.pending = l.pending[n-1], l.pending[:n-1]
		l.pos += l.last.width
		return l.last.r, nil
	}

	r, w, err := l.input.ReadRune()
	switch err {
	case nil:
		break
	case io.EOF:
		r = etx
		w = 0
	default:
		return 0, err
	}
	l.last = readRune{r: r, width: w}
	l.pos += w
	return r, nil
}

func (l *Lexer) backup() {
	l.pending = append(l.pending, l.last)
	l.pos -= l.last.width
}

// peek returns the rune after the current one without consuming it. A following backup still returns the current one.
func (l *Lexer) peek() (rune, error) {
	last := l.last
	r, err := l.next()
	if err != nil {
		return 0, err
	}
	l.backup()
	l.last = last
	return r, nil
}

func (l *Lexer) emit(t Token) {
	t.Layout = l.layout
	l.tokens = append(l.tokens, t)
}

// Token is a smallest meaningful unit of prolog program.
type Token struct {
	Kind TokenKind
	Val  string

	// Layout reports whether the token was preceded by white space or comments.
	Layout bool
}

func (t Token) String() string {
	return fmt.Sprintf("<%s %s>", t.Kind, t.Val)
}

// TokenKind is a type of Token.
type TokenKind byte

const (
	// TokenEOS represents an end of token stream.
	TokenEOS TokenKind = iota

	// TokenVariable represents a variable token.
	TokenVariable

	// TokenFloat represents a floating-point token.
	TokenFloat

	// TokenInteger represents an integer token.
	TokenInteger

	// TokenAtom represents an atom token.
	TokenAtom

	// TokenString represents a double-quoted string.
	TokenString

	// TokenComma represents a comma.
	TokenComma

	// TokenPeriod represents an end token.
	TokenPeriod

	// TokenBar represents a bar.
	TokenBar

	// TokenParenL represents an open parenthesis.
	TokenParenL

	// TokenParenR represents a close parenthesis.
	TokenParenR

	// TokenBracketL represents an open bracket.
	TokenBracketL

	// TokenBracketR represents a close bracket.
	TokenBracketR

	// TokenBraceL represents an open brace.
	TokenBraceL

	// TokenBraceR represents a close brace.
	TokenBraceR

	tokenLen
)

func (k TokenKind) String() string {
	return [tokenLen]string{
		TokenEOS:      "eos",
		TokenVariable: "variable",
		TokenFloat:    "float",
		TokenInteger:  "integer",
		TokenAtom:     "atom",
		TokenString:   "string",
		TokenComma:    "comma",
		TokenPeriod:   "period",
		TokenBar:      "bar",
		TokenParenL:   "paren L",
		TokenParenR:   "paren R",
		TokenBracketL: "bracket L",
		TokenBracketR: "bracket R",
		TokenBraceL:   "brace L",
		TokenBraceR:   "brace R",
	}[k]
}

type lexState func(rune) (lexState, error)

func (l *Lexer) start(r rune) (lexState, error) {
	switch {
	case r == etx:
		l.emit(Token{Kind: TokenEOS})
		return nil, nil
	case unicode.IsSpace(r):
		l.layout = true
		return l.start, nil
	case r == '%':
		l.layout = true
		return l.singleLineComment(l.start), nil
	case r == '/':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.multiLineCommentBegin(&b), nil
	case unicode.IsLower(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.normalAtom(&b), nil
	case unicode.IsUpper(r), r == '_':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.variable(&b), nil
	case unicode.IsDigit(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		if r == '0' {
			return l.integerZero(&b), nil
		}
		return l.integerDecimal(&b), nil
	case isGraphic(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.graphic(&b), nil
	case r == '\'':
		var b strings.Builder
		return l.quoted('\'', TokenAtom, &b), nil
	case r == '"':
		var b strings.Builder
		return l.quoted('"', TokenString, &b), nil
	case r == ';', r == '!':
		l.emit(Token{Kind: TokenAtom, Val: string(r)})
		return nil, nil
	case r == ',':
		l.emit(Token{Kind: TokenComma, Val: ","})
		return nil, nil
	case r == '|':
		l.emit(Token{Kind: TokenBar, Val: "|"})
		return nil, nil
	case r == '(':
		l.emit(Token{Kind: TokenParenL, Val: "("})
		return nil, nil
	case r == ')':
		l.emit(Token{Kind: TokenParenR, Val: ")"})
		return nil, nil
	case r == '[':
		l.emit(Token{Kind: TokenBracketL, Val: "["})
		return nil, nil
	case r == ']':
		l.emit(Token{Kind: TokenBracketR, Val: "]"})
		return nil, nil
	case r == '{':
		l.emit(Token{Kind: TokenBraceL, Val: "{"})
		return nil, nil
	case r == '}':
		l.emit(Token{Kind: TokenBraceR, Val: "}"})
		return nil, nil
	default:
		return nil, UnexpectedRuneError{rune: r}
	}
}

func (l *Lexer) normalAtom(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case isAlnum(r):
			_, _ = b.WriteRune(r)
			return l.normalAtom(b), nil
		default:
			l.backup()
			l.emit(Token{Kind: TokenAtom, Val: b.String()})
			return nil, nil
		}
	}
}

func (l *Lexer) variable(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case isAlnum(r):
			_, _ = b.WriteRune(r)
			return l.variable(b), nil
		default:
			l.backup()
			l.emit(Token{Kind: TokenVariable, Val: b.String()})
			return nil, nil
		}
	}
}

func (l *Lexer) graphic(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case isGraphic(r):
			_, _ = b.WriteRune(r)
			return l.graphic(b), nil
		case b.String() == "." && (r == etx || r == '%' || unicode.IsSpace(r)):
			l.backup()
			l.emit(Token{Kind: TokenPeriod, Val: "."})
			return nil, nil
		default:
			l.backup()
			l.emit(Token{Kind: TokenAtom, Val: b.String()})
			return nil, nil
		}
	}
}

func (l *Lexer) quoted(quote rune, kind TokenKind, b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			return nil, ErrInsufficient
		case quote:
			return l.quotedQuote(quote, kind, b), nil
		case '\\':
			return l.quotedEscape(quote, kind, b), nil
		default:
			_, _ = b.WriteRune(r)
			return l.quoted(quote, kind, b), nil
		}
	}
}

func (l *Lexer) quotedQuote(quote rune, kind TokenKind, b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		if r == quote {
			_, _ = b.WriteRune(r)
			return l.quoted(quote, kind, b), nil
		}
		l.backup()
		l.emit(Token{Kind: kind, Val: b.String()})
		return nil, nil
	}
}

func (l *Lexer) quotedEscape(quote rune, kind TokenKind, b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			return nil, ErrInsufficient
		case '\n':
			return l.quoted(quote, kind, b), nil
		case 'x':
			var code strings.Builder
			return l.quotedEscapeCode(quote, kind, b, 16, &code), nil
		}
		if unicode.IsDigit(r) {
			var code strings.Builder
			_, _ = code.WriteRune(r)
			return l.quotedEscapeCode(quote, kind, b, 8, &code), nil
		}
		e, ok := escape(r)
		if !ok {
			return nil, UnexpectedRuneError{rune: r}
		}
		_, _ = b.WriteRune(e)
		return l.quoted(quote, kind, b), nil
	}
}

func (l *Lexer) quotedEscapeCode(quote rune, kind TokenKind, b *strings.Builder, base int, code *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case r == '\\':
			n, err := strconv.ParseInt(code.String(), base, 32)
			if err != nil {
				return nil, err
			}
			_, _ = b.WriteRune(rune(n))
			return l.quoted(quote, kind, b), nil
		case unicode.Is(unicode.ASCII_Hex_Digit, r):
			_, _ = code.WriteRune(r)
			return l.quotedEscapeCode(quote, kind, b, base, code), nil
		default:
			return nil, UnexpectedRuneError{rune: r}
		}
	}
}

func (l *Lexer) integerZero(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch r {
		case '\'':
			return l.integerChar, nil
		case 'x':
			return l.integerBase(16), nil
		case 'o':
			return l.integerBase(8), nil
		case 'b':
			return l.integerBase(2), nil
		default:
			l.backup()
			return l.integerDecimal(b), nil
		}
	}
}

func (l *Lexer) integerChar(r rune) (lexState, error) {
	switch r {
	case etx:
		return nil, ErrInsufficient
	case '\\':
		return func(r rune) (lexState, error) {
			e, ok := escape(r)
			if !ok {
				return nil, UnexpectedRuneError{rune: r}
			}
			l.emit(Token{Kind: TokenInteger, Val: strconv.Itoa(int(e))})
			return nil, nil
		}, nil
	case '\'':
		return func(r rune) (lexState, error) {
			if r != '\'' {
				l.backup()
			}
			l.emit(Token{Kind: TokenInteger, Val: strconv.Itoa('\'')})
			return nil, nil
		}, nil
	default:
		l.emit(Token{Kind: TokenInteger, Val: strconv.Itoa(int(r))})
		return nil, nil
	}
}

func (l *Lexer) integerBase(base int) lexState {
	var digits strings.Builder
	var state lexState
	state = func(r rune) (lexState, error) {
		if _, err := strconv.ParseInt(string(r), base, 8); err == nil {
			_, _ = digits.WriteRune(r)
			return state, nil
		}
		l.backup()
		if digits.Len() == 0 {
			return nil, UnexpectedRuneError{rune: r}
		}
		n, err := strconv.ParseInt(digits.String(), base, 64)
		if err != nil {
			return nil, err
		}
		l.emit(Token{Kind: TokenInteger, Val: strconv.FormatInt(n, 10)})
		return nil, nil
	}
	return state
}

func (l *Lexer) integerDecimal(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r), r == '_':
			if r != '_' {
				_, _ = b.WriteRune(r)
			}
			return l.integerDecimal(b), nil
		case r == '.' && l.peekDigit():
			_, _ = b.WriteRune(r)
			return l.floatFraction(b), nil
		default:
			l.backup()
			l.emit(Token{Kind: TokenInteger, Val: b.String()})
			return nil, nil
		}
	}
}

func (l *Lexer) floatFraction(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.floatFraction(b), nil
		case r == 'e' || r == 'E':
			_, _ = b.WriteRune(r)
			return l.floatExponentSign(b), nil
		default:
			l.backup()
			l.emit(Token{Kind: TokenFloat, Val: b.String()})
			return nil, nil
		}
	}
}

func (l *Lexer) floatExponentSign(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case r == '+' || r == '-':
			_, _ = b.WriteRune(r)
			return l.floatExponent(b), nil
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.floatExponent(b), nil
		default:
			return nil, UnexpectedRuneError{rune: r}
		}
	}
}

func (l *Lexer) floatExponent(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.floatExponent(b), nil
		default:
			l.backup()
			l.emit(Token{Kind: TokenFloat, Val: b.String()})
			return nil, nil
		}
	}
}

func (l *Lexer) peekDigit() bool {
	r, err := l.peek()
	if err != nil {
		return false
	}
	return '0' <= r && r <= '9'
}

func (l *Lexer) singleLineComment(ctx lexState) lexState {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			l.backup()
			return ctx, nil
		case '\n':
			return ctx, nil
		default:
			return l.singleLineComment(ctx), nil
		}
	}
}

func (l *Lexer) multiLineCommentBegin(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case r == '*':
			l.layout = true
			return l.multiLineCommentBody, nil
		default:
			l.backup()
			return l.graphic(b), nil
		}
	}
}

func (l *Lexer) multiLineCommentBody(r rune) (lexState, error) {
	switch r {
	case etx:
		return nil, ErrInsufficient
	case '*':
		return l.multiLineCommentEnd, nil
	default:
		return l.multiLineCommentBody, nil
	}
}

func (l *Lexer) multiLineCommentEnd(r rune) (lexState, error) {
	switch r {
	case etx:
		return nil, ErrInsufficient
	case '/':
		return l.start, nil
	case '*':
		return l.multiLineCommentEnd, nil
	default:
		return l.multiLineCommentBody, nil
	}
}

func escape(r rune) (rune, bool) {
	switch r {
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'v':
		return '\v', true
	case '\\', '\'', '"', '`':
		return r, true
	default:
		return 0, false
	}
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isGraphic(r rune) bool {
	return strings.ContainsRune("#$&*+-./:<=>?@^~\\", r)
}

// IsExtendedGraphic checks if the rune is a graphic token, comma, or semicolon.
func IsExtendedGraphic(r rune) bool {
	return strings.ContainsRune(",;", r) || isGraphic(r)
}

// ErrInsufficient represents an error which is raised when the given input is insufficient for a term.
var ErrInsufficient = errors.New("insufficient input")

// UnexpectedRuneError represents an error which is raised when the given input contains an unexpected rune.
type UnexpectedRuneError struct {
	rune rune
}

func (e UnexpectedRuneError) Error() string {
	return fmt.Sprintf("unexpected char: %s", string(e.rune))
}
