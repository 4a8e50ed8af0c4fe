package term

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/cockroachdb/apd"

	"github.com/ichiban/lambda/syntax"
)

// Parser turns bytes into Interface.
type Parser struct {
	Vars         []VariableWithCount
	DoubleQuotes DoubleQuotes

	lexer       *syntax.Lexer
	tokens      []syntax.Token
	operators   *Operators
	placeholder Atom
	args        []Interface
}

// VariableWithCount is a named variable which appeared in the last term and the number of its occurrences.
type VariableWithCount struct {
	Name     string
	Variable Variable
	Count    int
}

// DoubleQuotes describes how double-quoted strings are read.
type DoubleQuotes byte

const (
	// DoubleQuotesCodes reads "abc" as [0'a, 0'b, 0'c].
	DoubleQuotesCodes DoubleQuotes = iota
	// DoubleQuotesChars reads "abc" as [a, b, c].
	DoubleQuotesChars
	// DoubleQuotesAtom reads "abc" as abc.
	DoubleQuotesAtom
)

func (d DoubleQuotes) String() string {
	return [...]string{
		DoubleQuotesCodes: "codes",
		DoubleQuotesChars: "chars",
		DoubleQuotesAtom:  "atom",
	}[d]
}

// NewParser creates a Parser.
func NewParser(input *bufio.Reader, operators *Operators) *Parser {
	if operators == nil {
		ops := DefaultOperators()
		operators = &ops
	}
	return &Parser{
		lexer:     syntax.NewLexer(input),
		operators: operators,
	}
}

// Replace registers placeholder and its arguments. Every occurrence of placeholder will be replaced by arguments.
// Mismatch of the number of occurrences of placeholder and the number of arguments raises an error.
func (p *Parser) Replace(placeholder Atom, args ...interface{}) error {
	p.placeholder = placeholder
	p.args = make([]Interface, len(args))
	for i, a := range args {
		var err error
		p.args[i], err = termOf(reflect.ValueOf(a))
		if err != nil {
			return err
		}
	}
	return nil
}

func termOf(o reflect.Value) (Interface, error) {
	if !o.IsValid() {
		return NewVariable(), nil
	}

	if t, ok := o.Interface().(Interface); ok {
		return t, nil
	}

	switch o.Kind() {
	case reflect.Float32, reflect.Float64:
		return Float(o.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(o.Int()), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Integer(o.Uint()), nil
	case reflect.Bool:
		if o.Bool() {
			return Atom("true"), nil
		}
		return Atom("false"), nil
	case reflect.String:
		return Atom(o.String()), nil
	case reflect.Array, reflect.Slice:
		l := o.Len()
		es := make([]Interface, l)
		for i := 0; i < l; i++ {
			var err error
			es[i], err = termOf(o.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return List(es...), nil
	default:
		return nil, fmt.Errorf("can't convert to term: %v", o)
	}
}

func (p *Parser) peek(i int) (syntax.Token, error) {
	for len(p.tokens) <= i {
		t, err := p.lexer.Next()
		if err != nil {
			return syntax.Token{}, err
		}
		p.tokens = append(p.tokens, t)
	}
	return p.tokens[i], nil
}

func (p *Parser) next() (syntax.Token, error) {
	t, err := p.peek(0)
	if err != nil {
		return syntax.Token{}, err
	}
	p.tokens = p.tokens[1:]
	return t, nil
}

func (p *Parser) expect(k syntax.TokenKind) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	switch t.Kind {
	case k:
		return nil
	case syntax.TokenEOS:
		return syntax.ErrInsufficient
	default:
		return &UnexpectedTokenError{Expected: k, Actual: t}
	}
}

// Term parses a term followed by a full stop.
func (p *Parser) Term() (Interface, error) {
	if t, err := p.peek(0); err != nil {
		return nil, err
	} else if t.Kind == syntax.TokenEOS {
		return nil, io.EOF
	}

	p.Vars = nil

	t, err := p.term(1200)
	if err != nil {
		return nil, err
	}

	if err := p.expect(syntax.TokenPeriod); err != nil {
		return nil, err
	}

	if len(p.args) != 0 {
		return nil, fmt.Errorf("too many arguments for placeholders: %s", p.args)
	}

	return t, nil
}

// Recover skips tokens up to and including the next end token so that parsing can resume after an error.
func (p *Parser) Recover() {
	for {
		t, err := p.next()
		if err != nil || t.Kind == syntax.TokenPeriod || t.Kind == syntax.TokenEOS {
			return
		}
	}
}

// More checks if the parser has more tokens to read.
func (p *Parser) More() bool {
	t, err := p.peek(0)
	return err == nil && t.Kind != syntax.TokenEOS
}

// based on Pratt parser explained in this article: https://matklad.github.io/2020/04/13/simple-but-powerful-pratt-parsing.html
// but with ISO priorities instead of binding powers.
func (p *Parser) term(max int) (Interface, error) {
	lhs, prec, err := p.primary(max)
	if err != nil {
		return nil, err
	}

	for {
		t, err := p.peek(0)
		if err != nil {
			return nil, err
		}

		var name Atom
		switch t.Kind {
		case syntax.TokenAtom:
			name = Atom(t.Val)
		case syntax.TokenComma:
			name = ","
		case syntax.TokenBar:
			name = "|"
		default:
			return lhs, nil
		}

		if op, ok := p.operators.infix(name); ok {
			pr := int(op.Priority)
			la, ra := pr-1, pr-1
			switch op.Specifier {
			case "yfx":
				la = pr
			case "xfy":
				ra = pr
			}
			if pr <= max && prec <= la {
				_, _ = p.next()
				rhs, err := p.term(ra)
				if err != nil {
					return nil, err
				}
				lhs, prec = &Compound{Functor: name, Args: []Interface{lhs, rhs}}, pr
				continue
			}
		}

		if op, ok := p.operators.postfix(name); ok {
			pr := int(op.Priority)
			la := pr - 1
			if op.Specifier == "yf" {
				la = pr
			}
			if pr <= max && prec <= la {
				_, _ = p.next()
				lhs, prec = &Compound{Functor: name, Args: []Interface{lhs}}, pr
				continue
			}
		}

		return lhs, nil
	}
}

func (p *Parser) primary(max int) (Interface, int, error) {
	t, err := p.next()
	if err != nil {
		return nil, 0, err
	}

	switch t.Kind {
	case syntax.TokenEOS:
		return nil, 0, syntax.ErrInsufficient
	case syntax.TokenInteger, syntax.TokenFloat:
		n, err := number(t, false)
		return n, 0, err
	case syntax.TokenVariable:
		return p.variable(t.Val), 0, nil
	case syntax.TokenString:
		return p.doubleQuoted(t.Val), 0, nil
	case syntax.TokenParenL:
		inner, err := p.term(1200)
		if err != nil {
			return nil, 0, err
		}
		if err := p.expect(syntax.TokenParenR); err != nil {
			return nil, 0, err
		}
		return inner, 0, nil
	case syntax.TokenBracketL:
		if n, err := p.peek(0); err == nil && n.Kind == syntax.TokenBracketR {
			_, _ = p.next()
			return p.atom("[]", max)
		}
		l, err := p.list()
		return l, 0, err
	case syntax.TokenBraceL:
		if n, err := p.peek(0); err == nil && n.Kind == syntax.TokenBraceR {
			_, _ = p.next()
			return p.atom("{}", max)
		}
		inner, err := p.term(1200)
		if err != nil {
			return nil, 0, err
		}
		if err := p.expect(syntax.TokenBraceR); err != nil {
			return nil, 0, err
		}
		return &Compound{Functor: "{}", Args: []Interface{inner}}, 0, nil
	case syntax.TokenAtom:
		if t.Val == "-" {
			if n, err := p.peek(0); err == nil && !n.Layout && (n.Kind == syntax.TokenInteger || n.Kind == syntax.TokenFloat) {
				_, _ = p.next()
				num, err := number(n, true)
				return num, 0, err
			}
		}
		return p.atom(Atom(t.Val), max)
	default:
		return nil, 0, &UnexpectedTokenError{Actual: t}
	}
}

func (p *Parser) atom(name Atom, max int) (Interface, int, error) {
	if n, err := p.peek(0); err == nil && n.Kind == syntax.TokenParenL && !n.Layout {
		_, _ = p.next()
		args, err := p.arguments()
		if err != nil {
			return nil, 0, err
		}
		return &Compound{Functor: name, Args: args}, 0, nil
	}

	if p.placeholder != "" && p.placeholder == name {
		if len(p.args) == 0 {
			return nil, 0, errors.New("not enough arguments for placeholders")
		}
		var t Interface
		t, p.args = p.args[0], p.args[1:]
		return t, 0, nil
	}

	op, ok := p.operators.prefix(name)
	if !ok {
		return name, 0, nil
	}

	n, err := p.peek(0)
	if err != nil {
		return nil, 0, err
	}
	switch n.Kind {
	case syntax.TokenEOS, syntax.TokenPeriod, syntax.TokenComma, syntax.TokenBar, syntax.TokenParenR, syntax.TokenBracketR, syntax.TokenBraceR:
		return name, 0, nil
	case syntax.TokenAtom:
		a := Atom(n.Val)
		_, infix := p.operators.infix(a)
		_, postfix := p.operators.postfix(a)
		_, prefix := p.operators.prefix(a)
		if (infix || postfix) && !prefix {
			if f, err := p.peek(1); err != nil || f.Kind != syntax.TokenParenL || f.Layout {
				return name, 0, nil
			}
		}
	}

	pr := int(op.Priority)
	if pr > max {
		pr = 999
	}
	ap := pr - 1
	if op.Specifier == "fy" {
		ap = pr
	}
	arg, err := p.term(ap)
	if err != nil {
		return nil, 0, err
	}
	return &Compound{Functor: name, Args: []Interface{arg}}, pr, nil
}

func (p *Parser) arguments() ([]Interface, error) {
	var args []Interface
	for {
		t, err := p.term(999)
		if err != nil {
			return nil, err
		}
		args = append(args, t)

		n, err := p.next()
		if err != nil {
			return nil, err
		}
		switch n.Kind {
		case syntax.TokenParenR:
			return args, nil
		case syntax.TokenComma:
			continue
		case syntax.TokenEOS:
			return nil, syntax.ErrInsufficient
		default:
			return nil, &UnexpectedTokenError{Expected: syntax.TokenParenR, Actual: n}
		}
	}
}

func (p *Parser) list() (Interface, error) {
	var es []Interface
	for {
		e, err := p.term(999)
		if err != nil {
			return nil, err
		}
		es = append(es, e)

		n, err := p.next()
		if err != nil {
			return nil, err
		}
		switch n.Kind {
		case syntax.TokenComma:
			continue
		case syntax.TokenBar:
			rest, err := p.term(999)
			if err != nil {
				return nil, err
			}
			if err := p.expect(syntax.TokenBracketR); err != nil {
				return nil, err
			}
			return ListRest(rest, es...), nil
		case syntax.TokenBracketR:
			return List(es...), nil
		case syntax.TokenEOS:
			return nil, syntax.ErrInsufficient
		default:
			return nil, &UnexpectedTokenError{Expected: syntax.TokenBracketR, Actual: n}
		}
	}
}

func (p *Parser) variable(name string) Interface {
	if name == "_" {
		return NewVariable()
	}
	for i, e := range p.Vars {
		if e.Name == name {
			p.Vars[i].Count++
			return e.Variable
		}
	}
	v := NewVariable()
	p.Vars = append(p.Vars, VariableWithCount{Name: name, Variable: v, Count: 1})
	return v
}

func (p *Parser) doubleQuoted(s string) Interface {
	switch p.DoubleQuotes {
	case DoubleQuotesAtom:
		return Atom(s)
	case DoubleQuotesChars:
		var es []Interface
		for _, r := range s {
			es = append(es, Atom(string(r)))
		}
		return List(es...)
	default:
		var es []Interface
		for _, r := range s {
			es = append(es, Integer(r))
		}
		return List(es...)
	}
}

func number(t syntax.Token, negative bool) (Interface, error) {
	s := t.Val
	if negative {
		s = "-" + s
	}
	switch t.Kind {
	case syntax.TokenFloat:
		d, _, err := apd.NewFromString(s)
		if err != nil {
			return nil, err
		}
		f, err := d.Float64()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return Integer(n), nil
	}
}

// UnexpectedTokenError is returned when the parser meets a token it can't accept.
type UnexpectedTokenError struct {
	Expected syntax.TokenKind
	Actual   syntax.Token
}

func (e UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token: %s", e.Actual)
}
