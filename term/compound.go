package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/ichiban/lambda/syntax"
)

// Compound is a prolog compound.
type Compound struct {
	Functor Atom
	Args    []Interface
}

func (c *Compound) String() string {
	var sb strings.Builder
	_ = c.WriteTerm(&sb, DefaultWriteTermOptions, nil)
	return sb.String()
}

// WriteTerm writes the compound into w.
func (c *Compound) WriteTerm(w io.Writer, opts WriteTermOptions, env *Env) error {
	ew := errWriter{w: w}
	c.write(&ew, opts, env)
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprint(ew.w, s)
}

func (ew *errWriter) term(t Interface, opts WriteTermOptions, env *Env, priority int) {
	if ew.err != nil {
		return
	}
	opts.Priority = priority
	var sb strings.Builder
	if err := Write(&sb, t, opts, env); err != nil {
		ew.err = err
		return
	}
	ew.print(sb.String())
}

func (c *Compound) write(ew *errWriter, opts WriteTermOptions, env *Env) {
	if opts.Priority == 0 {
		opts.Priority = 1200
	}

	switch {
	case c.Functor == "." && len(c.Args) == 2:
		c.writeList(ew, opts, env)
		return
	case c.Functor == "{}" && len(c.Args) == 1:
		ew.print("{")
		ew.term(c.Args[0], opts, env, 1200)
		ew.print("}")
		return
	case opts.NumberVars && c.Functor == "$VAR" && len(c.Args) == 1:
		if n, ok := env.Resolve(c.Args[0]).(Integer); ok && n >= 0 {
			const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
			i, j := int(n)%len(letters), int(n)/len(letters)
			if j == 0 {
				ew.print(string(letters[i]))
				return
			}
			ew.print(fmt.Sprintf("%s%d", string(letters[i]), j))
			return
		}
	}

	switch len(c.Args) {
	case 1:
		if op, ok := opts.Ops.prefix(c.Functor); ok {
			c.writePrefix(ew, op, opts, env)
			return
		}
		if op, ok := opts.Ops.postfix(c.Functor); ok {
			c.writePostfix(ew, op, opts, env)
			return
		}
	case 2:
		if op, ok := opts.Ops.infix(c.Functor); ok {
			c.writeInfix(ew, op, opts, env)
			return
		}
	}

	ew.term(c.Functor, opts, env, 0)
	ew.print("(")
	for i, arg := range c.Args {
		if i > 0 {
			ew.print(", ")
		}
		ew.term(arg, opts, env, 999)
	}
	ew.print(")")
}

func (c *Compound) writeList(ew *errWriter, opts WriteTermOptions, env *Env) {
	ew.print("[")
	ew.term(c.Args[0], opts, env, 999)
	t := env.Resolve(c.Args[1])
	for n := 0; ; n++ {
		if l, ok := t.(*Compound); ok && l.Functor == "." && len(l.Args) == 2 && n < maxListLength {
			ew.print(", ")
			ew.term(l.Args[0], opts, env, 999)
			t = env.Resolve(l.Args[1])
			continue
		}
		if a, ok := t.(Atom); ok && a == "[]" {
			break
		}
		ew.print("|")
		if n >= maxListLength {
			ew.print("...")
			break
		}
		ew.term(t, opts, env, 999)
		break
	}
	ew.print("]")
}

// maxListLength stops writing cyclic lists.
const maxListLength = 1 << 16

func (c *Compound) writePrefix(ew *errWriter, op Operator, opts WriteTermOptions, env *Env) {
	p := int(op.Priority)
	ap := p - 1
	if op.Specifier == "fy" {
		ap = p
	}
	open := p > opts.Priority
	if open {
		ew.print("(")
	}
	f := c.Functor.String()
	if !opts.Quoted {
		f = string(c.Functor)
	}
	ew.print(f)
	var sb strings.Builder
	inner := opts
	inner.Priority = ap
	if err := Write(&sb, c.Args[0], inner, env); err != nil {
		ew.err = err
		return
	}
	a := sb.String()
	switch arg := env.Resolve(c.Args[0]).(type) {
	case Integer, Float:
		ew.print("(" + a + ")")
	default:
		if _, ok := arg.(Atom); ok && opts.Ops.isOperator(arg.(Atom)) {
			ew.print("(" + a + ")")
			break
		}
		if needSpace(f, a) {
			ew.print(" ")
		}
		ew.print(a)
	}
	if open {
		ew.print(")")
	}
}

func (c *Compound) writePostfix(ew *errWriter, op Operator, opts WriteTermOptions, env *Env) {
	p := int(op.Priority)
	ap := p - 1
	if op.Specifier == "yf" {
		ap = p
	}
	open := p > opts.Priority
	if open {
		ew.print("(")
	}
	var sb strings.Builder
	inner := opts
	inner.Priority = ap
	if err := Write(&sb, c.Args[0], inner, env); err != nil {
		ew.err = err
		return
	}
	a, f := sb.String(), c.Functor.String()
	ew.print(a)
	if needSpace(a, f) {
		ew.print(" ")
	}
	ew.print(f)
	if open {
		ew.print(")")
	}
}

func (c *Compound) writeInfix(ew *errWriter, op Operator, opts WriteTermOptions, env *Env) {
	p := int(op.Priority)
	lp, rp := p-1, p-1
	switch op.Specifier {
	case "yfx":
		lp = p
	case "xfy":
		rp = p
	}
	open := p > opts.Priority
	if open {
		ew.print("(")
	}
	ew.term(c.Args[0], opts, env, lp)
	switch c.Functor {
	case ",":
		ew.print(", ")
	default:
		f := c.Functor.String()
		if !opts.Quoted {
			f = string(c.Functor)
		}
		ew.print(" " + f + " ")
	}
	ew.term(c.Args[1], opts, env, rp)
	if open {
		ew.print(")")
	}
}

func needSpace(l, r string) bool {
	if l == "" || r == "" {
		return false
	}
	lr, rr := []rune(l), []rune(r)
	a, b := lr[len(lr)-1], rr[0]
	switch {
	case syntax.IsExtendedGraphic(a) && syntax.IsExtendedGraphic(b):
		return true
	case isAlnumRune(a) && isAlnumRune(b):
		return true
	default:
		return false
	}
}

func isAlnumRune(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// Unify unifies the compound with t.
func (c *Compound) Unify(t Interface, occursCheck bool, env *Env) (*Env, bool) {
	switch t := env.Resolve(t).(type) {
	case *Compound:
		if c == t {
			return env, true
		}
		if c.Functor != t.Functor {
			return env, false
		}
		if len(c.Args) != len(t.Args) {
			return env, false
		}
		var ok bool
		for i := range c.Args {
			env, ok = c.Args[i].Unify(t.Args[i], occursCheck, env)
			if !ok {
				return env, false
			}
		}
		return env, true
	case Variable:
		return t.Unify(c, occursCheck, env)
	default:
		return env, false
	}
}

// Cons returns a list consists of a first element car and the rest cdr.
func Cons(car, cdr Interface) Interface {
	return &Compound{
		Functor: ".",
		Args:    []Interface{car, cdr},
	}
}

// List returns a list of ts.
func List(ts ...Interface) Interface {
	return ListRest(Atom("[]"), ts...)
}

// ListRest returns a list of ts followed by rest.
func ListRest(rest Interface, ts ...Interface) Interface {
	l := rest
	for i := len(ts) - 1; i >= 0; i-- {
		l = Cons(ts[i], l)
	}
	return l
}
