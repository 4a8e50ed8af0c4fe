package term

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Interface is a prolog term.
type Interface interface {
	fmt.Stringer
	WriteTerm(io.Writer, WriteTermOptions, *Env) error
	Unify(Interface, bool, *Env) (*Env, bool)
}

var (
	// ErrCyclicTerm is returned when a term contains itself through bindings.
	ErrCyclicTerm = errors.New("cyclic term")

	// ErrPartialList is returned when a list ends with a free variable.
	ErrPartialList = errors.New("partial list")

	// ErrNotList is returned when a term is neither a list nor a partial list.
	ErrNotList = errors.New("not a list")
)

// Contains checks if t contains s.
func Contains(t, s Interface, env *Env) bool {
	return contains(t, s, env, nil)
}

func contains(t, s Interface, env *Env, visiting []Variable) bool {
	switch t := t.(type) {
	case Variable:
		if t == s {
			return true
		}
		ref, ok := env.Lookup(t)
		if !ok {
			return false
		}
		for _, v := range visiting {
			if v == t {
				return false
			}
		}
		return contains(ref, s, env, append(visiting, t))
	case *Compound:
		if s, ok := s.(Atom); ok && t.Functor == s {
			return true
		}
		for _, a := range t.Args {
			if contains(a, s, env, visiting) {
				return true
			}
		}
		return false
	default:
		return t == s
	}
}

// Rulify returns t if t is in a form of P:-Q, t:-true otherwise.
func Rulify(t Interface, env *Env) Interface {
	t = env.Resolve(t)
	if c, ok := t.(*Compound); ok && c.Functor == ":-" && len(c.Args) == 2 {
		return t
	}
	return &Compound{Functor: ":-", Args: []Interface{t, Atom("true")}}
}

// Seq returns a sequence of ts separated by sep.
func Seq(sep Atom, ts ...Interface) Interface {
	if len(ts) == 0 {
		return Atom("true")
	}
	s := ts[len(ts)-1]
	for i := len(ts) - 2; i >= 0; i-- {
		s = &Compound{
			Functor: sep,
			Args:    []Interface{ts[i], s},
		}
	}
	return s
}

// Slice returns the elements of a proper list.
func Slice(list Interface, env *Env) ([]Interface, error) {
	var (
		ret  []Interface
		seen []Variable
	)
	for {
		if v, ok := list.(Variable); ok {
			for _, s := range seen {
				if s == v {
					return nil, ErrNotList
				}
			}
			seen = append(seen, v)
		}
		switch l := env.Resolve(list).(type) {
		case Variable:
			return nil, ErrPartialList
		case Atom:
			if l != "[]" {
				return nil, ErrNotList
			}
			return ret, nil
		case *Compound:
			if l.Functor != "." || len(l.Args) != 2 {
				return nil, ErrNotList
			}
			ret = append(ret, l.Args[0])
			list = l.Args[1]
		default:
			return nil, ErrNotList
		}
	}
}

// PrincipalFunctor returns the name/arity indicator of a callable term.
func PrincipalFunctor(t Interface) (Atom, int, bool) {
	switch t := t.(type) {
	case Atom:
		return t, 0, true
	case *Compound:
		return t.Functor, len(t.Args), true
	default:
		return "", 0, false
	}
}

// Compare compares two terms in the standard order: Var < Number < Atom < Compound.
func Compare(a, b Interface, env *Env) int64 {
	a, b = env.Resolve(a), env.Resolve(b)
	switch a := a.(type) {
	case Variable:
		switch b := b.(type) {
		case Variable:
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		default:
			return -1
		}
	case Float:
		switch b := b.(type) {
		case Variable:
			return 1
		case Float:
			return compareFloat(float64(a), float64(b))
		case Integer:
			if d := compareFloat(float64(a), float64(b)); d != 0 {
				return d
			}
			return -1
		default:
			return -1
		}
	case Integer:
		switch b := b.(type) {
		case Variable:
			return 1
		case Float:
			if d := compareFloat(float64(a), float64(b)); d != 0 {
				return d
			}
			return 1
		case Integer:
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		default:
			return -1
		}
	case Atom:
		switch b := b.(type) {
		case Variable, Float, Integer:
			return 1
		case Atom:
			return int64(strings.Compare(string(a), string(b)))
		default:
			return -1
		}
	case *Compound:
		switch b := b.(type) {
		case *Compound:
			if d := len(a.Args) - len(b.Args); d != 0 {
				return int64(d)
			}

			if d := strings.Compare(string(a.Functor), string(b.Functor)); d != 0 {
				return int64(d)
			}

			for i := range a.Args {
				if d := Compare(a.Args[i], b.Args[i], env); d != 0 {
					return d
				}
			}

			return 0
		default:
			return 1
		}
	default:
		return 1
	}
}

func compareFloat(a, b float64) int64 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// WriteTermOptions describes options to write terms.
type WriteTermOptions struct {
	Quoted        bool
	Ops           Operators
	NumberVars    bool
	VariableNames map[Variable]string

	// Priority is the maximum operator priority allowed without surrounding parentheses.
	Priority int
}

// DefaultWriteTermOptions is used by String methods.
var DefaultWriteTermOptions = WriteTermOptions{
	Quoted:   true,
	Ops:      DefaultOperators(),
	Priority: 1200,
}

// Write writes t into w with respect to the bindings in env.
func Write(w io.Writer, t Interface, opts WriteTermOptions, env *Env) error {
	return env.Resolve(t).WriteTerm(w, opts, env)
}
