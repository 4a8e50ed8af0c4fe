package term

import (
	"fmt"
	"io"
	"sync/atomic"
)

var varCounter int64

// Variable is a prolog variable.
type Variable int64

// NewVariable creates a new anonymous variable.
func NewVariable() Variable {
	n := atomic.AddInt64(&varCounter, 1)
	return Variable(n)
}

func (v Variable) String() string {
	return fmt.Sprintf("_%d", v)
}

// WriteTerm writes the variable into w.
func (v Variable) WriteTerm(w io.Writer, opts WriteTermOptions, env *Env) error {
	if r := env.Resolve(v); r != v {
		return r.WriteTerm(w, opts, env)
	}
	if n, ok := opts.VariableNames[v]; ok {
		_, err := fmt.Fprint(w, n)
		return err
	}
	_, err := fmt.Fprint(w, v.String())
	return err
}

// Unify unifies the variable with t.
func (v Variable) Unify(t Interface, occursCheck bool, env *Env) (*Env, bool) {
	r, t := env.Resolve(v), env.Resolve(t)
	v, ok := r.(Variable)
	if !ok {
		return r.Unify(t, occursCheck, env)
	}
	switch {
	case v == t:
		return env, true
	case occursCheck && Contains(t, v, env):
		return env, false
	default:
		return env.Bind(v, t), true
	}
}
