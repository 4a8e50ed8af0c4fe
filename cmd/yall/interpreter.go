package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ichiban/lambda"
	"github.com/ichiban/lambda/engine"
	"github.com/ichiban/lambda/nondet"
	"github.com/ichiban/lambda/term"
)

// Version is a version of this build.
var Version = "yall/0.1"

// New creates a lambda.Interpreter with some helper predicates for the top level.
func New(r io.Reader, w io.Writer) *lambda.Interpreter {
	i := lambda.New(r, w)
	i.Register1("version", func(t term.Interface, k engine.Cont, env *term.Env) *nondet.Promise {
		env, ok := env.Unify(t, term.Atom(Version), false)
		if !ok {
			return nondet.Bool(false)
		}
		return k(env)
	})
	i.Register1("cd", func(dir term.Interface, k engine.Cont, env *term.Env) *nondet.Promise {
		switch dir := env.Resolve(dir).(type) {
		case term.Variable:
			return nondet.Error(engine.InstantiationError(env))
		case term.Atom:
			if err := os.Chdir(string(dir)); err != nil {
				return nondet.Error(engine.SystemError(err))
			}
			return k(env)
		default:
			return nondet.Error(engine.TypeError(engine.ValidTypeAtom, dir, env))
		}
	})
	return i
}

// bindings describes the current solution as a list of Name = Value lines followed by the residual constraints.
// Variables left unbound are omitted.
func bindings(sols *lambda.Solutions) ([]string, error) {
	m := map[string]term.Interface{}
	if err := sols.Scan(m); err != nil {
		return nil, err
	}

	vars := sols.Vars()
	ls := make([]string, 0, len(vars))
	for _, n := range vars {
		v := m[n]
		if _, ok := v.(term.Variable); ok {
			continue
		}
		ls = append(ls, fmt.Sprintf("%s = %s", n, v))
	}
	for _, c := range sols.Constraints() {
		ls = append(ls, c.String())
	}
	return ls, nil
}
