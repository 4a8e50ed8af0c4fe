package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/ichiban/lambda/nondet"
	"github.com/ichiban/lambda/term"
)

const testLibrary = `
X == Y :- compare(=, X, Y).

member(X, [X|_]).
member(X, [_|Xs]) :- member(X, Xs).

maplist(_, []).
maplist(G, [X|Xs]) :- call(G, X), maplist(G, Xs).

maplist(_, [], []).
maplist(G, [X|Xs], [Y|Ys]) :- call(G, X, Y), maplist(G, Xs, Ys).
`

func newVM(t *testing.T, text string) *VM {
	t.Helper()

	var vm VM
	vm.Register2("=", vm.Unify)
	vm.Register2("unify_with_occurs_check", UnifyWithOccursCheck)
	vm.Register1("var", TypeVar)
	vm.Register1("atom", TypeAtom)
	vm.Register1("integer", TypeInteger)
	vm.Register1("float", TypeFloat)
	vm.Register1("compound", TypeCompound)
	vm.Register1("is_list", IsList)
	vm.Register1("ground", Ground)
	vm.Register3("functor", Functor)
	vm.Register3("arg", Arg)
	vm.Register2("=..", Univ)
	vm.Register2("copy_term", CopyTerm)
	vm.Register2("term_variables", TermVariables)
	vm.Register2("term_singletons", TermSingletons)
	vm.Register3("compare", Compare)
	vm.Register0("repeat", Repeat)
	vm.Register3("between", Between)
	vm.Register2("length", Length)
	vm.Register3("findall", vm.FindAll)
	vm.Register2("dif", vm.Dif)
	vm.Register1("asserta", vm.Asserta)
	vm.Register1("assertz", vm.Assertz)
	vm.Register1("dynamic", vm.Dynamic)
	vm.Register1("write", vm.Write)
	vm.Register1("writeq", vm.WriteQuoted)
	vm.Register0("nl", vm.Nl)
	vm.Register1("read", vm.Read)
	vm.Register3("op", vm.Op)
	vm.Register3("current_op", vm.CurrentOp)
	vm.Register2("set_prolog_flag", vm.SetPrologFlag)
	vm.Register2("current_prolog_flag", vm.CurrentPrologFlag)
	vm.Register2("is", DefaultFunctionSet.Is)
	vm.Register2("=:=", DefaultFunctionSet.Equal)
	vm.Register2(`=\=`, DefaultFunctionSet.NotEqual)
	vm.Register2("<", DefaultFunctionSet.LessThan)
	vm.Register2(">", DefaultFunctionSet.GreaterThan)
	vm.Register2("=<", DefaultFunctionSet.LessThanOrEqual)
	vm.Register2(">=", DefaultFunctionSet.GreaterThanOrEqual)

	assert.NoError(t, vm.Consult(context.Background(), strings.NewReader(testLibrary+text)))
	return &vm
}

type answer struct {
	ok       bool
	err      error
	env      *term.Env
	vars     map[string]term.Variable
	bindings map[string]term.Interface
}

// ask runs query and returns the first answer.
func ask(t *testing.T, vm *VM, query string) answer {
	t.Helper()

	p := vm.Parser(strings.NewReader(query))
	g, err := p.Term()
	if !assert.NoError(t, err) {
		return answer{err: err}
	}

	a := answer{
		vars:     map[string]term.Variable{},
		bindings: map[string]term.Interface{},
	}
	for _, v := range p.Vars {
		a.vars[v.Name] = v.Variable
	}

	a.ok, a.err = vm.Call(g, func(env *term.Env) *nondet.Promise {
		a.env = env
		return nondet.Bool(true)
	}, nil).Force(context.Background())

	if a.ok {
		for n, v := range a.vars {
			a.bindings[n] = a.env.Simplify(v)
		}
	}
	return a
}

// formal returns the formal part of error(Formal, Context).
func formal(err error) term.Interface {
	var e *Exception
	if !errors.As(err, &e) {
		return nil
	}
	c, ok := e.Term().(*term.Compound)
	if !ok || c.Functor != "error" || len(c.Args) != 2 {
		return e.Term()
	}
	return c.Args[0]
}

func TestVM_Call(t *testing.T) {
	vm := newVM(t, `
t(1).
t(2).
t(3).

first(X) :- t(X), !.

d(X) :- (X = 1, ! ; X = 2).
d(3).
`)

	tests := []struct {
		query string
		ok    bool
		l     term.Interface
	}{
		{query: `true.`, ok: true},
		{query: `fail.`, ok: false},
		{query: `false.`, ok: false},
		{query: `true, true.`, ok: true},
		{query: `true, fail.`, ok: false},
		{query: `fail ; true.`, ok: true},
		{query: `true -> fail ; true.`, ok: false},
		{query: `fail -> true ; true.`, ok: true},
		{query: `true -> true.`, ok: true},
		{query: `fail -> true.`, ok: false},
		{query: `\+ fail.`, ok: true},
		{query: `\+ true.`, ok: false},
		{query: `call(fail).`, ok: false},
		{query: `call(=(X), 1), X = 1.`, ok: true},
		{query: `call(t, 2).`, ok: true},
		{query: `call(t, 4).`, ok: false},
		{query: `G = t(3), G.`, ok: true},
		{query: `(!, fail -> true ; true).`, ok: true},
		{query: `findall(X, first(X), L).`, ok: true, l: term.List(term.Integer(1))},
		{query: `findall(X, (t(X), call(!)), L).`, ok: true, l: term.List(term.Integer(1), term.Integer(2), term.Integer(3))},
		{query: `findall(X, d(X), L).`, ok: true, l: term.List(term.Integer(1))},
		{query: `findall(X, (t(X) -> true ; true), L).`, ok: true, l: term.List(term.Integer(1))},
		{query: `findall(X, (t(X), X > 1), L).`, ok: true, l: term.List(term.Integer(2), term.Integer(3))},
		{query: `findall(X-Y, (t(X), \+ X = 2, Y = X), L).`, ok: true, l: term.List(
			term.Atom("-").Apply(term.Integer(1), term.Integer(1)),
			term.Atom("-").Apply(term.Integer(3), term.Integer(3)),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			a := ask(t, vm, tt.query)
			assert.NoError(t, a.err)
			assert.Equal(t, tt.ok, a.ok)
			if tt.l != nil {
				assert.Equal(t, tt.l, a.bindings["L"])
			}
		})
	}

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			query  string
			formal term.Interface
		}{
			{query: `call(G).`, formal: term.Atom("instantiation_error")},
			{query: `G.`, formal: term.Atom("instantiation_error")},
			{query: `call(1).`, formal: term.Atom("type_error").Apply(term.Atom("callable"), term.Integer(1))},
			{query: `call(t(1), 2, 3).`, formal: term.Atom("existence_error").Apply(term.Atom("procedure"), term.Atom("/").Apply(term.Atom("t"), term.Integer(3)))},
			{query: `nope.`, formal: term.Atom("existence_error").Apply(term.Atom("procedure"), term.Atom("/").Apply(term.Atom("nope"), term.Integer(0)))},
		}

		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				a := ask(t, vm, tt.query)
				assert.False(t, a.ok)
				assert.Equal(t, tt.formal, formal(a.err))
			})
		}
	})

	t.Run("long conjunction", func(t *testing.T) {
		vm := newVM(t, `
count(0) :- !.
count(N) :- N1 is N - 1, count(N1).
`)
		a := ask(t, vm, `count(10000).`)
		assert.NoError(t, a.err)
		assert.True(t, a.ok)
	})

	t.Run("cancel", func(t *testing.T) {
		vm := newVM(t, ``)
		ctx, cancel := context.WithCancel(context.Background())
		ok, err := vm.Call(term.Atom("repeat"), func(*term.Env) *nondet.Promise {
			cancel()
			return nondet.Bool(false)
		}, nil).Force(ctx)
		assert.False(t, ok)
		assert.Equal(t, context.Canceled, err)
	})
}

func TestVM_Catch(t *testing.T) {
	vm := newVM(t, ``)

	t.Run("caught", func(t *testing.T) {
		a := ask(t, vm, `catch(throw(f(1)), f(X), true).`)
		assert.NoError(t, a.err)
		assert.True(t, a.ok)
		assert.Equal(t, term.Integer(1), a.bindings["X"])
	})

	t.Run("not matched", func(t *testing.T) {
		a := ask(t, vm, `catch(throw(foo), bar, true).`)
		assert.False(t, a.ok)
		assert.Equal(t, term.Atom("foo"), formal(a.err))
		assert.Equal(t, "foo", a.err.Error())
	})

	t.Run("builtin error", func(t *testing.T) {
		a := ask(t, vm, `catch(X is 1 // 0, error(E, _), true).`)
		assert.NoError(t, a.err)
		assert.True(t, a.ok)
		assert.Equal(t, term.Atom("evaluation_error").Apply(term.Atom("zero_divisor")), a.bindings["E"])
	})

	t.Run("after exit", func(t *testing.T) {
		a := ask(t, vm, `catch(true, _, true), throw(x).`)
		assert.False(t, a.ok)
		assert.Equal(t, term.Atom("x"), formal(a.err))
	})

	t.Run("redo", func(t *testing.T) {
		a := ask(t, vm, `catch((member(X, [1, 2]), (X =:= 2 -> throw(two) ; true)), two, R = caught), \+ var(R).`)
		assert.NoError(t, a.err)
		assert.True(t, a.ok)
		assert.Equal(t, term.Atom("caught"), a.bindings["R"])
	})

	t.Run("unbound ball", func(t *testing.T) {
		a := ask(t, vm, `throw(_).`)
		assert.Equal(t, term.Atom("instantiation_error"), formal(a.err))
	})
}

func TestVM_Assertz(t *testing.T) {
	t.Run("logical update view", func(t *testing.T) {
		vm := newVM(t, `
c(1).
c(2).
`)
		a := ask(t, vm, `findall(X, (c(X), assertz(c(3))), L).`)
		assert.NoError(t, a.err)
		assert.Equal(t, term.List(term.Integer(1), term.Integer(2)), a.bindings["L"])

		a = ask(t, vm, `findall(X, c(X), L).`)
		assert.Equal(t, term.List(term.Integer(1), term.Integer(2), term.Integer(3), term.Integer(3)), a.bindings["L"])
	})

	t.Run("asserta", func(t *testing.T) {
		vm := newVM(t, ``)
		a := ask(t, vm, `asserta(a(1)), asserta(a(2)), findall(X, a(X), L).`)
		assert.NoError(t, a.err)
		assert.Equal(t, term.List(term.Integer(2), term.Integer(1)), a.bindings["L"])
	})

	t.Run("bindings are copied", func(t *testing.T) {
		vm := newVM(t, ``)
		a := ask(t, vm, `X = 1, assertz(b(X, Y)), b(Z, W).`)
		assert.NoError(t, a.err)
		assert.True(t, a.ok)
		assert.Equal(t, term.Integer(1), a.bindings["Z"])
		assert.IsType(t, term.Variable(0), a.bindings["W"])
		assert.NotEqual(t, a.bindings["Y"], a.bindings["W"])
	})

	t.Run("errors", func(t *testing.T) {
		vm := newVM(t, ``)
		tests := []struct {
			query  string
			formal term.Interface
		}{
			{query: `assertz(_).`, formal: term.Atom("instantiation_error")},
			{query: `assertz((_ :- true)).`, formal: term.Atom("instantiation_error")},
			{query: `assertz(1).`, formal: term.Atom("type_error").Apply(term.Atom("callable"), term.Integer(1))},
			{query: `assertz((foo :- 1)).`, formal: term.Atom("type_error").Apply(term.Atom("callable"), term.Atom(":-").Apply(term.Atom("foo"), term.Integer(1)))},
			{query: `assertz((a, b)).`, formal: term.Atom("permission_error").Apply(term.Atom("modify"), term.Atom("static_procedure"), term.Atom("/").Apply(term.Atom(","), term.Integer(2)))},
			{query: `assertz(atom(x)).`, formal: term.Atom("permission_error").Apply(term.Atom("modify"), term.Atom("static_procedure"), term.Atom("/").Apply(term.Atom("atom"), term.Integer(1)))},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				a := ask(t, vm, tt.query)
				assert.False(t, a.ok)
				assert.Equal(t, tt.formal, formal(a.err))
			})
		}
	})
}

func TestVM_Dynamic(t *testing.T) {
	vm := newVM(t, `
:- dynamic(e/0).
:- dynamic((f/1, g/2)).
`)
	for _, q := range []string{`e.`, `f(_).`, `g(_, _).`} {
		a := ask(t, vm, q)
		assert.NoError(t, a.err)
		assert.False(t, a.ok)
	}

	a := ask(t, vm, `dynamic(atom/1).`)
	assert.Equal(t, term.Atom("permission_error").Apply(term.Atom("modify"), term.Atom("static_procedure"), term.Atom("/").Apply(term.Atom("atom"), term.Integer(1))), formal(a.err))

	a = ask(t, vm, `dynamic(foo).`)
	assert.Equal(t, term.Atom("type_error").Apply(term.Atom("predicate_indicator"), term.Atom("foo")), formal(a.err))
}

func TestVM_Consult(t *testing.T) {
	t.Run("directive", func(t *testing.T) {
		vm := newVM(t, `
:- set_prolog_flag(double_quotes, atom).
s("abc").
`)
		a := ask(t, vm, `s(X).`)
		assert.True(t, a.ok)
		assert.Equal(t, term.Atom("abc"), a.bindings["X"])
	})

	t.Run("failed directive", func(t *testing.T) {
		vm := newVM(t, ``)
		err := vm.Consult(context.Background(), strings.NewReader(`:- fail.`))
		assert.True(t, errors.Is(err, ErrDirectiveFailed))
	})

	t.Run("syntax error", func(t *testing.T) {
		vm := newVM(t, ``)
		err := vm.Consult(context.Background(), strings.NewReader(`foo(.`))
		assert.Error(t, err)
	})

	t.Run("placeholder", func(t *testing.T) {
		vm := newVM(t, ``)
		assert.NoError(t, vm.Consult(context.Background(), strings.NewReader(`p(?, ?).`), "a", 1))
		a := ask(t, vm, `p(X, Y).`)
		assert.Equal(t, term.Atom("a"), a.bindings["X"])
		assert.Equal(t, term.Integer(1), a.bindings["Y"])
	})

	t.Run("operators", func(t *testing.T) {
		vm := newVM(t, `
:- op(700, xfx, ===>).
rule(a ===> b).
`)
		a := ask(t, vm, `rule(X ===> Y).`)
		assert.True(t, a.ok)
		assert.Equal(t, term.Atom("a"), a.bindings["X"])
		assert.Equal(t, term.Atom("b"), a.bindings["Y"])
	})
}

func TestVM_Unknown(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	vm := newVM(t, ``)

	a := ask(t, vm, `set_prolog_flag(unknown, fail), nope.`)
	assert.NoError(t, a.err)
	assert.False(t, a.ok)
	assert.Empty(t, hook.AllEntries())

	a = ask(t, vm, `set_prolog_flag(unknown, warning), nope.`)
	assert.NoError(t, a.err)
	assert.False(t, a.ok)
	if e := hook.LastEntry(); assert.NotNil(t, e) {
		assert.Equal(t, logrus.WarnLevel, e.Level)
		assert.Equal(t, "unknown procedure", e.Message)
		assert.Equal(t, procedureIndicator{name: "nope"}, e.Data["procedure"])
	}
}

func TestVM_Trace(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(level)

	vm := newVM(t, `
p(1).
p(2).
`)
	vm.Trace = true

	a := ask(t, vm, `p(X), X > 1.`)
	assert.True(t, a.ok)

	var ports []string
	for _, e := range hook.AllEntries() {
		ports = append(ports, e.Message+" "+e.Data["goal"].(string))
	}
	assert.Contains(t, ports, "call p("+a.vars["X"].String()+")")
	assert.Contains(t, ports, "exit p(1)")
	assert.Contains(t, ports, "exit p(2)")
	assert.Contains(t, ports, "exit 2 > 1")
	assert.Contains(t, ports, "fail 1 > 1")
}

func TestVM_SetUserOutput(t *testing.T) {
	var buf bytes.Buffer
	vm := newVM(t, ``)
	vm.SetUserOutput(&buf)

	a := ask(t, vm, `write(hello), nl, writeq('hello world'), nl, write(f(X, 'A', "b")).`)
	assert.True(t, a.ok)
	assert.Equal(t, "hello\n'hello world'\nf("+a.vars["X"].String()+", A, [98])", buf.String())
}
