package lambda

import (
	"context"
	_ "embed" // for go:embed
	"errors"
	"io"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/ichiban/lambda/engine"
	"github.com/ichiban/lambda/nondet"
	"github.com/ichiban/lambda/term"
)

//go:embed bootstrap.pl
var bootstrap string

// Interpreter is a logic interpreter which accepts lambda expressions Head :- Body as goals.
// The zero value is a valid interpreter without any predicates defined.
type Interpreter struct {
	engine.VM
}

// New creates a new interpreter with predefined predicates.
func New(in io.Reader, out io.Writer) *Interpreter {
	var i Interpreter
	i.SetUserInput(in)
	i.SetUserOutput(out)

	// Term unification
	i.Register2("=", i.Unify)
	i.Register2("unify_with_occurs_check", engine.UnifyWithOccursCheck)

	// Type testing
	i.Register1("var", engine.TypeVar)
	i.Register1("atom", engine.TypeAtom)
	i.Register1("integer", engine.TypeInteger)
	i.Register1("float", engine.TypeFloat)
	i.Register1("compound", engine.TypeCompound)
	i.Register1("is_list", engine.IsList)
	i.Register1("ground", engine.Ground)

	// Term comparison
	i.Register3("compare", engine.Compare)

	// Term creation and decomposition
	i.Register3("functor", engine.Functor)
	i.Register3("arg", engine.Arg)
	i.Register2("=..", engine.Univ)
	i.Register2("copy_term", engine.CopyTerm)
	i.Register2("term_variables", engine.TermVariables)
	i.Register2("term_singletons", engine.TermSingletons)

	// Arithmetic evaluation
	i.Register2("is", engine.DefaultFunctionSet.Is)

	// Arithmetic comparison
	i.Register2("=:=", engine.DefaultFunctionSet.Equal)
	i.Register2(`=\=`, engine.DefaultFunctionSet.NotEqual)
	i.Register2("<", engine.DefaultFunctionSet.LessThan)
	i.Register2(">", engine.DefaultFunctionSet.GreaterThan)
	i.Register2("=<", engine.DefaultFunctionSet.LessThanOrEqual)
	i.Register2(">=", engine.DefaultFunctionSet.GreaterThanOrEqual)

	// Clause creation
	i.Register1("asserta", i.Asserta)
	i.Register1("assertz", i.Assertz)
	i.Register1("dynamic", i.Dynamic)

	// All solutions
	i.Register3("findall", i.FindAll)

	// Constraints
	i.Register2("dif", i.Dif)

	// Term input/output
	i.Register1("read", i.Read)
	i.Register1("write", i.Write)
	i.Register1("writeq", i.WriteQuoted)
	i.Register0("nl", i.Nl)
	i.Register3("op", i.Op)
	i.Register3("current_op", i.CurrentOp)

	// Logic and control
	i.Register0("repeat", engine.Repeat)

	// Implementation defined hooks
	i.Register2("set_prolog_flag", i.SetPrologFlag)
	i.Register2("current_prolog_flag", i.CurrentPrologFlag)

	// A Prologue for Prolog
	// https://www.complang.tuwien.ac.at/ulrich/iso-prolog/prologue
	i.Register2("length", engine.Length)
	i.Register3("between", engine.Between)

	if err := i.Exec(bootstrap); err != nil {
		panic(err)
	}

	return &i
}

// Exec executes a prolog program.
func (i *Interpreter) Exec(query string, args ...interface{}) error {
	return i.ExecContext(context.Background(), query, args...)
}

// ExecContext executes a prolog program with context.
func (i *Interpreter) ExecContext(ctx context.Context, query string, args ...interface{}) error {
	if err := i.Consult(ctx, strings.NewReader(query), args...); err != nil {
		return pkgerrors.Wrap(err, "failed to execute")
	}
	return nil
}

// Query executes a prolog query and returns *Solutions.
func (i *Interpreter) Query(query string, args ...interface{}) (*Solutions, error) {
	return i.QueryContext(context.Background(), query, args...)
}

// QueryContext executes a prolog query and returns *Solutions with context.
func (i *Interpreter) QueryContext(ctx context.Context, query string, args ...interface{}) (*Solutions, error) {
	p := i.Parser(strings.NewReader(query))
	if err := p.Replace("?", args...); err != nil {
		return nil, err
	}

	t, err := p.Term()
	if err != nil {
		return nil, err
	}

	more := make(chan bool, 1)
	next := make(chan *term.Env)
	sols := Solutions{
		vars: p.Vars,
		more: more,
		next: next,
	}

	go func() {
		defer close(next)
		if !<-more {
			return
		}
		if _, err := i.Call(t, func(env *term.Env) *nondet.Promise {
			next <- env
			return nondet.Bool(!<-more)
		}, nil).Force(ctx); err != nil {
			sols.err = err
		}
	}()

	return &sols, nil
}

// ErrNoSolutions indicates there's no solutions for the query.
var ErrNoSolutions = errors.New("no solutions")

// QuerySolution executes a prolog query for the first solution.
func (i *Interpreter) QuerySolution(query string, args ...interface{}) *Solution {
	return i.QuerySolutionContext(context.Background(), query, args...)
}

// QuerySolutionContext executes a prolog query for the first solution with context.
func (i *Interpreter) QuerySolutionContext(ctx context.Context, query string, args ...interface{}) *Solution {
	sols, err := i.QueryContext(ctx, query, args...)
	if err != nil {
		return &Solution{err: err}
	}

	if !sols.Next() {
		if err := sols.Err(); err != nil {
			return &Solution{err: err}
		}
		return &Solution{err: ErrNoSolutions}
	}

	return &Solution{sols: sols, err: sols.Close()}
}
