package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ichiban/lambda/nondet"
	"github.com/ichiban/lambda/term"
)

// Cont is a continuation which receives the environment of a solution.
type Cont func(*term.Env) *nondet.Promise

// Success is a continuation that leads to true.
func Success(*term.Env) *nondet.Promise {
	return nondet.Bool(true)
}

// VM is the core of the interpreter. The zero value for VM is a valid VM without any builtin predicates.
type VM struct {
	// Trace enables logging of procedure calls at debug level.
	Trace bool

	operators    term.Operators
	procedures   map[procedureIndicator]procedure
	unknown      unknownAction
	occursCheck  bool
	doubleQuotes term.DoubleQuotes

	input  io.Reader
	reader *term.Parser
	output io.Writer
}

// SetUserInput sets the source of read/1.
func (vm *VM) SetUserInput(r io.Reader) {
	vm.input = r
	vm.reader = nil
}

// SetUserOutput sets the sink of write/1 and its friends.
func (vm *VM) SetUserOutput(w io.Writer) {
	vm.output = w
}

func (vm *VM) writer() io.Writer {
	if vm.output == nil {
		return io.Discard
	}
	return vm.output
}

// Operators returns the operator table of the VM. The standard operators are installed on the first use.
func (vm *VM) Operators() *term.Operators {
	if vm.operators == nil {
		vm.operators = term.DefaultOperators()
	}
	return &vm.operators
}

// Parser creates a parser which reads from r with respect to the VM's operators and flags.
func (vm *VM) Parser(r io.Reader) *term.Parser {
	p := term.NewParser(bufio.NewReader(r), vm.Operators())
	p.DoubleQuotes = vm.doubleQuotes
	return p
}

// OccursCheck reports whether unification performs the occurs check.
func (vm *VM) OccursCheck() bool {
	return vm.occursCheck
}

// Predicate0 is a predicate of arity 0.
type Predicate0 func(Cont, *term.Env) *nondet.Promise

func (p Predicate0) call(_ *VM, _ []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return p(k, env)
}

// Predicate1 is a predicate of arity 1.
type Predicate1 func(term.Interface, Cont, *term.Env) *nondet.Promise

func (p Predicate1) call(_ *VM, args []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return p(args[0], k, env)
}

// Predicate2 is a predicate of arity 2.
type Predicate2 func(term.Interface, term.Interface, Cont, *term.Env) *nondet.Promise

func (p Predicate2) call(_ *VM, args []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return p(args[0], args[1], k, env)
}

// Predicate3 is a predicate of arity 3.
type Predicate3 func(term.Interface, term.Interface, term.Interface, Cont, *term.Env) *nondet.Promise

func (p Predicate3) call(_ *VM, args []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return p(args[0], args[1], args[2], k, env)
}

func (vm *VM) register(name string, arity int, p procedure) {
	if vm.procedures == nil {
		vm.procedures = map[procedureIndicator]procedure{}
	}
	vm.procedures[procedureIndicator{name: term.Atom(name), arity: arity}] = p
}

// Register0 registers a predicate of arity 0.
func (vm *VM) Register0(name string, p Predicate0) {
	vm.register(name, 0, p)
}

// Register1 registers a predicate of arity 1.
func (vm *VM) Register1(name string, p Predicate1) {
	vm.register(name, 1, p)
}

// Register2 registers a predicate of arity 2.
func (vm *VM) Register2(name string, p Predicate2) {
	vm.register(name, 2, p)
}

// Register3 registers a predicate of arity 3.
func (vm *VM) Register3(name string, p Predicate3) {
	vm.register(name, 3, p)
}

type unknownAction int

const (
	unknownError unknownAction = iota
	unknownFail
	unknownWarning
)

func (u unknownAction) String() string {
	switch u {
	case unknownError:
		return "error"
	case unknownFail:
		return "fail"
	case unknownWarning:
		return "warning"
	default:
		return fmt.Sprintf("unknown(%d)", u)
	}
}

type procedure interface {
	call(*VM, []term.Interface, Cont, *term.Env) *nondet.Promise
}

type procedureIndicator struct {
	name  term.Atom
	arity int
}

func (p procedureIndicator) String() string {
	return p.Term().String()
}

// Term returns p as term.
func (p procedureIndicator) Term() term.Interface {
	return term.Atom("/").Apply(p.name, term.Integer(p.arity))
}

func piOf(t term.Interface, env *term.Env) (procedureIndicator, []term.Interface, error) {
	t = env.Resolve(t)
	if _, ok := t.(term.Variable); ok {
		return procedureIndicator{}, nil, InstantiationError(env)
	}
	name, arity, ok := term.PrincipalFunctor(t)
	if !ok {
		return procedureIndicator{}, nil, TypeError(ValidTypeCallable, t, env)
	}
	var args []term.Interface
	if c, ok := t.(*term.Compound); ok {
		args = c.Args
	}
	return procedureIndicator{name: name, arity: arity}, args, nil
}

// Call executes goal. It succeeds if goal followed by k succeeds. A cut inside goal doesn't affect outside of Call.
func (vm *VM) Call(goal term.Interface, k Cont, env *term.Env) *nondet.Promise {
	var p *nondet.Promise
	p = nondet.Delay(func(ctx context.Context) *nondet.Promise {
		return vm.solve(ctx, env.Resolve(goal), k, env, p)
	})
	return p
}

// solve executes goal. A cut in goal eliminates the choice points up to cutParent.
func (vm *VM) solve(ctx context.Context, goal term.Interface, k Cont, env *term.Env, cutParent *nondet.Promise) *nondet.Promise {
	g := env.Resolve(goal)
	if _, ok := goal.(term.Variable); ok {
		if _, ok := g.(term.Variable); !ok {
			return vm.Call(g, k, env)
		}
	}

	switch g := g.(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case term.Atom:
		switch g {
		case "true":
			return k(env)
		case "fail", "false":
			return nondet.Bool(false)
		case "!":
			return nondet.Cut(cutParent, func(context.Context) *nondet.Promise {
				return k(env)
			})
		default:
			return vm.arrive(procedureIndicator{name: g}, nil, k, env)
		}
	case *term.Compound:
		return vm.solveCompound(ctx, g, k, env, cutParent)
	default:
		return nondet.Error(TypeError(ValidTypeCallable, g, env))
	}
}

func (vm *VM) solveCompound(ctx context.Context, g *term.Compound, k Cont, env *term.Env, cutParent *nondet.Promise) *nondet.Promise {
	switch n := len(g.Args); {
	case g.Functor == "," && n == 2:
		return vm.solve(ctx, g.Args[0], func(env *term.Env) *nondet.Promise {
			return nondet.Delay(func(ctx context.Context) *nondet.Promise {
				return vm.solve(ctx, g.Args[1], k, env, cutParent)
			})
		}, env, cutParent)
	case g.Functor == ";" && n == 2:
		if c, ok := env.Resolve(g.Args[0]).(*term.Compound); ok && c.Functor == "->" && len(c.Args) == 2 {
			return vm.ifThenElse(c.Args[0], c.Args[1], g.Args[1], k, env, cutParent)
		}
		return nondet.Delay(func(ctx context.Context) *nondet.Promise {
			return vm.solve(ctx, g.Args[0], k, env, cutParent)
		}, func(ctx context.Context) *nondet.Promise {
			return vm.solve(ctx, g.Args[1], k, env, cutParent)
		})
	case g.Functor == "->" && n == 2:
		return vm.ifThenElse(g.Args[0], g.Args[1], term.Atom("fail"), k, env, cutParent)
	case g.Functor == `\+` && n == 1:
		return vm.Negation(g.Args[0], k, env)
	case g.Functor == "call" && n >= 1:
		goal, err := extend(g.Args[0], g.Args[1:], env)
		if err != nil {
			return nondet.Error(err)
		}
		return vm.Call(goal, k, env)
	case g.Functor == "catch" && n == 3:
		return vm.Catch(g.Args[0], g.Args[1], g.Args[2], k, env)
	case g.Functor == "throw" && n == 1:
		return Throw(g.Args[0], k, env)
	case g.Functor == ":-" && n >= 3:
		return vm.ApplyLambda(g.Args[0], g.Args[1], g.Args[2:], k, env)
	default:
		return vm.arrive(procedureIndicator{name: g.Functor, arity: n}, g.Args, k, env)
	}
}

// extend appends args to the arguments of goal.
func extend(goal term.Interface, args []term.Interface, env *term.Env) (term.Interface, error) {
	switch g := env.Resolve(goal).(type) {
	case term.Variable:
		return nil, InstantiationError(env)
	case term.Atom:
		return g.Apply(args...), nil
	case *term.Compound:
		if len(args) == 0 {
			return g, nil
		}
		as := make([]term.Interface, 0, len(g.Args)+len(args))
		as = append(as, g.Args...)
		as = append(as, args...)
		return &term.Compound{Functor: g.Functor, Args: as}, nil
	default:
		return nil, TypeError(ValidTypeCallable, g, env)
	}
}

func (vm *VM) ifThenElse(cond, then, els term.Interface, k Cont, env *term.Env, cutParent *nondet.Promise) *nondet.Promise {
	var p *nondet.Promise
	p = nondet.Delay(func(context.Context) *nondet.Promise {
		return vm.Call(cond, func(env *term.Env) *nondet.Promise {
			return nondet.Cut(p, func(ctx context.Context) *nondet.Promise {
				return vm.solve(ctx, then, k, env, cutParent)
			})
		}, env)
	}, func(ctx context.Context) *nondet.Promise {
		return vm.solve(ctx, els, k, env, cutParent)
	})
	return p
}

func isControl(pi procedureIndicator) bool {
	switch pi {
	case procedureIndicator{name: "true"},
		procedureIndicator{name: "fail"},
		procedureIndicator{name: "false"},
		procedureIndicator{name: "!"},
		procedureIndicator{name: ",", arity: 2},
		procedureIndicator{name: ";", arity: 2},
		procedureIndicator{name: "->", arity: 2},
		procedureIndicator{name: `\+`, arity: 1},
		procedureIndicator{name: "catch", arity: 3},
		procedureIndicator{name: "throw", arity: 1}:
		return true
	}
	return (pi.name == "call" && pi.arity >= 1) || (pi.name == ":-" && pi.arity >= 3)
}

func (vm *VM) arrive(pi procedureIndicator, args []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	p := vm.procedures[pi]
	if p == nil {
		switch vm.unknown {
		case unknownError:
			return nondet.Error(ExistenceErrorProcedure(pi.Term(), env))
		case unknownWarning:
			logrus.WithField("procedure", pi).Warn("unknown procedure")
			fallthrough
		case unknownFail:
			return nondet.Bool(false)
		default:
			return nondet.Error(SystemError(fmt.Errorf("unknown unknown: %s", vm.unknown)))
		}
	}

	if vm.Trace {
		return vm.trace(pi, p, args, k, env)
	}

	return p.call(vm, args, k, env)
}

func (vm *VM) trace(pi procedureIndicator, p procedure, args []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	goal := pi.name.Apply(args...)
	logrus.WithField("goal", vm.describe(goal, env)).Debug("call")
	return nondet.Delay(func(context.Context) *nondet.Promise {
		return p.call(vm, args, func(env *term.Env) *nondet.Promise {
			logrus.WithField("goal", vm.describe(goal, env)).Debug("exit")
			return k(env)
		}, env)
	}, func(context.Context) *nondet.Promise {
		logrus.WithField("goal", vm.describe(goal, env)).Debug("fail")
		return nondet.Bool(false)
	})
}

func (vm *VM) describe(t term.Interface, env *term.Env) string {
	var sb strings.Builder
	opts := term.DefaultWriteTermOptions
	opts.Ops = *vm.Operators()
	_ = term.Write(&sb, t, opts, env)
	return sb.String()
}

type clause struct {
	pi  procedureIndicator
	raw *term.Compound // Head :- Body
}

type clauses []clause

func (cs clauses) call(vm *VM, args []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	var p *nondet.Promise
	ks := make([]func(context.Context) *nondet.Promise, len(cs))
	for i := range cs {
		c := cs[i]
		ks[i] = func(ctx context.Context) *nondet.Promise {
			return vm.resolve(ctx, c, args, k, env, p)
		}
	}
	p = nondet.Delay(ks...)
	return p
}

// resolve renames c and runs its body if its head unifies with args.
func (vm *VM) resolve(ctx context.Context, c clause, args []term.Interface, k Cont, env *term.Env, cutParent *nondet.Promise) *nondet.Promise {
	r, err := term.Copy(c.raw, nil)
	if err != nil {
		return nondet.Error(SystemError(err))
	}
	rule := r.(*term.Compound)
	env, ok := env.Unify(c.pi.name.Apply(args...), rule.Args[0], vm.occursCheck)
	if !ok {
		return nondet.Bool(false)
	}
	return vm.solve(ctx, rule.Args[1], k, env, cutParent)
}
