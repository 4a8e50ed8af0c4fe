package engine

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/ichiban/lambda/nondet"
	"github.com/ichiban/lambda/term"
)

// Negation calls goal and returns false if it succeeds. Otherwise, invokes the continuation.
func (vm *VM) Negation(goal term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return nondet.Delay(func(ctx context.Context) *nondet.Promise {
		ok, err := vm.Call(goal, Success, env).Force(ctx)
		if err != nil {
			return nondet.Error(err)
		}
		if ok {
			return nondet.Bool(false)
		}
		return k(env)
	})
}

// Unify unifies t1 and t2 without occurs check (i.e., X = f(X) is allowed).
func Unify(t1, t2 term.Interface, k Cont, env *term.Env) *nondet.Promise {
	env, ok := env.Unify(t1, t2, false)
	if !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// UnifyWithOccursCheck unifies t1 and t2 with occurs check (i.e., X = f(X) is not allowed).
func UnifyWithOccursCheck(t1, t2 term.Interface, k Cont, env *term.Env) *nondet.Promise {
	env, ok := env.Unify(t1, t2, true)
	if !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// Unify unifies t1 and t2 with respect to the occurs_check flag.
func (vm *VM) Unify(t1, t2 term.Interface, k Cont, env *term.Env) *nondet.Promise {
	env, ok := env.Unify(t1, t2, vm.occursCheck)
	if !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// TypeVar checks if t is a variable.
func TypeVar(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	if _, ok := env.Resolve(t).(term.Variable); !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// TypeFloat checks if t is a floating-point number.
func TypeFloat(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	if _, ok := env.Resolve(t).(term.Float); !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// TypeInteger checks if t is an integer.
func TypeInteger(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	if _, ok := env.Resolve(t).(term.Integer); !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// TypeAtom checks if t is an atom.
func TypeAtom(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	if _, ok := env.Resolve(t).(term.Atom); !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// TypeCompound checks if t is a compound term.
func TypeCompound(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	if _, ok := env.Resolve(t).(*term.Compound); !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// IsList checks if t is a proper list.
func IsList(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	if _, err := term.Slice(t, env); err != nil {
		return nondet.Bool(false)
	}
	return k(env)
}

// Ground checks if t has no free variables.
func Ground(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	if len(env.FreeVariables(t)) > 0 {
		return nondet.Bool(false)
	}
	return k(env)
}

// Functor extracts the name and arity of term, or unifies term with an atomic/compound term of name and arity with
// fresh variables as arguments.
func Functor(t, name, arity term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch t := env.Resolve(t).(type) {
	case term.Variable:
		switch arity := env.Resolve(arity).(type) {
		case term.Variable:
			return nondet.Error(InstantiationError(env))
		case term.Integer:
			switch {
			case arity < 0:
				return nondet.Error(DomainError(ValidDomainNotLessThanZero, arity, env))
			case arity == 0:
				return Unify(t, name, k, env)
			}

			switch name := env.Resolve(name).(type) {
			case term.Variable:
				return nondet.Error(InstantiationError(env))
			case *term.Compound:
				return nondet.Error(TypeError(ValidTypeAtomic, name, env))
			case term.Atom:
				vs := make([]term.Interface, arity)
				for i := range vs {
					vs[i] = term.NewVariable()
				}
				return nondet.Delay(func(context.Context) *nondet.Promise {
					return Unify(t, name.Apply(vs...), k, env)
				})
			default:
				return nondet.Error(TypeError(ValidTypeAtom, name, env))
			}
		default:
			return nondet.Error(TypeError(ValidTypeInteger, arity, env))
		}
	case *term.Compound:
		pattern := term.Compound{Args: []term.Interface{name, arity}}
		return nondet.Delay(func(context.Context) *nondet.Promise {
			return Unify(&pattern, &term.Compound{Args: []term.Interface{t.Functor, term.Integer(len(t.Args))}}, k, env)
		})
	default: // atomic
		pattern := term.Compound{Args: []term.Interface{name, arity}}
		return nondet.Delay(func(context.Context) *nondet.Promise {
			return Unify(&pattern, &term.Compound{Args: []term.Interface{t, term.Integer(0)}}, k, env)
		})
	}
}

// Arg extracts nth argument of term as arg, or finds the argument position of arg in term as nth.
func Arg(nth, t, arg term.Interface, k Cont, env *term.Env) *nondet.Promise {
	c, ok := env.Resolve(t).(*term.Compound)
	if !ok {
		return nondet.Error(TypeError(ValidTypeCompound, t, env))
	}

	switch n := env.Resolve(nth).(type) {
	case term.Variable:
		pattern := term.Compound{Args: []term.Interface{n, arg}}
		ks := make([]func(context.Context) *nondet.Promise, len(c.Args))
		for i := range c.Args {
			n := term.Integer(i + 1)
			arg := c.Args[i]
			ks[i] = func(context.Context) *nondet.Promise {
				return Unify(&pattern, &term.Compound{Args: []term.Interface{n, arg}}, k, env)
			}
		}
		return nondet.Delay(ks...)
	case term.Integer:
		if n < 0 {
			return nondet.Error(DomainError(ValidDomainNotLessThanZero, n, env))
		}
		if n == 0 || int(n) > len(c.Args) {
			return nondet.Bool(false)
		}
		return nondet.Delay(func(context.Context) *nondet.Promise {
			return Unify(arg, c.Args[int(n)-1], k, env)
		})
	default:
		return nondet.Error(TypeError(ValidTypeInteger, n, env))
	}
}

// Univ constructs list as a list which first element is the functor of term and the rest is the arguments of term,
// or construct a compound from list as term.
func Univ(t, list term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch t := env.Resolve(t).(type) {
	case term.Variable:
		elems, err := term.Slice(list, env)
		switch err {
		case nil:
			break
		case term.ErrPartialList:
			return nondet.Error(InstantiationError(env))
		default:
			return nondet.Error(TypeError(ValidTypeList, list, env))
		}

		switch len(elems) {
		case 0:
			return nondet.Error(DomainError(ValidDomainNonEmptyList, list, env))
		case 1:
			return Unify(t, elems[0], k, env)
		}

		f, ok := env.Resolve(elems[0]).(term.Atom)
		if !ok {
			return nondet.Error(TypeError(ValidTypeAtom, elems[0], env))
		}

		return nondet.Delay(func(context.Context) *nondet.Promise {
			return Unify(t, f.Apply(elems[1:]...), k, env)
		})
	case *term.Compound:
		return nondet.Delay(func(context.Context) *nondet.Promise {
			return Unify(list, term.List(append([]term.Interface{t.Functor}, t.Args...)...), k, env)
		})
	default:
		return nondet.Delay(func(context.Context) *nondet.Promise {
			return Unify(list, term.List(t), k, env)
		})
	}
}

// CopyTerm clones in as out.
func CopyTerm(in, out term.Interface, k Cont, env *term.Env) *nondet.Promise {
	c, err := term.Copy(in, env)
	if err != nil {
		return nondet.Error(SystemError(err))
	}
	return Unify(c, out, k, env)
}

// TermVariables unifies vars with the list of free variables in t.
func TermVariables(t, vars term.Interface, k Cont, env *term.Env) *nondet.Promise {
	fvs := env.FreeVariables(t)
	vs := make([]term.Interface, len(fvs))
	for i, v := range fvs {
		vs[i] = v
	}
	return Unify(vars, term.List(vs...), k, env)
}

// TermSingletons unifies vars with the list of variables which occur exactly once in t.
func TermSingletons(t, vars term.Interface, k Cont, env *term.Env) *nondet.Promise {
	ss, err := term.Singletons(t, env)
	if err != nil {
		return nondet.Error(SystemError(err))
	}
	vs := make([]term.Interface, len(ss))
	for i, v := range ss {
		vs[i] = v
	}
	return Unify(vars, term.List(vs...), k, env)
}

// Compare compares term1 and term2 and unifies order with <, =, or >.
func Compare(order, term1, term2 term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch o := env.Resolve(order).(type) {
	case term.Variable:
		break
	case term.Atom:
		switch o {
		case "<", "=", ">":
			break
		default:
			return nondet.Error(DomainError(ValidDomainOrder, order, env))
		}
	default:
		return nondet.Error(TypeError(ValidTypeAtom, order, env))
	}

	d := term.Compare(term1, term2, env)
	switch {
	case d < 0:
		return Unify(term.Atom("<"), order, k, env)
	case d > 0:
		return Unify(term.Atom(">"), order, k, env)
	default: // d == 0:
		return Unify(term.Atom("="), order, k, env)
	}
}

// Throw throws ball as an exception.
func Throw(ball term.Interface, _ Cont, env *term.Env) *nondet.Promise {
	if _, ok := env.Resolve(ball).(term.Variable); ok {
		return nondet.Error(InstantiationError(env))
	}
	return nondet.Error(NewException(ball, env))
}

// Catch calls goal. If an exception is thrown from goal and unifies with catcher, it calls recovery.
// Exceptions thrown after goal exits are not caught.
func (vm *VM) Catch(goal, catcher, recovery term.Interface, k Cont, env *term.Env) *nondet.Promise {
	inside := true
	return nondet.Catch(func(err error) *nondet.Promise {
		if !inside {
			return nil
		}
		e, ok := err.(*Exception)
		if !ok {
			return nil
		}
		env, ok := env.Unify(catcher, e.Term(), false)
		if !ok {
			return nil
		}
		return vm.Call(recovery, k, env)
	}, func(context.Context) *nondet.Promise {
		return vm.Call(goal, func(env *term.Env) *nondet.Promise {
			inside = false
			return nondet.Delay(func(context.Context) *nondet.Promise {
				return k(env)
			}, func(context.Context) *nondet.Promise {
				inside = true
				return nondet.Bool(false)
			})
		}, env)
	})
}

// Repeat repeats the continuation until it succeeds.
func Repeat(k Cont, env *term.Env) *nondet.Promise {
	return nondet.Repeat(func(context.Context) *nondet.Promise {
		return k(env)
	})
}

// Between succeeds when value is an integer between lower and upper inclusive. If value is a variable, it enumerates
// the integers in ascending order. upper can be inf.
func Between(lower, upper, value term.Interface, k Cont, env *term.Env) *nondet.Promise {
	var low, high term.Integer

	switch l := env.Resolve(lower).(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case term.Integer:
		low = l
	default:
		return nondet.Error(TypeError(ValidTypeInteger, l, env))
	}

	switch u := env.Resolve(upper).(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case term.Integer:
		high = u
	case term.Atom:
		if u != "inf" && u != "infinite" {
			return nondet.Error(TypeError(ValidTypeInteger, u, env))
		}
		high = math.MaxInt64
	default:
		return nondet.Error(TypeError(ValidTypeInteger, u, env))
	}

	switch v := env.Resolve(value).(type) {
	case term.Variable:
		return between(low, high, v, k, env)
	case term.Integer:
		if v < low || v > high {
			return nondet.Bool(false)
		}
		return k(env)
	default:
		return nondet.Error(TypeError(ValidTypeInteger, v, env))
	}
}

func between(i, high term.Integer, v term.Variable, k Cont, env *term.Env) *nondet.Promise {
	if i > high {
		return nondet.Bool(false)
	}
	return nondet.Delay(func(context.Context) *nondet.Promise {
		return Unify(v, i, k, env)
	}, func(context.Context) *nondet.Promise {
		if i == high {
			return nondet.Bool(false)
		}
		return between(i+1, high, v, k, env)
	})
}

// Length succeeds iff list is a list of length. If list is a partial list, it extends the list.
func Length(list, length term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch l := env.Resolve(length).(type) {
	case term.Variable:
		break
	case term.Integer:
		if l < 0 {
			return nondet.Error(DomainError(ValidDomainNotLessThanZero, l, env))
		}
	default:
		return nondet.Error(TypeError(ValidTypeInteger, l, env))
	}

	var (
		n    term.Integer
		tail = list
		seen = map[term.Variable]struct{}{}
	)
	for {
		if v, ok := tail.(term.Variable); ok {
			if _, ok := seen[v]; ok {
				return nondet.Error(TypeError(ValidTypeList, list, env))
			}
			seen[v] = struct{}{}
		}

		switch t := env.Resolve(tail).(type) {
		case term.Variable:
			return lengthRest(n, t, length, k, env)
		case term.Atom:
			if t != "[]" {
				return nondet.Error(TypeError(ValidTypeList, list, env))
			}
			return Unify(length, n, k, env)
		case *term.Compound:
			if t.Functor != "." || len(t.Args) != 2 {
				return nondet.Error(TypeError(ValidTypeList, list, env))
			}
			n++
			tail = t.Args[1]
		default:
			return nondet.Error(TypeError(ValidTypeList, list, env))
		}
	}
}

func lengthRest(n term.Integer, tail term.Variable, length term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch l := env.Resolve(length).(type) {
	case term.Integer:
		if l < n {
			return nondet.Bool(false)
		}
		vs := make([]term.Interface, l-n)
		for i := range vs {
			vs[i] = term.NewVariable()
		}
		return Unify(tail, term.List(vs...), k, env)
	default:
		return lengthEnum(n, tail, length, nil, k, env)
	}
}

func lengthEnum(n term.Integer, tail term.Variable, length term.Interface, vs []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return nondet.Delay(func(context.Context) *nondet.Promise {
		env, ok := env.Unify(tail, term.List(vs...), false)
		if !ok {
			return nondet.Bool(false)
		}
		return Unify(length, n+term.Integer(len(vs)), k, env)
	}, func(context.Context) *nondet.Promise {
		next := make([]term.Interface, len(vs), len(vs)+1)
		copy(next, vs)
		return lengthEnum(n, tail, length, append(next, term.NewVariable()), k, env)
	})
}

// FindAll collects all the solutions of goal as instances, which unify with template.
func (vm *VM) FindAll(template, goal, instances term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return nondet.Delay(func(ctx context.Context) *nondet.Promise {
		var answers []term.Interface
		if _, err := vm.Call(goal, func(env *term.Env) *nondet.Promise {
			c, err := term.Copy(template, env)
			if err != nil {
				return nondet.Error(SystemError(err))
			}
			answers = append(answers, c)
			return nondet.Bool(false) // ask for more solutions
		}, env).Force(ctx); err != nil {
			return nondet.Error(err)
		}
		return Unify(instances, term.List(answers...), k, env)
	})
}

// Dif constrains x and y to be different.
func (vm *VM) Dif(x, y term.Interface, k Cont, env *term.Env) *nondet.Promise {
	env, ok := env.Dif(x, y, vm.occursCheck)
	if !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

// Assertz appends t to the database.
func (vm *VM) Assertz(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return vm.assert(t, k, func(cs clauses, c clause) clauses {
		return append(cs, c)
	}, env)
}

// Asserta prepends t to the database.
func (vm *VM) Asserta(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return vm.assert(t, k, func(cs clauses, c clause) clauses {
		return append(clauses{c}, cs...)
	}, env)
}

func (vm *VM) assert(t term.Interface, k Cont, merge func(clauses, clause) clauses, env *term.Env) *nondet.Promise {
	raw, err := term.Copy(term.Rulify(t, env), env)
	if err != nil {
		return nondet.Error(TypeError(ValidTypeCallable, t, env))
	}
	rule := raw.(*term.Compound)

	pi, _, err := piOf(rule.Args[0], nil)
	if err != nil {
		return nondet.Error(err)
	}

	switch rule.Args[1].(type) {
	case term.Integer, term.Float:
		return nondet.Error(TypeError(ValidTypeCallable, t, env))
	}

	if isControl(pi) {
		return nondet.Error(PermissionError(OperationModify, PermissionTypeStaticProcedure, pi.Term(), env))
	}

	if vm.procedures == nil {
		vm.procedures = map[procedureIndicator]procedure{}
	}
	p, ok := vm.procedures[pi]
	if !ok {
		p = clauses{}
	}

	cs, ok := p.(clauses)
	if !ok {
		return nondet.Error(PermissionError(OperationModify, PermissionTypeStaticProcedure, pi.Term(), env))
	}

	vm.procedures[pi] = merge(cs, clause{pi: pi, raw: rule})
	return k(env)
}

// Dynamic declares the procedures indicated by pi as user-defined ones so that calling them before any clauses are
// added fails instead of raising an existence error.
func (vm *VM) Dynamic(pi term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch p := env.Resolve(pi).(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case *term.Compound:
		if p.Functor == "," && len(p.Args) == 2 {
			return vm.Dynamic(p.Args[0], func(env *term.Env) *nondet.Promise {
				return vm.Dynamic(p.Args[1], k, env)
			}, env)
		}
		if p.Functor != "/" || len(p.Args) != 2 {
			return nondet.Error(TypeError(ValidTypePredicateIndicator, pi, env))
		}
		f, ok := env.Resolve(p.Args[0]).(term.Atom)
		if !ok {
			return nondet.Error(TypeError(ValidTypePredicateIndicator, pi, env))
		}
		a, ok := env.Resolve(p.Args[1]).(term.Integer)
		if !ok {
			return nondet.Error(TypeError(ValidTypePredicateIndicator, pi, env))
		}
		key := procedureIndicator{name: f, arity: int(a)}
		if isControl(key) {
			return nondet.Error(PermissionError(OperationModify, PermissionTypeStaticProcedure, key.Term(), env))
		}
		if vm.procedures == nil {
			vm.procedures = map[procedureIndicator]procedure{}
		}
		switch vm.procedures[key].(type) {
		case nil:
			vm.procedures[key] = clauses{}
		case clauses:
			break
		default:
			return nondet.Error(PermissionError(OperationModify, PermissionTypeStaticProcedure, key.Term(), env))
		}
		return k(env)
	default:
		return nondet.Error(TypeError(ValidTypePredicateIndicator, pi, env))
	}
}

// Write outputs t without quotes.
func (vm *VM) Write(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return vm.write(t, false, k, env)
}

// WriteQuoted outputs t with quotes so that it can be read back.
func (vm *VM) WriteQuoted(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return vm.write(t, true, k, env)
}

func (vm *VM) write(t term.Interface, quoted bool, k Cont, env *term.Env) *nondet.Promise {
	opts := term.WriteTermOptions{
		Quoted:     quoted,
		Ops:        *vm.Operators(),
		NumberVars: true,
		Priority:   1200,
	}
	if err := term.Write(vm.writer(), t, opts, env); err != nil {
		return nondet.Error(SystemError(err))
	}
	return k(env)
}

// Nl outputs a newline.
func (vm *VM) Nl(k Cont, env *term.Env) *nondet.Promise {
	if _, err := fmt.Fprintln(vm.writer()); err != nil {
		return nondet.Error(SystemError(err))
	}
	return k(env)
}

// Read reads a term from the user input and unifies it with t. At the end of input, t is unified with end_of_file.
func (vm *VM) Read(t term.Interface, k Cont, env *term.Env) *nondet.Promise {
	if vm.input == nil {
		return Unify(t, term.Atom("end_of_file"), k, env)
	}
	if vm.reader == nil {
		vm.reader = vm.Parser(vm.input)
	}
	vm.reader.DoubleQuotes = vm.doubleQuotes

	r, err := vm.reader.Term()
	switch err {
	case nil:
		return Unify(t, r, k, env)
	case io.EOF:
		return Unify(t, term.Atom("end_of_file"), k, env)
	default:
		vm.reader.Recover()
		return nondet.Error(SyntaxError(err, env))
	}
}

// Op defines operator with priority and specifier, or removes when priority is 0.
func (vm *VM) Op(priority, specifier, operator term.Interface, k Cont, env *term.Env) *nondet.Promise {
	var p term.Integer
	switch pr := env.Resolve(priority).(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case term.Integer:
		if pr < 0 || pr > 1200 {
			return nondet.Error(DomainError(ValidDomainOperatorPriority, priority, env))
		}
		p = pr
	default:
		return nondet.Error(TypeError(ValidTypeInteger, priority, env))
	}

	var s term.Atom
	switch sp := env.Resolve(specifier).(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case term.Atom:
		switch sp {
		case "xf", "yf", "xfx", "xfy", "yfx", "fx", "fy":
			s = sp
		default:
			return nondet.Error(DomainError(ValidDomainOperatorSpecifier, sp, env))
		}
	default:
		return nondet.Error(TypeError(ValidTypeAtom, specifier, env))
	}

	var names []term.Atom
	switch o := env.Resolve(operator).(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case term.Atom:
		if o != "[]" {
			names = append(names, o)
		}
	case *term.Compound:
		elems, err := term.Slice(o, env)
		if err != nil {
			return nondet.Error(TypeError(ValidTypeList, operator, env))
		}
		for _, e := range elems {
			a, ok := env.Resolve(e).(term.Atom)
			if !ok {
				return nondet.Error(TypeError(ValidTypeAtom, e, env))
			}
			names = append(names, a)
		}
	default:
		return nondet.Error(TypeError(ValidTypeList, operator, env))
	}

	for _, n := range names {
		if n == "," {
			return nondet.Error(PermissionError(OperationModify, PermissionTypeOperator, n, env))
		}
	}

	ops := vm.Operators()
	for _, n := range names {
		ops.Define(p, s, n)
	}

	return k(env)
}

// CurrentOp succeeds if operator is defined with priority and specifier.
func (vm *VM) CurrentOp(priority, specifier, operator term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch p := env.Resolve(priority).(type) {
	case term.Variable:
		break
	case term.Integer:
		if p < 0 || p > 1200 {
			return nondet.Error(DomainError(ValidDomainOperatorPriority, priority, env))
		}
	default:
		return nondet.Error(DomainError(ValidDomainOperatorPriority, priority, env))
	}

	switch s := env.Resolve(specifier).(type) {
	case term.Variable:
		break
	case term.Atom:
		switch s {
		case "xf", "yf", "xfx", "xfy", "yfx", "fx", "fy":
			break
		default:
			return nondet.Error(DomainError(ValidDomainOperatorSpecifier, s, env))
		}
	default:
		return nondet.Error(DomainError(ValidDomainOperatorSpecifier, s, env))
	}

	switch env.Resolve(operator).(type) {
	case term.Variable, term.Atom:
		break
	default:
		return nondet.Error(TypeError(ValidTypeAtom, operator, env))
	}

	ops := *vm.Operators()
	pattern := term.Compound{Args: []term.Interface{priority, specifier, operator}}
	ks := make([]func(context.Context) *nondet.Promise, len(ops))
	for i := range ops {
		op := ops[i]
		ks[i] = func(context.Context) *nondet.Promise {
			return Unify(&pattern, &term.Compound{Args: []term.Interface{op.Priority, op.Specifier, op.Name}}, k, env)
		}
	}
	return nondet.Delay(ks...)
}

// SetPrologFlag sets flag to value.
func (vm *VM) SetPrologFlag(flag, value term.Interface, k Cont, env *term.Env) *nondet.Promise {
	var f term.Atom
	switch fl := env.Resolve(flag).(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case term.Atom:
		f = fl
	default:
		return nondet.Error(TypeError(ValidTypeAtom, flag, env))
	}

	v := env.Resolve(value)
	if _, ok := v.(term.Variable); ok {
		return nondet.Error(InstantiationError(env))
	}
	a, _ := v.(term.Atom)
	invalid := func() *nondet.Promise {
		return nondet.Error(DomainError(ValidDomainFlagValue, term.Atom("+").Apply(f, v), env))
	}

	switch f {
	case "bounded", "max_integer", "min_integer":
		return nondet.Error(PermissionError(OperationModify, PermissionTypeFlag, f, env))
	case "unknown":
		switch a {
		case "error":
			vm.unknown = unknownError
		case "fail":
			vm.unknown = unknownFail
		case "warning":
			vm.unknown = unknownWarning
		default:
			return invalid()
		}
	case "occurs_check":
		switch a {
		case "true":
			vm.occursCheck = true
		case "false":
			vm.occursCheck = false
		default:
			return invalid()
		}
	case "double_quotes":
		switch a {
		case "codes":
			vm.doubleQuotes = term.DoubleQuotesCodes
		case "chars":
			vm.doubleQuotes = term.DoubleQuotesChars
		case "atom":
			vm.doubleQuotes = term.DoubleQuotesAtom
		default:
			return invalid()
		}
	default:
		return nondet.Error(DomainError(ValidDomainPrologFlag, f, env))
	}
	return k(env)
}

// CurrentPrologFlag succeeds iff flag is set to value.
func (vm *VM) CurrentPrologFlag(flag, value term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch f := env.Resolve(flag).(type) {
	case term.Variable:
		break
	case term.Atom:
		switch f {
		case "bounded", "max_integer", "min_integer", "unknown", "occurs_check", "double_quotes":
			break
		default:
			return nondet.Error(DomainError(ValidDomainPrologFlag, f, env))
		}
	default:
		return nondet.Error(TypeError(ValidTypeAtom, f, env))
	}

	pattern := term.Compound{Args: []term.Interface{flag, value}}
	flags := []term.Interface{
		&term.Compound{Args: []term.Interface{term.Atom("bounded"), term.Atom("true")}},
		&term.Compound{Args: []term.Interface{term.Atom("max_integer"), term.Integer(math.MaxInt64)}},
		&term.Compound{Args: []term.Interface{term.Atom("min_integer"), term.Integer(math.MinInt64)}},
		&term.Compound{Args: []term.Interface{term.Atom("unknown"), term.Atom(vm.unknown.String())}},
		&term.Compound{Args: []term.Interface{term.Atom("occurs_check"), trueFalse(vm.occursCheck)}},
		&term.Compound{Args: []term.Interface{term.Atom("double_quotes"), term.Atom(vm.doubleQuotes.String())}},
	}
	ks := make([]func(context.Context) *nondet.Promise, len(flags))
	for i := range flags {
		f := flags[i]
		ks[i] = func(context.Context) *nondet.Promise {
			return Unify(&pattern, f, k, env)
		}
	}
	return nondet.Delay(ks...)
}

func trueFalse(b bool) term.Atom {
	if b {
		return "true"
	}
	return "false"
}
