package engine

import (
	"github.com/ichiban/lambda/nondet"
	"github.com/ichiban/lambda/term"
)

// ApplyLambda applies the lambda expression Head :- Body to args.
//
// Variables which occur only once in Head :- Body are global. They are shared with the caller. The other variables
// are local and renamed for each application. The arguments are unified with the ones of Head and then Body is
// executed. If args don't match the arity of Head, it fails.
func (vm *VM) ApplyLambda(head, body term.Interface, args []term.Interface, k Cont, env *term.Env) *nondet.Promise {
	switch h := env.Resolve(head).(type) {
	case term.Variable:
		return nondet.Error(InstantiationError(env))
	case *term.Compound:
		if len(h.Args) != len(args) {
			return nondet.Bool(false)
		}
	default:
		if len(args) != 0 {
			return nondet.Bool(false)
		}
	}

	lambda := term.Atom(":-").Apply(head, body)

	globals, err := term.Singletons(lambda, env)
	if err != nil {
		return nondet.Error(ScopeError(lambda, term.Atom("cyclic_term"), env))
	}

	c, err := term.Copy(lambda, env)
	if err != nil {
		return nondet.Error(ScopeError(lambda, term.Atom("cyclic_term"), env))
	}
	instance := c.(*term.Compound)

	copies, err := term.Singletons(instance, env)
	if err != nil {
		return nondet.Error(ScopeError(lambda, term.Atom("cyclic_term"), env))
	}

	if len(globals) != len(copies) {
		return nondet.Error(ScopeError(lambda, mismatch(globals, copies), env))
	}
	for i := range globals {
		var ok bool
		env, ok = env.Unify(copies[i], globals[i], false)
		if !ok {
			return nondet.Error(ScopeError(lambda, mismatch(globals, copies), env))
		}
	}

	if h, ok := env.Resolve(instance.Args[0]).(*term.Compound); ok {
		for i, p := range h.Args {
			var ok bool
			env, ok = env.Unify(p, args[i], vm.occursCheck)
			if !ok {
				return nondet.Bool(false)
			}
		}
	}

	return vm.Call(instance.Args[1], k, env)
}

func mismatch(globals, copies []term.Variable) term.Interface {
	gs := make([]term.Interface, len(globals))
	for i, v := range globals {
		gs[i] = v
	}
	cs := make([]term.Interface, len(copies))
	for i, v := range copies {
		cs[i] = v
	}
	return term.Atom("-").Apply(term.List(gs...), term.List(cs...))
}
