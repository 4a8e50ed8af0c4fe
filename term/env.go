package term

type color uint8

const (
	red color = iota
	black
)

// Env is a persistent environment of variable bindings and disequality constraints.
// A nil *Env is an empty environment. Every update returns a new Env and leaves the receiver intact.
type Env struct {
	root        *node
	constraints *disequality
}

// node is a node of a red-black tree keyed by variables.
// This implementation is based on red-black tree from Purely Functional Data Structures by Okasaki.
type node struct {
	color       color
	left, right *node
	variable    Variable
	value       Interface
}

type disequality struct {
	left, right Interface
	next        *disequality
}

func (e *Env) tree() *node {
	if e == nil {
		return nil
	}
	return e.root
}

func (e *Env) store() *disequality {
	if e == nil {
		return nil
	}
	return e.constraints
}

// Lookup returns a term that the given variable is bound to.
func (e *Env) Lookup(v Variable) (Interface, bool) {
	n := e.tree()
	for n != nil {
		switch {
		case v < n.variable:
			n = n.left
		case v > n.variable:
			n = n.right
		default:
			return n.value, true
		}
	}
	return nil, false
}

// Bind adds a new entry to the environment.
func (e *Env) Bind(v Variable, t Interface) *Env {
	n := insert(e.tree(), v, t)
	if n.color == red {
		n = &node{color: black, left: n.left, right: n.right, variable: n.variable, value: n.value}
	}
	return &Env{root: n, constraints: e.store()}
}

func insert(n *node, v Variable, t Interface) *node {
	if n == nil {
		return &node{color: red, variable: v, value: t}
	}
	switch {
	case v < n.variable:
		return balance(n.color, insert(n.left, v, t), n.variable, n.value, n.right)
	case v > n.variable:
		return balance(n.color, n.left, n.variable, n.value, insert(n.right, v, t))
	default:
		return &node{color: n.color, left: n.left, right: n.right, variable: v, value: t}
	}
}

func balance(c color, l *node, v Variable, t Interface, r *node) *node {
	if c == black {
		switch {
		case l.isRed() && l.left.isRed():
			return rotate(l.left.left, l.left, l.left.right, l, l.right, v, t, r)
		case l.isRed() && l.right.isRed():
			return rotate(l.left, l, l.right.left, l.right, l.right.right, v, t, r)
		case r.isRed() && r.left.isRed():
			return rotateRight(l, v, t, r.left.left, r.left, r.left.right, r, r.right)
		case r.isRed() && r.right.isRed():
			return rotateRight(l, v, t, r.left, r, r.right.left, r.right, r.right.right)
		}
	}
	return &node{color: c, left: l, right: r, variable: v, value: t}
}

// rotate builds red y with black children x and z from a left-leaning violation.
func rotate(a, x, b, y, c *node, zv Variable, zt Interface, d *node) *node {
	return &node{
		color:    red,
		left:     &node{color: black, left: a, right: b, variable: x.variable, value: x.value},
		right:    &node{color: black, left: c, right: d, variable: zv, value: zt},
		variable: y.variable,
		value:    y.value,
	}
}

// rotateRight builds red y with black children x and z from a right-leaning violation.
func rotateRight(a *node, xv Variable, xt Interface, b, y, c, z, d *node) *node {
	return &node{
		color:    red,
		left:     &node{color: black, left: a, right: b, variable: xv, value: xt},
		right:    &node{color: black, left: c, right: d, variable: z.variable, value: z.value},
		variable: y.variable,
		value:    y.value,
	}
}

func (n *node) isRed() bool {
	return n != nil && n.color == red
}

// Resolve follows the variable chain and returns the first non-variable term or the last free variable.
func (e *Env) Resolve(t Interface) Interface {
	var stop []Variable
	for t != nil {
		switch v := t.(type) {
		case Variable:
			for _, s := range stop {
				if v == s {
					return v
				}
			}
			ref, ok := e.Lookup(v)
			if !ok {
				return v
			}
			stop = append(stop, v)
			t = ref
		default:
			return v
		}
	}
	return nil
}

// Simplify trys to remove as many variables as possible from term t.
func (e *Env) Simplify(t Interface) Interface {
	return e.simplify(t, nil)
}

func (e *Env) simplify(t Interface, visiting []Variable) Interface {
	if v, ok := t.(Variable); ok {
		for _, s := range visiting {
			if s == v {
				return v
			}
		}
		if _, ok := e.Lookup(v); ok {
			visiting = append(visiting, v)
		}
	}
	switch t := e.Resolve(t).(type) {
	case *Compound:
		c := Compound{
			Functor: t.Functor,
			Args:    make([]Interface, len(t.Args)),
		}
		for i := 0; i < len(c.Args); i++ {
			c.Args[i] = e.simplify(t.Args[i], visiting)
		}
		return &c
	default:
		return t
	}
}

// FreeVariables extracts variables in the given terms.
func (e *Env) FreeVariables(ts ...Interface) []Variable {
	var fvs []Variable
	for _, t := range ts {
		fvs = e.appendFreeVariables(fvs, t, nil)
	}
	return fvs
}

func (e *Env) appendFreeVariables(fvs []Variable, t Interface, visiting []Variable) []Variable {
	switch t := t.(type) {
	case Variable:
		if ref, ok := e.Lookup(t); ok {
			for _, s := range visiting {
				if s == t {
					return fvs
				}
			}
			return e.appendFreeVariables(fvs, ref, append(visiting, t))
		}
		for _, v := range fvs {
			if v == t {
				return fvs
			}
		}
		return append(fvs, t)
	case *Compound:
		for _, arg := range t.Args {
			fvs = e.appendFreeVariables(fvs, arg, visiting)
		}
	}
	return fvs
}

// Unify unifies x and y and then re-examines the disequality constraints against the new bindings.
func (e *Env) Unify(x, y Interface, occursCheck bool) (*Env, bool) {
	env, ok := x.Unify(y, occursCheck, e)
	if !ok {
		return e, false
	}
	if env.tree() == e.tree() {
		return env, true
	}
	return env.settle(occursCheck)
}

func (e *Env) settle(occursCheck bool) (*Env, bool) {
	var (
		kept    []*disequality
		changed bool
	)
	for d := e.store(); d != nil; d = d.next {
		switch e.entails(d.left, d.right, occursCheck) {
		case entailed:
			changed = true
		case violated:
			return e, false
		default:
			kept = append(kept, d)
		}
	}
	if !changed {
		return e, true
	}
	var s *disequality
	for i := len(kept) - 1; i >= 0; i-- {
		s = &disequality{left: kept[i].left, right: kept[i].right, next: s}
	}
	return &Env{root: e.tree(), constraints: s}, true
}

type entailment uint8

const (
	suspended entailment = iota
	entailed
	violated
)

// entails checks if x and y are known to be different (entailed), known to be identical (violated), or neither.
func (e *Env) entails(x, y Interface, occursCheck bool) entailment {
	bare := &Env{root: e.tree()}
	u, ok := x.Unify(y, occursCheck, bare)
	switch {
	case !ok:
		return entailed
	case u.tree() == bare.tree():
		return violated
	default:
		return suspended
	}
}

// Dif adds a constraint that x and y never become identical.
func (e *Env) Dif(x, y Interface, occursCheck bool) (*Env, bool) {
	switch e.entails(x, y, occursCheck) {
	case entailed:
		return e, true
	case violated:
		return e, false
	default:
		return &Env{
			root:        e.tree(),
			constraints: &disequality{left: x, right: y, next: e.store()},
		}, true
	}
}

// Disequalities returns the pending disequality constraints as dif/2 goals in the order they were posted.
func (e *Env) Disequalities() []Interface {
	var ret []Interface
	for d := e.store(); d != nil; d = d.next {
		ret = append(ret, &Compound{
			Functor: "dif",
			Args:    []Interface{d.left, d.right},
		})
	}
	for i, j := 0, len(ret)-1; i < j; i, j = i+1, j-1 {
		ret[i], ret[j] = ret[j], ret[i]
	}
	return ret
}
