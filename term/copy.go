package term

// Copy returns a structural copy of t in which bound variables are replaced by their values and every free
// variable is replaced by a fresh one. Sharing among free variables is preserved. Constraints are not copied.
func Copy(t Interface, env *Env) (Interface, error) {
	c := copier{
		env:  env,
		vars: map[Variable]Variable{},
	}
	return c.copy(t)
}

type copier struct {
	env      *Env
	vars     map[Variable]Variable
	visiting []Variable
}

func (c *copier) copy(t Interface) (Interface, error) {
	switch t := t.(type) {
	case Variable:
		if ref, ok := c.env.Lookup(t); ok {
			if err := c.enter(t); err != nil {
				return nil, err
			}
			defer c.leave()
			return c.copy(ref)
		}
		v, ok := c.vars[t]
		if !ok {
			v = NewVariable()
			c.vars[t] = v
		}
		return v, nil
	case *Compound:
		args := make([]Interface, len(t.Args))
		for i, a := range t.Args {
			var err error
			args[i], err = c.copy(a)
			if err != nil {
				return nil, err
			}
		}
		return &Compound{Functor: t.Functor, Args: args}, nil
	default:
		return t, nil
	}
}

func (c *copier) enter(v Variable) error {
	for _, w := range c.visiting {
		if w == v {
			return ErrCyclicTerm
		}
	}
	c.visiting = append(c.visiting, v)
	return nil
}

func (c *copier) leave() {
	c.visiting = c.visiting[:len(c.visiting)-1]
}

// Singletons returns the free variables which occur exactly once in t, in left-to-right depth-first order.
func Singletons(t Interface, env *Env) ([]Variable, error) {
	s := singletons{
		env:    env,
		counts: map[Variable]int{},
	}
	if err := s.walk(t); err != nil {
		return nil, err
	}
	var ret []Variable
	for _, v := range s.order {
		if s.counts[v] == 1 {
			ret = append(ret, v)
		}
	}
	return ret, nil
}

type singletons struct {
	env      *Env
	counts   map[Variable]int
	order    []Variable
	visiting []Variable
}

func (s *singletons) walk(t Interface) error {
	switch t := t.(type) {
	case Variable:
		if ref, ok := s.env.Lookup(t); ok {
			for _, w := range s.visiting {
				if w == t {
					return ErrCyclicTerm
				}
			}
			s.visiting = append(s.visiting, t)
			defer func() {
				s.visiting = s.visiting[:len(s.visiting)-1]
			}()
			return s.walk(ref)
		}
		if s.counts[t] == 0 {
			s.order = append(s.order, t)
		}
		s.counts[t]++
		return nil
	case *Compound:
		for _, a := range t.Args {
			if err := s.walk(a); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
