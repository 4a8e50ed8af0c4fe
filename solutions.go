package lambda

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ichiban/lambda/term"
)

var errClosed = errors.New("already closed")

// Solutions is the result of a query. Everytime the Next method is called, it searches for the next solution.
// By calling the Scan method, you can retrieve the content of the solution.
type Solutions struct {
	vars   []term.VariableWithCount
	more   chan<- bool
	next   <-chan *term.Env
	env    *term.Env
	err    error
	closed bool
	done   bool
}

// Close closes the Solutions and terminates the search for other solutions.
func (s *Solutions) Close() error {
	if s.closed {
		return errClosed
	}
	close(s.more)
	s.closed = true
	if s.next != nil {
		// The search goroutine closes next once it stops, after its last write to err.
		for range s.next {
		}
	}
	return nil
}

// Next prepares the next solution for reading with the Scan method. It returns true if it finds another solution,
// or false if there's no further solutions or if there's an error.
func (s *Solutions) Next() bool {
	if s.closed || s.done {
		return false
	}
	s.more <- true
	env, ok := <-s.next
	if !ok {
		s.done = true
		return false
	}
	s.env = env
	return true
}

// Scan copies the variable values of the current solution into the specified struct/map.
func (s *Solutions) Scan(dest interface{}) error {
	o := reflect.ValueOf(dest)
	switch o.Kind() {
	case reflect.Ptr:
		o = o.Elem()
		if o.Kind() != reflect.Struct {
			return fmt.Errorf("invalid kind: %s", o.Kind())
		}
		t := o.Type()

		fields := map[string]reflect.Value{}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			name := f.Name
			if alias, ok := f.Tag.Lookup("prolog"); ok {
				name = alias
			}
			fields[name] = o.Field(i)
		}

		for _, v := range s.vars {
			f, ok := fields[v.Name]
			if !ok {
				continue
			}
			val, err := convert(s.env.Simplify(v.Variable), f.Type(), s.env)
			if err != nil {
				return err
			}
			f.Set(val)
		}
		return nil
	case reflect.Map:
		t := o.Type()
		if t.Key().Kind() != reflect.String {
			return fmt.Errorf("invalid key type: %s", t.Key())
		}
		if !termType.AssignableTo(t.Elem()) {
			return fmt.Errorf("invalid value type: %s", t.Elem())
		}
		for _, v := range s.vars {
			o.SetMapIndex(reflect.ValueOf(v.Name).Convert(t.Key()), reflect.ValueOf(s.env.Simplify(v.Variable)))
		}
		return nil
	default:
		return fmt.Errorf("invalid kind: %s", o.Kind())
	}
}

var (
	termType      = reflect.TypeOf((*term.Interface)(nil)).Elem()
	interfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
)

func convert(t term.Interface, typ reflect.Type, env *term.Env) (reflect.Value, error) {
	switch typ {
	case termType:
		return reflect.ValueOf(&t).Elem(), nil
	case interfaceType:
		switch t := env.Resolve(t).(type) {
		case term.Atom:
			return convert(t, reflect.TypeOf(""), env)
		case term.Integer:
			return convert(t, reflect.TypeOf(int64(0)), env)
		case term.Float:
			return convert(t, reflect.TypeOf(float64(0)), env)
		case *term.Compound:
			if t.Functor == "." && len(t.Args) == 2 {
				return convert(t, reflect.TypeOf([]interface{}{}), env)
			}
		}
		v := reflect.New(typ).Elem()
		v.Set(reflect.ValueOf(t))
		return v, nil
	}

	switch typ.Kind() {
	case reflect.Float32, reflect.Float64:
		v := reflect.New(typ).Elem()
		switch t := env.Resolve(t).(type) {
		case term.Float:
			v.SetFloat(float64(t))
		case term.Integer:
			v.SetFloat(float64(t))
		default:
			return reflect.Value{}, fmt.Errorf("failed to convert %s to %s", t, typ)
		}
		return v, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := env.Resolve(t).(term.Integer)
		if !ok {
			return reflect.Value{}, fmt.Errorf("failed to convert %s to %s", t, typ)
		}
		v := reflect.New(typ).Elem()
		if v.OverflowInt(int64(i)) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", i, typ)
		}
		v.SetInt(int64(i))
		return v, nil
	case reflect.String:
		a, ok := env.Resolve(t).(term.Atom)
		if !ok {
			return reflect.Value{}, fmt.Errorf("failed to convert %s to %s", t, typ)
		}
		v := reflect.New(typ).Elem()
		v.SetString(string(a))
		return v, nil
	case reflect.Slice:
		elems, err := term.Slice(t, env)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("failed to convert %s to %s: %w", t, typ, err)
		}
		v := reflect.MakeSlice(typ, len(elems), len(elems))
		for i, e := range elems {
			ev, err := convert(e, typ.Elem(), env)
			if err != nil {
				return reflect.Value{}, err
			}
			v.Index(i).Set(ev)
		}
		return v, nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type: %s", typ)
	}
}

// Err returns the error if exists.
func (s *Solutions) Err() error {
	return s.err
}

// Vars returns variable names.
func (s *Solutions) Vars() []string {
	ns := make([]string, len(s.vars))
	for i, v := range s.vars {
		ns[i] = v.Name
	}
	return ns
}

// Constraints returns the dif/2 constraints which are left unresolved in the current solution.
func (s *Solutions) Constraints() []term.Interface {
	ds := s.env.Disequalities()
	for i, d := range ds {
		ds[i] = s.env.Simplify(d)
	}
	return ds
}

// Solution is the first solution of a query.
type Solution struct {
	sols *Solutions
	err  error
}

// Scan copies the variable values of the solution into the specified struct/map.
func (s *Solution) Scan(dest interface{}) error {
	if err := s.err; err != nil {
		return err
	}
	return s.sols.Scan(dest)
}

// Err returns the error if exists.
func (s *Solution) Err() error {
	return s.err
}

// Vars returns variable names.
func (s *Solution) Vars() []string {
	if s.sols == nil {
		return nil
	}
	return s.sols.Vars()
}

// Constraints returns the dif/2 constraints which are left unresolved in the solution.
func (s *Solution) Constraints() []term.Interface {
	if s.sols == nil {
		return nil
	}
	return s.sols.Constraints()
}
