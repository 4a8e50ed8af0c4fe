package lambda

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ichiban/lambda/term"
)

func TestSolutions_Close(t *testing.T) {
	ch := make(chan bool)
	sols := Solutions{more: ch}
	assert.NoError(t, sols.Close())
	assert.Error(t, sols.Close())

	t.Run("waits for the search", func(t *testing.T) {
		more := make(chan bool, 1)
		next := make(chan *term.Env)
		sols := Solutions{more: more, next: next}
		err := errors.New("ng")
		go func() {
			defer close(next)
			<-more
			sols.err = err
		}()
		assert.NoError(t, sols.Close())
		assert.Equal(t, err, sols.Err())
	})

	t.Run("after a solution", func(t *testing.T) {
		p := New(nil, nil)
		sols, err := p.Query(`repeat.`)
		assert.NoError(t, err)
		assert.True(t, sols.Next())
		assert.NoError(t, sols.Close())
		assert.NoError(t, sols.Err())
		assert.False(t, sols.Next())
	})

	t.Run("before the first solution", func(t *testing.T) {
		p := New(nil, nil)
		sols, err := p.Query(`throw(ng).`)
		assert.NoError(t, err)
		assert.NoError(t, sols.Close())
		assert.NoError(t, sols.Err())
	})
}

func TestSolutions_Next(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		v := term.NewVariable()
		env, _ := (*term.Env)(nil).Unify(v, term.Atom("foo"), false)
		more := make(chan bool, 1)
		defer close(more)
		next := make(chan *term.Env, 1)
		defer close(next)
		next <- env
		sols := Solutions{more: more, next: next}
		assert.True(t, sols.Next())
		assert.Equal(t, term.Atom("foo"), sols.env.Resolve(v))
	})

	t.Run("exhausted", func(t *testing.T) {
		more := make(chan bool, 1)
		next := make(chan *term.Env)
		close(next)
		sols := Solutions{more: more, next: next}
		assert.False(t, sols.Next())
		assert.False(t, sols.Next())
	})

	t.Run("closed", func(t *testing.T) {
		sols := Solutions{closed: true}
		assert.False(t, sols.Next())
	})
}

func TestSolutions_Scan(t *testing.T) {
	var (
		varFloat32 = term.NewVariable()
		varFloat64 = term.NewVariable()
		varInt     = term.NewVariable()
		varInt8    = term.NewVariable()
		varInt16   = term.NewVariable()
		varInt32   = term.NewVariable()
		varInt64   = term.NewVariable()
		varString  = term.NewVariable()
		varSlice   = term.NewVariable()
		varMixed   = term.NewVariable()
		varFoo     = term.NewVariable()
		varBar     = term.NewVariable()
		varBaz     = term.NewVariable()
	)

	var env *term.Env
	for k, v := range map[term.Variable]term.Interface{
		varFloat32: term.Float(32),
		varFloat64: term.Float(64),
		varInt:     term.Integer(1),
		varInt8:    term.Integer(8),
		varInt16:   term.Integer(16),
		varInt32:   term.Integer(32),
		varInt64:   term.Integer(64),
		varString:  term.Atom("string"),
		varSlice:   term.List(term.Atom("a"), term.Atom("b"), term.Atom("c")),
		varMixed:   term.List(term.Atom("a"), term.Integer(1), term.Atom("f").Apply(term.Atom("x"))),
		varFoo:     term.Atom("foo"),
		varBar:     term.Atom("bar"),
		varBaz:     term.Atom("baz"),
	} {
		env, _ = env.Unify(k, v, false)
	}

	sols := Solutions{
		env: env,
		vars: []term.VariableWithCount{
			{Name: "Float32", Variable: varFloat32},
			{Name: "Float64", Variable: varFloat64},
			{Name: "Int", Variable: varInt},
			{Name: "Int8", Variable: varInt8},
			{Name: "Int16", Variable: varInt16},
			{Name: "Int32", Variable: varInt32},
			{Name: "Int64", Variable: varInt64},
			{Name: "String", Variable: varString},
			{Name: "Slice", Variable: varSlice},
			{Name: "Mixed", Variable: varMixed},
			{Name: "Foo", Variable: varFoo},
			{Name: "Bar", Variable: varBar},
			{Name: "Baz", Variable: varBaz},
		},
	}

	t.Run("struct", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			var s struct {
				Float32 float32
				Float64 float64
				Int     int
				Int8    int8
				Int16   int16
				Int32   int32
				Int64   int64
				String  string
				Slice   []string
				Mixed   []interface{}
				Tagged  string `prolog:"Foo"`
				Bar     term.Interface
				Baz     interface{}
			}
			assert.NoError(t, sols.Scan(&s))
			assert.Equal(t, float32(32), s.Float32)
			assert.Equal(t, float64(64), s.Float64)
			assert.Equal(t, 1, s.Int)
			assert.Equal(t, int8(8), s.Int8)
			assert.Equal(t, int16(16), s.Int16)
			assert.Equal(t, int32(32), s.Int32)
			assert.Equal(t, int64(64), s.Int64)
			assert.Equal(t, "string", s.String)
			assert.Equal(t, []string{"a", "b", "c"}, s.Slice)
			assert.Equal(t, []interface{}{"a", int64(1), term.Atom("f").Apply(term.Atom("x"))}, s.Mixed)
			assert.Equal(t, "foo", s.Tagged)
			assert.Equal(t, term.Atom("bar"), s.Bar)
			assert.Equal(t, "baz", s.Baz)
		})

		t.Run("ng", func(t *testing.T) {
			t.Run("string", func(t *testing.T) {
				var s struct {
					Int string
				}
				assert.Error(t, sols.Scan(&s))
			})

			t.Run("float", func(t *testing.T) {
				var s struct {
					String float64
				}
				assert.Error(t, sols.Scan(&s))
			})

			t.Run("overflow", func(t *testing.T) {
				x := term.NewVariable()
				sols := Solutions{
					env:  (*term.Env)(nil).Bind(x, term.Integer(1000)),
					vars: []term.VariableWithCount{{Name: "X", Variable: x}},
				}
				var s struct {
					X int8
				}
				assert.Error(t, sols.Scan(&s))
			})

			t.Run("slice", func(t *testing.T) {
				var s struct {
					Slice []int
				}
				assert.Error(t, sols.Scan(&s))
			})

			t.Run("unsupported", func(t *testing.T) {
				var s struct {
					Int complex64
				}
				assert.Error(t, sols.Scan(&s))
			})

			t.Run("not a struct", func(t *testing.T) {
				var i int
				assert.Error(t, sols.Scan(&i))
			})
		})
	})

	t.Run("map", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			m := map[string]term.Interface{}
			assert.NoError(t, sols.Scan(m))
			assert.Equal(t, term.Float(32), m["Float32"])
			assert.Equal(t, term.Float(64), m["Float64"])
			assert.Equal(t, term.Integer(1), m["Int"])
			assert.Equal(t, term.Integer(8), m["Int8"])
			assert.Equal(t, term.Integer(16), m["Int16"])
			assert.Equal(t, term.Integer(32), m["Int32"])
			assert.Equal(t, term.Integer(64), m["Int64"])
			assert.Equal(t, term.Atom("string"), m["String"])
			assert.Equal(t, term.List(term.Atom("a"), term.Atom("b"), term.Atom("c")), m["Slice"])
			assert.Equal(t, term.Atom("foo"), m["Foo"])
			assert.Equal(t, term.Atom("bar"), m["Bar"])
		})

		t.Run("ng", func(t *testing.T) {
			t.Run("key", func(t *testing.T) {
				m := map[int]term.Interface{}
				assert.Error(t, sols.Scan(m))
			})

			t.Run("value", func(t *testing.T) {
				m := map[string]int{}
				assert.Error(t, sols.Scan(m))
			})
		})
	})

	t.Run("other", func(t *testing.T) {
		assert.Error(t, sols.Scan(1))
	})
}

func TestSolutions_Err(t *testing.T) {
	err := errors.New("ng")
	sols := Solutions{err: err}
	assert.Equal(t, err, sols.Err())
}

func TestSolutions_Vars(t *testing.T) {
	sols := Solutions{
		vars: []term.VariableWithCount{
			{Name: "A"},
			{Name: "B"},
			{Name: "C"},
		},
	}

	assert.Equal(t, []string{"A", "B", "C"}, sols.Vars())
}

func TestSolutions_Constraints(t *testing.T) {
	x, y := term.NewVariable(), term.NewVariable()
	env, _ := (*term.Env)(nil).Dif(x, term.Atom("a"), false)
	env, _ = env.Dif(y, term.Atom("b"), false)
	env, _ = env.Unify(y, term.Atom("c"), false)

	sols := Solutions{env: env}
	assert.Equal(t, []term.Interface{
		term.Atom("dif").Apply(x, term.Atom("a")),
	}, sols.Constraints())
}

func ExampleSolutions_Scan() {
	p := New(nil, nil)
	sols, _ := p.Query(`A = foo, I = 42, F = 3.14.`)
	for sols.Next() {
		var s struct {
			A string
			I int
			F float64
		}
		_ = sols.Scan(&s)
		fmt.Printf("A = %s\n", s.A)
		fmt.Printf("I = %d\n", s.I)
		fmt.Printf("F = %.2f\n", s.F)
	}

	// Output:
	// A = foo
	// I = 42
	// F = 3.14
}

func ExampleSolutions_Scan_tag() {
	p := New(nil, nil)
	sols, _ := p.Query(`A = foo, I = 42, F = 3.14.`)
	for sols.Next() {
		var s struct {
			Atom    string  `prolog:"A"`
			Integer int     `prolog:"I"`
			Float   float64 `prolog:"F"`
		}
		_ = sols.Scan(&s)
		fmt.Printf("Atom = %s\n", s.Atom)
		fmt.Printf("Integer = %d\n", s.Integer)
		fmt.Printf("Float = %.2f\n", s.Float)
	}

	// Output:
	// Atom = foo
	// Integer = 42
	// Float = 3.14
}

func ExampleSolutions_Scan_list() {
	p := New(nil, nil)
	sols, _ := p.Query(`maplist((f(X, Y) :- Y is X * X), [1, 2, 3], Squares), Atoms = [foo, bar], Mixed = [foo, 1, 1.1].`)
	for sols.Next() {
		var s struct {
			Squares []int64
			Atoms   []string
			Mixed   []interface{}
		}
		_ = sols.Scan(&s)

		fmt.Printf("Squares = %d\n", s.Squares)
		fmt.Printf("Atoms = %s\n", s.Atoms)
		fmt.Printf("Mixed = %v\n", s.Mixed)
	}

	// Output:
	// Squares = [1 4 9]
	// Atoms = [foo bar]
	// Mixed = [foo 1 1.1]
}
