package term

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomic_WriteTerm(t *testing.T) {
	tests := []struct {
		term   Interface
		quoted bool
		output string
	}{
		{term: Atom("a"), quoted: true, output: "a"},
		{term: Atom("fooBar_1"), quoted: true, output: "fooBar_1"},
		{term: Atom("[]"), quoted: true, output: "[]"},
		{term: Atom("{}"), quoted: true, output: "{}"},
		{term: Atom(""), quoted: true, output: "''"},
		{term: Atom("Hello"), quoted: true, output: "'Hello'"},
		{term: Atom("hello world"), quoted: true, output: "'hello world'"},
		{term: Atom("it's"), quoted: true, output: `'it\'s'`},
		{term: Atom(`a\b`), quoted: true, output: `'a\\b'`},
		{term: Atom("a\nb"), quoted: true, output: `'a\nb'`},
		{term: Atom("\x00"), quoted: true, output: `'\x0\'`},
		{term: Atom("Hello"), quoted: false, output: "Hello"},
		{term: Atom("+"), quoted: true, output: "+"},
		{term: Atom(":-"), quoted: true, output: ":-"},
		{term: Atom("+a"), quoted: true, output: "'+a'"},
		{term: Integer(-3), output: "-3"},
		{term: Float(1), output: "1.0"},
		{term: Float(2.5), output: "2.5"},
		{term: Float(1e21), output: "1.0e+21"},
		{term: Float(math.Inf(1)), output: "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			var sb strings.Builder
			assert.NoError(t, tt.term.WriteTerm(&sb, WriteTermOptions{Quoted: tt.quoted}, nil))
			assert.Equal(t, tt.output, sb.String())
		})
	}
}

func TestAtomic_Unify(t *testing.T) {
	x := NewVariable()

	tests := []struct {
		title string
		x, y  Interface
		ok    bool
	}{
		{title: "same atom", x: Atom("a"), y: Atom("a"), ok: true},
		{title: "different atoms", x: Atom("a"), y: Atom("b")},
		{title: "same integer", x: Integer(1), y: Integer(1), ok: true},
		{title: "integer and float", x: Integer(1), y: Float(1)},
		{title: "float and integer", x: Float(1), y: Integer(1)},
		{title: "atom and compound", x: Atom("f"), y: Atom("f").Apply(Atom("a"))},
		{title: "variable", x: Atom("a"), y: x, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			_, ok := tt.x.Unify(tt.y, false, nil)
			assert.Equal(t, tt.ok, ok)
		})
	}

	t.Run("bound variable", func(t *testing.T) {
		env := (*Env)(nil).Bind(x, Integer(2))
		_, ok := Integer(2).Unify(x, false, env)
		assert.True(t, ok)
		_, ok = Integer(3).Unify(x, false, env)
		assert.False(t, ok)
	})
}

func TestAtom_Apply(t *testing.T) {
	assert.Equal(t, Atom("foo"), Atom("foo").Apply())
	assert.Equal(t, &Compound{Functor: "foo", Args: []Interface{Atom("a")}}, Atom("foo").Apply(Atom("a")))
}
