package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		p := New(nil, nil)

		var s struct {
			V string
		}
		sol := p.QuerySolution(`version(V).`)
		assert.NoError(t, sol.Scan(&s))
		assert.Equal(t, Version, s.V)

		assert.NoError(t, p.QuerySolution(`call((f(X) :- version(X)), ?).`, Version).Err())
	})

	t.Run("cd", func(t *testing.T) {
		wd, err := os.Getwd()
		assert.NoError(t, err)
		defer func() {
			assert.NoError(t, os.Chdir(wd))
		}()

		p := New(nil, nil)
		dir := t.TempDir()
		assert.NoError(t, p.QuerySolution(`cd(?).`, dir).Err())
		got, err := os.Getwd()
		assert.NoError(t, err)
		assert.Contains(t, got, dir[len(dir)-8:])

		assert.NoError(t, p.QuerySolution(`catch(cd(_), error(instantiation_error, _), true).`).Err())
		assert.NoError(t, p.QuerySolution(`catch(cd(1), error(type_error(atom, 1), _), true).`).Err())
		assert.NoError(t, p.QuerySolution(`catch(cd('/no/such/dir'), error(system_error, _), true).`).Err())
	})
}

func TestBindings(t *testing.T) {
	p := New(nil, nil)

	tests := []struct {
		query string
		want  []string
	}{
		{query: `true.`, want: []string{}},
		{query: `X = _.`, want: []string{}},
		{query: `call((f(X, Y) :- Y is X + 1), 1, Y).`, want: []string{"Y = 2"}},
		{query: `maplist((f(X, Y) :- Y = g(X)), [a, b], L).`, want: []string{"L = [g(a), g(b)]"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			sols, err := p.Query(tt.query)
			assert.NoError(t, err)
			defer func() {
				assert.NoError(t, sols.Close())
			}()

			assert.True(t, sols.Next())
			ls, err := bindings(sols)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ls)
		})
	}

	t.Run("constraints", func(t *testing.T) {
		sols, err := p.Query(`call((f(Y) :- dif(Y, a)), X).`)
		assert.NoError(t, err)
		defer func() {
			assert.NoError(t, sols.Close())
		}()

		assert.True(t, sols.Next())
		ls, err := bindings(sols)
		assert.NoError(t, err)
		if assert.Len(t, ls, 1) {
			assert.Regexp(t, `^dif\(_\d+, a\)$`, ls[0])
		}
	})
}
