package nondet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromise_Force(t *testing.T) {
	var res []int
	k := Delay(func(context.Context) *Promise {
		res = append(res, 1)
		return Bool(false)
	}, func(context.Context) *Promise {
		res = append(res, 2)
		return Delay(func(context.Context) *Promise {
			res = append(res, 3)
			return Bool(false)
		}, func(context.Context) *Promise {
			res = append(res, 4)
			return Delay(func(context.Context) *Promise {
				res = append(res, 5)
				return Bool(false)
			}, func(context.Context) *Promise {
				res = append(res, 6)
				return Bool(false)
			}, func(context.Context) *Promise {
				res = append(res, 7)
				return Bool(false)
			})
		}, func(context.Context) *Promise {
			res = append(res, 8)
			return Bool(false)
		})
	}, func(context.Context) *Promise {
		res = append(res, 9)
		return Bool(true)
	})

	ok, err := k.Force(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, res)
}

func TestCut(t *testing.T) {
	var res []int
	var parent *Promise
	parent = Delay(func(context.Context) *Promise {
		res = append(res, 1)
		return Delay(func(context.Context) *Promise {
			res = append(res, 2)
			return Cut(parent, func(context.Context) *Promise {
				res = append(res, 3)
				return Bool(false)
			})
		}, func(context.Context) *Promise {
			res = append(res, 4)
			return Bool(true)
		})
	}, func(context.Context) *Promise {
		res = append(res, 5)
		return Bool(true)
	})
	k := Delay(func(context.Context) *Promise {
		return parent
	}, func(context.Context) *Promise {
		res = append(res, 6)
		return Bool(true)
	})

	ok, err := k.Force(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 6}, res)

	t.Run("nil parent", func(t *testing.T) {
		k := Delay(func(context.Context) *Promise {
			return Cut(nil, func(context.Context) *Promise {
				return Bool(false)
			})
		}, func(context.Context) *Promise {
			return Bool(true)
		})

		ok, err := k.Force(context.Background())
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRepeat(t *testing.T) {
	count := 0
	k := Repeat(func(context.Context) *Promise {
		count++
		return Bool(count >= 10)
	})

	ok, err := k.Force(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, count)
}

func TestCatch(t *testing.T) {
	errFoo := errors.New("foo")

	t.Run("recovered", func(t *testing.T) {
		k := Catch(func(err error) *Promise {
			if err == errFoo {
				return Bool(true)
			}
			return nil
		}, func(context.Context) *Promise {
			return Error(errFoo)
		})

		ok, err := k.Force(context.Background())
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("not applicable", func(t *testing.T) {
		errBar := errors.New("bar")
		k := Catch(func(err error) *Promise {
			if err == errFoo {
				return Bool(true)
			}
			return nil
		}, func(context.Context) *Promise {
			return Error(errBar)
		})

		_, err := k.Force(context.Background())
		assert.Equal(t, errBar, err)
	})

	t.Run("nested", func(t *testing.T) {
		var res []string
		k := Catch(func(err error) *Promise {
			res = append(res, "outer")
			return Bool(true)
		}, func(context.Context) *Promise {
			return Catch(func(err error) *Promise {
				res = append(res, "inner")
				return nil
			}, func(context.Context) *Promise {
				return Error(errFoo)
			})
		})

		ok, err := k.Force(context.Background())
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"inner", "outer"}, res)
	})
}

func TestPromise_Force_Context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	k := Repeat(func(context.Context) *Promise {
		cancel()
		return Bool(false)
	})

	_, err := k.Force(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestPromise_Force_Long(t *testing.T) {
	var loop func(n int) func(context.Context) *Promise
	loop = func(n int) func(context.Context) *Promise {
		return func(context.Context) *Promise {
			if n == 0 {
				return Bool(true)
			}
			return Delay(loop(n - 1))
		}
	}

	ok, err := Delay(loop(1000000)).Force(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
}
