package engine

import (
	"context"
	"math"

	"github.com/ichiban/lambda/nondet"
	"github.com/ichiban/lambda/term"
)

// FunctionSet is a set of unary/binary functions.
type FunctionSet struct {
	Unary  map[term.Atom]func(x term.Interface, env *term.Env) (term.Interface, error)
	Binary map[term.Atom]func(x, y term.Interface, env *term.Env) (term.Interface, error)
}

// Is evaluates expression and unifies the result with result.
func (fs FunctionSet) Is(result, expression term.Interface, k Cont, env *term.Env) *nondet.Promise {
	v, err := fs.eval(expression, env)
	if err != nil {
		return nondet.Error(err)
	}
	return nondet.Delay(func(context.Context) *nondet.Promise {
		return Unify(result, v, k, env)
	})
}

// Equal succeeds iff lhs equals to rhs.
func (fs FunctionSet) Equal(lhs, rhs term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return fs.compare(lhs, rhs, k, func(i term.Integer, j term.Integer) bool {
		return i == j
	}, func(f term.Float, g term.Float) bool {
		return f == g
	}, env)
}

// NotEqual succeeds iff lhs doesn't equal to rhs.
func (fs FunctionSet) NotEqual(lhs, rhs term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return fs.compare(lhs, rhs, k, func(i term.Integer, j term.Integer) bool {
		return i != j
	}, func(f term.Float, g term.Float) bool {
		return f != g
	}, env)
}

// LessThan succeeds iff lhs is less than rhs.
func (fs FunctionSet) LessThan(lhs, rhs term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return fs.compare(lhs, rhs, k, func(i term.Integer, j term.Integer) bool {
		return i < j
	}, func(f term.Float, g term.Float) bool {
		return f < g
	}, env)
}

// GreaterThan succeeds iff lhs is greater than rhs.
func (fs FunctionSet) GreaterThan(lhs, rhs term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return fs.compare(lhs, rhs, k, func(i term.Integer, j term.Integer) bool {
		return i > j
	}, func(f term.Float, g term.Float) bool {
		return f > g
	}, env)
}

// LessThanOrEqual succeeds iff lhs is less than or equal to rhs.
func (fs FunctionSet) LessThanOrEqual(lhs, rhs term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return fs.compare(lhs, rhs, k, func(i term.Integer, j term.Integer) bool {
		return i <= j
	}, func(f term.Float, g term.Float) bool {
		return f <= g
	}, env)
}

// GreaterThanOrEqual succeeds iff lhs is greater than or equal to rhs.
func (fs FunctionSet) GreaterThanOrEqual(lhs, rhs term.Interface, k Cont, env *term.Env) *nondet.Promise {
	return fs.compare(lhs, rhs, k, func(i term.Integer, j term.Integer) bool {
		return i >= j
	}, func(f term.Float, g term.Float) bool {
		return f >= g
	}, env)
}

func (fs FunctionSet) compare(lhs, rhs term.Interface, k Cont, pi func(term.Integer, term.Integer) bool, pf func(term.Float, term.Float) bool, env *term.Env) *nondet.Promise {
	l, err := fs.eval(lhs, env)
	if err != nil {
		return nondet.Error(err)
	}

	r, err := fs.eval(rhs, env)
	if err != nil {
		return nondet.Error(err)
	}

	var ok bool
	switch l := l.(type) {
	case term.Integer:
		switch r := r.(type) {
		case term.Integer:
			ok = pi(l, r)
		case term.Float:
			ok = pf(term.Float(l), r)
		}
	case term.Float:
		switch r := r.(type) {
		case term.Integer:
			ok = pf(l, term.Float(r))
		case term.Float:
			ok = pf(l, r)
		}
	}
	if !ok {
		return nondet.Bool(false)
	}
	return k(env)
}

func (fs FunctionSet) eval(expression term.Interface, env *term.Env) (term.Interface, error) {
	v, err := fs.evaluate(expression, env)
	if ev, ok := err.(ExceptionalValue); ok {
		return nil, EvaluationError(ev, env)
	}
	return v, err
}

func (fs FunctionSet) evaluate(expression term.Interface, env *term.Env) (term.Interface, error) {
	switch t := env.Resolve(expression).(type) {
	case term.Variable:
		return nil, InstantiationError(env)
	case term.Atom:
		switch t {
		case "pi":
			return term.Float(math.Pi), nil
		case "e":
			return term.Float(math.E), nil
		case "max_integer":
			return term.Integer(math.MaxInt64), nil
		case "min_integer":
			return term.Integer(math.MinInt64), nil
		default:
			return nil, TypeError(ValidTypeEvaluable, term.Atom("/").Apply(t, term.Integer(0)), env)
		}
	case term.Integer, term.Float:
		return t, nil
	case *term.Compound:
		switch len(t.Args) {
		case 1:
			f, ok := fs.Unary[t.Functor]
			if !ok {
				return nil, TypeError(ValidTypeEvaluable, term.Atom("/").Apply(t.Functor, term.Integer(1)), env)
			}
			x, err := fs.evaluate(t.Args[0], env)
			if err != nil {
				return nil, err
			}
			return f(x, env)
		case 2:
			f, ok := fs.Binary[t.Functor]
			if !ok {
				return nil, TypeError(ValidTypeEvaluable, term.Atom("/").Apply(t.Functor, term.Integer(2)), env)
			}
			x, err := fs.evaluate(t.Args[0], env)
			if err != nil {
				return nil, err
			}
			y, err := fs.evaluate(t.Args[1], env)
			if err != nil {
				return nil, err
			}
			return f(x, y, env)
		default:
			return nil, TypeError(ValidTypeEvaluable, term.Atom("/").Apply(t.Functor, term.Integer(len(t.Args))), env)
		}
	default:
		return nil, TypeError(ValidTypeEvaluable, t, env)
	}
}

// DefaultFunctionSet is a FunctionSet with builtin functions.
var DefaultFunctionSet = FunctionSet{
	Unary: map[term.Atom]func(term.Interface, *term.Env) (term.Interface, error){
		"-":        unaryNumber(negI, func(n float64) float64 { return -1 * n }),
		"+":        unaryNumber(posI, func(n float64) float64 { return n }),
		"abs":      unaryNumber(absI, math.Abs),
		"atan":     unaryFloat(math.Atan),
		"ceiling":  unaryRound(math.Ceil),
		"cos":      unaryFloat(math.Cos),
		"exp":      unaryFloat(math.Exp),
		"sqrt":     unaryFloat(math.Sqrt),
		"sign":     unaryNumber(signI, sgnf),
		"float":    unaryFloat(func(n float64) float64 { return n }),
		"floor":    unaryRound(math.Floor),
		"log":      unaryFloat(math.Log),
		"sin":      unaryFloat(math.Sin),
		"truncate": unaryRound(math.Trunc),
		"round":    unaryRound(math.Round),
		`\`:        unaryInteger(func(i int64) (int64, error) { return ^i, nil }),
	},
	Binary: map[term.Atom]func(term.Interface, term.Interface, *term.Env) (term.Interface, error){
		"+":   binaryNumber(addI, func(n, m float64) float64 { return n + m }),
		"-":   binaryNumber(subI, func(n, m float64) float64 { return n - m }),
		"*":   binaryNumber(mulI, func(n, m float64) float64 { return n * m }),
		"/":   divide,
		"//":  binaryInteger(intDivI),
		"rem": binaryInteger(remI),
		"mod": binaryInteger(modI),
		"min": binaryNumber(func(i, j int64) (int64, error) {
			if j < i {
				return j, nil
			}
			return i, nil
		}, math.Min),
		"max": binaryNumber(func(i, j int64) (int64, error) {
			if j > i {
				return j, nil
			}
			return i, nil
		}, math.Max),
		"**":    binaryFloat(math.Pow),
		"^":     power,
		">>":    binaryInteger(shiftRightI),
		"<<":    binaryInteger(shiftLeftI),
		`/\`:    binaryInteger(func(i, j int64) (int64, error) { return i & j, nil }),
		`\/`:    binaryInteger(func(i, j int64) (int64, error) { return i | j, nil }),
		"atan2": binaryFloat(math.Atan2),
	},
}

// Integer operations report ExceptionalValueIntOverflow instead of wrapping around.

func addI(x, y int64) (int64, error) {
	switch {
	case y > 0 && x > math.MaxInt64-y:
		return 0, ExceptionalValueIntOverflow
	case y < 0 && x < math.MinInt64-y:
		return 0, ExceptionalValueIntOverflow
	default:
		return x + y, nil
	}
}

func subI(x, y int64) (int64, error) {
	switch {
	case y < 0 && x > math.MaxInt64+y:
		return 0, ExceptionalValueIntOverflow
	case y > 0 && x < math.MinInt64+y:
		return 0, ExceptionalValueIntOverflow
	default:
		return x - y, nil
	}
}

func mulI(x, y int64) (int64, error) {
	switch {
	case x == -1 && y == math.MinInt64, x == math.MinInt64 && y == -1:
		return 0, ExceptionalValueIntOverflow
	case y == 0:
		return 0, nil
	default:
		r := x * y
		if r/y != x {
			return 0, ExceptionalValueIntOverflow
		}
		return r, nil
	}
}

func intDivI(x, y int64) (int64, error) {
	switch {
	case y == 0:
		return 0, ExceptionalValueZeroDivisor
	case x == math.MinInt64 && y == -1:
		return 0, ExceptionalValueIntOverflow
	default:
		return x / y, nil
	}
}

func remI(x, y int64) (int64, error) {
	switch y {
	case 0:
		return 0, ExceptionalValueZeroDivisor
	case -1:
		return 0, nil
	default:
		return x % y, nil
	}
}

func modI(x, y int64) (int64, error) {
	r, err := remI(x, y)
	if err != nil {
		return 0, err
	}
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r, nil
}

func negI(x int64) (int64, error) {
	if x == math.MinInt64 {
		return 0, ExceptionalValueIntOverflow
	}
	return -x, nil
}

func posI(x int64) (int64, error) {
	return x, nil
}

func absI(x int64) (int64, error) {
	switch {
	case x == math.MinInt64:
		return 0, ExceptionalValueIntOverflow
	case x < 0:
		return -x, nil
	default:
		return x, nil
	}
}

func signI(x int64) (int64, error) {
	switch {
	case x > 0:
		return 1, nil
	case x < 0:
		return -1, nil
	default:
		return 0, nil
	}
}

func shiftLeftI(x, n int64) (int64, error) {
	switch {
	case n < 0:
		return shiftRightI(x, -n)
	case x == 0:
		return 0, nil
	case n >= 64:
		return 0, ExceptionalValueIntOverflow
	}
	r := x << uint(n)
	if r>>uint(n) != x {
		return 0, ExceptionalValueIntOverflow
	}
	return r, nil
}

func shiftRightI(x, n int64) (int64, error) {
	switch {
	case n < 0:
		return shiftLeftI(x, -n)
	case n >= 64:
		return x >> 63, nil
	default:
		return x >> uint(n), nil
	}
}

func sgnf(f float64) float64 {
	switch {
	case f < 0:
		return -1
	case f == 0:
		return 0
	case f > 0:
		return 1
	default: // NaN
		return f
	}
}

func divide(x, y term.Interface, env *term.Env) (term.Interface, error) {
	d, err := toFloat(y, env)
	if err != nil {
		return nil, err
	}
	if d == 0 {
		return nil, EvaluationError(ExceptionalValueZeroDivisor, env)
	}
	n, err := toFloat(x, env)
	if err != nil {
		return nil, err
	}
	return n / d, nil
}

func power(x, y term.Interface, env *term.Env) (_ term.Interface, err error) {
	i, ok := env.Resolve(x).(term.Integer)
	if !ok {
		return binaryFloat(math.Pow)(x, y, env)
	}
	j, ok := env.Resolve(y).(term.Integer)
	if !ok {
		return binaryFloat(math.Pow)(x, y, env)
	}
	if j < 0 {
		switch i {
		case 1:
			return term.Integer(1), nil
		case -1:
			if j%2 == 0 {
				return term.Integer(1), nil
			}
			return term.Integer(-1), nil
		case 0:
			return nil, EvaluationError(ExceptionalValueZeroDivisor, env)
		default:
			return nil, TypeError(ValidTypeFloat, x, env)
		}
	}
	r := int64(1)
	for ; j > 0; j-- {
		if r, err = mulI(r, int64(i)); err != nil {
			return nil, err
		}
	}
	return term.Integer(r), nil
}

func toFloat(x term.Interface, env *term.Env) (term.Float, error) {
	switch x := env.Resolve(x).(type) {
	case term.Integer:
		return term.Float(x), nil
	case term.Float:
		return x, nil
	default:
		return 0, TypeError(ValidTypeEvaluable, x, env)
	}
}

func unaryInteger(f func(i int64) (int64, error)) func(term.Interface, *term.Env) (term.Interface, error) {
	return func(x term.Interface, env *term.Env) (term.Interface, error) {
		i, ok := env.Resolve(x).(term.Integer)
		if !ok {
			return nil, TypeError(ValidTypeInteger, x, env)
		}

		return integerResult(f(int64(i)))
	}
}

func integerResult(i int64, err error) (term.Interface, error) {
	if err != nil {
		return nil, err
	}
	return term.Integer(i), nil
}

func binaryInteger(f func(i, j int64) (int64, error)) func(term.Interface, term.Interface, *term.Env) (term.Interface, error) {
	return func(x, y term.Interface, env *term.Env) (term.Interface, error) {
		i, ok := env.Resolve(x).(term.Integer)
		if !ok {
			return nil, TypeError(ValidTypeInteger, x, env)
		}

		j, ok := env.Resolve(y).(term.Integer)
		if !ok {
			return nil, TypeError(ValidTypeInteger, y, env)
		}

		return integerResult(f(int64(i), int64(j)))
	}
}

func unaryFloat(f func(n float64) float64) func(term.Interface, *term.Env) (term.Interface, error) {
	return func(x term.Interface, env *term.Env) (term.Interface, error) {
		n, err := toFloat(x, env)
		if err != nil {
			return nil, err
		}
		return term.Float(f(float64(n))), nil
	}
}

// unaryRound rounds a number to an integer by f.
func unaryRound(f func(n float64) float64) func(term.Interface, *term.Env) (term.Interface, error) {
	return func(x term.Interface, env *term.Env) (term.Interface, error) {
		switch x := env.Resolve(x).(type) {
		case term.Integer:
			return x, nil
		case term.Float:
			r := f(float64(x))
			if r > math.MaxInt64 || r < math.MinInt64 || math.IsNaN(r) {
				return nil, EvaluationError(ExceptionalValueIntOverflow, env)
			}
			return term.Integer(r), nil
		default:
			return nil, TypeError(ValidTypeEvaluable, x, env)
		}
	}
}

func binaryFloat(f func(n float64, m float64) float64) func(term.Interface, term.Interface, *term.Env) (term.Interface, error) {
	return func(x, y term.Interface, env *term.Env) (term.Interface, error) {
		n, err := toFloat(x, env)
		if err != nil {
			return nil, err
		}
		m, err := toFloat(y, env)
		if err != nil {
			return nil, err
		}
		return term.Float(f(float64(n), float64(m))), nil
	}
}

func unaryNumber(fi func(i int64) (int64, error), ff func(n float64) float64) func(term.Interface, *term.Env) (term.Interface, error) {
	return func(x term.Interface, env *term.Env) (term.Interface, error) {
		switch x := env.Resolve(x).(type) {
		case term.Integer:
			return integerResult(fi(int64(x)))
		case term.Float:
			return term.Float(ff(float64(x))), nil
		default:
			return nil, TypeError(ValidTypeEvaluable, x, env)
		}
	}
}

func binaryNumber(fi func(i, j int64) (int64, error), ff func(n, m float64) float64) func(term.Interface, term.Interface, *term.Env) (term.Interface, error) {
	return func(x, y term.Interface, env *term.Env) (term.Interface, error) {
		switch x := env.Resolve(x).(type) {
		case term.Integer:
			switch y := env.Resolve(y).(type) {
			case term.Integer:
				return integerResult(fi(int64(x), int64(y)))
			case term.Float:
				return term.Float(ff(float64(x), float64(y))), nil
			default:
				return nil, TypeError(ValidTypeEvaluable, y, env)
			}
		case term.Float:
			n, err := toFloat(y, env)
			if err != nil {
				return nil, err
			}
			return term.Float(ff(float64(x), float64(n))), nil
		default:
			return nil, TypeError(ValidTypeEvaluable, x, env)
		}
	}
}
