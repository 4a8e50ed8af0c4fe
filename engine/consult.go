package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ichiban/lambda/term"
)

// ErrDirectiveFailed is returned when a directive doesn't succeed.
var ErrDirectiveFailed = errors.New("directive failed")

// Consult reads clauses from r and adds them to the database. A directive :- Goal is executed once when it's read.
// Placeholders ? in the text are replaced by args.
func (vm *VM) Consult(ctx context.Context, r io.Reader, args ...interface{}) error {
	p := vm.Parser(r)
	if err := p.Replace("?", args...); err != nil {
		return err
	}

	for {
		t, err := p.Term()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := vm.consult(ctx, t); err != nil {
			return err
		}

		p.DoubleQuotes = vm.doubleQuotes
	}
}

func (vm *VM) consult(ctx context.Context, t term.Interface) error {
	if c, ok := t.(*term.Compound); ok && (c.Functor == ":-" || c.Functor == "?-") && len(c.Args) == 1 {
		ok, err := vm.Call(c.Args[0], Success, nil).Force(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrDirectiveFailed, vm.describe(c.Args[0], nil))
		}
		return nil
	}

	_, err := vm.Assertz(t, Success, nil).Force(ctx)
	return err
}
