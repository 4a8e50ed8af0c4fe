package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/ichiban/lambda"
	"github.com/ichiban/lambda/engine"
	"github.com/ichiban/lambda/nondet"
	"github.com/ichiban/lambda/syntax"
	"github.com/ichiban/lambda/term"
)

func main() {
	var (
		verbose     bool
		unknown     string
		occursCheck bool
	)
	pflag.BoolVarP(&verbose, "verbose", "v", false, `trace procedure calls`)
	pflag.StringVar(&unknown, "unknown", "error", `action on unknown procedures: error, fail or warning`)
	pflag.BoolVar(&occursCheck, "occurs-check", false, `unify with the occurs check`)
	pflag.Parse()

	oldState, err := terminal.MakeRaw(0)
	if err != nil {
		logrus.WithError(err).Panic("failed to enter raw mode")
	}
	restore := func() {
		_ = terminal.Restore(0, oldState)
	}
	defer restore()

	t := terminal.NewTerminal(os.Stdin, "?- ")
	defer fmt.Printf("\r\n")

	logrus.SetOutput(t)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	i := New(os.Stdin, t)
	i.Trace = verbose
	i.Register0("halt", func(k engine.Cont, env *term.Env) *nondet.Promise {
		restore()
		os.Exit(0)
		return k(env)
	})
	i.Register1("halt", func(code term.Interface, k engine.Cont, env *term.Env) *nondet.Promise {
		switch code := env.Resolve(code).(type) {
		case term.Variable:
			return nondet.Error(engine.InstantiationError(env))
		case term.Integer:
			restore()
			os.Exit(int(code))
			return k(env)
		default:
			return nondet.Error(engine.TypeError(engine.ValidTypeInteger, code, env))
		}
	})

	if err := i.Exec(`:- set_prolog_flag(unknown, ?), set_prolog_flag(occurs_check, ?).`, unknown, occursCheck); err != nil {
		logrus.WithError(err).Panic("failed to set flags")
	}

	for _, a := range pflag.Args() {
		b, err := os.ReadFile(a)
		if err != nil {
			logrus.WithError(err).WithField("file", a).Panic("failed to read")
		}

		if err := i.Exec(string(b)); err != nil {
			logrus.WithError(err).WithField("file", a).Panic("failed to execute")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var buf strings.Builder
	keys := bufio.NewReader(os.Stdin)
	for {
		if err := handleLine(ctx, &buf, i, t, keys); err != nil {
			if err == io.EOF {
				return
			}
			logrus.WithError(err).Panic("failed to handle line")
		}
	}
}

func handleLine(ctx context.Context, buf *strings.Builder, i *lambda.Interpreter, t *terminal.Terminal, keys *bufio.Reader) error {
	if buf.Len() == 0 {
		t.SetPrompt("?- ")
	} else {
		t.SetPrompt("|  ")
	}

	line, err := t.ReadLine()
	if err != nil {
		if err == io.EOF {
			return err
		}
		logrus.WithError(err).Error("failed to read line")
		buf.Reset()
		return nil
	}
	if _, err := buf.WriteString(line); err != nil {
		logrus.WithError(err).Error("failed to buffer")
		buf.Reset()
		return nil
	}

	c := 0
	sols, err := i.QueryContext(ctx, buf.String())
	switch {
	case err == nil:
		break
	case errors.Is(err, syntax.ErrInsufficient):
		if _, err := buf.WriteRune('\n'); err != nil {
			logrus.WithError(err).Error("failed to buffer")
			buf.Reset()
		}

		// Returns without resetting buf.
		return nil
	default:
		logrus.WithError(err).Error("failed to query")
		buf.Reset()
		return nil
	}

	for sols.Next() {
		c++

		ls, err := bindings(sols)
		if err != nil {
			logrus.WithError(err).Error("failed to scan")
			break
		}
		if len(ls) == 0 {
			if _, err := fmt.Fprintf(t, "%t.\n", true); err != nil {
				return err
			}
			break
		}

		if _, err := fmt.Fprintf(t, "%s ", strings.Join(ls, ",\n")); err != nil {
			return err
		}

		r, _, err := keys.ReadRune()
		if err != nil {
			logrus.WithError(err).Error("failed to read rune")
			break
		}
		if r != ';' {
			r = '.'
		}

		if _, err := fmt.Fprintf(t, "%s\n", string(r)); err != nil {
			return err
		}

		if r == '.' {
			break
		}
	}
	if err := sols.Close(); err != nil {
		return err
	}

	if err := sols.Err(); err != nil {
		logrus.WithError(err).Error("failed")
		buf.Reset()
		return nil
	}

	if c == 0 {
		if _, err := fmt.Fprintf(t, "%t.\n", false); err != nil {
			return err
		}
	}

	buf.Reset()
	return nil
}
