package term

import (
	"io"
	"strconv"
	"strings"
)

// Atom is a symbolic constant.
type Atom string

// Integer is a 64-bit signed integer.
type Integer int64

// Float is a double precision floating-point number.
type Float float64

func (a Atom) String() string    { return stringOf(a) }
func (i Integer) String() string { return stringOf(i) }
func (f Float) String() string   { return stringOf(f) }

func stringOf(t Interface) string {
	var sb strings.Builder
	_ = t.WriteTerm(&sb, DefaultWriteTermOptions, nil)
	return sb.String()
}

// Unify unifies the atom with t.
func (a Atom) Unify(t Interface, occursCheck bool, env *Env) (*Env, bool) {
	return unifyAtomic(a, t, occursCheck, env)
}

// Unify unifies the integer with t.
func (i Integer) Unify(t Interface, occursCheck bool, env *Env) (*Env, bool) {
	return unifyAtomic(i, t, occursCheck, env)
}

// Unify unifies the float with t. 1.0 and 1 don't unify.
func (f Float) Unify(t Interface, occursCheck bool, env *Env) (*Env, bool) {
	return unifyAtomic(f, t, occursCheck, env)
}

// unifyAtomic relies on == over the dynamic types, so constants of different kinds never unify.
func unifyAtomic(c, t Interface, occursCheck bool, env *Env) (*Env, bool) {
	switch t := env.Resolve(t).(type) {
	case Variable:
		return t.Unify(c, occursCheck, env)
	default:
		return env, c == t
	}
}

// Apply returns a Compound which Functor is the Atom and Args are the arguments. If the arguments are empty,
// then returns itself.
func (a Atom) Apply(args ...Interface) Interface {
	if len(args) == 0 {
		return a
	}
	return &Compound{
		Functor: a,
		Args:    args,
	}
}

// WriteTerm writes the atom into w. With opts.Quoted, atoms which wouldn't read back as themselves are quoted.
func (a Atom) WriteTerm(w io.Writer, opts WriteTermOptions, _ *Env) error {
	s := string(a)
	if opts.Quoted && !bare(s) {
		s = quote(s)
	}
	_, err := io.WriteString(w, s)
	return err
}

// WriteTerm writes the integer into w.
func (i Integer) WriteTerm(w io.Writer, _ WriteTermOptions, _ *Env) error {
	_, err := io.WriteString(w, strconv.FormatInt(int64(i), 10))
	return err
}

// WriteTerm writes the float into w. The output always reads back as a float.
func (f Float) WriteTerm(w io.Writer, _ WriteTermOptions, _ *Env) error {
	s := strconv.FormatFloat(float64(f), 'g', -1, 64)
	if !strings.ContainsAny(s, ".nI") {
		if i := strings.IndexByte(s, 'e'); i >= 0 {
			s = s[:i] + ".0" + s[i:]
		} else {
			s += ".0"
		}
	}
	_, err := io.WriteString(w, s)
	return err
}

const graphicChars = `#$&*+-./:<=>?@^~\`

// bare reports whether s reads back as the same atom without quotes.
func bare(s string) bool {
	switch s {
	case "":
		return false
	case "[]", "!", ";", "{}":
		return true
	}

	if s[0] >= 'a' && s[0] <= 'z' {
		for i := 1; i < len(s); i++ {
			if !isWordByte(s[i]) {
				return false
			}
		}
		return true
	}

	for i := 0; i < len(s); i++ {
		if strings.IndexByte(graphicChars, s[i]) < 0 {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_':
		return true
	default:
		return false
	}
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\x`)
				sb.WriteString(strconv.FormatInt(int64(r), 16))
				sb.WriteByte('\\')
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
