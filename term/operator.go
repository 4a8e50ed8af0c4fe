package term

import "sort"

// Operators are a list of operators sorted in a descending order of precedence.
type Operators []Operator

// Operator is an operator definition.
type Operator struct {
	Priority  Integer // 1 ~ 1200
	Specifier Atom    // xf, yf, xfx, xfy, yfx, fx, or fy
	Name      Atom
}

// Class returns the operator class: prefix, infix, or postfix.
func (o Operator) Class() Atom {
	switch o.Specifier {
	case "fx", "fy":
		return "prefix"
	case "xf", "yf":
		return "postfix"
	default:
		return "infix"
	}
}

// DefaultOperators returns the standard operator table.
func DefaultOperators() Operators {
	return Operators{
		{Priority: 1200, Specifier: "xfx", Name: ":-"},
		{Priority: 1200, Specifier: "xfx", Name: "-->"},
		{Priority: 1200, Specifier: "fx", Name: ":-"},
		{Priority: 1200, Specifier: "fx", Name: "?-"},
		{Priority: 1150, Specifier: "fx", Name: "dynamic"},
		{Priority: 1150, Specifier: "fx", Name: "discontiguous"},
		{Priority: 1150, Specifier: "fx", Name: "initialization"},
		{Priority: 1100, Specifier: "xfy", Name: ";"},
		{Priority: 1050, Specifier: "xfy", Name: "->"},
		{Priority: 1000, Specifier: "xfy", Name: ","},
		{Priority: 900, Specifier: "fy", Name: `\+`},
		{Priority: 700, Specifier: "xfx", Name: "="},
		{Priority: 700, Specifier: "xfx", Name: `\=`},
		{Priority: 700, Specifier: "xfx", Name: "=="},
		{Priority: 700, Specifier: "xfx", Name: `\==`},
		{Priority: 700, Specifier: "xfx", Name: "@<"},
		{Priority: 700, Specifier: "xfx", Name: "@>"},
		{Priority: 700, Specifier: "xfx", Name: "@=<"},
		{Priority: 700, Specifier: "xfx", Name: "@>="},
		{Priority: 700, Specifier: "xfx", Name: "=.."},
		{Priority: 700, Specifier: "xfx", Name: "is"},
		{Priority: 700, Specifier: "xfx", Name: "=:="},
		{Priority: 700, Specifier: "xfx", Name: `=\=`},
		{Priority: 700, Specifier: "xfx", Name: "<"},
		{Priority: 700, Specifier: "xfx", Name: ">"},
		{Priority: 700, Specifier: "xfx", Name: "=<"},
		{Priority: 700, Specifier: "xfx", Name: ">="},
		{Priority: 600, Specifier: "xfy", Name: ":"},
		{Priority: 500, Specifier: "yfx", Name: "+"},
		{Priority: 500, Specifier: "yfx", Name: "-"},
		{Priority: 500, Specifier: "yfx", Name: `/\`},
		{Priority: 500, Specifier: "yfx", Name: `\/`},
		{Priority: 400, Specifier: "yfx", Name: "*"},
		{Priority: 400, Specifier: "yfx", Name: "/"},
		{Priority: 400, Specifier: "yfx", Name: "//"},
		{Priority: 400, Specifier: "yfx", Name: "rem"},
		{Priority: 400, Specifier: "yfx", Name: "mod"},
		{Priority: 400, Specifier: "yfx", Name: "<<"},
		{Priority: 400, Specifier: "yfx", Name: ">>"},
		{Priority: 200, Specifier: "xfx", Name: "**"},
		{Priority: 200, Specifier: "xfy", Name: "^"},
		{Priority: 200, Specifier: "fy", Name: "-"},
		{Priority: 200, Specifier: "fy", Name: "+"},
		{Priority: 200, Specifier: "fy", Name: `\`},
	}
}

// Define adds or replaces an operator. Priority 0 removes the operator.
// An infix and a postfix operator of the same name exclude each other.
func (os *Operators) Define(priority Integer, specifier, name Atom) {
	op := Operator{Priority: priority, Specifier: specifier, Name: name}
	class := op.Class()
	ops := (*os)[:0:0]
	for _, o := range *os {
		if o.Name != name {
			ops = append(ops, o)
			continue
		}
		switch oc := o.Class(); {
		case oc == class:
		case oc != "prefix" && class != "prefix":
		default:
			ops = append(ops, o)
		}
	}
	if priority > 0 {
		ops = append(ops, op)
	}
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].Priority > ops[j].Priority
	})
	*os = ops
}

func (os Operators) find(name, class Atom) (Operator, bool) {
	for _, o := range os {
		if o.Name == name && o.Class() == class {
			return o, true
		}
	}
	return Operator{}, false
}

func (os Operators) prefix(name Atom) (Operator, bool) {
	return os.find(name, "prefix")
}

func (os Operators) infix(name Atom) (Operator, bool) {
	return os.find(name, "infix")
}

func (os Operators) postfix(name Atom) (Operator, bool) {
	return os.find(name, "postfix")
}

func (os Operators) isOperator(name Atom) bool {
	for _, o := range os {
		if o.Name == name {
			return true
		}
	}
	return false
}
