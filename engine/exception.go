package engine

import (
	"strings"

	"github.com/ichiban/lambda/term"
)

// Exception is an error represented by a prolog term.
type Exception struct {
	term term.Interface
}

// NewException creates an Exception from a copy of the given term.
func NewException(t term.Interface, env *term.Env) *Exception {
	c, err := term.Copy(t, env)
	if err != nil {
		c = env.Simplify(t)
	}
	return &Exception{term: c}
}

// Term returns the underlying term of the exception.
func (e *Exception) Term() term.Interface {
	return e.term
}

func (e *Exception) Error() string {
	var sb strings.Builder
	_ = term.Write(&sb, e.term, term.DefaultWriteTermOptions, nil)
	return sb.String()
}

func errorTerm(formal, context term.Interface) term.Interface {
	return term.Atom("error").Apply(formal, context)
}

// InstantiationError creates a new instantiation error exception.
func InstantiationError(env *term.Env) *Exception {
	return NewException(errorTerm(term.Atom("instantiation_error"), term.NewVariable()), env)
}

// ValidType is the correct type for an argument or one of its components.
type ValidType uint8

// ValidType is one of these values.
const (
	ValidTypeAtom ValidType = iota
	ValidTypeAtomic
	ValidTypeCallable
	ValidTypeCompound
	ValidTypeEvaluable
	ValidTypeFloat
	ValidTypeInteger
	ValidTypeList
	ValidTypeNumber
	ValidTypePredicateIndicator
)

// Term returns an Atom for the ValidType.
func (t ValidType) Term() term.Interface {
	return [...]term.Atom{
		ValidTypeAtom:               "atom",
		ValidTypeAtomic:             "atomic",
		ValidTypeCallable:           "callable",
		ValidTypeCompound:           "compound",
		ValidTypeEvaluable:          "evaluable",
		ValidTypeFloat:              "float",
		ValidTypeInteger:            "integer",
		ValidTypeList:               "list",
		ValidTypeNumber:             "number",
		ValidTypePredicateIndicator: "predicate_indicator",
	}[t]
}

// TypeError creates a new type error exception.
func TypeError(validType ValidType, culprit term.Interface, env *term.Env) *Exception {
	return NewException(errorTerm(
		term.Atom("type_error").Apply(validType.Term(), culprit),
		term.NewVariable(),
	), env)
}

// ValidDomain is the domain which the procedure defines.
type ValidDomain uint8

// ValidDomain is one of these values.
const (
	ValidDomainFlagValue ValidDomain = iota
	ValidDomainNonEmptyList
	ValidDomainNotLessThanZero
	ValidDomainOperatorPriority
	ValidDomainOperatorSpecifier
	ValidDomainOrder
	ValidDomainPrologFlag
)

// Term returns an Atom for the ValidDomain.
func (vd ValidDomain) Term() term.Interface {
	return [...]term.Atom{
		ValidDomainFlagValue:         "flag_value",
		ValidDomainNonEmptyList:      "non_empty_list",
		ValidDomainNotLessThanZero:   "not_less_than_zero",
		ValidDomainOperatorPriority:  "operator_priority",
		ValidDomainOperatorSpecifier: "operator_specifier",
		ValidDomainOrder:             "order",
		ValidDomainPrologFlag:        "prolog_flag",
	}[vd]
}

// DomainError creates a new domain error exception.
func DomainError(validDomain ValidDomain, culprit term.Interface, env *term.Env) *Exception {
	return NewException(errorTerm(
		term.Atom("domain_error").Apply(validDomain.Term(), culprit),
		term.NewVariable(),
	), env)
}

// ExistenceErrorProcedure creates a new existence error exception for an unknown procedure.
func ExistenceErrorProcedure(pi term.Interface, env *term.Env) *Exception {
	return NewException(errorTerm(
		term.Atom("existence_error").Apply(term.Atom("procedure"), pi),
		pi,
	), env)
}

// Operation is the operation to be performed.
type Operation uint8

// Operation is one of these values.
const (
	OperationCreate Operation = iota
	OperationModify
)

// Term returns an Atom for the Operation.
func (o Operation) Term() term.Interface {
	return [...]term.Atom{
		OperationCreate: "create",
		OperationModify: "modify",
	}[o]
}

// PermissionType is the type to which the operation is not permitted to perform.
type PermissionType uint8

// PermissionType is one of these values.
const (
	PermissionTypeFlag PermissionType = iota
	PermissionTypeOperator
	PermissionTypeStaticProcedure
)

// Term returns an Atom for the PermissionType.
func (pt PermissionType) Term() term.Interface {
	return [...]term.Atom{
		PermissionTypeFlag:            "flag",
		PermissionTypeOperator:        "operator",
		PermissionTypeStaticProcedure: "static_procedure",
	}[pt]
}

// PermissionError creates a new permission error exception.
func PermissionError(operation Operation, permissionType PermissionType, culprit term.Interface, env *term.Env) *Exception {
	return NewException(errorTerm(
		term.Atom("permission_error").Apply(operation.Term(), permissionType.Term(), culprit),
		term.NewVariable(),
	), env)
}

// RepresentationError creates a new representation error exception.
func RepresentationError(limit term.Atom, env *term.Env) *Exception {
	return NewException(errorTerm(
		term.Atom("representation_error").Apply(limit),
		term.NewVariable(),
	), env)
}

// ExceptionalValue is an evaluable functor's result which is not a number.
type ExceptionalValue uint8

// ExceptionalValue is one of these values.
const (
	ExceptionalValueIntOverflow ExceptionalValue = iota
	ExceptionalValueUndefined
	ExceptionalValueZeroDivisor
)

func (ev ExceptionalValue) Error() string {
	return ev.Term().String()
}

// Term returns an Atom for the ExceptionalValue.
func (ev ExceptionalValue) Term() term.Interface {
	return [...]term.Atom{
		ExceptionalValueIntOverflow: "int_overflow",
		ExceptionalValueUndefined:   "undefined",
		ExceptionalValueZeroDivisor: "zero_divisor",
	}[ev]
}

// EvaluationError creates a new evaluation error exception.
func EvaluationError(ev ExceptionalValue, env *term.Env) *Exception {
	return NewException(errorTerm(
		term.Atom("evaluation_error").Apply(ev.Term()),
		term.NewVariable(),
	), env)
}

// SyntaxError creates a new syntax error exception.
func SyntaxError(err error, env *term.Env) *Exception {
	return NewException(errorTerm(
		term.Atom("syntax_error").Apply(term.Atom(err.Error())),
		term.NewVariable(),
	), env)
}

// SystemError creates a new system error exception.
func SystemError(err error) *Exception {
	return NewException(errorTerm(
		term.Atom("system_error"),
		term.Atom(err.Error()),
	), nil)
}

// ScopeError creates a new scope error exception. It is raised when the variables of a lambda can't be split into
// global and local ones consistently.
func ScopeError(lambda, culprit term.Interface, env *term.Env) *Exception {
	return NewException(errorTerm(
		term.Atom("scope_error").Apply(term.Atom("lambda"), lambda),
		culprit,
	), env)
}
