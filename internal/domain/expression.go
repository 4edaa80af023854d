package domain

import (
	"errors"
	"strings"
)

// expressionTokens is the token count of "operand operator operand".
const expressionTokens = 3

// Operator is one of the four arithmetic operations.
type Operator int

// Supported operators.
const (
	OpAdd Operator = iota + 1
	OpSubtract
	OpMultiply
	OpDivide
)

var operatorSymbols = map[Operator]string{
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
}

// ParseOperator maps a symbol to its Operator.
// Anything other than + - * / fails with an *UnknownOperatorError.
func ParseOperator(symbol string) (Operator, error) {
	for op, s := range operatorSymbols {
		if s == symbol {
			return op, nil
		}
	}

	return 0, NewUnknownOperatorError(symbol)
}

// String returns the operator symbol.
func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}

	return "?"
}

// Apply computes a op b without reducing the result. A denominator that
// wraps to zero fails with an *OverflowError.
func (o Operator) Apply(a, b Fraction) (Fraction, error) {
	var (
		result Fraction
		err    error
	)

	switch o {
	case OpAdd:
		result = a.Add(b)
	case OpSubtract:
		result = a.Sub(b)
	case OpMultiply:
		result = a.Mul(b)
	case OpDivide:
		result, err = a.Div(b)
	default:
		return Fraction{}, NewUnknownOperatorError(o.String())
	}

	if err != nil {
		return Fraction{}, err
	}

	if result.Denominator == 0 {
		return Fraction{}, &OverflowError{Operator: o, Left: a, Right: b}
	}

	return result, nil
}

// Expression is a parsed "operand operator operand" line.
type Expression struct {
	Left     Fraction
	Operator Operator
	Right    Fraction
}

// ParseExpression splits line on runs of whitespace and parses the three
// tokens. Leading and trailing whitespace is ignored. Both operands are
// parsed before the operator.
func ParseExpression(line string) (Expression, error) {
	tokens := strings.Fields(line)
	if len(tokens) != expressionTokens {
		return Expression{}, NewParseError(line, "expression",
			errors.New("expected operand, operator and operand separated by spaces"))
	}

	left, err := ParseFraction(tokens[0])
	if err != nil {
		return Expression{}, err
	}

	right, err := ParseFraction(tokens[2])
	if err != nil {
		return Expression{}, err
	}

	op, err := ParseOperator(tokens[1])
	if err != nil {
		return Expression{}, err
	}

	return Expression{Left: left, Operator: op, Right: right}, nil
}

// Apply computes the unreduced result.
func (e Expression) Apply() (Fraction, error) {
	return e.Operator.Apply(e.Left, e.Right)
}

// Evaluate computes the reduced result.
func (e Expression) Evaluate() (Fraction, error) {
	result, err := e.Apply()
	if err != nil {
		return Fraction{}, err
	}

	return result.Reduce(), nil
}

// String renders the expression in canonical form.
func (e Expression) String() string {
	return e.Left.String() + " " + e.Operator.String() + " " + e.Right.String()
}

// Evaluate parses and computes one line, returning the canonical result text.
// Errors are a *ParseError, *DivisionError, *UnknownOperatorError or
// *OverflowError.
func Evaluate(line string) (string, error) {
	expr, err := ParseExpression(line)
	if err != nil {
		return "", err
	}

	result, err := expr.Evaluate()
	if err != nil {
		return "", err
	}

	return result.String(), nil
}
