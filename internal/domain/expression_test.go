package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2 * 5", "10"},
		{"1/4 * 1/2", "1/8"},
		{"2 / 5", "2/5"},
		{"1/2 + 1/4", "3/4"},
		{"1/2 - 1/6", "1/3"},
		{"1/2 * 3_3/4", "1_7/8"},
		{"2_3/8 + 9/8", "3_1/2"},
		{"1/2      *    3_3/4", "1_7/8"},
		{"  1/2 + 1/2  ", "1"},
		{"1/4 - 1/2", "-1/4"},
		{"-1_1/4 * 2", "-2_1/2"},
		{"1/2 / -1/3", "-1_1/2"},
		{"0 / 7", "0"},
		{"1/2 - 1/2", "0"},
		{"1/2\t+\t1/4", "3/4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Evaluate(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
		contains string
	}{
		{name: "unknown operator", input: "1/2 % 1/4", sentinel: ErrUnknownOperator, contains: `"%"`},
		{name: "word operator", input: "1 plus 2", sentinel: ErrUnknownOperator, contains: "plus"},
		{name: "divide by zero", input: "1/2 / 0", sentinel: ErrDivideByZero, contains: "divide by zero"},
		{name: "divide by zero fraction", input: "3 / 0/4", sentinel: ErrDivideByZero, contains: "divide by zero"},
		{name: "bad left operand", input: "x + 1", sentinel: ErrParse, contains: `"x"`},
		{name: "bad right operand", input: "1 + 2/z", sentinel: ErrParse, contains: `"2/z"`},
		{name: "too few tokens", input: "1/2 +", sentinel: ErrParse, contains: "expression"},
		{name: "too many tokens", input: "1 + 2 + 3", sentinel: ErrParse, contains: "expression"},
		{name: "empty line", input: "", sentinel: ErrParse, contains: "expression"},
		{name: "missing spaces", input: "1+2", sentinel: ErrParse, contains: "expression"},
		{name: "operands parsed before operator", input: "1/2 % x", sentinel: ErrParse, contains: `"x"`},
		{name: "denominator overflow", input: "1/4294967296 * 1/4294967296", sentinel: ErrOverflow, contains: "out of range"},
		{name: "sum denominator overflow", input: "1/4294967296 + 1/4294967296", sentinel: ErrOverflow, contains: "out of range"},
		{name: "quotient denominator overflow", input: "1/4294967296 / 4294967296", sentinel: ErrOverflow, contains: "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.input)

			require.Error(t, err)
			assert.Empty(t, got)
			require.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.contains)
			assert.True(t, IsCalculation(err))
		})
	}
}

func TestEvaluate_OverflowCarriesOperands(t *testing.T) {
	line := "1/4294967296 * 1/4294967296"

	var err error

	require.NotPanics(t, func() { _, err = Evaluate(line) })

	var overflow *OverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, OpMultiply, overflow.Operator)
	assert.Equal(t, Fraction{1, 4294967296}, overflow.Left)
	assert.Equal(t, "result of 1/4294967296 * 1/4294967296 is out of range", err.Error())
}

func TestEvaluate_UnknownOperatorCarriesSymbol(t *testing.T) {
	_, err := Evaluate("1/2 % 1/4")

	var opErr *UnknownOperatorError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "%", opErr.Symbol)
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		symbol   string
		expected Operator
	}{
		{"+", OpAdd},
		{"-", OpSubtract},
		{"*", OpMultiply},
		{"/", OpDivide},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			op, err := ParseOperator(tt.symbol)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, op)
			assert.Equal(t, tt.symbol, op.String())
		})
	}

	_, err := ParseOperator("x")
	require.ErrorIs(t, err, ErrUnknownOperator)
}

func TestOperator_ApplyInvalid(t *testing.T) {
	_, err := Operator(0).Apply(Whole(1), Whole(2))

	require.ErrorIs(t, err, ErrUnknownOperator)
	assert.Equal(t, "?", Operator(0).String())
}

func TestParseExpression(t *testing.T) {
	expr, err := ParseExpression("2_3/8   +  9/8")

	require.NoError(t, err)
	assert.Equal(t, Expression{Left: Fraction{19, 8}, Operator: OpAdd, Right: Fraction{9, 8}}, expr)
	assert.Equal(t, "2_3/8 + 1_1/8", expr.String())

	unreduced, err := expr.Apply()
	require.NoError(t, err)
	assert.Equal(t, Fraction{19*8 + 9*8, 64}, unreduced)

	reduced, err := expr.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, Fraction{7, 2}, reduced)
}

func TestEvaluate_ConcurrentCallsAreIndependent(t *testing.T) {
	inputs := map[string]string{
		"1/2 + 1/4":   "3/4",
		"2 * 5":       "10",
		"1/2 * 3_3/4": "1_7/8",
		"1/2 - 1/6":   "1/3",
	}

	var wg sync.WaitGroup

	for range 10 {
		for in, want := range inputs {
			wg.Go(func() {
				got, err := Evaluate(in)
				assert.NoError(t, err)
				assert.Equal(t, want, got)
			})
		}
	}

	wg.Wait()
}
