package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	wholeMarker    = "_"
	fractionMarker = "/"
)

var errZeroDenominator = errors.New("zero denominator")

// Fraction is an exact rational value numerator/denominator.
// It is a value type: every operation returns a new Fraction.
//
// Values produced by ParseFraction or Operator.Apply, and their reductions,
// never have a zero denominator.
// Arithmetic results are unreduced and may carry a negative denominator;
// call Reduce before comparing or displaying them.
type Fraction struct {
	Numerator   int64
	Denominator int64
}

// NewFraction returns numerator/denominator without reducing it.
func NewFraction(numerator, denominator int64) Fraction {
	return Fraction{Numerator: numerator, Denominator: denominator}
}

// Whole returns n/1.
func Whole(n int64) Fraction {
	return Fraction{Numerator: n, Denominator: 1}
}

// ParseFraction parses a plain integer ("7"), a simple fraction ("-1/4")
// or a mixed number ("2_3/8").
//
// The sign of a mixed number belongs to the whole part: "-1_1/4" is -5/4.
func ParseFraction(token string) (Fraction, error) {
	hasWhole := strings.Contains(token, wholeMarker)
	hasFraction := strings.Contains(token, fractionMarker)

	if !hasWhole && !hasFraction {
		n, err := parseInt(token, token, "integer")
		if err != nil {
			return Fraction{}, err
		}

		return Whole(n), nil
	}

	wholeText, fractionText := "", token
	if hasWhole {
		wholeText, fractionText, _ = strings.Cut(token, wholeMarker)
	}

	if !hasFraction {
		return Fraction{}, NewParseError(token, "fraction", errors.New("missing "+fractionMarker))
	}

	numText, denText, _ := strings.Cut(fractionText, fractionMarker)

	num, err := parseInt(token, numText, "numerator")
	if err != nil {
		return Fraction{}, err
	}

	den, err := parseInt(token, denText, "denominator")
	if err != nil {
		return Fraction{}, err
	}

	if den == 0 {
		return Fraction{}, NewParseError(token, "denominator", errZeroDenominator)
	}

	if !hasWhole {
		return Fraction{Numerator: num, Denominator: den}, nil
	}

	whole, err := parseInt(token, wholeText, "whole")
	if err != nil {
		return Fraction{}, err
	}

	// "-0_1/2" has no negative integer to inspect, so look at the text.
	if strings.HasPrefix(wholeText, "-") {
		num = -num
	}

	return Fraction{Numerator: whole*den + num, Denominator: den}, nil
}

// MustParseFraction is like ParseFraction but panics on error.
// Intended for tests and constants.
func MustParseFraction(token string) Fraction {
	f, err := ParseFraction(token)
	if err != nil {
		panic(err)
	}

	return f
}

func parseInt(token, text, part string) (int64, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, NewParseError(token, part, err)
	}

	// MinInt64 has no positive counterpart, so it could not be formatted back.
	if n == math.MinInt64 {
		return 0, NewParseError(token, part, &strconv.NumError{Func: "ParseInt", Num: text, Err: strconv.ErrRange})
	}

	return n, nil
}

// Add returns f + g, unreduced.
func (f Fraction) Add(g Fraction) Fraction {
	return Fraction{
		Numerator:   f.Numerator*g.Denominator + g.Numerator*f.Denominator,
		Denominator: f.Denominator * g.Denominator,
	}
}

// Sub returns f - g, unreduced.
func (f Fraction) Sub(g Fraction) Fraction {
	return Fraction{
		Numerator:   f.Numerator*g.Denominator - g.Numerator*f.Denominator,
		Denominator: f.Denominator * g.Denominator,
	}
}

// Mul returns f * g, unreduced.
func (f Fraction) Mul(g Fraction) Fraction {
	return Fraction{
		Numerator:   f.Numerator * g.Numerator,
		Denominator: f.Denominator * g.Denominator,
	}
}

// Div returns f / g, unreduced. It fails with a *DivisionError when g has a
// zero numerator, before any zero-denominator value is built.
func (f Fraction) Div(g Fraction) (Fraction, error) {
	if g.Numerator == 0 {
		return Fraction{}, &DivisionError{Dividend: f}
	}

	return Fraction{
		Numerator:   f.Numerator * g.Denominator,
		Denominator: f.Denominator * g.Numerator,
	}, nil
}

// Reduce returns f in lowest terms with a positive denominator.
// Reduce is idempotent.
func (f Fraction) Reduce() Fraction {
	num, den := f.normalizeSign()

	divisor := gcd(abs(num), den)
	if divisor == 0 {
		return f
	}

	return Fraction{Numerator: num / divisor, Denominator: den / divisor}
}

// IsZero reports whether f equals zero.
func (f Fraction) IsZero() bool {
	return f.Numerator == 0
}

// String renders f as an integer, simple fraction or mixed number.
// The result parses back to the same value. A zero denominator renders as
// "n/0".
func (f Fraction) String() string {
	num, den := f.normalizeSign()

	negative := num < 0
	num = abs(num)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}

	switch {
	case den == 1:
		b.WriteString(strconv.FormatInt(num, 10))
	case den != 0 && num > den:
		whole := num / den
		b.WriteString(strconv.FormatInt(whole, 10))
		b.WriteString(wholeMarker)
		b.WriteString(strconv.FormatInt(num-whole*den, 10))
		b.WriteString(fractionMarker)
		b.WriteString(strconv.FormatInt(den, 10))
	default:
		b.WriteString(strconv.FormatInt(num, 10))
		b.WriteString(fractionMarker)
		b.WriteString(strconv.FormatInt(den, 10))
	}

	return b.String()
}

// Decimal returns f rounded to places decimal digits.
func (f Fraction) Decimal(places int32) decimal.Decimal {
	num, den := f.normalizeSign()
	if den == 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(num).DivRound(decimal.NewFromInt(den), places)
}

// normalizeSign moves a negative denominator's sign onto the numerator.
func (f Fraction) normalizeSign() (num, den int64) {
	if f.Denominator < 0 {
		return -f.Numerator, -f.Denominator
	}

	return f.Numerator, f.Denominator
}

// gcd is Euclid's algorithm. Both arguments must be non-negative;
// Go's % takes the sign of the dividend.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
