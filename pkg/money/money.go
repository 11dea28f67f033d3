package money

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Scale is the minor-unit scale for all monetary amounts (cents).
const Scale = 2

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string {
	return c.code
}

// String returns the currency code.
func (c Currency) String() string {
	return c.code
}

// Common currencies.
var (
	PEN = MustCurrency("PEN")
	USD = MustCurrency("USD")
)

// Money is an immutable monetary amount with a currency, quantized to the
// minor-unit scale. No binary floating point ever crosses this boundary.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates a Money value from a decimal amount and currency. Amounts with
// more fractional digits than the minor-unit scale are rounded half-up.
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount.Round(Scale), currency: currency}
}

// NewFromString parses an amount string and currency code into a Money value.
func NewFromString(amount string, currency string) (Money, error) {
	cur, err := NewCurrency(currency)
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return New(d, cur), nil
}

// FromCents creates a Money value from an integral number of minor units.
func FromCents(cents int64, currency Currency) Money {
	return Money{amount: decimal.New(cents, -Scale), currency: currency}
}

// Zero returns a Money value of zero in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Cents returns the amount as an integral number of minor units.
func (m Money) Cents() int64 {
	return m.amount.Shift(Scale).IntPart()
}

// Currency returns the currency.
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of m and other. Returns an error if the currencies do not match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference of m minus other. Returns an error if the currencies do not match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MustAdd is Add for same-currency arithmetic inside an aggregate, where a
// currency mismatch is a programming error.
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// MustSubtract is Subtract for same-currency arithmetic inside an aggregate.
func (m Money) MustSubtract(other Money) Money {
	diff, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return diff
}

// MulRate multiplies by a rate and rounds half-up to the minor-unit scale.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(rate).Round(Scale), currency: m.currency}
}

// SplitEven divides m into n parts. The first n-1 parts are the truncated even
// share; the final part absorbs the remainder so the parts sum exactly to m.
func (m Money) SplitEven(n int) ([]Money, error) {
	if n < 1 {
		return nil, fmt.Errorf("cannot split into %d parts", n)
	}
	base := m.amount.Div(decimal.NewFromInt(int64(n))).Truncate(Scale)
	parts := make([]Money, n)
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = Money{amount: base, currency: m.currency}
		running = running.Add(base)
	}
	parts[n-1] = Money{amount: m.amount.Sub(running), currency: m.currency}
	return parts, nil
}

// Min returns the smaller of m and other, which must share a currency.
func (m Money) Min(other Money) Money {
	if m.amount.LessThan(other.amount) {
		return m
	}
	return other
}

// LessThan reports whether m is strictly less than other.
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan reports whether m is strictly greater than other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Equal returns true if both the amount and currency of m and other are equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the Money value as "<amount> <currency>", for example "100.00 PEN".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(Scale), m.currency.Code())
}
