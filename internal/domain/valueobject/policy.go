package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/witalo/prestoras/pkg/money"
)

// ---------------------------------------------------------------------------
// AmortizationPolicy – how interest is spread across installments
// ---------------------------------------------------------------------------

// AmortizationPolicy selects how interest is computed per installment.
type AmortizationPolicy struct {
	value string
}

const (
	amortizationFlat      = "FLAT"
	amortizationDeclining = "DECLINING"
)

var (
	// AmortizationFlat charges principal × rate once, split evenly.
	AmortizationFlat = AmortizationPolicy{value: amortizationFlat}
	// AmortizationDeclining charges the periodic rate on the capital
	// outstanding at each period start.
	AmortizationDeclining = AmortizationPolicy{value: amortizationDeclining}
)

var validAmortizationPolicies = map[string]AmortizationPolicy{
	amortizationFlat:      AmortizationFlat,
	amortizationDeclining: AmortizationDeclining,
}

// NewAmortizationPolicy creates an AmortizationPolicy from a raw string.
func NewAmortizationPolicy(s string) (AmortizationPolicy, error) {
	v, ok := validAmortizationPolicies[s]
	if !ok {
		return AmortizationPolicy{}, fmt.Errorf("invalid amortization policy: %q", s)
	}
	return v, nil
}

// String returns the string representation of the policy.
func (p AmortizationPolicy) String() string { return p.value }

// IsZero returns true if the policy has not been initialised.
func (p AmortizationPolicy) IsZero() bool { return p.value == "" }

// Equal returns true when both policies carry the same value.
func (p AmortizationPolicy) Equal(other AmortizationPolicy) bool { return p.value == other.value }

// ---------------------------------------------------------------------------
// OverpaymentPolicy – what happens to funds beyond everything owed
// ---------------------------------------------------------------------------

// OverpaymentPolicy selects how a remainder beyond the total owed is handled.
type OverpaymentPolicy struct {
	value string
}

const (
	overpaymentStrict  = "STRICT"
	overpaymentAllowed = "ALLOWED"
)

var (
	// OverpaymentStrict rejects any payment exceeding the amount owed.
	OverpaymentStrict = OverpaymentPolicy{value: overpaymentStrict}
	// OverpaymentAllowed credits the excess as an advance on the loan.
	OverpaymentAllowed = OverpaymentPolicy{value: overpaymentAllowed}
)

var validOverpaymentPolicies = map[string]OverpaymentPolicy{
	overpaymentStrict:  OverpaymentStrict,
	overpaymentAllowed: OverpaymentAllowed,
}

// NewOverpaymentPolicy creates an OverpaymentPolicy from a raw string.
func NewOverpaymentPolicy(s string) (OverpaymentPolicy, error) {
	v, ok := validOverpaymentPolicies[s]
	if !ok {
		return OverpaymentPolicy{}, fmt.Errorf("invalid overpayment policy: %q", s)
	}
	return v, nil
}

// String returns the string representation of the policy.
func (p OverpaymentPolicy) String() string { return p.value }

// IsZero returns true if the policy has not been initialised.
func (p OverpaymentPolicy) IsZero() bool { return p.value == "" }

// Equal returns true when both policies carry the same value.
func (p OverpaymentPolicy) Equal(other OverpaymentPolicy) bool { return p.value == other.value }

// ---------------------------------------------------------------------------
// PenaltyPolicy – late-payment penalty regime
// ---------------------------------------------------------------------------

// PenaltyType selects the penalty regime for a loan.
type PenaltyType struct {
	value string
}

const (
	penaltyNone       = "NONE"
	penaltyFixed      = "FIXED"
	penaltyPercentage = "PERCENTAGE"
)

var (
	PenaltyNone       = PenaltyType{value: penaltyNone}
	PenaltyFixed      = PenaltyType{value: penaltyFixed}
	PenaltyPercentage = PenaltyType{value: penaltyPercentage}
)

var validPenaltyTypes = map[string]PenaltyType{
	penaltyNone:       PenaltyNone,
	penaltyFixed:      PenaltyFixed,
	penaltyPercentage: PenaltyPercentage,
}

// NewPenaltyType creates a PenaltyType from a raw string.
func NewPenaltyType(s string) (PenaltyType, error) {
	v, ok := validPenaltyTypes[s]
	if !ok {
		return PenaltyType{}, fmt.Errorf("invalid penalty type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the type.
func (p PenaltyType) String() string { return p.value }

// IsZero returns true if the type has not been initialised.
func (p PenaltyType) IsZero() bool { return p.value == "" }

// Equal returns true when both types carry the same value.
func (p PenaltyType) Equal(other PenaltyType) bool { return p.value == other.value }

// PenaltyPolicy is a loan's penalty configuration: a regime plus its
// parameter. FIXED charges Amount per overdue period; PERCENTAGE charges
// Rate percent of the outstanding balance per overdue period.
type PenaltyPolicy struct {
	Type   PenaltyType
	Amount money.Money     // flat charge per overdue period (FIXED)
	Rate   decimal.Decimal // percent per overdue period (PERCENTAGE)
}

// NoPenalty returns a policy that never accrues.
func NoPenalty(currency money.Currency) PenaltyPolicy {
	return PenaltyPolicy{Type: PenaltyNone, Amount: money.Zero(currency)}
}

// Validate checks the regime parameter is present and non-negative.
func (p PenaltyPolicy) Validate() error {
	switch p.Type {
	case PenaltyNone:
		return nil
	case PenaltyFixed:
		if !p.Amount.IsPositive() {
			return fmt.Errorf("fixed penalty requires a positive amount")
		}
		return nil
	case PenaltyPercentage:
		if !p.Rate.IsPositive() {
			return fmt.Errorf("percentage penalty requires a positive rate")
		}
		return nil
	default:
		return fmt.Errorf("invalid penalty type: %q", p.Type.String())
	}
}

// Accrue returns the penalty accrued on an outstanding balance over the
// given number of whole overdue periods.
func (p PenaltyPolicy) Accrue(outstanding money.Money, periods int) money.Money {
	if periods <= 0 {
		return money.Zero(outstanding.Currency())
	}
	n := decimal.NewFromInt(int64(periods))
	switch p.Type {
	case PenaltyFixed:
		return p.Amount.MulRate(n)
	case PenaltyPercentage:
		perPeriod := p.Rate.Div(decimal.NewFromInt(100))
		return outstanding.MulRate(perPeriod.Mul(n))
	default:
		return money.Zero(outstanding.Currency())
	}
}
