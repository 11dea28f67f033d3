package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/valueobject"
)

// LoanType is the per-company product template a loan is opened under. It
// fixes the amortization policy, the penalty regime and the overpayment
// policy for every loan of that product.
type LoanType struct {
	id                    string
	companyID             string
	name                  string
	periodicity           valueobject.Periodicity
	ratePercent           decimal.Decimal
	amortization          valueobject.AmortizationPolicy
	penaltyPolicy         valueobject.PenaltyPolicy
	overpayment           valueobject.OverpaymentPolicy
	suggestedInstallments int
	createdAt             time.Time
}

// NewLoanType defines a loan product for a company. suggestedInstallments
// is the default schedule length for loans opened without an explicit count.
func NewLoanType(
	companyID, name string,
	periodicity valueobject.Periodicity,
	ratePercent decimal.Decimal,
	amortization valueobject.AmortizationPolicy,
	penaltyPolicy valueobject.PenaltyPolicy,
	overpayment valueobject.OverpaymentPolicy,
	suggestedInstallments int,
	now time.Time,
) (LoanType, error) {
	if companyID == "" {
		return LoanType{}, fault.Validation("company ID is required")
	}
	if name == "" {
		return LoanType{}, fault.Validation("loan type name is required")
	}
	if periodicity.IsZero() {
		return LoanType{}, fault.Validation("periodicity is required")
	}
	if ratePercent.IsNegative() {
		return LoanType{}, fault.Validation("rate must be non-negative")
	}
	if amortization.IsZero() {
		return LoanType{}, fault.Validation("amortization policy is required")
	}
	if overpayment.IsZero() {
		return LoanType{}, fault.Validation("overpayment policy is required")
	}
	if err := penaltyPolicy.Validate(); err != nil {
		return LoanType{}, fault.Wrap(fault.KindValidation, err, "penalty policy")
	}
	if suggestedInstallments < 1 {
		return LoanType{}, fault.Validation("suggested installments must be at least 1")
	}

	return LoanType{
		id:                    uuid.New().String(),
		companyID:             companyID,
		name:                  name,
		periodicity:           periodicity,
		ratePercent:           ratePercent,
		amortization:          amortization,
		penaltyPolicy:         penaltyPolicy,
		overpayment:           overpayment,
		suggestedInstallments: suggestedInstallments,
		createdAt:             now,
	}, nil
}

// ReconstructLoanType rebuilds a LoanType from persistence.
func ReconstructLoanType(
	id, companyID, name string,
	periodicity valueobject.Periodicity,
	ratePercent decimal.Decimal,
	amortization valueobject.AmortizationPolicy,
	penaltyPolicy valueobject.PenaltyPolicy,
	overpayment valueobject.OverpaymentPolicy,
	suggestedInstallments int,
	createdAt time.Time,
) LoanType {
	return LoanType{
		id:                    id,
		companyID:             companyID,
		name:                  name,
		periodicity:           periodicity,
		ratePercent:           ratePercent,
		amortization:          amortization,
		penaltyPolicy:         penaltyPolicy,
		overpayment:           overpayment,
		suggestedInstallments: suggestedInstallments,
		createdAt:             createdAt,
	}
}

func (t LoanType) ID() string                                       { return t.id }
func (t LoanType) CompanyID() string                                { return t.companyID }
func (t LoanType) Name() string                                     { return t.name }
func (t LoanType) Periodicity() valueobject.Periodicity             { return t.periodicity }
func (t LoanType) RatePercent() decimal.Decimal                     { return t.ratePercent }
func (t LoanType) Amortization() valueobject.AmortizationPolicy     { return t.amortization }
func (t LoanType) PenaltyPolicy() valueobject.PenaltyPolicy         { return t.penaltyPolicy }
func (t LoanType) OverpaymentPolicy() valueobject.OverpaymentPolicy { return t.overpayment }
func (t LoanType) SuggestedInstallments() int                       { return t.suggestedInstallments }
func (t LoanType) CreatedAt() time.Time                             { return t.createdAt }
