package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

var oneHundred = decimal.NewFromInt(100)

// GenerateSchedule builds the ordered installment plan for a loan.
//
// Capital is split evenly across the installments with the division
// remainder assigned to the last one, so the capital portions always sum
// exactly to the principal. Interest depends on the amortization policy:
//
//   - FLAT: principal × rate/100 charged once and split evenly.
//   - DECLINING: rate/100 charged each period on the capital still
//     outstanding at that period's start.
//
// Due dates are start date plus 1..N periodicity steps. Monthly steps
// preserve the day of month, clamping to the end of shorter months.
func GenerateSchedule(
	principal money.Money,
	ratePercent decimal.Decimal,
	periodicity valueobject.Periodicity,
	count int,
	amortization valueobject.AmortizationPolicy,
	startDate time.Time,
) ([]Installment, error) {
	if !principal.IsPositive() {
		return nil, fault.Validation("principal must be positive, got %s", principal)
	}
	if ratePercent.IsNegative() {
		return nil, fault.Validation("rate must be non-negative, got %s", ratePercent)
	}
	if count < 1 {
		return nil, fault.Validation("installment count must be at least 1, got %d", count)
	}
	if periodicity.IsZero() {
		return nil, fault.Validation("periodicity is required")
	}
	if amortization.IsZero() {
		return nil, fault.Validation("amortization policy is required")
	}
	if startDate.IsZero() {
		return nil, fault.Validation("start date is required")
	}

	capitalParts, err := principal.SplitEven(count)
	if err != nil {
		return nil, fault.Wrap(fault.KindValidation, err, "split capital")
	}

	rate := ratePercent.Div(oneHundred)

	var interestParts []money.Money
	switch amortization {
	case valueobject.AmortizationFlat:
		interestParts, err = principal.MulRate(rate).SplitEven(count)
		if err != nil {
			return nil, fault.Wrap(fault.KindValidation, err, "split interest")
		}
	case valueobject.AmortizationDeclining:
		interestParts = make([]money.Money, count)
		outstanding := principal
		for i := 0; i < count; i++ {
			interestParts[i] = outstanding.MulRate(rate)
			outstanding = outstanding.MustSubtract(capitalParts[i])
		}
	default:
		return nil, fault.Validation("unsupported amortization policy: %s", amortization)
	}

	schedule := make([]Installment, count)
	for i := 0; i < count; i++ {
		schedule[i] = Installment{
			Number:   i + 1,
			DueDate:  periodicity.AddTo(startDate, i+1),
			Capital:  capitalParts[i],
			Interest: interestParts[i],
			Paid:     money.Zero(principal.Currency()),
			Status:   valueobject.InstallmentStatusPending,
		}
	}
	return schedule, nil
}
