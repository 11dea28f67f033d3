package model

import (
	"time"

	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

// Installment is one scheduled obligation within a loan's repayment plan.
// It is owned exclusively by its loan and never mutated outside of it.
type Installment struct {
	Number   int
	DueDate  time.Time
	Capital  money.Money
	Interest money.Money
	Paid     money.Money
	PaidAt   *time.Time
	Status   valueobject.InstallmentStatus
}

// Total returns the scheduled amount, capital plus interest. Penalty is
// additive at the loan level and never folded into the schedule.
func (i Installment) Total() money.Money {
	return i.Capital.MustAdd(i.Interest)
}

// Outstanding returns the unpaid portion of the scheduled amount.
func (i Installment) Outstanding() money.Money {
	return i.Total().MustSubtract(i.Paid)
}

// InterestOutstanding returns the unpaid interest portion. Funds applied to
// an installment cover interest before capital.
func (i Installment) InterestOutstanding() money.Money {
	return i.Interest.MustSubtract(i.Interest.Min(i.Paid))
}

func copyInstallments(in []Installment) []Installment {
	if in == nil {
		return nil
	}
	out := make([]Installment, len(in))
	copy(out, in)
	return out
}
