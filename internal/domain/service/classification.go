// Package service holds stateless domain services that operate across
// aggregates.
package service

import (
	"time"

	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/valueobject"
)

// Classifier derives a client's risk classification from their full loan
// portfolio. It is a pure function of the loans passed in; the caller
// persists the result onto the Client aggregate.
type Classifier struct {
	// SeverelyDelinquentLoanCount is the number of concurrently
	// DEFAULTING loans that makes a client severely delinquent.
	SeverelyDelinquentLoanCount int
	// MaxGraceMultiple bounds how long a single loan may remain
	// DEFAULTING, expressed as a multiple of the loan's own term. A loan
	// past that bound makes the client severely delinquent on its own.
	MaxGraceMultiple int
}

// NewClassifier creates a classifier with the standing policy defaults.
func NewClassifier() *Classifier {
	return &Classifier{
		SeverelyDelinquentLoanCount: 2,
		MaxGraceMultiple:            2,
	}
}

// Classify examines all of a client's loans as of now.
//
//   - PUNCTUAL: no installment has ever been paid late, and none is
//     sitting unpaid past its due date.
//   - REGULAR: late or overdue installments exist, but no loan has ever
//     entered DEFAULTING.
//   - DELINQUENT: exactly one loan is currently DEFAULTING.
//   - SEVERELY_DELINQUENT: two or more loans are currently DEFAULTING, or
//     any loan has remained DEFAULTING past the grace bound.
func (c *Classifier) Classify(loans []model.Loan, now time.Time) valueobject.Classification {
	defaulting := 0
	everDefaulted := false
	lateInstallment := false

	for _, loan := range loans {
		if loan.EverDefaulted() {
			everDefaulted = true
		}
		if loan.HasLateInstallment(now) {
			lateInstallment = true
		}
		if !loan.Status().Equal(valueobject.LoanStatusDefaulting) {
			continue
		}
		defaulting++
		if c.pastGraceBound(loan, now) {
			return valueobject.ClassificationSeverelyDelinquent
		}
	}

	switch {
	case defaulting >= c.SeverelyDelinquentLoanCount:
		return valueobject.ClassificationSeverelyDelinquent
	case defaulting == 1:
		return valueobject.ClassificationDelinquent
	case lateInstallment || everDefaulted:
		return valueobject.ClassificationRegular
	default:
		return valueobject.ClassificationPunctual
	}
}

// pastGraceBound reports whether a DEFAULTING loan has stayed overdue
// longer than MaxGraceMultiple times its own term.
func (c *Classifier) pastGraceBound(loan model.Loan, now time.Time) bool {
	if c.MaxGraceMultiple <= 0 {
		return false
	}
	term := loan.EndDate().Sub(loan.StartDate())
	if term <= 0 {
		return false
	}
	bound := loan.EndDate().Add(time.Duration(c.MaxGraceMultiple) * term)
	return now.After(bound)
}
