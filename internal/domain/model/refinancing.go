package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/witalo/prestoras/pkg/money"
)

// Refinancing is the audit record linking a closed loan to its successor.
// The source loan's unpaid installments are not transferred; they remain as
// the historical record of what was outstanding at refinancing time. The
// successor's opening terms are copied here so the record stands on its own.
type Refinancing struct {
	id                 string
	companyID          string
	clientID           string
	originalLoanID     string
	newLoanID          string
	capitalizedBalance money.Money
	newPrincipal       money.Money
	ratePercent        decimal.Decimal
	reason             string
	refinancedAt       time.Time
}

// NewRefinancing creates the audit record for a completed refinancing.
func NewRefinancing(
	companyID, clientID, originalLoanID, newLoanID string,
	capitalizedBalance, newPrincipal money.Money,
	ratePercent decimal.Decimal,
	reason string,
	refinancedAt time.Time,
) Refinancing {
	return Refinancing{
		id:                 uuid.New().String(),
		companyID:          companyID,
		clientID:           clientID,
		originalLoanID:     originalLoanID,
		newLoanID:          newLoanID,
		capitalizedBalance: capitalizedBalance,
		newPrincipal:       newPrincipal,
		ratePercent:        ratePercent,
		reason:             reason,
		refinancedAt:       refinancedAt,
	}
}

// ReconstructRefinancing rebuilds a Refinancing from persistence.
func ReconstructRefinancing(
	id, companyID, clientID, originalLoanID, newLoanID string,
	capitalizedBalance, newPrincipal money.Money,
	ratePercent decimal.Decimal,
	reason string,
	refinancedAt time.Time,
) Refinancing {
	return Refinancing{
		id:                 id,
		companyID:          companyID,
		clientID:           clientID,
		originalLoanID:     originalLoanID,
		newLoanID:          newLoanID,
		capitalizedBalance: capitalizedBalance,
		newPrincipal:       newPrincipal,
		ratePercent:        ratePercent,
		reason:             reason,
		refinancedAt:       refinancedAt,
	}
}

func (r Refinancing) ID() string                      { return r.id }
func (r Refinancing) CompanyID() string               { return r.companyID }
func (r Refinancing) ClientID() string                { return r.clientID }
func (r Refinancing) OriginalLoanID() string          { return r.originalLoanID }
func (r Refinancing) NewLoanID() string               { return r.newLoanID }
func (r Refinancing) CapitalizedBalance() money.Money { return r.capitalizedBalance }
func (r Refinancing) NewPrincipal() money.Money       { return r.newPrincipal }
func (r Refinancing) RatePercent() decimal.Decimal    { return r.ratePercent }
func (r Refinancing) Reason() string                  { return r.reason }
func (r Refinancing) RefinancedAt() time.Time         { return r.refinancedAt }
