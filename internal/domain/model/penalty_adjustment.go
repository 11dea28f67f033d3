package model

import (
	"time"

	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

// PenaltyAdjustment is the append-only audit record of a manual penalty
// override. It is never updated or deleted.
type PenaltyAdjustment struct {
	id             string
	companyID      string
	loanID         string
	adjustmentType valueobject.AdjustmentType
	previous       money.Money
	current        money.Money
	reason         string
	actor          string
	adjustedAt     time.Time
}

// ReconstructPenaltyAdjustment rebuilds a PenaltyAdjustment from persistence.
func ReconstructPenaltyAdjustment(
	id, companyID, loanID string,
	adjustmentType valueobject.AdjustmentType,
	previous, current money.Money,
	reason, actor string,
	adjustedAt time.Time,
) PenaltyAdjustment {
	return PenaltyAdjustment{
		id:             id,
		companyID:      companyID,
		loanID:         loanID,
		adjustmentType: adjustmentType,
		previous:       previous,
		current:        current,
		reason:         reason,
		actor:          actor,
		adjustedAt:     adjustedAt,
	}
}

func (a PenaltyAdjustment) ID() string                                 { return a.id }
func (a PenaltyAdjustment) CompanyID() string                          { return a.companyID }
func (a PenaltyAdjustment) LoanID() string                             { return a.loanID }
func (a PenaltyAdjustment) AdjustmentType() valueobject.AdjustmentType { return a.adjustmentType }
func (a PenaltyAdjustment) Previous() money.Money                      { return a.previous }
func (a PenaltyAdjustment) Current() money.Money                       { return a.current }
func (a PenaltyAdjustment) Reason() string                             { return a.reason }
func (a PenaltyAdjustment) Actor() string                              { return a.actor }
func (a PenaltyAdjustment) AdjustedAt() time.Time                      { return a.adjustedAt }
