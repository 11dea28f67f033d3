// Package event defines the domain events emitted by the loan ledger.
// Events are published to Kafka after the aggregate change that produced
// them has been persisted.
package event

import (
	"time"

	"github.com/witalo/prestoras/pkg/events"
)

// Aggregate type names used in event envelopes.
const (
	AggregateLoan   = "loan"
	AggregateClient = "client"
)

// Event type names.
const (
	TypeLoanOpened         = "loan.opened"
	TypeLoanDefaulting     = "loan.defaulting"
	TypeLoanCompleted      = "loan.completed"
	TypeLoanRefinanced     = "loan.refinanced"
	TypePaymentApplied     = "loan.payment_applied"
	TypePenaltyAccrued     = "loan.penalty_accrued"
	TypePenaltyAdjusted    = "loan.penalty_adjusted"
	TypeClientReclassified = "client.reclassified"
)

// LoanOpened is emitted when a new loan is created with its schedule.
type LoanOpened struct {
	events.BaseEvent
	ClientID         string    `json:"client_id"`
	Principal        string    `json:"principal"`
	Currency         string    `json:"currency"`
	InstallmentCount int       `json:"installment_count"`
	Periodicity      string    `json:"periodicity"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

func NewLoanOpened(loanID, companyID, clientID, principal, currency string, installmentCount int, periodicity string, startDate, endDate time.Time) LoanOpened {
	return LoanOpened{
		BaseEvent:        events.NewBaseEvent(TypeLoanOpened, loanID, AggregateLoan, companyID),
		ClientID:         clientID,
		Principal:        principal,
		Currency:         currency,
		InstallmentCount: installmentCount,
		Periodicity:      periodicity,
		StartDate:        startDate,
		EndDate:          endDate,
	}
}

// LoanDefaulting is emitted when a loan crosses its end date with a balance
// still outstanding.
type LoanDefaulting struct {
	events.BaseEvent
	ClientID       string `json:"client_id"`
	PendingBalance string `json:"pending_balance"`
	Currency       string `json:"currency"`
}

func NewLoanDefaulting(loanID, companyID, clientID, pendingBalance, currency string) LoanDefaulting {
	return LoanDefaulting{
		BaseEvent:      events.NewBaseEvent(TypeLoanDefaulting, loanID, AggregateLoan, companyID),
		ClientID:       clientID,
		PendingBalance: pendingBalance,
		Currency:       currency,
	}
}

// LoanCompleted is emitted when the last outstanding amount on a loan is paid.
type LoanCompleted struct {
	events.BaseEvent
	ClientID string `json:"client_id"`
}

func NewLoanCompleted(loanID, companyID, clientID string) LoanCompleted {
	return LoanCompleted{
		BaseEvent: events.NewBaseEvent(TypeLoanCompleted, loanID, AggregateLoan, companyID),
		ClientID:  clientID,
	}
}

// LoanRefinanced is emitted on the original loan when its balance is
// capitalized into a replacement loan.
type LoanRefinanced struct {
	events.BaseEvent
	ClientID           string `json:"client_id"`
	NewLoanID          string `json:"new_loan_id"`
	CapitalizedBalance string `json:"capitalized_balance"`
	Currency           string `json:"currency"`
}

func NewLoanRefinanced(loanID, companyID, clientID, newLoanID, capitalizedBalance, currency string) LoanRefinanced {
	return LoanRefinanced{
		BaseEvent:          events.NewBaseEvent(TypeLoanRefinanced, loanID, AggregateLoan, companyID),
		ClientID:           clientID,
		NewLoanID:          newLoanID,
		CapitalizedBalance: capitalizedBalance,
		Currency:           currency,
	}
}

// PaymentApplied is emitted after a payment has been allocated across
// penalty, interest and capital.
type PaymentApplied struct {
	events.BaseEvent
	PaymentID      string `json:"payment_id"`
	ClientID       string `json:"client_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Method         string `json:"method"`
	PenaltyPaid    string `json:"penalty_paid"`
	InterestPaid   string `json:"interest_paid"`
	CapitalPaid    string `json:"capital_paid"`
	Overpayment    string `json:"overpayment"`
	PendingBalance string `json:"pending_balance"`
}

func NewPaymentApplied(loanID, companyID, paymentID, clientID, amount, currency, method, penaltyPaid, interestPaid, capitalPaid, overpayment, pendingBalance string) PaymentApplied {
	return PaymentApplied{
		BaseEvent:      events.NewBaseEvent(TypePaymentApplied, loanID, AggregateLoan, companyID),
		PaymentID:      paymentID,
		ClientID:       clientID,
		Amount:         amount,
		Currency:       currency,
		Method:         method,
		PenaltyPaid:    penaltyPaid,
		InterestPaid:   interestPaid,
		CapitalPaid:    capitalPaid,
		Overpayment:    overpayment,
		PendingBalance: pendingBalance,
	}
}

// PenaltyAccrued is emitted when a recompute raises the accrued penalty.
type PenaltyAccrued struct {
	events.BaseEvent
	PreviousPenalty string `json:"previous_penalty"`
	CurrentPenalty  string `json:"current_penalty"`
	Currency        string `json:"currency"`
	OverduePeriods  int    `json:"overdue_periods"`
}

func NewPenaltyAccrued(loanID, companyID, previousPenalty, currentPenalty, currency string, overduePeriods int) PenaltyAccrued {
	return PenaltyAccrued{
		BaseEvent:       events.NewBaseEvent(TypePenaltyAccrued, loanID, AggregateLoan, companyID),
		PreviousPenalty: previousPenalty,
		CurrentPenalty:  currentPenalty,
		Currency:        currency,
		OverduePeriods:  overduePeriods,
	}
}

// PenaltyAdjusted is emitted when an operator manually overrides the
// accrued penalty.
type PenaltyAdjusted struct {
	events.BaseEvent
	AdjustmentID    string `json:"adjustment_id"`
	AdjustmentType  string `json:"adjustment_type"`
	PreviousPenalty string `json:"previous_penalty"`
	CurrentPenalty  string `json:"current_penalty"`
	Currency        string `json:"currency"`
	Reason          string `json:"reason"`
}

func NewPenaltyAdjusted(loanID, companyID, adjustmentID, adjustmentType, previousPenalty, currentPenalty, currency, reason string) PenaltyAdjusted {
	return PenaltyAdjusted{
		BaseEvent:       events.NewBaseEvent(TypePenaltyAdjusted, loanID, AggregateLoan, companyID),
		AdjustmentID:    adjustmentID,
		AdjustmentType:  adjustmentType,
		PreviousPenalty: previousPenalty,
		CurrentPenalty:  currentPenalty,
		Currency:        currency,
		Reason:          reason,
	}
}

// ClientReclassified is emitted when a client's standing changes.
type ClientReclassified struct {
	events.BaseEvent
	Previous string `json:"previous_classification"`
	Current  string `json:"current_classification"`
}

func NewClientReclassified(clientID, companyID, previous, current string) ClientReclassified {
	return ClientReclassified{
		BaseEvent: events.NewBaseEvent(TypeClientReclassified, clientID, AggregateClient, companyID),
		Previous:  previous,
		Current:   current,
	}
}
