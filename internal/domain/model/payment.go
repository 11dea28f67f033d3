package model

import (
	"time"

	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

// PaymentLine records how much of a payment was applied to one installment,
// broken down into penalty, interest and capital. Lines are produced only by
// the allocation algorithm and never edited afterwards.
type PaymentLine struct {
	InstallmentNumber int
	Penalty           money.Money
	Interest          money.Money
	Capital           money.Money
}

// Total returns the full amount the line applied to its installment.
func (l PaymentLine) Total() money.Money {
	return l.Penalty.MustAdd(l.Interest).MustAdd(l.Capital)
}

// Payment is a single collection event against a loan. It is immutable once
// created; its identifier is the idempotency key for allocation.
type Payment struct {
	id          string
	companyID   string
	loanID      string
	clientID    string
	amount      money.Money
	method      valueobject.PaymentMethod
	collectorID string
	reference   string
	notes       string
	receivedAt  time.Time
	overpayment money.Money
	lines       []PaymentLine
	createdAt   time.Time
}

// ReconstructPayment rebuilds a Payment from persistence.
func ReconstructPayment(
	id, companyID, loanID, clientID string,
	amount money.Money,
	method valueobject.PaymentMethod,
	collectorID, reference, notes string,
	receivedAt time.Time,
	overpayment money.Money,
	lines []PaymentLine,
	createdAt time.Time,
) Payment {
	return Payment{
		id:          id,
		companyID:   companyID,
		loanID:      loanID,
		clientID:    clientID,
		amount:      amount,
		method:      method,
		collectorID: collectorID,
		reference:   reference,
		notes:       notes,
		receivedAt:  receivedAt,
		overpayment: overpayment,
		lines:       lines,
		createdAt:   createdAt,
	}
}

// Annotate returns a copy with the collector-facing reference and notes
// replaced. The monetary facts of a payment are immutable; annotation is
// the only correction allowed after the fact.
func (p Payment) Annotate(reference, notes string) Payment {
	next := p
	next.reference = reference
	next.notes = notes
	return next
}

func (p Payment) ID() string                        { return p.id }
func (p Payment) CompanyID() string                 { return p.companyID }
func (p Payment) LoanID() string                    { return p.loanID }
func (p Payment) ClientID() string                  { return p.clientID }
func (p Payment) Amount() money.Money               { return p.amount }
func (p Payment) Method() valueobject.PaymentMethod { return p.method }
func (p Payment) CollectorID() string               { return p.collectorID }
func (p Payment) Reference() string                 { return p.reference }
func (p Payment) Notes() string                     { return p.notes }
func (p Payment) ReceivedAt() time.Time             { return p.receivedAt }
func (p Payment) Overpayment() money.Money          { return p.overpayment }
func (p Payment) CreatedAt() time.Time              { return p.createdAt }

// Lines returns a defensive copy of the allocation breakdown.
func (p Payment) Lines() []PaymentLine {
	if p.lines == nil {
		return nil
	}
	out := make([]PaymentLine, len(p.lines))
	copy(out, p.lines)
	return out
}

// PenaltyPaid returns the portion of the payment applied to penalty.
func (p Payment) PenaltyPaid() money.Money {
	total := money.Zero(p.amount.Currency())
	for _, l := range p.lines {
		total = total.MustAdd(l.Penalty)
	}
	return total
}

// InterestPaid returns the portion of the payment applied to interest.
func (p Payment) InterestPaid() money.Money {
	total := money.Zero(p.amount.Currency())
	for _, l := range p.lines {
		total = total.MustAdd(l.Interest)
	}
	return total
}

// CapitalPaid returns the portion of the payment applied to capital.
func (p Payment) CapitalPaid() money.Money {
	total := money.Zero(p.amount.Currency())
	for _, l := range p.lines {
		total = total.MustAdd(l.Capital)
	}
	return total
}
