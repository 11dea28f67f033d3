package port

import (
	"context"
	"time"

	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/pkg/events"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRepository persists and retrieves loans with their installments.
// Save enforces optimistic concurrency on the loan's version and fails
// with a Conflict fault when another writer got there first.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, companyID, id string) (model.Loan, error)
	FindByClientID(ctx context.Context, companyID, clientID string) ([]model.Loan, error)
	// FindOverdue returns, across all companies, the loans past their
	// end date that still accept payments. Used by the penalty sweep.
	FindOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error)
	// SaveAllocation atomically persists a loan together with the payment
	// that was just applied to it. A loan whose balance moved without its
	// payment on record, or the reverse, must never be visible.
	SaveAllocation(ctx context.Context, loan model.Loan, payment model.Payment) error
	// SaveAdjustment atomically persists a loan together with the audit
	// record of a manual penalty override.
	SaveAdjustment(ctx context.Context, loan model.Loan, record model.PenaltyAdjustment) error
	// SaveRefinancing atomically closes the original loan, creates its
	// successor and records the lineage. Either all three writes are
	// visible or none.
	SaveRefinancing(ctx context.Context, original, successor model.Loan, record model.Refinancing) error
}

// PaymentRepository reads payment records and their allocation lines.
// Payments are written only through LoanRepository.SaveAllocation, in the
// same transaction as the loan they moved. A payment's identifier is the
// idempotency key: Exists reports whether it has already been applied.
type PaymentRepository interface {
	Exists(ctx context.Context, companyID, id string) (bool, error)
	FindByID(ctx context.Context, companyID, id string) (model.Payment, error)
	FindByLoanID(ctx context.Context, companyID, loanID string) ([]model.Payment, error)
	// UpdateAnnotations rewrites only the reference and notes of a
	// recorded payment. Monetary columns are never touched.
	UpdateAnnotations(ctx context.Context, payment model.Payment) error
}

// ClientRepository persists and retrieves borrowers.
type ClientRepository interface {
	Save(ctx context.Context, client model.Client) error
	FindByID(ctx context.Context, companyID, id string) (model.Client, error)
}

// LoanTypeRepository persists and retrieves loan product templates.
type LoanTypeRepository interface {
	Save(ctx context.Context, loanType model.LoanType) error
	FindByID(ctx context.Context, companyID, id string) (model.LoanType, error)
}

// PenaltyAdjustmentRepository reads penalty override audit records. Records
// are written only through LoanRepository.SaveAdjustment and are never
// updated or deleted.
type PenaltyAdjustmentRepository interface {
	FindByLoanID(ctx context.Context, companyID, loanID string) ([]model.PenaltyAdjustment, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}
