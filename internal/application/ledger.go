// Package application composes the use cases behind the single writer
// facade the rest of the system goes through.
package application

import (
	"context"
	"log/slog"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/application/usecase"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/pkg/lockmap"
)

// conflictRetries bounds internal retries on version contention before the
// Conflict fault is surfaced to the caller.
const conflictRetries = 3

// Ledger is the orchestration facade for the loan ledger. Every mutation
// of a loan goes through it: it serializes writers per loan and retries
// transient version conflicts a bounded number of times. Loans are
// independent units of concurrency; no cross-loan locking happens here.
type Ledger struct {
	createLoan      *usecase.CreateLoanUseCase
	recordPayment   *usecase.RecordPaymentUseCase
	annotatePayment *usecase.AnnotatePaymentUseCase
	adjustPenalty   *usecase.AdjustPenaltyUseCase
	listAdjustments *usecase.ListPenaltyAdjustmentsUseCase
	refinance       *usecase.RefinanceLoanUseCase
	reclassify      *usecase.ReclassifyClientUseCase
	getLoan         *usecase.GetLoanUseCase
	penaltySweep    *usecase.PenaltySweepUseCase

	locks  *lockmap.LockMap
	logger *slog.Logger
}

// NewLedger wires the facade.
func NewLedger(
	createLoan *usecase.CreateLoanUseCase,
	recordPayment *usecase.RecordPaymentUseCase,
	annotatePayment *usecase.AnnotatePaymentUseCase,
	adjustPenalty *usecase.AdjustPenaltyUseCase,
	listAdjustments *usecase.ListPenaltyAdjustmentsUseCase,
	refinance *usecase.RefinanceLoanUseCase,
	reclassify *usecase.ReclassifyClientUseCase,
	getLoan *usecase.GetLoanUseCase,
	penaltySweep *usecase.PenaltySweepUseCase,
	logger *slog.Logger,
) *Ledger {
	return &Ledger{
		createLoan:      createLoan,
		recordPayment:   recordPayment,
		annotatePayment: annotatePayment,
		adjustPenalty:   adjustPenalty,
		listAdjustments: listAdjustments,
		refinance:       refinance,
		reclassify:      reclassify,
		getLoan:         getLoan,
		penaltySweep:    penaltySweep,
		locks:           lockmap.New(),
		logger:          logger,
	}
}

// CreateLoan opens a loan and generates its schedule.
func (l *Ledger) CreateLoan(ctx context.Context, req dto.CreateLoanRequest) (dto.LoanResponse, error) {
	return l.createLoan.Execute(ctx, req)
}

// RecordPayment allocates a payment under the loan's lock and then
// re-evaluates the client's classification.
func (l *Ledger) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (dto.PaymentResponse, error) {
	l.locks.Lock(req.LoanID)
	resp, err := retryOnConflict(func() (dto.PaymentResponse, error) {
		return l.recordPayment.Execute(ctx, req)
	})
	l.locks.Unlock(req.LoanID)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	l.reclassifyAfter(ctx, req.CompanyID, resp.ClientID)
	return resp, nil
}

// AnnotatePayment corrects the reference and notes on a recorded payment.
// Annotations never move funds, so no loan lock is taken.
func (l *Ledger) AnnotatePayment(ctx context.Context, req dto.AnnotatePaymentRequest) (dto.PaymentResponse, error) {
	return l.annotatePayment.Execute(ctx, req)
}

// AdjustPenalty applies a manual penalty override under the loan's lock.
func (l *Ledger) AdjustPenalty(ctx context.Context, req dto.AdjustPenaltyRequest) (dto.PenaltyAdjustmentResponse, error) {
	l.locks.Lock(req.LoanID)
	defer l.locks.Unlock(req.LoanID)

	return retryOnConflict(func() (dto.PenaltyAdjustmentResponse, error) {
		return l.adjustPenalty.Execute(ctx, req)
	})
}

// ListPenaltyAdjustments returns a loan's penalty override audit trail.
func (l *Ledger) ListPenaltyAdjustments(ctx context.Context, req dto.ListPenaltyAdjustmentsRequest) ([]dto.PenaltyAdjustmentResponse, error) {
	return l.listAdjustments.Execute(ctx, req)
}

// Refinance closes a loan into a successor under the source loan's lock.
// The successor is brand new and cannot be contended until the operation
// returns.
func (l *Ledger) Refinance(ctx context.Context, req dto.RefinanceLoanRequest) (dto.RefinanceResponse, error) {
	l.locks.Lock(req.LoanID)
	resp, err := retryOnConflict(func() (dto.RefinanceResponse, error) {
		return l.refinance.Execute(ctx, req)
	})
	l.locks.Unlock(req.LoanID)
	if err != nil {
		return dto.RefinanceResponse{}, err
	}

	l.reclassifyAfter(ctx, req.CompanyID, resp.OriginalLoan.ClientID)
	return resp, nil
}

// Reclassify recomputes a client's standing on demand.
func (l *Ledger) Reclassify(ctx context.Context, req dto.ReclassifyClientRequest) (dto.ClassificationResponse, error) {
	return l.reclassify.Execute(ctx, req)
}

// GetLoan fetches a loan with its schedule.
func (l *Ledger) GetLoan(ctx context.Context, req dto.GetLoanRequest) (dto.LoanResponse, error) {
	return l.getLoan.Execute(ctx, req)
}

// RunPenaltySweep refreshes accrual on every overdue loan.
func (l *Ledger) RunPenaltySweep(ctx context.Context) (dto.PenaltySweepResponse, error) {
	return l.penaltySweep.Execute(ctx)
}

// reclassifyAfter re-evaluates the client after a mutation. Classification
// is derived state; a failure here must not undo the mutation, so it is
// logged and swallowed.
func (l *Ledger) reclassifyAfter(ctx context.Context, companyID, subject string) {
	req := dto.ReclassifyClientRequest{CompanyID: companyID, ClientID: subject}
	if _, err := l.reclassify.Execute(ctx, req); err != nil {
		l.logger.Error("reclassify after mutation failed",
			"company_id", companyID, "client_id", subject, "error", err)
	}
}

func retryOnConflict[T any](op func() (T, error)) (T, error) {
	var resp T
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		resp, err = op()
		if err == nil || !fault.IsRetryable(err) {
			return resp, err
		}
	}
	return resp, err
}
