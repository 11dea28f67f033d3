package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/port"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

// RecordPaymentUseCase refreshes penalty accrual on a loan and allocates a
// payment across it, oldest obligation first.
type RecordPaymentUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	publisher   port.EventPublisher
}

// NewRecordPaymentUseCase wires dependencies.
func NewRecordPaymentUseCase(
	loanRepo port.LoanRepository,
	paymentRepo port.PaymentRepository,
	publisher port.EventPublisher,
) *RecordPaymentUseCase {
	return &RecordPaymentUseCase{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		publisher:   publisher,
	}
}

// Execute applies the payment exactly once per payment ID. Reprocessing a
// payment that was already applied returns the stored outcome without
// moving any funds.
func (uc *RecordPaymentUseCase) Execute(ctx context.Context, req dto.RecordPaymentRequest) (dto.PaymentResponse, error) {
	now := time.Now().UTC()

	if req.PaymentID == "" {
		return dto.PaymentResponse{}, fault.Validation("payment ID is required")
	}

	applied, err := uc.paymentRepo.Exists(ctx, req.CompanyID, req.PaymentID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("check payment: %w", err)
	}
	if applied {
		existing, err := uc.paymentRepo.FindByID(ctx, req.CompanyID, req.PaymentID)
		if err != nil {
			return dto.PaymentResponse{}, fmt.Errorf("find payment: %w", err)
		}
		loan, err := uc.loanRepo.FindByID(ctx, req.CompanyID, existing.LoanID())
		if err != nil {
			return dto.PaymentResponse{}, fmt.Errorf("find loan: %w", err)
		}
		return toPaymentResponse(existing, loan, true), nil
	}

	currency, err := money.NewCurrency(req.Currency)
	if err != nil {
		return dto.PaymentResponse{}, fault.Wrap(fault.KindValidation, err, "currency")
	}
	method, err := valueobject.NewPaymentMethod(req.Method)
	if err != nil {
		return dto.PaymentResponse{}, fault.Wrap(fault.KindValidation, err, "payment method")
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.CompanyID, req.LoanID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}

	loan = loan.RefreshPenalty(now)

	loan, payment, err := loan.ApplyPayment(req.PaymentID, money.New(req.Amount, currency), method, req.CollectorID, now)
	if err != nil {
		return dto.PaymentResponse{}, err
	}
	if req.Reference != "" || req.Notes != "" {
		payment = payment.Annotate(req.Reference, req.Notes)
	}

	// One transaction: the loan's new balance and the payment that caused
	// it are never visible apart.
	if err := uc.loanRepo.SaveAllocation(ctx, loan, payment); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("save allocation: %w", err)
	}

	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toPaymentResponse(payment, loan, false), nil
}
