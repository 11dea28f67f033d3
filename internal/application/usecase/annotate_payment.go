package usecase

import (
	"context"
	"fmt"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/port"
)

// AnnotatePaymentUseCase corrects the reference and notes on a recorded
// payment. Amounts, allocation and dates are immutable once applied; this
// is the only after-the-fact edit a payment admits.
type AnnotatePaymentUseCase struct {
	paymentRepo port.PaymentRepository
	loanRepo    port.LoanRepository
}

// NewAnnotatePaymentUseCase wires dependencies.
func NewAnnotatePaymentUseCase(
	paymentRepo port.PaymentRepository,
	loanRepo port.LoanRepository,
) *AnnotatePaymentUseCase {
	return &AnnotatePaymentUseCase{
		paymentRepo: paymentRepo,
		loanRepo:    loanRepo,
	}
}

// Execute replaces the payment's annotations and returns the updated record.
func (uc *AnnotatePaymentUseCase) Execute(ctx context.Context, req dto.AnnotatePaymentRequest) (dto.PaymentResponse, error) {
	if req.PaymentID == "" {
		return dto.PaymentResponse{}, fault.Validation("payment ID is required")
	}
	if req.Reference == "" && req.Notes == "" {
		return dto.PaymentResponse{}, fault.Validation("nothing to annotate: reference and notes are both empty")
	}

	payment, err := uc.paymentRepo.FindByID(ctx, req.CompanyID, req.PaymentID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find payment: %w", err)
	}

	payment = payment.Annotate(req.Reference, req.Notes)
	if err := uc.paymentRepo.UpdateAnnotations(ctx, payment); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("update payment: %w", err)
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.CompanyID, payment.LoanID())
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toPaymentResponse(payment, loan, true), nil
}
