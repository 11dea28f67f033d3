package usecase

import (
	"context"
	"fmt"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/port"
)

// ListPenaltyAdjustmentsUseCase retrieves a loan's penalty override audit
// trail, oldest first.
type ListPenaltyAdjustmentsUseCase struct {
	loanRepo       port.LoanRepository
	adjustmentRepo port.PenaltyAdjustmentRepository
}

// NewListPenaltyAdjustmentsUseCase wires dependencies.
func NewListPenaltyAdjustmentsUseCase(
	loanRepo port.LoanRepository,
	adjustmentRepo port.PenaltyAdjustmentRepository,
) *ListPenaltyAdjustmentsUseCase {
	return &ListPenaltyAdjustmentsUseCase{
		loanRepo:       loanRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// Execute fetches the adjustment history. The loan is looked up first so an
// unknown loan surfaces as not-found rather than an empty history.
func (uc *ListPenaltyAdjustmentsUseCase) Execute(ctx context.Context, req dto.ListPenaltyAdjustmentsRequest) ([]dto.PenaltyAdjustmentResponse, error) {
	if _, err := uc.loanRepo.FindByID(ctx, req.CompanyID, req.LoanID); err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}

	records, err := uc.adjustmentRepo.FindByLoanID(ctx, req.CompanyID, req.LoanID)
	if err != nil {
		return nil, fmt.Errorf("find adjustments: %w", err)
	}

	out := make([]dto.PenaltyAdjustmentResponse, 0, len(records))
	for _, record := range records {
		out = append(out, dto.PenaltyAdjustmentResponse{
			ID:             record.ID(),
			LoanID:         record.LoanID(),
			AdjustmentType: record.AdjustmentType().String(),
			Previous:       record.Previous().Amount(),
			Current:        record.Current().Amount(),
			Reason:         record.Reason(),
			Actor:          record.Actor(),
			AdjustedAt:     record.AdjustedAt(),
		})
	}
	return out, nil
}
