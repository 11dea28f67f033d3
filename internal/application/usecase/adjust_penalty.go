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

// AdjustPenaltyUseCase applies a manual penalty override and appends the
// audit record.
type AdjustPenaltyUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
}

// NewAdjustPenaltyUseCase wires dependencies.
func NewAdjustPenaltyUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
) *AdjustPenaltyUseCase {
	return &AdjustPenaltyUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
	}
}

// Execute refreshes accrual first so the override applies to the current
// penalty, then persists the loan and the append-only audit record.
func (uc *AdjustPenaltyUseCase) Execute(ctx context.Context, req dto.AdjustPenaltyRequest) (dto.PenaltyAdjustmentResponse, error) {
	now := time.Now().UTC()

	adjustmentType, err := valueobject.NewAdjustmentType(req.AdjustmentType)
	if err != nil {
		return dto.PenaltyAdjustmentResponse{}, fault.Wrap(fault.KindValidation, err, "adjustment type")
	}
	currency, err := money.NewCurrency(req.Currency)
	if err != nil {
		return dto.PenaltyAdjustmentResponse{}, fault.Wrap(fault.KindValidation, err, "currency")
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.CompanyID, req.LoanID)
	if err != nil {
		return dto.PenaltyAdjustmentResponse{}, fmt.Errorf("find loan: %w", err)
	}

	loan = loan.RefreshPenalty(now)

	loan, record, err := loan.AdjustPenalty(adjustmentType, money.New(req.Value, currency), req.Reason, req.Actor, now)
	if err != nil {
		return dto.PenaltyAdjustmentResponse{}, err
	}

	// One transaction: the overridden accrual and its audit record are
	// never visible apart.
	if err := uc.loanRepo.SaveAdjustment(ctx, loan, record); err != nil {
		return dto.PenaltyAdjustmentResponse{}, fmt.Errorf("save adjustment: %w", err)
	}

	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.PenaltyAdjustmentResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.PenaltyAdjustmentResponse{
		ID:             record.ID(),
		LoanID:         record.LoanID(),
		AdjustmentType: record.AdjustmentType().String(),
		Previous:       record.Previous().Amount(),
		Current:        record.Current().Amount(),
		Reason:         record.Reason(),
		Actor:          record.Actor(),
		AdjustedAt:     record.AdjustedAt(),
	}, nil
}
