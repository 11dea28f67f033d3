package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/port"
)

// PenaltySweepUseCase is the periodic refresh job: it walks every loan
// past its end date and recomputes penalty accrual and defaulting status.
// Allocation during a payment performs the same refresh, so the sweep only
// exists to keep idle loans current.
type PenaltySweepUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewPenaltySweepUseCase wires dependencies.
func NewPenaltySweepUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *PenaltySweepUseCase {
	return &PenaltySweepUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute refreshes every overdue loan. A failure on one loan is logged
// and counted but does not stop the sweep.
func (uc *PenaltySweepUseCase) Execute(ctx context.Context) (dto.PenaltySweepResponse, error) {
	now := time.Now().UTC()

	loans, err := uc.loanRepo.FindOverdue(ctx, now)
	if err != nil {
		return dto.PenaltySweepResponse{}, fmt.Errorf("find overdue loans: %w", err)
	}

	resp := dto.PenaltySweepResponse{LoansExamined: len(loans)}
	for _, loan := range loans {
		refreshed := loan.RefreshPenalty(now)
		if len(refreshed.DomainEvents()) == 0 {
			continue
		}

		if err := uc.loanRepo.Save(ctx, refreshed); err != nil {
			resp.LoansFailed++
			uc.logger.Error("penalty sweep: save loan failed",
				"loan_id", loan.ID(), "company_id", loan.CompanyID(), "error", err)
			continue
		}
		if err := uc.publisher.Publish(ctx, refreshed.DomainEvents()...); err != nil {
			uc.logger.Error("penalty sweep: publish failed",
				"loan_id", loan.ID(), "error", err)
		}
		resp.LoansUpdated++
	}

	uc.logger.Info("penalty sweep finished",
		"examined", resp.LoansExamined, "updated", resp.LoansUpdated, "failed", resp.LoansFailed)
	return resp, nil
}
