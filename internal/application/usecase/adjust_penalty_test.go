package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/application/usecase"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/valueobject"
)

func TestAdjustPenalty_Execute(t *testing.T) {
	t.Run("modify writes loan and audit record", func(t *testing.T) {
		loan := testLoan(t, valueobject.OverpaymentStrict)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Loan, error) {
				return loan, nil
			},
		}
		publisher := &mockEventPublisher{}
		uc := usecase.NewAdjustPenaltyUseCase(loanRepo, publisher)

		resp, err := uc.Execute(context.Background(), dto.AdjustPenaltyRequest{
			CompanyID:      "company-1",
			LoanID:         loan.ID(),
			AdjustmentType: "MODIFY",
			Value:          decimal.NewFromInt(25),
			Currency:       "PEN",
			Reason:         "negotiated settlement",
			Actor:          "supervisor-7",
		})
		require.NoError(t, err)

		assert.Equal(t, "MODIFY", resp.AdjustmentType)
		assert.True(t, decimal.Zero.Equal(resp.Previous))
		assert.True(t, decimal.NewFromInt(25).Equal(resp.Current))
		assert.Equal(t, "supervisor-7", resp.Actor)

		// Loan and audit record land through the one transactional save.
		require.Len(t, loanRepo.savedLoans, 1)
		require.Len(t, loanRepo.savedAdjustments, 1)
		assert.True(t, pen(t, "25").Equal(loanRepo.savedLoans[0].PenaltyAccrued()))
		assert.NotEmpty(t, publisher.publishedEvents)
	})

	t.Run("a failed save persists neither loan nor record", func(t *testing.T) {
		loan := testLoan(t, valueobject.OverpaymentStrict)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Loan, error) {
				return loan, nil
			},
			saveFunc: func(ctx context.Context, l model.Loan) error {
				return fault.Conflict("loan %s was modified concurrently", l.ID())
			},
		}
		publisher := &mockEventPublisher{}
		uc := usecase.NewAdjustPenaltyUseCase(loanRepo, publisher)

		_, err := uc.Execute(context.Background(), dto.AdjustPenaltyRequest{
			CompanyID:      "company-1",
			LoanID:         loan.ID(),
			AdjustmentType: "MODIFY",
			Value:          decimal.NewFromInt(25),
			Currency:       "PEN",
			Reason:         "negotiated settlement",
			Actor:          "supervisor-7",
		})
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindConflict))

		assert.Empty(t, loanRepo.savedLoans)
		assert.Empty(t, loanRepo.savedAdjustments, "an audit record must never outlive a rolled-back loan save")
		assert.Empty(t, publisher.publishedEvents)
	})

	t.Run("rejects adjustment without reason", func(t *testing.T) {
		loan := testLoan(t, valueobject.OverpaymentStrict)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Loan, error) {
				return loan, nil
			},
		}
		uc := usecase.NewAdjustPenaltyUseCase(loanRepo, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.AdjustPenaltyRequest{
			CompanyID:      "company-1",
			LoanID:         loan.ID(),
			AdjustmentType: "ELIMINATE",
			Currency:       "PEN",
			Actor:          "supervisor-7",
		})
		assert.True(t, fault.IsKind(err, fault.KindValidation))
	})

	t.Run("rejects unknown adjustment type", func(t *testing.T) {
		uc := usecase.NewAdjustPenaltyUseCase(&mockLoanRepository{}, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.AdjustPenaltyRequest{
			CompanyID:      "company-1",
			LoanID:         "loan-1",
			AdjustmentType: "WAIVE",
			Currency:       "PEN",
			Reason:         "r",
			Actor:          "a",
		})
		assert.True(t, fault.IsKind(err, fault.KindValidation))
	})
}
