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
	"github.com/witalo/prestoras/pkg/money"
)

func refinanceRequest(loanID string) dto.RefinanceLoanRequest {
	return dto.RefinanceLoanRequest{
		CompanyID:        "company-1",
		LoanID:           loanID,
		NewPrincipal:     decimal.NewFromInt(990),
		Currency:         "PEN",
		RatePercent:      decimal.NewFromInt(8),
		Periodicity:      "WEEKLY",
		InstallmentCount: 10,
		StartDate:        testStart,
	}
}

func TestRefinanceLoan_Execute(t *testing.T) {
	loanType := testLoanType(t, valueobject.OverpaymentStrict)
	loanTypeRepo := &mockLoanTypeRepository{
		findByIDFunc: func(ctx context.Context, companyID, id string) (model.LoanType, error) {
			return loanType, nil
		},
	}

	t.Run("closes original and opens successor atomically", func(t *testing.T) {
		original := testLoan(t, valueobject.OverpaymentStrict)
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Loan, error) {
				return original, nil
			},
		}
		publisher := &mockEventPublisher{}
		uc := usecase.NewRefinanceLoanUseCase(loanRepo, loanTypeRepo, publisher)

		resp, err := uc.Execute(context.Background(), refinanceRequest(original.ID()))
		require.NoError(t, err)

		assert.Equal(t, "REFINANCED", resp.OriginalLoan.Status)
		assert.Equal(t, "ACTIVE", resp.NewLoan.Status)
		assert.Equal(t, original.ID(), resp.NewLoan.OriginalLoanID)
		assert.True(t, decimal.NewFromInt(990).Equal(resp.CapitalizedBalance))
		assert.Len(t, resp.NewLoan.Installments, 10)

		// Both loans and the lineage record go through the one
		// transactional save.
		require.Len(t, loanRepo.savedLoans, 2)
		require.Len(t, loanRepo.savedRefinancings, 1)
		record := loanRepo.savedRefinancings[0]
		assert.Equal(t, original.ID(), record.OriginalLoanID())
		assert.Equal(t, resp.NewLoan.ID, record.NewLoanID())
		assert.True(t, decimal.NewFromInt(990).Equal(record.NewPrincipal().Amount()))
		assert.True(t, decimal.NewFromInt(8).Equal(record.RatePercent()))
		assert.NotEmpty(t, publisher.publishedEvents)
	})

	t.Run("rejects a loan with nothing outstanding", func(t *testing.T) {
		// An ACTIVE loan whose schedule is fully settled has nothing to
		// capitalize; refinancing it would open a successor for 0.
		paidAt := testStart
		var installments []model.Installment
		for i := 1; i <= 3; i++ {
			installments = append(installments, model.Installment{
				Number:   i,
				DueDate:  testStart.AddDate(0, i, 0),
				Capital:  pen(t, "300"),
				Interest: pen(t, "30"),
				Paid:     pen(t, "330"),
				PaidAt:   &paidAt,
				Status:   valueobject.InstallmentStatusPaid,
			})
		}
		settled := model.ReconstructLoan(
			"loan-settled", "company-1", "client-1", "type-1",
			pen(t, "900"), decimal.NewFromInt(10),
			valueobject.PeriodicityMonthly,
			valueobject.AmortizationFlat,
			valueobject.PenaltyPolicy{Type: valueobject.PenaltyFixed, Amount: money.FromCents(1500, money.PEN)},
			valueobject.OverpaymentStrict,
			installments,
			testStart, testStart.AddDate(0, 3, 0),
			valueobject.LoanStatusActive,
			pen(t, "0"), pen(t, "0"), testStart.AddDate(0, 3, 0),
			pen(t, "0"),
			"", nil, 1, testStart, testStart,
		)

		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Loan, error) {
				return settled, nil
			},
		}
		uc := usecase.NewRefinanceLoanUseCase(loanRepo, loanTypeRepo, &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), refinanceRequest(settled.ID()))
		assert.True(t, fault.IsKind(err, fault.KindState))
		assert.Empty(t, loanRepo.savedLoans)
		assert.Empty(t, loanRepo.savedRefinancings)
	})

	t.Run("rejects refinancing a closed loan", func(t *testing.T) {
		original := testLoan(t, valueobject.OverpaymentStrict)
		closed, err := original.MarkRefinanced("loan-x", testStart)
		require.NoError(t, err)
		closed = closed.ClearEvents()

		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Loan, error) {
				return closed, nil
			},
		}
		uc := usecase.NewRefinanceLoanUseCase(loanRepo, loanTypeRepo, &mockEventPublisher{})

		_, err = uc.Execute(context.Background(), refinanceRequest(original.ID()))
		assert.True(t, fault.IsKind(err, fault.KindState))
	})

	t.Run("lineage chain is walkable across refinancings", func(t *testing.T) {
		first := testLoan(t, valueobject.OverpaymentStrict)

		loans := map[string]model.Loan{first.ID(): first}
		loanRepo := &mockLoanRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Loan, error) {
				loan, ok := loans[id]
				if !ok {
					return model.Loan{}, fault.Validation("loan %s not found", id)
				}
				return loan, nil
			},
		}
		uc := usecase.NewRefinanceLoanUseCase(loanRepo, loanTypeRepo, &mockEventPublisher{})

		resp, err := uc.Execute(context.Background(), refinanceRequest(first.ID()))
		require.NoError(t, err)

		// Index what the transactional save produced and refinance the
		// successor too.
		for _, saved := range loanRepo.savedLoans {
			loans[saved.ID()] = saved
		}
		resp2, err := uc.Execute(context.Background(), refinanceRequest(resp.NewLoan.ID))
		require.NoError(t, err)

		assert.Equal(t, resp.NewLoan.ID, resp2.NewLoan.OriginalLoanID)
	})
}
