package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/application/usecase"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/service"
	"github.com/witalo/prestoras/internal/domain/valueobject"
)

// overdueLoan is a fixture loan pushed past its end date into DEFAULTING.
func overdueLoan(t *testing.T) model.Loan {
	t.Helper()
	loan := testLoan(t, valueobject.OverpaymentStrict)
	refreshed := loan.RefreshPenalty(loan.EndDate().AddDate(0, 1, 2))
	require.True(t, refreshed.Status().Equal(valueobject.LoanStatusDefaulting))
	return refreshed.ClearEvents()
}

func TestReclassifyClient_Execute(t *testing.T) {
	client := testClient(t)

	newUseCase := func(loans []model.Loan, clientRepo *mockClientRepository, publisher *mockEventPublisher) *usecase.ReclassifyClientUseCase {
		loanRepo := &mockLoanRepository{
			findByClientIDFunc: func(ctx context.Context, companyID, clientID string) ([]model.Loan, error) {
				return loans, nil
			},
		}
		return usecase.NewReclassifyClientUseCase(clientRepo, loanRepo, service.NewClassifier(), publisher)
	}

	req := dto.ReclassifyClientRequest{CompanyID: "company-1", ClientID: client.ID()}

	t.Run("one defaulting loan makes the client delinquent", func(t *testing.T) {
		clientRepo := &mockClientRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Client, error) {
				return client, nil
			},
		}
		publisher := &mockEventPublisher{}
		uc := newUseCase([]model.Loan{overdueLoan(t)}, clientRepo, publisher)

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "DELINQUENT", resp.Classification)
		assert.True(t, resp.Changed)
		require.Len(t, clientRepo.savedClients, 1)
		require.Len(t, publisher.publishedEvents, 1)
		assert.Equal(t, "client.reclassified", publisher.publishedEvents[0].EventType())
	})

	t.Run("two defaulting loans make the client severely delinquent", func(t *testing.T) {
		clientRepo := &mockClientRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Client, error) {
				return client, nil
			},
		}
		uc := newUseCase([]model.Loan{overdueLoan(t), overdueLoan(t)}, clientRepo, &mockEventPublisher{})

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "SEVERELY_DELINQUENT", resp.Classification)
	})

	t.Run("unchanged classification writes nothing", func(t *testing.T) {
		clientRepo := &mockClientRepository{
			findByIDFunc: func(ctx context.Context, companyID, id string) (model.Client, error) {
				return client, nil
			},
		}
		publisher := &mockEventPublisher{}
		uc := newUseCase(nil, clientRepo, publisher)

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "PUNCTUAL", resp.Classification)
		assert.False(t, resp.Changed)
		assert.Empty(t, clientRepo.savedClients)
		assert.Empty(t, publisher.publishedEvents)
	})
}

func TestPenaltySweep_Execute(t *testing.T) {
	t.Run("refreshes loans past their end date", func(t *testing.T) {
		stale := staleLoan(t)
		current := testLoan(t, valueobject.OverpaymentStrict)

		loanRepo := &mockLoanRepository{
			findOverdueFunc: func(ctx context.Context, asOf time.Time) ([]model.Loan, error) {
				return []model.Loan{stale, current}, nil
			},
		}
		publisher := &mockEventPublisher{}
		uc := usecase.NewPenaltySweepUseCase(loanRepo, publisher, discardLogger())

		resp, err := uc.Execute(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, resp.LoansExamined)
		assert.Equal(t, 1, resp.LoansUpdated)
		assert.Equal(t, 0, resp.LoansFailed)

		require.Len(t, loanRepo.savedLoans, 1)
		saved := loanRepo.savedLoans[0]
		assert.True(t, saved.Status().Equal(valueobject.LoanStatusDefaulting))
		assert.True(t, saved.PenaltyAccrued().IsPositive())
		assert.NotEmpty(t, publisher.publishedEvents)
	})

	t.Run("save failure is counted, not fatal", func(t *testing.T) {
		stale := staleLoan(t)
		loanRepo := &mockLoanRepository{
			findOverdueFunc: func(ctx context.Context, asOf time.Time) ([]model.Loan, error) {
				return []model.Loan{stale}, nil
			},
			saveFunc: func(ctx context.Context, loan model.Loan) error {
				return fault.Conflict("version mismatch")
			},
		}
		uc := usecase.NewPenaltySweepUseCase(loanRepo, &mockEventPublisher{}, discardLogger())

		resp, err := uc.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, resp.LoansExamined)
		assert.Equal(t, 0, resp.LoansUpdated)
		assert.Equal(t, 1, resp.LoansFailed)
	})
}
