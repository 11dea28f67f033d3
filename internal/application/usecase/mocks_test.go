package usecase_test

import (
	"context"
	"time"

	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/pkg/events"
)

// ---------------------------------------------------------------------------
// Function-field mocks for the repository and publisher ports
// ---------------------------------------------------------------------------

type mockLoanRepository struct {
	findByIDFunc       func(ctx context.Context, companyID, id string) (model.Loan, error)
	findByClientIDFunc func(ctx context.Context, companyID, clientID string) ([]model.Loan, error)
	findOverdueFunc    func(ctx context.Context, asOf time.Time) ([]model.Loan, error)
	saveFunc           func(ctx context.Context, loan model.Loan) error

	savedLoans        []model.Loan
	savedPayments     []model.Payment
	savedAdjustments  []model.PenaltyAdjustment
	savedRefinancings []model.Refinancing
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, loan); err != nil {
			return err
		}
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) SaveAllocation(ctx context.Context, loan model.Loan, payment model.Payment) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, loan); err != nil {
			return err
		}
	}
	m.savedLoans = append(m.savedLoans, loan)
	m.savedPayments = append(m.savedPayments, payment)
	return nil
}

func (m *mockLoanRepository) SaveAdjustment(ctx context.Context, loan model.Loan, record model.PenaltyAdjustment) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, loan); err != nil {
			return err
		}
	}
	m.savedLoans = append(m.savedLoans, loan)
	m.savedAdjustments = append(m.savedAdjustments, record)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, companyID, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, companyID, id)
	}
	return model.Loan{}, fault.Validation("loan %s not found", id)
}

func (m *mockLoanRepository) FindByClientID(ctx context.Context, companyID, clientID string) ([]model.Loan, error) {
	if m.findByClientIDFunc != nil {
		return m.findByClientIDFunc(ctx, companyID, clientID)
	}
	return nil, nil
}

func (m *mockLoanRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error) {
	if m.findOverdueFunc != nil {
		return m.findOverdueFunc(ctx, asOf)
	}
	return nil, nil
}

func (m *mockLoanRepository) SaveRefinancing(ctx context.Context, original, successor model.Loan, record model.Refinancing) error {
	m.savedLoans = append(m.savedLoans, original, successor)
	m.savedRefinancings = append(m.savedRefinancings, record)
	return nil
}

type mockPaymentRepository struct {
	existsFunc   func(ctx context.Context, companyID, id string) (bool, error)
	findByIDFunc func(ctx context.Context, companyID, id string) (model.Payment, error)

	annotatedPayments []model.Payment
}

func (m *mockPaymentRepository) Exists(ctx context.Context, companyID, id string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, companyID, id)
	}
	return false, nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, companyID, id string) (model.Payment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, companyID, id)
	}
	return model.Payment{}, fault.Validation("payment %s not found", id)
}

func (m *mockPaymentRepository) FindByLoanID(ctx context.Context, companyID, loanID string) ([]model.Payment, error) {
	return nil, nil
}

func (m *mockPaymentRepository) UpdateAnnotations(ctx context.Context, payment model.Payment) error {
	m.annotatedPayments = append(m.annotatedPayments, payment)
	return nil
}

type mockClientRepository struct {
	findByIDFunc func(ctx context.Context, companyID, id string) (model.Client, error)

	savedClients []model.Client
}

func (m *mockClientRepository) Save(ctx context.Context, client model.Client) error {
	m.savedClients = append(m.savedClients, client)
	return nil
}

func (m *mockClientRepository) FindByID(ctx context.Context, companyID, id string) (model.Client, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, companyID, id)
	}
	return model.Client{}, fault.Validation("client %s not found", id)
}

type mockLoanTypeRepository struct {
	findByIDFunc func(ctx context.Context, companyID, id string) (model.LoanType, error)
}

func (m *mockLoanTypeRepository) Save(ctx context.Context, loanType model.LoanType) error {
	return nil
}

func (m *mockLoanTypeRepository) FindByID(ctx context.Context, companyID, id string) (model.LoanType, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, companyID, id)
	}
	return model.LoanType{}, fault.Validation("loan type %s not found", id)
}

type mockAdjustmentRepository struct {
	records []model.PenaltyAdjustment
}

func (m *mockAdjustmentRepository) FindByLoanID(ctx context.Context, companyID, loanID string) ([]model.PenaltyAdjustment, error) {
	return m.records, nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	publishErr      error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}
