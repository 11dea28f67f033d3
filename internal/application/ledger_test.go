package application_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witalo/prestoras/internal/application"
	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/application/usecase"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/service"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/events"
	"github.com/witalo/prestoras/pkg/money"
)

// memoryStore is an in-memory implementation of all repository ports, so
// the facade can be exercised end to end without a database. Saves go
// through one mutex, mirroring the single writer path.
type memoryStore struct {
	mu          sync.Mutex
	loans       map[string]model.Loan
	payments    map[string]model.Payment
	clients     map[string]model.Client
	loanTypes   map[string]model.LoanType
	adjustments []model.PenaltyAdjustment

	failSaves int // remaining Save calls to fail with a Conflict
	saveCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		loans:     make(map[string]model.Loan),
		payments:  make(map[string]model.Payment),
		clients:   make(map[string]model.Client),
		loanTypes: make(map[string]model.LoanType),
	}
}

func (s *memoryStore) Save(ctx context.Context, loan model.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.failSaves > 0 {
		s.failSaves--
		return fault.Conflict("version contention on loan %s", loan.ID())
	}
	s.loans[loan.ID()] = loan.ClearEvents()
	return nil
}

func (s *memoryStore) FindByID(ctx context.Context, companyID, id string) (model.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[id]
	if !ok {
		return model.Loan{}, fault.Validation("loan %s not found", id)
	}
	return loan, nil
}

func (s *memoryStore) FindByClientID(ctx context.Context, companyID, clientID string) ([]model.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Loan
	for _, loan := range s.loans {
		if loan.ClientID() == clientID {
			out = append(out, loan)
		}
	}
	return out, nil
}

func (s *memoryStore) FindOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error) {
	return nil, nil
}

// SaveAllocation mirrors the transactional save: on a conflict neither the
// loan nor the payment is visible afterwards.
func (s *memoryStore) SaveAllocation(ctx context.Context, loan model.Loan, payment model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.failSaves > 0 {
		s.failSaves--
		return fault.Conflict("version contention on loan %s", loan.ID())
	}
	s.loans[loan.ID()] = loan.ClearEvents()
	s.payments[payment.ID()] = payment
	return nil
}

func (s *memoryStore) SaveAdjustment(ctx context.Context, loan model.Loan, record model.PenaltyAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.failSaves > 0 {
		s.failSaves--
		return fault.Conflict("version contention on loan %s", loan.ID())
	}
	s.loans[loan.ID()] = loan.ClearEvents()
	s.adjustments = append(s.adjustments, record)
	return nil
}

func (s *memoryStore) SaveRefinancing(ctx context.Context, original, successor model.Loan, record model.Refinancing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[original.ID()] = original.ClearEvents()
	s.loans[successor.ID()] = successor.ClearEvents()
	return nil
}

func (s *memoryStore) Exists(ctx context.Context, companyID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.payments[id]
	return ok, nil
}

func (s *memoryStore) FindPaymentByID(ctx context.Context, companyID, id string) (model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[id]
	if !ok {
		return model.Payment{}, fault.Validation("payment %s not found", id)
	}
	return payment, nil
}

func (s *memoryStore) FindPaymentsByLoanID(ctx context.Context, companyID, loanID string) ([]model.Payment, error) {
	return nil, nil
}

func (s *memoryStore) SaveClient(ctx context.Context, client model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ID()] = client.ClearEvents()
	return nil
}

func (s *memoryStore) FindClientByID(ctx context.Context, companyID, id string) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[id]
	if !ok {
		return model.Client{}, fault.Validation("client %s not found", id)
	}
	return client, nil
}

// Port adapters so one store serves every repository interface.

type paymentStore struct{ *memoryStore }

func (p paymentStore) FindByID(ctx context.Context, companyID, id string) (model.Payment, error) {
	return p.FindPaymentByID(ctx, companyID, id)
}
func (p paymentStore) FindByLoanID(ctx context.Context, companyID, loanID string) ([]model.Payment, error) {
	return p.FindPaymentsByLoanID(ctx, companyID, loanID)
}
func (p paymentStore) UpdateAnnotations(ctx context.Context, payment model.Payment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.payments[payment.ID()]; !ok {
		return fault.Validation("payment %s not found", payment.ID())
	}
	p.payments[payment.ID()] = payment
	return nil
}

type clientStore struct{ *memoryStore }

func (c clientStore) Save(ctx context.Context, client model.Client) error {
	return c.SaveClient(ctx, client)
}
func (c clientStore) FindByID(ctx context.Context, companyID, id string) (model.Client, error) {
	return c.FindClientByID(ctx, companyID, id)
}

type loanTypeStore struct{ *memoryStore }

func (l loanTypeStore) Save(ctx context.Context, loanType model.LoanType) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loanTypes[loanType.ID()] = loanType
	return nil
}
func (l loanTypeStore) FindByID(ctx context.Context, companyID, id string) (model.LoanType, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	loanType, ok := l.loanTypes[id]
	if !ok {
		return model.LoanType{}, fault.Validation("loan type %s not found", id)
	}
	return loanType, nil
}

type adjustmentStore struct{ *memoryStore }

func (a adjustmentStore) FindByLoanID(ctx context.Context, companyID, loanID string) ([]model.PenaltyAdjustment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []model.PenaltyAdjustment
	for _, record := range a.adjustments {
		if record.LoanID() == loanID {
			out = append(out, record)
		}
	}
	return out, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error { return nil }

func newLedger(store *memoryStore) *application.Ledger {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := nopPublisher{}
	classifier := service.NewClassifier()

	return application.NewLedger(
		usecase.NewCreateLoanUseCase(store, loanTypeStore{store}, clientStore{store}, publisher),
		usecase.NewRecordPaymentUseCase(store, paymentStore{store}, publisher),
		usecase.NewAnnotatePaymentUseCase(paymentStore{store}, store),
		usecase.NewAdjustPenaltyUseCase(store, publisher),
		usecase.NewListPenaltyAdjustmentsUseCase(store, adjustmentStore{store}),
		usecase.NewRefinanceLoanUseCase(store, loanTypeStore{store}, publisher),
		usecase.NewReclassifyClientUseCase(clientStore{store}, store, classifier, publisher),
		usecase.NewGetLoanUseCase(store),
		usecase.NewPenaltySweepUseCase(store, publisher, logger),
		logger,
	)
}

func seedLedger(t *testing.T, store *memoryStore) (model.Client, model.LoanType) {
	t.Helper()
	now := time.Now().UTC()

	client, err := model.NewClient("company-1", "Jorge Mamani", "87654321", "", now)
	require.NoError(t, err)
	client = client.ClearEvents()
	store.clients[client.ID()] = client

	loanType, err := model.NewLoanType(
		"company-1", "weekly-flat",
		valueobject.PeriodicityWeekly,
		decimal.NewFromInt(10),
		valueobject.AmortizationFlat,
		valueobject.NoPenalty(money.PEN),
		valueobject.OverpaymentStrict,
		3,
		now,
	)
	require.NoError(t, err)
	store.loanTypes[loanType.ID()] = loanType

	return client, loanType
}

func TestLedger_EndToEnd(t *testing.T) {
	store := newMemoryStore()
	client, loanType := seedLedger(t, store)
	ledger := newLedger(store)
	ctx := context.Background()

	loan, err := ledger.CreateLoan(ctx, dto.CreateLoanRequest{
		CompanyID:        "company-1",
		ClientID:         client.ID(),
		LoanTypeID:       loanType.ID(),
		Principal:        decimal.NewFromInt(900),
		Currency:         "PEN",
		RatePercent:      decimal.NewFromInt(10),
		Periodicity:      "WEEKLY",
		InstallmentCount: 3,
		StartDate:        time.Now().UTC(),
	})
	require.NoError(t, err)

	for i, paymentID := range []string{"p1", "p2", "p3"} {
		resp, err := ledger.RecordPayment(ctx, dto.RecordPaymentRequest{
			CompanyID:   "company-1",
			LoanID:      loan.ID,
			PaymentID:   paymentID,
			Amount:      decimal.NewFromInt(330),
			Currency:    "PEN",
			Method:      "YAPE",
			CollectorID: "collector-1",
		})
		require.NoError(t, err, "payment %d", i+1)
		if i == 2 {
			assert.Equal(t, "COMPLETED", resp.LoanStatus)
			assert.True(t, resp.PendingBalance.IsZero())
		}
	}

	got, err := ledger.GetLoan(ctx, dto.GetLoanRequest{CompanyID: "company-1", LoanID: loan.ID})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", got.Status)

	// The receipt reference can be corrected after the fact without
	// disturbing amounts or allocation.
	annotated, err := ledger.AnnotatePayment(ctx, dto.AnnotatePaymentRequest{
		CompanyID: "company-1",
		PaymentID: "p1",
		Reference: "REC-0001",
		Notes:     "cobrado en campo",
	})
	require.NoError(t, err)
	assert.Equal(t, "REC-0001", annotated.Reference)
	assert.True(t, decimal.NewFromInt(330).Equal(annotated.Amount))

	// Every installment settled on time keeps the client PUNCTUAL.
	cls, err := ledger.Reclassify(ctx, dto.ReclassifyClientRequest{CompanyID: "company-1", ClientID: client.ID()})
	require.NoError(t, err)
	assert.Equal(t, "PUNCTUAL", cls.Classification)
}

func TestLedger_RetriesTransientConflicts(t *testing.T) {
	store := newMemoryStore()
	client, loanType := seedLedger(t, store)
	ledger := newLedger(store)
	ctx := context.Background()

	loan, err := ledger.CreateLoan(ctx, dto.CreateLoanRequest{
		CompanyID:        "company-1",
		ClientID:         client.ID(),
		LoanTypeID:       loanType.ID(),
		Principal:        decimal.NewFromInt(900),
		Currency:         "PEN",
		RatePercent:      decimal.NewFromInt(10),
		Periodicity:      "WEEKLY",
		InstallmentCount: 3,
		StartDate:        time.Now().UTC(),
	})
	require.NoError(t, err)

	// Two transient conflicts are absorbed by the facade's bounded retry.
	store.failSaves = 2
	_, err = ledger.RecordPayment(ctx, dto.RecordPaymentRequest{
		CompanyID:   "company-1",
		LoanID:      loan.ID,
		PaymentID:   "p1",
		Amount:      decimal.NewFromInt(100),
		Currency:    "PEN",
		Method:      "CASH",
		CollectorID: "collector-1",
	})
	require.NoError(t, err)

	// A conflict on every attempt surfaces to the caller.
	store.failSaves = 100
	_, err = ledger.RecordPayment(ctx, dto.RecordPaymentRequest{
		CompanyID:   "company-1",
		LoanID:      loan.ID,
		PaymentID:   "p2",
		Amount:      decimal.NewFromInt(100),
		Currency:    "PEN",
		Method:      "CASH",
		CollectorID: "collector-1",
	})
	require.Error(t, err)
	assert.True(t, fault.IsRetryable(err))
	store.failSaves = 0
}

func TestLedger_ConcurrentPaymentsDoNotDoubleSpend(t *testing.T) {
	store := newMemoryStore()
	client, loanType := seedLedger(t, store)
	ledger := newLedger(store)
	ctx := context.Background()

	loan, err := ledger.CreateLoan(ctx, dto.CreateLoanRequest{
		CompanyID:        "company-1",
		ClientID:         client.ID(),
		LoanTypeID:       loanType.ID(),
		Principal:        decimal.NewFromInt(900),
		Currency:         "PEN",
		RatePercent:      decimal.NewFromInt(10),
		Periodicity:      "WEEKLY",
		InstallmentCount: 3,
		StartDate:        time.Now().UTC(),
	})
	require.NoError(t, err)

	// 9 collectors race 110 PEN payments against 990 owed. The per-loan
	// lock serializes them; every allocation must land.
	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := ledger.RecordPayment(ctx, dto.RecordPaymentRequest{
				CompanyID:   "company-1",
				LoanID:      loan.ID,
				PaymentID:   "race-" + string(rune('a'+n)),
				Amount:      decimal.NewFromInt(110),
				Currency:    "PEN",
				Method:      "CASH",
				CollectorID: "collector-1",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := ledger.GetLoan(ctx, dto.GetLoanRequest{CompanyID: "company-1", LoanID: loan.ID})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", got.Status)
	assert.True(t, got.PendingBalance.IsZero())
}
