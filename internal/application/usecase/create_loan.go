package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/port"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

// CreateLoanUseCase opens a loan under a company's loan-type template and
// generates its installment schedule.
type CreateLoanUseCase struct {
	loanRepo     port.LoanRepository
	loanTypeRepo port.LoanTypeRepository
	clientRepo   port.ClientRepository
	publisher    port.EventPublisher
}

// NewCreateLoanUseCase wires dependencies.
func NewCreateLoanUseCase(
	loanRepo port.LoanRepository,
	loanTypeRepo port.LoanTypeRepository,
	clientRepo port.ClientRepository,
	publisher port.EventPublisher,
) *CreateLoanUseCase {
	return &CreateLoanUseCase{
		loanRepo:     loanRepo,
		loanTypeRepo: loanTypeRepo,
		clientRepo:   clientRepo,
		publisher:    publisher,
	}
}

// Execute creates the loan. The amortization, penalty and overpayment
// policies come from the loan-type template; principal, rate and
// periodicity come from the request. A zero installment count falls back
// to the template's suggested schedule.
func (uc *CreateLoanUseCase) Execute(ctx context.Context, req dto.CreateLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	if _, err := uc.clientRepo.FindByID(ctx, req.CompanyID, req.ClientID); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find client: %w", err)
	}

	loanType, err := uc.loanTypeRepo.FindByID(ctx, req.CompanyID, req.LoanTypeID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan type: %w", err)
	}

	currency, err := money.NewCurrency(req.Currency)
	if err != nil {
		return dto.LoanResponse{}, fault.Wrap(fault.KindValidation, err, "currency")
	}
	periodicity, err := valueobject.NewPeriodicity(req.Periodicity)
	if err != nil {
		return dto.LoanResponse{}, fault.Wrap(fault.KindValidation, err, "periodicity")
	}

	// An omitted count falls back to the product's suggested schedule.
	installments := req.InstallmentCount
	if installments == 0 {
		installments = loanType.SuggestedInstallments()
	}

	loan, err := model.NewLoan(
		req.CompanyID, req.ClientID, req.LoanTypeID,
		money.New(req.Principal, currency),
		req.RatePercent,
		periodicity,
		installments,
		loanType.Amortization(),
		loanType.PenaltyPolicy(),
		loanType.OverpaymentPolicy(),
		req.StartDate,
		"",
		now,
	)
	if err != nil {
		return dto.LoanResponse{}, err
	}

	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toLoanResponse(loan), nil
}
