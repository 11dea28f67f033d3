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

// maxLineageHops bounds the refinancing chain walk. A chain longer than
// this indicates corrupted lineage, not a legitimate history.
const maxLineageHops = 100

// RefinanceLoanUseCase closes a loan and opens its successor atomically,
// preserving the lineage between them.
type RefinanceLoanUseCase struct {
	loanRepo     port.LoanRepository
	loanTypeRepo port.LoanTypeRepository
	publisher    port.EventPublisher
}

// NewRefinanceLoanUseCase wires dependencies.
func NewRefinanceLoanUseCase(
	loanRepo port.LoanRepository,
	loanTypeRepo port.LoanTypeRepository,
	publisher port.EventPublisher,
) *RefinanceLoanUseCase {
	return &RefinanceLoanUseCase{
		loanRepo:     loanRepo,
		loanTypeRepo: loanTypeRepo,
		publisher:    publisher,
	}
}

// Execute refinances the loan: the source transitions to REFINANCED with
// its unpaid installments left as historical record, and a new loan is
// created under the new terms with original_loan pointing at the source.
// Both writes commit in one transaction or not at all.
func (uc *RefinanceLoanUseCase) Execute(ctx context.Context, req dto.RefinanceLoanRequest) (dto.RefinanceResponse, error) {
	now := time.Now().UTC()

	currency, err := money.NewCurrency(req.Currency)
	if err != nil {
		return dto.RefinanceResponse{}, fault.Wrap(fault.KindValidation, err, "currency")
	}
	periodicity, err := valueobject.NewPeriodicity(req.Periodicity)
	if err != nil {
		return dto.RefinanceResponse{}, fault.Wrap(fault.KindValidation, err, "periodicity")
	}

	original, err := uc.loanRepo.FindByID(ctx, req.CompanyID, req.LoanID)
	if err != nil {
		return dto.RefinanceResponse{}, fmt.Errorf("find loan: %w", err)
	}

	if err := uc.verifyLineage(ctx, original); err != nil {
		return dto.RefinanceResponse{}, err
	}

	original = original.RefreshPenalty(now)
	capitalized := original.PendingBalance()
	if !capitalized.IsPositive() {
		return dto.RefinanceResponse{}, fault.State("loan %s has no pending balance to refinance", original.ID())
	}

	loanType, err := uc.loanTypeRepo.FindByID(ctx, req.CompanyID, original.LoanTypeID())
	if err != nil {
		return dto.RefinanceResponse{}, fmt.Errorf("find loan type: %w", err)
	}

	successor, err := model.NewLoan(
		req.CompanyID, original.ClientID(), original.LoanTypeID(),
		money.New(req.NewPrincipal, currency),
		req.RatePercent,
		periodicity,
		req.InstallmentCount,
		loanType.Amortization(),
		loanType.PenaltyPolicy(),
		loanType.OverpaymentPolicy(),
		req.StartDate,
		original.ID(),
		now,
	)
	if err != nil {
		return dto.RefinanceResponse{}, err
	}

	original, err = original.MarkRefinanced(successor.ID(), now)
	if err != nil {
		return dto.RefinanceResponse{}, err
	}

	record := model.NewRefinancing(
		req.CompanyID, original.ClientID(), original.ID(), successor.ID(),
		capitalized, successor.Principal(), successor.RatePercent(), req.Reason, now,
	)

	if err := uc.loanRepo.SaveRefinancing(ctx, original, successor, record); err != nil {
		return dto.RefinanceResponse{}, fmt.Errorf("save refinancing: %w", err)
	}

	evts := append(original.DomainEvents(), successor.DomainEvents()...)
	if err := uc.publisher.Publish(ctx, evts...); err != nil {
		return dto.RefinanceResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return dto.RefinanceResponse{
		OriginalLoan:       toLoanResponse(original),
		NewLoan:            toLoanResponse(successor),
		CapitalizedBalance: capitalized.Amount(),
	}, nil
}

// verifyLineage walks the original_loan chain and fails with an Integrity
// fault if it does not terminate within the hop bound.
func (uc *RefinanceLoanUseCase) verifyLineage(ctx context.Context, loan model.Loan) error {
	seen := map[string]bool{loan.ID(): true}
	current := loan
	for hops := 0; current.OriginalLoanID() != ""; hops++ {
		if hops >= maxLineageHops {
			return fault.Integrity("refinancing lineage of loan %s exceeds %d hops", loan.ID(), maxLineageHops)
		}
		predecessor, err := uc.loanRepo.FindByID(ctx, loan.CompanyID(), current.OriginalLoanID())
		if err != nil {
			return fmt.Errorf("walk lineage: %w", err)
		}
		if seen[predecessor.ID()] {
			return fault.Integrity("refinancing lineage of loan %s contains a cycle at %s", loan.ID(), predecessor.ID())
		}
		seen[predecessor.ID()] = true
		current = predecessor
	}
	return nil
}
