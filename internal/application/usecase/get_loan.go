package usecase

import (
	"context"
	"fmt"

	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/port"
)

// GetLoanUseCase retrieves a loan with its installment schedule.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute fetches the loan.
func (uc *GetLoanUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.CompanyID, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}
