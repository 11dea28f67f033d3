package usecase

import (
	"github.com/witalo/prestoras/internal/application/dto"
	"github.com/witalo/prestoras/internal/domain/model"
)

func toLoanResponse(loan model.Loan) dto.LoanResponse {
	installments := loan.Installments()
	out := make([]dto.InstallmentResponse, 0, len(installments))
	for _, ins := range installments {
		out = append(out, dto.InstallmentResponse{
			Number:   ins.Number,
			DueDate:  ins.DueDate,
			Capital:  ins.Capital.Amount(),
			Interest: ins.Interest.Amount(),
			Total:    ins.Total().Amount(),
			Paid:     ins.Paid.Amount(),
			PaidAt:   ins.PaidAt,
			Status:   ins.Status.String(),
		})
	}

	return dto.LoanResponse{
		ID:             loan.ID(),
		CompanyID:      loan.CompanyID(),
		ClientID:       loan.ClientID(),
		LoanTypeID:     loan.LoanTypeID(),
		Principal:      loan.Principal().Amount(),
		Currency:       loan.Principal().Currency().Code(),
		RatePercent:    loan.RatePercent(),
		Periodicity:    loan.Periodicity().String(),
		Status:         loan.Status().String(),
		StartDate:      loan.StartDate(),
		EndDate:        loan.EndDate(),
		PendingBalance: loan.PendingBalance().Amount(),
		PenaltyAccrued: loan.PenaltyAccrued().Amount(),
		CreditBalance:  loan.CreditBalance().Amount(),
		OriginalLoanID: loan.OriginalLoanID(),
		Installments:   out,
		Version:        loan.Version(),
		CreatedAt:      loan.CreatedAt(),
		UpdatedAt:      loan.UpdatedAt(),
	}
}

func toPaymentResponse(payment model.Payment, loan model.Loan, alreadyApplied bool) dto.PaymentResponse {
	lines := make([]dto.PaymentLineResponse, 0, len(payment.Lines()))
	for _, l := range payment.Lines() {
		lines = append(lines, dto.PaymentLineResponse{
			InstallmentNumber: l.InstallmentNumber,
			Penalty:           l.Penalty.Amount(),
			Interest:          l.Interest.Amount(),
			Capital:           l.Capital.Amount(),
		})
	}

	return dto.PaymentResponse{
		ID:             payment.ID(),
		LoanID:         payment.LoanID(),
		ClientID:       payment.ClientID(),
		Amount:         payment.Amount().Amount(),
		Currency:       payment.Amount().Currency().Code(),
		Method:         payment.Method().String(),
		CollectorID:    payment.CollectorID(),
		Reference:      payment.Reference(),
		Notes:          payment.Notes(),
		ReceivedAt:     payment.ReceivedAt(),
		Overpayment:    payment.Overpayment().Amount(),
		Lines:          lines,
		PendingBalance: loan.PendingBalance().Amount(),
		LoanStatus:     loan.Status().String(),
		AlreadyApplied: alreadyApplied,
	}
}
