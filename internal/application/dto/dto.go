package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CreateLoanRequest carries the terms for opening a new loan under a
// company's loan-type template.
type CreateLoanRequest struct {
	CompanyID        string          `json:"company_id"`
	ClientID         string          `json:"client_id"`
	LoanTypeID       string          `json:"loan_type_id"`
	Principal        decimal.Decimal `json:"principal"`
	Currency         string          `json:"currency"`
	RatePercent      decimal.Decimal `json:"rate_percent"`
	Periodicity      string          `json:"periodicity"`
	InstallmentCount int             `json:"installment_count"`
	StartDate        time.Time       `json:"start_date"`
}

// RecordPaymentRequest carries a collection event for allocation. PaymentID
// is the caller-supplied idempotency key.
type RecordPaymentRequest struct {
	CompanyID   string          `json:"company_id"`
	LoanID      string          `json:"loan_id"`
	PaymentID   string          `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Method      string          `json:"method"`
	CollectorID string          `json:"collector_id"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// AnnotatePaymentRequest corrects the reference and notes on a recorded
// payment. The monetary facts are immutable.
type AnnotatePaymentRequest struct {
	CompanyID string `json:"company_id"`
	PaymentID string `json:"payment_id"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// AdjustPenaltyRequest carries a manual penalty override.
type AdjustPenaltyRequest struct {
	CompanyID      string          `json:"company_id"`
	LoanID         string          `json:"loan_id"`
	AdjustmentType string          `json:"adjustment_type"`
	Value          decimal.Decimal `json:"value"`
	Currency       string          `json:"currency"`
	Reason         string          `json:"reason"`
	Actor          string          `json:"actor"`
}

// RefinanceLoanRequest carries the new terms for a refinancing. The new
// principal is typically the outstanding balance plus agreed additions.
type RefinanceLoanRequest struct {
	CompanyID        string          `json:"company_id"`
	LoanID           string          `json:"loan_id"`
	NewPrincipal     decimal.Decimal `json:"new_principal"`
	Currency         string          `json:"currency"`
	RatePercent      decimal.Decimal `json:"rate_percent"`
	Periodicity      string          `json:"periodicity"`
	InstallmentCount int             `json:"installment_count"`
	StartDate        time.Time       `json:"start_date"`
	Reason           string          `json:"reason,omitempty"`
}

// ReclassifyClientRequest identifies the client to re-evaluate.
type ReclassifyClientRequest struct {
	CompanyID string `json:"company_id"`
	ClientID  string `json:"client_id"`
}

// GetLoanRequest identifies a loan to retrieve.
type GetLoanRequest struct {
	CompanyID string `json:"company_id"`
	LoanID    string `json:"loan_id"`
}

// ListPenaltyAdjustmentsRequest identifies the loan whose override history
// is requested.
type ListPenaltyAdjustmentsRequest struct {
	CompanyID string `json:"company_id"`
	LoanID    string `json:"loan_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// InstallmentResponse represents one scheduled obligation.
type InstallmentResponse struct {
	Number   int             `json:"number"`
	DueDate  time.Time       `json:"due_date"`
	Capital  decimal.Decimal `json:"capital"`
	Interest decimal.Decimal `json:"interest"`
	Total    decimal.Decimal `json:"total"`
	Paid     decimal.Decimal `json:"paid"`
	PaidAt   *time.Time      `json:"paid_at,omitempty"`
	Status   string          `json:"status"`
}

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID             string                `json:"id"`
	CompanyID      string                `json:"company_id"`
	ClientID       string                `json:"client_id"`
	LoanTypeID     string                `json:"loan_type_id"`
	Principal      decimal.Decimal       `json:"principal"`
	Currency       string                `json:"currency"`
	RatePercent    decimal.Decimal       `json:"rate_percent"`
	Periodicity    string                `json:"periodicity"`
	Status         string                `json:"status"`
	StartDate      time.Time             `json:"start_date"`
	EndDate        time.Time             `json:"end_date"`
	PendingBalance decimal.Decimal       `json:"pending_balance"`
	PenaltyAccrued decimal.Decimal       `json:"penalty_accrued"`
	CreditBalance  decimal.Decimal       `json:"credit_balance"`
	OriginalLoanID string                `json:"original_loan_id,omitempty"`
	Installments   []InstallmentResponse `json:"installments"`
	Version        int                   `json:"version"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// PaymentLineResponse is one installment's share of a payment.
type PaymentLineResponse struct {
	InstallmentNumber int             `json:"installment_number"`
	Penalty           decimal.Decimal `json:"penalty"`
	Interest          decimal.Decimal `json:"interest"`
	Capital           decimal.Decimal `json:"capital"`
}

// PaymentResponse is the external representation of an applied payment.
type PaymentResponse struct {
	ID             string                `json:"id"`
	LoanID         string                `json:"loan_id"`
	ClientID       string                `json:"client_id"`
	Amount         decimal.Decimal       `json:"amount"`
	Currency       string                `json:"currency"`
	Method         string                `json:"method"`
	CollectorID    string                `json:"collector_id"`
	Reference      string                `json:"reference,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	ReceivedAt     time.Time             `json:"received_at"`
	Overpayment    decimal.Decimal       `json:"overpayment"`
	Lines          []PaymentLineResponse `json:"lines"`
	PendingBalance decimal.Decimal       `json:"pending_balance"`
	LoanStatus     string                `json:"loan_status"`
	AlreadyApplied bool                  `json:"already_applied"`
}

// PenaltyAdjustmentResponse is the audit record of a manual override.
type PenaltyAdjustmentResponse struct {
	ID             string          `json:"id"`
	LoanID         string          `json:"loan_id"`
	AdjustmentType string          `json:"adjustment_type"`
	Previous       decimal.Decimal `json:"previous"`
	Current        decimal.Decimal `json:"current"`
	Reason         string          `json:"reason"`
	Actor          string          `json:"actor"`
	AdjustedAt     time.Time       `json:"adjusted_at"`
}

// RefinanceResponse reports both sides of a completed refinancing.
type RefinanceResponse struct {
	OriginalLoan       LoanResponse    `json:"original_loan"`
	NewLoan            LoanResponse    `json:"new_loan"`
	CapitalizedBalance decimal.Decimal `json:"capitalized_balance"`
}

// ClassificationResponse reports a client's recomputed standing.
type ClassificationResponse struct {
	ClientID       string `json:"client_id"`
	Classification string `json:"classification"`
	Changed        bool   `json:"changed"`
}

// PenaltySweepResponse summarizes one run of the periodic penalty refresh.
type PenaltySweepResponse struct {
	LoansExamined int `json:"loans_examined"`
	LoansUpdated  int `json:"loans_updated"`
	LoansFailed   int `json:"loans_failed"`
}
