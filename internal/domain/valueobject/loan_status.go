package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusActive     = "ACTIVE"
	loanStatusDefaulting = "DEFAULTING"
	loanStatusCompleted  = "COMPLETED"
	loanStatusRefinanced = "REFINANCED"
	loanStatusCancelled  = "CANCELLED"
)

var (
	LoanStatusActive     = LoanStatus{value: loanStatusActive}
	LoanStatusDefaulting = LoanStatus{value: loanStatusDefaulting}
	LoanStatusCompleted  = LoanStatus{value: loanStatusCompleted}
	LoanStatusRefinanced = LoanStatus{value: loanStatusRefinanced}
	LoanStatusCancelled  = LoanStatus{value: loanStatusCancelled}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusActive:     LoanStatusActive,
	loanStatusDefaulting: LoanStatusDefaulting,
	loanStatusCompleted:  LoanStatusCompleted,
	loanStatusRefinanced: LoanStatusRefinanced,
	loanStatusCancelled:  LoanStatusCancelled,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// AcceptsPayments reports whether the loan may still receive collections.
// REFINANCED, CANCELLED and COMPLETED loans are closed to new payments.
func (s LoanStatus) AcceptsPayments() bool {
	return s.value == loanStatusActive || s.value == loanStatusDefaulting
}

// IsTerminal reports whether the status admits no further transitions.
func (s LoanStatus) IsTerminal() bool {
	return s.value == loanStatusCompleted || s.value == loanStatusRefinanced || s.value == loanStatusCancelled
}

// ---------------------------------------------------------------------------
// InstallmentStatus – immutable value object
// ---------------------------------------------------------------------------

// InstallmentStatus represents the payment state of a single installment.
type InstallmentStatus struct {
	value string
}

const (
	installmentStatusPending = "PENDING"
	installmentStatusPartial = "PARTIAL"
	installmentStatusPaid    = "PAID"
	installmentStatusOverdue = "OVERDUE"
)

var (
	InstallmentStatusPending = InstallmentStatus{value: installmentStatusPending}
	InstallmentStatusPartial = InstallmentStatus{value: installmentStatusPartial}
	InstallmentStatusPaid    = InstallmentStatus{value: installmentStatusPaid}
	InstallmentStatusOverdue = InstallmentStatus{value: installmentStatusOverdue}
)

var validInstallmentStatuses = map[string]InstallmentStatus{
	installmentStatusPending: InstallmentStatusPending,
	installmentStatusPartial: InstallmentStatusPartial,
	installmentStatusPaid:    InstallmentStatusPaid,
	installmentStatusOverdue: InstallmentStatusOverdue,
}

// NewInstallmentStatus creates an InstallmentStatus from a raw string.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	v, ok := validInstallmentStatuses[s]
	if !ok {
		return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s InstallmentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s InstallmentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s InstallmentStatus) Equal(other InstallmentStatus) bool { return s.value == other.value }

// Outstanding reports whether the installment can still absorb funds.
func (s InstallmentStatus) Outstanding() bool {
	return s.value == installmentStatusPending ||
		s.value == installmentStatusPartial ||
		s.value == installmentStatusOverdue
}

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var ErrInvalidStatusTransition = errors.New("invalid status transition")
