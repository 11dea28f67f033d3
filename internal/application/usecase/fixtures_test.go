package usecase_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

// The use cases stamp operations with the wall clock, so fixture loans
// start one day in the past: installments are not yet due and no penalty
// can accrue during a test run.
var testStart = time.Now().UTC().Add(-24 * time.Hour)

func pen(t *testing.T, amount string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, "PEN")
	require.NoError(t, err)
	return m
}

func testLoanType(t *testing.T, overpayment valueobject.OverpaymentPolicy) model.LoanType {
	t.Helper()
	lt, err := model.NewLoanType(
		"company-1", "monthly-flat",
		valueobject.PeriodicityMonthly,
		decimal.NewFromInt(10),
		valueobject.AmortizationFlat,
		valueobject.PenaltyPolicy{Type: valueobject.PenaltyFixed, Amount: money.FromCents(1500, money.PEN)},
		overpayment,
		3,
		testStart,
	)
	require.NoError(t, err)
	return lt
}

func testClient(t *testing.T) model.Client {
	t.Helper()
	client, err := model.NewClient("company-1", "Maria Quispe", "45678912", "+51 999 111 222", testStart)
	require.NoError(t, err)
	return client
}

// testLoan is a 900 PEN loan at 10% flat over 3 monthly installments:
// 330 per installment.
func testLoan(t *testing.T, overpayment valueobject.OverpaymentPolicy) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(
		"company-1", "client-1", "type-1",
		pen(t, "900"), decimal.NewFromInt(10),
		valueobject.PeriodicityMonthly, 3,
		valueobject.AmortizationFlat,
		valueobject.PenaltyPolicy{Type: valueobject.PenaltyFixed, Amount: money.FromCents(1500, money.PEN)},
		overpayment,
		testStart, "", testStart,
	)
	require.NoError(t, err)
	return loan.ClearEvents()
}

// staleLoan ended three months ago and has never been refreshed, so a
// wall-clock sweep will accrue penalty and mark it DEFAULTING.
func staleLoan(t *testing.T) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(
		"company-1", "client-1", "type-1",
		pen(t, "900"), decimal.NewFromInt(10),
		valueobject.PeriodicityMonthly, 3,
		valueobject.AmortizationFlat,
		valueobject.PenaltyPolicy{Type: valueobject.PenaltyFixed, Amount: money.FromCents(1500, money.PEN)},
		valueobject.OverpaymentStrict,
		time.Now().UTC().AddDate(0, -6, 0), "", time.Now().UTC().AddDate(0, -6, 0),
	)
	require.NoError(t, err)
	return loan.ClearEvents()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
