package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

func pen(t *testing.T, amount string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, "PEN")
	require.NoError(t, err)
	return m
}

func TestGenerateSchedule_FlatMonthly(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	schedule, err := model.GenerateSchedule(
		pen(t, "900"), decimal.NewFromInt(10),
		valueobject.PeriodicityMonthly, 3,
		valueobject.AmortizationFlat, start,
	)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)

	for i, ins := range schedule {
		assert.Equal(t, i+1, ins.Number)
		assert.True(t, pen(t, "300").Equal(ins.Capital), "capital of installment %d", i+1)
		assert.True(t, pen(t, "30").Equal(ins.Interest), "interest of installment %d", i+1)
		assert.True(t, ins.Status.Equal(valueobject.InstallmentStatusPending))
	}
}

func TestGenerateSchedule_CapitalSumsToPrincipalExactly(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	principal := pen(t, "1000")

	for _, count := range []int{1, 3, 7, 12, 13, 30, 52} {
		schedule, err := model.GenerateSchedule(
			principal, decimal.NewFromInt(5),
			valueobject.PeriodicityWeekly, count,
			valueobject.AmortizationFlat, start,
		)
		require.NoError(t, err, "count=%d", count)

		sum := money.Zero(money.PEN)
		for _, ins := range schedule {
			sum = sum.MustAdd(ins.Capital)
		}
		assert.True(t, principal.Equal(sum), "count=%d: capital sums to %s", count, sum)
	}
}

func TestGenerateSchedule_RemainderGoesToLastInstallment(t *testing.T) {
	schedule, err := model.GenerateSchedule(
		pen(t, "100"), decimal.NewFromInt(0),
		valueobject.PeriodicityMonthly, 3,
		valueobject.AmortizationFlat,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.True(t, pen(t, "33.33").Equal(schedule[0].Capital))
	assert.True(t, pen(t, "33.33").Equal(schedule[1].Capital))
	assert.True(t, pen(t, "33.34").Equal(schedule[2].Capital))
}

func TestGenerateSchedule_DecliningBalance(t *testing.T) {
	schedule, err := model.GenerateSchedule(
		pen(t, "900"), decimal.NewFromInt(10),
		valueobject.PeriodicityMonthly, 3,
		valueobject.AmortizationDeclining,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	// 10% on 900, then 600, then 300.
	assert.True(t, pen(t, "90").Equal(schedule[0].Interest))
	assert.True(t, pen(t, "60").Equal(schedule[1].Interest))
	assert.True(t, pen(t, "30").Equal(schedule[2].Interest))
}

func TestGenerateSchedule_MonthEndClamping(t *testing.T) {
	schedule, err := model.GenerateSchedule(
		pen(t, "300"), decimal.NewFromInt(0),
		valueobject.PeriodicityMonthly, 3,
		valueobject.AmortizationFlat,
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
}

func TestGenerateSchedule_DueDatesStrictlyIncreasing(t *testing.T) {
	schedule, err := model.GenerateSchedule(
		pen(t, "500"), decimal.NewFromInt(8),
		valueobject.PeriodicityDaily, 30,
		valueobject.AmortizationFlat,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	for i := 1; i < len(schedule); i++ {
		assert.True(t, schedule[i].DueDate.After(schedule[i-1].DueDate))
	}
}

func TestGenerateSchedule_RejectsBadInput(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := model.GenerateSchedule(money.Zero(money.PEN), decimal.NewFromInt(10),
		valueobject.PeriodicityMonthly, 3, valueobject.AmortizationFlat, start)
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	_, err = model.GenerateSchedule(pen(t, "100"), decimal.NewFromInt(-1),
		valueobject.PeriodicityMonthly, 3, valueobject.AmortizationFlat, start)
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	_, err = model.GenerateSchedule(pen(t, "100"), decimal.NewFromInt(10),
		valueobject.PeriodicityMonthly, 0, valueobject.AmortizationFlat, start)
	assert.True(t, fault.IsKind(err, fault.KindValidation))

	_, err = model.GenerateSchedule(pen(t, "100"), decimal.NewFromInt(10),
		valueobject.Periodicity{}, 3, valueobject.AmortizationFlat, start)
	assert.True(t, fault.IsKind(err, fault.KindValidation))
}
