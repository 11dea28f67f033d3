package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witalo/prestoras/pkg/money"
)

func TestNewCurrency(t *testing.T) {
	t.Run("accepts a valid code", func(t *testing.T) {
		c, err := money.NewCurrency("PEN")
		require.NoError(t, err)
		assert.Equal(t, "PEN", c.Code())
	})

	t.Run("rejects lowercase and wrong lengths", func(t *testing.T) {
		for _, code := range []string{"pen", "PE", "SOLES", ""} {
			_, err := money.NewCurrency(code)
			assert.Error(t, err, "code %q should be rejected", code)
		}
	})
}

func TestNew_QuantizesToCents(t *testing.T) {
	m := money.New(decimal.RequireFromString("10.005"), money.PEN)
	assert.Equal(t, "10.01 PEN", m.String())
	assert.Equal(t, int64(1001), m.Cents())
}

func TestAddSubtract(t *testing.T) {
	a := money.FromCents(1050, money.PEN)
	b := money.FromCents(250, money.PEN)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), sum.Cents())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(800), diff.Cents())

	t.Run("currency mismatch fails", func(t *testing.T) {
		_, err := a.Add(money.FromCents(100, money.USD))
		assert.Error(t, err)
		_, err = a.Subtract(money.FromCents(100, money.USD))
		assert.Error(t, err)
	})
}

func TestSplitEven(t *testing.T) {
	t.Run("remainder goes to the final part", func(t *testing.T) {
		m := money.FromCents(1000, money.PEN) // 10.00 into 3
		parts, err := m.SplitEven(3)
		require.NoError(t, err)
		require.Len(t, parts, 3)
		assert.Equal(t, int64(333), parts[0].Cents())
		assert.Equal(t, int64(333), parts[1].Cents())
		assert.Equal(t, int64(334), parts[2].Cents())
	})

	t.Run("parts always sum exactly to the whole", func(t *testing.T) {
		m := money.FromCents(99999, money.PEN)
		for n := 1; n <= 60; n++ {
			parts, err := m.SplitEven(n)
			require.NoError(t, err)
			total := money.Zero(money.PEN)
			for _, p := range parts {
				total = total.MustAdd(p)
			}
			assert.True(t, total.Equal(m), "split into %d parts lost cents: %s", n, total)
		}
	})

	t.Run("rejects non-positive part counts", func(t *testing.T) {
		_, err := money.FromCents(100, money.PEN).SplitEven(0)
		assert.Error(t, err)
	})
}

func TestMulRate(t *testing.T) {
	principal := money.FromCents(90000, money.PEN) // 900.00
	rate := decimal.RequireFromString("0.10")
	assert.Equal(t, int64(9000), principal.MulRate(rate).Cents())
}

func TestComparisons(t *testing.T) {
	small := money.FromCents(100, money.PEN)
	big := money.FromCents(200, money.PEN)

	assert.True(t, small.LessThan(big))
	assert.True(t, big.GreaterThan(small))
	assert.True(t, small.Equal(small.Min(big)))
	assert.False(t, small.Equal(big))
	assert.True(t, money.Zero(money.PEN).IsZero())
	assert.True(t, small.IsPositive())
	assert.True(t, money.Zero(money.PEN).MustSubtract(small).IsNegative())
}
