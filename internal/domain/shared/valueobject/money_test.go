package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), CRD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, CRD, m.Currency())
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewCreditsFromInt(100)
	b := NewCreditsFromInt(15)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equals(NewCreditsFromInt(115)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equals(NewCreditsFromInt(85)))

	product := a.Multiply(decimal.NewFromFloat(0.15))
	assert.True(t, product.Equals(NewCreditsFromInt(15)))
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	crd := NewCreditsFromInt(1)
	usd, err := NewMoney(decimal.NewFromInt(1), USD)
	require.NoError(t, err)

	_, err = crd.Add(usd)
	assert.Error(t, err)
	_, err = crd.Subtract(usd)
	assert.Error(t, err)
	_, err = crd.LessThan(usd)
	assert.Error(t, err)
}

func TestMoneyExactness(t *testing.T) {
	// 5% of 0.1 must round-trip exactly: deposit == refund + penalty
	deposit, err := NewCreditsFromString("0.1")
	require.NoError(t, err)

	penalty := deposit.Multiply(decimal.NewFromFloat(0.05))
	refund := deposit.MustSubtract(penalty)
	assert.True(t, refund.MustAdd(penalty).Equals(deposit))
}

func TestMoneyComparisons(t *testing.T) {
	small := NewCreditsFromInt(5)
	big := NewCreditsFromInt(10)

	less, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, less)

	gte, err := big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, ZeroCredits().IsZero())
	assert.True(t, big.IsPositive())
	assert.True(t, ZeroCredits().MustSubtract(big).IsNegative())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m, err := NewCreditsFromString("42.50")
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.5","currency":"CRD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("12.34"))
	assert.Equal(t, DefaultCurrency, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("12.34")))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(3.14))
}
