package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(10.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(10.50)))
	})

	t.Run("fails with empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("parses from string", func(t *testing.T) {
		m, err := NewMoneyFromString("99.99", USD)
		require.NoError(t, err)
		assert.Equal(t, "99.99", m.StringFixed(2))
	})

	t.Run("rejects malformed string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	ten := NewMoneyUSD(decimal.NewFromInt(10))
	three := NewMoneyUSD(decimal.NewFromInt(3))

	t.Run("add", func(t *testing.T) {
		sum, err := ten.Add(three)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(13)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := ten.Subtract(three)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(7)))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		eur := Zero(EUR)
		_, err := ten.Add(eur)
		assert.Error(t, err)
		_, err = ten.Subtract(eur)
		assert.Error(t, err)
	})

	t.Run("multiply by fraction", func(t *testing.T) {
		half := ten.Multiply(decimal.NewFromFloat(0.5))
		assert.True(t, half.Amount().Equal(decimal.NewFromInt(5)))
	})
}

func TestMoney_Split(t *testing.T) {
	t.Run("splits 10.00 into 3 with last share absorbing residual", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(10.00)
		parts, err := m.Split(3)
		require.NoError(t, err)
		require.Len(t, parts, 3)

		assert.Equal(t, "3.33", parts[0].StringFixed(2))
		assert.Equal(t, "3.33", parts[1].StringFixed(2))
		assert.Equal(t, "3.34", parts[2].StringFixed(2))

		sum := ZeroUSD()
		for _, p := range parts {
			sum = sum.MustAdd(p)
		}
		assert.True(t, sum.Equals(m))
	})

	t.Run("even split has no residual", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(9.00)
		parts, err := m.Split(3)
		require.NoError(t, err)
		for _, p := range parts {
			assert.Equal(t, "3.00", p.StringFixed(2))
		}
	})

	t.Run("single part returns original", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(7.77)
		parts, err := m.Split(1)
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.True(t, parts[0].Equals(m))
	})

	t.Run("rejects non-positive parts", func(t *testing.T) {
		_, err := NewMoneyUSDFromFloat(1).Split(0)
		assert.Error(t, err)
	})
}

func TestMoney_JSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(12.34)
		data, err := json.Marshal(m)
		require.NoError(t, err)

		var back Money
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, back.Equals(m))
	})

	t.Run("empty currency defaults", func(t *testing.T) {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(`{"amount":"5"}`), &m))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})
}

func TestMoney_ScanValue(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.50"))
	assert.Equal(t, "42.50", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "42.5", v)

	assert.Error(t, m.Scan(12345))
}
