package installment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTariff(t *testing.T) {
	t.Run("creates active tariff with valid inputs", func(t *testing.T) {
		tariff, err := NewTariff("6 months", 6, 3, "standard", decimal.NewFromFloat(1.1))
		require.NoError(t, err)
		assert.Equal(t, "6 months", tariff.Name)
		assert.Equal(t, 6, tariff.PaymentsCount)
		assert.Equal(t, 3, tariff.OffsetDays)
		assert.True(t, tariff.IsActive)
		assert.NotEmpty(t, tariff.ID)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewTariff("", 6, 0, "standard", decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("fails with zero payments count", func(t *testing.T) {
		_, err := NewTariff("bad", 0, 0, "standard", decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payments count")
	})

	t.Run("fails with negative offset days", func(t *testing.T) {
		_, err := NewTariff("bad", 6, -1, "standard", decimal.NewFromInt(1))
		require.Error(t, err)
	})

	t.Run("fails with non-positive coefficient", func(t *testing.T) {
		_, err := NewTariff("bad", 6, 0, "standard", decimal.Zero)
		require.Error(t, err)
	})
}
