package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/catalog"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRiskRow(t *testing.T, riskRef, priceRef int64, pct string) *catalog.ProductCategoryRisk {
	t.Helper()
	row, err := catalog.NewProductCategoryRisk("test row", riskRef, priceRef, decimal.RequireFromString(pct))
	require.NoError(t, err)
	return row
}

func TestGormProductCategoryRiskRepository_FindByCategoryRefs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductCategoryRiskRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestRiskRow(t, 1, 10, "0.2")))
	require.NoError(t, repo.Save(ctx, newTestRiskRow(t, 1, 20, "0.5")))
	require.NoError(t, repo.Save(ctx, newTestRiskRow(t, 2, 10, "0.1")))

	t.Run("exact pair match", func(t *testing.T) {
		row, err := repo.FindByCategoryRefs(ctx, 1, 20)
		require.NoError(t, err)
		assert.True(t, row.Percentage.Equal(decimal.RequireFromString("0.5")))
	})

	t.Run("no row for pair", func(t *testing.T) {
		row, err := repo.FindByCategoryRefs(ctx, 2, 20)
		assert.Nil(t, row)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductCategoryRiskRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductCategoryRiskRepository(db)
	ctx := context.Background()

	row := newTestRiskRow(t, 3, 30, "0.25")
	require.NoError(t, repo.Save(ctx, row))

	row.Percentage = decimal.RequireFromString("0.35")
	require.NoError(t, repo.Save(ctx, row))

	found, err := repo.FindByCategoryRefs(ctx, 3, 30)
	require.NoError(t, err)
	assert.True(t, found.Percentage.Equal(decimal.RequireFromString("0.35")))

	count, err := repo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormProductCategoryRiskRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductCategoryRiskRepository(db)
	ctx := context.Background()

	row := newTestRiskRow(t, 4, 40, "0.4")
	require.NoError(t, repo.Save(ctx, row))
	require.NoError(t, repo.Delete(ctx, row.ID))
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}
