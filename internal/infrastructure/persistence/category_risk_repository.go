package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/catalog"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/isell/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductCategoryRiskRepository implements ProductCategoryRiskRepository using GORM
type GormProductCategoryRiskRepository struct {
	db *gorm.DB
}

// NewGormProductCategoryRiskRepository creates a new GormProductCategoryRiskRepository
func NewGormProductCategoryRiskRepository(db *gorm.DB) *GormProductCategoryRiskRepository {
	return &GormProductCategoryRiskRepository{db: db}
}

// FindByID finds a risk-matrix row by its ID
func (r *GormProductCategoryRiskRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductCategoryRisk, error) {
	var model models.ProductCategoryRiskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCategoryRefs finds the row for a (risk category, price category) pair.
func (r *GormProductCategoryRiskRepository) FindByCategoryRefs(ctx context.Context, riskRef, priceRef int64) (*catalog.ProductCategoryRisk, error) {
	var model models.ProductCategoryRiskModel
	if err := r.db.WithContext(ctx).
		Where("risk_category_ref = ? AND price_category_ref = ?", riskRef, priceRef).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all risk-matrix rows matching the filter
func (r *GormProductCategoryRiskRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductCategoryRisk, error) {
	var rows []models.ProductCategoryRiskModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.ProductCategoryRiskModel{}), filter, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]catalog.ProductCategoryRisk, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result, nil
}

// Save creates or updates a risk-matrix row
func (r *GormProductCategoryRiskRepository) Save(ctx context.Context, row *catalog.ProductCategoryRisk) error {
	model := models.ProductCategoryRiskModelFromDomain(row)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a risk-matrix row
func (r *GormProductCategoryRiskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductCategoryRiskModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts risk-matrix rows matching the filter
func (r *GormProductCategoryRiskRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applySearch(r.db.WithContext(ctx).Model(&models.ProductCategoryRiskModel{}), filter, "name")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormProductCategoryRiskRepository implements ProductCategoryRiskRepository
var _ catalog.ProductCategoryRiskRepository = (*GormProductCategoryRiskRepository)(nil)
