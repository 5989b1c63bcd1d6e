package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/installment"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/isell/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTariffRepository implements TariffRepository using GORM
type GormTariffRepository struct {
	db *gorm.DB
}

// NewGormTariffRepository creates a new GormTariffRepository
func NewGormTariffRepository(db *gorm.DB) *GormTariffRepository {
	return &GormTariffRepository{db: db}
}

// FindByID finds a tariff by its ID
func (r *GormTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*installment.Tariff, error) {
	var model models.TariffModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByGristID finds a tariff by its external Grist record ID
func (r *GormTariffRepository) FindByGristID(ctx context.Context, gristTariffID int64) (*installment.Tariff, error) {
	var model models.TariffModel
	if err := r.db.WithContext(ctx).
		Where("grist_tariff_id = ?", gristTariffID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all tariffs matching the filter
func (r *GormTariffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]installment.Tariff, error) {
	var rows []models.TariffModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.TariffModel{}), filter, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTariffs(rows), nil
}

// FindActive finds active tariffs matching the filter, newest first
func (r *GormTariffRepository) FindActive(ctx context.Context, filter shared.Filter) ([]installment.Tariff, error) {
	var rows []models.TariffModel
	query := r.db.WithContext(ctx).
		Model(&models.TariffModel{}).
		Where("is_active = ?", true)
	query = applyFilter(query, filter, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTariffs(rows), nil
}

// Save creates or updates a tariff
func (r *GormTariffRepository) Save(ctx context.Context, tariff *installment.Tariff) error {
	model := models.TariffModelFromDomain(tariff)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a tariff
func (r *GormTariffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TariffModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts tariffs matching the filter
func (r *GormTariffRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applySearch(r.db.WithContext(ctx).Model(&models.TariffModel{}), filter, "name")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toTariffs(rows []models.TariffModel) []installment.Tariff {
	tariffs := make([]installment.Tariff, 0, len(rows))
	for i := range rows {
		tariffs = append(tariffs, *rows[i].ToDomain())
	}
	return tariffs
}

// applySearch applies the filter's search term against a column
func applySearch(query *gorm.DB, filter shared.Filter, searchColumn string) *gorm.DB {
	if filter.Search != "" && searchColumn != "" {
		query = query.Where(searchColumn+" LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// applyFilter applies search, pagination and ordering from the filter
func applyFilter(query *gorm.DB, filter shared.Filter, searchColumn string) *gorm.DB {
	query = applySearch(query, filter, searchColumn)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	}

	return query
}

// Ensure GormTariffRepository implements TariffRepository
var _ installment.TariffRepository = (*GormTariffRepository)(nil)
