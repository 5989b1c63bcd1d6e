package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/order"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/isell/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyAddressRepository implements CompanyAddressRepository using GORM
type GormCompanyAddressRepository struct {
	db *gorm.DB
}

// NewGormCompanyAddressRepository creates a new GormCompanyAddressRepository
func NewGormCompanyAddressRepository(db *gorm.DB) *GormCompanyAddressRepository {
	return &GormCompanyAddressRepository{db: db}
}

// FindByID finds a company address by its ID
func (r *GormCompanyAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.CompanyAddress, error) {
	var model models.CompanyAddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all company addresses matching the filter
func (r *GormCompanyAddressRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.CompanyAddress, error) {
	var rows []models.CompanyAddressModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.CompanyAddressModel{}), filter, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCompanyAddresses(rows), nil
}

// FindActive finds the addresses currently offered as pickup points
func (r *GormCompanyAddressRepository) FindActive(ctx context.Context) ([]order.CompanyAddress, error) {
	var rows []models.CompanyAddressModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCompanyAddresses(rows), nil
}

// Save creates or updates a company address
func (r *GormCompanyAddressRepository) Save(ctx context.Context, address *order.CompanyAddress) error {
	model := &models.CompanyAddressModel{}
	model.FromDomain(address)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a company address
func (r *GormCompanyAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CompanyAddressModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts company addresses matching the filter
func (r *GormCompanyAddressRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applySearch(r.db.WithContext(ctx).Model(&models.CompanyAddressModel{}), filter, "name")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toCompanyAddresses(rows []models.CompanyAddressModel) []order.CompanyAddress {
	addresses := make([]order.CompanyAddress, 0, len(rows))
	for i := range rows {
		addresses = append(addresses, *rows[i].ToDomain())
	}
	return addresses
}

// Ensure GormCompanyAddressRepository implements CompanyAddressRepository
var _ order.CompanyAddressRepository = (*GormCompanyAddressRepository)(nil)
