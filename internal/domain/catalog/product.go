package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a storefront item. Products are created by the external catalog
// sync and are read-only to the calculation engine, which only needs the
// price and the external price-category reference.
type Product struct {
	shared.BaseAggregateRoot
	Name           string
	Description    string
	Price          decimal.Decimal
	CategoryID     *uuid.UUID
	GristProductID int64
	IsActive       bool
}

// NewProduct creates a product after validating its fields.
func NewProduct(name string, price decimal.Decimal, gristProductID int64) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Price:             price,
		GristProductID:    gristProductID,
		IsActive:          true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks product invariants.
func (p *Product) Validate() error {
	if p.Name == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if p.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRODUCT", "Product price cannot be negative")
	}
	return nil
}

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	shared.Repository[Product]
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindByGristID(ctx context.Context, gristProductID int64) (*Product, error)
}

// Category groups products for storefront browsing.
type Category struct {
	shared.BaseAggregateRoot
	Name string
}

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	shared.Repository[Category]
}
