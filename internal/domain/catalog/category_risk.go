package catalog

import (
	"context"

	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductCategoryRisk maps an external (risk category, price category) pair to
// the fraction of a line total required as minimum contribution. Rows are
// maintained by the risk-matrix sync; absence of a matching row means zero
// contribution for that product.
type ProductCategoryRisk struct {
	shared.BaseAggregateRoot
	Name             string
	RiskCategoryRef  int64
	PriceCategoryRef int64
	Percentage       decimal.Decimal
}

// NewProductCategoryRisk creates a risk-matrix row after validating the
// percentage is a fraction in [0, 1].
func NewProductCategoryRisk(name string, riskRef, priceRef int64, percentage decimal.Decimal) (*ProductCategoryRisk, error) {
	r := &ProductCategoryRisk{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		RiskCategoryRef:   riskRef,
		PriceCategoryRef:  priceRef,
		Percentage:        percentage,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks risk-matrix row invariants.
func (r *ProductCategoryRisk) Validate() error {
	if r.Percentage.IsNegative() || r.Percentage.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_RISK_ROW", "Percentage must be between 0 and 1")
	}
	return nil
}

// ProductCategoryRiskRepository defines persistence operations for the risk matrix
type ProductCategoryRiskRepository interface {
	shared.Repository[ProductCategoryRisk]
	FindByCategoryRefs(ctx context.Context, riskRef, priceRef int64) (*ProductCategoryRisk, error)
}
