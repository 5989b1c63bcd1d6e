package installment

import (
	"context"

	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Tariff is an immutable payment-plan descriptor. Tariffs are created by the
// catalog import and are read-only to the calculation engine.
type Tariff struct {
	shared.BaseAggregateRoot
	Name          string
	PaymentsCount int
	OffsetDays    int
	Type          string
	Coefficient   decimal.Decimal
	GristTariffID int64
	IsActive      bool
}

// NewTariff creates a tariff after validating its plan parameters.
func NewTariff(name string, paymentsCount, offsetDays int, tariffType string, coefficient decimal.Decimal) (*Tariff, error) {
	t := &Tariff{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		PaymentsCount:     paymentsCount,
		OffsetDays:        offsetDays,
		Type:              tariffType,
		Coefficient:       coefficient,
		IsActive:          true,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the tariff is usable by the payment calculator.
// The calculator divides by PaymentsCount, so zero must never reach it.
func (t *Tariff) Validate() error {
	if t.Name == "" {
		return shared.NewDomainError("INVALID_TARIFF", "Tariff name is required")
	}
	if t.PaymentsCount <= 0 {
		return shared.NewDomainError("INVALID_TARIFF", "Tariff payments count must be positive")
	}
	if t.OffsetDays < 0 {
		return shared.NewDomainError("INVALID_TARIFF", "Tariff offset days cannot be negative")
	}
	if t.Coefficient.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_TARIFF", "Tariff coefficient must be positive")
	}
	return nil
}

// Deactivate removes the tariff from the active set without deleting it.
func (t *Tariff) Deactivate() {
	t.IsActive = false
}

// TariffRepository defines persistence operations for tariffs
type TariffRepository interface {
	shared.Repository[Tariff]
	FindActive(ctx context.Context, filter shared.Filter) ([]Tariff, error)
	FindByGristID(ctx context.Context, gristTariffID int64) (*Tariff, error)
}
