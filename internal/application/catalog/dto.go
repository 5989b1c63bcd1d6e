package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/catalog"
	"github.com/isell/backend/internal/domain/installment"
	"github.com/shopspring/decimal"
)

// ProductResponse is the API view of a product.
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TariffResponse is the API view of a tariff.
type TariffResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	PaymentsCount int             `json:"payments_count"`
	OffsetDays    int             `json:"offset_days"`
	Type          string          `json:"type"`
	Coefficient   decimal.Decimal `json:"coefficient"`
	IsActive      bool            `json:"is_active"`
}

// PaymentCalculationResponse is the single-product installment preview.
type PaymentCalculationResponse struct {
	ProductPrice   decimal.Decimal `json:"product_price"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// SyncResult summarizes one import or sync run.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ToProductResponse converts a domain product to its API view.
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

// ToTariffResponse converts a domain tariff to its API view.
func ToTariffResponse(t *installment.Tariff) TariffResponse {
	return TariffResponse{
		ID:            t.ID,
		Name:          t.Name,
		PaymentsCount: t.PaymentsCount,
		OffsetDays:    t.OffsetDays,
		Type:          t.Type,
		Coefficient:   t.Coefficient,
		IsActive:      t.IsActive,
	}
}
