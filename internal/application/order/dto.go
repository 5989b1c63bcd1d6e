package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/installment"
	"github.com/isell/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// scheduleDateLayout is the customer-facing date format, day/month/2-digit-year.
const scheduleDateLayout = "02/01/06"

// Calculation modes accepted on the wire. The mode is resolved into a plan
// variant once, during request parsing.
const (
	ModeShared  = 1
	ModePerItem = 2
)

// ProductLineInput is one product line of a calculation request. The tariff
// and down payment fields are only read in per-item mode.
type ProductLineInput struct {
	ProductID   uuid.UUID        `json:"product_id" binding:"required"`
	Quantity    int              `json:"quantity" binding:"required,min=1"`
	TariffID    *uuid.UUID       `json:"installment_period"`
	DownPayment *decimal.Decimal `json:"total_down_payment"`
}

// CalculateOrderRequest is the shared input of the quote and create
// operations: a calculation mode plus the product lines.
type CalculateOrderRequest struct {
	CalculationMode  int                `json:"calculation_mode" binding:"required"`
	TariffID         *uuid.UUID         `json:"installment_period"`
	TotalDownPayment *decimal.Decimal   `json:"total_down_payment"`
	ProductList      []ProductLineInput `json:"product_list" binding:"required,min=1"`
}

// CreateOrderRequest creates a persisted order. The delivery address may be
// supplied up front or set later through the address endpoint.
type CreateOrderRequest struct {
	CalculateOrderRequest
	CompanyAddressID *uuid.UUID          `json:"company_address_id"`
	CustomAddress    *CustomAddressInput `json:"custom_address"`
}

// CustomAddressInput is a free-form delivery address with coordinates.
type CustomAddressInput struct {
	Address   string  `json:"address" binding:"required,min=1,max=500"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

// UpdateAddressRequest sets the delivery address of an existing order.
// Exactly one of the two variants must be present.
type UpdateAddressRequest struct {
	CompanyAddressID *uuid.UUID          `json:"company_address_id"`
	CustomAddress    *CustomAddressInput `json:"custom_address"`
}

// MonthlyPaymentResponse is one row of the merged customer-facing schedule.
type MonthlyPaymentResponse struct {
	MonthNumber    int             `json:"month_number"`
	Date           string          `json:"date"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// QuoteResponse is the dry-run calculation result. Nothing is persisted.
// TotalPrice is the amount left to finance after the down payment; the
// pre-deduction grand total only appears on persisted orders.
type QuoteResponse struct {
	TotalPrice             decimal.Decimal          `json:"total_price"`
	TotalDownPayment       decimal.Decimal          `json:"total_down_payment"`
	TotalEveryMonthPayment decimal.Decimal          `json:"total_every_month_payment"`
	MinimumContribution    decimal.Decimal          `json:"minimum_contribution"`
	AbilityToOrder         bool                     `json:"ability_to_order"`
	MonthlyPayments        []MonthlyPaymentResponse `json:"monthly_payments"`
}

// OrderItemResponse is one line of a persisted order.
type OrderItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	TariffID       uuid.UUID       `json:"tariff_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DownPayment    decimal.Decimal `json:"down_payment"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// OrderResponse is the API view of a persisted order with its merged schedule.
type OrderResponse struct {
	ID                     uuid.UUID                `json:"id"`
	UserID                 uuid.UUID                `json:"user_id"`
	Status                 order.Status             `json:"status"`
	TotalPrice             decimal.Decimal          `json:"total_price"`
	TotalDownPayment       decimal.Decimal          `json:"total_down_payment"`
	TotalEveryMonthPayment decimal.Decimal          `json:"total_every_month_payment"`
	MinimumContribution    decimal.Decimal          `json:"minimum_contribution"`
	CompanyAddressID       *uuid.UUID               `json:"company_address_id,omitempty"`
	CustomAddress          string                   `json:"custom_address,omitempty"`
	Latitude               *float64                 `json:"latitude,omitempty"`
	Longitude              *float64                 `json:"longitude,omitempty"`
	Items                  []OrderItemResponse      `json:"items"`
	MonthlyPayments        []MonthlyPaymentResponse `json:"monthly_payments"`
	CreatedAt              time.Time                `json:"created_at"`
}

// OrderListItemResponse is the compact order view used in listings.
type OrderListItemResponse struct {
	ID                     uuid.UUID       `json:"id"`
	Status                 order.Status    `json:"status"`
	TotalPrice             decimal.Decimal `json:"total_price"`
	TotalDownPayment       decimal.Decimal `json:"total_down_payment"`
	TotalEveryMonthPayment decimal.Decimal `json:"total_every_month_payment"`
	ItemCount              int             `json:"item_count"`
	CreatedAt              time.Time       `json:"created_at"`
}

// CompanyAddressResponse is one pickup point.
type CompanyAddressResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// ToMonthlyPaymentResponses formats merged schedule entries for the API.
func ToMonthlyPaymentResponses(merged []installment.MergedEntry) []MonthlyPaymentResponse {
	rows := make([]MonthlyPaymentResponse, 0, len(merged))
	for _, entry := range merged {
		rows = append(rows, MonthlyPaymentResponse{
			MonthNumber:    entry.MonthNumber,
			Date:           entry.Date.Format(scheduleDateLayout),
			MonthlyPayment: entry.Amount,
		})
	}
	return rows
}

// ToOrderResponse converts a domain order to its API view.
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			TariffID:       item.TariffID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DownPayment:    item.DownPayment,
			MonthlyPayment: item.MonthlyPayment,
		})
	}
	return OrderResponse{
		ID:                     o.ID,
		UserID:                 o.UserID,
		Status:                 o.Status,
		TotalPrice:             o.TotalPrice,
		TotalDownPayment:       o.TotalDownPayment,
		TotalEveryMonthPayment: o.TotalMonthlyPayment,
		MinimumContribution:    o.MinimumContribution,
		CompanyAddressID:       o.CompanyAddressID,
		CustomAddress:          o.CustomAddress,
		Latitude:               o.Latitude,
		Longitude:              o.Longitude,
		Items:                  items,
		MonthlyPayments:        ToMonthlyPaymentResponses(o.MergedSchedule()),
		CreatedAt:              o.CreatedAt,
	}
}

// ToOrderListItemResponse converts a domain order to its listing view.
func ToOrderListItemResponse(o *order.Order) OrderListItemResponse {
	return OrderListItemResponse{
		ID:                     o.ID,
		Status:                 o.Status,
		TotalPrice:             o.TotalPrice,
		TotalDownPayment:       o.TotalDownPayment,
		TotalEveryMonthPayment: o.TotalMonthlyPayment,
		ItemCount:              len(o.Items),
		CreatedAt:              o.CreatedAt,
	}
}

// ToCompanyAddressResponse converts a pickup point to its API view.
func ToCompanyAddressResponse(a *order.CompanyAddress) CompanyAddressResponse {
	return CompanyAddressResponse{
		ID:        a.ID,
		Name:      a.Name,
		Address:   a.Address,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
	}
}
