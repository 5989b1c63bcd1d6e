package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/installment"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the order lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status value is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks whether the lifecycle allows moving to target.
// Delivered and cancelled are terminal; cancellation is only possible
// before shipment.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	default:
		return false
	}
}

// Order is the aggregate root for a customer installment purchase. It owns
// its items, and each item owns its payment schedule rows.
type Order struct {
	shared.BaseAggregateRoot
	UserID              uuid.UUID
	Status              Status
	TotalPrice          decimal.Decimal
	TotalDownPayment    decimal.Decimal
	TotalMonthlyPayment decimal.Decimal
	MinimumContribution decimal.Decimal

	// Delivery is either a company pickup point or a custom address with
	// coordinates, never both.
	CompanyAddressID *uuid.UUID
	CustomAddress    string
	Latitude         *float64
	Longitude        *float64

	Items []OrderItem
}

// OrderItem is one product line of an order.
type OrderItem struct {
	shared.BaseEntity
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	TariffID       uuid.UUID
	Quantity       int
	UnitPrice      decimal.Decimal
	DownPayment    decimal.Decimal
	MonthlyPayment decimal.Decimal
	Schedule       []PaymentScheduleEntry
}

// LineTotal returns quantity times unit price.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaymentScheduleEntry is one persisted installment of an order item.
// Amount and date are immutable after creation; only the paid flag moves,
// driven by external payment processing.
type PaymentScheduleEntry struct {
	shared.BaseEntity
	OrderItemID uuid.UUID
	MonthNumber int
	PaymentDate time.Time
	Amount      decimal.Decimal
	Paid        bool
	PaidAt      *time.Time
}

// NewOrder creates an empty pending order for a user.
func NewOrder(userID uuid.UUID) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order requires a user")
	}
	return &Order{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		UserID:              userID,
		Status:              StatusPending,
		TotalPrice:          decimal.Zero,
		TotalDownPayment:    decimal.Zero,
		TotalMonthlyPayment: decimal.Zero,
		MinimumContribution: decimal.Zero,
	}, nil
}

// AddItem appends a resolved allocation with its schedule to the order and
// recalculates the order totals.
func (o *Order) AddItem(allocation installment.Allocation, monthly decimal.Decimal, schedule []installment.ScheduleEntry) {
	item := OrderItem{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        o.ID,
		ProductID:      allocation.ProductID,
		TariffID:       allocation.Tariff.ID,
		Quantity:       allocation.Quantity,
		UnitPrice:      allocation.UnitPrice,
		DownPayment:    allocation.DownPayment,
		MonthlyPayment: monthly,
	}
	for _, entry := range schedule {
		item.Schedule = append(item.Schedule, PaymentScheduleEntry{
			BaseEntity:  shared.NewBaseEntity(),
			OrderItemID: item.ID,
			MonthNumber: entry.MonthNumber,
			PaymentDate: entry.Date,
			Amount:      entry.Amount,
		})
	}
	o.Items = append(o.Items, item)
	o.recalculateTotals()
}

// SetMinimumContribution records the risk evaluation result on the order.
func (o *Order) SetMinimumContribution(minimum decimal.Decimal) {
	o.MinimumContribution = minimum
}

// recalculateTotals recomputes order totals from the items.
func (o *Order) recalculateTotals() {
	totalPrice := decimal.Zero
	totalDown := decimal.Zero
	totalMonthly := decimal.Zero
	for i := range o.Items {
		totalPrice = totalPrice.Add(o.Items[i].LineTotal())
		totalDown = totalDown.Add(o.Items[i].DownPayment)
		totalMonthly = totalMonthly.Add(o.Items[i].MonthlyPayment)
	}
	o.TotalPrice = totalPrice
	o.TotalDownPayment = totalDown
	o.TotalMonthlyPayment = totalMonthly
}

// MergedSchedule returns the customer-facing view of all item schedules
// combined by month number. It never modifies the persisted rows.
func (o *Order) MergedSchedule() []installment.MergedEntry {
	schedules := make([][]installment.ScheduleEntry, 0, len(o.Items))
	for i := range o.Items {
		entries := make([]installment.ScheduleEntry, 0, len(o.Items[i].Schedule))
		for _, row := range o.Items[i].Schedule {
			entries = append(entries, installment.ScheduleEntry{
				MonthNumber: row.MonthNumber,
				Date:        row.PaymentDate,
				Amount:      row.Amount,
			})
		}
		schedules = append(schedules, entries)
	}
	return installment.Merge(schedules...)
}

// TransitionTo moves the order to a new lifecycle state.
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot transition order from "+string(o.Status)+" to "+string(target))
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// SetPickupAddress points the order at a company pickup location and clears
// any custom address.
func (o *Order) SetPickupAddress(companyAddressID uuid.UUID) error {
	if companyAddressID == uuid.Nil {
		return shared.NewDomainError("INVALID_ADDRESS", "Company address is required")
	}
	o.CompanyAddressID = &companyAddressID
	o.CustomAddress = ""
	o.Latitude = nil
	o.Longitude = nil
	o.UpdatedAt = time.Now()
	return nil
}

// SetCustomAddress sets a free-form delivery address with coordinates and
// clears any pickup reference.
func (o *Order) SetCustomAddress(address string, latitude, longitude float64) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot be empty")
	}
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return shared.NewDomainError("INVALID_ADDRESS", "Coordinates out of range")
	}
	o.CompanyAddressID = nil
	o.CustomAddress = address
	o.Latitude = &latitude
	o.Longitude = &longitude
	o.UpdatedAt = time.Now()
	return nil
}

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	shared.Repository[Order]
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)
	CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)
}

// CompanyAddress is a pickup point offered for order delivery.
type CompanyAddress struct {
	shared.BaseAggregateRoot
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	IsActive  bool
}

// CompanyAddressRepository defines persistence operations for pickup points
type CompanyAddressRepository interface {
	shared.Repository[CompanyAddress]
	FindActive(ctx context.Context) ([]CompanyAddress, error)
}
