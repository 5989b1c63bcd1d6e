package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	UserID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status              order.Status    `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalPrice          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDownPayment    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalMonthlyPayment decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinimumContribution decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CompanyAddressID    *uuid.UUID      `gorm:"type:uuid"`
	CustomAddress       string          `gorm:"type:varchar(500)"`
	Latitude            *float64
	Longitude           *float64

	Items []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for one order line.
type OrderItemModel struct {
	BaseModel
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TariffID       uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity       int             `gorm:"not null;default:1"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DownPayment    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MonthlyPayment decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Schedule []PaymentScheduleEntryModel `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// PaymentScheduleEntryModel is the persistence model for one installment row.
type PaymentScheduleEntryModel struct {
	BaseModel
	OrderItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MonthNumber int             `gorm:"not null"`
	PaymentDate time.Time       `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Paid        bool            `gorm:"not null;default:false"`
	PaidAt      *time.Time
}

// TableName returns the table name for GORM
func (PaymentScheduleEntryModel) TableName() string {
	return "order_payment_schedules"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		UserID:              m.UserID,
		Status:              m.Status,
		TotalPrice:          m.TotalPrice,
		TotalDownPayment:    m.TotalDownPayment,
		TotalMonthlyPayment: m.TotalMonthlyPayment,
		MinimumContribution: m.MinimumContribution,
		CompanyAddressID:    m.CompanyAddressID,
		CustomAddress:       m.CustomAddress,
		Latitude:            m.Latitude,
		Longitude:           m.Longitude,
	}
	for i := range m.Items {
		o.Items = append(o.Items, *m.Items[i].ToDomain())
	}
	return o
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() *order.OrderItem {
	item := &order.OrderItem{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrderID:        m.OrderID,
		ProductID:      m.ProductID,
		TariffID:       m.TariffID,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		DownPayment:    m.DownPayment,
		MonthlyPayment: m.MonthlyPayment,
	}
	for i := range m.Schedule {
		row := &m.Schedule[i]
		item.Schedule = append(item.Schedule, order.PaymentScheduleEntry{
			BaseEntity:  row.BaseModel.ToDomain(),
			OrderItemID: row.OrderItemID,
			MonthNumber: row.MonthNumber,
			PaymentDate: row.PaymentDate,
			Amount:      row.Amount,
			Paid:        row.Paid,
			PaidAt:      row.PaidAt,
		})
	}
	return item
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.Status = o.Status
	m.TotalPrice = o.TotalPrice
	m.TotalDownPayment = o.TotalDownPayment
	m.TotalMonthlyPayment = o.TotalMonthlyPayment
	m.MinimumContribution = o.MinimumContribution
	m.CompanyAddressID = o.CompanyAddressID
	m.CustomAddress = o.CustomAddress
	m.Latitude = o.Latitude
	m.Longitude = o.Longitude

	m.Items = m.Items[:0]
	for i := range o.Items {
		item := &o.Items[i]
		itemModel := OrderItemModel{
			OrderID:        item.OrderID,
			ProductID:      item.ProductID,
			TariffID:       item.TariffID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DownPayment:    item.DownPayment,
			MonthlyPayment: item.MonthlyPayment,
		}
		itemModel.FromDomainBaseEntity(item.BaseEntity)
		for j := range item.Schedule {
			row := &item.Schedule[j]
			rowModel := PaymentScheduleEntryModel{
				OrderItemID: row.OrderItemID,
				MonthNumber: row.MonthNumber,
				PaymentDate: row.PaymentDate,
				Amount:      row.Amount,
				Paid:        row.Paid,
				PaidAt:      row.PaidAt,
			}
			rowModel.FromDomainBaseEntity(row.BaseEntity)
			itemModel.Schedule = append(itemModel.Schedule, rowModel)
		}
		m.Items = append(m.Items, itemModel)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// CompanyAddressModel is the persistence model for pickup points.
type CompanyAddressModel struct {
	AggregateModel
	Name      string  `gorm:"type:varchar(200);not null"`
	Address   string  `gorm:"type:varchar(500);not null"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
	IsActive  bool    `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CompanyAddressModel) TableName() string {
	return "company_addresses"
}

// ToDomain converts the persistence model to a domain CompanyAddress entity.
func (m *CompanyAddressModel) ToDomain() *order.CompanyAddress {
	return &order.CompanyAddress{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Address:           m.Address,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain CompanyAddress entity.
func (m *CompanyAddressModel) FromDomain(a *order.CompanyAddress) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Name = a.Name
	m.Address = a.Address
	m.Latitude = a.Latitude
	m.Longitude = a.Longitude
	m.IsActive = a.IsActive
}
