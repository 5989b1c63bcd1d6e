package models

import (
	"github.com/isell/backend/internal/domain/installment"
	"github.com/shopspring/decimal"
)

// TariffModel is the persistence model for the Tariff domain entity.
type TariffModel struct {
	AggregateModel
	Name          string          `gorm:"type:varchar(100);not null"`
	PaymentsCount int             `gorm:"not null"`
	OffsetDays    int             `gorm:"not null;default:0"`
	Type          string          `gorm:"type:varchar(50);not null;default:'standard'"`
	Coefficient   decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	GristTariffID int64           `gorm:"uniqueIndex"`
	IsActive      bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (TariffModel) TableName() string {
	return "tariffs"
}

// ToDomain converts the persistence model to a domain Tariff entity.
func (m *TariffModel) ToDomain() *installment.Tariff {
	return &installment.Tariff{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		PaymentsCount:     m.PaymentsCount,
		OffsetDays:        m.OffsetDays,
		Type:              m.Type,
		Coefficient:       m.Coefficient,
		GristTariffID:     m.GristTariffID,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Tariff entity.
func (m *TariffModel) FromDomain(t *installment.Tariff) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.PaymentsCount = t.PaymentsCount
	m.OffsetDays = t.OffsetDays
	m.Type = t.Type
	m.Coefficient = t.Coefficient
	m.GristTariffID = t.GristTariffID
	m.IsActive = t.IsActive
}

// TariffModelFromDomain creates a new persistence model from a domain Tariff entity.
func TariffModelFromDomain(t *installment.Tariff) *TariffModel {
	m := &TariffModel{}
	m.FromDomain(t)
	return m
}
