package models

import (
	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	Description    string          `gorm:"type:text"`
	Price          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index"`
	GristProductID int64           `gorm:"uniqueIndex"`
	IsActive       bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		CategoryID:        m.CategoryID,
		GristProductID:    m.GristProductID,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.CategoryID = p.CategoryID
	m.GristProductID = p.GristProductID
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
}

// ProductCategoryRiskModel is the persistence model for risk matrix rows.
type ProductCategoryRiskModel struct {
	AggregateModel
	Name             string          `gorm:"type:varchar(100)"`
	RiskCategoryRef  int64           `gorm:"not null;uniqueIndex:idx_risk_price,priority:1"`
	PriceCategoryRef int64           `gorm:"not null;uniqueIndex:idx_risk_price,priority:2"`
	Percentage       decimal.Decimal `gorm:"type:decimal(6,4);not null"`
}

// TableName returns the table name for GORM
func (ProductCategoryRiskModel) TableName() string {
	return "product_category_risks"
}

// ToDomain converts the persistence model to a domain ProductCategoryRisk entity.
func (m *ProductCategoryRiskModel) ToDomain() *catalog.ProductCategoryRisk {
	return &catalog.ProductCategoryRisk{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		RiskCategoryRef:   m.RiskCategoryRef,
		PriceCategoryRef:  m.PriceCategoryRef,
		Percentage:        m.Percentage,
	}
}

// FromDomain populates the persistence model from a domain ProductCategoryRisk entity.
func (m *ProductCategoryRiskModel) FromDomain(r *catalog.ProductCategoryRisk) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Name = r.Name
	m.RiskCategoryRef = r.RiskCategoryRef
	m.PriceCategoryRef = r.PriceCategoryRef
	m.Percentage = r.Percentage
}

// ProductCategoryRiskModelFromDomain creates a new persistence model from a domain entity.
func ProductCategoryRiskModelFromDomain(r *catalog.ProductCategoryRisk) *ProductCategoryRiskModel {
	m := &ProductCategoryRiskModel{}
	m.FromDomain(r)
	return m
}
