package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/catalog"
	"github.com/isell/backend/internal/domain/installment"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductService serves the read-only storefront catalog and the
// single-product installment preview.
type ProductService struct {
	products catalog.ProductRepository
	tariffs  installment.TariffRepository
}

// NewProductService creates a product service.
func NewProductService(products catalog.ProductRepository, tariffs installment.TariffRepository) *ProductService {
	return &ProductService{products: products, tariffs: tariffs}
}

// List returns products matching an optional name search, paginated.
func (s *ProductService) List(ctx context.Context, page, pageSize int, search string) (*shared.Paginated[ProductResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.Search = search

	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, ToProductResponse(&products[i]))
	}
	paginated := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// GetByID returns one product.
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// CalculatePayment previews the monthly installment for one product under a
// tariff: the price minus the down payment, run through the payment
// calculator. Used by product pages before a full schedule quote.
func (s *ProductService) CalculatePayment(ctx context.Context, productID, tariffID uuid.UUID, downPayment decimal.Decimal) (*PaymentCalculationResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	tariff, err := s.tariffs.FindByID(ctx, tariffID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TARIFF_NOT_FOUND", "Tariff not found")
		}
		return nil, err
	}
	if err := tariff.Validate(); err != nil {
		return nil, err
	}
	if !tariff.IsActive {
		return nil, shared.NewDomainError("INVALID_TARIFF", "Tariff is not active")
	}
	if downPayment.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Down payment cannot be negative")
	}

	remaining := product.Price.Sub(downPayment)
	return &PaymentCalculationResponse{
		ProductPrice:   product.Price,
		MonthlyPayment: installment.MonthlyPayment(remaining, tariff),
	}, nil
}
