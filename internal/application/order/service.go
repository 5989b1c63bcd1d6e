package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/catalog"
	"github.com/isell/backend/internal/domain/installment"
	"github.com/isell/backend/internal/domain/order"
	"github.com/isell/backend/internal/domain/risk"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RiskEvaluator computes the minimum contribution for a set of order lines.
// It never fails; external problems degrade to a zero contribution.
type RiskEvaluator interface {
	Evaluate(ctx context.Context, lines []risk.LineInput, totalDownPayment decimal.Decimal) risk.Result
}

// Service handles order calculation and lifecycle operations. The quote and
// create paths run the exact same computation; create additionally gates on
// eligibility and persists the aggregate.
type Service struct {
	orders    order.OrderRepository
	products  catalog.ProductRepository
	tariffs   installment.TariffRepository
	addresses order.CompanyAddressRepository
	risk      RiskEvaluator
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an order service.
func NewService(
	orders order.OrderRepository,
	products catalog.ProductRepository,
	tariffs installment.TariffRepository,
	addresses order.CompanyAddressRepository,
	evaluator RiskEvaluator,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		tariffs:   tariffs,
		addresses: addresses,
		risk:      evaluator,
		logger:    logger,
		now:       time.Now,
	}
}

// calculation is the outcome of running the engine over one request.
type calculation struct {
	order  *order.Order
	result risk.Result
}

// Quote runs the calculation without persisting anything.
func (s *Service) Quote(ctx context.Context, userID uuid.UUID, req CalculateOrderRequest) (*QuoteResponse, error) {
	calc, err := s.calculate(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	// The quote reports the financed remainder, not the grand total: the
	// customer-facing total_price is what is left after the down payment.
	o := calc.order
	return &QuoteResponse{
		TotalPrice:             o.TotalPrice.Sub(o.TotalDownPayment),
		TotalDownPayment:       o.TotalDownPayment,
		TotalEveryMonthPayment: o.TotalMonthlyPayment,
		MinimumContribution:    calc.result.MinimumContribution,
		AbilityToOrder:         calc.result.Eligible,
		MonthlyPayments:        ToMonthlyPaymentResponses(o.MergedSchedule()),
	}, nil
}

// Create runs the calculation, gates on risk eligibility, and persists the
// order with every item and schedule row in one transaction.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	calc, err := s.calculate(ctx, userID, req.CalculateOrderRequest)
	if err != nil {
		return nil, err
	}
	if !calc.result.Eligible {
		return nil, shared.NewDomainError("INSUFFICIENT_CONTRIBUTION",
			"Down payment is below the required minimum contribution")
	}

	o := calc.order
	if err := s.applyAddress(ctx, o, req.CompanyAddressID, req.CustomAddress); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("items", len(o.Items)),
		zap.String("total_price", o.TotalPrice.String()))

	response := ToOrderResponse(o)
	return &response, nil
}

// List returns the caller's orders, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*shared.Paginated[OrderListItemResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	orders, err := s.orders.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.CountByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]OrderListItemResponse, 0, len(orders))
	for i := range orders {
		items = append(items, ToOrderListItemResponse(&orders[i]))
	}
	paginated := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// GetByID returns one of the caller's orders with its merged schedule.
func (s *Service) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.findOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// UpdateAddress sets the delivery address of one of the caller's orders.
func (s *Service) UpdateAddress(ctx context.Context, userID, orderID uuid.UUID, req UpdateAddressRequest) (*OrderResponse, error) {
	o, err := s.findOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if req.CompanyAddressID == nil && req.CustomAddress == nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS",
			"Either a company address or a custom address is required")
	}
	if err := s.applyAddress(ctx, o, req.CompanyAddressID, req.CustomAddress); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListCompanyAddresses returns the active pickup points.
func (s *Service) ListCompanyAddresses(ctx context.Context) ([]CompanyAddressResponse, error) {
	addresses, err := s.addresses.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]CompanyAddressResponse, 0, len(addresses))
	for i := range addresses {
		responses = append(responses, ToCompanyAddressResponse(&addresses[i]))
	}
	return responses, nil
}

// calculate resolves the request into a plan variant, allocates down payments,
// builds per-line schedules, and evaluates risk. The returned order is not
// persisted.
func (s *Service) calculate(ctx context.Context, userID uuid.UUID, req CalculateOrderRequest) (*calculation, error) {
	plan, productsByID, err := s.buildPlan(ctx, req)
	if err != nil {
		return nil, err
	}

	allocations, err := plan.Allocate()
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(userID)
	if err != nil {
		return nil, err
	}

	start := s.now().UTC()
	riskLines := make([]risk.LineInput, 0, len(allocations))
	for _, allocation := range allocations {
		monthly := installment.MonthlyPayment(allocation.Remaining, allocation.Tariff)
		schedule := installment.BuildSchedule(start, allocation.Tariff, monthly)
		o.AddItem(allocation, monthly, schedule)

		if product, ok := productsByID[allocation.ProductID]; ok {
			riskLines = append(riskLines, risk.LineInput{
				GristProductID: product.GristProductID,
				LineTotal:      allocation.LineTotal,
			})
		}
	}

	result := s.risk.Evaluate(ctx, riskLines, o.TotalDownPayment)
	o.SetMinimumContribution(result.MinimumContribution)

	return &calculation{order: o, result: result}, nil
}

// buildPlan resolves products and tariffs and picks the plan variant.
func (s *Service) buildPlan(ctx context.Context, req CalculateOrderRequest) (installment.Plan, map[uuid.UUID]*catalog.Product, error) {
	if len(req.ProductList) == 0 {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "Product list cannot be empty")
	}

	ids := make([]uuid.UUID, 0, len(req.ProductList))
	for _, line := range req.ProductList {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	productsByID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	switch req.CalculationMode {
	case ModeShared:
		return s.buildSharedPlan(ctx, req, productsByID)
	case ModePerItem:
		return s.buildPerItemPlan(ctx, req, productsByID)
	default:
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "Calculation mode must be 1 or 2")
	}
}

func (s *Service) buildSharedPlan(ctx context.Context, req CalculateOrderRequest, productsByID map[uuid.UUID]*catalog.Product) (installment.Plan, map[uuid.UUID]*catalog.Product, error) {
	if req.TariffID == nil {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "Installment period is required")
	}
	if req.TotalDownPayment == nil {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "Total down payment is required")
	}
	tariff, err := s.findTariff(ctx, *req.TariffID)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]installment.Line, 0, len(req.ProductList))
	for _, input := range req.ProductList {
		product, ok := productsByID[input.ProductID]
		if !ok {
			return nil, nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		lines = append(lines, installment.Line{
			ProductID: product.ID,
			Quantity:  input.Quantity,
			UnitPrice: product.Price,
		})
	}

	return installment.SharedPlan{
		Tariff:           tariff,
		TotalDownPayment: *req.TotalDownPayment,
		Lines:            lines,
	}, productsByID, nil
}

func (s *Service) buildPerItemPlan(ctx context.Context, req CalculateOrderRequest, productsByID map[uuid.UUID]*catalog.Product) (installment.Plan, map[uuid.UUID]*catalog.Product, error) {
	tariffCache := make(map[uuid.UUID]*installment.Tariff)

	lines := make([]installment.Line, 0, len(req.ProductList))
	for _, input := range req.ProductList {
		product, ok := productsByID[input.ProductID]
		if !ok {
			return nil, nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}

		line := installment.Line{
			ProductID: product.ID,
			Quantity:  input.Quantity,
			UnitPrice: product.Price,
		}
		// A line without a tariff stays in the plan and is skipped by the
		// allocator, matching the documented per-item behavior.
		if input.TariffID != nil {
			tariff, cached := tariffCache[*input.TariffID]
			if !cached {
				var err error
				tariff, err = s.findTariff(ctx, *input.TariffID)
				if err != nil {
					return nil, nil, err
				}
				tariffCache[*input.TariffID] = tariff
			}
			line.Tariff = tariff
		}
		if input.DownPayment != nil {
			line.DownPayment = *input.DownPayment
		}
		lines = append(lines, line)
	}

	return installment.PerItemPlan{Lines: lines}, productsByID, nil
}

func (s *Service) findTariff(ctx context.Context, id uuid.UUID) (*installment.Tariff, error) {
	tariff, err := s.tariffs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TARIFF_NOT_FOUND", "Tariff not found")
		}
		return nil, err
	}
	return tariff, nil
}

// findOwned loads an order and hides it from anyone but its owner.
func (s *Service) findOwned(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
	}
	return o, nil
}

// applyAddress validates and applies the delivery address choice.
func (s *Service) applyAddress(ctx context.Context, o *order.Order, companyAddressID *uuid.UUID, custom *CustomAddressInput) error {
	if companyAddressID != nil && custom != nil {
		return shared.NewDomainError("INVALID_ADDRESS",
			"Company address and custom address are mutually exclusive")
	}
	if companyAddressID != nil {
		address, err := s.addresses.FindByID(ctx, *companyAddressID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("ADDRESS_NOT_FOUND", "Company address not found")
			}
			return err
		}
		if !address.IsActive {
			return shared.NewDomainError("INVALID_ADDRESS", "Company address is not available")
		}
		return o.SetPickupAddress(address.ID)
	}
	if custom != nil {
		return o.SetCustomAddress(custom.Address, custom.Latitude, custom.Longitude)
	}
	return nil
}
