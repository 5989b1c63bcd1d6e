package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/catalog"
	"github.com/isell/backend/internal/domain/installment"
	"github.com/isell/backend/internal/domain/order"
	"github.com/isell/backend/internal/domain/risk"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
// Mocks
// ============================================================================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByGristID(ctx context.Context, gristProductID int64) (*catalog.Product, error) {
	args := m.Called(ctx, gristProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*installment.Tariff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installment.Tariff), args.Error(1)
}

func (m *MockTariffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]installment.Tariff, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]installment.Tariff), args.Error(1)
}

func (m *MockTariffRepository) Save(ctx context.Context, t *installment.Tariff) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTariffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTariffRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTariffRepository) FindActive(ctx context.Context, filter shared.Filter) ([]installment.Tariff, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]installment.Tariff), args.Error(1)
}

func (m *MockTariffRepository) FindByGristID(ctx context.Context, gristTariffID int64) (*installment.Tariff, error) {
	args := m.Called(ctx, gristTariffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installment.Tariff), args.Error(1)
}

type MockCompanyAddressRepository struct {
	mock.Mock
}

func (m *MockCompanyAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.CompanyAddress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CompanyAddress), args.Error(1)
}

func (m *MockCompanyAddressRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.CompanyAddress, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.CompanyAddress), args.Error(1)
}

func (m *MockCompanyAddressRepository) Save(ctx context.Context, a *order.CompanyAddress) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockCompanyAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCompanyAddressRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyAddressRepository) FindActive(ctx context.Context) ([]order.CompanyAddress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.CompanyAddress), args.Error(1)
}

type MockRiskEvaluator struct {
	mock.Mock
}

func (m *MockRiskEvaluator) Evaluate(ctx context.Context, lines []risk.LineInput, totalDownPayment decimal.Decimal) risk.Result {
	args := m.Called(ctx, lines, totalDownPayment)
	return args.Get(0).(risk.Result)
}

// ============================================================================
// Fixtures
// ============================================================================

type serviceFixture struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	tariffs   *MockTariffRepository
	addresses *MockCompanyAddressRepository
	risk      *MockRiskEvaluator
	service   *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		tariffs:   new(MockTariffRepository),
		addresses: new(MockCompanyAddressRepository),
		risk:      new(MockRiskEvaluator),
	}
	f.service = NewService(f.orders, f.products, f.tariffs, f.addresses, f.risk, zap.NewNop())
	return f
}

func fixtureTariff(t *testing.T, payments int) *installment.Tariff {
	t.Helper()
	tariff, err := installment.NewTariff("fixture", payments, 0, "standard", decimal.NewFromInt(1))
	require.NoError(t, err)
	return tariff
}

func fixtureProduct(t *testing.T, price string, gristID int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("fixture product", decimal.RequireFromString(price), gristID)
	require.NoError(t, err)
	return product
}

func openResult() risk.Result {
	return risk.Result{MinimumContribution: decimal.Zero, Eligible: true}
}

// ============================================================================
// Tests
// ============================================================================

func TestService_Quote_SharedMode(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	tariff := fixtureTariff(t, 4)
	cheap := fixtureProduct(t, "100", 11)
	dear := fixtureProduct(t, "300", 12)

	f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*cheap, *dear}, nil)
	f.tariffs.On("FindByID", ctx, tariff.ID).Return(tariff, nil)
	f.risk.On("Evaluate", ctx, mock.Anything, mock.Anything).Return(openResult())

	down := decimal.NewFromInt(40)
	quote, err := f.service.Quote(ctx, userID, CalculateOrderRequest{
		CalculationMode:  ModeShared,
		TariffID:         &tariff.ID,
		TotalDownPayment: &down,
		ProductList: []ProductLineInput{
			{ProductID: cheap.ID, Quantity: 1},
			{ProductID: dear.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// total_price is the financed remainder: 400 minus the 40 down payment.
	assert.True(t, quote.TotalPrice.Equal(decimal.NewFromInt(360)), "got %s", quote.TotalPrice)
	assert.True(t, quote.TotalDownPayment.Equal(decimal.NewFromInt(40)))
	// round((100-10)/4)=23, round((300-30)/4)=68
	assert.True(t, quote.TotalEveryMonthPayment.Equal(decimal.NewFromInt(91)),
		"got %s", quote.TotalEveryMonthPayment)
	assert.True(t, quote.AbilityToOrder)

	require.Len(t, quote.MonthlyPayments, 4)
	for _, row := range quote.MonthlyPayments {
		assert.True(t, row.MonthlyPayment.Equal(decimal.NewFromInt(91)))
		assert.Len(t, row.Date, 8) // DD/MM/YY
	}

	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Quote_PerItemModeSkipsUntariffedLines(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	tariff := fixtureTariff(t, 2)
	planned := fixtureProduct(t, "200", 21)
	skipped := fixtureProduct(t, "999", 22)

	f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*planned, *skipped}, nil)
	f.tariffs.On("FindByID", ctx, tariff.ID).Return(tariff, nil)
	f.risk.On("Evaluate", ctx, mock.Anything, mock.Anything).Return(openResult())

	down := decimal.NewFromInt(50)
	quote, err := f.service.Quote(ctx, uuid.New(), CalculateOrderRequest{
		CalculationMode: ModePerItem,
		ProductList: []ProductLineInput{
			{ProductID: planned.ID, Quantity: 1, TariffID: &tariff.ID, DownPayment: &down},
			{ProductID: skipped.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// Only the tariffed line contributes, and its down payment is deducted.
	assert.True(t, quote.TotalPrice.Equal(decimal.NewFromInt(150)), "got %s", quote.TotalPrice)
	assert.True(t, quote.TotalEveryMonthPayment.Equal(decimal.NewFromInt(75)))
	require.Len(t, quote.MonthlyPayments, 2)
}

func TestService_Quote_ValidationFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown mode", func(t *testing.T) {
		f := newServiceFixture()
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{}, nil)

		_, err := f.service.Quote(ctx, uuid.New(), CalculateOrderRequest{
			CalculationMode: 3,
			ProductList:     []ProductLineInput{{ProductID: uuid.New(), Quantity: 1}},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("empty product list", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.Quote(ctx, uuid.New(), CalculateOrderRequest{CalculationMode: ModeShared})
		require.Error(t, err)
	})

	t.Run("shared mode without tariff", func(t *testing.T) {
		f := newServiceFixture()
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{}, nil)

		_, err := f.service.Quote(ctx, uuid.New(), CalculateOrderRequest{
			CalculationMode: ModeShared,
			ProductList:     []ProductLineInput{{ProductID: uuid.New(), Quantity: 1}},
		})
		require.Error(t, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newServiceFixture()
		tariff := fixtureTariff(t, 4)
		down := decimal.Zero
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{}, nil)
		f.tariffs.On("FindByID", ctx, tariff.ID).Return(tariff, nil)

		_, err := f.service.Quote(ctx, uuid.New(), CalculateOrderRequest{
			CalculationMode:  ModeShared,
			TariffID:         &tariff.ID,
			TotalDownPayment: &down,
			ProductList:      []ProductLineInput{{ProductID: uuid.New(), Quantity: 1}},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_NOT_FOUND", domainErr.Code)
	})

	t.Run("unknown tariff", func(t *testing.T) {
		f := newServiceFixture()
		tariffID := uuid.New()
		down := decimal.Zero
		product := fixtureProduct(t, "100", 31)
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
		f.tariffs.On("FindByID", ctx, tariffID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Quote(ctx, uuid.New(), CalculateOrderRequest{
			CalculationMode:  ModeShared,
			TariffID:         &tariffID,
			TotalDownPayment: &down,
			ProductList:      []ProductLineInput{{ProductID: product.ID, Quantity: 1}},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TARIFF_NOT_FOUND", domainErr.Code)
	})
}

func TestService_Create_PersistsEligibleOrder(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	tariff := fixtureTariff(t, 4)
	product := fixtureProduct(t, "400", 41)

	f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
	f.tariffs.On("FindByID", ctx, tariff.ID).Return(tariff, nil)
	f.risk.On("Evaluate", ctx, mock.Anything, mock.Anything).Return(risk.Result{
		MinimumContribution: decimal.NewFromInt(30),
		Eligible:            true,
	})
	f.orders.On("Save", ctx, mock.Anything).Return(nil)

	down := decimal.NewFromInt(40)
	created, err := f.service.Create(ctx, userID, CreateOrderRequest{
		CalculateOrderRequest: CalculateOrderRequest{
			CalculationMode:  ModeShared,
			TariffID:         &tariff.ID,
			TotalDownPayment: &down,
			ProductList:      []ProductLineInput{{ProductID: product.ID, Quantity: 1}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, order.StatusPending, created.Status)
	assert.True(t, created.MinimumContribution.Equal(decimal.NewFromInt(30)))
	require.Len(t, created.Items, 1)
	assert.Len(t, created.MonthlyPayments, 4)

	f.orders.AssertCalled(t, "Save", ctx, mock.Anything)
}

func TestService_Create_RejectsIneligibleOrder(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	tariff := fixtureTariff(t, 4)
	product := fixtureProduct(t, "400", 42)

	f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
	f.tariffs.On("FindByID", ctx, tariff.ID).Return(tariff, nil)
	f.risk.On("Evaluate", ctx, mock.Anything, mock.Anything).Return(risk.Result{
		MinimumContribution: decimal.NewFromInt(200),
		Eligible:            false,
	})

	down := decimal.NewFromInt(10)
	_, err := f.service.Create(ctx, uuid.New(), CreateOrderRequest{
		CalculateOrderRequest: CalculateOrderRequest{
			CalculationMode:  ModeShared,
			TariffID:         &tariff.ID,
			TotalDownPayment: &down,
			ProductList:      []ProductLineInput{{ProductID: product.ID, Quantity: 1}},
		},
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_CONTRIBUTION", domainErr.Code)

	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Create_WithPickupAddress(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	tariff := fixtureTariff(t, 2)
	product := fixtureProduct(t, "100", 43)
	pickup := &order.CompanyAddress{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              "Main pickup",
		Address:           "Central warehouse",
		Latitude:          41.3,
		Longitude:         69.2,
		IsActive:          true,
	}

	f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
	f.tariffs.On("FindByID", ctx, tariff.ID).Return(tariff, nil)
	f.risk.On("Evaluate", ctx, mock.Anything, mock.Anything).Return(openResult())
	f.addresses.On("FindByID", ctx, pickup.ID).Return(pickup, nil)
	f.orders.On("Save", ctx, mock.Anything).Return(nil)

	down := decimal.NewFromInt(20)
	created, err := f.service.Create(ctx, uuid.New(), CreateOrderRequest{
		CalculateOrderRequest: CalculateOrderRequest{
			CalculationMode:  ModeShared,
			TariffID:         &tariff.ID,
			TotalDownPayment: &down,
			ProductList:      []ProductLineInput{{ProductID: product.ID, Quantity: 1}},
		},
		CompanyAddressID: &pickup.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.CompanyAddressID)
	assert.Equal(t, pickup.ID, *created.CompanyAddressID)
	assert.Empty(t, created.CustomAddress)
}

func TestService_Create_RejectsBothAddressVariants(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	tariff := fixtureTariff(t, 2)
	product := fixtureProduct(t, "100", 44)
	addressID := uuid.New()

	f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*product}, nil)
	f.tariffs.On("FindByID", ctx, tariff.ID).Return(tariff, nil)
	f.risk.On("Evaluate", ctx, mock.Anything, mock.Anything).Return(openResult())

	down := decimal.Zero
	_, err := f.service.Create(ctx, uuid.New(), CreateOrderRequest{
		CalculateOrderRequest: CalculateOrderRequest{
			CalculationMode:  ModeShared,
			TariffID:         &tariff.ID,
			TotalDownPayment: &down,
			ProductList:      []ProductLineInput{{ProductID: product.ID, Quantity: 1}},
		},
		CompanyAddressID: &addressID,
		CustomAddress:    &CustomAddressInput{Address: "somewhere", Latitude: 1, Longitude: 1},
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ADDRESS", domainErr.Code)
}

func TestService_GetByID_OwnershipCheck(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	owner := uuid.New()
	o, err := order.NewOrder(owner)
	require.NoError(t, err)

	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

	t.Run("owner sees the order", func(t *testing.T) {
		found, err := f.service.GetByID(ctx, owner, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)
	})

	t.Run("stranger gets not found", func(t *testing.T) {
		_, err := f.service.GetByID(ctx, uuid.New(), o.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ORDER_NOT_FOUND", domainErr.Code)
	})
}

func TestService_List(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	first, err := order.NewOrder(userID)
	require.NoError(t, err)
	second, err := order.NewOrder(userID)
	require.NoError(t, err)

	f.orders.On("FindByUser", ctx, userID, mock.Anything).Return([]order.Order{*first, *second}, nil)
	f.orders.On("CountByUser", ctx, userID, mock.Anything).Return(int64(2), nil)

	page, err := f.service.List(ctx, userID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)
}

func TestService_UpdateAddress(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	o, err := order.NewOrder(userID)
	require.NoError(t, err)

	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
	f.orders.On("Save", ctx, mock.Anything).Return(nil)

	t.Run("custom address", func(t *testing.T) {
		updated, err := f.service.UpdateAddress(ctx, userID, o.ID, UpdateAddressRequest{
			CustomAddress: &CustomAddressInput{Address: "5 Hill road", Latitude: 41.2, Longitude: 69.1},
		})
		require.NoError(t, err)
		assert.Equal(t, "5 Hill road", updated.CustomAddress)
		assert.Nil(t, updated.CompanyAddressID)
	})

	t.Run("neither variant", func(t *testing.T) {
		_, err := f.service.UpdateAddress(ctx, userID, o.ID, UpdateAddressRequest{})
		require.Error(t, err)
	})
}

func TestService_ListCompanyAddresses(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	f.addresses.On("FindActive", ctx).Return([]order.CompanyAddress{
		{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Name: "A", Address: "a", IsActive: true},
	}, nil)

	addresses, err := f.service.ListCompanyAddresses(ctx)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "A", addresses[0].Name)
}
