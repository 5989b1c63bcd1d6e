package risk

import (
	"context"
	"errors"

	"github.com/isell/backend/internal/domain/catalog"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Application is an external credit application: a set of product references
// tied to one risk category.
type Application struct {
	ProductRefs     []int64
	RiskCategoryRef int64
}

// CatalogSnapshot is the external catalog state one evaluation needs: the
// product to price-category mapping and the list of applications.
type CatalogSnapshot struct {
	ProductPriceCategories map[int64]int64
	Applications           []Application
}

// CatalogSource provides a best-effort snapshot of the external catalog.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*CatalogSnapshot, error)
}

// LineInput is one order line as seen by the evaluator.
type LineInput struct {
	GristProductID int64
	LineTotal      decimal.Decimal
}

// Result is the outcome of a risk evaluation.
type Result struct {
	MinimumContribution decimal.Decimal
	Eligible            bool
}

// Evaluator computes the risk-derived minimum contribution for an order and
// decides admissibility.
//
// The evaluation is fail-open: any external fetch failure, missing category,
// or missing matrix row contributes zero rather than blocking the order.
// That is a deliberate business policy favoring order completion over strict
// risk enforcement; failures are logged but never surfaced to the caller.
type Evaluator struct {
	source CatalogSource
	matrix catalog.ProductCategoryRiskRepository
	logger *zap.Logger
}

// NewEvaluator creates a risk evaluator.
func NewEvaluator(source CatalogSource, matrix catalog.ProductCategoryRiskRepository, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		source: source,
		matrix: matrix,
		logger: logger,
	}
}

// Evaluate resolves each line's risk and price categories against the
// external catalog, sums percentage-weighted line totals into the minimum
// contribution, and compares it to the total down payment.
func (e *Evaluator) Evaluate(ctx context.Context, lines []LineInput, totalDownPayment decimal.Decimal) Result {
	minimum := decimal.Zero

	snapshot, err := e.source.Snapshot(ctx)
	if err != nil {
		e.logger.Warn("External catalog unavailable, skipping risk evaluation",
			zap.Error(err))
		return Result{MinimumContribution: minimum, Eligible: true}
	}

	for _, line := range lines {
		contribution, err := e.lineContribution(ctx, snapshot, line)
		if err != nil {
			e.logger.Warn("Risk lookup failed for line, contributing zero",
				zap.Int64("grist_product_id", line.GristProductID),
				zap.Error(err))
			continue
		}
		minimum = minimum.Add(contribution)
	}

	return Result{
		MinimumContribution: minimum,
		Eligible:            minimum.LessThanOrEqual(totalDownPayment),
	}
}

func (e *Evaluator) lineContribution(ctx context.Context, snapshot *CatalogSnapshot, line LineInput) (decimal.Decimal, error) {
	priceRef, ok := snapshot.ProductPriceCategories[line.GristProductID]
	if !ok {
		return decimal.Zero, errors.New("product has no price category in external catalog")
	}

	riskRef, ok := findRiskCategory(snapshot.Applications, line.GristProductID)
	if !ok {
		return decimal.Zero, errors.New("no application covers this product")
	}

	row, err := e.matrix.FindByCategoryRefs(ctx, riskRef, priceRef)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, errors.New("no risk matrix row for category pair")
		}
		return decimal.Zero, err
	}

	return row.Percentage.Mul(line.LineTotal), nil
}

// findRiskCategory returns the risk category of the first application whose
// product list contains the given product reference.
func findRiskCategory(applications []Application, productRef int64) (int64, bool) {
	for _, app := range applications {
		for _, ref := range app.ProductRefs {
			if ref == productRef {
				return app.RiskCategoryRef, true
			}
		}
	}
	return 0, false
}
