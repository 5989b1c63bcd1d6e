package installment

import (
	"github.com/google/uuid"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Line is one product line entering a payment plan.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal

	// Tariff and DownPayment are only consulted by PerItemPlan.
	// A per-item line without a tariff is excluded from the plan, not
	// rejected; callers that care can compare input and output lengths.
	Tariff      *Tariff
	DownPayment decimal.Decimal
}

// Total returns quantity times unit price.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Allocation is one line with its down payment and remaining balance resolved.
type Allocation struct {
	ProductID   uuid.UUID
	Tariff      *Tariff
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	DownPayment decimal.Decimal
	Remaining   decimal.Decimal
}

// Plan is a payment-plan input variant. The two implementations are
// SharedPlan (one down payment and tariff split across every line) and
// PerItemPlan (each line brings its own). The variant is chosen once when
// the request is parsed; nothing downstream branches on a mode flag.
type Plan interface {
	Allocate() ([]Allocation, error)
}

// SharedPlan splits one down payment across all lines proportionally to each
// line's share of the grand total.
type SharedPlan struct {
	Tariff           *Tariff
	TotalDownPayment decimal.Decimal
	Lines            []Line
}

// Allocate distributes the shared down payment by price weight. A zero grand
// total allocates zero to every line rather than dividing by zero.
func (p SharedPlan) Allocate() ([]Allocation, error) {
	if len(p.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product list cannot be empty")
	}
	if p.Tariff == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Installment period is required")
	}
	if err := validatePlanTariff(p.Tariff); err != nil {
		return nil, err
	}
	if p.TotalDownPayment.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Down payment cannot be negative")
	}
	if err := validateLines(p.Lines); err != nil {
		return nil, err
	}

	grandTotal := decimal.Zero
	for _, line := range p.Lines {
		grandTotal = grandTotal.Add(line.Total())
	}

	allocations := make([]Allocation, 0, len(p.Lines))
	for _, line := range p.Lines {
		lineTotal := line.Total()
		downPayment := decimal.Zero
		if grandTotal.IsPositive() {
			downPayment = p.TotalDownPayment.Mul(lineTotal).Div(grandTotal)
		}
		allocations = append(allocations, Allocation{
			ProductID:   line.ProductID,
			Tariff:      p.Tariff,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   lineTotal,
			DownPayment: downPayment,
			Remaining:   lineTotal.Sub(downPayment),
		})
	}
	return allocations, nil
}

// PerItemPlan carries an explicit down payment and tariff on every line.
type PerItemPlan struct {
	Lines []Line
}

// Allocate validates each line and passes its own figures through. Lines
// without a tariff are skipped.
func (p PerItemPlan) Allocate() ([]Allocation, error) {
	if len(p.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product list cannot be empty")
	}
	if err := validateLines(p.Lines); err != nil {
		return nil, err
	}

	allocations := make([]Allocation, 0, len(p.Lines))
	for _, line := range p.Lines {
		if line.Tariff == nil {
			continue
		}
		if err := validatePlanTariff(line.Tariff); err != nil {
			return nil, err
		}
		if line.DownPayment.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Down payment cannot be negative")
		}
		lineTotal := line.Total()
		allocations = append(allocations, Allocation{
			ProductID:   line.ProductID,
			Tariff:      line.Tariff,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   lineTotal,
			DownPayment: line.DownPayment,
			Remaining:   lineTotal.Sub(line.DownPayment),
		})
	}
	return allocations, nil
}

func validatePlanTariff(t *Tariff) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if !t.IsActive {
		return shared.NewDomainError("INVALID_TARIFF", "Tariff is not active")
	}
	return nil
}

func validateLines(lines []Line) error {
	for _, line := range lines {
		if line.Quantity < 1 {
			return shared.NewDomainError("INVALID_INPUT", "Quantity must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", "Price cannot be negative")
		}
	}
	return nil
}
