package grist

import (
	"context"

	appcatalog "github.com/isell/backend/internal/application/catalog"
)

// Feed adapts the Grist client to the application-layer feed ports used by
// the tariff import and risk matrix sync services.
type Feed struct {
	client *Client
}

// NewFeed creates a feed backed by the given client.
func NewFeed(client *Client) *Feed {
	return &Feed{client: client}
}

// Tariffs returns the tariff rows of the external document.
func (f *Feed) Tariffs(ctx context.Context) ([]appcatalog.TariffRecord, error) {
	records, err := f.client.Tariffs(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]appcatalog.TariffRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, appcatalog.TariffRecord{
			GristID:       rec.GristID,
			Name:          rec.Name,
			PaymentsCount: rec.PaymentsCount,
			OffsetDays:    rec.OffsetDays,
			Type:          rec.Type,
			Coefficient:   rec.Coefficient,
		})
	}
	return rows, nil
}

// RiskMatrix returns the (risk, price) percentage rows of the external document.
func (f *Feed) RiskMatrix(ctx context.Context) ([]appcatalog.MatrixRecord, error) {
	records, err := f.client.RiskMatrix(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]appcatalog.MatrixRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, appcatalog.MatrixRecord{
			GristID:       rec.GristID,
			Name:          rec.Name,
			RiskCategory:  rec.RiskCategory,
			PriceCategory: rec.PriceCategory,
			Percentage:    rec.Percentage,
		})
	}
	return rows, nil
}

// Ensure Feed implements the application feed ports
var (
	_ appcatalog.TariffFeed     = (*Feed)(nil)
	_ appcatalog.RiskMatrixFeed = (*Feed)(nil)
)
