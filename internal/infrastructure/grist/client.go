package grist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/isell/backend/internal/domain/risk"
	"github.com/isell/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxResponseSize limits how much of a Grist response we are willing to read
const maxResponseSize = 8 << 20 // 8MB

// Common errors
var (
	ErrMissingAPIKey     = errors.New("grist api key is required")
	ErrMissingDocID      = errors.New("grist doc id is required")
	ErrUnexpectedStatus  = errors.New("grist returned unexpected status")
	ErrMalformedResponse = errors.New("grist response could not be decoded")
)

// Client talks to the Grist REST API for one document. All configuration is
// injected at construction; nothing is read from ambient process state.
type Client struct {
	baseURL string
	apiKey  string
	docID   string
	tables  tableNames
	http    *http.Client
	logger  *zap.Logger
}

type tableNames struct {
	applications string
	products     string
	tariffs      string
	matrix       string
}

// NewClient creates a Grist client from configuration.
func NewClient(cfg config.GristConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.DocID == "" {
		return nil, ErrMissingDocID
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		docID:   cfg.DocID,
		tables: tableNames{
			applications: cfg.ApplicsTable,
			products:     cfg.ProductsTable,
			tariffs:      cfg.TariffsTable,
			matrix:       cfg.MatrixTable,
		},
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("grist"),
	}, nil
}

// record is one row of a Grist table
type record struct {
	ID     int64           `json:"id"`
	Fields json.RawMessage `json:"fields"`
}

type recordsResponse struct {
	Records []record `json:"records"`
}

// refList decodes a Grist reference-list cell, which arrives as
// ["L", id1, id2, ...].
type refList []int64

func (r *refList) UnmarshalJSON(data []byte) error {
	var raw []json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		// Reference lists mix a string marker with numbers, so decode loosely
		var mixed []interface{}
		if err := json.Unmarshal(data, &mixed); err != nil {
			return err
		}
		*r = (*r)[:0]
		for _, v := range mixed {
			if n, ok := v.(float64); ok {
				*r = append(*r, int64(n))
			}
		}
		return nil
	}
	*r = (*r)[:0]
	for _, n := range raw {
		id, err := n.Int64()
		if err != nil {
			return err
		}
		*r = append(*r, id)
	}
	return nil
}

// fetchRecords retrieves every row of one table.
func (c *Client) fetchRecords(ctx context.Context, table string) ([]record, error) {
	endpoint := fmt.Sprintf("%s/api/docs/%s/tables/%s/records",
		c.baseURL, url.PathEscape(c.docID), url.PathEscape(table))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, table)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	var decoded recordsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return decoded.Records, nil
}

type applicationFields struct {
	Products     refList `json:"Products"`
	RiskCategory int64   `json:"Risk_category"`
}

type productFields struct {
	PriceCategory int64 `json:"Price_category"`
}

// Snapshot fetches the catalog state the risk evaluator needs: the
// product to price-category mapping and the list of applications.
func (c *Client) Snapshot(ctx context.Context) (*risk.CatalogSnapshot, error) {
	productRecords, err := c.fetchRecords(ctx, c.tables.products)
	if err != nil {
		return nil, err
	}
	applicationRecords, err := c.fetchRecords(ctx, c.tables.applications)
	if err != nil {
		return nil, err
	}

	snapshot := &risk.CatalogSnapshot{
		ProductPriceCategories: make(map[int64]int64, len(productRecords)),
	}
	for _, rec := range productRecords {
		var fields productFields
		if err := json.Unmarshal(rec.Fields, &fields); err != nil {
			return nil, fmt.Errorf("%w: product %d: %v", ErrMalformedResponse, rec.ID, err)
		}
		if fields.PriceCategory != 0 {
			snapshot.ProductPriceCategories[rec.ID] = fields.PriceCategory
		}
	}
	for _, rec := range applicationRecords {
		var fields applicationFields
		if err := json.Unmarshal(rec.Fields, &fields); err != nil {
			return nil, fmt.Errorf("%w: application %d: %v", ErrMalformedResponse, rec.ID, err)
		}
		snapshot.Applications = append(snapshot.Applications, risk.Application{
			ProductRefs:     fields.Products,
			RiskCategoryRef: fields.RiskCategory,
		})
	}

	c.logger.Debug("Fetched catalog snapshot",
		zap.Int("products", len(snapshot.ProductPriceCategories)),
		zap.Int("applications", len(snapshot.Applications)))
	return snapshot, nil
}

// TariffRecord is one tariff row from the external document.
type TariffRecord struct {
	GristID       int64
	Name          string
	PaymentsCount int
	OffsetDays    int
	Type          string
	Coefficient   decimal.Decimal
}

type tariffFields struct {
	Name          string          `json:"Name"`
	PaymentsCount int             `json:"Payments_count"`
	OffsetDays    int             `json:"Offset_days"`
	Type          string          `json:"Type"`
	Coefficient   decimal.Decimal `json:"Coefficient"`
}

// Tariffs fetches tariff rows for the import job.
func (c *Client) Tariffs(ctx context.Context) ([]TariffRecord, error) {
	records, err := c.fetchRecords(ctx, c.tables.tariffs)
	if err != nil {
		return nil, err
	}

	tariffs := make([]TariffRecord, 0, len(records))
	for _, rec := range records {
		var fields tariffFields
		if err := json.Unmarshal(rec.Fields, &fields); err != nil {
			return nil, fmt.Errorf("%w: tariff %d: %v", ErrMalformedResponse, rec.ID, err)
		}
		tariffs = append(tariffs, TariffRecord{
			GristID:       rec.ID,
			Name:          fields.Name,
			PaymentsCount: fields.PaymentsCount,
			OffsetDays:    fields.OffsetDays,
			Type:          fields.Type,
			Coefficient:   fields.Coefficient,
		})
	}
	return tariffs, nil
}

// MatrixRecord is one (risk category, price category) percentage row.
type MatrixRecord struct {
	GristID       int64
	Name          string
	RiskCategory  int64
	PriceCategory int64
	Percentage    decimal.Decimal
}

type matrixFields struct {
	Name          string          `json:"Name"`
	RiskCategory  int64           `json:"Risk_category"`
	PriceCategory int64           `json:"Price_category"`
	Percentage    decimal.Decimal `json:"Percentage"`
}

// RiskMatrix fetches the (risk, price) percentage matrix for the sync job.
func (c *Client) RiskMatrix(ctx context.Context) ([]MatrixRecord, error) {
	records, err := c.fetchRecords(ctx, c.tables.matrix)
	if err != nil {
		return nil, err
	}

	rows := make([]MatrixRecord, 0, len(records))
	for _, rec := range records {
		var fields matrixFields
		if err := json.Unmarshal(rec.Fields, &fields); err != nil {
			return nil, fmt.Errorf("%w: matrix %d: %v", ErrMalformedResponse, rec.ID, err)
		}
		rows = append(rows, MatrixRecord{
			GristID:       rec.ID,
			Name:          fields.Name,
			RiskCategory:  fields.RiskCategory,
			PriceCategory: fields.PriceCategory,
			Percentage:    fields.Percentage,
		})
	}
	return rows, nil
}

// Ensure Client implements risk.CatalogSource
var _ risk.CatalogSource = (*Client)(nil)
