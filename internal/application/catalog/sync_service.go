package catalog

import (
	"context"
	"errors"

	"github.com/isell/backend/internal/domain/catalog"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MatrixRecord is one (risk category, price category) percentage row from the
// external document.
type MatrixRecord struct {
	GristID       int64
	Name          string
	RiskCategory  int64
	PriceCategory int64
	Percentage    decimal.Decimal
}

// RiskMatrixFeed pulls the risk matrix from the external catalog. Implemented
// by the Grist client in the infrastructure layer.
type RiskMatrixFeed interface {
	RiskMatrix(ctx context.Context) ([]MatrixRecord, error)
}

// RiskSyncService mirrors the external risk matrix into local
// ProductCategoryRisk rows, keyed by the (risk, price) category pair.
type RiskSyncService struct {
	matrix catalog.ProductCategoryRiskRepository
	feed   RiskMatrixFeed
	logger *zap.Logger
}

// NewRiskSyncService creates a risk matrix sync service.
func NewRiskSyncService(matrix catalog.ProductCategoryRiskRepository, feed RiskMatrixFeed, logger *zap.Logger) *RiskSyncService {
	return &RiskSyncService{
		matrix: matrix,
		feed:   feed,
		logger: logger,
	}
}

// Sync pulls every matrix row from the feed and upserts local rows by the
// (risk, price) pair. Rows with an out-of-range percentage are skipped.
func (s *RiskSyncService) Sync(ctx context.Context) (*SyncResult, error) {
	records, err := s.feed.RiskMatrix(ctx)
	if err != nil {
		s.logger.Error("Risk matrix feed unavailable", zap.Error(err))
		return nil, shared.NewDomainError("EXTERNAL_DATA", "Risk matrix is unavailable")
	}

	result := &SyncResult{}
	for _, record := range records {
		if err := s.upsertRow(ctx, record, result); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Risk matrix sync finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *RiskSyncService) upsertRow(ctx context.Context, record MatrixRecord, result *SyncResult) error {
	existing, err := s.matrix.FindByCategoryRefs(ctx, record.RiskCategory, record.PriceCategory)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		row, err := catalog.NewProductCategoryRisk(record.Name,
			record.RiskCategory, record.PriceCategory, record.Percentage)
		if err != nil {
			s.logger.Warn("Skipping invalid risk matrix row",
				zap.Int64("grist_id", record.GristID),
				zap.Error(err))
			result.Skipped++
			return nil
		}
		if err := s.matrix.Save(ctx, row); err != nil {
			return err
		}
		result.Created++
		return nil

	case err != nil:
		return err

	default:
		existing.Name = record.Name
		existing.Percentage = record.Percentage
		if err := existing.Validate(); err != nil {
			s.logger.Warn("Skipping invalid risk matrix row",
				zap.Int64("grist_id", record.GristID),
				zap.Error(err))
			result.Skipped++
			return nil
		}
		if err := s.matrix.Save(ctx, existing); err != nil {
			return err
		}
		result.Updated++
		return nil
	}
}
