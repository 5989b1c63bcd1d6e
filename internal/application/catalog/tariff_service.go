package catalog

import (
	"context"
	"errors"

	"github.com/isell/backend/internal/domain/installment"
	"github.com/isell/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TariffRecord is one tariff row pulled from the external document.
type TariffRecord struct {
	GristID       int64
	Name          string
	PaymentsCount int
	OffsetDays    int
	Type          string
	Coefficient   decimal.Decimal
}

// TariffFeed pulls tariff rows from the external catalog. Implemented by the
// Grist client in the infrastructure layer.
type TariffFeed interface {
	Tariffs(ctx context.Context) ([]TariffRecord, error)
}

// TariffService lists active tariffs and imports them from the external feed.
type TariffService struct {
	tariffs installment.TariffRepository
	feed    TariffFeed
	logger  *zap.Logger
}

// NewTariffService creates a tariff service.
func NewTariffService(tariffs installment.TariffRepository, feed TariffFeed, logger *zap.Logger) *TariffService {
	return &TariffService{
		tariffs: tariffs,
		feed:    feed,
		logger:  logger,
	}
}

// List returns active tariffs, optionally filtered by name.
func (s *TariffService) List(ctx context.Context, search string) ([]TariffResponse, error) {
	filter := shared.DefaultFilter()
	filter.Search = search

	tariffs, err := s.tariffs.FindActive(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]TariffResponse, 0, len(tariffs))
	for i := range tariffs {
		responses = append(responses, ToTariffResponse(&tariffs[i]))
	}
	return responses, nil
}

// Import pulls every tariff row from the feed and upserts local tariffs by
// their external reference. Rows that would not survive tariff validation are
// skipped and logged, not fatal.
func (s *TariffService) Import(ctx context.Context) (*SyncResult, error) {
	records, err := s.feed.Tariffs(ctx)
	if err != nil {
		s.logger.Error("Tariff feed unavailable", zap.Error(err))
		return nil, shared.NewDomainError("EXTERNAL_DATA", "Tariff catalog is unavailable")
	}

	result := &SyncResult{}
	for _, record := range records {
		if err := s.upsertTariff(ctx, record, result); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Tariff import finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *TariffService) upsertTariff(ctx context.Context, record TariffRecord, result *SyncResult) error {
	existing, err := s.tariffs.FindByGristID(ctx, record.GristID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		tariff, err := installment.NewTariff(record.Name, record.PaymentsCount,
			record.OffsetDays, record.Type, record.Coefficient)
		if err != nil {
			s.logger.Warn("Skipping invalid tariff row",
				zap.Int64("grist_id", record.GristID),
				zap.Error(err))
			result.Skipped++
			return nil
		}
		tariff.GristTariffID = record.GristID
		if err := s.tariffs.Save(ctx, tariff); err != nil {
			return err
		}
		result.Created++
		return nil

	case err != nil:
		return err

	default:
		existing.Name = record.Name
		existing.PaymentsCount = record.PaymentsCount
		existing.OffsetDays = record.OffsetDays
		existing.Type = record.Type
		existing.Coefficient = record.Coefficient
		if err := existing.Validate(); err != nil {
			s.logger.Warn("Skipping invalid tariff row",
				zap.Int64("grist_id", record.GristID),
				zap.Error(err))
			result.Skipped++
			return nil
		}
		if err := s.tariffs.Save(ctx, existing); err != nil {
			return err
		}
		result.Updated++
		return nil
	}
}
