package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
)

// Service is the warehouse stock ledger. The availability check inside
// Reserve and the reserved-quantity increment happen as one atomic unit
// at the repository, so concurrent reservations of the same material
// cannot over-commit stock.
type Service struct {
	repo   repository.InventoryRepository
	logger *logger.Logger
}

func NewService(repo repository.InventoryRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CheckAvailability reports whether the sellable balance covers
// quantity. An unknown material is reported as unavailable, not as an
// error; this call is advisory and a later Reserve re-checks.
func (s *Service) CheckAvailability(ctx context.Context, materialType string, quantity float64) (bool, error) {
	item, err := s.repo.GetByMaterial(ctx, materialType)
	if err != nil {
		var unknownErr *apperrors.UnknownMaterialError
		if errors.As(err, &unknownErr) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return item.SellableBalance() >= quantity, nil
}

// Reserve places a provisional hold against available stock. Returns
// UnknownMaterialError or InsufficientInventoryError for the caller to
// route escalation.
func (s *Service) Reserve(ctx context.Context, materialType string, quantity float64, correlationID string) (*model.InventoryItem, error) {
	if quantity <= 0 {
		return nil, apperrors.BadRequest("reservation quantity must be positive", nil)
	}

	item, err := s.repo.Reserve(ctx, materialType, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reserved stock",
		"material", materialType,
		"quantity", quantity,
		"correlation_id", correlationID,
		"sellable_balance", item.SellableBalance())

	if item.BelowThreshold() {
		s.logger.Warn("sellable balance below minimum threshold",
			"material", materialType,
			"balance", item.SellableBalance(),
			"threshold", item.MinThreshold)
	}
	return item, nil
}

// Release undoes a reservation, floored at zero. Used as the
// compensating action when a saga step after reservation fails.
func (s *Service) Release(ctx context.Context, materialType string, quantity float64) error {
	if err := s.repo.Release(ctx, materialType, quantity); err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	s.logger.Info("released reservation", "material", materialType, "quantity", quantity)
	return nil
}

// GetByMaterial exposes the current ledger entry for one material.
func (s *Service) GetByMaterial(ctx context.Context, materialType string) (*model.InventoryItem, error) {
	return s.repo.GetByMaterial(ctx, materialType)
}

// List exposes the full ledger.
func (s *Service) List(ctx context.Context) ([]*model.InventoryItem, error) {
	return s.repo.List(ctx)
}
