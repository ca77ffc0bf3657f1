// Package failover decorates a primary repository with an in-memory
// mirror. The fallback decision lives here, in one place, instead of
// being hidden inside every store method: a call goes to the primary,
// and only infrastructure failures (not domain errors) divert it to the
// mirror. Mirror consistency is best-effort; writes that succeed on the
// primary are replayed into the mirror so reads can survive an outage.
package failover

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
	"github.com/ecopick/recycle-api/pkg/metrics"
)

// domainError reports whether err carries business meaning that must
// reach the caller untouched. Only infrastructure errors trigger the
// mirror.
func domainError(err error) bool {
	var appErr *apperrors.AppError
	var insufficientErr *apperrors.InsufficientInventoryError
	var unknownErr *apperrors.UnknownMaterialError
	return errors.As(err, &appErr) ||
		errors.As(err, &insufficientErr) ||
		errors.As(err, &unknownErr)
}

// OrderRepository fails over order reads and writes to a mirror.
type OrderRepository struct {
	primary repository.OrderRepository
	mirror  repository.OrderRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOrderRepository(primary, mirror repository.OrderRepository, logger *logger.Logger, m *metrics.Metrics) *OrderRepository {
	return &OrderRepository{primary: primary, mirror: mirror, logger: logger, metrics: m}
}

func (r *OrderRepository) count(operation, target string) {
	if r.metrics != nil {
		r.metrics.DatabaseOperations.WithLabelValues(operation, target).Inc()
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	if err := r.primary.Create(ctx, order); err != nil {
		if domainError(err) {
			return err
		}
		r.logger.Error(err, "primary order store unavailable, writing to mirror")
		r.count("create", "mirror")
		return r.mirror.Create(ctx, order)
	}
	r.count("create", "primary")
	// Keep the mirror warm so reads survive a later outage.
	_ = r.mirror.Create(ctx, order)
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := r.primary.Get(ctx, id)
	if err != nil && !domainError(err) {
		r.logger.Error(err, "primary order store unavailable, reading from mirror")
		r.count("get", "mirror")
		return r.mirror.Get(ctx, id)
	}
	r.count("get", "primary")
	return order, err
}

func (r *OrderRepository) Update(ctx context.Context, order *model.Order) error {
	if err := r.primary.Update(ctx, order); err != nil {
		if domainError(err) {
			return err
		}
		r.logger.Error(err, "primary order store unavailable, updating mirror")
		r.count("update", "mirror")
		return r.mirror.Update(ctx, order)
	}
	r.count("update", "primary")
	_ = r.mirror.Update(ctx, order)
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.primary.Delete(ctx, id); err != nil {
		if domainError(err) {
			return err
		}
		r.logger.Error(err, "primary order store unavailable, deleting from mirror")
		r.count("delete", "mirror")
		return r.mirror.Delete(ctx, id)
	}
	r.count("delete", "primary")
	_ = r.mirror.Delete(ctx, id)
	return nil
}

func (r *OrderRepository) List(ctx context.Context, filters *model.OrderFilters) ([]*model.Order, error) {
	orders, err := r.primary.List(ctx, filters)
	if err != nil && !domainError(err) {
		r.logger.Error(err, "primary order store unavailable, listing from mirror")
		r.count("list", "mirror")
		return r.mirror.List(ctx, filters)
	}
	r.count("list", "primary")
	return orders, err
}
