package failover_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/internal/repository/failover"
	"github.com/ecopick/recycle-api/internal/repository/memory"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
)

// flakyPrimary wraps a real repository and can be switched off to
// simulate an outage.
type flakyPrimary struct {
	repository.OrderRepository
	down bool
}

var errConnRefused = errors.New("connection refused")

func (p *flakyPrimary) Create(ctx context.Context, o *model.Order) error {
	if p.down {
		return errConnRefused
	}
	return p.OrderRepository.Create(ctx, o)
}

func (p *flakyPrimary) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if p.down {
		return nil, errConnRefused
	}
	return p.OrderRepository.Get(ctx, id)
}

func newOrder() *model.Order {
	return &model.Order{
		Base:          model.Base{ID: uuid.New()},
		OwnerID:       uuid.New(),
		MaterialType:  model.MaterialPET,
		Volume:        100,
		PickupAddress: "12 Mill Road, Greenfield",
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
	}
}

func TestOrderRepository_Failover(t *testing.T) {
	t.Run("should read from the mirror when the primary is down", func(t *testing.T) {
		primary := &flakyPrimary{OrderRepository: memory.NewOrderRepository()}
		repo := failover.NewOrderRepository(primary, memory.NewOrderRepository(), logger.NewLogger(nil), nil)

		o := newOrder()
		require.NoError(t, repo.Create(context.Background(), o))

		primary.down = true
		found, err := repo.Get(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)
	})

	t.Run("should write to the mirror when the primary is down", func(t *testing.T) {
		primary := &flakyPrimary{OrderRepository: memory.NewOrderRepository(), down: true}
		mirror := memory.NewOrderRepository()
		repo := failover.NewOrderRepository(primary, mirror, logger.NewLogger(nil), nil)

		o := newOrder()
		require.NoError(t, repo.Create(context.Background(), o))

		found, err := mirror.Get(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)
	})

	t.Run("should pass domain errors through without diverting", func(t *testing.T) {
		primary := &flakyPrimary{OrderRepository: memory.NewOrderRepository()}
		mirror := memory.NewOrderRepository()
		require.NoError(t, mirror.Create(context.Background(), newOrder()))
		repo := failover.NewOrderRepository(primary, mirror, logger.NewLogger(nil), nil)

		_, err := repo.Get(context.Background(), uuid.New())

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
	})
}
