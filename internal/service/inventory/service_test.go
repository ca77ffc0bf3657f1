package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/internal/repository/memory"
	"github.com/ecopick/recycle-api/internal/service/inventory"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
)

func newLedger(t *testing.T, available, reserved float64) (*inventory.Service, repository.InventoryRepository) {
	t.Helper()
	repo := memory.NewInventoryRepository()
	err := repo.Upsert(context.Background(), &model.InventoryItem{
		Base:              model.Base{ID: uuid.New(), CreatedAt: time.Now()},
		MaterialType:      model.MaterialPET,
		AvailableQuantity: available,
		ReservedQuantity:  reserved,
		MinThreshold:      50,
		MaxCapacity:       10000,
	})
	require.NoError(t, err)
	return inventory.NewService(repo, logger.NewLogger(nil)), repo
}

func assertInvariant(t *testing.T, repo repository.InventoryRepository) {
	t.Helper()
	item, err := repo.GetByMaterial(context.Background(), model.MaterialPET)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, item.ReservedQuantity, 0.0)
	assert.LessOrEqual(t, item.ReservedQuantity, item.AvailableQuantity)
}

func TestService_CheckAvailability(t *testing.T) {
	t.Run("should report availability from the sellable balance", func(t *testing.T) {
		svc, _ := newLedger(t, 1000, 300)

		ok, err := svc.CheckAvailability(context.Background(), model.MaterialPET, 700)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.CheckAvailability(context.Background(), model.MaterialPET, 701)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should report false for an unknown material instead of an error", func(t *testing.T) {
		svc, _ := newLedger(t, 1000, 0)

		ok, err := svc.CheckAvailability(context.Background(), "unobtainium", 1)

		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_Reserve(t *testing.T) {
	t.Run("should increment reserved quantity and hold the invariant", func(t *testing.T) {
		svc, repo := newLedger(t, 1000, 0)

		item, err := svc.Reserve(context.Background(), model.MaterialPET, 400, "order-1")

		require.NoError(t, err)
		assert.InDelta(t, 400, item.ReservedQuantity, 0.001)
		assert.InDelta(t, 600, item.SellableBalance(), 0.001)
		assertInvariant(t, repo)
	})

	t.Run("should return InsufficientInventoryError when the balance cannot cover", func(t *testing.T) {
		svc, repo := newLedger(t, 1000, 800)

		_, err := svc.Reserve(context.Background(), model.MaterialPET, 300, "order-2")

		var insufficientErr *apperrors.InsufficientInventoryError
		require.ErrorAs(t, err, &insufficientErr)
		assert.InDelta(t, 200, insufficientErr.Available, 0.001)
		assertInvariant(t, repo)
	})

	t.Run("should return UnknownMaterialError for a material the ledger has never seen", func(t *testing.T) {
		svc, _ := newLedger(t, 1000, 0)

		_, err := svc.Reserve(context.Background(), "unobtainium", 10, "order-3")

		var unknownErr *apperrors.UnknownMaterialError
		require.ErrorAs(t, err, &unknownErr)
	})

	t.Run("should reject non-positive quantities", func(t *testing.T) {
		svc, _ := newLedger(t, 1000, 0)

		_, err := svc.Reserve(context.Background(), model.MaterialPET, 0, "order-4")
		assert.Error(t, err)

		_, err = svc.Reserve(context.Background(), model.MaterialPET, -5, "order-5")
		assert.Error(t, err)
	})

	t.Run("should never over-commit under concurrent reservations", func(t *testing.T) {
		svc, repo := newLedger(t, 1000, 0)

		var wg sync.WaitGroup
		successes := make(chan struct{}, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.Reserve(context.Background(), model.MaterialPET, 100, "burst"); err == nil {
					successes <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(successes)

		count := 0
		for range successes {
			count++
		}
		assert.Equal(t, 10, count, "only 10 reservations of 100kg fit into 1000kg")
		assertInvariant(t, repo)
	})
}

func TestService_Release(t *testing.T) {
	t.Run("should decrement reserved quantity", func(t *testing.T) {
		svc, repo := newLedger(t, 1000, 500)

		require.NoError(t, svc.Release(context.Background(), model.MaterialPET, 200))

		item, err := repo.GetByMaterial(context.Background(), model.MaterialPET)
		require.NoError(t, err)
		assert.InDelta(t, 300, item.ReservedQuantity, 0.001)
		assertInvariant(t, repo)
	})

	t.Run("should floor the reservation at zero", func(t *testing.T) {
		svc, repo := newLedger(t, 1000, 100)

		require.NoError(t, svc.Release(context.Background(), model.MaterialPET, 500))

		item, err := repo.GetByMaterial(context.Background(), model.MaterialPET)
		require.NoError(t, err)
		assert.InDelta(t, 0, item.ReservedQuantity, 0.001)
		assertInvariant(t, repo)
	})
}
