// Package memory holds in-memory repository implementations. They back
// the failover mirror and the service-level tests; every read-modify-write
// sequence is serialized by the repository's own mutex.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type orderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]model.Order
}

func NewOrderRepository() repository.OrderRepository {
	return &orderRepository{orders: make(map[uuid.UUID]model.Order)}
}

func (r *orderRepository) Create(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = *order
	return nil
}

func (r *orderRepository) Get(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", nil)
	}
	return &order, nil
}

func (r *orderRepository) Update(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return apperrors.NotFound("order", nil)
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

func (r *orderRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return apperrors.NotFound("order", nil)
	}
	delete(r.orders, id)
	return nil
}

func (r *orderRepository) List(_ context.Context, filters *model.OrderFilters) ([]*model.Order, error) {
	filters.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*model.Order{}
	for id := range r.orders {
		order := r.orders[id]
		if filters.OwnerID != nil && order.OwnerID != *filters.OwnerID {
			continue
		}
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		matched = append(matched, &order)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return paginate(matched, filters.Pagination), nil
}

func paginate[T any](items []T, p model.Pagination) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
