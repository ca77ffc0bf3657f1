package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type inventoryRepository struct {
	mu    sync.Mutex
	items map[string]model.InventoryItem
}

func NewInventoryRepository() repository.InventoryRepository {
	return &inventoryRepository{items: make(map[string]model.InventoryItem)}
}

func (r *inventoryRepository) GetByMaterial(_ context.Context, materialType string) (*model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[materialType]
	if !ok {
		return nil, &apperrors.UnknownMaterialError{MaterialType: materialType}
	}
	return &item, nil
}

func (r *inventoryRepository) List(_ context.Context) ([]*model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*model.InventoryItem, 0, len(r.items))
	for key := range r.items {
		item := r.items[key]
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].MaterialType < items[j].MaterialType
	})
	return items, nil
}

func (r *inventoryRepository) Upsert(_ context.Context, item *model.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.LastUpdated = time.Now()
	r.items[item.MaterialType] = *item
	return nil
}

// Reserve holds the repository lock across the check and the increment,
// so the sellable balance can never be double-committed.
func (r *inventoryRepository) Reserve(_ context.Context, materialType string, quantity float64) (*model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[materialType]
	if !ok {
		return nil, &apperrors.UnknownMaterialError{MaterialType: materialType}
	}

	if item.SellableBalance() < quantity {
		return nil, &apperrors.InsufficientInventoryError{
			MaterialType: materialType,
			Requested:    quantity,
			Available:    item.SellableBalance(),
		}
	}

	item.ReservedQuantity += quantity
	item.LastUpdated = time.Now()
	r.items[materialType] = item
	return &item, nil
}

func (r *inventoryRepository) Release(_ context.Context, materialType string, quantity float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[materialType]
	if !ok {
		return &apperrors.UnknownMaterialError{MaterialType: materialType}
	}

	item.ReservedQuantity -= quantity
	if item.ReservedQuantity < 0 {
		item.ReservedQuantity = 0
	}
	item.LastUpdated = time.Now()
	r.items[materialType] = item
	return nil
}
