package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type inventoryRepository struct {
	*BaseRepository
}

func NewInventoryRepository(base *BaseRepository) repository.InventoryRepository {
	return &inventoryRepository{BaseRepository: base}
}

func (r *inventoryRepository) GetByMaterial(ctx context.Context, materialType string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.GetContext(ctx, &item,
		`SELECT * FROM inventory_items WHERE material_type = $1`, materialType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperrors.UnknownMaterialError{MaterialType: materialType}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context) ([]*model.InventoryItem, error) {
	items := []*model.InventoryItem{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM inventory_items ORDER BY material_type`)
	return items, err
}

func (r *inventoryRepository) Upsert(ctx context.Context, item *model.InventoryItem) error {
	item.LastUpdated = time.Now()
	query := `
		INSERT INTO inventory_items (id, material_type, available_quantity, reserved_quantity,
			min_threshold, max_capacity, last_updated, created_at, updated_at)
		VALUES (:id, :material_type, :available_quantity, :reserved_quantity,
			:min_threshold, :max_capacity, :last_updated, :created_at, :updated_at)
		ON CONFLICT (material_type) DO UPDATE
		SET available_quantity = EXCLUDED.available_quantity,
			min_threshold = EXCLUDED.min_threshold,
			max_capacity = EXCLUDED.max_capacity,
			last_updated = EXCLUDED.last_updated,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, item)
	return err
}

// Reserve performs the availability check and the increment in a single
// conditional UPDATE, so two concurrent reservations can never both pass
// a stale check.
func (r *inventoryRepository) Reserve(ctx context.Context, materialType string, quantity float64) (*model.InventoryItem, error) {
	var item model.InventoryItem
	query := `
		UPDATE inventory_items
		SET reserved_quantity = reserved_quantity + $1, last_updated = NOW(), updated_at = NOW()
		WHERE material_type = $2
		  AND available_quantity - reserved_quantity >= $1
		RETURNING *`

	err := r.db.GetContext(ctx, &item, query, quantity, materialType)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish unknown material from insufficient stock.
		existing, getErr := r.GetByMaterial(ctx, materialType)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &apperrors.InsufficientInventoryError{
			MaterialType: materialType,
			Requested:    quantity,
			Available:    existing.SellableBalance(),
		}
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) Release(ctx context.Context, materialType string, quantity float64) error {
	query := `
		UPDATE inventory_items
		SET reserved_quantity = GREATEST(reserved_quantity - $1, 0),
			last_updated = NOW(), updated_at = NOW()
		WHERE material_type = $2`

	res, err := r.db.ExecContext(ctx, query, quantity, materialType)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &apperrors.UnknownMaterialError{MaterialType: materialType}
	}
	return nil
}
