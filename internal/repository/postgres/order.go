package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type orderRepository struct {
	*BaseRepository
}

func NewOrderRepository(base *BaseRepository) repository.OrderRepository {
	return &orderRepository{BaseRepository: base}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (id, owner_id, material_type, volume, pickup_address,
			price, environmental_impact, status, payment_status, created_at, updated_at)
		VALUES (:id, :owner_id, :material_type, :volume, :pickup_address,
			:price, :environmental_impact, :status, :payment_status, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, order)
	return err
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, `SELECT * FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("order", err)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	order.UpdatedAt = time.Now()
	query := `
		UPDATE orders
		SET status = :status, payment_status = :payment_status, price = :price,
			environmental_impact = :environmental_impact, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, order)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("order", nil)
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("order", nil)
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, filters *model.OrderFilters) ([]*model.Order, error) {
	filters.Normalize()

	query := `SELECT * FROM orders WHERE 1=1`
	args := []interface{}{}

	if filters.OwnerID != nil {
		args = append(args, *filters.OwnerID)
		query += ` AND owner_id = $1`
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		query += ` AND status = $` + itoa(len(args))
	}

	args = append(args, filters.Limit, filters.Offset())
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	orders := []*model.Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, err
	}
	return orders, nil
}
