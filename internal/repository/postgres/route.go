package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type routeRepository struct {
	*BaseRepository
}

func NewRouteRepository(base *BaseRepository) repository.RouteRepository {
	return &routeRepository{BaseRepository: base}
}

func (r *routeRepository) Create(ctx context.Context, route *model.LogisticRoute) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		routeQuery := `
			INSERT INTO logistic_routes (id, order_id, pickup_address, delivery_address,
				estimated_distance, status, assigned_logistician_id, selected_at, created_at, updated_at)
			VALUES (:id, :order_id, :pickup_address, :delivery_address,
				:estimated_distance, :status, :assigned_logistician_id, :selected_at, :created_at, :updated_at)`

		if _, err := tx.NamedExecContext(ctx, routeQuery, route); err != nil {
			return err
		}

		optionQuery := `
			INSERT INTO route_options (id, route_id, name, estimated_cost, estimated_time,
				transport_type, is_selected, created_at, updated_at)
			VALUES (:id, :route_id, :name, :estimated_cost, :estimated_time,
				:transport_type, :is_selected, :created_at, :updated_at)`

		for i := range route.Options {
			if _, err := tx.NamedExecContext(ctx, optionQuery, &route.Options[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *routeRepository) Get(ctx context.Context, id uuid.UUID) (*model.LogisticRoute, error) {
	var route model.LogisticRoute
	err := r.db.GetContext(ctx, &route, `SELECT * FROM logistic_routes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("route", err)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadOptions(ctx, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *routeRepository) loadOptions(ctx context.Context, route *model.LogisticRoute) error {
	options := []model.RouteOption{}
	err := r.db.SelectContext(ctx, &options,
		`SELECT * FROM route_options WHERE route_id = $1 ORDER BY estimated_cost`, route.ID)
	if err != nil {
		return err
	}
	route.Options = options
	return nil
}

func (r *routeRepository) Update(ctx context.Context, route *model.LogisticRoute) error {
	route.UpdatedAt = time.Now()
	query := `
		UPDATE logistic_routes
		SET status = :status, assigned_logistician_id = :assigned_logistician_id,
			selected_at = :selected_at, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, route)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("route", nil)
	}
	return nil
}

func (r *routeRepository) UpdateOption(ctx context.Context, option *model.RouteOption) error {
	option.UpdatedAt = time.Now()
	query := `
		UPDATE route_options
		SET is_selected = :is_selected, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, option)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("route option", nil)
	}
	return nil
}

func (r *routeRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.LogisticRoute, error) {
	routes := []*model.LogisticRoute{}
	err := r.db.SelectContext(ctx, &routes,
		`SELECT * FROM logistic_routes WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, err
	}
	for _, route := range routes {
		if err := r.loadOptions(ctx, route); err != nil {
			return nil, err
		}
	}
	return routes, nil
}
