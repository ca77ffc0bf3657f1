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

type routeRepository struct {
	mu     sync.RWMutex
	routes map[uuid.UUID]model.LogisticRoute
}

func NewRouteRepository() repository.RouteRepository {
	return &routeRepository{routes: make(map[uuid.UUID]model.LogisticRoute)}
}

func (r *routeRepository) Create(_ context.Context, route *model.LogisticRoute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.ID] = cloneRoute(route)
	return nil
}

func (r *routeRepository) Get(_ context.Context, id uuid.UUID) (*model.LogisticRoute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[id]
	if !ok {
		return nil, apperrors.NotFound("route", nil)
	}
	copied := cloneRoute(&route)
	return &copied, nil
}

func (r *routeRepository) Update(_ context.Context, route *model.LogisticRoute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.routes[route.ID]
	if !ok {
		return apperrors.NotFound("route", nil)
	}
	route.UpdatedAt = time.Now()
	updated := cloneRoute(route)
	if len(updated.Options) == 0 {
		updated.Options = existing.Options
	}
	r.routes[route.ID] = updated
	return nil
}

func (r *routeRepository) UpdateOption(_ context.Context, option *model.RouteOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[option.RouteID]
	if !ok {
		return apperrors.NotFound("route", nil)
	}
	for i := range route.Options {
		if route.Options[i].ID == option.ID {
			option.UpdatedAt = time.Now()
			route.Options[i] = *option
			r.routes[route.ID] = route
			return nil
		}
	}
	return apperrors.NotFound("route option", nil)
}

func (r *routeRepository) ListByOrder(_ context.Context, orderID uuid.UUID) ([]*model.LogisticRoute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routes := []*model.LogisticRoute{}
	for id := range r.routes {
		route := r.routes[id]
		if route.OrderID == orderID {
			copied := cloneRoute(&route)
			routes = append(routes, &copied)
		}
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].CreatedAt.Before(routes[j].CreatedAt)
	})
	return routes, nil
}

func cloneRoute(route *model.LogisticRoute) model.LogisticRoute {
	copied := *route
	copied.Options = make([]model.RouteOption, len(route.Options))
	copy(copied.Options, route.Options)
	return copied
}
