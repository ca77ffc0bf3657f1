package route

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/internal/service/notification"
	"github.com/ecopick/recycle-api/internal/service/pricing"
	"github.com/ecopick/recycle-api/pkg/clock"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
)

// Notifier is the slice of the dispatcher the route service needs.
type Notifier interface {
	SendFromTemplate(ctx context.Context, templateName string, userID uuid.UUID, variables map[string]string, overrides *notification.Overrides) (uuid.UUID, error)
}

// DocumentGenerator is invoked after a route option is chosen, so the
// paperwork pipeline can start. Generation failures never undo the
// selection.
type DocumentGenerator interface {
	GenerateWaybill(ctx context.Context, route *model.LogisticRoute, order *model.Order) error
}

type noopDocumentGenerator struct{}

func (noopDocumentGenerator) GenerateWaybill(context.Context, *model.LogisticRoute, *model.Order) error {
	return nil
}

// Option tradeoffs offered on every automatic route. Costs scale with
// distance on top of a flat handling fee.
var defaultOptions = []struct {
	name      string
	baseCost  float64
	perKm     float64
	eta       string
	transport string
}{
	{name: "Economy", baseCost: 300, perKm: 25, eta: "3-5 days", transport: "truck"},
	{name: "Standard", baseCost: 500, perKm: 40, eta: "1-2 days", transport: "van"},
	{name: "Express", baseCost: 1200, perKm: 70, eta: "same day", transport: "cargo van"},
}

type Service struct {
	routes           repository.RouteRepository
	orders           repository.OrderRepository
	users            repository.UserRepository
	notifier         Notifier
	distance         pricing.DistanceProvider
	documents        DocumentGenerator
	clock            clock.Clock
	logger           *logger.Logger
	warehouseAddress string
}

func NewService(
	routes repository.RouteRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	notifier Notifier,
	distance pricing.DistanceProvider,
	documents DocumentGenerator,
	clk clock.Clock,
	logger *logger.Logger,
	warehouseAddress string,
) *Service {
	if documents == nil {
		documents = noopDocumentGenerator{}
	}
	if warehouseAddress == "" {
		warehouseAddress = "Central recycling depot, Greenfield"
	}
	return &Service{
		routes:           routes,
		orders:           orders,
		users:            users,
		notifier:         notifier,
		distance:         distance,
		documents:        documents,
		clock:            clk,
		logger:           logger,
		warehouseAddress: warehouseAddress,
	}
}

// CreateAutomaticRoutes spawns one pending route for the order with the
// standard option set and tells every logistician about it. There is no
// load balancing: the first member of the role group gets the
// assignment, the rest get the same notification and can pick the route
// up through selection.
func (s *Service) CreateAutomaticRoutes(ctx context.Context, order *model.Order) (*model.LogisticRoute, error) {
	logisticians, err := s.users.GetByRole(ctx, model.RoleLogistician)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logisticians: %w", err)
	}
	if len(logisticians) == 0 {
		return nil, apperrors.NotFound("available logistician", nil)
	}

	distanceKm := s.resolveDistance(ctx, order.PickupAddress)

	now := s.clock.Now()
	route := &model.LogisticRoute{
		Base:                  model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OrderID:               order.ID,
		PickupAddress:         order.PickupAddress,
		DeliveryAddress:       s.warehouseAddress,
		EstimatedDistance:     distanceKm,
		Status:                model.RouteStatusPending,
		AssignedLogisticianID: logisticians[0].ID,
	}
	for _, opt := range defaultOptions {
		route.Options = append(route.Options, model.RouteOption{
			Base:          model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			RouteID:       route.ID,
			Name:          opt.name,
			EstimatedCost: opt.baseCost + opt.perKm*distanceKm,
			EstimatedTime: opt.eta,
			TransportType: opt.transport,
		})
	}

	if err := s.routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	vars := map[string]string{
		"orderId": order.ID.String(),
		"pickup":  order.PickupAddress,
	}
	for _, logistician := range logisticians {
		if _, err := s.notifier.SendFromTemplate(ctx, model.TemplateRouteAssigned, logistician.ID, vars, nil); err != nil {
			s.logger.Error(err, "failed to notify logistician about new route",
				"route_id", route.ID.String(), "user_id", logistician.ID.String())
		}
	}

	s.logger.Info("automatic route created",
		"route_id", route.ID.String(),
		"order_id", order.ID.String(),
		"assigned_to", logisticians[0].ID.String(),
		"distance_km", route.EstimatedDistance)
	return route, nil
}

// SelectRoute commits one option of a pending route. The actor must
// hold the logistics role (admins pass too). Selection accepts the
// route, accepts the parent order and notifies its owner.
func (s *Service) SelectRoute(ctx context.Context, routeID, optionID, actingUserID uuid.UUID) (*model.LogisticRoute, error) {
	actor, err := s.users.Get(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve acting user: %w", err)
	}
	if actor.Role != model.RoleLogistician && actor.Role != model.RoleAdmin {
		return nil, apperrors.Forbidden("only logisticians can select routes")
	}

	route, err := s.routes.Get(ctx, routeID)
	if err != nil {
		return nil, err
	}

	var chosen *model.RouteOption
	for i := range route.Options {
		if route.Options[i].ID == optionID {
			chosen = &route.Options[i]
			break
		}
	}
	if chosen == nil {
		return nil, apperrors.NotFound(fmt.Sprintf("route option %s", optionID), nil)
	}

	now := s.clock.Now()
	for i := range route.Options {
		opt := &route.Options[i]
		selected := opt.ID == optionID
		if opt.IsSelected == selected {
			continue
		}
		opt.IsSelected = selected
		opt.UpdatedAt = now
		if err := s.routes.UpdateOption(ctx, opt); err != nil {
			return nil, fmt.Errorf("failed to update route option: %w", err)
		}
	}

	route.Status = model.RouteStatusAccepted
	route.SelectedAt = &now
	route.UpdatedAt = now
	if err := s.routes.Update(ctx, route); err != nil {
		return nil, fmt.Errorf("failed to accept route: %w", err)
	}

	order, err := s.orders.Get(ctx, route.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent order: %w", err)
	}
	order.Status = model.OrderStatusAccepted
	order.UpdatedAt = now
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to accept parent order: %w", err)
	}

	if _, err := s.notifier.SendFromTemplate(ctx, model.TemplateRouteSelected, order.OwnerID, map[string]string{
		"orderId":   order.ID.String(),
		"option":    chosen.Name,
		"transport": chosen.TransportType,
		"eta":       chosen.EstimatedTime,
	}, nil); err != nil {
		s.logger.Error(err, "failed to notify customer about route selection",
			"order_id", order.ID.String())
	}

	if err := s.documents.GenerateWaybill(ctx, route, order); err != nil {
		s.logger.Error(err, "waybill generation failed", "route_id", route.ID.String())
	}

	s.logger.Info("route option selected",
		"route_id", route.ID.String(),
		"option", chosen.Name,
		"selected_by", actingUserID.String())
	return route, nil
}

// ListByOrder returns every route spawned for an order.
func (s *Service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.LogisticRoute, error) {
	return s.routes.ListByOrder(ctx, orderID)
}

// Get returns one route with its options.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.LogisticRoute, error) {
	return s.routes.Get(ctx, id)
}

func (s *Service) resolveDistance(ctx context.Context, pickupAddress string) float64 {
	if s.distance == nil {
		return 20
	}
	info, err := s.distance.Distance(ctx, pickupAddress, s.warehouseAddress)
	if err != nil {
		s.logger.Warn("distance provider unavailable, using default distance",
			"address", pickupAddress, "error", err.Error())
		return 20
	}
	return info.DistanceKm
}
