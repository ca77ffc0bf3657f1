package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/internal/service/notification"
	"github.com/ecopick/recycle-api/internal/service/pricing"
	"github.com/ecopick/recycle-api/pkg/clock"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
	"github.com/ecopick/recycle-api/pkg/metrics"
)

const maxOrderVolumeKg = 10000.0

// Ledger is the slice of the inventory service the saga needs.
type Ledger interface {
	CheckAvailability(ctx context.Context, materialType string, quantity float64) (bool, error)
	Reserve(ctx context.Context, materialType string, quantity float64, correlationID string) (*model.InventoryItem, error)
	Release(ctx context.Context, materialType string, quantity float64) error
	GetByMaterial(ctx context.Context, materialType string) (*model.InventoryItem, error)
}

// Pricer computes the order quote.
type Pricer interface {
	Price(ctx context.Context, materialType string, volume float64, pickupAddress string, knownDistance *float64) *pricing.Quote
}

// RouteCreator spawns the automatic delivery route for a new order.
type RouteCreator interface {
	CreateAutomaticRoutes(ctx context.Context, order *model.Order) (*model.LogisticRoute, error)
}

// Notifier is the slice of the dispatcher the saga needs.
type Notifier interface {
	SendFromTemplate(ctx context.Context, templateName string, userID uuid.UUID, variables map[string]string, overrides *notification.Overrides) (uuid.UUID, error)
}

// Service runs the order-creation saga:
// validate, price, persist, reserve, route, notify. Reservation failure
// after persistence triggers the compensation path: the order is
// deleted and the reservation released before the error surfaces.
type Service struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	ledger   Ledger
	pricer   Pricer
	router   RouteCreator
	notifier Notifier
	clock    clock.Clock
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	ledger Ledger,
	pricer Pricer,
	router RouteCreator,
	notifier Notifier,
	clk clock.Clock,
	logger *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		orders:   orders,
		users:    users,
		ledger:   ledger,
		pricer:   pricer,
		router:   router,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
		metrics:  m,
	}
}

// CreateOrder is the saga entry point. On success the persisted order is
// returned; routing and notification failures after persistence are
// logged and never undo the order.
func (s *Service) CreateOrder(ctx context.Context, ownerID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	available, err := s.ledger.CheckAvailability(ctx, req.MaterialType, req.Volume)
	if err != nil {
		return nil, fmt.Errorf("availability check failed: %w", err)
	}
	if !available {
		err := s.insufficiencyError(ctx, req.MaterialType, req.Volume)
		s.escalateToWarehouse(ctx, req.MaterialType, req.Volume, err.Error())
		return nil, err
	}

	quote := s.pricer.Price(ctx, req.MaterialType, req.Volume, req.PickupAddress, nil)

	now := s.clock.Now()
	order := &model.Order{
		Base:                model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OwnerID:             ownerID,
		MaterialType:        req.MaterialType,
		Volume:              req.Volume,
		PickupAddress:       req.PickupAddress,
		Price:               quote.TotalPrice,
		EnvironmentalImpact: quote.EnvironmentalImpact,
		Status:              model.OrderStatusPending,
		PaymentStatus:       model.PaymentStatusUnpaid,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	if _, err := s.ledger.Reserve(ctx, req.MaterialType, req.Volume, order.ID.String()); err != nil {
		s.compensate(ctx, order)
		s.escalateToWarehouse(ctx, req.MaterialType, req.Volume, err.Error())
		if s.metrics != nil {
			s.metrics.ReservationsFailed.Inc()
		}
		return nil, fmt.Errorf("stock reservation failed for order %s: %w", order.ID, err)
	}

	if _, err := s.router.CreateAutomaticRoutes(ctx, order); err != nil {
		s.logger.Error(err, "automatic route creation failed, order stands without a route",
			"order_id", order.ID.String())
	}

	s.notifyCustomer(ctx, order)

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.logger.Info("order created",
		"order_id", order.ID.String(),
		"owner_id", ownerID.String(),
		"material", order.MaterialType,
		"volume", order.Volume,
		"total", order.Price)
	return order, nil
}

// UpdateOrderStatus applies a status transition on behalf of actingRole.
// Admins and logisticians can set any valid status; customers may only
// cancel. The owner is told about every change.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, actingRole string) (*model.Order, error) {
	if !model.IsValidOrderStatus(status) {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid order status %q", status), nil)
	}

	switch actingRole {
	case model.RoleAdmin, model.RoleLogistician:
	case model.RoleCustomer:
		if status != model.OrderStatusCancelled {
			return nil, apperrors.Forbidden("customers can only cancel orders")
		}
	default:
		return nil, apperrors.Forbidden("role cannot change order status")
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = status
	order.UpdatedAt = s.clock.Now()
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	// Cancelling an order frees its reserved stock.
	if status == model.OrderStatusCancelled && previous != model.OrderStatusCancelled {
		if err := s.ledger.Release(ctx, order.MaterialType, order.Volume); err != nil {
			s.logger.Error(err, "failed to release reservation for cancelled order",
				"order_id", order.ID.String())
		}
	}

	if _, err := s.notifier.SendFromTemplate(ctx, model.TemplateOrderStatusChange, order.OwnerID, map[string]string{
		"orderId": order.ID.String(),
		"status":  string(status),
	}, nil); err != nil {
		s.logger.Error(err, "failed to notify owner about status change", "order_id", order.ID.String())
	}

	s.logger.Info("order status updated",
		"order_id", order.ID.String(), "status", string(status), "acting_role", actingRole)
	return order, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.orders.Get(ctx, id)
}

// List returns orders matching filters.
func (s *Service) List(ctx context.Context, filters *model.OrderFilters) ([]*model.Order, error) {
	return s.orders.List(ctx, filters)
}

// validate aggregates every violation instead of stopping at the first.
func validate(req *model.CreateOrderRequest) error {
	verr := &apperrors.ValidationError{}

	if !model.IsAllowedMaterial(req.MaterialType) {
		verr.Add("material type %q is not accepted, allowed: %s",
			req.MaterialType, strings.Join(model.AllowedMaterials, ", "))
	}
	if req.Volume <= 0 {
		verr.Add("volume must be positive, got %.2f", req.Volume)
	} else if req.Volume > maxOrderVolumeKg {
		verr.Add("volume must not exceed %.0f kg, got %.2f", maxOrderVolumeKg, req.Volume)
	}
	if len(strings.TrimSpace(req.PickupAddress)) < 5 {
		verr.Add("pickup address is too short to be resolvable")
	}

	if verr.HasViolations() {
		return verr
	}
	return nil
}

// compensate undoes the persisted order after a reservation failure.
// A failing rollback is logged and swallowed; the original reservation
// error is what the caller must see.
func (s *Service) compensate(ctx context.Context, order *model.Order) {
	if err := s.orders.Delete(ctx, order.ID); err != nil {
		s.logger.Error(&apperrors.AppError{
			Code:    apperrors.ErrCompensation,
			Message: "failed to delete order during compensation",
			Err:     err,
		}, "compensation incomplete", "order_id", order.ID.String())
	}
	if s.metrics != nil {
		s.metrics.OrdersCompensated.Inc()
	}
	s.logger.Warn("order compensated after reservation failure", "order_id", order.ID.String())
}

// insufficiencyError builds the caller-facing error for a failed
// availability check, distinguishing unknown materials from known but
// short stock.
func (s *Service) insufficiencyError(ctx context.Context, materialType string, quantity float64) error {
	item, err := s.ledger.GetByMaterial(ctx, materialType)
	if err != nil {
		var unknownErr *apperrors.UnknownMaterialError
		if errors.As(err, &unknownErr) {
			return err
		}
		return &apperrors.InsufficientInventoryError{
			MaterialType: materialType,
			Requested:    quantity,
		}
	}
	return &apperrors.InsufficientInventoryError{
		MaterialType: materialType,
		Requested:    quantity,
		Available:    item.SellableBalance(),
	}
}

// escalateToWarehouse tells every warehouse user, urgently, that a
// reservation could not be satisfied.
func (s *Service) escalateToWarehouse(ctx context.Context, materialType string, quantity float64, reason string) {
	warehouse, err := s.users.GetByRole(ctx, model.RoleWarehouse)
	if err != nil {
		s.logger.Error(err, "failed to resolve warehouse role group for escalation")
		return
	}
	vars := map[string]string{
		"material": materialType,
		"quantity": strconv.FormatFloat(quantity, 'f', -1, 64),
		"reason":   reason,
	}
	overrides := &notification.Overrides{Priority: model.PriorityUrgent}
	for _, u := range warehouse {
		if _, err := s.notifier.SendFromTemplate(ctx, model.TemplateStockAlert, u.ID, vars, overrides); err != nil {
			s.logger.Error(err, "failed to escalate stock alert", "user_id", u.ID.String())
		}
	}
}

func (s *Service) notifyCustomer(ctx context.Context, order *model.Order) {
	createdVars := map[string]string{
		"orderId":  order.ID.String(),
		"volume":   strconv.FormatFloat(order.Volume, 'f', -1, 64),
		"material": order.MaterialType,
		"total":    strconv.FormatFloat(order.Price, 'f', -1, 64),
	}
	if _, err := s.notifier.SendFromTemplate(ctx, model.TemplateOrderCreated, order.OwnerID, createdVars, nil); err != nil {
		s.logger.Error(err, "failed to enqueue order-created notification", "order_id", order.ID.String())
	}
	if _, err := s.notifier.SendFromTemplate(ctx, model.TemplateOrderProcessing, order.OwnerID, map[string]string{
		"orderId": order.ID.String(),
	}, nil); err != nil {
		s.logger.Error(err, "failed to enqueue processing notification", "order_id", order.ID.String())
	}
}
