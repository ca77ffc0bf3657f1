package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/internal/repository/memory"
	"github.com/ecopick/recycle-api/internal/service/inventory"
	"github.com/ecopick/recycle-api/internal/service/notification"
	"github.com/ecopick/recycle-api/internal/service/order"
	"github.com/ecopick/recycle-api/internal/service/pricing"
	"github.com/ecopick/recycle-api/pkg/clock"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
)

type stubNotifier struct {
	calls []stubSend
}

type stubSend struct {
	template string
	userID   uuid.UUID
	vars     map[string]string
}

func (s *stubNotifier) SendFromTemplate(_ context.Context, templateName string, userID uuid.UUID, variables map[string]string, _ *notification.Overrides) (uuid.UUID, error) {
	s.calls = append(s.calls, stubSend{template: templateName, userID: userID, vars: variables})
	return uuid.New(), nil
}

func (s *stubNotifier) byTemplate(name string) []stubSend {
	var out []stubSend
	for _, c := range s.calls {
		if c.template == name {
			out = append(out, c)
		}
	}
	return out
}

type fixedRates struct{ perKg float64 }

func (r fixedRates) GetPrice(context.Context, string) (float64, error) { return r.perKg, nil }

type fixedDistance struct{ km float64 }

func (d fixedDistance) Distance(context.Context, string, string) (*pricing.RouteInfo, error) {
	return &pricing.RouteInfo{DistanceKm: d.km, TrafficFactor: 1, Region: "central"}, nil
}

type stubRouter struct {
	created []uuid.UUID
	err     error
}

func (s *stubRouter) CreateAutomaticRoutes(_ context.Context, o *model.Order) (*model.LogisticRoute, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, o.ID)
	return &model.LogisticRoute{OrderID: o.ID}, nil
}

// failingLedger wraps the real ledger but fails Reserve, so the
// compensation path can be exercised after a clean availability check.
type failingLedger struct {
	order.Ledger
	reserveErr error
}

func (l *failingLedger) Reserve(ctx context.Context, materialType string, quantity float64, correlationID string) (*model.InventoryItem, error) {
	if l.reserveErr != nil {
		return nil, l.reserveErr
	}
	return l.Ledger.Reserve(ctx, materialType, quantity, correlationID)
}

type fixture struct {
	svc       *order.Service
	orders    repository.OrderRepository
	users     repository.UserRepository
	inventory repository.InventoryRepository
	ledger    *failingLedger
	notifier  *stubNotifier
	router    *stubRouter
	clock     *clock.Fixed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewLogger(nil)
	f := &fixture{
		orders:    memory.NewOrderRepository(),
		users:     memory.NewUserRepository(),
		inventory: memory.NewInventoryRepository(),
		notifier:  &stubNotifier{},
		router:    &stubRouter{},
		clock:     &clock.Fixed{Instant: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)},
	}
	f.ledger = &failingLedger{Ledger: inventory.NewService(f.inventory, log)}
	pricer := pricing.NewService(fixedRates{perKg: 52}, fixedDistance{km: 20}, log)
	f.svc = order.NewService(f.orders, f.users, f.ledger, pricer, f.router,
		f.notifier, f.clock, log, nil)
	return f
}

func (f *fixture) seedStock(t *testing.T, material string, available float64) {
	t.Helper()
	require.NoError(t, f.inventory.Upsert(context.Background(), &model.InventoryItem{
		Base:              model.Base{ID: uuid.New()},
		MaterialType:      material,
		AvailableQuantity: available,
	}))
}

func (f *fixture) addUser(t *testing.T, role string) *model.User {
	t.Helper()
	u := &model.User{
		Base:   model.Base{ID: uuid.New(), CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()},
		Email:  uuid.NewString() + "@example.com",
		Role:   role,
		Active: true,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func validRequest() *model.CreateOrderRequest {
	return &model.CreateOrderRequest{
		MaterialType:  model.MaterialPET,
		Volume:        500,
		PickupAddress: "12 Mill Road, Greenfield",
	}
}

func TestService_CreateOrder(t *testing.T) {
	t.Run("should create a priced pending order and reserve stock", func(t *testing.T) {
		f := newFixture(t)
		f.seedStock(t, model.MaterialPET, 1000)
		owner := uuid.New()

		created, err := f.svc.CreateOrder(context.Background(), owner, validRequest())
		require.NoError(t, err)

		assert.Equal(t, model.OrderStatusPending, created.Status)
		assert.Equal(t, model.PaymentStatusUnpaid, created.PaymentStatus)
		assert.Equal(t, owner, created.OwnerID)
		// 500 kg of PET at 52/kg over a 20 km leg.
		assert.InDelta(t, 27800, created.Price, 0.001)
		assert.InDelta(t, 750, created.EnvironmentalImpact, 0.001)

		item, err := f.inventory.GetByMaterial(context.Background(), model.MaterialPET)
		require.NoError(t, err)
		assert.InDelta(t, 500, item.ReservedQuantity, 0.001)

		stored, err := f.orders.Get(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, stored.ID)
	})

	t.Run("should aggregate all validation failures", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateOrder(context.Background(), uuid.New(), &model.CreateOrderRequest{
			MaterialType:  "plutonium",
			Volume:        -5,
			PickupAddress: "x",
		})

		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Violations, 3)
	})

	t.Run("should reject volume above the cap", func(t *testing.T) {
		f := newFixture(t)
		req := validRequest()
		req.Volume = 10001

		_, err := f.svc.CreateOrder(context.Background(), uuid.New(), req)

		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("should never create the order when stock is short", func(t *testing.T) {
		f := newFixture(t)
		f.seedStock(t, model.MaterialPET, 100)

		_, err := f.svc.CreateOrder(context.Background(), uuid.New(), validRequest())

		var invErr *apperrors.InsufficientInventoryError
		require.ErrorAs(t, err, &invErr)
		assert.InDelta(t, 100, invErr.Available, 0.001)

		orders, listErr := f.orders.List(context.Background(), &model.OrderFilters{})
		require.NoError(t, listErr)
		assert.Empty(t, orders)
	})

	t.Run("should escalate short stock to every warehouse user", func(t *testing.T) {
		f := newFixture(t)
		f.seedStock(t, model.MaterialPET, 100)
		a := f.addUser(t, model.RoleWarehouse)
		b := f.addUser(t, model.RoleWarehouse)
		f.addUser(t, model.RoleCustomer)

		_, err := f.svc.CreateOrder(context.Background(), uuid.New(), validRequest())
		require.Error(t, err)

		alerts := f.notifier.byTemplate(model.TemplateStockAlert)
		require.Len(t, alerts, 2)
		notified := map[uuid.UUID]bool{alerts[0].userID: true, alerts[1].userID: true}
		assert.True(t, notified[a.ID])
		assert.True(t, notified[b.ID])
		assert.Equal(t, model.MaterialPET, alerts[0].vars["material"])
	})

	t.Run("should compensate when reservation fails after persistence", func(t *testing.T) {
		f := newFixture(t)
		f.seedStock(t, model.MaterialPET, 1000)
		f.addUser(t, model.RoleWarehouse)
		f.ledger.reserveErr = errors.New("storage offline")

		_, err := f.svc.CreateOrder(context.Background(), uuid.New(), validRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage offline")

		// The order is gone and the reservation level is untouched.
		orders, listErr := f.orders.List(context.Background(), &model.OrderFilters{})
		require.NoError(t, listErr)
		assert.Empty(t, orders)

		item, invErr := f.inventory.GetByMaterial(context.Background(), model.MaterialPET)
		require.NoError(t, invErr)
		assert.InDelta(t, 0, item.ReservedQuantity, 0.001)

		require.Len(t, f.notifier.byTemplate(model.TemplateStockAlert), 1)
	})

	t.Run("should keep the order when route creation fails", func(t *testing.T) {
		f := newFixture(t)
		f.seedStock(t, model.MaterialPET, 1000)
		f.router.err = errors.New("no logisticians")

		created, err := f.svc.CreateOrder(context.Background(), uuid.New(), validRequest())
		require.NoError(t, err)

		stored, getErr := f.orders.Get(context.Background(), created.ID)
		require.NoError(t, getErr)
		assert.Equal(t, model.OrderStatusPending, stored.Status)
	})

	t.Run("should notify the customer about creation and processing", func(t *testing.T) {
		f := newFixture(t)
		f.seedStock(t, model.MaterialPET, 1000)
		owner := uuid.New()

		created, err := f.svc.CreateOrder(context.Background(), owner, validRequest())
		require.NoError(t, err)

		createdSends := f.notifier.byTemplate(model.TemplateOrderCreated)
		require.Len(t, createdSends, 1)
		assert.Equal(t, owner, createdSends[0].userID)
		assert.Equal(t, created.ID.String(), createdSends[0].vars["orderId"])

		require.Len(t, f.notifier.byTemplate(model.TemplateOrderProcessing), 1)
	})

	t.Run("should spawn the automatic route", func(t *testing.T) {
		f := newFixture(t)
		f.seedStock(t, model.MaterialPET, 1000)

		created, err := f.svc.CreateOrder(context.Background(), uuid.New(), validRequest())
		require.NoError(t, err)

		assert.Equal(t, []uuid.UUID{created.ID}, f.router.created)
	})
}

func TestService_UpdateOrderStatus(t *testing.T) {
	create := func(t *testing.T, f *fixture) *model.Order {
		t.Helper()
		f.seedStock(t, model.MaterialPET, 1000)
		created, err := f.svc.CreateOrder(context.Background(), uuid.New(), validRequest())
		require.NoError(t, err)
		return created
	}

	t.Run("should let admins set any valid status", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		updated, err := f.svc.UpdateOrderStatus(context.Background(), created.ID, model.OrderStatusCompleted, model.RoleAdmin)
		require.NoError(t, err)

		assert.Equal(t, model.OrderStatusCompleted, updated.Status)
	})

	t.Run("should let customers cancel but nothing else", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		_, err := f.svc.UpdateOrderStatus(context.Background(), created.ID, model.OrderStatusCompleted, model.RoleCustomer)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrForbidden, appErr.Code)

		updated, err := f.svc.UpdateOrderStatus(context.Background(), created.ID, model.OrderStatusCancelled, model.RoleCustomer)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, updated.Status)
	})

	t.Run("should release the reservation on cancellation", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		_, err := f.svc.UpdateOrderStatus(context.Background(), created.ID, model.OrderStatusCancelled, model.RoleAdmin)
		require.NoError(t, err)

		item, invErr := f.inventory.GetByMaterial(context.Background(), model.MaterialPET)
		require.NoError(t, invErr)
		assert.InDelta(t, 0, item.ReservedQuantity, 0.001)
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		_, err := f.svc.UpdateOrderStatus(context.Background(), created.ID, "teleported", model.RoleAdmin)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	})

	t.Run("should notify the owner about the change", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)
		f.notifier.calls = nil

		_, err := f.svc.UpdateOrderStatus(context.Background(), created.ID, model.OrderStatusInTransit, model.RoleLogistician)
		require.NoError(t, err)

		sends := f.notifier.byTemplate(model.TemplateOrderStatusChange)
		require.Len(t, sends, 1)
		assert.Equal(t, created.OwnerID, sends[0].userID)
		assert.Equal(t, string(model.OrderStatusInTransit), sends[0].vars["status"])
	})
}
