package route_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/internal/repository/memory"
	"github.com/ecopick/recycle-api/internal/service/notification"
	"github.com/ecopick/recycle-api/internal/service/route"
	"github.com/ecopick/recycle-api/pkg/clock"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
)

// stubNotifier records templated sends instead of queueing them.
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

type waybillRecorder struct {
	routes []uuid.UUID
}

func (w *waybillRecorder) GenerateWaybill(_ context.Context, r *model.LogisticRoute, _ *model.Order) error {
	w.routes = append(w.routes, r.ID)
	return nil
}

type fixture struct {
	svc      *route.Service
	routes   repository.RouteRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	notifier *stubNotifier
	waybills *waybillRecorder
	clock    *clock.Fixed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		routes:   memory.NewRouteRepository(),
		orders:   memory.NewOrderRepository(),
		users:    memory.NewUserRepository(),
		notifier: &stubNotifier{},
		waybills: &waybillRecorder{},
		clock:    &clock.Fixed{Instant: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = route.NewService(f.routes, f.orders, f.users, f.notifier, nil,
		f.waybills, f.clock, logger.NewLogger(nil), "")
	return f
}

func (f *fixture) addUser(t *testing.T, role string) *model.User {
	t.Helper()
	u := &model.User{
		Base:   model.Base{ID: uuid.New(), CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()},
		Email:  uuid.NewString() + "@example.com",
		Name:   "user",
		Role:   role,
		Active: true,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) addOrder(t *testing.T, ownerID uuid.UUID) *model.Order {
	t.Helper()
	o := &model.Order{
		Base:          model.Base{ID: uuid.New(), CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()},
		OwnerID:       ownerID,
		MaterialType:  model.MaterialPET,
		Volume:        500,
		PickupAddress: "12 Mill Road, Greenfield",
		Price:         27800,
		Status:        model.OrderStatusProcessing,
		PaymentStatus: model.PaymentStatusUnpaid,
	}
	require.NoError(t, f.orders.Create(context.Background(), o))
	return o
}

func TestService_CreateAutomaticRoutes(t *testing.T) {
	t.Run("should assign the first logistician and offer the standard options", func(t *testing.T) {
		f := newFixture(t)
		first := f.addUser(t, model.RoleLogistician)
		f.addUser(t, model.RoleLogistician)
		order := f.addOrder(t, uuid.New())

		created, err := f.svc.CreateAutomaticRoutes(context.Background(), order)
		require.NoError(t, err)

		assert.Equal(t, model.RouteStatusPending, created.Status)
		assert.Equal(t, first.ID, created.AssignedLogisticianID)
		assert.Equal(t, order.PickupAddress, created.PickupAddress)
		require.Len(t, created.Options, 3)
		for _, opt := range created.Options {
			assert.False(t, opt.IsSelected)
			assert.Greater(t, opt.EstimatedCost, 0.0)
		}
	})

	t.Run("should notify every logistician in the role group", func(t *testing.T) {
		f := newFixture(t)
		a := f.addUser(t, model.RoleLogistician)
		b := f.addUser(t, model.RoleLogistician)
		f.addUser(t, model.RoleCustomer)
		order := f.addOrder(t, uuid.New())

		_, err := f.svc.CreateAutomaticRoutes(context.Background(), order)
		require.NoError(t, err)

		require.Len(t, f.notifier.calls, 2)
		notified := map[uuid.UUID]bool{}
		for _, call := range f.notifier.calls {
			assert.Equal(t, model.TemplateRouteAssigned, call.template)
			assert.Equal(t, order.ID.String(), call.vars["orderId"])
			notified[call.userID] = true
		}
		assert.True(t, notified[a.ID])
		assert.True(t, notified[b.ID])
	})

	t.Run("should fail when no logistician exists", func(t *testing.T) {
		f := newFixture(t)
		order := f.addOrder(t, uuid.New())

		_, err := f.svc.CreateAutomaticRoutes(context.Background(), order)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
	})
}

func TestService_SelectRoute(t *testing.T) {
	setup := func(t *testing.T) (*fixture, *model.Order, *model.LogisticRoute, *model.User) {
		f := newFixture(t)
		logistician := f.addUser(t, model.RoleLogistician)
		customer := f.addUser(t, model.RoleCustomer)
		order := f.addOrder(t, customer.ID)
		created, err := f.svc.CreateAutomaticRoutes(context.Background(), order)
		require.NoError(t, err)
		f.notifier.calls = nil
		return f, order, created, logistician
	}

	t.Run("should select exactly one option and accept route and order", func(t *testing.T) {
		f, order, created, logistician := setup(t)
		chosen := created.Options[1]

		selected, err := f.svc.SelectRoute(context.Background(), created.ID, chosen.ID, logistician.ID)
		require.NoError(t, err)

		assert.Equal(t, model.RouteStatusAccepted, selected.Status)
		require.NotNil(t, selected.SelectedAt)

		stored, err := f.routes.Get(context.Background(), created.ID)
		require.NoError(t, err)
		selectedCount := 0
		for _, opt := range stored.Options {
			if opt.IsSelected {
				selectedCount++
				assert.Equal(t, chosen.ID, opt.ID)
			}
		}
		assert.Equal(t, 1, selectedCount)

		parent, err := f.orders.Get(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusAccepted, parent.Status)
	})

	t.Run("should move the selection when called twice", func(t *testing.T) {
		f, _, created, logistician := setup(t)

		_, err := f.svc.SelectRoute(context.Background(), created.ID, created.Options[0].ID, logistician.ID)
		require.NoError(t, err)
		_, err = f.svc.SelectRoute(context.Background(), created.ID, created.Options[2].ID, logistician.ID)
		require.NoError(t, err)

		stored, err := f.routes.Get(context.Background(), created.ID)
		require.NoError(t, err)
		selectedCount := 0
		for _, opt := range stored.Options {
			if opt.IsSelected {
				selectedCount++
				assert.Equal(t, created.Options[2].ID, opt.ID)
			}
		}
		assert.Equal(t, 1, selectedCount)
	})

	t.Run("should notify the order owner with the chosen option", func(t *testing.T) {
		f, order, created, logistician := setup(t)
		chosen := created.Options[0]

		_, err := f.svc.SelectRoute(context.Background(), created.ID, chosen.ID, logistician.ID)
		require.NoError(t, err)

		require.Len(t, f.notifier.calls, 1)
		call := f.notifier.calls[0]
		assert.Equal(t, model.TemplateRouteSelected, call.template)
		assert.Equal(t, order.OwnerID, call.userID)
		assert.Equal(t, chosen.Name, call.vars["option"])
	})

	t.Run("should trigger waybill generation", func(t *testing.T) {
		f, _, created, logistician := setup(t)

		_, err := f.svc.SelectRoute(context.Background(), created.ID, created.Options[0].ID, logistician.ID)
		require.NoError(t, err)

		assert.Equal(t, []uuid.UUID{created.ID}, f.waybills.routes)
	})

	t.Run("should reject actors without the logistics role", func(t *testing.T) {
		f, _, created, _ := setup(t)
		customer := f.addUser(t, model.RoleCustomer)

		_, err := f.svc.SelectRoute(context.Background(), created.ID, created.Options[0].ID, customer.ID)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
	})

	t.Run("should allow admins", func(t *testing.T) {
		f, _, created, _ := setup(t)
		admin := f.addUser(t, model.RoleAdmin)

		_, err := f.svc.SelectRoute(context.Background(), created.ID, created.Options[0].ID, admin.ID)

		assert.NoError(t, err)
	})

	t.Run("should return not found for a missing route", func(t *testing.T) {
		f, _, created, logistician := setup(t)

		_, err := f.svc.SelectRoute(context.Background(), uuid.New(), created.Options[0].ID, logistician.ID)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
	})

	t.Run("should return not found for a missing option", func(t *testing.T) {
		f, _, created, logistician := setup(t)

		_, err := f.svc.SelectRoute(context.Background(), created.ID, uuid.New(), logistician.ID)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
	})
}
