package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
)

// All repository interfaces in one file
type (
	// OrderRepository handles order persistence
	OrderRepository interface {
		Create(ctx context.Context, order *model.Order) error
		Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
		Update(ctx context.Context, order *model.Order) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.OrderFilters) ([]*model.Order, error)
	}

	// InventoryRepository handles warehouse stock. Reserve must perform
	// the availability check and the reserved-quantity increment as one
	// atomic step relative to concurrent reservations of the same
	// material.
	InventoryRepository interface {
		GetByMaterial(ctx context.Context, materialType string) (*model.InventoryItem, error)
		List(ctx context.Context) ([]*model.InventoryItem, error)
		Upsert(ctx context.Context, item *model.InventoryItem) error
		Reserve(ctx context.Context, materialType string, quantity float64) (*model.InventoryItem, error)
		Release(ctx context.Context, materialType string, quantity float64) error
	}

	// RouteRepository handles logistic routes and their options
	RouteRepository interface {
		Create(ctx context.Context, route *model.LogisticRoute) error
		Get(ctx context.Context, id uuid.UUID) (*model.LogisticRoute, error)
		Update(ctx context.Context, route *model.LogisticRoute) error
		UpdateOption(ctx context.Context, option *model.RouteOption) error
		ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.LogisticRoute, error)
	}

	// NotificationRepository is the dispatch queue and history store
	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		Update(ctx context.Context, n *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Notification, error)
		List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error)
		ListSince(ctx context.Context, since time.Time) ([]*model.Notification, error)
	}

	// PreferenceRepository stores per-user notification settings
	PreferenceRepository interface {
		Get(ctx context.Context, userID uuid.UUID) (*model.UserNotificationPreferences, error)
		Upsert(ctx context.Context, prefs *model.UserNotificationPreferences) error
	}

	// TemplateRepository stores named message templates
	TemplateRepository interface {
		GetByName(ctx context.Context, name string) (*model.NotificationTemplate, error)
		Upsert(ctx context.Context, tmpl *model.NotificationTemplate) error
		List(ctx context.Context) ([]*model.NotificationTemplate, error)
	}

	// UserRepository resolves users and role groups
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByRole(ctx context.Context, role string) ([]*model.User, error)
		Create(ctx context.Context, user *model.User) error
	}
)
