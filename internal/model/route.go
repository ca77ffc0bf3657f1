package model

import (
	"time"

	"github.com/google/uuid"
)

type RouteStatus string

const (
	RouteStatusPending  RouteStatus = "pending"
	RouteStatusAccepted RouteStatus = "accepted"
)

// LogisticRoute is one candidate delivery assignment spawned for an
// order. At most one of its options is selected, and only after the
// route itself is accepted.
type LogisticRoute struct {
	Base
	OrderID               uuid.UUID     `json:"order_id" db:"order_id"`
	PickupAddress         string        `json:"pickup_address" db:"pickup_address"`
	DeliveryAddress       string        `json:"delivery_address" db:"delivery_address"`
	EstimatedDistance     float64       `json:"estimated_distance" db:"estimated_distance"`
	Status                RouteStatus   `json:"status" db:"status"`
	AssignedLogisticianID uuid.UUID     `json:"assigned_logistician_id" db:"assigned_logistician_id"`
	SelectedAt            *time.Time    `json:"selected_at,omitempty" db:"selected_at"`
	Options               []RouteOption `json:"options" db:"-"`
}

// RouteOption is one cost/time/transport tradeoff attached to a route.
type RouteOption struct {
	Base
	RouteID       uuid.UUID `json:"route_id" db:"route_id"`
	Name          string    `json:"name" db:"name"`
	EstimatedCost float64   `json:"estimated_cost" db:"estimated_cost"`
	EstimatedTime string    `json:"estimated_time" db:"estimated_time"`
	TransportType string    `json:"transport_type" db:"transport_type"`
	IsSelected    bool      `json:"is_selected" db:"is_selected"`
}

// SelectRouteRequest is the HTTP-facing input for option selection.
type SelectRouteRequest struct {
	OptionID uuid.UUID `json:"option_id" binding:"required"`
}
