package model

import (
	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusInTransit  OrderStatus = "in_transit"
	OrderStatusAccepted   OrderStatus = "accepted"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// ValidOrderStatuses enumerates every status an order may hold.
var ValidOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusInTransit,
	OrderStatusAccepted,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s OrderStatus) bool {
	for _, v := range ValidOrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order is a pickup order for a recyclable material. Created only by the
// order saga; status mutated only through UpdateOrderStatus or route
// selection.
type Order struct {
	Base
	OwnerID             uuid.UUID     `json:"owner_id" db:"owner_id"`
	MaterialType        string        `json:"material_type" db:"material_type"`
	Volume              float64       `json:"volume" db:"volume"`
	PickupAddress       string        `json:"pickup_address" db:"pickup_address"`
	Price               float64       `json:"price" db:"price"`
	EnvironmentalImpact float64       `json:"environmental_impact" db:"environmental_impact"`
	Status              OrderStatus   `json:"status" db:"status"`
	PaymentStatus       PaymentStatus `json:"payment_status" db:"payment_status"`
}

// CreateOrderRequest is the HTTP-facing input for the order saga.
type CreateOrderRequest struct {
	MaterialType  string  `json:"material_type" binding:"required"`
	Volume        float64 `json:"volume" binding:"required"`
	PickupAddress string  `json:"pickup_address" binding:"required"`
}

// OrderFilters narrows order listings.
type OrderFilters struct {
	OwnerID *uuid.UUID
	Status  *OrderStatus
	Pagination
}
