package model

import "time"

// InventoryItem tracks warehouse stock for one material type. The
// material type is the unique key. Invariant held at all times:
// 0 <= ReservedQuantity <= AvailableQuantity.
type InventoryItem struct {
	Base
	MaterialType      string    `json:"material_type" db:"material_type"`
	AvailableQuantity float64   `json:"available_quantity" db:"available_quantity"`
	ReservedQuantity  float64   `json:"reserved_quantity" db:"reserved_quantity"`
	MinThreshold      float64   `json:"min_threshold" db:"min_threshold"`
	MaxCapacity       float64   `json:"max_capacity" db:"max_capacity"`
	LastUpdated       time.Time `json:"last_updated" db:"last_updated"`
}

// SellableBalance is the quantity still open for reservation.
func (i *InventoryItem) SellableBalance() float64 {
	return i.AvailableQuantity - i.ReservedQuantity
}

// BelowThreshold reports whether the sellable balance dropped under the
// configured minimum, which triggers a warehouse stock alert.
func (i *InventoryItem) BelowThreshold() bool {
	return i.SellableBalance() < i.MinThreshold
}
