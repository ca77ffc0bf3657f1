package model

// User role constants
const (
	RoleCustomer    = "customer"
	RoleLogistician = "logistician"
	RoleWarehouse   = "warehouse"
	RoleAdmin       = "admin"
)

// User represents a system user. Authentication (passwords, sessions)
// lives outside this service; only identity and role are carried here.
type User struct {
	Base
	Email  string `json:"email" db:"email"`
	Name   string `json:"name" db:"name"`
	Phone  string `json:"phone" db:"phone"`
	Role   string `json:"role" db:"role"`
	Active bool   `json:"active" db:"active"`
}
