package model

// Default template IDs seeded at startup.
const (
	TemplateOrderCreated      = "order_created"
	TemplateOrderProcessing   = "order_processing"
	TemplateRouteAssigned     = "route_assigned"
	TemplateRouteSelected     = "route_selected"
	TemplateStockAlert        = "stock_alert"
	TemplateOrderStatusChange = "order_status_change"
)

// NotificationTemplate is a named message skeleton with {{name}} slots.
// Templates are copied at send time, so a queued notification keeps the
// text it was rendered with even if the template changes afterwards.
type NotificationTemplate struct {
	Base
	Name      string              `json:"name" db:"name"`
	Channel   NotificationChannel `json:"channel" db:"channel"`
	Category  string              `json:"category" db:"category"`
	Subject   string              `json:"subject" db:"subject"`
	Body      string              `json:"body" db:"body"`
	Variables []string            `json:"variables" db:"-"`
}
