package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
)

// SeedDefaultTemplates installs the stock template set. Existing
// templates with the same name are overwritten, so the set can be
// re-seeded on every startup.
func SeedDefaultTemplates(ctx context.Context, repo repository.TemplateRepository) error {
	defaults := []model.NotificationTemplate{
		{
			Name:      model.TemplateOrderCreated,
			Channel:   model.ChannelEmail,
			Category:  model.CategoryOrder,
			Subject:   "Order {{orderId}} created",
			Body:      "Your pickup order for {{volume}} kg of {{material}} was created. Total: {{total}}.",
			Variables: []string{"orderId", "volume", "material", "total"},
		},
		{
			Name:      model.TemplateOrderProcessing,
			Channel:   model.ChannelInApp,
			Category:  model.CategoryOrder,
			Subject:   "Order {{orderId}} is being processed",
			Body:      "We started processing your order {{orderId}}. A courier route is being prepared.",
			Variables: []string{"orderId"},
		},
		{
			Name:      model.TemplateRouteAssigned,
			Channel:   model.ChannelInApp,
			Category:  model.CategoryDelivery,
			Subject:   "New route for order {{orderId}}",
			Body:      "A delivery route from {{pickup}} awaits option selection.",
			Variables: []string{"orderId", "pickup"},
		},
		{
			Name:      model.TemplateRouteSelected,
			Channel:   model.ChannelEmail,
			Category:  model.CategoryDelivery,
			Subject:   "Delivery option chosen for order {{orderId}}",
			Body:      "Your order will be delivered via {{option}} ({{transport}}), estimated {{eta}}.",
			Variables: []string{"orderId", "option", "transport", "eta"},
		},
		{
			Name:      model.TemplateStockAlert,
			Channel:   model.ChannelEmail,
			Category:  model.CategoryInventory,
			Subject:   "Stock alert: {{material}}",
			Body:      "Reservation of {{quantity}} kg of {{material}} failed: {{reason}}.",
			Variables: []string{"material", "quantity", "reason"},
		},
		{
			Name:      model.TemplateOrderStatusChange,
			Channel:   model.ChannelInApp,
			Category:  model.CategoryOrder,
			Subject:   "Order {{orderId}} is now {{status}}",
			Body:      "The status of your order {{orderId}} changed to {{status}}.",
			Variables: []string{"orderId", "status"},
		},
	}

	now := time.Now()
	for i := range defaults {
		tmpl := defaults[i]
		tmpl.ID = uuid.New()
		tmpl.CreatedAt = now
		tmpl.UpdatedAt = now
		if err := repo.Upsert(ctx, &tmpl); err != nil {
			return err
		}
	}
	return nil
}
