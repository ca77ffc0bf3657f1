// Package channel holds the adapters that deliver a rendered
// notification over one medium. Every adapter receives the record plus
// the user's contact for that channel; when the contact is missing or
// unverified the adapter logs the message and reports success, so a
// user without a registered address never wedges the queue.
package channel

import (
	"context"

	"github.com/ecopick/recycle-api/internal/model"
)

// Sender delivers one rendered notification.
type Sender interface {
	Send(ctx context.Context, contact model.ChannelContact, n *model.Notification) error
}

// Registry maps each channel to its adapter.
type Registry map[model.NotificationChannel]Sender
