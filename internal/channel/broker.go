package channel

import (
	"context"
	"fmt"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/pkg/logger"
	"github.com/ecopick/recycle-api/pkg/messaging"
)

// brokerSender publishes in-app and chat notifications to the message
// broker; connected clients and the chat-bot bridge consume them from
// there.
type brokerSender struct {
	broker messaging.Broker
	topic  string
	logger *logger.Logger
}

// NewInAppSender publishes to the in-app notification topic.
func NewInAppSender(broker messaging.Broker, logger *logger.Logger) Sender {
	return &brokerSender{broker: broker, topic: "notifications.in_app", logger: logger}
}

// NewChatSender publishes to the chat-bot bridge topic.
func NewChatSender(broker messaging.Broker, logger *logger.Logger) Sender {
	return &brokerSender{broker: broker, topic: "notifications.chat", logger: logger}
}

func (s *brokerSender) Send(ctx context.Context, contact model.ChannelContact, n *model.Notification) error {
	if s.broker == nil {
		s.logger.Info("no broker configured, simulating delivery",
			"topic", s.topic, "user_id", n.UserID.String())
		return nil
	}

	msg := messaging.Message{
		Type: string(n.Channel),
		Payload: map[string]interface{}{
			"id":      n.ID,
			"user_id": n.UserID,
			"contact": contact.Address,
			"title":   n.Title,
			"message": n.Message,
		},
	}
	if err := s.broker.Publish(ctx, s.topic, msg); err != nil {
		return fmt.Errorf("broker publish failed: %w", err)
	}
	return nil
}
