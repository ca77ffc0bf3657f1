package channel

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/pkg/logger"
)

// EmailConfig carries SMTP settings.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type emailSender struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

// NewEmailSender delivers over SMTP via gomail.
func NewEmailSender(cfg EmailConfig, logger *logger.Logger) Sender {
	return &emailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *emailSender) Send(_ context.Context, contact model.ChannelContact, n *model.Notification) error {
	if contact.Address == "" || !contact.Verified {
		s.logger.Info("no verified email address, simulating delivery",
			"user_id", n.UserID.String(), "title", n.Title)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", contact.Address)
	msg.SetHeader("Subject", n.Title)
	msg.SetBody("text/plain", n.Message)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
