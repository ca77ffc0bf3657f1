package notification

import (
	"context"
	"errors"
	"time"

	"github.com/ecopick/recycle-api/internal/model"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

// Sweep processes every due record once. It is re-entrant-guarded: a
// call that arrives while another sweep is running returns immediately
// instead of doubling up on the queue.
func (s *Service) Sweep(ctx context.Context) error {
	select {
	case <-s.sweeping:
		defer func() { s.sweeping <- struct{}{} }()
	default:
		return nil
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
		}
	}()

	now := s.clock.Now()
	due, err := s.repo.ListDue(ctx, now, s.config.BatchSize)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.QueueDepth.Set(float64(len(due)))
	}

	for _, n := range due {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.process(ctx, n, now)
	}
	return nil
}

func (s *Service) process(ctx context.Context, n *model.Notification, now time.Time) {
	if n.ExpiresAt != nil && now.After(*n.ExpiresAt) {
		n.Status = model.NotificationStatusExpired
		if err := s.repo.Update(ctx, n); err != nil {
			s.logger.Error(err, "failed to mark notification expired", "id", n.ID.String())
		}
		if s.metrics != nil {
			s.metrics.NotificationsExpired.Inc()
		}
		return
	}

	prefs := s.preferencesFor(ctx, n)

	if !prefs.ChannelEnabled(n.Channel) {
		s.suppress(n, "channel_disabled")
		return
	}
	if !prefs.CategoryEnabled(n.Category) {
		s.suppress(n, "category_disabled")
		return
	}
	// Urgent notifications override quiet hours, nothing else.
	if prefs.Quiet.Contains(now) && n.Priority != model.PriorityUrgent {
		s.suppress(n, "quiet_hours")
		return
	}

	s.deliver(ctx, n, prefs.Contacts[n.Channel])
}

// suppress leaves the record pending; it will be reconsidered on the
// next sweep, so a preference or quiet-window change takes effect
// without any requeueing.
func (s *Service) suppress(n *model.Notification, reason string) {
	s.logger.Debug("notification suppressed",
		"id", n.ID.String(), "reason", reason, "channel", string(n.Channel))
	if s.metrics != nil {
		s.metrics.NotificationsSuppressed.WithLabelValues(reason).Inc()
	}
}

func (s *Service) deliver(ctx context.Context, n *model.Notification, contact model.ChannelContact) {
	sender, ok := s.senders[n.Channel]
	if !ok {
		s.fail(ctx, n, errors.New("no adapter registered for channel "+string(n.Channel)))
		return
	}

	if err := sender.Send(ctx, contact, n); err != nil {
		s.fail(ctx, n, err)
		return
	}

	sentAt := s.clock.Now()
	n.Status = model.NotificationStatusSent
	n.SentAt = &sentAt
	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.Error(err, "failed to mark notification sent", "id", n.ID.String())
		return
	}
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(string(n.Channel)).Inc()
	}
}

// fail counts the attempt; the record stays pending for the next sweep
// until the retry cap moves it to the terminal failed state.
func (s *Service) fail(ctx context.Context, n *model.Notification, cause error) {
	n.RetryCount++
	n.LastError = cause.Error()
	if n.RetryCount >= s.config.MaxRetries {
		n.Status = model.NotificationStatusFailed
	}

	s.logger.Error(cause, "notification delivery failed",
		"id", n.ID.String(),
		"channel", string(n.Channel),
		"retry_count", n.RetryCount,
		"terminal", n.Status == model.NotificationStatusFailed)

	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.Error(err, "failed to record delivery failure", "id", n.ID.String())
	}
	if s.metrics != nil {
		s.metrics.NotificationsFailed.WithLabelValues(string(n.Channel)).Inc()
	}
}

func (s *Service) preferencesFor(ctx context.Context, n *model.Notification) *model.UserNotificationPreferences {
	prefs, err := s.prefs.Get(ctx, n.UserID)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrNotFound {
			s.logger.Error(err, "failed to load preferences, using defaults", "user_id", n.UserID.String())
		}
		return model.DefaultPreferences(n.UserID)
	}
	return prefs
}
