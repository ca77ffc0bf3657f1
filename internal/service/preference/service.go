package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/pkg/clock"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
	"github.com/ecopick/recycle-api/pkg/logger"
)

// Service owns per-user notification preferences. Users who never
// touched their settings get the default set (everything enabled, quiet
// hours off) instead of an error.
type Service struct {
	repo   repository.PreferenceRepository
	clock  clock.Clock
	logger *logger.Logger
}

func NewService(repo repository.PreferenceRepository, clk clock.Clock, logger *logger.Logger) *Service {
	return &Service{repo: repo, clock: clk, logger: logger}
}

// Get returns the stored preferences, or the defaults for a user with
// no stored record.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*model.UserNotificationPreferences, error) {
	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrNotFound {
			return model.DefaultPreferences(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

// UpdateInput carries partial preference changes; nil maps leave the
// corresponding section untouched.
type UpdateInput struct {
	Channels   map[model.NotificationChannel]bool `json:"channels"`
	Categories map[string]bool                    `json:"categories"`
	Quiet      *model.QuietHours                  `json:"quiet_hours"`
}

// Update merges input into the user's preferences and persists them.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*model.UserNotificationPreferences, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	for channel, enabled := range input.Channels {
		prefs.Channels[channel] = enabled
	}
	for category, enabled := range input.Categories {
		prefs.Categories[category] = enabled
	}
	if input.Quiet != nil {
		if err := validateQuiet(*input.Quiet); err != nil {
			return nil, err
		}
		prefs.Quiet = *input.Quiet
	}

	prefs.UpdatedAt = s.clock.Now()
	if err := s.repo.Upsert(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to persist preferences: %w", err)
	}

	s.logger.Info("preferences updated", "user_id", userID.String())
	return prefs, nil
}

// SetContact stores a delivery address for one channel. Verification is
// an external flow; until it completes the contact stays unverified and
// the channel adapter only simulates delivery.
func (s *Service) SetContact(ctx context.Context, userID uuid.UUID, channel model.NotificationChannel, address string, verified bool) (*model.UserNotificationPreferences, error) {
	if address == "" {
		return nil, apperrors.BadRequest("contact address must not be empty", nil)
	}

	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs.Contacts[channel] = model.ChannelContact{Address: address, Verified: verified}
	prefs.UpdatedAt = s.clock.Now()
	if err := s.repo.Upsert(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to persist contact: %w", err)
	}
	return prefs, nil
}

func validateQuiet(q model.QuietHours) error {
	if !q.Enabled {
		return nil
	}
	verr := &apperrors.ValidationError{}
	if !validClock(q.Start) {
		verr.Add("quiet hours start %q is not a valid HH:MM time", q.Start)
	}
	if !validClock(q.End) {
		verr.Add("quiet hours end %q is not a valid HH:MM time", q.End)
	}
	if q.Timezone != "" {
		if _, err := time.LoadLocation(q.Timezone); err != nil {
			verr.Add("unknown timezone %q", q.Timezone)
		}
	}
	if verr.HasViolations() {
		return verr
	}
	return nil
}

func validClock(s string) bool {
	var h, m int
	if n, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil || n != 2 {
		return false
	}
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}
