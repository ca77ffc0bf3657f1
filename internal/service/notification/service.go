package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/channel"
	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/pkg/clock"
	"github.com/ecopick/recycle-api/pkg/logger"
	"github.com/ecopick/recycle-api/pkg/metrics"
)

// Config tunes the dispatcher.
type Config struct {
	BatchSize  int
	MaxRetries int
}

// Service decouples "something happened" from "a message was actually
// delivered". Enqueue and SendFromTemplate append to the queue and
// return immediately; the background sweep does the delivering.
type Service struct {
	repo      repository.NotificationRepository
	prefs     repository.PreferenceRepository
	templates repository.TemplateRepository
	senders   channel.Registry
	clock     clock.Clock
	logger    *logger.Logger
	metrics   *metrics.Metrics
	config    Config

	sweeping chan struct{}
}

func NewService(
	repo repository.NotificationRepository,
	prefs repository.PreferenceRepository,
	templates repository.TemplateRepository,
	senders channel.Registry,
	clk clock.Clock,
	logger *logger.Logger,
	m *metrics.Metrics,
	config Config,
) *Service {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	guard := make(chan struct{}, 1)
	guard <- struct{}{}
	return &Service{
		repo:      repo,
		prefs:     prefs,
		templates: templates,
		senders:   senders,
		clock:     clk,
		logger:    logger,
		metrics:   m,
		config:    config,
		sweeping:  guard,
	}
}

// EnqueueInput is one notification to queue.
type EnqueueInput struct {
	UserID       uuid.UUID
	Channel      model.NotificationChannel
	Category     string
	Priority     model.NotificationPriority
	Title        string
	Message      string
	ScheduledFor *time.Time
	ExpiresAt    *time.Time
	OrderID      *uuid.UUID
}

// Enqueue creates a pending record and returns its id. The caller never
// blocks on delivery.
func (s *Service) Enqueue(ctx context.Context, input EnqueueInput) (uuid.UUID, error) {
	now := s.clock.Now()

	scheduledFor := now
	if input.ScheduledFor != nil {
		scheduledFor = *input.ScheduledFor
	}
	if input.Category == "" {
		input.Category = model.CategorySystem
	}
	if input.Priority == "" {
		input.Priority = model.PriorityNormal
	}

	n := &model.Notification{
		Base:         model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:       input.UserID,
		Channel:      input.Channel,
		Category:     input.Category,
		Priority:     input.Priority,
		Title:        input.Title,
		Message:      input.Message,
		Status:       model.NotificationStatusPending,
		ScheduledFor: scheduledFor,
		ExpiresAt:    input.ExpiresAt,
		OrderID:      input.OrderID,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return n.ID, nil
}

// Overrides adjusts a templated send beyond what the template declares.
type Overrides struct {
	Channel      model.NotificationChannel
	Priority     model.NotificationPriority
	ScheduledFor *time.Time
	ExpiresAt    *time.Time
	OrderID      *uuid.UUID
}

// SendFromTemplate resolves the named template, substitutes every
// {{name}} slot from variables and enqueues the result. A variable the
// caller did not supply stays in the text as its literal token; the
// queue copies the rendered text, so later template edits do not touch
// queued messages.
func (s *Service) SendFromTemplate(ctx context.Context, templateName string, userID uuid.UUID, variables map[string]string, overrides *Overrides) (uuid.UUID, error) {
	tmpl, err := s.templates.GetByName(ctx, templateName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve template %q: %w", templateName, err)
	}

	input := EnqueueInput{
		UserID:   userID,
		Channel:  tmpl.Channel,
		Category: tmpl.Category,
		Priority: model.PriorityNormal,
		Title:    render(tmpl.Subject, variables),
		Message:  render(tmpl.Body, variables),
	}

	if overrides != nil {
		if overrides.Channel != "" {
			input.Channel = overrides.Channel
		}
		if overrides.Priority != "" {
			input.Priority = overrides.Priority
		}
		input.ScheduledFor = overrides.ScheduledFor
		input.ExpiresAt = overrides.ExpiresAt
		input.OrderID = overrides.OrderID
	}

	return s.Enqueue(ctx, input)
}

// render substitutes {{name}} occurrences. Missing variables are left
// as literal placeholders on purpose; see the project design notes.
func render(pattern string, variables map[string]string) string {
	out := pattern
	for name, value := range variables {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}

// GetHistory returns the newest-first page of records matching filters.
func (s *Service) GetHistory(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	return s.repo.List(ctx, filters)
}

// GetStats aggregates dispatch counts over the requested window.
func (s *Service) GetStats(ctx context.Context, period model.StatsPeriod) (*model.NotificationStats, error) {
	since := s.clock.Now().Add(-period.Lookback())
	records, err := s.repo.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification history: %w", err)
	}

	stats := &model.NotificationStats{
		Period:     period,
		Total:      len(records),
		ByStatus:   make(map[string]int),
		ByChannel:  make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, n := range records {
		stats.ByStatus[string(n.Status)]++
		stats.ByChannel[string(n.Channel)]++
		stats.ByCategory[n.Category]++
	}
	return stats, nil
}
