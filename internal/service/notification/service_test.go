package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopick/recycle-api/internal/channel"
	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	"github.com/ecopick/recycle-api/internal/repository/memory"
	"github.com/ecopick/recycle-api/internal/service/notification"
	"github.com/ecopick/recycle-api/pkg/clock"
	"github.com/ecopick/recycle-api/pkg/logger"
)

// recordingSender captures every delivery and can be told to fail.
type recordingSender struct {
	sent []*model.Notification
	err  error
}

func (s *recordingSender) Send(_ context.Context, _ model.ChannelContact, n *model.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

type fixture struct {
	svc    *notification.Service
	repo   repository.NotificationRepository
	prefs  repository.PreferenceRepository
	sender *recordingSender
	clock  *clock.Fixed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewNotificationRepository()
	prefs := memory.NewPreferenceRepository()
	templates := memory.NewTemplateRepository()
	require.NoError(t, notification.SeedDefaultTemplates(context.Background(), templates))

	sender := &recordingSender{}
	senders := channel.Registry{}
	for _, c := range model.AllChannels {
		senders[c] = sender
	}

	clk := &clock.Fixed{Instant: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	svc := notification.NewService(repo, prefs, templates, senders, clk,
		logger.NewLogger(nil), nil, notification.Config{BatchSize: 50, MaxRetries: 3})

	return &fixture{svc: svc, repo: repo, prefs: prefs, sender: sender, clock: clk}
}

func (f *fixture) enqueue(t *testing.T, input notification.EnqueueInput) uuid.UUID {
	t.Helper()
	id, err := f.svc.Enqueue(context.Background(), input)
	require.NoError(t, err)
	return id
}

func (f *fixture) status(t *testing.T, id uuid.UUID) model.NotificationStatus {
	t.Helper()
	n, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	return n.Status
}

func TestService_Enqueue(t *testing.T) {
	t.Run("should create a pending record without delivering", func(t *testing.T) {
		f := newFixture(t)

		id := f.enqueue(t, notification.EnqueueInput{
			UserID:  uuid.New(),
			Channel: model.ChannelEmail,
			Title:   "hello",
			Message: "world",
		})

		assert.Equal(t, model.NotificationStatusPending, f.status(t, id))
		assert.Empty(t, f.sender.sent)
	})
}

func TestService_SendFromTemplate(t *testing.T) {
	t.Run("should substitute supplied variables in subject and body", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.svc.SendFromTemplate(context.Background(), model.TemplateOrderCreated, uuid.New(),
			map[string]string{"orderId": "A-17", "volume": "500", "material": "PET", "total": "27800"}, nil)
		require.NoError(t, err)

		n, err := f.repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Order A-17 created", n.Title)
		assert.Contains(t, n.Message, "500 kg of PET")
		assert.Contains(t, n.Message, "27800")
		assert.Equal(t, model.CategoryOrder, n.Category)
	})

	t.Run("should leave missing variables as literal tokens", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.svc.SendFromTemplate(context.Background(), model.TemplateOrderCreated, uuid.New(),
			map[string]string{"orderId": "A-18"}, nil)
		require.NoError(t, err)

		n, err := f.repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Order A-18 created", n.Title)
		assert.Contains(t, n.Message, "{{volume}}")
		assert.Contains(t, n.Message, "{{material}}")
	})

	t.Run("should fail for an unknown template", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.SendFromTemplate(context.Background(), "no_such_template", uuid.New(), nil, nil)

		assert.Error(t, err)
	})

	t.Run("should honor overrides", func(t *testing.T) {
		f := newFixture(t)

		id, err := f.svc.SendFromTemplate(context.Background(), model.TemplateOrderCreated, uuid.New(),
			nil, &notification.Overrides{Channel: model.ChannelSMS, Priority: model.PriorityUrgent})
		require.NoError(t, err)

		n, err := f.repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.ChannelSMS, n.Channel)
		assert.Equal(t, model.PriorityUrgent, n.Priority)
	})
}

func TestService_Sweep(t *testing.T) {
	t.Run("should deliver due notifications", func(t *testing.T) {
		f := newFixture(t)
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: uuid.New(), Channel: model.ChannelEmail, Title: "t", Message: "m",
		})

		require.NoError(t, f.svc.Sweep(context.Background()))

		assert.Equal(t, model.NotificationStatusSent, f.status(t, id))
		assert.Len(t, f.sender.sent, 1)
	})

	t.Run("should not deliver before the scheduled time", func(t *testing.T) {
		f := newFixture(t)
		later := f.clock.Now().Add(2 * time.Hour)
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: uuid.New(), Channel: model.ChannelEmail, Title: "t", Message: "m",
			ScheduledFor: &later,
		})

		require.NoError(t, f.svc.Sweep(context.Background()))
		assert.Equal(t, model.NotificationStatusPending, f.status(t, id))

		f.clock.Set(later.Add(time.Minute))
		require.NoError(t, f.svc.Sweep(context.Background()))
		assert.Equal(t, model.NotificationStatusSent, f.status(t, id))
	})

	t.Run("should expire a record past its deadline without sending", func(t *testing.T) {
		f := newFixture(t)
		expiry := f.clock.Now().Add(time.Hour)
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: uuid.New(), Channel: model.ChannelEmail, Title: "t", Message: "m",
			ExpiresAt: &expiry,
		})

		f.clock.Set(expiry.Add(time.Minute))
		require.NoError(t, f.svc.Sweep(context.Background()))

		assert.Equal(t, model.NotificationStatusExpired, f.status(t, id))
		assert.Empty(t, f.sender.sent)
	})

	t.Run("should suppress when the channel is disabled", func(t *testing.T) {
		f := newFixture(t)
		userID := uuid.New()
		prefs := model.DefaultPreferences(userID)
		prefs.Channels[model.ChannelEmail] = false
		require.NoError(t, f.prefs.Upsert(context.Background(), prefs))

		id := f.enqueue(t, notification.EnqueueInput{
			UserID: userID, Channel: model.ChannelEmail, Title: "t", Message: "m",
			Priority: model.PriorityUrgent,
		})

		require.NoError(t, f.svc.Sweep(context.Background()))

		// Urgency never overrides the channel flag, only quiet hours.
		assert.Equal(t, model.NotificationStatusPending, f.status(t, id))
		assert.Empty(t, f.sender.sent)
	})

	t.Run("should suppress when the category is disabled regardless of priority", func(t *testing.T) {
		f := newFixture(t)
		userID := uuid.New()
		prefs := model.DefaultPreferences(userID)
		prefs.Categories[model.CategoryOrder] = false
		require.NoError(t, f.prefs.Upsert(context.Background(), prefs))

		id := f.enqueue(t, notification.EnqueueInput{
			UserID: userID, Channel: model.ChannelEmail, Category: model.CategoryOrder,
			Title: "t", Message: "m", Priority: model.PriorityUrgent,
		})

		require.NoError(t, f.svc.Sweep(context.Background()))

		assert.Equal(t, model.NotificationStatusPending, f.status(t, id))
	})

	t.Run("should cap retries and move the record to failed", func(t *testing.T) {
		f := newFixture(t)
		f.sender.err = errors.New("gateway down")
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: uuid.New(), Channel: model.ChannelEmail, Title: "t", Message: "m",
		})

		for i := 0; i < 3; i++ {
			require.NoError(t, f.svc.Sweep(context.Background()))
		}

		n, err := f.repo.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.NotificationStatusFailed, n.Status)
		assert.Equal(t, 3, n.RetryCount)
		assert.Contains(t, n.LastError, "gateway down")
	})

	t.Run("should recover a failing send on a later sweep", func(t *testing.T) {
		f := newFixture(t)
		f.sender.err = errors.New("gateway down")
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: uuid.New(), Channel: model.ChannelEmail, Title: "t", Message: "m",
		})

		require.NoError(t, f.svc.Sweep(context.Background()))
		assert.Equal(t, model.NotificationStatusPending, f.status(t, id))

		f.sender.err = nil
		require.NoError(t, f.svc.Sweep(context.Background()))
		assert.Equal(t, model.NotificationStatusSent, f.status(t, id))
	})
}

func TestService_QuietHours(t *testing.T) {
	setup := func(t *testing.T) (*fixture, uuid.UUID) {
		f := newFixture(t)
		userID := uuid.New()
		prefs := model.DefaultPreferences(userID)
		prefs.Quiet = model.QuietHours{Enabled: true, Start: "22:00", End: "08:00", Timezone: "UTC"}
		require.NoError(t, f.prefs.Upsert(context.Background(), prefs))
		return f, userID
	}

	t.Run("should suppress a non-urgent notification inside the wrapped window", func(t *testing.T) {
		f, userID := setup(t)
		f.clock.Set(time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC))
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: userID, Channel: model.ChannelEmail, Title: "t", Message: "m",
		})

		require.NoError(t, f.svc.Sweep(context.Background()))

		assert.Equal(t, model.NotificationStatusPending, f.status(t, id))
	})

	t.Run("should deliver outside the window", func(t *testing.T) {
		f, userID := setup(t)
		f.clock.Set(time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC))
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: userID, Channel: model.ChannelEmail, Title: "t", Message: "m",
		})

		require.NoError(t, f.svc.Sweep(context.Background()))

		assert.Equal(t, model.NotificationStatusSent, f.status(t, id))
	})

	t.Run("should deliver an urgent notification inside the window", func(t *testing.T) {
		f, userID := setup(t)
		f.clock.Set(time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC))
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: userID, Channel: model.ChannelEmail, Title: "t", Message: "m",
			Priority: model.PriorityUrgent,
		})

		require.NoError(t, f.svc.Sweep(context.Background()))

		assert.Equal(t, model.NotificationStatusSent, f.status(t, id))
	})

	t.Run("should deliver once the window closes", func(t *testing.T) {
		f, userID := setup(t)
		f.clock.Set(time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC))
		id := f.enqueue(t, notification.EnqueueInput{
			UserID: userID, Channel: model.ChannelEmail, Title: "t", Message: "m",
		})

		require.NoError(t, f.svc.Sweep(context.Background()))
		assert.Equal(t, model.NotificationStatusPending, f.status(t, id))

		f.clock.Set(time.Date(2025, 6, 11, 8, 30, 0, 0, time.UTC))
		require.NoError(t, f.svc.Sweep(context.Background()))
		assert.Equal(t, model.NotificationStatusSent, f.status(t, id))
	})
}

func TestService_History(t *testing.T) {
	t.Run("should return newest first and honor filters", func(t *testing.T) {
		f := newFixture(t)
		userID := uuid.New()

		for i := 0; i < 3; i++ {
			f.clock.Set(f.clock.Now().Add(time.Minute))
			f.enqueue(t, notification.EnqueueInput{
				UserID: userID, Channel: model.ChannelEmail, Title: "t", Message: "m",
			})
		}
		f.enqueue(t, notification.EnqueueInput{
			UserID: uuid.New(), Channel: model.ChannelSMS, Title: "other", Message: "m",
		})

		page, err := f.svc.GetHistory(context.Background(), &model.NotificationFilters{
			UserID:     &userID,
			Pagination: model.Pagination{Page: 1, Limit: 10},
		})
		require.NoError(t, err)

		require.Len(t, page, 3)
		for i := 1; i < len(page); i++ {
			assert.True(t, !page[i-1].CreatedAt.Before(page[i].CreatedAt), "history must be newest first")
		}
	})
}

func TestService_Stats(t *testing.T) {
	t.Run("should aggregate counts by status, channel and category", func(t *testing.T) {
		f := newFixture(t)

		f.enqueue(t, notification.EnqueueInput{
			UserID: uuid.New(), Channel: model.ChannelEmail, Category: model.CategoryOrder,
			Title: "t", Message: "m",
		})
		f.enqueue(t, notification.EnqueueInput{
			UserID: uuid.New(), Channel: model.ChannelSMS, Category: model.CategoryDelivery,
			Title: "t", Message: "m",
		})
		require.NoError(t, f.svc.Sweep(context.Background()))

		stats, err := f.svc.GetStats(context.Background(), model.PeriodDay)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 2, stats.ByStatus[string(model.NotificationStatusSent)])
		assert.Equal(t, 1, stats.ByChannel[string(model.ChannelEmail)])
		assert.Equal(t, 1, stats.ByChannel[string(model.ChannelSMS)])
		assert.Equal(t, 1, stats.ByCategory[model.CategoryOrder])
		assert.Equal(t, 1, stats.ByCategory[model.CategoryDelivery])
	})
}
