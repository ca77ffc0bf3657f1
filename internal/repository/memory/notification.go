package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type notificationRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]model.Notification
}

func NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepository{records: make(map[uuid.UUID]model.Notification)}
}

func (r *notificationRepository) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[n.ID] = *n
	return nil
}

func (r *notificationRepository) Update(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[n.ID]; !ok {
		return apperrors.NotFound("notification", nil)
	}
	n.UpdatedAt = time.Now()
	r.records[n.ID] = *n
	return nil
}

func (r *notificationRepository) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.records[id]
	if !ok {
		return nil, apperrors.NotFound("notification", nil)
	}
	return &n, nil
}

func (r *notificationRepository) ListDue(_ context.Context, now time.Time, limit int) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	due := []*model.Notification{}
	for id := range r.records {
		n := r.records[id]
		if n.Status != model.NotificationStatusPending {
			continue
		}
		if n.ScheduledFor.After(now) {
			continue
		}
		due = append(due, &n)
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *notificationRepository) List(_ context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	filters.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*model.Notification{}
	for id := range r.records {
		n := r.records[id]
		if filters.UserID != nil && n.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && n.Status != *filters.Status {
			continue
		}
		if filters.Channel != nil && n.Channel != *filters.Channel {
			continue
		}
		matched = append(matched, &n)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return paginate(matched, filters.Pagination), nil
}

func (r *notificationRepository) ListSince(_ context.Context, since time.Time) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*model.Notification{}
	for id := range r.records {
		n := r.records[id]
		if n.CreatedAt.Before(since) {
			continue
		}
		matched = append(matched, &n)
	}
	return matched, nil
}
