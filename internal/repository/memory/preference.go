package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type preferenceRepository struct {
	mu    sync.RWMutex
	prefs map[uuid.UUID]model.UserNotificationPreferences
}

func NewPreferenceRepository() repository.PreferenceRepository {
	return &preferenceRepository{prefs: make(map[uuid.UUID]model.UserNotificationPreferences)}
}

func (r *preferenceRepository) Get(_ context.Context, userID uuid.UUID) (*model.UserNotificationPreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefs, ok := r.prefs[userID]
	if !ok {
		return nil, apperrors.NotFound("notification preferences", nil)
	}
	copied := clonePreferences(&prefs)
	return &copied, nil
}

func (r *preferenceRepository) Upsert(_ context.Context, prefs *model.UserNotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefs.UpdatedAt = time.Now()
	r.prefs[prefs.UserID] = clonePreferences(prefs)
	return nil
}

func clonePreferences(p *model.UserNotificationPreferences) model.UserNotificationPreferences {
	copied := *p
	copied.Channels = make(map[model.NotificationChannel]bool, len(p.Channels))
	for k, v := range p.Channels {
		copied.Channels[k] = v
	}
	copied.Categories = make(map[string]bool, len(p.Categories))
	for k, v := range p.Categories {
		copied.Categories[k] = v
	}
	copied.Contacts = make(map[model.NotificationChannel]model.ChannelContact, len(p.Contacts))
	for k, v := range p.Contacts {
		copied.Contacts[k] = v
	}
	return copied
}
