package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type templateRepository struct {
	mu        sync.RWMutex
	templates map[string]model.NotificationTemplate
}

func NewTemplateRepository() repository.TemplateRepository {
	return &templateRepository{templates: make(map[string]model.NotificationTemplate)}
}

func (r *templateRepository) GetByName(_ context.Context, name string) (*model.NotificationTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, apperrors.NotFound("notification template", nil)
	}
	return &tmpl, nil
}

func (r *templateRepository) Upsert(_ context.Context, tmpl *model.NotificationTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tmpl.UpdatedAt = time.Now()
	r.templates[tmpl.Name] = *tmpl
	return nil
}

func (r *templateRepository) List(_ context.Context) ([]*model.NotificationTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	templates := make([]*model.NotificationTemplate, 0, len(r.templates))
	for name := range r.templates {
		tmpl := r.templates[name]
		templates = append(templates, &tmpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}
