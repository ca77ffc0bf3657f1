package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[uuid.UUID]model.User)}
}

func (r *userRepository) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return &user, nil
}

func (r *userRepository) GetByRole(_ context.Context, role string) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := []*model.User{}
	for id := range r.users {
		user := r.users[id]
		if user.Role == role && user.Active {
			users = append(users, &user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}
