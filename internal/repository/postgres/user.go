package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type userRepository struct {
	*BaseRepository
}

func NewUserRepository(base *BaseRepository) repository.UserRepository {
	return &userRepository{BaseRepository: base}
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByRole(ctx context.Context, role string) ([]*model.User, error) {
	users := []*model.User{}
	err := r.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE role = $1 AND active = true ORDER BY created_at`, role)
	return users, err
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, email, name, phone, role, active, created_at, updated_at)
		VALUES (:id, :email, :name, :phone, :role, :active, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, user)
	return err
}
