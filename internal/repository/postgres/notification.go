package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type notificationRepository struct {
	*BaseRepository
}

func NewNotificationRepository(base *BaseRepository) repository.NotificationRepository {
	return &notificationRepository{BaseRepository: base}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, channel, category, priority, title, message,
			status, retry_count, last_error, scheduled_for, expires_at, sent_at, order_id,
			created_at, updated_at)
		VALUES (:id, :user_id, :channel, :category, :priority, :title, :message,
			:status, :retry_count, :last_error, :scheduled_for, :expires_at, :sent_at, :order_id,
			:created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, n)
	return err
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	n.UpdatedAt = time.Now()
	query := `
		UPDATE notifications
		SET status = :status, retry_count = :retry_count, last_error = :last_error,
			sent_at = :sent_at, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, n)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return apperrors.NotFound("notification", nil)
	}
	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	err := r.db.GetContext(ctx, &n, `SELECT * FROM notifications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("notification", err)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListDue returns pending records whose scheduled time has elapsed,
// oldest first, capped at limit. Expiry is judged by the sweep, not
// here, so expired records still surface once to be marked.
func (r *notificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Notification, error) {
	notifications := []*model.Notification{}
	query := `
		SELECT * FROM notifications
		WHERE status = $1 AND scheduled_for <= $2
		ORDER BY scheduled_for ASC
		LIMIT $3`

	err := r.db.SelectContext(ctx, &notifications, query, model.NotificationStatusPending, now, limit)
	return notifications, err
}

func (r *notificationRepository) List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	filters.Normalize()

	query := `SELECT * FROM notifications WHERE 1=1`
	args := []interface{}{}

	if filters.UserID != nil {
		args = append(args, *filters.UserID)
		query += ` AND user_id = $` + itoa(len(args))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		query += ` AND status = $` + itoa(len(args))
	}
	if filters.Channel != nil {
		args = append(args, *filters.Channel)
		query += ` AND channel = $` + itoa(len(args))
	}

	args = append(args, filters.Limit, filters.Offset())
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	notifications := []*model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) ListSince(ctx context.Context, since time.Time) ([]*model.Notification, error) {
	notifications := []*model.Notification{}
	err := r.db.SelectContext(ctx, &notifications,
		`SELECT * FROM notifications WHERE created_at >= $1`, since)
	return notifications, err
}
