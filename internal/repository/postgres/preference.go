package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type preferenceRepository struct {
	*BaseRepository
}

func NewPreferenceRepository(base *BaseRepository) repository.PreferenceRepository {
	return &preferenceRepository{BaseRepository: base}
}

// preferenceRow maps the jsonb-backed preference table.
type preferenceRow struct {
	UserID     uuid.UUID       `db:"user_id"`
	Channels   json.RawMessage `db:"channels"`
	Categories json.RawMessage `db:"categories"`
	Contacts   json.RawMessage `db:"contacts"`
	Quiet      json.RawMessage `db:"quiet_hours"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func (r *preferenceRepository) Get(ctx context.Context, userID uuid.UUID) (*model.UserNotificationPreferences, error) {
	var row preferenceRow
	err := r.db.GetContext(ctx, &row,
		`SELECT user_id, channels, categories, contacts, quiet_hours, updated_at
		 FROM notification_preferences WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("notification preferences", err)
	}
	if err != nil {
		return nil, err
	}
	return rowToPreferences(&row)
}

// rowToPreferences is a total mapping: every field of the domain entity
// is filled with a decoded value or the documented default.
func rowToPreferences(row *preferenceRow) (*model.UserNotificationPreferences, error) {
	prefs := model.DefaultPreferences(row.UserID)
	prefs.UpdatedAt = row.UpdatedAt

	if len(row.Channels) > 0 {
		if err := json.Unmarshal(row.Channels, &prefs.Channels); err != nil {
			return nil, err
		}
	}
	if len(row.Categories) > 0 {
		if err := json.Unmarshal(row.Categories, &prefs.Categories); err != nil {
			return nil, err
		}
	}
	if len(row.Contacts) > 0 {
		if err := json.Unmarshal(row.Contacts, &prefs.Contacts); err != nil {
			return nil, err
		}
	}
	if len(row.Quiet) > 0 {
		if err := json.Unmarshal(row.Quiet, &prefs.Quiet); err != nil {
			return nil, err
		}
	}
	return prefs, nil
}

func (r *preferenceRepository) Upsert(ctx context.Context, prefs *model.UserNotificationPreferences) error {
	channels, err := json.Marshal(prefs.Channels)
	if err != nil {
		return err
	}
	categories, err := json.Marshal(prefs.Categories)
	if err != nil {
		return err
	}
	contacts, err := json.Marshal(prefs.Contacts)
	if err != nil {
		return err
	}
	quiet, err := json.Marshal(prefs.Quiet)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notification_preferences (user_id, channels, categories, contacts, quiet_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET channels = EXCLUDED.channels,
			categories = EXCLUDED.categories,
			contacts = EXCLUDED.contacts,
			quiet_hours = EXCLUDED.quiet_hours,
			updated_at = NOW()`

	_, err = r.db.ExecContext(ctx, query, prefs.UserID, channels, categories, contacts, quiet)
	return err
}
