package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository"
	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

type templateRepository struct {
	*BaseRepository
}

func NewTemplateRepository(base *BaseRepository) repository.TemplateRepository {
	return &templateRepository{BaseRepository: base}
}

func (r *templateRepository) GetByName(ctx context.Context, name string) (*model.NotificationTemplate, error) {
	var tmpl model.NotificationTemplate
	var variables pq.StringArray
	row := r.db.QueryRowxContext(ctx,
		`SELECT id, name, channel, category, subject, body, variables, created_at, updated_at
		 FROM notification_templates WHERE name = $1`, name)

	err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Channel, &tmpl.Category,
		&tmpl.Subject, &tmpl.Body, &variables, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("notification template", err)
	}
	if err != nil {
		return nil, err
	}
	tmpl.Variables = []string(variables)
	return &tmpl, nil
}

func (r *templateRepository) Upsert(ctx context.Context, tmpl *model.NotificationTemplate) error {
	query := `
		INSERT INTO notification_templates (id, name, channel, category, subject, body, variables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE
		SET channel = EXCLUDED.channel,
			category = EXCLUDED.category,
			subject = EXCLUDED.subject,
			body = EXCLUDED.body,
			variables = EXCLUDED.variables,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, tmpl.ID, tmpl.Name, tmpl.Channel, tmpl.Category,
		tmpl.Subject, tmpl.Body, pq.StringArray(tmpl.Variables), tmpl.CreatedAt, tmpl.UpdatedAt)
	return err
}

func (r *templateRepository) List(ctx context.Context) ([]*model.NotificationTemplate, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, name, channel, category, subject, body, variables, created_at, updated_at
		 FROM notification_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*model.NotificationTemplate{}
	for rows.Next() {
		var tmpl model.NotificationTemplate
		var variables pq.StringArray
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Channel, &tmpl.Category,
			&tmpl.Subject, &tmpl.Body, &variables, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
			return nil, err
		}
		tmpl.Variables = []string(variables)
		templates = append(templates, &tmpl)
	}
	return templates, rows.Err()
}
