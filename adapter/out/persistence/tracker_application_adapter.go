// Package persistence provides database adapters.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/out"

	"github.com/jmoiron/sqlx"
)

// applicationRow is the database shape of an application record.
type applicationRow struct {
	ID              int64          `db:"id"`
	UserID          string         `db:"user_id"`
	Company         string         `db:"company"`
	Role            string         `db:"role"`
	Status          string         `db:"status"`
	SourceMessageID sql.NullString `db:"source_message_id"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (r *applicationRow) toDomain() *domain.Application {
	app := &domain.Application{
		ID:        r.ID,
		UserID:    r.UserID,
		Company:   r.Company,
		Role:      r.Role,
		Status:    domain.ApplicationStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
	if r.SourceMessageID.Valid {
		app.SourceMessageID = r.SourceMessageID.String
	}
	return app
}

// ApplicationAdapter implements out.ApplicationRepository using PostgreSQL.
type ApplicationAdapter struct {
	db *sqlx.DB
}

// NewApplicationAdapter creates a new ApplicationAdapter.
func NewApplicationAdapter(db *sqlx.DB) *ApplicationAdapter {
	return &ApplicationAdapter{db: db}
}

// InsertIfAbsent inserts a record unless its source_message_id collides with
// an existing row. The unique constraint on source_message_id makes re-syncs
// idempotent; a conflict reports created=false without an error.
func (a *ApplicationAdapter) InsertIfAbsent(ctx context.Context, app *domain.Application) (bool, error) {
	var (
		res sql.Result
		err error
	)

	if app.CreatedAt.IsZero() {
		// Let the column default (now()) apply.
		query := `
			INSERT INTO applications (user_id, company, role, status, source_message_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (source_message_id) DO NOTHING`
		res, err = a.db.ExecContext(ctx, query,
			app.UserID, app.Company, app.Role, string(app.Status), app.SourceMessageID)
	} else {
		query := `
			INSERT INTO applications (user_id, company, role, status, source_message_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (source_message_id) DO NOTHING`
		res, err = a.db.ExecContext(ctx, query,
			app.UserID, app.Company, app.Role, string(app.Status), app.SourceMessageID, app.CreatedAt)
	}
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Create inserts a manually added record.
func (a *ApplicationAdapter) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (user_id, company, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return a.db.QueryRowContext(ctx, query,
		app.UserID, app.Company, app.Role, string(app.Status),
	).Scan(&app.ID, &app.CreatedAt)
}

// ListByUser returns all records for a user, newest first.
func (a *ApplicationAdapter) ListByUser(ctx context.Context, userID string) ([]*domain.Application, error) {
	var rows []*applicationRow
	query := `
		SELECT id, user_id, company, role, status, source_message_id, created_at
		FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	if err := a.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	apps := make([]*domain.Application, len(rows))
	for i, r := range rows {
		apps[i] = r.toDomain()
	}
	return apps, nil
}

// UpdateStatus changes a record's lifecycle status.
func (a *ApplicationAdapter) UpdateStatus(ctx context.Context, userID string, id int64, status domain.ApplicationStatus) error {
	query := `
		UPDATE applications
		SET status = $1
		WHERE id = $2 AND user_id = $3`

	res, err := a.db.ExecContext(ctx, query, string(status), id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record.
func (a *ApplicationAdapter) Delete(ctx context.Context, userID string, id int64) error {
	query := `DELETE FROM applications WHERE id = $1 AND user_id = $2`

	res, err := a.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns one record scoped to a user.
func (a *ApplicationAdapter) GetByID(ctx context.Context, userID string, id int64) (*domain.Application, error) {
	var row applicationRow
	query := `
		SELECT id, user_id, company, role, status, source_message_id, created_at
		FROM applications
		WHERE id = $1 AND user_id = $2`

	if err := a.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// Ensure ApplicationAdapter implements out.ApplicationRepository
var _ out.ApplicationRepository = (*ApplicationAdapter)(nil)
