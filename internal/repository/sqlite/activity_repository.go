package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"elite-app/internal/domain"
	"elite-app/internal/repository"
)

// user_id carries no foreign key: entries outlive the users they reference.
const createActivitiesTable = `
CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	description TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities(created_at);
`

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) repository.ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createActivitiesTable); err != nil {
		return fmt.Errorf("create activities table: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO activities (id, description, user_id, created_at)
VALUES (?, ?, ?, ?)`,
		activity.ID,
		activity.Description,
		activity.UserID,
		activity.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, description, user_id, created_at
FROM activities
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0, limit)
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(&activity.ID, &activity.Description, &activity.UserID, &activity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
