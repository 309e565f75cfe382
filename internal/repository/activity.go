package repository

import (
	"context"

	"elite-app/internal/domain"
)

// ActivityRepository stores the audit trail. Entries are never mutated.
type ActivityRepository interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, activity *domain.Activity) error
	ListRecent(ctx context.Context, limit int) ([]domain.Activity, error)
}
