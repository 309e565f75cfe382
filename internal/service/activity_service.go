package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"elite-app/internal/domain"
	"elite-app/internal/repository"
)

const (
	// DefaultRecentActivities is the number of entries served by the activity feed.
	DefaultRecentActivities = 5
	maxRecentActivities     = 100
)

// ActivityService appends and reads the audit trail.
type ActivityService interface {
	Record(ctx context.Context, userID, description string) error
	Recent(ctx context.Context, limit int) ([]domain.Activity, error)
}

type activityService struct {
	activities repository.ActivityRepository
}

func NewActivityService(activities repository.ActivityRepository) ActivityService {
	return &activityService{activities: activities}
}

func (s *activityService) Record(ctx context.Context, userID, description string) error {
	if description == "" {
		return errors.New("activity description is required")
	}
	return s.activities.Append(ctx, &domain.Activity{
		ID:          uuid.NewString(),
		Description: description,
		UserID:      userID,
	})
}

// Recent returns up to limit entries, newest first.
func (s *activityService) Recent(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = DefaultRecentActivities
	}
	if limit > maxRecentActivities {
		limit = maxRecentActivities
	}
	return s.activities.ListRecent(ctx, limit)
}
