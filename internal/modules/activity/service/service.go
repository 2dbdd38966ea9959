package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"rekod.my/famvault/internal/entity"
	"rekod.my/famvault/internal/modules/activity/repository"
)

// Entry describes one audit event to be appended.
type Entry struct {
	ActorID     *uuid.UUID
	Action      string
	Description string
	SubjectType string
	SubjectID   string
	Properties  entity.Properties
	IP          string
}

type ActivityService interface {
	// Record appends an audit row. Failures are logged and swallowed so
	// auditing never breaks the operation being audited.
	Record(ctx context.Context, e Entry)
	List(ctx context.Context, filter repository.Filter) ([]*entity.ActivityLog, int64, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, e Entry) {
	row := &entity.ActivityLog{
		UserID:      e.ActorID,
		Action:      e.Action,
		Description: e.Description,
		Properties:  e.Properties,
		IP:          e.IP,
	}
	if e.SubjectType != "" {
		row.SubjectType = &e.SubjectType
	}
	if e.SubjectID != "" {
		row.SubjectID = &e.SubjectID
	}

	if err := s.repo.Create(ctx, row); err != nil {
		log.Printf("failed to record activity %q: %v", e.Action, err)
	}
}

func (s *activityService) List(ctx context.Context, filter repository.Filter) ([]*entity.ActivityLog, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.FindAll(ctx, filter)
}
