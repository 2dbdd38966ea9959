package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type Filter struct {
	Action  string
	ActorID string
	From    *time.Time
	To      *time.Time
	Offset  int
	Limit   int
}

type ActivityRepository interface {
	Create(ctx context.Context, log *entity.ActivityLog) error
	FindAll(ctx context.Context, filter Filter) ([]*entity.ActivityLog, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *activityRepository) FindAll(ctx context.Context, filter Filter) ([]*entity.ActivityLog, int64, error) {
	var logs []*entity.ActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ActivityLog{}).Preload("User")

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ActorID != "" {
		query = query.Where("user_id = ?", filter.ActorID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
