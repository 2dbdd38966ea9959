package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	"rekod.my/famvault/internal/modules/notification/repository"
	"rekod.my/famvault/pkg/apperror"
)

type NotificationService interface {
	Create(ctx context.Context, notification *entity.Notification) error
	CreateBatch(ctx context.Context, notifications []*entity.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, error)
	// MarkAsRead only succeeds for the notification's owner.
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) Create(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}
	s.publish(ctx, notification)
	return nil
}

func (s *notificationService) CreateBatch(ctx context.Context, notifications []*entity.Notification) error {
	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return err
	}
	for _, n := range notifications {
		s.publish(ctx, n)
	}
	return nil
}

// publish pushes the notification to the owner's live channel when Redis
// is configured. Websocket delivery is best effort on top of the row.
func (s *notificationService) publish(ctx context.Context, notification *entity.Notification) {
	if s.redisClient == nil {
		return
	}
	channel := fmt.Sprintf("user_notifications:%s", notification.UserID.String())
	if payload, err := json.Marshal(notification); err == nil {
		s.redisClient.Publish(ctx, channel, payload)
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	if notification.UserID != userID {
		return apperror.ErrForbidden
	}
	return s.repo.MarkAsRead(ctx, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
