package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	FindAll(ctx context.Context, offset, limit int) ([]*entity.Message, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var message entity.Message
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindAll(ctx context.Context, offset, limit int) ([]*entity.Message, int64, error) {
	var messages []*entity.Message
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.Message{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Message{}).Error
}
