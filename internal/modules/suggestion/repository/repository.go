package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *entity.Suggestion) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Suggestion, error)
	FindAll(ctx context.Context, unreadOnly bool, offset, limit int) ([]*entity.Suggestion, int64, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Suggestion, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type suggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *entity.Suggestion) error {
	return r.db.WithContext(ctx).Create(suggestion).Error
}

func (r *suggestionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Suggestion, error) {
	var suggestion entity.Suggestion
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&suggestion).Error; err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *suggestionRepository) FindAll(ctx context.Context, unreadOnly bool, offset, limit int) ([]*entity.Suggestion, int64, error) {
	var suggestions []*entity.Suggestion
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Suggestion{}).Preload("User")
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&suggestions).Error; err != nil {
		return nil, 0, err
	}

	return suggestions, total, nil
}

func (r *suggestionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Suggestion, error) {
	var suggestions []*entity.Suggestion
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (r *suggestionRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Suggestion{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *suggestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Suggestion{}).Error
}
