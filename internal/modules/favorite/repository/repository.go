package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type FavoriteRepository interface {
	Create(ctx context.Context, fav *entity.Favorite) error
	Delete(ctx context.Context, userID, personID uuid.UUID) error
	IsFavorite(ctx context.Context, userID, personID uuid.UUID) (bool, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Favorite, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, fav *entity.Favorite) error {
	return r.db.WithContext(ctx).Create(fav).Error
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, personID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND person_id = ?", userID, personID).
		Delete(&entity.Favorite{}).Error
}

func (r *favoriteRepository) IsFavorite(ctx context.Context, userID, personID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Favorite{}).
		Where("user_id = ? AND person_id = ?", userID, personID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Favorite, error) {
	var favs []*entity.Favorite
	if err := r.db.WithContext(ctx).
		Preload("Person").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favs).Error; err != nil {
		return nil, err
	}
	return favs, nil
}
