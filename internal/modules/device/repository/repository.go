package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type DeviceRepository interface {
	// Register stores the token for the user. A token already known is
	// reassigned to the registering user rather than duplicated.
	Register(ctx context.Context, userID uuid.UUID, token, platform string) error
	Delete(ctx context.Context, userID uuid.UUID, token string) error
	// AllTokens returns every registered token, deduplicated.
	AllTokens(ctx context.Context) ([]string, error)
	TokensForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) Register(ctx context.Context, userID uuid.UUID, token, platform string) error {
	var existing entity.DeviceToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&existing).Error
	switch {
	case err == nil:
		existing.UserID = userID
		existing.Platform = platform
		return r.db.WithContext(ctx).Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(&entity.DeviceToken{
			UserID:   userID,
			Token:    token,
			Platform: platform,
		}).Error
	default:
		return err
	}
}

func (r *deviceRepository) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&entity.DeviceToken{}).Error
}

func (r *deviceRepository) AllTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	if err := r.db.WithContext(ctx).
		Model(&entity.DeviceToken{}).
		Distinct("token").
		Pluck("token", &tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *deviceRepository) TokensForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var tokens []string
	if err := r.db.WithContext(ctx).
		Model(&entity.DeviceToken{}).
		Where("user_id = ?", userID).
		Pluck("token", &tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}
