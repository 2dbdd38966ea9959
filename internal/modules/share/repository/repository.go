package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type ShareRepository interface {
	Create(ctx context.Context, share *entity.PersonShare) error
	Find(ctx context.Context, personID, sharedWithID uuid.UUID) (*entity.PersonShare, error)
	FindByPersonID(ctx context.Context, personID uuid.UUID) ([]*entity.PersonShare, error)
	FindSharedWithUser(ctx context.Context, userID uuid.UUID) ([]*entity.PersonShare, error)
	Delete(ctx context.Context, personID, sharedWithID uuid.UUID) error
}

type shareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(ctx context.Context, share *entity.PersonShare) error {
	return r.db.WithContext(ctx).Create(share).Error
}

func (r *shareRepository) Find(ctx context.Context, personID, sharedWithID uuid.UUID) (*entity.PersonShare, error) {
	var share entity.PersonShare
	if err := r.db.WithContext(ctx).
		Where("person_id = ? AND shared_with_id = ?", personID, sharedWithID).
		First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *shareRepository) FindByPersonID(ctx context.Context, personID uuid.UUID) ([]*entity.PersonShare, error) {
	var shares []*entity.PersonShare
	if err := r.db.WithContext(ctx).
		Preload("SharedWith").
		Preload("SharedBy").
		Where("person_id = ?", personID).
		Order("created_at DESC").
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *shareRepository) FindSharedWithUser(ctx context.Context, userID uuid.UUID) ([]*entity.PersonShare, error) {
	var shares []*entity.PersonShare
	if err := r.db.WithContext(ctx).
		Preload("Person").
		Preload("SharedBy").
		Where("shared_with_id = ?", userID).
		Order("created_at DESC").
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *shareRepository) Delete(ctx context.Context, personID, sharedWithID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("person_id = ? AND shared_with_id = ?", personID, sharedWithID).
		Delete(&entity.PersonShare{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
