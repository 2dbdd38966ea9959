package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	FindByPersonID(ctx context.Context, personID uuid.UUID) ([]*entity.Document, error)
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var doc entity.Document
	if err := r.db.WithContext(ctx).
		Preload("Person").
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindByPersonID(ctx context.Context, personID uuid.UUID) ([]*entity.Document, error) {
	var docs []*entity.Document
	if err := r.db.WithContext(ctx).
		Where("person_id = ?", personID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *entity.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Document{}).Error
}

func (r *documentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Document{}).Count(&count).Error
	return count, err
}
