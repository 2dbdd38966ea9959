package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context, pendingOnly bool) ([]*entity.User, error)
	FindAllIDs(ctx context.Context) ([]uuid.UUID, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, pendingOnly bool) ([]*entity.User, error) {
	var users []*entity.User
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if pendingOnly {
		query = query.Where("approved_at IS NULL AND is_admin = ?", false)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user and everything hanging off them. People owned by
// the user cascade to their documents and shares. The caller is responsible
// for removing stored document files beforehand.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var personIDs []uuid.UUID
		if err := tx.Model(&entity.Person{}).
			Where("user_id = ?", id).
			Pluck("id", &personIDs).Error; err != nil {
			return err
		}

		if len(personIDs) > 0 {
			if err := tx.Where("person_id IN ?", personIDs).Delete(&entity.Document{}).Error; err != nil {
				return err
			}
			if err := tx.Where("person_id IN ?", personIDs).Delete(&entity.PersonShare{}).Error; err != nil {
				return err
			}
			if err := tx.Where("person_id IN ?", personIDs).Delete(&entity.Favorite{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&entity.Person{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("shared_with_id = ?", id).Delete(&entity.PersonShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.DeviceToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.Suggestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entity.Message{}).Error; err != nil {
			return err
		}

		// Audit rows stay; detach the actor so the log survives the user.
		if err := tx.Model(&entity.ActivityLog{}).
			Where("user_id = ?", id).
			Update("user_id", nil).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&entity.User{}).Error
	})
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("approved_at IS NULL AND is_admin = ?", false).
		Count(&count).Error
	return count, err
}
