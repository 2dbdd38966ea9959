package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

type PersonRepository interface {
	Create(ctx context.Context, person *entity.Person) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Person, error)
	FindByNRIC(ctx context.Context, nric string) (*entity.Person, error)
	// FindAccessible returns people the user owns or has been granted access
	// to. Admins see everyone. search filters by name.
	FindAccessible(ctx context.Context, userID uuid.UUID, isAdmin bool, search string, offset, limit int) ([]*entity.Person, int64, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Person, error)
	// FindByUserID returns people owned by the user, documents preloaded.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Person, error)
	Update(ctx context.Context, person *entity.Person) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasShare(ctx context.Context, personID, userID uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
	// UpcomingBirthdays matches people whose birth month-day falls within
	// [today, today+days], wrapping across the year end.
	UpcomingBirthdays(ctx context.Context, today time.Time, days int) ([]*entity.Person, error)
}

type personRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) Create(ctx context.Context, person *entity.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *personRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Person, error) {
	var person entity.Person
	if err := r.db.WithContext(ctx).
		Preload("Documents").
		Preload("Shares").
		Preload("Shares.SharedWith").
		Where("id = ?", id).
		First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepository) FindByNRIC(ctx context.Context, nric string) (*entity.Person, error) {
	var person entity.Person
	if err := r.db.WithContext(ctx).
		Where("nric = ?", nric).
		First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *personRepository) FindAccessible(ctx context.Context, userID uuid.UUID, isAdmin bool, search string, offset, limit int) ([]*entity.Person, int64, error) {
	var people []*entity.Person
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Person{})

	if !isAdmin {
		query = query.Where(
			"user_id = ? OR id IN (?)",
			userID,
			r.db.Model(&entity.PersonShare{}).
				Select("person_id").
				Where("shared_with_id = ?", userID),
		)
	}

	if search != "" {
		if r.db.Dialector.Name() == "postgres" {
			query = query.Where("name ILIKE ?", "%"+search+"%")
		} else {
			query = query.Where("name LIKE ?", "%"+search+"%")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&people).Error; err != nil {
		return nil, 0, err
	}

	return people, total, nil
}

func (r *personRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Person, error) {
	var people []*entity.Person
	if len(ids) == 0 {
		return people, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func (r *personRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Person, error) {
	var people []*entity.Person
	if err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("user_id = ?", userID).
		Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func (r *personRepository) Update(ctx context.Context, person *entity.Person) error {
	return r.db.WithContext(ctx).Save(person).Error
}

// Delete removes the person together with their documents, shares and
// favorite flags. Stored document files are the service's problem.
func (r *personRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person_id = ?", id).Delete(&entity.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("person_id = ?", id).Delete(&entity.PersonShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("person_id = ?", id).Delete(&entity.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Person{}).Error
	})
}

func (r *personRepository) HasShare(ctx context.Context, personID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PersonShare{}).
		Where("person_id = ? AND shared_with_id = ?", personID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *personRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Person{}).Count(&count).Error
	return count, err
}

func (r *personRepository) UpcomingBirthdays(ctx context.Context, today time.Time, days int) ([]*entity.Person, error) {
	var people []*entity.Person

	expr := monthDayExpr(r.db)
	start := today.Format("01-02")
	end := today.AddDate(0, 0, days).Format("01-02")

	query := r.db.WithContext(ctx).Model(&entity.Person{})

	if start <= end {
		query = query.Where(fmt.Sprintf("%s BETWEEN ? AND ?", expr), start, end)
	} else {
		// Window wraps Dec -> Jan.
		query = query.Where(fmt.Sprintf("%s >= ? OR %s <= ?", expr, expr), start, end)
	}

	// Non-wrapped portion (this year's dates) first, then by month-day.
	order := fmt.Sprintf("CASE WHEN %s >= '%s' THEN 0 ELSE 1 END, %s ASC", expr, start, expr)

	if err := query.Order(order).Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

// monthDayExpr extracts "MM-DD" from date_of_birth in the dialect at hand.
func monthDayExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "strftime('%m-%d', date_of_birth)"
	}
	return "to_char(date_of_birth, 'MM-DD')"
}
