package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	activityrepo "rekod.my/famvault/internal/modules/activity/repository"
	activitysvc "rekod.my/famvault/internal/modules/activity/service"
	favoriterepo "rekod.my/famvault/internal/modules/favorite/repository"
	personrepo "rekod.my/famvault/internal/modules/person/repository"
	personsvc "rekod.my/famvault/internal/modules/person/service"
	searchsvc "rekod.my/famvault/internal/modules/search/service"
	"rekod.my/famvault/internal/modules/share/repository"
	userrepo "rekod.my/famvault/internal/modules/user/repository"
	"rekod.my/famvault/pkg/apperror"
)

func setupShareService(t *testing.T) (ShareService, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Person{},
		&entity.Document{},
		&entity.PersonShare{},
		&entity.Favorite{},
		&entity.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	activity := activitysvc.NewActivityService(activityrepo.NewActivityRepository(db))
	people := personsvc.NewService(
		personrepo.NewPersonRepository(db),
		nil,
		searchsvc.NewSearchService(nil),
		activity,
		favoriterepo.NewFavoriteRepository(db),
	)
	svc := NewShareService(repository.NewShareRepository(db), people, userrepo.NewUserRepository(db), activity)
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *entity.User {
	t.Helper()
	now := time.Now()
	user := &entity.User{
		Name:         "Tester",
		Email:        email,
		PasswordHash: "hash",
		ApprovedAt:   &now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedPerson(t *testing.T, db *gorm.DB, owner *entity.User) *entity.Person {
	t.Helper()
	person := &entity.Person{
		UserID:      owner.ID,
		Name:        "Alice",
		NRIC:        "850101-10-1111",
		DateOfBirth: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      entity.GenderFemale,
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("seed person: %v", err)
	}
	return person
}

func TestShareAndUnshare(t *testing.T) {
	svc, db := setupShareService(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	friend := seedUser(t, db, "friend@example.com")
	person := seedPerson(t, db, owner)

	share, err := svc.Share(ctx, owner, person.ID, friend.ID, "127.0.0.1")
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if share.SharedByID != owner.ID || share.SharedWithID != friend.ID {
		t.Fatalf("share row carries wrong users: %+v", share)
	}

	mine, err := svc.ListSharedWithMe(ctx, friend)
	if err != nil {
		t.Fatalf("list shared with me: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("shared-with-me count = %d, want 1", len(mine))
	}

	if err := svc.Unshare(ctx, owner, person.ID, friend.ID, "127.0.0.1"); err != nil {
		t.Fatalf("unshare: %v", err)
	}

	mine, err = svc.ListSharedWithMe(ctx, friend)
	if err != nil {
		t.Fatalf("list shared with me: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("share not revoked, count = %d", len(mine))
	}

	// Revoking a grant that does not exist is a 404.
	if err := svc.Unshare(ctx, owner, person.ID, friend.ID, "127.0.0.1"); err != apperror.ErrNotFound {
		t.Fatalf("second unshare should be not found, got %v", err)
	}
}

func TestShareDuplicateIsConflict(t *testing.T) {
	svc, db := setupShareService(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	friend := seedUser(t, db, "friend@example.com")
	person := seedPerson(t, db, owner)

	if _, err := svc.Share(ctx, owner, person.ID, friend.ID, "127.0.0.1"); err != nil {
		t.Fatalf("first share: %v", err)
	}

	_, err := svc.Share(ctx, owner, person.ID, friend.ID, "127.0.0.1")
	if err == nil {
		t.Fatal("expected duplicate share to be rejected")
	}
	if apperror.MapErrorToStatus(err) != http.StatusConflict {
		t.Errorf("status = %d, want 409", apperror.MapErrorToStatus(err))
	}

	var count int64
	db.Model(&entity.PersonShare{}).
		Where("person_id = ? AND shared_with_id = ?", person.ID, friend.ID).
		Count(&count)
	if count != 1 {
		t.Fatalf("share rows = %d, want 1", count)
	}
}

// blindShareRepo loses the duplicate pre-check race every time, leaving the
// unique (person_id, shared_with_id) index as the only defense.
type blindShareRepo struct {
	repository.ShareRepository
}

func (r blindShareRepo) Find(ctx context.Context, personID, sharedWithID uuid.UUID) (*entity.PersonShare, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestShareRacedDuplicateIsConflict(t *testing.T) {
	_, db := setupShareService(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	friend := seedUser(t, db, "friend@example.com")
	person := seedPerson(t, db, owner)

	activity := activitysvc.NewActivityService(activityrepo.NewActivityRepository(db))
	people := personsvc.NewService(
		personrepo.NewPersonRepository(db),
		nil,
		searchsvc.NewSearchService(nil),
		activity,
		favoriterepo.NewFavoriteRepository(db),
	)
	svc := NewShareService(blindShareRepo{repository.NewShareRepository(db)}, people, userrepo.NewUserRepository(db), activity)

	if _, err := svc.Share(ctx, owner, person.ID, friend.ID, "127.0.0.1"); err != nil {
		t.Fatalf("first share: %v", err)
	}

	_, err := svc.Share(ctx, owner, person.ID, friend.ID, "127.0.0.1")
	if err == nil {
		t.Fatal("expected the unique index to reject the raced grant")
	}
	if apperror.MapErrorToStatus(err) != http.StatusConflict {
		t.Errorf("status = %d, want 409", apperror.MapErrorToStatus(err))
	}

	var count int64
	db.Model(&entity.PersonShare{}).
		Where("person_id = ? AND shared_with_id = ?", person.ID, friend.ID).
		Count(&count)
	if count != 1 {
		t.Fatalf("share rows = %d, want 1", count)
	}
}

func TestShareGuards(t *testing.T) {
	svc, db := setupShareService(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	friend := seedUser(t, db, "friend@example.com")
	person := seedPerson(t, db, owner)

	// Sharing with the owner is pointless and rejected.
	if _, err := svc.Share(ctx, owner, person.ID, owner.ID, "127.0.0.1"); err == nil {
		t.Error("expected share-with-owner to fail")
	} else if apperror.MapErrorToStatus(err) != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apperror.MapErrorToStatus(err))
	}

	// The target user must exist.
	if _, err := svc.Share(ctx, owner, person.ID, uuid.New(), "127.0.0.1"); err == nil {
		t.Error("expected share with unknown user to fail")
	} else if apperror.MapErrorToStatus(err) != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apperror.MapErrorToStatus(err))
	}

	// Only the owner (or an admin) may manage shares.
	if _, err := svc.Share(ctx, friend, person.ID, friend.ID, "127.0.0.1"); err != apperror.ErrForbidden {
		t.Errorf("non-owner share should be forbidden, got %v", err)
	}
}
