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
	"rekod.my/famvault/internal/modules/person/dto"
	"rekod.my/famvault/internal/modules/person/repository"
	searchsvc "rekod.my/famvault/internal/modules/search/service"
	"rekod.my/famvault/pkg/apperror"
)

type fakeRemover struct {
	removed []string
}

func (f *fakeRemover) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func setupService(t *testing.T) (Service, *gorm.DB, *fakeRemover) {
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

	remover := &fakeRemover{}
	svc := NewService(
		repository.NewPersonRepository(db),
		remover,
		searchsvc.NewSearchService(nil),
		activitysvc.NewActivityService(activityrepo.NewActivityRepository(db)),
		favoriterepo.NewFavoriteRepository(db),
	)
	return svc, db, remover
}

func createUser(t *testing.T, db *gorm.DB, email string, isAdmin bool) *entity.User {
	t.Helper()
	now := time.Now()
	user := &entity.User{
		Name:         "Tester",
		Email:        email,
		PasswordHash: "hash",
		IsAdmin:      isAdmin,
		ApprovedAt:   &now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestAccessControlMatrix(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()

	owner := createUser(t, db, "owner@example.com", false)
	shared := createUser(t, db, "shared@example.com", false)
	stranger := createUser(t, db, "stranger@example.com", false)
	admin := createUser(t, db, "admin@example.com", true)

	created, err := svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name: "Alice",
		NRIC: "850101-10-1112",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("create person: %v", err)
	}

	if err := db.Create(&entity.PersonShare{
		PersonID:     created.ID,
		SharedWithID: shared.ID,
		SharedByID:   owner.ID,
	}).Error; err != nil {
		t.Fatalf("create share: %v", err)
	}

	// Read access.
	for _, u := range []*entity.User{owner, shared, admin} {
		if _, err := svc.CanAccess(ctx, u, created.ID); err != nil {
			t.Errorf("%s should be able to read: %v", u.Email, err)
		}
	}
	if _, err := svc.CanAccess(ctx, stranger, created.ID); err != apperror.ErrForbidden {
		t.Errorf("stranger read should be forbidden, got %v", err)
	}

	// Edit access: the share grant is read-only.
	for _, u := range []*entity.User{owner, admin} {
		if _, err := svc.CanEdit(ctx, u, created.ID); err != nil {
			t.Errorf("%s should be able to edit: %v", u.Email, err)
		}
	}
	for _, u := range []*entity.User{shared, stranger} {
		if _, err := svc.CanEdit(ctx, u, created.ID); err != apperror.ErrForbidden {
			t.Errorf("%s edit should be forbidden, got %v", u.Email, err)
		}
	}

	// Unknown person is a 404, not a 403.
	if _, err := svc.CanAccess(ctx, owner, uuid.New()); err != apperror.ErrNotFound {
		t.Errorf("missing person should be not found, got %v", err)
	}
}

func TestCreateNRICAssist(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", false)

	// Date of birth and gender derived from the NRIC when omitted.
	resp, err := svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name: "Alice",
		NRIC: "900615-10-1234",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.DateOfBirth != "1990-06-15" {
		t.Errorf("dob = %s, want 1990-06-15", resp.DateOfBirth)
	}
	if resp.Gender != entity.GenderMale {
		t.Errorf("gender = %s, want Male", resp.Gender)
	}

	// Explicit values win over the derived ones.
	resp, err = svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name:        "Bob",
		NRIC:        "900616-10-1234",
		DateOfBirth: "1991-01-01",
		Gender:      entity.GenderFemale,
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("create with explicit fields: %v", err)
	}
	if resp.DateOfBirth != "1991-01-01" || resp.Gender != entity.GenderFemale {
		t.Errorf("explicit fields were overridden: %s %s", resp.DateOfBirth, resp.Gender)
	}

	// A non-parseable NRIC with nothing supplied cannot be accepted.
	_, err = svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name: "Carol",
		NRIC: "not-an-nric-0",
	}, "127.0.0.1")
	if err == nil {
		t.Fatal("expected creation without derivable fields to fail")
	}
	if apperror.MapErrorToStatus(err) != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apperror.MapErrorToStatus(err))
	}
}

func TestCreateDuplicateNRICConflict(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", false)

	if _, err := svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name: "Alice",
		NRIC: "900615-10-1234",
	}, "127.0.0.1"); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name: "Imposter",
		NRIC: "900615-10-1234",
	}, "127.0.0.1")
	if err == nil {
		t.Fatal("expected duplicate NRIC to be rejected")
	}
	if apperror.MapErrorToStatus(err) != http.StatusConflict {
		t.Errorf("status = %d, want 409", apperror.MapErrorToStatus(err))
	}
}

// blindRepo never sees an existing NRIC on lookup, so a concurrent insert
// can only be stopped by the unique index.
type blindRepo struct {
	repository.PersonRepository
}

func (r blindRepo) FindByNRIC(ctx context.Context, nric string) (*entity.Person, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestCreateRacedDuplicateNRICConflict(t *testing.T) {
	_, db, remover := setupService(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", false)

	svc := NewService(
		blindRepo{repository.NewPersonRepository(db)},
		remover,
		searchsvc.NewSearchService(nil),
		activitysvc.NewActivityService(activityrepo.NewActivityRepository(db)),
		favoriterepo.NewFavoriteRepository(db),
	)

	if _, err := svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name: "Alice",
		NRIC: "900615-10-1234",
	}, "127.0.0.1"); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name: "Imposter",
		NRIC: "900615-10-1234",
	}, "127.0.0.1")
	if err == nil {
		t.Fatal("expected the unique index to reject the raced insert")
	}
	if apperror.MapErrorToStatus(err) != http.StatusConflict {
		t.Errorf("status = %d, want 409", apperror.MapErrorToStatus(err))
	}
}

func TestDeleteRemovesStoredFiles(t *testing.T) {
	svc, db, remover := setupService(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", false)

	created, err := svc.Create(ctx, owner, dto.CreatePersonRequest{
		Name: "Alice",
		NRIC: "850101-10-1111",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.Create(&entity.Document{
		PersonID:     created.ID,
		Name:         "IC copy",
		FilePath:     "people/x/ic.pdf",
		OriginalName: "ic.pdf",
		Size:         10,
		MimeType:     "application/pdf",
	}).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}

	if err := svc.Delete(ctx, owner, created.ID, "127.0.0.1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(remover.removed) != 1 || remover.removed[0] != "people/x/ic.pdf" {
		t.Fatalf("expected stored file to be removed, got %v", remover.removed)
	}
}
