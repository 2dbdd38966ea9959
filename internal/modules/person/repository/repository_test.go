package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// unique in-memory DB per test name to avoid leakage via shared cache
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
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
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

func seedPerson(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name, nric, dob string) *entity.Person {
	t.Helper()
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		t.Fatalf("parse dob: %v", err)
	}
	person := &entity.Person{
		UserID:      ownerID,
		Name:        name,
		NRIC:        nric,
		DateOfBirth: birth,
		Gender:      entity.GenderMale,
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("seed person: %v", err)
	}
	return person
}

func TestNRICUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPersonRepository(db)
	owner := seedUser(t, db, "owner@example.com")

	seedPerson(t, db, owner.ID, "First", "900615-10-1234", "1990-06-15")

	dup := &entity.Person{
		UserID:      owner.ID,
		Name:        "Second",
		NRIC:        "900615-10-1234",
		DateOfBirth: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:      entity.GenderMale,
	}
	err := repo.Create(context.Background(), dup)
	if err == nil {
		t.Fatal("expected duplicate NRIC insert to fail")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("error = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestFindAccessible(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPersonRepository(db)

	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")

	mine := seedPerson(t, db, owner.ID, "Alice", "850101-10-1111", "1985-01-01")
	seedPerson(t, db, other.ID, "Bob", "860202-10-2222", "1986-02-02")

	ctx := context.Background()

	people, total, err := repo.FindAccessible(ctx, owner.ID, false, "", 0, 20)
	if err != nil {
		t.Fatalf("find accessible: %v", err)
	}
	if total != 1 || len(people) != 1 || people[0].ID != mine.ID {
		t.Fatalf("owner should see exactly their own record, got total=%d", total)
	}

	// Admin sees everything.
	_, total, err = repo.FindAccessible(ctx, owner.ID, true, "", 0, 20)
	if err != nil {
		t.Fatalf("find accessible as admin: %v", err)
	}
	if total != 2 {
		t.Fatalf("admin total = %d, want 2", total)
	}

	// A share grant makes the other owner's record visible.
	if err := db.Create(&entity.PersonShare{
		PersonID:     mine.ID,
		SharedWithID: other.ID,
		SharedByID:   owner.ID,
	}).Error; err != nil {
		t.Fatalf("create share: %v", err)
	}

	people, total, err = repo.FindAccessible(ctx, other.ID, false, "", 0, 20)
	if err != nil {
		t.Fatalf("find accessible with share: %v", err)
	}
	if total != 2 {
		t.Fatalf("shared-with user total = %d, want 2", total)
	}

	// Name search narrows the result.
	people, total, err = repo.FindAccessible(ctx, other.ID, false, "Ali", 0, 20)
	if err != nil {
		t.Fatalf("find accessible with search: %v", err)
	}
	if total != 1 || people[0].Name != "Alice" {
		t.Fatalf("search should match only Alice, got total=%d", total)
	}
}

func TestDeleteCascadesRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPersonRepository(db)

	owner := seedUser(t, db, "owner@example.com")
	friend := seedUser(t, db, "friend@example.com")
	person := seedPerson(t, db, owner.ID, "Alice", "850101-10-1111", "1985-01-01")

	if err := db.Create(&entity.Document{
		PersonID:     person.ID,
		Name:         "IC copy",
		FilePath:     "people/x/ic.pdf",
		OriginalName: "ic.pdf",
		Size:         10,
		MimeType:     "application/pdf",
	}).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}
	if err := db.Create(&entity.PersonShare{PersonID: person.ID, SharedWithID: friend.ID, SharedByID: owner.ID}).Error; err != nil {
		t.Fatalf("create share: %v", err)
	}
	if err := db.Create(&entity.Favorite{UserID: friend.ID, PersonID: person.ID}).Error; err != nil {
		t.Fatalf("create favorite: %v", err)
	}

	if err := repo.Delete(context.Background(), person.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var docs, shares, favs int64
	db.Model(&entity.Document{}).Where("person_id = ?", person.ID).Count(&docs)
	db.Model(&entity.PersonShare{}).Where("person_id = ?", person.ID).Count(&shares)
	db.Model(&entity.Favorite{}).Where("person_id = ?", person.ID).Count(&favs)
	if docs != 0 || shares != 0 || favs != 0 {
		t.Fatalf("expected cascade to remove rows, got docs=%d shares=%d favs=%d", docs, shares, favs)
	}

	if _, err := repo.FindByID(context.Background(), person.ID); err == nil {
		t.Fatal("expected person lookup to fail after delete")
	}
}

func TestUpcomingBirthdaysWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPersonRepository(db)
	owner := seedUser(t, db, "owner@example.com")

	seedPerson(t, db, owner.ID, "June", "900615-10-1234", "1990-06-15")

	ctx := context.Background()

	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("parse day: %v", err)
		}
		return d
	}

	people, err := repo.UpcomingBirthdays(ctx, day("2025-06-10"), 7)
	if err != nil {
		t.Fatalf("upcoming birthdays: %v", err)
	}
	if len(people) != 1 {
		t.Fatalf("birthday five days out should be in a 7-day window, got %d", len(people))
	}

	// Window start is inclusive.
	people, err = repo.UpcomingBirthdays(ctx, day("2025-06-15"), 0)
	if err != nil {
		t.Fatalf("upcoming birthdays: %v", err)
	}
	if len(people) != 1 {
		t.Fatalf("birthday on the day itself should match, got %d", len(people))
	}

	// A birthday that already passed is out.
	people, err = repo.UpcomingBirthdays(ctx, day("2025-06-16"), 7)
	if err != nil {
		t.Fatalf("upcoming birthdays: %v", err)
	}
	if len(people) != 0 {
		t.Fatalf("passed birthday should not match, got %d", len(people))
	}
}

func TestUpcomingBirthdaysYearWrap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPersonRepository(db)
	owner := seedUser(t, db, "owner@example.com")

	seedPerson(t, db, owner.ID, "NewYear", "850102-10-1111", "1985-01-02")
	seedPerson(t, db, owner.ID, "YearEnd", "901230-10-2222", "1990-12-30")
	seedPerson(t, db, owner.ID, "June", "900615-10-3333", "1990-06-15")

	today, _ := time.Parse("2006-01-02", "2025-12-28")
	people, err := repo.UpcomingBirthdays(context.Background(), today, 7)
	if err != nil {
		t.Fatalf("upcoming birthdays: %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("wrap window should match two people, got %d", len(people))
	}
	// December dates come before the wrapped January dates.
	if people[0].Name != "YearEnd" || people[1].Name != "NewYear" {
		t.Fatalf("order = %s, %s; want YearEnd, NewYear", people[0].Name, people[1].Name)
	}
}

func TestFindByUserIDPreloadsDocuments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPersonRepository(db)
	owner := seedUser(t, db, "owner@example.com")
	person := seedPerson(t, db, owner.ID, "Alice", "850101-10-1111", "1985-01-01")

	if err := db.Create(&entity.Document{
		PersonID:     person.ID,
		Name:         "Birth certificate",
		FilePath:     "people/x/cert.pdf",
		OriginalName: "cert.pdf",
		Size:         42,
		MimeType:     "application/pdf",
	}).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}

	people, err := repo.FindByUserID(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("find by user: %v", err)
	}
	if len(people) != 1 || len(people[0].Documents) != 1 {
		t.Fatalf("expected one person with one document, got %d people", len(people))
	}
}
