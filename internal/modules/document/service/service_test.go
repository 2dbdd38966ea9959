package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	activityrepo "rekod.my/famvault/internal/modules/activity/repository"
	activitysvc "rekod.my/famvault/internal/modules/activity/service"
	favoriterepo "rekod.my/famvault/internal/modules/favorite/repository"
	"rekod.my/famvault/internal/modules/document/repository"
	personrepo "rekod.my/famvault/internal/modules/person/repository"
	personsvc "rekod.my/famvault/internal/modules/person/service"
	searchsvc "rekod.my/famvault/internal/modules/search/service"
	"rekod.my/famvault/pkg/apperror"
)

// memStorage keeps files in a map so tests never touch the disk.
type memStorage struct {
	files      map[string][]byte
	failRemove bool
	removed    []string
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) Save(r io.Reader, subdir, fileName string) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	path := subdir + "/" + fileName
	m.files[path] = data
	return path, int64(len(data)), nil
}

func (m *memStorage) Open(path string) (io.ReadCloser, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Remove(path string) error {
	if m.failRemove {
		return fmt.Errorf("remove %s: disk on fire", path)
	}
	m.removed = append(m.removed, path)
	delete(m.files, path)
	return nil
}

func (m *memStorage) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func setupDocumentService(t *testing.T) (DocumentService, *gorm.DB, *memStorage) {
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

	files := newMemStorage()
	activity := activitysvc.NewActivityService(activityrepo.NewActivityRepository(db))
	people := personsvc.NewService(
		personrepo.NewPersonRepository(db),
		files,
		searchsvc.NewSearchService(nil),
		activity,
		favoriterepo.NewFavoriteRepository(db),
	)
	svc := NewDocumentService(repository.NewDocumentRepository(db), people, files, activity)
	return svc, db, files
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

func createPerson(t *testing.T, db *gorm.DB, owner *entity.User) *entity.Person {
	t.Helper()
	person := &entity.Person{
		UserID:      owner.ID,
		Name:        "Alice",
		NRIC:        "850101-10-1111",
		DateOfBirth: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      entity.GenderFemale,
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("create person: %v", err)
	}
	return person
}

func multipartFile(t *testing.T, fieldName, fileName, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File[fieldName][0]
}

func TestUploadRequiresEditAccess(t *testing.T) {
	svc, db, files := setupDocumentService(t)
	ctx := context.Background()

	owner := createUser(t, db, "owner@example.com", false)
	stranger := createUser(t, db, "stranger@example.com", false)
	person := createPerson(t, db, owner)

	header := multipartFile(t, "file", "ic.pdf", "fake pdf bytes")

	doc, err := svc.Upload(ctx, owner, person.ID, "IC copy", header, false, "127.0.0.1")
	if err != nil {
		t.Fatalf("owner upload: %v", err)
	}
	if doc.Size != int64(len("fake pdf bytes")) {
		t.Errorf("size = %d, want %d", doc.Size, len("fake pdf bytes"))
	}
	if !files.Exists(doc.FilePath) {
		t.Error("uploaded file not stored")
	}

	if _, err := svc.Upload(ctx, stranger, person.ID, "IC copy", header, false, "127.0.0.1"); err != apperror.ErrForbidden {
		t.Errorf("stranger upload should be forbidden, got %v", err)
	}
}

func TestDocumentVisibility(t *testing.T) {
	svc, db, files := setupDocumentService(t)
	ctx := context.Background()

	owner := createUser(t, db, "owner@example.com", false)
	shared := createUser(t, db, "shared@example.com", false)
	stranger := createUser(t, db, "stranger@example.com", false)
	person := createPerson(t, db, owner)

	if err := db.Create(&entity.PersonShare{
		PersonID:     person.ID,
		SharedWithID: shared.ID,
		SharedByID:   owner.ID,
	}).Error; err != nil {
		t.Fatalf("create share: %v", err)
	}

	files.files["people/x/ic.pdf"] = []byte("secret")
	doc := &entity.Document{
		PersonID:     person.ID,
		Name:         "IC copy",
		FilePath:     "people/x/ic.pdf",
		OriginalName: "ic.pdf",
		Size:         6,
		MimeType:     "application/pdf",
	}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}

	// Private: owner and share holder can open, strangers cannot.
	for _, u := range []*entity.User{owner, shared} {
		_, reader, err := svc.Open(ctx, u, doc.ID)
		if err != nil {
			t.Fatalf("%s open: %v", u.Email, err)
		}
		reader.Close()
	}
	if _, _, err := svc.Open(ctx, stranger, doc.ID); err != apperror.ErrForbidden {
		t.Fatalf("stranger open should be forbidden, got %v", err)
	}

	// Public: anyone with the link.
	if _, err := svc.SetPublic(ctx, owner, doc.ID, true); err != nil {
		t.Fatalf("set public: %v", err)
	}
	_, reader, err := svc.Open(ctx, stranger, doc.ID)
	if err != nil {
		t.Fatalf("stranger open of public doc: %v", err)
	}
	reader.Close()

	// Share grants read, not edit: the share holder cannot flip visibility.
	if _, err := svc.SetPublic(ctx, shared, doc.ID, false); err != apperror.ErrForbidden {
		t.Fatalf("shared user visibility change should be forbidden, got %v", err)
	}
}

func TestDeleteAbortsWhenFileRemovalFails(t *testing.T) {
	svc, db, files := setupDocumentService(t)
	ctx := context.Background()

	owner := createUser(t, db, "owner@example.com", false)
	person := createPerson(t, db, owner)

	files.files["people/x/ic.pdf"] = []byte("secret")
	doc := &entity.Document{
		PersonID:     person.ID,
		Name:         "IC copy",
		FilePath:     "people/x/ic.pdf",
		OriginalName: "ic.pdf",
		Size:         6,
		MimeType:     "application/pdf",
	}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}

	files.failRemove = true
	if err := svc.Delete(ctx, owner, doc.ID, "127.0.0.1"); err == nil {
		t.Fatal("expected delete to fail when the file cannot be removed")
	}

	var count int64
	db.Model(&entity.Document{}).Where("id = ?", doc.ID).Count(&count)
	if count != 1 {
		t.Fatal("metadata row should survive a failed file removal")
	}

	files.failRemove = false
	if err := svc.Delete(ctx, owner, doc.ID, "127.0.0.1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	db.Model(&entity.Document{}).Where("id = ?", doc.ID).Count(&count)
	if count != 0 {
		t.Fatal("row should be gone after successful delete")
	}
}
