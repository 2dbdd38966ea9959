package service

import (
	"context"
	"errors"
	"io"
	"log"
	"mime/multipart"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	activity "rekod.my/famvault/internal/modules/activity/service"
	"rekod.my/famvault/internal/modules/document/repository"
	person "rekod.my/famvault/internal/modules/person/service"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/storage"
)

type DocumentService interface {
	Upload(ctx context.Context, user *entity.User, personID uuid.UUID, name string, fileHeader *multipart.FileHeader, isPublic bool, ip string) (*entity.Document, error)
	ListForPerson(ctx context.Context, user *entity.User, personID uuid.UUID) ([]*entity.Document, error)
	// Open returns the document row and a reader over its stored file after
	// the visibility check: public, or caller may access the parent person.
	Open(ctx context.Context, user *entity.User, id uuid.UUID) (*entity.Document, io.ReadCloser, error)
	SetPublic(ctx context.Context, user *entity.User, id uuid.UUID, isPublic bool) (*entity.Document, error)
	Delete(ctx context.Context, user *entity.User, id uuid.UUID, ip string) error
}

type documentService struct {
	repo      repository.DocumentRepository
	personSvc person.Service
	files     storage.DocumentStorage
	activity  activity.ActivityService
}

func NewDocumentService(repo repository.DocumentRepository, personSvc person.Service, files storage.DocumentStorage, activitySvc activity.ActivityService) DocumentService {
	return &documentService{
		repo:      repo,
		personSvc: personSvc,
		files:     files,
		activity:  activitySvc,
	}
}

func (s *documentService) Upload(ctx context.Context, user *entity.User, personID uuid.UUID, name string, fileHeader *multipart.FileHeader, isPublic bool, ip string) (*entity.Document, error) {
	if _, err := s.personSvc.CanEdit(ctx, user, personID); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.New(400, "failed to read uploaded file", apperror.ErrBadRequest)
	}
	defer file.Close()

	doc := &entity.Document{
		ID:           uuid.New(),
		PersonID:     personID,
		Name:         name,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		IsPublic:     isPublic,
	}
	if doc.Name == "" {
		doc.Name = fileHeader.Filename
	}

	path, size, err := s.files.Save(file, doc.ID.String(), fileHeader.Filename)
	if err != nil {
		return nil, err
	}
	doc.FilePath = path
	doc.Size = size

	if err := s.repo.Create(ctx, doc); err != nil {
		// Row failed; don't leave the file orphaned.
		_ = s.files.Remove(path)
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "document.uploaded",
		Description: "uploaded document " + doc.Name,
		SubjectType: "document",
		SubjectID:   doc.ID.String(),
		Properties:  entity.Properties{"person_id": personID.String(), "size": size},
		IP:          ip,
	})

	return doc, nil
}

func (s *documentService) ListForPerson(ctx context.Context, user *entity.User, personID uuid.UUID) ([]*entity.Document, error) {
	if _, err := s.personSvc.CanAccess(ctx, user, personID); err != nil {
		return nil, err
	}
	return s.repo.FindByPersonID(ctx, personID)
}

func (s *documentService) Open(ctx context.Context, user *entity.User, id uuid.UUID) (*entity.Document, io.ReadCloser, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !doc.IsPublic {
		if _, err := s.personSvc.CanAccess(ctx, user, doc.PersonID); err != nil {
			return nil, nil, apperror.ErrForbidden
		}
	}

	reader, err := s.files.Open(doc.FilePath)
	if err != nil {
		log.Printf("document %s metadata exists but file %q is missing: %v", doc.ID, doc.FilePath, err)
		return nil, nil, apperror.New(404, "stored file is missing", apperror.ErrNotFound)
	}

	return doc, reader, nil
}

func (s *documentService) SetPublic(ctx context.Context, user *entity.User, id uuid.UUID, isPublic bool) (*entity.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.personSvc.CanEdit(ctx, user, doc.PersonID); err != nil {
		return nil, err
	}

	doc.IsPublic = isPublic
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, user *entity.User, id uuid.UUID, ip string) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.personSvc.CanEdit(ctx, user, doc.PersonID); err != nil {
		return err
	}

	// File first; a failed removal fails the whole delete so metadata
	// never points nowhere silently.
	if err := s.files.Remove(doc.FilePath); err != nil {
		log.Printf("failed to remove stored file %q for document %s: %v", doc.FilePath, doc.ID, err)
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "document.deleted",
		Description: "deleted document " + doc.Name,
		SubjectType: "document",
		SubjectID:   doc.ID.String(),
		IP:          ip,
	})

	return nil
}

func (s *documentService) find(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}
