package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	activity "rekod.my/famvault/internal/modules/activity/service"
	person "rekod.my/famvault/internal/modules/person/service"
	"rekod.my/famvault/internal/modules/share/repository"
	userRepo "rekod.my/famvault/internal/modules/user/repository"
	"rekod.my/famvault/pkg/apperror"
)

type ShareService interface {
	Share(ctx context.Context, user *entity.User, personID, sharedWithID uuid.UUID, ip string) (*entity.PersonShare, error)
	Unshare(ctx context.Context, user *entity.User, personID, sharedWithID uuid.UUID, ip string) error
	ListForPerson(ctx context.Context, user *entity.User, personID uuid.UUID) ([]*entity.PersonShare, error)
	ListSharedWithMe(ctx context.Context, user *entity.User) ([]*entity.PersonShare, error)
}

type shareService struct {
	repo      repository.ShareRepository
	personSvc person.Service
	userRepo  userRepo.UserRepository
	activity  activity.ActivityService
}

func NewShareService(repo repository.ShareRepository, personSvc person.Service, users userRepo.UserRepository, activitySvc activity.ActivityService) ShareService {
	return &shareService{
		repo:      repo,
		personSvc: personSvc,
		userRepo:  users,
		activity:  activitySvc,
	}
}

func (s *shareService) Share(ctx context.Context, user *entity.User, personID, sharedWithID uuid.UUID, ip string) (*entity.PersonShare, error) {
	p, err := s.personSvc.CanEdit(ctx, user, personID)
	if err != nil {
		return nil, err
	}

	if sharedWithID == p.UserID {
		return nil, apperror.New(400, "cannot share a person with their owner", apperror.ErrBadRequest)
	}

	if _, err := s.userRepo.FindByID(ctx, sharedWithID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "user to share with not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	// A repeated grant is a conflict, not a silent second success.
	if _, err := s.repo.Find(ctx, personID, sharedWithID); err == nil {
		return nil, apperror.New(409, "person is already shared with this user", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	share := &entity.PersonShare{
		PersonID:     personID,
		SharedWithID: sharedWithID,
		SharedByID:   user.ID,
	}
	if err := s.repo.Create(ctx, share); err != nil {
		// Unique index catches the race the pre-check missed.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(409, "person is already shared with this user", apperror.ErrConflict)
		}
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "person.shared",
		Description: "shared person " + p.Name,
		SubjectType: "person",
		SubjectID:   personID.String(),
		Properties:  entity.Properties{"shared_with": sharedWithID.String()},
		IP:          ip,
	})

	return share, nil
}

func (s *shareService) Unshare(ctx context.Context, user *entity.User, personID, sharedWithID uuid.UUID, ip string) error {
	p, err := s.personSvc.CanEdit(ctx, user, personID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, personID, sharedWithID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "person.unshared",
		Description: "revoked share of person " + p.Name,
		SubjectType: "person",
		SubjectID:   personID.String(),
		Properties:  entity.Properties{"shared_with": sharedWithID.String()},
		IP:          ip,
	})

	return nil
}

func (s *shareService) ListForPerson(ctx context.Context, user *entity.User, personID uuid.UUID) ([]*entity.PersonShare, error) {
	if _, err := s.personSvc.CanEdit(ctx, user, personID); err != nil {
		return nil, err
	}
	return s.repo.FindByPersonID(ctx, personID)
}

func (s *shareService) ListSharedWithMe(ctx context.Context, user *entity.User) ([]*entity.PersonShare, error) {
	return s.repo.FindSharedWithUser(ctx, user.ID)
}
