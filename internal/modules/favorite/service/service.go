package service

import (
	"context"

	"github.com/google/uuid"
	"rekod.my/famvault/internal/entity"
	"rekod.my/famvault/internal/modules/favorite/repository"
	person "rekod.my/famvault/internal/modules/person/service"
)

type FavoriteService interface {
	// Toggle flips the favorite flag and returns the new state. Applying
	// it twice lands back where it started.
	Toggle(ctx context.Context, user *entity.User, personID uuid.UUID) (favorited bool, err error)
	List(ctx context.Context, user *entity.User) ([]*entity.Favorite, error)
}

type favoriteService struct {
	repo      repository.FavoriteRepository
	personSvc person.Service
}

func NewFavoriteService(repo repository.FavoriteRepository, personSvc person.Service) FavoriteService {
	return &favoriteService{repo: repo, personSvc: personSvc}
}

func (s *favoriteService) Toggle(ctx context.Context, user *entity.User, personID uuid.UUID) (bool, error) {
	if _, err := s.personSvc.CanAccess(ctx, user, personID); err != nil {
		return false, err
	}

	isFav, err := s.repo.IsFavorite(ctx, user.ID, personID)
	if err != nil {
		return false, err
	}

	if isFav {
		if err := s.repo.Delete(ctx, user.ID, personID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.repo.Create(ctx, &entity.Favorite{UserID: user.ID, PersonID: personID}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *favoriteService) List(ctx context.Context, user *entity.User) ([]*entity.Favorite, error) {
	return s.repo.FindByUserID(ctx, user.ID)
}
