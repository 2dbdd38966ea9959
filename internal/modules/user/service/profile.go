package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"rekod.my/famvault/internal/modules/user/dto"
	"rekod.my/famvault/internal/modules/user/repository"
	"rekod.my/famvault/pkg/storage"
)

type ProfileService interface {
	GetCurrent(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	Update(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, avatar *AvatarFile) (*dto.UserResponse, error)
}

type profileService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
}

func NewProfileService(repo repository.UserRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{repo: repo, imageStorage: imageStorage}
}

func (s *profileService) GetCurrent(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, avatar *AvatarFile) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	if avatar != nil && s.imageStorage != nil {
		old := user.AvatarURL
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
		if old != nil {
			// Old avatar removal is best effort.
			_ = s.imageStorage.DeleteImage(ctx, *old)
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}
