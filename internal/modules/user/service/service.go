package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	activity "rekod.my/famvault/internal/modules/activity/service"
	"rekod.my/famvault/internal/modules/user/dto"
	"rekod.my/famvault/internal/modules/user/repository"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/storage"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput, avatar *AvatarFile, ip string) (*dto.UserResponse, error)
	Login(ctx context.Context, input dto.LoginInput, ip string) (*dto.AuthResponse, error)
}

// AvatarFile carries an uploaded avatar through to the image storage.
type AvatarFile struct {
	Reader   interface{ Read(p []byte) (int, error) }
	FileName string
}

type authService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
	activity     activity.ActivityService
	secret       string
	tokenTTL     time.Duration
}

func NewAuthService(repo repository.UserRepository, imageStorage storage.ImageStorage, activitySvc activity.ActivityService, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:         repo,
		imageStorage: imageStorage,
		activity:     activitySvc,
		secret:       secret,
		tokenTTL:     tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput, avatar *AvatarFile, ip string) (*dto.UserResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.New(409, "email already registered", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashed),
	}

	if avatar != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "user.registered",
		Description: "registered and is awaiting approval",
		SubjectType: "user",
		SubjectID:   user.ID.String(),
		IP:          ip,
	})

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput, ip string) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		ActorID:     &user.ID,
		Action:      "user.login",
		Description: "logged in",
		SubjectType: "user",
		SubjectID:   user.ID.String(),
		IP:          ip,
	})

	return &dto.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}

func toUserResponse(user *entity.User) dto.UserResponse {
	return dto.NewUserResponse(user)
}
