package dto

import (
	"time"

	"github.com/google/uuid"
	"rekod.my/famvault/internal/entity"
)

type RegisterInput struct {
	Name     string `form:"name" json:"name" binding:"required,max=100"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	IsAdmin    bool       `json:"is_admin"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsAdmin:    u.IsAdmin,
		ApprovedAt: u.ApprovedAt,
		AvatarURL:  u.AvatarURL,
		CreatedAt:  u.CreatedAt,
	}
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UpdateProfileInput struct {
	Name     *string `form:"name" json:"name" binding:"omitempty,max=100"`
	Password *string `form:"password" json:"password" binding:"omitempty,min=8"`
}
