package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePersonRequest struct {
	Name        string   `json:"name" binding:"required,max=150"`
	NRIC        string   `json:"nric" binding:"required,max=20"`
	DateOfBirth string   `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender      string   `json:"gender" binding:"omitempty,oneof=Male Female"`
	BloodType   *string  `json:"blood_type" binding:"omitempty,max=5"`
	Occupation  *string  `json:"occupation" binding:"omitempty,max=100"`
	Address     *string  `json:"address"`
	Phones      []string `json:"phones"`
	Email       *string  `json:"email" binding:"omitempty,email"`
}

type UpdatePersonRequest struct {
	Name        string   `json:"name" binding:"required,max=150"`
	NRIC        string   `json:"nric" binding:"required,max=20"`
	DateOfBirth string   `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Gender      string   `json:"gender" binding:"required,oneof=Male Female"`
	BloodType   *string  `json:"blood_type" binding:"omitempty,max=5"`
	Occupation  *string  `json:"occupation" binding:"omitempty,max=100"`
	Address     *string  `json:"address"`
	Phones      []string `json:"phones"`
	Email       *string  `json:"email" binding:"omitempty,email"`
}

type PersonFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type PersonResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	NRIC        string    `json:"nric"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	BloodType   *string   `json:"blood_type,omitempty"`
	Occupation  *string   `json:"occupation,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Phones      []string  `json:"phones"`
	Email       *string   `json:"email,omitempty"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

type PaginatedPersonResponse struct {
	Data []PersonResponse `json:"data"`
	Meta PaginationMeta   `json:"meta"`
}

type NRICParseResponse struct {
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
}
