package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rekod.my/famvault/internal/entity"
	"rekod.my/famvault/internal/modules/suggestion/repository"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/response"
	"rekod.my/famvault/pkg/sanitize"
	"rekod.my/famvault/pkg/validator"
)

type SuggestionHandler struct {
	repo repository.SuggestionRepository
}

func NewSuggestionHandler(repo repository.SuggestionRepository) *SuggestionHandler {
	return &SuggestionHandler{repo: repo}
}

type createSuggestionRequest struct {
	Subject string `json:"subject" binding:"required,max=150"`
	Message string `json:"message" binding:"required,max=5000"`
}

func (h *SuggestionHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req createSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	suggestion := &entity.Suggestion{
		UserID:  userID,
		Subject: sanitize.Text(req.Subject),
		Message: sanitize.Text(req.Message),
	}
	if suggestion.Subject == "" || suggestion.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "subject and message must not be empty"})
		return
	}

	if err := h.repo.Create(c.Request.Context(), suggestion); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, suggestion)
}

func (h *SuggestionHandler) ListMine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	suggestions, err := h.repo.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": suggestions})
}

// Admin endpoints.

func (h *SuggestionHandler) ListAll(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	suggestions, total, err := h.repo.FindAll(c.Request.Context(), unreadOnly, (page-1)*limit, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": suggestions,
		"meta": gin.H{"current_page": page, "total_items": total, "limit": limit},
	})
}

func (h *SuggestionHandler) MarkAsRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid suggestion id", apperror.ErrBadRequest))
		return
	}

	if _, err := h.repo.FindByID(c.Request.Context(), id); err != nil {
		response.Error(c, apperror.ErrNotFound)
		return
	}

	if err := h.repo.MarkAsRead(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (h *SuggestionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid suggestion id", apperror.ErrBadRequest))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "suggestion deleted"})
}
