package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	"rekod.my/famvault/internal/middleware"
	"rekod.my/famvault/internal/modules/message/repository"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/response"
	"rekod.my/famvault/pkg/sanitize"
	"rekod.my/famvault/pkg/validator"
)

type MessageHandler struct {
	repo repository.MessageRepository
}

func NewMessageHandler(repo repository.MessageRepository) *MessageHandler {
	return &MessageHandler{repo: repo}
}

type createMessageRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

func (h *MessageHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	message := &entity.Message{
		UserID: userID,
		Body:   sanitize.Text(req.Body),
	}
	if message.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "message body must not be empty"})
		return
	}

	if err := h.repo.Create(c.Request.Context(), message); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *MessageHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, total, err := h.repo.FindAll(c.Request.Context(), (page-1)*limit, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": messages,
		"meta": gin.H{"current_page": page, "total_items": total, "limit": limit},
	})
}

func (h *MessageHandler) Delete(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid message id", apperror.ErrBadRequest))
		return
	}

	message, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, apperror.ErrNotFound)
			return
		}
		response.Error(c, err)
		return
	}

	if !user.IsAdmin && message.UserID != user.ID {
		response.Error(c, apperror.ErrForbidden)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}
