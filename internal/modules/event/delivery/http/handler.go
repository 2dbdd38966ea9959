package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"rekod.my/famvault/internal/entity"
	"rekod.my/famvault/internal/modules/event/repository"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/response"
	"rekod.my/famvault/pkg/validator"
)

type EventHandler struct {
	repo repository.EventRepository
}

func NewEventHandler(repo repository.EventRepository) *EventHandler {
	return &EventHandler{repo: repo}
}

type createEventRequest struct {
	Title       string `json:"title" binding:"required,max=150"`
	Description string `json:"description" binding:"max=5000"`
	Date        string `json:"date" binding:"required,datetime=2006-01-02"`
}

func (h *EventHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	event := &entity.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		CreatedByID: userID,
	}

	if err := h.repo.Create(c.Request.Context(), event); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid event id", apperror.ErrBadRequest))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, apperror.ErrNotFound)
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}
