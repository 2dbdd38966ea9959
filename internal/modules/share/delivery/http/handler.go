package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rekod.my/famvault/internal/middleware"
	"rekod.my/famvault/internal/modules/share/service"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/response"
	"rekod.my/famvault/pkg/validator"
)

type ShareHandler struct {
	service service.ShareService
}

func NewShareHandler(service service.ShareService) *ShareHandler {
	return &ShareHandler{service: service}
}

type shareRequest struct {
	SharedWithID string `json:"shared_with_id" binding:"required,uuid"`
}

func (h *ShareHandler) Share(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid person id", apperror.ErrBadRequest))
		return
	}

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	sharedWithID, _ := uuid.Parse(req.SharedWithID)

	share, err := h.service.Share(c.Request.Context(), user, personID, sharedWithID, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, share)
}

func (h *ShareHandler) Unshare(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid person id", apperror.ErrBadRequest))
		return
	}

	sharedWithID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid user id", apperror.ErrBadRequest))
		return
	}

	if err := h.service.Unshare(c.Request.Context(), user, personID, sharedWithID, c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "share revoked"})
}

func (h *ShareHandler) ListForPerson(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid person id", apperror.ErrBadRequest))
		return
	}

	shares, err := h.service.ListForPerson(c.Request.Context(), user, personID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": shares})
}

func (h *ShareHandler) ListSharedWithMe(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	shares, err := h.service.ListSharedWithMe(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": shares})
}
