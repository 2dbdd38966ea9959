package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rekod.my/famvault/internal/middleware"
	"rekod.my/famvault/internal/modules/admin/dto"
	"rekod.my/famvault/internal/modules/admin/service"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/response"
	"rekod.my/famvault/pkg/validator"
)

type AdminHandler struct {
	service service.AdminService
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	pendingOnly := c.Query("pending") == "true"

	users, err := h.service.ListUsers(c.Request.Context(), pendingOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *AdminHandler) Approve(c *gin.Context) {
	admin, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid user id", apperror.ErrBadRequest))
		return
	}

	user, err := h.service.Approve(c.Request.Context(), admin, userID, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) Reject(c *gin.Context) {
	admin, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid user id", apperror.ErrBadRequest))
		return
	}

	if err := h.service.Reject(c.Request.Context(), admin, userID, c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account removed"})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	admin, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid user id", apperror.ErrBadRequest))
		return
	}

	var input dto.RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	user, err := h.service.SetAdmin(c.Request.Context(), admin, userID, *input.IsAdmin, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) Broadcast(c *gin.Context) {
	admin, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.BroadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	recipients, err := h.service.Broadcast(c.Request.Context(), admin, input, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "broadcast sent", "recipients": recipients})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
