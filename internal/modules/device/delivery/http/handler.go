package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"rekod.my/famvault/internal/modules/device/repository"
	"rekod.my/famvault/pkg/response"
	"rekod.my/famvault/pkg/validator"
)

type DeviceHandler struct {
	repo repository.DeviceRepository
}

func NewDeviceHandler(repo repository.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{repo: repo}
}

type registerTokenRequest struct {
	Token    string `json:"token" binding:"required,max=255"`
	Platform string `json:"platform" binding:"omitempty,oneof=ios android"`
}

func (h *DeviceHandler) Register(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	if err := h.repo.Register(c.Request.Context(), userID, req.Token, req.Platform); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "device registered"})
}

type deleteTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *DeviceHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req deleteTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), userID, req.Token); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "device removed"})
}
