package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"rekod.my/famvault/internal/modules/user/dto"
	"rekod.my/famvault/internal/modules/user/service"
	"rekod.my/famvault/pkg/response"
	"rekod.my/famvault/pkg/validator"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	avatar := avatarFromForm(c)

	res, err := h.authService.Register(c.Request.Context(), input, avatar, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func avatarFromForm(c *gin.Context) *service.AvatarFile {
	fileHeader, err := c.FormFile("avatar")
	if err != nil || fileHeader == nil {
		return nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil
	}
	return &service.AvatarFile{Reader: file, FileName: fileHeader.Filename}
}
