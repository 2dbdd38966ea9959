package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rekod.my/famvault/internal/middleware"
	"rekod.my/famvault/internal/modules/favorite/service"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/response"
)

type FavoriteHandler struct {
	service service.FavoriteService
}

func NewFavoriteHandler(service service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

func (h *FavoriteHandler) Toggle(c *gin.Context) {
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

	favorited, err := h.service.Toggle(c.Request.Context(), user, personID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

func (h *FavoriteHandler) List(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	favs, err := h.service.List(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": favs})
}
