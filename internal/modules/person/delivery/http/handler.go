package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rekod.my/famvault/internal/middleware"
	"rekod.my/famvault/internal/modules/person/dto"
	"rekod.my/famvault/internal/modules/person/service"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/response"
	"rekod.my/famvault/pkg/validator"
)

type PersonHandler struct {
	service service.Service
}

func NewPersonHandler(service service.Service) *PersonHandler {
	return &PersonHandler{service: service}
}

func (h *PersonHandler) Create(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.Create(c.Request.Context(), user, req, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *PersonHandler) Get(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid person id", apperror.ErrBadRequest))
		return
	}

	res, err := h.service.Get(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PersonHandler) List(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var filter dto.PersonFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.List(c.Request.Context(), user, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PersonHandler) Update(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid person id", apperror.ErrBadRequest))
		return
	}

	var req dto.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.Update(c.Request.Context(), user, id, req, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PersonHandler) Delete(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid person id", apperror.ErrBadRequest))
		return
	}

	if err := h.service.Delete(c.Request.Context(), user, id, c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "person deleted"})
}

// ParseNRIC exposes the NRIC prefill assist. Malformed input is not an
// error; the client simply gets nothing to prefill.
func (h *PersonHandler) ParseNRIC(c *gin.Context) {
	info := service.ParseNRIC(c.Query("nric"))
	if info == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, dto.NRICParseResponse{
		DateOfBirth: info.DateOfBirth.Format("2006-01-02"),
		Gender:      info.Gender,
	})
}
