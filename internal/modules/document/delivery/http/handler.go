package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rekod.my/famvault/internal/middleware"
	"rekod.my/famvault/internal/modules/document/service"
	"rekod.my/famvault/pkg/apperror"
	"rekod.my/famvault/pkg/response"
)

type DocumentHandler struct {
	service service.DocumentService
}

func NewDocumentHandler(service service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file is required"})
		return
	}

	isPublic, _ := strconv.ParseBool(c.PostForm("is_public"))

	doc, err := h.service.Upload(c.Request.Context(), user, personID, c.PostForm("name"), fileHeader, isPublic, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) ListForPerson(c *gin.Context) {
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

	docs, err := h.service.ListForPerson(c.Request.Context(), user, personID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}

func (h *DocumentHandler) Download(c *gin.Context) {
	h.stream(c, true)
}

func (h *DocumentHandler) Preview(c *gin.Context) {
	h.stream(c, false)
}

func (h *DocumentHandler) stream(c *gin.Context, asAttachment bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid document id", apperror.ErrBadRequest))
		return
	}

	doc, reader, err := h.service.Open(c.Request.Context(), user, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	disposition := "inline"
	if asAttachment {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+doc.OriginalName+`"`)
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(doc.Size, 10))
	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}

type setPublicRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

func (h *DocumentHandler) SetPublic(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid document id", apperror.ErrBadRequest))
		return
	}

	var req setPublicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "is_public is required"})
		return
	}

	doc, err := h.service.SetPublic(c.Request.Context(), user, id, *req.IsPublic)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid document id", apperror.ErrBadRequest))
		return
	}

	if err := h.service.Delete(c.Request.Context(), user, id, c.ClientIP()); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}
