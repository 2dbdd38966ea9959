package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"rekod.my/famvault/internal/modules/activity/repository"
	"rekod.my/famvault/internal/modules/activity/service"
	"rekod.my/famvault/pkg/response"
)

type ActivityHandler struct {
	service service.ActivityService
}

func NewActivityHandler(service service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

type listQuery struct {
	Action string `form:"action"`
	Actor  string `form:"actor"`
	From   string `form:"from"`
	To     string `form:"to"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

func (h *ActivityHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid query parameters"})
		return
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	filter := repository.Filter{
		Action:  q.Action,
		ActorID: q.Actor,
		Offset:  (q.Page - 1) * q.Limit,
		Limit:   q.Limit,
	}
	if t, err := time.Parse("2006-01-02", q.From); err == nil {
		filter.From = &t
	}
	if t, err := time.Parse("2006-01-02", q.To); err == nil {
		end := t.Add(24*time.Hour - time.Second)
		filter.To = &end
	}

	logs, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": logs,
		"meta": gin.H{
			"current_page": q.Page,
			"total_items":  total,
			"limit":        q.Limit,
		},
	})
}
