package middleware

import (
	"github.com/gin-gonic/gin"
	"rekod.my/famvault/internal/entity"
	"rekod.my/famvault/pkg/apperror"
)

// CurrentUser returns the user loaded by RequireApproved/RequireAdmin.
func CurrentUser(c *gin.Context) (*entity.User, error) {
	v, exists := c.Get("user")
	if !exists {
		return nil, apperror.ErrUnauthorized
	}
	user, ok := v.(*entity.User)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	return user, nil
}
