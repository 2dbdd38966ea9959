package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rekod.my/famvault/pkg/apperror"
)

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// Error writes a standardized error response.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		log.Printf("[internal error] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(code, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(code, gin.H{"message": err.Error()})
}
