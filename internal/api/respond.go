package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rfpflow/internal/apperr"
)

// respondError maps domain error kinds to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindDuplicate:
		status = http.StatusConflict
	case apperr.KindTooLarge:
		status = http.StatusRequestEntityTooLarge
	case apperr.KindAIServiceUnavailable, apperr.KindAIResponseMalformed:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	return userID.(int), true
}
