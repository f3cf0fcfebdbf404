package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"socialfeed/api/middleware"
	"socialfeed/feed"
	"socialfeed/logger"
	"socialfeed/services"

	"github.com/gin-gonic/gin"
)

// writeError переводит ошибки движка и сервисов в HTTP-ответ
func writeError(c *gin.Context, err error) {
	var ve *feed.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": ve.Field})
	case errors.Is(err, feed.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feed is temporarily unavailable", "retryable": true})
	case errors.Is(err, feed.ErrNotFound), errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrFollowNotFound), errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyFollowing), errors.Is(err, services.ErrFollowBlocked),
		errors.Is(err, services.ErrNicknameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSelfFollow), errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrContentTooLong), errors.Is(err, services.ErrInvalidVisibility):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return userID, ok
}

// idParam разбирает числовой параметр пути, при ошибке отвечает 400
func idParam(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(c, &feed.ValidationError{Field: name, Value: raw})
		return 0, false
	}
	return id, true
}
