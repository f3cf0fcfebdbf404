package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	UserIDHeader = "X-User-ID"
	userIDKey    = "user_id"
)

// UserIDMiddleware берет идентификатор зрителя из заголовка X-User-ID.
// Токены выдает внешний шлюз, сюда приходит уже проверенный id
func UserIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(UserIDHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required: provide X-User-ID header"})
			return
		}
		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid X-User-ID format"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID возвращает id, установленный UserIDMiddleware
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
