package handlers

import (
	"net/http"

	"socialfeed/services"

	"github.com/gin-gonic/gin"
)

type InterestHandlers struct {
	interests *services.InterestService
}

func NewInterestHandlers(interests *services.InterestService) *InterestHandlers {
	return &InterestHandlers{interests: interests}
}

// Set - PUT /interests, заменяет набор интересов целиком
func (h *InterestHandlers) Set(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Interests []string `json:"interests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	names, err := h.interests.SetUserInterests(c.Request.Context(), userID, req.Interests)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": names})
}

func (h *InterestHandlers) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	names, err := h.interests.UserInterests(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": names})
}
