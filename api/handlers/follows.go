package handlers

import (
	"net/http"

	"socialfeed/services"

	"github.com/gin-gonic/gin"
)

type FollowHandlers struct {
	follows *services.FollowService
}

func NewFollowHandlers(follows *services.FollowService) *FollowHandlers {
	return &FollowHandlers{follows: follows}
}

// Follow - подписка текущего пользователя на :user_id
func (h *FollowHandlers) Follow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	follow, err := h.follows.Follow(c.Request.Context(), userID, targetID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, follow)
}

// Accept - подтверждение заявки от :user_id
func (h *FollowHandlers) Accept(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requesterID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	follow, err := h.follows.Accept(c.Request.Context(), userID, requesterID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, follow)
}

func (h *FollowHandlers) Unfollow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.follows.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

func (h *FollowHandlers) Block(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.follows.Block(c.Request.Context(), userID, targetID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User blocked"})
}

func (h *FollowHandlers) Following(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	users, err := h.follows.Following(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *FollowHandlers) Followers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	users, err := h.follows.Followers(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *FollowHandlers) PendingRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	users, err := h.follows.PendingRequests(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
