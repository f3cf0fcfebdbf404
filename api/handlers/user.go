package handlers

import (
	"net/http"

	"socialfeed/feed"
	"socialfeed/models"
	"socialfeed/services"

	"github.com/gin-gonic/gin"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 1000
)

// UserInfo - публичная часть профиля
type UserInfo struct {
	ID          int64  `json:"id"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"display_name"`
	City        string `json:"city,omitempty"`
	IsPrivate   bool   `json:"is_private"`
}

func toUserInfo(u models.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Nickname:    u.Nickname,
		DisplayName: u.DisplayName(),
		City:        u.City,
		IsPrivate:   u.IsPrivate,
	}
}

type UserRegisterRequest struct {
	Nickname  string `json:"nickname" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	City      string `json:"city"`
	IsPrivate bool   `json:"is_private"`
}

type UserHandlers struct {
	users *services.UserService
}

func NewUserHandlers(users *services.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

func (h *UserHandlers) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), services.CreateUserInput{
		Nickname:  req.Nickname,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID})
}

func (h *UserHandlers) UserGet(c *gin.Context) {
	id, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUserInfo(*user)})
}

func (h *UserHandlers) UserSearch(c *gin.Context) {
	firstName := c.Query("first_name")
	lastName := c.Query("last_name")

	if firstName == "" && lastName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one search parameter (first_name or last_name) is required"})
		return
	}

	page, limit, err := feed.ParsePagination(c.Query("page"), c.Query("limit"), defaultSearchLimit, maxSearchLimit)
	if err != nil {
		writeError(c, err)
		return
	}

	users, err := h.users.SearchUsers(c.Request.Context(), firstName, lastName, limit, (page-1)*limit)
	if err != nil {
		writeError(c, err)
		return
	}

	userInfos := make([]UserInfo, 0, len(users))
	for _, user := range users {
		userInfos = append(userInfos, toUserInfo(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": userInfos})
}

// SetPrivacy - PUT /profile/privacy
func (h *UserHandlers) SetPrivacy(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		IsPrivate *bool `json:"is_private" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.users.SetPrivacy(c.Request.Context(), userID, *req.IsPrivate); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_private": *req.IsPrivate})
}
