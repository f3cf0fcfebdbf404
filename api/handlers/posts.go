package handlers

import (
	"net/http"

	"socialfeed/models"
	"socialfeed/services"

	"github.com/gin-gonic/gin"
)

type PostHandlers struct {
	posts *services.PostService
}

func NewPostHandlers(posts *services.PostService) *PostHandlers {
	return &PostHandlers{posts: posts}
}

type CreatePostRequest struct {
	Content    string            `json:"content" binding:"required"`
	Hashtags   []string          `json:"hashtags"`
	Visibility models.Visibility `json:"visibility"`
}

// CreatePost создает новый пост
func (h *PostHandlers) CreatePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), services.CreatePostInput{
		AuthorID:   userID,
		Content:    req.Content,
		Hashtags:   req.Hashtags,
		Visibility: req.Visibility,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         post.ID,
		"author_id":  post.AuthorID,
		"content":    post.Content,
		"hashtags":   post.Tags(),
		"visibility": post.Visibility,
		"created_at": post.CreatedAt,
	})
}

func (h *PostHandlers) DeletePost(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	if err := h.posts.DeletePost(c.Request.Context(), userID, postID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (h *PostHandlers) Like(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	if err := h.posts.Like(c.Request.Context(), userID, postID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post liked"})
}

func (h *PostHandlers) Unlike(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	if err := h.posts.Unlike(c.Request.Context(), userID, postID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Like removed"})
}

func (h *PostHandlers) Comment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	comment, err := h.posts.Comment(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *PostHandlers) Share(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	share, err := h.posts.Share(c.Request.Context(), userID, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, share)
}

// RecordViews - клиент сообщает, какие посты из ленты были показаны
func (h *PostHandlers) RecordViews(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		PostIDs []int64 `json:"post_ids" binding:"required,min=1,max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.posts.RecordView(c.Request.Context(), userID, req.PostIDs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Views recorded"})
}
