package routes

import (
	"socialfeed/api/handlers"
	"socialfeed/api/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Users     *handlers.UserHandlers
	Feed      *handlers.FeedHandlers
	Posts     *handlers.PostHandlers
	Follows   *handlers.FollowHandlers
	Interests *handlers.InterestHandlers
}

func PublicApi(router *gin.Engine, h Handlers) *gin.RouterGroup {
	// Профили доступны без X-User-ID: регистрация происходит до получения идентификатора
	if h.Users != nil {
		userEndpoints := router.Group("/api/v1/user/")
		userEndpoints.POST("register", h.Users.UserRegister)
		userEndpoints.GET("search", h.Users.UserSearch)
		userEndpoints.GET("get/:user_id", h.Users.UserGet)
	}

	publicEndpoints := router.Group("/api/v1/")
	publicEndpoints.Use(middleware.UserIDMiddleware())
	{
		if h.Users != nil {
			publicEndpoints.PUT("profile/privacy", h.Users.SetPrivacy)
		}

		// Лента
		if h.Feed != nil {
			publicEndpoints.GET("feed/home", h.Feed.Home)
			publicEndpoints.GET("feed/trending", h.Feed.Trending)
			publicEndpoints.GET("feed/explore", h.Feed.Explore)
			publicEndpoints.GET("feed/explain/:post_id", h.Feed.Explain)
			publicEndpoints.POST("feed/invalidate/:user_id", h.Feed.InvalidateUser)
			publicEndpoints.POST("feed/invalidate-trending", h.Feed.InvalidateTrending)
		}

		// Посты и вовлеченность
		if h.Posts != nil {
			publicEndpoints.POST("posts", h.Posts.CreatePost)
			publicEndpoints.DELETE("posts/:post_id", h.Posts.DeletePost)
			publicEndpoints.POST("posts/:post_id/like", h.Posts.Like)
			publicEndpoints.DELETE("posts/:post_id/like", h.Posts.Unlike)
			publicEndpoints.POST("posts/:post_id/comments", h.Posts.Comment)
			publicEndpoints.POST("posts/:post_id/share", h.Posts.Share)
			publicEndpoints.POST("posts/views", h.Posts.RecordViews)
		}

		// Подписки
		if h.Follows != nil {
			publicEndpoints.POST("follows/:user_id", h.Follows.Follow)
			publicEndpoints.DELETE("follows/:user_id", h.Follows.Unfollow)
			publicEndpoints.POST("follows/:user_id/accept", h.Follows.Accept)
			publicEndpoints.POST("follows/:user_id/block", h.Follows.Block)
			publicEndpoints.GET("follows/following", h.Follows.Following)
			publicEndpoints.GET("follows/followers", h.Follows.Followers)
			publicEndpoints.GET("follows/requests", h.Follows.PendingRequests)
		}

		if h.Interests != nil {
			publicEndpoints.GET("interests", h.Interests.List)
			publicEndpoints.PUT("interests", h.Interests.Set)
		}
	}
	return publicEndpoints
}
