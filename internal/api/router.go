package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/together/config"
	_ "github.com/d60-Lab/together/docs"
	"github.com/d60-Lab/together/internal/api/handler"
	"github.com/d60-Lab/together/internal/middleware"
	"github.com/d60-Lab/together/internal/service"
)

// NewRouter 装配路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	// 注册 username 校验规则
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return service.UsernamePattern.MatchString(fl.Field().String())
		})
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("together-engagement"))
	r.Use(middleware.RateLimit(cfg.Server.RateRPS))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.Storage.Backend == "local" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	auth := middleware.Auth(cfg.Auth.JWTSecret)

	v1 := r.Group("/api/v1")
	{
		// 公共读
		v1.GET("/users", h.GetUsers)
		v1.GET("/users/by-username/:username", h.GetUserByUsername)
		v1.GET("/users/:user_id/posts", h.ListUserPosts)
		v1.GET("/posts", h.ListPosts)
		v1.GET("/posts/:post_id", h.GetPost)
		v1.GET("/posts/:post_id/remixes", h.ListRemixes)
		v1.GET("/posts/:post_id/likers", h.ListLikers)
		v1.GET("/posts/:post_id/comments", h.ListComments)
		v1.GET("/relations/:user_id/following", h.ListFollowing)
		v1.GET("/relations/:user_id/fans", h.ListFans)
		v1.GET("/relations/:user_id/stats", h.RelationStats)

		// 登录态
		authed := v1.Group("", auth)
		{
			authed.POST("/users", h.CreateUser)
			authed.GET("/users/me", h.Me)
			authed.PATCH("/users/me", h.UpdateProfile)

			authed.POST("/posts", h.CreatePost)
			authed.POST("/posts/:post_id/remix", h.RemixPost)
			authed.POST("/posts/:post_id/like", h.ToggleLike)
			authed.GET("/posts/:post_id/like", h.CheckIfLiked)
			authed.POST("/posts/:post_id/comments", h.AddComment)
			authed.DELETE("/posts/:post_id/comments/:comment_id", h.DeleteComment)
			authed.POST("/posts/:post_id/report", h.ReportPost)

			authed.POST("/relations/follow", h.Follow)
			authed.POST("/relations/unfollow", h.Unfollow)
			authed.GET("/relations/:user_id/status", h.IsFollowing)

			authed.GET("/notifications", h.ListNotifications)
			authed.GET("/notifications/stream", h.StreamNotifications)
			authed.POST("/notifications/:notification_id/read", h.MarkNotificationRead)
			authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)

			authed.POST("/media", h.UploadMedia)
		}
	}

	internal := r.Group("/internal", middleware.TriggerAuth(cfg.Auth.TriggerSecretHash))
	{
		internal.POST("/triggers/kick", h.KickTriggers)
		internal.GET("/posts/:post_id/reports", h.ListPostReports)
	}

	return r
}
