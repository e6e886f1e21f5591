package router

import (
	"net/http"
	"time"

	"communityhub/internal/config"
	"communityhub/internal/handlers"
	"communityhub/internal/middleware"
	"communityhub/internal/services"
	"communityhub/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
)

// Deps 路由依赖的外部组件
type Deps struct {
	Sessions *session.Manager
	Mail     *services.MailService
	Media    services.MediaStore
	OAuth    *oauth2.Config
}

// New 构建带全部中间件和路由的引擎
func New(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(handlers.MethodNotAllowed)
	r.NoRoute(handlers.NotFound)

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		cors.New(corsConfig(cfg)),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", cfg.MediaURLPrefix})),
	)

	// cookie 里只放会话 ID
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.SessionName, store))
	r.Use(middleware.LoadIdentity(deps.Sessions))

	RegisterRoutes(r, cfg, deps)
	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		c.AllowOrigins = []string{cfg.SiteURL}
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	c.AllowCredentials = true
	return c
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps) {
	maxUpload := int64(cfg.MaxUploadMB) << 20

	authHandler := handlers.NewAuthHandler(deps.Sessions, deps.Mail, deps.OAuth, cfg.SiteURL)
	itemHandler := handlers.NewItemHandler(deps.Media, maxUpload, cfg.RequireIDVerification)
	feedHandler := handlers.NewFeedHandler()
	engagementHandler := handlers.NewEngagementHandler()
	userHandler := handlers.NewUserHandler(deps.Sessions)
	imageHandler := handlers.NewImageHandler(deps.Media, maxUpload)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.MediaBackend != "s3" {
		r.Static(cfg.MediaURLPrefix, cfg.UploadDir)
	}

	// 登录相关 (Auth Routes)
	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)                  // 邮箱密码登录
		auth.POST("/logout", authHandler.Logout)                // 退出登录
		auth.POST("/otp", authHandler.OTP)                      // 验证码 send / verify / send_reset
		auth.POST("/reset-password", authHandler.ResetPassword) // 验证码重置密码

		google := auth.Group("/google", middleware.RateLimitByIP(services.RuleOAuth))
		google.GET("", authHandler.GoogleLogin)             // 跳转 Google 授权
		google.GET("/callback", authHandler.GoogleCallback) // Google 回调
	}

	api := r.Group("/api")
	api.GET("/check-session", authHandler.CheckSession) // 唯一公开的 API

	// 受保护的 API (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/create-item", itemHandler.Create)         // 发布
		authorized.GET("/get-item", itemHandler.Get)                // 详情
		authorized.GET("/item-history", itemHandler.History)        // 状态审计
		authorized.POST("/update-item", itemHandler.Update)         // 编辑
		authorized.POST("/delete-item", itemHandler.Delete)         // 删除
		authorized.POST("/update-status", itemHandler.UpdateStatus) // 修改处理状态
		authorized.POST("/upload-image", imageHandler.Upload)       // 头像/封面上传

		authorized.GET("/get-items", feedHandler.ListItems)            // 筛选列表
		authorized.GET("/get-feed", feedHandler.Feed)                  // 信息流
		authorized.GET("/get-trending", feedHandler.Trending)          // 热门
		authorized.GET("/map-items", feedHandler.MapItems)             // 地图聚合
		authorized.GET("/recent-activity", feedHandler.RecentActivity) // 最近动态

		authorized.POST("/react-item", engagementHandler.React)     // 点赞
		authorized.POST("/comment-item", engagementHandler.Comment) // 评论
		authorized.POST("/share-item", engagementHandler.Share)     // 分享

		authorized.POST("/follow-toggle", userHandler.FollowToggle)   // 关注
		authorized.GET("/user-profile", userHandler.Profile)          // 个人主页
		authorized.GET("/user-posts", userHandler.Posts)              // 用户条目
		authorized.GET("/user-followers", userHandler.Followers)      // 粉丝
		authorized.GET("/user-following", userHandler.Following)      // 关注列表
		authorized.GET("/user-data", userHandler.Data)                // 我的统计
		authorized.POST("/update-profile", userHandler.UpdateProfile) // 修改资料
	}
}
