package server

import (
	"net/http"
	"time"

	"memberchat/internal/auth"
	"memberchat/internal/config"
	"memberchat/internal/metrics"
	"memberchat/internal/mw"
	"memberchat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRouter 统一初始化 Gin 中间件和 REST API 端点。
func SetupRouter(cfg config.Config, db *gorm.DB) *gin.Engine {
	sessionSvc := service.NewSessionService(db)
	chatSvc := service.NewChatService(db, cfg.RoomName)
	profileSvc := service.NewProfileService(db)
	h := NewHandler(sessionSvc, chatSvc, profileSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	// 控制单个 IP+路由的速率，避免匿名接口被刷爆。
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/hello", h.Hello)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	// 需要 Token 认证的业务接口。
	authed := r.Group("")
	authed.Use(auth.Middleware(db), auth.RequireMember())

	authed.GET("/me", h.Me)
	authed.POST("/logout", h.Logout)
	authed.GET("/chat/messages", h.ListMessages)
	authed.POST("/chat/messages", h.PostMessage)
	authed.GET("/profile", h.GetProfile)
	authed.PUT("/profile", h.UpdateProfile)
	authed.PATCH("/profile", h.UpdateProfile)

	return r
}
