package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/api/handler"
	"github.com/YuWang03/kunyu-project-sub003/internal/api/middleware"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
	"github.com/YuWang03/kunyu-project-sub003/pkg/jwt"
	"github.com/YuWang03/kunyu-project-sub003/pkg/redis"
	"github.com/YuWang03/kunyu-project-sub003/pkg/response"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：黑名单与登录限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, verifier *jwt.Verifier, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("请求处理发生 panic",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		response.InternalError(c)
		c.Abort()
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(cfg.Server.CookieSecure))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	loginLimit := cfg.Server.LoginLimit
	if loginLimit <= 0 {
		loginLimit = 10
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, loginLimit, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(verifier, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 考勤模块（查看他人需主管角色，Handler 层鉴权）
			attendance := authorized.Group("/attendance")
			{
				attendance.GET("", h.Attendance.List)
				attendance.GET("/follow-ups", h.Attendance.FollowUps)
				attendance.GET("/summary", h.Attendance.Summary)
				attendance.GET("/export", h.Attendance.Export)
				attendance.GET("/codes", h.Attendance.Codes)
			}

			// 加班模块
			overtime := authorized.Group("/overtime")
			{
				overtime.POST("", h.Overtime.Submit)
				overtime.GET("", h.Overtime.List)
				overtime.GET("/:id", h.Overtime.Get)
				overtime.POST("/:id/approval", middleware.RoleAuth(service.RoleManager), h.Overtime.Approve)
				overtime.POST("/:id/sync", h.Overtime.Sync)
			}

			// 外出模块
			outings := authorized.Group("/outings")
			{
				outings.POST("", h.Outing.Submit)
				outings.GET("", h.Outing.List)
				outings.GET("/:id", h.Outing.Get)
				outings.POST("/:id/approval", middleware.RoleAuth(service.RoleManager), h.Outing.Approve)
				outings.POST("/:id/sync", h.Outing.Sync)
			}
		}
	}

	return r
}
