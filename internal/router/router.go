package router

import (
	"fmt"
	"strings"

	"github.com/palletprint/internal/cache"
	"github.com/palletprint/internal/config"
	"github.com/palletprint/internal/constants"
	"github.com/palletprint/internal/http/handlers"
	"github.com/palletprint/internal/logger"
	"github.com/palletprint/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := handlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/auth/login",
			RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("username")),
			handler.Login,
		)

		// 需鉴权的操作台接口
		authorized := apiV1.Group("")
		authorized.Use(JWTAuthMiddleware(c.AuthService))
		{
			authorized.GET("/printers", handler.ListPrinters)
			authorized.POST("/printers/:id/test", handler.TestPrinter)

			authorized.GET("/shipments/:id/plan", handler.GetShipmentPlan)

			authorized.POST("/jobs", handler.CreateJob)
			authorized.GET("/jobs", handler.ListIncompleteJobs)
			authorized.GET("/jobs/:id", handler.GetJob)
			authorized.POST("/jobs/:id/resume", handler.ResumeJob)

			authorized.POST("/labels/barcode", handler.BuildBarcode)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
