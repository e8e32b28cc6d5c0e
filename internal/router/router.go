package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/watchledger/backend/config"
	"github.com/watchledger/backend/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// RouteRegistrar 在 /api 分组下注册路由的处理器
type RouteRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// Setup 创建 gin 引擎，注册中间件、/healthz、/metrics 和各处理器的 /api 路由
func Setup(cfg *config.Config, m *metrics.Metrics, registrars ...RouteRegistrar) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// 预检请求由 cors 直接返回 204
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "apikey", "x-client-info", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
	}))
	r.Use(requestID())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := r.Group("/api")
	for _, reg := range registrars {
		reg.RegisterRoutes(api)
	}

	return r
}

// requestID 透传或生成请求 ID
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
