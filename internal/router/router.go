// Package router 提供 HTTP 路由设置和中间件配置功能
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/api"
	"github.com/retailorbit/smart-inventory/internal/cache"
	"github.com/retailorbit/smart-inventory/internal/config"
	"github.com/retailorbit/smart-inventory/internal/limiter"
	"github.com/retailorbit/smart-inventory/internal/middleware"
	"github.com/retailorbit/smart-inventory/internal/service"
)

// Dependencies 包含路由设置所需的所有依赖
type Dependencies struct {
	AuthHandler     *api.AuthHandler
	ProductHandler  *api.ProductHandler
	StockHandler    *api.StockHandler
	SaleHandler     *api.SaleHandler
	FeedbackHandler *api.FeedbackHandler
	CustomerHandler *api.CustomerHandler
	ReportHandler   *api.ReportHandler
	JWTService      service.JWTService
	Cache           cache.Cache

	// 限流器为可选依赖,传 nil 时对应限流关闭
	SaleLimiter   limiter.Limiter
	GlobalLimiter limiter.Limiter
}

// Router 路由器接口
type Router interface {
	Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler
}

// GinRouter Gin路由器实现
type GinRouter struct {
	engine *gin.Engine
	cfg    *config.Config
	deps   *Dependencies
	logger *zap.Logger
}

// New 创建新的路由器实例
func New() Router {
	return &GinRouter{}
}

// Setup 设置路由和中间件
func (r *GinRouter) Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler {
	// 根据环境设置 Gin 模式
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r.engine = gin.New()
	r.cfg = cfg
	r.deps = deps
	r.logger = lg

	// 设置中间件
	r.setupMiddleware(cfg)

	// 设置路由
	r.setupRoutes(cfg)

	return r.engine
}

// setupMiddleware 设置全局中间件
// 请求进入时执行顺序为 request ID → recovery → timeout → CORS → access log
func (r *GinRouter) setupMiddleware(cfg *config.Config) {
	r.engine.Use(wrapMiddleware(middleware.RequestID))
	r.engine.Use(wrapMiddleware(middleware.Recovery(r.logger)))
	r.engine.Use(wrapMiddleware(middleware.Timeout(cfg.App.RequestTimeout)))
	r.engine.Use(r.corsMiddleware(cfg))
	r.engine.Use(wrapMiddleware(middleware.AccessLog(r.logger)))

	// 全局限流（按客户端IP）
	if r.deps.GlobalLimiter != nil {
		r.engine.Use(limiter.GlobalRateLimitMiddleware(r.deps.GlobalLimiter))
	}
}

// setupRoutes 设置所有路由
func (r *GinRouter) setupRoutes(cfg *config.Config) {
	// 健康检查
	r.engine.GET("/healthz", r.healthCheck)

	authRequired := wrapMiddleware(middleware.Auth(r.deps.JWTService, r.logger))
	adminRequired := wrapMiddleware(middleware.RequireAdmin(r.logger))

	// API v1 路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 认证路由（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/token", r.wrapHandler(r.deps.AuthHandler.ExchangeToken))
			auth.POST("/refresh", r.wrapHandler(r.deps.AuthHandler.RefreshToken))
		}

		// 商品路由（公开）
		products := v1.Group("/products")
		{
			products.GET("", r.wrapHandler(r.deps.ProductHandler.ListProducts))
			products.GET("/low-stock", r.wrapHandler(r.deps.ProductHandler.ListLowStock))
			products.GET("/:id", r.wrapHandler(r.deps.ProductHandler.GetProduct))
			products.GET("/:id/stock-history", r.wrapHandler(r.deps.StockHandler.StockHistory))
			products.GET("/:id/feedback", r.wrapHandler(r.deps.FeedbackHandler.GetProductFeedback))
		}

		// 销售路由（公开,POST受限流和幂等键保护）
		sales := v1.Group("/sales")
		{
			createSale := []gin.HandlerFunc{
				middleware.Idempotency(r.deps.Cache, cfg.Cache.IdempotencyTTL, r.logger),
			}
			if r.deps.SaleLimiter != nil {
				createSale = append([]gin.HandlerFunc{limiter.SaleRateLimitMiddleware(r.deps.SaleLimiter)}, createSale...)
			}
			createSale = append(createSale, r.wrapHandler(r.deps.SaleHandler.CreateSale))
			sales.POST("", createSale...)

			sales.GET("/:id", r.wrapHandler(r.deps.SaleHandler.GetSale))
			sales.GET("/:id/feedback", r.wrapHandler(r.deps.FeedbackHandler.GetSaleFeedback))
		}

		// 顾客反馈提交（公开）
		v1.POST("/feedback", r.wrapHandler(r.deps.FeedbackHandler.SubmitFeedback))

		// 报表路由（公开）
		reports := v1.Group("/reports")
		{
			reports.GET("/dashboard", r.wrapHandler(r.deps.ReportHandler.Dashboard))
			reports.GET("/monthly-revenue", r.wrapHandler(r.deps.ReportHandler.MonthlyRevenue))
			reports.GET("/inventory", r.wrapHandler(r.deps.ReportHandler.InventoryOverview))
		}

		// 管理员路由（需要认证+管理员权限）
		admin := v1.Group("/admin")
		admin.Use(authRequired, adminRequired)
		{
			// 商品管理
			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", r.wrapHandler(r.deps.ProductHandler.CreateProduct))
				adminProducts.PUT("/:id", r.wrapHandler(r.deps.ProductHandler.UpdateProduct))
				adminProducts.DELETE("/:id", r.wrapHandler(r.deps.ProductHandler.DeleteProduct))
				adminProducts.POST("/:id/stock", r.wrapHandler(r.deps.StockHandler.AddStock))
			}

			// 库存流水管理
			adminStock := admin.Group("/stock-history")
			{
				adminStock.PUT("/:id", r.wrapHandler(r.deps.StockHandler.EditStockEntry))
				adminStock.DELETE("/:id", r.wrapHandler(r.deps.StockHandler.DeleteStockEntry))
				adminStock.GET("/:id/audit", r.wrapHandler(r.deps.StockHandler.StockAudit))
			}

			// 客户管理
			adminCustomers := admin.Group("/customers")
			{
				adminCustomers.POST("", r.wrapHandler(r.deps.CustomerHandler.CreateCustomer))
				adminCustomers.GET("", r.wrapHandler(r.deps.CustomerHandler.ListCustomers))
				adminCustomers.GET("/search", r.wrapHandler(r.deps.CustomerHandler.SearchCustomers))
				adminCustomers.GET("/:id", r.wrapHandler(r.deps.CustomerHandler.GetCustomer))
				adminCustomers.PUT("/:id", r.wrapHandler(r.deps.CustomerHandler.UpdateCustomer))
				adminCustomers.DELETE("/:id", r.wrapHandler(r.deps.CustomerHandler.DeleteCustomer))
			}

			// 销售管理
			adminSales := admin.Group("/sales")
			{
				adminSales.GET("", r.wrapHandler(r.deps.SaleHandler.ListSales))
				adminSales.PUT("/:id", r.wrapHandler(r.deps.SaleHandler.UpdateSale))
				adminSales.POST("/:id/feedback-email", r.wrapHandler(r.deps.SaleHandler.TriggerFeedbackEmail))
			}
		}
	}
}

// healthCheck 健康检查处理器
func (r *GinRouter) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": r.cfg.App.Version,
	})
}

// wrapHandler 将标准的 http.HandlerFunc 包装为 gin.HandlerFunc
func (r *GinRouter) wrapHandler(handler func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return gin.WrapF(handler)
}

// wrapMiddleware 将标准库风格的中间件适配为 gin.HandlerFunc。
// 内层中间件若未调用 next（例如认证失败时直接写响应）,则中断后续处理链。
func wrapMiddleware(m func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		m(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			passed = true
			c.Request = req
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// corsMiddleware CORS 中间件
func (r *GinRouter) corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowOrigin := "*"
	if len(cfg.CORS.AllowedOrigins) > 0 {
		allowOrigin = cfg.CORS.AllowedOrigins[0]
	}
	allowMethods := joinHeaderValues(cfg.CORS.AllowedMethods, "GET, POST, PUT, DELETE, OPTIONS")
	allowHeaders := joinHeaderValues(cfg.CORS.AllowedHeaders, "Content-Type, Authorization")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", allowMethods)
		c.Header("Access-Control-Allow-Headers", allowHeaders)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// joinHeaderValues 拼接 CORS 头部取值,空列表返回默认值。
func joinHeaderValues(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}
