// Package limiter 限流中间件实现
package limiter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailorbit/smart-inventory/internal/resp"
)

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	// 限流器
	Limiter Limiter

	// Key生成函数
	KeyGenerator func(*gin.Context) string

	// 错误处理函数
	ErrorHandler func(*gin.Context, error)

	// 限流回调函数
	OnLimitReached func(*gin.Context, *LimitResult)

	// 是否跳过限流检查
	Skip func(*gin.Context) bool

	// 响应头配置
	Headers *HeaderConfig
}

// HeaderConfig 响应头配置
type HeaderConfig struct {
	Enable           bool
	LimitHeader      string // X-RateLimit-Limit
	RemainingHeader  string // X-RateLimit-Remaining
	RetryAfterHeader string // Retry-After
}

// DefaultHeaderConfig 默认头配置
func DefaultHeaderConfig() *HeaderConfig {
	return &HeaderConfig{
		Enable:           true,
		LimitHeader:      "X-RateLimit-Limit",
		RemainingHeader:  "X-RateLimit-Remaining",
		RetryAfterHeader: "Retry-After",
	}
}

// DefaultKeyGenerator 默认Key生成器（基于IP）
func DefaultKeyGenerator(c *gin.Context) string {
	return fmt.Sprintf("global:%s", c.ClientIP())
}

// PathKeyGenerator 路径Key生成器
func PathKeyGenerator(c *gin.Context) string {
	return fmt.Sprintf("path:%s:%s", c.Request.Method, c.FullPath())
}

// RateLimitMiddleware 创建限流中间件
func RateLimitMiddleware(config *MiddlewareConfig) gin.HandlerFunc {
	if config.KeyGenerator == nil {
		config.KeyGenerator = DefaultKeyGenerator
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = defaultErrorHandler
	}
	if config.OnLimitReached == nil {
		config.OnLimitReached = defaultOnLimitReached
	}
	if config.Headers == nil {
		config.Headers = DefaultHeaderConfig()
	}

	return func(c *gin.Context) {
		if config.Skip != nil && config.Skip(c) {
			c.Next()
			return
		}

		key := config.KeyGenerator(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := config.Limiter.Allow(ctx, key)
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}

		if config.Headers.Enable {
			setRateLimitHeaders(c, result, config.Headers)
		}

		if !result.Allowed {
			config.OnLimitReached(c, result)
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders 设置限流相关的响应头
func setRateLimitHeaders(c *gin.Context, result *LimitResult, headers *HeaderConfig) {
	if headers.RemainingHeader != "" {
		c.Header(headers.RemainingHeader, strconv.FormatInt(result.Remaining, 10))
	}
	if headers.RetryAfterHeader != "" && result.RetryAfter > 0 {
		c.Header(headers.RetryAfterHeader, strconv.FormatInt(int64(result.RetryAfter.Seconds()), 10))
	}
}

// defaultErrorHandler 默认错误处理器
func defaultErrorHandler(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	traceID := c.GetString("trace_id")
	resp.Error(c.Writer, http.StatusInternalServerError, resp.CodeInternalError, "rate limiter unavailable", requestID, traceID)
	c.Abort()
}

// defaultOnLimitReached 默认限流回调
func defaultOnLimitReached(c *gin.Context, result *LimitResult) {
	requestID := c.GetString("request_id")
	traceID := c.GetString("trace_id")
	resp.Error(c.Writer, http.StatusTooManyRequests, resp.CodeTooManyReqs,
		"too many requests, please retry later", requestID, traceID)
	c.Abort()
}

// SaleRateLimitMiddleware 下单接口专用限流中间件
func SaleRateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	config := &MiddlewareConfig{
		Limiter: limiter,
		KeyGenerator: func(c *gin.Context) string {
			return fmt.Sprintf("sale:ip:%s", c.ClientIP())
		},
		OnLimitReached: func(c *gin.Context, result *LimitResult) {
			requestID := c.GetString("request_id")
			traceID := c.GetString("trace_id")
			resp.Error(c.Writer, http.StatusTooManyRequests, resp.CodeTooManyReqs,
				"too many sale requests, please retry later", requestID, traceID)
			c.Abort()
		},
		Headers: DefaultHeaderConfig(),
	}
	return RateLimitMiddleware(config)
}

// GlobalRateLimitMiddleware 全局限流中间件
func GlobalRateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	config := &MiddlewareConfig{
		Limiter:      limiter,
		KeyGenerator: DefaultKeyGenerator,
		Headers:      DefaultHeaderConfig(),
	}
	return RateLimitMiddleware(config)
}
