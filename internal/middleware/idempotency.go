// Package middleware 提供幂等性中间件
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/cache"
	"github.com/retailorbit/smart-inventory/internal/resp"
)

// IdempotencyKeyHeader 幂等键请求头。
const IdempotencyKeyHeader = "X-Idempotency-Key"

// Idempotency 写接口幂等性中间件。
// 携带 X-Idempotency-Key 的请求在 TTL 窗口内只允许提交一次,
// 重复提交返回 409。未带幂等键的请求不做去重。
func Idempotency(c cache.Cache, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(gc *gin.Context) {
		key := gc.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			gc.Next()
			return
		}

		reqID := RequestIDFromContext(gc.Request.Context())
		cacheKey := "idempotency:" + gc.Request.Method + ":" + gc.FullPath() + ":" + key

		ok, err := c.SetNX(gc.Request.Context(), cacheKey, 1, ttl)
		if err != nil {
			// 缓存不可用时放行,幂等性降级而非拒绝服务
			logger.Warn("idempotency check unavailable", zap.String("request_id", reqID), zap.Error(err))
			gc.Next()
			return
		}
		if !ok {
			logger.Info("duplicate request rejected",
				zap.String("request_id", reqID),
				zap.String("idempotency_key", key),
			)
			resp.Error(gc.Writer, http.StatusConflict, resp.CodeConflict, "duplicate request", reqID, "")
			gc.Abort()
			return
		}
		gc.Next()
	}
}
