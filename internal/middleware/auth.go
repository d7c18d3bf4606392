// Package middleware 提供JWT认证和授权中间件。
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/resp"
	"github.com/retailorbit/smart-inventory/internal/service"
)

// 上下文键定义
const (
	contextKeyPrincipal contextKey = "principal"
)

// Auth JWT认证中间件
// 验证请求头中的JWT令牌，并将访问主体注入到请求上下文中
func Auth(jwtService service.JWTService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := RequestIDFromContext(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("missing authorization header", zap.String("request_id", reqID))
				resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authorization header required", reqID, "")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				logger.Warn("invalid authorization header format", zap.String("request_id", reqID))
				resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "invalid authorization header format", reqID, "")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
			if tokenString == "" {
				resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "token required", reqID, "")
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				logger.Warn("token validation failed",
					zap.String("request_id", reqID),
					zap.Error(err),
				)
				switch {
				case errors.Is(err, service.ErrTokenExpired):
					resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "token expired", reqID, "")
				case errors.Is(err, service.ErrTokenNotReady):
					resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "token not ready", reqID, "")
				default:
					resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "invalid token", reqID, "")
				}
				return
			}

			principal := &domain.Principal{
				Subject: claims.Subject,
				Role:    claims.Role,
			}
			ctx := context.WithValue(r.Context(), contextKeyPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin 管理员权限中间件,置于Auth之后。
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := RequestIDFromContext(r.Context())
			principal := PrincipalFromContext(r.Context())

			if principal == nil {
				logger.Error("principal not found in context", zap.String("request_id", reqID))
				resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
				return
			}
			if !principal.IsAdmin() {
				logger.Warn("insufficient permissions",
					zap.String("request_id", reqID),
					zap.String("subject", principal.Subject),
					zap.String("role", string(principal.Role)),
				)
				resp.Error(w, http.StatusForbidden, resp.CodeUnauthorized, "insufficient permissions", reqID, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext 从请求上下文中获取访问主体。
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	if p, ok := ctx.Value(contextKeyPrincipal).(*domain.Principal); ok {
		return p
	}
	return nil
}
