// Package api 提供认证相关的HTTP API处理器实现。
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/service"
)

// AuthHandler 认证相关的HTTP处理器。
// 账号体系由外部系统负责,后台管理通过API密钥换取JWT令牌对。
type AuthHandler struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(jwtService service.JWTService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		logger:     logger,
	}
}

// exchangeTokenRequest API密钥换发令牌请求体
type exchangeTokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// refreshTokenRequest 刷新令牌请求体
type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ExchangeToken 用管理密钥换取令牌对
// POST /api/v1/auth/token
func (h *AuthHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req exchangeTokenRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	pair, err := h.jwtService.ExchangeAPIKey(req.APIKey)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, r, pair)
}

// RefreshToken 用刷新令牌换取新的令牌对
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	pair, err := h.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		h.logger.Warn("refresh token rejected", zap.Error(err))
		writeUnauthorized(w, r, "invalid refresh token")
		return
	}
	writeOK(w, r, pair)
}
