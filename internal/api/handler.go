// Package api 提供HTTP API处理器实现。
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/middleware"
	"github.com/retailorbit/smart-inventory/internal/resp"
)

// decodeJSON 解析请求体,失败时写入 400 响应并返回 false。
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst any) bool {
	reqID := middleware.RequestIDFromContext(r.Context())
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return false
	}
	return true
}

// pathID 从URL路径中取指定段名后面的数值ID。
// 例如 pathID("/api/v1/products/42/stock-history", "products") == 42。
func pathID(path, segment string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if p == segment && i+1 < len(parts) {
			id, err := strconv.ParseInt(parts[i+1], 10, 64)
			if err != nil || id <= 0 {
				return 0, false
			}
			return id, true
		}
	}
	return 0, false
}

// requireID 提取路径 ID,失败时写入 400 响应。
func requireID(w http.ResponseWriter, r *http.Request, segment string) (int64, bool) {
	id, ok := pathID(r.URL.Path, segment)
	if !ok {
		reqID := middleware.RequestIDFromContext(r.Context())
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid "+strings.TrimSuffix(segment, "s")+" ID", reqID, "")
		return 0, false
	}
	return id, true
}

// queryInt 读取整型查询参数,缺省或非法时返回默认值。
func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// writeError 按错误类别写入统一错误响应,未分类错误按500处理。
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var ae *apperror.Error
	if errors.As(err, &ae) {
		if ae.Kind == apperror.KindInternal {
			logger.Error("request failed", zap.String("request_id", reqID), zap.Error(err))
		} else {
			logger.Warn("request rejected", zap.String("request_id", reqID), zap.Error(err))
		}
		resp.Error(w, ae.Kind.HTTPStatus(), ae.Kind.RespCode(), ae.Message, reqID, "")
		return
	}

	logger.Error("request failed", zap.String("request_id", reqID), zap.Error(err))
	resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "internal server error", reqID, "")
}

// writeUnauthorized 写入401错误响应。
func writeUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	reqID := middleware.RequestIDFromContext(r.Context())
	resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, message, reqID, "")
}

// writeOK 写入统一成功响应。
func writeOK(w http.ResponseWriter, r *http.Request, data any) {
	reqID := middleware.RequestIDFromContext(r.Context())
	resp.OK(w, data, reqID, "")
}
