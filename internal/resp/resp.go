// Package resp 提供统一的HTTP JSON响应封装。
package resp

import (
	"encoding/json"
	"net/http"
)

// 业务码定义，0表示成功，非0表示各类错误。
const (
	CodeOK            = 0
	CodeInvalidParam  = 40001
	CodeUnauthorized  = 40101
	CodeNotFound      = 40401
	CodeConflict      = 40901
	CodeInvalidOp     = 42201
	CodeTooManyReqs   = 42901
	CodeInternalError = 50001
	CodeTimeout       = 50401
)

// Response 统一响应结构
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// HTTPStatusFromCode 将业务码映射为HTTP状态码。
func HTTPStatusFromCode(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidOp:
		return http.StatusUnprocessableEntity
	case CodeTooManyReqs:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON 写出任意响应体。
func WriteJSON(w http.ResponseWriter, status int, body *Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK 写出成功响应。
func OK(w http.ResponseWriter, data any, requestID, traceID string) {
	WriteJSON(w, http.StatusOK, &Response{
		Code:      CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// Error 写出错误响应。
func Error(w http.ResponseWriter, status, code int, message, requestID, traceID string) {
	WriteJSON(w, status, &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		TraceID:   traceID,
	})
}
