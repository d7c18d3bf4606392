// Package apperror 定义业务错误分类，供服务层返回、API层映射为HTTP状态码。
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/retailorbit/smart-inventory/internal/resp"
)

// Kind 错误类别
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidArgument
	KindInvalidOperation
	KindConflict
	KindUnauthorized
)

// Error 带类别的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error // 底层错误，不对外暴露
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound 目标资源不存在
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument 调用方参数非法
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// InvalidOperation 业务规则禁止的操作
func InvalidOperation(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// Conflict 与现有数据冲突（如邮箱重复）
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized 认证失败
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Internal 包装底层存储等意外错误
func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind 判断错误是否属于指定类别。
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// HTTPStatus 错误类别对应的HTTP状态码。
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindInvalidOperation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespCode 错误类别对应的业务码。
func (k Kind) RespCode() int {
	switch k {
	case KindNotFound:
		return resp.CodeNotFound
	case KindInvalidArgument:
		return resp.CodeInvalidParam
	case KindInvalidOperation:
		return resp.CodeInvalidOp
	case KindConflict:
		return resp.CodeConflict
	case KindUnauthorized:
		return resp.CodeUnauthorized
	default:
		return resp.CodeInternalError
	}
}
