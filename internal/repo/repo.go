// Package repo 实现数据访问层的公共辅助。
package repo

import (
	"errors"
	"strings"
)

// 仓储层哨兵错误，由服务层映射为业务错误。
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEntryNotFound     = errors.New("stock entry not found")
	ErrEntryProtected    = errors.New("stock entry is protected")
)

// placeholders 生成 n 个逗号分隔的 "?" 占位符。
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
