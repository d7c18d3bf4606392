// Package domain 定义访问主体模型。
package domain

// Role 访问角色
type Role string

const (
	RoleAdmin Role = "admin"
)

// Principal 表示一次已认证请求的访问主体。
// 账号体系由外部系统负责，这里只承载令牌携带的身份信息。
type Principal struct {
	Subject string `json:"subject"`
	Role    Role   `json:"role"`
}

// IsAdmin 判断是否具有后台管理权限。
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
