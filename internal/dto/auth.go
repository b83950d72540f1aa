package dto

import (
	"encoding/json"

	"github.com/YuWang03/kunyu-project-sub003/internal/model"
)

// ── 认证模块 DTO ──

// LoginRequest 登录请求（账号密码转交身份提供者）
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=128"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse 登录 / 刷新响应
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int      `json:"expires_in"` // Access Token 有效期（秒）
	TokenType    string   `json:"token_type"`
	User         UserInfo `json:"user"`
}

// UserInfo 身份提供者 + 人事资料合并后的使用者信息。
// is_active 只由 Status 推导，不可单独设置。
type UserInfo struct {
	UID        string               `json:"uid"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	Department string               `json:"department"`
	Title      string               `json:"title"`
	Roles      []string             `json:"roles"`
	Status     model.EmployeeStatus `json:"status"`
}

// NewUserInfo 由员工资料与角色构造 UserInfo
func NewUserInfo(emp *model.Employee, roles []string) UserInfo {
	if roles == nil {
		roles = []string{}
	}
	return UserInfo{
		UID:        emp.UID,
		Name:       emp.Name,
		Email:      emp.Email,
		Department: emp.Department,
		Title:      emp.Title,
		Roles:      roles,
		Status:     emp.Status,
	}
}

// IsActive 等价于 Status == "W"
func (u UserInfo) IsActive() bool { return u.Status.IsActive() }

// MarshalJSON 输出时附带推导出的 is_active
func (u UserInfo) MarshalJSON() ([]byte, error) {
	type plain UserInfo
	return json.Marshal(struct {
		plain
		IsActive bool `json:"is_active"`
	}{plain: plain(u), IsActive: u.IsActive()})
}
