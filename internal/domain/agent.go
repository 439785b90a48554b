package domain

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

type Agent struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Role         Role    `json:"role"`
	Avatar       *string `json:"avatar"`
}

// Caller 表示当前操作的发起者，由 HTTP 层从登录态中解析后显式传入，
// 不允许业务层自己去读全局的会话状态
type Caller struct {
	ID   int64
	Role Role
}
