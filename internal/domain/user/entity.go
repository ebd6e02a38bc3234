package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleAdmin Role = "admin" // 管理员:目录维护、库存调整、补货报表
	RoleUser  Role = "user"  // 普通用户:浏览、搜索、预留/释放
)

// IsValid 是否为已知角色
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），不应该有GetPassword()等方法暴露明文
// 2. Role决定接口访问能力,角色校验在认证中间件完成,领域核心
//    只做能力前置检查,不感知HTTP
// 3. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码;角色非法时回落为普通用户
func NewUser(email, hashedPassword, nickname string, role Role) *User {
	if !role.IsValid() {
		role = RoleUser
	}
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
