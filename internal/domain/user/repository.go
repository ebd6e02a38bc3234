package user

import "context"

// Repository 用户仓储接口（由infrastructure层实现）
type Repository interface {
	// Create 创建用户
	Create(ctx context.Context, u *User) error

	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户（登录时使用）
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail 检查邮箱是否已注册
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
