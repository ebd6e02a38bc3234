package user

import (
	"context"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// Service 用户领域服务接口
type Service interface {
	// Register 注册新用户,角色非法或为空时默认为普通用户
	Register(ctx context.Context, email, password, nickname string, role Role) (*User, error)

	// Authenticate 校验邮箱与密码,成功返回用户实体
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

type service struct {
	repo Repository
}

// NewService 创建用户领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, password, nickname string, role Role) (*User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(err, "检查邮箱失败")
	}
	if exists {
		return nil, apperrors.ErrEmailDuplicate
	}

	// cost=12:比默认值10慢4倍,暴力破解成本更高
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(email, string(hashed), nickname, role)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// 统一返回"密码错误",避免暴露账号是否存在
		return nil, apperrors.ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidPassword
	}
	return u, nil
}

// validatePassword 密码强度校验:至少8位,包含字母和数字
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsLetter(c):
			hasLetter = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.ErrWeakPassword
	}
	return nil
}
