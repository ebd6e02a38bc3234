package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*User // email → user
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[string]*User)}
}

func (r *memUserRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	copied := *u
	r.users[u.Email] = &copied
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uint) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("正常注册", func(t *testing.T) {
		svc := NewService(newMemUserRepo())

		u, err := svc.Register(ctx, "alice@example.com", "pass1234", "爱丽丝", RoleUser)
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.Equal(t, RoleUser, u.Role)
		assert.NotEqual(t, "pass1234", u.Password, "密码必须加密存储")

		err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pass1234"))
		assert.NoError(t, err, "存储的是bcrypt哈希")
	})

	t.Run("邮箱重复被拒绝", func(t *testing.T) {
		svc := NewService(newMemUserRepo())

		_, err := svc.Register(ctx, "alice@example.com", "pass1234", "甲", RoleUser)
		require.NoError(t, err)

		_, err = svc.Register(ctx, "alice@example.com", "pass5678", "乙", RoleUser)
		assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
	})

	t.Run("弱密码被拒绝", func(t *testing.T) {
		svc := NewService(newMemUserRepo())

		cases := []string{
			"short1",   // 不足8位
			"onlyletters", // 没有数字
			"12345678", // 没有字母
		}
		for _, pwd := range cases {
			_, err := svc.Register(ctx, "bob@example.com", pwd, "鲍勃", RoleUser)
			assert.ErrorIs(t, err, apperrors.ErrWeakPassword, "密码: %q", pwd)
		}
	})

	t.Run("非法角色回落为普通用户", func(t *testing.T) {
		svc := NewService(newMemUserRepo())

		u, err := svc.Register(ctx, "carol@example.com", "pass1234", "卡罗尔", Role("superuser"))
		require.NoError(t, err)
		assert.Equal(t, RoleUser, u.Role)
	})

	t.Run("管理员角色", func(t *testing.T) {
		svc := NewService(newMemUserRepo())

		u, err := svc.Register(ctx, "admin@example.com", "pass1234", "管理员", RoleAdmin)
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemUserRepo())

	_, err := svc.Register(ctx, "alice@example.com", "pass1234", "爱丽丝", RoleUser)
	require.NoError(t, err)

	t.Run("正确凭证", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "alice@example.com", "pass1234")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice@example.com", "wrong999")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("账号不存在时返回相同错误", func(t *testing.T) {
		// 不暴露账号是否存在
		_, err := svc.Authenticate(ctx, "nobody@example.com", "pass1234")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})
}
