package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

const testSecret = "test-secret-key-for-unit-tests"

func newTestManager() *Manager {
	return NewManager(testSecret, 2*time.Hour, 7*24*time.Hour)
}

func TestManager_GenerateAndParse(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateToken(42, "alice@example.com", "Alice", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(7200), pair.ExpiresIn)

	t.Run("Access Token携带完整身份信息", func(t *testing.T) {
		claims, err := m.ParseToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, "Alice", claims.Nickname)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "bookcatalog", claims.Issuer)
	})

	t.Run("Refresh Token只携带UserID和Role", func(t *testing.T) {
		claims, err := m.ParseToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "admin", claims.Role)
		assert.Empty(t, claims.Email)
		assert.Empty(t, claims.Nickname)
	})
}

func TestManager_ParseToken_Invalid(t *testing.T) {
	m := newTestManager()

	t.Run("过期Token", func(t *testing.T) {
		expired := NewManager(testSecret, -time.Minute, 7*24*time.Hour)
		pair, err := expired.GenerateToken(1, "a@b.com", "A", "user")
		require.NoError(t, err)

		_, err = m.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("密钥不匹配", func(t *testing.T) {
		other := NewManager("another-secret", 2*time.Hour, 7*24*time.Hour)
		pair, err := other.GenerateToken(1, "a@b.com", "A", "user")
		require.NoError(t, err)

		_, err = m.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("畸形Token", func(t *testing.T) {
		_, err := m.ParseToken("not.a.token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestManager_RefreshAccessToken(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateToken(7, "bob@example.com", "Bob", "user")
	require.NoError(t, err)

	newToken, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ParseToken(newToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "user", claims.Role)

	t.Run("过期的Refresh Token被拒绝", func(t *testing.T) {
		expired := NewManager(testSecret, 2*time.Hour, -time.Minute)
		p, err := expired.GenerateToken(7, "bob@example.com", "Bob", "user")
		require.NoError(t, err)

		_, err = m.RefreshAccessToken(p.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})
}
