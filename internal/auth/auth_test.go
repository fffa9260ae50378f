package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"insadmin/internal/model"
)

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	admin := &model.Admin{ID: "admin-1", Email: "root@example.com", Role: model.RoleSuperAdmin}

	signed, err := tokens.Issue(admin)
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)

	claims, err := tokens.Verify(signed)
	assert.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "root@example.com", claims.Email)
	assert.Equal(t, model.RoleSuperAdmin, claims.Role)
}

func TestTokens_Verify(t *testing.T) {
	t.Run("rejects garbage", func(t *testing.T) {
		tokens := NewTokens("test-secret", time.Hour)

		claims, err := tokens.Verify("not-a-token")

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		issuer := NewTokens("secret-a", time.Hour)
		verifier := NewTokens("secret-b", time.Hour)

		signed, err := issuer.Issue(&model.Admin{ID: "admin-1", Role: model.RoleAdmin})
		assert.NoError(t, err)

		claims, err := verifier.Verify(signed)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		tokens := NewTokens("test-secret", time.Hour)
		issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		tokens.now = func() time.Time { return issued }

		signed, err := tokens.Issue(&model.Admin{ID: "admin-1", Role: model.RoleAdmin})
		assert.NoError(t, err)

		tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }

		claims, err := tokens.Verify(signed)

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
