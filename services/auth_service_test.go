package services

import (
	"testing"

	"lumen-notes/lumen/models"
	"lumen-notes/lumen/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePasswords(t *testing.T) {
	service := NewAuthService("test-secret", 1)

	hash, err := service.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.NoError(t, service.ComparePasswords(hash, "hunter2hunter2"))
	assert.Error(t, service.ComparePasswords(hash, "wrong-password"))
}

func TestLogin(t *testing.T) {
	db := testutils.SetupTestDB(t)
	service := NewAuthService("test-secret", 1)

	hash, err := service.HashPassword("correct-horse")
	require.NoError(t, err)

	user := models.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: hash,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	t.Run("Valid Credentials", func(t *testing.T) {
		tokenString, err := service.Login(db, "alice@example.com", "correct-horse")
		require.NoError(t, err)

		claims, err := service.ValidateToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		_, err := service.Login(db, "alice@example.com", "incorrect")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown Email", func(t *testing.T) {
		_, err := service.Login(db, "nobody@example.com", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-one", 1)
	verifier := NewAuthService("secret-two", 1)

	db := testutils.SetupTestDB(t)
	hash, err := issuer.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&models.User{
		ID:           uuid.New(),
		Email:        "bob@example.com",
		PasswordHash: hash,
	}).Error)

	tokenString, err := issuer.Login(db, "bob@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(tokenString)
	assert.Error(t, err)
}
