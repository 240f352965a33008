package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"flexora_backend/internal/feature/auth/domain/entity"
	"flexora_backend/internal/feature/auth/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
// TranslateError makes the sqlite driver report unique-key violations as
// gorm.ErrDuplicatedKey, matching what the MySQL path detects via error 1062.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.User{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func newTestUser(email string) *entity.User {
	return &entity.User{
		Name:     "Test User",
		Email:    email,
		Password: "hashed_password",
	}
}

func TestNewUserMySQL(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserMySQL(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserMySQL_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		user := newTestUser("test@example.com")
		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.False(t, user.UpdatedAt.IsZero(), "UpdatedAt is not set")
	})

	t.Run("email is normalized on write", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		user := newTestUser("MiXeD@Example.COM")
		err := repo.Create(context.Background(), user)

		require.NoError(t, err)
		assert.Equal(t, "mixed@example.com", user.Email)
	})

	t.Run("duplicate email error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		err := repo.Create(context.Background(), newTestUser("duplicate@example.com"))
		require.NoError(t, err, "failed to create first user")

		// Same normalized email, different case
		err = repo.Create(context.Background(), newTestUser("Duplicate@Example.com"))

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})
}

func TestUserMySQL_FindByEmail(t *testing.T) {
	t.Run("find user by email successfully", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		expected := newTestUser("find@example.com")
		err := repo.Create(context.Background(), expected)
		require.NoError(t, err, "failed to create test data")

		found, err := repo.FindByEmail(context.Background(), "find@example.com")

		require.NoError(t, err)
		assert.Equal(t, expected.ID, found.ID)
		// The login path needs the stored hash
		assert.Equal(t, "hashed_password", found.Password)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		expected := newTestUser("case@example.com")
		require.NoError(t, repo.Create(context.Background(), expected))

		found, err := repo.FindByEmail(context.Background(), "CASE@Example.COM")

		require.NoError(t, err)
		assert.Equal(t, expected.ID, found.ID)
	})

	t.Run("user not found", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		_, err := repo.FindByEmail(context.Background(), "missing@example.com")

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserMySQL_FindByID(t *testing.T) {
	t.Run("find user by id successfully", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		expected := newTestUser("id@example.com")
		require.NoError(t, repo.Create(context.Background(), expected))

		found, err := repo.FindByID(context.Background(), expected.ID)

		require.NoError(t, err)
		assert.Equal(t, expected.Email, found.Email)
	})

	t.Run("user not found", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		_, err := repo.FindByID(context.Background(), 12345)

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserMySQL_Update(t *testing.T) {
	t.Run("updates only the provided fields", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		user := newTestUser("update@example.com")
		require.NoError(t, repo.Create(context.Background(), user))

		updated, err := repo.Update(context.Background(), user.ID, map[string]any{"name": "Annie"})

		require.NoError(t, err)
		assert.Equal(t, "Annie", updated.Name)
		assert.Equal(t, "update@example.com", updated.Email, "email must be untouched")
		assert.Equal(t, "hashed_password", updated.Password, "password must be untouched")
	})

	t.Run("updates the avatar reference", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		user := newTestUser("avatar@example.com")
		require.NoError(t, repo.Create(context.Background(), user))

		updated, err := repo.Update(context.Background(), user.ID, map[string]any{"avatar_url": "/uploads/avatars/avatar-1-1.png"})

		require.NoError(t, err)
		assert.Equal(t, "/uploads/avatars/avatar-1-1.png", updated.AvatarURL)
	})

	t.Run("user not found", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserMySQL(db)

		_, err := repo.Update(context.Background(), 999, map[string]any{"name": "Nobody"})

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}
