package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/portfolio-api/internal/models"
	"gorm.io/gorm"
)

func TestUserRepository_UniqueEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "h"}))

	err := repo.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// emails are compared exactly
	require.NoError(t, repo.Create(ctx, &models.User{Email: "A@x.com", PasswordHash: "h"}))
}

func TestUserRepository_UsernameUniqueOnlyWhenPresent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "one@x.com", PasswordHash: "h"}))
	require.NoError(t, repo.Create(ctx, &models.User{Email: "two@x.com", PasswordHash: "h"}))

	name := "jane"
	require.NoError(t, repo.Create(ctx, &models.User{Email: "three@x.com", Username: &name, PasswordHash: "h"}))

	again := "jane"
	err := repo.Create(ctx, &models.User{Email: "four@x.com", Username: &again, PasswordHash: "h"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	found, err := repo.FindByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, "three@x.com", found.Email)
}

func TestUserRepository_Defaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "d@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	stored, err := repo.FindByEmail(ctx, "d@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.IsVerified)
	assert.Equal(t, models.IdentifierList{}, stored.Portfolios)
}

func TestUserRepository_UpdateRoleKeepsUpdatedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "r@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))
	before, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateRole(ctx, user.ID, models.RoleAdmin))

	after, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, after.Role)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestUserRepository_UpdateRoleRejectsUnknownRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "r@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	assert.Error(t, repo.UpdateRole(ctx, user.ID, models.Role("root")))
}
