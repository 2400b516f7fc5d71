package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
)

func TestRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "anna@example.com",
		PasswordHash: "hash-1",
		FirstName:    "Anna",
		LastName:     "Petrova",
		Company:      "Svyaznoy",
		Position:     "buyer",
		Type:         enums.AccountTypeShop,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.True(t, created.IsActive)

	found, err := repo.FindByEmail(ctx, "  ANNA@example.com ")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))
	require.NoError(t, repo.UpdatePasswordHash(ctx, created.ID, "hash-2"))

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "hash-2", reloaded.PasswordHash)
	require.NotNil(t, reloaded.LastLoginAt)
	require.True(t, at.Equal(*reloaded.LastLoginAt))
}

func TestRepositoryMissingUser(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t).DB())

	_, err := repo.FindByID(ctx, 42)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = repo.UpdatePasswordHash(ctx, 42, "hash")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
