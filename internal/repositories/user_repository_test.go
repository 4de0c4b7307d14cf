package repositories_test

import (
	"context"
	"testing"

	"lelang/internal/apperrors"
	"lelang/internal/models"
	"lelang/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repos := map[string]func() repositories.UserRepository{
		"memory": func() repositories.UserRepository { return repositories.NewMockUserRepository() },
		"gorm":   func() repositories.UserRepository { return repositories.NewGORMUserRepository(openTestDB(t)) },
	}

	for name, newRepo := range repos {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()

			user := &models.User{Email: "alice@example.com", Password: "hash"}
			require.NoError(t, repo.Create(ctx, user))
			require.NotEmpty(t, user.ID)

			err := repo.Create(ctx, &models.User{Email: "alice@example.com", Password: "other"})
			assert.ErrorIs(t, err, apperrors.ErrEmailTaken)

			byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)

			byID, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", byID.Email)

			_, err = repo.GetByEmail(ctx, "bob@example.com")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
			_, err = repo.GetByID(ctx, "nope")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	}
}
