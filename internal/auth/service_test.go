package auth

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupAuthTest(t *testing.T) (*Service, func()) {
	t.Helper()

	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cfg := config.Auth{Mode: config.AuthModeLocal, BcryptCost: 4}
	service := NewService(db.DB, cfg)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return service, cleanup
}

func TestService_CreateUser(t *testing.T) {
	t.Run("creates a user with hashed password", func(t *testing.T) {
		service, cleanup := setupAuthTest(t)
		defer cleanup()

		user, err := service.CreateUser("librarian1", "Head Librarian", "lib@example.org", "longenoughpassword", entities.UserRoleLibrarian)
		require.NoError(t, err)
		assert.Equal(t, entities.UserRoleLibrarian, user.Role)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "longenoughpassword", user.PasswordHash)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		service, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := service.CreateUser("librarian1", "A", "a@example.org", "longenoughpassword", entities.UserRoleMember)
		require.NoError(t, err)

		_, err = service.CreateUser("librarian1", "B", "b@example.org", "longenoughpassword", entities.UserRoleMember)
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		service, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := service.CreateUser("usera", "A", "same@example.org", "longenoughpassword", entities.UserRoleMember)
		require.NoError(t, err)

		_, err = service.CreateUser("userb", "B", "same@example.org", "longenoughpassword", entities.UserRoleMember)
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("validates input", func(t *testing.T) {
		service, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := service.CreateUser("", "A", "a@example.org", "longenoughpassword", entities.UserRoleMember)
		assert.ErrorIs(t, err, ErrUsernameRequired)

		_, err = service.CreateUser("x", "A", "a@example.org", "longenoughpassword", entities.UserRoleMember)
		assert.ErrorIs(t, err, ErrUsernameInvalid)

		_, err = service.CreateUser("valid_user", "A", "not-an-email", "longenoughpassword", entities.UserRoleMember)
		assert.ErrorIs(t, err, ErrEmailInvalid)

		_, err = service.CreateUser("valid_user", "A", "a@example.org", "short", entities.UserRoleMember)
		assert.ErrorIs(t, err, ErrPasswordTooShort)

		_, err = service.CreateUser("valid_user", "A", "a@example.org", "longenoughpassword", entities.UserRole("janitor"))
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestService_Authenticate(t *testing.T) {
	service, cleanup := setupAuthTest(t)
	defer cleanup()

	_, err := service.CreateUser("librarian1", "Head Librarian", "lib@example.org", "longenoughpassword", entities.UserRoleLibrarian)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := service.Authenticate("librarian1", "longenoughpassword")
		require.NoError(t, err)
		assert.Equal(t, "librarian1", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Authenticate("librarian1", "not-the-password")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("unknown user looks like a wrong password", func(t *testing.T) {
		_, err := service.Authenticate("ghost", "longenoughpassword")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})
}
