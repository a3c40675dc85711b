package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"haldoor-backend/internal/models"
)

// openTestDB points the global connection at a fresh temp-file database
// with all migrations applied.
func openTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Open(Config{Path: filepath.Join(t.TempDir(), "test.db")}))
	t.Cleanup(func() { Close() })
}

func createTestUser(t *testing.T, repo *UserRepo, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleUser,
	}
	require.NoError(t, repo.Create(user))
	return user
}
