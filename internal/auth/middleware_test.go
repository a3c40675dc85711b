package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

type fakeRoleReader struct {
	roles map[string]models.Role
}

func (f *fakeRoleReader) GetRole(id string) (models.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return "", database.ErrUserNotFound
	}
	return role, nil
}

func newAuthedRequest(t *testing.T, tokens *TokenService, userID string, role models.Role) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	token, err := tokens.Issue(userID, role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireAuth_MissingToken(t *testing.T) {
	tokens := NewTokenService(testSecret)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h := RequireAuth(tokens)(okHandler)
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_SetsClaims(t *testing.T) {
	tokens := NewTokenService(testSecret)
	e := echo.New()

	req, rec := newAuthedRequest(t, tokens, "user-1", models.RoleUser)
	ctx := e.NewContext(req, rec)

	h := RequireAuth(tokens)(func(c echo.Context) error {
		assert.Equal(t, "user-1", CallerID(c))
		assert.Equal(t, models.RoleUser, CallerRole(c))
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_BadToken(t *testing.T) {
	tokens := NewTokenService(testSecret)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	h := RequireAuth(tokens)(okHandler)
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// The persisted role decides, not the role claim embedded in the token.
func TestRequireAdmin_LiveRoleWins(t *testing.T) {
	tokens := NewTokenService(testSecret)
	e := echo.New()

	tests := []struct {
		name       string
		tokenRole  models.Role
		storedRole models.Role
		wantStatus int
	}{
		{"promoted since issue", models.RoleUser, models.RoleAdmin, http.StatusOK},
		{"demoted since issue", models.RoleAdmin, models.RoleUser, http.StatusForbidden},
		{"admin throughout", models.RoleAdmin, models.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeRoleReader{roles: map[string]models.Role{"user-1": tt.storedRole}}

			req, rec := newAuthedRequest(t, tokens, "user-1", tt.tokenRole)
			ctx := e.NewContext(req, rec)

			h := RequireAuth(tokens)(RequireAdmin(users)(okHandler))
			require.NoError(t, h(ctx))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireAdmin_DeletedAccount(t *testing.T) {
	tokens := NewTokenService(testSecret)
	e := echo.New()
	users := &fakeRoleReader{roles: map[string]models.Role{}}

	req, rec := newAuthedRequest(t, tokens, "ghost", models.RoleAdmin)
	ctx := e.NewContext(req, rec)

	h := RequireAuth(tokens)(RequireAdmin(users)(okHandler))
	require.NoError(t, h(ctx))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
