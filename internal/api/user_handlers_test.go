package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.doJSON(http.MethodPost, "/api/user/register", "", models.RegisterRequest{
		Name:     "Farah",
		Email:    "Farah@Example.com",
		Password: "password1",
	})
	mustStatus(t, rec, http.StatusCreated)
	user := decodeJSON[models.User](t, rec)
	assert.Equal(t, "farah@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role, "registration never grants admin")
	assert.NotContains(t, rec.Body.String(), "password_hash")

	// Duplicate registration conflicts
	rec = s.doJSON(http.MethodPost, "/api/user/register", "", models.RegisterRequest{
		Name:     "Other",
		Email:    "farah@example.com",
		Password: "password2",
	})
	mustStatus(t, rec, http.StatusConflict)

	// Login with case-varied email
	rec = s.doJSON(http.MethodPost, "/api/user/login", "", models.LoginRequest{
		Email:    "FARAH@example.com",
		Password: "password1",
	})
	mustStatus(t, rec, http.StatusOK)
	resp := decodeJSON[map[string]any](t, rec)
	assert.NotEmpty(t, resp["token"])

	// Wrong password
	rec = s.doJSON(http.MethodPost, "/api/user/login", "", models.LoginRequest{
		Email:    "farah@example.com",
		Password: "wrong",
	})
	mustStatus(t, rec, http.StatusUnauthorized)
}

func TestGetCurrentUser(t *testing.T) {
	s := newTestServer(t)
	user, token := s.newUser(t, "Me", "me@example.com", models.RoleUser)

	rec := s.do(http.MethodGet, "/api/user/me", token, nil, "")
	mustStatus(t, rec, http.StatusOK)
	got := decodeJSON[models.User](t, rec)
	assert.Equal(t, user.ID, got.ID)

	rec = s.do(http.MethodGet, "/api/user/me", "", nil, "")
	mustStatus(t, rec, http.StatusUnauthorized)
}

// A role change takes effect for privileged calls on the next request with
// the same, still-valid token: authorization re-reads the persisted role.
func TestAdminGate_UsesLiveRole(t *testing.T) {
	s := newTestServer(t)
	user, token := s.newUser(t, "Pat", "pat@example.com", models.RoleUser)

	rec := s.do(http.MethodGet, "/api/user/all", token, nil, "")
	mustStatus(t, rec, http.StatusForbidden)

	// Promote without reissuing the token
	require.NoError(t, database.NewUserRepo().UpdateRole(user.ID, models.RoleAdmin))

	rec = s.do(http.MethodGet, "/api/user/all", token, nil, "")
	mustStatus(t, rec, http.StatusOK)

	// Demote again: the old token's admin claim no longer helps
	require.NoError(t, database.NewUserRepo().UpdateRole(user.ID, models.RoleUser))
	rec = s.do(http.MethodGet, "/api/user/all", token, nil, "")
	mustStatus(t, rec, http.StatusForbidden)
}

func TestUpdateUser_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	target, targetToken := s.newUser(t, "Target", "target@example.com", models.RoleUser)
	_, adminToken := s.newUser(t, "Admin", "admin@example.com", models.RoleAdmin)

	name := "Renamed"
	rec := s.doJSON(http.MethodPatch, "/api/user/"+target.ID, targetToken, models.UpdateUserRequest{Name: &name})
	mustStatus(t, rec, http.StatusForbidden)

	rec = s.doJSON(http.MethodPatch, "/api/user/"+target.ID, adminToken, models.UpdateUserRequest{Name: &name})
	mustStatus(t, rec, http.StatusOK)
	got := decodeJSON[models.User](t, rec)
	assert.Equal(t, "Renamed", got.Name)
}

func TestChangePassword_SelfOrAdmin(t *testing.T) {
	s := newTestServer(t)
	user, userToken := s.newUser(t, "U", "u@example.com", models.RoleUser)
	other, _ := s.newUser(t, "O", "o@example.com", models.RoleUser)
	_, adminToken := s.newUser(t, "A", "a@example.com", models.RoleAdmin)

	// Self-service change works
	rec := s.doJSON(http.MethodPatch, "/api/user/"+user.ID+"/password", userToken,
		models.ChangePasswordRequest{NewPassword: "new-password"})
	mustStatus(t, rec, http.StatusOK)

	// Old password no longer logs in, new one does
	rec = s.doJSON(http.MethodPost, "/api/user/login", "", models.LoginRequest{Email: user.Email, Password: "password1"})
	mustStatus(t, rec, http.StatusUnauthorized)
	rec = s.doJSON(http.MethodPost, "/api/user/login", "", models.LoginRequest{Email: user.Email, Password: "new-password"})
	mustStatus(t, rec, http.StatusOK)

	// A standard user cannot change someone else's password
	rec = s.doJSON(http.MethodPatch, "/api/user/"+other.ID+"/password", userToken,
		models.ChangePasswordRequest{NewPassword: "hijacked1"})
	mustStatus(t, rec, http.StatusForbidden)

	// An admin can
	rec = s.doJSON(http.MethodPatch, "/api/user/"+other.ID+"/password", adminToken,
		models.ChangePasswordRequest{NewPassword: "reset-by-admin"})
	mustStatus(t, rec, http.StatusOK)
	rec = s.doJSON(http.MethodPost, "/api/user/login", "", models.LoginRequest{Email: other.Email, Password: "reset-by-admin"})
	mustStatus(t, rec, http.StatusOK)
}

func TestChangeRole(t *testing.T) {
	s := newTestServer(t)
	target, _ := s.newUser(t, "T", "t@example.com", models.RoleUser)
	_, adminToken := s.newUser(t, "A", "a@example.com", models.RoleAdmin)

	rec := s.doJSON(http.MethodPatch, "/api/user/role/"+target.ID, adminToken,
		models.ChangeRoleRequest{Role: models.RoleAdmin})
	mustStatus(t, rec, http.StatusOK)
	got := decodeJSON[models.User](t, rec)
	assert.Equal(t, models.RoleAdmin, got.Role)

	rec = s.doJSON(http.MethodPatch, "/api/user/role/"+target.ID, adminToken,
		models.ChangeRoleRequest{Role: "superuser"})
	mustStatus(t, rec, http.StatusBadRequest)
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	target, _ := s.newUser(t, "T", "t@example.com", models.RoleUser)
	admin, adminToken := s.newUser(t, "A", "a@example.com", models.RoleAdmin)

	// Self-deletion is refused
	rec := s.do(http.MethodDelete, "/api/user/"+admin.ID, adminToken, nil, "")
	mustStatus(t, rec, http.StatusForbidden)

	rec = s.do(http.MethodDelete, "/api/user/"+target.ID, adminToken, nil, "")
	mustStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodDelete, "/api/user/"+target.ID, adminToken, nil, "")
	mustStatus(t, rec, http.StatusNotFound)
}
