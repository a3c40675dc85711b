package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"haldoor-backend/internal/assets"
	"haldoor-backend/internal/auth"
	"haldoor-backend/internal/database"
	"haldoor-backend/internal/models"
)

type testServer struct {
	e      *echo.Echo
	svc    *auth.Service
	assets *assets.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, database.Open(database.Config{Path: filepath.Join(dir, "test.db")}))
	t.Cleanup(func() { database.Close() })

	mgr, err := assets.NewManager(filepath.Join(dir, "uploads"), zap.NewNop().Sugar())
	require.NoError(t, err)

	tokens := auth.NewTokenService("test-secret")
	svc := auth.NewService(tokens, bcrypt.MinCost)

	e := echo.New()
	RegisterRoutes(e.Group("/api"), svc, mgr)

	return &testServer{e: e, svc: svc, assets: mgr}
}

// newUser registers an account and returns it with a freshly issued token.
// The token's role claim reflects the role at issue time.
func (s *testServer) newUser(t *testing.T, name, email string, role models.Role) (*models.User, string) {
	t.Helper()

	user, err := s.svc.Register(name, email, "password1")
	require.NoError(t, err)

	if role != models.RoleUser {
		require.NoError(t, database.NewUserRepo().UpdateRole(user.ID, role))
		user.Role = role
	}

	token, err := s.svc.Tokens().Issue(user.ID, role)
	require.NoError(t, err)
	return user, token
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(method, path, token string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	return s.do(method, path, token, body, echo.MIMEApplicationJSON)
}

// multipartBody builds a multipart form with text fields and an optional
// image file.
func multipartBody(t *testing.T, fields map[string]string, imageName string, imageData []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := w.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}

