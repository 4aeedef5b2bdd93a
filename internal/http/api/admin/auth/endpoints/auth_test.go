package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/signage/internal/db"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api"
	"github.com/Nixie-Tech-LLC/signage/internal/http/api/admin/auth/packets"
)

const secret = "test-secret"

func newRouter(store db.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"}, AuthPublicModule(secret, store))
	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: secret,
		Users:     store,
	}, AuthSessionModule(secret, store))
	return r
}

func post(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp packets.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSignupLoginProfile(t *testing.T) {
	r := newRouter(db.NewMemoryStore())

	tokenFrom(t, post(r, "/api/admin/auth/signup", gin.H{"email": "Ops@Example.com", "password": "longenough", "name": "Ops"}))
	token := tokenFrom(t, post(r, "/api/admin/auth/login", gin.H{"email": "ops@example.com", "password": "longenough"}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/auth/current_profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var profile packets.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "ops@example.com", profile.Email)
	require.NotNil(t, profile.Name)
	assert.Equal(t, "Ops", *profile.Name)
}

func TestSignup_Duplicate(t *testing.T) {
	r := newRouter(db.NewMemoryStore())
	body := gin.H{"email": "ops@example.com", "password": "longenough"}

	tokenFrom(t, post(r, "/api/admin/auth/signup", body))
	assert.Equal(t, http.StatusConflict, post(r, "/api/admin/auth/signup", body).Code)
}

func TestSignup_Validation(t *testing.T) {
	r := newRouter(db.NewMemoryStore())
	assert.Equal(t, http.StatusBadRequest, post(r, "/api/admin/auth/signup", gin.H{"email": "nope", "password": "longenough"}).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/api/admin/auth/signup", gin.H{"email": "a@b.co", "password": "short"}).Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newRouter(db.NewMemoryStore())
	tokenFrom(t, post(r, "/api/admin/auth/signup", gin.H{"email": "ops@example.com", "password": "longenough"}))

	w := post(r, "/api/admin/auth/login", gin.H{"email": "ops@example.com", "password": "wrongpassword"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, post(r, "/api/admin/auth/login", gin.H{"email": "who@example.com", "password": "x"}).Code)
}

func TestCurrentProfile_RequiresToken(t *testing.T) {
	r := newRouter(db.NewMemoryStore())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/auth/current_profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
