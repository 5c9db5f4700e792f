package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
	"github.com/Ahmadreza-Avandi/mami-land/internal/middleware"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
	"github.com/Ahmadreza-Avandi/mami-land/internal/security"
	"github.com/Ahmadreza-Avandi/mami-land/internal/service"
)

type fakeAdminStore struct {
	admins map[string]models.Admin
}

func (f *fakeAdminStore) FindActiveByUsername(_ context.Context, username string) (models.Admin, error) {
	admin, ok := f.admins[username]
	if !ok {
		return models.Admin{}, repository.ErrAdminNotFound
	}
	return admin, nil
}

func (f *fakeAdminStore) Upsert(_ context.Context, admin models.Admin) error {
	f.admins[admin.Username] = admin
	return nil
}

func adminTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := security.HashPassword("s3cret-pass")
	require.NoError(t, err)

	cfg := &config.AppConfig{
		Environment: "development",
		Security: config.SecurityConfig{
			JWTSecret:     "test-secret",
			AdminTokenTTL: 168 * time.Hour,
		},
	}
	admins := &fakeAdminStore{admins: map[string]models.Admin{
		"admin": {ID: "a1", Username: "admin", PasswordHash: hash, IsActive: true},
	}}

	h := HandlerSet{
		log:         zerolog.Nop(),
		cfg:         cfg,
		authService: service.NewAuthService(nil, admins, nil, cfg, zerolog.Nop()),
	}

	router := gin.New()
	router.POST("/admin/login", h.AdminLogin)
	return router
}

func postAdminLogin(router *gin.Engine, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminLogin_MissingFields(t *testing.T) {
	router := adminTestRouter(t)

	for _, body := range []map[string]string{
		{},
		{"username": "admin"},
		{"password": "s3cret-pass"},
	} {
		rec := postAdminLogin(router, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "نام کاربری و رمز عبور الزامی هستند", resp["error"])
	}
}

func TestAdminLogin_BadCredentials(t *testing.T) {
	router := adminTestRouter(t)

	for _, body := range []map[string]string{
		{"username": "admin", "password": "wrong"},
		{"username": "nobody", "password": "s3cret-pass"},
	} {
		rec := postAdminLogin(router, body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "نام کاربری یا رمز عبور نامعتبر است", resp["error"])
	}
}

func TestAdminLogin_Success(t *testing.T) {
	router := adminTestRouter(t)

	rec := postAdminLogin(router, map[string]string{
		"username": "admin",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Admin   struct {
			Username string `json:"username"`
			IsAdmin  bool   `json:"isAdmin"`
		} `json:"admin"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "admin", resp.Admin.Username)
	assert.True(t, resp.Admin.IsAdmin)
	require.NotEmpty(t, resp.Token)

	claims, err := security.ParseAdminToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, middleware.AdminCookieName, cookie.Name)
	assert.Equal(t, resp.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((168 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestAdminLogin_SecureCookieInProduction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, err := security.HashPassword("s3cret-pass")
	require.NoError(t, err)

	cfg := &config.AppConfig{
		Environment: "production",
		Security: config.SecurityConfig{
			JWTSecret:     "test-secret",
			AdminTokenTTL: time.Hour,
		},
	}
	admins := &fakeAdminStore{admins: map[string]models.Admin{
		"admin": {ID: "a1", Username: "admin", PasswordHash: hash, IsActive: true},
	}}
	h := HandlerSet{
		log:         zerolog.Nop(),
		cfg:         cfg,
		authService: service.NewAuthService(nil, admins, nil, cfg, zerolog.Nop()),
	}
	router := gin.New()
	router.POST("/admin/login", h.AdminLogin)

	rec := postAdminLogin(router, map[string]string{
		"username": "admin",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}
