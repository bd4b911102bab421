package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"whatsbot-gateway/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	svc := NewService(db, "test-secret")

	r := gin.New()
	r.POST("/api/auth/signup", svc.Signup)
	r.POST("/api/auth/login", svc.Login)
	r.GET("/api/protected", svc.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID")})
	})
	return r, svc
}

func doJSON(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/signup",
		`{"email":"ops@acme.test","name":"Ops","password":"secret123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestSignupAndLogin(t *testing.T) {
	r, _ := newTestRouter(t)
	signup(t, r)

	t.Run("duplicate email rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/signup",
			`{"email":"ops@acme.test","password":"another123"}`, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login with correct password", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login",
			`{"email":"ops@acme.test","password":"secret123"}`, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "token")
	})

	t.Run("login with wrong password", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login",
			`{"email":"ops@acme.test","password":"wrong"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("login with unknown email", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login",
			`{"email":"nobody@acme.test","password":"secret123"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/signup",
			`{"email":"other@acme.test","password":"abc"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMiddleware(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signup(t, r)

	t.Run("valid token passes", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/protected", "", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user_id")
	})

	t.Run("missing header rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/protected", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/protected", "", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		other := NewService(nil, "different-secret")
		foreign, err := other.issueToken(models.User{ID: "u-1", Email: "ops@acme.test"})
		require.NoError(t, err)

		w := doJSON(r, http.MethodGet, "/api/protected", "", foreign)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
