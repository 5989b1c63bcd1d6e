package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/isell/backend/internal/infrastructure/auth"
	"github.com/isell/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, isAdmin bool) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := svc.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:   userID,
		Username: "tester",
		IsAdmin:  isAdmin,
	})
	require.NoError(t, err)
	return token, userID
}

func TestJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestJWTService()

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(JWTAuthMiddleware(svc))
		router.GET("/health", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		router.GET("/protected", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("rejects missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("rejects non-bearer authorization header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expiredSvc := auth.NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: -time.Hour,
			Issuer:                "test-issuer",
		})
		token, _ := issueToken(t, expiredSvc, false)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
	})

	t.Run("accepts valid token and populates context", func(t *testing.T) {
		token, userID := issueToken(t, svc, false)

		var capturedUserID, capturedUsername string
		var capturedAdmin bool
		router := gin.New()
		router.Use(JWTAuthMiddleware(svc))
		router.GET("/protected", func(c *gin.Context) {
			capturedUserID = GetJWTUserID(c)
			capturedUsername = GetJWTUsername(c)
			capturedAdmin = IsAdmin(c)
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), capturedUserID)
		assert.Equal(t, "tester", capturedUsername)
		assert.False(t, capturedAdmin)
	})

	t.Run("skips configured paths", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestJWTService()

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.POST("/admin", RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("forbids non-admin users", func(t *testing.T) {
		token, _ := issueToken(t, svc, false)

		req := httptest.NewRequest("POST", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
	})

	t.Run("allows admin users", func(t *testing.T) {
		token, _ := issueToken(t, svc, true)

		req := httptest.NewRequest("POST", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetJWTUserUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("parses a valid user id", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		want := uuid.New()
		c.Set(JWTUserIDKey, want.String())

		got, ok := GetJWTUserUUID(c)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("returns false when unauthenticated", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		_, ok := GetJWTUserUUID(c)
		assert.False(t, ok)
	})
}

func TestGetJWTClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns stored claims", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		claims := &auth.Claims{UserID: uuid.New().String(), Username: "tester"}
		c.Set(JWTClaimsKey, claims)

		assert.Equal(t, claims, GetJWTClaims(c))
	})

	t.Run("returns nil when absent", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.Nil(t, GetJWTClaims(c))
	})
}
