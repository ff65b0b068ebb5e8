package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

// identityRouter exposes the identity the middleware resolved
func identityRouter(secret string) *gin.Engine {
	router := gin.New()
	router.GET("/whoami", AuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, currentUserID(c))
	})
	return router
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := CreateAccessToken(testJWTSecret, "user-42")
	require.NoError(t, err)

	userID, err := parseAccessToken(testJWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := CreateAccessToken(testJWTSecret, "user-42")
	require.NoError(t, err)

	_, err = parseAccessToken("a-different-secret", token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("no secret configured maps everyone to the local user", func(t *testing.T) {
		router := identityRouter("")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/whoami", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, anonymousUserID, w.Body.String())
	})

	t.Run("valid bearer token resolves the subject", func(t *testing.T) {
		router := identityRouter(testJWTSecret)
		token, err := CreateAccessToken(testJWTSecret, "user-42")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-42", w.Body.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router := identityRouter(testJWTSecret)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/whoami", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		router := identityRouter(testJWTSecret)

		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		router := identityRouter(testJWTSecret)

		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
