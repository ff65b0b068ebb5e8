package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Identity plumbing: requests carry a bearer session token whose subject is
// the user id. Credential verification and session issuance live outside
// this service; CreateAccessToken exists for the token issuer and tests.
// With no JWT secret configured the service runs single-user.

const (
	// anonymousUserID is the identity used when auth is not configured
	anonymousUserID = "local"

	// userIDContextKey is where the middleware stores the resolved identity
	userIDContextKey = "user_id"

	// accessTokenTTL is how long issued session tokens remain valid
	accessTokenTTL = 7 * 24 * time.Hour
)

// CreateAccessToken issues a signed session token for the given user
func CreateAccessToken(secret, userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// parseAccessToken validates a session token and returns its user id
func parseAccessToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("invalid token payload")
	}
	return claims.Subject, nil
}

// AuthMiddleware resolves the caller identity before any handler runs. When
// a secret is configured a valid bearer token is required; otherwise every
// request maps to the anonymous local user.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Set(userIDContextKey, anonymousUserID)
			c.Next()
			return
		}

		authorization := c.GetHeader("Authorization")
		if authorization == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			return
		}

		parts := strings.SplitN(authorization, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication scheme"})
			return
		}

		userID, err := parseAccessToken(secret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// currentUserID returns the identity resolved by AuthMiddleware
func currentUserID(c *gin.Context) string {
	if id, ok := c.Get(userIDContextKey); ok {
		if userID, ok := id.(string); ok {
			return userID
		}
	}
	return anonymousUserID
}
