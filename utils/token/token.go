// Package token issues and verifies the HS256 bearer tokens that identify
// note owners to the API.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMissing  = errors.New("authentication token required")
	ErrBadAuthHeader = errors.New("authorization header must be in the form Bearer {token}")
	ErrTokenInvalid  = errors.New("invalid or expired token")
)

// JWTClaims carries the owner identity alongside the registered claims.
// UserID is the only field the API trusts for ownership checks.
type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given user, valid from now until
// now+expiration.
func GenerateToken(userID uuid.UUID, email string, secret []byte, expiration time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateToken parses and verifies a token string. Only HS256 is accepted;
// a token signed with any other method fails before the claims are read.
func ValidateToken(tokenString string, secret []byte) (*JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExtractToken pulls the raw token from a request: the token query parameter
// first (WebSocket upgrades cannot set headers), then the Authorization
// bearer header.
func ExtractToken(c *gin.Context) (string, error) {
	if token := c.Query("token"); token != "" {
		return token, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrTokenMissing
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrBadAuthHeader
	}
	return parts[1], nil
}
