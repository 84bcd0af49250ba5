package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/config"
	"github.com/ChetanBhuma/KutumbBackend-sub003/internal/db/models"
)

// defaultTokenExpiry applies when config.Auth.TokenExpiry is unset.
const defaultTokenExpiry = 8 * time.Hour

// Claims are the JWT claims carried by an issued bearer token.
type Claims struct {
	// Role is the role code of the user at issue time.
	Role string `json:"role"`
	// OfficerID references the user's officer profile when one is linked.
	OfficerID *string `json:"officerId,omitempty"`
	// Username is carried for audit logging without a user lookup.
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed bearer token for the given user.
func IssueToken(cfg *config.Auth, user *models.User) (string, error) {
	expiry := cfg.TokenExpiry
	if expiry == 0 {
		expiry = defaultTokenExpiry
	}

	now := time.Now()
	claims := Claims{
		Role:      user.Role.Code,
		OfficerID: user.OfficerID,
		Username:  user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a bearer token and returns its claims.
func ParseToken(cfg *config.Auth, tokenString string) (*Claims, error) {
	claims := new(Claims)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// UserID returns the numeric subject of the claims.
func (c *Claims) UserID() uint64 {
	id, _ := strconv.ParseUint(c.Subject, 10, 64)
	return id
}
