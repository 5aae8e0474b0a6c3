package security

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"habitforge/internal/models"
)

// TokenIssuer signs and verifies the access tokens devices present on
// behalf of a child. Identity is resolved here, at the request boundary;
// the engine only ever sees the validated child id and role.
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
}

// NewTokenIssuer creates a token issuer with the given signing secret
func NewTokenIssuer(secret string, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), duration: duration}
}

// claims carries the single canonical role claim next to the standard set.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for a child or parent subject.
func (t *TokenIssuer) Issue(subjectID int64, role models.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
		},
	})
	return token.SignedString(t.secret)
}

// Verify parses and validates a token, returning the subject id and role.
func (t *TokenIssuer) Verify(tokenString string) (int64, models.Role, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, "", fmt.Errorf("invalid token: %w", err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return 0, "", fmt.Errorf("invalid token claims")
	}

	subjectID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid token subject: %w", err)
	}

	role, err := models.ParseRole(c.Role)
	if err != nil {
		return 0, "", err
	}

	return subjectID, role, nil
}
