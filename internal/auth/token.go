// Package auth guards the destructive endpoints of the workout map host with
// HS256 bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds the HMAC secret and issuer used to sign and verify tokens.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the verified content of a bearer token.
type Claims struct {
	Subject   string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// tokenClaims is the wire form; scopes travel space-separated in "scopes".
type tokenClaims struct {
	Scopes string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims verifies token against cfg. The subject is mandatory.
func ParseClaims(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	},
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || tc.Subject == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Subject: tc.Subject,
		Scopes:  make(map[string]struct{}),
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	for _, scope := range strings.Fields(tc.Scopes) {
		claims.Scopes[scope] = struct{}{}
	}
	return claims, nil
}

// Sign issues a token for subject carrying scopes, valid for ttl.
func Sign(cfg Config, subject string, scopes []string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Scopes: strings.Join(scopes, " "),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(cfg.Secret))
}

// IssueResetToken signs a token that allows resetting the log.
func IssueResetToken(cfg Config, subject string, ttl time.Duration) (string, error) {
	return Sign(cfg, subject, []string{ScopeWorkoutsReset}, ttl)
}

// HasScope reports whether the claim set includes scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}
