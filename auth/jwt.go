package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoBearer      = errors.New("no bearer token")
	ErrInvalidToken  = errors.New("invalid or expired JWT")
	ErrNoCredential  = errors.New("no marketplace token bound to this session")
	ErrInvalidClaims = errors.New("invalid JWT claims")
)

// Claims is the dashboard session. Credential is the marketplace token the
// operator bound with /api/auth/token; it is empty until then.
type Claims struct {
	Admin           bool   `json:"admin"`
	Credential      string `json:"mkt,omitempty"`
	MarketplaceUser string `json:"mkt_user,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Username() string { return c.Subject }

// HasCredential reports whether bulk and listing calls can be made.
func (c *Claims) HasCredential() bool { return strings.TrimSpace(c.Credential) != "" }

func GenerateJWT(secret string, username string, isAdmin bool, expirationMinutes int) (string, error) {
	return SignClaims(secret, &Claims{Admin: isAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: username}}, expirationMinutes)
}

// SignClaims signs c with a fresh expiry.
func SignClaims(secret string, c *Claims, expirationMinutes int) (string, error) {
	now := time.Now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(expirationMinutes) * time.Minute))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(secret))
}

// ExtractClaims validates the bearer token of r.
func ExtractClaims(r *http.Request, secret string) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, ErrNoBearer
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
