// Package authtoken issues and verifies the HS256 bearer tokens handed out at
// register and login.
package authtoken

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("authtoken: invalid token")
	ErrEmptySecret  = errors.New("authtoken: signing secret is empty")
)

const issuer = "rank-boost"

// Claims carries only the subject. Roles are looked up per request.
type Claims struct {
	UserID  string
	Expires time.Time
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("authtoken: subject is required")
	}

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("authtoken: sign: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}

	registered := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, registered, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if registered.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{UserID: registered.Subject}
	if registered.ExpiresAt != nil {
		claims.Expires = registered.ExpiresAt.Time
	}
	return claims, nil
}

// Subject verifies raw and returns the user id it was issued for.
func (i *Issuer) Subject(raw string) (string, error) {
	claims, err := i.Verify(raw)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
