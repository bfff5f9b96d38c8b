// Package auth issues and verifies admin sessions. The legacy deployment
// compared a plaintext credential against a fixed bearer string; here the
// password is checked against a bcrypt hash and sessions are expiring HS256
// tokens, behind the same login/verify/logout contract.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Authenticator checks the single admin credential and mints bearer tokens.
type Authenticator struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
}

// New hashes the configured admin password and returns an authenticator.
func New(username, password, secret string, ttl time.Duration) (*Authenticator, error) {
	if username == "" || password == "" || secret == "" {
		return nil, errors.New("auth: username, password and secret are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &Authenticator{
		username:     username,
		passwordHash: hash,
		secret:       []byte(secret),
		ttl:          ttl,
	}, nil
}

// Login returns a signed token when the credentials match, otherwise
// ErrInvalidCredentials. Which of the two fields was wrong is not disclosed.
func (a *Authenticator) Login(username, password string) (string, error) {
	if username != a.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  a.username,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(a.ttl).Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the bearer token and returns the subject. Expired, forged or
// otherwise unusable tokens come back as ErrInvalidToken.
func (a *Authenticator) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
