package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidToken = errors.New("session cookie token is invalid")
	ErrExpiredToken = errors.New("session cookie token is expired")
)

type TokenManagerInterface interface {
	Sign(sessionToken string, duration time.Duration) (string, error)
	Parse(tokenString string) (string, error)
}

type sessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.StandardClaims
}

// TokenManager wraps the opaque session id in a signed JWT so a tampered
// cookie is rejected before the session map is ever consulted.
type TokenManager struct {
	secret string
}

func NewTokenManager() TokenManagerInterface {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatalf("SESSION_SECRET is not set in .env file")
	}
	return &TokenManager{secret: secret}
}

func (t *TokenManager) Sign(sessionToken string, duration time.Duration) (string, error) {
	claims := &sessionClaims{
		SessionID: sessionToken,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.secret))
}

func (t *TokenManager) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(t.secret), nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			if validationErr.Errors&jwt.ValidationErrorExpired != 0 {
				return "", ErrExpiredToken
			}
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}
