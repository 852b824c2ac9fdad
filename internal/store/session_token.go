package store

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"storefront/internal/models"
)

// sessionClaims is the signed form of a Session.
type sessionClaims struct {
	models.Session
	jwt.StandardClaims
}

// SessionCodec signs sessions into tokens and verifies them back.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionCodec creates a codec whose tokens are valid for ttl.
func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), ttl: ttl}
}

// Encode signs s with HS256.
func (c *SessionCodec) Encode(s models.Session) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Session: s,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   s.Email,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(c.ttl).Unix(),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of tokenString and returns its session.
func (c *SessionCodec) Decode(tokenString string) (*models.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if !claims.Role.Valid() || claims.Email == "" {
		return nil, fmt.Errorf("session token carries no usable identity")
	}
	s := claims.Session
	return &s, nil
}
