package session

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rowanvale/njord/internal/domain"
)

var (
	ErrInvalidToken = &domain.Error{Code: domain.EUNAUTHORIZED, Message: "Invalid session token"}
	ErrExpiredToken = &domain.Error{Code: domain.EUNAUTHORIZED, Message: "Session has expired"}
)

// Claims is the token payload the auth collaborator signs.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier parses and verifies externally issued session tokens. It never
// issues tokens itself.
type Verifier struct {
	secretKey []byte
}

// NewVerifier creates a token verifier sharing the auth service's secret.
func NewVerifier(secretKey string) *Verifier {
	return &Verifier{secretKey: []byte(secretKey)}
}

// Parse validates the token signature and expiry and returns the user it
// identifies.
func (v *Verifier) Parse(tokenString string) (*User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, domain.WrapError(err, domain.EUNAUTHORIZED, "session.parse", "Invalid session token")
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &User{ID: userID, Email: claims.Email, Role: claims.Role}, nil
}
