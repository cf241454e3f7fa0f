package security

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeAccess TokenType = "access"
)

const accessAudience = "parking-api"

// OperatorClaims identifies the staff member calling the API
type OperatorClaims struct {
	Username string    `json:"username"`
	Type     TokenType `json:"type"`
	Roles    []string  `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *OperatorClaims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

type TokenManager interface {
	GenerateAccessToken(username string, roles []string) (string, time.Time, error)
	ValidateToken(tokenString string) (*OperatorClaims, error)
}

type tokenManager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewTokenManager(secret, issuer string, expiry time.Duration) TokenManager {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &tokenManager{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
	}
}

func (m *tokenManager) GenerateAccessToken(username string, roles []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.expiry)
	claims := OperatorClaims{
		Username: username,
		Type:     TokenTypeAccess,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{accessAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *tokenManager) ValidateToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithAudience(accessAudience), jwt.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	if claims.Username == "" {
		claims.Username = claims.Subject
	}
	return claims, nil
}
