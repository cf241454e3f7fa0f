package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"smartparking-backend/internal/config"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// OperatorAuthenticator checks staff credentials against the bcrypt hashes
// in the configuration.
type OperatorAuthenticator struct {
	operators map[string]config.OperatorConfig
}

func NewOperatorAuthenticator(operators []config.OperatorConfig) *OperatorAuthenticator {
	m := make(map[string]config.OperatorConfig, len(operators))
	for _, op := range operators {
		m[strings.ToLower(op.Username)] = op
	}
	return &OperatorAuthenticator{operators: m}
}

// Authenticate returns the operator's roles. Operators without explicit roles
// get the operator role.
func (a *OperatorAuthenticator) Authenticate(username, password string) ([]string, error) {
	op, ok := a.operators[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if len(op.Roles) == 0 {
		return []string{config.RoleOperator}, nil
	}
	return op.Roles, nil
}

// HashPassword produces a hash suitable for the operators section of the configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
