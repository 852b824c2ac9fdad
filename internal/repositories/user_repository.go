package repositories

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// UserRepository defines the interface for credential lookup.
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
}

// Credential is one row of the static credential table.
type Credential struct {
	ID       int
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// DefaultCredentials are the demo accounts.
func DefaultCredentials() []Credential {
	return []Credential{
		{ID: 1, Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: models.RoleAdmin},
		{ID: 2, Name: "Customer", Email: "customer@example.com", Password: "customer123", Role: models.RoleCustomer},
	}
}

// StaticUserRepository serves a fixed credential table. Passwords are kept only as bcrypt hashes.
type StaticUserRepository struct {
	users map[string]models.User
}

// NewStaticUserRepository hashes every credential with the given bcrypt cost.
func NewStaticUserRepository(creds []Credential, cost int) (*StaticUserRepository, error) {
	users := make(map[string]models.User, len(creds))
	for _, c := range creds {
		if !c.Role.Valid() {
			return nil, fmt.Errorf("credential %s has unknown role %q", c.Email, c.Role)
		}
		key := strings.ToLower(c.Email)
		if _, dup := users[key]; dup {
			return nil, fmt.Errorf("duplicate credential for %s", c.Email)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", c.Email, err)
		}
		users[key] = models.User{ID: c.ID, Name: c.Name, Email: c.Email, Password: string(hash), Role: c.Role}
	}
	return &StaticUserRepository{users: users}, nil
}

// GetByEmail returns the user registered under email.
func (r *StaticUserRepository) GetByEmail(email string) (*models.User, error) {
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFound("user with email %s not found", email)
	}
	return &user, nil
}
