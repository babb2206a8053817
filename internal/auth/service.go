package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tiendapos/tiendapos/internal/shared"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// ErrWeakPassword indicates a password below the minimum length.
var ErrWeakPassword = errors.New("auth: password too short")

const minPasswordLen = 6

// RegistryPort abstracts the control-schema records the service touches.
type RegistryPort interface {
	ClaimActivationCode(ctx context.Context, code, username string) error
	CreateUser(ctx context.Context, user tenant.User) (int64, error)
	FindUser(ctx context.Context, username string) (*tenant.User, error)
	RecordTenant(ctx context.Context, key, owner string) error
}

// ProvisionerPort creates tenant schemas.
type ProvisionerPort interface {
	Provision(ctx context.Context, key string) (string, error)
}

// Service implements registration and login. Each registration claims
// an activation code, provisions a fresh tenant schema with seed data,
// and stores the owner account in the control schema.
type Service struct {
	registry    RegistryPort
	provisioner ProvisionerPort
}

// NewService constructs a Service.
func NewService(registry RegistryPort, provisioner ProvisionerPort) *Service {
	return &Service{registry: registry, provisioner: provisioner}
}

// RegisterInput is a signup request.
type RegisterInput struct {
	Username       string
	Password       string
	Email          string
	Phone          string
	ActivationCode string
}

// Register claims the activation code, derives the tenant key from the
// username, provisions the schema and creates the owner user.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*tenant.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.ActivationCode == "" {
		return nil, shared.ErrInvalidArgument
	}
	if len(input.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	key, err := tenant.DeriveKey(username)
	if err != nil {
		return nil, err
	}

	// A duplicate username must not burn the activation code. The
	// unique index still guards the insert itself.
	if _, err := s.registry.FindUser(ctx, username); err == nil {
		return nil, tenant.ErrUsernameTaken
	} else if !errors.Is(err, tenant.ErrUserNotFound) {
		return nil, err
	}

	if err := s.registry.ClaimActivationCode(ctx, input.ActivationCode, username); err != nil {
		return nil, err
	}

	if _, err := s.provisioner.Provision(ctx, key); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := tenant.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		TenantKey:    key,
		Active:       true,
	}
	id, err := s.registry.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	if err := s.registry.RecordTenant(ctx, key, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*tenant.User, error) {
	user, err := s.registry.FindUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
