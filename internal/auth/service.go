package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/goayasushi/zaiko-be/internal/users"
)

// Directory resolves accounts for authentication.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
	Get(ctx context.Context, id int64) (users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	directory Directory
	issuer    *Issuer
}

// NewService constructs a new Service.
func NewService(directory Directory, issuer *Issuer) *Service {
	return &Service{directory: directory, issuer: issuer}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, ErrInvalidCredentials
		}
		return users.User{}, err
	}
	if !user.IsActive {
		return users.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.issuer.Issue(user.ID)
}

// Resolve verifies a bearer token and loads its active owner.
func (s *Service) Resolve(ctx context.Context, raw string) (users.User, error) {
	claims, err := s.issuer.Parse(raw)
	if err != nil {
		return users.User{}, err
	}
	user, err := s.directory.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return users.User{}, err
	}
	if !user.IsActive {
		return users.User{}, fmt.Errorf("%w: inactive user", ErrInvalidToken)
	}
	return user, nil
}

// Refresh issues a new access token for an authenticated user.
func (s *Service) Refresh(user users.User) (string, error) {
	return s.issuer.Issue(user.ID)
}
