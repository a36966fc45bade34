package users

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailRequired is returned when an account is created without email.
	ErrEmailRequired = errors.New("users: email must be set")
	// ErrInvalidEmail is returned for malformed addresses.
	ErrInvalidEmail = errors.New("users: email is invalid")
	// ErrPasswordRequired is returned when an account is created without password.
	ErrPasswordRequired = errors.New("users: password must be set")
)

var emailCheck = validator.New()

// AccountInput describes a new login account.
type AccountInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Superuser bool
}

// NewAccount builds an active account with a bcrypt hash. Superusers are
// always staff.
func NewAccount(in AccountInput) (User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return User{}, ErrEmailRequired
	}
	if err := emailCheck.Var(email, "email"); err != nil {
		return User{}, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	if in.Password == "" {
		return User{}, ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	return User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
		IsStaff:      in.Superuser,
		IsSuperuser:  in.Superuser,
	}, nil
}
