package services

import (
	"context"
	"errors"

	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials collapses the unknown-email and wrong-password
// cases into one outcome so responses cannot be used to enumerate
// accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, email, passwordHash string) (types.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdateProfile(ctx context.Context, email string, profile types.Profile) error
}

// UserService encapsulates credential and profile use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register hashes the password and inserts the user. A duplicate email
// surfaces as store.ErrDuplicate.
func (s *UserService) Register(ctx context.Context, email, password string) (types.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}
	return s.repo.Create(ctx, email, string(hash))
}

// Verify checks the password against the stored hash. An absent account
// and a wrong password return the identical ErrInvalidCredentials.
func (s *UserService) Verify(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword refetches the stored hash and re-verifies the current
// password before overwriting it. A missing account surfaces as
// store.ErrNotFound; a wrong current password as ErrInvalidCredentials.
func (s *UserService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, email, string(hash))
}

// GetProfile loads the user row for the authenticated identity. The
// store stays authoritative even after a token was issued.
func (s *UserService) GetProfile(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// UpdateProfile fully overwrites the profile attributes for the
// authenticated identity.
func (s *UserService) UpdateProfile(ctx context.Context, email string, profile types.Profile) error {
	return s.repo.UpdateProfile(ctx, email, profile)
}
