package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store"
	"github.com/aussiebroadwan/tabkeeper/pkg/idx"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// UserService manages resource owner accounts.
type UserService struct {
	Store  store.Store
	Hasher PasswordHasher
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// GetUserByUsername fetches a user by username, ignoring case.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// CreateUser adds a user with the given plaintext password.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (domain.User, error) {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrCrypt, err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created", "user_id", u.ID)
	return s.GetUserByID(ctx, u.ID)
}

// ChangePassword replaces a user's password. Tokens already issued stay
// valid until they expire.
func (s *UserService) ChangePassword(ctx context.Context, userID, password string) error {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCrypt, err)
	}
	err = s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	err := s.Store.Users().DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err == nil {
		slogx.FromContext(ctx).Info("user deleted", "user_id", userID)
	}
	return err
}
