package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store"
	"github.com/aussiebroadwan/tabkeeper/pkg/cryptox"
	"github.com/aussiebroadwan/tabkeeper/pkg/idx"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

var ErrBootstrapAlready = errors.New("system already bootstrapped")

// PasswordHasher produces the stored form of a secret.
type PasswordHasher interface {
	Hash(secret string) (string, error)
}

// BootstrapResult carries the credentials minted by Bootstrap. The plain
// secrets exist only here; the store keeps hashes.
type BootstrapResult struct {
	AdminUserID   string
	AdminPassword string
	ClientID      string
	ClientSecret  string
}

// BootstrapService seeds an empty store with its first user and client.
type BootstrapService struct {
	Store  store.Store
	Hasher PasswordHasher
}

// IsBootstrapped reports whether any user or client already exists.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	userEmpty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	clientEmpty, err := s.Store.Clients().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !userEmpty || !clientEmpty, nil
}

// Bootstrap creates the admin user and a protected confidential client in
// one transaction. A missing admin password is generated.
func (s *BootstrapService) Bootstrap(ctx context.Context, req domain.BootstrapData) (BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	done, err := s.IsBootstrapped(ctx)
	if err != nil {
		return BootstrapResult{}, err
	}
	if done {
		return BootstrapResult{}, ErrBootstrapAlready
	}

	res := BootstrapResult{
		AdminUserID:   idx.New().String(),
		AdminPassword: req.AdminPassword,
		ClientID:      idx.New().String(),
	}

	if res.AdminPassword == "" {
		if res.AdminPassword, err = cryptox.GeneratePassword(); err != nil {
			return BootstrapResult{}, err
		}
	}
	if res.ClientSecret, err = cryptox.GenerateToken(cryptox.TokenSize256); err != nil {
		return BootstrapResult{}, err
	}

	passHash, err := s.Hasher.Hash(res.AdminPassword)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("hash admin password: %w", err)
	}
	secretHash, err := s.Hasher.Hash(res.ClientSecret)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("hash client secret: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:           res.AdminUserID,
			Username:     req.AdminUsername,
			PasswordHash: passHash,
		}); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		if err := tx.Clients().CreateClient(ctx, domain.Client{
			ID:         res.ClientID,
			Name:       req.ClientName,
			SecretHash: secretHash,
			Scopes:     req.ClientScopes,
			Protected:  true,
		}); err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		return nil
	})
	if err != nil {
		l.Error("bootstrap failed", slog.Any("error", err))
		return BootstrapResult{}, err
	}

	l.Info("bootstrap complete",
		slog.String("admin_user_id", res.AdminUserID),
		slog.String("client_id", res.ClientID),
	)
	return res, nil
}
