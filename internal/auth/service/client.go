package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store"
	"github.com/aussiebroadwan/tabkeeper/pkg/cryptox"
	"github.com/aussiebroadwan/tabkeeper/pkg/idx"
	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrClientProtected = errors.New("client is protected and cannot be deleted")
)

// ClientService manages the registered OAuth2 clients.
type ClientService struct {
	Store  store.Store
	Hasher PasswordHasher
}

// CreateClient registers a client. Confidential clients get a generated
// secret which is returned here and never again; the store keeps its hash.
func (s *ClientService) CreateClient(
	ctx context.Context,
	name string,
	confidential bool,
	scopes []string,
) (clientID string, plaintextSecret string, err error) {
	l := slogx.FromContext(ctx)

	var secretHash string
	if confidential {
		plaintextSecret, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			l.Error("failed to generate client secret", "error", err)
			return "", "", err
		}
		secretHash, err = s.Hasher.Hash(plaintextSecret)
		if err != nil {
			l.Error("failed to hash client secret", "error", err)
			return "", "", fmt.Errorf("%w: %w", ErrCrypt, err)
		}
	}

	clientID = idx.New().String()
	err = s.Store.Clients().CreateClient(ctx, domain.Client{
		ID:         clientID,
		Name:       name,
		SecretHash: secretHash,
		Scopes:     scope.FromSlice(scopes).Slice(),
	})
	if err != nil {
		l.Error("failed to create client", "error", err)
		return "", "", err
	}

	l.Info("client created", "client_id", clientID, "name", name, "confidential", confidential)
	return clientID, plaintextSecret, nil
}

// ListClients returns every client, newest first.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// UpdateScopes replaces the scopes a client may request. Tokens already
// issued keep the scope they were granted.
func (s *ClientService) UpdateScopes(ctx context.Context, clientID string, scopes []string) error {
	err := s.Store.Clients().UpdateClientScopes(ctx, clientID, scope.FromSlice(scopes).Slice())
	if errors.Is(err, store.ErrNotFound) {
		return ErrClientNotFound
	}
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("client scopes updated", "client_id", clientID)
	return nil
}

// DeleteClient removes a client. The bootstrap client is protected.
func (s *ClientService) DeleteClient(ctx context.Context, clientID string) error {
	l := slogx.FromContext(ctx)

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	if client.Protected {
		l.Warn("attempted to delete protected client", "client_id", clientID)
		return ErrClientProtected
	}

	if err := s.Store.Clients().DeleteClient(ctx, clientID); err != nil {
		l.Error("failed to delete client", "error", err, "client_id", clientID)
		return err
	}

	l.Info("client deleted", "client_id", clientID)
	return nil
}
