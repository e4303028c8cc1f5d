package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store"
	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
	"github.com/aussiebroadwan/tabkeeper/pkg/slogx"
)

// UserLookup finds the stored password hash for a username. ok is false
// when no such user exists.
type UserLookup interface {
	PasswordHash(ctx context.Context, username string) (hash string, ok bool, err error)
}

// ClientLookup finds a registered client.
type ClientLookup interface {
	Client(ctx context.Context, clientID string) (domain.Client, bool, error)
}

// PasswordMatcher checks a candidate secret against a stored hash.
type PasswordMatcher interface {
	Match(candidate, hash string) bool
}

// StoreUsers adapts store.Users to UserLookup.
type StoreUsers struct {
	Store store.Store
}

func (u StoreUsers) PasswordHash(ctx context.Context, username string) (string, bool, error) {
	user, err := u.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return user.PasswordHash, true, nil
}

// StoreClients adapts store.Clients to ClientLookup.
type StoreClients struct {
	Store store.Store
}

func (c StoreClients) Client(ctx context.Context, clientID string) (domain.Client, bool, error) {
	client, err := c.Store.Clients().GetClientByID(ctx, clientID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Client{}, false, nil
	}
	if err != nil {
		return domain.Client{}, false, err
	}
	return client, true, nil
}

// Credentials authenticates resource owners and clients against the
// lookups it is given.
type Credentials struct {
	Users   UserLookup
	Clients ClientLookup
	Matcher PasswordMatcher
}

// DecodePassword undoes the base64url transport encoding of a password.
// Both unpadded and padded forms are accepted.
func DecodePassword(encoded string) (string, bool) {
	if b, err := base64.RawURLEncoding.DecodeString(encoded); err == nil {
		return string(b), true
	}
	if b, err := base64.URLEncoding.DecodeString(encoded); err == nil {
		return string(b), true
	}
	return "", false
}

// EncodePassword applies the transport encoding DecodePassword expects.
func EncodePassword(plain string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(plain))
}

// AuthenticateUser checks a base64url encoded password for username. Every
// failure reads as ErrInvalidCredentials so callers can't tell an unknown
// user from a wrong password.
func (c *Credentials) AuthenticateUser(ctx context.Context, username, encodedPassword string) error {
	l := slogx.FromContext(ctx)

	hash, ok, err := c.Users.PasswordHash(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		l.Info("password check failed", slog.String("reason", "unknown_user"))
		return ErrInvalidCredentials
	}

	password, ok := DecodePassword(encodedPassword)
	if !ok {
		l.Info("password check failed", slog.String("reason", "bad_encoding"))
		return ErrInvalidCredentials
	}

	if !c.Matcher.Match(password, hash) {
		l.Info("password check failed", slog.String("reason", "mismatch"))
		return ErrInvalidCredentials
	}
	return nil
}

// LookupUser confirms username names a stored user. Absence reads as
// ErrInvalidCredentials, the same as a failed password check.
func (c *Credentials) LookupUser(ctx context.Context, username string) error {
	_, ok, err := c.Users.PasswordHash(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		slogx.FromContext(ctx).Info("user lookup failed", slog.String("reason", "unknown_user"))
		return ErrInvalidCredentials
	}
	return nil
}

// LookupClient returns the registered client or ErrInvalidClient.
func (c *Credentials) LookupClient(ctx context.Context, clientID string) (domain.Client, error) {
	if clientID == "" {
		return domain.Client{}, ErrInvalidClient
	}
	client, ok, err := c.Clients.Client(ctx, clientID)
	if err != nil {
		return domain.Client{}, fmt.Errorf("lookup client: %w", err)
	}
	if !ok {
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

// AuthenticateClient checks a client secret. Public clients authenticate
// by presenting no secret at all.
func (c *Credentials) AuthenticateClient(ctx context.Context, clientID, secret string) (domain.Client, error) {
	client, err := c.LookupClient(ctx, clientID)
	if err != nil {
		return domain.Client{}, err
	}

	if !client.Confidential() {
		if secret != "" {
			return domain.Client{}, ErrInvalidClient
		}
		return client, nil
	}

	if secret == "" || !c.Matcher.Match(secret, client.SecretHash) {
		slogx.FromContext(ctx).Info("client authentication failed", slog.String("client_id", clientID))
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

// PermitScope returns ErrInvalidScope when requested goes beyond the scopes
// client is registered for. A client registered without scopes is
// unrestricted.
func PermitScope(client domain.Client, requested scope.Set) error {
	allowed := scope.FromSlice(client.Scopes)
	if !allowed.IsEmpty() && !requested.SubsetOf(allowed) {
		return ErrInvalidScope
	}
	return nil
}
