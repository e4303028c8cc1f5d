package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the credential records the
// token service checks against. Concrete drivers implement it and expose
// sub-repositories so a transaction can't be opened inside another.
type Store interface {
	Users() Users
	Clients() Clients

	ApplyMigrations() error

	// WithTx runs fn inside a read/write transaction. fn returning an error
	// rolls the transaction back; nil commits it.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is the transaction scoped view handed to WithTx callbacks.
type Tx interface {
	Users() Users
	Clients() Clients
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during the password grant.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Clients interface {
	// GetClientByID fetches a client for the client_credentials and
	// authorization_code grants.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client; secret_hash is empty for public clients.
	CreateClient(ctx context.Context, c domain.Client) error

	UpdateClientScopes(ctx context.Context, clientID string, scopes []string) error

	// DeleteClient refuses protected clients with ErrNotFound.
	DeleteClient(ctx context.Context, clientID string) error

	// IsEmpty returns true if there are no clients.
	IsEmpty(ctx context.Context) (bool, error)
}
