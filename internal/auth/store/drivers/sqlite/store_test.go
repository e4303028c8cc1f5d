package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabkeeper/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestApplyMigrationsIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := st.Users()

	empty, err := users.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := domain.User{ID: idx.New().String(), Username: "alice", PasswordHash: "$argon2id$hash"}
	require.NoError(t, users.CreateUser(ctx, u))

	t.Run("lookup by username", func(t *testing.T) {
		got, err := users.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, "$argon2id$hash", got.PasswordHash)
		require.False(t, got.CreatedAt.IsZero())
	})

	t.Run("usernames ignore case", func(t *testing.T) {
		got, err := users.GetUserByUsername(ctx, "ALICE")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := users.CreateUser(ctx, domain.User{ID: idx.New().String(), Username: "alice", PasswordHash: "x"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := users.GetUserByUsername(ctx, "bob")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, users.UpdatePasswordHash(ctx, u.ID, "new-hash"))
		got, err := users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "new-hash", got.PasswordHash)

		require.ErrorIs(t, users.UpdatePasswordHash(ctx, "missing", "x"), store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, users.DeleteUser(ctx, u.ID))
		require.ErrorIs(t, users.DeleteUser(ctx, u.ID), store.ErrNotFound)

		empty, err := users.IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)
	})
}

func TestClients(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	clients := st.Clients()

	web := domain.Client{
		ID:         idx.New().String(),
		Name:       "web",
		SecretHash: "$argon2id$secret",
		Scopes:     []string{"read", "write"},
		Protected:  true,
	}
	cli := domain.Client{ID: idx.New().String(), Name: "cli"}
	require.NoError(t, clients.CreateClient(ctx, web))
	require.NoError(t, clients.CreateClient(ctx, cli))

	got, err := clients.GetClientByID(ctx, web.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"read", "write"}, got.Scopes)
	require.True(t, got.Protected)
	require.True(t, got.Confidential())

	public, err := clients.GetClientByID(ctx, cli.ID)
	require.NoError(t, err)
	require.Empty(t, public.Scopes)
	require.False(t, public.Confidential())

	list, err := clients.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, clients.UpdateClientScopes(ctx, cli.ID, []string{"read"}))
	public, err = clients.GetClientByID(ctx, cli.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"read"}, public.Scopes)

	require.ErrorIs(t, clients.DeleteClient(ctx, web.ID), store.ErrNotFound, "protected clients stay")
	require.NoError(t, clients.DeleteClient(ctx, cli.ID))

	_, err = clients.GetClientByID(ctx, cli.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Username: "ghost", PasswordHash: "x"}))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = st.Users().GetUserByUsername(ctx, "ghost")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Username: "carol", PasswordHash: "x"}); err != nil {
				return err
			}
			return tx.Clients().CreateClient(ctx, domain.Client{ID: idx.New().String(), Name: "carol-app"})
		})
		require.NoError(t, err)

		empty, err := st.Clients().IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})
}
