package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabkeeper/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newBootstrapService(t *testing.T) (*BootstrapService, *cryptox.Hasher) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	hasher := cryptox.NewHasher("test-pepper")
	return &BootstrapService{Store: st, Hasher: hasher}, hasher
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	svc, hasher := newBootstrapService(t)

	done, err := svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	res, err := svc.Bootstrap(ctx, domain.BootstrapData{
		AdminUsername: "admin",
		ClientName:    "tabkeeper-admin",
		ClientScopes:  []string{"admin:read", "admin:write"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AdminPassword)
	require.NotEmpty(t, res.ClientSecret)

	user, err := svc.Store.Users().GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, res.AdminUserID, user.ID)
	require.NotEqual(t, res.AdminPassword, user.PasswordHash)
	require.True(t, hasher.Match(res.AdminPassword, user.PasswordHash))

	client, err := svc.Store.Clients().GetClientByID(ctx, res.ClientID)
	require.NoError(t, err)
	require.True(t, client.Protected)
	require.True(t, client.Confidential())
	require.ElementsMatch(t, []string{"admin:read", "admin:write"}, client.Scopes)
	require.True(t, hasher.Match(res.ClientSecret, client.SecretHash))

	done, err = svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.True(t, done)

	_, err = svc.Bootstrap(ctx, domain.BootstrapData{AdminUsername: "other", ClientName: "x"})
	require.ErrorIs(t, err, ErrBootstrapAlready)
}

func TestBootstrapKeepsGivenPassword(t *testing.T) {
	ctx := context.Background()
	svc, hasher := newBootstrapService(t)

	res, err := svc.Bootstrap(ctx, domain.BootstrapData{
		AdminUsername: "admin",
		AdminPassword: "correct horse",
		ClientName:    "cli",
	})
	require.NoError(t, err)
	require.Equal(t, "correct horse", res.AdminPassword)

	user, err := svc.Store.Users().GetUserByID(ctx, res.AdminUserID)
	require.NoError(t, err)
	require.True(t, hasher.Match("correct horse", user.PasswordHash))
}
