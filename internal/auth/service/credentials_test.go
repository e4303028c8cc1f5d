package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabkeeper/pkg/cryptox"
	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
	"github.com/stretchr/testify/require"
)

func TestDecodePassword(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    string
		ok      bool
	}{
		{"raw", base64.RawURLEncoding.EncodeToString([]byte("p@ss?word")), "p@ss?word", true},
		{"padded", base64.URLEncoding.EncodeToString([]byte("p@ss?word")), "p@ss?word", true},
		{"empty", "", "", true},
		{"std alphabet", "+/+/", "", false},
		{"junk", "***", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodePassword(tt.encoded)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEncodePasswordRoundTrip(t *testing.T) {
	for _, plain := range []string{"hunter2", "ünïcødé", "with spaces and ?&="} {
		got, ok := DecodePassword(EncodePassword(plain))
		require.True(t, ok)
		require.Equal(t, plain, got)
	}
}

func TestAuthenticateClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	client, err := f.creds.AuthenticateClient(ctx, "web", "web-secret")
	require.NoError(t, err)
	require.Equal(t, "web", client.ID)

	for name, tc := range map[string]struct{ id, secret string }{
		"wrong secret":         {"web", "nope"},
		"missing secret":       {"web", ""},
		"unknown":              {"ghost", "x"},
		"public with a secret": {"cli", "anything"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.creds.AuthenticateClient(ctx, tc.id, tc.secret)
			require.ErrorIs(t, err, ErrInvalidClient)
		})
	}

	public, err := f.creds.AuthenticateClient(ctx, "cli", "")
	require.NoError(t, err)
	require.False(t, public.Confidential())
}

// TestCredentialsOverStore runs the lookups against a real database and a
// real hasher.
func TestCredentialsOverStore(t *testing.T) {
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	hasher := cryptox.NewHasher("test-pepper")
	passHash, err := hasher.Hash("wonderland")
	require.NoError(t, err)
	secretHash, err := hasher.Hash("web-secret")
	require.NoError(t, err)

	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: "u1", Username: "alice", PasswordHash: passHash}))
	require.NoError(t, st.Clients().CreateClient(ctx, domain.Client{ID: "web", Name: "Web", SecretHash: secretHash, Scopes: []string{"read"}}))

	creds := &Credentials{
		Users:   StoreUsers{Store: st},
		Clients: StoreClients{Store: st},
		Matcher: hasher,
	}

	require.NoError(t, creds.AuthenticateUser(ctx, "alice", EncodePassword("wonderland")))
	require.NoError(t, creds.AuthenticateUser(ctx, "ALICE", EncodePassword("wonderland")))
	require.ErrorIs(t, creds.AuthenticateUser(ctx, "alice", EncodePassword("Wonderland")), ErrInvalidCredentials)
	require.ErrorIs(t, creds.AuthenticateUser(ctx, "nobody", EncodePassword("wonderland")), ErrInvalidCredentials)

	client, err := creds.AuthenticateClient(ctx, "web", "web-secret")
	require.NoError(t, err)
	require.Equal(t, []string{"read"}, client.Scopes)

	_, err = creds.AuthenticateClient(ctx, "web", "wrong")
	require.ErrorIs(t, err, ErrInvalidClient)
}

func TestPermitScope(t *testing.T) {
	restricted := domain.Client{ID: "web", Scopes: []string{"read", "write"}}
	open := domain.Client{ID: "cli"}

	require.NoError(t, PermitScope(restricted, scope.Parse("READ", "")))
	require.NoError(t, PermitScope(restricted, scope.Set{}))
	require.ErrorIs(t, PermitScope(restricted, scope.Parse("read admin", "")), ErrInvalidScope)
	require.NoError(t, PermitScope(open, scope.Parse("admin", "")))
}
