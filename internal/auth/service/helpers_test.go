package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/domain"
	"github.com/aussiebroadwan/tabkeeper/pkg/clock"
	"github.com/aussiebroadwan/tabkeeper/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "tabkeeper-test"

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	testStart  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

// fakeUsers maps username to the stored hash.
type fakeUsers map[string]string

func (f fakeUsers) PasswordHash(_ context.Context, username string) (string, bool, error) {
	h, ok := f[username]
	return h, ok, nil
}

type fakeClients map[string]domain.Client

func (f fakeClients) Client(_ context.Context, id string) (domain.Client, bool, error) {
	c, ok := f[id]
	return c, ok, nil
}

// plainMatcher treats the stored hash as the plaintext.
type plainMatcher struct{}

func (plainMatcher) Match(candidate, hash string) bool { return candidate == hash }

type fixture struct {
	clock  *clock.Mock
	codec  *jwtx.Codec
	creds  *Credentials
	tokens *TokenService
	codes  *AuthorizeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := jwtx.NewCodec(testSecret, jwtx.AlgorithmHS256)
	require.NoError(t, err)

	clk := clock.NewMock(testStart)
	creds := &Credentials{
		Users: fakeUsers{
			"alice": "wonderland",
			"bob":   "builder",
		},
		Clients: fakeClients{
			"web": {ID: "web", Name: "Web", SecretHash: "web-secret", Scopes: []string{"read", "write"}},
			"cli": {ID: "cli", Name: "CLI"},
		},
		Matcher: plainMatcher{},
	}
	codes := &AuthorizeService{
		Codec:       codec,
		Clock:       clk,
		Credentials: creds,
		CodeTTL:     5 * time.Minute,
	}
	tokens := &TokenService{
		Codec:       codec,
		Clock:       clk,
		Credentials: creds,
		Codes:       codes,
		AccessTTL:   15 * time.Minute,
		RefreshTTL:  time.Hour,
	}

	return &fixture{clock: clk, codec: codec, creds: creds, tokens: tokens, codes: codes}
}

func (f *fixture) issueAlice(t *testing.T, sc string) *domain.TokenPair {
	t.Helper()
	pair, err := f.tokens.IssueByPassword(context.Background(), testIssuer, "alice", EncodePassword("wonderland"), sc)
	require.NoError(t, err)
	return pair
}
