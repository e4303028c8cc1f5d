package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func envFunc(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestConfig(t *testing.T) {
	t.Run("defaults need only a secret", func(t *testing.T) {
		c := NewConfig()
		require.Error(t, c.Validate(), "secret is required")

		c.Secret = testSecret
		require.NoError(t, c.Validate())
		require.Equal(t, "tabkeeper", c.Issuer)
		require.Equal(t, "HS256", c.Algorithm)
		require.Equal(t, 15*time.Minute, c.AccessTTL)
		require.Equal(t, 5*time.Minute, c.CodeTTL)
		require.Equal(t, " ", c.ScopeDelimiter)
		require.Equal(t, 8080, c.Port)
	})

	t.Run("load env", func(t *testing.T) {
		c := NewConfig()
		err := c.LoadEnv(envFunc(map[string]string{
			"AUTH_ISSUER":           "bar",
			"AUTH_SECRET":           testSecret,
			"AUTH_ALGORITHM":        "HS512",
			"AUTH_ACCESS_TTL":       "60",
			"AUTH_REFRESH_TTL":      "2h",
			"AUTH_CODE_TTL":         "30",
			"AUTH_BOOTSTRAP_SCOPES": "a:read, b:write",
			"PORT":                  "9090",
			"HOUSEKEEPING_INTERVAL": "5m",
		}))
		require.NoError(t, err)

		require.Equal(t, "bar", c.Issuer)
		require.Equal(t, testSecret, c.Secret)
		require.Equal(t, "HS512", c.Algorithm)
		require.Equal(t, time.Minute, c.AccessTTL)
		require.Equal(t, 2*time.Hour, c.RefreshTTL)
		require.Equal(t, 30*time.Second, c.CodeTTL)
		require.Equal(t, []string{"a:read", "b:write"}, c.BootstrapScopes)
		require.Equal(t, 9090, c.Port)
		require.Equal(t, 5*time.Minute, c.HousekeepingInterval)
		require.NoError(t, c.Validate())
	})

	t.Run("bad env values are all reported", func(t *testing.T) {
		c := NewConfig()
		err := c.LoadEnv(envFunc(map[string]string{
			"PORT":            "eighty",
			"AUTH_ACCESS_TTL": "soon",
		}))
		require.ErrorContains(t, err, "PORT")
		require.ErrorContains(t, err, "AUTH_ACCESS_TTL")
		require.Equal(t, 8080, c.Port)
	})

	t.Run("dotenv", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
			[]byte("AUTH_SECRET="+testSecret+"\nLOG_LEVEL=debug\n"), 0o600))

		c := NewConfig()
		require.NoError(t, c.LoadDotEnv(func() (string, error) { return dir, nil }))
		require.Equal(t, testSecret, c.Secret)
		require.Equal(t, "debug", c.LogLevel)
	})

	t.Run("missing dotenv is fine", func(t *testing.T) {
		c := NewConfig()
		require.NoError(t, c.LoadDotEnv(func() (string, error) { return t.TempDir(), nil }))
		require.Empty(t, c.Secret)
	})

	t.Run("parse flags", func(t *testing.T) {
		tests := []struct {
			name  string
			flags []string
		}{
			{
				name:  "short",
				flags: []string{"-p", "9000", "-l", "warn", "-d", "/tmp/x.db", "-e", "prod"},
			},
			{
				name:  "long",
				flags: []string{"--port", "9000", "--log-level", "warn", "--database", "/tmp/x.db", "--env", "prod"},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := NewConfig()
				require.NoError(t, c.ParseFlags(tt.flags))
				require.Equal(t, 9000, c.Port)
				require.Equal(t, "warn", c.LogLevel)
				require.Equal(t, "/tmp/x.db", c.DatabaseFile)
				require.Equal(t, "prod", c.Env)
			})
		}

		require.Error(t, NewConfig().ParseFlags([]string{"--secret", testSecret}),
			"the secret is not a flag")
	})

	t.Run("validate", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(c *Config)
			field  string
		}{
			{"short secret", func(c *Config) { c.Secret = "short" }, "Secret"},
			{"asymmetric algorithm", func(c *Config) { c.Algorithm = "RS256" }, "Algorithm"},
			{"refresh not longer than access", func(c *Config) { c.RefreshTTL = c.AccessTTL }, "RefreshTTL"},
			{"zero code ttl", func(c *Config) { c.CodeTTL = 0 }, "CodeTTL"},
			{"bad port", func(c *Config) { c.Port = 70000 }, "Port"},
			{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LogFormat"},
			{"empty bootstrap scope", func(c *Config) { c.BootstrapScopes = []string{""} }, "BootstrapScopes"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := NewConfig()
				c.Secret = testSecret
				tt.mutate(c)

				err := c.Validate()
				require.Error(t, err)
				require.True(t, strings.Contains(err.Error(), tt.field), err.Error())
			})
		}
	})
}
