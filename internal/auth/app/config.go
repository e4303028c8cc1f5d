package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/tabkeeper/internal/auth/service"
	"github.com/aussiebroadwan/tabkeeper/pkg/jwtx"
	"github.com/aussiebroadwan/tabkeeper/pkg/scope"
)

type Config struct {
	Issuer    string `validate:"required"`                // issuer claim for tokens (default: tabkeeper)
	Secret    string `validate:"required,min=32"`         // HMAC key for tokens and codes
	Algorithm string `validate:"oneof=HS256 HS384 HS512"` // token signing algorithm (default: HS256)

	AccessTTL      time.Duration `validate:"gt=0"`              // access token lifetime (default: 15m)
	RefreshTTL     time.Duration `validate:"gtfield=AccessTTL"` // refresh token lifetime (default: 7d)
	CodeTTL        time.Duration `validate:"gt=0"`              // authorization code lifetime (default: 5m)
	ScopeDelimiter string        `validate:"required"`          // scope separator on the wire (default: " ")

	DatabaseFile string `validate:"required"` // path to SQLite database file (default: ./tabkeeper.db)
	PepperFile   string `validate:"required"` // path to the password pepper (default: ./pepper)

	BootstrapUsername string   `validate:"required,min=3,max=32"` // first admin user (default: admin)
	BootstrapPassword string   // generated and logged once when empty
	BootstrapScopes   []string `validate:"dive,required"` // scopes of the first client

	Env                  string        `validate:"oneof=dev staging prod"`      // (default: dev)
	LogLevel             string        `validate:"oneof=debug info warn error"` // (default: info)
	LogFormat            string        `validate:"oneof=json text"`             // (default: json)
	Port                 int           `validate:"min=1,max=65535"`             // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `validate:"gt=0"`                        // (default: 10s)
	HousekeepingInterval time.Duration `validate:"gt=0"`                        // (default: 1m)

	LogWriter io.Writer // defaults to stdout
}

// NewConfig returns the defaults every other layer overrides.
func NewConfig() *Config {
	return &Config{
		Issuer:               "tabkeeper",
		Algorithm:            jwtx.AlgorithmHS256,
		AccessTTL:            jwtx.DefaultAccessTokenTTL,
		RefreshTTL:           jwtx.DefaultRefreshTokenTTL,
		CodeTTL:              service.DefaultCodeTTL,
		ScopeDelimiter:       scope.DefaultDelimiter,
		DatabaseFile:         "tabkeeper.db",
		PepperFile:           "pepper",
		BootstrapUsername:    "admin",
		BootstrapScopes:      []string{"admin:read", "admin:write", "profile:read"},
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Minute,
	}
}

// LoadConfig layers defaults, a .env file in the working directory, the
// process environment and finally args, then validates the result.
func LoadConfig(args []string) (*Config, error) {
	c := NewConfig()
	if err := c.LoadDotEnv(os.Getwd); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := c.LoadEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.ParseFlags(args); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDotEnv reads .env from the working directory. A missing file is not
// an error.
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))
	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string { return envMap[key] })
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

// LoadEnv applies every non-empty variable getenv returns. Values that
// don't parse are reported together.
func (c *Config) LoadEnv(getenv func(string) string) error {
	var errs []error
	report := func(key string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", key, err))
	}

	setString := func(o *string) func(string, string) {
		return func(_, value string) { *o = value }
	}
	setInt := func(o *int) func(string, string) {
		return func(key, value string) {
			n, err := strconv.Atoi(value)
			if err != nil {
				report(key, err)
				return
			}
			*o = n
		}
	}
	setDuration := func(o *time.Duration, unit time.Duration) func(string, string) {
		return func(key, value string) {
			d, err := parseDuration(value, unit)
			if err != nil {
				report(key, err)
				return
			}
			*o = d
		}
	}
	setList := func(o *[]string) func(string, string) {
		return func(_, value string) {
			*o = strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
		}
	}

	envMap := map[string]func(string, string){
		"AUTH_ISSUER":             setString(&c.Issuer),
		"AUTH_SECRET":             setString(&c.Secret),
		"AUTH_ALGORITHM":          setString(&c.Algorithm),
		"AUTH_ACCESS_TTL":         setDuration(&c.AccessTTL, time.Second),
		"AUTH_REFRESH_TTL":        setDuration(&c.RefreshTTL, time.Second),
		"AUTH_CODE_TTL":           setDuration(&c.CodeTTL, time.Second),
		"AUTH_SCOPE_DELIMITER":    setString(&c.ScopeDelimiter),
		"AUTH_DATABASE_FILE":      setString(&c.DatabaseFile),
		"AUTH_PEPPER_FILE":        setString(&c.PepperFile),
		"AUTH_BOOTSTRAP_USERNAME": setString(&c.BootstrapUsername),
		"AUTH_BOOTSTRAP_PASSWORD": setString(&c.BootstrapPassword),
		"AUTH_BOOTSTRAP_SCOPES":   setList(&c.BootstrapScopes),
		"ENV":                     setString(&c.Env),
		"LOG_LEVEL":               setString(&c.LogLevel),
		"LOG_FORMAT":              setString(&c.LogFormat),
		"PORT":                    setInt(&c.Port),
		"SHUTDOWN_GRACE_PERIOD":   setDuration(&c.ShutdownGracePeriod, time.Second),
		"HOUSEKEEPING_INTERVAL":   setDuration(&c.HousekeepingInterval, time.Second),
	}

	for key, parseFn := range envMap {
		if value := getenv(key); value != "" {
			parseFn(key, value)
		}
	}
	return errors.Join(errs...)
}

// ParseFlags applies command-line overrides. The secret has no flag so it
// never shows up in a process listing.
func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("tabkeeper", pflag.ContinueOnError)

	fs.StringVar(&c.Issuer, "issuer", c.Issuer, "Issuer claim for tokens")
	fs.StringVar(&c.Algorithm, "algorithm", c.Algorithm, "Signing algorithm (HS256, HS384, HS512)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime")
	fs.DurationVar(&c.CodeTTL, "code-ttl", c.CodeTTL, "Authorization code lifetime")
	fs.StringVarP(&c.DatabaseFile, "database", "d", c.DatabaseFile, "SQLite database file")
	fs.StringVar(&c.PepperFile, "pepper-file", c.PepperFile, "Password pepper file")
	fs.StringVarP(&c.Env, "env", "e", c.Env, "Environment (dev, staging, prod)")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format (json, text)")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "HTTP server port")

	return fs.Parse(args)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every option that is missing or out of range.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("config: %s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.Join(errs...)
}

// parseDuration accepts a Go duration ("90s", "1h") or a bare number of
// unit.
func parseDuration(value string, unit time.Duration) (time.Duration, error) {
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * unit, nil
	}
	return time.ParseDuration(value)
}
