// Package config resolves mapql settings from defaults, a .mapql.yaml file,
// .env files, MAPQL_* environment variables and command-line flags, in
// increasing priority.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/mapql/internal/sqlgen"
	"github.com/roach88/mapql/internal/store"
)

// EnvPrefix prefixes every environment variable mapql reads.
const EnvPrefix = "MAPQL"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Keys of the settings. Flags of the same name are bound to them.
const (
	KeyDriver  = "driver"
	KeyDSN     = "dsn"
	KeyDialect = "dialect"
	KeyVerbose = "verbose"
	KeyFormat  = "format"
)

var keys = []string{KeyDriver, KeyDSN, KeyDialect, KeyVerbose, KeyFormat}

// Config is the resolved configuration.
type Config struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	Dialect string `mapstructure:"dialect"` // empty: derived from Driver
	Verbose bool   `mapstructure:"verbose"`
	Format  string `mapstructure:"format"`

	// File is the config file that was read, or "".
	File string `mapstructure:"-"`
}

// SQLDialect returns the configured dialect, falling back to the driver's.
func (c *Config) SQLDialect() (sqlgen.Dialect, error) {
	if c.Dialect != "" {
		return sqlgen.DialectFor(c.Dialect)
	}
	return sqlgen.DialectFor(c.Driver)
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	switch store.NormalizeDriver(c.Driver) {
	case store.DriverSQLite, store.DriverMySQL, store.DriverPostgres:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if _, err := c.SQLDialect(); err != nil {
		return err
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unsupported output format %q (want text or json)", c.Format)
	}
	return nil
}

// Loader resolves a Config.
type Loader struct {
	fs      afero.Fs
	workDir string
	home    string
	file    string
}

// Option configures a Loader.
type Option func(*Loader)

// WithFs reads config and .env files from fs. Default: the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(l *Loader) { l.fs = fs }
}

// WithWorkDir sets the directory searched first for .mapql.yaml and .env
// files. Default: ".".
func WithWorkDir(dir string) Option {
	return func(l *Loader) { l.workDir = dir }
}

// WithHome overrides the home directory. Default: homedir.Dir().
func WithHome(dir string) Option {
	return func(l *Loader) { l.home = dir }
}

// WithConfigFile reads exactly this file instead of searching. A missing
// file is an error.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.file = path }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{workDir: "."}
	for _, opt := range opts {
		opt(l)
	}
	if l.fs == nil {
		l.fs = afero.NewOsFs()
	}
	return l
}

// Load resolves the configuration. flags may be nil; otherwise every flag
// named like a key is bound to it.
func (l *Loader) Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(l.fs)

	v.SetDefault(KeyDriver, store.DriverSQLite)
	v.SetDefault(KeyDSN, "mapql.db")
	v.SetDefault(KeyDialect, "")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyFormat, FormatText)

	if err := l.readConfigFile(v); err != nil {
		return nil, err
	}

	dotenv, err := l.readDotenv()
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		if err := v.MergeConfigMap(dotenv); err != nil {
			return nil, fmt.Errorf("merging .env values: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range keys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", key, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Driver = store.NormalizeDriver(cfg.Driver)
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *Loader) readConfigFile(v *viper.Viper) error {
	if l.file != "" {
		v.SetConfigFile(l.file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", l.file, err)
		}
		return nil
	}

	v.SetConfigName(".mapql")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.workDir)
	if home, err := l.homeDir(); err == nil {
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "mapql"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// readDotenv returns MAPQL_* values from .env and .env.local, the latter
// winning, keyed by setting name.
func (l *Loader) readDotenv() (map[string]any, error) {
	out := map[string]any{}
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(l.workDir, name)
		data, err := afero.ReadFile(l.fs, path)
		if err != nil {
			continue
		}
		vars, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		for k, val := range vars {
			key, ok := strings.CutPrefix(k, EnvPrefix+"_")
			if !ok {
				continue
			}
			out[strings.ToLower(key)] = val
		}
	}
	return out, nil
}

func (l *Loader) homeDir() (string, error) {
	if l.home != "" {
		return l.home, nil
	}
	return homedir.Dir()
}
