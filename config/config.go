// Package config loads dictionary configuration from a YAML file, the
// environment and command line flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/syssam/dbdict/dialect"
	"github.com/syssam/dbdict/dialect/sql/dict"
)

// EnvPrefix is the prefix of the environment variables read by Load.
// Nested keys are separated by a double underscore, e.g.
// DBDICT_OVERRIDES__BATCH_LIMIT.
const EnvPrefix = "DBDICT_"

// DefaultFiles are the config files looked up when none is given.
var DefaultFiles = []string{"dbdict.yaml", "dbdict.yml"}

// Config is the configuration of a dictionary and its connection.
type Config struct {
	// Dialect is the database product. Empty derives it from Driver.
	Dialect string `koanf:"dialect"`
	// Driver is the database/sql driver name. Empty derives it from Dialect.
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
	// Schema is the path of a schema file.
	Schema  string `koanf:"schema"`
	Verbose bool   `koanf:"verbose"`
	// Overrides are applied to the capabilities of the product.
	Overrides dict.Overrides `koanf:"overrides"`

	file string
}

// File returns the config file that was read, if any.
func (c *Config) File() string { return c.file }

// drivers maps products to the database/sql driver registered by the
// command line tool.
var drivers = map[string]string{
	dialect.Postgres: "pgx",
	dialect.MySQL:    "mysql",
	dialect.MariaDB:  "mysql",
	dialect.SQLite:   "sqlite",
}

// Load reads the configuration. Precedence, highest first: flags that were
// set, environment variables, the config file, defaults. An empty path
// looks up DefaultFiles in the working directory.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]any{
		"dialect": dialect.Generic,
		"verbose": false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	used := findFile(path)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.file = used
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps DBDICT_OVERRIDES__BATCH_LIMIT to overrides.batch_limit.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func findFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// normalize fills the dialect from the driver and the driver from the
// dialect, whichever is missing.
func (c *Config) normalize() error {
	if c.Driver != "" && (c.Dialect == "" || c.Dialect == dialect.Generic) {
		c.Dialect = dialect.Normalize(c.Driver)
	}
	c.Dialect = dialect.Normalize(c.Dialect)
	if c.Driver == "" {
		c.Driver = drivers[c.Dialect]
	}
	if _, err := dict.New(c.Dialect); err != nil {
		return fmt.Errorf("config: %w (known: %s)", err, strings.Join(dict.Products(), ", "))
	}
	return nil
}

// Dictionary returns the dictionary of the configured product with the
// configured overrides. Extra options are applied last.
func (c *Config) Dictionary(log *slog.Logger, opts ...dict.Option) (*dict.Dictionary, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	opts = append([]dict.Option{dict.WithLogger(log), dict.WithOverrides(c.Overrides)}, opts...)
	return dict.New(c.Dialect, opts...)
}
