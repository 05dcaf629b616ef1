package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Metadata   MetadataConfig   `mapstructure:"metadata"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	Env             string        `mapstructure:"env"`  // local, test, dev, prod
	PathPrefix      string        `mapstructure:"path_prefix"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// IsProduction reports whether error details must be hidden from clients.
func (c ServerConfig) IsProduction() bool {
	return c.Env == "prod"
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"pool_size"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ConnectionString returns a lib/pq keyword/value DSN.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// URL returns the postgres:// form used by the migration runner.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Leeway time.Duration `mapstructure:"leeway"`
}

type CacheConfig struct {
	Backend    string `mapstructure:"backend"` // redis or memory
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	MemorySize int    `mapstructure:"memory_size"`
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"limit_default"`
	MaxLimit     int `mapstructure:"limit_max"`
}

type MetadataConfig struct {
	// ValidateValues enables JSON Schema checks of metadata values on entity writes.
	ValidateValues bool `mapstructure:"validate_values"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Opt is a single configuration key. Keys map to environment variables by
// upper-casing and replacing "." with "_" (db.port is DB_PORT) unless Env
// names the variable explicitly.
type Opt struct {
	Key     string
	Env     string
	Default any
	Desc    string
	NoFlag  bool // secrets stay off the command line
}

// Opts lists every configuration key with its default.
var Opts = []Opt{
	{Key: "server.port", Default: "8080", Desc: "HTTP listen port"},
	{Key: "server.mode", Env: "GIN_MODE", Default: "release", Desc: "gin mode (debug, release, test)"},
	{Key: "server.env", Env: "ENV", Default: "local", Desc: "deployment environment; prod hides error details"},
	{Key: "server.path_prefix", Env: "PATH_PREFIX", Default: "/api", Desc: "prefix for every API route"},
	{Key: "server.read_timeout", Default: 30 * time.Second, Desc: "HTTP read timeout"},
	{Key: "server.write_timeout", Default: 60 * time.Second, Desc: "HTTP write timeout"},
	{Key: "server.shutdown_timeout", Default: 10 * time.Second, Desc: "graceful shutdown timeout"},

	{Key: "db.host", Default: "localhost", Desc: "postgres host"},
	{Key: "db.port", Default: 5432, Desc: "postgres port"},
	{Key: "db.user", Default: "postgres", Desc: "postgres user"},
	{Key: "db.password", Default: "", NoFlag: true},
	{Key: "db.name", Default: "", Desc: "postgres database (required)"},
	{Key: "db.sslmode", Default: "disable", Desc: "postgres sslmode"},
	{Key: "db.pool_size", Default: 10, Desc: "maximum open connections"},
	{Key: "db.migrate_on_start", Default: false, Desc: "apply pending migrations before serving"},
	{Key: "db.conn_max_lifetime", Default: 5 * time.Minute, Desc: "maximum connection lifetime"},

	{Key: "jwt.secret", Default: "", NoFlag: true},
	{Key: "jwt.leeway", Default: 30 * time.Second, Desc: "allowed clock skew for token expiry"},

	{Key: "cache.backend", Default: "redis", Desc: "translation cache backend (redis, memory)"},
	{Key: "cache.addr", Default: "localhost:6379", Desc: "redis address"},
	{Key: "cache.password", Default: "", NoFlag: true},
	{Key: "cache.db", Default: 0, Desc: "redis database number"},
	{Key: "cache.memory_size", Default: 256, Desc: "entries kept by the memory backend"},

	{Key: "pagination.limit_default", Default: 100, Desc: "page size when limit is absent"},
	{Key: "pagination.limit_max", Default: 1000, Desc: "largest accepted page size"},

	{Key: "metadata.validate_values", Default: false, Desc: "check metadata values against the property schema on writes"},

	{Key: "log.level", Default: "info", Desc: "log level"},
	{Key: "log.format", Default: "json", Desc: "log format (json, console)"},
}

// NewViper returns a viper instance holding every default and environment
// binding in Opts.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, o := range Opts {
		v.SetDefault(o.Key, o.Default)
		if o.Env != "" {
			_ = v.BindEnv(o.Key, o.Env)
		}
	}
	return v
}

// BindFlags registers a flag for every non-secret option on fs and binds it
// into v. A flag that is set on the command line wins over the environment.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, o := range Opts {
		if o.NoFlag {
			continue
		}
		name := flagName(o.Key)
		switch d := o.Default.(type) {
		case string:
			fs.String(name, d, o.Desc)
		case int:
			fs.Int(name, d, o.Desc)
		case bool:
			fs.Bool(name, d, o.Desc)
		case time.Duration:
			fs.Duration(name, d, o.Desc)
		default:
			return fmt.Errorf("config: unsupported default %T for %s", o.Default, o.Key)
		}
		if err := v.BindPFlag(o.Key, fs.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// flagName is the command-line spelling of key: db.pool_size is db-pool-size.
func flagName(key string) string {
	return strings.NewReplacer(".", "-", "_", "-").Replace(key)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME (--db-name) is required")
	}
	switch c.Cache.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("CACHE_BACKEND: unsupported backend %q (redis, memory)", c.Cache.Backend)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT: unsupported format %q (json, console)", c.Log.Format)
	}
	if c.Cache.MemorySize <= 0 {
		return fmt.Errorf("CACHE_MEMORY_SIZE must be positive, got %d", c.Cache.MemorySize)
	}
	if c.Pagination.MaxLimit <= 0 || c.Pagination.DefaultLimit <= 0 || c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf("pagination limits invalid: default=%d max=%d", c.Pagination.DefaultLimit, c.Pagination.MaxLimit)
	}
	return nil
}
