package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_NAME", "catalog")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.PathPrefix)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "catalog", cfg.Database.Name)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 256, cfg.Cache.MemorySize)
	assert.Equal(t, 100, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 1000, cfg.Pagination.MaxLimit)
	assert.False(t, cfg.Metadata.ValidateValues)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Second, cfg.JWT.Leeway)
}

func TestLoad_Environment(t *testing.T) {
	setRequired(t)
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("ENV", "prod")
	t.Setenv("PATH_PREFIX", "/catalog")
	t.Setenv("DB_POOL_SIZE", "25")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1m")
	t.Setenv("PAGINATION_LIMIT_DEFAULT", "50")
	t.Setenv("METADATA_VALIDATE_VALUES", "true")

	cfg, err := Load(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, "/catalog", cfg.Server.PathPrefix)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 50, cfg.Pagination.DefaultLimit)
	assert.True(t, cfg.Metadata.ValidateValues)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_NAME", "catalog")

	_, err := Load(NewViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port", "DB_PORT", "five"},
		{"bool", "METADATA_VALIDATE_VALUES", "maybe"},
		{"duration", "SERVER_READ_TIMEOUT", "10"},
		{"backend", "CACHE_BACKEND", "memcached"},
		{"log format", "LOG_FORMAT", "xml"},
		{"pagination", "PAGINATION_LIMIT_DEFAULT", "5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load(NewViper())
			assert.Error(t, err)
		})
	}
}

func TestBindFlags(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CACHE_BACKEND", "redis")

	v := NewViper()
	fs := pflag.NewFlagSet("catalogd", pflag.ContinueOnError)
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--db-port=7000", "--cache-backend=memory", "--server-read-timeout=5s"}))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Database.Port)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	// unset flags fall back to the environment
	assert.Equal(t, "catalog", cfg.Database.Name)

	assert.Nil(t, fs.Lookup("jwt-secret"))
	assert.Nil(t, fs.Lookup("db-password"))
	assert.NotNil(t, fs.Lookup("db-pool-size"))
}

func TestDatabaseConfig_URL(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p@ss", Name: "catalog", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5433/catalog?sslmode=disable", c.URL())
	assert.Equal(t, "host=db port=5433 user=u password=p@ss dbname=catalog sslmode=disable", c.ConnectionString())
}
