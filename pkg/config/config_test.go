package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useConfigFile points CONFIG_FILE at a temp file holding yaml, or at a
// missing path when yaml is empty.
func useConfigFile(t *testing.T, yaml string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kitobxon.yaml")
	if yaml != "" {
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	}
	t.Setenv("CONFIG_FILE", path)
}

func TestNew(t *testing.T) {
	t.Run("requires a database path", func(t *testing.T) {
		useConfigFile(t, "")
		t.Setenv("DATABASE_FILE_PATH", "")

		cfg, err := New()
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "missing required config: set DATABASE_FILE_PATH or database_file_path")
	})

	t.Run("fills defaults", func(t *testing.T) {
		useConfigFile(t, "")
		t.Setenv("DATABASE_FILE_PATH", "/var/lib/kitobxon/app.db")

		cfg, err := New()
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", cfg.ServerHost)
		assert.Equal(t, 3689, cfg.ServerPort)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 5, cfg.DatabaseConnectRetryCount)
		assert.Equal(t, 2*time.Second, cfg.DatabaseConnectRetryDelay)
		assert.Equal(t, 5, cfg.DatabaseMaxRetries)
		assert.Equal(t, 30*time.Second, cfg.IdentityLeeway)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
		assert.Equal(t, "images", cfg.BlobBucket)
		assert.Empty(t, cfg.RedisAddr)
		assert.Empty(t, cfg.IdentityJWTSecret)
		assert.False(t, cfg.EnableTestRoutes)
	})

	t.Run("reads the yaml file", func(t *testing.T) {
		useConfigFile(t, `
database_file_path: /data/kitobxon.db
server_port: 8080
database_debug: true
redis_addr: localhost:6379
cache_ttl: 30s
identity_issuer: https://id.kitobxon.uz
blob_use_ssl: true
`)
		cfg, err := New()
		require.NoError(t, err)
		assert.Equal(t, "/data/kitobxon.db", cfg.DatabaseFilePath)
		assert.Equal(t, 8080, cfg.ServerPort)
		assert.True(t, cfg.DatabaseDebug)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, 30*time.Second, cfg.CacheTTL)
		assert.Equal(t, "https://id.kitobxon.uz", cfg.IdentityIssuer)
		assert.True(t, cfg.BlobUseSSL)
	})

	t.Run("environment wins over the file", func(t *testing.T) {
		useConfigFile(t, "database_file_path: /data/from-file.db\nserver_port: 8080\n")
		t.Setenv("DATABASE_FILE_PATH", "/data/from-env.db")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("IDENTITY_JWT_SECRET", "s3cret")

		cfg, err := New()
		require.NoError(t, err)
		assert.Equal(t, "/data/from-env.db", cfg.DatabaseFilePath)
		assert.Equal(t, 9090, cfg.ServerPort)
		assert.Equal(t, "s3cret", cfg.IdentityJWTSecret)
	})
}

func TestNewForTest(t *testing.T) {
	cfg := NewForTest()
	assert.Equal(t, ":memory:", cfg.DatabaseFilePath)
	assert.Equal(t, "127.0.0.1", cfg.ServerHost)
	assert.Equal(t, 1, cfg.DatabaseConnectRetryCount)
	assert.Zero(t, cfg.DatabaseConnectRetryDelay)
}

func TestKnownKeys(t *testing.T) {
	keys := knownKeys()
	for _, k := range []string{"database_file_path", "server_port", "identity_jwt_secret", "blob_public_url"} {
		assert.Contains(t, keys, k)
	}
	assert.NotContains(t, keys, "path")
	assert.NotContains(t, keys, "home")
}
