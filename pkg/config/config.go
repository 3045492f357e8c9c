package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/kitobxon.yaml"
)

type Config struct {
	// Server
	ServerHost         string        `koanf:"server_host"`
	ServerPort         int           `koanf:"server_port"`
	RequestTimeout     time.Duration `koanf:"request_timeout"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	EnableTestRoutes   bool          `koanf:"enable_test_routes"`

	// Database
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`

	// Identity provider. An empty secret disables bearer token checks.
	IdentityJWTSecret string        `koanf:"identity_jwt_secret"`
	IdentityIssuer    string        `koanf:"identity_issuer"`
	IdentityAudience  string        `koanf:"identity_audience"`
	IdentityLeeway    time.Duration `koanf:"identity_leeway"`

	// Catalog cache. An empty address disables caching.
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`

	// Avatar blob store. An empty endpoint disables uploads.
	BlobEndpoint  string `koanf:"blob_endpoint"`
	BlobAccessKey string `koanf:"blob_access_key"`
	BlobSecretKey string `koanf:"blob_secret_key"`
	BlobBucket    string `koanf:"blob_bucket"`
	BlobUseSSL    bool   `koanf:"blob_use_ssl"`
	BlobPublicURL string `koanf:"blob_public_url"`
}

func defaultConfig() *Config {
	return &Config{
		ServerHost:                "0.0.0.0",
		ServerPort:                3689,
		RequestTimeout:            10 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		DatabaseBusyTimeout:       5 * time.Second,
		IdentityLeeway:            30 * time.Second,
		CacheTTL:                  5 * time.Minute,
		BlobBucket:                "images",
	}
}

// New loads the configuration from the YAML file named by CONFIG_FILE (if it
// exists) and then overlays environment variables, e.g. DATABASE_FILE_PATH
// overrides database_file_path.
func New() (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	keys := knownKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := keys[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validateRequired(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config suitable for tests with an in-memory database.
func NewForTest() *Config {
	cfg := defaultConfig()
	cfg.ServerHost = "127.0.0.1"
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	return cfg
}

// knownKeys returns the set of koanf keys declared on Config so that
// unrelated environment variables are ignored.
func knownKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		keys[keyFor(t.Field(i))] = struct{}{}
	}
	return keys
}

func keyFor(f reflect.StructField) string {
	if tag := f.Tag.Get("koanf"); tag != "" {
		return tag
	}
	return strcase.ToSnake(f.Name)
}

func validateRequired(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("required") != "true" {
			continue
		}
		if v.Field(i).IsZero() {
			key := keyFor(f)
			return errors.Errorf("missing required config: set %s or %s in the config file", strings.ToUpper(key), key)
		}
	}
	return nil
}
