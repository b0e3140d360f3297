package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageBackendR2       = "r2"
	StorageBackendMinio    = "minio"
	StorageBackendSupabase = "supabase"
)

type Config struct {
	// Supabase
	SupabaseURL           string `envconfig:"SUPABASE_URL"`
	SupabaseAnonKey       string `envconfig:"SUPABASE_ANON_KEY"`
	SupabaseStorageBucket string `envconfig:"SUPABASE_STORAGE_BUCKET" default:"photos"`

	// Database (direct connection, migrations only)
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Object storage
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"r2"`

	R2AccountID       string `envconfig:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID     string `envconfig:"CLOUDFLARE_ACCESS_KEY_ID"`
	R2SecretAccessKey string `envconfig:"CLOUDFLARE_SECRET_ACCESS_KEY"`
	R2BucketName      string `envconfig:"CLOUDFLARE_BUCKET_NAME"`
	R2PublicURL       string `envconfig:"CLOUDFLARE_PUBLIC_URL"`
	R2Endpoint        string `envconfig:"CLOUDFLARE_R2_ENDPOINT"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"photos"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinioPublicURL string `envconfig:"MINIO_PUBLIC_URL"`

	// Media
	MediaAllowedHosts []string      `envconfig:"MEDIA_ALLOWED_HOSTS"`
	ProxyTimeout      time.Duration `envconfig:"PROXY_TIMEOUT" default:"10s"`
	MaxUploadBytes    int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	// Auth
	ClerkJWKSURL       string `envconfig:"CLERK_JWKS_URL"`
	ClerkWebhookSecret string `envconfig:"CLERK_WEBHOOK_SECRET"`
	AuthJWTSecret      string `envconfig:"AUTH_JWT_SECRET"`

	// Optional infrastructure
	RedisURL    string `envconfig:"REDIS_URL"`
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`

	// Server
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// Missing .env is fine, production sets real environment variables.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if c.ClerkJWKSURL == "" && c.AuthJWTSecret == "" {
		return fmt.Errorf("CLERK_JWKS_URL or AUTH_JWT_SECRET is required")
	}
	if c.ProxyTimeout <= 0 {
		return fmt.Errorf("PROXY_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	switch c.StorageBackend {
	case StorageBackendR2:
		return requireAll(map[string]string{
			"CLOUDFLARE_ACCOUNT_ID":        c.R2AccountID,
			"CLOUDFLARE_ACCESS_KEY_ID":     c.R2AccessKeyID,
			"CLOUDFLARE_SECRET_ACCESS_KEY": c.R2SecretAccessKey,
			"CLOUDFLARE_BUCKET_NAME":       c.R2BucketName,
			"CLOUDFLARE_PUBLIC_URL":        c.R2PublicURL,
		})
	case StorageBackendMinio:
		return requireAll(map[string]string{
			"MINIO_ENDPOINT":   c.MinioEndpoint,
			"MINIO_ACCESS_KEY": c.MinioAccessKey,
			"MINIO_SECRET_KEY": c.MinioSecretKey,
			"MINIO_BUCKET":     c.MinioBucket,
			"MINIO_PUBLIC_URL": c.MinioPublicURL,
		})
	case StorageBackendSupabase:
		if c.SupabaseStorageBucket == "" {
			return fmt.Errorf("SUPABASE_STORAGE_BUCKET is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
}

// PublicBaseURL is the URL prefix under which uploaded objects are publicly readable.
func (c *Config) PublicBaseURL() string {
	switch c.StorageBackend {
	case StorageBackendMinio:
		return NormalizeBaseURL(c.MinioPublicURL)
	case StorageBackendSupabase:
		return NormalizeBaseURL(c.SupabaseURL) + "/storage/v1/object/public/" + c.SupabaseStorageBucket
	default:
		return NormalizeBaseURL(c.R2PublicURL)
	}
}

// R2EndpointURL returns the S3 API endpoint derived from the account id unless overridden.
func (c *Config) R2EndpointURL() string {
	if c.R2Endpoint != "" {
		return NormalizeBaseURL(c.R2Endpoint)
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

// NormalizeBaseURL adds a missing https scheme and drops trailing slashes.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

func requireAll(values map[string]string) error {
	missing := make([]string, 0)
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%s is required", strings.Join(missing, ", "))
}

