package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BackendURL is the public base URL of this API, embedded into the
	// email verification redemption link.
	BackendURL string `env:"BACKEND_API_URL, default=http://localhost:8080"`
	// FrontendURL is the web client base URL, used in password reset links
	// and post-verification redirects.
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:3000"`

	JWTSecret          string `env:"JWT_SECRET"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET"`

	// AdminEmail/AdminPassword, when both set, seed a verified admin
	// account at startup if none exists.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
	S3    S3Config
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=account_api"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"MAIL_HOST, default=localhost"`
	Port     int    `env:"MAIL_PORT, default=587"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	From     string `env:"MAIL_FROM_ADDRESS, default=no-reply@localhost"`
}

type S3Config struct {
	Region        string `env:"S3_REGION,   default=us-east-1"`
	Bucket        string `env:"S3_BUCKET,   default=profile-images"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	Endpoint      string `env:"S3_ENDPOINT"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
