package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig mirrors ServerConfig as environment variables. Defaults match
// defaults(), so WithEnv resets every field; apply it before other options.
type envConfig struct {
	Port        string `env:"PORT" env-default:"8000" env-description:"HTTP listen port"`
	Environment string `env:"ENVIRONMENT" env-default:"development" env-description:"development, production or testing"`

	DatabaseURL string `env:"DATABASE_URL" env-description:"postgres://... or memory (default)"`
	DBSchema    string `env:"DB_SCHEMA" env-description:"Postgres schema placed on the search_path"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" env-default:"false" env-description:"apply the Postgres schema at startup"`

	MediaURL  string `env:"MEDIA_URL" env-default:"/media/" env-description:"base media path or URL"`
	MediaRoot string `env:"MEDIA_ROOT" env-default:"media" env-description:"directory for locally stored media"`

	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-description:"bucket access key"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-description:"bucket secret key"`
	Bucket          string `env:"AWS_STORAGE_BUCKET_NAME" env-description:"media bucket name"`
	Region          string `env:"AWS_S3_REGION_NAME" env-default:"us-east-1" env-description:"bucket region"`
	CustomDomain    string `env:"AWS_S3_CUSTOM_DOMAIN" env-description:"public hostname serving the bucket"`
	EndpointURL     string `env:"AWS_S3_ENDPOINT_URL" env-description:"endpoint of an S3-compatible service"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false" env-description:"path-style bucket addressing"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://127.0.0.1:3000" env-description:"comma separated allowed origins"`
	AdminJWTSecret     string   `env:"ADMIN_JWT_SECRET" env-description:"HS256 secret guarding the admin API; empty disables auth"`
}

// WithEnv reads the configuration from environment variables.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		c.Port = env.Port
		c.Environment = env.Environment
		c.DatabaseURL = env.DatabaseURL
		c.DBSchema = env.DBSchema
		c.AutoMigrate = env.AutoMigrate
		c.MediaURL = env.MediaURL
		c.MediaRoot = env.MediaRoot
		c.S3 = S3Config{
			AccessKeyID:     env.AccessKeyID,
			SecretAccessKey: env.SecretAccessKey,
			Bucket:          env.Bucket,
			Region:          env.Region,
			CustomDomain:    env.CustomDomain,
			EndpointURL:     env.EndpointURL,
			UsePathStyle:    env.UsePathStyle,
		}
		c.CORSAllowedOrigins = NormalizeOrigins(env.CORSAllowedOrigins)
		c.AdminJWTSecret = env.AdminJWTSecret
		return nil
	}
}

// EnvUsage describes every environment variable WithEnv reads.
func EnvUsage() (string, error) {
	header := "Environment variables:"
	return cleanenv.GetDescription(&envConfig{}, &header)
}
