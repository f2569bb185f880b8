package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase sets the database URL; "" or "memory" selects the in-memory repository
func WithDatabase(url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate applies the Postgres schema when the service starts
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMedia sets the base media path and the local media directory
func WithMedia(url, root string) Option {
	return func(c *ServerConfig) error {
		if url == "" {
			return fmt.Errorf("media url cannot be empty")
		}
		c.MediaURL = url
		c.MediaRoot = root
		return nil
	}
}

// WithS3 sets the bucket configuration
func WithS3(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		if s3.Region == "" {
			s3.Region = c.S3.Region
		}
		c.S3 = s3
		return nil
	}
}

// WithCORSOrigins sets the allowed CORS origins after normalizing them
func WithCORSOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.CORSAllowedOrigins = NormalizeOrigins(origins)
		return nil
	}
}

// WithAdminJWTSecret enables JWT authentication of the admin API
func WithAdminJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.AdminJWTSecret = secret
		return nil
	}
}
