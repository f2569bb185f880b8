package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	"github.com/tendant/schoolsite/pkg/schoolsite/mediaurl"
	"github.com/tendant/schoolsite/pkg/schoolsite/objectkey"
	"github.com/tendant/schoolsite/pkg/schoolsite/repo/memory"
	repopg "github.com/tendant/schoolsite/pkg/schoolsite/repo/postgres"
	fsstorage "github.com/tendant/schoolsite/pkg/schoolsite/storage/fs"
	memorystorage "github.com/tendant/schoolsite/pkg/schoolsite/storage/memory"
	s3storage "github.com/tendant/schoolsite/pkg/schoolsite/storage/s3"
	"github.com/tendant/schoolsite/pkg/schoolsite/upload"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "8000",
		Environment: "development",
		MediaURL:    mediaurl.DefaultMediaBase,
		MediaRoot:   "media",
		S3: S3Config{
			Region: "us-east-1",
		},
		CORSAllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	}
}

// ServerConfig represents the process-wide configuration of the site backend
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration; an empty URL or "memory" selects the in-memory repository
	DatabaseURL string
	DBSchema    string // Postgres schema placed on the search_path
	AutoMigrate bool   // apply the embedded schema at startup

	// Local media storage
	MediaURL  string // base media path, e.g. "/media/"
	MediaRoot string // directory holding locally stored media

	// Object storage bucket
	S3 S3Config

	CORSAllowedOrigins []string
	AdminJWTSecret     string
}

// S3Config identifies the media bucket
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	CustomDomain    string
	EndpointURL     string
	UsePathStyle    bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.Environment {
	case "development", "production", "testing":
	default:
		return fmt.Errorf("environment must be development, production or testing, got: %s", c.Environment)
	}

	if c.DatabaseType() == "" {
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgres://...')", c.DatabaseURL)
	}

	if c.MediaURL == "" {
		return errors.New("media_url is required")
	}

	if c.S3.Bucket != "" && c.S3.Region == "" {
		return errors.New("s3 region is required when a bucket is set")
	}

	return nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// DatabaseType returns "memory", "postgres" or "" for an unsupported URL
func (c *ServerConfig) DatabaseType() string {
	switch {
	case c.DatabaseURL == "" || c.DatabaseURL == "memory":
		return "memory"
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres"
	}
	return ""
}

// UploadConfig returns the bucket identity the upload interceptor checks
func (c *ServerConfig) UploadConfig() upload.Config {
	return upload.Config{
		Bucket:          c.S3.Bucket,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
	}
}

// BucketConfigured reports whether media uploads can go to the bucket
func (c *ServerConfig) BucketConfigured() bool {
	return c.UploadConfig().Configured()
}

// Components is everything BuildService wires together
type Components struct {
	Service      schoolsite.Service
	Repository   schoolsite.Repository
	DefaultStore schoolsite.BlobStore
	Bucket       *s3storage.Backend // nil when no bucket is configured
	Resolver     *mediaurl.Resolver

	closers []func()
}

// Close releases database connections
func (c *Components) Close() {
	for _, fn := range c.closers {
		fn()
	}
}

// BuildService creates a Service instance and its collaborators from the configuration
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	comps := &Components{}

	repo, closeRepo, err := c.BuildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	comps.Repository = repo
	if closeRepo != nil {
		comps.closers = append(comps.closers, closeRepo)
	}

	options := []schoolsite.Option{
		schoolsite.WithRepository(repo),
		schoolsite.WithKeyGenerator(objectkey.NewPlainGenerator()),
		schoolsite.WithLogger(logger),
	}

	// With a bucket, plain writes go to the bucket too, so every stored key
	// lives in the store the resolver asks for native URLs
	var store schoolsite.BlobStore
	if c.BucketConfigured() {
		bucket, err := c.BuildBucket()
		if err != nil {
			comps.Close()
			return nil, fmt.Errorf("failed to build bucket: %w", err)
		}
		comps.Bucket = bucket
		store = bucket
		options = append(options, schoolsite.WithInterceptor(
			upload.New(c.UploadConfig(), bucket, upload.WithLogger(logger.With("component", "upload")))))
	} else {
		store, err = c.BuildLocalStore()
		if err != nil {
			comps.Close()
			return nil, fmt.Errorf("failed to build media storage: %w", err)
		}
		logger.Info("bucket not configured, media stays in local storage", "media_root", c.MediaRoot)
	}
	comps.DefaultStore = store
	options = append(options, schoolsite.WithDefaultStore(store))

	comps.Resolver = mediaurl.New(mediaurl.Config{
		Store:        store,
		CustomDomain: c.S3.CustomDomain,
		MediaBase:    c.MediaURL,
	})
	options = append(options, schoolsite.WithResolver(comps.Resolver))

	svc, err := schoolsite.New(options...)
	if err != nil {
		comps.Close()
		return nil, err
	}
	comps.Service = svc
	return comps, nil
}

// BuildRepository creates a Repository based on the configuration. The
// returned func closes the connection pool and may be nil.
func (c *ServerConfig) BuildRepository(ctx context.Context) (schoolsite.Repository, func(), error) {
	switch c.DatabaseType() {
	case "memory":
		return memory.New(), nil, nil
	case "postgres":
		pool, err := c.NewPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		return repopg.NewWithPool(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database url: %s", c.DatabaseURL)
	}
}

// NewPool opens a pgx pool with search_path set to DBSchema
func (c *ServerConfig) NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	schema := c.DBSchema
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// BuildLocalStore creates the local media store: the filesystem under
// MediaRoot, or memory when MediaRoot is empty
func (c *ServerConfig) BuildLocalStore() (schoolsite.BlobStore, error) {
	if c.MediaRoot == "" {
		return memorystorage.New(), nil
	}
	return fsstorage.New(fsstorage.Config{BaseDir: c.MediaRoot, URLPrefix: c.MediaURL})
}

// BuildBucket creates the S3 backend for the configured bucket
func (c *ServerConfig) BuildBucket() (*s3storage.Backend, error) {
	if c.S3.Bucket == "" {
		return nil, schoolsite.ErrConfigurationMissing
	}
	return s3storage.New(s3storage.Config{
		Region:          c.S3.Region,
		Bucket:          c.S3.Bucket,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
		Endpoint:        c.S3.EndpointURL,
		UsePathStyle:    c.S3.UsePathStyle,
		CustomDomain:    c.S3.CustomDomain,
	})
}

// LogValue hides secrets when the configuration is logged
func (c *ServerConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.Port),
		slog.String("environment", c.Environment),
		slog.String("database", c.DatabaseType()),
		slog.String("db_schema", c.DBSchema),
		slog.Bool("auto_migrate", c.AutoMigrate),
		slog.String("media_url", c.MediaURL),
		slog.String("media_root", c.MediaRoot),
		slog.String("bucket", c.S3.Bucket),
		slog.String("region", c.S3.Region),
		slog.String("custom_domain", c.S3.CustomDomain),
		slog.String("endpoint", c.S3.EndpointURL),
		slog.Bool("bucket_configured", c.BucketConfigured()),
		slog.Any("cors_allowed_origins", c.CORSAllowedOrigins),
		slog.Bool("admin_auth", c.AdminJWTSecret != ""),
	)
}
