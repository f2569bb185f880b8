package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	fsstorage "github.com/tendant/schoolsite/pkg/schoolsite/storage/fs"
)

type uploadForm map[string]*schoolsite.UploadedBlob

func (f uploadForm) IsChanged(field string) bool { _, ok := f[field]; return ok }
func (f uploadForm) CleanedValue(field string) (*schoolsite.UploadedBlob, bool) {
	b, ok := f[field]
	return b, ok
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.DatabaseType())
	assert.Equal(t, "/media/", cfg.MediaURL)
	assert.False(t, cfg.BucketConfigured())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{"postgres url", []Option{WithDatabase("postgres://u:p@localhost/db")}, false},
		{"postgresql url", []Option{WithDatabase("postgresql://u:p@localhost/db")}, false},
		{"unsupported database", []Option{WithDatabase("mysql://localhost/db")}, true},
		{"unknown environment", []Option{WithEnvironment("staging")}, true},
		{"empty port", []Option{WithPort("")}, true},
		{"empty media url", []Option{WithMedia("", "media")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/site")
	t.Setenv("DB_SCHEMA", "school")
	t.Setenv("MEDIA_URL", "https://example.com/media/")
	t.Setenv("AWS_ACCESS_KEY_ID", "key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_STORAGE_BUCKET_NAME", "school-media")
	t.Setenv("AWS_S3_REGION_NAME", "eu-central-1")
	t.Setenv("AWS_S3_CUSTOM_DOMAIN", "cdn.example.com")
	t.Setenv("AWS_S3_USE_PATH_STYLE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://school.kz/, https://admin.school.kz/path ,")
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")

	cfg, err := Load(WithEnv())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "postgres", cfg.DatabaseType())
	assert.Equal(t, "school", cfg.DBSchema)
	assert.Equal(t, "https://example.com/media/", cfg.MediaURL)
	assert.Equal(t, "school-media", cfg.S3.Bucket)
	assert.Equal(t, "eu-central-1", cfg.S3.Region)
	assert.Equal(t, "cdn.example.com", cfg.S3.CustomDomain)
	assert.True(t, cfg.S3.UsePathStyle)
	assert.True(t, cfg.BucketConfigured())
	assert.Equal(t, []string{"https://school.kz", "https://admin.school.kz"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "s3cret", cfg.AdminJWTSecret)
}

func TestWithEnv_ThenOverride(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := Load(WithEnv(), WithPort("7070"))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://localhost:3000/", "http://localhost:3000"},
		{" https://school.kz/admin/ ", "https://school.kz"},
		{"school.kz", "school.kz"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeOrigin(tt.in), tt.in)
	}
}

func TestEnvUsage(t *testing.T) {
	usage, err := EnvUsage()
	require.NoError(t, err)
	assert.Contains(t, usage, "AWS_STORAGE_BUCKET_NAME")
	assert.Contains(t, usage, "MEDIA_ROOT")
}

func TestBuildService_LocalOnly(t *testing.T) {
	cfg, err := Load(WithMedia("/media/", t.TempDir()))
	require.NoError(t, err)

	comps, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	defer comps.Close()

	assert.NotNil(t, comps.Service)
	assert.Nil(t, comps.Bucket)
	assert.IsType(t, &fsstorage.Backend{}, comps.DefaultStore)
	assert.Equal(t, "/media/hero/a.jpg", comps.Resolver.ResolveKey("hero/a.jpg"))
}

func TestBuildService_WithBucket(t *testing.T) {
	cfg, err := Load(
		WithMedia("/media/", ""),
		WithS3(S3Config{
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			Bucket:          "school-media",
			CustomDomain:    "cdn.example.com",
		}),
	)
	require.NoError(t, err)

	comps, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	defer comps.Close()

	require.NotNil(t, comps.Bucket)
	assert.Same(t, comps.Bucket, comps.DefaultStore)
	assert.Equal(t, "https://cdn.example.com/hero/a.jpg", comps.Resolver.ResolveKey("hero/a.jpg"))
}

func TestBuildService_BucketFailureKeepsURLsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	root := t.TempDir()
	cfg, err := Load(
		WithMedia("/media/", root),
		WithS3(S3Config{
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			Bucket:          "school",
			EndpointURL:     server.URL,
			UsePathStyle:    true,
		}),
	)
	require.NoError(t, err)

	comps, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	defer comps.Close()

	director := &schoolsite.Director{Name: "Director"}
	body := "jpeg"
	result, err := comps.Service.SaveRecord(context.Background(), director, uploadForm{
		"image": {Filename: "photo.jpg", Size: int64(len(body)), Body: strings.NewReader(body)},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)

	// Nothing lands on local disk and no URL points at a missing object
	assert.Empty(t, director.Image)
	assert.Equal(t, "", comps.Service.ResolveURL(director, "image"))
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
