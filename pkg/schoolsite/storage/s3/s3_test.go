package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// TestS3Backend_BasicConfiguration tests the configuration and creation of S3 backend
func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
		assert.Equal(t, "test-bucket", backend.Bucket())
	})
}

func TestS3Backend_URL(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		key      string
		expected string
	}{
		{
			name:     "virtual hosted",
			config:   Config{Bucket: "school", Region: "eu-central-1"},
			key:      "hero/a.jpg",
			expected: "https://school.s3.eu-central-1.amazonaws.com/hero/a.jpg",
		},
		{
			name:     "custom domain wins",
			config:   Config{Bucket: "school", Region: "eu-central-1", CustomDomain: "https://cdn.example.com/"},
			key:      "/hero/a.jpg",
			expected: "https://cdn.example.com/hero/a.jpg",
		},
		{
			name:     "path style endpoint",
			config:   Config{Bucket: "school", Endpoint: "http://localhost:9000/", UsePathStyle: true},
			key:      "hero/a.jpg",
			expected: "http://localhost:9000/school/hero/a.jpg",
		},
		{
			name:     "virtual hosted endpoint",
			config:   Config{Bucket: "school", Endpoint: "https://storage.yandexcloud.net"},
			key:      "hero/a.jpg",
			expected: "https://school.storage.yandexcloud.net/hero/a.jpg",
		},
		{
			name:     "escapes segments",
			config:   Config{Bucket: "school", Region: "us-east-1"},
			key:      "hero/first day.jpg",
			expected: "https://school.s3.us-east-1.amazonaws.com/hero/first%20day.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.AccessKeyID = "test-key"
			tt.config.SecretAccessKey = "test-secret"
			backend, err := New(tt.config)
			require.NoError(t, err)

			url, err := backend.URL(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, url)
		})
	}
}

// fakeS3 records PUT requests and answers HEAD for stored keys
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	headers map[string]http.Header
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(body)
		f.headers[r.URL.Path] = r.Header.Clone()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestS3Backend_PutObjectAndExists(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}, headers: map[string]http.Header{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	backend, err := New(Config{
		Bucket:          "school",
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        server.URL,
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	err = backend.PutObject(ctx, schoolsite.PutObjectInput{
		Key:          "hero/a.jpg",
		Body:         strings.NewReader("jpeg-bytes"),
		ContentType:  "image/jpeg",
		CacheControl: "max-age=86400",
	})
	require.NoError(t, err)

	fake.mu.Lock()
	h := fake.headers["/school/hero/a.jpg"]
	fake.mu.Unlock()
	require.NotNil(t, h)
	assert.Equal(t, "image/jpeg", h.Get("Content-Type"))
	assert.Equal(t, "max-age=86400", h.Get("Cache-Control"))

	ok, err := backend.Exists(ctx, "hero/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = backend.Exists(ctx, "hero/missing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}
