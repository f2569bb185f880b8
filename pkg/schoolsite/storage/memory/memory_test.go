package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	memorystorage "github.com/tendant/schoolsite/pkg/schoolsite/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "hero/abc-photo.jpg"
	testData := "Hello, World! This is test data."

	t.Run("PutObject", func(t *testing.T) {
		err := backend.PutObject(ctx, schoolsite.PutObjectInput{
			Key:          testKey,
			Body:         strings.NewReader(testData),
			ContentType:  "image/jpeg",
			CacheControl: "max-age=86400",
		})
		assert.NoError(t, err)

		obj, ok := backend.Object(testKey)
		require.True(t, ok)
		assert.Equal(t, "image/jpeg", obj.ContentType)
		assert.Equal(t, "max-age=86400", obj.CacheControl)
	})

	t.Run("DefaultContentType", func(t *testing.T) {
		err := backend.PutObject(ctx, schoolsite.PutObjectInput{Key: "raw", Body: strings.NewReader("x")})
		require.NoError(t, err)
		obj, _ := backend.Object("raw")
		assert.Equal(t, "application/octet-stream", obj.ContentType)
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		downloadedData, err := io.ReadAll(reader)
		assert.NoError(t, err)
		assert.Equal(t, testData, string(downloadedData))
	})

	t.Run("Exists", func(t *testing.T) {
		ok, err := backend.Exists(ctx, testKey)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = backend.Exists(ctx, "missing")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("List", func(t *testing.T) {
		objects, err := backend.List(ctx, "hero/")
		require.NoError(t, err)
		require.Len(t, objects, 1)
		assert.Equal(t, testKey, objects[0].Key)
		assert.Equal(t, int64(len(testData)), objects[0].Size)
	})

	t.Run("Copy", func(t *testing.T) {
		require.NoError(t, backend.Copy(ctx, testKey, "media/"+testKey))
		ok, _ := backend.Exists(ctx, "media/"+testKey)
		assert.True(t, ok)

		assert.ErrorIs(t, backend.Copy(ctx, "missing", "x"), schoolsite.ErrObjectNotFound)
	})

	t.Run("URL", func(t *testing.T) {
		_, err := backend.URL(testKey)
		assert.ErrorIs(t, err, schoolsite.ErrURLNotAvailable)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, backend.Delete(ctx, testKey))

		_, err := backend.Download(ctx, testKey)
		assert.ErrorIs(t, err, schoolsite.ErrObjectNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, testKey), schoolsite.ErrObjectNotFound)
	})
}
