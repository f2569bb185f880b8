package maintenance

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	"github.com/tendant/schoolsite/pkg/schoolsite/mediaurl"
	"github.com/tendant/schoolsite/pkg/schoolsite/repo/memory"
	memorystorage "github.com/tendant/schoolsite/pkg/schoolsite/storage/memory"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type rejectingStore struct {
	*memorystorage.Backend
	reject string
}

func (s *rejectingStore) PutObject(ctx context.Context, in schoolsite.PutObjectInput) error {
	if strings.Contains(in.Key, s.reject) {
		return errors.New("access denied")
	}
	return s.Backend.PutObject(ctx, in)
}

func (s *rejectingStore) Delete(ctx context.Context, key string) error {
	if key == s.reject {
		return errors.New("access denied")
	}
	return s.Backend.Delete(ctx, key)
}

func TestUploadTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "hero", "a.jpg"), "a")
	writeFile(t, filepath.Join(root, "certificates", "students", "b.png"), "b")
	writeFile(t, filepath.Join(root, "notes.txt"), "c")

	t.Run("with prefix", func(t *testing.T) {
		store := memorystorage.New()
		var out bytes.Buffer

		stats, err := UploadTree(context.Background(), root, store, UploadTreeOptions{Prefix: "/media", Public: true}, &out)
		require.NoError(t, err)
		assert.Equal(t, UploadStats{Uploaded: 3}, stats)

		obj, ok := store.Object("media/hero/a.jpg")
		require.True(t, ok)
		assert.Equal(t, "image/jpeg", obj.ContentType)
		assert.Equal(t, "max-age=86400", obj.CacheControl)
		assert.True(t, obj.Public)

		_, ok = store.Object("media/certificates/students/b.png")
		assert.True(t, ok)
		assert.Contains(t, out.String(), "Uploaded: 3. Errors: 0")
	})

	t.Run("failures are counted", func(t *testing.T) {
		store := &rejectingStore{Backend: memorystorage.New(), reject: "notes"}
		var out bytes.Buffer

		stats, err := UploadTree(context.Background(), root, store, UploadTreeOptions{}, &out)
		require.NoError(t, err)
		assert.Equal(t, UploadStats{Uploaded: 2, Errors: 1}, stats)
		assert.Contains(t, out.String(), "Failed to upload notes.txt")
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := UploadTree(context.Background(), filepath.Join(root, "nope"), memorystorage.New(), UploadTreeOptions{}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestCheckStorage(t *testing.T) {
	store := memorystorage.New()
	resolver := mediaurl.New(mediaurl.Config{Store: store, CustomDomain: "cdn.example.com"})

	res, err := CheckStorage(context.Background(), store, resolver, false)
	require.NoError(t, err)
	assert.Regexp(t, `^test_media_check/[0-9a-f]{32}\.txt$`, res.Key)
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)
	assert.Equal(t, 1, store.Len())

	res, err = CheckStorage(context.Background(), store, nil, true)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Empty(t, res.URL)
	assert.Equal(t, 1, store.Len())
}

func TestMoveRootObjects(t *testing.T) {
	ctx := context.Background()
	seed := func(store schoolsite.BlobStore, keys ...string) {
		for _, k := range keys {
			require.NoError(t, store.PutObject(ctx, schoolsite.PutObjectInput{Key: k, Body: strings.NewReader(k)}))
		}
	}

	t.Run("dry run", func(t *testing.T) {
		store := memorystorage.New()
		seed(store, "123.JPG", "unrelated.jpg", "hero/modern-school-students.jpg")
		var out bytes.Buffer

		stats, err := MoveRootObjects(ctx, store, false, &out)
		require.NoError(t, err)
		assert.Equal(t, MoveStats{Planned: 1}, stats)
		assert.Contains(t, out.String(), "Would move 123.JPG -> about/123.JPG")

		exists, _ := store.Exists(ctx, "123.JPG")
		assert.True(t, exists)
	})

	t.Run("apply", func(t *testing.T) {
		store := memorystorage.New()
		seed(store, "123.JPG", "modern-school-students.jpg", "unrelated.jpg")

		stats, err := MoveRootObjects(ctx, store, true, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, MoveStats{Planned: 2, Moved: 2}, stats)

		for _, key := range []string{"about/123.JPG", "hero/modern-school-students.jpg", "unrelated.jpg"} {
			exists, err := store.Exists(ctx, key)
			require.NoError(t, err)
			assert.True(t, exists, key)
		}
		exists, _ := store.Exists(ctx, "123.JPG")
		assert.False(t, exists)
	})

	t.Run("original kept when delete fails", func(t *testing.T) {
		store := &rejectingStore{Backend: memorystorage.New(), reject: "123.JPG"}
		seed(store.Backend, "123.JPG")

		stats, err := MoveRootObjects(ctx, store, true, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Errors)

		exists, _ := store.Exists(ctx, "about/123.JPG")
		assert.True(t, exists)
		exists, _ = store.Exists(ctx, "123.JPG")
		assert.True(t, exists)
	})
}

func TestImportStatic(t *testing.T) {
	ctx := context.Background()
	front := t.TempDir()
	media := t.TempDir()
	writeFile(t, filepath.Join(front, "modern-school-students.jpg"), "hero")
	writeFile(t, filepath.Join(front, "teacher", "school-director-professional-portrait.jpg"), "director")

	repo := memory.New()
	var out bytes.Buffer
	stats, err := ImportStatic(ctx, front, media, repo, &out)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Copied)
	assert.Equal(t, 3, stats.Missing)
	assert.Equal(t, 3+1+1+4, stats.Created)

	data, err := os.ReadFile(filepath.Join(media, "director", "school-director-professional-portrait.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "director", string(data))

	slides, err := repo.List(ctx, schoolsite.KindHeroSlide, schoolsite.ListFilter{})
	require.NoError(t, err)
	require.Len(t, slides, 3)
	assert.Equal(t, "hero/modern-school-students.jpg", slides[0].(*schoolsite.HeroSlide).Image)

	// second run creates nothing
	stats, err = ImportStatic(ctx, front, media, repo, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Copied)
	assert.Equal(t, 0, stats.Created)
	assert.Contains(t, out.String(), "already exists, skipping copy")

	_, err = ImportStatic(ctx, filepath.Join(front, "missing"), media, repo, &out)
	assert.Error(t, err)
}
