package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sitectl dev")
}

func TestPrintConfigCommand(t *testing.T) {
	t.Setenv("MEDIA_URL", "/media/")
	t.Setenv("AWS_STORAGE_BUCKET_NAME", "school-media")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "super-secret")
	t.Setenv("AWS_S3_CUSTOM_DOMAIN", "cdn.example.com")

	out, err := execute(t, "print-config")
	require.NoError(t, err)
	assert.Contains(t, out, "STORAGE=s3")
	assert.Contains(t, out, "AWS_STORAGE_BUCKET_NAME=school-media")
	assert.Contains(t, out, "AWS_S3_CUSTOM_DOMAIN=cdn.example.com")
	assert.NotContains(t, out, "super-secret")

	out, err = execute(t, "print-config", "--env")
	require.NoError(t, err)
	assert.Contains(t, out, "AWS_S3_CUSTOM_DOMAIN")
}

func TestCheckStorageCommand_Local(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MEDIA_ROOT", root)
	t.Setenv("MEDIA_URL", "/media/")
	t.Setenv("AWS_STORAGE_BUCKET_NAME", "")

	out, err := execute(t, "check-storage")
	require.NoError(t, err)
	assert.Contains(t, out, "Storage: local")
	assert.Contains(t, out, "Accessible at URL: /media/test_media_check/")

	entries, err := os.ReadDir(filepath.Join(root, "test_media_check"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMoveRootObjectsCommand_RequiresBucket(t *testing.T) {
	t.Setenv("AWS_STORAGE_BUCKET_NAME", "")
	_, err := execute(t, "move-root-objects")
	assert.Error(t, err)
}

func TestImportStaticCommand(t *testing.T) {
	front := t.TempDir()
	media := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(front, "123.JPG"), []byte("about"), 0o644))
	t.Setenv("MEDIA_ROOT", media)
	t.Setenv("DATABASE_URL", "memory")

	out, err := execute(t, "import-static", "--front-public", front)
	require.NoError(t, err)
	assert.Contains(t, out, "Created About")
	assert.Contains(t, out, "Import complete")

	_, err = os.Stat(filepath.Join(media, "about", "123.JPG"))
	assert.NoError(t, err)
}
