// Package maintenance holds the operator tasks behind sitectl: pushing a
// local media tree to the bucket, probing storage, relocating legacy
// root-level objects and importing the seed content.
package maintenance

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	"github.com/tendant/schoolsite/pkg/schoolsite/upload"
)

// UploadTreeOptions controls UploadTree
type UploadTreeOptions struct {
	Prefix string // key prefix inside the bucket, no leading slash
	Public bool   // public-read ACL
}

// UploadStats counts the outcome of UploadTree
type UploadStats struct {
	Uploaded int
	Errors   int
}

// UploadTree puts every regular file under root to store as prefix/relpath.
// Per-file failures are counted and reported, not returned.
func UploadTree(ctx context.Context, root string, store schoolsite.BlobStore, opts UploadTreeOptions, out io.Writer) (UploadStats, error) {
	var stats UploadStats
	if _, err := os.Stat(root); err != nil {
		return stats, fmt.Errorf("media root does not exist: %s", root)
	}
	prefix := strings.Trim(schoolsite.NormalizeKey(opts.Prefix), "/")

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		key := rel
		if prefix != "" {
			key = prefix + "/" + rel
		}

		if err := putFile(ctx, store, p, key, opts.Public); err != nil {
			fmt.Fprintf(out, "Failed to upload %s: %v\n", rel, err)
			stats.Errors++
			return nil
		}
		fmt.Fprintf(out, "Uploaded %s -> %s\n", rel, key)
		stats.Uploaded++
		return nil
	})
	fmt.Fprintf(out, "Upload complete. Uploaded: %d. Errors: %d\n", stats.Uploaded, stats.Errors)
	return stats, err
}

func putFile(ctx context.Context, store schoolsite.BlobStore, p, key string, public bool) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	blob := &schoolsite.UploadedBlob{Filename: filepath.Base(p), Body: f}
	contentType, err := upload.ContentType(blob, key)
	if err != nil {
		return err
	}
	return store.PutObject(ctx, schoolsite.PutObjectInput{
		Key:          key,
		Body:         f,
		ContentType:  contentType,
		CacheControl: upload.CacheControl,
		Public:       public,
	})
}

// CheckStorageResult describes the test object written by CheckStorage
type CheckStorageResult struct {
	Key     string
	URL     string
	Deleted bool
}

// CheckStorage writes a small test object and reports where it landed.
func CheckStorage(ctx context.Context, store schoolsite.BlobStore, resolver interface{ ResolveKey(string) string }, cleanup bool) (*CheckStorageResult, error) {
	key := fmt.Sprintf("test_media_check/%s.txt", strings.ReplaceAll(uuid.NewString(), "-", ""))
	err := store.PutObject(ctx, schoolsite.PutObjectInput{
		Key:         key,
		Body:        strings.NewReader("Test file for media storage check"),
		ContentType: "text/plain",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save test file: %w", err)
	}

	res := &CheckStorageResult{Key: key}
	if resolver != nil {
		res.URL = resolver.ResolveKey(key)
	}
	if cleanup {
		if err := store.Delete(ctx, key); err != nil {
			return res, fmt.Errorf("failed to delete test file: %w", err)
		}
		res.Deleted = true
	}
	return res, nil
}

// MoveStats counts the outcome of MoveRootObjects
type MoveStats struct {
	Planned int
	Moved   int
	Errors  int
}

// MoveRootObjects relocates root-level objects whose names match the seed
// layout into their folder. Without apply it only prints the plan. The
// original is deleted only after a successful copy.
func MoveRootObjects(ctx context.Context, store schoolsite.BlobStore, apply bool, out io.Writer) (MoveStats, error) {
	var stats MoveStats
	objects, err := store.List(ctx, "")
	if err != nil {
		return stats, fmt.Errorf("failed to list objects: %w", err)
	}

	folders := SeedFolderIndex()
	for _, obj := range objects {
		if strings.Contains(obj.Key, "/") {
			continue
		}
		folder, ok := folders[obj.Key]
		if !ok {
			continue
		}
		dst := path.Join(folder, obj.Key)
		stats.Planned++
		if !apply {
			fmt.Fprintf(out, "Would move %s -> %s\n", obj.Key, dst)
			continue
		}
		if err := store.Copy(ctx, obj.Key, dst); err != nil {
			fmt.Fprintf(out, "Failed to copy %s -> %s: %v\n", obj.Key, dst, err)
			stats.Errors++
			continue
		}
		if err := store.Delete(ctx, obj.Key); err != nil {
			fmt.Fprintf(out, "Copied %s -> %s but failed to delete the original: %v\n", obj.Key, dst, err)
			stats.Errors++
			continue
		}
		fmt.Fprintf(out, "Moved %s -> %s\n", obj.Key, dst)
		stats.Moved++
	}

	if apply {
		fmt.Fprintf(out, "Done. Moved: %d. Errors: %d\n", stats.Moved, stats.Errors)
	} else {
		fmt.Fprintf(out, "Dry run. %d object(s) would move; pass --apply to move them\n", stats.Planned)
	}
	return stats, nil
}
