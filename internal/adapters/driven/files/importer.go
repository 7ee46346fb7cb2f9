// Package files provides the content-addressed asset import pipeline.
//
// Imported binaries are stored under the data directory by the SHA-256
// of their content, fanned out over a two-character prefix directory:
//
//	<dataDir>/files/aa/aabbcc...ddee.png
//	<dataDir>/thumbs/aa/aabbcc...ddee.jpg
//
// Identical content therefore lands at the same path no matter how many
// posts reference it, and a re-import of the same bytes is a no-op.
package files

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/core/ports/driven"
	"github.com/kitsumori/fanvault/internal/logger"
)

// Ensure Importer implements the interface.
var _ driven.FileImporter = (*Importer)(nil)

// Importer stores asset binaries under a content-addressed layout and
// records their presence on the file placeholder.
type Importer struct {
	dataDir string
	files   driven.FileStore
}

// NewImporter creates an importer rooted at dataDir.
func NewImporter(dataDir string, files driven.FileStore) *Importer {
	return &Importer{dataDir: dataDir, files: files}
}

// Import ingests the original and/or thumbnail binaries for a file
// placeholder. Empty paths are skipped. With move set the source files
// are consumed; otherwise they are copied. The placeholder is saved
// once, after both transfers, so presence flags and local paths commit
// together.
func (i *Importer) Import(ctx context.Context, file *domain.File, origPath, thumbPath string, move bool) error {
	if origPath != "" {
		stored, err := i.ingest(ctx, origPath, "files", move)
		if err != nil {
			return fmt.Errorf("importing original: %w", err)
		}
		file.LocalPath = stored
		file.Present = true
	}

	if thumbPath != "" {
		stored, err := i.ingest(ctx, thumbPath, "thumbs", move)
		if err != nil {
			return fmt.Errorf("importing thumbnail: %w", err)
		}
		file.ThumbPath = stored
		file.ThumbPresent = true
	}

	if origPath == "" && thumbPath == "" {
		return nil
	}

	return i.files.Save(ctx, file)
}

// ingest hashes the source file and places it under the bucket
// directory, keyed by content. Returns the stored path.
func (i *Importer) ingest(ctx context.Context, srcPath, bucket string, move bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening source: %w", err)
	}
	defer src.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, src); err != nil {
		return "", fmt.Errorf("hashing source: %w", err)
	}
	sum := hex.EncodeToString(hasher.Sum(nil))

	dir := filepath.Join(i.dataDir, bucket, sum[:2])
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating bucket directory: %w", err)
	}
	dst := filepath.Join(dir, sum+filepath.Ext(srcPath))

	if _, err := os.Stat(dst); err == nil {
		// Same content already imported.
		logger.Debug("dedup hit for %s", dst)
		if move {
			os.Remove(srcPath)
		}
		return dst, nil
	}

	if move {
		if err := os.Rename(srcPath, dst); err == nil {
			return dst, nil
		}
		// Rename fails across filesystems; fall through to copy.
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding source: %w", err)
	}
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	if move {
		os.Remove(srcPath)
	}
	return dst, nil
}

// copyFile writes src to dstPath via a temp file in the same directory
// so a crash never leaves a half-written object at the final path.
func copyFile(src io.Reader, dstPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".import-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("copying content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dstPath); err != nil {
		return fmt.Errorf("placing object: %w", err)
	}
	return nil
}
