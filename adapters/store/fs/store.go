package storefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-resume-export/export"
)

const metaSuffix = ".meta.json"

// Store keeps exported PDFs on the local filesystem. Each artifact is written
// next to a JSON sidecar holding its ArtifactMeta.
type Store struct {
	Root string
	Now  func() time.Time
}

var (
	_ export.ArtifactStore   = (*Store)(nil)
	_ export.ArtifactSweeper = (*Store)(nil)
)

// NewStore creates a filesystem-backed artifact store rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Put writes r under key. The file appears atomically once fully written.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta export.ArtifactMeta) (export.ArtifactRef, error) {
	pathOnDisk, err := s.pathFor(ctx, key)
	if err != nil {
		return export.ArtifactRef{}, err
	}

	dir := filepath.Dir(pathOnDisk)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return export.ArtifactRef{}, err
	}
	size, err := writeAtomic(dir, ".resume-*", pathOnDisk, func(w io.Writer) (int64, error) {
		return io.Copy(w, r)
	})
	if err != nil {
		return export.ArtifactRef{}, err
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.ContentType == "" {
		meta.ContentType = export.PDFContentType
	}
	if meta.Filename == "" {
		meta.Filename = path.Base(key)
	}

	payload, err := json.Marshal(meta)
	if err != nil {
		return export.ArtifactRef{}, err
	}
	if _, err := writeAtomic(dir, ".meta-*", pathOnDisk+metaSuffix, func(w io.Writer) (int64, error) {
		n, err := w.Write(payload)
		return int64(n), err
	}); err != nil {
		return export.ArtifactRef{}, err
	}

	return export.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open returns the artifact stored under key. The caller closes the reader.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, export.ArtifactMeta, error) {
	pathOnDisk, err := s.pathFor(ctx, key)
	if err != nil {
		return nil, export.ArtifactMeta{}, err
	}

	file, err := os.Open(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, export.ArtifactMeta{}, export.NewError(export.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, export.ArtifactMeta{}, err
	}

	meta := readMeta(pathOnDisk)
	if meta.ContentType == "" {
		meta.ContentType = export.PDFContentType
	}
	if meta.Size == 0 || meta.CreatedAt.IsZero() {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	return file, meta, nil
}

// Delete removes the artifact and its sidecar. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	pathOnDisk, err := s.pathFor(ctx, key)
	if err != nil {
		return err
	}
	if err := os.Remove(pathOnDisk); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(pathOnDisk + metaSuffix); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Sweep removes artifacts whose sidecar carries an expiry at or before now.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	if s == nil || s.Root == "" {
		return 0, export.NewError(export.KindValidation, "store root is required", nil)
	}
	if now.IsZero() {
		now = s.now()
	}

	removed := 0
	err := filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		artifact := strings.TrimSuffix(p, metaSuffix)
		meta := readMeta(artifact)
		if meta.ExpiresAt.IsZero() || meta.ExpiresAt.After(now) {
			return nil
		}
		if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
			return err
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

func (s *Store) pathFor(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", export.NewError(export.KindInternal, "store is nil", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Root == "" {
		return "", export.NewError(export.KindValidation, "store root is required", nil)
	}
	if key == "" {
		return "", export.NewError(export.KindValidation, "artifact key is required", nil)
	}
	if strings.HasSuffix(key, metaSuffix) {
		return "", export.NewError(export.KindValidation, "artifact key uses a reserved suffix", nil)
	}

	rel := strings.TrimPrefix(path.Clean("/"+key), "/")
	if rel == "" || rel == "." {
		return "", export.NewError(export.KindValidation, "invalid artifact key", nil)
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", export.NewError(export.KindValidation, "artifact key escapes root", nil)
	}
	return target, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// writeAtomic writes through a temp file in dir and renames it onto target.
func writeAtomic(dir, pattern, target string, write func(io.Writer) (int64, error)) (int64, error) {
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	n, err := write(tmp)
	if err != nil {
		return n, err
	}
	if err := tmp.Sync(); err != nil {
		return n, err
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	return n, os.Rename(tmp.Name(), target)
}

func readMeta(pathOnDisk string) export.ArtifactMeta {
	data, err := os.ReadFile(pathOnDisk + metaSuffix)
	if err != nil {
		return export.ArtifactMeta{}
	}
	var meta export.ArtifactMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return export.ArtifactMeta{}
	}
	return meta
}
