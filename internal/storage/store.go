// Package storage keeps the raw bytes of ingested documents.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
)

// Object describes stored bytes. Ref is what documents persist as file_ref.
type Object struct {
	Ref    string
	Size   int64
	SHA256 string
}

type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (Object, error)
	Read(ctx context.Context, ref string) ([]byte, int64, error)
}

// LocalStore is a content-addressed directory: <root>/<first two hex>/<sha256>.<ext>.
type LocalStore struct {
	root   string
	logger *slog.Logger
}

func NewLocalStore(root string, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, common.InvalidArgumentError("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root, logger: logger}, nil
}

// Save hashes while copying into a temp file, then renames into place. Saving identical
// bytes twice yields the same ref.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		return Object{}, fmt.Errorf("copy %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		return Object{}, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Object{}, fmt.Errorf("close temp file: %w", err)
	}

	sum := hex.EncodeToString(h.Sum(nil))
	ref := filepath.ToSlash(filepath.Join(sum[:2], sum))
	if ext := constants.NormalizeExt(filepath.Ext(name)); ext != "" {
		ref += "." + ext
	}
	dst := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("create shard dir: %w", err)
	}
	if _, err := os.Stat(dst); err == nil {
		s.logger.Debug("object already stored", "ref", ref)
		return Object{Ref: ref, Size: n, SHA256: sum}, nil
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return Object{}, fmt.Errorf("store object: %w", err)
	}
	s.logger.Debug("object stored", "ref", ref, "size", n)
	return Object{Ref: ref, Size: n, SHA256: sum}, nil
}

func (s *LocalStore) Read(ctx context.Context, ref string) ([]byte, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	clean := filepath.Clean(filepath.FromSlash(ref))
	if ref == "" || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, 0, common.InvalidArgumentErrorf("invalid file ref %q", ref)
	}
	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, fmt.Errorf("file ref %q: %w", ref, common.ErrNotFound)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read %q: %w", ref, err)
	}
	return data, int64(len(data)), nil
}

// Path returns the on-disk location of ref.
func (s *LocalStore) Path(ref string) string {
	return filepath.Join(s.root, filepath.FromSlash(ref))
}
