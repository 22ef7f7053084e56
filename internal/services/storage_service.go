package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// StorageService writes files through a temp file so readers never observe a
// half-written collection.
type StorageService struct{}

func NewStorageService() *StorageService {
	return &StorageService{}
}

// SaveStream writes r to absPath via absPath.part, fsync and rename. It returns
// the written size and blake2b-256 checksum. On error the previous file at
// absPath is left as it was.
func (s *StorageService) SaveStream(ctx context.Context, absPath string, r io.Reader) (int64, string, error) {
	if err := ctx.Err(); err != nil {
		return 0, "", err
	}
	if dir := filepath.Dir(absPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, "", err
		}
	}

	tmp := absPath + ".part"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, "", err
	}

	hasher, err := blake2b.New256(nil)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return 0, "", err
	}

	n, err := io.Copy(io.MultiWriter(f, hasher), r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return 0, "", err
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return 0, "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return 0, "", err
	}

	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return 0, "", err
	}

	return n, hex.EncodeToString(hasher.Sum(nil)), nil
}

// Exists reports whether path exists. Stat errors other than not-exist are
// returned.
func (s *StorageService) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Digest is the blake2b-256 hex digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
