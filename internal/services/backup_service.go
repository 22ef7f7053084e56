package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/synesthesie/augment/internal/config"
	"go.uber.org/zap"
)

// BackupUploader is the part of S3Service the backup needs.
type BackupUploader interface {
	UploadBackup(ctx context.Context, key string, body io.Reader, ctype string, metadata map[string]string) error
}

type BackupService struct {
	cfg      *config.Config
	storage  *StorageService
	uploader BackupUploader
	log      *zap.Logger
}

func NewBackupService(cfg *config.Config, storage *StorageService, log *zap.Logger) *BackupService {
	return &BackupService{cfg: cfg, storage: storage, log: log}
}

// AttachUploader enables offsite copies of the pre-run collection.
func (s *BackupService) AttachUploader(u BackupUploader) {
	s.uploader = u
}

// KeepLocalCopy writes data to BackupPath unless a copy is already there, so
// the first untouched collection survives any number of runs. It reports
// whether a copy was written.
func (s *BackupService) KeepLocalCopy(ctx context.Context, data []byte) (bool, error) {
	if s.cfg.BackupPath == "" {
		return false, nil
	}
	exists, err := s.storage.Exists(s.cfg.BackupPath)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrOutputAccess, err)
	}
	if exists {
		return false, nil
	}
	if _, _, err := s.storage.SaveStream(ctx, s.cfg.BackupPath, bytes.NewReader(data)); err != nil {
		return false, fmt.Errorf("%w: backup %s: %v", ErrOutputAccess, s.cfg.BackupPath, err)
	}
	s.log.Info("original collection backed up", zap.String("path", s.cfg.BackupPath))
	return true, nil
}

// SnapshotKey is the object key of a run's pre-run snapshot.
func (s *BackupService) SnapshotKey(runID uuid.UUID) string {
	return path.Join(s.cfg.BackupPrefix, runID.String()+".json.gz")
}

// UploadSnapshot gzips data and uploads it when an uploader is attached. It
// returns the object key, or "" when offsite backups are disabled.
func (s *BackupService) UploadSnapshot(ctx context.Context, runID uuid.UUID, data []byte, digest string) (string, error) {
	if s.uploader == nil || s.cfg.BackupBucket == "" {
		return "", nil
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackupUpload, err)
	}
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("%w: compress: %v", ErrBackupUpload, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("%w: compress: %v", ErrBackupUpload, err)
	}

	key := s.SnapshotKey(runID)
	size := buf.Len()
	meta := map[string]string{
		"run-id":  runID.String(),
		"blake2b": digest,
		"source":  path.Base(s.cfg.CollectionPath),
	}
	if err := s.uploader.UploadBackup(ctx, key, &buf, "application/gzip", meta); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBackupUpload, key, err)
	}
	s.log.Info("collection snapshot uploaded", zap.String("bucket", s.cfg.BackupBucket), zap.String("key", key),
		zap.Int("compressed_bytes", size))
	return key, nil
}
