package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	for _, k := range []string{"COLLECTION_PATH", "BACKUP_PATH", "SEED", "REGION_MODE", "COUNT_SOURCE", "DRY_RUN", "LOCK_TTL"} {
		t.Setenv(k, "")
	}

	cfg := New()
	assert.Equal(t, filepath.Join("public", "images.json"), cfg.CollectionPath)
	assert.Equal(t, filepath.Join("public", "images_original.json"), cfg.BackupPath)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, RegionModeUniform, cfg.RegionMode)
	assert.Equal(t, CountSourceCatalog, cfg.CountSource)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, 5*time.Minute, cfg.LockTTL)
	require.NoError(t, cfg.Validate())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("COLLECTION_PATH", "data/gallery.json")
	t.Setenv("BACKUP_PATH", "")
	t.Setenv("SEED", "42")
	t.Setenv("REGION_MODE", "quota")
	t.Setenv("COUNT_SOURCE", "collection")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("LOCK_TTL", "30s")
	t.Setenv("REDIS_DB", "3")

	cfg := New()
	assert.Equal(t, "data/gallery.json", cfg.CollectionPath)
	assert.Equal(t, "data/gallery_original.json", cfg.BackupPath)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, RegionModeQuota, cfg.RegionMode)
	assert.Equal(t, CountSourceCollection, cfg.CountSource)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestNewIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SEED", "not-a-number")
	t.Setenv("DRY_RUN", "maybe")
	t.Setenv("LOCK_TTL", "forever")

	cfg := New()
	assert.Equal(t, int64(0), cfg.Seed)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, 5*time.Minute, cfg.LockTTL)
}

func TestDefaultBackupPath(t *testing.T) {
	assert.Equal(t, "public/images_original.json", DefaultBackupPath("public/images.json"))
	assert.Equal(t, "images_original.json", DefaultBackupPath("images"))
}

func TestValidateRejectsUnknownModes(t *testing.T) {
	cfg := &Config{CollectionPath: "x.json", RegionMode: "weighted", CountSource: CountSourceCatalog}
	err := cfg.Validate()
	var invalid *InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "REGION_MODE", invalid.Key)

	cfg = &Config{CollectionPath: "x.json", RegionMode: RegionModeUniform, CountSource: "scan"}
	require.ErrorAs(t, cfg.Validate(), &invalid)
	assert.Equal(t, "COUNT_SOURCE", invalid.Key)

	cfg = &Config{CollectionPath: " ", RegionMode: RegionModeUniform, CountSource: CountSourceCatalog}
	require.ErrorAs(t, cfg.Validate(), &invalid)
	assert.Equal(t, "COLLECTION_PATH", invalid.Key)
}
