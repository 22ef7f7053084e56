package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synesthesie/augment/internal/config"
	"github.com/synesthesie/augment/internal/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ENV", "COLLECTION_PATH", "BACKUP_PATH", "QUOTA_PROFILE", "DRY_RUN", "SEED",
		"REGION_MODE", "COUNT_SOURCE", "LEDGER_ENABLED", "LOCK_ENABLED", "BACKUP_BUCKET"} {
		t.Setenv(key, "")
	}
}

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "augment"}
	addAugmentFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyFlagsOnlyTouchesChangedFlags(t *testing.T) {
	clearEnv(t)
	cfg := config.New()
	cfg.Seed = 99
	cfg.RegionMode = config.RegionModeQuota

	applyFlags(testCommand(t, "--count-source", "collection", "--dry-run"), cfg)

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, config.RegionModeQuota, cfg.RegionMode)
	assert.Equal(t, config.CountSourceCollection, cfg.CountSource)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, filepath.Join("public", "images.json"), cfg.CollectionPath)
}

func TestApplyFlagsFileMovesBackup(t *testing.T) {
	clearEnv(t)
	cfg := config.New()
	applyFlags(testCommand(t, "--file", "data/set.json", "--seed", "5"), cfg)
	assert.Equal(t, "data/set.json", cfg.CollectionPath)
	assert.Equal(t, "data/set_original.json", cfg.BackupPath)
	assert.Equal(t, int64(5), cfg.Seed)

	t.Setenv("BACKUP_PATH", "/backups/keep.json")
	cfg = config.New()
	applyFlags(testCommand(t, "--file", "data/set.json"), cfg)
	assert.Equal(t, "/backups/keep.json", cfg.BackupPath)
}

func TestLoadCatalogAppliesProfile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "quota.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("eras:\n  era7: {target: 16}\nregions:\n  Europe: {current: 100}\n"), 0o644))

	catalog, err := loadCatalog(&config.Config{QuotaProfile: profile})
	require.NoError(t, err)
	era7, ok := catalog.Era("era7")
	require.True(t, ok)
	assert.Equal(t, 16, era7.Target)
	assert.Equal(t, 100, catalog.CurrentRegionCounts()["Europe"])
}

func TestLoadCatalogRejectsBadProfile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "quota.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("eras:\n  era9: {target: 1}\n"), 0o644))

	_, err := loadCatalog(&config.Config{QuotaProfile: profile})
	assert.ErrorIs(t, err, config.ErrInvalidProfile)

	_, err = loadCatalog(&config.Config{QuotaProfile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestWriteRuns(t *testing.T) {
	var buf bytes.Buffer
	writeRuns(&buf, nil)
	assert.Equal(t, "No runs recorded.\n", buf.String())

	buf.Reset()
	id := uuid.MustParse("0b6f5d2e-1c1a-4f7e-9a55-5d1c2e3f4a5b")
	writeRuns(&buf, []*models.AugmentRun{{
		ID:             id,
		CollectionPath: "public/images.json",
		Seed:           7,
		InputCount:     50,
		GeneratedCount: 451,
		TotalCount:     501,
		Status:         models.RunStatusCompleted,
		StartedAt:      time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}})
	assert.Equal(t, "2026-02-03T04:05:06Z  "+id.String()+"  completed  50 + 451 = 501  seed=7  public/images.json\n", buf.String())
}

func TestRootCommandAugmentsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "images.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "a", "era": 5, "region": "Asia"}]`), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--file", path, "--seed", "3"})
	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Expanded to 452 images.", lines[2])

	backup, err := os.ReadFile(filepath.Join(dir, "images_original.json"))
	require.NoError(t, err)
	assert.Equal(t, `[{"id": "a", "era": 5, "region": "Asia"}]`, string(backup))
}
