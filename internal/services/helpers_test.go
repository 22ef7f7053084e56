package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/synesthesie/augment/internal/config"
	"github.com/synesthesie/augment/internal/models"
)

// fixtureJSON renders n hand-curated looking records. Every third record
// carries extra fields the augmenter must not touch.
func fixtureJSON(n int) []byte {
	var b strings.Builder
	b.WriteString("[\n")
	for i := 1; i <= n; i++ {
		extra := ""
		if i%3 == 0 {
			extra = `, "featureVector": [0.25, 0.5], "layoutMethod": "umap"`
		}
		fmt.Fprintf(&b, `  {"id": "img_%03d", "url": "https://example.org/%d.jpg", "position": [1, 2, 3], "era": -20000, "region": "Europe", "colors": ["red"], "type": "handprint"%s}`, i, i, extra)
		if i < n {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]")
	return []byte(b.String())
}

func writeFixture(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "public", "images.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, fixtureJSON(n), 0o644))
	return path
}

func mustParse(t *testing.T, data []byte) *models.Collection {
	t.Helper()
	c, err := Parse(data)
	require.NoError(t, err)
	return c
}

func testConfig(path string) *config.Config {
	return &config.Config{
		Env:            "test",
		CollectionPath: path,
		BackupPath:     config.DefaultBackupPath(path),
		Seed:           7,
		RegionMode:     config.RegionModeUniform,
		CountSource:    config.CountSourceCatalog,
		BackupPrefix:   "collections",
	}
}
