package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())

	assert.Equal(t, []string{"era1", "era2", "era3", "era4", "era5", "era6", "era7"}, c.EraKeys())
	assert.Equal(t, []string{"Europe", "Asia", "Africa", "Americas", "Oceania", "Middle East"}, c.RegionNames())
	assert.Len(t, c.URLs, 20)
	assert.Len(t, c.Types, 11)
	assert.Len(t, c.Palette, 12)
}

func TestDefaultCatalogCounts(t *testing.T) {
	c := DefaultCatalog()

	current := c.CurrentEraCounts()
	target := c.TargetEraCounts()
	added := 0
	for k, tgt := range target {
		added += tgt - current[k]
	}
	assert.Equal(t, 451, added)

	assert.Equal(t, 100, c.TargetRegionCounts()["Asia"])
	assert.Equal(t, 3, c.CurrentRegionCounts()["Middle East"])
}

func TestBucketForSharedEdges(t *testing.T) {
	c := DefaultCatalog()

	cases := map[int]string{
		-50000: "era1",
		-10000: "era1",
		-9999:  "era2",
		-3000:  "era2",
		0:      "era3",
		1:      "era4",
		1900:   "era5",
		2025:   "era7",
	}
	for year, want := range cases {
		b, ok := c.BucketFor(year)
		require.True(t, ok, "year %d", year)
		assert.Equal(t, want, b.Key, "year %d", year)
	}

	_, ok := c.BucketFor(2100)
	assert.False(t, ok)
	_, ok = c.BucketFor(-60000)
	assert.False(t, ok)
}

func TestCatalogMembership(t *testing.T) {
	c := DefaultCatalog()
	assert.True(t, c.HasRegion("Middle East"))
	assert.False(t, c.HasRegion("Antarctica"))
	assert.True(t, c.HasType("geoglyph"))
	assert.False(t, c.HasType("sculpture"))
	assert.True(t, c.HasColor("ochre"))
	assert.False(t, c.HasColor("purple"))
	assert.True(t, c.HasURL(c.URLs[0]))
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
	}{
		{"no eras", func(c *Catalog) { c.Eras = nil }},
		{"inverted era", func(c *Catalog) { c.Eras[0].Min, c.Eras[0].Max = 10, -10 }},
		{"duplicate era", func(c *Catalog) { c.Eras[1].Key = c.Eras[0].Key }},
		{"duplicate region", func(c *Catalog) { c.Regions[1].Name = c.Regions[0].Name }},
		{"no regions", func(c *Catalog) { c.Regions = nil }},
		{"empty urls", func(c *Catalog) { c.URLs = nil }},
		{"small palette", func(c *Catalog) { c.Palette = c.Palette[:3] }},
		{"zero min colors", func(c *Catalog) { c.MinColors = 0 }},
		{"empty prefix", func(c *Catalog) { c.IDPrefix = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCatalog()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidCatalog)
		})
	}
}
