package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/synesthesie/augment/internal/config"
	"github.com/synesthesie/augment/internal/models"
)

var ErrInvalidRecord = errors.New("invalid record")

// ValidateRecord checks a generated record against the catalog and the era
// bucket it was sampled from.
func ValidateRecord(c *config.Catalog, bucket config.EraBucket, r models.ImageRecord) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if !c.HasURL(r.URL) {
		return fmt.Errorf("%w: %s: url not in pool", ErrInvalidRecord, r.ID)
	}
	if !bucket.Contains(r.Era) {
		return fmt.Errorf("%w: %s: era %d outside %s [%d, %d]", ErrInvalidRecord, r.ID, r.Era, bucket.Key, bucket.Min, bucket.Max)
	}
	if !c.HasRegion(r.Region) {
		return fmt.Errorf("%w: %s: unknown region %q", ErrInvalidRecord, r.ID, r.Region)
	}
	if !c.HasType(r.Type) {
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidRecord, r.ID, r.Type)
	}
	if err := ValidateColors(c, r.Colors); err != nil {
		return fmt.Errorf("%s: %w", r.ID, err)
	}
	if err := ValidatePosition(c, r.Position); err != nil {
		return fmt.Errorf("%s: %w", r.ID, err)
	}
	return nil
}

// ValidateColors requires MinColors..MaxColors distinct palette entries.
func ValidateColors(c *config.Catalog, colors []string) error {
	if len(colors) < c.MinColors || len(colors) > c.MaxColors {
		return fmt.Errorf("%w: %d colors, want %d..%d", ErrInvalidRecord, len(colors), c.MinColors, c.MaxColors)
	}
	seen := make(map[string]bool, len(colors))
	for _, color := range colors {
		if !c.HasColor(color) {
			return fmt.Errorf("%w: color %q not in palette", ErrInvalidRecord, color)
		}
		if seen[color] {
			return fmt.Errorf("%w: duplicate color %q", ErrInvalidRecord, color)
		}
		seen[color] = true
	}
	return nil
}

func ValidatePosition(c *config.Catalog, p [3]float64) error {
	ranges := [3]config.Range{c.PositionXZ, c.PositionY, c.PositionXZ}
	for axis, r := range ranges {
		if !r.Contains(p[axis]) {
			return fmt.Errorf("%w: position[%d]=%v outside ±%v", ErrInvalidRecord, axis, p[axis], r.HalfWidth)
		}
	}
	return nil
}

// ValidateNewIDs requires ids to be non-empty, pairwise distinct and absent
// from existing.
func ValidateNewIDs(existing map[string]struct{}, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidRecord)
		}
		if _, ok := existing[id]; ok {
			return fmt.Errorf("%w: id %q already in collection", ErrInvalidRecord, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidRecord, id)
		}
		seen[id] = true
	}
	return nil
}
