package services

import (
	"fmt"
	"sort"

	"github.com/synesthesie/augment/internal/config"
	"github.com/synesthesie/augment/internal/models"
)

// Counts is a per-key tally for era buckets and regions.
type Counts struct {
	Eras    map[string]int
	Regions map[string]int

	// Records that fell outside every era bucket or carry an unknown region.
	Unbucketed    int
	UnknownRegion int
}

type QuotaService struct {
	catalog *config.Catalog
}

func NewQuotaService(catalog *config.Catalog) *QuotaService {
	return &QuotaService{catalog: catalog}
}

// ComputeDeltas returns target-current for every key, in the given order.
// current, target and order must name the same keys. A nil order sorts the
// keys lexically.
func (s *QuotaService) ComputeDeltas(current, target map[string]int, order []string) (models.QuotaDeltas, error) {
	if len(current) != len(target) {
		return nil, fmt.Errorf("%w: %d current keys, %d target keys", ErrQuotaKeyMismatch, len(current), len(target))
	}
	for key := range target {
		if _, ok := current[key]; !ok {
			return nil, fmt.Errorf("%w: %q has a target but no current count", ErrQuotaKeyMismatch, key)
		}
	}

	if order == nil {
		order = make([]string, 0, len(target))
		for key := range target {
			order = append(order, key)
		}
		sort.Strings(order)
	}
	if len(order) != len(target) {
		return nil, fmt.Errorf("%w: order lists %d keys, expected %d", ErrQuotaKeyMismatch, len(order), len(target))
	}

	deltas := make(models.QuotaDeltas, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, key := range order {
		t, ok := target[key]
		if !ok || seen[key] {
			return nil, fmt.Errorf("%w: order key %q", ErrQuotaKeyMismatch, key)
		}
		seen[key] = true
		deltas = append(deltas, models.QuotaDelta{Key: key, Current: current[key], Target: t})
	}
	return deltas, nil
}

func (s *QuotaService) EraDeltas(counts Counts) (models.QuotaDeltas, error) {
	return s.ComputeDeltas(counts.Eras, s.catalog.TargetEraCounts(), s.catalog.EraKeys())
}

func (s *QuotaService) RegionDeltas(counts Counts) (models.QuotaDeltas, error) {
	return s.ComputeDeltas(counts.Regions, s.catalog.TargetRegionCounts(), s.catalog.RegionNames())
}

// CatalogCounts returns the compiled-in current counts.
func (s *QuotaService) CatalogCounts() Counts {
	return Counts{
		Eras:    s.catalog.CurrentEraCounts(),
		Regions: s.catalog.CurrentRegionCounts(),
	}
}

// CountCollection tallies the loaded collection per era bucket and region.
func (s *QuotaService) CountCollection(c *models.Collection) Counts {
	counts := Counts{
		Eras:    make(map[string]int, len(s.catalog.Eras)),
		Regions: make(map[string]int, len(s.catalog.Regions)),
	}
	for _, key := range s.catalog.EraKeys() {
		counts.Eras[key] = 0
	}
	for _, name := range s.catalog.RegionNames() {
		counts.Regions[name] = 0
	}
	if c == nil {
		return counts
	}

	for _, e := range c.Entries {
		if e.Era == nil {
			counts.Unbucketed++
		} else if b, ok := s.catalog.BucketFor(*e.Era); ok {
			counts.Eras[b.Key]++
		} else {
			counts.Unbucketed++
		}

		if _, ok := counts.Regions[e.Region]; ok {
			counts.Regions[e.Region]++
		} else {
			counts.UnknownRegion++
		}
	}
	return counts
}

// Counts picks the tally source configured by COUNT_SOURCE.
func (s *QuotaService) Counts(source string, c *models.Collection) (Counts, error) {
	switch source {
	case config.CountSourceCatalog, "":
		return s.CatalogCounts(), nil
	case config.CountSourceCollection:
		return s.CountCollection(c), nil
	default:
		return Counts{}, fmt.Errorf("%w: count source %q", ErrUnknownMode, source)
	}
}
