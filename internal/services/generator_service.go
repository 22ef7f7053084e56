package services

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/synesthesie/augment/internal/config"
	"github.com/synesthesie/augment/internal/models"
)

// IDSequence hands out generated ids. It starts above the highest numbered
// id already carrying the prefix (never below the catalog start) and skips
// any id the collection already holds.
type IDSequence struct {
	prefix string
	width  int
	next   int
	taken  map[string]struct{}
}

func NewIDSequence(catalog *config.Catalog, existing *models.Collection) *IDSequence {
	taken := existing.IDs()
	next := catalog.IDStart
	for id := range taken {
		if n, ok := models.ParseIDNumber(catalog.IDPrefix, id); ok && n >= next {
			next = n + 1
		}
	}
	return &IDSequence{
		prefix: catalog.IDPrefix,
		width:  catalog.IDWidth,
		next:   next,
		taken:  taken,
	}
}

func (s *IDSequence) Next() string {
	for {
		id := models.FormatID(s.prefix, s.width, s.next)
		s.next++
		if _, ok := s.taken[id]; ok {
			continue
		}
		s.taken[id] = struct{}{}
		return id
	}
}

// Start returns the number the next id will be formatted from, before any
// collision skipping.
func (s *IDSequence) Start() int {
	return s.next
}

// RegionPicker chooses the region for each generated record.
type RegionPicker interface {
	Pick(rng *rand.Rand) string
}

type uniformRegions struct {
	names []string
}

func (p *uniformRegions) Pick(rng *rand.Rand) string {
	return p.names[rng.Intn(len(p.names))]
}

// quotaRegions weights each region by its remaining positive delta. Once
// every delta is used up it behaves like uniformRegions.
type quotaRegions struct {
	names     []string
	remaining []int
}

func (p *quotaRegions) Pick(rng *rand.Rand) string {
	total := 0
	for _, n := range p.remaining {
		total += n
	}
	if total == 0 {
		return p.names[rng.Intn(len(p.names))]
	}
	x := rng.Intn(total)
	for i, n := range p.remaining {
		if x < n {
			p.remaining[i]--
			return p.names[i]
		}
		x -= n
	}
	// unreachable while total matches remaining
	return p.names[len(p.names)-1]
}

// NewRegionPicker builds the picker for REGION_MODE. Uniform keeps the region
// targets informational only; quota steers generation towards them.
func NewRegionPicker(mode string, catalog *config.Catalog, regionDeltas models.QuotaDeltas) (RegionPicker, error) {
	names := catalog.RegionNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no regions", config.ErrInvalidCatalog)
	}
	switch mode {
	case config.RegionModeUniform, "":
		return &uniformRegions{names: names}, nil
	case config.RegionModeQuota:
		needed := make(map[string]int, len(regionDeltas))
		for _, d := range regionDeltas {
			needed[d.Key] = d.Needed()
		}
		remaining := make([]int, len(names))
		for i, name := range names {
			remaining[i] = needed[name]
		}
		return &quotaRegions{names: names, remaining: remaining}, nil
	default:
		return nil, fmt.Errorf("%w: region mode %q", ErrUnknownMode, mode)
	}
}

// GeneratedRecord pairs a record with the era bucket it was sampled from.
type GeneratedRecord struct {
	Bucket string
	Record models.ImageRecord
}

type GeneratorService struct {
	catalog *config.Catalog
	rng     *rand.Rand
	ids     *IDSequence
	regions RegionPicker
}

func NewGeneratorService(catalog *config.Catalog, rng *rand.Rand, ids *IDSequence, regions RegionPicker) *GeneratorService {
	return &GeneratorService{
		catalog: catalog,
		rng:     rng,
		ids:     ids,
		regions: regions,
	}
}

// Generate produces Needed() records for every era delta, in delta order.
func (s *GeneratorService) Generate(eraDeltas models.QuotaDeltas) ([]GeneratedRecord, error) {
	out := make([]GeneratedRecord, 0, eraDeltas.Total())
	for _, d := range eraDeltas {
		bucket, ok := s.catalog.Era(d.Key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEraBucket, d.Key)
		}
		for i := 0; i < d.Needed(); i++ {
			out = append(out, GeneratedRecord{Bucket: bucket.Key, Record: s.NewRecord(bucket)})
		}
	}
	return out, nil
}

func (s *GeneratorService) NewRecord(bucket config.EraBucket) models.ImageRecord {
	region := s.regions.Pick(s.rng)
	id := s.ids.Next()
	url := s.catalog.URLs[s.rng.Intn(len(s.catalog.URLs))]
	position := s.randomPosition()
	era := s.randomEra(bucket)
	colors := s.randomColors()
	typ := s.catalog.Types[s.rng.Intn(len(s.catalog.Types))]

	return models.ImageRecord{
		ID:       id,
		URL:      url,
		Position: position,
		Era:      era,
		Region:   region,
		Colors:   colors,
		Type:     typ,
	}
}

func (s *GeneratorService) randomPosition() [3]float64 {
	return [3]float64{
		s.sampleAxis(s.catalog.PositionXZ),
		s.sampleAxis(s.catalog.PositionY),
		s.sampleAxis(s.catalog.PositionXZ),
	}
}

func (s *GeneratorService) sampleAxis(r config.Range) float64 {
	v := (s.rng.Float64() - 0.5) * 2 * r.HalfWidth
	return roundTo(v, s.catalog.Precision)
}

func (s *GeneratorService) randomEra(b config.EraBucket) int {
	return b.Min + s.rng.Intn(b.Max-b.Min+1)
}

// randomColors draws 1..MaxColors palette entries without replacement.
func (s *GeneratorService) randomColors() []string {
	n := s.catalog.MinColors + s.rng.Intn(s.catalog.MaxColors-s.catalog.MinColors+1)
	perm := s.rng.Perm(len(s.catalog.Palette))
	colors := make([]string, n)
	for i := 0; i < n; i++ {
		colors[i] = s.catalog.Palette[perm[i]]
	}
	return dedupe(colors)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	r := math.Round(v*p) / p
	if r == 0 {
		// no "-0" in the output
		return 0
	}
	return r
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
