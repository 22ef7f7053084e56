package config

import (
	"errors"
	"fmt"
)

// EraBucket is a named historical span. Min and Max are inclusive years,
// negative for BCE.
type EraBucket struct {
	Key     string
	Label   string
	Min     int
	Max     int
	Current int
	Target  int
}

func (b EraBucket) Contains(year int) bool {
	return year >= b.Min && year <= b.Max
}

type Region struct {
	Name    string
	Current int
	Target  int
}

// Range is symmetric around zero: samples fall in [-HalfWidth, HalfWidth].
type Range struct {
	HalfWidth float64
}

func (r Range) Contains(v float64) bool {
	return v >= -r.HalfWidth && v <= r.HalfWidth
}

// Catalog holds every tunable the generator draws from. The defaults are
// compiled in; a quota profile may only override counts.
type Catalog struct {
	Eras    []EraBucket
	Regions []Region

	URLs    []string
	Types   []string
	Palette []string

	PositionXZ Range
	PositionY  Range
	Precision  int

	MinColors int
	MaxColors int

	IDPrefix string
	IDWidth  int
	IDStart  int
}

var ErrInvalidCatalog = errors.New("invalid catalog")

func DefaultCatalog() *Catalog {
	return &Catalog{
		Eras: []EraBucket{
			{Key: "era1", Label: "50,000-10,000 BCE", Min: -50000, Max: -10000, Current: 11, Target: 75},
			{Key: "era2", Label: "10,000-3,000 BCE", Min: -10000, Max: -3000, Current: 10, Target: 75},
			{Key: "era3", Label: "3,000 BCE-0 CE", Min: -3000, Max: 0, Current: 2, Target: 75},
			{Key: "era4", Label: "0-1500 CE", Min: 1, Max: 1500, Current: 4, Target: 75},
			{Key: "era5", Label: "1500-1900", Min: 1501, Max: 1900, Current: 2, Target: 75},
			{Key: "era6", Label: "1900-2000", Min: 1901, Max: 2000, Current: 4, Target: 75},
			{Key: "era7", Label: "2000-present", Min: 2001, Max: 2025, Current: 16, Target: 50},
		},
		Regions: []Region{
			{Name: "Europe", Current: 14, Target: 100},
			{Name: "Asia", Current: 6, Target: 100},
			{Name: "Africa", Current: 5, Target: 75},
			{Name: "Americas", Current: 17, Target: 75},
			{Name: "Oceania", Current: 4, Target: 75},
			{Name: "Middle East", Current: 3, Target: 75},
		},
		// Wikimedia Commons, CORS-compliant
		URLs: []string{
			"https://upload.wikimedia.org/wikipedia/commons/thumb/6/6c/Lascaux_painting.jpg/800px-Lascaux_painting.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/3/3d/AltamiraBison.jpg/800px-AltamiraBison.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/9/9e/Ubirr_Rock_Art.jpg/800px-Ubirr_Rock_Art.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/3/3f/Bhimbetka_Rock_Shelters_Paintings.jpg/800px-Bhimbetka_Rock_Shelters_Paintings.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/9/9f/Tassili_n%27Ajjer_Rock_Art.jpg/800px-Tassili_n%27Ajjer_Rock_Art.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/7/7a/Newgrange_Spiral_Carving.jpg/800px-Newgrange_Spiral_Carving.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/8/8a/Eye_of_Horus.jpg/800px-Eye_of_Horus.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/9/9b/Tibetan_Mandala.jpg/800px-Tibetan_Mandala.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/a/a5/Aboriginal_Dot_Painting.jpg/800px-Aboriginal_Dot_Painting.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/2/2b/Banksy_Hand_Graffiti.jpg/800px-Banksy_Hand_Graffiti.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/8/8c/Chalk_Handprint_Protest.jpg/800px-Chalk_Handprint_Protest.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/6/6b/Mohamed_Mahmoud_Street_Graffiti.jpg/800px-Mohamed_Mahmoud_Street_Graffiti.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/4/4e/Hong_Kong_Protest_Handprints.jpg/800px-Hong_Kong_Protest_Handprints.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/7/7d/BLM_Handprint_Mural.jpg/800px-BLM_Handprint_Mural.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/9/9a/Ukraine_Handprint_Memorial.jpg/800px-Ukraine_Handprint_Memorial.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/5/5b/Sego_Canyon_Handprints.jpg/800px-Sego_Canyon_Handprints.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/4/4b/Tainter_Cave_Pictographs.jpg/800px-Tainter_Cave_Pictographs.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/8/8d/Chumash_Rock_Art_Spiral.jpg/800px-Chumash_Rock_Art_Spiral.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/7/7e/Petroglyph_Spiral_Design.jpg/800px-Petroglyph_Spiral_Design.jpg",
			"https://upload.wikimedia.org/wikipedia/commons/thumb/a/a8/Maori_Spiral_Tattoo.jpg/800px-Maori_Spiral_Tattoo.jpg",
		},
		Types: []string{
			"handprint", "cave_painting", "rock_painting", "carved", "painted", "graffiti",
			"sketch", "digital", "protest", "pictograph", "geoglyph",
		},
		Palette: []string{
			"red", "black", "white", "yellow", "blue", "green",
			"ochre", "gold", "brown", "grey", "stone", "sand",
		},

		// x/z scatter over a 40-wide ground plane, y flattened to 20
		PositionXZ: Range{HalfWidth: 20},
		PositionY:  Range{HalfWidth: 10},
		Precision:  2,

		MinColors: 1,
		MaxColors: 4,

		IDPrefix: "generated_",
		IDWidth:  3,
		IDStart:  51,
	}
}

func (c *Catalog) EraKeys() []string {
	keys := make([]string, len(c.Eras))
	for i, e := range c.Eras {
		keys[i] = e.Key
	}
	return keys
}

func (c *Catalog) RegionNames() []string {
	names := make([]string, len(c.Regions))
	for i, r := range c.Regions {
		names[i] = r.Name
	}
	return names
}

func (c *Catalog) Era(key string) (EraBucket, bool) {
	for _, e := range c.Eras {
		if e.Key == key {
			return e, true
		}
	}
	return EraBucket{}, false
}

// BucketFor returns the first bucket containing year. Buckets share edges
// (era1 ends where era2 starts), so order decides ties.
func (c *Catalog) BucketFor(year int) (EraBucket, bool) {
	for _, e := range c.Eras {
		if e.Contains(year) {
			return e, true
		}
	}
	return EraBucket{}, false
}

func (c *Catalog) HasRegion(name string) bool { return contains(c.RegionNames(), name) }
func (c *Catalog) HasType(t string) bool { return contains(c.Types, t) }
func (c *Catalog) HasURL(u string) bool { return contains(c.URLs, u) }
func (c *Catalog) HasColor(color string) bool { return contains(c.Palette, color) }

func (c *Catalog) CurrentEraCounts() map[string]int {
	m := make(map[string]int, len(c.Eras))
	for _, e := range c.Eras {
		m[e.Key] = e.Current
	}
	return m
}

func (c *Catalog) TargetEraCounts() map[string]int {
	m := make(map[string]int, len(c.Eras))
	for _, e := range c.Eras {
		m[e.Key] = e.Target
	}
	return m
}

func (c *Catalog) CurrentRegionCounts() map[string]int {
	m := make(map[string]int, len(c.Regions))
	for _, r := range c.Regions {
		m[r.Name] = r.Current
	}
	return m
}

func (c *Catalog) TargetRegionCounts() map[string]int {
	m := make(map[string]int, len(c.Regions))
	for _, r := range c.Regions {
		m[r.Name] = r.Target
	}
	return m
}

func (c *Catalog) Validate() error {
	if len(c.Eras) == 0 {
		return fmt.Errorf("%w: no era buckets", ErrInvalidCatalog)
	}
	seen := make(map[string]bool, len(c.Eras))
	for _, e := range c.Eras {
		if e.Key == "" {
			return fmt.Errorf("%w: era bucket without key", ErrInvalidCatalog)
		}
		if seen[e.Key] {
			return fmt.Errorf("%w: duplicate era bucket %q", ErrInvalidCatalog, e.Key)
		}
		seen[e.Key] = true
		if e.Min > e.Max {
			return fmt.Errorf("%w: era bucket %q has min %d > max %d", ErrInvalidCatalog, e.Key, e.Min, e.Max)
		}
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("%w: no regions", ErrInvalidCatalog)
	}
	seen = make(map[string]bool, len(c.Regions))
	for _, r := range c.Regions {
		if seen[r.Name] {
			return fmt.Errorf("%w: duplicate region %q", ErrInvalidCatalog, r.Name)
		}
		seen[r.Name] = true
	}
	if len(c.URLs) == 0 || len(c.Types) == 0 {
		return fmt.Errorf("%w: empty url or type pool", ErrInvalidCatalog)
	}
	if c.MinColors < 1 || c.MinColors > c.MaxColors {
		return fmt.Errorf("%w: color count range %d..%d", ErrInvalidCatalog, c.MinColors, c.MaxColors)
	}
	if len(c.Palette) < c.MaxColors {
		return fmt.Errorf("%w: palette has %d colors, need at least %d", ErrInvalidCatalog, len(c.Palette), c.MaxColors)
	}
	if c.PositionXZ.HalfWidth < 0 || c.PositionY.HalfWidth < 0 {
		return fmt.Errorf("%w: negative position range", ErrInvalidCatalog)
	}
	if c.IDPrefix == "" {
		return fmt.Errorf("%w: empty id prefix", ErrInvalidCatalog)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
