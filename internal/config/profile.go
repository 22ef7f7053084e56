package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// QuotaProfile overrides the compiled-in counts, e.g.
//
//	eras:
//	  era1: {current: 11, target: 120}
//	regions:
//	  Europe: {target: 150}
//
// Omitted fields keep the catalog value.
type QuotaProfile struct {
	Eras    map[string]CountOverride `yaml:"eras"`
	Regions map[string]CountOverride `yaml:"regions"`
}

type CountOverride struct {
	Current *int `yaml:"current"`
	Target  *int `yaml:"target"`
}

var ErrInvalidProfile = errors.New("invalid quota profile")

func LoadQuotaProfile(path string) (*QuotaProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quota profile %s: %w", path, err)
	}
	return ParseQuotaProfile(data)
}

func ParseQuotaProfile(data []byte) (*QuotaProfile, error) {
	var p QuotaProfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return &p, nil
}

// Apply writes the overrides into c. Keys unknown to the catalog and negative
// counts are rejected; c is left untouched on error.
func (p *QuotaProfile) Apply(c *Catalog) error {
	for key, o := range p.Eras {
		if _, ok := c.Era(key); !ok {
			return fmt.Errorf("%w: unknown era bucket %q", ErrInvalidProfile, key)
		}
		if err := o.check(key); err != nil {
			return err
		}
	}
	for name, o := range p.Regions {
		if !c.HasRegion(name) {
			return fmt.Errorf("%w: unknown region %q", ErrInvalidProfile, name)
		}
		if err := o.check(name); err != nil {
			return err
		}
	}

	for i := range c.Eras {
		if o, ok := p.Eras[c.Eras[i].Key]; ok {
			o.apply(&c.Eras[i].Current, &c.Eras[i].Target)
		}
	}
	for i := range c.Regions {
		if o, ok := p.Regions[c.Regions[i].Name]; ok {
			o.apply(&c.Regions[i].Current, &c.Regions[i].Target)
		}
	}
	return nil
}

func (o CountOverride) check(key string) error {
	if o.Current != nil && *o.Current < 0 {
		return fmt.Errorf("%w: negative current count for %q", ErrInvalidProfile, key)
	}
	if o.Target != nil && *o.Target < 0 {
		return fmt.Errorf("%w: negative target count for %q", ErrInvalidProfile, key)
	}
	return nil
}

func (o CountOverride) apply(current, target *int) {
	if o.Current != nil {
		*current = *o.Current
	}
	if o.Target != nil {
		*target = *o.Target
	}
}
