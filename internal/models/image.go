package models

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// ImageRecord is one entry of the image collection. Field order matches the
// order the frontend expects in images.json.
type ImageRecord struct {
	ID       string     `json:"id"`
	URL      string     `json:"url"`
	Position [3]float64 `json:"position"`
	Era      int        `json:"era"`
	Region   string     `json:"region"`
	Colors   []string   `json:"colors"`
	Type     string     `json:"type"`
}

// Entry is a record as it sits in the collection. Raw is kept verbatim so
// fields this tool does not know about (featureVector, layoutMethod, ...)
// are written back untouched.
type Entry struct {
	Raw    json.RawMessage
	ID     string
	Era    *int
	Region string
}

// NewEntry parses the fields the generator needs out of raw. raw must be a
// JSON object; the remaining fields are best effort.
func NewEntry(raw json.RawMessage) (Entry, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Entry{}, err
	}
	if obj == nil {
		return Entry{}, fmt.Errorf("record is null")
	}

	e := Entry{Raw: raw, ID: idString(obj["id"])}
	if era, ok := ParseEra(obj["era"]); ok {
		e.Era = &era
	}
	if region, ok := obj["region"]; ok {
		_ = json.Unmarshal(region, &e.Region)
	}
	return e, nil
}

func EntryFromRecord(r ImageRecord) (Entry, error) {
	raw, err := json.MarshalNoEscape(r)
	if err != nil {
		return Entry{}, err
	}
	era := r.Era
	return Entry{Raw: raw, ID: r.ID, Era: &era, Region: r.Region}, nil
}

// maxEra bounds accepted years; anything larger is not a calendar year and
// would not survive the int conversion.
const maxEra = 1 << 31

// ParseEra reads a whole-number year. Fractions, out of range values and
// non-numbers report false.
func ParseEra(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || raw[0] == '"' {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || n == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		if v < -maxEra || v > maxEra {
			return 0, false
		}
		return int(v), true
	}
	// 1.5e3 and 2000.0 are whole years written as floats
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f != math.Trunc(f) || f < -maxEra || f > maxEra {
		return 0, false
	}
	return int(f), true
}

// idString accepts string and numeric ids.
func idString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Collection is the full persisted state: an ordered list of records.
type Collection struct {
	Entries []Entry
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// IDs returns the set of non-empty ids present in the collection.
func (c *Collection) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, c.Len())
	if c == nil {
		return ids
	}
	for _, e := range c.Entries {
		if e.ID != "" {
			ids[e.ID] = struct{}{}
		}
	}
	return ids
}

// Raw returns the entries as a JSON array ready to encode.
func (c *Collection) Raw() []json.RawMessage {
	out := make([]json.RawMessage, 0, c.Len())
	if c == nil {
		return out
	}
	for _, e := range c.Entries {
		out = append(out, e.Raw)
	}
	return out
}

// FormatID renders n with the given prefix and zero padding, e.g.
// FormatID("generated_", 3, 51) == "generated_051".
func FormatID(prefix string, width, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}

// ParseIDNumber returns the numeric suffix of id if it carries prefix.
func ParseIDNumber(prefix, id string) (int, bool) {
	if len(id) <= len(prefix) || id[:len(prefix)] != prefix {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
