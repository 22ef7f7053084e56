package models

import (
	"fmt"
	"strings"
)

// QuotaDelta is target minus current for one era bucket or region.
type QuotaDelta struct {
	Key     string `json:"key"`
	Current int    `json:"current"`
	Target  int    `json:"target"`
}

func (d QuotaDelta) Delta() int {
	return d.Target - d.Current
}

// Needed is the number of records to synthesize. Over-quota keys need none.
func (d QuotaDelta) Needed() int {
	if n := d.Delta(); n > 0 {
		return n
	}
	return 0
}

type QuotaDeltas []QuotaDelta

// Total sums Needed over all keys.
func (ds QuotaDeltas) Total() int {
	total := 0
	for _, d := range ds {
		total += d.Needed()
	}
	return total
}

func (ds QuotaDeltas) Map() map[string]int {
	m := make(map[string]int, len(ds))
	for _, d := range ds {
		m[d.Key] = d.Delta()
	}
	return m
}

// String renders deltas in key order, e.g. "{era1: 64, era2: 65}". Negative
// deltas are shown as computed.
func (ds QuotaDeltas) String() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = fmt.Sprintf("%s: %d", d.Key, d.Delta())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
