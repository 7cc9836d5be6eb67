/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package throttle

import (
	"fmt"
	"sort"
	"time"
)

// SentinelLoadFactor is the load factor of the mandatory catch-all entry of a limits table.
// Its delay is used for every load factor below all other breakpoints.
const SentinelLoadFactor int64 = -1

// LimitEntry maps a load factor breakpoint to the delay that applies from this breakpoint on.
type LimitEntry struct {
	// LoadFactor is a caller-defined breakpoint in arbitrary units (e.g. queue depth or request rate).
	LoadFactor int64 `json:"loadFactor"`

	// Delay is the delay that applies when the current load factor
	// is >= LoadFactor and below the next breakpoint. Must be >= 0.
	Delay time.Duration `json:"delay"`
}

// LimitsTable is a sequence of limit entries.
// A valid table is non-empty, contains exactly one entry with SentinelLoadFactor,
// and has no negative delays. Tables are stored sorted ascending by load factor.
type LimitsTable []LimitEntry

// Validate checks the table against the limits invariants and returns descriptions
// of all found violations at once, not only the first one.
// An empty result means the table is valid.
func (t LimitsTable) Validate() []string {
	var violations []string
	for i := range t {
		if t[i].Delay < 0 {
			violations = append(violations,
				fmt.Sprintf("entry #%d: delay should be >= 0, got %s", i+1, t[i].Delay))
		}
	}
	sentinelsNum := 0
	for i := range t {
		if t[i].LoadFactor == SentinelLoadFactor {
			sentinelsNum++
		}
	}
	if sentinelsNum != 1 {
		violations = append(violations, fmt.Sprintf(
			"exactly one entry should have load factor %d (catch-all), got %d", SentinelLoadFactor, sentinelsNum))
	}
	return violations
}

// DelayForLoad returns the delay of the greatest breakpoint that does not exceed the load factor.
// The table must be sorted ascending by load factor.
// If the load factor is below every breakpoint, the delay of the first entry is returned;
// this is unreachable for a valid table since the sentinel entry is below any load factor.
// ErrNoLimitsInTable is returned for an empty table.
func (t LimitsTable) DelayForLoad(loadFactor int64) (time.Duration, error) {
	if len(t) == 0 {
		return 0, ErrNoLimitsInTable
	}
	matched := -1
	for i := range t {
		if t[i].LoadFactor > loadFactor {
			break
		}
		matched = i
	}
	if matched == -1 {
		return t[0].Delay, nil
	}
	return t[matched].Delay, nil
}

// sortedByLoadFactor returns a copy of the table sorted ascending by load factor.
func (t LimitsTable) sortedByLoadFactor() LimitsTable {
	sorted := make(LimitsTable, len(t))
	copy(sorted, t)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LoadFactor < sorted[j].LoadFactor })
	return sorted
}
