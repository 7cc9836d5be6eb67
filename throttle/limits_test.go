/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func makeTestLimitsTable() LimitsTable {
	return LimitsTable{
		{LoadFactor: SentinelLoadFactor, Delay: 5 * time.Millisecond},
		{LoadFactor: 10, Delay: 20 * time.Millisecond},
		{LoadFactor: 50, Delay: 100 * time.Millisecond},
	}
}

func TestLimitsTableDelayForLoad(t *testing.T) {
	table := makeTestLimitsTable()

	tests := []struct {
		Name       string
		LoadFactor int64
		WantDelay  time.Duration
	}{
		{Name: "below first breakpoint, sentinel is the floor", LoadFactor: -100, WantDelay: 5 * time.Millisecond},
		{Name: "sentinel itself", LoadFactor: SentinelLoadFactor, WantDelay: 5 * time.Millisecond},
		{Name: "between sentinel and first breakpoint", LoadFactor: 0, WantDelay: 5 * time.Millisecond},
		{Name: "exactly on breakpoint", LoadFactor: 10, WantDelay: 20 * time.Millisecond},
		{Name: "just below next breakpoint", LoadFactor: 49, WantDelay: 20 * time.Millisecond},
		{Name: "exactly on last breakpoint", LoadFactor: 50, WantDelay: 100 * time.Millisecond},
		{Name: "above every breakpoint", LoadFactor: 1000, WantDelay: 100 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			delay, err := table.DelayForLoad(tt.LoadFactor)
			require.NoError(t, err)
			require.Equal(t, tt.WantDelay, delay)
		})
	}
}

func TestLimitsTableDelayForLoadEmptyTable(t *testing.T) {
	_, err := LimitsTable{}.DelayForLoad(0)
	require.ErrorIs(t, err, ErrNoLimitsInTable)

	_, err = LimitsTable(nil).DelayForLoad(0)
	require.ErrorIs(t, err, ErrNoLimitsInTable)
}

func TestLimitsTableDelayForLoadBelowEveryBreakpoint(t *testing.T) {
	// A sorted table without the sentinel entry can be constructed only by bypassing validation.
	// The resolver still falls back to the first entry instead of failing.
	table := LimitsTable{
		{LoadFactor: 10, Delay: 20 * time.Millisecond},
		{LoadFactor: 50, Delay: 100 * time.Millisecond},
	}
	delay, err := table.DelayForLoad(3)
	require.NoError(t, err)
	require.Equal(t, 20*time.Millisecond, delay)
}

func TestLimitsTableValidate(t *testing.T) {
	tests := []struct {
		Name           string
		Table          LimitsTable
		WantViolations int
	}{
		{
			Name:           "valid table",
			Table:          makeTestLimitsTable(),
			WantViolations: 0,
		},
		{
			Name: "single sentinel entry is valid",
			Table: LimitsTable{
				{LoadFactor: SentinelLoadFactor, Delay: 0},
			},
			WantViolations: 0,
		},
		{
			Name: "missing sentinel",
			Table: LimitsTable{
				{LoadFactor: 10, Delay: 20 * time.Millisecond},
			},
			WantViolations: 1,
		},
		{
			Name: "duplicated sentinel",
			Table: LimitsTable{
				{LoadFactor: SentinelLoadFactor, Delay: 5 * time.Millisecond},
				{LoadFactor: SentinelLoadFactor, Delay: 10 * time.Millisecond},
			},
			WantViolations: 1,
		},
		{
			Name: "negative delay",
			Table: LimitsTable{
				{LoadFactor: SentinelLoadFactor, Delay: -time.Millisecond},
				{LoadFactor: 10, Delay: 20 * time.Millisecond},
			},
			WantViolations: 1,
		},
		{
			Name: "all violations are aggregated",
			Table: LimitsTable{
				{LoadFactor: 10, Delay: -time.Millisecond},
				{LoadFactor: 50, Delay: -time.Second},
			},
			WantViolations: 3,
		},
		{
			Name:           "empty table lacks sentinel",
			Table:          LimitsTable{},
			WantViolations: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			violations := tt.Table.Validate()
			require.Len(t, violations, tt.WantViolations)
		})
	}
}

func TestLimitsTableSortedByLoadFactor(t *testing.T) {
	table := LimitsTable{
		{LoadFactor: 50, Delay: 100 * time.Millisecond},
		{LoadFactor: SentinelLoadFactor, Delay: 5 * time.Millisecond},
		{LoadFactor: 10, Delay: 20 * time.Millisecond},
	}
	sorted := table.sortedByLoadFactor()
	require.Equal(t, makeTestLimitsTable(), sorted)

	// The receiver is not modified.
	require.Equal(t, int64(50), table[0].LoadFactor)
}
