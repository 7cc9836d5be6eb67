/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package kvstore

import (
	"context"
	"fmt"
)

// Facet distinguishes the independent throttling state facets stored per activity.
type Facet int

// Supported facets.
const (
	// FacetCurrentDelay addresses the activity's current delay value.
	FacetCurrentDelay Facet = iota

	// FacetLimitsTable addresses the activity's limits table.
	FacetLimitsTable
)

// String returns a string representation of the facet.
// Implements fmt.Stringer interface.
func (f Facet) String() string {
	switch f {
	case FacetCurrentDelay:
		return "current_delay"
	case FacetLimitsTable:
		return "limits_table"
	}
	return fmt.Sprintf("unknown(%d)", int(f))
}

// Key addresses a single value in the store.
// Activity is an opaque identifier of the throttled activity, Facet selects which of its state facets is addressed.
type Key struct {
	Activity string
	Facet    Facet
}

// Store is an interface for key-value storage of throttling state.
// Values are opaque byte blobs that are read and replaced wholesale,
// so a reader never observes a partially written value.
// Operations on a single key are atomic with respect to each other;
// there is no cross-key transactional guarantee.
type Store interface {
	// Get returns the value stored under the key.
	// found is false if the key is absent; this is not an error.
	Get(ctx context.Context, key Key) (value []byte, found bool, err error)

	// Set stores the value under the key, overwriting any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes the value stored under the key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key Key) error
}
