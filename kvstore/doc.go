/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package kvstore provides a key-value storage abstraction for throttling state
// with an in-memory implementation suitable for process-wide sharing.
// Keys are typed composites of an activity name and a facet,
// so the domain layer never builds storage keys by string concatenation.
package kvstore
