/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package throttle provides a per-activity throttling parameter source.
// Callers identify an activity by a key and either set an explicit delay
// or derive one from a piecewise load-to-delay mapping (limits table).
// The package stores throttling state in an injected kvstore.Store
// and applies delays through an injected sleep function,
// so it never measures load or enforces fairness itself.
package throttle
