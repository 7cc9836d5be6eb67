/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package throttle

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/acronis/go-appkit/log"

	"github.com/acronis/go-throttle/kvstore"
)

// Key is an opaque identifier of a single throttled activity.
// All throttling state is namespaced by it.
type Key string

// Sleeper suspends the calling goroutine for the given non-negative duration.
// It is called with a zero duration too, which keeps behavior uniform and testable.
type Sleeper func(ctx context.Context, d time.Duration) error

// DefaultSleeper sleeps for the requested duration and returns earlier
// with the context error if the context is canceled.
func DefaultSleeper(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Throttler provides per-activity throttling parameters on top of a kvstore.Store.
// It is safe for concurrent use; atomicity guarantees are those of the underlying store.
type Throttler struct {
	store            kvstore.Store
	sleep            Sleeper
	logger           log.FieldLogger
	metricsCollector MetricsCollector
}

// Option is a type for functional options for the Throttler.
type Option func(*options)

type options struct {
	sleep            Sleeper
	logger           log.FieldLogger
	metricsCollector MetricsCollector
}

// WithSleeper returns an Option that sets the sleep function used by Throttle.
func WithSleeper(sleep Sleeper) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

// WithLogger returns an Option that sets the logger.
// The logger is used to report limits validation failures before they are returned to the caller.
func WithLogger(logger log.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetricsCollector returns an Option that sets the collector of metrics.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// New creates a new Throttler storing its state in the provided store.
func New(store kvstore.Store, opts ...Option) *Throttler {
	o := options{
		sleep:            DefaultSleeper,
		logger:           log.NewDisabledLogger(),
		metricsCollector: disabledMetricsCollector,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Throttler{
		store:            store,
		sleep:            o.sleep,
		logger:           o.logger,
		metricsCollector: o.metricsCollector,
	}
}

// SetThrottle stores the delay as the current throttle value of the activity,
// overwriting any previous value. The delay must be >= 0.
func (t *Throttler) SetThrottle(ctx context.Context, key Key, delay time.Duration) error {
	if delay < 0 {
		return fmt.Errorf("delay should be >= 0, got %s", delay)
	}
	if err := t.store.Set(ctx, currentDelayStoreKey(key), encodeDelay(delay)); err != nil {
		return fmt.Errorf("store throttle for activity %q: %w", string(key), err)
	}
	return nil
}

// ClearThrottle removes the current throttle value of the activity.
// Clearing an activity without a throttle value is a no-op.
func (t *Throttler) ClearThrottle(ctx context.Context, key Key) error {
	if err := t.store.Delete(ctx, currentDelayStoreKey(key)); err != nil {
		return fmt.Errorf("clear throttle for activity %q: %w", string(key), err)
	}
	return nil
}

// GetThrottle returns the current throttle value of the activity.
// found is false if no value is set; this is not an error.
func (t *Throttler) GetThrottle(ctx context.Context, key Key) (delay time.Duration, found bool, err error) {
	data, found, err := t.store.Get(ctx, currentDelayStoreKey(key))
	if err != nil {
		return 0, false, fmt.Errorf("get throttle for activity %q: %w", string(key), err)
	}
	if !found {
		return 0, false, nil
	}
	delay, err = decodeDelay(data)
	if err != nil {
		return 0, false, fmt.Errorf("decode throttle for activity %q: %w", string(key), err)
	}
	return delay, true, nil
}

// SetLimits validates the limits table and stores it for the activity sorted ascending by load factor,
// replacing any previous table. The table is installed atomically:
// on validation failure InvalidLimitsError with all found violations is returned,
// the violations are logged, and the stored state is left unchanged.
func (t *Throttler) SetLimits(ctx context.Context, key Key, table LimitsTable) error {
	if violations := table.Validate(); len(violations) != 0 {
		t.metricsCollector.IncInvalidLimits()
		t.logger.Error("rejecting invalid limits table",
			log.String("activity", string(key)), log.Strings("violations", violations))
		return &InvalidLimitsError{Key: key, Violations: violations}
	}
	data, err := json.Marshal(table.sortedByLoadFactor())
	if err != nil {
		return fmt.Errorf("marshal limits for activity %q: %w", string(key), err)
	}
	if err := t.store.Set(ctx, limitsTableStoreKey(key), data); err != nil {
		return fmt.Errorf("store limits for activity %q: %w", string(key), err)
	}
	return nil
}

// ClearLimits removes the limits table of the activity.
// Clearing an activity without a limits table is a no-op.
func (t *Throttler) ClearLimits(ctx context.Context, key Key) error {
	if err := t.store.Delete(ctx, limitsTableStoreKey(key)); err != nil {
		return fmt.Errorf("clear limits for activity %q: %w", string(key), err)
	}
	return nil
}

// GetLimitsTable returns the stored limits table of the activity.
// found is false if no table is set; this is not an error.
func (t *Throttler) GetLimitsTable(ctx context.Context, key Key) (table LimitsTable, found bool, err error) {
	data, found, err := t.store.Get(ctx, limitsTableStoreKey(key))
	if err != nil {
		return nil, false, fmt.Errorf("get limits for activity %q: %w", string(key), err)
	}
	if !found {
		return nil, false, nil
	}
	if err = json.Unmarshal(data, &table); err != nil {
		return nil, false, fmt.Errorf("unmarshal limits for activity %q: %w", string(key), err)
	}
	return table, true, nil
}

// SetThrottleByLoad resolves the delay for the load factor against the activity's limits table,
// stores it as the activity's current throttle value and returns it.
// NoLimitsConfiguredError is returned if the activity has no limits table.
func (t *Throttler) SetThrottleByLoad(ctx context.Context, key Key, loadFactor int64) (time.Duration, error) {
	delay, err := t.GetThrottleForLoad(ctx, key, loadFactor)
	if err != nil {
		return 0, err
	}
	if err := t.SetThrottle(ctx, key, delay); err != nil {
		return 0, err
	}
	return delay, nil
}

// GetThrottleForLoad resolves the delay for the load factor against the activity's limits table
// without modifying any state. It is useful for introspection and testing.
// NoLimitsConfiguredError is returned if the activity has no limits table.
func (t *Throttler) GetThrottleForLoad(ctx context.Context, key Key, loadFactor int64) (time.Duration, error) {
	table, found, err := t.GetLimitsTable(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, &NoLimitsConfiguredError{Key: key}
	}
	delay, err := table.DelayForLoad(loadFactor)
	if err != nil {
		return 0, err
	}
	return delay, nil
}

// Throttle suspends the calling goroutine for the activity's current throttle value and returns it.
// A zero value is valid and still goes through the sleep function.
// KeyNotConfiguredError is returned if the activity has no current throttle value;
// misconfiguration is surfaced instead of silently skipping the delay.
func (t *Throttler) Throttle(ctx context.Context, key Key) (time.Duration, error) {
	delay, found, err := t.GetThrottle(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, &KeyNotConfiguredError{Key: key}
	}
	if err := t.sleep(ctx, delay); err != nil {
		return 0, fmt.Errorf("throttle activity %q: %w", string(key), err)
	}
	t.metricsCollector.IncThrottlesApplied()
	t.metricsCollector.AddThrottledTime(delay)
	return delay, nil
}

func currentDelayStoreKey(key Key) kvstore.Key {
	return kvstore.Key{Activity: string(key), Facet: kvstore.FacetCurrentDelay}
}

func limitsTableStoreKey(key Key) kvstore.Key {
	return kvstore.Key{Activity: string(key), Facet: kvstore.FacetLimitsTable}
}

func encodeDelay(delay time.Duration) []byte {
	return []byte(strconv.FormatInt(int64(delay), 10))
}

func decodeDelay(data []byte) (time.Duration, error) {
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(n), nil
}
