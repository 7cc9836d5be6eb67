/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/acronis/go-appkit/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-throttle/kvstore"
)

func TestPrometheusMetricsCollection(t *testing.T) {
	ctx := context.Background()
	pm := NewPrometheusMetrics()
	pm.MustRegister()
	defer pm.Unregister()

	throttler := New(kvstore.NewInMemStore(),
		WithSleeper(func(context.Context, time.Duration) error { return nil }),
		WithMetricsCollector(pm))
	key := Key("ingest")

	require.NoError(t, throttler.SetThrottle(ctx, key, 20*time.Millisecond))
	_, err := throttler.Throttle(ctx, key)
	require.NoError(t, err)
	_, err = throttler.Throttle(ctx, key)
	require.NoError(t, err)
	testutil.RequireSamplesCountInCounter(t, pm.ThrottlesAppliedTotal.With(nil), 2)

	err = throttler.SetLimits(ctx, key, LimitsTable{{LoadFactor: 10, Delay: time.Millisecond}})
	require.Error(t, err)
	testutil.RequireSamplesCountInCounter(t, pm.InvalidLimitsTotal.With(nil), 1)
}

func TestPrometheusMetricsMustCurryWith(t *testing.T) {
	pm := NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{
		Namespace:         "myservice",
		CurriedLabelNames: []string{"domain"},
	})
	pm.MustRegister()
	defer pm.Unregister()

	curried := pm.MustCurryWith(prometheus.Labels{"domain": "storage"})
	curried.IncThrottlesApplied()
	curried.AddThrottledTime(time.Second)
	curried.IncInvalidLimits()
	testutil.RequireSamplesCountInCounter(t, curried.ThrottlesAppliedTotal.With(nil), 1)
}
