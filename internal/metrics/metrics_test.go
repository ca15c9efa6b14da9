package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestJITMetrics(t *testing.T) {
	t.Run("CompileDuration", func(t *testing.T) {
		CompileDuration.Observe(100.5)
		CompileDuration.Observe(200.3)
		assert.NotPanics(t, func() {
			CompileDuration.Observe(300.1)
		})
	})

	t.Run("CompilesTotal", func(t *testing.T) {
		CompilesTotal.WithLabelValues("ok").Inc()
		CompilesTotal.WithLabelValues("ok").Inc()
		CompilesTotal.WithLabelValues("error").Inc()
		assert.Equal(t, float64(2), testutil.ToFloat64(CompilesTotal.WithLabelValues("ok")))
	})

	t.Run("OverloadCacheLookups", func(t *testing.T) {
		OverloadCacheLookups.WithLabelValues("hit").Inc()
		OverloadCacheLookups.WithLabelValues("miss").Inc()
		assert.Equal(t, float64(1), testutil.ToFloat64(OverloadCacheLookups.WithLabelValues("hit")))
	})

	t.Run("BackendLoadsTotal", func(t *testing.T) {
		BackendLoadsTotal.WithLabelValues("sim").Inc()
		assert.Equal(t, float64(1), testutil.ToFloat64(BackendLoadsTotal.WithLabelValues("sim")))
	})

	t.Run("LaunchDuration", func(t *testing.T) {
		LaunchDuration.WithLabelValues("sim").Observe(1.5)
		assert.NotPanics(t, func() {
			LaunchDuration.WithLabelValues("sim").Observe(2.5)
		})
	})

	t.Run("LaunchesTotal", func(t *testing.T) {
		LaunchesTotal.WithLabelValues("sim", "ok").Inc()
		LaunchesTotal.WithLabelValues("sim", "error").Inc()
		assert.Equal(t, float64(1), testutil.ToFloat64(LaunchesTotal.WithLabelValues("sim", "ok")))
	})

	t.Run("SharedMemoryBytes", func(t *testing.T) {
		SharedMemoryBytes.WithLabelValues("add_kernel").Set(49152)
		assert.Equal(t, float64(49152), testutil.ToFloat64(SharedMemoryBytes.WithLabelValues("add_kernel")))
	})
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		CompilesTotal,
		CompileDuration,
		OverloadCacheLookups,
		BackendLoadsTotal,
		LaunchDuration,
		LaunchesTotal,
		SharedMemoryBytes,
	}

	for _, c := range collectors {
		assert.NotPanics(t, func() {
			_ = prometheus.Register(c)
			prometheus.Unregister(c)
		})
	}
}

func BenchmarkMetricsObservation(b *testing.B) {
	b.Run("ObserveCompileDuration", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			CompileDuration.Observe(float64(i % 1000))
		}
	})

	b.Run("IncCompilesTotal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			CompilesTotal.WithLabelValues("ok").Inc()
		}
	})
}
