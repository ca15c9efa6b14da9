package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CompilesTotal counts Compiler Bridge invocations, labeled by outcome
	// ("ok" or "error"). A healthy process keeps this near the number of
	// distinct specializations, never growing with call volume (spec §8
	// property 3).
	CompilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jit_compiles_total",
		Help: "The total number of Compiler Bridge compile invocations, labeled by outcome",
	}, []string{"outcome"})

	CompileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jit_compile_duration_ms",
		Help:    "Duration of Compiler Bridge compile calls in milliseconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 15),
	})

	// OverloadCacheLookups counts JIT Entry Point overload-cache lookups.
	OverloadCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jit_overload_cache_lookups_total",
		Help: "The total number of overload cache lookups, labeled by hit/miss",
	}, []string{"result"})

	// BackendLoadsTotal counts backend artifact loads, labeled by backend family.
	BackendLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jit_backend_loads_total",
		Help: "The total number of backend artifact loads",
	}, []string{"backend"})

	LaunchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jit_launch_duration_ms",
		Help:    "Duration of kernel launch calls in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
	}, []string{"backend"})

	LaunchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jit_launches_total",
		Help: "The total number of kernel launches, labeled by backend and outcome",
	}, []string{"backend", "outcome"})

	SharedMemoryBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jit_shared_memory_bytes",
		Help: "Static shared memory required by the most recently launched artifact, labeled by kernel entry name",
	}, []string{"kernel"})
)
