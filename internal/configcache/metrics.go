package configcache

import "github.com/prometheus/client_golang/prometheus"

const (
	backendMemory = "memory"
	backendRedis  = "redis"
)

// Metrics counts cache traffic. A nil *Metrics records nothing.
type Metrics struct {
	lookups       *prometheus.CounterVec
	evictions     *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewMetrics registers the cache collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cushionly_config_cache_lookups_total",
			Help: "Configuration cache lookups by backend and result.",
		}, []string{"backend", "result"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cushionly_config_cache_evictions_total",
			Help: "Entries evicted because the cache was full.",
		}, []string{"backend"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cushionly_config_cache_invalidated_entries_total",
			Help: "Entries removed by shop invalidation.",
		}, []string{"backend"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.lookups, m.evictions, m.invalidations} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) hit(backend string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(backend, "hit").Inc()
}

func (m *Metrics) miss(backend string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(backend, "miss").Inc()
}

func (m *Metrics) evict(backend string) {
	if m == nil {
		return
	}
	m.evictions.WithLabelValues(backend).Inc()
}

func (m *Metrics) invalidate(backend string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.invalidations.WithLabelValues(backend).Add(float64(n))
}
