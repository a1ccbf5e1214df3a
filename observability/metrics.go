package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Scan results recorded in ScanFilesTotal.
const (
	ScanResultRegistered  = "registered"
	ScanResultNotPlugin   = "not_plugin"
	ScanResultCached      = "cached"
	ScanResultUnavailable = "unavailable"
	ScanResultDuplicate   = "duplicate"
)

// Metrics holds the registry's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	ScansTotal           prometheus.Counter
	ScanFilesTotal       *prometheus.CounterVec
	BackendsRegistered   prometheus.Gauge
	InitializationsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mediaplug_scans_total",
			Help: "Number of search directory scans performed.",
		}),
		ScanFilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediaplug_scan_files_total",
			Help: "Library-shaped files examined during scans, by outcome.",
		}, []string{"result"}),
		BackendsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mediaplug_backends_registered",
			Help: "Number of backends currently registered.",
		}),
		InitializationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mediaplug_backend_initializations_total",
			Help: "Backend initialization attempts, by backend and result.",
		}, []string{"backend", "result"}),
	}

	if reg != nil {
		reg.MustRegister(m.ScansTotal, m.ScanFilesTotal, m.BackendsRegistered, m.InitializationsTotal)
	}
	return m
}

func (m *Metrics) Scan() {
	if m == nil {
		return
	}
	m.ScansTotal.Inc()
}

func (m *Metrics) ScanFile(result string) {
	if m == nil {
		return
	}
	m.ScanFilesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetRegistered(n int) {
	if m == nil {
		return
	}
	m.BackendsRegistered.Set(float64(n))
}

func (m *Metrics) Initialization(backend string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.InitializationsTotal.WithLabelValues(backend, result).Inc()
}
