package metrics

import "github.com/prometheus/client_golang/prometheus"

// PriceAlertMetrics counts what each price alert scan saw and did.
type PriceAlertMetrics struct {
	candidates    prometheus.Counter
	alerts        prometheus.Counter
	staleSkips    prometheus.Counter
	entryFailures prometheus.Counter
	fetchFailures prometheus.Counter
}

// NewPriceAlertMetrics registers the scanner counters. A nil registerer yields a no-op recorder.
func NewPriceAlertMetrics(reg prometheus.Registerer) *PriceAlertMetrics {
	if reg == nil {
		return &PriceAlertMetrics{}
	}
	m := &PriceAlertMetrics{
		candidates:    priceAlertCounter("candidates_scanned_total", "Alert-enabled wishlist entries read by the scanner."),
		alerts:        priceAlertCounter("alerts_emitted_total", "Price drop notifications created."),
		staleSkips:    priceAlertCounter("stale_skips_total", "Entries skipped because the row changed after it was read."),
		entryFailures: priceAlertCounter("entry_failures_total", "Entries whose notification or rebase failed."),
		fetchFailures: priceAlertCounter("fetch_failures_total", "Scans aborted because candidates could not be fetched."),
	}
	reg.MustRegister(m.candidates, m.alerts, m.staleSkips, m.entryFailures, m.fetchFailures)
	return m
}

func priceAlertCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "price_alerts",
		Name:      name,
		Help:      help,
	})
}

// AddCandidates records how many entries one scan read.
func (m *PriceAlertMetrics) AddCandidates(n int) {
	if m == nil || m.candidates == nil || n <= 0 {
		return
	}
	m.candidates.Add(float64(n))
}

func (m *PriceAlertMetrics) IncAlert() {
	if m == nil || m.alerts == nil {
		return
	}
	m.alerts.Inc()
}

func (m *PriceAlertMetrics) IncStaleSkip() {
	if m == nil || m.staleSkips == nil {
		return
	}
	m.staleSkips.Inc()
}

func (m *PriceAlertMetrics) IncEntryFailure() {
	if m == nil || m.entryFailures == nil {
		return
	}
	m.entryFailures.Inc()
}

func (m *PriceAlertMetrics) IncFetchFailure() {
	if m == nil || m.fetchFailures == nil {
		return
	}
	m.fetchFailures.Inc()
}
