package egress

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "p2p_egress"

var (
	descTotalRequests = prometheus.NewDesc( //nolint:gochecknoglobals
		prometheus.BuildFQName(metricsNamespace, "", "requests_total"),
		"Execute calls.", nil, nil,
	)
	descAttempts = prometheus.NewDesc( //nolint:gochecknoglobals
		prometheus.BuildFQName(metricsNamespace, "", "attempts_total"),
		"Outbound attempts by route.", []string{"route"}, nil,
	)
	descProxyErrors = prometheus.NewDesc( //nolint:gochecknoglobals
		prometheus.BuildFQName(metricsNamespace, "", "proxy_errors_total"),
		"Network failures of proxied attempts.", nil, nil,
	)
	descSuccessful = prometheus.NewDesc( //nolint:gochecknoglobals
		prometheus.BuildFQName(metricsNamespace, "", "successful_requests_total"),
		"Execute calls that returned a 200/201 response.", nil, nil,
	)
)

// Stats счётчики живут до перезапуска процесса и не сбрасываются.
type Stats struct {
	totalRequests      atomic.Uint64
	proxyRequests      atomic.Uint64
	directRequests     atomic.Uint64
	proxyErrors        atomic.Uint64
	successfulRequests atomic.Uint64
}

func NewStats() *Stats {
	return &Stats{}
}

type StatsSnapshot struct {
	TotalRequests      uint64  `json:"totalRequests"`
	ProxyRequests      uint64  `json:"proxyRequests"`
	DirectRequests     uint64  `json:"directRequests"`
	ProxyErrors        uint64  `json:"proxyErrors"`
	SuccessfulRequests uint64  `json:"successfulRequests"`
	SuccessRate        float64 `json:"successRate"`
	ProxyUsageRate     float64 `json:"proxyUsageRate"`
}

// Snapshot считает доли в процентах от числа вызовов Execute.
// ProxyUsageRate считается по попыткам и может превышать 100.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		TotalRequests:      s.totalRequests.Load(),
		ProxyRequests:      s.proxyRequests.Load(),
		DirectRequests:     s.directRequests.Load(),
		ProxyErrors:        s.proxyErrors.Load(),
		SuccessfulRequests: s.successfulRequests.Load(),
	}

	if snap.TotalRequests > 0 {
		total := float64(snap.TotalRequests)
		snap.SuccessRate = float64(snap.SuccessfulRequests) / total * 100 //nolint:mnd
		snap.ProxyUsageRate = float64(snap.ProxyRequests) / total * 100   //nolint:mnd
	}

	return snap
}

func (s *Stats) Describe(ch chan<- *prometheus.Desc) {
	ch <- descTotalRequests
	ch <- descAttempts
	ch <- descProxyErrors
	ch <- descSuccessful
}

func (s *Stats) Collect(ch chan<- prometheus.Metric) {
	snap := s.Snapshot()

	ch <- prometheus.MustNewConstMetric(descTotalRequests, prometheus.CounterValue, float64(snap.TotalRequests))
	ch <- prometheus.MustNewConstMetric(descAttempts, prometheus.CounterValue, float64(snap.ProxyRequests), "proxy")
	ch <- prometheus.MustNewConstMetric(descAttempts, prometheus.CounterValue, float64(snap.DirectRequests), directRoute)
	ch <- prometheus.MustNewConstMetric(descProxyErrors, prometheus.CounterValue, float64(snap.ProxyErrors))
	ch <- prometheus.MustNewConstMetric(descSuccessful, prometheus.CounterValue, float64(snap.SuccessfulRequests))
}
