// internal/metrics/metrics.go

// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups every metric the service exports
type Collector struct {
	registry *prometheus.Registry

	RequestDuration  *prometheus.HistogramVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	RankingRuns      *prometheus.CounterVec
	RankingDuration  prometheus.Histogram
	RankedRows       prometheus.Histogram
	SkippedVideos    *prometheus.CounterVec
}

// NewCollector creates and registers all collectors on a private registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shortsradar_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds, by route, method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortsradar_upstream_requests_total",
				Help: "Requests sent to the YouTube Data API, by endpoint and status.",
			},
			[]string{"endpoint", "status"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shortsradar_upstream_request_duration_seconds",
				Help:    "YouTube Data API request duration in seconds, by endpoint.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		RankingRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortsradar_ranking_runs_total",
				Help: "Ranking runs, by outcome.",
			},
			[]string{"outcome"},
		),
		RankingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shortsradar_ranking_duration_seconds",
				Help:    "End-to-end ranking run duration in seconds.",
				Buckets: []float64{.25, .5, 1, 2, 5, 10, 30, 60},
			},
		),
		RankedRows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shortsradar_ranked_rows",
				Help:    "Rows returned per successful ranking run.",
				Buckets: []float64{0, 1, 5, 10, 20, 30, 40, 50},
			},
		),
		SkippedVideos: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortsradar_skipped_videos_total",
				Help: "Candidates filtered out of a ranking, by reason.",
			},
			[]string{"reason"},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.RequestDuration,
		c.UpstreamRequests,
		c.UpstreamDuration,
		c.RankingRuns,
		c.RankingDuration,
		c.RankedRows,
		c.SkippedVideos,
	)

	return c
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveUpstream records one call to the video platform. A status of 0 means
// the request never got a response.
func (c *Collector) ObserveUpstream(endpoint string, status int, d time.Duration) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	c.UpstreamRequests.WithLabelValues(endpoint, label).Inc()
	c.UpstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveRanking records the outcome of one ranking run
func (c *Collector) ObserveRanking(outcome string, rows int, d time.Duration) {
	c.RankingRuns.WithLabelValues(outcome).Inc()
	c.RankingDuration.Observe(d.Seconds())
	if outcome == "ok" {
		c.RankedRows.Observe(float64(rows))
	}
}

// ObserveSkip records a candidate dropped by a filter
func (c *Collector) ObserveSkip(reason string) {
	c.SkippedVideos.WithLabelValues(reason).Inc()
}

// ObserveRequest records one served HTTP request
func (c *Collector) ObserveRequest(route, method string, status int, d time.Duration) {
	c.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}
