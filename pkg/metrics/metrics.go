// Package metrics provides the Prometheus registry reference for the catalog
// client and a compact reader used by the CLI to print what a command did.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, batch, explorer) to avoid circular dependencies.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry is the default Prometheus registry used by the catalog client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry collected.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Prefix is shared by every metric of this module.
const Prefix = "catalog_"

// Sample is one flattened time series. Histograms report their sample count.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// String renders the sample in exposition-like form.
func (s Sample) String() string {
	if s.Labels == "" {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	return fmt.Sprintf("%s{%s} %g", s.Name, s.Labels, s.Value)
}

// Collect gathers every non-zero series whose name starts with prefix,
// sorted by name and labels.
func Collect(g prometheus.Gatherer, prefix string) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var samples []Sample
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), prefix) {
			continue
		}
		for _, m := range family.GetMetric() {
			value := sampleValue(family.GetType(), m)
			if value == 0 {
				continue
			}
			samples = append(samples, Sample{
				Name:   family.GetName(),
				Labels: formatLabels(m.GetLabel()),
				Value:  value,
			})
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}

// Write prints the catalog series collected so far, one per line.
func Write(w io.Writer) error {
	samples, err := Collect(Gatherer, Prefix)
	if err != nil {
		return err
	}
	for _, s := range samples {
		if _, err := fmt.Fprintln(w, s.String()); err != nil {
			return err
		}
	}
	return nil
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return strings.Join(parts, ",")
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - catalog_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - catalog_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - catalog_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Retry Metrics (pkg/client):
//   - catalog_retries_total{error_class} (Counter): Retry attempts by error class
//   - catalog_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - catalog_retry_exhausted_total{error_class} (Counter): Fetches that exhausted max attempts
//
// Rate Limit Metrics (pkg/ratelimit):
//   - catalog_rate_limit_blocks_total (Counter): Requests refused during a 429 back-off window
//   - catalog_rate_limit_throttles_total (Counter): Requests delayed by the token bucket
//   - catalog_rate_limit_backoffs_total (Counter): 429 responses that opened a window
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total{layer="redis"} (Counter): Stored entries found
//   - catalog_cache_misses_total (Counter): Lookups without a stored entry
//   - catalog_cache_size_bytes{layer="redis"} (Gauge): Bytes moved through the store
//   - catalog_304_responses_total (Counter): 304 Not Modified responses
//   - catalog_conditional_requests_total (Counter): Requests sent with validators
//   - catalog_cache_errors_total{operation} (Counter): Store operation errors
//
// Resolution Metrics (pkg/batch, pkg/explorer):
//   - catalog_batch_dropped_total{kind} (Counter): References dropped by isolated resolution
//   - catalog_search_branch_failures_total{kind} (Counter): Search branches replaced by an empty page
//
// Example Prometheus Queries:
//
//   # Retry pressure
//   rate(catalog_retries_total[5m])
//
//   # Revalidation rate
//   rate(catalog_304_responses_total[5m]) / rate(catalog_requests_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
