// Package pricing provides the remote pricing adapter for the IONOS cloud and
// billing APIs. It implements the Fetcher consumed by the catalog resolver
// and the refresh scheduler.
package pricing

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	corepricing "ionos-finops/core/pricing"
	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

// Config configures the remote client
type Config struct {
	// CloudAPIURL is the cloud API base, used for credential validation
	CloudAPIURL string

	// BillingAPIURL is the billing API base, used for contract products
	BillingAPIURL string

	// Timeout bounds every HTTP request
	Timeout time.Duration

	// RetryCount is the number of attempts for retryable failures
	RetryCount int

	// RetryDelay is the base unit of the exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		CloudAPIURL:   "https://api.ionos.com/cloudapi/v6",
		BillingAPIURL: "https://api.ionos.com/billing/v3",
		Timeout:       30 * time.Second,
		RetryCount:    3,
		RetryDelay:    500 * time.Millisecond,
	}
}

// MetricsFetcher wraps a Fetcher with request counters and latency
type MetricsFetcher struct {
	inner    corepricing.Fetcher
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetricsFetcher creates a metrics wrapper registered on reg
func NewMetricsFetcher(inner corepricing.Fetcher, reg prometheus.Registerer) (*MetricsFetcher, error) {
	f := &MetricsFetcher{
		inner: inner,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ionos_finops",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Remote pricing operations by operation and result.",
		}, []string{"operation", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ionos_finops",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Latency of remote pricing operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{f.requests, f.latency} {
			if err := reg.Register(c); err != nil {
				return nil, errors.Internal("failed to register remote metrics", err)
			}
		}
	}
	return f, nil
}

// FetchAll implements Fetcher
func (f *MetricsFetcher) FetchAll(ctx context.Context, region string, creds types.Credentials) (*types.PricingCatalog, error) {
	start := time.Now()
	catalog, err := f.inner.FetchAll(ctx, region, creds)
	f.observe("fetch_all", start, resultOf(err))
	return catalog, err
}

// ValidateCredentials implements Fetcher
func (f *MetricsFetcher) ValidateCredentials(ctx context.Context, creds types.Credentials) (bool, error) {
	start := time.Now()
	ok, err := f.inner.ValidateCredentials(ctx, creds)

	result := resultOf(err)
	if err == nil && !ok {
		result = "invalid_credentials"
	}
	f.observe("validate_credentials", start, result)
	return ok, err
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.IsType(err, errors.TypeInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}

func (f *MetricsFetcher) observe(op string, start time.Time, result string) {
	f.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	f.requests.WithLabelValues(op, result).Inc()
}
