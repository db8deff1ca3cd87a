package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
)

var (
	testNow   = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	testCreds = types.Credentials{Token: "token"}
)

type fakeFetcher struct {
	mu          sync.Mutex
	failRegions map[string]bool
	valid       []bool // consumed per validation; last value repeats
	validErr    error
	fetched     []string
}

func (f *fakeFetcher) FetchAll(_ context.Context, region string, _ types.Credentials) (*types.PricingCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, region)
	if f.failRegions[region] {
		return nil, errors.RemoteFetch("boom", nil)
	}
	c := pricing.MinimalCatalog(region)
	c.LastUpdated = testNow.Format(time.RFC3339)
	c.Source = "test"
	return c, nil
}

func (f *fakeFetcher) ValidateCredentials(context.Context, types.Credentials) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.validErr != nil {
		return false, f.validErr
	}
	if len(f.valid) == 0 {
		return true, nil
	}
	v := f.valid[0]
	if len(f.valid) > 1 {
		f.valid = f.valid[1:]
	}
	return v, nil
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

func newTestScheduler(t *testing.T, fetcher *fakeFetcher, opts Options) *Scheduler {
	t.Helper()
	opts.Fetcher = fetcher
	if opts.Cache == nil {
		opts.Cache = pricing.NewFileCache(t.TempDir())
	}
	if opts.Regions == nil {
		opts.Regions = []string{"de/fra", "gb/lhr", "us/las"}
	}
	if !opts.Credentials.HasAny() {
		opts.Credentials = testCreds
	}
	opts.Logger = zap.NewNop()
	opts.Now = func() time.Time { return testNow }

	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestRunCycleRefreshesEveryRegion(t *testing.T) {
	s := newTestScheduler(t, &fakeFetcher{}, Options{})

	result, err := s.RunCycle(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, []string{"de/fra", "gb/lhr", "us/las"}, result.Succeeded)
	assert.Empty(t, result.Failed)

	for _, region := range result.Succeeded {
		cached, err := s.cache.Load(region)
		require.NoError(t, err)
		require.NotNil(t, cached, region)
		assert.Equal(t, region, cached.Region)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.cycles.WithLabelValues(resultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.regions.WithLabelValues("gb/lhr", resultSuccess)))
	assert.Equal(t, float64(testNow.Unix()), testutil.ToFloat64(s.metrics.lastSuccess.WithLabelValues("us/las")))
}

func TestRunCyclePartialFailure(t *testing.T) {
	s := newTestScheduler(t, &fakeFetcher{failRegions: map[string]bool{"gb/lhr": true}}, Options{})

	result, err := s.RunCycle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"de/fra", "us/las"}, result.Succeeded)
	assert.Contains(t, result.Failed, "gb/lhr")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.cycles.WithLabelValues(resultPartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.regions.WithLabelValues("gb/lhr", resultFailure)))

	cached, err := s.cache.Load("gb/lhr")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRunCycleTotalFailure(t *testing.T) {
	tests := []struct {
		name     string
		fetcher  *fakeFetcher
		wantType errors.Type
		fetches  int
	}{
		{"invalid credentials", &fakeFetcher{valid: []bool{false}}, errors.TypeInvalidCredentials, 0},
		{"validation transport error", &fakeFetcher{validErr: assert.AnError}, errors.TypeRemoteFetch, 0},
		{"every region fails", &fakeFetcher{failRegions: map[string]bool{"de/fra": true, "gb/lhr": true, "us/las": true}}, errors.TypeRemoteFetch, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(t, tt.fetcher, Options{})

			_, err := s.RunCycle(context.Background())

			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
			assert.Equal(t, tt.fetches, tt.fetcher.fetchCount())
			assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.cycles.WithLabelValues(resultFailure)))
		})
	}
}

func TestStartRequiresCredentials(t *testing.T) {
	s, err := New(Options{
		Fetcher: &fakeFetcher{},
		Cache:   pricing.NewFileCache(t.TempDir()),
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)

	h, err := s.Start(context.Background())

	assert.Nil(t, h)
	assert.True(t, errors.IsType(err, errors.TypeInvalidCredentials))
	assert.Equal(t, StateIdle, s.State())
}

func TestLifecycle(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := newTestScheduler(t, fetcher, Options{Interval: time.Hour})
	assert.Equal(t, StateIdle, s.State())

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRunning, s.State())
	assert.True(t, s.Status(testNow, time.Hour).Running)

	require.Eventually(t, func() bool { return fetcher.fetchCount() == 3 }, 2*time.Second, 5*time.Millisecond)

	_, err = s.Start(context.Background())
	assert.Error(t, err, "second start")

	start := time.Now()
	require.NoError(t, h.Stop(time.Second))
	assert.Less(t, time.Since(start), time.Second, "stop must not wait out the interval")
	assert.Equal(t, StateStopped, s.State())

	select {
	case <-h.Done():
	default:
		t.Fatal("done channel not closed after stop")
	}

	assert.NoError(t, h.Stop(time.Second), "stopping twice is harmless")
	_, err = s.Start(context.Background())
	assert.Error(t, err, "stopped is terminal")
}

func TestLoopRetriesAfterTotalFailure(t *testing.T) {
	fetcher := &fakeFetcher{valid: []bool{false, true}}
	s := newTestScheduler(t, fetcher, Options{Interval: time.Hour, RetryInterval: 10 * time.Millisecond})

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	defer h.Stop(time.Second)

	require.Eventually(t, func() bool { return fetcher.fetchCount() == 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.cycles.WithLabelValues(resultFailure)))
}

func TestContextCancelStopsLoop(t *testing.T) {
	s := newTestScheduler(t, &fakeFetcher{}, Options{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	h, err := s.Start(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on context cancellation")
	}
	assert.Equal(t, StateStopped, s.State())
}

func TestUpdateRegionNow(t *testing.T) {
	s := newTestScheduler(t, &fakeFetcher{}, Options{})

	require.NoError(t, s.UpdateRegionNow(context.Background(), "fr/par"))

	cached, err := s.cache.Load("fr/par")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "fr/par", cached.Region)

	bad := newTestScheduler(t, &fakeFetcher{valid: []bool{false}}, Options{})
	err = bad.UpdateRegionNow(context.Background(), "fr/par")
	assert.True(t, errors.IsType(err, errors.TypeInvalidCredentials))
	assert.Equal(t, 1.0, testutil.ToFloat64(bad.metrics.regions.WithLabelValues("fr/par", resultFailure)))
}

func TestStatus(t *testing.T) {
	s := newTestScheduler(t, &fakeFetcher{failRegions: map[string]bool{"us/las": true}}, Options{})
	_, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	status := s.Status(testNow.Add(time.Hour), 24*time.Hour)

	assert.Equal(t, "idle", status.State)
	assert.False(t, status.Running)
	assert.True(t, status.CredentialsConfigured)
	require.Len(t, status.Regions, 3)

	fra := status.Regions[0]
	assert.Equal(t, "de/fra", fra.Region)
	assert.False(t, fra.NeedsUpdate)
	assert.Equal(t, testNow.Format(time.RFC3339), fra.LastUpdate)
	assert.Equal(t, s.cache.Path("de/fra"), fra.CacheFile)

	las := status.Regions[2]
	assert.True(t, las.NeedsUpdate)
	assert.Empty(t, las.LastUpdate)

	stale := s.Status(testNow.Add(48*time.Hour), 24*time.Hour)
	assert.True(t, stale.Regions[0].NeedsUpdate)
}

func TestNewValidation(t *testing.T) {
	_, err := New(Options{Cache: pricing.NewFileCache(t.TempDir())})
	assert.True(t, errors.IsType(err, errors.TypeConfig))

	_, err = New(Options{Fetcher: &fakeFetcher{}})
	assert.True(t, errors.IsType(err, errors.TypeConfig))

	reg := prometheus.NewRegistry()
	_, err = New(Options{Fetcher: &fakeFetcher{}, Cache: pricing.NewFileCache(t.TempDir()), Registerer: reg})
	require.NoError(t, err)
	_, err = New(Options{Fetcher: &fakeFetcher{}, Cache: pricing.NewFileCache(t.TempDir()), Registerer: reg})
	assert.Error(t, err, "metrics registered twice")
}

func TestDefaults(t *testing.T) {
	s, err := New(Options{Fetcher: &fakeFetcher{}, Cache: pricing.NewFileCache(t.TempDir())})
	require.NoError(t, err)

	assert.Equal(t, pricing.SupportedRegions(), s.regions)
	assert.Equal(t, DefaultInterval, s.interval)
	assert.Equal(t, DefaultRetryInterval, s.retryInterval)
}
