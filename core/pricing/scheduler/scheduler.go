// Package scheduler refreshes cached region catalogs in the background.
//
// A Scheduler moves Idle → Running → Stopped exactly once. Start returns a
// Handle; the loop ends when the handle is stopped or the start context is
// cancelled.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ionos-finops/core/pricing"
	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

// Defaults applied by New
const (
	DefaultInterval      = 24 * time.Hour
	DefaultRetryInterval = 5 * time.Minute
)

// State is the scheduler lifecycle state
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configure a Scheduler
type Options struct {
	Fetcher pricing.Fetcher
	Cache   *pricing.FileCache

	// Regions defaults to every supported region
	Regions []string

	Interval      time.Duration
	RetryInterval time.Duration
	Credentials   types.Credentials

	Logger *zap.Logger

	// Registerer receives the scheduler metrics; a private registry is
	// used when nil
	Registerer prometheus.Registerer

	Now func() time.Time
}

// Scheduler periodically fetches every region and writes its cache file
type Scheduler struct {
	fetcher       pricing.Fetcher
	cache         *pricing.FileCache
	resolver      *pricing.Resolver
	regions       []string
	interval      time.Duration
	retryInterval time.Duration
	creds         types.Credentials
	logger        *zap.Logger
	metrics       *metrics
	now           func() time.Time

	mu    sync.Mutex
	state State
}

// New creates an idle scheduler
func New(opts Options) (*Scheduler, error) {
	if opts.Fetcher == nil {
		return nil, errors.New(errors.TypeConfig, "scheduler needs a remote pricing client")
	}
	if opts.Cache == nil {
		return nil, errors.New(errors.TypeConfig, "scheduler needs a cache directory")
	}

	s := &Scheduler{
		fetcher:       opts.Fetcher,
		cache:         opts.Cache,
		regions:       opts.Regions,
		interval:      opts.Interval,
		retryInterval: opts.RetryInterval,
		creds:         opts.Credentials,
		logger:        opts.Logger,
		now:           opts.Now,
	}
	if len(s.regions) == 0 {
		s.regions = pricing.SupportedRegions()
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.retryInterval <= 0 {
		s.retryInterval = DefaultRetryInterval
	}
	if s.logger == nil {
		s.logger = logging.Named("scheduler")
	}
	if s.now == nil {
		s.now = time.Now
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	s.metrics = m

	s.resolver = pricing.NewResolver(pricing.Options{
		Cache:   s.cache,
		Fetcher: s.fetcher,
		Now:     s.now,
		Logger:  s.logger,
	})
	return s, nil
}

// Handle controls a running scheduler
type Handle struct {
	s      *Scheduler
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start launches the refresh loop. A scheduler can be started once.
func (s *Scheduler) Start(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil, errors.Newf(errors.TypeConfig, "scheduler cannot start: it is %s", s.state)
	}
	if !s.creds.HasAny() {
		return nil, errors.InvalidCredentials("no API credentials configured, scheduler not started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{s: s, cancel: cancel, done: make(chan struct{})}
	s.state = StateRunning

	go s.loop(loopCtx, h)

	s.logger.Info("started pricing scheduler",
		zap.Duration("interval", s.interval),
		zap.Int("regions", len(s.regions)))
	return h, nil
}

// Stop signals the loop and waits up to timeout for it to exit
func (h *Handle) Stop(timeout time.Duration) error {
	h.once.Do(func() {
		h.cancel()
		h.s.setState(StateStopped)
	})

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		h.s.logger.Info("stopped pricing scheduler")
		return nil
	case <-timer.C:
		return errors.Newf(errors.TypeInternal, "scheduler did not stop within %s", timeout)
	}
}

// Done is closed once the loop has exited
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State returns the lifecycle state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Scheduler) loop(ctx context.Context, h *Handle) {
	defer close(h.done)
	defer s.setState(StateStopped)

	for {
		wait := s.interval
		if _, err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("pricing refresh cycle failed, retrying sooner",
				zap.Duration("retry_in", s.retryInterval),
				zap.Error(err))
			wait = s.retryInterval
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// CycleResult reports one refresh cycle
type CycleResult struct {
	ID        string
	Succeeded []string
	Failed    map[string]error
}

// RunCycle validates credentials then refreshes every region in order.
// Region failures are logged and skipped; an error is returned only when
// no region could be refreshed.
func (s *Scheduler) RunCycle(ctx context.Context) (*CycleResult, error) {
	result := &CycleResult{ID: uuid.NewString(), Failed: make(map[string]error)}
	log := s.logger.With(zap.String("cycle_id", result.ID))

	log.Info("starting pricing update", zap.Int("regions", len(s.regions)))

	ok, err := s.fetcher.ValidateCredentials(ctx, s.creds)
	if err != nil {
		s.metrics.cycles.WithLabelValues(resultFailure).Inc()
		return result, errors.RemoteFetch("credential validation failed", err)
	}
	if !ok {
		s.metrics.cycles.WithLabelValues(resultFailure).Inc()
		return result, errors.InvalidCredentials("remote service rejected the credentials")
	}

	for _, region := range s.regions {
		if ctx.Err() != nil {
			break
		}
		if err := s.refreshRegion(ctx, region); err != nil {
			log.Warn("failed to update region pricing", zap.String("region", region), zap.Error(err))
			s.metrics.regions.WithLabelValues(region, resultFailure).Inc()
			result.Failed[region] = err
			continue
		}
		log.Info("updated region pricing", zap.String("region", region))
		s.metrics.regions.WithLabelValues(region, resultSuccess).Inc()
		s.metrics.lastSuccess.WithLabelValues(region).Set(float64(s.now().Unix()))
		result.Succeeded = append(result.Succeeded, region)
	}

	log.Info("pricing update complete",
		zap.Int("updated", len(result.Succeeded)),
		zap.Int("total", len(s.regions)))

	switch {
	case len(result.Succeeded) == 0:
		s.metrics.cycles.WithLabelValues(resultFailure).Inc()
		return result, errors.Newf(errors.TypeRemoteFetch, "no region of %d refreshed", len(s.regions))
	case len(result.Failed) > 0:
		s.metrics.cycles.WithLabelValues(resultPartial).Inc()
	default:
		s.metrics.cycles.WithLabelValues(resultSuccess).Inc()
	}
	return result, nil
}

func (s *Scheduler) refreshRegion(ctx context.Context, region string) error {
	catalog, err := s.fetcher.FetchAll(ctx, region, s.creds)
	if err != nil {
		return err
	}
	if err := pricing.Validate(catalog); err != nil {
		return errors.RemoteFetch("remote catalog for "+region+" is invalid", err)
	}
	if catalog.Region == "" {
		catalog.Region = region
	}
	if err := s.cache.Save(catalog); err != nil {
		return err
	}
	return nil
}

// UpdateRegionNow refreshes one region immediately and reports failures
func (s *Scheduler) UpdateRegionNow(ctx context.Context, region string) error {
	if _, err := s.resolver.Refresh(ctx, region, nil, s.creds); err != nil {
		s.metrics.regions.WithLabelValues(region, resultFailure).Inc()
		return err
	}
	s.metrics.regions.WithLabelValues(region, resultSuccess).Inc()
	s.metrics.lastSuccess.WithLabelValues(region).Set(float64(s.now().Unix()))
	return nil
}

// RegionStatus describes the cache of one region
type RegionStatus struct {
	Region      string `json:"region"`
	LastUpdate  string `json:"last_update,omitempty"`
	NeedsUpdate bool   `json:"needs_update"`
	CacheFile   string `json:"cache_file"`
}

// Status is a point-in-time scheduler report
type Status struct {
	State                 string         `json:"state"`
	Running               bool           `json:"scheduler_running"`
	CredentialsConfigured bool           `json:"api_token_configured"`
	Regions               []RegionStatus `json:"regions"`
}

// Status reports every region's cache age against maxAge
func (s *Scheduler) Status(now time.Time, maxAge time.Duration) Status {
	state := s.State()
	return Status{
		State:                 state.String(),
		Running:               state == StateRunning,
		CredentialsConfigured: s.creds.HasAny(),
		Regions:               RegionStatuses(s.cache, s.regions, now, maxAge),
	}
}

// RegionStatuses reports cache ages without a scheduler
func RegionStatuses(cache *pricing.FileCache, regions []string, now time.Time, maxAge time.Duration) []RegionStatus {
	out := make([]RegionStatus, 0, len(regions))
	for _, region := range regions {
		last := cache.LastUpdated(region)
		out = append(out, RegionStatus{
			Region:      region,
			LastUpdate:  last,
			NeedsUpdate: pricing.IsStale(last, maxAge, now),
			CacheFile:   cache.Path(region),
		})
	}
	return out
}
