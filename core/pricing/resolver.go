package pricing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

// DefaultCacheTTL is used when a request carries no TTL
const DefaultCacheTTL = 24 * time.Hour

// Fetcher retrieves authoritative pricing from a remote service
type Fetcher interface {
	// FetchAll returns the full catalog for a region
	FetchAll(ctx context.Context, region string, creds types.Credentials) (*types.PricingCatalog, error)

	// ValidateCredentials reports whether the remote service accepts creds
	ValidateCredentials(ctx context.Context, creds types.Credentials) (bool, error)
}

// Request describes one catalog resolution
type Request struct {
	Region      string
	Overrides   map[string]any
	UseRemote   bool
	Credentials types.Credentials
	CacheTTL    time.Duration
}

// Options configure a Resolver. Every field is optional.
type Options struct {
	Cache   *FileCache
	Fetcher Fetcher
	Now     func() time.Time
	Logger  *zap.Logger
}

// Resolver produces the pricing catalog for a region
type Resolver struct {
	cache   *FileCache
	fetcher Fetcher
	now     func() time.Time
	logger  *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		cache:   opts.Cache,
		fetcher: opts.Fetcher,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = logging.Named("resolver")
	}
	return r
}

// Resolve returns the catalog for req.Region. It never fails: cache and
// remote errors are logged and the best catalog available is returned.
func (r *Resolver) Resolve(ctx context.Context, req Request) *types.PricingCatalog {
	region := req.Region
	if region == "" {
		region = DefaultRegion
	}
	log := r.logger.With(zap.String("region", region))

	base := r.base(region, log)

	merged, err := MergeCatalog(base, req.Overrides)
	if err != nil {
		log.Warn("ignoring pricing overrides", zap.Error(err))
		merged = base.Clone()
	}

	if !req.UseRemote || !req.Credentials.HasAny() || r.fetcher == nil {
		return merged
	}

	ttl := req.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if !IsStale(merged.LastUpdated, ttl, r.now()) {
		log.Debug("catalog is fresh", zap.String("last_updated", merged.LastUpdated))
		return merged
	}

	log.Info("catalog is stale, refreshing from remote", zap.String("last_updated", merged.LastUpdated))

	remote, err := r.fetcher.FetchAll(ctx, region, req.Credentials)
	if err != nil {
		log.Warn("remote pricing refresh failed, keeping current catalog", zap.Error(err))
		return merged
	}
	if err := Validate(remote); err != nil {
		log.Warn("remote catalog rejected", zap.Error(err))
		return merged
	}
	if isOlder(remote.LastUpdated, base.LastUpdated) {
		log.Warn("remote catalog is older than the current one, keeping current",
			zap.String("remote_last_updated", remote.LastUpdated),
			zap.String("current_last_updated", base.LastUpdated))
		return merged
	}

	if remote.Region == "" {
		remote.Region = region
	}

	// The cache holds the remote catalog as fetched; overrides only ever
	// apply in memory.
	if r.cache != nil {
		if err := r.cache.Save(remote); err != nil {
			log.Error("failed to persist refreshed catalog", zap.Error(err))
		}
	}

	refreshed, err := MergeCatalog(remote, req.Overrides)
	if err != nil {
		log.Warn("ignoring pricing overrides", zap.Error(err))
		refreshed = remote.Clone()
	}
	return refreshed
}

// base returns the cached catalog when a valid one exists, else the bundled one
func (r *Resolver) base(region string, log *zap.Logger) *types.PricingCatalog {
	if r.cache != nil {
		cached, err := r.cache.Load(region)
		if err != nil {
			log.Warn("ignoring unreadable pricing cache", zap.Error(err))
		} else if cached != nil {
			log.Debug("using cached catalog", zap.String("path", r.cache.Path(region)))
			return cached
		}
	}
	return LoadBundled(region)
}

// Refresh fetches the region catalog unconditionally, persists it as
// fetched and returns it with overrides applied. Unlike Resolve it reports
// failures: an InvalidCredentials error when the remote rejects creds, a
// RemoteFetch error otherwise. A CacheWrite error is returned alongside the
// refreshed catalog.
func (r *Resolver) Refresh(ctx context.Context, region string, overrides map[string]any, creds types.Credentials) (*types.PricingCatalog, error) {
	if r.fetcher == nil {
		return nil, errors.New(errors.TypeConfig, "no remote pricing client configured")
	}
	if !creds.HasAny() {
		return nil, errors.InvalidCredentials("no credentials provided")
	}

	ok, err := r.fetcher.ValidateCredentials(ctx, creds)
	if err != nil {
		return nil, errors.RemoteFetch("credential validation failed", err)
	}
	if !ok {
		return nil, errors.InvalidCredentials("remote service rejected the credentials")
	}

	remote, err := r.fetcher.FetchAll(ctx, region, creds)
	if err != nil {
		if errors.IsType(err, errors.TypeInvalidCredentials) || errors.IsType(err, errors.TypeRemoteFetch) {
			return nil, err
		}
		return nil, errors.RemoteFetch("fetch pricing for "+region, err)
	}
	if err := Validate(remote); err != nil {
		return nil, errors.RemoteFetch("remote catalog for "+region+" is invalid", err)
	}

	if remote.Region == "" {
		remote.Region = region
	}

	var saveErr error
	if r.cache != nil {
		saveErr = r.cache.Save(remote)
	}

	refreshed, err := MergeCatalog(remote, overrides)
	if err != nil {
		return nil, err
	}
	return refreshed, saveErr
}
