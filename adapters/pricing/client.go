package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	corepricing "ionos-finops/core/pricing"
	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

// Client talks to the IONOS cloud API (credential checks) and billing API
// (contract prices).
type Client struct {
	cfg        Config
	httpClient *http.Client
	normalizer *Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient creates a client. Zero config fields take DefaultConfig values.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.CloudAPIURL == "" {
		cfg.CloudAPIURL = def.CloudAPIURL
	}
	if cfg.BillingAPIURL == "" {
		cfg.BillingAPIURL = def.BillingAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = def.RetryCount
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}

	logger := logging.Named("billing")
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		normalizer: NewNormalizer(logger),
		logger:     logger,
		now:        time.Now,
	}
}

// ValidateCredentials checks creds against the cloud API locations
// endpoint. Rejected credentials yield (false, nil); transport failures
// and unexpected statuses yield an error.
func (c *Client) ValidateCredentials(ctx context.Context, creds types.Credentials) (bool, error) {
	if !creds.HasAny() {
		return false, nil
	}

	resp, err := c.get(ctx, c.cfg.CloudAPIURL+"/locations", func(req *http.Request) {
		if creds.Token != "" {
			req.Header.Set("Authorization", "Bearer "+creds.Token)
			return
		}
		req.SetBasicAuth(creds.Username, creds.Password)
	})
	if err != nil {
		if errors.IsType(err, errors.TypeInvalidCredentials) {
			return false, nil
		}
		return false, err
	}
	resp.Body.Close()
	return true, nil
}

// FetchAll returns the catalog for region. With billing credentials the
// contract products are normalised and categories without any mapped
// product are filled from the fallback set; without them the whole
// fallback set is returned.
func (c *Client) FetchAll(ctx context.Context, region string, creds types.Credentials) (*types.PricingCatalog, error) {
	ok, err := c.ValidateCredentials(ctx, creds)
	if err != nil {
		return nil, errors.RemoteFetch("credential validation failed", err)
	}
	if !ok {
		return nil, errors.InvalidCredentials("remote service rejected the credentials")
	}

	now := c.now()
	log := c.logger.With(zap.String("region", region))

	if !creds.HasBilling() {
		log.Warn("no billing credentials, using labelled fallback prices")
		return FallbackCatalog(region, now), nil
	}

	products, err := c.fetchProducts(ctx, creds)
	if err != nil {
		return nil, err
	}

	mapped := c.normalizer.Normalize(products.Products)
	fallback := FallbackCategories(region)

	catalog := &types.PricingCatalog{
		Region:      region,
		Currency:    corepricing.CurrencyForRegion(region),
		LastUpdated: now.UTC().Format(time.RFC3339),
		Source:      c.productsURL(creds.ContractID),
		Categories:  make(map[string]map[string]float64),
		Extra:       map[string]any{"contract_id": creds.ContractID},
	}
	if products.Metadata.CustomerID != "" {
		catalog.Extra["customer_id"] = products.Metadata.CustomerID
	}

	var filled []string
	for name, prices := range fallback {
		cat := catalog.Category(name)
		for k, v := range prices {
			cat[k] = v
		}
		if len(mapped[name]) == 0 {
			filled = append(filled, name)
		}
	}
	for name, prices := range mapped {
		cat := catalog.Category(name)
		for k, v := range prices {
			cat[k] = v
		}
	}

	sort.Strings(filled)
	catalog.Extra[ExtraFallbackCategories] = toAnySlice(filled)

	log.Info("fetched contract prices",
		zap.Int("products", len(products.Products)),
		zap.Int("mapped_categories", len(mapped)),
		zap.Strings("fallback_categories", filled))

	return catalog, nil
}

func (c *Client) productsURL(contractID string) string {
	return c.cfg.BillingAPIURL + "/" + url.PathEscape(contractID) + "/products"
}

func (c *Client) fetchProducts(ctx context.Context, creds types.Credentials) (*ProductsResponse, error) {
	resp, err := c.get(ctx, c.productsURL(creds.ContractID), func(req *http.Request) {
		req.SetBasicAuth(creds.Username, creds.Password)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var products ProductsResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&products); err != nil {
		return nil, errors.RemoteFetch("failed to decode billing products", err)
	}
	return &products, nil
}

func (c *Client) get(ctx context.Context, rawURL string, auth func(*http.Request)) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.RemoteFetch("creating request", err)
	}
	req.Header.Set("Accept", "application/json")
	auth(req)
	return c.doWithRetry(ctx, req)
}

// doWithRetry retries transport errors, 429 and 5xx with exponential
// backoff. 401/403 map to InvalidCredentials; any other non-200 status
// fails immediately.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryCount; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<(attempt-1)) * c.cfg.RetryDelay
			select {
			case <-ctx.Done():
				return nil, errors.RemoteFetch("request cancelled", ctx.Err())
			case <-time.After(wait):
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Debug("request failed, retrying",
				zap.String("url", redact(req.URL)), zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return nil, errors.InvalidCredentials(fmt.Sprintf("%s returned status %d", redact(req.URL), resp.StatusCode))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("%s returned status %d", redact(req.URL), resp.StatusCode)
			continue
		default:
			resp.Body.Close()
			return nil, errors.RemoteFetch(fmt.Sprintf("%s returned status %d", redact(req.URL), resp.StatusCode), nil)
		}
	}
	return nil, errors.RemoteFetch(fmt.Sprintf("request failed after %d attempts", c.cfg.RetryCount), lastErr)
}

func redact(u *url.URL) string {
	s := u.Scheme + "://" + u.Host + u.Path
	return strings.TrimSuffix(s, "/")
}
