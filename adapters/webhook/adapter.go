// Package webhook posts cost check results to chat and custom endpoints.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ionos-finops/adapters/ci"
	"ionos-finops/core/output"
	"ionos-finops/core/types"
	"ionos-finops/internal/errors"
	"ionos-finops/internal/logging"
)

// Provider is a webhook provider type
type Provider string

const (
	ProviderSlack  Provider = "slack"
	ProviderTeams  Provider = "teams"
	ProviderCustom Provider = "custom"
)

// ParseProvider validates a provider name
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderSlack, ProviderTeams, ProviderCustom:
		return p, nil
	case "":
		return ProviderCustom, nil
	default:
		return "", errors.Input(fmt.Sprintf("unknown webhook provider %q (use slack, teams or custom)", s))
	}
}

// Config configures webhook behavior
type Config struct {
	// Provider type
	Provider Provider `json:"provider"`

	// Endpoint URL
	Endpoint string `json:"endpoint"`

	// Secret signs custom payloads (X-Signature, hex HMAC-SHA256)
	Secret string `json:"secret"`

	// Headers to include
	Headers map[string]string `json:"headers"`

	// Timeout for requests
	Timeout time.Duration `json:"timeout"`

	// RetryCount for failed requests
	RetryCount int `json:"retry_count"`

	// RetryDelay between retries
	RetryDelay time.Duration `json:"retry_delay"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig(provider Provider) Config {
	return Config{
		Provider:   provider,
		Timeout:    30 * time.Second,
		RetryCount: 3,
		RetryDelay: 1 * time.Second,
		Headers:    make(map[string]string),
	}
}

// Adapter is the webhook adapter
type Adapter struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new webhook adapter
func New(config Config) *Adapter {
	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logging.Named("webhook"),
	}
}

// Payload is the custom webhook body
type Payload struct {
	Event         string             `json:"event"`
	Region        string             `json:"region"`
	Currency      types.Currency     `json:"currency"`
	TotalCost     float64            `json:"total_cost"`
	ResourceCount int                `json:"resource_count"`
	Skipped       int                `json:"skipped"`
	Conclusion    string             `json:"conclusion"`
	Violations    []ViolationPayload `json:"violations,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
}

// ViolationPayload is a failed rule
type ViolationPayload struct {
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// NewPayload builds a payload from a CI result
func NewPayload(r *ci.Result, now time.Time) *Payload {
	p := &Payload{
		Event:         "cost_estimate",
		Region:        r.Region,
		Currency:      r.Currency,
		TotalCost:     r.TotalCost,
		ResourceCount: r.Resources,
		Skipped:       r.Skipped,
		Conclusion:    r.CheckConclusion,
		Timestamp:     now.UTC(),
	}
	for _, v := range r.Violations {
		p.Violations = append(p.Violations, ViolationPayload{Rule: v.Rule, Message: v.Message, Severity: v.Severity})
	}
	return p
}

// Send sends the webhook, retrying failed attempts
func (a *Adapter) Send(ctx context.Context, payload *Payload) error {
	var lastErr error

	for attempt := 0; attempt <= a.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.config.RetryDelay):
			}
		}

		if err := a.sendOnce(ctx, payload); err != nil {
			a.logger.Debug("webhook attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			lastErr = err
			continue
		}
		return nil
	}

	return errors.Wrapf(errors.TypeRemoteFetch, lastErr, "webhook failed after %d attempts", a.config.RetryCount+1)
}

func (a *Adapter) sendOnce(ctx context.Context, payload *Payload) error {
	body, err := a.formatPayload(payload)
	if err != nil {
		return errors.Internal("failed to format payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.TypeInput, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
	if a.config.Secret != "" {
		req.Header.Set("X-Signature", Sign(body, a.config.Secret))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Newf(errors.TypeRemoteFetch, "webhook returned %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}

func (a *Adapter) formatPayload(payload *Payload) ([]byte, error) {
	switch a.config.Provider {
	case ProviderSlack:
		return formatSlack(payload)
	case ProviderTeams:
		return formatTeams(payload)
	default:
		return json.Marshal(payload)
	}
}

func formatSlack(payload *Payload) ([]byte, error) {
	color := "good"
	if len(payload.Violations) > 0 {
		color = "danger"
	}

	fields := []map[string]any{
		{"title": "Region", "value": payload.Region, "short": true},
		{"title": "Resources", "value": fmt.Sprintf("%d", payload.ResourceCount), "short": true},
		{"title": "Check", "value": payload.Conclusion, "short": true},
	}
	for _, v := range payload.Violations {
		fields = append(fields, map[string]any{"title": v.Rule, "value": v.Message, "short": false})
	}

	return json.Marshal(map[string]any{
		"attachments": []map[string]any{
			{
				"color":  color,
				"title":  "💰 Cost Estimate: " + output.Money(payload.TotalCost, 2, payload.Currency) + "/month",
				"fields": fields,
				"ts":     payload.Timestamp.Unix(),
			},
		},
	})
}

func formatTeams(payload *Payload) ([]byte, error) {
	themeColor := "00FF00"
	if len(payload.Violations) > 0 {
		themeColor = "FF0000"
	}
	total := output.Money(payload.TotalCost, 2, payload.Currency) + "/month"

	return json.Marshal(map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": themeColor,
		"summary":    "Cost Estimate: " + total,
		"sections": []map[string]any{
			{
				"activityTitle": "💰 IONOS Cloud Cost Estimate",
				"facts": []map[string]any{
					{"name": "Total Cost", "value": total},
					{"name": "Region", "value": payload.Region},
					{"name": "Resources", "value": fmt.Sprintf("%d", payload.ResourceCount)},
					{"name": "Check", "value": payload.Conclusion},
				},
			},
		},
	})
}

// Sign returns the hex HMAC-SHA256 of payload
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an incoming webhook signature
func VerifySignature(payload []byte, signature, secret string) bool {
	return hmac.Equal([]byte(signature), []byte(Sign(payload, secret)))
}
