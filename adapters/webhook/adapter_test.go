package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ionos-finops/adapters/ci"
	"ionos-finops/core/types"
)

func result() *ci.Result {
	return &ci.Result{
		CheckConclusion: "failure",
		Region:          "de/fra",
		Currency:        types.CurrencyEUR,
		TotalCost:       70,
		Resources:       2,
		Violations: []ci.Violation{
			{Rule: "budget_limit", Message: "over budget", Severity: "error"},
		},
	}
}

func TestSendCustomSigned(t *testing.T) {
	var got Payload
	var sig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sig = r.Header.Get("X-Signature")
		assert.True(t, VerifySignature(body, sig, "s3cret"))
		_ = json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	cfg := DefaultConfig(ProviderCustom)
	cfg.Endpoint = srv.URL
	cfg.Secret = "s3cret"

	require.NoError(t, New(cfg).Send(context.Background(), NewPayload(result(), time.Unix(0, 0))))

	assert.NotEmpty(t, sig)
	assert.Equal(t, "cost_estimate", got.Event)
	assert.Equal(t, "failure", got.Conclusion)
	require.Len(t, got.Violations, 1)
	assert.Equal(t, "budget_limit", got.Violations[0].Rule)
}

func TestSendRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	cfg := DefaultConfig(ProviderSlack)
	cfg.Endpoint = srv.URL
	cfg.RetryDelay = time.Millisecond

	require.NoError(t, New(cfg).Send(context.Background(), NewPayload(result(), time.Now())))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := DefaultConfig(ProviderTeams)
	cfg.Endpoint = srv.URL
	cfg.RetryCount = 1
	cfg.RetryDelay = time.Millisecond

	err := New(cfg).Send(context.Background(), NewPayload(result(), time.Now()))
	assert.Error(t, err)
}

func TestFormatSlack(t *testing.T) {
	body, err := formatSlack(NewPayload(result(), time.Unix(10, 0)))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	att := decoded["attachments"].([]any)[0].(map[string]any)
	assert.Equal(t, "danger", att["color"])
	assert.Equal(t, "💰 Cost Estimate: €70.00/month", att["title"])
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("Slack")
	require.NoError(t, err)
	assert.Equal(t, ProviderSlack, p)

	p, err = ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, ProviderCustom, p)

	_, err = ParseProvider("github")
	assert.Error(t, err)
}
