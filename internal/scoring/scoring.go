// Package scoring is the client for the external fraud probability oracle.
//
// The oracle is a black box: it receives the client-supplied transaction
// fields and returns a fraud probability plus a bundle of derived features.
// Every failure mode (transport, timeout, non-2xx, unparseable body) is
// collapsed into a single error; the caller applies the fail-open policy
// and there is no retry at this layer.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fraudwatch/fraudwatch/internal/metrics"
	"github.com/fraudwatch/fraudwatch/internal/transaction"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrOracle is the root of every scoring fault. Callers only need
// errors.Is(err, ErrOracle); the wrapped detail is for logs.
var ErrOracle = errors.New("scoring: oracle fault")

// DefaultTimeout bounds a single scoring call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

const maxResponseSize = 1 << 20 // 1MB

// Prediction is the oracle's response document.
type Prediction struct {
	FraudProbability float64               `json:"fraud_probability"`
	IsFraud          bool                  `json:"is_fraud"`
	Features         *transaction.Features `json:"features"`
}

// Client scores a transaction against the oracle.
type Client interface {
	Score(ctx context.Context, input transaction.Input) (*Prediction, error)
}

// HTTPClient calls the oracle's /predict endpoint over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates an oracle client.
// Pass timeout=0 to use DefaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Score sends the transaction input to the oracle and decodes the prediction.
func (c *HTTPClient) Score(ctx context.Context, input transaction.Input) (*Prediction, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fault("encode", fmt.Errorf("marshal input: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fault("transport", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	timer := prometheus.NewTimer(metrics.ScoringDuration)
	resp, err := c.client.Do(req)
	timer.ObserveDuration()
	if err != nil {
		return nil, fault("transport", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, fault("status", fmt.Errorf("oracle returned HTTP %d", resp.StatusCode))
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fault("transport", fmt.Errorf("read response: %w", err))
	}

	var pred Prediction
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return nil, fault("decode", fmt.Errorf("parse response: %w", err))
	}

	if pred.FraudProbability < 0 || pred.FraudProbability > 1 {
		return nil, fault("decode", fmt.Errorf("fraud_probability %v outside [0,1]", pred.FraudProbability))
	}

	return &pred, nil
}

// fault records the failure kind and wraps it under ErrOracle.
func fault(kind string, err error) error {
	metrics.ScoringFaultsTotal.WithLabelValues(kind).Inc()
	return fmt.Errorf("%w: %s: %v", ErrOracle, kind, err)
}
