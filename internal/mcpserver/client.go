package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Config holds the configuration for connecting to the FraudWatch API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
}

// FraudwatchClient is a pure HTTP client for the FraudWatch API.
type FraudwatchClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewFraudwatchClient creates a new client for the FraudWatch API.
func NewFraudwatchClient(cfg Config) *FraudwatchClient {
	return &FraudwatchClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the API and returns the response body.
func (c *FraudwatchClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// AssessTransaction runs a transaction through the fraud-check pipeline.
func (c *FraudwatchClient) AssessTransaction(ctx context.Context, input map[string]any) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodPost, "/api/transactions/fraud-check", nil, input)
}

// GetTransaction fetches a single assessed transaction by ID.
func (c *FraudwatchClient) GetTransaction(ctx context.Context, id string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/api/transactions/"+id, nil, nil)
}

// ListHighRisk lists recent high-risk transactions.
func (c *FraudwatchClient) ListHighRisk(ctx context.Context, minScore string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if minScore != "" {
		q.Set("minScore", minScore)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/api/transactions/high-risk", q, nil)
}

// ListTransactions lists assessed transactions, optionally filtered by risk level.
func (c *FraudwatchClient) ListTransactions(ctx context.Context, riskLevel string, limit int) (json.RawMessage, error) {
	q := url.Values{}
	if riskLevel != "" {
		q.Set("riskLevel", riskLevel)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.doRequest(ctx, http.MethodGet, "/api/transactions", q, nil)
}

// GetStats returns aggregate fraud statistics.
func (c *FraudwatchClient) GetStats(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/api/transactions/stats", nil, nil)
}
