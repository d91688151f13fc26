package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *FraudwatchClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *FraudwatchClient) *Handlers {
	return &Handlers{client: client}
}

// HandleAssessTransaction runs a transaction through the pipeline.
func (h *Handlers) HandleAssessTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ccNumber := req.GetString("cc_number", "")
	if ccNumber == "" {
		return mcp.NewToolResultError("cc_number is required"), nil
	}
	category := req.GetString("category", "")
	if category == "" {
		return mcp.NewToolResultError("category is required"), nil
	}

	input := map[string]any{
		"cc_number": ccNumber,
		"amount":    req.GetFloat("amount", 0),
		"category":  category,
	}
	if v := req.GetString("merchant", ""); v != "" {
		input["merchant"] = v
	}
	if v := req.GetString("channel", ""); v != "" {
		input["channel"] = v
	}
	if v := req.GetString("device_id", ""); v != "" {
		input["device_id"] = v
	}
	args := req.GetArguments()
	if v, ok := args["latitude"].(float64); ok {
		input["latitude"] = v
	}
	if v, ok := args["longitude"].(float64); ok {
		input["longitude"] = v
	}

	raw, err := h.client.AssessTransaction(ctx, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Assessment failed: %v", err)), nil
	}

	text, err := formatTransaction(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse verdict: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetTransaction looks up one assessed transaction.
func (h *Handlers) HandleGetTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("transaction_id", "")
	if id == "" {
		return mcp.NewToolResultError("transaction_id is required"), nil
	}

	raw, err := h.client.GetTransaction(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get transaction: %v", err)), nil
	}

	text, err := formatTransaction(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse transaction: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListHighRisk lists recent high-risk transactions.
func (h *Handlers) HandleListHighRisk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minScore := req.GetString("min_score", "")
	limit := req.GetInt("limit", 20)

	raw, err := h.client.ListHighRisk(ctx, minScore, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list high-risk transactions: %v", err)), nil
	}

	text, err := formatTransactionList(raw, "high-risk transaction")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse transactions: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListTransactions browses assessed transactions.
func (h *Handlers) HandleListTransactions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	riskLevel := req.GetString("risk_level", "")
	limit := req.GetInt("limit", 20)

	raw, err := h.client.ListTransactions(ctx, riskLevel, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list transactions: %v", err)), nil
	}

	text, err := formatTransactionList(raw, "transaction")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse transactions: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetFraudStats returns aggregate pipeline statistics.
func (h *Handlers) HandleGetFraudStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.GetStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get fraud stats: %v", err)), nil
	}

	text, err := formatStats(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse stats: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

func formatTransaction(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Transaction %s\n", getString(m, "id"))
	fmt.Fprintf(&sb, "  Verdict: %s (risk level %s)\n", getString(m, "status"), getString(m, "risk_level"))
	if score, ok := getFloat(m, "risk_score"); ok {
		fmt.Fprintf(&sb, "  Risk score: %.2f\n", score)
	}
	if amount, ok := getFloat(m, "amount"); ok {
		fmt.Fprintf(&sb, "  Amount: %.2f (%s)\n", amount, getString(m, "category"))
	}
	if v := getString(m, "merchant"); v != "" {
		fmt.Fprintf(&sb, "  Merchant: %s\n", v)
	}
	if v := getString(m, "channel"); v != "" {
		fmt.Fprintf(&sb, "  Channel: %s\n", v)
	}
	if v := getString(m, "created_at"); v != "" {
		fmt.Fprintf(&sb, "  Assessed at: %s\n", v)
	}

	features := collectFeatures(m)
	if len(features) > 0 {
		sb.WriteString("  Features:\n")
		for _, f := range features {
			fmt.Fprintf(&sb, "    %s\n", f)
		}
	}

	return sb.String(), nil
}

// collectFeatures pulls the f_* fields out of a transaction document.
func collectFeatures(m map[string]any) []string {
	var out []string
	for _, key := range []string{
		"f_amount_zscore", "f_amount_to_avg_ratio", "f_travel_velocity_kmh",
		"f_travel_distance_km", "f_txn_count_1h", "f_txn_count_24h",
		"f_txn_count_7d", "f_seconds_since_last_txn", "f_hour_of_day",
		"f_is_new_device", "f_is_new_merchant",
	} {
		if v, ok := m[key]; ok && v != nil {
			if f, ok := v.(float64); ok {
				out = append(out, fmt.Sprintf("%s = %g", strings.TrimPrefix(key, "f_"), f))
			}
		}
	}
	return out
}

func formatTransactionList(raw json.RawMessage, noun string) (string, error) {
	var resp struct {
		Transactions []map[string]any `json:"transactions"`
	}
	// Try as {"transactions": [...]}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Transactions == nil {
		// Try as direct array
		if err := json.Unmarshal(raw, &resp.Transactions); err != nil {
			return "", fmt.Errorf("unexpected transactions response format")
		}
	}

	if len(resp.Transactions) == 0 {
		return fmt.Sprintf("No %ss found.", noun), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d %s(s):\n\n", len(resp.Transactions), noun)
	for i, txn := range resp.Transactions {
		score := "?"
		if v, ok := getFloat(txn, "risk_score"); ok {
			score = strconv.FormatFloat(v, 'f', 2, 64)
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, getString(txn, "id"))
		fmt.Fprintf(&sb, "   %s | %s | score %s\n",
			getString(txn, "status"), getString(txn, "risk_level"), score)
		if amount, ok := getFloat(txn, "amount"); ok {
			fmt.Fprintf(&sb, "   Amount: %.2f (%s)\n", amount, getString(txn, "category"))
		}
		if i < len(resp.Transactions)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func formatStats(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	count := func(key string) float64 {
		v, _ := getFloat(m, key)
		return v
	}

	var sb strings.Builder
	sb.WriteString("Fraud pipeline statistics:\n")
	fmt.Fprintf(&sb, "  Total assessed: %.0f\n", count("total"))
	fmt.Fprintf(&sb, "  By risk level:\n")
	fmt.Fprintf(&sb, "    LOW:      %.0f\n", count("lowRisk"))
	fmt.Fprintf(&sb, "    MEDIUM:   %.0f\n", count("mediumRisk"))
	fmt.Fprintf(&sb, "    HIGH:     %.0f\n", count("highRisk"))
	fmt.Fprintf(&sb, "    CRITICAL: %.0f\n", count("critical"))
	fmt.Fprintf(&sb, "  Flagged: %.0f\n", count("flagged"))
	fmt.Fprintf(&sb, "  Blocked: %.0f\n", count("blocked"))

	return sb.String(), nil
}

// getString extracts a string value from a map, trying multiple key names.
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%g", f)
			}
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map, trying multiple key names.
func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}
