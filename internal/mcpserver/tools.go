package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the FraudWatch MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolAssessTransaction = mcp.NewTool("assess_transaction",
	mcp.WithDescription(
		"Run a card transaction through the fraud decision pipeline. "+
			"Returns the risk score, risk level (LOW/MEDIUM/HIGH/CRITICAL), and the "+
			"verdict (APPROVED/REVIEW/FLAGGED/BLOCKED). The transaction is persisted."),
	mcp.WithString("cc_number",
		mcp.Required(),
		mcp.Description("Card number, digits only (e.g. '4111111111111111')")),
	mcp.WithNumber("amount",
		mcp.Required(),
		mcp.Description("Transaction amount (e.g. 125.50)")),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Merchant category (e.g. 'grocery_pos', 'shopping_net', 'gas_transport')")),
	mcp.WithString("merchant",
		mcp.Description("Merchant name")),
	mcp.WithString("channel",
		mcp.Description("Transaction channel: 'in_store', 'online', or 'atm' (default 'in_store')")),
	mcp.WithNumber("latitude",
		mcp.Description("Transaction latitude")),
	mcp.WithNumber("longitude",
		mcp.Description("Transaction longitude")),
	mcp.WithString("device_id",
		mcp.Description("Device identifier for online transactions")),
)

var ToolGetTransaction = mcp.NewTool("get_transaction",
	mcp.WithDescription(
		"Look up a single assessed transaction by ID. "+
			"Returns the full verdict including risk score, risk level, status, and derived features."),
	mcp.WithString("transaction_id",
		mcp.Required(),
		mcp.Description("The transaction ID (e.g. 'txn_a1b2c3...')")),
)

var ToolListHighRisk = mcp.NewTool("list_high_risk",
	mcp.WithDescription(
		"List recent high-risk transactions, most recent first. "+
			"Use this to review what the pipeline has flagged or blocked."),
	mcp.WithString("min_score",
		mcp.Description("Minimum risk score in [0,1] (default 0.7)")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of transactions to return (default 20)")),
)

var ToolListTransactions = mcp.NewTool("list_transactions",
	mcp.WithDescription(
		"Browse assessed transactions, most recent first. "+
			"Optionally filter by risk level."),
	mcp.WithString("risk_level",
		mcp.Description("Filter by risk level"),
		mcp.Enum("LOW", "MEDIUM", "HIGH", "CRITICAL")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of transactions to return (default 20)")),
)

var ToolGetFraudStats = mcp.NewTool("get_fraud_stats",
	mcp.WithDescription(
		"Get aggregate fraud statistics: total transactions assessed, counts per "+
			"risk level, and how many were flagged or blocked."),
)
