// Package transaction implements the fraud decision pipeline.
//
// Flow:
//  1. A raw transaction arrives at the ingestion endpoint
//  2. The scoring oracle returns a fraud probability plus derived features
//  3. Features are merged onto the record, the probability is classified
//     into a verdict, and the record is persisted exactly once
//  4. Dashboards read bucketed stats computed from the same thresholds
//
// When the oracle is unreachable the pipeline fails open: the record is
// persisted with the fallback probability and a REVIEW verdict instead of
// rejecting the transaction.
package transaction

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("transaction: not found")
	ErrInvalidInput  = errors.New("transaction: invalid input")
	ErrInvalidStatus = errors.New("transaction: invalid status")
)

// Status is the actionable verdict on a transaction.
type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusReview   Status = "REVIEW"
	StatusFlagged  Status = "FLAGGED"
	StatusBlocked  Status = "BLOCKED"
)

// RiskLevel buckets a fraud probability into a tier.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ValidStatus reports whether s is one of the known verdict statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusApproved, StatusReview, StatusFlagged, StatusBlocked:
		return true
	}
	return false
}

// DefaultChannel is assumed when the client omits the channel field.
const DefaultChannel = "in_store"

// Input is the client-supplied portion of a transaction, before scoring.
type Input struct {
	CCNumber  string   `json:"cc_number" binding:"required"`
	Amount    float64  `json:"amount"`
	Category  string   `json:"category" binding:"required"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Merchant  string   `json:"merchant,omitempty"`
	Channel   string   `json:"channel,omitempty"`
	DeviceID  *string  `json:"device_id,omitempty"`
}

// Features is the derived feature bundle computed by the scoring oracle.
// Every field is optional; nil means "not computed". The bundle is merged
// onto a transaction as a unit, never field by field across calls.
type Features struct {
	AmountZScore        *float64 `json:"f_amount_zscore"`
	AmountToAvgRatio    *float64 `json:"f_amount_to_avg_ratio"`
	TravelVelocityKMH   *float64 `json:"f_travel_velocity_kmh"`
	TravelDistanceKM    *float64 `json:"f_travel_distance_km"`
	TxnCount1H          *int     `json:"f_txn_count_1h"`
	TxnCount24H         *int     `json:"f_txn_count_24h"`
	TxnCount7D          *int     `json:"f_txn_count_7d"`
	SecondsSinceLastTxn *float64 `json:"f_seconds_since_last_txn"`
	HourOfDay           *int     `json:"f_hour_of_day"`
	IsNewDevice         *int     `json:"f_is_new_device"`
	IsNewMerchant       *int     `json:"f_is_new_merchant"`
}

// Transaction is the persisted unit of assessment. Immutable once stored,
// except for the manual status override path.
type Transaction struct {
	ID string `json:"id"`

	// Client-supplied fields
	CCNumber  string   `json:"cc_number"`
	Amount    float64  `json:"amount"`
	Category  string   `json:"category"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Merchant  string   `json:"merchant"`
	Channel   string   `json:"channel"`
	DeviceID  *string  `json:"device_id"`

	// Derived fields, written only by the feature merge
	Features

	// Verdict fields, written only by classification
	RiskScore float64   `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Status    Status    `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// Filter selects transactions from the store.
type Filter struct {
	RiskLevel *RiskLevel // exact tier match
	MinScore  *float64   // risk score >= MinScore
	Limit     int        // 0 = store default
	Offset    int

	// Cursor position for keyset pagination: records strictly older than
	// (CreatedAt, ID) in descending order. Takes precedence over Offset.
	CursorCreatedAt *time.Time
	CursorID        string
}

// Store persists assessed transactions.
//
// Create assigns the identity and writes the record atomically: a reader
// never observes a partially written transaction.
type Store interface {
	Create(ctx context.Context, txn *Transaction) (*Transaction, error)
	Get(ctx context.Context, id string) (*Transaction, error)
	List(ctx context.Context, filter Filter) ([]*Transaction, error)
	Count(ctx context.Context) (int64, error)
	CountByScoreGTE(ctx context.Context, threshold float64) (int64, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Transaction, error)
}
