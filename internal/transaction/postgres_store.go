package transaction

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fraudwatch/fraudwatch/internal/idgen"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate brings the schema up to date. Idempotent; the goose migrations
// under migrations/ produce the same schema for managed deployments.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id                      VARCHAR(40) PRIMARY KEY,
			cc_number               VARCHAR(19) NOT NULL,
			amount                  DOUBLE PRECISION NOT NULL,
			category                VARCHAR(100) NOT NULL,
			latitude                DOUBLE PRECISION,
			longitude               DOUBLE PRECISION,
			merchant                VARCHAR(500) NOT NULL DEFAULT '',
			channel                 VARCHAR(20) NOT NULL DEFAULT 'in_store',
			device_id               VARCHAR(100),
			risk_score              DOUBLE PRECISION NOT NULL CHECK (risk_score >= 0 AND risk_score <= 1),
			risk_level              VARCHAR(10) NOT NULL,
			status                  VARCHAR(10) NOT NULL,
			f_amount_zscore         DOUBLE PRECISION,
			f_amount_to_avg_ratio   DOUBLE PRECISION,
			f_travel_velocity_kmh   DOUBLE PRECISION,
			f_travel_distance_km    DOUBLE PRECISION,
			f_txn_count_1h          INTEGER,
			f_txn_count_24h         INTEGER,
			f_txn_count_7d          INTEGER,
			f_seconds_since_last_txn DOUBLE PRECISION,
			f_hour_of_day           INTEGER,
			f_is_new_device         INTEGER,
			f_is_new_merchant       INTEGER,
			created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions (created_at DESC, id DESC);
		CREATE INDEX IF NOT EXISTS idx_transactions_score ON transactions (risk_score DESC);
		CREATE INDEX IF NOT EXISTS idx_transactions_level ON transactions (risk_level);
	`)
	return err
}

const txnColumns = `id, cc_number, amount, category, latitude, longitude, merchant, channel, device_id,
	risk_score, risk_level, status,
	f_amount_zscore, f_amount_to_avg_ratio, f_travel_velocity_kmh, f_travel_distance_km,
	f_txn_count_1h, f_txn_count_24h, f_txn_count_7d, f_seconds_since_last_txn,
	f_hour_of_day, f_is_new_device, f_is_new_merchant, created_at`

func (p *PostgresStore) Create(ctx context.Context, txn *Transaction) (*Transaction, error) {
	cp := *txn
	if cp.ID == "" {
		cp.ID = idgen.WithPrefix("txn_")
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO transactions (`+txnColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`, cp.ID, cp.CCNumber, cp.Amount, cp.Category, cp.Latitude, cp.Longitude,
		cp.Merchant, cp.Channel, cp.DeviceID,
		cp.RiskScore, cp.RiskLevel, cp.Status,
		cp.AmountZScore, cp.AmountToAvgRatio, cp.TravelVelocityKMH, cp.TravelDistanceKM,
		cp.TxnCount1H, cp.TxnCount24H, cp.TxnCount7D, cp.SecondsSinceLastTxn,
		cp.HourOfDay, cp.IsNewDevice, cp.IsNewMerchant, cp.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return &cp, nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Transaction, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+txnColumns+` FROM transactions WHERE id = $1
	`, id)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

func (p *PostgresStore) List(ctx context.Context, filter Filter) ([]*Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions`
	var args []interface{}
	var conditions []string

	if filter.RiskLevel != nil {
		args = append(args, *filter.RiskLevel)
		conditions = append(conditions, fmt.Sprintf("risk_level = $%d", len(args)))
	}
	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		conditions = append(conditions, fmt.Sprintf("risk_score >= $%d", len(args)))
	}
	if filter.CursorCreatedAt != nil {
		args = append(args, *filter.CursorCreatedAt, filter.CursorID)
		conditions = append(conditions, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args)) //nolint:gosec // placeholder index, not user input
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args)) //nolint:gosec // placeholder index, not user input
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []*Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

func (p *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

func (p *PostgresStore) CountByScoreGTE(ctx context.Context, minScore float64) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions WHERE risk_score >= $1
	`, minScore).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions by score: %w", err)
	}
	return n, nil
}

func (p *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status) (*Transaction, error) {
	result, err := p.db.ExecContext(ctx, `
		UPDATE transactions SET status = $1 WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return p.Get(ctx, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	var txn Transaction
	err := row.Scan(&txn.ID, &txn.CCNumber, &txn.Amount, &txn.Category,
		&txn.Latitude, &txn.Longitude, &txn.Merchant, &txn.Channel, &txn.DeviceID,
		&txn.RiskScore, &txn.RiskLevel, &txn.Status,
		&txn.AmountZScore, &txn.AmountToAvgRatio, &txn.TravelVelocityKMH, &txn.TravelDistanceKM,
		&txn.TxnCount1H, &txn.TxnCount24H, &txn.TxnCount7D, &txn.SecondsSinceLastTxn,
		&txn.HourOfDay, &txn.IsNewDevice, &txn.IsNewMerchant, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

var _ Store = (*PostgresStore)(nil)
