package transaction

import (
	"context"
	"fmt"
)

// StatsSnapshot is an aggregate view over every stored transaction.
//
// The tier counts are derived from the same thresholds Classify uses, so
// low+medium+high+critical always equals total. Flagged counts every
// transaction at or above the HIGH threshold and therefore includes the
// blocked ones; blocked is the CRITICAL tier alone.
type StatsSnapshot struct {
	Total    int64 `json:"total"`
	Low      int64 `json:"lowRisk"`
	Medium   int64 `json:"mediumRisk"`
	High     int64 `json:"highRisk"`
	Critical int64 `json:"critical"`
	Flagged  int64 `json:"flagged"`
	Blocked  int64 `json:"blocked"`
}

// Stats computes the snapshot with four threshold counts and derives the
// tier buckets by difference. The snapshot is not a serialized read: under
// concurrent ingestion the buckets may straddle writes, but each count is
// internally consistent and the sum invariant holds for the observed rows.
func (s *Service) Stats(ctx context.Context) (*StatsSnapshot, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count total: %w", err)
	}

	gteMedium, err := s.store.CountByScoreGTE(ctx, ThresholdMedium)
	if err != nil {
		return nil, fmt.Errorf("count >= medium: %w", err)
	}
	gteHigh, err := s.store.CountByScoreGTE(ctx, ThresholdHigh)
	if err != nil {
		return nil, fmt.Errorf("count >= high: %w", err)
	}
	gteCritical, err := s.store.CountByScoreGTE(ctx, ThresholdCritical)
	if err != nil {
		return nil, fmt.Errorf("count >= critical: %w", err)
	}

	return &StatsSnapshot{
		Total:    total,
		Low:      total - gteMedium,
		Medium:   gteMedium - gteHigh,
		High:     gteHigh - gteCritical,
		Critical: gteCritical,
		Flagged:  gteHigh,
		Blocked:  gteCritical,
	}, nil
}
