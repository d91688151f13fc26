// Package seeder replays a bundled set of sample transactions through the
// fraud pipeline on startup, so a fresh deployment has data to look at.
//
// Fixtures go through the same ingestion path as live traffic, with a
// randomized delay between transactions so time-sensitive features
// (velocity, txn counts) behave realistically.
package seeder

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/fraudwatch/fraudwatch/internal/metrics"
	"github.com/fraudwatch/fraudwatch/internal/transaction"
)

//go:embed fixtures/transactions.json
var fixturesJSON []byte

// Ingestor runs the full assess-and-persist pipeline for one transaction.
// Satisfied by *transaction.Service.
type Ingestor interface {
	Assess(ctx context.Context, input transaction.Input) (*transaction.Transaction, error)
}

// Counter reports how many transactions the store already holds.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Seeder replays the bundled fixtures sequentially.
type Seeder struct {
	ingestor Ingestor
	counter  Counter
	minDelay time.Duration
	maxDelay time.Duration
	rng      *rand.Rand
	logger   *slog.Logger
	running  atomic.Bool
}

// Option configures the seeder.
type Option func(*Seeder)

// WithDelayRange overrides the delay interval between replayed transactions.
func WithDelayRange(min, max time.Duration) Option {
	return func(s *Seeder) {
		s.minDelay = min
		s.maxDelay = max
	}
}

// WithSeed makes the delay sequence deterministic, for reproducible demos
// and tests.
func WithSeed(seed int64) Option {
	return func(s *Seeder) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // demo pacing, not crypto
	}
}

// New creates a seeder that replays fixtures through the ingestor.
func New(ingestor Ingestor, counter Counter, logger *slog.Logger, opts ...Option) *Seeder {
	s := &Seeder{
		ingestor: ingestor,
		counter:  counter,
		minDelay: 500 * time.Millisecond,
		maxDelay: 3000 * time.Millisecond,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // demo pacing, not crypto
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports whether a replay is in progress.
func (s *Seeder) Running() bool {
	return s.running.Load()
}

// Fixtures decodes the bundled sample transactions.
func Fixtures() ([]transaction.Input, error) {
	var seeds []transaction.Input
	if err := json.Unmarshal(fixturesJSON, &seeds); err != nil {
		return nil, fmt.Errorf("decode bundled fixtures: %w", err)
	}
	return seeds, nil
}

// Run replays the fixtures. Call in a goroutine after the server is
// accepting requests; it must never delay readiness.
//
// The replay is skipped entirely when the store already holds data, so a
// restart against a persistent database does not duplicate fixtures. A
// fixture that fails to ingest is logged and skipped; ctx cancellation
// aborts the remainder cleanly.
func (s *Seeder) Run(ctx context.Context) error {
	s.running.Store(true)
	defer s.running.Store(false)

	count, err := s.counter.Count(ctx)
	if err != nil {
		return fmt.Errorf("check existing transactions: %w", err)
	}
	if count > 0 {
		s.logger.Info("transactions already exist, skipping seed", "count", count)
		metrics.SeededFixturesTotal.WithLabelValues("skipped").Add(0)
		return nil
	}

	seeds, err := Fixtures()
	if err != nil {
		return err
	}

	s.logger.Info("seeding transactions through the fraud pipeline", "total", len(seeds))

	ingested := 0
	for i, input := range seeds {
		delay := s.minDelay
		if spread := s.maxDelay - s.minDelay; spread > 0 {
			delay += time.Duration(s.rng.Int63n(int64(spread)))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("seeding aborted", "ingested", ingested, "total", len(seeds))
			return ctx.Err()
		case <-time.After(delay):
		}

		txn, err := s.ingestor.Assess(ctx, input)
		if err != nil {
			s.logger.Warn("fixture rejected, continuing",
				"index", i,
				"category", input.Category,
				"error", err,
			)
			metrics.SeededFixturesTotal.WithLabelValues("failed").Inc()
			continue
		}
		ingested++
		metrics.SeededFixturesTotal.WithLabelValues("ok").Inc()

		s.logger.Info("seeded transaction",
			"progress", fmt.Sprintf("%d/%d", i+1, len(seeds)),
			"category", input.Category,
			"amount", input.Amount,
			"status", txn.Status,
		)
	}

	s.logger.Info("seeding complete", "ingested", ingested, "total", len(seeds))
	return nil
}
