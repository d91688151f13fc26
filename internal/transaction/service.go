package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fraudwatch/fraudwatch/internal/metrics"
	"github.com/fraudwatch/fraudwatch/internal/traces"
	"github.com/fraudwatch/fraudwatch/internal/validation"
)

// ScoreResult is what the orchestrator needs from a scoring call.
type ScoreResult struct {
	Probability float64
	Features    *Features
}

// Scorer abstracts the scoring oracle. Implementations must bound the call
// with their own timeout; a returned error is absorbed by the fail-open
// policy, never propagated to the ingestion caller.
type Scorer interface {
	Score(ctx context.Context, input Input) (*ScoreResult, error)
}

// EventEmitter receives each assessed transaction (for the live alert feed).
type EventEmitter interface {
	EmitAssessed(txn *Transaction)
}

// Service orchestrates assess-and-persist.
type Service struct {
	store    Store
	scorer   Scorer
	fallback float64 // probability assumed when the scorer faults
	events   EventEmitter
	logger   *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithFallbackProbability overrides the default fail-open probability (0.50).
func WithFallbackProbability(p float64) Option {
	return func(s *Service) { s.fallback = p }
}

// WithEvents wires an emitter that is notified after each persisted verdict.
func WithEvents(e EventEmitter) Option {
	return func(s *Service) { s.events = e }
}

// NewService creates the ingestion orchestrator.
func NewService(store Store, scorer Scorer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		scorer:   scorer,
		fallback: 0.50,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks the client-supplied fields of an ingestion request.
func (in *Input) Validate() validation.ValidationErrors {
	return validation.Validate(
		validation.Required("cc_number", in.CCNumber),
		validation.CardNumber("cc_number", in.CCNumber),
		validation.Required("category", in.Category),
		validation.NonNegative("amount", in.Amount),
		validation.Coordinate("latitude", in.Latitude, -90, 90),
		validation.Coordinate("longitude", in.Longitude, -180, 180),
		validation.MaxLength("merchant", in.Merchant, validation.MaxStringLength),
	)
}

// Assess runs the full pipeline for one transaction: validate, score,
// merge, classify, persist. Exactly one scoring call and at most one
// persisted record per invocation; no partial state on any exit path.
//
// A scoring fault does not fail the request. The record is persisted with
// the fallback probability, which classifies to REVIEW/MEDIUM under the
// default thresholds: an unavailable scorer degrades the decision to
// "needs human review", it never blocks ingestion.
func (s *Service) Assess(ctx context.Context, input Input) (*Transaction, error) {
	if errs := input.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, errs.Error())
	}

	// Merchant is free text from the client; everything else is validated
	// to a strict shape above.
	input.Merchant = validation.SanitizeString(input.Merchant, validation.MaxStringLength)

	ctx, span := traces.StartSpan(ctx, "transaction.assess",
		traces.Category(input.Category),
		traces.Amount(input.Amount),
	)
	defer span.End()

	probability := s.fallback
	var features *Features

	scoreCtx, scoreSpan := traces.StartSpan(ctx, "scoring.predict")
	result, err := s.scorer.Score(scoreCtx, input)
	scoreSpan.End()
	if err != nil {
		s.logger.Warn("scoring oracle fault, failing open",
			"error", err,
			"fallback_probability", s.fallback,
		)
	} else {
		probability = result.Probability
		features = result.Features
	}

	txn := &Transaction{
		CCNumber:  input.CCNumber,
		Amount:    input.Amount,
		Category:  input.Category,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Merchant:  input.Merchant,
		Channel:   input.Channel,
		DeviceID:  input.DeviceID,
		CreatedAt: time.Now().UTC(),
	}
	if txn.Channel == "" {
		txn.Channel = DefaultChannel
	}

	txn.ApplyFeatures(features)

	status, level := Classify(probability)
	txn.RiskScore = probability
	txn.Status = status
	txn.RiskLevel = level

	span.SetAttributes(
		traces.RiskScore(txn.RiskScore),
		traces.RiskLevel(string(txn.RiskLevel)),
		traces.Status(string(txn.Status)),
	)

	stored, err := s.store.Create(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("persist transaction: %w", err)
	}

	metrics.IngestionsTotal.WithLabelValues(string(stored.Status)).Inc()
	span.SetAttributes(traces.TransactionID(stored.ID))

	s.logger.Info("transaction assessed",
		"id", stored.ID,
		"category", stored.Category,
		"risk_score", stored.RiskScore,
		"risk_level", stored.RiskLevel,
		"status", stored.Status,
	)

	if s.events != nil {
		s.events.EmitAssessed(stored)
	}

	return stored, nil
}

// Get returns a stored transaction by id.
func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.store.Get(ctx, id)
}

// List returns stored transactions matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Transaction, error) {
	return s.store.List(ctx, filter)
}

// HighRisk returns transactions with risk score >= minScore,
// newest first.
func (s *Service) HighRisk(ctx context.Context, minScore float64, limit int) ([]*Transaction, error) {
	return s.store.List(ctx, Filter{MinScore: &minScore, Limit: limit})
}

// OverrideStatus applies a manual verdict override (mark as legitimate or
// fraud after human review). This is the documented exception to the
// score/status consistency invariant: the new status may diverge from what
// Classify(riskScore) would produce, and the risk score and derived
// features are never touched.
func (s *Service) OverrideStatus(ctx context.Context, id string, status Status) (*Transaction, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	updated, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction status overridden",
		"id", id,
		"status", status,
	)
	return updated, nil
}
