package transaction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScorer struct {
	result *ScoreResult
	err    error
	calls  int
}

func (s *stubScorer) Score(ctx context.Context, input Input) (*ScoreResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() Input {
	return Input{
		CCNumber: "4111111111111111",
		Amount:   125.50,
		Category: "grocery_pos",
	}
}

func TestAssess_HappyPath(t *testing.T) {
	hour := 3
	scorer := &stubScorer{result: &ScoreResult{
		Probability: 0.85,
		Features:    &Features{HourOfDay: &hour},
	}}
	store := NewMemoryStore()
	svc := NewService(store, scorer, testLogger())

	txn, err := svc.Assess(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, 0.85, txn.RiskScore)
	assert.Equal(t, RiskCritical, txn.RiskLevel)
	assert.Equal(t, StatusBlocked, txn.Status)
	require.NotNil(t, txn.HourOfDay)
	assert.Equal(t, 3, *txn.HourOfDay)
	assert.Nil(t, txn.AmountZScore)
	assert.Equal(t, DefaultChannel, txn.Channel)
	assert.False(t, txn.CreatedAt.IsZero())

	// Exactly one scoring call and one persisted record
	assert.Equal(t, 1, scorer.calls)
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAssess_ScorerFaultFailsOpen(t *testing.T) {
	scorer := &stubScorer{err: errors.New("connection refused")}
	store := NewMemoryStore()
	svc := NewService(store, scorer, testLogger())

	txn, err := svc.Assess(context.Background(), validInput())
	require.NoError(t, err, "a scoring fault must not fail the request")

	assert.Equal(t, 0.50, txn.RiskScore)
	assert.Equal(t, RiskMedium, txn.RiskLevel)
	assert.Equal(t, StatusReview, txn.Status)

	// No features invented for an unscored record
	assert.Nil(t, txn.AmountZScore)
	assert.Nil(t, txn.HourOfDay)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAssess_CustomFallbackProbability(t *testing.T) {
	scorer := &stubScorer{err: errors.New("timeout")}
	svc := NewService(NewMemoryStore(), scorer, testLogger(), WithFallbackProbability(0.65))

	txn, err := svc.Assess(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 0.65, txn.RiskScore)
	assert.Equal(t, StatusFlagged, txn.Status)
}

func TestAssess_ValidationRejectedBeforeScoring(t *testing.T) {
	scorer := &stubScorer{result: &ScoreResult{Probability: 0.1}}
	store := NewMemoryStore()
	svc := NewService(store, scorer, testLogger())

	tests := []struct {
		name  string
		input Input
	}{
		{"missing card number", Input{Amount: 10, Category: "misc_net"}},
		{"non-numeric card", Input{CCNumber: "41x1", Category: "misc_net"}},
		{"missing category", Input{CCNumber: "4111111111111111"}},
		{"negative amount", Input{CCNumber: "4111111111111111", Amount: -5, Category: "misc_net"}},
		{"latitude out of range", Input{CCNumber: "4111111111111111", Category: "misc_net", Latitude: ptr(91.0)}},
		{"longitude out of range", Input{CCNumber: "4111111111111111", Category: "misc_net", Longitude: ptr(-181.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assess(context.Background(), tt.input)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}

	// Rejected input never reaches the scorer or the store
	assert.Equal(t, 0, scorer.calls)
	count, _ := store.Count(context.Background())
	assert.Equal(t, int64(0), count)
}

func TestAssess_PreservesClientChannel(t *testing.T) {
	scorer := &stubScorer{result: &ScoreResult{Probability: 0.1}}
	svc := NewService(NewMemoryStore(), scorer, testLogger())

	input := validInput()
	input.Channel = "online"

	txn, err := svc.Assess(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "online", txn.Channel)
}

func TestAssess_SanitizesMerchant(t *testing.T) {
	scorer := &stubScorer{result: &ScoreResult{Probability: 0.1}}
	svc := NewService(NewMemoryStore(), scorer, testLogger())

	input := validInput()
	input.Merchant = "  fraud_Kirlin\x00 and Sons  "

	txn, err := svc.Assess(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "fraud_Kirlin and Sons", txn.Merchant)
}

type captureEmitter struct {
	emitted []*Transaction
}

func (e *captureEmitter) EmitAssessed(txn *Transaction) {
	e.emitted = append(e.emitted, txn)
}

func TestAssess_EmitsAssessedEvent(t *testing.T) {
	scorer := &stubScorer{result: &ScoreResult{Probability: 0.9}}
	emitter := &captureEmitter{}
	svc := NewService(NewMemoryStore(), scorer, testLogger(), WithEvents(emitter))

	txn, err := svc.Assess(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, emitter.emitted, 1)
	assert.Equal(t, txn.ID, emitter.emitted[0].ID)
}

func TestOverrideStatus(t *testing.T) {
	scorer := &stubScorer{result: &ScoreResult{Probability: 0.85}}
	store := NewMemoryStore()
	svc := NewService(store, scorer, testLogger())

	txn, err := svc.Assess(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, StatusBlocked, txn.Status)

	// Analyst marks it legitimate after review
	updated, err := svc.OverrideStatus(context.Background(), txn.ID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)

	// Score, tier and features are untouched by the override
	assert.Equal(t, 0.85, updated.RiskScore)
	assert.Equal(t, RiskCritical, updated.RiskLevel)
}

func TestOverrideStatus_RejectsUnknownStatus(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubScorer{}, testLogger())

	_, err := svc.OverrideStatus(context.Background(), "txn_x", Status("MAYBE"))
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestOverrideStatus_NotFound(t *testing.T) {
	svc := NewService(NewMemoryStore(), &stubScorer{}, testLogger())

	_, err := svc.OverrideStatus(context.Background(), "txn_missing", StatusApproved)
	assert.True(t, errors.Is(err, ErrNotFound))
}
