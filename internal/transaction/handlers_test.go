package transaction

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, scorer Scorer) (*gin.Engine, Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewMemoryStore()
	svc := NewService(store, scorer, testLogger())
	handler := NewHandler(svc, 0.7)

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/transactions"))
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFraudCheck_Created(t *testing.T) {
	hour := 14
	r, _ := setupRouter(t, &stubScorer{result: &ScoreResult{
		Probability: 0.12,
		Features:    &Features{HourOfDay: &hour},
	}})

	w := doJSON(t, r, http.MethodPost, "/api/transactions/fraud-check", gin.H{
		"cc_number": "4111111111111111",
		"amount":    42.50,
		"category":  "grocery_pos",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var txn Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txn))
	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, StatusApproved, txn.Status)
	assert.Equal(t, RiskLow, txn.RiskLevel)
	require.NotNil(t, txn.HourOfDay)
	assert.Equal(t, 14, *txn.HourOfDay)
}

func TestFraudCheck_MalformedBody(t *testing.T) {
	r, _ := setupRouter(t, &stubScorer{result: &ScoreResult{Probability: 0.1}})

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/fraud-check",
		bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}

func TestFraudCheck_ValidationFailure(t *testing.T) {
	scorer := &stubScorer{result: &ScoreResult{Probability: 0.1}}
	r, store := setupRouter(t, scorer)

	w := doJSON(t, r, http.MethodPost, "/api/transactions/fraud-check", gin.H{
		"cc_number": "4111111111111111",
		"amount":    -1,
		"category":  "misc_net",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")

	count, _ := store.Count(context.Background())
	assert.Equal(t, int64(0), count)
}

func TestGetTransaction(t *testing.T) {
	r, store := setupRouter(t, &stubScorer{})
	created, err := store.Create(context.Background(), &Transaction{
		CCNumber: "4111111111111111",
		Category: "misc_net",
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/transactions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var txn Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txn))
	assert.Equal(t, created.ID, txn.ID)
}

func TestGetTransaction_NotFound(t *testing.T) {
	r, _ := setupRouter(t, &stubScorer{})

	w := doJSON(t, r, http.MethodGet, "/api/transactions/txn_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestListTransactions_Paginated(t *testing.T) {
	r, store := setupRouter(t, &stubScorer{})
	seedScores(t, store, []float64{0.1, 0.2, 0.3, 0.4, 0.5})

	w := doJSON(t, r, http.MethodGet, "/api/transactions?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Transactions []*Transaction `json:"transactions"`
		Count        int            `json:"count"`
		NextCursor   string         `json:"next_cursor"`
		HasMore      bool           `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Count)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)

	// Follow the cursor to the next page
	w2 := doJSON(t, r, http.MethodGet, "/api/transactions?limit=2&cursor="+page.NextCursor, nil)
	require.Equal(t, http.StatusOK, w2.Code)

	var page2 struct {
		Transactions []*Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &page2))
	require.Len(t, page2.Transactions, 2)
	for _, txn := range page2.Transactions {
		assert.NotEqual(t, page.Transactions[0].ID, txn.ID)
		assert.NotEqual(t, page.Transactions[1].ID, txn.ID)
	}
}

func TestListTransactions_MalformedLimitFallsBackToDefault(t *testing.T) {
	r, store := setupRouter(t, &stubScorer{})
	seedScores(t, store, []float64{0.1, 0.2, 0.3})

	// "2abc" must not parse as 2
	for _, limit := range []string{"2abc", "abc", "-1", "0"} {
		w := doJSON(t, r, http.MethodGet, "/api/transactions?limit="+limit, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 3, page.Count, "limit=%s should fall back to the default", limit)
	}
}

func TestListTransactions_BadCursor(t *testing.T) {
	r, _ := setupRouter(t, &stubScorer{})

	w := doJSON(t, r, http.MethodGet, "/api/transactions?cursor=@@@", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_cursor")
}

func TestListTransactions_BadRiskLevel(t *testing.T) {
	r, _ := setupRouter(t, &stubScorer{})

	w := doJSON(t, r, http.MethodGet, "/api/transactions?riskLevel=EXTREME", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListHighRisk_DefaultThreshold(t *testing.T) {
	r, store := setupRouter(t, &stubScorer{})
	seedScores(t, store, []float64{0.2, 0.69, 0.7, 0.95})

	w := doJSON(t, r, http.MethodGet, "/api/transactions/high-risk", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Transactions []*Transaction `json:"transactions"`
		MinScore     float64        `json:"min_score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.7, resp.MinScore)
	assert.Len(t, resp.Transactions, 2)
}

func TestListHighRisk_CustomThreshold(t *testing.T) {
	r, store := setupRouter(t, &stubScorer{})
	seedScores(t, store, []float64{0.2, 0.69, 0.7, 0.95})

	w := doJSON(t, r, http.MethodGet, "/api/transactions/high-risk?minScore=0.9", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Transactions []*Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Transactions, 1)
}

func TestListHighRisk_InvalidThreshold(t *testing.T) {
	r, _ := setupRouter(t, &stubScorer{})

	w := doJSON(t, r, http.MethodGet, "/api/transactions/high-risk?minScore=1.5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats(t *testing.T) {
	r, store := setupRouter(t, &stubScorer{})
	seedScores(t, store, []float64{0.1, 0.35, 0.65, 0.85, 0.95})

	w := doJSON(t, r, http.MethodGet, "/api/transactions/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats StatsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(3), stats.Flagged)
	assert.Equal(t, int64(2), stats.Blocked)
}

func TestOverrideStatus_Endpoint(t *testing.T) {
	r, store := setupRouter(t, &stubScorer{})
	created, err := store.Create(context.Background(), &Transaction{
		CCNumber:  "4111111111111111",
		Category:  "misc_net",
		RiskScore: 0.9,
		RiskLevel: RiskCritical,
		Status:    StatusBlocked,
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPatch, "/api/transactions/"+created.ID+"/status",
		gin.H{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, w.Code)

	var txn Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txn))
	assert.Equal(t, StatusApproved, txn.Status)
	assert.Equal(t, 0.9, txn.RiskScore)
	assert.Equal(t, RiskCritical, txn.RiskLevel)
}

func TestOverrideStatus_UnknownStatus(t *testing.T) {
	r, store := setupRouter(t, &stubScorer{})
	created, err := store.Create(context.Background(), &Transaction{
		CCNumber: "4111111111111111",
		Category: "misc_net",
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPatch, "/api/transactions/"+created.ID+"/status",
		gin.H{"status": "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_status")
}

func TestOverrideStatus_NotFoundEndpoint(t *testing.T) {
	r, _ := setupRouter(t, &stubScorer{})

	w := doJSON(t, r, http.MethodPatch, "/api/transactions/txn_missing/status",
		gin.H{"status": "APPROVED"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
