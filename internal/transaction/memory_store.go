package transaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fraudwatch/fraudwatch/internal/idgen"
)

// MemoryStore is an in-memory transaction store for demo/development mode.
type MemoryStore struct {
	byID  map[string]*Transaction
	order []*Transaction // insertion order, oldest first
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory transaction store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*Transaction),
		order: make([]*Transaction, 0),
	}
}

func (m *MemoryStore) Create(ctx context.Context, txn *Transaction) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *txn
	if cp.ID == "" {
		cp.ID = idgen.WithPrefix("txn_")
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}

	m.byID[cp.ID] = &cp
	m.order = append(m.order, &cp)

	out := cp
	return &out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txn, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (m *MemoryStore) List(ctx context.Context, filter Filter) ([]*Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*Transaction, 0, len(m.order))
	for _, txn := range m.order {
		if filter.RiskLevel != nil && txn.RiskLevel != *filter.RiskLevel {
			continue
		}
		if filter.MinScore != nil && txn.RiskScore < *filter.MinScore {
			continue
		}
		matched = append(matched, txn)
	}

	// Newest first; ID breaks ties so cursor pagination is stable.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.CursorCreatedAt != nil {
		cut := 0
		for cut < len(matched) {
			t := matched[cut]
			if t.CreatedAt.Before(*filter.CursorCreatedAt) ||
				(t.CreatedAt.Equal(*filter.CursorCreatedAt) && t.ID < filter.CursorID) {
				break
			}
			cut++
		}
		matched = matched[cut:]
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	result := make([]*Transaction, len(matched))
	for i, txn := range matched {
		cp := *txn
		result[i] = &cp
	}
	return result, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.order)), nil
}

func (m *MemoryStore) CountByScoreGTE(ctx context.Context, minScore float64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, txn := range m.order {
		if txn.RiskScore >= minScore {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txn, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	txn.Status = status

	cp := *txn
	return &cp, nil
}
