package memory_repo

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/internal/repository"
	"sync"
)

type historyRepo struct {
	mtx     sync.RWMutex
	records []model.HistoryRecord // newest first
	seen    map[string]struct{}
	limit   int
}

// NewHistoryRepository keeps at most limit records, zero means unbounded.
func NewHistoryRepository(limit int) repository.HistoryRepository {
	return &historyRepo{
		seen:  make(map[string]struct{}),
		limit: limit,
	}
}

func (r *historyRepo) Add(_ context.Context, record model.HistoryRecord) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.seen[record.RoundID]; ok {
		return nil
	}
	r.seen[record.RoundID] = struct{}{}
	r.records = append([]model.HistoryRecord{record}, r.records...)
	if r.limit > 0 && len(r.records) > r.limit {
		for _, dropped := range r.records[r.limit:] {
			delete(r.seen, dropped.RoundID)
		}
		r.records = r.records[:r.limit]
	}
	return nil
}

func (r *historyRepo) List(_ context.Context, limit int) ([]model.HistoryRecord, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	n := len(r.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.HistoryRecord, n)
	copy(out, r.records[:n])
	return out, nil
}
