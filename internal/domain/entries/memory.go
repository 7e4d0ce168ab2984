package entries

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps entries in process memory. It honours the same derivation
// contract as Repo and backs tests and local runs without Postgres.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Entry
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, rows: map[int64]Entry{}, now: time.Now}
}

func (r *MemoryRepo) List(_ context.Context, f Filter) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Entry{}
	for _, e := range r.rows {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) Get(_ context.Context, id int64) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *MemoryRepo) Create(_ context.Context, raw Raw) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := New(raw)
	e.Date = Day(e.Date)
	e.ID = r.nextID
	e.CreatedAt = r.now()
	e.UpdatedAt = e.CreatedAt
	r.nextID++
	r.rows[e.ID] = e
	return &e, nil
}

func (r *MemoryRepo) Update(_ context.Context, id int64, raw Raw) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	e := New(raw)
	e.Date = Day(e.Date)
	e.ID = id
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = r.now()
	r.rows[id] = e
	return &e, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) RecomputeAll(_ context.Context, dryRun bool) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for id, e := range r.rows {
		if !e.Recompute() {
			continue
		}
		changed++
		if !dryRun {
			r.rows[id] = e
		}
	}
	return len(r.rows), changed, nil
}

// Put stores e as is, derived fields included. Only meant for seeding stale rows.
func (r *MemoryRepo) Put(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == 0 {
		e.ID = r.nextID
	}
	if e.ID >= r.nextID {
		r.nextID = e.ID + 1
	}
	r.rows[e.ID] = e
}
