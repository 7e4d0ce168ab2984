package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Get(ctx context.Context, chatID int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT state, payload FROM dialog_states WHERE chat_id = $1`, chatID)
	var state string
	var raw []byte
	if err := row.Scan(&state, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Item{ChatID: chatID, State: StateIdle, Payload: Payload{}}, nil
		}
		return nil, err
	}
	p := Payload{}
	_ = json.Unmarshal(raw, &p)
	return &Item{ChatID: chatID, State: State(state), Payload: p}, nil
}

func (r *Repo) Set(ctx context.Context, chatID int64, state State, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_states (chat_id, state, payload, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (chat_id) DO UPDATE SET
		  state=$2, payload=$3, updated_at=now()
	`, chatID, string(state), raw)
	return err
}

func (r *Repo) Reset(ctx context.Context, chatID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE chat_id = $1`, chatID)
	return err
}

// MemoryRepo keeps dialog state per process. Payloads go through JSON like in
// Postgres so readers see the same shapes.
type MemoryRepo struct {
	mu    sync.Mutex
	items map[int64]memItem
}

type memItem struct {
	state   State
	payload []byte
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{items: map[int64]memItem{}} }

func (m *MemoryRepo) Get(_ context.Context, chatID int64) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[chatID]
	if !ok {
		return &Item{ChatID: chatID, State: StateIdle, Payload: Payload{}}, nil
	}
	p := Payload{}
	_ = json.Unmarshal(it.payload, &p)
	return &Item{ChatID: chatID, State: it.state, Payload: p}, nil
}

func (m *MemoryRepo) Set(_ context.Context, chatID int64, state State, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[chatID] = memItem{state: state, payload: raw}
	return nil
}

func (m *MemoryRepo) Reset(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, chatID)
	return nil
}
