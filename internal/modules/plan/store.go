// README: Plan stores; Postgres JSONB for durable plans, go-cache when no database is configured.
package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"
)

var ErrNotFound = errors.New("plan not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Save upserts p; the whole plan is kept in body, the other columns are for querying.
func (s *Store) Save(ctx context.Context, p *Plan) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode plan %s: %w", p.ID, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO trip_plans (
			id, location, start_date, end_date, travelers, budget,
			used_fallback, degraded, body, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			used_fallback = EXCLUDED.used_fallback,
			degraded = EXCLUDED.degraded,
			body = EXCLUDED.body`,
		p.ID.String(),
		p.Request.Location,
		p.Request.StartDate,
		p.Request.EndDate,
		p.Request.Travelers,
		p.Budget.Total.String(),
		p.UsedFallback,
		p.Degraded,
		body,
		p.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plan %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	var body []byte
	err := s.db.QueryRow(ctx, `SELECT body FROM trip_plans WHERE id = $1`, id.String()).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select plan %s: %w", id, err)
	}
	var p Plan
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", id, err)
	}
	return &p, nil
}

// MemoryStore keeps plans in process for ttl.
type MemoryStore struct {
	items *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: gocache.New(ttl, 10*time.Minute)}
}

func (s *MemoryStore) Save(_ context.Context, p *Plan) error {
	cp := *p
	s.items.SetDefault(p.ID.String(), &cp)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Plan, error) {
	v, ok := s.items.Get(id.String())
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*Plan)
	return &cp, nil
}
