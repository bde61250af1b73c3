// README: Bench checks for the trip API; environment, contract, concurrency and throughput.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"wayfarer/internal/infra"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// planID is set by the first successful plan check and reused by later ones.
	planID string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 90 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) tripBody(days int) map[string]any {
	start := time.Now().AddDate(0, 1, 0)
	return map[string]any{
		"location":   r.cfg.Location,
		"start_date": start.Format("2006-01-02"),
		"end_date":   start.AddDate(0, 0, days-1).Format("2006-01-02"),
		"budget":     2000,
		"travelers":  2,
		"interests":  []string{"Food & Dining", "Art & Museums"},
	}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration || r.cfg.DSN == "" {
					return Result{Status: statusSkip, Note: "apply-migration=false or no dsn"}
				}
				applied, err := infra.Migrate(ctx, r.cfg.DSN)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("applied=%d", len(applied))}
			},
		},
		{
			Name: "Migration: trip_plans exists",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
					"trip_plans",
				).Scan(&exists)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if !exists {
					return Result{Status: statusFail, Note: "missing table: trip_plans"}
				}
				return Result{Status: statusPass}
			},
		},
		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK),

		{
			Name: "Plan: 3-day trip",
			Run: func(ctx context.Context, r *Runner) Result {
				res, body := do(ctx, r, http.MethodPost, base+"/api/trips/plan", r.tripBody(3))
				if res.Status != statusPass {
					return res
				}
				var p struct {
					ID         string `json:"id"`
					Degraded   bool   `json:"degraded"`
					Itinerary  struct {
						Days []json.RawMessage `json:"days"`
					} `json:"itinerary"`
					Provenance struct {
						Places string `json:"places"`
						Hotels string `json:"hotels"`
					} `json:"provenance"`
				}
				if err := json.Unmarshal(body, &p); err != nil {
					return Result{Status: statusFail, Latency: res.Latency, Note: "decode: " + err.Error()}
				}
				if len(p.Itinerary.Days) != 3 {
					return Result{Status: statusFail, Latency: res.Latency, Note: fmt.Sprintf("days=%d", len(p.Itinerary.Days))}
				}
				r.planID = p.ID
				return Result{Status: statusPass, Latency: res.Latency, Note: fmt.Sprintf("places=%s hotels=%s degraded=%t", p.Provenance.Places, p.Provenance.Hotels, p.Degraded)}
			},
		},
		{
			Name: "Plan: fetch saved plan and calendar",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.planID == "" {
					return Result{Status: statusSkip, Note: "no plan created"}
				}
				if res, _ := do(ctx, r, http.MethodGet, base+"/api/trips/plans/"+r.planID, nil); res.Status != statusPass {
					return res
				}
				res, body := do(ctx, r, http.MethodGet, base+"/api/trips/plans/"+r.planID+"/calendar.ics", nil)
				if res.Status == statusPass && !strings.HasPrefix(string(body), "BEGIN:VCALENDAR") {
					return Result{Status: statusFail, Latency: res.Latency, Note: "not an ics document"}
				}
				return res
			},
		},
		httpCase("Plan: zero budget -> 400", http.MethodPost, base+"/api/trips/plan", withField(r.tripBody(2), "budget", 0), http.StatusBadRequest),
		httpCase("Plan: end before start -> 400", http.MethodPost, base+"/api/trips/plan", withField(r.tripBody(2), "end_date", "2000-01-01"), http.StatusBadRequest),
		httpCase("Plan: unknown interest -> 400", http.MethodPost, base+"/api/trips/plan", withField(r.tripBody(2), "interests", []string{"Skydiving"}), http.StatusBadRequest),
		httpCase("Plan: empty location -> 422", http.MethodPost, base+"/api/trips/plan", withField(r.tripBody(2), "location", ""), http.StatusUnprocessableEntity),
		httpCase("Plan: unknown id -> 404", http.MethodGet, base+"/api/trips/plans/00000000-0000-4000-8000-000000000000", nil, http.StatusNotFound),

		{
			Name: "Concurrency: identical requests get distinct plans",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentPlans(ctx, r, base+"/api/trips/plan")
			},
		},
		{
			Name: "Perf: plan throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/trips/plan", r.tripBody(2))
			},
		},
	}
}

func withField(body map[string]any, key string, v any) map[string]any {
	body[key] = v
	return body
}

func do(ctx context.Context, r *Runner, method, url string, body any) (Result, []byte) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}, nil
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}, nil
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	latency := time.Since(start)
	if resp.StatusCode != http.StatusOK {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}, out
	}
	return Result{Status: statusPass, Latency: latency}, out
}

func httpCase(name, method, url string, body any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if resp.StatusCode == want {
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", resp.StatusCode, want)}
		},
	}
}

func concurrentPlans(ctx context.Context, r *Runner, url string) Result {
	body := r.tripBody(2)
	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	ids := make(map[string]bool)
	var failures int

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, out := do(ctx, r, http.MethodPost, url, body)
			var p struct {
				ID string `json:"id"`
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Status != statusPass || json.Unmarshal(out, &p) != nil {
				failures++
				return
			}
			ids[p.ID] = true
		}()
	}
	wg.Wait()

	if failures > 0 {
		return Result{Status: statusFail, Note: fmt.Sprintf("failures=%d", failures)}
	}
	if len(ids) != r.cfg.Concurrency {
		return Result{Status: statusFail, Note: fmt.Sprintf("distinct ids=%d of %d", len(ids), r.cfg.Concurrency)}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("plans=%d", len(ids))}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var total time.Duration
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				res, _ := do(ctx, r, http.MethodPost, url, payload)
				mu.Lock()
				if res.Status == statusPass {
					count++
					total += res.Latency
				} else {
					errCount++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: fmt.Sprintf("no requests completed, errors=%d", errCount)}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	avg := total / time.Duration(count)
	return Result{Status: statusPass, Latency: avg, Note: fmt.Sprintf("rps=%.2f errors=%d", rps, errCount)}
}
