package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/ai"
	"wayfarer/internal/http/handlers"
	"wayfarer/internal/modules/plan"
	"wayfarer/internal/types"
)

// stubPlanner is a test double for handlers.Planner.
type stubPlanner struct {
	mu       sync.Mutex
	requests []types.TripRequest
	plan     *plan.Plan
	err      error
}

func (s *stubPlanner) PlanTrip(_ context.Context, req types.TripRequest) (*plan.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

func (s *stubPlanner) GetPlan(_ context.Context, id uuid.UUID) (*plan.Plan, error) {
	if s.plan == nil || s.plan.ID != id {
		return nil, plan.ErrNotFound
	}
	return s.plan, nil
}

func buildTestRouter(p handlers.Planner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewPlanHandler(p, time.Second)
	r.POST("/api/trips/plan", h.Create)
	r.GET("/api/trips/plans/:id", h.Get)
	r.GET("/api/trips/plans/:id/calendar.ics", h.Calendar)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func samplePlan() *plan.Plan {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &plan.Plan{
		ID:      uuid.New(),
		Request: types.TripRequest{Location: "Paris", StartDate: start, EndDate: start, Budget: 500, Travelers: 1},
		Itinerary: types.Itinerary{Days: []types.DayPlan{{Date: start, Activities: []types.Activity{
			{Time: "10:00", Title: "Louvre", EstimatedCost: 22},
		}}}},
		Summary: "One day in Paris.",
	}
}

var validBody = map[string]any{
	"location":   "Paris",
	"start_date": "2024-06-01",
	"end_date":   "2024-06-03",
	"budget":     2000,
	"travelers":  2,
	"interests":  []string{"food & dining"},
}

type errorEnvelope struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCreate_OK(t *testing.T) {
	stub := &stubPlanner{plan: samplePlan()}
	w := doRequest(buildTestRouter(stub), http.MethodPost, "/api/trips/plan", validBody)

	require.Equal(t, http.StatusOK, w.Code)
	var got plan.Plan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, stub.plan.ID, got.ID)
	assert.Equal(t, "One day in Paris.", got.Summary)

	require.Len(t, stub.requests, 1)
	req := stub.requests[0]
	assert.Equal(t, 3, req.Days())
	assert.Equal(t, []types.Interest{types.InterestFood}, req.Interests)
	assert.Equal(t, 2, req.Travelers)
}

func TestCreate_BadRequests(t *testing.T) {
	r := buildTestRouter(&stubPlanner{plan: samplePlan()})

	w := doRequest(r, http.MethodPost, "/api/trips/plan", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeError(t, w).Error.Kind)

	body := map[string]any{"location": "Paris", "start_date": "June 1st", "end_date": "2024-06-03", "budget": 100}
	w = doRequest(r, http.MethodPost, "/api/trips/plan", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.KindInvalidBudgetInput), decodeError(t, w).Error.Kind)

	body = map[string]any{"location": "Paris", "start_date": "2024-06-01", "end_date": "2024-06-03", "budget": 100, "interests": []string{"Skydiving"}}
	w = doRequest(r, http.MethodPost, "/api/trips/plan", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"invalid budget", types.Errorf(types.KindInvalidBudgetInput, "budget must be positive, got 0"), http.StatusBadRequest, "invalid_budget_input"},
		{"geocode", fmt.Errorf("aggregate: %w", types.Errorf(types.KindGeocodeUnresolved, "REQUEST_DENIED from provider")), http.StatusUnprocessableEntity, "geocode_unresolved"},
		{"synthesis", types.Errorf(types.KindSynthesisUnavailable, "engine: %w", ai.ErrUnreachable), http.StatusServiceUnavailable, "synthesis_unavailable"},
		{"deadline", fmt.Errorf("synthesize: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"unexpected", fmt.Errorf("pq: relation does not exist"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(buildTestRouter(&stubPlanner{err: tt.err}), http.MethodPost, "/api/trips/plan", validBody)
			assert.Equal(t, tt.wantCode, w.Code)
			env := decodeError(t, w)
			assert.Equal(t, tt.wantKind, env.Error.Kind)
			assert.NotContains(t, env.Error.Message, "REQUEST_DENIED", "provider text is not echoed")
			assert.NotContains(t, env.Error.Message, "pq:")
		})
	}
}

func TestGetAndCalendar(t *testing.T) {
	stub := &stubPlanner{plan: samplePlan()}
	r := buildTestRouter(stub)

	w := doRequest(r, http.MethodGet, "/api/trips/plans/"+stub.plan.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), stub.plan.ID.String())

	w = doRequest(r, http.MethodGet, "/api/trips/plans/"+stub.plan.ID.String()+"/calendar.ics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".ics")
	assert.Contains(t, w.Body.String(), "SUMMARY:Louvre\r\n")

	w = doRequest(r, http.MethodGet, "/api/trips/plans/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Error.Kind)

	w = doRequest(r, http.MethodGet, "/api/trips/plans/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
