// README: Trip plan handlers for planning, retrieval and calendar export.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wayfarer/internal/modules/plan"
	"wayfarer/internal/types"
)

type Planner interface {
	PlanTrip(ctx context.Context, req types.TripRequest) (*plan.Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*plan.Plan, error)
}

type PlanHandler struct {
	planner Planner
	timeout time.Duration
}

func NewPlanHandler(planner Planner, timeout time.Duration) *PlanHandler {
	return &PlanHandler{planner: planner, timeout: timeout}
}

type planTripReq struct {
	Location  string   `json:"location"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Budget    float64  `json:"budget"`
	Travelers int      `json:"travelers"`
	Interests []string `json:"interests"`
}

// Create handles POST /api/trips/plan.
func (h *PlanHandler) Create(c *gin.Context) {
	var body planTripReq
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, kindInvalidRequest, "invalid json")
		return
	}
	if body.Travelers == 0 {
		body.Travelers = 1
	}
	req, err := types.NewTripRequest(body.Location, body.StartDate, body.EndDate, body.Budget, body.Travelers, body.Interests)
	if err != nil {
		writePlanError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	p, err := h.planner.PlanTrip(ctx, req)
	if err != nil {
		writePlanError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// Get handles GET /api/trips/plans/:id.
func (h *PlanHandler) Get(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// Calendar handles GET /api/trips/plans/:id/calendar.ics.
func (h *PlanHandler) Calendar(c *gin.Context) {
	p, ok := h.load(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="trip-%s.ics"`, p.ID))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", plan.Calendar(p))
}

func (h *PlanHandler) load(c *gin.Context) (*plan.Plan, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, kindInvalidRequest, "invalid plan id")
		return nil, false
	}
	p, err := h.planner.GetPlan(c.Request.Context(), id)
	if err != nil {
		writePlanError(c, err)
		return nil, false
	}
	return p, true
}
