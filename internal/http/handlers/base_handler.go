// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/plan"
	"wayfarer/internal/types"
)

const (
	kindInvalidRequest = "invalid_request"
	kindNotFound       = "not_found"
	kindTimeout        = "timeout"
	kindInternal       = "internal"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, kind, msg string) {
	writeJSON(c, status, errorResponse{Error: errorBody{Kind: kind, Message: msg}})
}

// writePlanError maps pipeline failures to statuses. Only classified messages
// are echoed; anything else is reported as an internal error.
func writePlanError(c *gin.Context, err error) {
	var perr *types.Error
	switch {
	case errors.Is(err, types.ErrInvalidBudgetInput):
		errors.As(err, &perr)
		writeError(c, http.StatusBadRequest, string(perr.Kind), perr.Message)
	case errors.Is(err, types.ErrGeocodeUnresolved):
		errors.As(err, &perr)
		writeError(c, http.StatusUnprocessableEntity, string(perr.Kind), "could not resolve the destination")
	case errors.Is(err, types.ErrSynthesisUnavailable):
		writeError(c, http.StatusServiceUnavailable, string(types.KindSynthesisUnavailable), "itinerary engine is unavailable, try again later")
	case errors.Is(err, plan.ErrNotFound):
		writeError(c, http.StatusNotFound, kindNotFound, "plan not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(c, http.StatusGatewayTimeout, kindTimeout, "request timed out")
	default:
		writeError(c, http.StatusInternalServerError, kindInternal, "internal error")
	}
}
