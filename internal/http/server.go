// README: API gateway; registers HTTP routes and delegates to the trip planner.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wayfarer/internal/http/handlers"
	"wayfarer/internal/http/middleware"
)

type ServerDeps struct {
	Planner handlers.Planner
	// RequestTimeout bounds a single planning request; zero means no bound.
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

type Server struct {
	planner handlers.Planner
	timeout time.Duration
	log     zerolog.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		planner: deps.Planner,
		timeout: deps.RequestTimeout,
		log:     deps.Log,
	}
}

func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log))

	plans := handlers.NewPlanHandler(s.planner, s.timeout)
	r.POST("/api/trips/plan", plans.Create)
	r.GET("/api/trips/plans/:id", plans.Get)
	r.GET("/api/trips/plans/:id/calendar.ics", plans.Calendar)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}
