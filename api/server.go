// Package api serves live run status, area observations and stored runs over HTTP
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/measure"
	"github.com/lixenwraith/pedsim/status"
	"github.com/lixenwraith/pedsim/store"
)

// Server exposes one run's metrics and, with a store, past runs
// Only concurrency-safe state is read: the status registry and area observation copies
type Server struct {
	router *gin.Engine
	http   *http.Server

	reg   *status.Registry
	areas []*measure.Area
	store *store.Store
}

// NewServer builds the router; st may be nil
func NewServer(reg *status.Registry, areas []*measure.Area, st *store.Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		router: gin.New(),
		reg:    reg,
		areas:  areas,
		store:  st,
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/areas", s.handleAreas)
		v1.GET("/areas/:name/observations", s.handleObservations)
		v1.GET("/diagram", s.handleDiagram)

		runs := v1.Group("/runs")
		runs.Use(s.requireStore)
		{
			runs.GET("", s.handleRuns)
			runs.GET("/:id", s.handleRun)
		}
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr in the background and returns the bound address
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			engine.Logf("api: server stopped: %v", err)
		}
	}()
	return ln.Addr().String(), nil
}

// Shutdown stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.Snapshot())
}

type areaView struct {
	Name         string       `json:"name"`
	EntryX       int          `json:"entry_x"`
	ExitX        int          `json:"exit_x"`
	Extent       int          `json:"extent"`
	Observations int          `json:"observations"`
	Fit          *measure.Fit `json:"fit,omitempty"`
}

func (s *Server) handleAreas(c *gin.Context) {
	out := make([]areaView, 0, len(s.areas))
	for _, a := range s.areas {
		obs := a.Observations()
		v := areaView{
			Name:         a.Name,
			EntryX:       a.EntryX,
			ExitX:        a.ExitX,
			Extent:       a.Extent(),
			Observations: len(obs),
		}
		if fit, err := measure.FitDiagram(obs); err == nil {
			v.Fit = fit
		}
		out = append(out, v)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) area(name string) *measure.Area {
	for _, a := range s.areas {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func (s *Server) handleObservations(c *gin.Context) {
	a := s.area(c.Param("name"))
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown area"})
		return
	}
	c.JSON(http.StatusOK, a.Observations())
}

func (s *Server) handleDiagram(c *gin.Context) {
	byArea := make(map[string][]measure.Observation, len(s.areas))
	for _, a := range s.areas {
		byArea[a.Name] = a.Observations()
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := measure.RenderChart(c.Writer, byArea); err != nil {
		engine.Logf("api: chart render failed: %v", err)
	}
}

func (s *Server) requireStore(c *gin.Context) {
	if s.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "no run store configured"})
		return
	}
	c.Next()
}

type runView struct {
	ID         string     `json:"id"`
	Scenario   string     `json:"scenario"`
	Strategy   string     `json:"strategy"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Ticks      uint64     `json:"ticks"`
	SimSeconds float64    `json:"sim_seconds"`
	Arrivals   int        `json:"arrivals"`
}

func toView(r store.Run) runView {
	v := runView{
		ID:         r.ID,
		Scenario:   r.Scenario,
		Strategy:   r.Strategy,
		StartedAt:  r.StartedAt,
		Reason:     r.Reason,
		Ticks:      r.Ticks,
		SimSeconds: r.SimSeconds,
		Arrivals:   r.Arrivals,
	}
	if !r.FinishedAt.IsZero() {
		f := r.FinishedAt
		v.FinishedAt = &f
	}
	return v
}

func (s *Server) handleRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}
	runs, err := s.store.Runs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]runView, 0, len(runs))
	for _, r := range runs {
		out = append(out, toView(r))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleRun(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	r, err := s.store.Run(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	arrivals, err := s.store.Arrivals(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	traversals := make([]time.Duration, len(arrivals))
	for i, a := range arrivals {
		traversals[i] = a.Traversal
	}

	c.JSON(http.StatusOK, gin.H{
		"run":       toView(r),
		"traversal": measure.SummarizeTraversals(traversals),
	})
}
