// Package server exposes backtests and the run journal over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/rustyeddy/synthbt/backtest"
	"github.com/rustyeddy/synthbt/chart"
	"github.com/rustyeddy/synthbt/journal"
	"github.com/rustyeddy/synthbt/strategies"
	"github.com/rustyeddy/synthbt/synth"
)

const DefaultAddr = ":8080"

// MaxSweepRuns bounds the size of a sweep requested over HTTP.
const MaxSweepRuns = 10000

// Config describes the dependencies of a Server.
type Config struct {
	Addr string
	// Defaults fills fields a run request leaves out.
	Defaults backtest.Config
	Runner   *backtest.Runner
	// Journal records runs when set. Listing and charting need a
	// journal.Store.
	Journal journal.Journal
}

type Server struct {
	addr     string
	defaults backtest.Config
	runner   *backtest.Runner
	journal  journal.Journal
	router   *gin.Engine
	log      *log.Entry
}

func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Runner == nil {
		cfg.Runner = &backtest.Runner{}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	s := &Server{
		addr:     cfg.Addr,
		defaults: cfg.Defaults,
		runner:   cfg.Runner,
		journal:  cfg.Journal,
		router:   router,
		log:      log.WithField("component", "server"),
	}
	router.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/strategies", s.handleStrategies)
	api.POST("/runs", s.handleRunStart)
	api.GET("/runs", s.handleRunList)
	api.GET("/runs/:id", s.handleRunDetail)
	api.GET("/runs/:id/chart", s.handleRunChart)
	api.POST("/sweeps", s.handleSweep)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": strategies.Names(), "modes": synth.Modes})
}

func (s *Server) handleRunStart(c *gin.Context) {
	cfg := s.defaults
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.runner.Run(c.Request.Context(), cfg)
	if err != nil {
		s.fail(c, err)
		return
	}
	if s.journal != nil {
		if err := journal.Record(c.Request.Context(), s.journal, res); err != nil {
			s.fail(c, fmt.Errorf("record run: %w", err))
			return
		}
	}
	if !queryBool(c, "candles") {
		res.Candles = nil
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleRunList(c *gin.Context) {
	store, ok := s.store(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	runs, err := store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleRunDetail(c *gin.Context) {
	store, ok := s.store(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	run, err := store.GetRun(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	trades, err := store.ListTradesByRunID(ctx, run.RunID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "trades": trades})
}

// handleRunChart regenerates the candles of a stored run from its seed
// and draws its recorded trades over them.
func (s *Server) handleRunChart(c *gin.Context) {
	store, ok := s.store(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	run, err := store.GetRun(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !run.Synthetic() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "run was evaluated on imported candles and cannot be regenerated"})
		return
	}
	recs, err := store.ListTradesByRunID(ctx, run.RunID)
	if err != nil {
		s.fail(c, err)
		return
	}

	cfg := run.Config()
	candles, err := synth.Generate(cfg.Market, synth.NewRand(cfg.Seed))
	if err != nil {
		s.fail(c, err)
		return
	}
	trades := make([]strategies.Trade, 0, len(recs))
	for _, rec := range recs {
		t, err := rec.Trade()
		if err != nil {
			s.fail(c, err)
			return
		}
		trades = append(trades, t)
	}

	var buf bytes.Buffer
	title := fmt.Sprintf("%s %s seed %d", run.Strategy, run.Mode, run.Seed)
	if err := chart.RenderHTML(&buf, title, candles, backtest.Markers(trades), chart.WithChannel(cfg.Params.Lookback)); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleSweep(c *gin.Context) {
	req := struct {
		Config  backtest.Config `json:"config"`
		Runs    int             `json:"runs"`
		Workers int             `json:"workers"`
	}{Config: s.defaults}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Runs > MaxSweepRuns {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("runs must not exceed %d", MaxSweepRuns)})
		return
	}

	res, err := s.runner.Sweep(c.Request.Context(), req.Config, req.Runs, req.Workers)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) store(c *gin.Context) (journal.Store, bool) {
	store, ok := s.journal.(journal.Store)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "journal does not support queries"})
		return nil, false
	}
	return store, true
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, backtest.ErrInvalidConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, journal.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.WithField("addr", s.addr).Info("listening")

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
