package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/synthbt/backtest"
	"github.com/rustyeddy/synthbt/journal"
	"github.com/rustyeddy/synthbt/strategies"
	"github.com/rustyeddy/synthbt/synth"
)

func defaults() backtest.Config {
	return backtest.Config{
		Market: synth.Config{
			PriceMin:   90,
			PriceMax:   110,
			Volatility: 3,
			NumCandles: 200,
			Mode:       synth.Wild,
		},
		Params: strategies.DefaultParams(),
		Seed:   3,
	}
}

func newTestServer(t *testing.T, j journal.Journal) *Server {
	t.Helper()
	var n atomic.Int64
	return New(Config{
		Defaults: defaults(),
		Runner: &backtest.Runner{
			NewID: func() string { return fmt.Sprintf("run-%d", n.Add(1)) },
			Now:   func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n.Load()) * time.Minute) },
		},
		Journal: j,
	})
}

func newTestStore(t *testing.T) *journal.SQLite {
	t.Helper()
	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStrategies(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/strategies", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "breakout-retest")
	assert.Contains(t, w.Body.String(), "ranging")
}

func TestRunStartMatchesLibrary(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/api/runs", `{"seed": 11, "market": {"price_min": 90, "price_max": 110, "volatility": 4, "num_candles": 300, "mode": "trending"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got backtest.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Empty(t, got.Candles)

	cfg := defaults()
	cfg.Seed = 11
	cfg.Market.Volatility = 4
	cfg.Market.NumCandles = 300
	cfg.Market.Mode = synth.Trending
	want, err := backtest.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.Trades, got.Trades)
}

func TestRunStartWithCandles(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/api/runs?candles=1", `{}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got backtest.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Candles, 200)
}

func TestRunStartInvalid(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/api/runs", `{"market": {"price_min": 120, "price_max": 110}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid configuration")

	w = do(t, s, http.MethodPost, "/api/runs", `{"params": {"risk_reward": 0}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/runs", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunsWithoutStore(t *testing.T) {
	s := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/api/runs", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRecordedRuns(t *testing.T) {
	store := newTestStore(t)
	s := newTestServer(t, store)

	for _, seed := range []int{1, 2} {
		w := do(t, s, http.MethodPost, "/api/runs", fmt.Sprintf(`{"seed": %d}`, seed))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := do(t, s, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Runs []journal.RunRecord `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Runs, 2)
	assert.Equal(t, "run-2", list.Runs[0].RunID)

	w = do(t, s, http.MethodGet, "/api/runs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/runs/run-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Run    journal.RunRecord     `json:"run"`
		Trades []journal.TradeRecord `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, int64(1), detail.Run.Seed)
	assert.Len(t, detail.Trades, detail.Run.Trades)

	w = do(t, s, http.MethodGet, "/api/runs/run-1/chart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "breakout-retest wild seed 1")

	w = do(t, s, http.MethodGet, "/api/runs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, s, http.MethodGet, "/api/runs/nope/chart", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChartRejectsImportedRuns(t *testing.T) {
	store := newTestStore(t)
	run := journal.RunRecord{RunID: "imported", Created: time.Now(), Strategy: "breakout-retest", NumCandles: 10}
	require.NoError(t, store.RecordRun(context.Background(), run, nil))

	s := newTestServer(t, store)
	w := do(t, s, http.MethodGet, "/api/runs/imported/chart", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSweep(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/api/sweeps", `{"runs": 4, "workers": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res backtest.SweepResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Runs, 4)
	assert.Equal(t, int64(3), res.Runs[0].Seed)
	assert.Equal(t, int64(6), res.Runs[3].Seed)

	w = do(t, s, http.MethodPost, "/api/sweeps", `{"runs": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/sweeps", fmt.Sprintf(`{"runs": %d}`, MaxSweepRuns+1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartStops(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
