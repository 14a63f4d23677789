package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/pedsim/api"
	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/measure"
	"github.com/lixenwraith/pedsim/status"
	"github.com/lixenwraith/pedsim/store"
)

var t0 = time.Date(2025, 4, 5, 6, 0, 0, 0, time.UTC)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func lane(t *testing.T) *measure.Area {
	t.Helper()
	a := measure.NewArea("lane", 2, 1, 5, 3)
	// Two agents crossing at different speeds and densities
	a.Observe(1, 2, 1, t0)
	a.Observe(2, 2, 2, t0)
	a.Observe(1, 5, 1, t0.Add(2*time.Second))
	a.Observe(2, 5, 2, t0.Add(4*time.Second))
	require.Len(t, a.Observations(), 2)
	return a
}

func TestHealthAndStatus(t *testing.T) {
	reg := status.NewRegistry()
	reg.Ints.Get(status.KeyTicks).Store(33)
	reg.Strings.Get(status.KeyRunID).Store("abc")
	srv := api.NewServer(reg, nil, nil)

	rec := get(t, srv.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(t, srv.Handler(), "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap status.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.EqualValues(t, 33, snap.Ints[status.KeyTicks])
	assert.Equal(t, "abc", snap.Strings[status.KeyRunID])
}

func TestAreas(t *testing.T) {
	srv := api.NewServer(status.NewRegistry(), []*measure.Area{lane(t)}, nil)

	rec := get(t, srv.Handler(), "/api/v1/areas")
	require.Equal(t, http.StatusOK, rec.Code)
	var areas []struct {
		Name         string       `json:"name"`
		Observations int          `json:"observations"`
		Extent       int          `json:"extent"`
		Fit          *measure.Fit `json:"fit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &areas))
	require.Len(t, areas, 1)
	assert.Equal(t, "lane", areas[0].Name)
	assert.Equal(t, 2, areas[0].Observations)
	assert.Equal(t, 12, areas[0].Extent)
	assert.NotNil(t, areas[0].Fit)

	rec = get(t, srv.Handler(), "/api/v1/areas/lane/observations")
	require.Equal(t, http.StatusOK, rec.Code)
	var obs []measure.Observation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &obs))
	assert.Len(t, obs, 2)

	rec = get(t, srv.Handler(), "/api/v1/areas/nowhere/observations")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiagram(t *testing.T) {
	srv := api.NewServer(status.NewRegistry(), []*measure.Area{lane(t)}, nil)
	rec := get(t, srv.Handler(), "/api/v1/diagram")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "lane")
}

func TestRunsWithoutStore(t *testing.T) {
	srv := api.NewServer(status.NewRegistry(), nil, nil)
	rec := get(t, srv.Handler(), "/api/v1/runs")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRunsWithStore(t *testing.T) {
	engine.SetLogger(t.Logf)
	t.Cleanup(func() { engine.SetLogger(nil) })

	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.CreateRun(ctx, store.Run{ID: "r1", Scenario: "hall", Strategy: "wavefront", StartedAt: t0}))
	require.NoError(t, st.AddArrival(ctx, "r1", engine.Arrival{PedestrianID: 1, Traversal: 2 * time.Second, At: t0}))
	require.NoError(t, st.AddArrival(ctx, "r1", engine.Arrival{PedestrianID: 2, Traversal: 4 * time.Second, At: t0}))
	require.NoError(t, st.FinishRun(ctx, "r1", t0.Add(time.Minute), "population empty", 40, 4, 2))

	srv := api.NewServer(status.NewRegistry(), nil, st)

	rec := get(t, srv.Handler(), "/api/v1/runs?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0]["id"])
	assert.Contains(t, runs[0], "finished_at")

	rec = get(t, srv.Handler(), "/api/v1/runs/r1")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Traversal measure.TraversalSummary `json:"traversal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, 2, detail.Traversal.Count)
	assert.Equal(t, 3*time.Second, detail.Traversal.Mean)

	assert.Equal(t, http.StatusNotFound, get(t, srv.Handler(), "/api/v1/runs/missing").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv.Handler(), "/api/v1/runs?limit=x").Code)
}

func TestStartShutdown(t *testing.T) {
	srv := api.NewServer(status.NewRegistry(), nil, nil)
	addr, err := srv.Start("127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
