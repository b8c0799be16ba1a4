package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/ndjson"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/testutil"
)

func createTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()

	srv, err := NewServer(&cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(testutil.MustMarshalJSON(t, v)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNewServer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "nil config", cfg: nil, wantErr: "config is required"},
		{name: "negative chunk", cfg: &Config{ChunkSize: -1}, wantErr: "chunk size must not be negative"},
		{name: "bad port", cfg: &Config{Port: 70000}, wantErr: "invalid port"},
		{name: "defaults", cfg: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := NewServer(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultPrefix, srv.Prefix())
		})
	}
}

func TestNewServerPrefix(t *testing.T) {
	srv, err := NewServer(&Config{Prefix: "/"})
	require.NoError(t, err)
	assert.Equal(t, "", srv.Prefix())

	srv, err = NewServer(&Config{Prefix: "v2/"})
	require.NoError(t, err)
	assert.Equal(t, "/v2", srv.Prefix())
}

func TestHealthAndSample(t *testing.T) {
	ts := createTestServer(t, Config{APIKeySet: true})

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var h model.Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.True(t, h.APIKeySet)

	resp2, err := http.Get(ts.URL + "/api/sample-data")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var data model.SampleData
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&data))
	assert.Len(t, data.Orders, 20)
	assert.Len(t, data.Shoppers, 5)
}

func TestStreamReplaysScript(t *testing.T) {
	script := testutil.DescentStream(5, testutil.SampleResult())
	ts := createTestServer(t, Config{Script: []byte(script), ChunkSize: 7, Delay: time.Millisecond})

	resp := postJSON(t, ts.URL+"/api/optimize-stream", testutil.SampleRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, script, string(body))
}

func TestStreamSynthesized(t *testing.T) {
	ts := createTestServer(t, Config{Steps: 6})

	req := testutil.SampleRequest()
	req.Options.UseRealRoutes = true
	resp := postJSON(t, ts.URL+"/api/optimize-stream", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []string
	var lastBest float64
	for line, err := range ndjson.Lines(resp.Body, 0) {
		require.NoError(t, err)
		var ev struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		types = append(types, ev.Type)

		if ev.Type == "progress" {
			var p progressData
			require.NoError(t, json.Unmarshal(ev.Data, &p))
			if lastBest != 0 {
				assert.LessOrEqual(t, p.BestDistance, lastBest)
			}
			lastBest = p.BestDistance
		}
		if ev.Type == "completed" {
			var r model.Result
			require.NoError(t, json.Unmarshal(ev.Data, &r))
			require.NoError(t, model.CheckAssignments(req.Orders, &r.Optimization))
			require.NotNil(t, r.Analytics)
			assert.Len(t, r.Analytics.RouteGeometries, len(r.Optimization.Assignments))
		}
	}

	require.Len(t, types, 7)
	assert.Equal(t, "completed", types[6])
}

func TestStreamRejectsBadRequest(t *testing.T) {
	ts := createTestServer(t, Config{})

	resp, err := http.Post(ts.URL+"/api/optimize-stream", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	empty := postJSON(t, ts.URL+"/api/optimize-stream", model.Request{})
	assert.Equal(t, http.StatusBadRequest, empty.StatusCode)
}

func TestOptimizeUsesScriptResult(t *testing.T) {
	want := testutil.SampleResult()
	ts := createTestServer(t, Config{Script: []byte(testutil.DescentStream(3, want))})

	resp := postJSON(t, ts.URL+"/api/optimize-analytics", testutil.SampleRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, want.Optimization, got.Optimization)
}

func TestOptimizeScriptWithError(t *testing.T) {
	script := testutil.NDJSON(testutil.ProgressLine(1, 5, true), testutil.ErrorLine("invalid api key"))
	ts := createTestServer(t, Config{Script: []byte(script)})

	resp := postJSON(t, ts.URL+"/api/optimize-analytics", testutil.SampleRequest())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAssignRespectsCapacity(t *testing.T) {
	req := &model.Request{
		Orders:   testutil.SampleOrders(),
		Shoppers: []model.Shopper{{ID: "S1", Lat: 33.51, Lng: -86.80, Capacity: 1}, {ID: "S2", Lat: 33.6, Lng: -86.9, Capacity: 5}},
	}
	result := Assign(req)

	require.NoError(t, model.CheckAssignments(req.Orders, &result.Optimization))
	for _, a := range result.Optimization.Assignments {
		if a.ShopperID == "S1" {
			assert.Len(t, a.Route, 1)
		}
	}
	assert.Equal(t, 0, result.Analytics.Orders.UnassignedOrders)
}

func TestGenerateSampleDataDeterministic(t *testing.T) {
	a := GenerateSampleData(42)
	b := GenerateSampleData(42)
	assert.Equal(t, a, b)
	for _, s := range a.Shoppers {
		assert.GreaterOrEqual(t, s.Capacity, 3)
		assert.LessOrEqual(t, s.Capacity, 5)
	}
}

func TestStartStop(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0})
	require.NoError(t, err)

	ctx, cancel := testutil.ShortOperationContext(t)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool { return srv.ListenAddr() != "" }, 2*time.Second, 10*time.Millisecond)

	_, port, err := net.SplitHostPort(srv.ListenAddr())
	require.NoError(t, err)
	resp, err := http.Get("http://127.0.0.1:" + port + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestCORS(t *testing.T) {
	t.Run("any origin by default", func(t *testing.T) {
		ts := createTestServer(t, Config{})

		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("rejects unlisted origin", func(t *testing.T) {
		ts := createTestServer(t, Config{AllowOrigins: []string{"http://localhost:3000"}})

		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://evil.example")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
