package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
)

func TestConfig_YAMLMarshal(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server: ServerConfig{BaseURL: "http://localhost:8080/api", StreamPath: "/optimize-stream", Timeout: 2 * time.Minute},
		Solver: SolverConfig{Algorithm: "hybrid", Hybrid: model.HybridOptions{Iterations: 100}},
		Display: DisplayConfig{
			TimelineSize:   12,
			MinRoutePoints: 10,
		},
		APIKey: "secret",
	}

	got, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	want := `server:
    base_url: http://localhost:8080/api
    stream_path: /optimize-stream
    timeout: 2m0s
solver:
    algorithm: hybrid
    use_real_routes: false
    hybrid:
        iterations: 100
        workers: 0
        candidate_pool: 0
        randomized_list_size: 0
        destroy_rate: 0
        local_search_iterations: 0
        emit_interval_millis: 0
        random_seed: 0
display:
    timeline_size: 12
    min_route_points: 10
`
	assert.Equal(t, want, string(got))
	assert.NotContains(t, string(got), "secret")
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	original := DefaultConfig()
	original.Solver.UseRealRoutes = true
	original.Display.Palette = []string{"#00C389"}

	data, err := yaml.Marshal(original)
	require.NoError(t, err)

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.APIKey = "k"
	cfg.Solver.Hybrid.Workers = 3

	data, err := json.Marshal(cfg.Options())
	require.NoError(t, err)
	assert.JSONEq(t, `{"algorithm":"hybrid","useRealRoutes":false,"apiKey":"k","workers":3}`, string(data))
}
