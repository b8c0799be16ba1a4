package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Default(t *testing.T) {
	t.Parallel()

	// Point at a file that does not exist
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), DefaultConfigFile))
	require.NoError(t, err)

	// Should return default values
	assert.Equal(t, DefaultBaseURL, cfg.Server.BaseURL)
	assert.Equal(t, DefaultStreamPath, cfg.Server.StreamPath)
	assert.Equal(t, time.Duration(0), cfg.Server.Timeout)
	assert.Equal(t, DefaultAlgorithm, cfg.Solver.Algorithm)
	assert.Equal(t, DefaultTimelineSize, cfg.Display.TimelineSize)
	assert.Equal(t, DefaultMinRoutePoints, cfg.Display.MinRoutePoints)
	assert.Empty(t, cfg.Display.Palette)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `server:
  base_url: https://solver.example.com/api
  stream_path: /optimize-hybrid
  timeout: 90s
solver:
  algorithm: astar
  use_real_routes: true
  hybrid:
    iterations: 400
    workers: 4
    destroy_rate: 0.3
    random_seed: 7
display:
  timeline_size: 20
  min_route_points: 4
  palette: ["#111111", "#222222"]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://solver.example.com/api", cfg.Server.BaseURL)
	assert.Equal(t, "/optimize-hybrid", cfg.Server.StreamPath)
	assert.Equal(t, 90*time.Second, cfg.Server.Timeout)
	assert.Equal(t, AlgorithmAStar, cfg.Solver.Algorithm)
	assert.True(t, cfg.Solver.UseRealRoutes)
	assert.Equal(t, 400, cfg.Solver.Hybrid.Iterations)
	assert.Equal(t, 4, cfg.Solver.Hybrid.Workers)
	assert.Equal(t, 0.3, cfg.Solver.Hybrid.DestroyRate)
	assert.Equal(t, int64(7), cfg.Solver.Hybrid.RandomSeed)
	assert.Equal(t, 20, cfg.Display.TimelineSize)
	assert.Equal(t, 4, cfg.Display.MinRoutePoints)
	assert.Equal(t, []string{"#111111", "#222222"}, cfg.Display.Palette)
}

func TestLoadConfig_PartialFile(t *testing.T) {
	t.Parallel()

	// Only set the algorithm, rest should keep defaults
	path := writeConfig(t, `solver:
  algorithm: nearest-neighbor
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, AlgorithmNearestNeighbor, cfg.Solver.Algorithm)
	assert.Equal(t, DefaultBaseURL, cfg.Server.BaseURL)
	assert.Equal(t, DefaultTimelineSize, cfg.Display.TimelineSize)
	assert.Equal(t, DefaultMinRoutePoints, cfg.Display.MinRoutePoints)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `server: [`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "empty base_url",
			content: "server:\n  base_url: \"\"\n",
			field:   "server.base_url",
		},
		{
			name:    "base_url without scheme",
			content: "server:\n  base_url: localhost:8080/api\n",
			field:   "server.base_url",
		},
		{
			name:    "negative timeout",
			content: "server:\n  timeout: -5s\n",
			field:   "server.timeout",
		},
		{
			name:    "negative iterations",
			content: "solver:\n  hybrid:\n    iterations: -1\n",
			field:   "solver.hybrid.iterations",
		},
		{
			name:    "destroy_rate above one",
			content: "solver:\n  hybrid:\n    destroy_rate: 1.5\n",
			field:   "solver.hybrid.destroy_rate",
		},
		{
			name:    "zero timeline_size",
			content: "display:\n  timeline_size: 0\n",
			field:   "display.timeline_size",
		},
		{
			name:    "negative min_route_points",
			content: "display:\n  min_route_points: -2\n",
			field:   "display.min_route_points",
		},
		{
			name:    "empty palette entry",
			content: "display:\n  palette: [\"#00C389\", \"\"]\n",
			field:   "display.palette[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoadEnvFile_Valid(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	envContent := `# API Keys
OPENROUTE_API_KEY=ors-test123

# Empty line above is ok

ROUTEOPT_BASE_URL="http://solver:8080/api"
export SOME_VAR=value
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, DefaultEnvFile), []byte(envContent), 0o644))

	env, err := LoadEnvFile(filepath.Join(tmpDir, DefaultEnvFile))
	require.NoError(t, err)

	assert.Equal(t, "ors-test123", env["OPENROUTE_API_KEY"])
	assert.Equal(t, "http://solver:8080/api", env["ROUTEOPT_BASE_URL"])
	assert.Equal(t, "value", env["SOME_VAR"])
	assert.Len(t, env, 3)
}

func TestLoadEnvFile_NotFound(t *testing.T) {
	t.Parallel()

	env, err := LoadEnvFile(filepath.Join(t.TempDir(), DefaultEnvFile))
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestLoadEnvFile_EmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultEnvFile)
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	env, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestLoadEnvFile_ValueWithEquals(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultEnvFile)
	require.NoError(t, os.WriteFile(path, []byte(`KEY=value=with=equals`), 0o644))

	env, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "value=with=equals", env["KEY"])
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	lookupFrom := func(m map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			v, ok := m[key]
			return v, ok
		}
	}

	tests := []struct {
		name        string
		process     map[string]string
		file        map[string]string
		wantBaseURL string
		wantKey     string
	}{
		{
			name:        "nothing set",
			wantBaseURL: DefaultBaseURL,
		},
		{
			name:        "file only",
			file:        map[string]string{EnvBaseURL: "http://file:1/api", EnvAPIKey: "file-key"},
			wantBaseURL: "http://file:1/api",
			wantKey:     "file-key",
		},
		{
			name:        "process wins over file",
			process:     map[string]string{EnvAPIKey: "proc-key"},
			file:        map[string]string{EnvAPIKey: "file-key"},
			wantBaseURL: DefaultBaseURL,
			wantKey:     "proc-key",
		},
		{
			name:        "empty process value falls back to file",
			process:     map[string]string{EnvAPIKey: ""},
			file:        map[string]string{EnvAPIKey: "file-key"},
			wantBaseURL: DefaultBaseURL,
			wantKey:     "file-key",
		},
		{
			name:        "short key name",
			process:     map[string]string{EnvAPIKeyShort: "short-key"},
			wantBaseURL: DefaultBaseURL,
			wantKey:     "short-key",
		},
		{
			name:        "long key name preferred",
			process:     map[string]string{EnvAPIKeyShort: "short-key", EnvAPIKey: "long-key"},
			wantBaseURL: DefaultBaseURL,
			wantKey:     "long-key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			ApplyEnv(&cfg, lookupFrom(tt.process), tt.file)
			assert.Equal(t, tt.wantBaseURL, cfg.Server.BaseURL)
			assert.Equal(t, tt.wantKey, cfg.APIKey)
		})
	}
}

func TestApplyEnv_NilSources(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.NotPanics(t, func() { ApplyEnv(&cfg, nil, nil) })
	assert.Equal(t, DefaultBaseURL, cfg.Server.BaseURL)
}

func TestLoad(t *testing.T) {
	// Not parallel: sets process environment
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIKeyShort, "")

	dir := t.TempDir()
	configPath := filepath.Join(dir, DefaultConfigFile)
	envPath := filepath.Join(dir, DefaultEnvFile)
	require.NoError(t, os.WriteFile(configPath, []byte("solver:\n  use_real_routes: true\n"), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("ORS_API_KEY=dotenv-key\nROUTEOPT_BASE_URL=http://127.0.0.1:9000/api\n"), 0o644))

	cfg, err := Load(configPath, envPath)
	require.NoError(t, err)
	assert.True(t, cfg.Solver.UseRealRoutes)
	assert.Equal(t, "dotenv-key", cfg.APIKey)
	assert.Equal(t, "http://127.0.0.1:9000/api", cfg.Server.BaseURL)

	opts := cfg.Options()
	assert.Equal(t, "dotenv-key", opts.APIKey)
	assert.True(t, opts.UseRealRoutes)
	assert.Equal(t, DefaultAlgorithm, opts.Algorithm)
}

func TestLoad_InvalidEnvURL(t *testing.T) {
	t.Setenv(EnvBaseURL, "not a url")

	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, DefaultConfigFile), filepath.Join(dir, DefaultEnvFile))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	ve := ValidationError{Field: "test.field", Message: "must be valid"}
	assert.Equal(t, "validation error: test.field: must be valid", ve.Error())
}

func TestIsValidationError(t *testing.T) {
	t.Parallel()

	ve := ValidationError{Field: "test", Message: "test"}
	assert.True(t, IsValidationError(ve))
	assert.False(t, IsValidationError(os.ErrNotExist))
}
