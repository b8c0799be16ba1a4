package config

import (
	"time"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
)

// ServerConfig locates the solver API.
type ServerConfig struct {
	// BaseURL is the API root, e.g. "http://localhost:8080/api".
	BaseURL    string `yaml:"base_url"`
	StreamPath string `yaml:"stream_path"`

	// Timeout bounds a whole optimization. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

// SolverConfig holds the options sent with every optimization.
type SolverConfig struct {
	Algorithm     string              `yaml:"algorithm"`
	UseRealRoutes bool                `yaml:"use_real_routes"`
	Hybrid        model.HybridOptions `yaml:"hybrid"`
}

// DisplayConfig controls how progress and routes are rendered.
type DisplayConfig struct {
	TimelineSize   int      `yaml:"timeline_size"`
	MinRoutePoints int      `yaml:"min_route_points"`
	Palette        []string `yaml:"palette,omitempty"`
}

// Config represents the routeopt.yaml file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Solver  SolverConfig  `yaml:"solver"`
	Display DisplayConfig `yaml:"display"`

	// APIKey is the routing service credential. It is read from the
	// environment only, never from the file.
	APIKey string `yaml:"-"`
}

// Options returns the solver options for a request.
func (c *Config) Options() model.Options {
	return model.Options{
		Algorithm:     c.Solver.Algorithm,
		UseRealRoutes: c.Solver.UseRealRoutes,
		APIKey:        c.APIKey,
		HybridOptions: c.Solver.Hybrid,
	}
}

// Solver algorithms known to the reference backend. Other names are passed
// through unchanged.
const (
	AlgorithmNearestNeighbor = "nearest-neighbor"
	AlgorithmAStar           = "astar"
	AlgorithmHybrid          = "hybrid"
)
