// Package routes turns an optimization result into one renderable polyline
// per shopper, falling back to straight segments when the solver supplied
// no road geometry.
package routes

import (
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
)

// DefaultMinPoints is the smallest solver geometry treated as a real
// road-following route.
const DefaultMinPoints = 10

// DefaultColors is the route palette used when none is configured.
var DefaultColors = []string{"#00C389", "#3b82f6", "#8b5cf6", "#ec4899", "#f59e0b"}

// Palette maps a route's position in the assignment list to a color.
type Palette func(index int) string

// CyclePalette returns a Palette that cycles through colors. An empty list
// uses DefaultColors.
func CyclePalette(colors ...string) Palette {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	cp := append([]string(nil), colors...)
	return func(index int) string {
		if index < 0 {
			index = -index
		}
		return cp[index%len(cp)]
	}
}

// Source says where a route's points came from.
type Source string

const (
	// SourceSolver routes use the solver supplied geometry.
	SourceSolver Source = "solver"
	// SourceStraight routes join the shopper and order positions directly.
	SourceStraight Source = "straight"
)

// Route is one shopper's polyline.
type Route struct {
	ShopperID string
	Points    []model.Point
	Color     string
	Source    Source

	// Fallback is true when the route is not a road-following path: either
	// synthesized from straight segments or a solver geometry below the
	// minimum point count.
	Fallback bool
}

// Resolution is the result of Resolve.
type Resolution struct {
	Routes []Route

	// Degraded is true when any route is fallback-quality, which usually
	// means real-route data was unavailable.
	Degraded bool
}

// Resolver builds routes for results.
type Resolver struct {
	palette   Palette
	minPoints int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPalette sets the color policy.
func WithPalette(p Palette) Option {
	return func(r *Resolver) {
		if p != nil {
			r.palette = p
		}
	}
}

// WithMinPoints sets the geometry size below which a solver route is
// flagged as fallback-quality. Values below 0 are ignored.
func WithMinPoints(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.minPoints = n
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		palette:   CyclePalette(),
		minPoints: DefaultMinPoints,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MinPoints returns the configured threshold.
func (r *Resolver) MinPoints() int {
	return r.minPoints
}

// Resolve produces one route per assignment, in assignment order.
// Assignments whose shopper is unknown are skipped. Unknown order ids are
// left out of straight-line routes.
func (r *Resolver) Resolve(orders []model.Order, shoppers []model.Shopper, result *model.Result) Resolution {
	var res Resolution
	if result == nil {
		return res
	}

	geometries := make(map[string]model.RouteGeometry)
	for _, g := range result.Geometries() {
		if _, ok := geometries[g.ShopperID]; !ok {
			geometries[g.ShopperID] = g
		}
	}

	shopperByID := make(map[string]model.Shopper, len(shoppers))
	for _, s := range shoppers {
		shopperByID[s.ID] = s
	}
	orderByID := make(map[string]model.Order, len(orders))
	for _, o := range orders {
		orderByID[o.ID] = o
	}

	for idx, a := range result.Optimization.Assignments {
		route := Route{
			ShopperID: a.ShopperID,
			Color:     r.palette(idx),
		}

		if g, ok := geometries[a.ShopperID]; ok && len(g.Points) > 0 {
			route.Points = append([]model.Point(nil), g.Points...)
			route.Source = SourceSolver
			route.Fallback = len(g.Points) < r.minPoints
		} else {
			shopper, ok := shopperByID[a.ShopperID]
			if !ok {
				continue
			}
			route.Points = straightLine(shopper, a.Route, orderByID)
			route.Source = SourceStraight
			route.Fallback = true
		}

		if route.Fallback {
			res.Degraded = true
		}
		res.Routes = append(res.Routes, route)
	}

	return res
}

func straightLine(shopper model.Shopper, route []string, orders map[string]model.Order) []model.Point {
	points := make([]model.Point, 0, len(route)+1)
	points = append(points, shopper.Position())
	for _, id := range route {
		if o, ok := orders[id]; ok {
			points = append(points, o.Position())
		}
	}
	return points
}
