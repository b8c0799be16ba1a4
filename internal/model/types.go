// Package model defines the order, shopper and optimization result types
// exchanged with the route-optimization solver.
package model

import "time"

// Order is a delivery order waiting to be assigned to a shopper.
type Order struct {
	ID             string  `json:"id"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	ItemCount      int     `json:"itemCount"`
	DeliveryWindow string  `json:"deliveryWindow"`
}

// Position returns the order location as a [lat, lng] pair.
func (o Order) Position() Point {
	return Point{o.Lat, o.Lng}
}

// Shopper is an available shopper with a maximum number of orders.
type Shopper struct {
	ID       string  `json:"id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Capacity int     `json:"capacity"`
}

// Position returns the shopper location as a [lat, lng] pair.
func (s Shopper) Position() Point {
	return Point{s.Lat, s.Lng}
}

// Point is a [lat, lng] coordinate pair, encoded as a two element JSON array.
type Point [2]float64

// Lat returns the latitude.
func (p Point) Lat() float64 { return p[0] }

// Lng returns the longitude.
func (p Point) Lng() float64 { return p[1] }

// Assignment is one shopper's visiting order.
type Assignment struct {
	ShopperID     string   `json:"shopperId"`
	Route         []string `json:"route"`
	TotalDistance float64  `json:"totalDistance,omitempty"`
}

// OptimizeResponse is the assignment part of a finished optimization.
type OptimizeResponse struct {
	Assignments         []Assignment `json:"assignments"`
	TotalDistanceBefore float64      `json:"totalDistanceBefore"`
	TotalDistanceAfter  float64      `json:"totalDistanceAfter"`
}

// ShopperAnalytics contains performance metrics for a shopper.
type ShopperAnalytics struct {
	ShopperID            string  `json:"shopperId"`
	OrdersAssigned       int     `json:"ordersAssigned"`
	TotalDistance        float64 `json:"totalDistance"`        // km
	TotalDuration        float64 `json:"totalDuration"`        // minutes
	CapacityUtilization  float64 `json:"capacityUtilization"`  // percentage
	AverageOrderDistance float64 `json:"averageOrderDistance"` // km
	EstimatedStartTime   string  `json:"estimatedStartTime"`
	EstimatedEndTime     string  `json:"estimatedEndTime"`
	Efficiency           float64 `json:"efficiency"` // orders per hour
}

// OrderAnalytics summarizes the order distribution.
type OrderAnalytics struct {
	TotalOrders         int            `json:"totalOrders"`
	AverageItemCount    float64        `json:"averageItemCount"`
	TotalItems          int            `json:"totalItems"`
	OrderDensity        float64        `json:"orderDensity"`
	AverageDistance     float64        `json:"averageDistance"`
	UnassignedOrders    int            `json:"unassignedOrders"`
	TimeWindowBreakdown map[string]int `json:"timeWindowBreakdown"`
}

// SystemAnalytics contains fleet-wide metrics.
type SystemAnalytics struct {
	TotalShoppers     int     `json:"totalShoppers"`
	ActiveShoppers    int     `json:"activeShoppers"`
	TotalOrders       int     `json:"totalOrders"`
	AssignedOrders    int     `json:"assignedOrders"`
	TotalDistance     float64 `json:"totalDistance"`
	TotalDuration     float64 `json:"totalDuration"`
	AverageEfficiency float64 `json:"averageEfficiency"`
	OptimizationScore float64 `json:"optimizationScore"`
	EstimatedFuelCost float64 `json:"estimatedFuelCost"`
	CO2Saved          float64 `json:"co2Saved"`
}

// RouteGeometry is a solver supplied polyline for one shopper.
type RouteGeometry struct {
	ShopperID string  `json:"shopperId"`
	Points    []Point `json:"points"`
}

// AnalyticsResponse bundles the analytics computed by the solver.
type AnalyticsResponse struct {
	System          SystemAnalytics    `json:"system"`
	Shoppers        []ShopperAnalytics `json:"shoppers"`
	Orders          OrderAnalytics     `json:"orders"`
	RouteGeometries []RouteGeometry    `json:"routeGeometries"`
}

// SolverStats are the summary statistics a solver may attach to its result.
// Runtime is reported by the solver in nanoseconds.
type SolverStats struct {
	Runtime              time.Duration `json:"runtime"`
	Iterations           int           `json:"iterations"`
	BestIteration        int           `json:"bestIteration"`
	Workers              int           `json:"workers"`
	ExploredSolutions    int           `json:"exploredSolutions"`
	AcceptedImprovements int           `json:"acceptedImprovements"`
}

// Result is the payload of a completed optimization.
type Result struct {
	Optimization OptimizeResponse   `json:"optimization"`
	Analytics    *AnalyticsResponse `json:"analytics,omitempty"`
	Stats        *SolverStats       `json:"stats,omitempty"`
	Algorithm    string             `json:"algorithm,omitempty"`
}

// Geometries returns the solver supplied route geometries, if any.
func (r *Result) Geometries() []RouteGeometry {
	if r == nil || r.Analytics == nil {
		return nil
	}
	return r.Analytics.RouteGeometries
}

// HybridOptions tunes the hybrid solver. Zero values leave the solver default.
type HybridOptions struct {
	Iterations            int     `json:"iterations,omitempty" yaml:"iterations"`
	Workers               int     `json:"workers,omitempty" yaml:"workers"`
	CandidatePool         int     `json:"candidatePool,omitempty" yaml:"candidate_pool"`
	RandomizedListSize    int     `json:"randomizedListSize,omitempty" yaml:"randomized_list_size"`
	DestroyRate           float64 `json:"destroyRate,omitempty" yaml:"destroy_rate"`
	LocalSearchIterations int     `json:"localSearchIterations,omitempty" yaml:"local_search_iterations"`
	EmitIntervalMillis    int     `json:"emitIntervalMillis,omitempty" yaml:"emit_interval_millis"`
	RandomSeed            int64   `json:"randomSeed,omitempty" yaml:"random_seed"`
}

// Options is passed through to the solver without interpretation.
type Options struct {
	Algorithm     string `json:"algorithm,omitempty"`
	UseRealRoutes bool   `json:"useRealRoutes"`
	APIKey        string `json:"apiKey,omitempty"`
	HybridOptions
}

// Request is the body of an optimization request.
type Request struct {
	Orders   []Order   `json:"orders"`
	Shoppers []Shopper `json:"shoppers"`
	Options  Options   `json:"options"`
}

// SampleData is a set of demo orders and shoppers.
type SampleData struct {
	Orders   []Order   `json:"orders"`
	Shoppers []Shopper `json:"shoppers"`
}

// Health is the solver health report.
type Health struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	APIKeySet bool   `json:"apiKeySet"`
}
