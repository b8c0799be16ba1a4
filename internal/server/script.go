package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/ndjson"
)

// DefaultSteps is the number of progress events in a synthesized stream.
const DefaultSteps = 24

// pointsPerLeg is the number of interpolated points per route leg in
// synthesized geometries.
const pointsPerLeg = 5

type progressLine struct {
	Type string       `json:"type"`
	Data progressData `json:"data"`
}

type progressData struct {
	Iteration           int     `json:"iteration"`
	WorkerID            int     `json:"workerId"`
	CandidateDistance   float64 `json:"candidateDistance"`
	BestDistance        float64 `json:"bestDistance"`
	AcceptedImprovement bool    `json:"acceptedImprovement"`
}

type completedLine struct {
	Type string        `json:"type"`
	Data *model.Result `json:"data"`
}

// Synthesize builds a stream for req: steps progress events converging on
// a greedy nearest-shopper assignment, then a completed event.
func Synthesize(req *model.Request, steps int) []byte {
	result := Assign(req)
	before := result.Optimization.TotalDistanceBefore
	after := result.Optimization.TotalDistanceAfter

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	best := before
	for i := 1; i <= steps; i++ {
		// candidates wobble above a linear descent from before to after
		target := before - (before-after)*float64(i)/float64(steps)
		candidate := round2(target + float64(i%3)*0.15)
		accepted := candidate < best
		if accepted {
			best = candidate
		}
		if i == steps && best > after {
			candidate, best, accepted = round2(after), round2(after), true
		}
		_ = enc.Encode(progressLine{Type: "progress", Data: progressData{
			Iteration:           i,
			WorkerID:            i % 4,
			CandidateDistance:   candidate,
			BestDistance:        round2(best),
			AcceptedImprovement: accepted,
		}})
	}
	_ = enc.Encode(completedLine{Type: "completed", Data: result})

	return buf.Bytes()
}

// FinalResult returns the completed payload of script, or of a
// synthesized assignment when script is empty.
func FinalResult(script []byte, req *model.Request) (*model.Result, error) {
	if len(script) == 0 {
		return Assign(req), nil
	}

	for line, err := range ndjson.Lines(bytes.NewReader(script), 0) {
		if err != nil {
			return nil, err
		}
		var probe struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
			Err  string          `json:"error"`
		}
		if json.Unmarshal([]byte(line), &probe) != nil {
			continue
		}
		switch probe.Type {
		case "completed":
			var r model.Result
			if err := json.Unmarshal(probe.Data, &r); err != nil {
				return nil, fmt.Errorf("failed to decode completed event: %w", err)
			}
			return &r, nil
		case "error":
			return nil, errors.New(probe.Err)
		}
	}
	return nil, errors.New("script has no completed event")
}

// Assign assigns each order to the nearest shopper with spare capacity and
// orders each route by nearest neighbour from the shopper.
func Assign(req *model.Request) *model.Result {
	routes := make(map[string][]model.Order, len(req.Shoppers))
	load := make(map[string]int, len(req.Shoppers))

	for _, o := range req.Orders {
		bestID := ""
		bestDist := math.MaxFloat64
		for _, s := range req.Shoppers {
			if s.Capacity > 0 && load[s.ID] >= s.Capacity {
				continue
			}
			if d := haversine(s.Position(), o.Position()); d < bestDist {
				bestID, bestDist = s.ID, d
			}
		}
		if bestID == "" {
			continue
		}
		routes[bestID] = append(routes[bestID], o)
		load[bestID]++
	}

	result := &model.Result{Algorithm: req.Options.Algorithm}
	analytics := &model.AnalyticsResponse{}
	for _, s := range req.Shoppers {
		stops := orderByNearest(s.Position(), routes[s.ID])
		if len(stops) == 0 {
			continue
		}

		a := model.Assignment{ShopperID: s.ID}
		path := []model.Point{s.Position()}
		for _, o := range stops {
			a.Route = append(a.Route, o.ID)
			path = append(path, o.Position())
		}
		a.TotalDistance = round2(pathLength(path))
		result.Optimization.Assignments = append(result.Optimization.Assignments, a)
		result.Optimization.TotalDistanceAfter += a.TotalDistance

		if req.Options.UseRealRoutes {
			analytics.RouteGeometries = append(analytics.RouteGeometries, model.RouteGeometry{
				ShopperID: s.ID,
				Points:    densify(path, pointsPerLeg),
			})
		}
		analytics.System.ActiveShoppers++
		analytics.System.AssignedOrders += len(stops)
	}

	result.Optimization.TotalDistanceAfter = round2(result.Optimization.TotalDistanceAfter)
	result.Optimization.TotalDistanceBefore = round2(roundRobinDistance(req))

	analytics.System.TotalShoppers = len(req.Shoppers)
	analytics.System.TotalOrders = len(req.Orders)
	analytics.System.TotalDistance = result.Optimization.TotalDistanceAfter
	analytics.Orders.TotalOrders = len(req.Orders)
	analytics.Orders.UnassignedOrders = len(req.Orders) - analytics.System.AssignedOrders
	result.Analytics = analytics

	return result
}

func orderByNearest(from model.Point, orders []model.Order) []model.Order {
	remaining := append([]model.Order(nil), orders...)
	out := make([]model.Order, 0, len(orders))
	cur := from
	for len(remaining) > 0 {
		sort.SliceStable(remaining, func(i, j int) bool {
			return haversine(cur, remaining[i].Position()) < haversine(cur, remaining[j].Position())
		})
		out = append(out, remaining[0])
		cur = remaining[0].Position()
		remaining = remaining[1:]
	}
	return out
}

// roundRobinDistance is the baseline distance of dealing orders to
// shoppers in turn.
func roundRobinDistance(req *model.Request) float64 {
	if len(req.Shoppers) == 0 {
		return 0
	}
	paths := make([][]model.Point, len(req.Shoppers))
	for i, s := range req.Shoppers {
		paths[i] = []model.Point{s.Position()}
	}
	for i, o := range req.Orders {
		k := i % len(req.Shoppers)
		paths[k] = append(paths[k], o.Position())
	}
	total := 0.0
	for _, p := range paths {
		total += pathLength(p)
	}
	return total
}

func densify(path []model.Point, perLeg int) []model.Point {
	if len(path) < 2 {
		return append([]model.Point(nil), path...)
	}
	out := []model.Point{path[0]}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		for k := 1; k <= perLeg; k++ {
			f := float64(k) / float64(perLeg)
			out = append(out, model.Point{a[0] + (b[0]-a[0])*f, a[1] + (b[1]-a[1])*f})
		}
	}
	return out
}

func pathLength(path []model.Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += haversine(path[i-1], path[i])
	}
	return total
}

// haversine returns the great-circle distance in kilometres.
func haversine(a, b model.Point) float64 {
	const earthRadius = 6371.0

	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := (b.Lat() - a.Lat()) * math.Pi / 180
	dLng := (b.Lng() - a.Lng()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GenerateSampleData creates 20 orders and 5 shoppers around
// Birmingham, AL.
func GenerateSampleData(seed int64) *model.SampleData {
	rng := rand.New(rand.NewSource(seed))

	const (
		centerLat = 33.5186
		centerLng = -86.8104
		radius    = 0.15
	)
	windows := []string{"9-11 AM", "11 AM-1 PM", "1-3 PM", "3-5 PM", "5-7 PM"}

	data := &model.SampleData{}
	for i := 1; i <= 5; i++ {
		data.Shoppers = append(data.Shoppers, model.Shopper{
			ID:       fmt.Sprintf("S%d", i),
			Lat:      centerLat + (rng.Float64()-0.5)*radius,
			Lng:      centerLng + (rng.Float64()-0.5)*radius,
			Capacity: rng.Intn(3) + 3,
		})
	}
	for i := 1; i <= 20; i++ {
		data.Orders = append(data.Orders, model.Order{
			ID:             fmt.Sprintf("O%d", i),
			Lat:            centerLat + (rng.Float64()-0.5)*radius,
			Lng:            centerLng + (rng.Float64()-0.5)*radius,
			ItemCount:      rng.Intn(30) + 5,
			DeliveryWindow: windows[rng.Intn(len(windows))],
		})
	}
	return data
}
