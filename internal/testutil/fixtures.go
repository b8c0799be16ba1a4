package testutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
)

// SampleOrders returns a small set of Birmingham, AL orders.
// Returns a new slice each time to prevent test interference.
func SampleOrders() []model.Order {
	return []model.Order{
		{ID: "O1", Lat: 33.5186, Lng: -86.8104, ItemCount: 4, DeliveryWindow: "10:00-11:00"},
		{ID: "O2", Lat: 33.5021, Lng: -86.7923, ItemCount: 2, DeliveryWindow: "10:00-11:00"},
		{ID: "O3", Lat: 33.4718, Lng: -86.8012, ItemCount: 7, DeliveryWindow: "11:00-12:00"},
		{ID: "O4", Lat: 33.5350, Lng: -86.7650, ItemCount: 1, DeliveryWindow: "12:00-13:00"},
	}
}

// SampleShoppers returns two shoppers near the sample orders.
func SampleShoppers() []model.Shopper {
	return []model.Shopper{
		{ID: "S1", Lat: 33.5100, Lng: -86.8000, Capacity: 3},
		{ID: "S2", Lat: 33.5300, Lng: -86.7700, Capacity: 3},
	}
}

// SampleRequest returns a request over the sample orders and shoppers.
func SampleRequest() *model.Request {
	return &model.Request{
		Orders:   SampleOrders(),
		Shoppers: SampleShoppers(),
		Options:  model.Options{Algorithm: "hybrid"},
	}
}

// SampleResult returns a completed result consistent with SampleRequest.
func SampleResult() *model.Result {
	return &model.Result{
		Optimization: model.OptimizeResponse{
			Assignments: []model.Assignment{
				{ShopperID: "S1", Route: []string{"O1", "O2", "O3"}, TotalDistance: 9.4},
				{ShopperID: "S2", Route: []string{"O4"}, TotalDistance: 1.2},
			},
			TotalDistanceBefore: 14.1,
			TotalDistanceAfter:  10.6,
		},
		Algorithm: "hybrid",
	}
}

// ProgressLine returns an encoded progress event.
func ProgressLine(iteration int, best float64, accepted bool) string {
	return mustJSON(map[string]any{
		"type": "progress",
		"data": map[string]any{
			"iteration":           iteration,
			"workerId":            fmt.Sprintf("w%d", iteration%2),
			"candidateDistance":   best,
			"bestDistance":        best,
			"acceptedImprovement": accepted,
		},
	})
}

// CompletedLine returns an encoded completed event.
func CompletedLine(result *model.Result) string {
	return mustJSON(map[string]any{"type": "completed", "data": result})
}

// ErrorLine returns an encoded error event.
func ErrorLine(msg string) string {
	return mustJSON(map[string]any{"type": "error", "error": msg})
}

// NDJSON joins lines with newline terminators, including a trailing one.
func NDJSON(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// DescentStream returns n progress lines with a decreasing best distance,
// every other one an accepted improvement, followed by a completed event.
func DescentStream(n int, result *model.Result) string {
	lines := make([]string, 0, n+1)
	best := 20.0
	for i := 1; i <= n; i++ {
		accepted := i%2 == 1
		if accepted {
			best -= 0.5
		}
		lines = append(lines, ProgressLine(i, best, accepted))
	}
	lines = append(lines, CompletedLine(result))
	return NDJSON(lines...)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
