package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/progress"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/routes"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/stream"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\033[K"

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressView renders the aggregated snapshot after every sample. On a
// terminal the status line is redrawn in place; otherwise one line is
// written per sample. A quiet view only aggregates.
type progressView struct {
	out   io.Writer
	agg   *progress.Aggregator
	tty   bool
	quiet bool

	drawn bool
}

func newProgressView(out io.Writer, agg *progress.Aggregator, quiet bool) *progressView {
	return &progressView{out: out, agg: agg, tty: isTerminal(out), quiet: quiet}
}

// Started implements stream.ProgressSink.
func (v *progressView) Started(at time.Time) {
	v.agg.Started(at)
}

// Observe implements stream.ProgressSink.
func (v *progressView) Observe(p stream.ProgressData) {
	v.agg.Observe(p)
	if v.quiet {
		return
	}

	line := statusLine(v.agg.Snapshot(), p)
	if v.tty {
		fmt.Fprint(v.out, clearLine+line)
		v.drawn = true
		return
	}
	fmt.Fprintln(v.out, line)
}

// Finish freezes the runtime and ends the in-place status line.
func (v *progressView) Finish() progress.Snapshot {
	v.agg.Stop(time.Now())
	if v.drawn {
		fmt.Fprintln(v.out)
		v.drawn = false
	}
	return v.agg.Snapshot()
}

func statusLine(s progress.Snapshot, p stream.ProgressData) string {
	marker := " "
	if p.AcceptedImprovement {
		marker = "*"
	}
	best := "-"
	if s.HasBest {
		best = fmt.Sprintf("%.2f", s.BestDistance)
	}
	worker := ""
	if p.WorkerID != "" {
		worker = " [" + string(p.WorkerID) + "]"
	}
	return fmt.Sprintf("%s iter %-5d%s  candidate %.2f km  best %s km  explored %d  accepted %d (%.0f%%)  %s",
		marker, p.Iteration, worker, p.CandidateDistance, best,
		s.ExploredSolutions, s.AcceptedImprovements, s.AcceptanceRate*100,
		s.Runtime.Round(100*time.Millisecond))
}

// printSummary writes the final distances, exploration statistics and
// resolved routes.
func printSummary(out io.Writer, result *model.Result, snap progress.Snapshot, res routes.Resolution) {
	opt := result.Optimization

	fmt.Fprintln(out)
	if result.Algorithm != "" {
		fmt.Fprintf(out, "Algorithm:      %s\n", result.Algorithm)
	}
	fmt.Fprintf(out, "Distance:       %.2f km -> %.2f km", opt.TotalDistanceBefore, opt.TotalDistanceAfter)
	if opt.TotalDistanceBefore > 0 {
		saved := (opt.TotalDistanceBefore - opt.TotalDistanceAfter) / opt.TotalDistanceBefore * 100
		fmt.Fprintf(out, " (%.1f%% saved)", saved)
	}
	fmt.Fprintln(out)

	if snap.ExploredSolutions > 0 {
		fmt.Fprintf(out, "Explored:       %d solutions, %d accepted (%.1f%%)\n",
			snap.ExploredSolutions, snap.AcceptedImprovements, snap.AcceptanceRate*100)
		if snap.BestIteration >= 0 {
			fmt.Fprintf(out, "Best iteration: %d\n", snap.BestIteration)
		}
		fmt.Fprintf(out, "Runtime:        %s\n", snap.Runtime.Round(time.Millisecond))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-10s  %-8s  %5s  %6s  %s\n", "SHOPPER", "COLOR", "STOPS", "POINTS", "SOURCE")
	fmt.Fprintf(out, "%s  %s  %s  %s  %s\n", strings.Repeat("-", 10), strings.Repeat("-", 8), strings.Repeat("-", 5), strings.Repeat("-", 6), "------")

	resolved := make(map[string]routes.Route, len(res.Routes))
	for _, r := range res.Routes {
		resolved[r.ShopperID] = r
	}
	for _, a := range opt.Assignments {
		r, ok := resolved[a.ShopperID]
		if !ok {
			fmt.Fprintf(out, "%-10s  %-8s  %5d  %6s  %s\n", a.ShopperID, "-", len(a.Route), "-", "unresolved")
			continue
		}
		source := string(r.Source)
		if r.Fallback {
			source += " (fallback)"
		}
		fmt.Fprintf(out, "%-10s  %-8s  %5d  %6d  %s\n", r.ShopperID, r.Color, len(a.Route), len(r.Points), source)
	}

	if res.Degraded {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Warning: some routes are straight-line approximations; real road routes were unavailable.")
	}
}

// jsonRoute is the --json rendering of a resolved route.
type jsonRoute struct {
	ShopperID string        `json:"shopperId"`
	Color     string        `json:"color"`
	Source    routes.Source `json:"source"`
	Fallback  bool          `json:"fallback"`
	Points    []model.Point `json:"points"`
}

// jsonSummary is the --json output document.
type jsonSummary struct {
	Result   *model.Result `json:"result"`
	Routes   []jsonRoute   `json:"routes"`
	Degraded bool          `json:"degraded"`
	Progress jsonProgress  `json:"progress"`
}

type jsonProgress struct {
	BestDistance         *float64 `json:"bestDistance,omitempty"`
	ExploredSolutions    int      `json:"exploredSolutions"`
	AcceptedImprovements int      `json:"acceptedImprovements"`
	AcceptanceRate       float64  `json:"acceptanceRate"`
	BestIteration        int      `json:"bestIteration"`
	RuntimeMillis        int64    `json:"runtimeMs"`
}

func newJSONSummary(result *model.Result, snap progress.Snapshot, res routes.Resolution) jsonSummary {
	out := jsonSummary{
		Result:   result,
		Routes:   make([]jsonRoute, 0, len(res.Routes)),
		Degraded: res.Degraded,
		Progress: jsonProgress{
			ExploredSolutions:    snap.ExploredSolutions,
			AcceptedImprovements: snap.AcceptedImprovements,
			AcceptanceRate:       snap.AcceptanceRate,
			BestIteration:        snap.BestIteration,
			RuntimeMillis:        snap.Runtime.Milliseconds(),
		},
	}
	if snap.HasBest {
		best := snap.BestDistance
		out.Progress.BestDistance = &best
	}
	for _, r := range res.Routes {
		out.Routes = append(out.Routes, jsonRoute{
			ShopperID: r.ShopperID,
			Color:     r.Color,
			Source:    r.Source,
			Fallback:  r.Fallback,
			Points:    r.Points,
		})
	}
	return out
}
