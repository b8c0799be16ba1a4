package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/config"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/progress"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/routes"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/stream"
)

var (
	optimizeData       string
	optimizeAlgorithm  string
	optimizeRealRoutes bool
	optimizeRecord     string
	optimizeJSON       bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Stream an optimization and show live progress",
	Long: `Submits orders and shoppers to the solver's streaming endpoint and
renders every progress sample as it arrives. Press Ctrl+C to cancel.

Without --data the solver's sample data set is used.

Example:
  routeopt optimize --data data.json --real-routes
  routeopt optimize --record run.ndjson --json > result.json`,
	Args: cobra.NoArgs,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeData, "data", "d", "", "JSON file with orders and shoppers (default: solver sample data)")
	optimizeCmd.Flags().StringVarP(&optimizeAlgorithm, "algorithm", "a", "", "solver algorithm (overrides config)")
	optimizeCmd.Flags().BoolVar(&optimizeRealRoutes, "real-routes", false, "ask the solver for road-following route geometry")
	optimizeCmd.Flags().StringVar(&optimizeRecord, "record", "", "write the raw NDJSON stream to file")
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "print the result as JSON instead of a summary")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if cfg.Server.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.Timeout)
		defer cancel()
	}

	var clientOpts []stream.ClientOption
	if optimizeRecord != "" {
		f, err := os.Create(optimizeRecord)
		if err != nil {
			return fmt.Errorf("failed to create recording: %w", err)
		}
		defer f.Close()
		clientOpts = append(clientOpts, stream.WithRecorder(f))
	}
	client := newClient(cfg, clientOpts...)

	data, err := loadData(ctx, client, optimizeData)
	if err != nil {
		return err
	}

	opts := cfg.Options()
	if optimizeAlgorithm != "" {
		opts.Algorithm = optimizeAlgorithm
	}
	if cmd.Flags().Changed("real-routes") {
		opts.UseRealRoutes = optimizeRealRoutes
	}
	req := &model.Request{Orders: data.Orders, Shoppers: data.Shoppers, Options: opts}

	out := cmd.OutOrStdout()
	view := newProgressView(cmd.ErrOrStderr(), progress.New(progress.WithCapacity(cfg.Display.TimelineSize)), optimizeJSON)

	stop := cancelOnInterrupt(client)
	defer stop()

	result, err := client.Submit(ctx, req, view)
	snap := view.Finish()
	if err != nil {
		return describeFailure(err)
	}

	res := newResolver(cfg).Resolve(req.Orders, req.Shoppers, result)
	return writeResult(out, optimizeJSON, result, snap, res)
}

// loadData reads orders and shoppers from path, or fetches the solver's
// sample data when path is empty.
func loadData(ctx context.Context, client *stream.Client, path string) (*model.SampleData, error) {
	if path == "" {
		data, err := client.SampleData(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch sample data: %w", err)
		}
		return data, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var data model.SampleData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}
	return &data, nil
}

// cancelOnInterrupt cancels the client's submission on SIGINT or SIGTERM.
// The returned function stops listening.
func cancelOnInterrupt(client *stream.Client) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigCh:
			client.Cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

func newResolver(cfg *config.Config) *routes.Resolver {
	return routes.New(
		routes.WithPalette(routes.CyclePalette(cfg.Display.Palette...)),
		routes.WithMinPoints(cfg.Display.MinRoutePoints),
	)
}

// describeFailure prefixes a failed submission with its outcome.
func describeFailure(err error) error {
	switch {
	case errors.Is(err, stream.ErrCancelled):
		return errors.New("optimization cancelled")
	case errors.Is(err, stream.ErrSolver):
		return fmt.Errorf("solver reported an error: %w", err)
	case errors.Is(err, stream.ErrProtocol):
		return fmt.Errorf("solver stream was malformed: %w", err)
	case errors.Is(err, stream.ErrTransport):
		return fmt.Errorf("could not reach solver: %w", err)
	default:
		return fmt.Errorf("optimization failed: %w", err)
	}
}

func writeResult(out io.Writer, asJSON bool, result *model.Result, snap progress.Snapshot, res routes.Resolution) error {
	if !asJSON {
		printSummary(out, result, snap, res)
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newJSONSummary(result, snap, res)); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
