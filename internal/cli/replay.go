package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/config"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/model"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/progress"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/stream"
)

var (
	replayData string
	replayJSON bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Decode a recorded optimization stream",
	Long: `Reads an NDJSON stream recorded with 'routeopt optimize --record' and
runs it through the same decoding, progress and route resolution as a live
optimization. No solver is contacted.

With --data the result is checked against the orders and shoppers, and
routes are resolved; without it only the assignment is printed.

Example:
  routeopt replay run.ndjson --data data.json`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayData, "data", "d", "", "JSON file with the orders and shoppers of the run")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "print the result as JSON instead of a summary")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	data := &model.SampleData{}
	if replayData != "" {
		data, err = loadData(commandContext(cmd), nil, replayData)
		if err != nil {
			return err
		}
	}

	view := newProgressView(cmd.ErrOrStderr(), progress.New(progress.WithCapacity(cfg.Display.TimelineSize)), replayJSON)
	result, err := stream.Replay(commandContext(cmd), f, data.Orders, view)
	snap := view.Finish()
	if err != nil {
		return describeFailure(err)
	}

	res := newResolver(cfg).Resolve(data.Orders, data.Shoppers, result)
	return writeResult(cmd.OutOrStdout(), replayJSON, result, snap, res)
}
