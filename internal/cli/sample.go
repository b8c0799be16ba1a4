package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sampleOutput string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Fetch demo orders and shoppers from the solver",
	Long: `Fetches the solver's sample data set and writes it as JSON.

The output can be passed to 'routeopt optimize --data'.

Example:
  routeopt sample -o data.json
  routeopt optimize --data data.json`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), healthTimeout)
	defer cancel()

	data, err := newClient(cfg).SampleData(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch sample data: %w", err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sample data: %w", err)
	}
	encoded = append(encoded, '\n')

	if sampleOutput == "" {
		_, err = cmd.OutOrStdout().Write(encoded)
		return err
	}

	if err := os.WriteFile(sampleOutput, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write sample data: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d orders and %d shoppers to %s\n", len(data.Orders), len(data.Shoppers), sampleOutput)
	return nil
}
