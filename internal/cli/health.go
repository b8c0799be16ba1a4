package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// healthTimeout bounds the health request.
const healthTimeout = 10 * time.Second

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the solver is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), healthTimeout)
	defer cancel()

	h, err := newClient(cfg).Health(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	keyStatus := "not set"
	if h.APIKeySet {
		keyStatus = "set"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Solver:  %s\n", cfg.Server.BaseURL)
	fmt.Fprintf(out, "Status:  %s\n", h.Status)
	if h.Service != "" {
		fmt.Fprintf(out, "Service: %s\n", h.Service)
	}
	fmt.Fprintf(out, "API key: %s\n", keyStatus)
	return nil
}
