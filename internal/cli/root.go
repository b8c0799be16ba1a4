package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/config"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/logging"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/stream"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	envPath    string
	baseURL    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "routeopt",
	Short: "Stream route optimizations from a solver and show live progress",
	Long: `routeopt submits delivery orders and shoppers to a route-optimization
solver, follows the solver's NDJSON progress stream, and prints the
resulting shopper routes.

Settings are read from routeopt.yaml, .env and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logging.SetLevel(logging.LevelDebug)
		}
		return nil
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("routeopt version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile, "path to config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", config.DefaultEnvFile, "path to dotenv file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "solver API root (overrides config and "+config.EnvBaseURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves settings from the config file, the env file, the
// process environment and the --base-url flag, in rising precedence.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if baseURL != "" {
		cfg.Server.BaseURL = baseURL
		if err := config.ValidateServerConfig(&cfg.Server); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newClient(cfg *config.Config, opts ...stream.ClientOption) *stream.Client {
	opts = append([]stream.ClientOption{stream.WithStreamPath(cfg.Server.StreamPath)}, opts...)
	return stream.NewClient(cfg.Server.BaseURL, opts...)
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
