// Standalone mock solver for local debugging.
// Run with: go run ./cmd/mock-solver --script run.ndjson --chunk 64 --delay 50ms
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/config"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/logging"
	"github.com/GauravS11112003/Route-Optimization-Shipt/internal/server"
)

var (
	port      int
	prefix    string
	script    string
	chunkSize int
	delay     time.Duration
	steps     int
	seed      int64
	envFile   string
	origins   []string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:          "mock-solver",
	Short:        "Serve a recorded or synthesized optimization stream",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	rootCmd.Flags().StringVar(&prefix, "prefix", server.DefaultPrefix, "route prefix")
	rootCmd.Flags().StringVar(&script, "script", "", "NDJSON recording to replay (default: synthesize from the request)")
	rootCmd.Flags().IntVar(&chunkSize, "chunk", 0, "bytes per flush (0 writes the stream at once)")
	rootCmd.Flags().DurationVar(&delay, "delay", 0, "pause between chunks")
	rootCmd.Flags().IntVar(&steps, "steps", server.DefaultSteps, "progress events in a synthesized stream")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "sample data seed (default: random per request)")
	rootCmd.Flags().StringVar(&envFile, "env", config.DefaultEnvFile, "dotenv file providing "+config.EnvAPIKey)
	rootCmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "CORS origins allowed to call the server (default: any)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	if verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	cfg := &server.Config{
		Port:         port,
		Prefix:       prefix,
		ChunkSize:    chunkSize,
		Delay:        delay,
		Steps:        steps,
		AllowOrigins: origins,
	}

	if script != "" {
		data, err := os.ReadFile(script)
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		cfg.Script = data
	}
	if seed != 0 {
		cfg.Sample = server.GenerateSampleData(seed)
	}

	env, err := config.LoadEnvFile(envFile)
	if err != nil {
		return err
	}
	var keyed config.Config
	config.ApplyEnv(&keyed, os.LookupEnv, env)
	cfg.APIKeySet = keyed.APIKey != ""

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Mock solver running on http://localhost:%d%s\n", srv.Port(), srv.Prefix())
	if script != "" {
		fmt.Printf("Replaying %s (%d bytes)\n", script, len(cfg.Script))
	}

	if err := srv.Start(ctx); err != nil {
		return err
	}
	fmt.Println("\nShutting down...")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
