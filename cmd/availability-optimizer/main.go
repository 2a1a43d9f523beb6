// Command availability-optimizer benchmarks chunked availability querying
// against the Healthie API and recommends a (chunk size, concurrency)
// configuration.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/daterange"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/healthie"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/logging"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/optimizer"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/report"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/strategy"
)

var (
	endpoint   string
	providerID string
	apptTypeID string
	state      string
	timezone   string
	daysAhead  int
	iterations int
	quick      bool
	outputDir  string
	logLevel   string
	pretty     bool
)

var rootCmd = &cobra.Command{
	Use:   "availability-optimizer",
	Short: "Benchmark chunked availability querying and pick the best strategy",
	Long: `Benchmarks chunked, concurrency-bounded availability querying against the
Healthie GraphQL API.

The day span is partitioned into chunks per strategy, each chunk is fetched
as one availableSlotsForRange query, and repeated trials measure the latency
distribution of every (chunk size, concurrency) pairing. Strategies are
ranked by median latency and the fastest error-free one is recommended.

The endpoint falls back to the HEALTHIE_API_URL environment variable; an API
key is read from HEALTHIE_API_KEY. A .env file in the working directory is
loaded if present.`,
	RunE:          runOptimize,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&endpoint, "endpoint", "", "GraphQL endpoint URL (default: HEALTHIE_API_URL)")
	rootCmd.Flags().StringVar(&providerID, "provider-id", "", "provider id to query availability for")
	rootCmd.Flags().StringVar(&apptTypeID, "appointment-type-id", "", "appointment type id")
	rootCmd.Flags().StringVar(&state, "state", "", "two-letter state the client is licensed in")
	rootCmd.Flags().StringVar(&timezone, "timezone", "America/Chicago", "IANA timezone for returned slots")
	rootCmd.Flags().IntVar(&daysAhead, "days-ahead", 30, "span of days ahead to query")
	rootCmd.Flags().IntVar(&iterations, "iterations", 3, "trials per strategy")
	rootCmd.Flags().BoolVar(&quick, "quick", false, "use the reduced quick catalog")
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "results", "directory for JSON snapshots")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", true, "human-readable console logs")
}

func main() {
	// Missing .env is fine; flags and the real environment still apply.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runOptimize(cmd *cobra.Command, args []string) error {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Pretty: pretty,
		Output: os.Stderr,
	})

	if endpoint == "" {
		endpoint = os.Getenv("HEALTHIE_API_URL")
	}
	if endpoint == "" {
		return fmt.Errorf("endpoint is required (--endpoint or HEALTHIE_API_URL)")
	}

	cfg := healthie.DefaultConfig(endpoint)
	cfg.AuthToken = os.Getenv("HEALTHIE_API_KEY")

	client, err := healthie.New(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	params := healthie.AvailabilityParams{
		ProviderID: providerID,
		ApptTypeID: apptTypeID,
		State:      state,
		Timezone:   timezone,
	}

	fetcher := optimizer.ChunkFetcherFunc(func(ctx context.Context, r daterange.DateRange) (int, error) {
		slots, err := client.FetchAvailability(ctx, params, r)
		return len(slots), err
	})

	catalog := strategy.GenerateDefault(daysAhead)
	if quick {
		catalog = strategy.QuickStrategies(daysAhead)
	}

	opt, err := optimizer.New(fetcher, optimizer.Config{
		TotalDays:  daysAhead,
		Iterations: iterations,
		Strategies: catalog,
	})
	if err != nil {
		return fmt.Errorf("create optimizer: %w", err)
	}

	result, err := opt.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("optimization run: %w", err)
	}

	report.PrintTable(os.Stdout, result)

	snapshot := report.NewSnapshot(report.RunConfig{
		Endpoint:   endpoint,
		ProviderID: providerID,
		ApptTypeID: apptTypeID,
		State:      state,
		Timezone:   timezone,
		DaysAhead:  daysAhead,
		Iterations: iterations,
		Quick:      quick,
	}, result)

	path, err := report.Save(outputDir, snapshot)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	log.Info().Str("path", path).Msg("Snapshot saved")
	return nil
}
