package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"

	"spikereview/adapters/api"
	"spikereview/adapters/excel"
	"spikereview/adapters/fixture"
	"spikereview/domain/neuron"
	"spikereview/internal"
	"spikereview/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "spikereview-dev",
		Short: "Development tools for the unit review UI",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSeedCmd(),
		newSmokeTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var dataFile, excludedFile, addr string
	var synthetic testkit.SyntheticConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory spike-sorting API (/api/neurons, /api/toggle)",
		Long: `Serve neuron statistics from a neuron_data.json file, or synthetic units
when no file is given. Exclusions live in memory only.

Example: spikereview-dev serve --data neuron_data.json --excluded clusters_excluded.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewDefaultLogger()
			defer logger.Sync()

			records, err := loadRecords(dataFile, synthetic)
			if err != nil {
				return err
			}

			server := fixture.NewServer(records, logger)
			if excludedFile != "" {
				set, err := excel.ReadExclusions(excludedFile)
				if err != nil {
					return err
				}
				server.Seed(set)
			}

			logger.Info("[Fixture] Serving %d units on http://%s", len(records), addr)
			return http.ListenAndServe(addr, server.Handler())
		},
	}

	defaults := testkit.DefaultSyntheticConfig()
	cmd.Flags().StringVar(&dataFile, "data", "", "neuron_data.json file to serve")
	cmd.Flags().StringVar(&excludedFile, "excluded", "", "Initial exclusions (.csv filename,cluster_id rows or review .xlsx)")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "Listen address")
	addSyntheticFlags(cmd, &synthetic, defaults)

	return cmd
}

func newSeedCmd() *cobra.Command {
	var out string
	var synthetic testkit.SyntheticConfig

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write synthetic neuron statistics to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			records := testkit.SyntheticRecords(synthetic)
			raw, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, raw, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %d units to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "neuron_data.json", "Output file")
	addSyntheticFlags(cmd, &synthetic, testkit.DefaultSyntheticConfig())
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run a list/toggle round trip against an in-process fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTest(cmd.Context())
		},
	}
	return cmd
}

func runSmokeTest(ctx context.Context) error {
	records := testkit.SyntheticRecords(testkit.DefaultSyntheticConfig())
	server := httptest.NewServer(fixture.NewServer(records, nil).Handler())
	defer server.Close()

	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL}, internal.NewDefaultLogger())
	if err != nil {
		return err
	}

	listed, err := client.ListNeurons(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("✓ listed %d units\n", len(listed))

	key := listed[0].Key()
	set, err := client.Toggle(ctx, key)
	if err != nil {
		return err
	}
	if !set.Contains(key) {
		return fmt.Errorf("toggle of %s did not exclude it", key)
	}
	fmt.Printf("✓ excluded %s\n", key)

	set, err = client.Toggle(ctx, key)
	if err != nil {
		return err
	}
	if !set.Equal(neuron.NewExclusionSet()) {
		return fmt.Errorf("second toggle of %s left %d excluded", key, set.Len())
	}
	fmt.Printf("✓ restored %s\n", key)
	return nil
}

func loadRecords(dataFile string, synthetic testkit.SyntheticConfig) ([]neuron.StatisticsRecord, error) {
	if dataFile == "" {
		return testkit.SyntheticRecords(synthetic), nil
	}
	return fixture.LoadRecordsFile(dataFile)
}

func addSyntheticFlags(cmd *cobra.Command, cfg *testkit.SyntheticConfig, defaults testkit.SyntheticConfig) {
	cmd.Flags().IntVar(&cfg.Files, "files", defaults.Files, "Synthetic recordings")
	cmd.Flags().IntVar(&cfg.ClustersPerFile, "clusters", defaults.ClustersPerFile, "Synthetic clusters per recording")
	cmd.Flags().IntVar(&cfg.Bins, "bins", defaults.Bins, "ISI bins per unit")
	cmd.Flags().IntVar(&cfg.Quantiles, "quantiles", defaults.Quantiles, "Waveform quantile traces per unit")
	cmd.Flags().IntVar(&cfg.Samples, "samples", defaults.Samples, "Samples per waveform trace")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", defaults.Seed, "Random seed")
}
