package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"spikereview/adapters/api"
	"spikereview/adapters/excel"
	"spikereview/domain/neuron"
	"spikereview/internal"
	"spikereview/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	var upstream string
	rootCmd := &cobra.Command{
		Use:   "spikereview-cli",
		Short: "Inspect and toggle unit exclusions on the spike-sorting server",
	}
	rootCmd.PersistentFlags().StringVar(&upstream, "upstream", "", "Spike-sorting server URL (default UPSTREAM_URL)")

	rootCmd.AddCommand(
		newUnitsCmd(&upstream),
		newToggleCmd(&upstream),
		newExportCmd(&upstream),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient(upstream string) (*api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	clientConfig := cfg.ClientConfig()
	if upstream != "" {
		clientConfig.BaseURL = upstream
	}
	return api.NewClient(clientConfig, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)))
}

func newUnitsCmd(upstream *string) *cobra.Command {
	var excludedOnly bool

	cmd := &cobra.Command{
		Use:   "units",
		Short: "List units in server order with their exclusion state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(*upstream)
			if err != nil {
				return err
			}
			records, err := client.ListNeurons(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILENAME\tCLUSTER\tRATE (Hz)\tEXCLUDED")
			for _, r := range records {
				if excludedOnly && !r.Excluded {
					continue
				}
				rate := "-"
				if r.HasFiringRate() {
					rate = strconv.FormatFloat(*r.FiringRateHz, 'f', 2, 64)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%t\n", r.Filename, r.ClusterID, rate, r.Excluded)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&excludedOnly, "excluded", false, "Only list excluded units")
	return cmd
}

func newToggleCmd(upstream *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle FILENAME CLUSTER_ID",
		Short: "Flip one unit's exclusion and print the server's excluded set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clusterID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid cluster id %q: %w", args[1], err)
			}
			client, err := newClient(*upstream)
			if err != nil {
				return err
			}

			key := neuron.NewUnitKey(args[0], clusterID)
			set, err := client.Toggle(cmd.Context(), key)
			if err != nil {
				return err
			}

			state := "included"
			if set.Contains(key) {
				state = "excluded"
			}
			fmt.Printf("%s is now %s (%d excluded)\n", key, state, set.Len())
			for _, k := range set.Keys() {
				fmt.Printf("  %s,%d\n", k.Filename, k.ClusterID)
			}
			return nil
		},
	}
	return cmd
}

func newExportCmd(upstream *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export OUT.xlsx",
		Short: "Write the review workbook (Units and Excluded sheets)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(*upstream)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), client, args[0])
		},
	}
	return cmd
}

func runExport(ctx context.Context, source *api.Client, path string) error {
	records, err := source.ListNeurons(ctx)
	if err != nil {
		return err
	}
	set := neuron.ExclusionSetFromRecords(records)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := excel.WriteWorkbook(f, excel.RowsFromRecords(records, set), set); err != nil {
		return err
	}
	fmt.Printf("Wrote %d units (%d excluded) to %s\n", len(records), set.Len(), path)
	return nil
}
