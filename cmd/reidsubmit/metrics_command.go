package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reidsubmit/internal/preflight"
	"reidsubmit/internal/services/reidhota"
)

func newMetricsCommand(ctx *commandContext) *cobra.Command {
	var datasetFlag string
	var resultsDirFlag string
	var groundTruthFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Score results against ground truth without packaging",
		Long: `Invoke the external reid-hota scorer over the results directory and
print the metrics as shown on the leaderboard. No archive is produced.
Every dataset video must have a ground-truth file at
<ground-truth-dir>/<video>/gt.csv; result files may be absent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			videos, err := cfg.DatasetVideos(datasetFlag)
			if err != nil {
				return err
			}

			if check := preflight.CheckBinary("reid-hota", cfg.Metrics.Binary); !check.Passed {
				return fmt.Errorf("preflight %s: %s", check.Name, check.Detail)
			}
			client, err := reidhota.New(cfg.Metrics.Binary, cfg.Metrics.TimeoutSeconds)
			if err != nil {
				return err
			}
			report, err := client.Evaluate(cmd.Context(), resultsDirFlag, groundTruthFlag, videos)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, report)
			}
			renderMetrics(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Name of the dataset being scored")
	cmd.Flags().StringVar(&resultsDirFlag, "results-dir", "", "Directory containing the output files")
	cmd.Flags().StringVar(&groundTruthFlag, "ground-truth-dir", "", "Directory containing per-video ground truth")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the report as JSON")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("results-dir")
	_ = cmd.MarkFlagRequired("ground-truth-dir")
	return cmd
}
