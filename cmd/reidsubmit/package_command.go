package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reidsubmit/internal/history"
	"reidsubmit/internal/logging"
	"reidsubmit/internal/packager"
	"reidsubmit/internal/preflight"
	"reidsubmit/internal/services/reidhota"
	"reidsubmit/internal/submission"
)

func newPackageCommand(ctx *commandContext) *cobra.Command {
	var datasetFlag string
	var resultsDirFlag string
	var outputDirFlag string
	var nameFlag string
	var groundTruthFlag string
	var taskModeFlag string

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Validate results and build a leaderboard-compatible archive",
		Long: `Validate the results directory and, on success, zip the output files
into <leaderboard>_<dataset>_<name>.zip inside the output directory. Any
schema violation aborts packaging and no archive is produced. When a
ground-truth directory is supplied the external scorer runs after the
archive is written; scoring failures are reported but do not invalidate
the archive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}
			videos, err := cfg.DatasetVideos(datasetFlag)
			if err != nil {
				return err
			}
			taskMode, err := resolveTaskMode(cfg, taskModeFlag)
			if err != nil {
				return err
			}

			var scorer packager.Scorer
			if groundTruthFlag != "" {
				if check := preflight.CheckBinary("reid-hota", cfg.Metrics.Binary); !check.Passed {
					return fmt.Errorf("preflight %s: %s", check.Name, check.Detail)
				}
				client, err := reidhota.New(cfg.Metrics.Binary, cfg.Metrics.TimeoutSeconds)
				if err != nil {
					return err
				}
				scorer = client
			}

			var recorder packager.Recorder
			if cfg.History.Enabled {
				store, err := history.Open(cfg.History.Path)
				if err != nil {
					// History is advisory: log and continue rather than
					// blocking a valid submission on a local database.
					logger.Warn("history store unavailable", logging.Error(err))
				} else {
					defer store.Close()
					recorder = store
				}
			}

			pkg, err := packager.New(packager.Options{
				Leaderboard: cfg.Submission.Leaderboard,
				Dataset:     datasetFlag,
				Name:        nameFlag,
				Videos:      videos,
				TaskMode:    taskMode,
				FrameWidth:  cfg.Validation.FrameWidth,
				FrameHeight: cfg.Validation.FrameHeight,
			}, scorer, recorder, logger)
			if err != nil {
				return err
			}

			result, err := pkg.Package(cmd.Context(), resultsDirFlag, outputDirFlag, groundTruthFlag)
			out := cmd.OutOrStdout()
			if err != nil {
				if errors.Is(err, submission.ErrSchema) && result != nil {
					renderReport(out, result.Report)
				}
				return err
			}

			renderReport(out, result.Report)
			fmt.Fprintf(out, "Archive written to %s (sha256 %s)\n", result.ArchivePath, result.ArchiveSHA)
			if result.Metrics != nil {
				renderMetrics(out, result.Metrics)
			}
			if result.MetricsErr != nil {
				fmt.Fprintf(out, "Metrics computation failed (archive unaffected): %v\n", result.MetricsErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Name of the dataset being submitted")
	cmd.Flags().StringVar(&resultsDirFlag, "results-dir", "", "Directory containing the output files")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Directory to write the archive into")
	cmd.Flags().StringVar(&nameFlag, "name", "", "Submission name used in the archive filename")
	cmd.Flags().StringVar(&groundTruthFlag, "ground-truth-dir", "", "Optional ground-truth directory for scoring")
	cmd.Flags().StringVar(&taskModeFlag, "task-mode", "", "Task mode (reid or reid-geoloc), defaults to the configured mode")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("results-dir")
	_ = cmd.MarkFlagRequired("output-dir")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
