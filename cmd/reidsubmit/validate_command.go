package main

import (
	"github.com/spf13/cobra"

	"reidsubmit/internal/submission"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var datasetFlag string
	var resultsDirFlag string
	var taskModeFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a results directory against the submission schema",
		Long: `Check every output file in the results directory against the fixed
eleven-column schema and report all violations at once. A video with no
output file is treated as "no detections" and is not an error.`,
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

			validator, err := submission.NewValidator(validatorOptions(cfg, datasetFlag, videos, taskMode), logger)
			if err != nil {
				return err
			}
			report, err := validator.ValidateDir(cmd.Context(), resultsDirFlag)
			if err != nil {
				return err
			}

			if jsonFlag {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				renderReport(cmd.OutOrStdout(), report)
			}
			return report.Err()
		},
	}

	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Name of the dataset being validated")
	cmd.Flags().StringVar(&resultsDirFlag, "results-dir", "", "Directory containing the output files")
	cmd.Flags().StringVar(&taskModeFlag, "task-mode", "", "Task mode (reid or reid-geoloc), defaults to the configured mode")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the report as JSON")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("results-dir")
	return cmd
}
