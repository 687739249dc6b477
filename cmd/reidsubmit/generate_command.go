package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reidsubmit/internal/generator"
	"reidsubmit/internal/preflight"
	"reidsubmit/internal/services/ffprobe"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var datasetFlag string
	var videosDirFlag string
	var outputDirFlag string
	var taskModeFlag string
	var seedFlag int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random schema-conforming example output",
		Long: `Generate one random output file per dataset video, using the source
videos to derive frame counts and dimensions. The generated files pass
validation and are meant for exercising the packaging pipeline before a
real recognition system produces output.`,
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

			if check := preflight.CheckBinary("ffprobe", cfg.Generator.FFprobeBinary); !check.Passed {
				return fmt.Errorf("preflight %s: %s", check.Name, check.Detail)
			}
			prober, err := ffprobe.New(cfg.Generator.FFprobeBinary)
			if err != nil {
				return err
			}
			seed := seedFlag
			if seed == 0 {
				seed = cfg.Generator.Seed
			}
			gen, err := generator.New(generator.Options{
				Dataset:  datasetFlag,
				Videos:   videos,
				TaskMode: taskMode,
				Subjects: cfg.Generator.Subjects,
				Seed:     seed,
			}, prober, logger)
			if err != nil {
				return err
			}

			written, err := gen.Run(cmd.Context(), videosDirFlag, outputDirFlag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d output file(s) in %s\n", len(written), outputDirFlag)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Name of the dataset to generate data for")
	cmd.Flags().StringVar(&videosDirFlag, "videos-dir", "", "Directory containing the dataset source videos")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Directory to write generated files into")
	cmd.Flags().StringVar(&taskModeFlag, "task-mode", "", "Task mode (reid or reid-geoloc), defaults to the configured mode")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "Random seed (0 uses the configured seed, or entropy)")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("videos-dir")
	_ = cmd.MarkFlagRequired("output-dir")
	return cmd
}
