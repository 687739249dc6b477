package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newDatasetsCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List configured datasets and their videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if jsonFlag {
				return writeJSON(cmd, cfg.Datasets)
			}

			rows := make([][]string, 0, len(cfg.Datasets))
			for _, name := range cfg.DatasetNames() {
				videos := cfg.Datasets[name]
				rows = append(rows, []string{
					name,
					strconv.Itoa(len(videos)),
					strings.Join(videos, "\n"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
				[]string{"Dataset", "Videos", "Video IDs"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the datasets as JSON")
	return cmd
}
