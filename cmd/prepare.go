package cmd

import (
	"fmt"

	"github.com/ccsbench/ccsbench/internal/toolinput"
	"github.com/ccsbench/ccsbench/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var prepareTools []string

var prepareCmd = &cobra.Command{
	Use:   "prepare-inputs <dataset>",
	Short: "Write per-tool prediction inputs for a canonical dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataset := args[0]
		src := cfg.Layout().DatasetFile(dataset)
		if !utils.FileExists(src) {
			return fmt.Errorf("dataset not found: %s (run clean first)", src)
		}
		tools := prepareTools
		if len(tools) == 0 {
			tools = cfg.Tools
		}
		outs, err := toolinput.PrepareFile(src, cfg.InputsDir, dataset, tools, logger)
		if err != nil {
			return err
		}
		for _, o := range outs {
			savedf(cmd, fmt.Sprintf("%s input (%s rows)", o.Tool, humanize.Comma(int64(o.Rows))), o.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	prepareCmd.Flags().StringSliceVar(&prepareTools, "tools", nil, "tools to prepare inputs for (default from config)")
}
