package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ccsbench/ccsbench/internal/sources"
	"github.com/ccsbench/ccsbench/internal/toolinput"
	"github.com/spf13/cobra"
)

var (
	listSources  bool
	listTools    bool
	listDatasets bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources, tool input formats, or cleaned datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 0
		for _, b := range []bool{listSources, listTools, listDatasets} {
			if b {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("specify exactly one of --sources, --tools or --datasets")
		}
		out := cmd.OutOrStdout()
		switch {
		case listSources:
			for _, name := range sources.Names() {
				a, _ := sources.Lookup(name)
				fmt.Fprintf(out, "- %s: %s (dataset %s)\n", name, cfg.SourceFile(name, a.DefaultFile), a.Dataset)
			}
		case listTools:
			for _, tool := range toolinput.Tools() {
				f, _ := toolinput.Lookup(tool)
				fmt.Fprintf(out, "- %s: %s\n", tool, f.File)
			}
		case listDatasets:
			names, err := cleanedDatasets(cfg.DataDir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(out, "(no datasets)")
				return nil
			}
			for _, name := range names {
				fmt.Fprintf(out, "- %s: %s\n", name, cfg.Layout().DatasetFile(name))
			}
		}
		return nil
	},
}

// cleanedDatasets lists the tags of dataset_<tag>.csv files in dir.
func cleanedDatasets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".csv" || !strings.HasPrefix(name, "dataset_") {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(name, "dataset_"), ".csv"))
	}
	sort.Strings(names)
	return names, nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listSources, "sources", false, "list registered raw sources")
	listCmd.Flags().BoolVar(&listTools, "tools", false, "list tool input formats")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list cleaned datasets")
}
