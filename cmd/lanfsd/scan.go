package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivoronin/lanfsd/internal/config"
	"github.com/ivoronin/lanfsd/internal/scan"
	"github.com/ivoronin/lanfsd/internal/scanner"
)

// scanOptions holds CLI flags for the scan command.
type scanOptions struct {
	mode                 string
	ignoreDirs           []string
	scanHiddenDirs       bool
	scanHiddenFiles      bool
	searchFileNames      []string
	searchFileExtensions []string
	outputFileName       string
	workers              int
	noProgress           bool
}

// newScanCmd creates the scan subcommand: run a local shallow, deep, or
// search scan against a directory and print the result as JSON.
func newScanCmd() *cobra.Command {
	opts := &scanOptions{
		mode:    "deep",
		workers: scanner.DefaultMaxWorkers,
	}

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a local directory tree",
		Long: `Runs a shallow, deep, or search scan against a directory and prints the
result tree as JSON.

  lanfsd scan ~/projects --mode=deep
  lanfsd scan ~/projects --mode=search --search-file-extensions=go,md
  lanfsd scan ~/projects --mode=shallow`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root := "~"
			if len(args) == 1 {
				root = args[0]
			}
			return runScan(root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", opts.mode, "Scan mode: shallow, deep, or search")
	cmd.Flags().StringSliceVar(&opts.ignoreDirs, "ignore-dirs", nil, "Directory names or absolute paths to skip entirely")
	cmd.Flags().BoolVar(&opts.scanHiddenDirs, "hidden-dirs", false, "Include dot-prefixed directories")
	cmd.Flags().BoolVar(&opts.scanHiddenFiles, "hidden-files", false, "Include dot-prefixed files")
	cmd.Flags().StringSliceVar(&opts.searchFileNames, "search-file-names", nil, "Only match files whose name contains one of these substrings (search mode)")
	cmd.Flags().StringSliceVar(&opts.searchFileExtensions, "search-file-extensions", nil, "Only match files with one of these extensions (search mode)")
	cmd.Flags().StringVar(&opts.outputFileName, "output", "", "Also write the deep-scan result to outputs/<name>.json")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Worker pool size for deep/search scans")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")

	return cmd
}

// drainErrors consumes errors from a channel and writes them to stderr.
func drainErrors(errs <-chan error) {
	for err := range errs {
		fmt.Fprintf(os.Stderr, "\r\033[Kerror: %v\n", err)
	}
}

func runScan(root string, opts *scanOptions) error {
	searchCfg := &config.SearchScanConfig{
		ScanConfig: config.ScanConfig{
			RootPath:        root,
			IgnoreDirs:      config.NewStringSet(opts.ignoreDirs),
			ScanHiddenDirs:  opts.scanHiddenDirs,
			ScanHiddenFiles: opts.scanHiddenFiles,
			OutputFileName:  opts.outputFileName,
		},
		SearchFileNames:      config.NewStringSet(opts.searchFileNames),
		SearchFileExtensions: config.NewStringSet(opts.searchFileExtensions),
	}

	showProgress := !opts.noProgress
	errors := make(chan error, 100)
	go drainErrors(errors)
	defer close(errors)

	switch opts.mode {
	case "shallow":
		projection, err := scan.ShallowScan(&searchCfg.ScanConfig)
		if err != nil {
			return fmt.Errorf("shallow scan: %w", err)
		}
		return printJSON(projection)

	case "deep":
		tree, summary, err := scan.DeepScan(&searchCfg.ScanConfig, opts.workers, showProgress, errors)
		if err != nil {
			return fmt.Errorf("deep scan: %w", err)
		}
		fmt.Fprintf(os.Stderr, "%d dirs, %d files, %d errors\n", summary.Dirs, summary.Files, summary.Errors)
		return printJSON(tree)

	case "search":
		result, count, err := scan.SearchScan(searchCfg, opts.workers, showProgress, errors)
		if err != nil {
			return fmt.Errorf("search scan: %w", err)
		}
		fmt.Fprintf(os.Stderr, "%d matches\n", count)
		return printJSON(result)

	default:
		return fmt.Errorf("unknown --mode %q (want shallow, deep, or search)", opts.mode)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
