// =============================================================================
// Slip Report - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command, the main command of the tool.
//
// COMMAND USAGE:
//   slipreport analyze [files...] [flags]
//
// FLAGS:
//   --dir               : Scan this directory instead of input_dir
//   --format            : Export formats, overriding the config (xlsx,xml,csv,json)
//   --supervisor        : Keep slips whose supervisor name or id contains this
//   --from / --to       : Keep slips dated within this range (YYYY-MM-DD, inclusive)
//   --sort-supervisors  : Sort column of the supervisor report
//   --sort-wards        : Sort column of the ward report
//   --desc              : Sort descending
//   --dry-run           : Analyze and print without writing or archiving
//   --quiet             : Do not print the per-file summary
//
// PROCESSING PIPELINE:
//   1. Resolve the input files (arguments, or *.csv in the input directory)
//   2. For each file (concurrently, up to max_concurrency):
//      a. Analyze the file
//      b. Write the enabled export formats
//      c. Archive the input, when archive_inputs is set
//   3. Print each file's summary
//   4. Write the processing summary and error logs
//
// Each file is analyzed on its own; files are never merged.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/slip-report/internal/analyzer"
	"github.com/ginjaninja78/slip-report/internal/filter"
	"github.com/ginjaninja78/slip-report/internal/schema"
	"github.com/ginjaninja78/slip-report/internal/sorter"
	"github.com/ginjaninja78/slip-report/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type analyzeFlags struct {
	dir             string
	formats         []string
	supervisor      string
	from            string
	to              string
	sortSupervisors string
	sortWards       string
	desc            bool
	dryRun          bool
	quiet           bool
}

var analyzeOpts analyzeFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze slip exports and write supervisor and ward reports",
	Long: `The analyze command reads each CSV file, aggregates its slips per supervisor
and per ward, prints the summaries and writes the enabled export formats to
the output directory.

Without file arguments, every *.csv file in the input directory is analyzed.
Files are processed concurrently and independently: an error in one file does
not affect the others unless continue_on_error is false.

On success:
  - Reports are written to the output directory
  - The input is moved to the input archive when archive_inputs is set

On error:
  - The error is logged to the output directory
  - The input remains where it was`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args, analyzeOpts)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	f := analyzeCmd.Flags()
	f.StringVar(&analyzeOpts.dir, "dir", "", "Directory to scan instead of input_dir")
	f.StringSliceVar(&analyzeOpts.formats, "format", nil, "Export formats (xlsx, xml, csv, json); overrides the config")
	f.StringVar(&analyzeOpts.supervisor, "supervisor", "", "Only slips whose supervisor name (case-insensitive) or id contains this text")
	f.StringVar(&analyzeOpts.from, "from", "", "Only slips on or after this date (YYYY-MM-DD)")
	f.StringVar(&analyzeOpts.to, "to", "", "Only slips on or before this date (YYYY-MM-DD)")
	f.StringVar(&analyzeOpts.sortSupervisors, "sort-supervisors", "", "Sort column of the supervisor report")
	f.StringVar(&analyzeOpts.sortWards, "sort-wards", "", "Sort column of the ward report")
	f.BoolVar(&analyzeOpts.desc, "desc", false, "Sort descending")
	f.BoolVar(&analyzeOpts.dryRun, "dry-run", false, "Analyze without writing outputs or archiving inputs")
	f.BoolVar(&analyzeOpts.quiet, "quiet", false, "Do not print per-file summaries")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runAnalyze(cmd *cobra.Command, args []string, flags analyzeFlags) error {
	startTime := time.Now()
	cfg := mainConfig
	log := logger.Sugar()
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: BUILD OPTIONS
	// =========================================================================

	criteria, err := filter.New(flags.supervisor, flags.from, flags.to)
	if err != nil {
		return err
	}

	formats := cfg.Formats
	if len(flags.formats) > 0 {
		formats = flags.formats
	}

	direction := sorter.Ascending
	if flags.desc {
		direction = sorter.Descending
	}
	supervisorSort := firstNonEmpty(flags.sortSupervisors, cfg.Sort.Supervisors)
	wardSort := firstNonEmpty(flags.sortWards, cfg.Sort.Wards)
	if supervisorSort != "" {
		if _, ok := sorter.SupervisorColumn(supervisorSort); !ok {
			return fmt.Errorf("--sort-supervisors: %w: %q", sorter.ErrUnknownColumn, supervisorSort)
		}
	}
	if wardSort != "" {
		if _, ok := sorter.WardColumn(wardSort); !ok {
			return fmt.Errorf("--sort-wards: %w: %q", sorter.ErrUnknownColumn, wardSort)
		}
	}

	a := analyzer.New(log, analyzer.Options{
		Workers:        cfg.Workers,
		Expected:       cfg.WardSet(),
		Filter:         criteria,
		SupervisorSort: supervisorSort,
		WardSort:       wardSort,
		Direction:      direction,
	})

	// =========================================================================
	// STEP 2: RESOLVE INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(firstNonEmpty(flags.dir, cfg.InputDir), cfg.OutputDir, cfg.InputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ArchiveInputs && !flags.dryRun

	inputFiles := args
	if len(inputFiles) == 0 {
		inputFiles, err = fm.DiscoverInputFiles("*.csv")
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}
	if len(inputFiles) == 0 {
		fmt.Fprintf(out, "No CSV files found in %s.\n", fm.InputDir)
		return nil
	}

	if !flags.dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	log.Infof("Analyzing %d file(s)", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := processFiles(cmd.Context(), a, fm, inputFiles, analyzer.OutputOptions{
		Formats:    formats,
		NameFormat: cfg.OutputNameFormat,
		DryRun:     flags.dryRun,
	}, cfg.MaxConcurrency, !cfg.ShouldContinueOnError(), cmd)

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	summary := utils.ProcessingSummary{StartTime: startTime, TotalFiles: len(inputFiles)}
	var errorEntries []utils.ErrorLogEntry

	for _, fr := range results {
		if !fr.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    fr.FilePath,
				ErrorMessage: fr.Error.Error(),
				ErrorType:    errorType(fr.Error),
			})
			errorEntries = append(errorEntries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     fr.FilePath,
				ErrorType:    errorType(fr.Error),
				ErrorMessage: fr.Error.Error(),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(fr.FilePath), fr.Error)
			continue
		}

		res := fr.Result
		summary.SuccessfulFiles++
		summary.TotalLines += res.Stats.Lines
		summary.TotalRecords += res.Stats.Records
		summary.SkippedRows += res.Stats.Skipped
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   fr.FilePath,
			OutputFiles: fr.OutputFiles,
			ArchivePath: fr.ArchivePath,
			Records:     res.Stats.Records,
			Supervisors: res.Supervisors.Summary.TotalSupervisors,
			Wards:       res.Wards.Summary.WardsWithData + len(res.Wards.Unlisted),
			ProcessTime: res.Duration,
		})

		if !flags.quiet {
			renderResult(out, res)
		}
		for _, f := range fr.OutputFiles {
			fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(fr.FilePath), f)
		}
	}
	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Analysis Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime).Round(time.Millisecond))

	if !flags.dryRun {
		if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
			log.Warnf("Failed to write summary log: %v", err)
		} else {
			log.Debugf("Summary written to %s", path)
		}
		if path, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir); err != nil {
			log.Warnf("Failed to write error log: %v", err)
		} else if path != "" {
			fmt.Fprintf(out, "\nErrors have been logged to %s\n", path)
		}
	}

	if summary.FailedFiles > 0 && !cfg.ShouldContinueOnError() {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// processFiles analyzes files with at most limit in flight and returns the
// results in input order. With stopOnError, the first failure cancels the
// files not yet finished.
func processFiles(ctx context.Context, a *analyzer.Analyzer, fm *utils.FileManager, files []string, out analyzer.OutputOptions, limit int, stopOnError bool, cmd *cobra.Command) []analyzer.FileResult {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	results := make([]analyzer.FileResult, len(files))
	sem := make(chan struct{}, max(limit, 1))
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, filePath string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i] = analyzer.FileResult{FilePath: filePath, Error: fmt.Errorf("skipped: %w", err)}
			} else {
				results[i] = a.RunFile(ctx, filePath, fm, out)
			}
			if !results[i].Success && stopOnError {
				cancel()
			}
			_ = bar.Add(1)
		}(i, file)
	}

	wg.Wait()
	_ = bar.Finish()
	return results
}

// errorType classifies a failure for the error log.
func errorType(err error) string {
	var schemaErr *schema.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.Is(err, os.ErrNotExist):
		return "io"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "processing"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
