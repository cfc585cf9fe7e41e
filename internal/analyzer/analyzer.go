// =============================================================================
// Slip Report - Analyzer Module
// =============================================================================
//
// This module orchestrates the analysis pipeline for one input, from raw text
// to finished reports, and optionally to exported files.
//
// ANALYSIS PIPELINE:
//   1. Split the text into a header and data lines
//   2. Resolve the header against the required and optional columns
//   3. Normalize and aggregate the data lines (parallel chunks)
//   4. Derive the supervisor and ward reports
//   5. Apply the requested sort columns
//   6. Write the enabled export formats (RunFile only)
//   7. Archive the input file (RunFile only)
//
// A schema failure aborts the run: no partial report is produced.
//
// CONCURRENCY:
//   An Analyzer holds no per-run state and can analyze several inputs at
//   once.
//
// =============================================================================

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/slip-report/internal/aggregate"
	"github.com/ginjaninja78/slip-report/internal/csvparser"
	"github.com/ginjaninja78/slip-report/internal/export"
	"github.com/ginjaninja78/slip-report/internal/filter"
	"github.com/ginjaninja78/slip-report/internal/record"
	"github.com/ginjaninja78/slip-report/internal/report"
	"github.com/ginjaninja78/slip-report/internal/schema"
	"github.com/ginjaninja78/slip-report/internal/sorter"
	"github.com/ginjaninja78/slip-report/pkg/utils"
)

// Logger is the logging surface the analyzer needs. *zap.SugaredLogger
// satisfies it.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options controls every run of an Analyzer.
type Options struct {
	// Workers is the number of parallel aggregation chunks.
	Workers int

	// Expected is the ward universe for coverage. Zero value means the
	// default 1..70 set.
	Expected report.WardSet

	// Filter narrows the records before aggregation.
	Filter filter.Criteria

	// SupervisorSort and WardSort name the initial sort columns; empty keeps
	// the default report order.
	SupervisorSort string
	WardSort       string
	Direction      sorter.Direction
}

// Result is the outcome of analyzing one input.
type Result struct {
	ID          string
	Source      string
	GeneratedAt time.Time
	Duration    time.Duration

	// Headers are the cleaned header labels of the input.
	Headers []string

	// Absent lists the optional columns the input lacks.
	Absent []string

	Supervisors report.SupervisorReport
	Wards       report.WardReport
	Stats       aggregate.Stats
}

// Document converts the result for the exporters.
func (r *Result) Document() export.Document {
	return export.Document{
		ID:          r.ID,
		Source:      r.Source,
		GeneratedAt: r.GeneratedAt,
		Supervisors: r.Supervisors,
		Wards:       r.Wards,
		Stats:       r.Stats,
	}
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer runs the pipeline with fixed options.
type Analyzer struct {
	logger Logger
	opts   Options
}

// New creates an Analyzer.
//
// PARAMETERS:
//   - logger: Receives progress and diagnostics.
//   - opts: Applied to every run.
func New(logger Logger, opts Options) *Analyzer {
	if opts.Expected.Len() == 0 {
		opts.Expected = report.DefaultWardSet()
	}
	return &Analyzer{logger: logger, opts: opts}
}

// Analyze runs the pipeline over the full text of one input.
//
// RETURNS:
//   - The finished reports.
//   - csvparser.ErrEmptyInput, a wrapped *schema.SchemaError, an unknown
//     sort column error, or the context error.
func (a *Analyzer) Analyze(ctx context.Context, source, text string) (*Result, error) {
	start := time.Now()
	result := &Result{
		ID:          uuid.New().String(),
		Source:      source,
		GeneratedAt: start,
	}

	a.logger.Debugf("Analyzing %s (%d bytes)", source, len(text))

	// =========================================================================
	// STEP 1: SPLIT
	// =========================================================================

	doc, err := csvparser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	// =========================================================================
	// STEP 2: RESOLVE COLUMNS
	// =========================================================================

	index, err := schema.Resolve(doc.Headers)
	if err != nil {
		var schemaErr *schema.SchemaError
		if errors.As(err, &schemaErr) {
			a.logger.Warnf("%s: missing required columns %v (found %v)", source, schemaErr.Missing, schemaErr.Found)
		}
		return nil, fmt.Errorf("failed to resolve columns of %s: %w", source, err)
	}

	result.Headers = index.Headers
	for _, col := range schema.Optional {
		if !index.Has(col) {
			result.Absent = append(result.Absent, schema.Labels[col])
		}
	}
	if len(result.Absent) > 0 {
		a.logger.Infof("%s: optional columns absent, using defaults: %v", source, result.Absent)
	}

	// =========================================================================
	// STEP 3: NORMALIZE AND AGGREGATE
	// =========================================================================

	acc, err := aggregate.Run(ctx, doc.Lines, record.NewNormalizer(index), aggregate.Options{
		Workers: a.opts.Workers,
		Keep:    a.opts.Filter.Keep(),
	})
	if err != nil {
		return nil, fmt.Errorf("aggregation of %s interrupted: %w", source, err)
	}

	result.Stats = acc.Stats
	a.logger.Debugf("%s: %d lines, %d records, %d skipped, %d filtered",
		source, acc.Stats.Lines, acc.Stats.Records, acc.Stats.Skipped, acc.Stats.Filtered)

	// =========================================================================
	// STEP 4: DERIVE REPORTS
	// =========================================================================

	result.Supervisors, result.Wards = report.Build(acc, a.opts.Expected)

	// =========================================================================
	// STEP 5: SORT
	// =========================================================================

	if err := SortResult(result, a.opts.SupervisorSort, a.opts.WardSort, a.opts.Direction); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	a.logger.Infof("%s: %d supervisors, %d slips, %d/%d expected wards with data",
		source,
		result.Supervisors.Summary.TotalSupervisors,
		result.Supervisors.Summary.TotalTransactions,
		result.Wards.Summary.WardsWithData,
		len(result.Wards.Entries))

	return result, nil
}

// AnalyzeReader reads r fully and analyzes it.
func (a *Analyzer) AnalyzeReader(ctx context.Context, source string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return a.Analyze(ctx, source, string(data))
}

// SortResult reorders the entries of both reports. An empty column leaves
// that report in its current order.
func SortResult(result *Result, supervisorColumn, wardColumn string, dir sorter.Direction) error {
	if supervisorColumn != "" {
		col, ok := sorter.SupervisorColumn(supervisorColumn)
		if !ok {
			return fmt.Errorf("supervisor report: %w: %q", sorter.ErrUnknownColumn, supervisorColumn)
		}
		result.Supervisors.Entries = sorter.SortBy(result.Supervisors.Entries, col, dir)
	}
	if wardColumn != "" {
		col, ok := sorter.WardColumn(wardColumn)
		if !ok {
			return fmt.Errorf("ward report: %w: %q", sorter.ErrUnknownColumn, wardColumn)
		}
		result.Wards.Entries = sorter.SortBy(result.Wards.Entries, col, dir)
	}
	return nil
}

// =============================================================================
// FILE PROCESSING
// =============================================================================

// OutputOptions controls how RunFile writes its results.
type OutputOptions struct {
	// Formats are the export formats to write.
	Formats []string

	// NameFormat is the output file name format (see utils.GenerateOutputFileName).
	NameFormat string

	// DryRun analyzes without writing or archiving anything.
	DryRun bool
}

// FileResult represents the outcome of processing a single file.
type FileResult struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFiles are the written export files.
	OutputFiles []string

	// ArchivePath is where the input was moved, if archiving is enabled.
	ArchivePath string

	// Result is nil if processing failed.
	Result *Result

	Success bool

	// Error is nil if processing was successful.
	Error error
}

// RunFile analyzes one file and writes its exports.
//
// PROCESSING STEPS:
//  1. Read and analyze the file
//  2. Write one file per export artifact
//  3. Archive the input file
//
// When an export fails, the files already written for this input are
// removed.
func (a *Analyzer) RunFile(ctx context.Context, path string, fm *utils.FileManager, out OutputOptions) FileResult {
	fr := FileResult{FilePath: path}

	a.logger.Infof("Processing file: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		fr.Error = fmt.Errorf("failed to read input: %w", err)
		return fr
	}

	result, err := a.Analyze(ctx, path, string(data))
	if err != nil {
		fr.Error = err
		return fr
	}
	fr.Result = result

	if out.DryRun {
		a.logger.Infof("Dry run: skipping output for %s", path)
		fr.Success = true
		return fr
	}

	fr.OutputFiles, err = a.writeOutputs(result, path, fm, out)
	if err != nil {
		fr.Error = err
		return fr
	}

	archivePath, err := fm.ArchiveInputFile(path)
	if err != nil {
		// The reports are already written; archival failure is not fatal.
		a.logger.Warnf("Failed to archive %s: %v", path, err)
	} else if archivePath != path {
		fr.ArchivePath = archivePath
	}

	fr.Success = true
	return fr
}

func (a *Analyzer) writeOutputs(result *Result, path string, fm *utils.FileManager, out OutputOptions) ([]string, error) {
	doc := result.Document()
	var written []string

	for _, format := range out.Formats {
		artifacts, err := export.Artifacts(format)
		if err != nil {
			a.discard(written)
			return nil, err
		}

		for _, art := range artifacts {
			name := utils.GenerateOutputFileName(out.NameFormat, map[string]string{
				"uuid":     result.ID,
				"original": utils.BaseName(path),
				"report":   art.Report,
			}, art.Ext)

			outPath, err := writeArtifact(fm, name, art, doc)
			if err != nil {
				a.discard(written)
				return nil, fmt.Errorf("failed to write %s output: %w", format, err)
			}
			a.logger.Infof("Wrote output to: %s", outPath)
			written = append(written, outPath)
		}
	}

	return written, nil
}

// discard removes outputs of a run that failed part way.
func (a *Analyzer) discard(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			a.logger.Warnf("Failed to remove partial output %s: %v", p, err)
		}
	}
}

// writeArtifact creates one output file and writes art into it. A file whose
// write fails is removed.
func writeArtifact(fm *utils.FileManager, name string, art export.Artifact, doc export.Document) (string, error) {
	file, outPath, err := fm.CreateOutputFile(name)
	if err != nil {
		return "", err
	}
	err = art.Write(file, doc)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outPath)
		return "", err
	}
	return outPath, nil
}
