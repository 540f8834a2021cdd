// pkg/sync/runner.go
package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/sheets-ingress/pkg/config"
	"github.com/David-Botos/sheets-ingress/pkg/ingest"
)

// SpreadsheetSource is the subset of the sheets connector the runner needs
type SpreadsheetSource interface {
	// OpenByTitle resolves a spreadsheet title to its document ID
	OpenByTitle(ctx context.Context, title string) (string, error)

	// Records fetches a worksheet as header + field-name→value records
	Records(ctx context.Context, spreadsheetID, worksheet string) ([]string, []map[string]string, error)
}

// TableWriter is the subset of the upsert engine the runner needs
type TableWriter interface {
	Upsert(ctx context.Context, batch ingest.Batch) (*ingest.UpsertResult, error)
}

// Runner executes one sync run: strictly sequential over groups and
// worksheets, reusing a single spreadsheet session and database connection.
// Per-unit failures are logged and isolated; only the caller's context can
// stop the run early.
type Runner struct {
	source  SpreadsheetSource
	writer  TableWriter
	mapping config.Mapping
	logger  *zap.Logger
}

// NewRunner creates a new sync runner
func NewRunner(source SpreadsheetSource, writer TableWriter, mapping config.Mapping, logger *zap.Logger) *Runner {
	return &Runner{
		source:  source,
		writer:  writer,
		mapping: mapping,
		logger:  logger.Named("sync-runner"),
	}
}

// Run processes every configured group and worksheet in order
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	summary := NewRunSummary()
	summary.Groups = r.mapping.GroupNames()

	r.logger.Info("Starting sync run",
		zap.String("runID", summary.RunID),
		zap.Int("groups", len(summary.Groups)))

	for _, group := range summary.Groups {
		if err := ctx.Err(); err != nil {
			summary.Complete()
			return summary, fmt.Errorf("sync run cancelled: %w", err)
		}

		r.processGroup(ctx, group, summary)
	}

	summary.Complete()

	r.logger.Info("Sync run completed",
		zap.String("runID", summary.RunID),
		zap.Int("worksheets", summary.TotalWorksheets),
		zap.Int("successful", summary.SuccessfulWorksheets),
		zap.Int("failed", summary.FailedWorksheets),
		zap.Int("skipped", summary.SkippedWorksheets),
		zap.Strings("skippedGroups", summary.SkippedGroups),
		zap.Int64("rowsFetched", summary.TotalRowsFetched),
		zap.Int64("rowsInserted", summary.TotalRowsInserted),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// processGroup opens the group's spreadsheet and syncs each worksheet.
// A spreadsheet that cannot be opened skips the whole group.
func (r *Runner) processGroup(ctx context.Context, group string, summary *RunSummary) {
	cfg := r.mapping[group]

	r.logger.Info("Processing spreadsheet",
		zap.String("group", group),
		zap.String("spreadsheet", cfg.FileName))

	spreadsheetID, err := r.source.OpenByTitle(ctx, cfg.FileName)
	if err != nil {
		record := NewErrorRecord(err, ErrorCategorySpreadsheet).WithGroup(group)
		r.logger.Error("Could not open spreadsheet, skipping group",
			zap.String("group", group),
			zap.String("spreadsheet", cfg.FileName),
			zap.Error(err))
		summary.MarkGroupSkipped(group, record)
		return
	}

	for _, worksheet := range cfg.WorksheetNames() {
		job := NewSheetJob(group, cfg.FileName, worksheet, cfg.Sheets[worksheet])
		result := r.processJob(ctx, job, spreadsheetID)
		summary.AddResult(result)
	}
}

// processJob syncs a single worksheet into its destination table
func (r *Runner) processJob(ctx context.Context, job SheetJob, spreadsheetID string) *SheetResult {
	result := NewSheetResult(job)

	r.logger.Info("Loading worksheet",
		zap.String("group", job.Group),
		zap.String("worksheet", job.Worksheet),
		zap.String("table", job.Table))

	header, records, err := r.source.Records(ctx, spreadsheetID, job.Worksheet)
	if err != nil {
		record := NewErrorRecord(err, ErrorCategoryWorksheet).
			WithGroup(job.Group).
			WithWorksheet(job.Worksheet, job.Table)
		r.logger.Error("Failed loading worksheet, skipping",
			zap.String("worksheet", job.Worksheet),
			zap.String("table", job.Table),
			zap.Error(err))
		result.Fail(record)
		return result
	}

	if len(records) == 0 {
		r.logger.Info("Worksheet is empty, skipping",
			zap.String("worksheet", job.Worksheet))
		result.Skipped = true
		result.Complete(true)
		return result
	}

	batch := ingest.Batch{
		Table:   job.Table,
		Columns: header,
		Records: records,
	}

	upsert, err := r.writer.Upsert(ctx, batch)
	if upsert != nil {
		result.RowsFetched = upsert.RowsFetched
		result.RowsInserted = upsert.RowsInserted
		result.ConflictTarget = upsert.ConflictTarget
	}
	if err != nil {
		record := NewErrorRecord(err, ErrorCategoryWorksheet).
			WithGroup(job.Group).
			WithWorksheet(job.Worksheet, job.Table)
		r.logger.Error("Failed inserting worksheet rows, skipping",
			zap.String("worksheet", job.Worksheet),
			zap.String("table", job.Table),
			zap.Error(err))
		result.Fail(record)
		return result
	}

	result.Complete(true)
	return result
}
