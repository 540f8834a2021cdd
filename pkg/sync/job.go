// pkg/sync/job.go
package sync

import (
	"time"

	"github.com/google/uuid"
)

// SheetJob represents one worksheet→table sync unit
type SheetJob struct {
	ID          string    // Unique job identifier
	Group       string    // Logical group name from the mapping
	Spreadsheet string    // Spreadsheet title
	Worksheet   string    // Worksheet name within the spreadsheet
	Table       string    // Destination table name
	CreatedAt   time.Time // Job creation timestamp
}

// NewSheetJob creates a new sheet job
func NewSheetJob(group, spreadsheet, worksheet, table string) SheetJob {
	return SheetJob{
		ID:          uuid.New().String(),
		Group:       group,
		Spreadsheet: spreadsheet,
		Worksheet:   worksheet,
		Table:       table,
		CreatedAt:   time.Now(),
	}
}

// SheetResult represents the outcome of one worksheet sync
type SheetResult struct {
	JobID          string
	Group          string
	Worksheet      string
	Table          string
	Success        bool
	Skipped        bool // empty worksheet, nothing to do
	RowsFetched    int64
	RowsInserted   int64
	ConflictTarget string
	Error          *ErrorRecord
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// NewSheetResult initializes a result for a job
func NewSheetResult(job SheetJob) *SheetResult {
	return &SheetResult{
		JobID:     job.ID,
		Group:     job.Group,
		Worksheet: job.Worksheet,
		Table:     job.Table,
		StartTime: time.Now(),
	}
}

// Complete marks the sync as complete and calculates duration
func (r *SheetResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// Fail records the error and marks the result failed
func (r *SheetResult) Fail(record ErrorRecord) {
	r.Error = &record
	r.Complete(false)
}

// RunSummary represents the final summary of one sync run
type RunSummary struct {
	RunID                string
	Groups               []string
	SkippedGroups        []string
	TotalWorksheets      int
	SuccessfulWorksheets int
	FailedWorksheets     int
	SkippedWorksheets    int
	TotalRowsFetched     int64
	TotalRowsInserted    int64
	Errors               []ErrorRecord
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}

// NewRunSummary initializes a new run summary
func NewRunSummary() *RunSummary {
	return &RunSummary{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
}

// AddResult incorporates a worksheet result into the summary
func (s *RunSummary) AddResult(result *SheetResult) {
	s.TotalWorksheets++
	s.TotalRowsFetched += result.RowsFetched
	s.TotalRowsInserted += result.RowsInserted

	switch {
	case result.Skipped:
		s.SkippedWorksheets++
	case result.Success:
		s.SuccessfulWorksheets++
	default:
		s.FailedWorksheets++
		if result.Error != nil {
			s.Errors = append(s.Errors, *result.Error)
		}
	}
}

// MarkGroupSkipped records a group whose spreadsheet could not be opened
func (s *RunSummary) MarkGroupSkipped(group string, record ErrorRecord) {
	s.SkippedGroups = append(s.SkippedGroups, group)
	s.Errors = append(s.Errors, record)
}

// Complete marks the run as complete and calculates duration
func (s *RunSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}
