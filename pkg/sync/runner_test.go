// pkg/sync/runner_test.go
package sync

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/David-Botos/sheets-ingress/pkg/config"
	"github.com/David-Botos/sheets-ingress/pkg/ingest"
)

type fakeSource struct {
	ids        map[string]string              // spreadsheet title → document ID
	worksheets map[string][]map[string]string // worksheet name → records
	headers    map[string][]string
	failOpen   map[string]bool
	failFetch  map[string]bool
}

func (f *fakeSource) OpenByTitle(_ context.Context, title string) (string, error) {
	if f.failOpen[title] {
		return "", errors.New("spreadsheet not found")
	}
	return f.ids[title], nil
}

func (f *fakeSource) Records(_ context.Context, _, worksheet string) ([]string, []map[string]string, error) {
	if f.failFetch[worksheet] {
		return nil, nil, errors.New("read failed")
	}
	return f.headers[worksheet], f.worksheets[worksheet], nil
}

type fakeWriter struct {
	batches   []ingest.Batch
	failTable map[string]bool
}

func (f *fakeWriter) Upsert(_ context.Context, batch ingest.Batch) (*ingest.UpsertResult, error) {
	f.batches = append(f.batches, batch)
	if f.failTable[batch.Table] {
		return &ingest.UpsertResult{Table: batch.Table}, errors.New("insert failed")
	}
	return &ingest.UpsertResult{
		Table:          batch.Table,
		ConflictTarget: batch.ConflictTarget(),
		RowsFetched:    int64(len(batch.Records)),
		RowsInserted:   int64(len(batch.Records)),
	}, nil
}

func testMapping() config.Mapping {
	return config.Mapping{
		"assets": {
			FileName: "Asset Tracker",
			Sheets: map[string]string{
				"Drafts":    "draft_assets",
				"Published": "published_assets",
			},
		},
		"intake": {
			FileName: "Intake Form Responses",
			Sheets: map[string]string{
				"Form Responses 1": "intake_submissions",
			},
		},
	}
}

func testSource() *fakeSource {
	records := []map[string]string{{"title": "report"}}
	header := []string{"title"}
	return &fakeSource{
		ids: map[string]string{
			"Asset Tracker":         "doc-assets",
			"Intake Form Responses": "doc-intake",
		},
		worksheets: map[string][]map[string]string{
			"Drafts":           records,
			"Published":        records,
			"Form Responses 1": records,
		},
		headers: map[string][]string{
			"Drafts":           header,
			"Published":        header,
			"Form Responses 1": header,
		},
		failOpen:  map[string]bool{},
		failFetch: map[string]bool{},
	}
}

func TestRunAllWorksheets(t *testing.T) {
	source := testSource()
	writer := &fakeWriter{failTable: map[string]bool{}}

	runner := NewRunner(source, writer, testMapping(), zap.NewNop())
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.TotalWorksheets != 3 {
		t.Errorf("TotalWorksheets = %d, want 3", summary.TotalWorksheets)
	}
	if summary.SuccessfulWorksheets != 3 {
		t.Errorf("SuccessfulWorksheets = %d, want 3", summary.SuccessfulWorksheets)
	}
	if summary.FailedWorksheets != 0 {
		t.Errorf("FailedWorksheets = %d, want 0", summary.FailedWorksheets)
	}
	if summary.TotalRowsInserted != 3 {
		t.Errorf("TotalRowsInserted = %d, want 3", summary.TotalRowsInserted)
	}
	if len(writer.batches) != 3 {
		t.Errorf("writer saw %d batches, want 3", len(writer.batches))
	}
}

func TestRunDeterministicOrder(t *testing.T) {
	source := testSource()
	writer := &fakeWriter{failTable: map[string]bool{}}

	runner := NewRunner(source, writer, testMapping(), zap.NewNop())
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// groups sorted, then worksheets sorted within each group
	want := []string{"draft_assets", "published_assets", "intake_submissions"}
	for i, batch := range writer.batches {
		if batch.Table != want[i] {
			t.Errorf("batch %d table = %q, want %q", i, batch.Table, want[i])
		}
	}
}

func TestRunSkipsGroupWhenSpreadsheetMissing(t *testing.T) {
	source := testSource()
	source.failOpen["Asset Tracker"] = true
	writer := &fakeWriter{failTable: map[string]bool{}}

	runner := NewRunner(source, writer, testMapping(), zap.NewNop())
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(summary.SkippedGroups) != 1 || summary.SkippedGroups[0] != "assets" {
		t.Errorf("SkippedGroups = %v, want [assets]", summary.SkippedGroups)
	}
	// the intake group still runs
	if summary.SuccessfulWorksheets != 1 {
		t.Errorf("SuccessfulWorksheets = %d, want 1", summary.SuccessfulWorksheets)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(summary.Errors))
	}
	if summary.Errors[0].Category != ErrorCategorySpreadsheet {
		t.Errorf("error category = %v, want Spreadsheet", summary.Errors[0].Category)
	}
}

func TestRunSkipsWorksheetOnFetchError(t *testing.T) {
	source := testSource()
	source.failFetch["Drafts"] = true
	writer := &fakeWriter{failTable: map[string]bool{}}

	runner := NewRunner(source, writer, testMapping(), zap.NewNop())
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.FailedWorksheets != 1 {
		t.Errorf("FailedWorksheets = %d, want 1", summary.FailedWorksheets)
	}
	// the remaining worksheets in the same group and the other group still run
	if summary.SuccessfulWorksheets != 2 {
		t.Errorf("SuccessfulWorksheets = %d, want 2", summary.SuccessfulWorksheets)
	}
	if summary.Errors[0].Category != ErrorCategoryWorksheet {
		t.Errorf("error category = %v, want Worksheet", summary.Errors[0].Category)
	}
	if summary.Errors[0].Table != "draft_assets" {
		t.Errorf("error table = %q, want draft_assets", summary.Errors[0].Table)
	}
}

func TestRunSkipsWorksheetOnInsertError(t *testing.T) {
	source := testSource()
	writer := &fakeWriter{failTable: map[string]bool{"published_assets": true}}

	runner := NewRunner(source, writer, testMapping(), zap.NewNop())
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.FailedWorksheets != 1 {
		t.Errorf("FailedWorksheets = %d, want 1", summary.FailedWorksheets)
	}
	if summary.SuccessfulWorksheets != 2 {
		t.Errorf("SuccessfulWorksheets = %d, want 2", summary.SuccessfulWorksheets)
	}
}

func TestRunSkipsEmptyWorksheet(t *testing.T) {
	source := testSource()
	source.worksheets["Drafts"] = nil
	writer := &fakeWriter{failTable: map[string]bool{}}

	runner := NewRunner(source, writer, testMapping(), zap.NewNop())
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.SkippedWorksheets != 1 {
		t.Errorf("SkippedWorksheets = %d, want 1", summary.SkippedWorksheets)
	}
	if summary.FailedWorksheets != 0 {
		t.Errorf("FailedWorksheets = %d, want 0", summary.FailedWorksheets)
	}
	// an empty worksheet never reaches the writer
	for _, batch := range writer.batches {
		if batch.Table == "draft_assets" {
			t.Error("empty worksheet was sent to the writer")
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	source := testSource()
	writer := &fakeWriter{failTable: map[string]bool{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(source, writer, testMapping(), zap.NewNop())
	summary, err := runner.Run(ctx)
	if err == nil {
		t.Fatal("Run() with cancelled context succeeded, want error")
	}
	if summary.TotalWorksheets != 0 {
		t.Errorf("TotalWorksheets = %d, want 0 after immediate cancellation", summary.TotalWorksheets)
	}
}
