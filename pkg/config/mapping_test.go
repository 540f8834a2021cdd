// pkg/config/mapping_test.go
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMapping(t *testing.T) {
	path := writeMapping(t, `{
		"assets": {
			"file_name": "Asset Tracker",
			"sheet_file": {
				"Published": "published_assets",
				"Drafts": "draft_assets"
			}
		},
		"intake": {
			"file_name": "Intake Form Responses",
			"sheet_file": {
				"Form Responses 1": "intake_submissions"
			}
		}
	}`)

	mapping, err := LoadMapping(path)
	if err != nil {
		t.Fatalf("LoadMapping() error = %v", err)
	}

	if len(mapping) != 2 {
		t.Fatalf("got %d groups, want 2", len(mapping))
	}

	group := mapping["assets"]
	if group.FileName != "Asset Tracker" {
		t.Errorf("FileName = %q, want Asset Tracker", group.FileName)
	}
	if group.Sheets["Published"] != "published_assets" {
		t.Errorf("table for Published = %q, want published_assets", group.Sheets["Published"])
	}
}

func TestLoadMappingErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid JSON", `{"assets": `},
		{"empty mapping", `{}`},
		{"missing file_name", `{"assets": {"sheet_file": {"Published": "published_assets"}}}`},
		{"empty destination table", `{"assets": {"file_name": "Asset Tracker", "sheet_file": {"Published": ""}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMapping(t, tt.content)
			if _, err := LoadMapping(path); err == nil {
				t.Error("LoadMapping() succeeded, want error")
			}
		})
	}
}

func TestLoadMappingMissingFile(t *testing.T) {
	if _, err := LoadMapping(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadMapping() succeeded on a missing file")
	}
}

func TestGroupNamesSorted(t *testing.T) {
	mapping := Mapping{
		"zulu":  {FileName: "Z"},
		"alpha": {FileName: "A"},
		"mike":  {FileName: "M"},
	}

	want := []string{"alpha", "mike", "zulu"}
	if got := mapping.GroupNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("GroupNames() = %v, want %v", got, want)
	}
}

func TestWorksheetNamesSorted(t *testing.T) {
	group := SheetGroup{
		FileName: "Asset Tracker",
		Sheets: map[string]string{
			"Drafts":    "draft_assets",
			"Archived":  "archived_assets",
			"Published": "published_assets",
		},
	}

	want := []string{"Archived", "Drafts", "Published"}
	if got := group.WorksheetNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("WorksheetNames() = %v, want %v", got, want)
	}
}
