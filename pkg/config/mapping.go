// pkg/config/mapping.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// SheetGroup maps one spreadsheet document to its destination tables
type SheetGroup struct {
	FileName string            `json:"file_name"`  // spreadsheet title in Drive
	Sheets   map[string]string `json:"sheet_file"` // worksheet name → destination table
}

// Mapping is the full sync configuration: logical group name → sheet group
type Mapping map[string]SheetGroup

// LoadMapping reads and validates the sheet→table mapping document
func LoadMapping(path string) (Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	var mapping Mapping
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}

	if len(mapping) == 0 {
		return nil, fmt.Errorf("mapping file %s defines no sheet groups", path)
	}

	for group, cfg := range mapping {
		if cfg.FileName == "" {
			return nil, fmt.Errorf("group %q is missing file_name", group)
		}
		for worksheet, table := range cfg.Sheets {
			if table == "" {
				return nil, fmt.Errorf("group %q worksheet %q has no destination table", group, worksheet)
			}
		}
	}

	return mapping, nil
}

// GroupNames returns the group names in a stable order so runs are
// deterministic regardless of map iteration
func (m Mapping) GroupNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorksheetNames returns the group's worksheet names in a stable order
func (g SheetGroup) WorksheetNames() []string {
	names := make([]string, 0, len(g.Sheets))
	for name := range g.Sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
