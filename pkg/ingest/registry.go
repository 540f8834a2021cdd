// pkg/ingest/registry.go
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sheets-ingress/pkg/connector"
)

// SchemaRegistry keeps a versioned record of the column set observed for each
// destination table. Because destination schemas are inferred per batch,
// source spreadsheets can silently gain or lose columns between runs; the
// registry turns that drift into a reported condition instead of leaving it
// invisible.
type SchemaRegistry struct {
	db     connector.DatabaseConnector
	logger *zap.Logger
}

// registryTable is where observed schema versions are recorded
const registryTable = "sheet_sync_schema"

// NewSchemaRegistry creates a registry and ensures its tracking table exists
func NewSchemaRegistry(db connector.DatabaseConnector, logger *zap.Logger) (*SchemaRegistry, error) {
	if db == nil {
		return nil, errors.New("database connector cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	registry := &SchemaRegistry{
		db:     db,
		logger: logger.Named("schema-registry"),
	}

	if err := registry.setupRegistryTable(); err != nil {
		return nil, fmt.Errorf("failed to setup schema registry table: %w", err)
	}

	return registry, nil
}

// setupRegistryTable ensures the sheet_sync_schema tracking table exists
func (r *SchemaRegistry) setupRegistryTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS sheet_sync_schema (
			id SERIAL PRIMARY KEY,
			table_name TEXT NOT NULL,
			version INTEGER NOT NULL,
			columns JSONB NOT NULL,
			conflict_target TEXT NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (table_name, version)
		)
	`
	if _, err := r.db.ExecWithTimeout(ctx, createTableSQL, 10*time.Second); err != nil {
		return fmt.Errorf("failed to create registry table: %w", err)
	}

	r.logger.Info("Ensured sheet_sync_schema table exists")
	return nil
}

// schemaVersion is the latest recorded schema for a destination table
type schemaVersion struct {
	Version int
	Columns []byte
}

// latestVersion reads the most recently recorded schema for a table. The
// second return value is false when the table has never been observed.
func (r *SchemaRegistry) latestVersion(ctx context.Context, table string) (schemaVersion, bool, error) {
	var latest schemaVersion

	rows, err := r.db.QueryWithTimeout(ctx,
		"SELECT version, columns FROM "+registryTable+" WHERE table_name = $1 ORDER BY version DESC LIMIT 1",
		10*time.Second, table)
	if err != nil {
		return latest, false, fmt.Errorf("failed to read schema registry for %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return latest, false, rows.Err()
	}

	if err := rows.Scan(&latest.Version, &latest.Columns); err != nil {
		return latest, false, fmt.Errorf("failed to scan schema registry row for %s: %w", table, err)
	}

	return latest, true, nil
}

// Record compares the batch's column set with the last recorded version for
// the table. A first observation is recorded as version 1; a changed column
// set is logged as drift and recorded as a new version. The destination table
// itself is never altered.
func (r *SchemaRegistry) Record(ctx context.Context, table string, columns []string, conflictTarget string) error {
	observed := append([]string(nil), columns...)
	sort.Strings(observed)

	latest, found, err := r.latestVersion(ctx, table)
	if err != nil {
		return err
	}

	if !found {
		if err := r.insertVersion(ctx, table, 1, observed, conflictTarget); err != nil {
			return err
		}
		r.logger.Info("Recorded initial schema",
			zap.String("table", table),
			zap.Int("columns", len(observed)))
		return nil
	}

	var recorded []string
	if err := json.Unmarshal(latest.Columns, &recorded); err != nil {
		return fmt.Errorf("failed to decode recorded schema for %s: %w", table, err)
	}

	added, removed := diffColumns(recorded, observed)
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	r.logger.Warn("Source schema drift detected",
		zap.String("table", table),
		zap.Int("previousVersion", latest.Version),
		zap.Strings("addedColumns", added),
		zap.Strings("removedColumns", removed))

	return r.insertVersion(ctx, table, latest.Version+1, observed, conflictTarget)
}

// insertVersion writes a schema version row
func (r *SchemaRegistry) insertVersion(ctx context.Context, table string, version int, columns []string, conflictTarget string) error {
	blob, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("failed to encode column set for %s: %w", table, err)
	}

	_, err = r.db.ExecWithTimeout(ctx,
		"INSERT INTO "+registryTable+" (table_name, version, columns, conflict_target) VALUES ($1, $2, $3, $4)",
		10*time.Second,
		table, version, blob, conflictTarget)
	if err != nil {
		return fmt.Errorf("failed to record schema version %d for %s: %w", version, table, err)
	}

	return nil
}

// diffColumns returns the columns present in observed but not recorded, and
// vice versa. Both inputs must be sorted.
func diffColumns(recorded, observed []string) (added, removed []string) {
	seen := make(map[string]bool, len(recorded))
	for _, col := range recorded {
		seen[col] = true
	}

	current := make(map[string]bool, len(observed))
	for _, col := range observed {
		current[col] = true
		if !seen[col] {
			added = append(added, col)
		}
	}

	for _, col := range recorded {
		if !current[col] {
			removed = append(removed, col)
		}
	}

	return added, removed
}
