// pkg/ingest/schema.go
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/sheets-ingress/pkg/connector"
)

// SchemaManager ensures destination tables exist with columns inferred from
// the current batch. It never alters an existing table: column drift against
// the recorded schema is reported by the registry, not applied.
type SchemaManager struct {
	db     connector.DatabaseConnector
	logger *zap.Logger
}

// NewSchemaManager creates a new schema manager
func NewSchemaManager(db connector.DatabaseConnector, logger *zap.Logger) *SchemaManager {
	return &SchemaManager{
		db:     db,
		logger: logger.Named("schema-manager"),
	}
}

// InferColumnType maps a spreadsheet column name to a PostgreSQL type.
// Columns following the timestamp naming conventions become TIMESTAMP;
// everything else is unconstrained TEXT.
func InferColumnType(name string) string {
	if IsTimestampColumn(name) {
		return "TIMESTAMP"
	}
	return "TEXT"
}

// EnsureTable creates the destination table and its governing unique index if
// they do not exist. Exactly one uniqueness constraint is created per table —
// on conflictTarget — so conflict resolution is never ambiguous. Repeated
// calls against an unchanged schema are no-ops.
func (m *SchemaManager) EnsureTable(ctx context.Context, table string, columns []string, conflictTarget string) error {
	defs := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		if col == HashColumn {
			continue
		}
		defs = append(defs, fmt.Sprintf("%s %s", pq.QuoteIdentifier(col), InferColumnType(col)))
	}
	defs = append(defs, fmt.Sprintf("%s TEXT", pq.QuoteIdentifier(HashColumn)))

	createSQL := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		pq.QuoteIdentifier(table),
		strings.Join(defs, ", "),
	)

	if _, err := m.db.ExecWithTimeout(ctx, createSQL, time.Minute); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	indexSQL := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
		pq.QuoteIdentifier(UniqueIndexName(table, conflictTarget)),
		pq.QuoteIdentifier(table),
		pq.QuoteIdentifier(conflictTarget),
	)

	if _, err := m.db.ExecWithTimeout(ctx, indexSQL, time.Minute); err != nil {
		return fmt.Errorf("failed to create unique index on %s(%s): %w", table, conflictTarget, err)
	}

	m.logger.Debug("Ensured destination table",
		zap.String("table", table),
		zap.Int("columns", len(defs)),
		zap.String("conflictTarget", conflictTarget))

	return nil
}

// UniqueIndexName derives the name of the governing unique index for a table
func UniqueIndexName(table, conflictTarget string) string {
	if conflictTarget == HashColumn {
		return table + "_rowhash_uniq"
	}

	target := strings.ToLower(strings.ReplaceAll(conflictTarget, " ", "_"))
	return table + "_" + target + "_uniq"
}
