// pkg/ingest/upsert.go
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/sheets-ingress/pkg/connector"
)

// Engine is the deduplicating upsert engine. It normalizes a fetched batch,
// attaches the content-hash identity when no natural key exists, ensures the
// destination schema, and bulk-inserts with conflict-skipping on the single
// governing uniqueness constraint. There is no pre-read against existing
// rows: deduplication is deferred entirely to the database constraint.
type Engine struct {
	db        connector.DatabaseConnector
	schema    *SchemaManager
	registry  *SchemaRegistry
	logger    *zap.Logger
	chunkSize int
}

// NewEngine creates a new upsert engine
func NewEngine(
	db connector.DatabaseConnector,
	schema *SchemaManager,
	registry *SchemaRegistry,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:        db,
		schema:    schema,
		registry:  registry,
		logger:    logger.Named("upsert-engine"),
		chunkSize: 500,
	}
}

// WithChunkSize sets the number of rows per INSERT statement
func (e *Engine) WithChunkSize(chunkSize int) *Engine {
	if chunkSize > 0 {
		e.chunkSize = chunkSize
	}
	return e
}

// UpsertResult reports the outcome of one batch upsert
type UpsertResult struct {
	Table          string
	ConflictTarget string
	RowsFetched    int64
	RowsInserted   int64
}

// Upsert writes the batch to its destination table, inserting only rows whose
// identity value is not already present. The batch is all-or-nothing: any
// insertion error rolls the whole worksheet back.
func (e *Engine) Upsert(ctx context.Context, batch Batch) (*UpsertResult, error) {
	result := &UpsertResult{
		Table:          batch.Table,
		ConflictTarget: batch.ConflictTarget(),
		RowsFetched:    int64(len(batch.Records)),
	}

	if batch.Empty() {
		e.logger.Info("No data to insert", zap.String("table", batch.Table))
		return result, nil
	}

	// When the source worksheet already carries the hash column its values
	// are inserted as-is instead of deriving a second copy
	withHash := batch.NeedsHash()
	insertColumns := batch.InsertColumns()

	rows := e.normalizeRecords(batch, withHash)

	if err := e.schema.EnsureTable(ctx, batch.Table, batch.Columns, result.ConflictTarget); err != nil {
		return result, err
	}

	if err := e.registry.Record(ctx, batch.Table, batch.Columns, result.ConflictTarget); err != nil {
		// Drift reporting must not fail the batch
		e.logger.Warn("Failed to record schema observation",
			zap.String("table", batch.Table),
			zap.Error(err))
	}

	inserted, err := e.insertRows(ctx, batch.Table, insertColumns, result.ConflictTarget, rows)
	if err != nil {
		return result, fmt.Errorf("failed to insert rows into %s: %w", batch.Table, err)
	}

	result.RowsInserted = inserted

	e.logger.Info("Upserted rows",
		zap.String("table", batch.Table),
		zap.String("conflictTarget", result.ConflictTarget),
		zap.Int64("rowsFetched", result.RowsFetched),
		zap.Int64("rowsInserted", result.RowsInserted),
		zap.Int64("rowsSkipped", result.RowsFetched-result.RowsInserted))

	return result, nil
}

// normalizeRecords converts raw records to insert values in column order.
// Timestamp-typed columns are parsed permissively — unparseable values become
// NULL rather than failing the batch — and the content hash, when needed, is
// computed over the post-coercion values.
func (e *Engine) normalizeRecords(batch Batch, withHash bool) [][]interface{} {
	rows := make([][]interface{}, 0, len(batch.Records))

	for _, record := range batch.Records {
		values := make([]interface{}, 0, len(batch.Columns)+1)
		rendered := make(map[string]string, len(batch.Columns))

		for _, col := range batch.Columns {
			raw := record[col]

			var value interface{} = raw
			if IsTimestampColumn(col) {
				if t, ok := CoerceTimestamp(raw); ok {
					value = t
				} else {
					value = nil
				}
			}

			values = append(values, value)
			rendered[col] = renderValue(value)
		}

		if withHash {
			values = append(values, ContentHash(rendered))
		}

		rows = append(rows, values)
	}

	return rows
}

// maxBindParams is PostgreSQL's limit on bind parameters per statement
const maxBindParams = 65535

// rowsPerChunk caps the configured chunk size so one statement's parameter
// count (rows times columns) never exceeds the bind-parameter limit
func rowsPerChunk(chunkSize, columns int) int {
	if columns == 0 {
		return chunkSize
	}
	if limit := maxBindParams / columns; chunkSize > limit {
		chunkSize = limit
	}
	if chunkSize < 1 {
		chunkSize = 1
	}
	return chunkSize
}

// insertRows bulk-inserts all rows in a single transaction with
// ON CONFLICT DO NOTHING on the governing target. The returned count comes
// from the database's affected-row count, not from inference.
func (e *Engine) insertRows(
	ctx context.Context,
	table string,
	columns []string,
	conflictTarget string,
	rows [][]interface{},
) (inserted int64, err error) {
	tx, err := e.db.DB().BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
	}

	step := rowsPerChunk(e.chunkSize, len(columns))

	for start := 0; start < len(rows); start += step {
		end := start + step
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]interface{}, 0, len(chunk)*len(columns))

		for i, row := range chunk {
			rowPlaceholders := make([]string, len(columns))
			for j, val := range row {
				paramIndex := i*len(columns) + j + 1
				rowPlaceholders[j] = fmt.Sprintf("$%d", paramIndex)
				args = append(args, val)
			}
			placeholders[i] = fmt.Sprintf("(%s)", strings.Join(rowPlaceholders, ", "))
		}

		query := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO NOTHING",
			pq.QuoteIdentifier(table),
			strings.Join(quoted, ", "),
			strings.Join(placeholders, ", "),
			pq.QuoteIdentifier(conflictTarget),
		)

		result, execErr := tx.ExecContext(ctx, query, args...)
		if execErr != nil {
			err = fmt.Errorf("chunk insert failed: %w", execErr)
			return 0, err
		}

		affected, raErr := result.RowsAffected()
		if raErr != nil {
			e.logger.Warn("Couldn't get rows affected", zap.Error(raErr))
		} else {
			inserted += affected
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}
