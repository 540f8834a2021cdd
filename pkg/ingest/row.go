// pkg/ingest/row.go
package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HashColumn is the synthetic identity column added to every destination
// table. When a batch has no natural key, the unique index on this column is
// the sole deduplication mechanism.
const HashColumn = "_row_hash"

// NaturalKey is the conventional name of a natural key column in the source
// data, matched case-insensitively.
const NaturalKey = "cdn"

// Batch is the normalized tabular form of one worksheet fetch. Columns keeps
// the header order so generated DDL and inserts are deterministic.
type Batch struct {
	Table   string
	Columns []string
	Records []map[string]string
}

// Empty reports whether the batch has no data rows
func (b Batch) Empty() bool {
	return len(b.Records) == 0
}

// NaturalKeyColumn returns the exact spelling of the batch's natural key
// column, or "" when the batch has none
func (b Batch) NaturalKeyColumn() string {
	for _, col := range b.Columns {
		if strings.EqualFold(col, NaturalKey) {
			return col
		}
	}
	return ""
}

// ConflictTarget returns the single column whose uniqueness governs
// deduplication for this batch: the natural key when present, otherwise the
// synthetic hash column.
func (b Batch) ConflictTarget() string {
	if key := b.NaturalKeyColumn(); key != "" {
		return key
	}
	return HashColumn
}

// hasColumn reports whether the header contains the named column exactly
func (b Batch) hasColumn(name string) bool {
	for _, col := range b.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// NeedsHash reports whether the row identity must be derived: the batch has
// no natural key and the source data does not already carry the hash column
func (b Batch) NeedsHash() bool {
	return b.NaturalKeyColumn() == "" && !b.hasColumn(HashColumn)
}

// InsertColumns returns the column list for the insert statement: the source
// columns plus, only when the identity must be derived, the hash column
func (b Batch) InsertColumns() []string {
	columns := append([]string(nil), b.Columns...)
	if b.NeedsHash() {
		columns = append(columns, HashColumn)
	}
	return columns
}

// ContentHash computes the fallback row identity: every column value rendered
// to its string form (nil/absent normalized to ""), encoded as a JSON object
// with sorted keys so the digest is independent of column order, and hashed
// with SHA-256. HTML escaping is disabled so values containing <, > or &
// hash to the same identity across runs. Rows identical in every column
// collide to the same hash and are treated as the same logical row; that is
// the documented limitation of this identity scheme.
func ContentHash(values map[string]string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(values) // map keys are sorted by encoding/json

	digest := sha256.Sum256(bytes.TrimRight(buf.Bytes(), "\n"))
	return hex.EncodeToString(digest[:])
}

// renderValue produces the canonical string form of a normalized value for
// hashing: nil → "", timestamps in a fixed layout, everything else as-is.
func renderValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
