// pkg/sync/errors.go
package sync

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCategory defines categories of errors during a sync run
type ErrorCategory int

const (
	// Error categories with increasing severity. Worksheet and spreadsheet
	// errors are isolated to their unit of work; connection and config
	// errors are fatal to the run. Nothing is ever retried.
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWorksheet
	ErrorCategorySpreadsheet
	ErrorCategoryConnection
	ErrorCategoryConfig
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWorksheet:
		return "Worksheet"
	case ErrorCategorySpreadsheet:
		return "Spreadsheet"
	case ErrorCategoryConnection:
		return "Connection"
	case ErrorCategoryConfig:
		return "Config"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// Fatal reports whether errors in this category abort the whole run
func (ec ErrorCategory) Fatal() bool {
	return ec >= ErrorCategoryConnection
}

// ErrorRecord represents a single error during a sync run
type ErrorRecord struct {
	Category  ErrorCategory
	Group     string
	Worksheet string
	Table     string
	Err       error
	Message   string // Derived from Err but stored for serialization
	Timestamp time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Err:       err,
		Timestamp: time.Now(),
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithGroup adds group information to the error record
func (r ErrorRecord) WithGroup(group string) ErrorRecord {
	r.Group = group
	return r
}

// WithWorksheet adds worksheet/table information to the error record
func (r ErrorRecord) WithWorksheet(worksheet, table string) ErrorRecord {
	r.Worksheet = worksheet
	r.Table = table
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.Group != "" {
		sb.WriteString(fmt.Sprintf("Group: %s ", r.Group))
	}

	if r.Worksheet != "" {
		sb.WriteString(fmt.Sprintf("Worksheet: %s ", r.Worksheet))
	}

	if r.Table != "" {
		sb.WriteString(fmt.Sprintf("Table: %s ", r.Table))
	}

	if r.Err != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Err.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return sb.String()
}
