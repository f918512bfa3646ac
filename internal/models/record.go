package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Excerpt truncation constants
const (
	ExcerptLimit   = 100   // Maximum characters kept from the trimmed content
	EllipsisMarker = "..." // Appended when the content was truncated
)

// Column names of the result table, in FileRecord field order
var columnNames = []string{"fileName", "relativePath", "excerpt", "charCount"}

// FileRecord holds the statistics extracted from one successfully read file
type FileRecord struct {
	FileName     string `yaml:"file_name" json:"fileName"`         // Base name of the file
	RelativePath string `yaml:"relative_path" json:"relativePath"` // Path relative to the scan root
	Excerpt      string `yaml:"excerpt" json:"excerpt"`            // Truncated preview of the trimmed content
	CharCount    int    `yaml:"char_count" json:"charCount"`       // Characters in the full trimmed content
}

// NewFileRecord builds a FileRecord from raw file content.
// Line endings are normalized to "\n" and the content is trimmed of
// surrounding whitespace; CharCount always reflects the full trimmed
// content regardless of excerpt truncation.
func NewFileRecord(fileName, relativePath, content string) FileRecord {
	trimmed := strings.TrimFunc(NormalizeNewlines(content), isStripSpace)
	return FileRecord{
		FileName:     fileName,
		RelativePath: relativePath,
		Excerpt:      Excerpt(trimmed),
		CharCount:    utf8.RuneCountInString(trimmed),
	}
}

// NormalizeNewlines converts "\r\n" and lone "\r" line endings to "\n".
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// isStripSpace reports whether r is trimmed from content edges.
// The information separators U+001C..U+001F count as whitespace here
// even though unicode.IsSpace rejects them.
func isStripSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Excerpt returns the first ExcerptLimit characters of s followed by
// EllipsisMarker, or s itself when it is not longer than ExcerptLimit.
func Excerpt(s string) string {
	count := 0
	for i := range s {
		if count == ExcerptLimit {
			return s[:i] + EllipsisMarker
		}
		count++
	}
	return s
}

// Values returns the record's fields in column order
func (r FileRecord) Values() []interface{} {
	return []interface{}{r.FileName, r.RelativePath, r.Excerpt, r.CharCount}
}

// ResultTable is the ordered set of records produced by one run.
// Rows appear in discovery order.
type ResultTable struct {
	Records []FileRecord
}

// NewResultTable wraps records in a ResultTable, copying the slice so the
// table does not share backing storage with the producer.
func NewResultTable(records []FileRecord) ResultTable {
	rows := make([]FileRecord, len(records))
	copy(rows, records)
	return ResultTable{Records: rows}
}

// Len returns the number of rows
func (t ResultTable) Len() int {
	return len(t.Records)
}

// IsEmpty reports whether the table has no rows
func (t ResultTable) IsEmpty() bool {
	return len(t.Records) == 0
}

// Headers returns the column names of the table
func (t ResultTable) Headers() []string {
	headers := make([]string, len(columnNames))
	copy(headers, columnNames)
	return headers
}

// Rows returns every record as a row of cell values
func (t ResultTable) Rows() [][]interface{} {
	rows := make([][]interface{}, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, r.Values())
	}
	return rows
}

// ColumnNames returns the default column names shared by every table
func ColumnNames() []string {
	return ResultTable{}.Headers()
}
