package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

const (
	utf8BOM       = "\uFEFF"
	csvLineEnding = "\r\n"
	csvTimeLayout = "2006-01-02 15:04"
)

// Column is one CSV column.
type Column struct {
	Value  func(models.Issue) string
	Header string
}

// DefaultColumns is the standard issue export layout. Creation times are
// written in loc.
func DefaultColumns(dir ProjectDirectory, loc *time.Location) []Column {
	if loc == nil {
		loc = time.Local
	}
	return []Column{
		{Header: "課題番号", Value: func(i models.Issue) string { return i.Key }},
		{Header: "タイトル", Value: func(i models.Issue) string { return i.Summary }},
		{Header: "プロジェクト", Value: func(i models.Issue) string { return projectName(i, dir) }},
		{Header: "優先度", Value: func(i models.Issue) string { return i.Priority.Or("") }},
		{Header: "担当者", Value: func(i models.Issue) string { return i.Assignee.Or("") }},
		{Header: "作成日時", Value: func(i models.Issue) string { return formatCreated(i.Created, loc) }},
		{Header: "ステータス", Value: func(i models.Issue) string { return i.Status.Or("") }},
	}
}

func projectName(issue models.Issue, dir ProjectDirectory) string {
	id, ok := projectID(issue)
	if !ok {
		return ""
	}
	if p, ok := dir.Lookup(id); ok {
		return p.Name
	}
	return strconv.FormatInt(id, 10)
}

func formatCreated(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(csvTimeLayout)
}

// ToCSV renders issues with a header row. Every field is quoted, embedded
// quotes are doubled, records end with CRLF and the output starts with a
// UTF-8 byte order mark so spreadsheet tools detect the encoding.
func ToCSV(issues []models.Issue, columns []Column) string {
	var b strings.Builder
	b.WriteString(utf8BOM)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}
	writeRecord(&b, headers)

	fields := make([]string, len(columns))
	for _, issue := range issues {
		for i, col := range columns {
			fields[i] = col.Value(issue)
		}
		b.WriteString(csvLineEnding)
		writeRecord(&b, fields)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

// DailyFileName returns "<prefix>_<YYYY-MM-DD>.csv".
func DailyFileName(prefix string, date models.Date) string {
	return fmt.Sprintf("%s_%s.csv", prefix, date.String())
}

// MonthlyFileName returns "<prefix>_<YYYY-MM>.csv".
func MonthlyFileName(prefix string, ym models.YearMonth) string {
	return fmt.Sprintf("%s_%s.csv", prefix, ym.String())
}

// WriteCSVFile writes content to dir/name through a temp file and rename,
// and returns the final path.
func WriteCSVFile(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, name)

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}
	return path, nil
}
