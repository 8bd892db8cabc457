// Package ingest parses loosely-structured delimited tables into a
// normalized RawTable before classification and column mapping.
package ingest

import (
	"encoding/csv"
	"strings"

	qerrors "cable-quote/pkg/errors"
)

// RawTable is a parsed upload: a header row plus ordered data rows.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// RowMaps returns the rows keyed by original header, preserving order.
func (t *RawTable) RowMaps() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				m[h] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, m)
	}
	return out
}

// ParseTable parses UTF-8 delimited text: one header row followed by one
// logical record per row. The delimiter (comma or tab) is autodetected.
// Empty or malformed input is rejected with a structured error so the
// caller can surface it before any store mutation.
func ParseTable(text string) (*RawTable, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return nil, qerrors.NewEmptyTableError("input is empty")
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &qerrors.QuoteError{
			Code:        qerrors.ErrCodeMalformedTable,
			Message:     "could not parse table: " + err.Error(),
			Severity:    qerrors.SeverityError,
			Recoverable: true,
		}
	}
	if len(records) == 0 {
		return nil, qerrors.NewEmptyTableError("no rows found")
	}

	headers := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		headers = append(headers, strings.TrimSpace(h))
	}
	if len(headers) == 0 || allEmpty(headers) {
		return nil, qerrors.NewEmptyTableError("header row is blank")
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if allEmpty(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, qerrors.NewEmptyTableError("no data rows below the header")
	}

	return &RawTable{Headers: headers, Rows: rows}, nil
}

// detectDelimiter picks tab when the first line is tab-separated,
// otherwise comma.
func detectDelimiter(text string) rune {
	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}
	if strings.Count(firstLine, "\t") > strings.Count(firstLine, ",") {
		return '\t'
	}
	return ','
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
