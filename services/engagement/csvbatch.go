package engagement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// StudentIDColumn is the required ownership column in CSV uploads
const StudentIDColumn = "student_id"

// TimestampColumn is the optional reading-time column in CSV uploads
const TimestampColumn = "timestamp"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVRow is one parsed record of a batch upload
type CSVRow struct {
	Line      int
	StudentID string
	Input     map[string]interface{}
	Timestamp time.Time
}

// BatchOutcome is the per-row result of a batch prediction. Rows that
// violate plausibility ranges are skipped rather than failing the batch.
type BatchOutcome struct {
	Row        CSVRow
	Result     *Result
	Skipped    bool
	SkipReason string
}

// ParseCSV reads a batch upload and returns one row per record. The header
// must contain every required feature plus student_id; a timestamp column
// is optional and falls back to the current time per row. Unparsable or
// empty numeric cells are treated as unset, mirroring the training-side
// NaN handling.
func (p *Pipeline) ParseCSV(r io.Reader) ([]CSVRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &UnsupportedInputError{Field: "file", Reason: "could not read CSV header"}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	required := append(p.RequiredFeatures(), StudentIDColumn)
	var missing []string
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var rows []CSVRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &UnsupportedInputError{Field: "file", Reason: fmt.Sprintf("malformed CSV at line %d", line)}
		}

		row := CSVRow{
			Line:      line,
			StudentID: strings.TrimSpace(record[columns[StudentIDColumn]]),
			Input:     make(map[string]interface{}, p.bundle.FeatureCount()),
			Timestamp: time.Now(),
		}

		for _, feat := range p.bundle.NumericFeatures {
			row.Input[feat] = parseNumericCell(record[columns[feat]])
		}
		for _, feat := range p.bundle.CategoricalFeatures {
			row.Input[feat] = strings.TrimSpace(record[columns[feat]])
		}

		if idx, ok := columns[TimestampColumn]; ok {
			if ts, ok := parseTimestamp(record[idx]); ok {
				row.Timestamp = ts
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// PredictBatch runs the pipeline over every parsed row. Range violations
// skip the offending row and continue; any other validation failure aborts
// the whole batch.
func (p *Pipeline) PredictBatch(rows []CSVRow) ([]BatchOutcome, error) {
	outcomes := make([]BatchOutcome, 0, len(rows))

	for _, row := range rows {
		result, err := p.Predict(row.Input)
		if err != nil {
			var rangeErr *RangeViolationError
			if errors.As(err, &rangeErr) {
				outcomes = append(outcomes, BatchOutcome{
					Row:        row,
					Skipped:    true,
					SkipReason: rangeErr.Error(),
				})
				continue
			}
			return nil, fmt.Errorf("row %d: %w", row.Line, err)
		}

		outcomes = append(outcomes, BatchOutcome{Row: row, Result: result})
	}

	return outcomes, nil
}

func parseNumericCell(cell string) interface{} {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	return value
}

func parseTimestamp(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
