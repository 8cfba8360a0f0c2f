package engagement

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `HeartRate,SkinConductance,EEG,student_id,timestamp
62.4,0.71,13.6,S-1001,2025-03-01T10:00:00Z
48.0,0.35,6.2,S-1001,
150,0.5,13.6,S-1002,2025-03-01
33.5,0.12,2.8,S-1003,2025-03-01 10:30:00
`

func TestParseCSV(t *testing.T) {
	p := testPipeline()

	rows, err := p.ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	if rows[0].Line != 2 {
		t.Errorf("expected first data row at line 2, got %d", rows[0].Line)
	}
	if rows[0].StudentID != "S-1001" {
		t.Errorf("unexpected student id %q", rows[0].StudentID)
	}

	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if !rows[0].Timestamp.Equal(want) {
		t.Errorf("expected parsed timestamp %v, got %v", want, rows[0].Timestamp)
	}

	// Empty timestamp cell falls back to the current time
	if rows[1].Timestamp.IsZero() {
		t.Error("expected fallback timestamp, got zero value")
	}
}

func TestParseCSVMissingColumns(t *testing.T) {
	p := testPipeline()

	_, err := p.ParseCSV(strings.NewReader("HeartRate,SkinConductance\n62.4,0.71\n"))

	var missingErr *MissingColumnsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missingErr.Columns) != 2 {
		t.Fatalf("expected 2 missing columns, got %v", missingErr.Columns)
	}
	if missingErr.Columns[0] != "EEG" || missingErr.Columns[1] != "student_id" {
		t.Errorf("unexpected missing columns: %v", missingErr.Columns)
	}
}

func TestParseCSVEmptyCellsAreUnset(t *testing.T) {
	p := testPipeline()

	csvData := "HeartRate,SkinConductance,EEG,student_id\n,0.71,13.6,S-1001\n"
	rows, err := p.ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if rows[0].Input["HeartRate"] != nil {
		t.Errorf("expected empty cell to be nil, got %v", rows[0].Input["HeartRate"])
	}

	// The unset cell is imputed downstream instead of failing
	result, err := p.Predict(rows[0].Input)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if result.Features["HeartRate"] != 54.2 {
		t.Errorf("expected imputed HeartRate 54.2, got %g", result.Features["HeartRate"])
	}
}

func TestPredictBatchSkipsImplausibleRows(t *testing.T) {
	p := testPipeline()

	rows, err := p.ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	outcomes, err := p.PredictBatch(rows)
	if err != nil {
		t.Fatalf("PredictBatch failed: %v", err)
	}
	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}

	var processed, skipped int
	for _, outcome := range outcomes {
		if outcome.Skipped {
			skipped++
			if outcome.Row.Line != 4 {
				t.Errorf("expected skip at line 4, got line %d", outcome.Row.Line)
			}
			if !strings.Contains(outcome.SkipReason, "HeartRate must be between 20 and 100") {
				t.Errorf("unexpected skip reason: %q", outcome.SkipReason)
			}
			continue
		}
		processed++
		if outcome.Result == nil {
			t.Error("processed outcome is missing its result")
		}
	}

	if processed != 3 || skipped != 1 {
		t.Errorf("expected 3 processed and 1 skipped, got %d and %d", processed, skipped)
	}
}

func TestPredictBatchAllRowsImplausible(t *testing.T) {
	p := testPipeline()

	csvData := "HeartRate,SkinConductance,EEG,student_id\n150,0.71,13.6,S-1\n180,0.5,12.0,S-2\n"
	rows, err := p.ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	outcomes, err := p.PredictBatch(rows)
	if err != nil {
		t.Fatalf("PredictBatch failed: %v", err)
	}

	for _, outcome := range outcomes {
		if !outcome.Skipped {
			t.Fatal("expected every row to be skipped")
		}
	}
}

func TestPredictBatchUnknownCategoryAborts(t *testing.T) {
	p := NewPipeline(categoricalBundle())

	csvData := "HeartRate,Activity,student_id\n62.4,reading,S-1\n60.0,sleeping,S-2\n"
	rows, err := p.ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	_, err = p.PredictBatch(rows)
	var categoryErr *UnknownCategoryError
	if !errors.As(err, &categoryErr) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 3") {
		t.Errorf("expected error to name the failing row, got %q", err.Error())
	}
}
