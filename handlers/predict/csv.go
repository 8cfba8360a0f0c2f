package predict

import (
	"time"

	"github.com/focusmonitor/engagement-api/utils/middleware"
	"github.com/focusmonitor/engagement-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// SkippedRow reports one batch row rejected for implausible values
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// BatchResponse summarizes one CSV batch prediction
type BatchResponse struct {
	Processed int                `json:"processed"`
	Skipped   int                `json:"skipped"`
	Records   []PredictionRecord `json:"records"`
	SkippedAt []SkippedRow       `json:"skipped_rows,omitempty"`
}

// PredictCSV handles a batch upload. Each row is predicted and stored
// independently; rows with out-of-range readings are skipped and reported,
// while structural problems (missing columns, unknown categories) fail the
// whole request.
func (h *PredictHandler) PredictCSV(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	username, _ := middleware.GetUsername(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A CSV file upload named 'file' is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to open uploaded file")
	}
	defer file.Close()

	rows, err := h.pipeline.ParseCSV(file)
	if err != nil {
		return pipelineError(c, err)
	}
	if len(rows) == 0 {
		return response.BadRequest(c, "CSV contains no data rows")
	}

	outcomes, err := h.pipeline.PredictBatch(rows)
	if err != nil {
		return pipelineError(c, err)
	}

	res := BatchResponse{
		Records:   make([]PredictionRecord, 0, len(outcomes)),
		SkippedAt: make([]SkippedRow, 0),
	}

	for _, outcome := range outcomes {
		if outcome.Skipped {
			res.Skipped++
			res.SkippedAt = append(res.SkippedAt, SkippedRow{
				Line:   outcome.Row.Line,
				Reason: outcome.SkipReason,
			})
			continue
		}

		ts := outcome.Row.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}

		prediction, err := h.persist(userID, username, outcome.Row.StudentID, outcome.Result, ts)
		if err != nil {
			return response.InternalServerError(c, "Failed to store prediction")
		}

		res.Processed++
		res.Records = append(res.Records, record(prediction, outcome.Result))
	}

	// Every row implausible: nothing was stored, report failure
	if res.Processed == 0 {
		return response.BadRequest(c, "No valid rows in CSV")
	}

	return response.Success(c, res)
}
