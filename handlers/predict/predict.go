package predict

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/focusmonitor/engagement-api/database"
	"github.com/focusmonitor/engagement-api/model"
	"github.com/focusmonitor/engagement-api/services/engagement"
	"github.com/focusmonitor/engagement-api/services/stream"
	"github.com/focusmonitor/engagement-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// PredictHandler serves manual, batch and streaming prediction requests
type PredictHandler struct {
	store    database.Storage
	pipeline *engagement.Pipeline
	broker   *stream.Broker
}

// NewPredictHandler creates a new prediction handler
func NewPredictHandler(store database.Storage, pipeline *engagement.Pipeline, broker *stream.Broker) *PredictHandler {
	return &PredictHandler{
		store:    store,
		pipeline: pipeline,
		broker:   broker,
	}
}

// PredictionRecord is the response shape for one stored prediction
type PredictionRecord struct {
	ID              uint               `json:"id"`
	StudentID       string             `json:"student_id,omitempty"`
	EngagementLevel int                `json:"predicted_engagement_level"`
	EngagementLabel string             `json:"engagement_label"`
	Features        map[string]float64 `json:"features"`
	Feedback        string             `json:"feedback,omitempty"`
	TopFeatures     []string           `json:"top_features,omitempty"`
	Severities      map[string]string  `json:"severities,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
}

// persist stores one result for the given user and fans it out to live
// listeners. The persisted feature map holds post-imputation values, so a
// stored record always reflects what the model actually saw.
func (h *PredictHandler) persist(userID uint, username, studentID string, res *engagement.Result, ts time.Time) (*model.Prediction, error) {
	featureDoc := make(map[string]interface{}, len(res.Features)+len(res.Categorical))
	for name, value := range res.Features {
		featureDoc[name] = value
	}
	for name, value := range res.Categorical {
		featureDoc[name] = value
	}

	inputJSON, err := json.Marshal(featureDoc)
	if err != nil {
		return nil, err
	}

	prediction := model.Prediction{
		UserID:         userID,
		Username:       username,
		StudentID:      studentID,
		InputFeatures:  datatypes.JSON(inputJSON),
		PredictedLevel: res.Level,
		Feedback:       res.Feedback,
		Timestamp:      ts,
	}

	if len(res.TopFeatures) > 0 {
		topJSON, err := json.Marshal(res.TopFeatures)
		if err != nil {
			return nil, err
		}
		prediction.TopFeatures = datatypes.JSON(topJSON)
	}

	if len(res.Severities) > 0 {
		sevJSON, err := json.Marshal(res.Severities)
		if err != nil {
			return nil, err
		}
		prediction.Severities = datatypes.JSON(sevJSON)
	}

	if err := h.store.AppendPrediction(&prediction); err != nil {
		return nil, err
	}

	h.broker.Publish(stream.PredictionEvent{
		Username:       username,
		StudentID:      studentID,
		PredictedLevel: res.Level,
		Label:          res.Label,
		Features:       res.Features,
		Feedback:       res.Feedback,
		Timestamp:      ts,
	})

	return &prediction, nil
}

func record(p *model.Prediction, res *engagement.Result) PredictionRecord {
	return PredictionRecord{
		ID:              p.ID,
		StudentID:       p.StudentID,
		EngagementLevel: res.Level,
		EngagementLabel: res.Label,
		Features:        res.Features,
		Feedback:        res.Feedback,
		TopFeatures:     res.TopFeatures,
		Severities:      res.Severities,
		Timestamp:       p.Timestamp,
	}
}

// pipelineError maps a pipeline validation failure onto the right HTTP
// error code. Unknown errors fall through to a 500.
func pipelineError(c *fiber.Ctx, err error) error {
	var (
		missingErr  *engagement.MissingFieldError
		columnsErr  *engagement.MissingColumnsError
		rangeErr    *engagement.RangeViolationError
		categoryErr *engagement.UnknownCategoryError
		inputErr    *engagement.UnsupportedInputError
	)

	switch {
	case errors.As(err, &missingErr):
		return response.BadRequestWithCode(c, missingErr.Error(), engagement.CodeMissingField)
	case errors.As(err, &columnsErr):
		return response.BadRequestWithCode(c, columnsErr.Error(), engagement.CodeMissingField)
	case errors.As(err, &rangeErr):
		return response.BadRequestWithCode(c, rangeErr.Error(), engagement.CodeRangeViolation)
	case errors.As(err, &categoryErr):
		return response.BadRequestWithCode(c, categoryErr.Error(), engagement.CodeUnknownCategory)
	case errors.As(err, &inputErr):
		return response.BadRequestWithCode(c, inputErr.Error(), engagement.CodeUnsupportedInput)
	default:
		return response.InternalServerError(c, "Prediction failed")
	}
}
