package predict

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/focusmonitor/engagement-api/utils/middleware"
	"github.com/focusmonitor/engagement-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// Reserved request keys that are not model features
const (
	studentIDKey = "student_id"
	timestampKey = "timestamp"
)

// Predict handles a single manual prediction. The request body is a flat
// JSON object of feature readings, optionally carrying student_id and an
// RFC 3339 timestamp alongside them.
func (h *PredictHandler) Predict(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	username, _ := middleware.GetUsername(c)

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(body) == 0 {
		return response.BadRequest(c, "Request body must contain feature readings")
	}

	studentID := ""
	if raw, ok := body[studentIDKey]; ok {
		if s, ok := raw.(string); ok {
			studentID = s
		}
		delete(body, studentIDKey)
	}

	ts := time.Now().UTC()
	if raw, ok := body[timestampKey]; ok {
		if s, ok := raw.(string); ok {
			if parsed, err := time.Parse(time.RFC3339, s); err == nil {
				ts = parsed
			}
		}
		delete(body, timestampKey)
	}

	result, err := h.pipeline.Predict(body)
	if err != nil {
		return pipelineError(c, err)
	}

	prediction, err := h.persist(userID, username, studentID, result, ts)
	if err != nil {
		return response.InternalServerError(c, "Failed to store prediction")
	}

	return response.Success(c, record(prediction, result))
}

// RequiredFeatures lists the feature names and plausibility ranges the
// model expects. Useful for clients building input forms.
func (h *PredictHandler) RequiredFeatures(c *fiber.Ctx) error {
	bundle := h.pipeline.Bundle()

	features := make([]fiber.Map, 0, len(bundle.NumericFeatures))
	for _, name := range bundle.NumericFeatures {
		entry := fiber.Map{"name": name, "type": "numeric"}
		if r, ok := bundle.Ranges[name]; ok {
			entry["min"] = r.Min
			entry["max"] = r.Max
		}
		features = append(features, entry)
	}
	for _, name := range bundle.CategoricalFeatures {
		values := make([]string, 0, len(bundle.Vocabularies[name]))
		for value := range bundle.Vocabularies[name] {
			values = append(values, value)
		}
		sort.Strings(values)
		features = append(features, fiber.Map{
			"name":   name,
			"type":   "categorical",
			"values": values,
		})
	}

	return response.Success(c, fiber.Map{
		"features": features,
		"classes":  bundle.Classes,
	})
}
