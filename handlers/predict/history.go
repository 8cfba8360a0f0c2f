package predict

import (
	"errors"

	"github.com/focusmonitor/engagement-api/database"
	"github.com/focusmonitor/engagement-api/utils/middleware"
	"github.com/focusmonitor/engagement-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// historyLimit caps how many records a history listing returns
const historyLimit = 50

// GetHistory lists the caller's most recent predictions, newest first
func (h *PredictHandler) GetHistory(c *fiber.Ctx) error {
	username, ok := middleware.GetUsername(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	predictions, err := h.store.ListPredictionsByUser(username, historyLimit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load prediction history")
	}

	return response.Success(c, fiber.Map{
		"count":       len(predictions),
		"predictions": predictions,
	})
}

// GetStudentHistory lists the caller's predictions for one student
func (h *PredictHandler) GetStudentHistory(c *fiber.Ctx) error {
	username, ok := middleware.GetUsername(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	studentID := c.Params("student_id")
	if studentID == "" {
		return response.BadRequest(c, "Student ID is required")
	}

	predictions, err := h.store.ListPredictionsByStudent(username, studentID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load prediction history")
	}

	return response.Success(c, fiber.Map{
		"student_id":  studentID,
		"count":       len(predictions),
		"predictions": predictions,
	})
}

// DeleteHistory removes one of the caller's predictions. A record that
// does not exist and a record owned by someone else produce the same 404,
// so record ids cannot be probed.
func (h *PredictHandler) DeleteHistory(c *fiber.Ctx) error {
	username, ok := middleware.GetUsername(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid prediction ID")
	}

	if err := h.store.DeletePrediction(username, uint(id)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return response.NotFound(c, "Record not found")
		}
		return response.InternalServerError(c, "Failed to delete prediction")
	}

	return response.Success(c, fiber.Map{
		"message": "Prediction deleted",
	})
}
