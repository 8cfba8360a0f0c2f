package auth

import (
	"github.com/focusmonitor/engagement-api/utils/middleware"
	"github.com/focusmonitor/engagement-api/utils/response"
	"github.com/focusmonitor/engagement-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Email string `json:"email,omitempty"`
}

// GetProfile retrieves the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	res := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	return response.Success(c, res)
}

// UpdateProfile updates the current user's profile. Usernames are
// immutable because stored predictions are keyed by them.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email != "" {
		if !validation.ValidateEmail(req.Email) {
			return response.BadRequest(c, "Invalid email address")
		}
		user.Email = req.Email
	}

	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	res := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	return response.Success(c, res)
}
