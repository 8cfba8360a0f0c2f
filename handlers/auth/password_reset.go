package auth

import (
	"time"

	"github.com/focusmonitor/engagement-api/model"
	authutil "github.com/focusmonitor/engagement-api/utils/auth"
	"github.com/focusmonitor/engagement-api/utils/middleware"
	"github.com/focusmonitor/engagement-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
}

// ResetPasswordRequest represents a password reset with token
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ForgotPassword creates a one-hour reset token. There is no mail
// delivery; the token is returned in the response body and the caller is
// expected to hand it to the user out of band.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}

	var user model.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		// Don't reveal whether the username exists
		return response.Success(c, fiber.Map{
			"message": "If the account exists, a reset token has been issued",
		})
	}

	resetToken := uuid.New().String()
	passwordReset := model.PasswordResetToken{
		UserID:    user.ID,
		Token:     resetToken,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	if err := h.db.Create(&passwordReset).Error; err != nil {
		return response.InternalServerError(c, "Failed to create reset token")
	}

	return response.Success(c, fiber.Map{
		"message": "If the account exists, a reset token has been issued",
		"token":   resetToken,
	})
}

// ResetPassword consumes a reset token and sets a new password. All
// outstanding sessions are invalidated by bumping the token version.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Token == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Token and new password are required")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	var resetToken model.PasswordResetToken
	if err := h.db.Where("token = ?", req.Token).First(&resetToken).Error; err != nil {
		return response.BadRequest(c, "Invalid or expired reset token")
	}

	if resetToken.IsExpired() {
		return response.BadRequest(c, "Reset token has expired")
	}

	if resetToken.IsUsed() {
		return response.BadRequest(c, "Reset token has already been used")
	}

	var user model.User
	if err := h.db.First(&user, resetToken.UserID).Error; err != nil {
		return response.BadRequest(c, "User not found")
	}

	hashedPassword, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user.PasswordHash = hashedPassword
	user.TokenVersion++

	if err := h.db.Save(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	resetToken.MarkAsUsed()
	if err := h.db.Save(&resetToken).Error; err != nil {
		return response.InternalServerError(c, "Failed to mark token as used")
	}

	return response.Success(c, fiber.Map{
		"message": "Password has been reset. Please log in again.",
	})
}

// ChangePassword lets an authenticated user rotate their password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Old and new passwords are required")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.OldPassword); err != nil {
		return response.Unauthorized(c, "Old password is incorrect")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	hashedPassword, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user.PasswordHash = hashedPassword
	user.TokenVersion++

	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	return response.Success(c, fiber.Map{
		"message": "Password changed. All existing sessions have been invalidated.",
	})
}
