package auth

import (
	"time"

	"github.com/focusmonitor/engagement-api/database"
	"github.com/focusmonitor/engagement-api/model"
	authutil "github.com/focusmonitor/engagement-api/utils/auth"
	"github.com/focusmonitor/engagement-api/utils/middleware"
	"github.com/focusmonitor/engagement-api/utils/response"
	"github.com/focusmonitor/engagement-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	store                database.Storage
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler. The Storage interface covers
// the credential store; the GORM handle is needed for the token blacklist
// and reset-token tables.
func NewAuthHandler(store database.Storage, db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		store:                store,
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Username, email, and password are required")
	}

	req.Username = validation.SanitizeString(req.Username)

	if ok, reason := validation.ValidateUsername(req.Username); !ok {
		return response.BadRequest(c, reason)
	}

	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email address")
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	// Check if username is already taken
	exists, err := h.store.UserExists(req.Username)
	if err != nil {
		return response.InternalServerError(c, "Failed to check existing users")
	}
	if exists {
		return response.Conflict(c, "Username is already taken")
	}

	// Hash password
	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		TokenVersion: 0,
	}

	if err := h.store.CreateUser(&user); err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	// Issue an initial token pair so the client can start immediately
	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Username, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := RegisterResponse{
		User: UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60, // 24 hours in seconds
	}

	return response.Created(c, res)
}
