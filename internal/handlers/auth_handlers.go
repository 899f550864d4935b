package handlers

import (
	"log"
	"net/http"
	"strings"

	"adoteja/internal/catalog"
	"adoteja/internal/models"
	"adoteja/internal/repositories"
	"adoteja/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
	catalog     *catalog.Catalog
	mailer      services.Mailer
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository, locationCatalog *catalog.Catalog, mailer services.Mailer) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
		catalog:     locationCatalog,
		mailer:      mailer,
	}
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone"`
	StateCode *string `json:"state_code"`
	CityName  *string `json:"city_name"`
}

// Signup handles user registration. Duplicate emails are rejected before
// anything is written.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, email and password are required")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
	}
	if err := h.validateLocation(req.StateCode, req.CityName); err != nil {
		return err
	}

	exists, err := h.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check email")
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict, services.ErrEmailTaken.Error())
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Phone:        req.Phone,
		StateCode:    req.StateCode,
		CityName:     req.CityName,
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    user,
	})
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	models.TokenResponse
	User *models.User `json:"user"`
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := h.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	}

	tokenResponse, err := h.authService.GenerateTokens(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		TokenResponse: *tokenResponse,
		User:          user,
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}

	tokenResponse, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	return c.JSON(http.StatusOK, tokenResponse)
}

// RequestPasswordReset handles POST /auth/password-reset. The response is
// identical whether or not the email exists.
func (h *AuthHandlers) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	accepted := map[string]string{"message": "If the email exists, a reset link has been sent"}

	user, err := h.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || user == nil {
		return c.JSON(http.StatusAccepted, accepted)
	}

	token, err := h.authService.CreateResetToken(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create reset token")
	}
	if err := h.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		log.Printf("Failed to send password reset email to %s: %v", user.Email, err)
	}
	return c.JSON(http.StatusAccepted, accepted)
}

// ResetPassword handles POST /auth/password-reset/confirm
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token and password are required")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
	}

	userID, err := h.authService.ConsumeResetToken(ctx, req.Token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired reset token")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}
	if err := h.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (h *AuthHandlers) validateLocation(stateCode, cityName *string) error {
	if stateCode == nil || *stateCode == "" {
		if cityName != nil && *cityName != "" {
			return echo.NewHTTPError(http.StatusBadRequest, "city requires a state")
		}
		return nil
	}
	if !h.catalog.HasState(*stateCode) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown state code")
	}
	if cityName != nil && *cityName != "" && !h.catalog.HasCity(*stateCode, *cityName) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown city for state")
	}
	return nil
}
