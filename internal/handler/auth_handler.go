package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"hostelportal/internal/auth"
	"hostelportal/internal/errors"
	"hostelportal/internal/model"
	"hostelportal/internal/service"
)

// ClaimsKey is the echo context key the JWT middleware stores claims under.
const ClaimsKey = "user"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by login whether or not it succeeds.
type LoginResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token,omitempty"`
	User    *model.User `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ForgotPasswordRequest asks for a reset code.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password with a reset code.
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=6"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} LoginResponse
// @Failure 401 {object} LoginResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, LoginResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, LoginResponse{Message: "email and password are required"})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if stderrors.Is(err, errors.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, LoginResponse{Message: err.Error()})
		}
		c.Logger().Errorf("login: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to login",
			Code:  "LOGIN_FAILED",
		})
	}

	return c.JSON(http.StatusOK, LoginResponse{Success: true, Token: token, User: user})
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the bearer token until it would have expired.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// ForgotPassword godoc
// @Summary Request a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/forgotpassword [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "if the email is registered, a reset code has been sent"})
}

// ResetPassword godoc
// @Summary Reset password with a reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Email, code and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/resetpassword [put]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.Password); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "password has been reset"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Me(c.Request().Context(), claims)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func claimsFrom(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "invalid token",
			Code:  "INVALID_TOKEN",
		})
	}
	return claims, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_FAILED",
		})
	}
	return nil
}

// errorResponse maps a service error to the JSON error body.
func errorResponse(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
