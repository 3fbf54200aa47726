package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when the email is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRole is returned for roles outside admin, warden and student.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidOTP is returned when a reset code is wrong or expired.
	ErrInvalidOTP = errors.New("invalid or expired otp")
	// ErrTokenRevoked is returned for tokens that were logged out.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrForbidden is returned when the caller's role may not use an endpoint.
	ErrForbidden = errors.New("insufficient role")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenRevoked):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenRevoked.Error(), "TOKEN_REVOKED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidRole.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrInvalidOTP):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidOTP.Error(), "INVALID_OTP")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
