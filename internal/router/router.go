package router

import (
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"hostelportal/internal/auth"
	"hostelportal/internal/errors"
	"hostelportal/internal/handler"
	"hostelportal/internal/logging"
	"hostelportal/internal/model"
	"hostelportal/internal/validation"
)

// Handlers groups the API handlers.
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Hostel *handler.HostelHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	h Handlers,
	logger *zap.Logger,
) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())

	e.Validator = validation.New()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	credentials := api.Group("/auth", CredentialRateLimit())
	credentials.POST("/login", h.Auth.Login)
	credentials.POST("/forgotpassword", h.Auth.ForgotPassword)
	credentials.PUT("/resetpassword", h.Auth.ResetPassword)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or expired jwt",
				Code:  "INVALID_TOKEN",
			})
		},
	}), RejectRevoked(tokenStore))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)

	everyone := RequireRole(model.RoleAdmin, model.RoleWarden, model.RoleStudent)
	secured.GET("/rooms", h.Hostel.ListRooms, everyone)
	secured.GET("/feedback", h.Hostel.ListFeedback, everyone)

	admin := secured.Group("/users", RequireRole(model.RoleAdmin))
	admin.GET("", h.User.ListUsers)
	admin.POST("", h.User.CreateUser)
	admin.GET("/:id", h.User.GetUser)
}

// CredentialRateLimit throttles unauthenticated credential endpoints per
// client IP.
func CredentialRateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      0.2,
			Burst:     10,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(_ echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many attempts, try again later",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// RejectRevoked refuses tokens whose ID was blacklisted at logout.
func RejectRevoked(store auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsKey).(*auth.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "invalid token",
					Code:  "INVALID_TOKEN",
				})
			}
			revoked, err := store.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, errors.ErrorResponse{
					Error: "token check unavailable",
					Code:  "TOKEN_STORE_UNAVAILABLE",
				})
			}
			if revoked {
				httpErr := errors.MapErrorToHTTP(errors.ErrTokenRevoked)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

// RequireRole allows the request only when the token's role is one of roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := model.Roles(roles...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsKey).(*auth.Claims)
			if !ok || !allowed.Has(claims.Role) {
				httpErr := errors.MapErrorToHTTP(errors.ErrForbidden)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}
