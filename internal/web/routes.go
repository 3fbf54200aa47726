// Package web serves the portal's HTML views and gates them on the session.
package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"hostelportal/internal/guard"
	"hostelportal/internal/logging"
	"hostelportal/internal/model"
	"hostelportal/internal/session"
	"hostelportal/internal/validation"
)

// Access classifies how a route relates to the session.
type Access int

const (
	// Public routes render for everyone.
	Public Access = iota
	// PublicOnly routes are auth flows; a logged-in session is sent to the dashboard.
	PublicOnly
	// Protected routes go through the guard.
	Protected
)

const (
	landingPath   = "/"
	dashboardPath = "/dashboard"

	stateKey = "session_state"
	tokenKey = "session_token"
)

// Route declares one path of the portal.
type Route struct {
	Method  string
	Path    string
	Access  Access
	Roles   model.RoleSet
	Handler echo.HandlerFunc
}

// Routes returns the portal's route table.
func (h *Handler) Routes() []Route {
	everyone := model.Roles(model.RoleAdmin, model.RoleWarden, model.RoleStudent)
	return []Route{
		{Method: http.MethodGet, Path: "/healthz", Access: Public, Handler: h.Health},

		{Method: http.MethodGet, Path: landingPath, Access: PublicOnly, Handler: h.Landing},
		{Method: http.MethodGet, Path: "/login", Access: PublicOnly, Handler: h.LoginPage},
		{Method: http.MethodPost, Path: "/login", Access: PublicOnly, Handler: h.Login},
		{Method: http.MethodGet, Path: "/forgot-password", Access: PublicOnly, Handler: h.ForgotPasswordPage},
		{Method: http.MethodPost, Path: "/forgot-password", Access: PublicOnly, Handler: h.ForgotPassword},
		{Method: http.MethodGet, Path: "/reset-password", Access: PublicOnly, Handler: h.ResetPasswordPage},
		{Method: http.MethodPost, Path: "/reset-password", Access: PublicOnly, Handler: h.ResetPassword},

		{Method: http.MethodPost, Path: "/logout", Access: Protected, Handler: h.Logout},
		{Method: http.MethodGet, Path: dashboardPath, Access: Protected, Handler: h.Dashboard},
		{Method: http.MethodGet, Path: "/profile", Access: Protected, Handler: h.Profile},
		{Method: http.MethodGet, Path: "/feedback", Access: Protected, Roles: everyone, Handler: h.Feedback},
		{Method: http.MethodGet, Path: "/rooms", Access: Protected, Roles: model.Roles(model.RoleAdmin, model.RoleWarden), Handler: h.Rooms},
		{Method: http.MethodGet, Path: "/users", Access: Protected, Roles: model.Roles(model.RoleAdmin), Handler: h.Users},
	}
}

// Register wires middleware and every route onto e.
func Register(e *echo.Echo, h *Handler, renderer echo.Renderer, logger *zap.Logger) {
	e.Renderer = renderer
	e.Validator = validation.New()

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())

	for _, rt := range h.Routes() {
		e.Add(rt.Method, rt.Path, rt.Handler, h.gate(rt))
	}
}

// gate applies the route's access rule before the handler runs. The snapshot
// the decision was made on, and its token, are stored in the context so the
// handler acts for the same session the decision was made for.
func (h *Handler) gate(rt Route) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rt.Access == Public {
				return next(c)
			}

			state, token := h.sessions.Current()
			if rt.Access == PublicOnly {
				if state.Loading {
					return h.waiting(c)
				}
				if state.IsAuthenticated {
					return c.Redirect(http.StatusSeeOther, dashboardPath)
				}
				return next(c)
			}

			switch guard.Decide(state, rt.Roles) {
			case guard.Wait:
				return h.waiting(c)
			case guard.RedirectUnauthenticated:
				return c.Redirect(http.StatusSeeOther, landingPath)
			case guard.Deny:
				return h.denied(c, state.User, rt.Roles)
			}
			c.Set(stateKey, state)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

func stateFrom(c echo.Context) session.State {
	state, _ := c.Get(stateKey).(session.State)
	return state
}

func tokenFrom(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}
