package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/dashboard"
	"hostelportal/internal/model"
	"hostelportal/internal/session"
)

const messageNetworkRetry = "Network error, please try again."

// Sessions is the session manager as seen by the views.
type Sessions interface {
	Current() (session.State, string)
	Login(ctx context.Context, email, password string) session.LoginResult
	Logout(ctx context.Context)
	Invalidate(ctx context.Context, token, reason string)
}

// API is the part of the hostel API the views call directly.
type API interface {
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, otp, password string) (string, error)
	Users(ctx context.Context, token string) ([]model.User, error)
	Rooms(ctx context.Context, token string) ([]model.Room, error)
	Feedback(ctx context.Context, token string) ([]model.Feedback, error)
}

// Dashboards builds dashboard summaries.
type Dashboards interface {
	Summary(ctx context.Context, token string, user model.User) (*dashboard.Summary, error)
	Forget(ctx context.Context, user model.User)
}

// Handler bundles the portal's HTTP handlers.
type Handler struct {
	sessions   Sessions
	api        API
	dashboards Dashboards
	logger     *zap.Logger
	refresh    time.Duration
}

// NewHandler creates the handler layer. refresh is how often dashboards reload.
func NewHandler(sessions Sessions, api API, dashboards Dashboards, refresh time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions:   sessions,
		api:        api,
		dashboards: dashboards,
		logger:     logger,
		refresh:    refresh,
	}
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// ForgotPasswordForm asks for a reset code.
type ForgotPasswordForm struct {
	Email string `form:"email" validate:"required,email"`
}

// ResetPasswordForm sets a new password with a reset code.
type ResetPasswordForm struct {
	Email    string `form:"email" validate:"required,email"`
	OTP      string `form:"otp" validate:"required,len=6,numeric"`
	Password string `form:"password" validate:"required,min=6"`
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Landing renders the public landing view.
func (h *Handler) Landing(c echo.Context) error {
	return c.Render(http.StatusOK, "landing", Page{Notice: notices[c.QueryParam("notice")]})
}

// LoginPage renders the sign-in form.
func (h *Handler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", Page{Notice: notices[c.QueryParam("notice")]})
}

// Login signs in and redirects to the dashboard.
func (h *Handler) Login(c echo.Context) error {
	var form LoginForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, "login", Page{Error: "Invalid form submission."})
	}
	page := Page{Form: map[string]string{"email": form.Email}}
	if err := c.Validate(&form); err != nil {
		page.Error = "Enter a valid email address and password."
		return c.Render(http.StatusUnprocessableEntity, "login", page)
	}

	res := h.sessions.Login(c.Request().Context(), form.Email, form.Password)
	if !res.Success {
		page.Error = res.Message
		status := http.StatusUnauthorized
		if res.Message == session.MessageNetworkError {
			page.Error = messageNetworkRetry
			status = http.StatusBadGateway
		}
		return c.Render(status, "login", page)
	}
	return c.Redirect(http.StatusSeeOther, dashboardPath)
}

// Logout ends the session whatever the API says.
func (h *Handler) Logout(c echo.Context) error {
	state := stateFrom(c)
	h.sessions.Logout(c.Request().Context())
	if state.User != nil {
		h.dashboards.Forget(c.Request().Context(), *state.User)
	}
	return c.Redirect(http.StatusSeeOther, landingPath+"?notice=signed-out")
}

// ForgotPasswordPage renders the reset-code request form.
func (h *Handler) ForgotPasswordPage(c echo.Context) error {
	return c.Render(http.StatusOK, "forgot_password", Page{})
}

// ForgotPassword asks the API to send a reset code.
func (h *Handler) ForgotPassword(c echo.Context) error {
	var form ForgotPasswordForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, "forgot_password", Page{Error: "Invalid form submission."})
	}
	page := Page{Form: map[string]string{"email": form.Email}}
	if err := c.Validate(&form); err != nil {
		page.Error = "Enter a valid email address."
		return c.Render(http.StatusUnprocessableEntity, "forgot_password", page)
	}

	if _, err := h.api.ForgotPassword(c.Request().Context(), form.Email); err != nil {
		status, msg := h.formFailure(err, "Could not send a reset code.")
		page.Error = msg
		return c.Render(status, "forgot_password", page)
	}
	q := url.Values{"notice": {"otp-sent"}, "email": {form.Email}}
	return c.Redirect(http.StatusSeeOther, "/reset-password?"+q.Encode())
}

// ResetPasswordPage renders the new-password form.
func (h *Handler) ResetPasswordPage(c echo.Context) error {
	return c.Render(http.StatusOK, "reset_password", Page{
		Notice: notices[c.QueryParam("notice")],
		Form:   map[string]string{"email": c.QueryParam("email")},
	})
}

// ResetPassword sets a new password. It does not sign the user in.
func (h *Handler) ResetPassword(c echo.Context) error {
	var form ResetPasswordForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, "reset_password", Page{Error: "Invalid form submission."})
	}
	page := Page{Form: map[string]string{"email": form.Email}}
	if err := c.Validate(&form); err != nil {
		page.Error = "Enter your email, the 6-digit code and a password of at least 6 characters."
		return c.Render(http.StatusUnprocessableEntity, "reset_password", page)
	}

	if _, err := h.api.ResetPassword(c.Request().Context(), form.Email, form.OTP, form.Password); err != nil {
		status, msg := h.formFailure(err, "Could not reset the password.")
		page.Error = msg
		return c.Render(status, "reset_password", page)
	}
	return c.Redirect(http.StatusSeeOther, "/login?notice=password-reset")
}

// Dashboard renders the dashboard for the user's role.
func (h *Handler) Dashboard(c echo.Context) error {
	user := *stateFrom(c).User
	view, ok := dashboardViews[user.Role]
	if !ok {
		return h.denied(c, &user, model.Roles(model.RoleAdmin, model.RoleWarden, model.RoleStudent))
	}

	summary, err := h.dashboards.Summary(c.Request().Context(), tokenFrom(c), user)
	if err != nil {
		return h.apiFailure(c, err)
	}
	name, page := view(user, summary)
	page.RefreshSeconds = int(h.refresh / time.Second)
	return c.Render(http.StatusOK, name, page)
}

// Profile shows the signed-in user.
func (h *Handler) Profile(c echo.Context) error {
	return c.Render(http.StatusOK, "profile", Page{User: stateFrom(c).User})
}

// Rooms lists rooms.
func (h *Handler) Rooms(c echo.Context) error {
	rooms, err := h.api.Rooms(c.Request().Context(), tokenFrom(c))
	if err != nil {
		return h.apiFailure(c, err)
	}
	return c.Render(http.StatusOK, "rooms", Page{User: stateFrom(c).User, Data: rooms})
}

// Users lists users.
func (h *Handler) Users(c echo.Context) error {
	users, err := h.api.Users(c.Request().Context(), tokenFrom(c))
	if err != nil {
		return h.apiFailure(c, err)
	}
	return c.Render(http.StatusOK, "users", Page{User: stateFrom(c).User, Data: users})
}

// Feedback lists feedback visible to the user.
func (h *Handler) Feedback(c echo.Context) error {
	items, err := h.api.Feedback(c.Request().Context(), tokenFrom(c))
	if err != nil {
		return h.apiFailure(c, err)
	}
	return c.Render(http.StatusOK, "feedback", Page{User: stateFrom(c).User, Data: items})
}

func (h *Handler) waiting(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "1")
	return c.Render(http.StatusServiceUnavailable, "loading", Page{RefreshSeconds: 1})
}

func (h *Handler) denied(c echo.Context, user *model.User, required model.RoleSet) error {
	return c.Render(http.StatusForbidden, "access_denied", Page{
		User:     user,
		Required: required.String(),
		Back:     backLink(c),
	})
}

// apiFailure resolves an API error on a protected page. A rejected token
// ends the session the same way logout does.
func (h *Handler) apiFailure(c echo.Context, err error) error {
	ctx := c.Request().Context()
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		h.sessions.Invalidate(ctx, tokenFrom(c), "api rejected token")
		if user := stateFrom(c).User; user != nil {
			h.dashboards.Forget(ctx, *user)
		}
		return c.Redirect(http.StatusSeeOther, landingPath+"?notice=session-ended")
	case errors.Is(err, apiclient.ErrTransport):
		h.logger.Warn("api unreachable", zap.String("path", c.Path()), zap.Error(err))
		return c.Render(http.StatusBadGateway, "error", Page{User: stateFrom(c).User, Error: messageNetworkRetry})
	default:
		h.logger.Error("api call failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Render(http.StatusBadGateway, "error", Page{User: stateFrom(c).User})
	}
}

// formFailure maps an API error on a public form to a status and inline message.
func (h *Handler) formFailure(err error, fallback string) (int, string) {
	if errors.Is(err, apiclient.ErrTransport) {
		h.logger.Warn("api unreachable", zap.Error(err))
		return http.StatusBadGateway, messageNetworkRetry
	}
	var rejected *apiclient.RejectedError
	if errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity, apiclient.Message(err, fallback)
	}
	h.logger.Error("api call failed", zap.Error(err))
	return http.StatusBadGateway, fallback
}

// backLink returns the same-host referring page, or the dashboard.
func backLink(c echo.Context) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Host != c.Request().Host || ref.Path == "" {
		return dashboardPath
	}
	return ref.RequestURI()
}
