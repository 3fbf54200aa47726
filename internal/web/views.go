package web

import (
	"hostelportal/internal/dashboard"
	"hostelportal/internal/model"
)

// Page is the data handed to every template.
type Page struct {
	User           *model.User
	Notice         string
	Error          string
	RefreshSeconds int
	Form           map[string]string
	Required       string
	Back           string
	Data           interface{}
}

// ViewFactory picks the template that presents a role's dashboard.
type ViewFactory func(user model.User, summary *dashboard.Summary) (name string, page Page)

func dashboardView(name string) ViewFactory {
	return func(user model.User, summary *dashboard.Summary) (string, Page) {
		return name, Page{User: &user, Data: summary}
	}
}

// dashboardViews must cover every known role.
var dashboardViews = map[model.Role]ViewFactory{
	model.RoleAdmin:   dashboardView("dashboard_admin"),
	model.RoleWarden:  dashboardView("dashboard_warden"),
	model.RoleStudent: dashboardView("dashboard_student"),
}

// notices maps the notice query parameter to the text shown. Only these keys
// are ever displayed.
var notices = map[string]string{
	"otp-sent":       "If that address is registered, a reset code is on its way.",
	"password-reset": "Your password has been reset. Please sign in.",
	"signed-out":     "You have been signed out.",
	"session-ended":  "Your session has ended. Please sign in again.",
}
