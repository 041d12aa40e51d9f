package handlers

const (
	CSRFFieldName     = "csrf_token"
	AnswerFieldPrefix = "q_"
	PasswordFieldName = "password"
	AdminLoginPath    = "/admin/login"
	AdminReportPath   = "/admin/report"
	HomePath          = "/"

	ErrInvalidFormData      = "Invalid form data"
	ErrInvalidCSRFToken     = "Invalid or missing form token"
	ErrTooManyRequests      = "Too many requests"
	ErrInternalServerError  = "Internal server error"
	ErrInvalidAdminPassword = "Incorrect password."
)
