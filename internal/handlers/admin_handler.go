package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"shortstory/internal/export"
	"shortstory/internal/logger"
	"shortstory/internal/security"
	"shortstory/internal/service"
	"shortstory/internal/store"
)

// AdminHandler serves the collected-data page, its CSV download and the admin sign in
type AdminHandler struct {
	survey     *service.SurveyService
	reports    *service.ReportService
	guard      *security.AdminGuard
	templates  *template.Template
	middleware *Middleware
	log        *logger.Logger
	now        func() time.Time
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(surveyService *service.SurveyService, reports *service.ReportService, guard *security.AdminGuard, templates *template.Template, middleware *Middleware, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		survey:     surveyService,
		reports:    reports,
		guard:      guard,
		templates:  templates,
		middleware: middleware,
		log:        log,
		now:        time.Now,
	}
}

// Enter moves the session from intro to the admin page
func (h *AdminHandler) Enter(w http.ResponseWriter, r *http.Request) {
	_, err := h.survey.EnterAdmin(r.Context(), SessionIDFromContext(r.Context()))
	switch {
	case err == nil:
		http.Redirect(w, r, AdminReportPath, http.StatusSeeOther)
	case isTransition(err):
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	default:
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to open admin page", err)
	}
}

// Leave returns the session to intro
func (h *AdminHandler) Leave(w http.ResponseWriter, r *http.Request) {
	_, err := h.survey.LeaveAdmin(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil && !isTransition(err) {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to leave admin page", err)
		return
	}
	http.Redirect(w, r, HomePath, http.StatusSeeOther)
}

// ShowLogin displays the admin password form
func (h *AdminHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if h.signedIn(r) {
		http.Redirect(w, r, AdminReportPath, http.StatusSeeOther)
		return
	}
	renderTemplate(w, h.templates, h.log, http.StatusOK, "admin_login.tmpl", h.viewData(r, "Administrator sign in"))
}

// Login checks the password and sets the admin token cookie
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	token, err := h.guard.Login(r.PostFormValue(PasswordFieldName))
	if err != nil {
		if !errors.Is(err, security.ErrInvalidPassword) {
			respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to issue admin token", err)
			return
		}
		h.log.Warn("Admin sign in failed", "ip", security.GetClientIP(r))
		data := h.viewData(r, "Administrator sign in")
		data.Error = ErrInvalidAdminPassword
		renderTemplate(w, h.templates, h.log, http.StatusUnauthorized, "admin_login.tmpl", data)
		return
	}

	h.log.Info("Admin signed in", "ip", security.GetClientIP(r))
	http.SetCookie(w, security.CreateSessionCookie(r, security.AdminCookieName, token, h.now().Add(h.guard.TTL())))
	http.Redirect(w, r, AdminReportPath, http.StatusSeeOther)
}

// Logout clears the admin token cookie
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.AdminCookieName))
	http.Redirect(w, r, AdminLoginPath, http.StatusSeeOther)
}

// Report displays the collected responses
func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	data := h.viewData(r, "Collected data")

	if data.Connected {
		report, err := h.reports.Load(r.Context())
		if err != nil {
			h.log.Warn("Failed to load responses", "sheet", h.reports.SheetName(), "error", err)
			data.LoadError = loadErrorMessage(h.reports.SheetName(), err)
		}
		data.Report = report
	}

	renderTemplate(w, h.templates, h.log, http.StatusOK, "admin_report.tmpl", data)
}

// Export downloads every stored row as CSV
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	count, err := h.reports.Export(r.Context(), &buf)
	if err != nil {
		if errors.Is(err, store.ErrNotConfigured) {
			http.Error(w, "No response store is configured", http.StatusServiceUnavailable)
			return
		}
		respondWithError(w, h.log, http.StatusBadGateway, loadErrorMessage(h.reports.SheetName(), err), "Failed to export responses", err)
		return
	}

	h.log.Info("Responses exported", "rows", count)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(h.now())))
	_, _ = buf.WriteTo(w)
}

// Health reports liveness
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *AdminHandler) signedIn(r *http.Request) bool {
	if h.guard.Open() {
		return true
	}
	cookie, err := r.Cookie(security.AdminCookieName)
	if err != nil {
		return false
	}
	return h.guard.Verify(cookie.Value) == nil
}

func (h *AdminHandler) viewData(r *http.Request, title string) AdminViewData {
	return AdminViewData{
		Title:     title,
		CSRFToken: h.middleware.CSRFToken(r),
		Connected: h.reports.Connected(),
		AdminOpen: h.guard.Open(),
		SheetName: h.reports.SheetName(),
	}
}

func loadErrorMessage(sheet string, err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("The sheet %q was not found. Make sure it exists and is shared with the service account.", sheet)
	}
	return fmt.Sprintf("Could not load data: %v", err)
}
