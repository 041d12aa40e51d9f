package handlers

import (
	"io/fs"
	"net/http"

	"shortstory/internal/logger"
)

// NewRouter wires every route. All requests get a participant session and are logged.
func NewRouter(surveyHandler *SurveyHandler, adminHandler *AdminHandler, m *Middleware, static fs.FS, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /healthz", adminHandler.Health)

	// Participant flow
	mux.HandleFunc("GET /{$}", surveyHandler.Show)
	mux.HandleFunc("POST /begin", m.RateLimit(m.CSRFProtect(surveyHandler.Begin)))
	mux.HandleFunc("POST /participant", m.RateLimit(m.CSRFProtect(surveyHandler.SubmitParticipant)))
	mux.HandleFunc("POST /story/start", m.RateLimit(m.CSRFProtect(surveyHandler.BeginReading)))
	mux.HandleFunc("POST /story/finish", m.RateLimit(m.CSRFProtect(surveyHandler.FinishReading)))
	mux.HandleFunc("POST /pre-questions", m.RateLimit(m.CSRFProtect(surveyHandler.SubmitPreStory)))
	mux.HandleFunc("POST /questions", m.RateLimit(m.CSRFProtect(surveyHandler.SubmitAnswers)))
	mux.HandleFunc("POST /restart", m.RateLimit(m.CSRFProtect(surveyHandler.Restart)))

	// Admin
	mux.HandleFunc("POST /admin/enter", m.CSRFProtect(adminHandler.Enter))
	mux.HandleFunc("POST /admin/leave", m.CSRFProtect(adminHandler.Leave))
	mux.HandleFunc("GET /admin/login", adminHandler.ShowLogin)
	mux.HandleFunc("POST /admin/login", m.RateLimit(m.CSRFProtect(adminHandler.Login)))
	mux.HandleFunc("POST /admin/logout", m.CSRFProtect(adminHandler.Logout))
	mux.HandleFunc("GET /admin/report", m.RequireAdmin(adminHandler.Report))
	mux.HandleFunc("GET /admin/report/export", m.RequireAdmin(adminHandler.Export))

	return Logging(log)(m.Session(mux))
}
