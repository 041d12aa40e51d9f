package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shortstory/internal/catalog"
	"shortstory/internal/config"
	"shortstory/internal/handlers"
	"shortstory/internal/logger"
	"shortstory/internal/repository"
	"shortstory/internal/security"
	"shortstory/internal/service"
	"shortstory/internal/store"
	"shortstory/internal/survey"
	"shortstory/internal/templates"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Question set and story
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("Failed to load question catalog", "path", cfg.CatalogPath, "error", err)
	}
	log.Info("Question catalog loaded", "questions", cat.Len(), "columns", len(survey.Columns(cat)))

	// Response store; the survey still runs without one
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	responses, err := store.Connect(connectCtx, store.ConfigFrom(cfg))
	cancelConnect()
	switch {
	case err == nil:
		log.Info("Response store connected", "backend", responses.Backend(), "sheet", cfg.SheetName)
	case errors.Is(err, store.ErrNotConfigured):
		log.Warn("No response store configured, running in local test mode", "backend", cfg.StoreBackend)
	default:
		log.Warn("Response store unavailable, running in local test mode", "backend", cfg.StoreBackend, "error", err)
	}

	flowOpts := []survey.Option{}
	if responses != nil {
		flowOpts = append(flowOpts, survey.WithRecorder(service.NewStoreRecorder(responses, cfg.SheetName, log)))
	}
	flow := survey.NewFlow(cat, flowOpts...)

	// Participant sessions
	sessions, err := newSessionRepository(cfg)
	if err != nil {
		log.Fatal("Failed to initialize session store", "backend", cfg.SessionBackend, "error", err)
	}
	log.Info("Session store ready", "backend", cfg.SessionBackend, "ttl", cfg.SessionDuration)
	for _, name := range cfg.UnsharedSecrets() {
		log.Warn("Secret not set while sessions are shared, tokens from other replicas will be rejected", "setting", name)
	}

	notifier, err := service.NewNotificationService(context.Background(), cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.NotifyEmail, log)
	if err != nil {
		log.Warn("Completion notifications unavailable", "error", err)
	}

	// Initialize services
	var completion service.CompletionNotifier
	if notifier != nil {
		completion = notifier
	}
	surveyService := service.NewSurveyService(flow, sessions, completion, log)
	reportService := service.NewReportService(responses, cfg.SheetName, cat)

	// Security
	guard := security.NewAdminGuard(cfg.AdminPasswordHash, cfg.AdminTokenSecret, cfg.AdminTokenTTL)
	if guard.Open() {
		log.Warn("ADMIN_PASSWORD_HASH not set, the collected data page is open to anyone")
	}
	limiter := security.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow, 5*time.Minute)

	// Load templates
	tmpl, err := templates.Load()
	if err != nil {
		log.Fatal("Failed to load templates", "error", err)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(security.NewCSRFGenerator(cfg.CSRFSecret), limiter, guard, log, cfg.SessionDuration)
	surveyHandler := handlers.NewSurveyHandler(surveyService, tmpl, middleware, log)
	adminHandler := handlers.NewAdminHandler(surveyService, reportService, guard, tmpl, middleware, log)
	handler := handlers.NewRouter(surveyHandler, adminHandler, middleware, staticFiles(cfg.StaticFilesPath), log)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "url", "http://localhost"+addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}

	limiter.Stop()
	if err := sessions.Close(); err != nil {
		log.Warn("Failed to close session store", "error", err)
	}
	if responses != nil {
		if err := responses.Close(ctx); err != nil {
			log.Warn("Failed to close response store", "error", err)
		}
	}
}

func newSessionRepository(cfg *config.Config) (repository.SessionRepository, error) {
	if cfg.SharedSessions() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return repository.NewRedisSessionRepository(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionDuration)
	}
	return repository.NewMemorySessionRepository(cfg.SessionDuration, time.Hour), nil
}

// staticFiles serves from dir when it exists, otherwise the embedded stylesheet
func staticFiles(dir string) fs.FS {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return os.DirFS(dir)
	}
	return templates.Static()
}
