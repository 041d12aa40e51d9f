package handlers

import (
	"context"
	"net/http"
	"time"

	"shortstory/internal/logger"
	"shortstory/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const SessionContextKey ContextKey = "session_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	csrf       *security.CSRFGenerator
	limiter    *security.RateLimiter
	admin      *security.AdminGuard
	log        *logger.Logger
	sessionTTL time.Duration
}

// NewMiddleware creates a new middleware instance. limiter may be nil.
func NewMiddleware(csrf *security.CSRFGenerator, limiter *security.RateLimiter, admin *security.AdminGuard, log *logger.Logger, sessionTTL time.Duration) *Middleware {
	return &Middleware{
		csrf:       csrf,
		limiter:    limiter,
		admin:      admin,
		log:        log,
		sessionTTL: sessionTTL,
	}
}

// Session makes sure every request carries a participant session cookie and
// puts its ID on the request context
func (m *Middleware) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := security.SessionIDFromRequest(r)
		if !ok {
			id = security.GenerateSessionID()
			http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, id, time.Now().Add(m.sessionTTL)))
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRFProtect rejects form posts whose token does not match the session
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			respondWithError(w, m.log, http.StatusBadRequest, ErrInvalidFormData, "Failed to parse form", err)
			return
		}
		if !m.csrf.ValidateToken(SessionIDFromContext(r.Context()), r.PostFormValue(CSRFFieldName)) {
			m.log.Warn("CSRF token rejected", "path", r.URL.Path, "ip", security.GetClientIP(r))
			http.Error(w, ErrInvalidCSRFToken, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil {
			ip := security.GetClientIP(r)
			if !m.limiter.Allow(ip) {
				m.log.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, ErrTooManyRequests, http.StatusTooManyRequests)
				return
			}
		}
		next(w, r)
	}
}

// RequireAdmin is middleware that requires a valid administrator token, unless
// no admin password is configured
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.admin.Open() {
			next(w, r)
			return
		}

		cookie, err := r.Cookie(security.AdminCookieName)
		if err != nil {
			http.Redirect(w, r, AdminLoginPath, http.StatusSeeOther)
			return
		}
		if err := m.admin.Verify(cookie.Value); err != nil {
			// Clear invalid cookie
			http.SetCookie(w, security.CreateDeleteCookie(r, security.AdminCookieName))
			http.Redirect(w, r, AdminLoginPath, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the form token for the request's session
func (m *Middleware) CSRFToken(r *http.Request) string {
	token, err := m.csrf.GenerateToken(SessionIDFromContext(r.Context()))
	if err != nil {
		return ""
	}
	return token
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs HTTP requests
func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("Request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// SessionIDFromContext retrieves the participant session ID from the request context
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(SessionContextKey).(string)
	return id
}
