package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shortstory/internal/catalog"
	"shortstory/internal/logger"
	"shortstory/internal/repository"
	"shortstory/internal/security"
	"shortstory/internal/service"
	"shortstory/internal/store"
	"shortstory/internal/survey"
	"shortstory/internal/templates"
)

const (
	testSheet     = "SST_Responses"
	testSessionID = "3b8f0a52-6d1e-4c1f-9a57-2f0c7e9d1a10"
	testPassword  = "correct horse"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type appOptions struct {
	localOnly     bool
	missingSheet  bool
	adminPassword string
	rateLimit     int
}

type testApp struct {
	t       *testing.T
	handler http.Handler
	csrf    *security.CSRFGenerator
	store   *store.MemoryStore
	repo    *repository.MemorySessionRepository
	clock   *testClock
	cat     *catalog.Catalog
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T, opts appOptions) *testApp {
	t.Helper()
	cat, err := catalog.New(catalog.Story{Title: "The Lighthouse", Text: "First paragraph.\n\nSecond paragraph."},
		catalog.QuestionDefinition{ID: "S1", Category: catalog.CategorySpontaneous, Prompt: "Summarize the story."},
		catalog.QuestionDefinition{ID: "M1", Category: catalog.CategoryMentalState, Prompt: "How did the keeper feel?"},
	)
	require.NoError(t, err)

	log := logger.Nop()
	clock := &testClock{t: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
	mem := store.NewMemory(testSheet)
	if opts.missingSheet {
		mem = store.NewMemory()
	}

	flowOpts := []survey.Option{survey.WithClock(clock.Now)}
	var reportStore store.Store
	if !opts.localOnly {
		flowOpts = append(flowOpts, survey.WithRecorder(service.NewStoreRecorder(mem, testSheet, log)))
		reportStore = mem
	}
	flow := survey.NewFlow(cat, flowOpts...)

	repo := repository.NewMemorySessionRepository(time.Hour, time.Hour)
	t.Cleanup(func() { repo.Close() })

	var limiter *security.RateLimiter
	if opts.rateLimit > 0 {
		limiter = security.NewRateLimiter(opts.rateLimit, time.Minute, time.Minute)
		t.Cleanup(limiter.Stop)
	}

	var hash string
	if opts.adminPassword != "" {
		hash, err = security.HashPassword(opts.adminPassword)
		require.NoError(t, err)
	}
	guard := security.NewAdminGuard(hash, "admin-token-secret", time.Hour)
	csrf := security.NewCSRFGenerator("csrf-secret")

	tmpl, err := templates.Load()
	require.NoError(t, err)

	mw := NewMiddleware(csrf, limiter, guard, log, time.Hour)
	surveyService := service.NewSurveyService(flow, repo, nil, log)
	reports := service.NewReportService(reportStore, testSheet, cat)

	router := NewRouter(
		NewSurveyHandler(surveyService, tmpl, mw, log),
		NewAdminHandler(surveyService, reports, guard, tmpl, mw, log),
		mw, templates.Static(), log,
	)

	return &testApp{
		t:       t,
		handler: router,
		csrf:    csrf,
		store:   mem,
		repo:    repo,
		clock:   clock,
		cat:     cat,
		cookies: map[string]*http.Cookie{
			security.SessionCookieName: {Name: security.SessionCookieName, Value: testSessionID},
		},
	}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(a.cookies, c.Name)
			continue
		}
		a.cookies[c.Name] = c
	}
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post submits form with a valid CSRF token for the test session
func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	token, err := a.csrf.GenerateToken(testSessionID)
	require.NoError(a.t, err)
	form.Set(CSRFFieldName, token)
	return a.postRaw(path, form)
}

func (a *testApp) postRaw(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) stage() survey.Stage {
	sess, err := a.repo.Get(context.Background(), testSessionID)
	require.NoError(a.t, err)
	return sess.Stage
}

func (a *testApp) rows() [][]string {
	sh, err := a.store.Open(context.Background(), testSheet)
	require.NoError(a.t, err)
	rows, err := sh.ReadAll(context.Background())
	require.NoError(a.t, err)
	return rows
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, location, rec.Header().Get("Location"))
}

// walkToQuestions drives the test session from intro to the questions page
func (a *testApp) walkToQuestions() {
	a.t.Helper()
	assertRedirect(a.t, a.post("/begin", nil), "/")
	assertRedirect(a.t, a.post("/participant", url.Values{
		"participant_id": {"P001"},
		"age":            {"25"},
		"gender":         {"female"},
		"education":      {"bachelor"},
	}), "/")
	assertRedirect(a.t, a.post("/story/start", nil), "/")
	a.clock.Advance(200 * time.Second)
	assertRedirect(a.t, a.post("/story/finish", nil), "/")
	assertRedirect(a.t, a.post("/pre-questions", url.Values{"read_before": {"no"}, "familiar": {"no"}}), "/")
	require.Equal(a.t, survey.StageQuestions, a.stage())
}
