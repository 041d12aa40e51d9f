package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"shortstory/internal/catalog"
	"shortstory/internal/logger"
	"shortstory/internal/repository"
	"shortstory/internal/store"
	"shortstory/internal/survey"
)

const testSheet = "SST_Responses"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.Story{Title: "T", Text: "Once."},
		catalog.QuestionDefinition{ID: "S1", Category: catalog.CategorySpontaneous, Prompt: "Summarize.", Samples: []string{"A summary."}},
		catalog.QuestionDefinition{ID: "M1", Category: catalog.CategoryMentalState, Prompt: "Why?", Samples: []string{"Because."}},
	)
	require.NoError(t, err)
	return c
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc   *SurveyService
	store *store.MemoryStore
	clock *testClock
	cat   *catalog.Catalog
}

func newFixture(t *testing.T, notifier CompletionNotifier) *fixture {
	t.Helper()
	cat := testCatalog(t)
	clock := &testClock{t: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	mem := store.NewMemory(testSheet)
	log := logger.Nop()

	flow := survey.NewFlow(cat,
		survey.WithClock(clock.Now),
		survey.WithRecorder(NewStoreRecorder(mem, testSheet, log)),
	)
	repo := repository.NewMemorySessionRepository(time.Hour, time.Hour)
	t.Cleanup(func() { repo.Close() })

	return &fixture{
		svc:   NewSurveyService(flow, repo, notifier, log),
		store: mem,
		clock: clock,
		cat:   cat,
	}
}

// walkToQuestions drives session id from intro to the questions page
func (f *fixture) walkToQuestions(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Begin(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.SubmitParticipant(ctx, id, survey.ParticipantForm{ID: "P001", Age: "25", Gender: "female", Education: "bachelor"})
	require.NoError(t, err)
	_, err = f.svc.BeginReading(ctx, id)
	require.NoError(t, err)
	f.clock.Advance(200 * time.Second)
	_, err = f.svc.FinishReading(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.SubmitPreStory(ctx, id, survey.PreStoryForm{ReadBefore: "no", Familiar: "no"})
	require.NoError(t, err)
}

func (f *fixture) rows(t *testing.T) [][]string {
	t.Helper()
	sh, err := f.store.Open(context.Background(), testSheet)
	require.NoError(t, err)
	rows, err := sh.ReadAll(context.Background())
	require.NoError(t, err)
	return rows
}
