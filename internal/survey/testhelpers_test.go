package survey

import (
	"context"
	"errors"
	"time"

	"shortstory/internal/catalog"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingRecorder struct {
	calls  int
	header []string
	row    []string
	err    error
}

func (r *recordingRecorder) Record(_ context.Context, header, row []string) error {
	r.calls++
	r.header = header
	r.row = row
	return r.err
}

var errStoreDown = errors.New("store unavailable")

func smallCatalog() *catalog.Catalog {
	c, err := catalog.New(catalog.Story{Title: "T"},
		catalog.QuestionDefinition{ID: "S1", Category: catalog.CategorySpontaneous, Prompt: "Summarize."},
		catalog.QuestionDefinition{ID: "M1", Category: catalog.CategoryMentalState, Prompt: "Why?"},
		catalog.QuestionDefinition{ID: "C1", Category: catalog.CategoryComprehension, Prompt: "What?"},
	)
	if err != nil {
		panic(err)
	}
	return c
}

func validParticipant() ParticipantForm {
	return ParticipantForm{ID: "P001", Age: "25", Gender: "female", Education: "bachelor"}
}

func fullAnswers(c *catalog.Catalog) map[string]string {
	answers := make(map[string]string, c.Len())
	for _, id := range c.IDs() {
		answers[id] = "answer to " + id
	}
	return answers
}
