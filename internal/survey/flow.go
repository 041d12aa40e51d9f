// Package survey implements the participant state machine: the stage graph,
// the guard on every transition and the row written on completion.
package survey

import (
	"context"
	"time"

	"shortstory/internal/catalog"
	"shortstory/internal/models"
)

// Recorder persists one completed row. The flow calls it exactly once per
// completed session and never retries.
type Recorder interface {
	Record(ctx context.Context, header, row []string) error
}

// Flow applies guarded transitions to sessions. It holds no per-session state
// and is safe to share between requests.
type Flow struct {
	catalog  *catalog.Catalog
	recorder Recorder
	now      func() time.Time
}

// Option configures a Flow
type Option func(*Flow)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// WithRecorder sets where completed rows go. Without one the flow runs in
// local-only mode.
func WithRecorder(r Recorder) Option {
	return func(f *Flow) { f.recorder = r }
}

// NewFlow creates a flow over the given catalog
func NewFlow(c *catalog.Catalog, opts ...Option) *Flow {
	f := &Flow{catalog: c, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Catalog returns the question set the flow validates against
func (f *Flow) Catalog() *catalog.Catalog {
	return f.catalog
}

// LocalOnly reports whether completed rows are kept in memory only
func (f *Flow) LocalOnly() bool {
	return f.recorder == nil
}

// NewSession starts a session at intro
func (f *Flow) NewSession(id string) *Session {
	return NewSession(id, f.now())
}

func (f *Flow) expect(s *Session, stage Stage, action string) error {
	if s.Stage != stage {
		return &TransitionError{From: s.Stage, Action: action}
	}
	return nil
}

func (f *Flow) advance(s *Session, to Stage, now time.Time) {
	s.Stage = to
	s.UpdatedAt = now
}

// Begin moves intro → participant_info and starts the session clock
func (f *Flow) Begin(s *Session) error {
	if err := f.expect(s, StageIntro, "begin"); err != nil {
		return err
	}
	now := f.now()
	s.StartedAt = &now
	f.advance(s, StageParticipantInfo, now)
	return nil
}

// SubmitParticipant moves participant_info → instruction once the form resolves
func (f *Flow) SubmitParticipant(s *Session, form ParticipantForm) error {
	if err := f.expect(s, StageParticipantInfo, "submit participant info"); err != nil {
		return err
	}
	info, err := form.Resolve()
	if err != nil {
		return err
	}
	s.Participant = &info
	f.advance(s, StageInstruction, f.now())
	return nil
}

// BeginReading moves instruction → story and starts the reading clock
func (f *Flow) BeginReading(s *Session) error {
	if err := f.expect(s, StageInstruction, "begin reading"); err != nil {
		return err
	}
	now := f.now()
	s.StoryStartedAt = &now
	f.advance(s, StageStory, now)
	return nil
}

// FinishReading moves story → pre_questions and records the reading time
func (f *Flow) FinishReading(s *Session) error {
	if err := f.expect(s, StageStory, "finish reading"); err != nil {
		return err
	}
	now := f.now()
	s.Timing.StoryReadSeconds = elapsedSeconds(s.StoryStartedAt, now)
	f.advance(s, StagePreQuestions, now)
	return nil
}

// SubmitPreStory moves pre_questions → questions once both gate questions are answered
func (f *Flow) SubmitPreStory(s *Session, form PreStoryForm) error {
	if err := f.expect(s, StagePreQuestions, "submit pre-story answers"); err != nil {
		return err
	}
	pre, err := form.Resolve()
	if err != nil {
		return err
	}
	s.PreStory = &pre
	f.advance(s, StageQuestions, f.now())
	return nil
}

// SubmitAnswers moves questions → complete when every catalog question has a
// non-blank answer, then assembles the row and makes one persistence attempt.
// A persistence failure is recorded on the session, not returned.
func (f *Flow) SubmitAnswers(ctx context.Context, s *Session, answers map[string]string) error {
	if err := f.expect(s, StageQuestions, "submit answers"); err != nil {
		return err
	}
	ids := f.catalog.IDs()
	given := models.AnswerSet(answers)
	if blank := given.Blank(ids); len(blank) > 0 {
		return &BlankAnswersError{IDs: blank}
	}

	kept := make(models.AnswerSet, len(ids))
	for _, id := range ids {
		kept[id] = given[id]
	}
	s.Answers = kept
	f.complete(ctx, s)
	return nil
}

func (f *Flow) complete(ctx context.Context, s *Session) {
	now := f.now()
	s.Timing.TotalSeconds = elapsedSeconds(s.StartedAt, now)
	f.advance(s, StageComplete, now)

	var info models.ParticipantInfo
	if s.Participant != nil {
		info = *s.Participant
	}
	var pre models.PreStoryResponses
	if s.PreStory != nil {
		pre = *s.PreStory
	}
	s.Record = Assemble(info, s.Answers, pre, s.Timing, f.catalog, now)

	if f.recorder == nil {
		s.Outcome = OutcomeLocalOnly
		s.OutcomeMessage = "No response store is configured; the responses were not saved remotely."
		return
	}
	if err := f.recorder.Record(ctx, Columns(f.catalog), s.Record); err != nil {
		s.Outcome = OutcomeFailed
		s.OutcomeMessage = err.Error()
		return
	}
	s.Outcome = OutcomeSaved
	s.OutcomeMessage = ""
}

// Restart returns a completed session to intro with nothing carried over
func (f *Flow) Restart(s *Session) error {
	if err := f.expect(s, StageComplete, "start a new session"); err != nil {
		return err
	}
	s.reset(f.now())
	return nil
}

// EnterAdmin opens the administrative side page from intro
func (f *Flow) EnterAdmin(s *Session) error {
	if err := f.expect(s, StageIntro, "open the admin page"); err != nil {
		return err
	}
	f.advance(s, StageAdmin, f.now())
	return nil
}

// LeaveAdmin returns from the administrative page to intro
func (f *Flow) LeaveAdmin(s *Session) error {
	if err := f.expect(s, StageAdmin, "leave the admin page"); err != nil {
		return err
	}
	f.advance(s, StageIntro, f.now())
	return nil
}

func elapsedSeconds(since *time.Time, now time.Time) float64 {
	if since == nil {
		return 0
	}
	d := now.Sub(*since).Seconds()
	if d < 0 {
		return 0
	}
	return d
}
