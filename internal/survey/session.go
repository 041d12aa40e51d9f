package survey

import (
	"time"

	"shortstory/internal/models"
)

// Outcome is the result of the single persistence attempt made on completion
type Outcome string

const (
	OutcomePending   Outcome = ""
	OutcomeSaved     Outcome = "saved"
	OutcomeFailed    Outcome = "failed"
	OutcomeLocalOnly Outcome = "local_only"
)

// Session is one participant's state. It is owned by a single flow at a time
// and is only changed through Flow methods.
type Session struct {
	ID    string `json:"id"`
	Stage Stage  `json:"stage"`

	Participant *models.ParticipantInfo   `json:"participant,omitempty"`
	PreStory    *models.PreStoryResponses `json:"pre_story,omitempty"`
	Answers     models.AnswerSet          `json:"answers,omitempty"`

	StartedAt      *time.Time          `json:"started_at,omitempty"`
	StoryStartedAt *time.Time          `json:"story_started_at,omitempty"`
	Timing         models.TimingRecord `json:"timing"`

	// Record is the assembled row, kept after completion even when it was not saved
	Record         []string `json:"record,omitempty"`
	Outcome        Outcome  `json:"outcome,omitempty"`
	OutcomeMessage string   `json:"outcome_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session at the intro stage
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Stage:     StageIntro,
		Answers:   models.AnswerSet{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Persisted reports whether the completion row reached the store
func (s *Session) Persisted() bool {
	return s.Outcome == OutcomeSaved
}

// reset clears everything except identity and creation time
func (s *Session) reset(now time.Time) {
	*s = Session{
		ID:        s.ID,
		Stage:     StageIntro,
		Answers:   models.AnswerSet{},
		CreatedAt: s.CreatedAt,
		UpdatedAt: now,
	}
}
