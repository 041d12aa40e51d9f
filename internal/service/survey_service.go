package service

import (
	"context"
	"errors"
	"fmt"

	"shortstory/internal/logger"
	"shortstory/internal/repository"
	"shortstory/internal/survey"
)

// CompletionNotifier is told about every newly completed session
type CompletionNotifier interface {
	NotifyCompletion(ctx context.Context, s *survey.Session) error
}

// SurveyService loads a participant's session, applies one flow step under the
// session lock and saves the result.
type SurveyService struct {
	flow     *survey.Flow
	repo     repository.SessionRepository
	locks    *repository.SessionLocks
	notifier CompletionNotifier
	log      *logger.Logger
}

// NewSurveyService creates a survey service. notifier may be nil.
func NewSurveyService(flow *survey.Flow, repo repository.SessionRepository, notifier CompletionNotifier, log *logger.Logger) *SurveyService {
	return &SurveyService{
		flow:     flow,
		repo:     repo,
		locks:    repository.NewSessionLocks(),
		notifier: notifier,
		log:      log,
	}
}

// Flow returns the underlying flow
func (s *SurveyService) Flow() *survey.Flow {
	return s.flow
}

// Current returns the session for id, starting a new one at intro if none is stored
func (s *SurveyService) Current(ctx context.Context, id string) (*survey.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.load(ctx, id)
}

func (s *SurveyService) load(ctx context.Context, id string) (*survey.Session, error) {
	if id == "" {
		return nil, errors.New("session ID is required")
	}
	sess, err := s.repo.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess = s.flow.NewSession(id)
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// apply runs step on the stored session. When step fails the stored session is
// untouched and the returned session shows the unchanged state.
func (s *SurveyService) apply(ctx context.Context, id, action string, step func(*survey.Session) error) (*survey.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := sess.Stage
	if err := step(sess); err != nil {
		if survey.IsValidation(err) {
			s.log.Debug("Step rejected", "session_id", id, "action", action, "stage", from, "error", err)
		} else {
			s.log.Warn("Step refused", "session_id", id, "action", action, "stage", from, "error", err)
		}
		// reload so a partially mutated value never reaches the caller
		if fresh, lerr := s.repo.Get(ctx, id); lerr == nil {
			sess = fresh
		}
		return sess, err
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.log.Info("Stage advanced", "session_id", id, "action", action, "from", from, "to", sess.Stage)

	if from != survey.StageComplete && sess.Stage == survey.StageComplete {
		s.completed(ctx, sess)
	}
	return sess, nil
}

func (s *SurveyService) completed(ctx context.Context, sess *survey.Session) {
	fields := []interface{}{
		"session_id", sess.ID,
		"outcome", string(sess.Outcome),
		"story_read_seconds", sess.Timing.StoryReadSeconds,
		"total_seconds", sess.Timing.TotalSeconds,
	}
	if sess.Outcome == survey.OutcomeFailed {
		s.log.Error("Session completed but not saved", append(fields, "error", sess.OutcomeMessage)...)
	} else {
		s.log.Info("Session completed", fields...)
	}
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyCompletion(ctx, sess); err != nil {
		s.log.Warn("Failed to send completion notification", "session_id", sess.ID, "error", err)
	}
}

func (s *SurveyService) Begin(ctx context.Context, id string) (*survey.Session, error) {
	return s.apply(ctx, id, "begin", s.flow.Begin)
}

func (s *SurveyService) SubmitParticipant(ctx context.Context, id string, form survey.ParticipantForm) (*survey.Session, error) {
	return s.apply(ctx, id, "participant", func(sess *survey.Session) error {
		return s.flow.SubmitParticipant(sess, form)
	})
}

func (s *SurveyService) BeginReading(ctx context.Context, id string) (*survey.Session, error) {
	return s.apply(ctx, id, "story_start", s.flow.BeginReading)
}

func (s *SurveyService) FinishReading(ctx context.Context, id string) (*survey.Session, error) {
	return s.apply(ctx, id, "story_finish", s.flow.FinishReading)
}

func (s *SurveyService) SubmitPreStory(ctx context.Context, id string, form survey.PreStoryForm) (*survey.Session, error) {
	return s.apply(ctx, id, "pre_questions", func(sess *survey.Session) error {
		return s.flow.SubmitPreStory(sess, form)
	})
}

func (s *SurveyService) SubmitAnswers(ctx context.Context, id string, answers map[string]string) (*survey.Session, error) {
	return s.apply(ctx, id, "questions", func(sess *survey.Session) error {
		return s.flow.SubmitAnswers(ctx, sess, answers)
	})
}

func (s *SurveyService) Restart(ctx context.Context, id string) (*survey.Session, error) {
	return s.apply(ctx, id, "restart", s.flow.Restart)
}

func (s *SurveyService) EnterAdmin(ctx context.Context, id string) (*survey.Session, error) {
	return s.apply(ctx, id, "admin_enter", s.flow.EnterAdmin)
}

func (s *SurveyService) LeaveAdmin(ctx context.Context, id string) (*survey.Session, error) {
	return s.apply(ctx, id, "admin_leave", s.flow.LeaveAdmin)
}
