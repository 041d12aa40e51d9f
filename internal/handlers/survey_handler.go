package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"shortstory/internal/logger"
	"shortstory/internal/models"
	"shortstory/internal/service"
	"shortstory/internal/survey"
)

// stagePages maps every stage to the page rendered for it
var stagePages = map[survey.Stage]string{
	survey.StageIntro:           "intro.tmpl",
	survey.StageParticipantInfo: "participant.tmpl",
	survey.StageInstruction:     "instruction.tmpl",
	survey.StageStory:           "story.tmpl",
	survey.StagePreQuestions:    "pre_questions.tmpl",
	survey.StageQuestions:       "questions.tmpl",
	survey.StageComplete:        "complete.tmpl",
	survey.StageAdmin:           "admin_report.tmpl",
}

var stageTitles = map[survey.Stage]string{
	survey.StageIntro:           "Welcome",
	survey.StageParticipantInfo: "About you",
	survey.StageInstruction:     "Instructions",
	survey.StageStory:           "Story",
	survey.StagePreQuestions:    "Before the questions",
	survey.StageQuestions:       "Questions",
	survey.StageComplete:        "Complete",
	survey.StageAdmin:           "Collected data",
}

// SurveyHandler serves the participant pages
type SurveyHandler struct {
	survey     *service.SurveyService
	templates  *template.Template
	middleware *Middleware
	log        *logger.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveyService *service.SurveyService, templates *template.Template, middleware *Middleware, log *logger.Logger) *SurveyHandler {
	return &SurveyHandler{
		survey:     surveyService,
		templates:  templates,
		middleware: middleware,
		log:        log,
	}
}

// Show renders the page for the session's current stage
func (h *SurveyHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess, err := h.survey.Current(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to load session", err)
		return
	}
	if sess.Stage == survey.StageAdmin {
		http.Redirect(w, r, AdminReportPath, http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, h.viewData(r, sess))
}

// Begin handles the start button on the intro page
func (h *SurveyHandler) Begin(w http.ResponseWriter, r *http.Request) {
	sess, err := h.survey.Begin(r.Context(), SessionIDFromContext(r.Context()))
	h.afterStep(w, r, sess, err, nil)
}

// SubmitParticipant handles the intake form
func (h *SurveyHandler) SubmitParticipant(w http.ResponseWriter, r *http.Request) {
	form := survey.ParticipantForm{
		ID:        r.PostFormValue("participant_id"),
		Age:       r.PostFormValue("age"),
		Gender:    r.PostFormValue("gender"),
		Education: r.PostFormValue("education"),
	}
	sess, err := h.survey.SubmitParticipant(r.Context(), SessionIDFromContext(r.Context()), form)
	h.afterStep(w, r, sess, err, func(data *SurveyViewData) {
		data.Form = formValues(r, "participant_id", "age", "gender", "education")
	})
}

// BeginReading handles the button on the instruction page
func (h *SurveyHandler) BeginReading(w http.ResponseWriter, r *http.Request) {
	sess, err := h.survey.BeginReading(r.Context(), SessionIDFromContext(r.Context()))
	h.afterStep(w, r, sess, err, nil)
}

// FinishReading handles the button under the story
func (h *SurveyHandler) FinishReading(w http.ResponseWriter, r *http.Request) {
	sess, err := h.survey.FinishReading(r.Context(), SessionIDFromContext(r.Context()))
	h.afterStep(w, r, sess, err, nil)
}

// SubmitPreStory handles the familiarity questionnaire
func (h *SurveyHandler) SubmitPreStory(w http.ResponseWriter, r *http.Request) {
	form := survey.PreStoryForm{
		ReadBefore:         r.PostFormValue("read_before"),
		ReadWhen:           r.PostFormValue("read_when"),
		ReadMemory:         r.PostFormValue("read_memory"),
		ReadContext:        r.PostFormValue("read_context"),
		ReadGrade:          r.PostFormValue("read_grade"),
		ReadClass:          r.PostFormValue("read_class"),
		Familiar:           r.PostFormValue("familiar"),
		FamiliarKnowledge:  r.PostFormValue("familiar_knowledge"),
		FamiliarDiscussion: r.PostFormValue("familiar_discussion"),
	}
	sess, err := h.survey.SubmitPreStory(r.Context(), SessionIDFromContext(r.Context()), form)
	h.afterStep(w, r, sess, err, func(data *SurveyViewData) {
		data.Form = formValues(r, "read_before", "read_when", "read_memory", "read_context",
			"read_grade", "read_class", "familiar", "familiar_knowledge", "familiar_discussion")
	})
}

// SubmitAnswers handles the open questions
func (h *SurveyHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	answers := make(map[string]string)
	for key, values := range r.PostForm {
		if id, ok := strings.CutPrefix(key, AnswerFieldPrefix); ok && len(values) > 0 {
			answers[id] = values[0]
		}
	}
	sess, err := h.survey.SubmitAnswers(r.Context(), SessionIDFromContext(r.Context()), answers)
	h.afterStep(w, r, sess, err, func(data *SurveyViewData) {
		data.Answers = answers
		var blank *survey.BlankAnswersError
		if errors.As(err, &blank) {
			data.BlankIDs = blank.IDs
		}
	})
}

// Restart starts a new participant after completion
func (h *SurveyHandler) Restart(w http.ResponseWriter, r *http.Request) {
	sess, err := h.survey.Restart(r.Context(), SessionIDFromContext(r.Context()))
	h.afterStep(w, r, sess, err, nil)
}

// afterStep redirects home on success. A validation error re-renders the
// current page with the message and the submitted values; an illegal
// transition just sends the browser back to the page for the real stage.
func (h *SurveyHandler) afterStep(w http.ResponseWriter, r *http.Request, sess *survey.Session, err error, refill func(*SurveyViewData)) {
	switch {
	case err == nil:
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	case survey.IsValidation(err):
		data := h.viewData(r, sess)
		data.Error = validationMessage(err)
		if refill != nil {
			refill(&data)
		}
		h.render(w, r, http.StatusUnprocessableEntity, data)
	case isTransition(err):
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
	default:
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to apply survey step", err)
	}
}

func (h *SurveyHandler) viewData(r *http.Request, sess *survey.Session) SurveyViewData {
	c := h.survey.Flow().Catalog()
	data := SurveyViewData{
		Title:        stageTitles[sess.Stage],
		CSRFToken:    h.middleware.CSRFToken(r),
		Connected:    !h.survey.Flow().LocalOnly(),
		Steps:        progressSteps(sess.Stage),
		Form:         map[string]string{},
		MinAge:       models.MinAge,
		MaxAge:       models.MaxAge,
		Genders:      genderChoices(),
		Educations:   educationChoices(),
		ReadContexts: readContextChoices(),
		Story:        c.Story,
		Sections:     c.Sections(),
		Answers:      map[string]string(sess.Answers),
		Session:      sess,
	}
	if data.Answers == nil {
		data.Answers = map[string]string{}
	}
	return data
}

func (h *SurveyHandler) render(w http.ResponseWriter, r *http.Request, status int, data SurveyViewData) {
	page, ok := stagePages[data.Session.Stage]
	if !ok {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "No page for stage", errors.New(data.Session.Stage.String()))
		return
	}
	renderTemplate(w, h.templates, h.log, status, page, data)
}

// renderTemplate executes into a buffer so a failing template never sends a half page
func renderTemplate(w http.ResponseWriter, templates *template.Template, log *logger.Logger, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		respondWithError(w, log, http.StatusInternalServerError, ErrInternalServerError, "Error rendering "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func formValues(r *http.Request, names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = r.PostFormValue(name)
	}
	return out
}

func validationMessage(err error) string {
	var ve *survey.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var be *survey.BlankAnswersError
	if errors.As(err, &be) {
		return "Please answer every question before submitting."
	}
	return err.Error()
}

func isTransition(err error) bool {
	var te *survey.TransitionError
	return errors.As(err, &te)
}
