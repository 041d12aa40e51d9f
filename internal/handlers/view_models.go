package handlers

import (
	"shortstory/internal/catalog"
	"shortstory/internal/models"
	"shortstory/internal/service"
	"shortstory/internal/survey"
)

// ProgressStep is one entry of the sidebar progress list
type ProgressStep struct {
	Label string
	State string // done, current or pending
}

// Choice is one option of a select input
type Choice struct {
	Value string
	Label string
}

// SurveyViewData is passed to every participant page
type SurveyViewData struct {
	Title     string
	CSRFToken string
	Error     string
	Connected bool
	Steps     []ProgressStep

	// Form holds submitted values so a rejected form keeps its input
	Form         map[string]string
	MinAge       int
	MaxAge       int
	Genders      []Choice
	Educations   []Choice
	ReadContexts []Choice

	Story    catalog.Story
	Sections []catalog.Section
	Answers  map[string]string
	BlankIDs []string

	Session *survey.Session
}

// AdminViewData is passed to the admin pages
type AdminViewData struct {
	Title     string
	CSRFToken string
	Error     string
	Connected bool
	Steps     []ProgressStep

	AdminOpen bool
	SheetName string
	Report    *service.Report
	LoadError string
}

var stepLabels = map[survey.Stage]string{
	survey.StageIntro:           "Introduction",
	survey.StageParticipantInfo: "About you",
	survey.StageInstruction:     "Instructions",
	survey.StageStory:           "Story",
	survey.StagePreQuestions:    "Before the questions",
	survey.StageQuestions:       "Questions",
	survey.StageComplete:        "Done",
}

// progressSteps marks the forward path relative to current. The admin page has no progress.
func progressSteps(current survey.Stage) []ProgressStep {
	if current == survey.StageAdmin {
		return nil
	}
	path := survey.ForwardPath()
	steps := make([]ProgressStep, 0, len(path))
	for _, stage := range path {
		state := "pending"
		switch {
		case stage < current:
			state = "done"
		case stage == current:
			state = "current"
		}
		steps = append(steps, ProgressStep{Label: stepLabels[stage], State: state})
	}
	return steps
}

func genderChoices() []Choice {
	out := make([]Choice, len(models.Genders))
	for i, g := range models.Genders {
		out[i] = Choice{Value: string(g), Label: g.Label()}
	}
	return out
}

func educationChoices() []Choice {
	out := make([]Choice, len(models.Educations))
	for i, e := range models.Educations {
		out[i] = Choice{Value: string(e), Label: e.Label()}
	}
	return out
}

func readContextChoices() []Choice {
	out := make([]Choice, len(models.ReadContexts))
	for i, c := range models.ReadContexts {
		out[i] = Choice{Value: string(c), Label: c.Label()}
	}
	return out
}
