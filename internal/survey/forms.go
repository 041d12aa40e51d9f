package survey

import (
	"strconv"
	"strings"

	"shortstory/internal/models"
)

// ParticipantForm is the raw intake form
type ParticipantForm struct {
	ID        string
	Age       string
	Gender    string
	Education string
}

// Resolve validates the form. Fields are checked in form order and the first
// problem is reported.
func (f ParticipantForm) Resolve() (models.ParticipantInfo, error) {
	id := strings.TrimSpace(f.ID)
	if id == "" {
		return models.ParticipantInfo{}, &ValidationError{Field: "participant_id", Message: "Please enter a participant ID."}
	}

	ageText := strings.TrimSpace(f.Age)
	if ageText == "" {
		return models.ParticipantInfo{}, &ValidationError{Field: "age", Message: "Please enter your age."}
	}
	age, err := strconv.Atoi(ageText)
	if err != nil {
		return models.ParticipantInfo{}, &ValidationError{Field: "age", Message: "Age must be a whole number."}
	}
	if age < models.MinAge || age > models.MaxAge {
		return models.ParticipantInfo{}, &ValidationError{
			Field:   "age",
			Message: "Age must be between " + strconv.Itoa(models.MinAge) + " and " + strconv.Itoa(models.MaxAge) + ".",
		}
	}

	gender := models.Gender(strings.TrimSpace(f.Gender))
	if !gender.Valid() {
		return models.ParticipantInfo{}, &ValidationError{Field: "gender", Message: "Please select a gender."}
	}

	education := models.Education(strings.TrimSpace(f.Education))
	if !education.Valid() {
		return models.ParticipantInfo{}, &ValidationError{Field: "education", Message: "Please select your education level."}
	}

	return models.ParticipantInfo{ID: id, Age: age, Gender: gender, Education: education}, nil
}

// PreStoryForm is the raw pre-story questionnaire. Inputs belonging to a branch
// that was not taken are ignored even when present.
type PreStoryForm struct {
	ReadBefore  string
	ReadWhen    string
	ReadMemory  string
	ReadContext string
	ReadGrade   string
	ReadClass   string

	Familiar           string
	FamiliarKnowledge  string
	FamiliarDiscussion string
}

// Resolve builds the branch-shaped responses. Only the two gate questions are required.
func (f PreStoryForm) Resolve() (models.PreStoryResponses, error) {
	readBefore := models.YesNo(strings.TrimSpace(f.ReadBefore))
	if !readBefore.Valid() {
		return models.PreStoryResponses{}, &ValidationError{Field: "read_before", Message: "Please say whether you have read this story before."}
	}
	familiar := models.YesNo(strings.TrimSpace(f.Familiar))
	if !familiar.Valid() {
		return models.PreStoryResponses{}, &ValidationError{Field: "familiar", Message: "Please say whether this story is familiar to you."}
	}

	var out models.PreStoryResponses
	if readBefore == models.Yes {
		history := &models.ReadingHistory{
			When:   f.ReadWhen,
			Memory: f.ReadMemory,
		}
		if ctx := models.ReadContext(strings.TrimSpace(f.ReadContext)); ctx != "" {
			if !ctx.Valid() {
				return models.PreStoryResponses{}, &ValidationError{Field: "read_context", Message: "Please choose where you read the story."}
			}
			history.Context = ctx
		}
		if history.Context == models.ReadContextSchool {
			history.School = &models.SchoolReading{Grade: f.ReadGrade, Class: f.ReadClass}
		}
		out.ReadBefore = history
	}
	if familiar == models.Yes {
		out.Familiar = &models.Familiarity{
			Knowledge:  f.FamiliarKnowledge,
			Discussion: f.FamiliarDiscussion,
		}
	}
	return out, nil
}
