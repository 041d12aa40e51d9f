package models

// YesNo is the answer to a yes/no radio question
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// Valid reports whether the question was answered
func (v YesNo) Valid() bool {
	return v == Yes || v == No
}

// ReadContext says where the story was read before
type ReadContext string

const (
	ReadContextHobby  ReadContext = "hobby"
	ReadContextSchool ReadContext = "school"
	ReadContextOther  ReadContext = "other"
)

// ReadContexts lists the choices in form order
var ReadContexts = []ReadContext{ReadContextHobby, ReadContextSchool, ReadContextOther}

// Label returns the text shown on the form
func (c ReadContext) Label() string {
	switch c {
	case ReadContextHobby:
		return "At home / as a hobby"
	case ReadContextSchool:
		return "At school"
	case ReadContextOther:
		return "Other"
	}
	return string(c)
}

// Valid reports whether c is one of the known contexts
func (c ReadContext) Valid() bool {
	for _, known := range ReadContexts {
		if c == known {
			return true
		}
	}
	return false
}

// PreStoryResponses records prior exposure to the story.
// A nil branch means the participant answered "no" to its gate question.
type PreStoryResponses struct {
	ReadBefore *ReadingHistory `json:"read_before,omitempty"`
	Familiar   *Familiarity    `json:"familiar,omitempty"`
}

// ReadingHistory is only present when the story was read before
type ReadingHistory struct {
	When    string      `json:"when"`
	Memory  string      `json:"memory"`
	Context ReadContext `json:"context"`
	// School is only present when Context is ReadContextSchool
	School *SchoolReading `json:"school,omitempty"`
}

// SchoolReading describes a reading assigned in class
type SchoolReading struct {
	Grade string `json:"grade"`
	Class string `json:"class"`
}

// Familiarity is only present when the story felt familiar
type Familiarity struct {
	Knowledge  string `json:"knowledge"`
	Discussion string `json:"discussion"`
}

// HasReadBefore reports the read_before gate answer
func (p PreStoryResponses) HasReadBefore() bool {
	return p.ReadBefore != nil
}

// IsFamiliar reports the familiar gate answer
func (p PreStoryResponses) IsFamiliar() bool {
	return p.Familiar != nil
}
