package models

// Age bounds accepted on the intake form
const (
	MinAge = 18
	MaxAge = 100
)

// Gender is the intake form's gender choice
type Gender string

const (
	GenderMale     Gender = "male"
	GenderFemale   Gender = "female"
	GenderOther    Gender = "other"
	GenderNoAnswer Gender = "no_answer"
)

// Genders lists the choices in form order
var Genders = []Gender{GenderMale, GenderFemale, GenderOther, GenderNoAnswer}

// Label returns the text shown on the form
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	case GenderNoAnswer:
		return "Prefer not to answer"
	}
	return string(g)
}

// Valid reports whether g is a resolved choice (not the placeholder)
func (g Gender) Valid() bool {
	for _, known := range Genders {
		if g == known {
			return true
		}
	}
	return false
}

// Education is the highest completed (or current) level of schooling
type Education string

const (
	EducationHighSchool      Education = "high_school"
	EducationCollegeStudent  Education = "college_student"
	EducationAssociate       Education = "associate"
	EducationBachelor        Education = "bachelor"
	EducationGraduateStudent Education = "graduate_student"
	EducationGraduate        Education = "graduate"
)

// Educations lists the choices in form order
var Educations = []Education{
	EducationHighSchool,
	EducationCollegeStudent,
	EducationAssociate,
	EducationBachelor,
	EducationGraduateStudent,
	EducationGraduate,
}

// Label returns the text shown on the form
func (e Education) Label() string {
	switch e {
	case EducationHighSchool:
		return "High school graduate"
	case EducationCollegeStudent:
		return "Currently in college"
	case EducationAssociate:
		return "Two-year college graduate"
	case EducationBachelor:
		return "Four-year college graduate"
	case EducationGraduateStudent:
		return "Currently in graduate school"
	case EducationGraduate:
		return "Graduate degree"
	}
	return string(e)
}

// Valid reports whether e is a resolved choice (not the placeholder)
func (e Education) Valid() bool {
	for _, known := range Educations {
		if e == known {
			return true
		}
	}
	return false
}

// ParticipantInfo is captured once at intake and never changed for the session
type ParticipantInfo struct {
	ID        string    `json:"id"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	Education Education `json:"education"`
}
