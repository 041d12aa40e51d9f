package service

import (
	"fmt"
	"math/rand/v2"
	"time"

	"shortstory/internal/catalog"
	"shortstory/internal/models"
	"shortstory/internal/survey"
)

// DefaultSimulationCount is how many synthetic participants Simulate makes by default
const DefaultSimulationCount = 15

var simulatedParticipants = []models.ParticipantInfo{
	{Age: 23, Gender: models.GenderFemale, Education: models.EducationGraduateStudent},
	{Age: 45, Gender: models.GenderMale, Education: models.EducationBachelor},
	{Age: 31, Gender: models.GenderFemale, Education: models.EducationBachelor},
	{Age: 28, Gender: models.GenderMale, Education: models.EducationGraduateStudent},
	{Age: 52, Gender: models.GenderFemale, Education: models.EducationHighSchool},
	{Age: 19, Gender: models.GenderFemale, Education: models.EducationHighSchool},
	{Age: 36, Gender: models.GenderMale, Education: models.EducationAssociate},
	{Age: 41, Gender: models.GenderFemale, Education: models.EducationBachelor},
	{Age: 25, Gender: models.GenderMale, Education: models.EducationBachelor},
	{Age: 33, Gender: models.GenderFemale, Education: models.EducationGraduate},
	{Age: 29, Gender: models.GenderMale, Education: models.EducationAssociate},
	{Age: 47, Gender: models.GenderFemale, Education: models.EducationBachelor},
	{Age: 22, Gender: models.GenderMale, Education: models.EducationCollegeStudent},
	{Age: 38, Gender: models.GenderFemale, Education: models.EducationGraduate},
	{Age: 26, Gender: models.GenderMale, Education: models.EducationBachelor},
}

var (
	simReadWhen   = []string{"5 years ago", "in high school", "3 years ago", "in college"}
	simReadMemory = []string{"only the rough plot", "hardly anything", "the plot and the characters"}
	simGrades     = []string{"11th grade", "12th grade", "college freshman"}
	simClasses    = []string{"Literature", "English", "American Literature"}
	simKnowledge  = []string{
		"I know it is a Hemingway story",
		"I have heard of the Nick Adams stories",
		"I know roughly what happens",
	}
	simDiscussion = []string{
		"We talked about it in class",
		"A friend told me about it",
		"I read a review online",
	}
)

// Simulator fabricates plausible completed rows for testing the store and report
type Simulator struct {
	catalog *catalog.Catalog
	rng     *rand.Rand
	now     func() time.Time
}

// NewSimulator creates a simulator. The same seed yields the same rows for the same clock.
func NewSimulator(c *catalog.Catalog, seed uint64, now func() time.Time) *Simulator {
	if now == nil {
		now = time.Now
	}
	return &Simulator{catalog: c, rng: rand.New(rand.NewPCG(seed, seed^0x5eed)), now: now}
}

// Rows returns n synthetic rows in Columns order. Every fifth participant has
// read the story before and every fourth finds it familiar. Timestamps start a
// week ago and advance five hours per participant.
func (s *Simulator) Rows(n int) [][]string {
	base := s.now().Add(-7 * 24 * time.Hour)
	rows := make([][]string, 0, n)

	for i := 0; i < n; i++ {
		info := simulatedParticipants[i%len(simulatedParticipants)]
		info.ID = fmt.Sprintf("P%03d", i+1)

		var pre models.PreStoryResponses
		if i%5 == 0 {
			history := &models.ReadingHistory{
				When:    s.pick(simReadWhen),
				Memory:  s.pick(simReadMemory),
				Context: models.ReadContextHobby,
			}
			if s.rng.IntN(2) == 0 {
				history.Context = models.ReadContextSchool
				history.School = &models.SchoolReading{Grade: s.pick(simGrades), Class: s.pick(simClasses)}
			}
			pre.ReadBefore = history
		}
		if i%4 == 0 {
			pre.Familiar = &models.Familiarity{Knowledge: s.pick(simKnowledge), Discussion: s.pick(simDiscussion)}
		}

		storyRead := 180 + s.rng.IntN(241)
		timing := models.TimingRecord{
			StoryReadSeconds: float64(storyRead),
			TotalSeconds:     float64(storyRead + 300 + s.rng.IntN(301)),
		}

		answers := make(models.AnswerSet, s.catalog.Len())
		for _, q := range s.catalog.Questions {
			if len(q.Samples) > 0 {
				answers[q.ID] = s.pick(q.Samples)
			} else {
				answers[q.ID] = "Sample response to " + q.ID
			}
		}

		at := base.Add(time.Duration(i)*5*time.Hour + time.Duration(s.rng.IntN(60))*time.Minute)
		rows = append(rows, survey.Assemble(info, answers, pre, timing, s.catalog, at))
	}
	return rows
}

func (s *Simulator) pick(options []string) string {
	return options[s.rng.IntN(len(options))]
}
