package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerSetBlank(t *testing.T) {
	tests := []struct {
		name    string
		answers AnswerSet
		ids     []string
		want    []string
	}{
		{
			name:    "all answered",
			answers: AnswerSet{"A": "x", "B": "y"},
			ids:     []string{"A", "B"},
			want:    nil,
		},
		{
			name:    "missing and whitespace",
			answers: AnswerSet{"A": " \t\n", "C": "ok"},
			ids:     []string{"A", "B", "C"},
			want:    []string{"A", "B"},
		},
		{
			name:    "keeps given order",
			answers: AnswerSet{},
			ids:     []string{"M2", "M1"},
			want:    []string{"M2", "M1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.answers.Blank(tt.ids))
		})
	}
}

func TestChoiceValidity(t *testing.T) {
	assert.True(t, GenderFemale.Valid())
	assert.False(t, Gender("").Valid())
	assert.False(t, Gender("select").Valid())
	assert.True(t, EducationBachelor.Valid())
	assert.False(t, Education("phd").Valid())
	assert.True(t, Yes.Valid())
	assert.False(t, YesNo("maybe").Valid())
	assert.True(t, ReadContextSchool.Valid())
	assert.False(t, ReadContext("library").Valid())
}

func TestPreStoryGates(t *testing.T) {
	var p PreStoryResponses
	assert.False(t, p.HasReadBefore())
	assert.False(t, p.IsFamiliar())

	p.ReadBefore = &ReadingHistory{Context: ReadContextHobby}
	p.Familiar = &Familiarity{}
	assert.True(t, p.HasReadBefore())
	assert.True(t, p.IsFamiliar())
}
