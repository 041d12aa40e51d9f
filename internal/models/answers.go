package models

import "strings"

// AnswerSet maps question id to the participant's free-text answer
type AnswerSet map[string]string

// Blank returns, in the order given, the ids whose answer is missing or whitespace only
func (a AnswerSet) Blank(ids []string) []string {
	var blank []string
	for _, id := range ids {
		if strings.TrimSpace(a[id]) == "" {
			blank = append(blank, id)
		}
	}
	return blank
}

// TimingRecord holds the two measured durations in seconds
type TimingRecord struct {
	StoryReadSeconds float64 `json:"story_read_seconds"`
	TotalSeconds     float64 `json:"total_seconds"`
}
