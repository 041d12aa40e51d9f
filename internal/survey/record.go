package survey

import (
	"strconv"
	"time"

	"shortstory/internal/catalog"
	"shortstory/internal/models"
)

// TimestampLayout is the format of the first column of every row
const TimestampLayout = "2006-01-02 15:04:05"

// ResponseColumnPrefix prefixes the per-question answer columns
const ResponseColumnPrefix = "response_"

var fixedColumns = [...]string{
	"timestamp", "participant_id", "age", "gender", "education",
	"story_read_time_sec", "total_time_sec",
	"read_before", "read_when", "read_memory", "read_context", "read_grade", "read_class",
	"familiar", "familiar_knowledge", "familiar_discussion",
}

// FixedColumnCount is the number of columns that precede the answers
const FixedColumnCount = len(fixedColumns)

// Columns returns the header row for a catalog
func Columns(c *catalog.Catalog) []string {
	cols := make([]string, 0, FixedColumnCount+c.Len())
	cols = append(cols, fixedColumns[:]...)
	for _, q := range c.Questions {
		cols = append(cols, ResponseColumnPrefix+q.ID)
	}
	return cols
}

// Assemble flattens one completed session into a row matching Columns(c).
// Branch fields that do not apply are written as empty strings.
func Assemble(info models.ParticipantInfo, answers models.AnswerSet, pre models.PreStoryResponses, timing models.TimingRecord, c *catalog.Catalog, now time.Time) []string {
	row := make([]string, 0, FixedColumnCount+c.Len())
	row = append(row,
		now.Format(TimestampLayout),
		info.ID,
		strconv.Itoa(info.Age),
		string(info.Gender),
		string(info.Education),
		formatSeconds(timing.StoryReadSeconds),
		formatSeconds(timing.TotalSeconds),
	)
	row = append(row, readingColumns(pre.ReadBefore)...)
	row = append(row, familiarityColumns(pre.Familiar)...)
	for _, q := range c.Questions {
		row = append(row, answers[q.ID])
	}
	return row
}

// read_before, read_when, read_memory, read_context, read_grade, read_class
func readingColumns(h *models.ReadingHistory) []string {
	if h == nil {
		return []string{string(models.No), "", "", "", "", ""}
	}
	grade, class := "", ""
	if h.Context == models.ReadContextSchool && h.School != nil {
		grade, class = h.School.Grade, h.School.Class
	}
	return []string{string(models.Yes), h.When, h.Memory, string(h.Context), grade, class}
}

// familiar, familiar_knowledge, familiar_discussion
func familiarityColumns(f *models.Familiarity) []string {
	if f == nil {
		return []string{string(models.No), "", ""}
	}
	return []string{string(models.Yes), f.Knowledge, f.Discussion}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
