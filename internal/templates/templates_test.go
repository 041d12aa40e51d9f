package templates

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesEveryPage(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)

	pages := []string{
		"intro.tmpl", "participant.tmpl", "instruction.tmpl", "story.tmpl",
		"pre_questions.tmpl", "questions.tmpl", "complete.tmpl",
		"admin_login.tmpl", "admin_report.tmpl",
	}
	for _, page := range pages {
		assert.NotNil(t, tmpl.Lookup(page), "missing %s", page)
	}
}

func TestAdminReportBranches(t *testing.T) {
	tmpl, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{
			name: "not connected",
			data: map[string]any{"Connected": false, "SheetName": "SST_Responses"},
			want: `Share the "SST_Responses" spreadsheet`,
		},
		{
			name: "load error",
			data: map[string]any{"Connected": true, "LoadError": "sheet is gone"},
			want: "sheet is gone",
		},
		{
			name: "rows",
			data: map[string]any{"Connected": true, "Report": map[string]any{
				"Count":  1,
				"Header": []string{"timestamp"},
				"Rows":   [][]string{{"2026-01-01 10:00:00"}},
			}},
			want: "1 responses have been collected.",
		},
		{
			name: "header only",
			data: map[string]any{"Connected": true, "Report": map[string]any{"Count": 0, "HeaderOnly": true}},
			want: "The sheet has a header but no responses yet.",
		},
		{
			name: "mismatch",
			data: map[string]any{"Connected": true, "Report": map[string]any{"Count": 0, "HeaderMismatch": true}},
			want: "differs from the current question set",
		},
		{
			name: "empty",
			data: map[string]any{"Connected": true, "Report": map[string]any{"Count": 0}},
			want: "No data has been collected yet.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, "admin_report.tmpl", tt.data))
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), `action="/admin/leave"`)
		})
	}
}

func TestParagraphs(t *testing.T) {
	paragraphs := Funcs["paragraphs"].(func(string) []string)

	got := paragraphs("First line.\r\n\r\n  Second.  \n\n\n")

	assert.Equal(t, []string{"First line.", "Second."}, got)
}
