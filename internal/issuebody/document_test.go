package issuebody_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghoo-cli/ghoo/internal/issuebody"
)

const (
	sampleIssueBodyConstant = "Parent: #12\n\n## Summary\n\nShip the widget.\n\n## Acceptance Criteria\n\n- [ ] Widget ships\n- [x] Widget designed\n\n## Log\n\n---\n### → planning [2026-08-01T10:00:00Z]\n*by @octocat*\n> Starting the plan."
)

func TestParseBodyStructure(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		body                  string
		expectedPreamble      []string
		expectedSectionTitles []string
	}{
		{
			name:                  "sections_with_preamble",
			body:                  sampleIssueBodyConstant,
			expectedPreamble:      []string{"Parent: #12"},
			expectedSectionTitles: []string{"Summary", "Acceptance Criteria", "Log"},
		},
		{
			name:                  "empty_body",
			body:                  "   \n  ",
			expectedPreamble:      nil,
			expectedSectionTitles: nil,
		},
		{
			name:                  "preamble_only",
			body:                  "Just a note.",
			expectedPreamble:      []string{"Just a note."},
			expectedSectionTitles: nil,
		},
		{
			name:                  "windows_line_endings",
			body:                  "## Summary\r\n\r\nContent line.\r\n",
			expectedPreamble:      nil,
			expectedSectionTitles: []string{"Summary"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			document := issuebody.ParseBody(testCase.body)

			require.Equal(subtestInstance, testCase.expectedPreamble, document.Preamble)

			var sectionTitles []string
			for _, section := range document.Sections {
				sectionTitles = append(sectionTitles, section.Title)
			}
			require.Equal(subtestInstance, testCase.expectedSectionTitles, sectionTitles)
		})
	}
}

func TestParseRenderRoundTrip(testInstance *testing.T) {
	document := issuebody.ParseBody(sampleIssueBodyConstant)
	renderedBody := document.Render()
	require.Equal(testInstance, sampleIssueBodyConstant, renderedBody)

	reparsedDocument := issuebody.ParseBody(renderedBody)
	require.Equal(testInstance, renderedBody, reparsedDocument.Render())
}

func TestSectionLookupIsCaseInsensitive(testInstance *testing.T) {
	document := issuebody.ParseBody(sampleIssueBodyConstant)

	section, sectionFound := document.Section("summary")
	require.True(testInstance, sectionFound)
	require.Equal(testInstance, "Summary", section.Title)
	require.True(testInstance, document.HasSection("ACCEPTANCE CRITERIA"))
	require.False(testInstance, document.HasSection("Implementation Plan"))
}

func TestAddSectionKeepsLogLast(testInstance *testing.T) {
	document := issuebody.ParseBody(sampleIssueBodyConstant)

	_, additionError := document.AddSection("Implementation Plan")
	require.NoError(testInstance, additionError)

	lastSection := document.Sections[len(document.Sections)-1]
	require.True(testInstance, lastSection.IsLog())

	_, duplicateError := document.AddSection("summary")
	require.ErrorAs(testInstance, duplicateError, &issuebody.SectionExistsError{})

	_, blankTitleError := document.AddSection("   ")
	require.ErrorIs(testInstance, blankTitleError, issuebody.ErrSectionTitleRequired)
}

func TestUpdateSectionContent(testInstance *testing.T) {
	document := issuebody.ParseBody(sampleIssueBodyConstant)

	updateError := document.UpdateSectionContent("Summary", "Rewritten summary.\nSecond line.\n")
	require.NoError(testInstance, updateError)

	section, _ := document.Section("Summary")
	require.Equal(testInstance, "Rewritten summary.\nSecond line.", section.ContentText())

	missingError := document.UpdateSectionContent("Nonexistent", "content")
	require.ErrorAs(testInstance, missingError, &issuebody.SectionNotFoundError{})
}

func TestTodoMutations(testInstance *testing.T) {
	document := issuebody.ParseBody(sampleIssueBodyConstant)

	require.Equal(testInstance, 1, document.OpenTodoCount())
	require.False(testInstance, document.TodosComplete())

	additionError := document.AddTodo("Acceptance Criteria", "Widget documented")
	require.NoError(testInstance, additionError)
	require.Equal(testInstance, 2, document.OpenTodoCount())

	duplicateError := document.AddTodo("Acceptance Criteria", "Widget  documented")
	require.ErrorAs(testInstance, duplicateError, &issuebody.TodoExistsError{})

	checkError := document.SetTodoChecked("Acceptance Criteria", "Widget ships", true)
	require.NoError(testInstance, checkError)
	checkError = document.SetTodoChecked("Acceptance Criteria", "Widget documented", true)
	require.NoError(testInstance, checkError)
	require.True(testInstance, document.TodosComplete())

	uncheckError := document.SetTodoChecked("Acceptance Criteria", "Widget designed", false)
	require.NoError(testInstance, uncheckError)
	require.Equal(testInstance, 1, document.OpenTodoCount())

	missingTodoError := document.SetTodoChecked("Acceptance Criteria", "No such item", true)
	require.ErrorAs(testInstance, missingTodoError, &issuebody.TodoNotFoundError{})

	missingSectionError := document.AddTodo("Nowhere", "text")
	require.ErrorAs(testInstance, missingSectionError, &issuebody.SectionNotFoundError{})

	blankTextError := document.AddTodo("Acceptance Criteria", " ")
	require.ErrorIs(testInstance, blankTextError, issuebody.ErrTodoTextRequired)
}

func TestSetTodoCheckedPreservesLineFormatting(testInstance *testing.T) {
	document := issuebody.ParseBody("## Tasks\n\n* [ ] ship   the thing")

	checkError := document.SetTodoChecked("Tasks", "ship the thing", true)
	require.NoError(testInstance, checkError)
	require.Equal(testInstance, "## Tasks\n\n* [x] ship   the thing", document.Render())

	uncheckError := document.SetTodoChecked("Tasks", "ship   the thing", false)
	require.NoError(testInstance, uncheckError)
	require.Equal(testInstance, "## Tasks\n\n* [ ] ship   the thing", document.Render())
}

func TestAmbiguousTodoIsRejected(testInstance *testing.T) {
	document := issuebody.ParseBody("## Tasks\n\n- [ ] Repeated item\n- [ ] Repeated item")

	ambiguousError := document.SetTodoChecked("Tasks", "Repeated item", true)
	require.ErrorAs(testInstance, ambiguousError, &issuebody.TodoAmbiguousError{})
}

func TestAppendAndParseLogEntries(testInstance *testing.T) {
	document := issuebody.ParseBody("## Summary\n\nWork item.")

	firstTimestamp := time.Date(2026, time.August, 2, 9, 30, 0, 0, time.UTC)
	document.AppendLogEntry(issuebody.LogEntry{
		ToState:   "planning",
		Author:    "octocat",
		Timestamp: firstTimestamp,
		Message:   "Kicking off.",
	})
	document.AppendLogEntry(issuebody.LogEntry{
		ToState:   "awaiting-plan-approval",
		Author:    "octocat",
		Timestamp: firstTimestamp.Add(time.Hour),
	})

	lastSection := document.Sections[len(document.Sections)-1]
	require.True(testInstance, lastSection.IsLog())

	entries := document.ParseLogEntries()
	require.Len(testInstance, entries, 2)
	require.Equal(testInstance, "planning", entries[0].ToState)
	require.Equal(testInstance, "octocat", entries[0].Author)
	require.Equal(testInstance, firstTimestamp, entries[0].Timestamp)
	require.Equal(testInstance, "Kicking off.", entries[0].Message)
	require.Equal(testInstance, "awaiting-plan-approval", entries[1].ToState)
	require.Empty(testInstance, entries[1].Message)
}

func TestParseLogEntriesFromExistingBody(testInstance *testing.T) {
	document := issuebody.ParseBody(sampleIssueBodyConstant)

	entries := document.ParseLogEntries()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "planning", entries[0].ToState)
	require.Equal(testInstance, "octocat", entries[0].Author)
	require.Equal(testInstance, "Starting the plan.", entries[0].Message)
}

func TestRenderLogEntryForComment(testInstance *testing.T) {
	renderedEntry := issuebody.RenderLogEntry(issuebody.LogEntry{
		ToState:   "in-progress",
		Author:    "hubot",
		Timestamp: time.Date(2026, time.August, 3, 12, 0, 0, 0, time.UTC),
		Message:   "Plan approved, starting.",
	})

	require.Equal(testInstance, "### → in-progress [2026-08-03T12:00:00Z]\n*by @hubot*\n> Plan approved, starting.", renderedEntry)
}
