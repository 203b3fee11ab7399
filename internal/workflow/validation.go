package workflow

import (
	"fmt"
	"strings"

	"github.com/ghoo-cli/ghoo/internal/githubcli"
	"github.com/ghoo-cli/ghoo/internal/issuebody"
)

const (
	missingSectionsMessageTemplateConstant = "required sections missing: %s"
	emptySectionsMessageTemplateConstant   = "required sections empty: %s"
	openTodosMessageTemplateConstant       = "%d todo item(s) still unchecked"
	openSubIssuesMessageTemplateConstant   = "sub-issue(s) still open: %s"

	closedSubIssueStateConstant = "closed"
)

// IncompleteSectionsError reports required sections absent or without content.
type IncompleteSectionsError struct {
	MissingSections []string
	EmptySections   []string
}

// Error lists the offending sections.
func (sectionsError IncompleteSectionsError) Error() string {
	var parts []string
	if len(sectionsError.MissingSections) > 0 {
		parts = append(parts, fmt.Sprintf(missingSectionsMessageTemplateConstant, strings.Join(sectionsError.MissingSections, ", ")))
	}
	if len(sectionsError.EmptySections) > 0 {
		parts = append(parts, fmt.Sprintf(emptySectionsMessageTemplateConstant, strings.Join(sectionsError.EmptySections, ", ")))
	}
	return strings.Join(parts, "; ")
}

// OpenTodosError reports unchecked todo items blocking work submission.
type OpenTodosError struct {
	OpenCount int
}

// Error describes the unfinished checklist.
func (todosError OpenTodosError) Error() string {
	return fmt.Sprintf(openTodosMessageTemplateConstant, todosError.OpenCount)
}

// OpenSubIssuesError reports open sub-issues blocking completion approval.
type OpenSubIssuesError struct {
	OpenNumbers []int
}

// Error lists the open sub-issue numbers.
func (subIssuesError OpenSubIssuesError) Error() string {
	references := make([]string, 0, len(subIssuesError.OpenNumbers))
	for _, issueNumber := range subIssuesError.OpenNumbers {
		references = append(references, fmt.Sprintf("#%d", issueNumber))
	}
	return fmt.Sprintf(openSubIssuesMessageTemplateConstant, strings.Join(references, ", "))
}

func validateRequiredSections(document *issuebody.Document, requiredTitles []string) error {
	var missingSections []string
	var emptySections []string
	for _, requiredTitle := range requiredTitles {
		section, sectionFound := document.Section(requiredTitle)
		if !sectionFound {
			missingSections = append(missingSections, requiredTitle)
			continue
		}
		if !section.HasContent() {
			emptySections = append(emptySections, requiredTitle)
		}
	}

	if len(missingSections) > 0 || len(emptySections) > 0 {
		return IncompleteSectionsError{MissingSections: missingSections, EmptySections: emptySections}
	}
	return nil
}

func validateTodosComplete(document *issuebody.Document) error {
	openCount := document.OpenTodoCount()
	if openCount > 0 {
		return OpenTodosError{OpenCount: openCount}
	}
	return nil
}

func validateSubIssuesClosed(subIssues []githubcli.SubIssue) error {
	var openNumbers []int
	for _, subIssue := range subIssues {
		if !strings.EqualFold(subIssue.State, closedSubIssueStateConstant) {
			openNumbers = append(openNumbers, subIssue.Number)
		}
	}
	if len(openNumbers) > 0 {
		return OpenSubIssuesError{OpenNumbers: openNumbers}
	}
	return nil
}
