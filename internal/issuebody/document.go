package issuebody

import (
	"errors"
	"fmt"
	"strings"
)

const (
	logSectionTitleConstant = "Log"

	sectionExistsMessageTemplateConstant   = "section already exists: %s"
	sectionNotFoundMessageTemplateConstant = "section not found: %s"
	todoNotFoundMessageTemplateConstant    = "todo not found: %s"
	todoAmbiguousMessageTemplateConstant   = "todo text matches multiple items: %s"
	todoExistsMessageTemplateConstant      = "todo already exists: %s"
	sectionTitleRequiredMessageConstant    = "section title required"
	todoTextRequiredMessageConstant        = "todo text required"
)

// Sentinel errors for document mutations.
var (
	ErrSectionTitleRequired = errors.New(sectionTitleRequiredMessageConstant)
	ErrTodoTextRequired     = errors.New(todoTextRequiredMessageConstant)
)

// SectionExistsError indicates an attempt to create a duplicate section.
type SectionExistsError struct {
	Title string
}

// Error describes the duplicate section.
func (existsError SectionExistsError) Error() string {
	return fmt.Sprintf(sectionExistsMessageTemplateConstant, existsError.Title)
}

// SectionNotFoundError indicates a referenced section is absent.
type SectionNotFoundError struct {
	Title string
}

// Error describes the missing section.
func (notFoundError SectionNotFoundError) Error() string {
	return fmt.Sprintf(sectionNotFoundMessageTemplateConstant, notFoundError.Title)
}

// TodoNotFoundError indicates no todo item matched the requested text.
type TodoNotFoundError struct {
	Text string
}

// Error describes the missing todo.
func (notFoundError TodoNotFoundError) Error() string {
	return fmt.Sprintf(todoNotFoundMessageTemplateConstant, notFoundError.Text)
}

// TodoAmbiguousError indicates multiple todo items matched the requested text.
type TodoAmbiguousError struct {
	Text string
}

// Error describes the ambiguous match.
func (ambiguousError TodoAmbiguousError) Error() string {
	return fmt.Sprintf(todoAmbiguousMessageTemplateConstant, ambiguousError.Text)
}

// TodoExistsError indicates an attempt to add a duplicate todo item.
type TodoExistsError struct {
	Text string
}

// Error describes the duplicate todo.
func (existsError TodoExistsError) Error() string {
	return fmt.Sprintf(todoExistsMessageTemplateConstant, existsError.Text)
}

// Todo is a single checklist item inside a section.
type Todo struct {
	Text    string
	Checked bool
}

// Section is a level-two markdown section with its raw content lines.
type Section struct {
	Title string
	Lines []string
}

// Document is the structured representation of an issue body.
type Document struct {
	Preamble []string
	Sections []*Section
}

// Section returns the section matching the title, compared case-insensitively.
func (document *Document) Section(title string) (*Section, bool) {
	normalizedTitle := strings.ToLower(strings.TrimSpace(title))
	for _, section := range document.Sections {
		if strings.ToLower(section.Title) == normalizedTitle {
			return section, true
		}
	}
	return nil, false
}

// HasSection reports whether a section with the given title exists.
func (document *Document) HasSection(title string) bool {
	_, sectionFound := document.Section(title)
	return sectionFound
}

// AddSection appends an empty section, keeping the Log section last when present.
func (document *Document) AddSection(title string) (*Section, error) {
	trimmedTitle := strings.TrimSpace(title)
	if len(trimmedTitle) == 0 {
		return nil, ErrSectionTitleRequired
	}
	if document.HasSection(trimmedTitle) {
		return nil, SectionExistsError{Title: trimmedTitle}
	}

	newSection := &Section{Title: trimmedTitle}

	sectionCount := len(document.Sections)
	if sectionCount > 0 && document.Sections[sectionCount-1].IsLog() && !newSection.IsLog() {
		document.Sections = append(document.Sections[:sectionCount-1], newSection, document.Sections[sectionCount-1])
		return newSection, nil
	}

	document.Sections = append(document.Sections, newSection)
	return newSection, nil
}

// UpdateSectionContent replaces the content lines of an existing section.
func (document *Document) UpdateSectionContent(title string, content string) error {
	section, sectionFound := document.Section(title)
	if !sectionFound {
		return SectionNotFoundError{Title: strings.TrimSpace(title)}
	}

	section.Lines = splitContentLines(content)
	return nil
}

// AddTodo appends an unchecked todo item to the named section.
func (document *Document) AddTodo(sectionTitle string, todoText string) error {
	trimmedText := strings.TrimSpace(todoText)
	if len(trimmedText) == 0 {
		return ErrTodoTextRequired
	}

	section, sectionFound := document.Section(sectionTitle)
	if !sectionFound {
		return SectionNotFoundError{Title: strings.TrimSpace(sectionTitle)}
	}

	for _, existingTodo := range section.Todos() {
		if normalizeTodoText(existingTodo.Text) == normalizeTodoText(trimmedText) {
			return TodoExistsError{Text: trimmedText}
		}
	}

	section.Lines = append(section.Lines, fmt.Sprintf(uncheckedTodoTemplateConstant, trimmedText))
	return nil
}

// SetTodoChecked updates the checked state of the todo matching the given text.
// Matching is exact on the whitespace-normalized item text.
func (document *Document) SetTodoChecked(sectionTitle string, todoText string, checked bool) error {
	section, sectionFound := document.Section(sectionTitle)
	if !sectionFound {
		return SectionNotFoundError{Title: strings.TrimSpace(sectionTitle)}
	}

	normalizedTarget := normalizeTodoText(todoText)
	matchingLineIndexes := []int{}
	for lineIndex, line := range section.Lines {
		parsedTodo, isTodoLine := parseTodoLine(line)
		if !isTodoLine {
			continue
		}
		if normalizeTodoText(parsedTodo.Text) == normalizedTarget {
			matchingLineIndexes = append(matchingLineIndexes, lineIndex)
		}
	}

	switch len(matchingLineIndexes) {
	case 0:
		return TodoNotFoundError{Text: strings.TrimSpace(todoText)}
	case 1:
		matchedLineIndex := matchingLineIndexes[0]
		section.Lines[matchedLineIndex] = setTodoLineChecked(section.Lines[matchedLineIndex], checked)
		return nil
	default:
		return TodoAmbiguousError{Text: strings.TrimSpace(todoText)}
	}
}

// Todos parses the checklist items present in the section content.
func (section *Section) Todos() []Todo {
	var todos []Todo
	for _, line := range section.Lines {
		if parsedTodo, isTodoLine := parseTodoLine(line); isTodoLine {
			todos = append(todos, parsedTodo)
		}
	}
	return todos
}

// IsLog reports whether the section is the workflow log.
func (section *Section) IsLog() bool {
	return strings.EqualFold(section.Title, logSectionTitleConstant)
}

// ContentText joins the section lines back into a single string.
func (section *Section) ContentText() string {
	return strings.Join(section.Lines, lineSeparatorConstant)
}

// HasContent reports whether the section holds any non-blank line.
func (section *Section) HasContent() bool {
	for _, line := range section.Lines {
		if len(strings.TrimSpace(line)) > 0 {
			return true
		}
	}
	return false
}

// TodosComplete reports whether every todo outside the Log section is checked.
func (document *Document) TodosComplete() bool {
	for _, section := range document.Sections {
		if section.IsLog() {
			continue
		}
		for _, todoItem := range section.Todos() {
			if !todoItem.Checked {
				return false
			}
		}
	}
	return true
}

// OpenTodoCount counts unchecked todos outside the Log section.
func (document *Document) OpenTodoCount() int {
	openCount := 0
	for _, section := range document.Sections {
		if section.IsLog() {
			continue
		}
		for _, todoItem := range section.Todos() {
			if !todoItem.Checked {
				openCount++
			}
		}
	}
	return openCount
}

func normalizeTodoText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func splitContentLines(content string) []string {
	normalizedContent := strings.ReplaceAll(content, windowsLineSeparatorConstant, lineSeparatorConstant)
	trimmedContent := strings.TrimRight(normalizedContent, lineSeparatorConstant)
	if len(trimmedContent) == 0 {
		return nil
	}
	return strings.Split(trimmedContent, lineSeparatorConstant)
}
