package issuebody

import (
	"regexp"
	"strings"
)

const (
	lineSeparatorConstant         = "\n"
	windowsLineSeparatorConstant  = "\r\n"
	sectionHeadingPrefixConstant  = "## "
	uncheckedTodoTemplateConstant = "- [ ] %s"
)

var (
	todoLinePattern     = regexp.MustCompile(`^[-*]\s+\[( |x|X)\]\s+(.*)$`)
	todoCheckboxPattern = regexp.MustCompile(`^(\s*[-*]\s+\[)( |x|X)(\])`)
)

// ParseBody converts a raw issue body into a structured Document.
// Unknown content is preserved verbatim so parse and render round-trip.
func ParseBody(body string) *Document {
	document := &Document{}

	normalizedBody := strings.ReplaceAll(body, windowsLineSeparatorConstant, lineSeparatorConstant)
	if len(strings.TrimSpace(normalizedBody)) == 0 {
		return document
	}

	var currentSection *Section
	for _, line := range strings.Split(normalizedBody, lineSeparatorConstant) {
		if strings.HasPrefix(line, sectionHeadingPrefixConstant) {
			sectionTitle := strings.TrimSpace(strings.TrimPrefix(line, sectionHeadingPrefixConstant))
			currentSection = &Section{Title: sectionTitle}
			document.Sections = append(document.Sections, currentSection)
			continue
		}

		if currentSection == nil {
			document.Preamble = append(document.Preamble, line)
			continue
		}

		currentSection.Lines = append(currentSection.Lines, line)
	}

	document.Preamble = trimTrailingBlankLines(document.Preamble)
	for _, section := range document.Sections {
		section.Lines = trimSurroundingBlankLines(section.Lines)
	}

	return document
}

func parseTodoLine(line string) (Todo, bool) {
	matches := todoLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if matches == nil {
		return Todo{}, false
	}
	return Todo{
		Text:    strings.TrimSpace(matches[2]),
		Checked: strings.EqualFold(matches[1], "x"),
	}, true
}

// setTodoLineChecked rewrites only the checkbox marker so the line keeps its
// bullet style and inner spacing.
func setTodoLineChecked(line string, checked bool) string {
	checkboxMark := " "
	if checked {
		checkboxMark = "x"
	}
	return todoCheckboxPattern.ReplaceAllString(line, "${1}"+checkboxMark+"${3}")
}

func trimTrailingBlankLines(lines []string) []string {
	trimmedLength := len(lines)
	for trimmedLength > 0 && len(strings.TrimSpace(lines[trimmedLength-1])) == 0 {
		trimmedLength--
	}
	return lines[:trimmedLength]
}

func trimSurroundingBlankLines(lines []string) []string {
	startIndex := 0
	for startIndex < len(lines) && len(strings.TrimSpace(lines[startIndex])) == 0 {
		startIndex++
	}
	return trimTrailingBlankLines(lines[startIndex:])
}
