package issuebody

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	logEntryDividerConstant         = "---"
	logEntryHeadingTemplateConstant = "### → %s [%s]"
	logEntryAuthorTemplateConstant  = "*by @%s*"
	logEntryMessageTemplateConstant = "> %s"
	logTimestampLayoutConstant      = time.RFC3339
)

var (
	logEntryHeadingPattern = regexp.MustCompile(`^###\s+→\s+(\S+)\s+\[([^\]]+)\]$`)
	logEntryAuthorPattern  = regexp.MustCompile(`^\*by @([^*]+)\*$`)
)

// LogEntry records a single workflow transition inside the Log section.
type LogEntry struct {
	ToState   string
	Author    string
	Timestamp time.Time
	Message   string
}

// RenderLogEntry formats a transition entry without the leading divider,
// suitable for posting as a standalone issue comment.
func RenderLogEntry(entry LogEntry) string {
	lines := []string{
		fmt.Sprintf(logEntryHeadingTemplateConstant, entry.ToState, entry.Timestamp.UTC().Format(logTimestampLayoutConstant)),
		fmt.Sprintf(logEntryAuthorTemplateConstant, entry.Author),
	}
	if len(strings.TrimSpace(entry.Message)) > 0 {
		lines = append(lines, fmt.Sprintf(logEntryMessageTemplateConstant, strings.TrimSpace(entry.Message)))
	}
	return strings.Join(lines, lineSeparatorConstant)
}

// AppendLogEntry adds a transition entry to the Log section, creating the
// section when the document lacks one.
func (document *Document) AppendLogEntry(entry LogEntry) {
	logSection, sectionFound := document.Section(logSectionTitleConstant)
	if !sectionFound {
		logSection, _ = document.AddSection(logSectionTitleConstant)
	}

	entryLines := strings.Split(RenderLogEntry(entry), lineSeparatorConstant)
	if len(logSection.Lines) > 0 {
		logSection.Lines = append(logSection.Lines, "")
	}
	logSection.Lines = append(logSection.Lines, logEntryDividerConstant)
	logSection.Lines = append(logSection.Lines, entryLines...)
}

// ParseLogEntries reads the transition history recorded in the Log section.
// Malformed blocks are skipped rather than reported.
func (document *Document) ParseLogEntries() []LogEntry {
	logSection, sectionFound := document.Section(logSectionTitleConstant)
	if !sectionFound {
		return nil
	}

	var entries []LogEntry
	var currentEntry *LogEntry
	for _, line := range logSection.Lines {
		trimmedLine := strings.TrimSpace(line)

		if headingMatches := logEntryHeadingPattern.FindStringSubmatch(trimmedLine); headingMatches != nil {
			if currentEntry != nil {
				entries = append(entries, *currentEntry)
			}
			currentEntry = &LogEntry{ToState: headingMatches[1]}
			if parsedTimestamp, parseError := time.Parse(logTimestampLayoutConstant, headingMatches[2]); parseError == nil {
				currentEntry.Timestamp = parsedTimestamp
			}
			continue
		}

		if currentEntry == nil {
			continue
		}

		if authorMatches := logEntryAuthorPattern.FindStringSubmatch(trimmedLine); authorMatches != nil {
			currentEntry.Author = strings.TrimSpace(authorMatches[1])
			continue
		}

		if strings.HasPrefix(trimmedLine, ">") {
			messageText := strings.TrimSpace(strings.TrimPrefix(trimmedLine, ">"))
			if len(currentEntry.Message) > 0 {
				currentEntry.Message += " " + messageText
			} else {
				currentEntry.Message = messageText
			}
		}
	}
	if currentEntry != nil {
		entries = append(entries, *currentEntry)
	}

	return entries
}
