package workflow

import (
	"fmt"
	"strings"
)

const (
	// StatusMethodLabelsConstant is the only supported status storage method.
	StatusMethodLabelsConstant = "labels"

	unsupportedStatusMethodMessageTemplateConstant = "unsupported status_method %q: only %q is supported"

	summarySectionTitleConstant            = "Summary"
	acceptanceCriteriaSectionTitleConstant = "Acceptance Criteria"
	milestonePlanSectionTitleConstant      = "Milestone Plan"
	implementationPlanSectionTitleConstant = "Implementation Plan"
)

// Configuration holds the workflow settings read from ghoo.yaml.
type Configuration struct {
	Repository       string              `mapstructure:"repository" yaml:"repository"`
	StatusMethod     string              `mapstructure:"status_method" yaml:"status_method"`
	RequiredSections map[string][]string `mapstructure:"required_sections" yaml:"required_sections,omitempty"`
}

// UnsupportedStatusMethodError reports a status_method the engine cannot serve.
type UnsupportedStatusMethodError struct {
	StatusMethod string
}

// Error describes the unsupported method.
func (unsupportedError UnsupportedStatusMethodError) Error() string {
	return fmt.Sprintf(unsupportedStatusMethodMessageTemplateConstant, unsupportedError.StatusMethod, StatusMethodLabelsConstant)
}

// DefaultRequiredSections returns the per-type section requirements used when
// the configuration does not override them.
func DefaultRequiredSections() map[IssueType][]string {
	return map[IssueType][]string{
		IssueTypeEpic:    {summarySectionTitleConstant, acceptanceCriteriaSectionTitleConstant, milestonePlanSectionTitleConstant},
		IssueTypeTask:    {summarySectionTitleConstant, acceptanceCriteriaSectionTitleConstant, implementationPlanSectionTitleConstant},
		IssueTypeSubtask: {summarySectionTitleConstant, acceptanceCriteriaSectionTitleConstant},
	}
}

// Validate rejects configurations the engine cannot serve. An empty
// status_method defaults to labels.
func (configuration Configuration) Validate() error {
	trimmedMethod := strings.TrimSpace(configuration.StatusMethod)
	if len(trimmedMethod) > 0 && trimmedMethod != StatusMethodLabelsConstant {
		return UnsupportedStatusMethodError{StatusMethod: trimmedMethod}
	}

	for configuredType := range configuration.RequiredSections {
		if _, parseError := ParseIssueType(configuredType); parseError != nil {
			return parseError
		}
	}

	return nil
}

// RequiredSectionsForType returns the section titles an issue of the given
// type must fill before its plan can be submitted.
func (configuration Configuration) RequiredSectionsForType(issueType IssueType) []string {
	for configuredType, sectionTitles := range configuration.RequiredSections {
		parsedType, parseError := ParseIssueType(configuredType)
		if parseError == nil && parsedType == issueType {
			return sectionTitles
		}
	}
	return DefaultRequiredSections()[issueType]
}
